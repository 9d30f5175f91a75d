package ics

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	ical "github.com/arran4/golang-ical"

	"daycal/internal/calmath"
)

// ErrVerify marks a generated document that failed to parse back.
var ErrVerify = errors.New("ics: verification failed")

// Verify parses a generated document with an independent RFC 5545 parser
// and returns its events. Every VEVENT needs a UID, date-valued DTSTART and
// DTEND, and an end after its start. UIDs come back without the "@domain"
// suffix.
func Verify(body []byte) ([]Event, error) {
	if len(body) == 0 {
		return nil, fmt.Errorf("%w: empty document", ErrVerify)
	}

	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrVerify, err)
	}

	vevents := cal.Events()
	events := make([]Event, 0, len(vevents))
	for i, ve := range vevents {
		ev, err := parseVEvent(ve)
		if err != nil {
			return nil, fmt.Errorf("%w: event %d: %v", ErrVerify, i, err)
		}
		events = append(events, ev)
	}
	return events, nil
}

func parseVEvent(ve *ical.VEvent) (Event, error) {
	var out Event

	uidProp := ve.GetProperty(ical.ComponentPropertyUniqueId)
	if uidProp == nil || uidProp.Value == "" {
		return out, errors.New("missing UID")
	}
	out.UID = uidProp.Value
	if at := strings.LastIndexByte(out.UID, '@'); at > 0 {
		out.UID = out.UID[:at]
	}

	if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil {
		out.Summary = ical.FromText(p.Value)
	}
	if p := ve.GetProperty(ical.ComponentPropertyCategories); p != nil {
		out.Category = p.Value
	}

	var err error
	if out.Start, err = dateProp(ve, ical.ComponentPropertyDtStart); err != nil {
		return out, err
	}
	if out.End, err = dateProp(ve, ical.ComponentPropertyDtEnd); err != nil {
		return out, err
	}
	if !out.End.After(out.Start) {
		return out, fmt.Errorf("DTEND %s not after DTSTART %s", out.End.Compact(), out.Start.Compact())
	}
	return out, nil
}

// dateProp reads an all-day date property. VALUE=DATE is required.
func dateProp(ve *ical.VEvent, prop ical.ComponentProperty) (calmath.Date, error) {
	p := ve.GetProperty(prop)
	if p == nil {
		return calmath.Date{}, fmt.Errorf("missing %s", prop)
	}
	vs := p.ICalParameters["VALUE"]
	if len(vs) == 0 || !strings.EqualFold(vs[0], "DATE") {
		return calmath.Date{}, fmt.Errorf("%s is not VALUE=DATE", prop)
	}
	if strings.Contains(p.Value, "T") {
		return calmath.Date{}, fmt.Errorf("%s carries a time: %s", prop, p.Value)
	}

	get := ve.GetAllDayStartAt
	if prop == ical.ComponentPropertyDtEnd {
		get = ve.GetAllDayEndAt
	}
	t, err := get()
	if err != nil {
		return calmath.Date{}, err
	}
	return calmath.FromTime(t), nil
}
