// Package ics turns holiday bundles into RFC 5545 calendar documents.
package ics

import (
	"strings"

	"daycal/internal/calmath"
	"daycal/internal/model"
)

// Category values written to CATEGORIES.
const (
	CategoryHoliday       = "HOLIDAY"
	CategoryObservance    = "OBSERVANCE"
	CategorySchoolHoliday = "SCHOOL_HOLIDAY"
)

// Event is one all-day calendar event. End is exclusive and always after
// Start.
type Event struct {
	UID      string       `json:"uid"`
	Start    calmath.Date `json:"start"`
	End      calmath.Date `json:"end"`
	Summary  string       `json:"summary"`
	Category string       `json:"category"`
}

// Filter selects which records of a bundle become events.
type Filter struct {
	Public      bool `json:"include_holidays"`
	Observances bool `json:"include_observances"`
	School      bool `json:"include_school_holidays"`

	// Regions restricts school holidays. nil selects every region the
	// bundle references; a non-nil empty slice selects none.
	Regions []string `json:"regions"`
}

// Empty reports whether no category is selected.
func (f Filter) Empty() bool {
	return !f.Public && !f.Observances && !f.School
}

// BuildEvents maps the bundle records allowed by f to events: public
// holidays first, then observances, then school holidays, each in input
// order. Events with an already emitted UID are dropped.
func BuildEvents(b model.Bundle, f Filter) []Event {
	if f.Empty() {
		return nil
	}

	var out []Event
	seen := make(map[string]struct{})
	add := func(e Event) {
		if _, dup := seen[e.UID]; dup {
			return
		}
		seen[e.UID] = struct{}{}
		out = append(out, e)
	}

	if f.Public {
		for _, h := range b.Holidays {
			if h.Type == model.HolidayPublic {
				add(holidayEvent(h, CategoryHoliday))
			}
		}
	}
	if f.Observances {
		for _, h := range b.Holidays {
			if h.Type == model.HolidayObservance {
				add(holidayEvent(h, CategoryObservance))
			}
		}
	}
	if f.School {
		sel := selection(b, f.Regions)
		names := regionNames(b.Regions)
		for _, s := range b.SchoolHolidays {
			matched := matchRegions(s.Regions, sel)
			if len(matched) == 0 {
				continue
			}
			add(schoolEvent(s, matched, names))
		}
	}
	return out
}

func holidayEvent(h model.Holiday, category string) Event {
	return Event{
		UID:      h.Date.Compact() + "-" + Slug(h.Name),
		Start:    h.Date,
		End:      exclusiveEnd(h.Date, h.Date),
		Summary:  h.Name,
		Category: category,
	}
}

func schoolEvent(s model.BundleSchoolHoliday, matched []string, names map[string]string) Event {
	display := make([]string, len(matched))
	for i, id := range matched {
		display[i] = names[id]
		if display[i] == "" {
			display[i] = id
		}
	}
	return Event{
		UID:      s.Start.Compact() + "-" + Slug(s.Name) + "-" + Slug(strings.Join(matched, "-")),
		Start:    s.Start,
		End:      exclusiveEnd(s.Start, s.End),
		Summary:  s.Name + " (" + strings.Join(display, ", ") + ")",
		Category: CategorySchoolHoliday,
	}
}

// exclusiveEnd returns the day after the inclusive last day, never before
// the day after start.
func exclusiveEnd(start, last calmath.Date) calmath.Date {
	if last.Before(start) {
		last = start
	}
	return last.AddDays(1)
}

// selection resolves the requested region set. nil means every region
// referenced by the bundle.
func selection(b model.Bundle, regions []string) map[string]struct{} {
	sel := make(map[string]struct{})
	if regions == nil {
		for _, s := range b.SchoolHolidays {
			for _, id := range s.Regions {
				sel[id] = struct{}{}
			}
		}
		return sel
	}
	for _, id := range regions {
		sel[id] = struct{}{}
	}
	return sel
}

// matchRegions keeps the span's regions that are selected, in span order.
func matchRegions(span []string, sel map[string]struct{}) []string {
	var out []string
	for _, id := range span {
		if _, ok := sel[id]; ok {
			out = append(out, id)
		}
	}
	return out
}

func regionNames(rs []model.Region) map[string]string {
	m := make(map[string]string, len(rs))
	for _, r := range rs {
		m[r.ID] = r.Name
	}
	return m
}
