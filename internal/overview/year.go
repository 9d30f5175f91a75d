package overview

import (
	"context"

	"daycal/internal/calmath"
	"daycal/internal/model"
	"daycal/internal/relative"
)

// DefaultMoonLimit is how many upcoming moon phases are listed by default.
const DefaultMoonLimit = 4

// HolidayRow is a holiday with its day-count label.
type HolidayRow struct {
	model.Holiday
	Label relative.Label `json:"relative"`
}

// Holidays lists the public holidays and observances of a year in date
// order. Unavailable years yield an empty list.
func (s *Service) Holidays(ctx context.Context, year int) ([]HolidayRow, error) {
	data, _ := s.src.Year(ctx, year)
	today := s.Today()

	var out []HolidayRow
	for _, d := range sortedDays(data) {
		for _, h := range data[d.String()].Holidays {
			if h.Date.IsZero() {
				h.Date = d
			}
			l, err := s.rel.FormatDays(calmath.DayCount(today, d))
			if err != nil {
				return nil, err
			}
			out = append(out, HolidayRow{Holiday: h, Label: l})
		}
	}
	return out, nil
}

// MoonRow is an upcoming moon phase.
type MoonRow struct {
	Date  calmath.Date   `json:"date"`
	Moon  MoonInfo       `json:"moon"`
	Label relative.Label `json:"relative"`
}

// UpcomingMoon returns the next limit moon phases on or after today,
// continuing into next year's data when this year runs out. A limit of
// zero or less means DefaultMoonLimit.
func (s *Service) UpcomingMoon(ctx context.Context, limit int) ([]MoonRow, error) {
	if limit <= 0 {
		limit = DefaultMoonLimit
	}
	today := s.Today()

	out := make([]MoonRow, 0, limit)
	for _, year := range []int{today.Year, today.Year + 1} {
		data, _ := s.src.Year(ctx, year)
		for _, d := range sortedDays(data) {
			if d.Before(today) {
				continue
			}
			m := data[d.String()].Moon
			if m == nil {
				continue
			}
			l, err := s.rel.FormatDays(calmath.DayCount(today, d))
			if err != nil {
				return nil, err
			}
			out = append(out, MoonRow{
				Date:  d,
				Moon:  MoonInfo{Phase: m.Phase, Name: m.Name, Time: m.Time, Icon: m.Phase.Icon()},
				Label: l,
			})
			if len(out) == limit {
				return out, nil
			}
		}
	}
	return out, nil
}
