package overview

import (
	"fmt"
	"time"

	"github.com/teambition/rrule-go"

	"daycal/internal/calmath"
)

// defaultCurrentWeek labels the current week when the locale has no
// current_week text.
const defaultCurrentWeek = "Current week"

// WeekRow is one ISO week of the week table.
type WeekRow struct {
	Week    int          `json:"week"`
	Start   calmath.Date `json:"start"`
	End     calmath.Date `json:"end"`
	Current bool         `json:"current"`
	Label   string       `json:"label"`
}

// WeekTable lists every ISO week of an ISO year. Each row is labelled with
// the day-count phrase of its Monday, or the current-week text for the week
// containing today ("Current week" when the locale has none).
func (s *Service) WeekTable(year int) ([]WeekRow, error) {
	n := calmath.ISOWeeksInYear(year)
	first := calmath.ISOWeekStart(year, 1)

	r, err := rrule.NewRRule(rrule.ROption{
		Freq:      rrule.WEEKLY,
		Dtstart:   first.Time(time.UTC),
		Count:     n,
		Byweekday: []rrule.Weekday{rrule.MO},
	})
	if err != nil {
		return nil, fmt.Errorf("overview: week rule: %w", err)
	}

	today := s.Today()
	curYear, curWeek := calmath.ISOWeek(today)
	p := s.rel.Patterns()

	mondays := r.All()
	rows := make([]WeekRow, 0, len(mondays))
	for i, t := range mondays {
		start := calmath.FromTime(t)
		row := WeekRow{
			Week:    i + 1,
			Start:   start,
			End:     start.AddDays(6),
			Current: year == curYear && i+1 == curWeek,
		}
		if row.Current {
			row.Label = p.CurrentWeek
			if row.Label == "" {
				row.Label = defaultCurrentWeek
			}
		} else {
			l, err := s.rel.FormatDays(calmath.DayCount(today, start))
			if err != nil {
				return nil, err
			}
			row.Label = l.Text
		}
		rows = append(rows, row)
	}
	return rows, nil
}
