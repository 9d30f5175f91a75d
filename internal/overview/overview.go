// Package overview derives the per-day, per-week and per-year views that the
// calendar page shows from the cached day data.
package overview

import (
	"context"
	"sort"
	"time"

	"daycal/internal/calmath"
	"daycal/internal/daydata"
	"daycal/internal/model"
	"daycal/internal/relative"
)

// Source is the part of daydata.Store the views need.
type Source interface {
	Year(ctx context.Context, year int) (model.YearData, daydata.YearState)
}

// Service renders views relative to "today" in its location.
type Service struct {
	src     Source
	rel     *relative.Formatter
	loc     *time.Location
	regions map[string]string
	now     func() time.Time
}

type Option func(*Service)

// WithLocation sets the zone that decides the current date.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithRegions sets display names for school-holiday region IDs.
func WithRegions(names map[string]string) Option {
	return func(s *Service) { s.regions = names }
}

// WithClock replaces time.Now; used by tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func New(src Source, f *relative.Formatter, opts ...Option) *Service {
	s := &Service{
		src: src,
		rel: f,
		loc: time.Local,
		now: time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Today returns the current date in the service location.
func (s *Service) Today() calmath.Date {
	return calmath.FromTime(s.now().In(s.loc))
}

// Formatter returns the relative-label formatter in use.
func (s *Service) Formatter() *relative.Formatter { return s.rel }

// TodayInfo is the header widget: date, weekday and ISO week.
type TodayInfo struct {
	Date    calmath.Date `json:"date"`
	Weekday string       `json:"weekday"`
	ISOYear int          `json:"iso_year"`
	ISOWeek int          `json:"iso_week"`
}

func (s *Service) TodayInfo() TodayInfo {
	d := s.Today()
	y, w := calmath.ISOWeek(d)
	return TodayInfo{Date: d, Weekday: d.Weekday().String(), ISOYear: y, ISOWeek: w}
}

// YearWindow lists the years from current-past to current+future. Negative
// bounds count as zero.
func (s *Service) YearWindow(past, future int) []int {
	if past < 0 {
		past = 0
	}
	if future < 0 {
		future = 0
	}
	cur := s.Today().Year
	out := make([]int, 0, past+future+1)
	for y := cur - past; y <= cur+future; y++ {
		out = append(out, y)
	}
	return out
}

func (s *Service) regionName(id string) string {
	if n := s.regions[id]; n != "" {
		return n
	}
	return id
}

// sortedDays returns the dated keys of a year in calendar order, skipping
// keys that are not dates.
func sortedDays(data model.YearData) []calmath.Date {
	out := make([]calmath.Date, 0, len(data))
	for k := range data {
		d, err := calmath.ParseDate(k)
		if err != nil {
			continue
		}
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}
