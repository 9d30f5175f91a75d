package overview

import (
	"context"

	"daycal/internal/calmath"
	"daycal/internal/model"
	"daycal/internal/relative"
)

// SchoolInfo is a school holiday with region display names.
type SchoolInfo struct {
	Name    string   `json:"name"`
	Regions []string `json:"regions"`
}

// MoonInfo is a moon phase with its icon.
type MoonInfo struct {
	Phase model.MoonPhase `json:"phase"`
	Name  string          `json:"name"`
	Time  string          `json:"time,omitempty"`
	Icon  string          `json:"icon"`
}

// DayInfo is everything known about one date.
type DayInfo struct {
	Date     calmath.Date   `json:"date"`
	Weekday  string         `json:"weekday"`
	ISOYear  int            `json:"iso_year"`
	ISOWeek  int            `json:"iso_week"`
	Relative relative.Label `json:"relative"`

	// HasData is false when the year has no record for the date.
	HasData     bool             `json:"has_data"`
	Public      []model.Holiday  `json:"public"`
	Observances []model.Holiday  `json:"observances"`
	School      []SchoolInfo     `json:"school"`
	Sun         []model.SunTimes `json:"sun"`
	Moon        *MoonInfo        `json:"moon,omitempty"`
}

// Day builds the info of d, labelled relative to today.
func (s *Service) Day(ctx context.Context, d calmath.Date) (DayInfo, error) {
	label, err := s.rel.Format(d, s.Today())
	if err != nil {
		return DayInfo{}, err
	}

	y, w := calmath.ISOWeek(d)
	info := DayInfo{
		Date:     d,
		Weekday:  d.Weekday().String(),
		ISOYear:  y,
		ISOWeek:  w,
		Relative: label,
	}

	data, _ := s.src.Year(ctx, d.Year)
	rec, ok := data[d.String()]
	if !ok {
		return info, nil
	}
	info.HasData = true
	info.Public = rec.HolidaysOfType(model.HolidayPublic)
	info.Observances = rec.HolidaysOfType(model.HolidayObservance)
	info.Sun = rec.Sun

	for _, sp := range rec.School {
		names := make([]string, len(sp.Regions))
		for i, id := range sp.Regions {
			names[i] = s.regionName(id)
		}
		info.School = append(info.School, SchoolInfo{Name: sp.Name, Regions: names})
	}
	if rec.Moon != nil {
		info.Moon = &MoonInfo{
			Phase: rec.Moon.Phase,
			Name:  rec.Moon.Name,
			Time:  rec.Moon.Time,
			Icon:  rec.Moon.Phase.Icon(),
		}
	}
	return info, nil
}
