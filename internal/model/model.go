package model

import "daycal/internal/calmath"

// HolidayType distinguishes public holidays from observances.
type HolidayType string

const (
	HolidayPublic     HolidayType = "public"
	HolidayObservance HolidayType = "observance"
)

// MoonPhase is one of the four principal lunar phases.
type MoonPhase string

const (
	MoonNew          MoonPhase = "new_moon"
	MoonFirstQuarter MoonPhase = "first_quarter"
	MoonFull         MoonPhase = "full_moon"
	MoonLastQuarter  MoonPhase = "last_quarter"
)

// Icon returns the emoji shown next to the phase name.
func (p MoonPhase) Icon() string {
	switch p {
	case MoonNew:
		return "\U0001F311"
	case MoonFirstQuarter:
		return "\U0001F313"
	case MoonFull:
		return "\U0001F315"
	case MoonLastQuarter:
		return "\U0001F317"
	default:
		return ""
	}
}

// Holiday is a single public holiday or observance.
type Holiday struct {
	Name string       `json:"name" validate:"required"`
	Type HolidayType  `json:"type" validate:"required,oneof=public observance"`
	Date calmath.Date `json:"date" validate:"required"`
}

// SchoolSpan is a school-holiday period for a set of regions. Start and End
// are both inclusive. In per-day records they may be omitted.
type SchoolSpan struct {
	Name    string        `json:"name"`
	Regions []string      `json:"regions"`
	Start   *calmath.Date `json:"start,omitempty"`
	End     *calmath.Date `json:"end,omitempty"`
}

// SunTimes holds sunrise and sunset for one city, as display strings.
type SunTimes struct {
	City string `json:"city"`
	Rise string `json:"rise"`
	Set  string `json:"set"`
}

// MoonEvent is a principal moon phase falling on a day.
type MoonEvent struct {
	Phase MoonPhase `json:"phase"`
	Name  string    `json:"name"`
	Time  string    `json:"time,omitempty"`
}

// DayRecord is the metadata for one date of /data/{year}.json.
type DayRecord struct {
	Holidays []Holiday    `json:"holidays,omitempty"`
	School   []SchoolSpan `json:"school,omitempty"`
	Sun      []SunTimes   `json:"sun,omitempty"`
	Moon     *MoonEvent   `json:"moon,omitempty"`
}

// HolidaysOfType filters r.Holidays by type.
func (r DayRecord) HolidaysOfType(t HolidayType) []Holiday {
	var out []Holiday
	for _, h := range r.Holidays {
		if h.Type == t {
			out = append(out, h)
		}
	}
	return out
}

// YearData maps "YYYY-MM-DD" to the record of that date. A missing key
// means there is no metadata for the date.
type YearData map[string]DayRecord

// Region is an administrative subdivision scoping school holidays.
type Region struct {
	ID   string `json:"id" validate:"required"`
	Name string `json:"name"`
}

// BundleSchoolHoliday is a school-holiday span in an export bundle.
type BundleSchoolHoliday struct {
	Name    string       `json:"name" validate:"required"`
	Start   calmath.Date `json:"start" validate:"required"`
	End     calmath.Date `json:"end" validate:"required"`
	Regions []string     `json:"regions"`
}

// Bundle is the export input embedded by the page that offers a download.
type Bundle struct {
	Holidays       []Holiday             `json:"holidays" validate:"dive"`
	SchoolHolidays []BundleSchoolHoliday `json:"school_holidays" validate:"dive"`
	Regions        []Region              `json:"regions" validate:"dive"`
	CalendarName   string                `json:"calendar_name"`
	Domain         string                `json:"domain"`
	Filename       string                `json:"filename"`
}
