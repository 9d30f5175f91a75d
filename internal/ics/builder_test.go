package ics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"daycal/internal/calmath"
	"daycal/internal/model"
)

func d(y int, m time.Month, day int) calmath.Date { return calmath.NewDate(y, m, day) }

func sampleBundle() model.Bundle {
	return model.Bundle{
		Holidays: []model.Holiday{
			{Name: "Christmas", Type: model.HolidayPublic, Date: d(2025, time.December, 25)},
			{Name: "Valentine's Day", Type: model.HolidayObservance, Date: d(2025, time.February, 14)},
			{Name: "New Year's Day", Type: model.HolidayPublic, Date: d(2025, time.January, 1)},
			{Name: "Christmas", Type: model.HolidayPublic, Date: d(2025, time.December, 25)},
		},
		SchoolHolidays: []model.BundleSchoolHoliday{
			{Name: "Autumn break", Start: d(2025, time.October, 18), End: d(2025, time.October, 26), Regions: []string{"north", "south"}},
			{Name: "Carnival", Start: d(2026, time.February, 14), End: d(2026, time.February, 22), Regions: []string{"south"}},
		},
		Regions: []model.Region{
			{ID: "north", Name: "Noord"},
			{ID: "south", Name: "Zuid"},
		},
	}
}

func TestSlug(t *testing.T) {
	cases := map[string]string{
		"Christmas":            "christmas",
		"New Year's Day":       "new-year-s-day",
		"  --Autumn  break-- ": "autumn-break",
		"Kerst & Oud/Nieuw":    "kerst-oud-nieuw",
		"Pfingstmontag 2025":   "pfingstmontag-2025",
		"Ëïö":                  "",
		"":                     "",
	}
	for in, want := range cases {
		t.Run(in, func(t *testing.T) {
			assert.Equal(t, want, Slug(in))
		})
	}
}

func TestBuildEventsHolidays(t *testing.T) {
	events := BuildEvents(sampleBundle(), Filter{Public: true, Observances: true})
	require.Len(t, events, 3)

	assert.Equal(t, Event{
		UID:      "20251225-christmas",
		Start:    d(2025, time.December, 25),
		End:      d(2025, time.December, 26),
		Summary:  "Christmas",
		Category: CategoryHoliday,
	}, events[0])
	assert.Equal(t, "20250101-new-year-s-day", events[1].UID)
	assert.Equal(t, CategoryObservance, events[2].Category)
	assert.Equal(t, "20250214-valentine-s-day", events[2].UID)

	for _, e := range events {
		assert.True(t, e.End.After(e.Start), e.UID)
	}
}

func TestBuildEventsSchoolRegions(t *testing.T) {
	b := sampleBundle()

	all := BuildEvents(b, Filter{School: true})
	require.Len(t, all, 2)
	assert.Equal(t, "Autumn break (Noord, Zuid)", all[0].Summary)
	assert.Equal(t, "20251018-autumn-break-north-south", all[0].UID)
	assert.Equal(t, d(2025, time.October, 27), all[0].End)
	assert.Equal(t, CategorySchoolHoliday, all[0].Category)

	north := BuildEvents(b, Filter{School: true, Regions: []string{"north"}})
	require.Len(t, north, 1)
	assert.Equal(t, "Autumn break (Noord)", north[0].Summary)
	assert.NotContains(t, north[0].Summary, "Zuid")
	assert.Equal(t, "20251018-autumn-break-north", north[0].UID)
	assert.NotEqual(t, all[0].UID, north[0].UID)

	none := BuildEvents(b, Filter{School: true, Regions: []string{}})
	assert.Empty(t, none)

	unknown := BuildEvents(b, Filter{School: true, Regions: []string{"east"}})
	assert.Empty(t, unknown)
}

func TestBuildEventsUnknownRegionName(t *testing.T) {
	b := sampleBundle()
	b.Regions = nil

	events := BuildEvents(b, Filter{School: true, Regions: []string{"south"}})
	require.Len(t, events, 2)
	assert.Equal(t, "Autumn break (south)", events[0].Summary)
}

func TestBuildEventsOrderAndClamp(t *testing.T) {
	b := sampleBundle()
	b.SchoolHolidays = append(b.SchoolHolidays, model.BundleSchoolHoliday{
		Name: "Backwards", Start: d(2025, time.July, 10), End: d(2025, time.July, 1), Regions: []string{"north"},
	})

	events := BuildEvents(b, Filter{Public: true, Observances: true, School: true})
	cats := make([]string, len(events))
	for i, e := range events {
		cats[i] = e.Category
	}
	assert.Equal(t, []string{
		CategoryHoliday, CategoryHoliday,
		CategoryObservance,
		CategorySchoolHoliday, CategorySchoolHoliday, CategorySchoolHoliday,
	}, cats)

	last := events[len(events)-1]
	assert.Equal(t, d(2025, time.July, 11), last.End)
}

func TestBuildEventsEmptyFilter(t *testing.T) {
	assert.Empty(t, BuildEvents(sampleBundle(), Filter{}))
	assert.Empty(t, BuildEvents(sampleBundle(), Filter{Regions: []string{"north"}}))
	assert.Empty(t, BuildEvents(model.Bundle{}, Filter{Public: true, Observances: true, School: true}))
}
