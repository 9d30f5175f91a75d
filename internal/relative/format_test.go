package relative

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"daycal/internal/calmath"
)

func mustFormatter(t *testing.T, locale string) *Formatter {
	t.Helper()
	p, err := Load(locale)
	require.NoError(t, err)
	return New(p)
}

func TestFormat(t *testing.T) {
	ref := calmath.NewDate(2025, time.March, 20)

	tests := []struct {
		locale string
		target calmath.Date
		want   string
		dir    Direction
	}{
		{"en", ref, "today", Today},
		{"en", ref.AddDays(-1), "yesterday", Past},
		{"en", ref.AddDays(1), "tomorrow", Future},
		{"en", ref.AddDays(-10), "10 days ago", Past},
		{"en", ref.AddDays(7), "in 7 days", Future},
		{"en", ref.AddDays(-11), "1 week and 4 days ago", Past},
		{"en", calmath.NewDate(2025, time.April, 20), "in 1 month", Future},
		{"en", calmath.NewDate(2026, time.May, 29), "in 1 year, 2 months, 1 week and 2 days", Future},
		{"nl", ref.AddDays(-11), "1 week en 4 dagen geleden", Past},
		{"nl", calmath.NewDate(2025, time.May, 5), "over 1 maand, 2 weken en 1 dag", Future},
		{"nl", ref.AddDays(3), "over 3 dagen", Future},
		{"de", ref.AddDays(11), "in 1 Woche und 4 Tagen", Future},
		{"de", calmath.NewDate(2023, time.March, 20), "vor 2 Jahren", Past},
		{"de", ref, "heute", Today},
	}
	for _, tt := range tests {
		t.Run(tt.locale+" "+tt.target.String(), func(t *testing.T) {
			got, err := mustFormatter(t, tt.locale).Format(tt.target, ref)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Text)
			assert.Equal(t, tt.dir, got.Direction)
			assert.Equal(t, calmath.DayCount(ref, tt.target), got.Days)
		})
	}
}

func TestFormatMonthEndBorrow(t *testing.T) {
	f := mustFormatter(t, "en")

	got, err := f.Format(calmath.NewDate(2025, time.May, 1), calmath.NewDate(2025, time.March, 31))
	require.NoError(t, err)
	assert.Equal(t, "in 1 month", got.Text)

	got, err = f.Format(calmath.NewDate(2025, time.January, 31), calmath.NewDate(2025, time.March, 1))
	require.NoError(t, err)
	assert.Equal(t, "4 weeks and 1 day ago", got.Text)
}

func TestFormatInfersMarkersWhenUnset(t *testing.T) {
	for _, locale := range Locales() {
		t.Run(locale, func(t *testing.T) {
			explicit := mustFormatter(t, locale)

			p, err := Load(locale)
			require.NoError(t, err)
			p.Past, p.Future = Marker{}, Marker{}
			inferred := New(p)

			ref := calmath.NewDate(2025, time.June, 1)
			for _, offset := range []int{-400, -45, -11, 11, 45, 400} {
				want, err := explicit.Format(ref.AddDays(offset), ref)
				require.NoError(t, err)
				got, err := inferred.Format(ref.AddDays(offset), ref)
				require.NoError(t, err)
				assert.Equal(t, want.Text, got.Text)
			}
		})
	}
}

func TestFormatEnglishFallbackMarkers(t *testing.T) {
	f := New(Patterns{
		Locale: "xx",
		And:    "&",
		Units: map[string]string{
			"weeks_from_now": "{count} weeks",
			"days_from_now":  "{count} days",
		},
	})
	got, err := f.Format(calmath.NewDate(2025, 1, 17), calmath.NewDate(2025, 1, 1))
	require.NoError(t, err)
	assert.Equal(t, "in 2 weeks & 2 days", got.Text)
}

func TestFormatMissingUnitFallsBackToDays(t *testing.T) {
	p, err := Load("en")
	require.NoError(t, err)
	delete(p.Units, "week_ago")
	f := New(p)

	ref := calmath.NewDate(2025, time.March, 20)
	got, err := f.Format(ref.AddDays(-11), ref)
	require.NoError(t, err)
	assert.Equal(t, "11 days ago", got.Text)
}

func TestFormatMissingDayTemplate(t *testing.T) {
	p, err := Load("en")
	require.NoError(t, err)
	delete(p.Units, "days_ago")
	delete(p.Units, "week_ago")
	f := New(p)

	ref := calmath.NewDate(2025, time.March, 20)
	_, err = f.Format(ref.AddDays(-11), ref)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingLocaleKey))

	var mk *MissingLocaleKeyError
	require.True(t, errors.As(err, &mk))
	assert.Equal(t, "days_ago", mk.Key)
	assert.Equal(t, "en", mk.Locale)
}

func TestLoad(t *testing.T) {
	assert.Equal(t, []string{"de", "en", "nl"}, Locales())

	_, err := Load("fr")
	assert.ErrorIs(t, err, ErrUnknownLocale)

	p, err := Load("nl")
	require.NoError(t, err)
	assert.Equal(t, Marker{Word: "geleden", Position: Suffix}, p.Past)
	assert.Equal(t, "Huidige week", p.CurrentWeek)
}
