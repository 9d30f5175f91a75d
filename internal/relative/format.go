// Package relative renders "N days/weeks/months/years ago/from now" labels
// from a per-locale pattern table.
package relative

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"daycal/internal/calmath"
)

// simpleLimit is the largest absolute day count rendered as plain days.
const simpleLimit = 10

// Direction of a label relative to its reference date.
type Direction int

const (
	Today Direction = iota
	Past
	Future
)

func (d Direction) String() string {
	switch d {
	case Past:
		return "past"
	case Future:
		return "future"
	default:
		return "today"
	}
}

func (d Direction) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

func (d *Direction) UnmarshalText(b []byte) error {
	switch string(b) {
	case "past":
		*d = Past
	case "future":
		*d = Future
	case "today":
		*d = Today
	default:
		return fmt.Errorf("relative: unknown direction %q", b)
	}
	return nil
}

// Label is a rendered relative phrase.
type Label struct {
	Text      string    `json:"text"`
	Direction Direction `json:"direction"`
	Days      int       `json:"days"`
}

var (
	englishPast   = Marker{Word: "ago", Position: Suffix}
	englishFuture = Marker{Word: "in", Position: Prefix}

	knownPrefixes = []string{"in", "over", "vor"}
	knownSuffixes = []string{"ago", "geleden"}
)

// Formatter renders labels for one locale. It is immutable and safe for
// concurrent use.
type Formatter struct {
	p      Patterns
	past   Marker
	future Marker
	prefix *regexp.Regexp
	suffix *regexp.Regexp
}

// New builds a Formatter. Markers missing from p are inferred from the
// shape of its days_ago / days_from_now templates; English markers are used
// when those templates are absent or carry no marker word.
func New(p Patterns) *Formatter {
	f := &Formatter{p: p, past: p.Past, future: p.Future}
	if f.past.IsZero() {
		f.past = inferMarker(p.Units["days_ago"], englishPast)
	}
	if f.future.IsZero() {
		f.future = inferMarker(p.Units["days_from_now"], englishFuture)
	}

	prefixes := append([]string{}, knownPrefixes...)
	suffixes := append([]string{}, knownSuffixes...)
	for _, m := range []Marker{f.past, f.future} {
		if m.Position == Prefix {
			prefixes = append(prefixes, m.Word)
		} else {
			suffixes = append(suffixes, m.Word)
		}
	}
	f.prefix = regexp.MustCompile(`(?i)^(?:` + alternation(prefixes) + `)\s+`)
	f.suffix = regexp.MustCompile(`(?i)\s+(?:` + alternation(suffixes) + `)$`)
	return f
}

// Patterns returns the table the formatter was built from.
func (f *Formatter) Patterns() Patterns { return f.p }

// Format renders target relative to ref. Within ten days the label is a
// plain day count; beyond that it is a chunked phrase such as
// "1 month, 2 weeks and 3 days ago".
//
// A missing unit template in the chunked path falls back to the day-count
// phrasing; the *MissingLocaleKeyError is returned only when that fallback
// is missing as well.
func (f *Formatter) Format(target, ref calmath.Date) (Label, error) {
	n := calmath.DayCount(ref, target)
	if abs(n) <= simpleLimit {
		return f.FormatDays(n)
	}

	past := n < 0
	var diff calmath.Difference
	if past {
		diff = calmath.FieldDifference(target, ref)
	} else {
		diff = calmath.FieldDifference(ref, target)
	}

	text, err := f.chunked(diff, past)
	if err != nil || text == "" {
		if err != nil && !errors.Is(err, ErrMissingLocaleKey) {
			return Label{}, err
		}
		return f.FormatDays(n)
	}
	return Label{Text: text, Direction: direction(n), Days: n}, nil
}

// FormatDays renders a signed day offset using only today/yesterday/tomorrow
// and the day templates.
func (f *Formatter) FormatDays(n int) (Label, error) {
	var key string
	count := abs(n)
	switch {
	case n == 0:
		key = "today"
	case n == -1:
		key = "yesterday"
	case n == 1:
		key = "tomorrow"
	default:
		key = unitKey("day", count, n < 0)
	}
	text, err := f.p.render(key, count)
	if err != nil {
		return Label{}, err
	}
	return Label{Text: text, Direction: direction(n), Days: n}, nil
}

func (f *Formatter) chunked(diff calmath.Difference, past bool) (string, error) {
	units := []struct {
		name  string
		count int
	}{
		{"year", diff.Years},
		{"month", diff.Months},
		{"week", diff.Weeks},
		{"day", diff.Days},
	}

	parts := make([]string, 0, len(units))
	for _, u := range units {
		if u.count <= 0 {
			continue
		}
		s, err := f.p.render(unitKey(u.name, u.count, past), u.count)
		if err != nil {
			return "", err
		}
		parts = append(parts, f.bare(s))
	}
	if len(parts) == 0 {
		return "", nil
	}

	joined := parts[0]
	if len(parts) > 1 {
		and, err := f.p.template("and")
		if err != nil {
			return "", err
		}
		last := len(parts) - 1
		joined = strings.Join(parts[:last], ", ") + " " + and + " " + parts[last]
	}

	if past {
		return f.past.Apply(joined), nil
	}
	return f.future.Apply(joined), nil
}

// bare strips a rendered fragment down to "N unit".
func (f *Formatter) bare(s string) string {
	s = f.prefix.ReplaceAllString(s, "")
	return f.suffix.ReplaceAllString(s, "")
}

func unitKey(unit string, count int, past bool) string {
	if count != 1 {
		unit += "s"
	}
	if past {
		return unit + "_ago"
	}
	return unit + "_from_now"
}

// inferMarker reads the marker off a day template: a leading word before
// "{count}" is a prefix marker, otherwise the trailing word is a suffix
// marker.
func inferMarker(tpl string, fallback Marker) Marker {
	fields := strings.Fields(tpl)
	if len(fields) < 3 {
		return fallback
	}
	if fields[0] != "{count}" {
		return Marker{Word: fields[0], Position: Prefix}
	}
	return Marker{Word: fields[len(fields)-1], Position: Suffix}
}

func alternation(words []string) string {
	quoted := make([]string, 0, len(words))
	for _, w := range words {
		if w != "" {
			quoted = append(quoted, regexp.QuoteMeta(w))
		}
	}
	return strings.Join(quoted, "|")
}

func direction(n int) Direction {
	switch {
	case n < 0:
		return Past
	case n > 0:
		return Future
	default:
		return Today
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
