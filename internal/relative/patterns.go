package relative

import (
	"embed"
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrMissingLocaleKey is matched by every MissingLocaleKeyError.
var ErrMissingLocaleKey = errors.New("missing locale key")

// ErrUnknownLocale is returned by Load for a locale with no embedded table.
var ErrUnknownLocale = errors.New("unknown locale")

// MissingLocaleKeyError names the template a pattern table lacks.
type MissingLocaleKeyError struct {
	Locale string
	Key    string
}

func (e *MissingLocaleKeyError) Error() string {
	return fmt.Sprintf("relative: locale %q has no %q template", e.Locale, e.Key)
}

func (e *MissingLocaleKeyError) Is(target error) bool { return target == ErrMissingLocaleKey }

// Position says where a direction marker sits relative to the quantity.
type Position int

const (
	PositionUnset Position = iota
	Prefix
	Suffix
)

func (p Position) String() string {
	switch p {
	case Prefix:
		return "prefix"
	case Suffix:
		return "suffix"
	default:
		return ""
	}
}

func (p Position) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

func (p *Position) UnmarshalText(b []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(b))) {
	case "prefix":
		*p = Prefix
	case "suffix":
		*p = Suffix
	case "":
		*p = PositionUnset
	default:
		return fmt.Errorf("relative: unknown marker position %q", string(b))
	}
	return nil
}

// Marker is a direction word ("ago", "in", "geleden", "vor") and where it goes.
type Marker struct {
	Word     string   `yaml:"word" json:"word"`
	Position Position `yaml:"position" json:"position"`
}

func (m Marker) IsZero() bool { return m.Word == "" || m.Position == PositionUnset }

// Apply wraps a bare "N unit" phrase with the marker.
func (m Marker) Apply(phrase string) string {
	if m.Position == Prefix {
		return m.Word + " " + phrase
	}
	return phrase + " " + m.Word
}

// Patterns is a locale's phrase table. Unit templates live in Units under
// keys such as "day_ago", "days_ago", "week_from_now", "years_from_now" and
// contain a "{count}" placeholder.
type Patterns struct {
	Locale      string            `yaml:"locale" json:"locale"`
	Today       string            `yaml:"today" json:"today"`
	Yesterday   string            `yaml:"yesterday" json:"yesterday"`
	Tomorrow    string            `yaml:"tomorrow" json:"tomorrow"`
	And         string            `yaml:"and" json:"and"`
	CurrentWeek string            `yaml:"current_week" json:"current_week"`
	Past        Marker            `yaml:"past" json:"past"`
	Future      Marker            `yaml:"future" json:"future"`
	Units       map[string]string `yaml:"units" json:"units"`
}

func (p Patterns) template(key string) (string, error) {
	var s string
	switch key {
	case "today":
		s = p.Today
	case "yesterday":
		s = p.Yesterday
	case "tomorrow":
		s = p.Tomorrow
	case "and":
		s = p.And
	default:
		s = p.Units[key]
	}
	if s == "" {
		return "", &MissingLocaleKeyError{Locale: p.Locale, Key: key}
	}
	return s, nil
}

func (p Patterns) render(key string, count int) (string, error) {
	tpl, err := p.template(key)
	if err != nil {
		return "", err
	}
	return strings.ReplaceAll(tpl, "{count}", fmt.Sprint(count)), nil
}

//go:embed locales/*.yaml
var localeFS embed.FS

// Parse decodes a YAML pattern table.
func Parse(data []byte) (Patterns, error) {
	var p Patterns
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Patterns{}, fmt.Errorf("relative: parse locale: %w", err)
	}
	return p, nil
}

// Load returns one of the embedded pattern tables ("en", "nl", "de").
func Load(locale string) (Patterns, error) {
	data, err := localeFS.ReadFile(path.Join("locales", locale+".yaml"))
	if err != nil {
		return Patterns{}, fmt.Errorf("relative: %w: %q", ErrUnknownLocale, locale)
	}
	p, err := Parse(data)
	if err != nil {
		return Patterns{}, err
	}
	if p.Locale == "" {
		p.Locale = locale
	}
	return p, nil
}

// Locales lists the embedded locale codes in sorted order.
func Locales() []string {
	entries, err := localeFS.ReadDir("locales")
	if err != nil {
		return nil
	}
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, strings.TrimSuffix(e.Name(), ".yaml"))
	}
	sort.Strings(out)
	return out
}
