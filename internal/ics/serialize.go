package ics

import (
	"strings"
	"unicode/utf8"
)

const (
	crlf = "\r\n"

	// maxLineOctets is the longest content line allowed before folding.
	maxLineOctets = 75

	DefaultCalendarName = "Calendar"
	DefaultDomain       = "calendar.local"
	DefaultFilename     = "calendar"
)

// Calendar carries the document-level metadata.
type Calendar struct {
	Name   string
	Domain string
}

func (c Calendar) withDefaults() Calendar {
	if strings.TrimSpace(c.Name) == "" {
		c.Name = DefaultCalendarName
	}
	if strings.TrimSpace(c.Domain) == "" {
		c.Domain = DefaultDomain
	}
	return c
}

// Serialize renders events as a VCALENDAR document with CRLF line endings.
// Every content line is folded at 75 octets.
func Serialize(cal Calendar, events []Event) []byte {
	cal = cal.withDefaults()

	var b strings.Builder
	line := func(s string) {
		b.WriteString(foldLine(s))
		b.WriteString(crlf)
	}

	line("BEGIN:VCALENDAR")
	line("VERSION:2.0")
	line("PRODID:-//" + cal.Domain + "//Calendar//EN")
	line("CALSCALE:GREGORIAN")
	line("METHOD:PUBLISH")
	line("X-WR-CALNAME:" + escapeText(cal.Name))

	for _, e := range events {
		line("BEGIN:VEVENT")
		line("UID:" + e.UID + "@" + cal.Domain)
		line("DTSTART;VALUE=DATE:" + e.Start.Compact())
		line("DTEND;VALUE=DATE:" + e.End.Compact())
		line("SUMMARY:" + escapeText(e.Summary))
		line("CATEGORIES:" + e.Category)
		line("TRANSP:TRANSPARENT")
		line("END:VEVENT")
	}

	line("END:VCALENDAR")
	return []byte(b.String())
}

// foldLine splits s into a first line of at most 75 octets and continuation
// lines of a space plus at most 74 octets. Cuts never fall inside a UTF-8
// sequence, so a physical line may come out shorter.
func foldLine(s string) string {
	if len(s) <= maxLineOctets {
		return s
	}

	var b strings.Builder
	b.Grow(len(s) + len(s)/maxLineOctets*3)

	limit := maxLineOctets
	for len(s) > limit {
		cut := limit
		for cut > 0 && !utf8.RuneStart(s[cut]) {
			cut--
		}
		b.WriteString(s[:cut])
		b.WriteString(crlf + " ")
		s = s[cut:]
		limit = maxLineOctets - 1
	}
	b.WriteString(s)
	return b.String()
}

// unfold reverses foldLine over a whole document.
func unfold(s string) string {
	return strings.ReplaceAll(s, crlf+" ", "")
}

var textEscaper = strings.NewReplacer(
	`\`, `\\`,
	";", `\;`,
	",", `\,`,
	"\r\n", `\n`,
	"\n", `\n`,
	"\r", `\n`,
)

// escapeText escapes a TEXT property value.
func escapeText(s string) string {
	return textEscaper.Replace(s)
}
