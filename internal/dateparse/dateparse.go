// Package dateparse normalizes noisy pt-BR date/time text into timestamps.
//
// Site-scraped dates arrive in many shapes: "Quarta-Feira, 20 de Agosto de
// 2025, 11h30 | Atualizado: ...", "20/08/2025 14:03", "21 ago 2025 10h",
// ISO-8601 strings from meta tags. The pipeline strips trailing noise,
// removes weekday names, normalizes hour markers and connectors, translates
// month names to English, and only then hands the cleaned string to a
// day-first parser with a regex fallback. Every stage is idempotent and no
// input ever causes a panic.
package dateparse

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	fuzzytime "github.com/araddon/dateparse"
)

var (
	whitespaceRe = regexp.MustCompile(`\s+`)

	// Trailing noise: "Atualizado:"/"Publicado:" and everything after,
	// pipe-delimited tails and en/em-dash tails.
	tailRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\batualizado\b.*$`),
		regexp.MustCompile(`(?i)\bpublicado\b.*$`),
		regexp.MustCompile(`\|.*$`),
		regexp.MustCompile(`–.*$`),
		regexp.MustCompile(`—.*$`),
	}

	// Weekday names, with or without "-feira" and a trailing comma.
	weekdayRe = regexp.MustCompile(`(?i)\b(segunda|ter[cç]a|quarta|quinta|sexta|s[áa]bado|domingo)(-feira)?\b,?`)

	// Connectors. "às" starts with a non-ASCII rune, so it gets its own
	// pattern without a leading word boundary.
	connectorRe = regexp.MustCompile(`(?i)\b(as|de)\b`)
	aGraveRe    = regexp.MustCompile(`(?i)às`)

	// "11h30" / "11h:30" -> "11:30", then bare "11h" -> "11:00".
	hourMinuteRe = regexp.MustCompile(`(\d{1,2})h:?(\d{2})`)
	hourOnlyRe   = regexp.MustCompile(`(\d{1,2})h\b`)

	// D/M/Y with optional time, 2- or 4-digit year.
	numericDateRe = regexp.MustCompile(`(\d{1,2})[/-](\d{1,2})[/-](\d{2,4})(?:\s+(\d{1,2}):(\d{2})(?::(\d{2}))?)?`)
)

// longFormLayouts cover the day-first month-name shapes normalization
// produces ("20 August 2025 11:30"). The fuzzy parser rejects these, so
// they are tried explicitly first.
var longFormLayouts = []string{
	"2 January 2006 15:04:05",
	"2 January 2006 15:04",
	"2 January 2006",
}

// monthTranslations maps pt-BR month names (full and 3-letter) to names the
// downstream parser recognizes. Order matters: the full form must win over
// its abbreviation.
var monthTranslations = []struct {
	re *regexp.Regexp
	en string
}{
	{regexp.MustCompile(`(?i)\b(janeiro|jan)\b`), "January"},
	{regexp.MustCompile(`(?i)\b(fevereiro|fev)\b`), "February"},
	{regexp.MustCompile(`(?i)\b(mar[cç]o|mar)\b`), "March"},
	{regexp.MustCompile(`(?i)\b(abril|abr)\b`), "April"},
	{regexp.MustCompile(`(?i)\b(maio|mai)\b`), "May"},
	{regexp.MustCompile(`(?i)\b(junho|jun)\b`), "June"},
	{regexp.MustCompile(`(?i)\b(julho|jul)\b`), "July"},
	{regexp.MustCompile(`(?i)\b(agosto|ago)\b`), "August"},
	{regexp.MustCompile(`(?i)\b(setembro|set)\b`), "September"},
	{regexp.MustCompile(`(?i)\b(outubro|out)\b`), "October"},
	{regexp.MustCompile(`(?i)\b(novembro|nov)\b`), "November"},
	{regexp.MustCompile(`(?i)\b(dezembro|dez)\b`), "December"},
}

// Parse converts raw pt-BR date text into a timestamp in the local zone.
// The second return value is false when no date could be recovered; Parse
// never panics on garbage input.
func Parse(raw string) (time.Time, bool) {
	return ParseIn(raw, time.Local)
}

// ParseIn is Parse with an explicit location for naive results.
func ParseIn(raw string, loc *time.Location) (time.Time, bool) {
	if strings.TrimSpace(raw) == "" {
		return time.Time{}, false
	}

	candidate := Normalize(raw)
	if candidate == "" {
		return time.Time{}, false
	}

	for _, layout := range longFormLayouts {
		if ts, err := time.ParseInLocation(layout, candidate, loc); err == nil {
			return ts, true
		}
	}

	if ts, err := fuzzytime.ParseIn(candidate, loc,
		fuzzytime.PreferMonthFirst(false),
		fuzzytime.RetryAmbiguousDateWithSwap(true),
	); err == nil {
		return ts, true
	}

	if ts, ok := parseNumeric(candidate, loc); ok {
		return ts, true
	}

	return time.Time{}, false
}

// Normalize runs the text-cleanup stages and returns the candidate string
// handed to the parser. Exposed for tests and debugging of rule output.
func Normalize(raw string) string {
	s := strings.TrimSpace(whitespaceRe.ReplaceAllString(raw, " "))

	for _, re := range tailRes {
		s = strings.TrimSpace(re.ReplaceAllString(s, ""))
	}

	s = weekdayRe.ReplaceAllString(s, "")

	s = aGraveRe.ReplaceAllString(s, " ")
	s = connectorRe.ReplaceAllString(s, " ")

	s = hourMinuteRe.ReplaceAllString(s, "$1:$2")
	s = hourOnlyRe.ReplaceAllString(s, "$1:00")

	for _, m := range monthTranslations {
		s = m.re.ReplaceAllString(s, m.en)
	}

	s = strings.ReplaceAll(s, ",", " ")
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}

// parseNumeric is the last-resort D[/-]M[/-]Y parser. Two-digit years are
// read as 2000+YY; missing time components default to 00:00:00.
func parseNumeric(candidate string, loc *time.Location) (time.Time, bool) {
	m := numericDateRe.FindStringSubmatch(candidate)
	if m == nil {
		return time.Time{}, false
	}

	day, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	year, _ := strconv.Atoi(m[3])
	if len(m[3]) == 2 {
		year += 2000
	}

	hour, minute, sec := 0, 0, 0
	if m[4] != "" {
		hour, _ = strconv.Atoi(m[4])
		minute, _ = strconv.Atoi(m[5])
		if m[6] != "" {
			sec, _ = strconv.Atoi(m[6])
		}
	}

	if month < 1 || month > 12 || day < 1 || day > 31 || hour > 23 || minute > 59 || sec > 59 {
		return time.Time{}, false
	}

	ts := time.Date(year, time.Month(month), day, hour, minute, sec, 0, loc)
	// Reject normalized overflow such as Feb 30.
	if ts.Day() != day || ts.Month() != time.Month(month) {
		return time.Time{}, false
	}
	return ts, true
}
