// Package dateparse resolves the loosely formatted dates found in loan
// request post titles ("3/15", "Mar 15th", "2024-03-15", ...). Titles often
// omit the year, so year-less results are disambiguated against a reference
// date, normally the post's creation date.
package dateparse

import (
	"regexp"
	"sort"
	"strings"
	"time"
)

// Partial is a parsed calendar date whose year may be unknown. Keeping the
// missing year explicit avoids leaking a sentinel year into comparisons.
type Partial struct {
	Month   time.Month
	Day     int
	Year    int
	HasYear bool
}

type layout struct {
	format  string
	hasYear bool
}

// layoutTable is the full candidate set: the cross product of month, day and
// year variants substituted into the template skeletons below. Built once at
// init and ordered longest-format-first (ties broken lexicographically) so
// that the winning format for an ambiguous input is deterministic.
var layoutTable = buildLayouts()

func buildLayouts() []layout {
	months := []string{"1", "01", "Jan", "January"}
	days := []string{"2", "02"}
	years := []string{"06", "2006"}

	// {M}, {D}, {Y} are substituted with each variant; skeletons spelled
	// with a literal 2006 take a four-digit year only.
	withYear := []string{
		"2006-{M}-{D}",
		"{D}-{M}-2006",
		"2006/{M}/{D}",
		"{M}/{D}/{Y}",
		"{M} {D} {Y}",
		"{M}. {D} {Y}",
		"{M} {D}, {Y}",
	}
	noYear := []string{
		"{M}/{D}",
		"{M} {D}",
	}

	seen := make(map[string]bool)
	var table []layout
	add := func(format string, hasYear bool) {
		if !seen[format] {
			seen[format] = true
			table = append(table, layout{format: format, hasYear: hasYear})
		}
	}

	for _, skeleton := range withYear {
		for _, m := range months {
			for _, d := range days {
				format := strings.ReplaceAll(skeleton, "{M}", m)
				format = strings.ReplaceAll(format, "{D}", d)
				if strings.Contains(format, "{Y}") {
					for _, y := range years {
						add(strings.ReplaceAll(format, "{Y}", y), true)
					}
				} else {
					add(format, true)
				}
			}
		}
	}
	for _, skeleton := range noYear {
		for _, m := range months {
			for _, d := range days {
				format := strings.ReplaceAll(skeleton, "{M}", m)
				add(strings.ReplaceAll(format, "{D}", d), false)
			}
		}
	}

	sort.SliceStable(table, func(i, j int) bool {
		if len(table[i].format) != len(table[j].format) {
			return len(table[i].format) > len(table[j].format)
		}
		return table[i].format < table[j].format
	})
	return table
}

// ordinalSuffix strips day ordinals ("15th" -> "15") since time layouts
// cannot express them.
var ordinalSuffix = regexp.MustCompile(`(?i)(\d)(st|nd|rd|th)\b`)

// ParsePartial tries every candidate layout against the full input string
// and returns the first (in table order) that matches. Inputs that match no
// layout return ok=false; that is an absent value, not an error.
func ParsePartial(text string) (Partial, bool) {
	s := strings.TrimSpace(text)
	if s == "" {
		return Partial{}, false
	}
	s = ordinalSuffix.ReplaceAllString(s, "$1")

	for _, l := range layoutTable {
		t, err := time.Parse(l.format, s)
		if err != nil {
			continue
		}
		return Partial{
			Month:   t.Month(),
			Day:     t.Day(),
			Year:    t.Year(),
			HasYear: l.hasYear,
		}, true
	}
	return Partial{}, false
}

// Resolve turns a Partial into a concrete UTC date. A missing year becomes
// whichever of ref's year or the year after lands closer to ref by absolute
// day distance; ties keep ref's year. Loan terms are short relative to a
// year, so the nearer candidate is the intended one.
func (p Partial) Resolve(ref time.Time) time.Time {
	if p.HasYear {
		return time.Date(p.Year, p.Month, p.Day, 0, 0, 0, 0, time.UTC)
	}

	refDay := time.Date(ref.Year(), ref.Month(), ref.Day(), 0, 0, 0, 0, time.UTC)
	guessA := time.Date(ref.Year(), p.Month, p.Day, 0, 0, 0, 0, time.UTC)
	guessB := time.Date(ref.Year()+1, p.Month, p.Day, 0, 0, 0, 0, time.UTC)
	if dayDistance(guessB, refDay) < dayDistance(guessA, refDay) {
		return guessB
	}
	return guessA
}

// Parse is the one-shot form: parse text and resolve any missing year
// against ref.
func Parse(text string, ref time.Time) (time.Time, bool) {
	p, ok := ParsePartial(text)
	if !ok {
		return time.Time{}, false
	}
	return p.Resolve(ref), true
}

func dayDistance(a, b time.Time) int {
	d := int(a.Sub(b).Hours() / 24)
	if d < 0 {
		return -d
	}
	return d
}
