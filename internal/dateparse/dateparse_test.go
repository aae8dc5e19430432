package dateparse

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestParseWithYear(t *testing.T) {
	ref := date(2024, time.March, 1)

	tests := []struct {
		input    string
		expected time.Time
	}{
		{"2024-03-15", date(2024, time.March, 15)},
		{"2024-3-15", date(2024, time.March, 15)},
		{"15-03-2024", date(2024, time.March, 15)},
		{"2024/3/15", date(2024, time.March, 15)},
		{"3/15/2024", date(2024, time.March, 15)},
		{"3/15/24", date(2024, time.March, 15)},
		{"Mar 15 2024", date(2024, time.March, 15)},
		{"mar 15 2024", date(2024, time.March, 15)},
		{"March 15, 2024", date(2024, time.March, 15)},
		{"Mar. 15 2024", date(2024, time.March, 15)},
		{"Mar 15th 2024", date(2024, time.March, 15)},
		{"Jan 2, 2025", date(2025, time.January, 2)},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := Parse(tt.input, ref)
			if !ok {
				t.Fatalf("Parse(%q): no match", tt.input)
			}
			if !got.Equal(tt.expected) {
				t.Errorf("Parse(%q): got %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestParseNoMatch(t *testing.T) {
	ref := date(2024, time.March, 1)

	for _, input := range []string{"", "soon", "next friday", "15", "$550"} {
		t.Run(input, func(t *testing.T) {
			if got, ok := Parse(input, ref); ok {
				t.Errorf("Parse(%q): expected no match, got %v", input, got)
			}
		})
	}
}

func TestYearDisambiguation(t *testing.T) {
	tests := []struct {
		input    string
		ref      time.Time
		expected time.Time
	}{
		// Dec 25 is closer to Jan 10 within the same year (350 days) than
		// in the following year.
		{"12/25", date(2024, time.January, 10), date(2024, time.December, 25)},
		// Jan 5 seen from Dec 20 means the coming January.
		{"1/5", date(2024, time.December, 20), date(2025, time.January, 5)},
		// Short horizon: same year.
		{"3/15", date(2024, time.March, 1), date(2024, time.March, 15)},
		{"Mar 15", date(2024, time.March, 1), date(2024, time.March, 15)},
		// A date just behind the reference still favors the nearer year.
		{"2/28", date(2024, time.March, 1), date(2024, time.February, 28)},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := Parse(tt.input, tt.ref)
			if !ok {
				t.Fatalf("Parse(%q): no match", tt.input)
			}
			if !got.Equal(tt.expected) {
				t.Errorf("Parse(%q, ref=%v): got %v, want %v", tt.input, tt.ref, got, tt.expected)
			}
		})
	}
}

func TestResolveTieFavorsReferenceYear(t *testing.T) {
	// Jun 30 seen from 2023-12-30 is 183 days back to 2023-06-30 and, with
	// the 2024 leap day in between, 183 days forward to 2024-06-30. The
	// reference year must win the tie.
	ref := date(2023, time.December, 30)
	p := Partial{Month: time.June, Day: 30}
	got := p.Resolve(ref)
	if want := date(2023, time.June, 30); !got.Equal(want) {
		t.Errorf("Resolve tie: got %v, want %v", got, want)
	}
}

func TestParseDeterministic(t *testing.T) {
	ref := date(2024, time.January, 10)
	inputs := []string{"12/25", "3/15/24", "Mar 15 2024", "1 2"}

	for _, input := range inputs {
		first, firstOK := Parse(input, ref)
		for i := 0; i < 50; i++ {
			got, ok := Parse(input, ref)
			if ok != firstOK || !got.Equal(first) {
				t.Fatalf("Parse(%q) not deterministic: %v/%v then %v/%v",
					input, first, firstOK, got, ok)
			}
		}
	}
}

func TestParsePartialTagsMissingYear(t *testing.T) {
	p, ok := ParsePartial("3/15")
	if !ok {
		t.Fatal("expected match")
	}
	if p.HasYear {
		t.Error("expected HasYear=false for year-less input")
	}
	if p.Month != time.March || p.Day != 15 {
		t.Errorf("got %v/%v, want March/15", p.Month, p.Day)
	}

	p, ok = ParsePartial("2024-03-15")
	if !ok {
		t.Fatal("expected match")
	}
	if !p.HasYear || p.Year != 2024 {
		t.Errorf("expected HasYear=true with 2024, got %+v", p)
	}
}
