package deadline

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestScanSupportedFormats(t *testing.T) {
	t.Parallel()

	now := date(2026, time.July, 1)
	want := date(2026, time.December, 25)

	tests := []struct {
		name string
		text string
	}{
		{"month name", "The project is due December 25, 2026 sharp."},
		{"abbreviated month", "Due Dec 25, 2026."},
		{"numeric", "Submit by 12/25/2026 at the latest."},
		{"iso", "Deadline: 2026-12-25."},
		{"day month", "Please reply before 25 December 2026."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := Scan(tt.text, now)
			if !ok {
				t.Fatalf("Scan(%q): no date found", tt.text)
			}
			if !got.Equal(want) {
				t.Errorf("Scan(%q): got %v, want %v", tt.text, got, want)
			}
		})
	}
}

func TestScanFirstInDocumentOrderWins(t *testing.T) {
	t.Parallel()

	now := date(2026, time.July, 1)
	text := "Kickoff on 2026-08-01, final delivery December 25, 2026."

	got, ok := Scan(text, now)
	if !ok {
		t.Fatal("no date found")
	}
	if want := date(2026, time.August, 1); !got.Equal(want) {
		t.Errorf("got %v, want first date %v", got, want)
	}
}

func TestScanSkipsMalformedCandidate(t *testing.T) {
	t.Parallel()

	now := date(2026, time.July, 1)
	// 13/45 is not a real date; the scanner must fall through to the next one.
	text := "Version 13/45 ships, launch on 2026-09-10."

	got, ok := Scan(text, now)
	if !ok {
		t.Fatal("no date found")
	}
	if want := date(2026, time.September, 10); !got.Equal(want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestScanMissingYearAssumesCurrentYear(t *testing.T) {
	t.Parallel()

	now := date(2026, time.July, 1)
	got, ok := Scan("Team offsite on October 9.", now)
	if !ok {
		t.Fatal("no date found")
	}
	if want := date(2026, time.October, 9); !got.Equal(want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestScanYearRollover(t *testing.T) {
	t.Parallel()

	now := date(2026, time.December, 30)
	got, ok := Scan("Report due January 2.", now)
	if !ok {
		t.Fatal("no date found")
	}
	if want := date(2027, time.January, 2); !got.Equal(want) {
		t.Errorf("got %v, want next year's date %v", got, want)
	}
}

func TestScanExplicitPastYearIsKept(t *testing.T) {
	t.Parallel()

	now := date(2026, time.July, 1)
	got, ok := Scan("Invoice dated 2025-01-15 is overdue.", now)
	if !ok {
		t.Fatal("no date found")
	}
	if want := date(2025, time.January, 15); !got.Equal(want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestScanNoDate(t *testing.T) {
	t.Parallel()

	now := date(2026, time.July, 1)
	for _, text := range []string{"", "no dates in here", "meeting soon, maybe 99/99"} {
		if d, ok := Scan(text, now); ok {
			t.Errorf("Scan(%q): got %v, want none", text, d)
		}
	}
}

func TestDaysLeft(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.July, 1, 18, 30, 0, 0, time.UTC)

	tests := []struct {
		deadline time.Time
		want     int
	}{
		{date(2026, time.July, 1), 0},
		{date(2026, time.July, 2), 1},
		{date(2026, time.July, 15), 14},
		{date(2026, time.June, 28), -3},
	}
	for _, tt := range tests {
		if got := DaysLeft(tt.deadline, now); got != tt.want {
			t.Errorf("DaysLeft(%v): got %d, want %d", tt.deadline, got, tt.want)
		}
	}
}
