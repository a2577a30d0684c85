package deadline

import "testing"

func intptr(n int) *int { return &n }

func TestUrgencyTable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		daysLeft *int
		want     int
	}{
		{"none", nil, 1},
		{"overdue", intptr(-10), 6},
		{"due today", intptr(0), 6},
		{"tomorrow", intptr(1), 5},
		{"two days", intptr(2), 4},
		{"three days", intptr(3), 4},
		{"four days", intptr(4), 3},
		{"seven days", intptr(7), 3},
		{"eight days", intptr(8), 2},
		{"fourteen days", intptr(14), 2},
		{"fifteen days", intptr(15), 1},
		{"far future", intptr(1000), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Urgency(tt.daysLeft); got != tt.want {
				t.Errorf("Urgency(%v): got %d, want %d", tt.daysLeft, got, tt.want)
			}
		})
	}
}

func TestUrgencyTotalAndBounded(t *testing.T) {
	t.Parallel()

	for d := -400; d <= 400; d++ {
		d := d
		got := Urgency(&d)
		if got < 1 || got > 6 {
			t.Fatalf("Urgency(%d) = %d, outside [1,6]", d, got)
		}
	}
}
