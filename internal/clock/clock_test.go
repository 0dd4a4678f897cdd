package clock

import (
	"testing"
	"time"
)

func TestFixed(t *testing.T) {
	at := time.Date(2026, 1, 15, 10, 30, 0, 0, time.UTC)
	clk := Fixed(at)
	if !clk.Now().Equal(at) {
		t.Fatalf("Now() = %v, want %v", clk.Now(), at)
	}
}

func TestSystemLocation(t *testing.T) {
	clk := System(time.UTC)
	if clk.Now().Location() != time.UTC {
		t.Fatalf("location = %v, want UTC", clk.Now().Location())
	}

	// nil falls back to time.Local
	clk = System(nil)
	if clk.Now().Location() != time.Local {
		t.Fatalf("location = %v, want Local", clk.Now().Location())
	}
}

func TestDayBoundaries(t *testing.T) {
	at := time.Date(2026, 1, 15, 10, 30, 45, 123, time.UTC)

	start := StartOfDay(at)
	if start.Hour() != 0 || start.Minute() != 0 || start.Second() != 0 || start.Nanosecond() != 0 {
		t.Fatalf("StartOfDay = %v", start)
	}
	if start.Day() != 15 {
		t.Fatalf("StartOfDay day = %d", start.Day())
	}

	end := EndOfDay(at)
	if end.Hour() != 23 || end.Minute() != 59 || end.Second() != 59 {
		t.Fatalf("EndOfDay = %v", end)
	}
	if !end.After(at) {
		t.Fatalf("EndOfDay %v not after %v", end, at)
	}
	if end.Day() != 15 {
		t.Fatalf("EndOfDay day = %d", end.Day())
	}
}

func TestDaysBetween(t *testing.T) {
	base := time.Date(2026, 1, 15, 23, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		a, b time.Time
		want int
	}{
		{"same day", base, base.Add(-22 * time.Hour), 0},
		{"next morning", base, time.Date(2026, 1, 16, 1, 0, 0, 0, time.UTC), 1},
		{"ten days", base, base.AddDate(0, 0, 10), 10},
		{"negative", base, base.AddDate(0, 0, -3), -3},
		{"month boundary", time.Date(2026, 1, 31, 12, 0, 0, 0, time.UTC), time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC), 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DaysBetween(tt.a, tt.b); got != tt.want {
				t.Fatalf("DaysBetween = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestMillisRoundTrip(t *testing.T) {
	at := time.Date(2026, 1, 15, 10, 30, 0, 0, time.UTC)
	ms := Millis(at)
	back := FromMillis(ms, time.UTC)
	if !back.Equal(at) {
		t.Fatalf("round trip = %v, want %v", back, at)
	}

	// nil location decodes in UTC
	if FromMillis(ms, nil).Location() != time.UTC {
		t.Fatal("nil location must decode as UTC")
	}
}
