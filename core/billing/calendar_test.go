package billing

import (
	"reflect"
	"testing"
	"time"
)

func TestPeriodString(t *testing.T) {
	tests := []struct {
		period Period
		want   string
	}{
		{Period{Year: 2025, Month: time.October}, "2025-10"},
		{Period{Year: 2026, Month: time.January}, "2026-01"},
		{Period{Year: 999, Month: time.December}, "0999-12"},
	}
	for _, tt := range tests {
		if got := tt.period.String(); got != tt.want {
			t.Errorf("Period.String() = %v, want %v", got, tt.want)
		}
	}
}

func TestPeriodsBetween(t *testing.T) {
	tests := []struct {
		name       string
		start, end Period
		want       int
	}{
		{name: "same period", start: Period{2026, time.March}, end: Period{2026, time.March}, want: 1},
		{name: "year wrap", start: Period{2025, time.November}, end: Period{2026, time.February}, want: 4},
		{name: "start after end", start: Period{2026, time.April}, end: Period{2026, time.March}, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PeriodsBetween(tt.start, tt.end); len(got) != tt.want {
				t.Errorf("PeriodsBetween() = %v, want %v periods", got, tt.want)
			}
		})
	}
}

func TestMissingPeriods(t *testing.T) {
	today := time.Date(2026, time.January, 15, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		start Period
		paid  []Period
		want  []string
	}{
		{
			name:  "one paid in the middle",
			start: Period{2025, time.October},
			paid:  []Period{{2025, time.November}},
			want:  []string{"2025-10", "2025-12", "2026-01"},
		},
		{
			name:  "nothing paid",
			start: Period{2025, time.November},
			want:  []string{"2025-11", "2025-12", "2026-01"},
		},
		{
			name:  "all paid",
			start: Period{2025, time.December},
			paid:  []Period{{2025, time.December}, {2026, time.January}},
			want:  nil,
		},
		{
			name:  "start in the future",
			start: Period{2026, time.June},
			want:  nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			missing := MissingPeriods(tt.start, tt.paid, today)
			var got []string
			for _, p := range missing {
				got = append(got, p.String())
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("MissingPeriods() = %v, want %v", got, tt.want)
			}
		})
	}
}
