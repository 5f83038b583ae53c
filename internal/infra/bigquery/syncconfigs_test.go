package bigquery

import (
	"testing"
	"time"
)

func TestNextSync(t *testing.T) {
	now := time.Date(2025, 3, 25, 8, 0, 0, 0, time.UTC)

	tests := []struct {
		interval string
		want     time.Time
	}{
		{IntervalEvery6Hours, now.Add(6 * time.Hour)},
		{IntervalDaily, now.Add(24 * time.Hour)},
		{IntervalWeekly, now.Add(7 * 24 * time.Hour)},
		{"HOURLY", now.Add(6 * time.Hour)}, // unknown falls back to 6h
		{"", now.Add(6 * time.Hour)},
	}

	for _, tt := range tests {
		t.Run(tt.interval, func(t *testing.T) {
			if got := NextSync(tt.interval, now); !got.Equal(tt.want) {
				t.Errorf("NextSync(%q) = %v, want %v", tt.interval, got, tt.want)
			}
		})
	}
}

func TestValidInterval(t *testing.T) {
	for _, valid := range []string{IntervalEvery6Hours, IntervalDaily, IntervalWeekly} {
		if !ValidInterval(valid) {
			t.Errorf("ValidInterval(%q) = false", valid)
		}
	}
	for _, invalid := range []string{"", "HOURLY", "daily", "every_6_hours"} {
		if ValidInterval(invalid) {
			t.Errorf("ValidInterval(%q) = true", invalid)
		}
	}
}
