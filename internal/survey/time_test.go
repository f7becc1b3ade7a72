package survey

import (
	"testing"
	"time"
)

func TestParseTime(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want time.Time
	}{
		{"rfc3339", "2024-03-01T10:30:00Z", time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC)},
		{"rfc3339 nano", "2024-03-01T10:30:00.123456789Z", time.Date(2024, 3, 1, 10, 30, 0, 123456789, time.UTC)},
		{"space separated", "2024-03-01 10:30:00", time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC)},
		{"date only", "2024-03-01", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
		{"empty", "", time.Time{}},
		{"garbage", "not a date", time.Time{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ParseTime(tc.in); !got.Equal(tc.want) {
				t.Errorf("ParseTime(%q) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}

func TestSubmittedTime(t *testing.T) {
	r := RawSurveyResponse{SubmittedAt: "2024-03-01T10:30:00Z"}
	if got := r.SubmittedTime(); got.IsZero() {
		t.Error("expected parsed submission time")
	}
	r = RawSurveyResponse{}
	if got := r.SubmittedTime(); !got.IsZero() {
		t.Errorf("expected zero time for missing timestamp, got %v", got)
	}
}
