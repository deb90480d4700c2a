package gpstime

import (
	"testing"
	"time"
)

func TestLeapSeconds(t *testing.T) {
	tests := []struct {
		name     string
		gps      int64
		expected int
	}{
		{"epoch", 0, 0},
		{"before first leap", 46828799, 0},
		{"at first leap", 46828800, 1},
		{"mid 1990s", 500000000, 10},
		{"O1 era", 1126259462, 17},
		{"after 2017 leap", 1187008882, 18},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := LeapSeconds(tt.gps); got != tt.expected {
				t.Errorf("LeapSeconds(%d) = %d, want %d", tt.gps, got, tt.expected)
			}
		})
	}
}

func TestToUTC(t *testing.T) {
	tests := []struct {
		name     string
		gps      int64
		expected time.Time
	}{
		{"epoch", 0, time.Date(1980, 1, 6, 0, 0, 0, 0, time.UTC)},
		{"first binary black hole merger", 1126259462, time.Date(2015, 9, 14, 9, 50, 45, 0, time.UTC)},
		{"binary neutron star merger", 1187008882, time.Date(2017, 8, 17, 12, 41, 4, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ToUTC(tt.gps); !got.Equal(tt.expected) {
				t.Errorf("ToUTC(%d) = %v, want %v", tt.gps, got, tt.expected)
			}
		})
	}
}

func TestFormatUTC(t *testing.T) {
	got := FormatUTC(1126259462.42)
	want := "2015-09-14 09:50:45 UTC"
	if got != want {
		t.Errorf("FormatUTC(1126259462.42) = %q, want %q", got, want)
	}

	// Fractional part is truncated toward earlier time, never rounded up.
	if got := FormatUTC(1126259462.99); got != want {
		t.Errorf("FormatUTC(1126259462.99) = %q, want %q", got, want)
	}
}
