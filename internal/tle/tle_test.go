package tle

import (
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"
)

var testLogger = slog.New(slog.NewJSONHandler(io.Discard, nil))

const testTLEText = `GOES 18
1 51850U 22021A   25224.50000000  .00000100  00000-0  00000+0 0  9990
2 51850   0.0200 270.1200 0001000   0.0000   0.0000  1.00271000    09
ISS (ZARYA)
1 25544U 98067A   24100.50000000  .00016717  00000-0  10270-3 0  9005
2 25544  51.6400 100.0000 0001000   0.0000   0.0000 15.50000000    09
`

func TestParse(t *testing.T) {
	entries, err := Parse(strings.NewReader(testTLEText), testLogger)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}

	goes := entries[0]
	if goes.NORADID != 51850 {
		t.Errorf("NORAD ID = %d, want 51850", goes.NORADID)
	}
	if goes.Name != "GOES 18" {
		t.Errorf("name = %q, want %q", goes.Name, "GOES 18")
	}

	// Epoch 25224.5 = 2025 day 224 at 12:00 UTC (August 12).
	wantEpoch := time.Date(2025, 8, 12, 12, 0, 0, 0, time.UTC)
	if !goes.Epoch.Equal(wantEpoch) {
		t.Errorf("epoch = %v, want %v", goes.Epoch, wantEpoch)
	}
}

func TestParseSkipsMalformed(t *testing.T) {
	text := "GARBAGE\nnot a line one\nnot a line two\n" + testTLEText
	entries, err := Parse(strings.NewReader(text), testLogger)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries after skipping garbage, got %d", len(entries))
	}
}

func TestParseEpochCentury(t *testing.T) {
	// Year 57 and later belongs to the 1900s.
	epoch, err := parseEpoch("98001.00000000")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if epoch.Year() != 1998 {
		t.Errorf("year = %d, want 1998", epoch.Year())
	}
}

func TestFind(t *testing.T) {
	entries, err := Parse(strings.NewReader(testTLEText), testLogger)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := []struct {
		name    string
		aliases []string
		wantID  int
		wantOK  bool
	}{
		{"case-insensitive name", []string{"goes 18"}, 51850, true},
		{"partial name", []string{"ZARYA"}, 25544, true},
		{"numeric alias", []string{"25544"}, 25544, true},
		{"first alias miss, second hits", []string{"GOES 19", "51850"}, 51850, true},
		{"no match", []string{"HIMAWARI"}, 0, false},
		{"empty aliases", nil, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry, ok := Find(entries, tt.aliases)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && entry.NORADID != tt.wantID {
				t.Errorf("NORAD ID = %d, want %d", entry.NORADID, tt.wantID)
			}
		})
	}
}
