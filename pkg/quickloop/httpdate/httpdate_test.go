package httpdate

import (
	"testing"
	"time"
)

func TestParseValid(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"imf-fixdate", "Sun, 06 Nov 1994 08:49:37 GMT"},
		{"rfc850", "Sunday, 06-Nov-94 08:49:37 GMT"},
		{"asctime", "Sun Nov  6 08:49:37 1994"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.in)
			if err != nil {
				t.Fatalf("Parse(%q) returned error: %v", tt.in, err)
			}
			want := time.Date(1994, time.November, 6, 8, 49, 37, 0, time.UTC)
			if !got.Equal(want) {
				t.Errorf("Parse(%q) = %v, want %v", tt.in, got, want)
			}
		})
	}
}

func TestParseInvalid(t *testing.T) {
	if _, err := Parse("not a date"); err == nil {
		t.Error("Parse(garbage) should have returned an error")
	}
}

func TestFormatRoundTrip(t *testing.T) {
	now := time.Date(2026, time.July, 31, 12, 0, 0, 0, time.UTC)
	formatted := Format(now)

	parsed, err := Parse(formatted)
	if err != nil {
		t.Fatalf("Parse(Format(now)) returned error: %v", err)
	}
	if !parsed.Equal(now) {
		t.Errorf("round trip: got %v, want %v", parsed, now)
	}
}

func TestFormatIsRFC1123GMT(t *testing.T) {
	ts := time.Date(1994, time.November, 6, 8, 49, 37, 0, time.UTC)
	got := Format(ts)
	want := "Sun, 06 Nov 1994 08:49:37 GMT"
	if got != want {
		t.Errorf("Format() = %q, want %q", got, want)
	}
}
