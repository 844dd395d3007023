package availability

import (
	"errors"
	"testing"
	"time"
)

func date(s string) time.Time {
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		panic(err)
	}
	return d
}

func stay(in, out string) Stay {
	return Stay{CheckIn: date(in), CheckOut: date(out)}
}

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name string
		a, b Stay
		want bool
	}{
		{"same-day turnover after", stay("2024-07-01", "2024-07-03"), stay("2024-07-03", "2024-07-05"), false},
		{"same-day turnover before", stay("2024-07-03", "2024-07-05"), stay("2024-07-01", "2024-07-03"), false},
		{"disjoint", stay("2024-07-01", "2024-07-02"), stay("2024-07-10", "2024-07-12"), false},
		{"partial overlap", stay("2024-07-01", "2024-07-03"), stay("2024-07-02", "2024-07-04"), true},
		{"identical", stay("2024-07-01", "2024-07-03"), stay("2024-07-01", "2024-07-03"), true},
		{"contained", stay("2024-07-01", "2024-07-10"), stay("2024-07-04", "2024-07-05"), true},
		{"containing", stay("2024-07-04", "2024-07-05"), stay("2024-07-01", "2024-07-10"), true},
		{"shared check-in", stay("2024-07-01", "2024-07-02"), stay("2024-07-01", "2024-07-05"), true},
		{"shared check-out", stay("2024-07-03", "2024-07-05"), stay("2024-07-01", "2024-07-05"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Overlaps(tt.b); got != tt.want {
				t.Errorf("%s.Overlaps(%s) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
			if got := tt.b.Overlaps(tt.a); got != tt.want {
				t.Errorf("overlap must be symmetric: %s.Overlaps(%s) = %v", tt.b, tt.a, got)
			}
		})
	}
}

func TestNights(t *testing.T) {
	tests := []struct {
		name string
		s    Stay
		want int
	}{
		{"one night", stay("2024-06-01", "2024-06-02"), 1},
		{"three nights", stay("2024-06-01", "2024-06-04"), 3},
		{"across month end", stay("2024-06-29", "2024-07-02"), 3},
		{"across leap day", stay("2024-02-28", "2024-03-01"), 2},
		{"empty", stay("2024-06-01", "2024-06-01"), 0},
		{"inverted", stay("2024-06-02", "2024-06-01"), 0},
		{"partial day rounds up", Stay{CheckIn: date("2024-06-01"), CheckOut: date("2024-06-02").Add(time.Hour)}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.s.Nights(); got != tt.want {
				t.Errorf("Nights() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestParseStay(t *testing.T) {
	tests := []struct {
		name     string
		checkIn  string
		checkOut string
		wantErr  error
	}{
		{"valid", "2024-07-01", "2024-07-03", nil},
		{"surrounding spaces", " 2024-07-01 ", "2024-07-03", nil},
		{"impossible month", "2024-13-40", "2024-07-03", ErrInvalidFormat},
		{"impossible day", "2024-02-30", "2024-03-03", ErrInvalidFormat},
		{"wrong layout", "01/07/2024", "2024-07-03", ErrInvalidFormat},
		{"bad check_out", "2024-07-01", "tomorrow", ErrInvalidFormat},
		{"empty check_in", "", "2024-07-03", ErrInvalidFormat},
		{"equal dates", "2024-07-01", "2024-07-01", ErrInvalidRange},
		{"inverted", "2024-07-03", "2024-07-01", ErrInvalidRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := ParseStay(tt.checkIn, tt.checkOut)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if s.CheckInDate() != "2024-07-01" || s.CheckOutDate() != "2024-07-03" {
					t.Errorf("unexpected stay %s", s)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestParseOptionalStay(t *testing.T) {
	tests := []struct {
		name      string
		checkIn   string
		checkOut  string
		wantNil   bool
		wantError error
	}{
		{"no dates", "", "", true, nil},
		{"only check_in", "2024-07-01", "", true, nil},
		{"only check_out", "", "2024-07-03", true, nil},
		{"both", "2024-07-01", "2024-07-03", false, nil},
		{"malformed", "2024-7-1", "2024-07-03", true, ErrInvalidFormat},
		{"inverted", "2024-07-03", "2024-07-01", true, ErrInvalidRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := ParseOptionalStay(tt.checkIn, tt.checkOut)
			if tt.wantError != nil {
				if !errors.Is(err, tt.wantError) {
					t.Fatalf("expected %v, got %v", tt.wantError, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if (s == nil) != tt.wantNil {
				t.Errorf("stay = %v, wantNil %v", s, tt.wantNil)
			}
		})
	}
}

func TestNewStayDropsTimeOfDay(t *testing.T) {
	jakarta := time.FixedZone("WIB", 7*3600)
	s := NewStay(
		time.Date(2024, 7, 1, 23, 30, 0, 0, jakarta),
		time.Date(2024, 7, 3, 0, 15, 0, 0, jakarta),
	)

	if s.CheckInDate() != "2024-07-01" || s.CheckOutDate() != "2024-07-03" {
		t.Errorf("unexpected stay %s", s)
	}
	if s.Nights() != 2 {
		t.Errorf("Nights() = %d, want 2", s.Nights())
	}
}
