package availability

import (
	"fmt"
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

// Stay is a half-open interval of calendar dates: the guest occupies every
// night N with CheckIn <= N < CheckOut. Both bounds are kept as midnight UTC
// of their calendar date so that day arithmetic is exact.
type Stay struct {
	CheckIn  time.Time
	CheckOut time.Time
}

// ParseDate parses a YYYY-MM-DD calendar date.
func ParseDate(field, value string) (time.Time, error) {
	d, err := time.Parse(DateLayout, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s=%q", ErrInvalidFormat, field, value)
	}
	return d, nil
}

// ParseStay parses both bounds and checks that the stay is non-empty.
func ParseStay(checkIn, checkOut string) (Stay, error) {
	in, err := ParseDate("check_in", checkIn)
	if err != nil {
		return Stay{}, err
	}
	out, err := ParseDate("check_out", checkOut)
	if err != nil {
		return Stay{}, err
	}

	stay := Stay{CheckIn: in, CheckOut: out}
	if err := stay.Validate(); err != nil {
		return Stay{}, err
	}
	return stay, nil
}

// ParseOptionalStay returns nil when either bound is missing, which callers
// treat as listing mode.
func ParseOptionalStay(checkIn, checkOut string) (*Stay, error) {
	if strings.TrimSpace(checkIn) == "" || strings.TrimSpace(checkOut) == "" {
		return nil, nil
	}
	stay, err := ParseStay(checkIn, checkOut)
	if err != nil {
		return nil, err
	}
	return &stay, nil
}

func NewStay(checkIn, checkOut time.Time) Stay {
	return Stay{CheckIn: dateOf(checkIn), CheckOut: dateOf(checkOut)}
}

func (s Stay) Validate() error {
	if !s.CheckIn.Before(s.CheckOut) {
		return fmt.Errorf("%w: %s is not before %s", ErrInvalidRange, s.CheckInDate(), s.CheckOutDate())
	}
	return nil
}

// Overlaps reports whether two stays share at least one night. Stays that
// only touch (one checks out the day the other checks in) do not overlap.
func (s Stay) Overlaps(other Stay) bool {
	return Overlaps(s.CheckIn, s.CheckOut, other.CheckIn, other.CheckOut)
}

func Overlaps(aIn, aOut, bIn, bOut time.Time) bool {
	return aOut.After(bIn) && aIn.Before(bOut)
}

// Nights is the number of nights in the stay, rounding a partial day up.
func (s Stay) Nights() int {
	d := s.CheckOut.Sub(s.CheckIn)
	if d <= 0 {
		return 0
	}
	nights := int(d / (24 * time.Hour))
	if d%(24*time.Hour) != 0 {
		nights++
	}
	return nights
}

func (s Stay) CheckInDate() string {
	return s.CheckIn.Format(DateLayout)
}

func (s Stay) CheckOutDate() string {
	return s.CheckOut.Format(DateLayout)
}

func (s Stay) String() string {
	return fmt.Sprintf("[%s, %s)", s.CheckInDate(), s.CheckOutDate())
}

// dateOf keeps the calendar date of t in its own location and drops the rest.
func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
