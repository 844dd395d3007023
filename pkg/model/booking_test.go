package model

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestBooking_DatesUseCalendarForm(t *testing.T) {
	b := Booking{
		ID:        "b-1",
		Reference: "ref-1",
		CheckIn:   time.Date(2030, 7, 1, 0, 0, 0, 0, time.UTC),
		CheckOut:  time.Date(2030, 7, 4, 0, 0, 0, 0, time.UTC),
		HotelName: "Harbor Inn",
		CreatedAt: time.Date(2030, 6, 1, 9, 30, 0, 0, time.UTC),
	}

	data, err := json.Marshal(b)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		t.Fatalf("unmarshal map: %v", err)
	}
	if fields["check_in"] != "2030-07-01" || fields["check_out"] != "2030-07-04" {
		t.Errorf("expected YYYY-MM-DD dates, got %v / %v", fields["check_in"], fields["check_out"])
	}
	if fields["booking_reference"] != "ref-1" || fields["hotel_name"] != "Harbor Inn" {
		t.Errorf("other fields lost: %s", data)
	}
	if !strings.HasPrefix(fields["created_at"].(string), "2030-06-01T09:30:00") {
		t.Errorf("created_at should stay a timestamp, got %v", fields["created_at"])
	}

	var decoded Booking
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("decode booking: %v", err)
	}
	if !decoded.CheckIn.Equal(b.CheckIn) || !decoded.CheckOut.Equal(b.CheckOut) || decoded.Reference != "ref-1" {
		t.Errorf("decoded booking mismatch: %+v", decoded)
	}
}

func TestBooking_UnmarshalRejectsMalformedDate(t *testing.T) {
	var b Booking
	err := json.Unmarshal([]byte(`{"check_in":"01/07/2030","check_out":"2030-07-04"}`), &b)
	if err == nil || !strings.Contains(err.Error(), "check_in") {
		t.Errorf("expected check_in error, got %v", err)
	}
}
