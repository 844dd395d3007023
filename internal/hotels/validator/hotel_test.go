package validator

import (
	"errors"
	"testing"

	"staybook/pkg/model"
)

func TestValidateHotel(t *testing.T) {
	v := NewHotelValidator()

	tests := []struct {
		name       string
		hotel      model.Hotel
		wantFields []string
	}{
		{
			name:  "valid",
			hotel: model.Hotel{Name: "Harbor Inn", City: "Lisbon"},
		},
		{
			name:       "missing name and city",
			hotel:      model.Hotel{},
			wantFields: []string{"name", "city"},
		},
		{
			name:       "bad id",
			hotel:      model.Hotel{ID: "42", Name: "Harbor Inn", City: "Lisbon"},
			wantFields: []string{"id"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateHotel(&tt.hotel)
			if len(tt.wantFields) == 0 {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}

			var verrs ValidationErrors
			if !errors.As(err, &verrs) {
				t.Fatalf("expected ValidationErrors, got %v", err)
			}
			details := verrs.Details()
			for _, f := range tt.wantFields {
				if _, ok := details[f]; !ok {
					t.Errorf("expected error for field %q, got %v", f, details)
				}
			}
		})
	}
}

func TestValidateRoomType(t *testing.T) {
	v := NewHotelValidator()
	valid := model.RoomType{
		HotelID:    "6f1c3c52-7a43-4a8e-9c55-6b43b7c0a3d1",
		Name:       "Deluxe",
		Price:      120,
		TotalRooms: 5,
		Capacity:   2,
	}

	if err := v.ValidateRoomType(&valid); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	zero := valid
	zero.TotalRooms = 0
	if err := v.ValidateRoomType(&zero); err != nil {
		t.Errorf("zero inventory must be accepted: %v", err)
	}

	bad := valid
	bad.Price = -1
	bad.Capacity = 0
	err := v.ValidateRoomType(&bad)

	var verrs ValidationErrors
	if !errors.As(err, &verrs) {
		t.Fatalf("expected ValidationErrors, got %v", err)
	}
	details := verrs.Details()
	if details["price"] != "must be at least 0" {
		t.Errorf("unexpected price message %v", details["price"])
	}
	if _, ok := details["capacity"]; !ok {
		t.Errorf("expected capacity error, got %v", details)
	}
}
