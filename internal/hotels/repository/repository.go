package repository

import (
	"context"
	"sort"
	"strings"

	"staybook/internal/availability"
	"staybook/pkg/model"
)

// RoomFilter selects room types for the availability projection. Empty
// fields do not constrain the result. A nil Stay means listing mode: no
// bookings are consulted and Booked is zero.
type RoomFilter struct {
	HotelID     string
	City        string
	MinCapacity int
	Stay        *availability.Stay
}

type HotelRepository interface {
	CreateHotel(ctx context.Context, h *model.Hotel) error
	FindHotelByID(ctx context.Context, id string) (*model.Hotel, error)
	FindHotels(ctx context.Context, limit int, offset int64) ([]*model.Hotel, error)
	CountHotels(ctx context.Context) (int64, error)
	SearchHotelsByCity(ctx context.Context, city string) ([]*model.Hotel, error)
	UpdateHotel(ctx context.Context, h *model.Hotel) error
	DeleteHotel(ctx context.Context, id string) error

	CreateRoomType(ctx context.Context, rt *model.RoomType) error
	FindRoomTypeByID(ctx context.Context, id string) (*model.RoomType, error)
	FindRoomTypes(ctx context.Context, hotelID string, limit int, offset int64) ([]*model.RoomType, error)
	CountRoomTypes(ctx context.Context, hotelID string) (int64, error)
	UpdateRoomType(ctx context.Context, rt *model.RoomType) error
	DeleteRoomType(ctx context.Context, id string) error

	ListRoomUsage(ctx context.Context, f RoomFilter) ([]*model.RoomUsage, error)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds a LIKE pattern matching s anywhere in the column.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

// sortUsage orders rows the way the SQL projection does: hotel name, then
// nightly price, then room type id.
func sortUsage(usage []*model.RoomUsage) {
	sort.SliceStable(usage, func(i, j int) bool {
		a, b := usage[i], usage[j]
		if a.Hotel.Name != b.Hotel.Name {
			return a.Hotel.Name < b.Hotel.Name
		}
		if a.RoomType.Price != b.RoomType.Price {
			return a.RoomType.Price < b.RoomType.Price
		}
		return a.RoomType.ID < b.RoomType.ID
	})
}
