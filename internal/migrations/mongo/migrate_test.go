package mongo

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson"

	bookingrepo "staybook/internal/bookings/repository"
	hotelrepo "staybook/internal/hotels/repository"
)

func TestCollectionsMatchRepositories(t *testing.T) {
	defs := Collections()
	for _, name := range []string{
		hotelrepo.HotelsCollection,
		hotelrepo.RoomTypesCollection,
		bookingrepo.BookingsCollection,
		bookingrepo.LocksCollection,
	} {
		if _, ok := defs[name]; !ok {
			t.Errorf("no migration for collection %s", name)
		}
	}
}

func TestBookingReferenceIsUnique(t *testing.T) {
	for _, idx := range BookingsIndexes {
		keys := idx.Keys.(bson.D)
		if keys[0].Key != "booking_reference" {
			continue
		}
		if idx.Options == nil || idx.Options.Unique == nil || !*idx.Options.Unique {
			t.Fatal("booking_reference index must be unique")
		}
		return
	}
	t.Fatal("missing booking_reference index")
}

func TestLocksExpire(t *testing.T) {
	idx := LocksIndexes[0]
	if idx.Options == nil || idx.Options.ExpireAfterSeconds == nil || *idx.Options.ExpireAfterSeconds != 0 {
		t.Fatal("lock index must expire documents at expires_at")
	}
}
