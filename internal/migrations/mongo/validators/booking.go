package validators

import "go.mongodb.org/mongo-driver/bson"

var BookingValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"hotel_id",
			"room_type_id",
			"guest_name",
			"email",
			"check_in",
			"check_out",
			"booking_reference",
			"total_price",
			"nights",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "string",
			},

			"hotel_id": bson.M{
				"bsonType":  "string",
				"minLength": 36,
				"maxLength": 36,
			},

			"room_type_id": bson.M{
				"bsonType":  "string",
				"minLength": 36,
				"maxLength": 36,
			},

			"guest_name": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 100,
			},

			"email": bson.M{
				"bsonType":  "string",
				"maxLength": 254,
			},

			"check_in": bson.M{
				"bsonType": "date",
			},

			"check_out": bson.M{
				"bsonType": "date",
			},

			"booking_reference": bson.M{
				"bsonType":  "string",
				"minLength": 1,
			},

			"total_price": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  0,
			},

			"nights": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  1,
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
