package validators

import "go.mongodb.org/mongo-driver/bson"

var HotelValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"name", "city", "created_at"},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "string",
			},
			"name": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 150,
			},
			"city": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 100,
			},
			"address": bson.M{
				"bsonType":  "string",
				"maxLength": 255,
			},
			"description": bson.M{
				"bsonType":  "string",
				"maxLength": 2000,
			},
			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}

var RoomTypeValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"hotel_id",
			"room_type",
			"price",
			"total_rooms",
			"capacity",
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
			"room_type": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 100,
			},
			"price": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  0,
			},
			"total_rooms": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  0,
			},
			"capacity": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  1,
			},
			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
