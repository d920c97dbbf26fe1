package validators

import "go.mongodb.org/mongo-driver/bson"

var ReservationValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"reference_code",
			"unit_id",
			"hotel_id",
			"guest",
			"check_in_date",
			"check_out_date",
			"booking_source",
			"total_amount",
			"amount_paid",
			"balance_due",
			"booking_status",
			"payment_status",
			"created_at",
			"version",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"reference_code": bson.M{
				"bsonType": "string",
				"pattern":  "^[A-Z]{2,6}-[0-9A-F]{8}$",
			},

			"unit_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"guest": bson.M{
				"bsonType": "object",
				"required": []string{"name"},
				"properties": bson.M{
					"name": bson.M{
						"bsonType":  "string",
						"minLength": 2,
						"maxLength": 100,
					},
					"phone": bson.M{
						"bsonType": "string",
						"pattern":  `^\+[1-9]\d{1,14}$`,
					},
				},
			},

			"check_in_date":  bson.M{"bsonType": "date"},
			"check_out_date": bson.M{"bsonType": "date"},

			"booking_source": bson.M{
				"bsonType": "string",
				"enum":     []string{"front_desk", "phone", "email", "website", "walk_in", "ota"},
			},

			"total_amount":    money,
			"amount_paid":     money,
			"refunded_amount": money,
			"balance_due": bson.M{
				"bsonType": []string{"long", "int"},
			},

			"booking_status": bson.M{
				"bsonType": "string",
				"enum": []string{
					"pending",
					"confirmed",
					"checked_in",
					"checked_out",
					"cancelled",
					"no_show",
				},
			},

			"payment_status": bson.M{
				"bsonType": "string",
				"enum":     []string{"pending", "partial", "paid", "refunded"},
			},

			"created_at": bson.M{"bsonType": "date"},
			"version": bson.M{
				"bsonType": []string{"long", "int"},
				"minimum":  0,
			},
		},
	},
}

var ReservationLockValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{"_id", "token", "expires_at"},
		"properties": bson.M{
			"_id":        bson.M{"bsonType": "string"},
			"token":      bson.M{"bsonType": "string"},
			"expires_at": bson.M{"bsonType": "date"},
		},
	},
}
