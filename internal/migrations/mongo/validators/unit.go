package validators

import "go.mongodb.org/mongo-driver/bson"

var money = bson.M{"bsonType": []string{"long", "int"}, "minimum": 0}

var UnitValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"hotel_id",
			"kind",
			"name",
			"rates",
			"available",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"hotel_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 64,
			},

			"kind": bson.M{
				"bsonType": "string",
				"enum":     []string{"room", "event_space"},
			},

			"name": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 100,
			},

			"max_adults":   bson.M{"bsonType": "int", "minimum": 0, "maximum": 50},
			"max_children": bson.M{"bsonType": "int", "minimum": 0, "maximum": 50},
			"max_guests":   bson.M{"bsonType": "int", "minimum": 0, "maximum": 5000},

			"rates": bson.M{
				"bsonType": "object",
				"properties": bson.M{
					"base_rate":             money,
					"nightly_override_rate": money,
					"hourly_rate":           money,
					"half_day_rate":         money,
					"full_day_rate":         money,
					"weekend_rate_multiplier": bson.M{
						"bsonType":         []string{"double", "int"},
						"exclusiveMinimum": 0,
						"maximum":          10,
					},
				},
			},

			"available": bson.M{
				"bsonType": "bool",
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
