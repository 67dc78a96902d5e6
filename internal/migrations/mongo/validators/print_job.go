package validators

import "go.mongodb.org/mongo-driver/bson"

var PrintJobValidator = schema(
	[]string{
		"shop_owner_id",
		"customer_id",
		"file_name",
		"pages",
		"copies",
		"total_cost",
		"status",
		"submitted_at",
		"created_at",
		"updated_at",
	},
	bson.M{
		"_id":            bson.M{"bsonType": "objectId"},
		"shop_owner_id":  objectIDString,
		"customer_id":    objectIDString,
		"customer_name":  text(0, 100),
		"customer_email": text(0, 254),
		"booking_id":     objectIDString,
		"file_name":      text(1, 255),
		"file_url":       text(1, 1024),
		"file_size":      bson.M{"bsonType": bson.A{"int", "long"}, "minimum": 0},
		"pages":          bson.M{"bsonType": bson.A{"int", "long"}, "minimum": 1, "maximum": 10000},
		"copies":         bson.M{"bsonType": bson.A{"int", "long"}, "minimum": 1, "maximum": 1000},
		"color_pages":    bson.M{"bsonType": bson.A{"int", "long"}, "minimum": 0},
		"total_cost":     bson.M{"bsonType": "number", "minimum": 0},
		"status":         enum("pending", "queued", "printing", "completed", "cancelled"),
		"priority":       bson.M{"bsonType": bson.A{"int", "long"}, "minimum": 0, "maximum": 10},
		"notes":          text(0, 1000),
		"print_settings": bson.M{
			"bsonType": "object",
			"properties": bson.M{
				"colorType":    enum("color", "black_white", ""),
				"paperQuality": enum("standard", "premium", ""),
			},
		},
		"submitted_at": date,
		"started_at":   date,
		"completed_at": date,
		"cancelled_at": date,
		"created_at":   date,
		"updated_at":   date,
	},
)
