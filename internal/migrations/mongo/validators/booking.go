package validators

import "go.mongodb.org/mongo-driver/bson"

var BookingValidator = schema(
	[]string{
		"shop_owner_id",
		"customer_id",
		"time_slot_id",
		"slot_date",
		"slot_time",
		"status",
		"created_at",
	},
	bson.M{
		"_id":            bson.M{"bsonType": "objectId"},
		"shop_owner_id":  objectIDString,
		"customer_id":    objectIDString,
		"customer_name":  text(0, 100),
		"customer_email": text(0, 254),
		"time_slot_id":   objectIDString,
		"slot_date":      slotDate,
		"slot_time":      hhmm,
		"status":         enum("confirmed", "cancelled", "completed"),
		"print_job_id":   objectIDString,
		"notes":          text(0, 1000),
		"created_at":     date,
		"updated_at":     date,
	},
)

var TimeSlotValidator = schema(
	[]string{
		"shop_owner_id",
		"slot_date",
		"slot_time",
		"current_bookings",
		"max_capacity",
		"is_available",
	},
	bson.M{
		"_id":              bson.M{"bsonType": "objectId"},
		"shop_owner_id":    objectIDString,
		"slot_date":        slotDate,
		"slot_time":        hhmm,
		"current_bookings": bson.M{"bsonType": bson.A{"int", "long"}, "minimum": 0},
		"max_capacity":     bson.M{"bsonType": bson.A{"int", "long"}, "minimum": 1, "maximum": 50},
		"is_available":     boolean,
		"created_at":       date,
		"updated_at":       date,
	},
)

var BookingLockValidator = schema(
	[]string{"_id", "expires_at"},
	bson.M{
		"_id":        text(1, 200),
		"expires_at": date,
		"created_at": date,
	},
)
