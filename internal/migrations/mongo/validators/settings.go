package validators

import "go.mongodb.org/mongo-driver/bson"

var QueueSettingsValidator = schema(
	[]string{"shop_owner_id", "queue_limit"},
	bson.M{
		"shop_owner_id":        objectIDString,
		"auto_accept":          boolean,
		"notification_enabled": boolean,
		"queue_limit":          bson.M{"bsonType": bson.A{"int", "long"}, "minimum": 1, "maximum": 500},
		"updated_at":           date,
	},
)

var SlotSettingsValidator = schema(
	[]string{"shop_owner_id", "slot_duration", "max_jobs_per_slot", "advance_days"},
	bson.M{
		"shop_owner_id":     objectIDString,
		"slot_duration":     bson.M{"bsonType": bson.A{"int", "long"}, "minimum": 5, "maximum": 120},
		"max_jobs_per_slot": bson.M{"bsonType": bson.A{"int", "long"}, "minimum": 1, "maximum": 50},
		"advance_days":      bson.M{"bsonType": bson.A{"int", "long"}, "minimum": 1, "maximum": 365},
		"updated_at":        date,
	},
)

var NotificationSettingsValidator = schema(
	[]string{"shop_owner_id"},
	bson.M{
		"shop_owner_id":                       objectIDString,
		"email_notifications":                 boolean,
		"sms_notifications":                   boolean,
		"new_order_notifications":             boolean,
		"order_completion_notifications":      boolean,
		"equipment_maintenance_notifications": boolean,
		"low_supplies_notifications":          boolean,
		"daily_summary_notifications":         boolean,
		"updated_at":                          date,
	},
)

var EquipmentValidator = schema(
	[]string{"shop_owner_id", "equipment_name", "equipment_type", "status", "created_at"},
	bson.M{
		"_id":            bson.M{"bsonType": "objectId"},
		"shop_owner_id":  objectIDString,
		"equipment_name": text(2, 100),
		"equipment_type": text(2, 50),
		"brand":          text(0, 50),
		"model":          text(0, 50),
		"status":         enum("active", "maintenance", "inactive"),
		"capabilities": bson.M{
			"bsonType": "array",
			"maxItems": 20,
			"items":    text(1, 50),
		},
		"last_maintenance": date,
		"next_maintenance": date,
		"created_at":       date,
		"updated_at":       date,
	},
)

var SweepMarkerValidator = schema(
	[]string{"_id", "last_run_at"},
	bson.M{
		"_id":           text(1, 100),
		"last_run_at":   date,
		"last_deleted":  integer,
		"last_errors":   bson.M{"bsonType": "array"},
		"total_deleted": integer,
	},
)
