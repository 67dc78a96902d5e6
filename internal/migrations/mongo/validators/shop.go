package validators

import "go.mongodb.org/mongo-driver/bson"

var ShopInfoValidator = schema(
	[]string{"shop_owner_id", "shop_name", "created_at"},
	bson.M{
		"_id":           bson.M{"bsonType": "objectId"},
		"shop_owner_id": objectIDString,
		"shop_name":     text(2, 100),
		"description":   text(0, 1000),
		"address":       text(0, 300),
		"phone_number":  text(0, 20),
		"email_address": text(0, 254),
		"website_url":   text(0, 512),
		"logo_url":      text(0, 512),
		"created_at":    date,
		"updated_at":    date,
	},
)

var PublicShopValidator = schema(
	[]string{"shop_owner_id", "shop_name", "is_active", "created_at"},
	bson.M{
		"_id":           bson.M{"bsonType": "objectId"},
		"shop_owner_id": objectIDString,
		"shop_name":     text(2, 100),
		"description":   text(0, 1000),
		"address":       text(0, 300),
		"services_offered": bson.M{
			"bsonType": "array",
			"maxItems": 20,
			"items":    text(2, 50),
		},
		"rating":         bson.M{"bsonType": "number", "minimum": 0, "maximum": 5},
		"total_reviews":  bson.M{"bsonType": bson.A{"int", "long"}, "minimum": 0},
		"is_active":      boolean,
		"business_hours": bson.M{"bsonType": "object"},
		"latitude":       bson.M{"bsonType": "number", "minimum": -90, "maximum": 90},
		"longitude":      bson.M{"bsonType": "number", "minimum": -180, "maximum": 180},
		"created_at":     date,
		"updated_at":     date,
	},
)

var OperatingHoursValidator = schema(
	[]string{"shop_owner_id", "day_of_week", "open_time", "close_time", "is_open"},
	bson.M{
		"_id":           bson.M{"bsonType": "objectId"},
		"shop_owner_id": objectIDString,
		"day_of_week":   enum("monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"),
		"open_time":     hhmm,
		"close_time":    hhmm,
		"is_open":       boolean,
		"created_at":    date,
		"updated_at":    date,
	},
)

var PricingRuleValidator = schema(
	[]string{"shop_owner_id", "service_type", "price_per_page", "color_multiplier", "minimum_charge"},
	bson.M{
		"_id":                      bson.M{"bsonType": "objectId"},
		"shop_owner_id":            objectIDString,
		"service_type":             enum("black_white", "color", "custom"),
		"price_per_page":           bson.M{"bsonType": "number", "exclusiveMinimum": true, "minimum": 0},
		"color_multiplier":         bson.M{"bsonType": "number", "minimum": 1},
		"minimum_charge":           bson.M{"bsonType": "number", "minimum": 0},
		"bulk_discount_threshold":  bson.M{"bsonType": bson.A{"int", "long"}, "minimum": 0},
		"bulk_discount_percentage": bson.M{"bsonType": "number", "minimum": 0, "maximum": 100},
		"created_at":               date,
		"updated_at":               date,
	},
)
