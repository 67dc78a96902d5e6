package validators

import "go.mongodb.org/mongo-driver/bson"

var UserValidator = schema(
	[]string{"email", "password_hash", "role", "email_confirmed", "created_at"},
	bson.M{
		"_id":                bson.M{"bsonType": "objectId"},
		"email":              text(3, 254),
		"password_hash":      text(20, 100),
		"role":               enum("customer", "shop_owner"),
		"full_name":          text(0, 100),
		"email_confirmed":    boolean,
		"confirmation_token": text(1, 100),
		"created_at":         date,
		"updated_at":         date,
	},
)

var SessionValidator = schema(
	[]string{"_id", "user_id", "expires_at", "created_at"},
	bson.M{
		"_id":        text(1, 100),
		"user_id":    objectIDString,
		"expires_at": date,
		"revoked_at": date,
		"created_at": date,
	},
)

var ProfileValidator = schema(
	[]string{"user_id", "role", "created_at"},
	bson.M{
		"_id":         bson.M{"bsonType": "objectId"},
		"user_id":     objectIDString,
		"full_name":   text(0, 100),
		"phone":       text(0, 20),
		"avatar_path": text(1, 512),
		"role":        enum("customer", "shop_owner"),
		"created_at":  date,
		"updated_at":  date,
	},
)
