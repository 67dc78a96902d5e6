package validators

import "go.mongodb.org/mongo-driver/bson"

var (
	objectIDString = bson.M{"bsonType": "string", "minLength": 24, "maxLength": 24}
	integer        = bson.M{"bsonType": bson.A{"int", "long"}}
	date           = bson.M{"bsonType": "date"}
	boolean        = bson.M{"bsonType": "bool"}
	hhmm           = bson.M{"bsonType": "string", "pattern": "^([01]?[0-9]|2[0-3]):[0-5][0-9]$"}
	slotDate       = bson.M{"bsonType": "string", "pattern": "^[0-9]{4}-[0-9]{2}-[0-9]{2}$"}
)

func text(minLength, maxLength int) bson.M {
	return bson.M{"bsonType": "string", "minLength": minLength, "maxLength": maxLength}
}

func enum(values ...string) bson.M {
	return bson.M{"bsonType": "string", "enum": values}
}

func schema(required []string, properties bson.M) bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType":             "object",
			"required":             required,
			"additionalProperties": true,
			"properties":           properties,
		},
	}
}
