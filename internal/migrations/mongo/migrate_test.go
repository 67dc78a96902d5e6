package mongo

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson"
)

func TestCollections_ValidatorsDescribeRequiredFields(t *testing.T) {
	for name, def := range Collections {
		schema, ok := def.Validator["$jsonSchema"].(bson.M)
		if !ok {
			t.Errorf("%s: missing $jsonSchema", name)
			continue
		}
		props, _ := schema["properties"].(bson.M)
		required, _ := schema["required"].([]string)
		if len(required) == 0 {
			t.Errorf("%s: no required fields", name)
		}
		for _, field := range required {
			if _, ok := props[field]; !ok {
				t.Errorf("%s: required field %q has no property schema", name, field)
			}
		}
	}
}

func TestCollections_UniqueKeys(t *testing.T) {
	tests := []struct {
		collection string
		keys       []string
	}{
		{"time_slots", []string{"shop_owner_id", "slot_date", "slot_time"}},
		{"operating_hours", []string{"shop_owner_id", "day_of_week"}},
		{"pricing_rules", []string{"shop_owner_id", "service_type"}},
		{"shop_info", []string{"shop_owner_id"}},
		{"public_shop_directory", []string{"shop_owner_id"}},
		{"slot_settings", []string{"shop_owner_id"}},
		{"profiles", []string{"user_id"}},
		{"users", []string{"email"}},
	}

	for _, tt := range tests {
		t.Run(tt.collection, func(t *testing.T) {
			def, ok := Collections[tt.collection]
			if !ok {
				t.Fatalf("collection %s not migrated", tt.collection)
			}
			for _, idx := range def.Indexes {
				keys, ok := idx.Keys.(bson.D)
				if !ok || idx.Options == nil || idx.Options.Unique == nil || !*idx.Options.Unique {
					continue
				}
				if len(keys) != len(tt.keys) {
					continue
				}
				match := true
				for i, k := range keys {
					if k.Key != tt.keys[i] {
						match = false
					}
				}
				if match {
					return
				}
			}
			t.Errorf("no unique index on %v", tt.keys)
		})
	}
}

func TestCollections_ExpiringDocuments(t *testing.T) {
	for _, name := range []string{"booking_locks", "sessions"} {
		found := false
		for _, idx := range Collections[name].Indexes {
			if idx.Options != nil && idx.Options.ExpireAfterSeconds != nil && *idx.Options.ExpireAfterSeconds == 0 {
				found = true
			}
		}
		if !found {
			t.Errorf("%s: missing TTL index on expires_at", name)
		}
	}
}
