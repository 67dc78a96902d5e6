package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// WithTimeout bounds ctx by timeout unless ctx is a transaction session,
// which must be passed through unwrapped to keep the session attached.
func WithTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}

	if deadline, ok := ctx.Deadline(); ok && time.Until(deadline) < timeout {
		return context.WithDeadline(ctx, deadline)
	}
	return context.WithTimeout(ctx, timeout)
}

// ObjectID parses a hex id, wrapping invalidErr on failure.
func ObjectID(id string, invalidErr error) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %s", invalidErr, id)
	}
	return oid, nil
}

// ObjectIDs parses a list of hex ids, failing on the first invalid one.
func ObjectIDs(ids []string, invalidErr error) ([]primitive.ObjectID, error) {
	out := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		oid, err := ObjectID(id, invalidErr)
		if err != nil {
			return nil, err
		}
		out = append(out, oid)
	}
	return out, nil
}

// InsertedHex returns the hex form of an InsertOne result id.
func InsertedHex(result *mongo.InsertOneResult) string {
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		return oid.Hex()
	}
	if s, ok := result.InsertedID.(string); ok {
		return s
	}
	return ""
}

func IsDuplicateKey(err error) bool {
	return mongo.IsDuplicateKeyError(err)
}

// Now returns the current UTC time truncated to Mongo's millisecond precision.
func Now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}
