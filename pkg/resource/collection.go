package resource

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
)

// ErrNotExist is returned by Collection implementations when no document
// matches a single-document lookup.
var ErrNotExist = errors.New("resource: document does not exist")

// ErrDuplicate is returned by Collection implementations when an insert or
// update violates a unique index.
var ErrDuplicate = errors.New("resource: duplicate key")

// Collection is the minimal execution contract the core needs from a
// document store. The production implementation adapts the MongoDB
// adapter; tests run against an in-memory fake.
type Collection interface {
	// InsertOne stores a new document. The document carries its own "_id".
	InsertOne(ctx context.Context, doc map[string]interface{}) error

	// FindOne returns the first document matching filter, or ErrNotExist.
	FindOne(ctx context.Context, filter bson.M) (map[string]interface{}, error)

	// Find returns documents matching filter, ordered by sort, with
	// optional skip/limit (zero means no bound).
	Find(ctx context.Context, filter bson.M, sort bson.D, skip, limit int64) ([]map[string]interface{}, error)

	// Count returns the number of documents matching filter.
	Count(ctx context.Context, filter bson.M) (int64, error)

	// SumField returns the sum of a numeric field over documents matching
	// filter. Missing or non-numeric values contribute zero.
	SumField(ctx context.Context, filter bson.M, field string) (float64, error)

	// UpdateByID applies a $set to the document with the given id.
	// Reports whether a document matched.
	UpdateByID(ctx context.Context, id string, set bson.M) (bool, error)

	// IncByID atomically increments a numeric field on one document.
	IncByID(ctx context.Context, id string, field string, delta int64) error

	// DeleteByID removes the document with the given id.
	// Reports whether a document was removed.
	DeleteByID(ctx context.Context, id string) (bool, error)
}

// ObjectStore abstracts external object storage holding uploaded files.
// Cleanup on delete is best-effort and must never block record removal.
type ObjectStore interface {
	Upload(ctx context.Context, key string, payload []byte, contentType string) error
	Delete(ctx context.Context, key string) error
	PublicURL(key string) string

	// PresignGetURL returns a short-lived download URL and the instant it
	// expires. A non-positive expiry selects the implementation default.
	PresignGetURL(ctx context.Context, key string, expiry time.Duration) (string, time.Time, error)
}
