package resource

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/CR-8/clubcore/pkg/apperrors"
	"github.com/CR-8/clubcore/pkg/observability/logger"
)

// Service is the mutation handler and listing entry point for one
// resource. It is the only code path allowed to write records, which is
// what keeps derived fields and timestamps consistent.
type Service struct {
	schema   *Schema
	coll     Collection
	storage  ObjectStore
	reducers []Reducer
	log      logger.Logger

	now   func() time.Time
	newID func() string
}

// NewService creates a Service for a schema over a collection. storage may
// be nil when the resource carries no uploaded files.
func NewService(schema *Schema, coll Collection, storage ObjectStore, reducers []Reducer, log logger.Logger) *Service {
	return &Service{
		schema:   schema,
		coll:     coll,
		storage:  storage,
		reducers: reducers,
		log:      log,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// Schema returns the resource schema the service operates on.
func (s *Service) Schema() *Schema { return s.schema }

// Query carries one listing request.
type Query struct {
	Criteria  Criteria
	SortKey   string
	SortOrder string
	Page      Page
}

// Listing bundles a page of records with the resource's global stats.
type Listing struct {
	ListResult
	Stats Stats
}

// List filters, sorts and paginates records, and computes the resource's
// global statistics over the live set. Stats always cover the full
// visible collection, never the request filter, so callers cannot
// silently conflate the two.
func (s *Service) List(ctx context.Context, q Query) (*Listing, error) {
	filter, err := BuildFilter(q.Criteria, s.schema)
	if err != nil {
		return nil, err
	}
	sort, err := ResolveSort(s.schema, q.SortKey, q.SortOrder)
	if err != nil {
		return nil, err
	}
	result, err := Paginate(ctx, s.coll, filter, sort, q.Page)
	if err != nil {
		return nil, err
	}
	stats := Aggregate(ctx, s.coll, VisibilityFilter(s.schema), s.reducers, s.now(), s.log.WithContext(ctx))
	return &Listing{ListResult: *result, Stats: stats}, nil
}

// GetOptions controls single-record fetches.
type GetOptions struct {
	// CountView increments the schema's view counter as a side effect.
	CountView bool
}

// Get fetches one record by id.
func (s *Service) Get(ctx context.Context, id string, opts GetOptions) (map[string]interface{}, error) {
	doc, err := s.findByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if opts.CountView && s.schema.ViewCounter != "" {
		if err := s.coll.IncByID(ctx, id, s.schema.ViewCounter, 1); err != nil {
			s.log.WithContext(ctx).Warn("failed to increment view counter",
				"resource", s.schema.Name, "id", id, "error", err)
		} else {
			doc[s.schema.ViewCounter] = asFloat(doc[s.schema.ViewCounter]) + 1
		}
	}
	return doc, nil
}

// Upload carries object-store metadata for a freshly stored file. Only
// the upload path constructs one; file keys and URLs never come from
// caller payloads.
type Upload struct {
	Key string
	URL string
}

// Create validates, derives and stores a new record. Creation is
// all-or-nothing: any validation failure leaves the collection untouched.
// upload may be nil for resources without a stored file.
func (s *Service) Create(ctx context.Context, fields map[string]interface{}, upload *Upload) (map[string]interface{}, error) {
	doc := map[string]interface{}{}

	for _, field := range s.schema.Fields {
		raw, present := fields[field.Name]
		if !present || raw == nil {
			if field.Default != nil {
				doc[field.Name] = field.Default
			} else if field.Required {
				return nil, apperrors.NewValidationError(field.Name, "is required")
			}
			continue
		}
		value, err := coerceInput(field, raw)
		if err != nil {
			return nil, err
		}
		doc[field.Name] = value
	}

	if err := s.checkUnique(ctx, doc, ""); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	doc["_id"] = s.newID()
	doc["createdAt"] = now
	doc["updatedAt"] = now
	if s.schema.ViewCounter != "" {
		doc[s.schema.ViewCounter] = int64(0)
	}
	for _, d := range s.schema.Derived {
		doc[d.Name] = d.Compute(doc)
	}

	if upload != nil && s.schema.FileKeyField != "" {
		doc[s.schema.FileKeyField] = upload.Key
		doc[s.schema.FileURLField] = upload.URL
	}

	if err := s.coll.InsertOne(ctx, doc); err != nil {
		if errors.Is(err, ErrDuplicate) {
			return nil, s.duplicateError(doc)
		}
		return nil, apperrors.NewInternalError(fmt.Sprintf("failed to create %s", s.schema.Singular), err)
	}
	return doc, nil
}

// Update applies an allow-listed partial update. Fields outside the
// allow-list are dropped silently; derived fields are recomputed whenever
// any of their inputs is accepted; updatedAt advances on every accepted
// call, even a value-wise no-op.
func (s *Service) Update(ctx context.Context, id string, partial map[string]interface{}) (map[string]interface{}, error) {
	existing, err := s.findByID(ctx, id)
	if err != nil {
		return nil, err
	}

	accepted := bson.M{}
	changed := map[string]struct{}{}
	for _, field := range s.schema.Fields {
		raw, present := partial[field.Name]
		if !present || !field.Updatable {
			continue
		}
		value, err := coerceInput(field, raw)
		if err != nil {
			return nil, err
		}
		accepted[field.Name] = value
		changed[field.Name] = struct{}{}
	}

	merged := make(map[string]interface{}, len(existing)+len(accepted))
	for k, v := range existing {
		merged[k] = v
	}
	for k, v := range accepted {
		merged[k] = v
	}

	if err := s.checkUnique(ctx, merged, id); err != nil {
		return nil, err
	}

	for _, d := range s.schema.DerivedByInput(changed) {
		value := d.Compute(merged)
		accepted[d.Name] = value
		merged[d.Name] = value
	}

	now := s.now().UTC()
	accepted["updatedAt"] = now
	merged["updatedAt"] = now

	matched, err := s.coll.UpdateByID(ctx, id, accepted)
	if err != nil {
		if errors.Is(err, ErrDuplicate) {
			return nil, s.duplicateError(merged)
		}
		return nil, apperrors.NewInternalError(fmt.Sprintf("failed to update %s", s.schema.Singular), err)
	}
	if !matched {
		return nil, apperrors.NewNotFoundError(s.schema.Singular, id)
	}
	return merged, nil
}

// Delete removes a record. When the record references an uploaded file,
// the object is cleaned up best-effort first; a cleanup failure is logged
// and never blocks removal.
func (s *Service) Delete(ctx context.Context, id string) (map[string]interface{}, error) {
	existing, err := s.findByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.schema.FileKeyField != "" && s.storage != nil {
		if key, _ := existing[s.schema.FileKeyField].(string); key != "" {
			if err := s.storage.Delete(ctx, key); err != nil {
				s.log.WithContext(ctx).Warn("failed to delete stored object, removing record anyway",
					"resource", s.schema.Name, "id", id, "key", key, "error", err)
			}
		}
	}

	removed, err := s.coll.DeleteByID(ctx, id)
	if err != nil {
		return nil, apperrors.NewInternalError(fmt.Sprintf("failed to delete %s", s.schema.Singular), err)
	}
	if !removed {
		return nil, apperrors.NewNotFoundError(s.schema.Singular, id)
	}
	return existing, nil
}

func (s *Service) findByID(ctx context.Context, id string) (map[string]interface{}, error) {
	if id == "" {
		return nil, apperrors.NewValidationError("id", "is required")
	}
	doc, err := s.coll.FindOne(ctx, bson.M{"_id": id})
	if err != nil {
		if errors.Is(err, ErrNotExist) {
			return nil, apperrors.NewNotFoundError(s.schema.Singular, id)
		}
		return nil, apperrors.NewInternalError(fmt.Sprintf("failed to load %s", s.schema.Singular), err)
	}
	return doc, nil
}

// checkUnique pre-checks declared unique fields. The unique index remains
// the authority; this check exists to return a precise 409 before racing
// writers hit the index.
func (s *Service) checkUnique(ctx context.Context, doc map[string]interface{}, excludeID string) error {
	for _, field := range s.schema.UniqueFields() {
		value, ok := doc[field.Name]
		if !ok || value == nil || value == "" {
			continue
		}
		filter := bson.M{field.Name: value}
		if excludeID != "" {
			filter["_id"] = bson.M{"$ne": excludeID}
		}
		n, err := s.coll.Count(ctx, filter)
		if err != nil {
			return apperrors.NewInternalError("failed to check uniqueness", err)
		}
		if n > 0 {
			return apperrors.NewConflictError(s.schema.Singular, field.Name, fmt.Sprintf("%v", value))
		}
	}
	return nil
}

func (s *Service) duplicateError(doc map[string]interface{}) error {
	for _, field := range s.schema.UniqueFields() {
		if v, ok := doc[field.Name]; ok {
			return apperrors.NewConflictError(s.schema.Singular, field.Name, fmt.Sprintf("%v", v))
		}
	}
	return apperrors.NewConflictError(s.schema.Singular, "_id", fmt.Sprintf("%v", doc["_id"]))
}

func asFloat(v interface{}) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	default:
		return 0
	}
}
