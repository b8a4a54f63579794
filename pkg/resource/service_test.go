package resource

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/CR-8/clubcore/pkg/apperrors"
)

// fakeStore records object-store calls and can fail deletes.
type fakeStore struct {
	uploaded  []string
	deleted   []string
	deleteErr error
}

func (s *fakeStore) Upload(_ context.Context, key string, _ []byte, _ string) error {
	s.uploaded = append(s.uploaded, key)
	return nil
}

func (s *fakeStore) Delete(_ context.Context, key string) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	s.deleted = append(s.deleted, key)
	return nil
}

func (s *fakeStore) PublicURL(key string) string { return "https://cdn.example.com/" + key }

func (s *fakeStore) PresignGetURL(_ context.Context, key string, _ time.Duration) (string, time.Time, error) {
	return "https://signed.example.com/" + key, time.Date(2026, time.May, 1, 10, 15, 0, 0, time.UTC), nil
}

func blogSchema() *Schema {
	return &Schema{
		Name:       "blogs",
		Singular:   "blog",
		Collection: "blogs",
		Fields: []Field{
			{Name: "title", Type: FieldText, Required: true, Searchable: true, Sortable: true, Updatable: true},
			{Name: "slug", Type: FieldText, Required: true, Filterable: true, Unique: true, Updatable: true},
			{Name: "content", Type: FieldText, Required: true, Updatable: true},
			{Name: "status", Type: FieldEnum, Filterable: true, Updatable: true,
				Values: []string{"Draft", "Published", "Archived"}, Default: "Draft"},
			{Name: "tags", Type: FieldList, Filterable: true, Updatable: true},
		},
		Derived: []DerivedField{
			{
				Name:   "wordCount",
				Inputs: []string{"content"},
				Compute: func(doc map[string]interface{}) interface{} {
					content, _ := doc["content"].(string)
					var n float64
					inWord := false
					for _, r := range content {
						if r == ' ' || r == '\n' || r == '\t' {
							inWord = false
							continue
						}
						if !inWord {
							n++
							inWord = true
						}
					}
					return n
				},
			},
		},
		DefaultSort:     Sort{Field: "createdAt", Desc: true},
		VisibilityField: "status",
		VisibilityValue: "Published",
		ViewCounter:     "views",
	}
}

func newTestService(schema *Schema, coll Collection, storage ObjectStore) *Service {
	svc := NewService(schema, coll, storage, nil, nopLogger{})
	svc.newID = func() string { return "fixed-id" }
	svc.now = func() time.Time {
		return time.Date(2026, time.May, 1, 10, 0, 0, 0, time.UTC)
	}
	return svc
}

func TestServiceCreate(t *testing.T) {
	coll := newMemCollection()
	svc := newTestService(blogSchema(), coll, nil)

	doc, err := svc.Create(context.Background(), map[string]interface{}{
		"title":   "Hello",
		"slug":    "hello",
		"content": "one two three",
		"author":  "dropped silently",
	}, nil)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if doc["_id"] != "fixed-id" {
		t.Errorf("_id = %v", doc["_id"])
	}
	if doc["status"] != "Draft" {
		t.Errorf("status default = %v, want Draft", doc["status"])
	}
	if doc["wordCount"] != 3.0 {
		t.Errorf("wordCount = %v, want 3", doc["wordCount"])
	}
	if doc["views"] != int64(0) {
		t.Errorf("views = %v (%T), want int64(0)", doc["views"], doc["views"])
	}
	if _, ok := doc["author"]; ok {
		t.Error("undeclared field survived into the stored record")
	}
	created, _ := doc["createdAt"].(time.Time)
	updated, _ := doc["updatedAt"].(time.Time)
	if created.IsZero() || !created.Equal(updated) {
		t.Errorf("createdAt=%v updatedAt=%v, want equal timestamps", created, updated)
	}

	if len(coll.docs) != 1 {
		t.Fatalf("stored %d docs, want 1", len(coll.docs))
	}
}

func TestServiceCreateRequiredField(t *testing.T) {
	svc := newTestService(blogSchema(), newMemCollection(), nil)

	_, err := svc.Create(context.Background(), map[string]interface{}{
		"title": "No slug",
	}, nil)
	var validation *apperrors.ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("Create() error = %v, want ValidationError", err)
	}
	if validation.Field != "slug" && validation.Field != "content" {
		t.Errorf("validation names field %q, want a missing required field", validation.Field)
	}
}

func TestServiceCreateDuplicate(t *testing.T) {
	coll := newMemCollection(map[string]interface{}{"_id": "1", "slug": "hello"})
	svc := newTestService(blogSchema(), coll, nil)

	_, err := svc.Create(context.Background(), map[string]interface{}{
		"title":   "Hello again",
		"slug":    "hello",
		"content": "dup",
	}, nil)
	if !apperrors.IsConflict(err) {
		t.Fatalf("Create() error = %v, want ConflictError", err)
	}
}

func TestServiceCreateDuplicateRace(t *testing.T) {
	// The pre-check passes but the insert loses the race against the
	// unique index.
	coll := newMemCollection()
	coll.insertErr = ErrDuplicate
	svc := newTestService(blogSchema(), coll, nil)

	_, err := svc.Create(context.Background(), map[string]interface{}{
		"title":   "Hello",
		"slug":    "hello",
		"content": "x",
	}, nil)
	if !apperrors.IsConflict(err) {
		t.Fatalf("Create() error = %v, want ConflictError", err)
	}
}

func TestServiceUpdate(t *testing.T) {
	created := time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC)
	coll := newMemCollection(map[string]interface{}{
		"_id": "b1", "title": "Old", "slug": "old", "content": "one two",
		"status": "Draft", "wordCount": 2.0,
		"createdAt": created, "updatedAt": created, "views": int64(7),
	})
	svc := newTestService(blogSchema(), coll, nil)

	doc, err := svc.Update(context.Background(), "b1", map[string]interface{}{
		"content":   "one two three four",
		"views":     int64(9999),
		"createdAt": "2020-01-01",
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	if doc["content"] != "one two three four" {
		t.Errorf("content = %v", doc["content"])
	}
	if doc["wordCount"] != 4.0 {
		t.Errorf("wordCount = %v, want recomputed 4", doc["wordCount"])
	}
	if doc["title"] != "Old" {
		t.Errorf("untouched field title = %v", doc["title"])
	}
	if asFloat(doc["views"]) != 7 {
		t.Errorf("views = %v, want allow-list to drop the write", doc["views"])
	}
	if got, _ := doc["createdAt"].(time.Time); !got.Equal(created) {
		t.Errorf("createdAt = %v, want unchanged %v", got, created)
	}
	if got, _ := doc["updatedAt"].(time.Time); !got.After(created) {
		t.Errorf("updatedAt = %v, want advanced past %v", got, created)
	}

	stored, err := coll.FindOne(context.Background(), map[string]interface{}{"_id": "b1"})
	if err != nil {
		t.Fatalf("FindOne() error = %v", err)
	}
	if stored["wordCount"] != 4.0 {
		t.Errorf("stored wordCount = %v, want 4", stored["wordCount"])
	}
}

func TestServiceUpdateEmptyPayloadAdvancesUpdatedAt(t *testing.T) {
	created := time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC)
	coll := newMemCollection(map[string]interface{}{
		"_id": "b1", "title": "T", "slug": "t", "content": "c",
		"createdAt": created, "updatedAt": created,
	})
	svc := newTestService(blogSchema(), coll, nil)

	doc, err := svc.Update(context.Background(), "b1", map[string]interface{}{})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if got, _ := doc["updatedAt"].(time.Time); !got.After(created) {
		t.Errorf("updatedAt = %v, want advanced on a no-op update", got)
	}
}

func TestServiceUpdateConflict(t *testing.T) {
	coll := newMemCollection(
		map[string]interface{}{"_id": "b1", "title": "A", "slug": "a", "content": "x"},
		map[string]interface{}{"_id": "b2", "title": "B", "slug": "b", "content": "y"},
	)
	svc := newTestService(blogSchema(), coll, nil)

	// Taking another record's slug conflicts.
	_, err := svc.Update(context.Background(), "b2", map[string]interface{}{"slug": "a"})
	if !apperrors.IsConflict(err) {
		t.Fatalf("Update() error = %v, want ConflictError", err)
	}

	// Re-asserting your own slug does not.
	if _, err := svc.Update(context.Background(), "b1", map[string]interface{}{"slug": "a"}); err != nil {
		t.Fatalf("self-update error = %v", err)
	}
}

func TestServiceUpdateNotFound(t *testing.T) {
	svc := newTestService(blogSchema(), newMemCollection(), nil)

	_, err := svc.Update(context.Background(), "ghost", map[string]interface{}{"title": "x"})
	if !apperrors.IsNotFound(err) {
		t.Fatalf("Update() error = %v, want NotFoundError", err)
	}
}

func TestServiceGetCountsView(t *testing.T) {
	coll := newMemCollection(map[string]interface{}{"_id": "b1", "title": "T", "views": int64(3)})
	svc := newTestService(blogSchema(), coll, nil)

	doc, err := svc.Get(context.Background(), "b1", GetOptions{CountView: true})
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if asFloat(doc["views"]) != 4 {
		t.Errorf("returned views = %v, want 4", doc["views"])
	}

	stored, _ := coll.FindOne(context.Background(), map[string]interface{}{"_id": "b1"})
	if asFloat(stored["views"]) != 4 {
		t.Errorf("stored views = %v, want 4", stored["views"])
	}
}

func TestServiceGetViewCounterFailureIsSoft(t *testing.T) {
	coll := newMemCollection(map[string]interface{}{"_id": "b1", "title": "T", "views": int64(3)})
	coll.incErr = errors.New("write concern timeout")
	svc := newTestService(blogSchema(), coll, nil)

	doc, err := svc.Get(context.Background(), "b1", GetOptions{CountView: true})
	if err != nil {
		t.Fatalf("Get() error = %v, counter failure must not fail the read", err)
	}
	if asFloat(doc["views"]) != 3 {
		t.Errorf("views = %v, want unchanged 3", doc["views"])
	}
}

func TestServiceGetValidation(t *testing.T) {
	svc := newTestService(blogSchema(), newMemCollection(), nil)

	if _, err := svc.Get(context.Background(), "", GetOptions{}); apperrors.HTTPStatus(err) != 400 {
		t.Errorf("empty id error = %v, want 400", err)
	}
	if _, err := svc.Get(context.Background(), "ghost", GetOptions{}); !apperrors.IsNotFound(err) {
		t.Errorf("missing record error = %v, want NotFoundError", err)
	}
}

func documentSchema() *Schema {
	return &Schema{
		Name:       "documents",
		Singular:   "document",
		Collection: "documents",
		Fields: []Field{
			{Name: "title", Type: FieldText, Required: true, Searchable: true, Updatable: true},
		},
		FileKeyField: "fileKey",
		FileURLField: "fileUrl",
	}
}

func TestServiceCreateStoresUploadMetadata(t *testing.T) {
	coll := newMemCollection()
	svc := newTestService(documentSchema(), coll, &fakeStore{})

	doc, err := svc.Create(context.Background(), map[string]interface{}{"title": "Handbook"}, &Upload{
		Key: "documents/abc.pdf",
		URL: "https://cdn.example.com/documents/abc.pdf",
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if doc["fileKey"] != "documents/abc.pdf" {
		t.Errorf("fileKey = %v", doc["fileKey"])
	}
	if doc["fileUrl"] != "https://cdn.example.com/documents/abc.pdf" {
		t.Errorf("fileUrl = %v", doc["fileUrl"])
	}
}

func TestServiceCreateIgnoresCallerFileMetadata(t *testing.T) {
	store := &fakeStore{}
	coll := newMemCollection()
	svc := newTestService(documentSchema(), coll, store)

	// A JSON payload naming the file fields must not be able to point the
	// record at an arbitrary object.
	doc, err := svc.Create(context.Background(), map[string]interface{}{
		"title":   "Forged",
		"fileKey": "documents/victim-object.pdf",
		"fileUrl": "https://cdn.example.com/documents/victim-object.pdf",
	}, nil)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if v, ok := doc["fileKey"]; ok {
		t.Errorf("fileKey = %v, want caller value dropped", v)
	}
	if v, ok := doc["fileUrl"]; ok {
		t.Errorf("fileUrl = %v, want caller value dropped", v)
	}

	// Deleting the record must not touch the object store either.
	if _, err := svc.Delete(context.Background(), "fixed-id"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if len(store.deleted) != 0 {
		t.Errorf("object store deletions = %v, want none", store.deleted)
	}
}

func TestServiceDeleteCleansUpStoredObject(t *testing.T) {
	store := &fakeStore{}
	coll := newMemCollection(map[string]interface{}{
		"_id": "d1", "title": "Handbook", "fileKey": "documents/abc.pdf",
	})
	svc := newTestService(documentSchema(), coll, store)

	doc, err := svc.Delete(context.Background(), "d1")
	if err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if doc["_id"] != "d1" {
		t.Errorf("deleted record = %v", doc)
	}
	if len(store.deleted) != 1 || store.deleted[0] != "documents/abc.pdf" {
		t.Errorf("store deletions = %v", store.deleted)
	}
	if len(coll.docs) != 0 {
		t.Errorf("record survived deletion")
	}
}

func TestServiceDeleteStorageFailureDoesNotBlock(t *testing.T) {
	store := &fakeStore{deleteErr: errors.New("access denied")}
	coll := newMemCollection(map[string]interface{}{
		"_id": "d1", "title": "Handbook", "fileKey": "documents/abc.pdf",
	})
	svc := newTestService(documentSchema(), coll, store)

	if _, err := svc.Delete(context.Background(), "d1"); err != nil {
		t.Fatalf("Delete() error = %v, storage failure must not block removal", err)
	}
	if len(coll.docs) != 0 {
		t.Errorf("record survived deletion after storage failure")
	}
}

func TestServiceDeleteNotFound(t *testing.T) {
	svc := newTestService(blogSchema(), newMemCollection(), nil)

	_, err := svc.Delete(context.Background(), "ghost")
	if !apperrors.IsNotFound(err) {
		t.Fatalf("Delete() error = %v, want NotFoundError", err)
	}
}

func TestServiceList(t *testing.T) {
	coll := newMemCollection()
	for i := 1; i <= 4; i++ {
		status := "Published"
		if i == 4 {
			status = "Draft"
		}
		coll.docs = append(coll.docs, map[string]interface{}{
			"_id":    fmt.Sprintf("b%d", i),
			"title":  fmt.Sprintf("Post %d", i),
			"slug":   fmt.Sprintf("post-%d", i),
			"status": status,
			"createdAt": time.Date(2026, time.January, i, 0, 0, 0, 0, time.UTC),
		})
	}
	schema := blogSchema()
	svc := NewService(schema, coll, nil, []Reducer{
		{Name: "published", Kind: ReducerCount},
	}, nopLogger{})

	listing, err := svc.List(context.Background(), Query{})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if listing.Total != 3 {
		t.Errorf("Total = %d, want the 3 published posts", listing.Total)
	}
	// Default sort: createdAt desc.
	if listing.Records[0]["_id"] != "b3" {
		t.Errorf("first record = %v, want b3", listing.Records[0]["_id"])
	}
	if listing.Stats.Values["published"] != 3 {
		t.Errorf("stats published = %v, want 3", listing.Stats.Values["published"])
	}

	// Stats stay global even when the request filter narrows the page.
	listing, err = svc.List(context.Background(), Query{
		Criteria: Criteria{Fields: map[string]string{"slug": "post-1"}},
	})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if listing.Total != 1 {
		t.Errorf("filtered Total = %d, want 1", listing.Total)
	}
	if listing.Stats.Values["published"] != 3 {
		t.Errorf("stats under filter = %v, want still 3", listing.Stats.Values["published"])
	}
}
