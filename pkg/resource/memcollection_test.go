package resource

import (
	"context"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/CR-8/clubcore/pkg/observability/logger"
)

// memCollection is an in-memory Collection covering the filter shapes
// the core emits: equality, $or of case-insensitive $regex, $gte, $lte
// and $ne. Error fields inject failures per operation.
type memCollection struct {
	mu   sync.Mutex
	docs []map[string]interface{}

	insertErr error
	findErr   error
	countErr  error
	sumErr    error
	updateErr error
	incErr    error
	deleteErr error
}

func newMemCollection(docs ...map[string]interface{}) *memCollection {
	c := &memCollection{}
	for _, d := range docs {
		c.docs = append(c.docs, copyDoc(d))
	}
	return c
}

func copyDoc(doc map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(doc))
	for k, v := range doc {
		out[k] = v
	}
	return out
}

func (c *memCollection) InsertOne(_ context.Context, doc map[string]interface{}) error {
	if c.insertErr != nil {
		return c.insertErr
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.docs = append(c.docs, copyDoc(doc))
	return nil
}

func (c *memCollection) FindOne(_ context.Context, filter bson.M) (map[string]interface{}, error) {
	if c.findErr != nil {
		return nil, c.findErr
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, doc := range c.docs {
		if matchFilter(doc, filter) {
			return copyDoc(doc), nil
		}
	}
	return nil, ErrNotExist
}

func (c *memCollection) Find(_ context.Context, filter bson.M, order bson.D, skip, limit int64) ([]map[string]interface{}, error) {
	if c.findErr != nil {
		return nil, c.findErr
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	var matched []map[string]interface{}
	for _, doc := range c.docs {
		if matchFilter(doc, filter) {
			matched = append(matched, copyDoc(doc))
		}
	}

	sort.SliceStable(matched, func(i, j int) bool {
		for _, e := range order {
			cmp, ok := compareValues(matched[i][e.Key], matched[j][e.Key])
			if !ok || cmp == 0 {
				continue
			}
			if dir, _ := e.Value.(int); dir < 0 {
				return cmp > 0
			}
			return cmp < 0
		}
		return false
	})

	if skip >= int64(len(matched)) {
		return nil, nil
	}
	matched = matched[skip:]
	if limit > 0 && limit < int64(len(matched)) {
		matched = matched[:limit]
	}
	return matched, nil
}

func (c *memCollection) Count(_ context.Context, filter bson.M) (int64, error) {
	if c.countErr != nil {
		return 0, c.countErr
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	var n int64
	for _, doc := range c.docs {
		if matchFilter(doc, filter) {
			n++
		}
	}
	return n, nil
}

func (c *memCollection) SumField(_ context.Context, filter bson.M, field string) (float64, error) {
	if c.sumErr != nil {
		return 0, c.sumErr
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	var total float64
	for _, doc := range c.docs {
		if matchFilter(doc, filter) {
			total += asFloat(doc[field])
		}
	}
	return total, nil
}

func (c *memCollection) UpdateByID(_ context.Context, id string, set bson.M) (bool, error) {
	if c.updateErr != nil {
		return false, c.updateErr
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, doc := range c.docs {
		if doc["_id"] == id {
			for k, v := range set {
				doc[k] = v
			}
			return true, nil
		}
	}
	return false, nil
}

func (c *memCollection) IncByID(_ context.Context, id string, field string, delta int64) error {
	if c.incErr != nil {
		return c.incErr
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, doc := range c.docs {
		if doc["_id"] == id {
			doc[field] = asFloat(doc[field]) + float64(delta)
			return nil
		}
	}
	return ErrNotExist
}

func (c *memCollection) DeleteByID(_ context.Context, id string) (bool, error) {
	if c.deleteErr != nil {
		return false, c.deleteErr
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, doc := range c.docs {
		if doc["_id"] == id {
			c.docs = append(c.docs[:i], c.docs[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func matchFilter(doc map[string]interface{}, filter bson.M) bool {
	for key, cond := range filter {
		if key == "$or" {
			if !matchOr(doc, cond) {
				return false
			}
			continue
		}
		if !matchCondition(doc[key], cond) {
			return false
		}
	}
	return true
}

func matchOr(doc map[string]interface{}, cond interface{}) bool {
	branches, ok := cond.([]bson.M)
	if !ok {
		return false
	}
	for _, branch := range branches {
		if matchFilter(doc, branch) {
			return true
		}
	}
	return false
}

func matchCondition(actual, cond interface{}) bool {
	ops, isOps := cond.(bson.M)
	if !isOps {
		return matchEquality(actual, cond)
	}
	for op, operand := range ops {
		switch op {
		case "$regex":
			pattern, _ := operand.(string)
			if opts, _ := ops["$options"].(string); strings.Contains(opts, "i") {
				pattern = "(?i)" + pattern
			}
			s, ok := actual.(string)
			if !ok {
				return false
			}
			matched, err := regexp.MatchString(pattern, s)
			if err != nil || !matched {
				return false
			}
		case "$options":
		case "$gte":
			cmp, ok := compareValues(actual, operand)
			if !ok || cmp < 0 {
				return false
			}
		case "$lte":
			cmp, ok := compareValues(actual, operand)
			if !ok || cmp > 0 {
				return false
			}
		case "$ne":
			if matchEquality(actual, operand) {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// matchEquality mirrors Mongo equality: a scalar criterion matches an
// array value when the array contains it.
func matchEquality(actual, expected interface{}) bool {
	switch list := actual.(type) {
	case []string:
		for _, item := range list {
			if matchEquality(item, expected) {
				return true
			}
		}
		return false
	case []interface{}:
		for _, item := range list {
			if matchEquality(item, expected) {
				return true
			}
		}
		return false
	}

	if at, ok := actual.(time.Time); ok {
		et, ok := expected.(time.Time)
		return ok && at.Equal(et)
	}
	if cmp, ok := compareNumbers(actual, expected); ok {
		return cmp == 0
	}
	return actual == expected
}

func compareValues(a, b interface{}) (int, bool) {
	if at, ok := a.(time.Time); ok {
		bt, ok := b.(time.Time)
		if !ok {
			return 0, false
		}
		return at.Compare(bt), true
	}
	if cmp, ok := compareNumbers(a, b); ok {
		return cmp, true
	}
	as, aok := a.(string)
	bs, bok := b.(string)
	if aok && bok {
		return strings.Compare(as, bs), true
	}
	ab, aok := a.(bool)
	bb, bok := b.(bool)
	if aok && bok {
		switch {
		case ab == bb:
			return 0, true
		case bb:
			return -1, true
		default:
			return 1, true
		}
	}
	return 0, false
}

func compareNumbers(a, b interface{}) (int, bool) {
	af, aok := numericValue(a)
	bf, bok := numericValue(b)
	if !aok || !bok {
		return 0, false
	}
	switch {
	case af < bf:
		return -1, true
	case af > bf:
		return 1, true
	default:
		return 0, true
	}
}

func numericValue(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

// nopLogger silences the core during tests.
type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}
func (l nopLogger) With(...any) logger.Logger {
	return l
}
func (l nopLogger) WithContext(context.Context) logger.Logger {
	return l
}
