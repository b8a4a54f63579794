package resource

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/CR-8/clubcore/pkg/observability/logger"
)

// ReducerKind selects the computation a reducer performs.
type ReducerKind string

const (
	// ReducerCount counts documents matching the reducer predicate.
	ReducerCount ReducerKind = "count"
	// ReducerSum sums a numeric field over matching documents.
	ReducerSum ReducerKind = "sum"
	// ReducerCountWindow counts documents whose date field falls inside
	// a calendar window ending at the call instant.
	ReducerCountWindow ReducerKind = "count_window"
)

// Window names a calendar window for time-windowed reducers. Boundaries
// are computed in UTC at call time, inclusive of the boundary instant.
type Window string

const (
	WindowMonth Window = "month"
	WindowYear  Window = "year"
)

// Reducer is one named summary statistic.
type Reducer struct {
	Name string
	Kind ReducerKind

	// Where narrows the documents the reducer sees. Merged with the base
	// predicate; nil means no extra constraint.
	Where bson.M

	// Field is the summed field for ReducerSum and the date field for
	// ReducerCountWindow.
	Field string

	Window Window
}

// Stats holds aggregation results. A reducer that failed reports zero and
// appears in Failed; the remaining reducers are unaffected. Stats are
// advisory, so data tolerance wins over strict failure.
type Stats struct {
	Values map[string]float64 `json:"values"`
	Failed []string           `json:"failed,omitempty"`
}

// Aggregate computes every reducer over the base predicate. It runs once
// per call and does not cache.
func Aggregate(ctx context.Context, coll Collection, base bson.M, reducers []Reducer, now time.Time, log logger.Logger) Stats {
	stats := Stats{Values: make(map[string]float64, len(reducers))}
	for _, r := range reducers {
		value, err := runReducer(ctx, coll, base, r, now)
		if err != nil {
			if log != nil {
				log.Warn("stats reducer failed", "reducer", r.Name, "error", err)
			}
			stats.Values[r.Name] = 0
			stats.Failed = append(stats.Failed, r.Name)
			continue
		}
		stats.Values[r.Name] = value
	}
	return stats
}

func runReducer(ctx context.Context, coll Collection, base bson.M, r Reducer, now time.Time) (float64, error) {
	filter := mergeFilters(base, r.Where)
	switch r.Kind {
	case ReducerSum:
		return coll.SumField(ctx, filter, r.Field)
	case ReducerCountWindow:
		filter[r.Field] = bson.M{"$gte": windowStart(now, r.Window)}
		fallthrough
	default:
		n, err := coll.Count(ctx, filter)
		return float64(n), err
	}
}

// windowStart returns the inclusive UTC start of the calendar window
// containing now.
func windowStart(now time.Time, w Window) time.Time {
	now = now.UTC()
	switch w {
	case WindowYear:
		return time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	default:
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	}
}

func mergeFilters(base, extra bson.M) bson.M {
	merged := make(bson.M, len(base)+len(extra))
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range extra {
		merged[k] = v
	}
	return merged
}
