package resource

import (
	"context"
	"fmt"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// For any combination of criteria, a record in the result must satisfy
// every criterion on its own: combining criteria can only narrow the
// result, never widen it.
func TestFilterConjunctionProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	schema := testSchema()

	categories := []string{"Workshop", "Competition", "Seminar"}
	statuses := []string{"Upcoming", "Active", "Completed"}

	coll := newMemCollection()
	id := 0
	for _, category := range categories {
		for _, status := range statuses {
			for _, published := range []bool{true, false} {
				id++
				coll.docs = append(coll.docs, map[string]interface{}{
					"_id":         fmt.Sprintf("%03d", id),
					"title":       fmt.Sprintf("Event %d", id),
					"category":    category,
					"status":      status,
					"isPublished": published,
				})
			}
		}
	}

	genCriterion := func(values []string) gopter.Gen {
		choices := append([]string{"", "all"}, values...)
		constGens := make([]gopter.Gen, 0, len(choices))
		for _, v := range choices {
			constGens = append(constGens, gen.Const(v))
		}
		return gen.OneGenOf(constGens...)
	}

	properties.Property("results satisfy every criterion independently", prop.ForAll(
		func(category, status, published string) bool {
			criteria := map[string]string{
				"category":    category,
				"status":      status,
				"isPublished": published,
			}

			combined, err := BuildFilter(Criteria{Fields: criteria}, schema)
			if err != nil {
				return false
			}
			docs, err := coll.Find(context.Background(), combined, nil, 0, 0)
			if err != nil {
				return false
			}

			for _, doc := range docs {
				for name, raw := range criteria {
					fields := map[string]string{name: raw}
					if name != "isPublished" {
						// Lift the default so only the one criterion applies.
						fields["isPublished"] = "all"
					}
					single, err := BuildFilter(Criteria{Fields: fields}, schema)
					if err != nil {
						return false
					}
					if !matchFilter(doc, single) {
						return false
					}
				}
			}
			return true
		},
		genCriterion(categories),
		genCriterion(statuses),
		genCriterion([]string{"true", "false"}),
	))

	properties.TestingRun(t)
}
