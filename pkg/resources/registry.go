// Package resources declares the concrete resource tables the generic
// core is configured with: events, stock, team, blogs, documents and
// achievements. Adding a resource means adding a table here, not writing
// new filter/pagination/mutation code.
package resources

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/CR-8/clubcore/pkg/resource"
)

// Definition couples a resource schema with its global stats reducers.
type Definition struct {
	Schema   resource.Schema
	Reducers []resource.Reducer
}

// All returns every resource definition, in route-mount order.
func All() []Definition {
	return []Definition{
		Events(),
		Stock(),
		Team(),
		Blogs(),
		Documents(),
		Achievements(),
	}
}

// IndexModels returns the unique indexes a schema requires.
func IndexModels(schema *resource.Schema) []mongo.IndexModel {
	var models []mongo.IndexModel
	for _, f := range schema.UniqueFields() {
		models = append(models, mongo.IndexModel{
			Keys:    bson.D{{Key: f.Name, Value: 1}},
			Options: options.Index().SetUnique(true),
		})
	}
	return models
}
