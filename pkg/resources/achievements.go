package resources

import (
	"go.mongodb.org/mongo-driver/bson"

	"github.com/CR-8/clubcore/pkg/resource"
)

// Achievements declares the achievements showcase resource.
func Achievements() Definition {
	return Definition{
		Schema: resource.Schema{
			Name:       "achievements",
			Singular:   "achievement",
			Collection: "achievements",
			Fields: []resource.Field{
				{Name: "title", Type: resource.FieldText, Required: true, Searchable: true, Sortable: true, Updatable: true},
				{Name: "description", Type: resource.FieldText, Searchable: true, Updatable: true},
				{Name: "category", Type: resource.FieldEnum, Filterable: true, Updatable: true,
					Values:  []string{"Competition", "Publication", "Grant", "Recognition"},
					Default: "Recognition"},
				{Name: "date", Type: resource.FieldDate, Required: true, Filterable: true, Sortable: true, Updatable: true},
				{Name: "awardedTo", Type: resource.FieldList, Filterable: true, Updatable: true},
				{Name: "position", Type: resource.FieldText, Filterable: true, Updatable: true},
				{Name: "isVisible", Type: resource.FieldBool, Filterable: true, Updatable: true, Default: true},
			},
			DefaultSort:     resource.Sort{Field: "date", Desc: true},
			VisibilityField: "isVisible",
			VisibilityValue: true,
			FileKeyField:    "imageKey",
			FileURLField:    "imageUrl",
		},
		Reducers: []resource.Reducer{
			// total overrides the visible-only base to count every entry.
			{Name: "total", Kind: resource.ReducerCount, Where: bson.M{"isVisible": bson.M{"$ne": nil}}},
			{Name: "thisYear", Kind: resource.ReducerCountWindow, Field: "date", Window: resource.WindowYear},
			{Name: "competitionWins", Kind: resource.ReducerCount, Where: bson.M{"category": "Competition"}},
		},
	}
}
