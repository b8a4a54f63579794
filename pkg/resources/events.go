package resources

import (
	"go.mongodb.org/mongo-driver/bson"

	"github.com/CR-8/clubcore/pkg/resource"
)

// Events declares the club events resource. Status is set only by caller
// updates; nothing advances it automatically.
func Events() Definition {
	return Definition{
		Schema: resource.Schema{
			Name:       "events",
			Singular:   "event",
			Collection: "events",
			Fields: []resource.Field{
				{Name: "title", Type: resource.FieldText, Required: true, Searchable: true, Sortable: true, Updatable: true},
				{Name: "description", Type: resource.FieldText, Searchable: true, Updatable: true},
				{Name: "category", Type: resource.FieldEnum, Required: true, Filterable: true, Updatable: true,
					Values: []string{"Workshop", "Competition", "Seminar", "Meetup"}},
				{Name: "status", Type: resource.FieldEnum, Filterable: true, Sortable: true, Updatable: true,
					Values:  []string{"Upcoming", "Active", "Completed", "Cancelled"},
					Default: "Upcoming"},
				{Name: "venue", Type: resource.FieldText, Searchable: true, Updatable: true},
				{Name: "startDate", Type: resource.FieldDate, Required: true, Filterable: true, Sortable: true, Updatable: true},
				{Name: "endDate", Type: resource.FieldDate, Filterable: true, Updatable: true},
				{Name: "isPublished", Type: resource.FieldBool, Filterable: true, Updatable: true, Default: true},
			},
			DefaultSort:     resource.Sort{Field: "startDate", Desc: true},
			VisibilityField: "isPublished",
			VisibilityValue: true,
			ViewCounter:     "views",
			FileKeyField:    "coverImageKey",
			FileURLField:    "coverImageUrl",
		},
		Reducers: []resource.Reducer{
			// total overrides the published-only base to count every event.
			{Name: "total", Kind: resource.ReducerCount, Where: bson.M{"isPublished": bson.M{"$ne": nil}}},
			{Name: "upcoming", Kind: resource.ReducerCount, Where: bson.M{"status": "Upcoming"}},
			{Name: "active", Kind: resource.ReducerCount, Where: bson.M{"status": "Active"}},
			{Name: "completedThisMonth", Kind: resource.ReducerCountWindow, Field: "endDate",
				Where: bson.M{"status": "Completed"}, Window: resource.WindowMonth},
			{Name: "totalViews", Kind: resource.ReducerSum, Field: "views"},
		},
	}
}
