package resources

import (
	"go.mongodb.org/mongo-driver/bson"

	"github.com/CR-8/clubcore/pkg/resource"
)

// Team declares the member roster. rollNumber is unique across the club;
// a duplicate is a 409, not a silent overwrite.
func Team() Definition {
	return Definition{
		Schema: resource.Schema{
			Name:       "team",
			Singular:   "team member",
			Collection: "team",
			Fields: []resource.Field{
				{Name: "name", Type: resource.FieldText, Required: true, Searchable: true, Sortable: true, Updatable: true},
				{Name: "rollNumber", Type: resource.FieldText, Required: true, Filterable: true, Unique: true, Updatable: true},
				{Name: "role", Type: resource.FieldEnum, Filterable: true, Sortable: true, Updatable: true,
					Values:  []string{"President", "VicePresident", "Lead", "Member", "Mentor"},
					Default: "Member"},
				{Name: "department", Type: resource.FieldText, Filterable: true, Searchable: true, Updatable: true},
				{Name: "year", Type: resource.FieldNumber, Filterable: true, Sortable: true, Updatable: true},
				{Name: "email", Type: resource.FieldText, Searchable: true, Updatable: true},
				{Name: "socials", Type: resource.FieldList, Updatable: true},
				{Name: "isActive", Type: resource.FieldBool, Filterable: true, Updatable: true, Default: true},
			},
			DefaultSort:     resource.Sort{Field: "name", Desc: false},
			VisibilityField: "isActive",
			VisibilityValue: true,
			FileKeyField:    "photoKey",
			FileURLField:    "photoUrl",
		},
		Reducers: []resource.Reducer{
			// total overrides the active-only base to count alumni too.
			{Name: "total", Kind: resource.ReducerCount, Where: bson.M{"isActive": bson.M{"$ne": nil}}},
			{Name: "active", Kind: resource.ReducerCount},
			{Name: "alumni", Kind: resource.ReducerCount, Where: bson.M{"isActive": false}},
			{Name: "mentors", Kind: resource.ReducerCount, Where: bson.M{"role": "Mentor"}},
		},
	}
}
