package resources

import (
	"go.mongodb.org/mongo-driver/bson"

	"github.com/CR-8/clubcore/pkg/resource"
)

// Documents declares the document library. The stored file lives in
// object storage; deleting the record cleans the object up best-effort.
func Documents() Definition {
	return Definition{
		Schema: resource.Schema{
			Name:       "documents",
			Singular:   "document",
			Collection: "documents",
			Fields: []resource.Field{
				{Name: "title", Type: resource.FieldText, Required: true, Searchable: true, Sortable: true, Updatable: true},
				{Name: "description", Type: resource.FieldText, Searchable: true, Updatable: true},
				{Name: "category", Type: resource.FieldEnum, Filterable: true, Sortable: true, Updatable: true,
					Values:  []string{"Minutes", "Report", "Proposal", "Manual", "Form", "Other"},
					Default: "Other"},
				{Name: "fileName", Type: resource.FieldText, Searchable: true},
				{Name: "fileSize", Type: resource.FieldNumber, Filterable: true, Sortable: true},
				{Name: "mimeType", Type: resource.FieldText, Filterable: true},
				{Name: "visibility", Type: resource.FieldEnum, Filterable: true, Updatable: true,
					Values:  []string{"public", "private"},
					Default: "public"},
			},
			DefaultSort:     resource.Sort{Field: "createdAt", Desc: true},
			VisibilityField: "visibility",
			VisibilityValue: "public",
			FileKeyField:    "fileKey",
			FileURLField:    "fileUrl",
		},
		Reducers: []resource.Reducer{
			// total overrides the public-only base to count private files too.
			{Name: "total", Kind: resource.ReducerCount, Where: bson.M{"visibility": bson.M{"$ne": nil}}},
			{Name: "public", Kind: resource.ReducerCount},
			{Name: "private", Kind: resource.ReducerCount, Where: bson.M{"visibility": "private"}},
			{Name: "totalSize", Kind: resource.ReducerSum, Field: "fileSize"},
			{Name: "uploadedThisMonth", Kind: resource.ReducerCountWindow, Field: "createdAt", Window: resource.WindowMonth},
		},
	}
}
