package resources

import (
	"strings"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/CR-8/clubcore/pkg/resource"
)

// wordsPerMinute is the reading speed assumed for the derived readingTime.
const wordsPerMinute = 200

// Blogs declares the blog CMS resource. slug is unique; readingTime is
// derived from the content length.
func Blogs() Definition {
	return Definition{
		Schema: resource.Schema{
			Name:       "blogs",
			Singular:   "blog",
			Collection: "blogs",
			Fields: []resource.Field{
				{Name: "title", Type: resource.FieldText, Required: true, Searchable: true, Sortable: true, Updatable: true},
				{Name: "slug", Type: resource.FieldText, Required: true, Filterable: true, Unique: true, Updatable: true},
				{Name: "content", Type: resource.FieldText, Required: true, Updatable: true},
				{Name: "excerpt", Type: resource.FieldText, Searchable: true, Updatable: true},
				{Name: "author", Type: resource.FieldText, Filterable: true, Searchable: true, Sortable: true, Updatable: true},
				{Name: "category", Type: resource.FieldEnum, Filterable: true, Updatable: true,
					Values:  []string{"Robotics", "Electronics", "Software", "Events", "General"},
					Default: "General"},
				{Name: "tags", Type: resource.FieldList, Filterable: true, Updatable: true},
				{Name: "status", Type: resource.FieldEnum, Filterable: true, Sortable: true, Updatable: true,
					Values:  []string{"Draft", "Published", "Archived"},
					Default: "Draft"},
				{Name: "publishedAt", Type: resource.FieldDate, Filterable: true, Sortable: true, Updatable: true},
			},
			Derived: []resource.DerivedField{
				{
					Name:   "readingTime",
					Inputs: []string{"content"},
					Compute: func(doc map[string]interface{}) interface{} {
						content, _ := doc["content"].(string)
						words := len(strings.Fields(content))
						minutes := (words + wordsPerMinute - 1) / wordsPerMinute
						if minutes < 1 {
							minutes = 1
						}
						return float64(minutes)
					},
				},
			},
			DefaultSort:     resource.Sort{Field: "publishedAt", Desc: true},
			VisibilityField: "status",
			VisibilityValue: "Published",
			ViewCounter:     "views",
			FileKeyField:    "coverImageKey",
			FileURLField:    "coverImageUrl",
		},
		Reducers: []resource.Reducer{
			// total overrides the published-only base to count every post.
			{Name: "total", Kind: resource.ReducerCount, Where: bson.M{"status": bson.M{"$ne": nil}}},
			{Name: "published", Kind: resource.ReducerCount},
			{Name: "drafts", Kind: resource.ReducerCount, Where: bson.M{"status": "Draft"}},
			{Name: "totalViews", Kind: resource.ReducerSum, Field: "views"},
			{Name: "publishedThisMonth", Kind: resource.ReducerCountWindow, Field: "publishedAt", Window: resource.WindowMonth},
		},
	}
}
