package resources

import (
	"go.mongodb.org/mongo-driver/bson"

	"github.com/CR-8/clubcore/pkg/resource"
)

// Stock declares the inventory resource. totalValue is derived from
// quantity and unitPrice by the mutation handler and can never be set by
// a caller.
func Stock() Definition {
	return Definition{
		Schema: resource.Schema{
			Name:       "stock",
			Singular:   "stock item",
			Collection: "stock",
			Fields: []resource.Field{
				{Name: "name", Type: resource.FieldText, Required: true, Searchable: true, Sortable: true, Updatable: true},
				{Name: "description", Type: resource.FieldText, Searchable: true, Updatable: true},
				{Name: "category", Type: resource.FieldEnum, Required: true, Filterable: true, Sortable: true, Updatable: true,
					Values: []string{"Microcontroller", "Sensor", "Actuator", "Tool", "Consumable", "Misc"}},
				{Name: "status", Type: resource.FieldEnum, Filterable: true, Updatable: true,
					Values:  []string{"Available", "Low", "OutOfStock"},
					Default: "Available"},
				{Name: "quantity", Type: resource.FieldNumber, Required: true, Filterable: true, Sortable: true, Updatable: true},
				{Name: "unitPrice", Type: resource.FieldNumber, Required: true, Filterable: true, Sortable: true, Updatable: true},
				{Name: "location", Type: resource.FieldText, Searchable: true, Updatable: true},
				{Name: "supplier", Type: resource.FieldText, Searchable: true, Updatable: true},
				{Name: "isActive", Type: resource.FieldBool, Filterable: true, Updatable: true, Default: true},
			},
			Derived: []resource.DerivedField{
				{
					Name:   "totalValue",
					Inputs: []string{"quantity", "unitPrice"},
					Compute: func(doc map[string]interface{}) interface{} {
						return numeric(doc["quantity"]) * numeric(doc["unitPrice"])
					},
				},
			},
			DefaultSort:     resource.Sort{Field: "name", Desc: false},
			VisibilityField: "isActive",
			VisibilityValue: true,
		},
		Reducers: []resource.Reducer{
			{Name: "totalItems", Kind: resource.ReducerCount},
			{Name: "totalQuantity", Kind: resource.ReducerSum, Field: "quantity"},
			{Name: "totalValue", Kind: resource.ReducerSum, Field: "totalValue"},
			{Name: "outOfStock", Kind: resource.ReducerCount, Where: bson.M{"status": "OutOfStock"}},
			{Name: "addedThisMonth", Kind: resource.ReducerCountWindow, Field: "createdAt", Window: resource.WindowMonth},
		},
	}
}

func numeric(v interface{}) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	default:
		return 0
	}
}
