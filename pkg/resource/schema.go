// Package resource implements the generic list-management core shared by
// every resource type: filter building, aggregation, pagination and
// mutations over a document collection. Concrete resources are instances
// of a Schema; nothing in this package knows about a specific resource.
package resource

// FieldType classifies a filterable field.
type FieldType string

const (
	FieldText   FieldType = "text"
	FieldEnum   FieldType = "enum"
	FieldBool   FieldType = "bool"
	FieldDate   FieldType = "date"
	FieldNumber FieldType = "number"
	// FieldList holds an array of strings, e.g. tags. An equality
	// criterion matches records whose list contains the value.
	FieldList FieldType = "list"
)

// Field declares a single document field and how the core may use it.
type Field struct {
	Name string
	Type FieldType

	// Required fields must be present and well-typed on create.
	Required bool

	// Filterable fields accept exact-match (or range) criteria.
	Filterable bool

	// Searchable text fields participate in free-text search.
	Searchable bool

	// Sortable fields may be named as a sort key.
	Sortable bool

	// Updatable fields form the partial-update allow-list. Anything else
	// in an update payload is silently dropped.
	Updatable bool

	// Unique fields are checked for duplicates on create and update.
	Unique bool

	// Values restricts an enum field to a closed set when non-empty.
	Values []string

	// Default is applied on create when the field is absent.
	Default interface{}
}

// DerivedField is recomputed by the mutation handler whenever any of its
// inputs changes. Callers can never set it directly.
type DerivedField struct {
	Name    string
	Inputs  []string
	Compute func(doc map[string]interface{}) interface{}
}

// Sort names a sort key and direction.
type Sort struct {
	Field string
	Desc  bool
}

// Schema is the per-resource declaration table driving the generic core.
type Schema struct {
	// Name is the resource name used in errors and response envelopes,
	// e.g. "events".
	Name string

	// Singular is used in messages about one record, e.g. "event".
	Singular string

	// Collection is the backing document collection name.
	Collection string

	Fields  []Field
	Derived []DerivedField

	// DefaultSort applies when the caller supplies no sort key.
	DefaultSort Sort

	// VisibilityField, when set, constrains listings to
	// VisibilityValue unless the caller supplies the field explicitly
	// (the "all" sentinel lifts the constraint).
	VisibilityField string
	VisibilityValue interface{}

	// ViewCounter, when set, names a numeric field incremented on every
	// single-record fetch.
	ViewCounter string

	// FileKeyField and FileURLField, when set, name the object-storage
	// key and public URL of an uploaded file associated with records.
	// The key is cleaned up best-effort on delete.
	FileKeyField string
	FileURLField string
}

// FieldByName returns the declaration for name, if any.
func (s *Schema) FieldByName(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// SearchableFields returns the names of fields eligible for free-text search.
func (s *Schema) SearchableFields() []string {
	var out []string
	for _, f := range s.Fields {
		if f.Searchable && f.Type == FieldText {
			out = append(out, f.Name)
		}
	}
	return out
}

// DerivedByInput reports the derived fields whose inputs intersect the
// given set of changed field names.
func (s *Schema) DerivedByInput(changed map[string]struct{}) []DerivedField {
	var out []DerivedField
	for _, d := range s.Derived {
		for _, in := range d.Inputs {
			if _, ok := changed[in]; ok {
				out = append(out, d)
				break
			}
		}
	}
	return out
}

// UniqueFields returns the declared unique fields.
func (s *Schema) UniqueFields() []Field {
	var out []Field
	for _, f := range s.Fields {
		if f.Unique {
			out = append(out, f)
		}
	}
	return out
}
