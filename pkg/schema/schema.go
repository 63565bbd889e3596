// Package schema describes the structured output of invoicekit as JSON
// Schema, derived by reflection from the Go types and their json, validate
// and description tags.
package schema

import (
	"fmt"
	"reflect"
	"strings"
	"time"
)

// FieldType represents the JSON type of a schema field.
type FieldType string

const (
	TypeString  FieldType = "string"
	TypeNumber  FieldType = "number"
	TypeInteger FieldType = "integer"
	TypeBoolean FieldType = "boolean"
	TypeArray   FieldType = "array"
	TypeObject  FieldType = "object"
)

var timeType = reflect.TypeOf(time.Time{})

// Field represents a single field in the schema.
type Field struct {
	Name        string    `json:"name,omitempty" yaml:"name,omitempty"`
	Type        FieldType `json:"type" yaml:"type"`
	Format      string    `json:"format,omitempty" yaml:"format,omitempty"`
	Description string    `json:"description,omitempty" yaml:"description,omitempty"`
	Required    bool      `json:"required,omitempty" yaml:"required,omitempty"`
	Items       *Field    `json:"items,omitempty" yaml:"items,omitempty"`
	Properties  []Field   `json:"properties,omitempty" yaml:"properties,omitempty"`
	Validators  []string  `json:"validators,omitempty" yaml:"validators,omitempty"`
}

// Schema is the reflected description of a struct type.
type Schema struct {
	Name        string  `json:"name" yaml:"name"`
	Description string  `json:"description,omitempty" yaml:"description,omitempty"`
	Fields      []Field `json:"fields" yaml:"fields"`
}

// SchemaOption configures schema creation.
type SchemaOption func(*Schema)

// WithDescription sets the schema description.
func WithDescription(desc string) SchemaOption {
	return func(s *Schema) {
		s.Description = desc
	}
}

// New creates a Schema from a struct type using reflection.
func New[T any](opts ...SchemaOption) (Schema, error) {
	t := reflect.TypeOf((*T)(nil)).Elem()
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return Schema{}, fmt.Errorf("schema must be created from a struct type, got %v", t.Kind())
	}

	fields, err := extractFields(t)
	if err != nil {
		return Schema{}, err
	}

	s := Schema{Name: t.Name(), Fields: fields}
	for _, opt := range opts {
		opt(&s)
	}
	return s, nil
}

// extractFields recursively extracts field definitions from a struct type.
func extractFields(t reflect.Type) ([]Field, error) {
	fields := make([]Field, 0, t.NumField())

	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() || sf.Tag.Get("json") == "-" {
			continue
		}

		field, err := fieldFromType(sf.Type)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", sf.Name, err)
		}
		field.Name = jsonName(sf)
		field.Description = sf.Tag.Get("description")
		field.Required = !hasOmitempty(sf) && sf.Type.Kind() != reflect.Pointer
		field.Validators = parseValidators(sf.Tag.Get("validate"))

		fields = append(fields, field)
	}

	return fields, nil
}

// fieldFromType maps a Go type onto a Field without name or tags.
func fieldFromType(t reflect.Type) (Field, error) {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == timeType {
		return Field{Type: TypeString, Format: "date-time"}, nil
	}

	switch t.Kind() {
	case reflect.String:
		return Field{Type: TypeString}, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return Field{Type: TypeInteger}, nil
	case reflect.Float32, reflect.Float64:
		return Field{Type: TypeNumber}, nil
	case reflect.Bool:
		return Field{Type: TypeBoolean}, nil
	case reflect.Slice, reflect.Array:
		item, err := fieldFromType(t.Elem())
		if err != nil {
			return Field{}, err
		}
		return Field{Type: TypeArray, Items: &item}, nil
	case reflect.Struct:
		props, err := extractFields(t)
		if err != nil {
			return Field{}, err
		}
		return Field{Type: TypeObject, Properties: props}, nil
	case reflect.Map:
		return Field{Type: TypeObject}, nil
	default:
		return Field{}, fmt.Errorf("unsupported type: %v", t.Kind())
	}
}

// jsonName returns the JSON field name from struct tags.
func jsonName(sf reflect.StructField) string {
	name, _, _ := strings.Cut(sf.Tag.Get("json"), ",")
	if name == "" {
		return sf.Name
	}
	return name
}

func hasOmitempty(sf reflect.StructField) bool {
	_, opts, _ := strings.Cut(sf.Tag.Get("json"), ",")
	for _, opt := range strings.Split(opts, ",") {
		if opt == "omitempty" || opt == "omitzero" {
			return true
		}
	}
	return false
}

func parseValidators(tag string) []string {
	if tag == "" {
		return nil
	}
	return strings.Split(tag, ",")
}
