package schema

import (
	"strconv"
	"strings"
)

// Draft is the JSON Schema dialect emitted by ToJSONSchema.
const Draft = "https://json-schema.org/draft/2020-12/schema"

// ToJSONSchema converts the schema to a JSON Schema document.
func (s Schema) ToJSONSchema() map[string]any {
	doc := objectSchema(s.Fields)
	doc["$schema"] = Draft
	doc["title"] = s.Name
	if s.Description != "" {
		doc["description"] = s.Description
	}
	return doc
}

func objectSchema(fields []Field) map[string]any {
	props := make(map[string]any, len(fields))
	required := make([]string, 0, len(fields))
	for _, f := range fields {
		props[f.Name] = fieldToJSONSchema(f)
		if f.Required {
			required = append(required, f.Name)
		}
	}

	schema := map[string]any{
		"type":                 string(TypeObject),
		"properties":           props,
		"additionalProperties": false,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

// fieldToJSONSchema converts a Field to JSON Schema format.
func fieldToJSONSchema(f Field) map[string]any {
	var schema map[string]any
	if f.Type == TypeObject && len(f.Properties) > 0 {
		schema = objectSchema(f.Properties)
	} else {
		schema = map[string]any{"type": string(f.Type)}
	}

	if f.Format != "" {
		schema["format"] = f.Format
	}
	if f.Description != "" {
		schema["description"] = f.Description
	}
	if f.Type == TypeArray && f.Items != nil {
		schema["items"] = fieldToJSONSchema(*f.Items)
	}
	applyValidators(schema, f)
	return schema
}

// applyValidators translates the validator tags JSON Schema can express.
// Rules after "dive" apply to array items.
func applyValidators(schema map[string]any, f Field) {
	for i, v := range f.Validators {
		if v == "dive" {
			if f.Items != nil {
				items := schema["items"].(map[string]any)
				applyValidators(items, Field{Type: f.Items.Type, Validators: f.Validators[i+1:]})
			}
			return
		}

		name, param, _ := strings.Cut(v, "=")
		n, err := strconv.ParseFloat(param, 64)
		hasNum := err == nil

		switch {
		case name == "gte" && hasNum && isNumeric(f.Type):
			schema["minimum"] = n
		case name == "lte" && hasNum && isNumeric(f.Type):
			schema["maximum"] = n
		case name == "gt" && hasNum && isNumeric(f.Type):
			schema["exclusiveMinimum"] = n
		case name == "lt" && hasNum && isNumeric(f.Type):
			schema["exclusiveMaximum"] = n
		case name == "min" && hasNum && f.Type == TypeArray:
			schema["minItems"] = int(n)
		case name == "required" && f.Type == TypeString:
			schema["minLength"] = 1
		}
	}
}

func isNumeric(t FieldType) bool {
	return t == TypeNumber || t == TypeInteger
}
