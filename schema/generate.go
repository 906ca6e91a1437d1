package schema

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"time"
)

// FromType generates a JSON schema from a Go type using reflection.
// The schema describes the structure the type represents, not the
// values. Plugins typically hand their configuration struct to it so
// the declared schema and the decoded config can never drift apart:
//
//	type Config struct {
//	    Folder   string `json:"folder"`
//	    Interval int    `json:"interval,omitempty"`
//	}
//
//	cfg.SetConfigSchema(schema.FromType(Config{}))
//
// Supported types:
//   - struct: generates an object schema with properties from exported fields
//   - slice/array: generates an array schema
//   - map: generates an object schema without property constraints
//   - string, int*, uint*, float*, bool: generates primitive schemas
//   - time.Time: generates string schema with date-time format
//   - interface{}/any: generates empty schema (allows any)
//
// Struct tags:
//   - `json:"name"`: uses the JSON tag name for the property
//   - `json:"-"`: skips the field
//   - `json:"name,omitempty"`: field is optional (not in required list)
//   - `description:"..."`: sets the property description
func FromType(t any) JSON {
	if t == nil {
		return JSON{}
	}

	rt := reflect.TypeOf(t)
	return fromReflectType(rt)
}

// FromMap converts a JSON-Schema-shaped map, such as a manifest's
// config_schema block, into a JSON value. The map round-trips through
// encoding/json, so unknown keys are dropped and malformed shapes
// (a string where properties should be, say) surface as an error.
func FromMap(m map[string]any) (JSON, error) {
	if m == nil {
		return JSON{}, nil
	}

	data, err := json.Marshal(m)
	if err != nil {
		return JSON{}, fmt.Errorf("failed to encode schema map: %w", err)
	}

	var s JSON
	if err := json.Unmarshal(data, &s); err != nil {
		return JSON{}, fmt.Errorf("failed to decode schema: %w", err)
	}
	return s, nil
}

// fromReflectType generates a JSON schema from a reflect.Type
func fromReflectType(t reflect.Type) JSON {
	if t.Kind() == reflect.Ptr {
		return fromReflectType(t.Elem())
	}

	// Special handling for time.Time
	if t == reflect.TypeOf(time.Time{}) {
		return JSON{
			Type:   "string",
			Format: "date-time",
		}
	}

	switch t.Kind() {
	case reflect.Struct:
		return fromStruct(t)
	case reflect.Slice, reflect.Array:
		itemSchema := fromReflectType(t.Elem())
		return JSON{
			Type:  "array",
			Items: &itemSchema,
		}
	case reflect.Map:
		// Key types cannot be enforced in JSON schema.
		return JSON{
			Type: "object",
		}
	case reflect.String:
		return JSON{Type: "string"}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return JSON{Type: "integer"}
	case reflect.Float32, reflect.Float64:
		return JSON{Type: "number"}
	case reflect.Bool:
		return JSON{Type: "boolean"}
	case reflect.Interface:
		return JSON{}
	default:
		return JSON{}
	}
}

// fromStruct generates a JSON schema from a struct type
func fromStruct(t reflect.Type) JSON {
	properties := make(map[string]JSON)
	var required []string

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		if !field.IsExported() {
			continue
		}

		jsonTag := field.Tag.Get("json")
		if jsonTag == "-" {
			continue
		}

		fieldName := field.Name
		isOmitempty := false
		if jsonTag != "" {
			parts := strings.Split(jsonTag, ",")
			if parts[0] != "" {
				fieldName = parts[0]
			}
			for _, part := range parts[1:] {
				if part == "omitempty" {
					isOmitempty = true
					break
				}
			}
		}

		fieldSchema := fromReflectType(field.Type)

		if desc := field.Tag.Get("description"); desc != "" {
			fieldSchema.Description = desc
		}

		properties[fieldName] = fieldSchema

		// Non-omitempty fields are required
		if !isOmitempty {
			required = append(required, fieldName)
		}
	}

	return JSON{
		Type:       "object",
		Properties: properties,
		Required:   required,
	}
}
