// Package schema provides JSON Schema types and validation for plugin
// configuration.
//
// Plugins declare the shape of their configuration as a schema; the
// host validates every incoming configuration against it before the
// config-change hook runs, so plugin code only ever sees values that
// already conform.
//
// # Declaring a schema
//
// Fluent constructors cover the common shapes:
//
//	configSchema := schema.Object(map[string]schema.JSON{
//		"folder":   schema.StringWithDesc("Directory the notes live in"),
//		"interval": schema.Int(),
//		"theme":    schema.Enum("light", "dark", "system"),
//	}, "folder") // folder is required
//
// A plugin with a configuration struct can generate the schema from it
// instead, keeping the two from drifting apart:
//
//	type Config struct {
//		Folder   string `json:"folder"`
//		Interval int    `json:"interval,omitempty"`
//	}
//
//	configSchema := schema.FromType(Config{})
//
// Manifests may also declare the schema as a plain config_schema block;
// FromMap turns the parsed yaml map into a JSON value.
//
// # Validation
//
//	err := configSchema.Validate(map[string]any{
//		"folder":   "/notes",
//		"interval": 30,
//	}) // nil
//
//	err = configSchema.Validate(map[string]any{
//		"interval": "soon",
//	}) // error: required field folder is missing
//
// # Constraints
//
// Bounds, lengths, and patterns hang off the JSON struct directly:
//
//	minLen := 1
//	constrained := schema.JSON{
//		Type:      "string",
//		MinLength: &minLen,
//		Pattern:   "^[a-z][a-z0-9-]*$",
//	}
package schema
