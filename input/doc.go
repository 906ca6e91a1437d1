// Package input provides type-safe helpers for extracting values from map[string]any.
//
// Plugin configuration arrives as map[string]any: the host hands hooks their
// manifest config, OnConfigChange delivers proposed settings, and event
// payloads cross the wire as JSON. After unmarshaling, types vary (numbers as
// float64, int, or string). All functions in this package gracefully handle
// type mismatches by returning sensible defaults rather than erroring.
//
// # Key Features
//
//   - Type-safe extraction with automatic coercion
//   - Nil-safe operations (handles nil maps and values)
//   - No panics or errors - always returns defaults on mismatch
//   - Zero allocations in hot paths for optimal performance
//   - Comprehensive handling of JSON unmarshaling quirks
//
// # Usage
//
// Extract values from a plugin configuration map:
//
//	config := map[string]any{
//	    "folder":     "~/notes",
//	    "interval":   30,
//	    "timeout":    "30s",
//	    "autosave":   true,
//	    "extensions": []string{"md", "markdown"},
//	}
//
//	folder := input.GetString(config, "folder", "~/Documents")
//	interval := input.GetInt(config, "interval", 60)
//	timeout := input.GetTimeout(config, "timeout", 10*time.Second)
//	autosave := input.GetBool(config, "autosave", false)
//	extensions := input.GetStringSlice(config, "extensions")
//
// # Type Coercion
//
// The package handles common type coercion scenarios:
//
//   - GetInt: Handles int, int64, float64, and numeric strings
//   - GetFloat64: Handles float64, float32, int, int64, and numeric strings
//   - GetStringSlice: Handles []string, []interface{}, and single strings
//   - GetTimeout: Handles time.Duration, int (as seconds), and duration strings like "5m"
//
// # Design Philosophy
//
// This package follows the principle of "be liberal in what you accept" to handle
// real-world scenarios where data comes from manifests, host config pushes, or
// user input. Instead of strict type checking that would require error handling
// everywhere, it provides sensible defaults and automatic conversion.
//
// This makes plugin development simpler and more robust, as hooks don't need to
// worry about whether a number came in as int, int64, or float64 from JSON
// unmarshaling.
package input
