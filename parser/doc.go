// Package parser provides generic parsing utilities for JSON, XML, and text output.
//
// This package contains reusable parsing functions that plugins can use to
// parse the output of external commands they shell out to. Plugin-specific
// data structures should remain in the individual plugin packages.
package parser
