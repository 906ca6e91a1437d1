// Package health provides reusable health check functions for Atrium plugins.
//
// This package offers standardized ways to verify dependencies, connectivity,
// and system state. It is designed to help plugins implement consistent health
// checking patterns inside their health check hooks.
//
// # Health Check Functions
//
// The package provides six main health check functions:
//
//   - BinaryCheck: Verify a binary exists in PATH
//   - BinaryVersionCheck: Verify a binary meets minimum version requirements
//   - NetworkCheck: Verify TCP connectivity to a host:port
//   - FileCheck: Verify a file or directory exists
//   - StorageCheck: Verify the plugin's storage capability round-trips
//   - Combine: Aggregate multiple health checks into a single status
//
// # Usage Example
//
// A plugin composes these inside its health check hook; the combined
// status is what the host reports on its health endpoint:
//
//	import (
//	    "context"
//
//	    "github.com/atriumhq/sdk"
//	    "github.com/atriumhq/sdk/health"
//	    "github.com/atriumhq/sdk/plugin"
//	    "github.com/atriumhq/sdk/types"
//	)
//
//	sdk.WithHealthCheck(func(ctx context.Context, rt plugin.Runtime) types.HealthStatus {
//	    return health.Combine(
//	        health.BinaryCheck("pandoc"),
//	        health.FileCheck(notesFolder),
//	        health.NetworkCheck(ctx, "api.weather.example", 443),
//	        health.StorageCheck(ctx, rt.Storage()),
//	    )
//	})
//
// # Health Status Priority
//
// When combining health checks with Combine(), the result follows this priority:
//
//   - Unhealthy: If any check is unhealthy, the combined result is unhealthy
//   - Degraded: If any check is degraded (and none unhealthy), the result is degraded
//   - Healthy: If all checks are healthy, the result is healthy
//
// # Context and Timeouts
//
// NetworkCheck and StorageCheck accept a context for timeout and
// cancellation control. NetworkCheck falls back to a 5-second timeout
// when passed nil.
//
// BinaryVersionCheck has a built-in 5-second timeout when executing
// binaries to check their version.
//
// # Version Comparison
//
// BinaryVersionCheck scrapes a version out of the binary's output and
// compares it with the version package's semantic comparison. It
// supports common output formats like:
//
//   - "1.2.3"
//   - "v2.4.6"
//   - "pandoc 3.1.9"
//   - "go version go1.21.5 linux/amd64"
package health
