// Package types provides core type definitions for the Atrium plugin SDK.
//
// This package defines fundamental types shared across the SDK for
// representing plugin health and user identity. These types form the
// vocabulary plugins and the host use to communicate.
//
// # Health Types
//
// Health types represent the operational status a plugin reports from its
// health-check hook:
//
//	status := types.NewHealthyStatus("cache warm, upstream reachable")
//	if status.IsHealthy() {
//	    // Plugin is fully operational
//	}
//
//	down := types.NewUnhealthyStatus("upstream unreachable", map[string]any{
//	    "last_error": "connection refused",
//	})
//
// The lifecycle controller synthesizes an unhealthy status when a probe
// exceeds its timeout, attaching the timeout to the details:
//
//	status.WithDetail("timeout", "50ms")
//
// # Identity
//
// Identity describes the user a plugin is acting for. Plugins receive it
// through their runtime context:
//
//	user := rt.Identity()
//	if user.HasRole("admin") {
//	    // Expose administrative widgets
//	}
package types
