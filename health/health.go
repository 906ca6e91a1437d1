// Package health provides reusable health check functions for Atrium plugins.
// It offers standardized ways to verify dependencies, connectivity, and system state.
package health

import (
	"context"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/atriumhq/sdk/capability"
	"github.com/atriumhq/sdk/exec"
	"github.com/atriumhq/sdk/types"
	"github.com/atriumhq/sdk/version"
)

// BinaryCheck verifies that a binary exists and is executable in the system PATH.
// It returns a healthy status if the binary is found, unhealthy otherwise.
// CLI-tool plugins that shell out use this to verify their dependency before
// reporting ready.
//
// Example:
//
//	status := health.BinaryCheck("pandoc")
//	if status.IsUnhealthy() {
//	    log.Fatal("pandoc is required but not installed")
//	}
func BinaryCheck(name string) types.HealthStatus {
	if name == "" {
		return types.NewUnhealthyStatus("binary name cannot be empty", nil)
	}

	path, err := exec.BinaryPath(name)
	if err != nil {
		return types.NewUnhealthyStatus(
			fmt.Sprintf("binary '%s' not found in PATH", name),
			map[string]any{
				"binary": name,
				"error":  err.Error(),
			},
		)
	}

	return types.NewHealthyStatus(
		fmt.Sprintf("binary '%s' found at %s", name, path),
	)
}

// BinaryVersionCheck verifies that a binary exists and meets a minimum version
// requirement. It executes the binary with the specified version flag (e.g.,
// "--version"), scrapes a semver-like version out of the output, and compares
// it against the minimum.
//
// Parameters:
//   - name: The binary name to check
//   - minVersion: The minimum required version (e.g., "2.0.0")
//   - versionFlag: The flag to get version info (e.g., "--version" or "-v")
//
// Example:
//
//	status := health.BinaryVersionCheck("pandoc", "3.0.0", "--version")
//	if status.IsUnhealthy() {
//	    log.Fatal("pandoc version 3.0.0 or higher is required")
//	}
func BinaryVersionCheck(name, minVersion, versionFlag string) types.HealthStatus {
	// First check if binary exists
	binaryStatus := BinaryCheck(name)
	if binaryStatus.IsUnhealthy() {
		return binaryStatus
	}

	if versionFlag == "" {
		versionFlag = "--version"
	}

	// Execute binary with version flag
	result, err := exec.Run(context.Background(), exec.Config{
		Command: name,
		Args:    []string{versionFlag},
		Timeout: 5 * time.Second,
	})
	if err != nil {
		return types.NewUnhealthyStatus(
			fmt.Sprintf("failed to get version for '%s'", name),
			map[string]any{
				"binary": name,
				"error":  err.Error(),
			},
		)
	}

	// Version output conventions vary: some tools print to stdout, some to
	// stderr, and a few exit non-zero on a version flag. Scrape both streams
	// and let parseability decide.
	outputStr := string(result.Stdout) + string(result.Stderr)
	got := parseVersion(outputStr)
	if got == "" {
		return types.NewDegradedStatus(
			fmt.Sprintf("could not parse version from '%s' output", name),
			map[string]any{
				"binary": name,
				"output": outputStr,
			},
		)
	}

	// AtLeast fails closed: an unparseable version on either side reads
	// as not meeting the requirement.
	if !version.AtLeast(got, minVersion) {
		return types.NewUnhealthyStatus(
			fmt.Sprintf("binary '%s' version %s does not meet minimum requirement %s", name, got, minVersion),
			map[string]any{
				"binary":      name,
				"version":     got,
				"min_version": minVersion,
			},
		)
	}

	return types.NewHealthyStatus(
		fmt.Sprintf("binary '%s' version %s meets requirement %s", name, got, minVersion),
	)
}

// NetworkCheck verifies TCP connectivity to a host and port.
// It uses the provided context for timeout and cancellation control.
// Plugins backed by a remote API use this to verify the service is
// reachable before reporting healthy.
//
// Example:
//
//	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
//	defer cancel()
//	status := health.NetworkCheck(ctx, "api.weather.example", 443)
//	if status.IsUnhealthy() {
//	    log.Println("Cannot reach api.weather.example:443")
//	}
func NetworkCheck(ctx context.Context, host string, port int) types.HealthStatus {
	if host == "" {
		return types.NewUnhealthyStatus("host cannot be empty", nil)
	}

	if port <= 0 || port > 65535 {
		return types.NewUnhealthyStatus(
			fmt.Sprintf("invalid port number: %d", port),
			map[string]any{"port": port},
		)
	}

	// Use context with timeout if not already set
	if ctx == nil {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
	}

	address := net.JoinHostPort(host, strconv.Itoa(port))
	var dialer net.Dialer

	conn, err := dialer.DialContext(ctx, "tcp", address)
	if err != nil {
		return types.NewUnhealthyStatus(
			fmt.Sprintf("failed to connect to %s", address),
			map[string]any{
				"host":  host,
				"port":  port,
				"error": err.Error(),
			},
		)
	}

	// Close connection immediately
	conn.Close()

	return types.NewHealthyStatus(
		fmt.Sprintf("successfully connected to %s", address),
	)
}

// FileCheck verifies that a file or directory exists at the specified path.
// It returns healthy if the path exists, unhealthy otherwise.
//
// Example:
//
//	status := health.FileCheck(notesFolder)
//	if status.IsUnhealthy() {
//	    log.Fatal("notes folder does not exist")
//	}
func FileCheck(path string) types.HealthStatus {
	if path == "" {
		return types.NewUnhealthyStatus("path cannot be empty", nil)
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return types.NewUnhealthyStatus(
				fmt.Sprintf("path '%s' does not exist", path),
				map[string]any{
					"path": path,
				},
			)
		}

		return types.NewUnhealthyStatus(
			fmt.Sprintf("failed to stat path '%s'", path),
			map[string]any{
				"path":  path,
				"error": err.Error(),
			},
		)
	}

	fileType := "file"
	if info.IsDir() {
		fileType = "directory"
	}

	return types.NewHealthyStatus(
		fmt.Sprintf("%s '%s' exists", fileType, path),
	)
}

// probeKey is the key StorageCheck writes and removes again. It lands in
// the plugin's own namespace, so two plugins probing at once don't collide.
const probeKey = "health.probe"

// StorageCheck verifies the plugin's storage capability with a write,
// read-back, and delete of a probe key. Health check hooks pass in
// rt.Storage().
//
// Example:
//
//	sdk.WithHealthCheck(func(ctx context.Context, rt plugin.Runtime) types.HealthStatus {
//	    return health.StorageCheck(ctx, rt.Storage())
//	})
func StorageCheck(ctx context.Context, store capability.Storage) types.HealthStatus {
	if store == nil {
		return types.NewUnhealthyStatus("storage capability is not available", nil)
	}

	stamp := time.Now().UnixNano()
	if err := store.Set(ctx, probeKey, stamp); err != nil {
		return types.NewUnhealthyStatus(
			"storage write failed",
			map[string]any{"error": err.Error()},
		)
	}

	got, err := store.Get(ctx, probeKey)
	if err != nil {
		return types.NewUnhealthyStatus(
			"storage read-back failed",
			map[string]any{"error": err.Error()},
		)
	}
	if got != stamp {
		return types.NewUnhealthyStatus(
			"storage read-back returned a different value",
			map[string]any{"wrote": stamp, "read": got},
		)
	}

	// Cleanup failing is worth knowing about but the store works.
	if err := store.Delete(ctx, probeKey); err != nil {
		return types.NewDegradedStatus(
			"storage works but probe cleanup failed",
			map[string]any{"error": err.Error()},
		)
	}

	return types.NewHealthyStatus("storage round-trip succeeded")
}

// Combine aggregates multiple health checks into a single status.
// The result follows this priority:
//   - If any check is unhealthy, the result is unhealthy
//   - If any check is degraded (and none unhealthy), the result is degraded
//   - If all checks are healthy, the result is healthy
//
// Example:
//
//	status := health.Combine(
//	    health.BinaryCheck("pandoc"),
//	    health.FileCheck(notesFolder),
//	    health.StorageCheck(ctx, rt.Storage()),
//	)
//	if status.IsUnhealthy() {
//	    log.Fatal("Plugin dependencies not met")
//	}
func Combine(checks ...types.HealthStatus) types.HealthStatus {
	if len(checks) == 0 {
		return types.NewHealthyStatus("no checks provided")
	}

	var unhealthyChecks []string
	var degradedChecks []string
	var healthyCount int

	for _, check := range checks {
		switch check.Status {
		case types.StatusUnhealthy:
			msg := check.Message
			if msg == "" {
				msg = "unnamed check"
			}
			unhealthyChecks = append(unhealthyChecks, msg)
		case types.StatusDegraded:
			msg := check.Message
			if msg == "" {
				msg = "unnamed check"
			}
			degradedChecks = append(degradedChecks, msg)
		case types.StatusHealthy:
			healthyCount++
		}
	}

	// Return unhealthy if any check is unhealthy
	if len(unhealthyChecks) > 0 {
		return types.NewUnhealthyStatus(
			fmt.Sprintf("%d check(s) failed", len(unhealthyChecks)),
			map[string]any{
				"total":         len(checks),
				"unhealthy":     len(unhealthyChecks),
				"degraded":      len(degradedChecks),
				"healthy":       healthyCount,
				"failed_checks": unhealthyChecks,
			},
		)
	}

	// Return degraded if any check is degraded
	if len(degradedChecks) > 0 {
		return types.NewDegradedStatus(
			fmt.Sprintf("%d check(s) degraded", len(degradedChecks)),
			map[string]any{
				"total":           len(checks),
				"degraded":        len(degradedChecks),
				"healthy":         healthyCount,
				"degraded_checks": degradedChecks,
			},
		)
	}

	// All checks are healthy
	return types.NewHealthyStatus(
		fmt.Sprintf("all %d check(s) passed", len(checks)),
	)
}

// parseVersion extracts a version string from command output.
// It looks for common version patterns like "1.2.3" or "v1.2.3".
func parseVersion(output string) string {
	// Common version patterns
	lines := strings.Split(output, "\n")
	for _, line := range lines {
		line = strings.TrimSpace(line)

		// Look for version patterns (e.g., "1.2.3", "v1.2.3", "version 1.2.3")
		fields := strings.Fields(line)
		for _, field := range fields {
			// Remove common prefixes
			field = strings.TrimPrefix(field, "v")
			field = strings.TrimPrefix(field, "V")

			// Check if it looks like a version (contains digits and dots)
			if strings.Contains(field, ".") && containsDigit(field) {
				// Extract version-like substring
				if version := extractVersionNumber(field); version != "" {
					return version
				}
			}
		}
	}

	return ""
}

// containsDigit checks if a string contains at least one digit.
func containsDigit(s string) bool {
	for _, c := range s {
		if c >= '0' && c <= '9' {
			return true
		}
	}
	return false
}

// extractVersionNumber extracts a semantic version number from a string.
// It handles formats like "1.2.3", "1.2.3-beta", "1.2.3+build", etc.
func extractVersionNumber(s string) string {
	var version strings.Builder
	dotCount := 0

	for i, c := range s {
		if c >= '0' && c <= '9' {
			version.WriteRune(c)
		} else if c == '.' && dotCount < 2 && i > 0 && version.Len() > 0 {
			version.WriteRune(c)
			dotCount++
		} else if version.Len() > 0 {
			// Stop at first non-version character after we've started
			break
		}
	}

	result := version.String()
	// Ensure version has at least one dot
	if strings.Contains(result, ".") && len(result) > 2 {
		return result
	}
	return ""
}
