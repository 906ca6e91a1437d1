// Package integration provides comprehensive integration tests for the Atrium SDK.
//
// This package contains end-to-end tests that verify the SDK components work together
// correctly. Unlike unit tests that focus on individual components, these integration
// tests validate complete workflows and interactions between packages.
//
// Test Coverage
//
// The integration tests cover the following areas:
//
//  1. Host Integration (integration_test.go)
//     - Manager creation using SDK entry points
//     - Full plugin lifecycle (Install → Enable → Disable → Uninstall → Remove)
//     - Redis-backed storage wired through a custom capability registry
//     - Instance registry announcements on enable and disable
//     - Concurrent installs and thread safety
//     - Manager close semantics
//     - Package import verification
//
//  2. Plugin Integration (plugin_test.go)
//     - Plugin creation using SDK entry points
//     - Hook execution order across the lifecycle
//     - Runtime capabilities (storage, events, HTTP) from inside hooks
//     - Config schema validation on config change
//     - Health checks through the manager
//     - Storage isolation between plugins
//
//  3. Compatibility Integration (compat_test.go)
//     - Legacy 1.x and 2.x plugins installed through the modern manager
//     - Hook bridging (Init/Destroy, Initialize/Activate/Deactivate/Cleanup)
//     - Permission vocabulary translation
//     - Deprecation warnings recorded per legacy surface
//
//  4. Serving Integration (serve_test.go)
//     - gRPC health server wired as the manager's health reporter
//     - Per-plugin SERVING/NOT_SERVING transitions on enable and disable
//     - Endpoint advertisement flowing into instance registrations
//
// Running the Tests
//
// To run all integration tests:
//
//	cd /path/to/sdk
//	go test ./integration/...
//
// To run with verbose output:
//
//	go test -v ./integration/...
//
// To run a specific test:
//
//	go test -v -run TestHostLifecycle ./integration/
//
// Best Practices
//
// When adding new integration tests:
//
//  1. Test real functionality, not just compilation
//  2. Include both positive and negative test cases
//  3. Verify error handling and edge cases
//  4. Use descriptive test names that explain what's being tested
//  5. Clean up resources (use defer for cleanup)
//  6. Test thread safety where applicable
//  7. Use subtests (t.Run) for logical grouping
//  8. Include realistic scenarios that mirror actual usage
//
// Dependencies
//
// These tests use the testify package for assertions and miniredis for a
// Redis server in-process:
//
//	github.com/stretchr/testify
//	github.com/alicebob/miniredis/v2
//
// All other dependencies are from the Atrium SDK itself.
package integration
