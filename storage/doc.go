// Package storage provides the built-in implementations of the storage
// capability that the SDK hands to plugins.
//
// Two providers are included: Memory, an in-process map suited to tests
// and single-node hosts, and Redis, which keeps values in a Redis hash
// so plugin state survives host restarts. Both satisfy
// capability.Storage; per-plugin isolation is not their concern and is
// layered on by the namespace capability.
package storage
