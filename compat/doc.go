// Package compat bridges plugins written against older host contracts
// into the current plugin shape.
//
// The host contract has gone through three majors. 1.x plugins were
// constructed with their config, exposed an init/destroy pair and
// declared dot-notation permissions. 2.x introduced contexts and an
// activate/deactivate pair. The current contract replaces all of that
// with the optional lifecycle hooks in the plugin package.
//
// A Registry holds an ordered list of adapters keyed by version
// pattern ("1.x", "2.x"). Adapt picks the first adapter whose pattern
// matches the contract version the plugin targets and wraps the legacy
// value into a current-shaped plugin. The wrap is structural only:
// hooks are renamed and re-signatured, business logic is untouched, and
// every bridged surface is recorded as a deprecation warning so hosts
// can plan migrations.
//
// Adaptation is idempotent. Re-adapting a plugin this package produced
// returns the original AdaptedPlugin, and a value that already
// implements plugin.Plugin passes through without wrapping.
package compat
