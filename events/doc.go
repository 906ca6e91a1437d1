// Package events provides the built-in implementations of the events
// capability.
//
// InProc dispatches synchronously inside a single host process and is
// the default. Redis routes events through Redis pub/sub so plugins in
// separate processes can talk to each other. Both satisfy
// capability.Events.
package events
