// Package capability defines the host capability surface plugins run
// against: storage, events, outbound HTTP, and per-plugin context
// minting.
//
// Capabilities are named providers in an explicit Registry rather than
// process globals. A polyfill, then, is nothing special: when the
// detected host version lacks a capability, the Installer registers a
// shim implementation built from the primitives the host does have, and
// consumers never learn whether a capability is native or bridged.
//
//	reg := capability.NewRegistry(logger)
//	reg.Register(capability.ProviderStorage, store)
//	reg.Register(capability.ProviderLegacyEvents, oldBus)
//
//	inst := capability.NewInstaller(reg, logger)
//	inst.Install([]string{"events.subscribe", "contexts"})
//
//	factory, _ := reg.Contexts()
//	bundle, _ := factory.ForPlugin("weather-widget")
//
// Installation is idempotent; installing a feature twice never wraps a
// provider twice.
package capability
