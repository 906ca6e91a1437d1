// Package deprecation tracks plugin use of obsolete API surfaces.
//
// The compatibility adapters record a warning every time they bridge a
// legacy call; the Manager throttles console output per feature while
// keeping exact usage counts, and produces a report hosts surface to
// plugin authors for migration planning.
//
//	deps := deprecation.NewManager(deprecation.Config{})
//	deps.Register(deprecation.Warning{
//	    Feature:     "plugin.init-hook",
//	    Since:       "2.0.0",
//	    RemovedIn:   "4.0.0",
//	    Replacement: "OnInstall",
//	})
//	deps.Warn("plugin.init-hook", "plugin weather-widget")
//
//	report := deps.Report()
//	for _, f := range report.Features {
//	    fmt.Printf("%s used %d times\n", f.Feature, f.UsageCount)
//	}
package deprecation
