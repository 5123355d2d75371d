// Package compute is the facade in front of the numeric packages.
//
// 🚀 What it does
//
//   - Probes once for a native backend (a Go plugin, else the built-in
//     gonum kernels) and records the outcome in an immutable Capability.
//   - Fixes the chosen Backend for the lifetime of an Engine; a missing
//     native backend is logged once and never fatal.
//   - Forwards the four operations (GRM, BLUP, GBLUP, REML) unchanged and
//     logs non-converged results at Warn level.
//
// ⚙️ Configuration is a small YAML document (see Config):
//
//	backend: auto          # auto | native | fallback
//	native:
//	  disabled: false      # true skips the native probe
//	  plugin_path: ""      # optional Go plugin exporting "Backend"
//	grm:
//	  workers: 0           # 0 = GOMAXPROCS
//	  ploidy: 2
//	logging:
//	  level: info
//
// An Engine is safe for concurrent use.
package compute
