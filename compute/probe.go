// SPDX-License-Identifier: MIT

package compute

import (
	"errors"
	"fmt"
	"plugin"

	"github.com/katalvlaran/quantgen/native"
)

// PluginSymbol is the exported name a native plugin must provide: a value
// (or pointer to a value) implementing Backend.
const PluginSymbol = "Backend"

var (
	// ErrNativeDisabled is recorded when configuration turns the probe off.
	ErrNativeDisabled = errors.New("compute: native backend disabled")

	// ErrBadPlugin is recorded when a plugin's symbol is not a Backend.
	ErrBadPlugin = errors.New("compute: plugin symbol does not implement Backend")
)

// Capability is the outcome of the one-time native probe. Treat it as
// read-only; Features returns a copy of CPUFeatures.
type Capability struct {
	NativeAvailable bool
	BackendName     string   // backend the Engine runs on
	CPUFeatures     []string // SIMD extensions visible to the process
	ProbeError      string   // why native is unavailable; empty otherwise
}

// Features returns a copy of CPUFeatures.
func (c Capability) Features() []string {
	return append([]string(nil), c.CPUFeatures...)
}

// Probe reports which backend cfg would select, without building an Engine.
func Probe(cfg Config) Capability {
	capability, _ := probe(cfg)

	return capability
}

// probe resolves the backend for cfg. It never fails: any problem is
// recorded in Capability.ProbeError and the portable backend is returned.
func probe(cfg Config) (Capability, Backend) {
	capability := Capability{CPUFeatures: native.Features()}

	b, err := loadNative(cfg)
	if err != nil {
		capability.BackendName = FallbackName
		capability.ProbeError = err.Error()

		return capability, Fallback()
	}
	capability.NativeAvailable = true
	capability.BackendName = b.Name()

	return capability, b
}

func loadNative(cfg Config) (Backend, error) {
	if cfg.mode() == ModeFallback || cfg.Native.Disabled {
		return nil, ErrNativeDisabled
	}
	if cfg.Native.PluginPath != "" {
		return openPlugin(cfg.Native.PluginPath)
	}
	b, err := native.New()
	if err != nil {
		return nil, err
	}

	return b, nil
}

// openPlugin loads a Go plugin and resolves PluginSymbol.
func openPlugin(path string) (Backend, error) {
	p, err := plugin.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open plugin %s: %w", path, err)
	}
	sym, err := p.Lookup(PluginSymbol)
	if err != nil {
		return nil, fmt.Errorf("plugin %s: %w", path, err)
	}
	switch v := sym.(type) {
	case Backend:
		return v, nil
	case *Backend:
		if v != nil && *v != nil {
			return *v, nil
		}
	}

	return nil, fmt.Errorf("plugin %s: %T: %w", path, sym, ErrBadPlugin)
}
