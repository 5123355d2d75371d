// SPDX-License-Identifier: MIT

package compute

import (
	"fmt"

	"go.uber.org/zap"
)

// NewLogger builds a production zap logger at the configured level.
func NewLogger(cfg Config) (*zap.Logger, error) {
	lvl, err := cfg.Level()
	if err != nil {
		return nil, err
	}
	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(lvl)
	logger, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("compute.NewLogger: %w", err)
	}

	return logger, nil
}
