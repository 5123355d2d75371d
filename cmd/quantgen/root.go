// SPDX-License-Identifier: MIT

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/katalvlaran/quantgen/compute"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// app carries what PersistentPreRunE builds for the subcommands.
type app struct {
	configPath string
	inputPath  string
	logLevel   string

	cfg    compute.Config
	logger *zap.Logger
	engine *compute.Engine
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "quantgen",
		Short:         "Genomic relationship matrices, BLUP/GBLUP and REML",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}
	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "YAML configuration file")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "override logging.level")

	root.AddCommand(
		a.statusCmd(),
		a.grmCmd(),
		a.blupCmd(),
		a.gblupCmd(),
		a.remlCmd(),
	)

	return root
}

func (a *app) init() error {
	cfg := compute.DefaultConfig()
	if a.configPath != "" {
		var err error
		if cfg, err = compute.LoadConfig(a.configPath); err != nil {
			return err
		}
	}
	if a.logLevel != "" {
		cfg.Logging.Level = a.logLevel
		if err := cfg.Validate(); err != nil {
			return err
		}
	}
	logger, err := compute.NewLogger(cfg)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = logger
	a.engine = compute.NewEngine(cfg, logger)

	return nil
}

// addInputFlag registers the required --input flag on a subcommand.
func (a *app) addInputFlag(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&a.inputPath, "input", "i", "", `JSON request file ("-" for stdin)`)
	_ = cmd.MarkFlagRequired("input")
}

// readRequest decodes the --input document into dst, rejecting unknown fields.
func (a *app) readRequest(cmd *cobra.Command, dst any) error {
	var r io.Reader
	if a.inputPath == "-" {
		r = cmd.InOrStdin()
	} else {
		f, err := os.Open(a.inputPath)
		if err != nil {
			return fmt.Errorf("read request: %w", err)
		}
		defer f.Close()
		r = f
	}
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("decode request %s: %w", a.inputPath, err)
	}

	return nil
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")

	return enc.Encode(v)
}
