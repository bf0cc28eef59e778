// Package cmd provides the CLI commands for cpq.
package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Simplici0/scanquote/internal/gates"
	"github.com/Simplici0/scanquote/internal/logging"
	"github.com/Simplici0/scanquote/internal/pricing"
)

// Version is set at build time with -ldflags "-X .../cmd.Version=...".
var Version = "dev"

type app struct {
	logLevel  string
	logFormat string

	log    *zap.Logger
	engine *pricing.Engine
	policy gates.Policy
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	a := &app{
		log:    zap.NewNop(),
		engine: pricing.NewDefault(),
		policy: gates.DefaultPolicy(),
	}

	root := &cobra.Command{
		Use:   "cpq",
		Short: "Price and gate scan quotes offline",
		Long: `cpq prices CPQ quote exports with the same engine the server uses.

Examples:
  cpq price quote.json
  cpq price --format json --show-defaults quote.json
  cpq gates --lead-source referral quote.json
  cpq export-default > quote.json`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger, err := logging.New(logging.Config{
				Level:  a.logLevel,
				Format: a.logFormat,
				Writer: cmd.ErrOrStderr(),
			})
			if err != nil {
				return fmt.Errorf("initialize logging: %w", err)
			}
			a.log = logger
			return nil
		},
	}

	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&a.logFormat, "log-format", "console", "log format (console, json)")

	root.AddCommand(a.newPriceCmd())
	root.AddCommand(a.newGatesCmd())
	root.AddCommand(newExportDefaultCmd())
	root.AddCommand(newVersionCmd())
	return root
}

// Execute runs the CLI.
func Execute() error {
	return NewRootCmd().Execute()
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "cpq version %s\n", Version)
		},
	}
}

// readInput reads path, or stdin when path is "-".
func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return raw, nil
}
