// Command careersync rebuilds the Pregrado or Postgrado section of a careers
// document from a program listing.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/dgallion1/careersync/internal/config"
	"github.com/dgallion1/careersync/internal/logger"
	"github.com/spf13/cobra"
)

// app carries what every subcommand shares once flags are parsed.
type app struct {
	cfg config.Config
	log *slog.Logger

	logLevel  string
	logFormat string
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "careersync",
		Short:         "Rebuild the program catalog of a careers document",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			a.cfg = config.Load()
			level := a.cfg.LogLevel
			if cmd.Flags().Changed("log-level") {
				level = a.logLevel
			}
			format := a.cfg.LogFormat
			if cmd.Flags().Changed("log-format") {
				format = a.logFormat
			}
			a.log = logger.New(logger.Config{
				Writer: cmd.ErrOrStderr(),
				Format: format,
				Level:  level,
			})
			return nil
		},
	}

	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&a.logFormat, "log-format", "text", "log format (json, text)")

	root.AddCommand(
		newReplaceCmd(a),
		newAnalyzeCmd(a),
		newListCmd(a),
		newWatchCmd(a),
	)
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
