// Package cli implements compatctl, a command line front end over the same
// loaders and index as the HTTP service.
package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/giygas/compatibility-api/compat"
	"github.com/giygas/compatibility-api/compatparser"
	"github.com/giygas/compatibility-api/logging"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

type options struct {
	dataDir        string
	flaggedClasses []string
	noColor        bool
}

// NewRootCommand builds the compatctl command tree
func NewRootCommand() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:           "compatctl",
		Short:         "Look up injectable drug compatibility from the command line",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if opts.noColor {
				disableColor()
			}
		},
	}

	rootCmd.PersistentFlags().StringVar(&opts.dataDir, "data-dir", envOr("DATA_DIR", "data"), "Directory holding the dataset and legend CSV files")
	rootCmd.PersistentFlags().StringSliceVar(&opts.flaggedClasses, "flagged-classes", flaggedFromEnv(), "Drug classes checked by the override rule, in priority order")
	rootCmd.PersistentFlags().BoolVar(&opts.noColor, "no-color", false, "Disable colored output")

	rootCmd.AddCommand(newQueryCommand(opts))
	rootCmd.AddCommand(newLegendCommand(opts))
	rootCmd.AddCommand(newReportCommand(opts))

	return rootCmd
}

// Execute runs compatctl and exits non-zero on error
func Execute() {
	// Missing .env is the normal case outside development
	_ = godotenv.Load()

	logging.InitLoggerWithOptions(logging.Options{Level: "warn"})

	if err := NewRootCommand().Execute(); err != nil {
		printError(os.Stderr, err)
		os.Exit(1)
	}
}

// loadIndex parses the data directory and builds an index
func (o *options) loadIndex(ctx context.Context) (*compat.Index, error) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	parser := compatparser.NewCompatibilityParser(compatparser.DefaultSources(o.dataDir))
	tables, err := parser.ParseTables(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", o.dataDir, err)
	}

	return compat.NewIndex(tables, compat.WithFlaggedClasses(o.flaggedClasses...))
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func flaggedFromEnv() []string {
	raw := os.Getenv("FLAGGED_CLASSES")
	if raw == "" {
		return append([]string(nil), compat.DefaultFlaggedClasses...)
	}

	var out []string
	for _, c := range strings.Split(raw, ",") {
		if c = strings.TrimSpace(c); c != "" {
			out = append(out, c)
		}
	}
	return out
}
