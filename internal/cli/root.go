package cli

import (
	"context"
	"fmt"
	"slices"

	"github.com/Carlos20473736/monetag-tracker/internal/infra/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string

	// open builds the backend; tests replace it.
	open func(ctx context.Context, log *zap.Logger) (*Backend, error)
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json", "yaml"}

// NewRootCommand creates the root command for monetagctl.
func NewRootCommand() *cobra.Command {
	return newRootCommand(openBackend)
}

func newRootCommand(open func(ctx context.Context, log *zap.Logger) (*Backend, error)) *cobra.Command {
	opts := &RootOptions{open: open}

	cmd := &cobra.Command{
		Use:   "monetagctl",
		Short: "Administer the Monetag event tracker",
		Long:  "Maintenance commands for the Monetag ad-event tracker: schema migration, session cleanup, event purge and stats.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return NewExitError(ExitCommandError,
					fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (text|json|yaml)")

	cmd.AddCommand(NewMigrateCommand(opts))
	cmd.AddCommand(NewSessionsCommand(opts))
	cmd.AddCommand(NewEventsCommand(opts))
	cmd.AddCommand(NewStatsCommand(opts))

	return cmd
}

func (o *RootOptions) logger() *zap.Logger {
	level := "warn"
	if o.Verbose {
		level = "debug"
	}
	log, err := logger.New(logger.Config{Development: true, Level: level})
	if err != nil {
		return zap.NewNop()
	}
	return log
}

func (o *RootOptions) backend(cmd *cobra.Command) (*Backend, error) {
	b, err := o.open(cmd.Context(), o.logger())
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open storage", err)
	}
	return b, nil
}
