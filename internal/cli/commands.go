package cli

import (
	"fmt"
	"io"

	"github.com/Carlos20473736/monetag-tracker/internal/app/model"
	"github.com/spf13/cobra"
)

// NewMigrateCommand creates the migrate command.
func NewMigrateCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the events, zones and sessions tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := opts.backend(cmd)
			if err != nil {
				return err
			}
			defer b.Close()

			if err := b.Migrate(cmd.Context()); err != nil {
				return WrapExitError(ExitFailure, "migration failed", err)
			}
			return render(cmd.OutOrStdout(), opts.Format, messageResult{Message: "schema up to date"})
		},
	}
}

// NewSessionsCommand creates the sessions command group.
func NewSessionsCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "Manage ad sessions",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "cleanup",
		Short: "Delete expired sessions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := opts.backend(cmd)
			if err != nil {
				return err
			}
			defer b.Close()

			removed, err := b.Sessions.CleanupExpired(cmd.Context())
			if err != nil {
				return WrapExitError(ExitFailure, "session cleanup failed", err)
			}
			return render(cmd.OutOrStdout(), opts.Format, countResult{Action: "expired sessions removed", Count: removed})
		},
	})
	return cmd
}

// EventsOptions holds flags for the events commands.
type EventsOptions struct {
	*RootOptions
	Yes bool
}

// NewEventsCommand creates the events command group.
func NewEventsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &EventsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "events",
		Short: "Manage recorded ad events",
	}

	purge := &cobra.Command{
		Use:   "purge",
		Short: "Delete every recorded event (irreversible)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !opts.Yes {
				return NewExitError(ExitCommandError, "refusing to purge events without --yes")
			}

			b, err := opts.backend(cmd)
			if err != nil {
				return err
			}
			defer b.Close()

			removed, err := b.Events.Purge(cmd.Context())
			if err != nil {
				return WrapExitError(ExitFailure, "purge failed", err)
			}
			b.Stats.Invalidate(cmd.Context())
			return render(cmd.OutOrStdout(), opts.Format, countResult{Action: "events deleted", Count: removed})
		},
	}
	purge.Flags().BoolVar(&opts.Yes, "yes", false, "confirm deleting all events")

	cmd.AddCommand(purge)
	return cmd
}

// StatsOptions holds flags for the stats command.
type StatsOptions struct {
	*RootOptions
	Email string
}

// NewStatsCommand creates the stats command.
func NewStatsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &StatsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print global counters, or per-user counters with --email",
		Long: `Print impression and click counters.

Examples:
  monetagctl stats
  monetagctl stats --email user@example.com --format yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := opts.backend(cmd)
			if err != nil {
				return err
			}
			defer b.Close()

			if opts.Email == "" {
				return render(cmd.OutOrStdout(), opts.Format, globalResult(b.Stats.Global(cmd.Context())))
			}

			stats, err := b.Stats.ForEmail(cmd.Context(), opts.Email)
			if err != nil {
				return WrapExitError(ExitFailure, "stats failed", err)
			}
			return render(cmd.OutOrStdout(), opts.Format, userResult{Email: opts.Email, UserStats: stats})
		},
	}
	cmd.Flags().StringVar(&opts.Email, "email", "", "report counters for the user with this email")

	return cmd
}

type messageResult struct {
	Message string `json:"message" yaml:"message"`
}

func (r messageResult) renderText(w io.Writer) error {
	_, err := fmt.Fprintln(w, r.Message)
	return err
}

type countResult struct {
	Action string `json:"action" yaml:"action"`
	Count  int64  `json:"count" yaml:"count"`
}

func (r countResult) renderText(w io.Writer) error {
	_, err := fmt.Fprintf(w, "%d %s\n", r.Count, r.Action)
	return err
}

type globalResult model.GlobalStats

func (r globalResult) renderText(w io.Writer) error {
	_, err := fmt.Fprintf(w, "impressions:  %d\nclicks:       %d\nunique users: %d\n",
		r.Impressions, r.Clicks, r.UniqueUsers)
	return err
}

type userResult struct {
	Email           string `json:"email" yaml:"email"`
	model.UserStats `yaml:",inline"`
}

func (r userResult) renderText(w io.Writer) error {
	_, err := fmt.Fprintf(w, "email:         %s\nimpressions:   %d\nclicks:        %d\ntotal revenue: %s\n",
		r.Email, r.Impressions, r.Clicks, r.TotalRevenue)
	return err
}
