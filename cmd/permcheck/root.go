package main

import (
	"time"

	"github.com/spf13/cobra"
)

// options holds the flags of the root command.
type options struct {
	configPath  string
	collection  string
	keys        []string
	baseURL     string
	token       string
	locale      string
	timeout     time.Duration
	concurrency int
	refresh     bool
	stream      bool
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "permcheck --collection <name> [--keys 1,2,+]",
		Short: "Resolve item permissions for records of a collection",
		Long: `permcheck asks the permissions service which item actions (update, delete, share)
the configured token may perform on each record, using the same resolver as the record
editor. A failed lookup is reported as a notification and falls back to granting every
action, exactly as the editor would.

Use "+" as a key to check a record that has not been created yet.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCheck(cmd.Context(), opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
		SilenceUsage: true,
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.configPath, "config", "", "Path to configuration directory or file")
	flags.StringVarP(&opts.collection, "collection", "c", "", "Collection the records belong to")
	flags.StringSliceVarP(&opts.keys, "keys", "k", []string{newRecordKey}, "Primary keys to check (comma-separated, \"+\" for a new record)")
	flags.StringVar(&opts.baseURL, "base-url", "", "Permissions service URL (overrides client.base_url)")
	flags.StringVar(&opts.token, "token", "", "Access token (overrides client.token)")
	flags.StringVar(&opts.locale, "locale", "", "Locale for notification messages (overrides i18n.locale)")
	flags.DurationVar(&opts.timeout, "timeout", 30*time.Second, "Overall deadline for all lookups")
	flags.IntVar(&opts.concurrency, "concurrency", 4, "Maximum number of concurrent lookups")
	flags.BoolVar(&opts.refresh, "refresh", false, "Force a second fetch per record after the first one lands")
	flags.BoolVar(&opts.stream, "stream", false, "Write notifications to stderr as JSON lines while keys resolve")
	_ = cmd.MarkFlagRequired("collection")

	return cmd
}
