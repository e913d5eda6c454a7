package main

import (
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/hnrobert/lusers/internal/journal"
)

func newHistoryCmd(global *globalOptions) *cobra.Command {
	var journalDir string

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show the journal of committed runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := global.load(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("journal-dir") {
				cfg.JournalDir = journalDir
			}
			if cfg.JournalDir == "" {
				return errors.New("no journal directory configured")
			}

			entries, err := journal.NewStore(cfg.JournalDir).List()
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "TIME\tRUN\tUSERS\tGROUPS\tMEMBERSHIPS\tDROPPED")
			for _, e := range entries {
				fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%d\n",
					e.Timestamp.Local().Format(time.DateTime), e.RunID,
					len(e.Users), len(e.Groups), len(e.Memberships), len(e.Dropped))
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&journalDir, "journal-dir", "", "journal directory (overrides the config file)")
	return cmd
}
