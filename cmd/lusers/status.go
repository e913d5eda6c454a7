package main

import (
	"github.com/spf13/cobra"

	"github.com/hnrobert/lusers/internal/audit"
	"github.com/hnrobert/lusers/internal/hostfs"
)

func newStatusCmd(global *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "List accounts with their groups and password state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := global.load(cmd)
			if err != nil {
				return err
			}
			accounts, err := audit.Collect(hostfs.New(cfg.Root))
			if err != nil {
				return err
			}
			return audit.Write(cmd.OutOrStdout(), accounts)
		},
	}
}
