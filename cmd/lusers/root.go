package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/hnrobert/lusers/internal/config"
	"github.com/hnrobert/lusers/internal/logger"
	"github.com/hnrobert/lusers/internal/provision"
)

type globalOptions struct {
	configPath string
	root       string
	logDir     string
	noColor    bool
}

func (o *globalOptions) addFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.configPath, "config", config.DefaultPath, "path to the YAML configuration file")
	fs.StringVar(&o.root, "root", "", "operate on the account databases below this directory")
	fs.StringVar(&o.logDir, "log-dir", "", "also write logs to <dir>/logs")
	fs.BoolVar(&o.noColor, "no-color", false, "disable coloured log output")
}

// load reads the config file and applies flag overrides.
func (o *globalOptions) load(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return config.Config{}, err
	}
	flags := cmd.Flags()
	if flags.Changed("root") {
		cfg.Root = o.root
	}
	if flags.Changed("log-dir") {
		cfg.LogDir = o.logDir
	}
	if o.noColor || (cfg.Color != nil && !*cfg.Color) {
		logger.DisableColor()
	}
	if err := logger.Init(cfg.LogDir); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func newRootCmd() *cobra.Command {
	var (
		global     globalOptions
		dryRun     bool
		journalDir string
	)

	cmd := &cobra.Command{
		Use:   "lusers [flags] [rule-file...]",
		Short: "Provision system users and groups from declarative rules",
		Long: "Reads sysusers.d-style rule files (or the given files, '-' for stdin),\n" +
			"creates the missing users and groups and commits passwd, group and shadow once.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := global.load(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("journal-dir") {
				cfg.JournalDir = journalDir
			}

			res, err := provision.New(provision.Options{
				Config: cfg,
				Files:  args,
				Stdin:  cmd.InOrStdin(),
				DryRun: dryRun,
				Out:    cmd.OutOrStdout(),
			}).Apply()
			if err != nil {
				return err
			}
			rep := res.Report
			logger.Info("run %s: %d users, %d groups, %d memberships created, %d dropped",
				res.RunID, len(rep.CreatedUsers), len(rep.CreatedGroups), len(rep.Memberships), len(rep.Dropped))
			return nil
		},
	}

	global.addFlags(cmd.PersistentFlags())
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "resolve and print the changes without writing")
	cmd.Flags().StringVar(&journalDir, "journal-dir", "", "append a record of each committed run to this directory")

	cmd.AddCommand(newStatusCmd(&global))
	cmd.AddCommand(newHistoryCmd(&global))
	return cmd
}
