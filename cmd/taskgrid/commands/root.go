package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/taskmaster/taskgrid/internal/domain/offset"
	"github.com/taskmaster/taskgrid/internal/infrastructure/config"
	"github.com/taskmaster/taskgrid/internal/infrastructure/logger"
)

// Build information, set with -ldflags at release time.
var (
	Version   = "dev"
	GitCommit = "development"
)

// Options are the flags shared by every command
type Options struct {
	ConfigPath string
	Verbose    bool
}

// NewRootCommand assembles the taskgrid command tree
func NewRootCommand() *cobra.Command {
	opts := &Options{}

	rootCmd := &cobra.Command{
		Use:           "taskgrid",
		Short:         "Task grid with relative date/time offsets",
		Long:          `TaskGrid stores tasks with chained date/time fields, where a field can be derived from the one before it by an offset such as +3h or +1w.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "Config file (yaml, json or toml)")
	rootCmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "Log debug output to stderr")

	rootCmd.AddCommand(NewServeCommand(opts))
	rootCmd.AddCommand(NewMigrateCommand(opts))
	rootCmd.AddCommand(NewOffsetCommand(opts))
	rootCmd.AddCommand(NewSheetCommand(opts))
	rootCmd.AddCommand(NewTokenCommand(opts))
	rootCmd.AddCommand(NewVersionCommand())

	return rootCmd
}

func (o *Options) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(o.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

// cliLogger keeps stdout for command output: logs go to stderr, warnings
// and above unless --verbose.
func (o *Options) cliLogger(cfg *config.Config) (*logger.Logger, error) {
	logCfg := cfg.Logger
	logCfg.Output = "stderr"
	logCfg.Format = "console"
	logCfg.Level = "warn"
	if o.Verbose {
		logCfg.Level = "debug"
	}
	return logger.New(logCfg)
}

func newEngine(cfg *config.Config, log *logger.Logger) (*offset.Engine, error) {
	chain, err := offset.NewChain(cfg.Offsets.Chain)
	if err != nil {
		return nil, err
	}
	loc, err := cfg.Offsets.Location()
	if err != nil {
		return nil, err
	}
	return offset.NewEngine(chain, loc, offset.Locale(cfg.Offsets.Locale), log), nil
}

// NewVersionCommand creates the version command
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print TaskGrid version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "TaskGrid %s\n", Version)
			fmt.Fprintf(cmd.OutOrStdout(), "Git Commit: %s\n", GitCommit)
		},
	}
}
