package main

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Alp4ka/persistpager"
	"github.com/Alp4ka/persistpager/internal/config"
)

type rootOptions struct {
	cfgFile   string
	verbose   bool
	overrides []string

	cfg    *config.Config
	logger *logrus.Logger
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "persistpager",
		Short: "Page through persisted objects the way an indexer would",
		Long: `persistpager builds one pager per configured object class over an ORM,
document, content repository or search backend and reports on the pages it yields.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			_ = godotenv.Load(".env")

			return opts.init(cmd)
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.cfgFile, "config", "c", "",
		"config file (default: ./persistpager.yaml)")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false,
		"enable debug logging")
	cmd.PersistentFlags().StringArrayVar(&opts.overrides, "set", nil,
		"per-call provider option override, key=value (repeatable)")

	cmd.AddCommand(
		newCheckCmd(opts),
		newStatsCmd(opts),
		newDumpCmd(opts),
	)

	return cmd
}

func (o *rootOptions) init(cmd *cobra.Command) error {
	cfg, err := config.Load(o.cfgFile)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err = cfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	logger, err := newLogger(cfg.Log, o.verbose)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	logger.SetOutput(cmd.ErrOrStderr())
	persistpager.SetLogger(logger)

	o.cfg = cfg
	o.logger = logger

	return nil
}

func (o *rootOptions) override() (persistpager.Config, error) {
	return parseOverrides(o.overrides)
}

func newLogger(cfg config.LogConfig, verbose bool) (*logrus.Logger, error) {
	logger := logrus.New()

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	if verbose {
		level = logrus.DebugLevel
	}
	logger.SetLevel(level)

	switch cfg.Format {
	case "", "text":
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	default:
		return nil, fmt.Errorf("unknown log format %q", cfg.Format)
	}

	return logger, nil
}
