package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mengkeat/blog"
)

// cli carries state shared by every subcommand. PersistentPreRunE fills in
// cfg and logger before any RunE runs.
type cli struct {
	configPath string
	verbose    bool

	cfg    blog.SiteConfig
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:           "blog",
		Short:         "Tag tooling and preview server for the blog",
		Long:          `Aggregates tags across the blog and til collections, serves a live preview of the tag pages and scaffolds new entries.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			logger, err := newLogger(c.verbose)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			c.logger = logger
			cfg, err := blog.LoadConfig(c.configPath)
			if err != nil {
				return err
			}
			c.cfg = cfg
			return nil
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if c.logger != nil {
				_ = c.logger.Sync()
			}
		},
	}
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default ./site.yaml when present)")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(
		c.serveCmd(),
		c.tagsCmd(),
		c.indexCmd(),
		c.newCmd(),
		versionCmd(),
	)
	return root
}

func newLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	return cfg.Build()
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "blog %s\n", version)
		},
	}
}
