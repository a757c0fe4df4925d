package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mengkeat/blog/content"
)

func (c *cli) indexCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "index",
		Short: "Sync the content directory into the SQLite index",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			idx, err := content.OpenIndex(c.cfg.IndexPath)
			if err != nil {
				return fmt.Errorf("open index: %w", err)
			}
			defer idx.Close()

			stats, err := idx.Sync(cmd.Context(), content.NewFileStore(c.cfg.ContentDir))
			if err != nil {
				return fmt.Errorf("sync index: %w", err)
			}
			c.logger.Info("index synced",
				zap.String("path", c.cfg.IndexPath),
				zap.Int("upserted", stats.Upserted),
				zap.Int("deleted", stats.Deleted))
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d upserted, %d deleted\n", c.cfg.IndexPath, stats.Upserted, stats.Deleted)
			return nil
		},
	}
}
