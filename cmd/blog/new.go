package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mengkeat/blog/content"
	"github.com/mengkeat/blog/scaffold"
)

func (c *cli) newCmd() *cobra.Command {
	var opts scaffold.Options
	cmd := &cobra.Command{
		Use:   "new <blog|til> <title>",
		Short: "Create a new entry with front matter",
		Example: `  blog new blog "Rewriting the tag page"
  blog new til "xargs -P" --category shell --tags cli,unix`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			col := content.Collection(args[0])
			if !col.Valid() {
				return fmt.Errorf("unknown collection %q (want blog or til)", args[0])
			}
			title := strings.Join(args[1:], " ")
			path, err := scaffold.NewEntry(c.cfg.ContentDir, col, title, opts)
			if err != nil {
				return err
			}
			c.logger.Debug("entry created", zap.String("path", path))
			fmt.Fprintf(cmd.OutOrStdout(), "created %s\n", path)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringSliceVar(&opts.Tags, "tags", nil, "comma separated tags")
	f.StringVar(&opts.Category, "category", "", "til category")
	f.StringVar(&opts.Description, "description", "", "description (defaults to the title)")
	f.BoolVar(&opts.Draft, "draft", false, "mark as draft")
	return cmd
}
