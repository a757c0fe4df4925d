package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/mengkeat/blog/content"
	"github.com/mengkeat/blog/tags"
)

func (c *cli) tagsCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "tags",
		Short: "List every tag with its count, most used first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, closeStore, err := c.openStore()
			if err != nil {
				return err
			}
			defer closeStore()

			infos, err := tags.Collect(cmd.Context(), store)
			if err != nil {
				return err
			}
			c.logger.Debug("tags collected", zap.Int("tags", len(infos)))

			out := cmd.OutOrStdout()
			if asJSON {
				if infos == nil {
					infos = []tags.Info{}
				}
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(infos)
			}
			return printTable(out, infos, isTerminal(out))
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

// openStore reads from the SQLite index when use_index is set and from
// ContentDir otherwise.
func (c *cli) openStore() (content.Store, func(), error) {
	if !c.cfg.UseIndex {
		return content.NewFileStore(c.cfg.ContentDir), func() {}, nil
	}
	idx, err := content.OpenIndex(c.cfg.IndexPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open index: %w", err)
	}
	return idx, func() { idx.Close() }, nil
}

func tagTable(infos []tags.Info) string {
	var b strings.Builder
	b.WriteString("| Tag | Count | Page |\n|---|---:|---|\n")
	for _, info := range infos {
		b.WriteString("| ")
		b.WriteString(strings.ReplaceAll(info.Tag, "|", `\|`))
		b.WriteString(" | ")
		b.WriteString(strconv.Itoa(info.Count))
		b.WriteString(" | /tags/")
		b.WriteString(info.Slug)
		b.WriteString("/ |\n")
	}
	return b.String()
}

func printTable(w io.Writer, infos []tags.Info, pretty bool) error {
	if len(infos) == 0 {
		_, err := fmt.Fprintln(w, "No tags yet.")
		return err
	}
	md := tagTable(infos)
	if pretty {
		rendered, err := glamour.Render(md, "dark")
		if err == nil {
			_, err = fmt.Fprint(w, rendered)
			return err
		}
	}
	_, err := fmt.Fprint(w, md)
	return err
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
