package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/deskgrid/pkg/cache"
	"github.com/matzehuels/deskgrid/pkg/desktop"
	"github.com/matzehuels/deskgrid/pkg/errors"
	"github.com/matzehuels/deskgrid/pkg/layout"
	"github.com/matzehuels/deskgrid/pkg/server"
)

// cellWidth is the width of one grid cell in rendered pages.
const cellWidth = 12

// showCommand creates the "show" command.
func (c *CLI) showCommand() *cobra.Command {
	var (
		page    int
		asJSON  bool
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the layout page by page",
		Example: `  deskgrid show
  deskgrid show --page 2
  deskgrid show --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return c.withEngine(ctx, func(eng *desktop.Engine) error {
				snap := eng.Snapshot()
				if asJSON {
					enc := json.NewEncoder(output)
					enc.SetIndent("", "  ")
					return enc.Encode(server.NewLayoutView(snap, eng.CurrentPage(), eng.Stale()))
				}
				if page < 0 || page > snap.PageCount {
					return errors.New(errors.ErrCodeNotFound, "page %d does not exist (layout has %d pages)", page, snap.PageCount)
				}

				labels, err := c.newLabeler(ctx, noCache)
				if err != nil {
					return err
				}
				defer labels.close()

				for p := 0; p < snap.PageCount; p++ {
					if page > 0 && p != page-1 {
						continue
					}
					fmt.Fprintln(output, StyleTitle.Render(fmt.Sprintf("Page %d/%d", p+1, snap.PageCount)))
					fmt.Fprintln(output, renderPage(snap, p, labels.label))
				}
				printFolders(snap, labels.label)
				printLayoutStats(len(snap.Items), len(snap.Folders), snap.PageCount, eng.Stale())
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&page, "page", "p", 0, "show only this page")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the layout as JSON")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "do not look up display labels")

	return cmd
}

// =============================================================================
// Labels
// =============================================================================

// labeler resolves display labels through the label cache, falling back
// to a short name derived from the item itself.
type labeler struct {
	ctx   context.Context
	cache cache.Cache
	keyer cache.Keyer
}

func (c *CLI) newLabeler(ctx context.Context, noCache bool) (*labeler, error) {
	tc, err := c.newLabelCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	return &labeler{ctx: ctx, cache: tc, keyer: c.cfg.LabelKeyer()}, nil
}

func (l *labeler) label(it layout.Item) string {
	if f, ok := it.Payload.(layout.Folder); ok {
		return f.Name
	}
	if data, ok, err := l.cache.Get(l.ctx, l.keyer.LabelKey(it.Key())); err == nil && ok {
		return string(data)
	}
	return shortName(it)
}

func (l *labeler) close() {
	_ = l.cache.Close()
}

// shortName is the last bundle segment of an app, or the card id of a
// widget.
func shortName(it layout.Item) string {
	switch p := it.Payload.(type) {
	case layout.App:
		if i := strings.LastIndex(p.Bundle, "."); i >= 0 && i < len(p.Bundle)-1 {
			return p.Bundle[i+1:]
		}
		return p.Bundle
	case layout.Widget:
		return fmt.Sprintf("card %d", p.CardID)
	}
	return it.Key()
}

// =============================================================================
// Rendering
// =============================================================================

// renderPage draws one page as a bordered grid. An item's label sits in
// its top-left cell and the other cells it covers show a dot.
func renderPage(s *layout.Snapshot, page int, label func(layout.Item) string) string {
	cells := make([][]string, s.Rows)
	kinds := make([][]layout.Kind, s.Rows)
	for r := range cells {
		cells[r] = make([]string, s.Columns)
		kinds[r] = make([]layout.Kind, s.Columns)
		for c := range cells[r] {
			cells[r][c] = iconEmpty
			kinds[r][c] = -1
		}
	}

	for _, it := range s.ItemsOnPage(page) {
		if it.Area.Width <= 0 || it.Area.Height <= 0 {
			continue
		}
		for r := it.Row; r < it.Row+it.Area.Height && r < s.Rows; r++ {
			for c := it.Column; c < it.Column+it.Area.Width && c < s.Columns; c++ {
				cells[r][c] = iconCovered
				kinds[r][c] = it.Kind()
			}
		}
		text := label(it)
		if it.Badge > 0 {
			badge := fmt.Sprintf(" (%d)", it.Badge)
			text = truncate(text, cellWidth-2-len(badge)) + styleBadge.Render(badge)
		} else {
			text = truncate(text, cellWidth-2)
		}
		cells[it.Row][it.Column] = text
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		BorderRow(true).
		Rows(cells...).
		StyleFunc(func(row, col int) lipgloss.Style {
			base := lipgloss.NewStyle().Width(cellWidth).Padding(0, 1)
			if row < 0 || row >= len(kinds) || col >= len(kinds[row]) {
				return base
			}
			switch kinds[row][col] {
			case layout.KindApp:
				return base.Inherit(styleApp)
			case layout.KindWidget:
				return base.Inherit(styleWidget)
			case layout.KindFolder:
				return base.Inherit(styleFolder)
			}
			return base.Inherit(StyleDim)
		})
	return t.Render()
}

// printFolders lists every folder with its members.
func printFolders(s *layout.Snapshot, label func(layout.Item) string) {
	for _, it := range s.Items {
		f, ok := it.Payload.(layout.Folder)
		if !ok {
			continue
		}
		members := s.Folders[f.ID]
		names := make([]string, len(members))
		for i, m := range members {
			names[i] = label(m)
		}
		fmt.Fprintln(output, styleFolder.Render(f.Name)+" "+
			StyleDim.Render(fmt.Sprintf("(%s, page %d)", f.ID, it.Page+1)))
		printDetail("%s", strings.Join(names, ", "))
	}
}
