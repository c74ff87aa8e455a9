package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/deskgrid/pkg/desktop"
	"github.com/matzehuels/deskgrid/pkg/errors"
)

// resizeCommand creates the "resize" command.
func (c *CLI) resizeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "resize <preset|ROWSxCOLS>",
		Short: "Re-flow the layout onto a different grid size",
		Long: `Re-flow the layout onto a different grid size. Items keep their reading
order; items from different pages never share a page. Fails without changes
when an item is too large for the new grid.

The new size is saved as grid.preset in the config file, adding a preset
when no existing one matches, so later commands keep it.`,
		Example: `  deskgrid resize 4x4
  deskgrid resize 6x4`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			size, err := c.cfg.ParseGrid(args[0])
			if err != nil {
				return err
			}
			path, err := c.configFile()
			if err != nil {
				return err
			}
			err = c.withEngine(cmd.Context(), func(eng *desktop.Engine) error {
				from := eng.Descriptor()
				prog := newProgress(c.Logger)
				if err := eng.ChangeGridDimensions(size.Rows, size.Columns); err != nil {
					return err
				}
				prog.done(fmt.Sprintf("Migrated %d items", len(eng.Snapshot().Items)))

				to := eng.Descriptor()
				printSuccess("Grid is now %s", StyleHighlight.Render(size.String()))
				printDetail("%dx%d, %d pages %s %dx%d, %d pages",
					from.Rows, from.Columns, from.PageCount, iconArrow, to.Rows, to.Columns, to.PageCount)
				return nil
			})
			if err != nil {
				return err
			}

			// Without this the next load migrates back to the old preset.
			name := c.cfg.SetGrid(size)
			if err := c.cfg.Save(path); err != nil {
				return fmt.Errorf("layout resized but config not saved: %w", err)
			}
			printDetail("grid.preset = %q", name)
			printFile(path)
			return nil
		},
	}
}

// pageCommand creates the "page" command group.
func (c *CLI) pageCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "page",
		Short: "Add or delete pages",
	}
	cmd.AddCommand(c.pageAddCommand())
	cmd.AddCommand(c.pageDeleteCommand())
	return cmd
}

func (c *CLI) pageAddCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "add",
		Short: "Append an empty page and make it current",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withEngine(cmd.Context(), func(eng *desktop.Engine) error {
				p := eng.AddBlankPage()
				printSuccess("Added page %d", p+1)
				return nil
			})
		},
	}
}

func (c *CLI) pageDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <page>",
		Short: "Delete an empty page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			page, err := parsePage(args[0])
			if err != nil {
				return err
			}
			return c.withEngine(cmd.Context(), func(eng *desktop.Engine) error {
				if err := eng.DeleteBlankPage(page); err != nil {
					return err
				}
				printSuccess("Deleted page %d", page+1)
				return nil
			})
		},
	}
}

// parsePage converts a 1-based page argument to a page index.
func parsePage(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, errors.New(errors.ErrCodeInvalidInput, "page must be a number from 1, got %q", s)
	}
	return n - 1, nil
}
