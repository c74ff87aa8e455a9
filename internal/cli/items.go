package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/deskgrid/pkg/desktop"
	"github.com/matzehuels/deskgrid/pkg/errors"
	"github.com/matzehuels/deskgrid/pkg/layout"
)

// placementMode maps the 1-based --page flag to a placement mode: no page
// means the first free cell anywhere, a page means near that page.
func placementMode(cmd *cobra.Command, page int) layout.Mode {
	if cmd.Flags().Changed("page") {
		return layout.Interactive(page - 1)
	}
	return layout.Bulk
}

func printPlaced(it layout.Item) {
	printSuccess("Placed %s %s", it.Kind(), StyleHighlight.Render(it.Key()))
	printDetail("page %d, row %d, column %d, %dx%d", it.Page+1, it.Row, it.Column, it.Area.Width, it.Area.Height)
}

// addCommand creates the "add" command group.
func (c *CLI) addCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Place a new app or widget on the grid",
	}
	cmd.AddCommand(c.addAppCommand())
	cmd.AddCommand(c.addWidgetCommand())
	return cmd
}

func (c *CLI) addAppCommand() *cobra.Command {
	var (
		ability string
		module  string
		page    int
	)

	cmd := &cobra.Command{
		Use:   "app <bundle>",
		Short: "Place an app icon",
		Example: `  deskgrid add app com.example.mail
  deskgrid add app com.example.maps --page 2`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := errors.ValidateBundleName(args[0]); err != nil {
				return err
			}
			it := layout.NewApp(args[0], ability, module)
			return c.withEngine(cmd.Context(), func(eng *desktop.Engine) error {
				placed, err := eng.PlaceItem(it, placementMode(cmd, page))
				if err != nil {
					return err
				}
				printPlaced(placed)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&ability, "ability", "MainAbility", "launch ability")
	cmd.Flags().StringVar(&module, "module", "entry", "module name")
	cmd.Flags().IntVarP(&page, "page", "p", 0, "place near this page instead of the first free cell")

	return cmd
}

func (c *CLI) addWidgetCommand() *cobra.Command {
	var (
		ability   string
		module    string
		size      string
		dimension int
		page      int
	)

	cmd := &cobra.Command{
		Use:   "widget <bundle> <card-id>",
		Short: "Place a widget card",
		Example: `  deskgrid add widget com.example.weather 1001 --size 2x2
  deskgrid add widget com.example.clock 1002 --size 4x1 --page 1`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := errors.ValidateBundleName(args[0]); err != nil {
				return err
			}
			cardID, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil {
				return errors.New(errors.ErrCodeInvalidInput, "card id must be an integer, got %q", args[1])
			}
			w, h, err := parseSize(size)
			if err != nil {
				return err
			}
			it := layout.NewWidget(layout.Widget{
				CardID:    cardID,
				Bundle:    args[0],
				Ability:   ability,
				Module:    module,
				Dimension: dimension,
			}, w, h)

			return c.withEngine(cmd.Context(), func(eng *desktop.Engine) error {
				placed, err := eng.PlaceItem(it, placementMode(cmd, page))
				if err != nil {
					return err
				}
				printPlaced(placed)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&ability, "ability", "FormAbility", "form ability")
	cmd.Flags().StringVar(&module, "module", "entry", "module name")
	cmd.Flags().StringVarP(&size, "size", "s", "2x2", "footprint as WIDTHxHEIGHT in cells")
	cmd.Flags().IntVar(&dimension, "dimension", 0, "host-specific form dimension id")
	cmd.Flags().IntVarP(&page, "page", "p", 0, "place near this page instead of the first free cell")

	return cmd
}

// parseSize parses "WxH".
func parseSize(s string) (int, int, error) {
	var w, h int
	if n, err := fmt.Sscanf(s, "%dx%d", &w, &h); err != nil || n != 2 || w <= 0 || h <= 0 {
		return 0, 0, errors.New(errors.ErrCodeInvalidInput, "size must be WIDTHxHEIGHT with positive numbers, got %q", s)
	}
	return w, h, nil
}

// removeCommand creates the "remove" command.
func (c *CLI) removeCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "remove <key>...",
		Aliases: []string{"rm"},
		Short:   "Remove items from the grid",
		Long:    `Remove top-level items by key. Pages left empty are dropped and later pages move up. Removing a folder discards its apps.`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withEngine(cmd.Context(), func(eng *desktop.Engine) error {
				dropped, err := eng.RemoveItems(args...)
				if err != nil {
					return err
				}
				printSuccess("Removed %d items", len(args))
				if len(dropped) > 0 {
					printDetail("dropped empty pages %v, %d pages left", oneBased(dropped), eng.Descriptor().PageCount)
				}
				return nil
			})
		},
	}
}

// uninstallCommand creates the "uninstall" command.
func (c *CLI) uninstallCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "uninstall <bundle>",
		Short: "Remove every app and widget of a bundle, including folder contents",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := errors.ValidateBundleName(args[0]); err != nil {
				return err
			}
			return c.withEngine(cmd.Context(), func(eng *desktop.Engine) error {
				removed := eng.UninstallBundle(args[0])
				printSuccess("Uninstalled %s", StyleHighlight.Render(args[0]))
				printDetail("%d items left the grid", len(removed))
				return nil
			})
		},
	}
}

// moveCommand creates the "move" command.
func (c *CLI) moveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "move <key> <page> <row> <column>",
		Short: "Drop an item at a chosen cell",
		Long: `Drop an item at a chosen cell. Pages count from 1, rows and columns from 0.
Use one past the last page to move the item onto a new page.`,
		Args: cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			pos, err := parseInts(args[1:])
			if err != nil {
				return err
			}
			return c.withEngine(cmd.Context(), func(eng *desktop.Engine) error {
				moved, err := eng.MoveItem(args[0], pos[0]-1, pos[1], pos[2])
				if err != nil {
					return err
				}
				printSuccess("Moved %s", StyleHighlight.Render(args[0]))
				printDetail("page %d, row %d, column %d", moved.Page+1, moved.Row, moved.Column)
				return nil
			})
		},
	}
}

// badgeCommand creates the "badge" command.
func (c *CLI) badgeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "badge <bundle> <count>",
		Short: "Set the unread badge of a bundle's apps",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := parseInts(args[1:])
			if err != nil {
				return err
			}
			return c.withEngine(cmd.Context(), func(eng *desktop.Engine) error {
				if eng.UpdateBadge(args[0], n[0]) == 0 {
					return errors.New(errors.ErrCodeNotFound, "no app of bundle %q in the layout", args[0])
				}
				printSuccess("Badge of %s set to %d", StyleHighlight.Render(args[0]), max(n[0], 0))
				return nil
			})
		},
	}
}

func parseInts(args []string) ([]int, error) {
	out := make([]int, len(args))
	for i, a := range args {
		n, err := strconv.Atoi(a)
		if err != nil {
			return nil, errors.New(errors.ErrCodeInvalidInput, "expected an integer, got %q", a)
		}
		out[i] = n
	}
	return out, nil
}

func oneBased(pages []int) []int {
	out := make([]int, len(pages))
	for i, p := range pages {
		out[i] = p + 1
	}
	return out
}
