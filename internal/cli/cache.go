package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/deskgrid/pkg/errors"
)

// cacheCommand creates the label cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the display label cache",
		Long: `Manage the display label cache. Labels are looked up by item key when the
layout is shown; items without a label show a short name instead.`,
	}

	cmd.AddCommand(c.cacheGetCommand())
	cmd.AddCommand(c.cacheSetCommand())
	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

func (c *CLI) cacheGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get <item-key>",
		Short: "Print the cached label of an item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			tc, err := c.newLabelCache(ctx, false)
			if err != nil {
				return err
			}
			defer tc.Close()

			data, ok, err := tc.Get(ctx, c.cfg.LabelKeyer().LabelKey(args[0]))
			if err != nil {
				return err
			}
			if !ok {
				return errors.New(errors.ErrCodeNotFound, "no label cached for %q", args[0])
			}
			fmt.Fprintln(output, string(data))
			return nil
		},
	}
}

func (c *CLI) cacheSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "set <item-key> <label>",
		Short:   "Cache the display label of an item",
		Example: `  deskgrid cache set com.example.mailMainAbilityentry "Mail"`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			label := strings.TrimSpace(args[1])
			if label == "" {
				return errors.New(errors.ErrCodeInvalidInput, "label cannot be empty")
			}
			ctx := cmd.Context()
			tc, err := c.newLabelCache(ctx, false)
			if err != nil {
				return err
			}
			defer tc.Close()

			ttl, _ := c.cfg.CacheTTL()
			if err := tc.Set(ctx, c.cfg.LabelKeyer().LabelKey(args[0]), []byte(label), ttl); err != nil {
				return err
			}
			printSuccess("Cached label %s for %s", StyleHighlight.Render(label), args[0])
			return nil
		},
	}
}

func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every cached label",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			tc, err := c.newLabelCache(ctx, false)
			if err != nil {
				return err
			}
			defer tc.Close()

			if err := tc.Clear(ctx); err != nil {
				return err
			}
			printSuccess("Cleared label cache")
			printDetail("tiers: %s", strings.Join(tc.Tiers(), ", "))
			return nil
		},
	}
}

func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := c.cfg.CacheDir()
			if err != nil {
				return fmt.Errorf("get cache dir: %w", err)
			}
			fmt.Fprintln(output, dir)
			return nil
		},
	}
}
