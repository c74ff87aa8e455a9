package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/deskgrid/pkg/config"
)

// initCommand creates the "init" command.
func (c *CLI) initCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default config and create the layout store",
		Long: `Write a default config file (unless one exists) and create the layout
store with the configured number of empty pages.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := c.configFile()
			if err != nil {
				return err
			}

			written, err := writeDefaultConfig(path, c.cfg, force)
			if err != nil {
				return err
			}
			if written {
				printSuccess("Wrote config")
			} else {
				printInfo("Config already exists")
			}
			printFile(path)

			opts, err := c.cfg.StoreOptions()
			if err != nil {
				return err
			}
			err = spin(cmd.Context(), "Opening "+opts.Driver+" store...", "Layout store ready", func() error {
				s, err := c.openEngine(cmd.Context())
				if err != nil {
					return err
				}
				d := s.engine.Descriptor()
				if err := s.close(); err != nil {
					return fmt.Errorf("layout not saved: %w", err)
				}
				printDetail("%dx%d grid, %d pages", d.Rows, d.Columns, d.PageCount)
				return nil
			})
			if err != nil {
				return err
			}
			if opts.Path != "" {
				printFile(opts.Path)
			}

			printNewline()
			printNextStep("Place your first app", appName+" add app com.example.mail")
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing config file")

	return cmd
}

// writeDefaultConfig writes cfg to path unless the file exists. It reports
// whether the file was written.
func writeDefaultConfig(path string, cfg *config.Config, force bool) (bool, error) {
	if _, err := os.Stat(path); err == nil && !force {
		return false, nil
	}
	if err := cfg.Save(path); err != nil {
		return false, err
	}
	return true, nil
}
