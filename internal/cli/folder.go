package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/deskgrid/pkg/desktop"
	"github.com/matzehuels/deskgrid/pkg/errors"
	"github.com/matzehuels/deskgrid/pkg/layout"
)

// folderCommand creates the "folder" command group.
func (c *CLI) folderCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "folder",
		Short: "Group apps into folders",
		Long: `Group apps into folders. Folders are addressed by id or by name; a name
must match exactly one folder.`,
	}
	cmd.AddCommand(c.folderCreateCommand())
	cmd.AddCommand(c.folderAddCommand())
	cmd.AddCommand(c.folderRemoveCommand())
	cmd.AddCommand(c.folderDeleteCommand())
	cmd.AddCommand(c.folderRenameCommand())
	cmd.AddCommand(c.folderShowCommand())
	return cmd
}

func (c *CLI) folderCreateCommand() *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "create <app-key> <app-key>...",
		Short: "Create a folder from two or more apps",
		Example: `  deskgrid folder create com.example.mailMainAbilityentry com.example.chatMainAbilityentry
  deskgrid folder create --name Work <key> <key> <key>`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withEngine(cmd.Context(), func(eng *desktop.Engine) error {
				it, err := eng.CreateFolder(name, args...)
				if err != nil {
					return err
				}
				f := it.Payload.(layout.Folder)
				printSuccess("Created folder %s with %d apps", styleFolder.Render(f.Name), len(args))
				printDetail("id %s, page %d, row %d, column %d", f.ID, it.Page+1, it.Row, it.Column)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "folder name (default: next free numbered name)")

	return cmd
}

func (c *CLI) folderAddCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "add <folder> <app-key>",
		Short: "Move an app into a folder",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withEngine(cmd.Context(), func(eng *desktop.Engine) error {
				f, err := resolveFolder(eng.Snapshot(), args[0])
				if err != nil {
					return err
				}
				if err := eng.AddToFolder(f.ID, args[1]); err != nil {
					return err
				}
				printSuccess("Moved %s into %s", StyleHighlight.Render(args[1]), styleFolder.Render(f.Name))
				return nil
			})
		},
	}
}

func (c *CLI) folderRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <folder> <app-key>",
		Short: "Move an app out of a folder onto the grid",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withEngine(cmd.Context(), func(eng *desktop.Engine) error {
				f, err := resolveFolder(eng.Snapshot(), args[0])
				if err != nil {
					return err
				}
				if err := eng.RemoveFromFolder(f.ID, args[1]); err != nil {
					return err
				}
				if it, ok := eng.Item(args[1]); ok {
					printPlaced(it)
				}
				return nil
			})
		},
	}
}

func (c *CLI) folderDeleteCommand() *cobra.Command {
	var mode string

	cmd := &cobra.Command{
		Use:   "delete <folder>",
		Short: "Delete a folder",
		Long: `Delete a folder. With --mode reparent (the default) its apps go back onto
the grid; with --mode discard they are removed together with the folder.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			policy, err := layout.ParseFolderPolicy(mode)
			if err != nil {
				return err
			}
			return c.withEngine(cmd.Context(), func(eng *desktop.Engine) error {
				f, err := resolveFolder(eng.Snapshot(), args[0])
				if err != nil {
					return err
				}
				members, err := eng.DeleteFolder(f.ID, policy)
				if err != nil {
					return err
				}
				printSuccess("Deleted folder %s", styleFolder.Render(f.Name))
				if policy == layout.Discard {
					printDetail("removed %d apps", len(members))
				} else {
					printDetail("moved %d apps back onto the grid", len(members))
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&mode, "mode", "m", "reparent", "what happens to the apps: reparent or discard")

	return cmd
}

func (c *CLI) folderRenameCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "rename <folder> <name>",
		Short: "Rename a folder",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withEngine(cmd.Context(), func(eng *desktop.Engine) error {
				f, err := resolveFolder(eng.Snapshot(), args[0])
				if err != nil {
					return err
				}
				if err := eng.RenameFolder(f.ID, args[1]); err != nil {
					return err
				}
				printSuccess("Renamed %s %s %s", f.Name, iconArrow, styleFolder.Render(strings.TrimSpace(args[1])))
				return nil
			})
		},
	}
}

func (c *CLI) folderShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <folder>",
		Short: "Show a folder's apps as they appear when opened",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.openEngine(cmd.Context())
			if err != nil {
				return err
			}
			defer s.close()

			f, err := resolveFolder(s.engine.Snapshot(), args[0])
			if err != nil {
				return err
			}
			pages, err := s.engine.FolderPages(f.ID)
			if err != nil {
				return err
			}

			fmt.Fprintln(output, styleFolder.Render(f.Name)+" "+StyleDim.Render("("+f.ID+")"))
			for i, page := range pages {
				names := make([]string, len(page))
				for j, m := range page {
					names[j] = shortName(m)
				}
				printDetail("page %d: %s", i+1, strings.Join(names, ", "))
			}
			return nil
		},
	}
}

// resolveFolder finds a folder by id, then by exact name.
func resolveFolder(s *layout.Snapshot, ref string) (layout.Folder, error) {
	var matches []layout.Folder
	for _, it := range s.Items {
		f, ok := it.Payload.(layout.Folder)
		if !ok {
			continue
		}
		if f.ID == ref {
			return f, nil
		}
		if f.Name == ref {
			matches = append(matches, f)
		}
	}
	switch len(matches) {
	case 0:
		return layout.Folder{}, errors.New(errors.ErrCodeNotFound, "folder %q not found", ref)
	case 1:
		return matches[0], nil
	}
	return layout.Folder{}, errors.New(errors.ErrCodeInvalidInput, "%d folders are named %q, use the folder id", len(matches), ref)
}
