// Package cli implements the deskgrid command-line interface.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/deskgrid/pkg/buildinfo"
	"github.com/matzehuels/deskgrid/pkg/cache"
	"github.com/matzehuels/deskgrid/pkg/config"
	"github.com/matzehuels/deskgrid/pkg/desktop"
	"github.com/matzehuels/deskgrid/pkg/store"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "deskgrid"

	// flushTimeout bounds the wait for layout writes when a command exits.
	flushTimeout = 10 * time.Second
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	cfg        *config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
	}
}

// SetLogLevel updates the logger's level. Debug level also routes the
// layout and persistence hooks to the logger.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
	if level <= log.DebugLevel {
		registerLogHooks(c.Logger)
	}
}

// SetOutput redirects command output, mainly for tests.
func (c *CLI) SetOutput(w io.Writer) { output = w }

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "deskgrid arranges launcher items on paged grids",
		Long: `deskgrid keeps a launcher home screen layout: apps, widgets and folders on
fixed-size pages. It places new items, compacts empty pages, re-flows the
layout when the grid size changes and persists every change.`,
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// init creates the file that --config names.
			return c.loadConfig(cmd.Name() == "init")
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/deskgrid/config.toml)")

	root.AddCommand(c.initCommand())
	root.AddCommand(c.showCommand())
	root.AddCommand(c.browseCommand())
	root.AddCommand(c.addCommand())
	root.AddCommand(c.removeCommand())
	root.AddCommand(c.uninstallCommand())
	root.AddCommand(c.moveCommand())
	root.AddCommand(c.resizeCommand())
	root.AddCommand(c.pageCommand())
	root.AddCommand(c.folderCommand())
	root.AddCommand(c.badgeCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

func (c *CLI) loadConfig(allowMissing bool) error {
	if allowMissing && c.configPath != "" {
		if _, err := os.Stat(c.configPath); os.IsNotExist(err) {
			c.cfg = config.Default()
			return nil
		}
	}
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	c.cfg = cfg
	return nil
}

// configFile returns the --config path or the default location.
func (c *CLI) configFile() (string, error) {
	if c.configPath != "" {
		return c.configPath, nil
	}
	path, err := config.DefaultPath()
	if err != nil {
		return "", fmt.Errorf("resolve config path: %w", err)
	}
	return path, nil
}

// =============================================================================
// Engine Factory
// =============================================================================

// session is an engine opened for one command.
type session struct {
	engine *desktop.Engine
	rs     store.RowStore
	logger *log.Logger
}

// openEngine opens the configured store and loads the layout from it.
func (c *CLI) openEngine(ctx context.Context) (*session, error) {
	size, err := c.cfg.GridSize()
	if err != nil {
		return nil, err
	}
	area, err := c.cfg.FolderArea()
	if err != nil {
		return nil, err
	}
	opts, err := c.cfg.StoreOptions()
	if err != nil {
		return nil, err
	}
	rs, err := store.Open(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", opts.Driver, err)
	}
	c.Logger.Debug("store opened", "driver", opts.Driver, "path", opts.Path)

	eng, err := desktop.New(store.NewSynchronizer(rs, c.Logger), desktop.Options{
		Rows:          size.Rows,
		Columns:       size.Columns,
		Pages:         c.cfg.Grid.Pages,
		FolderArea:    area,
		FolderPrefix:  c.cfg.Folder.NamePrefix,
		FolderRows:    c.cfg.Folder.OpenRows,
		FolderColumns: c.cfg.Folder.OpenColumns,
		Logger:        c.Logger,
	})
	if err != nil {
		rs.Close()
		return nil, err
	}
	if err := eng.Load(ctx); err != nil {
		eng.Close()
		rs.Close()
		return nil, err
	}
	return &session{engine: eng, rs: rs, logger: c.Logger}, nil
}

// close writes pending changes and releases the store. It reports a
// failed write, since the command's change did not reach the store.
func (s *session) close() error {
	ctx, cancel := context.WithTimeout(context.Background(), flushTimeout)
	defer cancel()
	flushErr := s.engine.Flush(ctx)
	if err := s.engine.Close(); err != nil && flushErr == nil {
		flushErr = err
	}
	if err := s.rs.Close(); err != nil {
		s.logger.Warn("close store", "err", err)
	}
	return flushErr
}

// withEngine runs fn against a freshly loaded engine and persists the
// result.
func (c *CLI) withEngine(ctx context.Context, fn func(*desktop.Engine) error) (err error) {
	s, err := c.openEngine(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := s.close(); cerr != nil && err == nil {
			err = fmt.Errorf("layout not saved: %w", cerr)
		}
	}()
	return fn(s.engine)
}

// =============================================================================
// Label Cache
// =============================================================================

// newLabelCache chains the memory, file and (optional) redis tiers.
func (c *CLI) newLabelCache(ctx context.Context, noCache bool) (*cache.Tiered, error) {
	if noCache {
		return cache.NewTiered(cache.Tier{Name: "null", Cache: cache.NewNullCache()}), nil
	}
	tiers := []cache.Tier{{Name: "memory", Cache: cache.NewMemoryCache(c.cfg.Cache.MemoryEntries)}}

	dir, err := c.cfg.CacheDir()
	if err != nil {
		c.Logger.Warn("no cache directory, file tier disabled", "err", err)
	} else {
		fc, err := cache.NewFileCache(dir)
		if err != nil {
			return nil, fmt.Errorf("open file cache: %w", err)
		}
		tiers = append(tiers, cache.Tier{Name: "file", Cache: fc})
	}

	if addr := c.cfg.Cache.RedisAddr; addr != "" {
		rc, err := cache.NewRedisCache(ctx, cache.RedisOptions{Addr: addr, Prefix: c.cfg.Cache.RedisPrefix})
		if err != nil {
			c.Logger.Warn("redis tier unavailable", "addr", addr, "err", err)
		} else {
			tiers = append(tiers, cache.Tier{Name: "redis", Cache: rc})
		}
	}

	tc := cache.NewTiered(tiers...)
	tc.BackfillTTL, _ = c.cfg.CacheTTL()
	return tc, nil
}
