package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/deskgrid/pkg/cache"
	"github.com/matzehuels/deskgrid/pkg/errors"
	"github.com/matzehuels/deskgrid/pkg/layout"
	"github.com/matzehuels/deskgrid/pkg/store"
)

// =============================================================================
// Types
// =============================================================================

// Config is the decoded config.toml.
type Config struct {
	Grid   Grid   `toml:"grid"`
	Folder Folder `toml:"folder"`
	Store  Store  `toml:"store"`
	Cache  Cache  `toml:"cache"`
	Server Server `toml:"server"`
}

// Preset is a named grid size.
type Preset struct {
	Rows    int `toml:"rows"`
	Columns int `toml:"columns"`
}

func (p Preset) String() string { return fmt.Sprintf("%dx%d", p.Rows, p.Columns) }

// Grid selects the page grid of a fresh or migrated layout.
type Grid struct {
	Preset  string            `toml:"preset"`
	Pages   int               `toml:"pages"`
	Presets map[string]Preset `toml:"presets"`
}

// Folder configures folder creation and the open-folder view.
type Folder struct {
	Area        []int  `toml:"area"`
	OpenRows    int    `toml:"open_rows"`
	OpenColumns int    `toml:"open_columns"`
	NamePrefix  string `toml:"name_prefix"`
}

// Store selects the durable row store.
type Store struct {
	Driver        string `toml:"driver"`
	Path          string `toml:"path"`
	MongoURI      string `toml:"mongo_uri"`
	MongoDatabase string `toml:"mongo_database"`
}

// Cache configures the label cache tiers.
type Cache struct {
	Dir           string `toml:"dir"`
	MemoryEntries int    `toml:"memory_entries"`
	RedisAddr     string `toml:"redis_addr"`
	RedisPrefix   string `toml:"redis_prefix"`
	TTL           string `toml:"ttl"`
	// Scope separates the labels of launcher profiles that share the file
	// or redis tier. Empty means unscoped.
	Scope string `toml:"scope"`
}

// Server configures the HTTP event source.
type Server struct {
	Addr string `toml:"addr"`
}

// =============================================================================
// Defaults
// =============================================================================

// DefaultPreset is the grid a fresh install uses.
const DefaultPreset = "5x4"

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Grid: Grid{
			Preset: DefaultPreset,
			Pages:  1,
			Presets: map[string]Preset{
				"4x4": {Rows: 4, Columns: 4},
				"5x4": {Rows: 5, Columns: 4},
				"6x4": {Rows: 6, Columns: 4},
			},
		},
		Folder: Folder{
			Area:        []int{1, 1},
			OpenRows:    3,
			OpenColumns: 3,
			NamePrefix:  "Folder",
		},
		Store: Store{
			Driver:        store.DriverSQLite,
			MongoURI:      "mongodb://localhost:27017",
			MongoDatabase: appName,
		},
		Cache: Cache{
			MemoryEntries: 256,
			RedisPrefix:   appName + ":",
			TTL:           "168h",
		},
		Server: Server{Addr: "127.0.0.1:8420"},
	}
}

// =============================================================================
// Loading
// =============================================================================

// Load reads a TOML file over the defaults. An empty path means the
// default location, where a missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()
	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return cfg, nil
		}
		path = p
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) && !explicit {
		return cfg, nil
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config")
	}
	if err := cfg.decode(string(data)); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "config %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes TOML text over the defaults and validates the result.
func Parse(text string) (*Config, error) {
	cfg := Default()
	if err := cfg.decode(text); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) decode(text string) error {
	md, err := toml.Decode(text, c)
	if err != nil {
		return err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
	}
	return nil
}

// Encode writes c as TOML.
func (c *Config) Encode(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}

// Save writes c to path as TOML. The file is replaced atomically so a
// failed write never leaves a truncated config behind.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".config-*.toml")
	if err != nil {
		return fmt.Errorf("create config: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := c.Encode(tmp); err != nil {
		tmp.Close()
		return fmt.Errorf("write config: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace config: %w", err)
	}
	return nil
}

// =============================================================================
// Validation
// =============================================================================

// Validate checks the configuration for values the engine cannot use.
func (c *Config) Validate() error {
	for name, p := range c.Grid.Presets {
		if p.Rows <= 0 || p.Columns <= 0 {
			return errors.New(errors.ErrCodeInvalidConfig, "grid preset %q has non-positive dimensions %s", name, p)
		}
	}
	if _, err := c.GridSize(); err != nil {
		return err
	}
	if c.Grid.Pages < 1 {
		return errors.New(errors.ErrCodeInvalidConfig, "grid.pages must be at least 1, got %d", c.Grid.Pages)
	}

	area, err := c.FolderArea()
	if err != nil {
		return err
	}
	if g, _ := c.GridSize(); area.Width > g.Columns || area.Height > g.Rows {
		return errors.New(errors.ErrCodeInvalidConfig, "folder.area %s does not fit the %s grid", area, g)
	}
	if c.Folder.OpenRows <= 0 || c.Folder.OpenColumns <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "folder.open_rows and folder.open_columns must be positive")
	}

	switch c.Store.Driver {
	case store.DriverSQLite, store.DriverMemory:
	case store.DriverMongo:
		if c.Store.MongoURI == "" || c.Store.MongoDatabase == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "store.mongo_uri and store.mongo_database are required for the mongo driver")
		}
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unknown store.driver %q (want sqlite, mongo or memory)", c.Store.Driver)
	}

	if c.Cache.MemoryEntries < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "cache.memory_entries cannot be negative")
	}
	if _, err := c.CacheTTL(); err != nil {
		return err
	}
	if c.Server.Addr == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "server.addr cannot be empty")
	}
	return nil
}

// =============================================================================
// Derived values
// =============================================================================

// GridSize resolves the configured preset.
func (c *Config) GridSize() (Preset, error) {
	p, ok := c.Grid.Presets[c.Grid.Preset]
	if !ok {
		return Preset{}, errors.New(errors.ErrCodeInvalidConfig, "unknown grid preset %q (have %s)", c.Grid.Preset, strings.Join(c.PresetNames(), ", "))
	}
	return p, nil
}

// PresetNames returns the preset names in sorted order.
func (c *Config) PresetNames() []string {
	names := make([]string, 0, len(c.Grid.Presets))
	for n := range c.Grid.Presets {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// ParseGrid resolves a preset name or a "ROWSxCOLS" literal.
func (c *Config) ParseGrid(s string) (Preset, error) {
	if p, ok := c.Grid.Presets[s]; ok {
		return p, nil
	}
	r, col, ok := strings.Cut(strings.ToLower(strings.TrimSpace(s)), "x")
	if ok {
		rows, err1 := strconv.Atoi(r)
		cols, err2 := strconv.Atoi(col)
		if err1 == nil && err2 == nil && rows > 0 && cols > 0 {
			return Preset{Rows: rows, Columns: cols}, nil
		}
	}
	return Preset{}, errors.New(errors.ErrCodeInvalidInput, "grid %q is neither a preset (%s) nor ROWSxCOLS", s, strings.Join(c.PresetNames(), ", "))
}

// SetGrid makes p the configured grid and returns the preset name it is
// stored under. A preset with the same size is reused; otherwise p is
// added as a "ROWSxCOLS" preset.
func (c *Config) SetGrid(p Preset) string {
	if cur, ok := c.Grid.Presets[c.Grid.Preset]; ok && cur == p {
		return c.Grid.Preset
	}
	for _, name := range c.PresetNames() {
		if c.Grid.Presets[name] == p {
			c.Grid.Preset = name
			return name
		}
	}
	if c.Grid.Presets == nil {
		c.Grid.Presets = make(map[string]Preset)
	}
	name := p.String()
	c.Grid.Presets[name] = p
	c.Grid.Preset = name
	return name
}

// FolderArea returns the folder footprint.
func (c *Config) FolderArea() (layout.Area, error) {
	a := c.Folder.Area
	if len(a) != 2 || a[0] <= 0 || a[1] <= 0 {
		return layout.Area{}, errors.New(errors.ErrCodeInvalidConfig, "folder.area must be two positive numbers [width, height], got %v", a)
	}
	return layout.Area{Width: a[0], Height: a[1]}, nil
}

// CacheTTL parses cache.ttl. An empty value means no expiry.
func (c *Config) CacheTTL() (time.Duration, error) {
	if c.Cache.TTL == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Cache.TTL)
	if err != nil || d < 0 {
		return 0, errors.New(errors.ErrCodeInvalidConfig, "cache.ttl %q is not a valid duration", c.Cache.TTL)
	}
	return d, nil
}

// StoreOptions maps the store section to store.Options. An empty sqlite
// path resolves to layout.db under the data directory.
func (c *Config) StoreOptions() (store.Options, error) {
	opts := store.Options{
		Driver:        c.Store.Driver,
		Path:          c.Store.Path,
		MongoURI:      c.Store.MongoURI,
		MongoDatabase: c.Store.MongoDatabase,
	}
	if opts.Driver == store.DriverSQLite && opts.Path == "" {
		dir, err := DataDir()
		if err != nil {
			return opts, fmt.Errorf("resolve data dir: %w", err)
		}
		opts.Path = filepath.Join(dir, "layout.db")
	}
	return opts, nil
}

// LabelKeyer returns the label keyer for cache.scope.
func (c *Config) LabelKeyer() cache.Keyer {
	if c.Cache.Scope == "" {
		return cache.NewDefaultKeyer()
	}
	return cache.NewScopedKeyer(nil, c.Cache.Scope+":")
}

// CacheDir returns cache.dir or the XDG cache directory.
func (c *Config) CacheDir() (string, error) {
	if c.Cache.Dir != "" {
		return c.Cache.Dir, nil
	}
	return CacheDir()
}
