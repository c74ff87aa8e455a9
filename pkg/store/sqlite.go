package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/matzehuels/deskgrid/pkg/errors"
	"github.com/matzehuels/deskgrid/pkg/layout"
)

// Schema creates the layout table and the single-row descriptor table.
const Schema = `
CREATE TABLE IF NOT EXISTS layout_info (
    id           INTEGER PRIMARY KEY AUTOINCREMENT,
    container    INTEGER NOT NULL DEFAULT -100,
    type_id      INTEGER NOT NULL,
    area         TEXT    NOT NULL DEFAULT '1,1',
    page         INTEGER NOT NULL DEFAULT 0,
    grid_row     INTEGER NOT NULL DEFAULT 0,
    grid_column  INTEGER NOT NULL DEFAULT 0,
    bundle_name  TEXT,
    ability_name TEXT,
    module_name  TEXT,
    key_name     TEXT    NOT NULL,
    card_id      INTEGER,
    dimension    INTEGER,
    folder_id    TEXT,
    folder_name  TEXT,
    badge_number INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_layout_info_container ON layout_info(container);

CREATE TABLE IF NOT EXISTS layout_description (
    id           INTEGER PRIMARY KEY CHECK (id = 1),
    page_count   INTEGER NOT NULL,
    row_count    INTEGER NOT NULL,
    column_count INTEGER NOT NULL
);
`

const rowColumns = `id, container, type_id, area, page, grid_row, grid_column,
    bundle_name, ability_name, module_name, key_name, card_id, dimension,
    folder_id, folder_name, badge_number`

type sqliteConfig struct {
	busyTimeout int
	synchronous string
	mkdirAll    bool
}

// SQLiteOption customises OpenSQLite.
type SQLiteOption func(*sqliteConfig)

// WithBusyTimeout sets PRAGMA busy_timeout in milliseconds. Default: 10000.
func WithBusyTimeout(ms int) SQLiteOption { return func(c *sqliteConfig) { c.busyTimeout = ms } }

// WithSynchronous sets PRAGMA synchronous. Default: "NORMAL".
func WithSynchronous(mode string) SQLiteOption {
	return func(c *sqliteConfig) { c.synchronous = mode }
}

// WithMkdirAll creates parent directories of the database path before opening.
func WithMkdirAll() SQLiteOption { return func(c *sqliteConfig) { c.mkdirAll = true } }

// SQLiteStore keeps the layout in an SQLite database.
type SQLiteStore struct {
	db *sql.DB
	q  querier
}

// querier is the part of *sql.DB and *sql.Tx the row methods need.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

var (
	_ RowStore   = (*SQLiteStore)(nil)
	_ Transactor = (*SQLiteStore)(nil)
)

// OpenSQLite opens (or creates) the database at path, applies the
// pragmas and creates the schema. path may be ":memory:".
func OpenSQLite(path string, opts ...SQLiteOption) (*SQLiteStore, error) {
	cfg := sqliteConfig{busyTimeout: 10_000, synchronous: "NORMAL"}
	for _, o := range opts {
		o(&cfg)
	}
	if err := errors.ValidatePath(path); err != nil {
		return nil, err
	}

	if cfg.mkdirAll && path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("store: mkdir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open: %w", err)
	}
	// One connection keeps ":memory:" databases shared and serializes writers.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		fmt.Sprintf("PRAGMA busy_timeout = %d", cfg.busyTimeout),
		fmt.Sprintf("PRAGMA synchronous = %s", cfg.synchronous),
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("store: %s: %w", p, err)
		}
	}
	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: exec schema: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: ping: %w", err)
	}
	return &SQLiteStore{db: db, q: db}, nil
}

// DB returns the underlying *sql.DB.
func (s *SQLiteStore) DB() *sql.DB { return s.db }

// Close closes the database.
func (s *SQLiteStore) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// DeleteAll removes every layout row and resets the id sequence.
func (s *SQLiteStore) DeleteAll(ctx context.Context) error {
	if _, err := s.q.ExecContext(ctx, `DELETE FROM layout_info`); err != nil {
		return fmt.Errorf("delete layout rows: %w", err)
	}
	if _, err := s.q.ExecContext(ctx, `DELETE FROM sqlite_sequence WHERE name = 'layout_info'`); err != nil {
		return fmt.Errorf("reset layout sequence: %w", err)
	}
	return nil
}

// Insert writes one row and returns its id.
func (s *SQLiteStore) Insert(ctx context.Context, r Row) (int64, error) {
	res, err := s.q.ExecContext(ctx, `
		INSERT INTO layout_info (container, type_id, area, page, grid_row, grid_column,
			bundle_name, ability_name, module_name, key_name, card_id, dimension,
			folder_id, folder_name, badge_number)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.Container, r.TypeID, r.Area, r.Page, r.GridRow, r.GridColumn,
		nullString(r.BundleName), nullString(r.AbilityName), nullString(r.ModuleName), r.KeyName,
		nullInt(r.CardID), nullInt(int64(r.Dimension)),
		nullString(r.FolderID), nullString(r.FolderName), r.BadgeNumber,
	)
	if err != nil {
		return InvalidID, fmt.Errorf("insert %s: %w", r.KeyName, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return InvalidID, fmt.Errorf("insert %s: last id: %w", r.KeyName, err)
	}
	return id, nil
}

// QueryByContainer returns the rows of one container ordered by id.
func (s *SQLiteStore) QueryByContainer(ctx context.Context, container int64) ([]Row, error) {
	rows, err := s.q.QueryContext(ctx,
		`SELECT `+rowColumns+` FROM layout_info WHERE container = ? ORDER BY id`, container)
	if err != nil {
		return nil, fmt.Errorf("query container %d: %w", container, err)
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		var (
			r                                   Row
			bundle, ability, module, fid, fname sql.NullString
			cardID, dimension                   sql.NullInt64
		)
		if err := rows.Scan(&r.ID, &r.Container, &r.TypeID, &r.Area, &r.Page, &r.GridRow, &r.GridColumn,
			&bundle, &ability, &module, &r.KeyName, &cardID, &dimension,
			&fid, &fname, &r.BadgeNumber); err != nil {
			return nil, fmt.Errorf("scan layout row: %w", err)
		}
		r.BundleName, r.AbilityName, r.ModuleName = bundle.String, ability.String, module.String
		r.FolderID, r.FolderName = fid.String, fname.String
		r.CardID, r.Dimension = cardID.Int64, int(dimension.Int64)
		out = append(out, r)
	}
	return out, rows.Err()
}

// SaveDescriptor upserts the single descriptor row.
func (s *SQLiteStore) SaveDescriptor(ctx context.Context, d layout.Descriptor) error {
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO layout_description (id, page_count, row_count, column_count)
		VALUES (1, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			page_count = excluded.page_count,
			row_count = excluded.row_count,
			column_count = excluded.column_count`,
		d.PageCount, d.Rows, d.Columns)
	if err != nil {
		return fmt.Errorf("save descriptor: %w", err)
	}
	return nil
}

// LoadDescriptor reads the descriptor row.
func (s *SQLiteStore) LoadDescriptor(ctx context.Context) (layout.Descriptor, bool, error) {
	var d layout.Descriptor
	err := s.q.QueryRowContext(ctx,
		`SELECT page_count, row_count, column_count FROM layout_description WHERE id = 1`,
	).Scan(&d.PageCount, &d.Rows, &d.Columns)
	if err == sql.ErrNoRows {
		return layout.Descriptor{}, false, nil
	}
	if err != nil {
		return layout.Descriptor{}, false, fmt.Errorf("load descriptor: %w", err)
	}
	return d, true, nil
}

// InTx runs fn against a transaction-bound view of the store.
func (s *SQLiteStore) InTx(ctx context.Context, fn func(RowStore) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	if err := fn(&SQLiteStore{db: nil, q: tx}); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullInt(v int64) sql.NullInt64 {
	return sql.NullInt64{Int64: v, Valid: v != 0}
}
