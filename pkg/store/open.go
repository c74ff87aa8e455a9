package store

import (
	"context"
	"fmt"
)

// Driver names accepted by Open.
const (
	DriverSQLite = "sqlite"
	DriverMongo  = "mongo"
	DriverMemory = "memory"
)

// Options selects and configures a backend.
type Options struct {
	Driver        string
	Path          string // sqlite database file
	MongoURI      string
	MongoDatabase string
}

// Open returns the RowStore for opts.Driver.
func Open(ctx context.Context, opts Options) (RowStore, error) {
	switch opts.Driver {
	case DriverSQLite, "":
		return OpenSQLite(opts.Path, WithMkdirAll())
	case DriverMongo:
		return OpenMongo(ctx, opts.MongoURI, opts.MongoDatabase)
	case DriverMemory:
		return NewMemoryStore(), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, opts.Driver)
}
