package store

import (
	"context"

	"github.com/matzehuels/deskgrid/pkg/layout"
)

// InvalidID is returned by [RowStore.Insert] when no row was written.
const InvalidID int64 = -1

// Row is one flattened layout item as stored. Container is
// [layout.TopLevel] for grid items and the parent folder's ID for members.
type Row struct {
	ID          int64  `json:"id" bson:"_id"`
	Container   int64  `json:"container" bson:"container"`
	TypeID      int    `json:"type_id" bson:"type_id"`
	Area        string `json:"area" bson:"area"`
	Page        int    `json:"page" bson:"page"`
	GridRow     int    `json:"row" bson:"row"`
	GridColumn  int    `json:"column" bson:"column"`
	BundleName  string `json:"bundle_name,omitempty" bson:"bundle_name,omitempty"`
	AbilityName string `json:"ability_name,omitempty" bson:"ability_name,omitempty"`
	ModuleName  string `json:"module_name,omitempty" bson:"module_name,omitempty"`
	KeyName     string `json:"key_name" bson:"key_name"`
	CardID      int64  `json:"card_id,omitempty" bson:"card_id,omitempty"`
	Dimension   int    `json:"dimension,omitempty" bson:"dimension,omitempty"`
	FolderID    string `json:"folder_id,omitempty" bson:"folder_id,omitempty"`
	FolderName  string `json:"folder_name,omitempty" bson:"folder_name,omitempty"`
	BadgeNumber int    `json:"badge_number" bson:"badge_number"`
}

// RowStore is a row-oriented durable store for one layout table plus its
// single-row descriptor.
//
// Implementations need not be safe for concurrent use; the [Synchronizer]
// is the only writer.
type RowStore interface {
	// DeleteAll removes every layout row.
	DeleteAll(ctx context.Context) error

	// Insert writes r, ignoring r.ID, and returns the assigned id.
	// On failure it returns InvalidID and an error.
	Insert(ctx context.Context, r Row) (int64, error)

	// QueryByContainer returns the rows with the given container in
	// insertion order.
	QueryByContainer(ctx context.Context, container int64) ([]Row, error)

	// SaveDescriptor replaces the stored grid descriptor.
	SaveDescriptor(ctx context.Context, d layout.Descriptor) error

	// LoadDescriptor returns the stored descriptor. ok is false when none
	// was ever saved.
	LoadDescriptor(ctx context.Context) (d layout.Descriptor, ok bool, err error)

	// Close releases the underlying connection.
	Close() error
}

// Transactor is implemented by stores that can apply a full rewrite
// atomically. fn receives a RowStore bound to the transaction; it is
// committed when fn returns nil.
type Transactor interface {
	InTx(ctx context.Context, fn func(RowStore) error) error
}
