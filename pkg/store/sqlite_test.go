package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/matzehuels/deskgrid/pkg/layout"
)

func tempSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "nested", "layout.db"), WithMkdirAll())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteRows(t *testing.T) {
	ctx := context.Background()
	s := tempSQLite(t)

	app := ToRow(layout.NewApp("com.example.mail", "MainAbility", "entry"))
	id, err := s.Insert(ctx, app)
	if err != nil {
		t.Fatal(err)
	}
	if id != 1 {
		t.Errorf("first id = %d, want 1", id)
	}

	member := ToRow(layout.NewApp("com.example.maps", "MainAbility", "entry"))
	member.Container = id
	if _, err := s.Insert(ctx, member); err != nil {
		t.Fatal(err)
	}

	top, err := s.QueryByContainer(ctx, layout.TopLevel)
	if err != nil {
		t.Fatal(err)
	}
	if len(top) != 1 || top[0].KeyName != app.KeyName || top[0].BundleName != "com.example.mail" {
		t.Errorf("top-level rows = %+v", top)
	}
	nested, err := s.QueryByContainer(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if len(nested) != 1 || nested[0].KeyName != member.KeyName {
		t.Errorf("nested rows = %+v", nested)
	}

	if err := s.DeleteAll(ctx); err != nil {
		t.Fatal(err)
	}
	top, _ = s.QueryByContainer(ctx, layout.TopLevel)
	if len(top) != 0 {
		t.Errorf("rows after DeleteAll = %d", len(top))
	}
	// The sequence restarts after DeleteAll.
	if id, _ := s.Insert(ctx, app); id != 1 {
		t.Errorf("id after reset = %d, want 1", id)
	}
}

func TestSQLiteDescriptor(t *testing.T) {
	ctx := context.Background()
	s := tempSQLite(t)

	if _, ok, err := s.LoadDescriptor(ctx); err != nil || ok {
		t.Fatalf("LoadDescriptor on empty db = %v, %v", ok, err)
	}
	for _, d := range []layout.Descriptor{{PageCount: 1, Rows: 5, Columns: 4}, {PageCount: 3, Rows: 4, Columns: 4}} {
		if err := s.SaveDescriptor(ctx, d); err != nil {
			t.Fatal(err)
		}
		got, ok, err := s.LoadDescriptor(ctx)
		if err != nil || !ok || got != d {
			t.Errorf("LoadDescriptor = %v %v %v, want %v", got, ok, err, d)
		}
	}
}

func TestSQLiteInTxRollback(t *testing.T) {
	ctx := context.Background()
	s := tempSQLite(t)
	row := ToRow(layout.NewApp("com.example.mail", "MainAbility", "entry"))

	err := s.InTx(ctx, func(rs RowStore) error {
		if _, err := rs.Insert(ctx, row); err != nil {
			return err
		}
		return context.Canceled
	})
	if err != context.Canceled {
		t.Fatalf("InTx error = %v", err)
	}
	rows, _ := s.QueryByContainer(ctx, layout.TopLevel)
	if len(rows) != 0 {
		t.Errorf("rolled back insert visible: %d rows", len(rows))
	}
}

func TestOpenDrivers(t *testing.T) {
	ctx := context.Background()
	rs, err := Open(ctx, Options{Driver: DriverMemory})
	if err != nil {
		t.Fatal(err)
	}
	rs.Close()

	rs, err = Open(ctx, Options{Driver: DriverSQLite, Path: filepath.Join(t.TempDir(), "a", "b.db")})
	if err != nil {
		t.Fatal(err)
	}
	rs.Close()

	if _, err := Open(ctx, Options{Driver: "oracle"}); err == nil {
		t.Error("unknown driver should fail")
	}
}
