package db

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/qiangli/dataworks/internal/api"
)

func newTicketDB(t *testing.T) *DataStore {
	t.Helper()
	return newTicketDBAt(t, filepath.Join(t.TempDir(), "ticket-sales.db"))
}

func newTicketDBAt(t *testing.T, dbPath string) *DataStore {
	t.Helper()
	ds, err := NewDB(dbPath)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { ds.Close() })

	ctx := context.Background()
	ddl := `CREATE TABLE tickets (type TEXT, units INTEGER, price REAL)`
	if _, err := ds.Execute(ctx, ddl); err != nil {
		t.Fatal(err)
	}
	insert := `INSERT INTO tickets(type, units, price) VALUES (?, ?, ?)`
	for _, row := range []struct {
		typ   string
		units int
		price float64
	}{
		{"Gold", 2, 10.5},
		{"Silver", 5, 3},
		{"Gold", 1, 4},
	} {
		if _, err := ds.Execute(ctx, insert, row.typ, row.units, row.price); err != nil {
			t.Fatal(err)
		}
	}
	return ds
}

func TestScalar(t *testing.T) {
	ds := newTicketDB(t)
	ctx := context.Background()

	v, err := ds.Scalar(ctx, "SELECT SUM(units * price) FROM tickets WHERE type = 'Gold'")
	if err != nil {
		t.Fatal(err)
	}
	if v != float64(25) {
		t.Errorf("got %v (%T)", v, v)
	}

	v, err = ds.Scalar(ctx, "SELECT SUM(units * price) FROM tickets WHERE type = 'Bronze'")
	if err != nil {
		t.Fatal(err)
	}
	if v != nil {
		t.Errorf("expected nil for empty sum, got %v", v)
	}
}

func TestQuery(t *testing.T) {
	ds := newTicketDB(t)

	rows, err := ds.Query(context.Background(), "SELECT type, SUM(units) AS units FROM tickets GROUP BY type ORDER BY type")
	if err != nil {
		t.Fatal(err)
	}
	if len(rows.Columns) != 2 || rows.Columns[0] != "type" || rows.Columns[1] != "units" {
		t.Errorf("columns: %v", rows.Columns)
	}
	if len(rows.Rows) != 2 {
		t.Fatalf("rows: %v", rows.Rows)
	}
	if rows.Rows[0]["type"] != "Gold" || rows.Rows[0]["units"] != int64(3) {
		t.Errorf("first row: %v", rows.Rows[0])
	}
}

func TestQueryReadOnly(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "ticket-sales.db")
	rw := newTicketDBAt(t, dbPath)
	ctx := context.Background()

	ro, err := OpenReadOnly(dbPath)
	if err != nil {
		t.Fatal(err)
	}
	defer ro.Close()

	rows, err := ro.QueryReadOnly(ctx, "SELECT type FROM tickets ORDER BY type")
	if err != nil {
		t.Fatal(err)
	}
	if len(rows.Rows) != 3 {
		t.Errorf("rows: %v", rows.Rows)
	}

	// mysql reads \' as an escaped quote, sqlite ends the string there
	smuggled := `SELECT 'a\'; DELETE FROM tickets; --'`
	if err := CheckReadOnly(smuggled); err != nil {
		t.Logf("guard rejected: %v", err)
	}
	if _, err := ro.QueryReadOnly(ctx, smuggled); err == nil {
		t.Error("expected the delete to fail on a read-only connection")
	}
	if _, err := ro.QueryReadOnly(ctx, "UPDATE tickets SET units = 0"); err == nil {
		t.Error("expected update to fail on a read-only connection")
	}

	if n, _ := rw.Scalar(ctx, "SELECT COUNT(*) FROM tickets"); n != int64(3) {
		t.Errorf("tickets changed: %v", n)
	}
}

func TestOpenReadOnlyMissing(t *testing.T) {
	p := filepath.Join(t.TempDir(), "missing.db")
	ro, err := OpenReadOnly(p)
	if err == nil {
		_, err = ro.QueryReadOnly(context.Background(), "SELECT 1")
		ro.Close()
	}
	if err == nil {
		t.Error("expected error for a missing database")
	}
	if _, statErr := os.Stat(p); !os.IsNotExist(statErr) {
		t.Errorf("read-only open created %s", p)
	}
}

func TestParseDSN(t *testing.T) {
	tests := []struct {
		dsn    string
		driver string
		source string
	}{
		{"/data/ticket-sales.db", "sqlite", "/data/ticket-sales.db"},
		{"mysql://root@tcp(localhost:3306)/mydb", "mysql", "root@tcp(localhost:3306)/mydb"},
		{"postgres://u:p@localhost/db?sslmode=disable", "postgres", "postgres://u:p@localhost/db?sslmode=disable"},
	}
	for _, tt := range tests {
		driver, source := ParseDSN(tt.dsn)
		if driver != tt.driver || source != tt.source {
			t.Errorf("ParseDSN(%q) = %q, %q", tt.dsn, driver, source)
		}
	}
}

func TestCheckReadOnly(t *testing.T) {
	tests := []struct {
		query string
		kind  api.Kind
	}{
		{"SELECT SUM(units * price) FROM tickets WHERE type = 'Gold'", ""},
		{"select a from t union select b from u", ""},
		{"DELETE FROM tickets", api.KindAccessDenied},
		{"DROP TABLE tickets", api.KindAccessDenied},
		{"UPDATE tickets SET units = 0", api.KindAccessDenied},
		{"not sql at all", api.KindBadRequest},
	}
	for _, tt := range tests {
		err := CheckReadOnly(tt.query)
		if tt.kind == "" {
			if err != nil {
				t.Errorf("%q: unexpected error %v", tt.query, err)
			}
			continue
		}
		if !api.IsKind(err, tt.kind) {
			t.Errorf("%q: expected %s, got %v", tt.query, tt.kind, err)
		}
	}
}
