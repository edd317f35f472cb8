package migrations

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

func TestUp_FreshDatabase(t *testing.T) {
	db := openTestDB(t)
	defer db.Close()

	if err := Up(db); err != nil {
		t.Fatalf("Up() failed: %v", err)
	}

	// Verify tables were created
	tables := []string{"on_disk", "on_camera", "runs", "schema_migrations"}
	for _, table := range tables {
		var name string
		err := db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		if err != nil {
			t.Errorf("Table %s was not created: %v", table, err)
		}
	}
}

func TestCheckStatus_FreshDatabase(t *testing.T) {
	db := openTestDB(t)
	defer db.Close()

	// Fresh database should need migration
	err := CheckStatus(db)
	if err == nil {
		t.Error("CheckStatus() expected error for fresh database, got nil")
	}

	if err.Error() != "database has no schema version (needs migration)" {
		t.Errorf("CheckStatus() error = %q, want error about needing migration", err.Error())
	}
}

func TestCheckStatus_AfterMigration(t *testing.T) {
	db := openTestDB(t)
	defer db.Close()

	if err := Up(db); err != nil {
		t.Fatalf("Up() failed: %v", err)
	}

	if err := CheckStatus(db); err != nil {
		t.Errorf("CheckStatus() after migration returned error: %v", err)
	}
}

func TestUp_Idempotent(t *testing.T) {
	db := openTestDB(t)
	defer db.Close()

	if err := Up(db); err != nil {
		t.Fatalf("First Up() failed: %v", err)
	}

	if err := Up(db); err != nil {
		t.Errorf("Second Up() failed: %v (should be idempotent)", err)
	}

	if err := CheckStatus(db); err != nil {
		t.Errorf("CheckStatus() after double migration returned error: %v", err)
	}
}

func TestSchema_PathUnique(t *testing.T) {
	db := openTestDB(t)
	defer db.Close()

	if err := Up(db); err != nil {
		t.Fatalf("Up() failed: %v", err)
	}

	for _, table := range []string{"on_disk", "on_camera"} {
		_, err := db.Exec("INSERT INTO " + table + " (name, path, size) VALUES ('a.CR2', '/cam/a.CR2', 42)")
		if err != nil {
			t.Fatalf("Failed to insert first %s row: %v", table, err)
		}

		// Duplicate path should fail due to the unique index.
		_, err = db.Exec("INSERT INTO " + table + " (name, path, size) VALUES ('b.CR2', '/cam/a.CR2', 43)")
		if err == nil {
			t.Errorf("Expected unique constraint violation for duplicate path in %s, but insert succeeded", table)
		}
	}
}

func TestSchema_ContentIdentityColumns(t *testing.T) {
	db := openTestDB(t)
	defer db.Close()

	if err := Up(db); err != nil {
		t.Fatalf("Up() failed: %v", err)
	}

	// The second migration adds checksum and duration to both inventories.
	_, err := db.Exec(`
		INSERT INTO on_camera (name, path, size, date, checksum, duration)
		VALUES ('a.MOV', '/cam/a.MOV', 42, '2024-01-15 10:30:00', x'0102', 1500)
	`)
	if err != nil {
		t.Fatalf("Failed to insert row with content identity columns: %v", err)
	}

	var checksum []byte
	var duration int64
	err = db.QueryRow("SELECT checksum, duration FROM on_camera WHERE path = '/cam/a.MOV'").Scan(&checksum, &duration)
	if err != nil {
		t.Fatalf("Failed to read back content identity columns: %v", err)
	}
	if len(checksum) != 2 || checksum[0] != 0x01 || checksum[1] != 0x02 {
		t.Errorf("checksum = %x, want 0102", checksum)
	}
	if duration != 1500 {
		t.Errorf("duration = %d, want 1500", duration)
	}
}

// openTestDB opens an in-memory SQLite database for testing.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	return db
}
