package migrations

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/Simplici0/scanquote/internal/db"
)

func TestUp_CreatesSchemaAndIsRepeatable(t *testing.T) {
	ctx := context.Background()
	database, err := db.Open(ctx, filepath.Join(t.TempDir(), "migrate.db"))
	if err != nil {
		t.Fatalf("open sqlite database: %v", err)
	}
	defer database.Close()

	for i := 0; i < 2; i++ {
		if err := Up(ctx, database); err != nil {
			t.Fatalf("run migrations (pass %d): %v", i, err)
		}
	}

	v, err := Version(ctx, database)
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if v != 1 {
		t.Fatalf("version=%d, want 1", v)
	}

	for _, table := range []string{"users", "leads", "quotes"} {
		var n int
		if err := database.QueryRowContext(ctx, `SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&n); err != nil {
			t.Fatalf("lookup %s: %v", table, err)
		}
		if n != 1 {
			t.Fatalf("table %s missing", table)
		}
	}
}
