package sqlite

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"testing"

	"github.com/ericfisherdev/routergate/internal/adapter/driven/credcipher"
)

// setupTestDB creates a named shared in-memory SQLite database for testing.
// Writer and reader share it via cache=shared; the name derived from
// t.Name() keeps parallel tests isolated.
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	// Percent-encode so the test name cannot be read as DSN query parameters.
	safeName := url.PathEscape(t.Name())
	// WAL mode does not apply to in-memory databases.
	dsn := fmt.Sprintf(
		"file:%s?mode=memory&cache=shared&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)&_pragma=foreign_keys(ON)&_pragma=cache_size(-64000)",
		safeName,
	)

	db, err := open(context.Background(), dsn, dsn)
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}

	if _, err := RunMigrations(db.Writer); err != nil {
		_ = db.Close()
		t.Fatalf("run migrations: %v", err)
	}

	t.Cleanup(func() { _ = db.Close() })

	return db
}

func testCipher(t *testing.T) *credcipher.Cipher {
	t.Helper()
	c, err := credcipher.New("sqlite-test-key", slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("create cipher: %v", err)
	}
	return c
}
