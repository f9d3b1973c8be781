package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	// Pure-Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

// Store is the sole writer to the catalog database and the single
// connection-acquisition point used by the scanner, query engine, and
// coordinator. It holds exactly one open connection (SetMaxOpenConns(1))
// so writes serialize through the database rather than through
// application-level locking.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open opens the SQLite database at dbPath, runs migrations, and absorbs
// any legacy on-disk JSON files found alongside it. The directory
// containing dbPath is created if missing.
func Open(ctx context.Context, dbPath string, logger *slog.Logger) (*Store, error) {
	dsn := fmt.Sprintf(
		"file:%s?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"+
			"&_pragma=foreign_keys(ON)&_pragma=busy_timeout(5000)",
		dbPath,
	)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("catalog: opening database %s: %w", dbPath, err)
	}

	// Sole-writer pattern: only one connection is ever open, so SQLite's
	// single-writer constraint never surfaces as a busy error under normal
	// load; concurrent callers simply queue for the one connection.
	db.SetMaxOpenConns(1)

	if err := runMigrations(ctx, db, logger); err != nil {
		db.Close()
		return nil, err
	}

	store := &Store{db: db, logger: logger}

	if err := store.absorbLegacyJSON(dbPath); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("catalog store opened", slog.String("db_path", dbPath))

	return store, nil
}

// Close releases the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for packages that need direct access
// (the scanner's batched transactions, the query engine's read statements).
func (s *Store) DB() *sql.DB {
	return s.db
}
