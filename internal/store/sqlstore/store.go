package sqlstore

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/lib/pq"           // Postgres driver
	"github.com/mattn/go-sqlite3" // SQLite driver
	"github.com/pressly/goose/v3"

	"github.com/nevroth/nevroth/internal/common"
	"github.com/nevroth/nevroth/internal/dbx"
)

//go:embed migrations/sqlite3/*.sql migrations/postgres/*.sql
var migrations embed.FS

type SQLStore struct {
	db         *sql.DB
	driverName string
}

// New opens the database, applies pending migrations and returns a ready
// store. driverName is "sqlite3" or "postgres".
func New(driverName, dataSourceName string) (*SQLStore, error) {
	db, err := sql.Open(driverName, dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}
	if driverName == "sqlite3" {
		// :memory: databases live per connection, and sqlite serializes
		// writers anyway.
		db.SetMaxOpenConns(1)
	}
	if err = db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}

	s := NewWithDB(db, driverName)
	if err := s.RunMigrations(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("migration error: %w", err)
	}
	return s, nil
}

// NewWithDB wraps an already opened database without migrating it.
func NewWithDB(db *sql.DB, driverName string) *SQLStore {
	return &SQLStore{db: db, driverName: driverName}
}

// gooseUp is a seam for testing goose.Provider.Up.
var gooseUp = func(ctx context.Context, p *goose.Provider) ([]*goose.MigrationResult, error) {
	return p.Up(ctx)
}

// RunMigrations applies the embedded migrations for the store's dialect.
// Each call builds its own provider, so stores of different dialects never
// share goose state.
func (s *SQLStore) RunMigrations(ctx context.Context) error {
	var dialect goose.Dialect
	switch s.driverName {
	case "sqlite3":
		dialect = goose.DialectSQLite3
	case "postgres":
		dialect = goose.DialectPostgres
	default:
		return fmt.Errorf("unsupported database driver %q", s.driverName)
	}

	fsys, err := fs.Sub(migrations, "migrations/"+s.driverName)
	if err != nil {
		return err
	}
	provider, err := goose.NewProvider(dialect, s.db, fsys)
	if err != nil {
		return fmt.Errorf("goose provider: %w", err)
	}
	_, err = gooseUp(ctx, provider)
	return err
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}

// Ping reports whether the database is reachable.
func (s *SQLStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Helper to handle placeholders
func (s *SQLStore) rebind(query string) string {
	if s.driverName == "postgres" {
		// Replace ? with $1, $2, etc.
		n := strings.Count(query, "?")
		for i := 1; i <= n; i++ {
			query = strings.Replace(query, "?", fmt.Sprintf("$%d", i), 1)
		}
	}
	return query
}

func (s *SQLStore) withTx(ctx context.Context, fn func(ctx context.Context, tx dbx.DBTX) error) error {
	return dbx.WithTx(ctx, s.db, nil, fn)
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func int64Args(ids []int64) []any {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return args
}

// dbError maps driver errors onto the common sentinels.
func dbError(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return common.ErrorNotFound
	}
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: %v", common.ErrorAlreadyExists, err)
	}
	return fmt.Errorf("db error: %w", err)
}

func isUniqueViolation(err error) bool {
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			liteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	var pgErr *pq.Error
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
