package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// KV is the key-value persistence contract every store writes through.
// Get reports ok=false when the key is absent.
type KV interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// Backend is a KV with a lifecycle.
type Backend interface {
	KV
	Ready(ctx context.Context) error
	Close() error
}

// OpenKV opens the backend named by databaseURL: sqlite:, postgres://, redis:// or memory:.
func OpenKV(ctx context.Context, databaseURL string, logger *slog.Logger) (Backend, error) {
	u, err := url.Parse(strings.TrimSpace(databaseURL))
	if err != nil {
		return nil, fmt.Errorf("parse DATABASE_URL: %w", err)
	}
	switch strings.ToLower(u.Scheme) {
	case "memory":
		return NewMemory(), nil
	case "redis", "rediss":
		return OpenRedis(ctx, databaseURL, logger)
	default:
		return Open(ctx, databaseURL, logger)
	}
}

// Store is the SQL-backed KV.
type Store struct {
	db     *sql.DB
	driver string
	logger *slog.Logger
	now    func() time.Time
}

func Open(ctx context.Context, databaseURL string, logger *slog.Logger) (*Store, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	u, err := url.Parse(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse DATABASE_URL: %w", err)
	}

	driverName, dsn, err := driverAndDSN(u, databaseURL)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, err
	}

	if logger == nil {
		logger = slog.Default()
	}
	store := &Store{
		db:     db,
		driver: driverName,
		logger: logger.With("component", "storage"),
		now:    time.Now,
	}

	if driverName == "sqlite" {
		// An in-memory database lives and dies with its connection.
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := store.applyConnectionTuning(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := store.Ready(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(pingCtx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	if err := applyMigrations(pingCtx, db, driverName); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply migrations: %w", err)
	}

	return store, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) Ready(ctx context.Context) error {
	if s == nil || s.db == nil {
		return ErrNotInitialized
	}
	if err := s.db.PingContext(ctx); err != nil {
		return err
	}
	var one int
	if err := s.db.QueryRowContext(ctx, "SELECT 1").Scan(&one); err != nil {
		return err
	}
	if one != 1 {
		return fmt.Errorf("unexpected SELECT 1 result: %d", one)
	}
	return nil
}

func (s *Store) applyConnectionTuning(ctx context.Context) error {
	if s.driver != "sqlite" {
		return nil
	}
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()
	if _, err := conn.ExecContext(ctx, "PRAGMA journal_mode = WAL;"); err != nil {
		return err
	}
	return nil
}

func driverAndDSN(u *url.URL, raw string) (driver string, dsn string, _ error) {
	switch strings.ToLower(u.Scheme) {
	case "sqlite":
		dsn, err := sqliteDSN(u, raw)
		if err != nil {
			return "", "", err
		}
		return "sqlite", dsn, nil
	case "postgres", "postgresql":
		return "pgx", raw, nil
	default:
		return "", "", fmt.Errorf("unsupported DATABASE_URL scheme %q (expected sqlite:, postgres:// or redis://)", u.Scheme)
	}
}

func sqliteDSN(u *url.URL, raw string) (string, error) {
	// sqlite:///absolute/path.db, sqlite:relative/path.db or sqlite::memory:
	switch {
	case u.Opaque != "":
		return u.Opaque, nil
	case u.Path != "":
		return u.Path, nil
	default:
		return "", fmt.Errorf("invalid sqlite DATABASE_URL %q", raw)
	}
}

func RedactedDatabaseURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "<invalid>"
	}

	switch strings.ToLower(u.Scheme) {
	case "sqlite":
		if u.Opaque != "" {
			return "sqlite:" + u.Opaque
		}
		return "sqlite://" + u.Path
	case "postgres", "postgresql", "redis", "rediss":
		redacted := *u
		if redacted.User != nil {
			if _, hasPassword := redacted.User.Password(); hasPassword {
				redacted.User = url.UserPassword(redacted.User.Username(), "***")
			}
		}
		return redacted.String()
	default:
		return "<unknown>"
	}
}

func isMissing(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
