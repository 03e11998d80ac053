package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
)

// ErrNotFound is returned when no task matches the requested id.
var ErrNotFound = errors.New("task not found")

// Options describes how to reach the database.
type Options struct {
	URL      string
	User     string
	Password string
}

// Store wraps access to the SQL database holding todo_table.
type Store struct {
	db      *sql.DB
	dialect dialect
	logger  *slog.Logger
}

type dialect struct {
	name   string
	driver string
	schema string
	rebind func(query string) string
}

var (
	sqliteDialect = dialect{
		name:   "sqlite",
		driver: "sqlite3",
		schema: `CREATE TABLE IF NOT EXISTS todo_table (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            created_at TIMESTAMP NULL,
            is_done BOOLEAN NULL,
            task TEXT NOT NULL
        );`,
		rebind: func(query string) string { return query },
	}
	postgresDialect = dialect{
		name:   "postgres",
		driver: "pgx",
		schema: `CREATE TABLE IF NOT EXISTS todo_table (
            id BIGSERIAL PRIMARY KEY,
            created_at TIMESTAMP NULL,
            is_done BOOLEAN NULL,
            task VARCHAR NOT NULL
        );`,
		rebind: dollarPlaceholders,
	}
)

// Open connects to the database named by opts.URL and makes sure todo_table exists.
//
// URLs starting with postgres:// or postgresql:// use PostgreSQL. Anything
// else is treated as a SQLite database: sqlite://<path>, file:<path> or a
// plain path.
func Open(ctx context.Context, opts Options, logger *slog.Logger) (*Store, error) {
	if strings.TrimSpace(opts.URL) == "" {
		return nil, fmt.Errorf("empty database url")
	}
	if logger == nil {
		logger = slog.Default()
	}

	d, dsn, err := resolve(opts)
	if err != nil {
		return nil, err
	}

	conn, err := sql.Open(d.driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", d.name, err)
	}

	if d.name == sqliteDialect.name {
		if opts.User != "" || opts.Password != "" {
			logger.Warn("sqlite ignores database credentials")
		}
		conn.SetMaxOpenConns(1)
		conn.SetConnMaxLifetime(0)
	}

	s := &Store{db: conn, dialect: d, logger: logger}
	if err := s.Ping(ctx); err != nil {
		_ = conn.Close()
		return nil, err
	}
	if err := s.ensureSchema(ctx); err != nil {
		_ = conn.Close()
		return nil, err
	}

	logger.Info("database ready", slog.String("dialect", d.name))
	return s, nil
}

// Close releases the database resources.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Ping checks that the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping %s: %w", s.dialect.name, err)
	}
	return nil
}

// Dialect names the SQL flavour behind the store.
func (s *Store) Dialect() string {
	return s.dialect.name
}

func (s *Store) ensureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, s.dialect.schema); err != nil {
		return fmt.Errorf("create todo_table: %w", err)
	}
	return nil
}

func resolve(opts Options) (dialect, string, error) {
	raw := strings.TrimSpace(opts.URL)

	switch {
	case strings.HasPrefix(raw, "postgres://"), strings.HasPrefix(raw, "postgresql://"):
		dsn, err := postgresDSN(raw, opts.User, opts.Password)
		if err != nil {
			return dialect{}, "", err
		}
		return postgresDialect, dsn, nil
	case strings.HasPrefix(raw, "sqlite://"):
		return sqliteFile(strings.TrimPrefix(raw, "sqlite://"))
	case strings.HasPrefix(raw, "file:"):
		return sqliteFile(strings.TrimPrefix(raw, "file:"))
	case strings.Contains(raw, "://"):
		return dialect{}, "", fmt.Errorf("unsupported database url scheme in %q", redact(raw))
	default:
		return sqliteFile(raw)
	}
}

func sqliteFile(path string) (dialect, string, error) {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	if path == "" {
		return dialect{}, "", fmt.Errorf("empty sqlite path")
	}
	if err := ensureDir(path); err != nil {
		return dialect{}, "", err
	}
	return sqliteDialect, fmt.Sprintf("file:%s?_busy_timeout=5000", path), nil
}

func ensureDir(dbPath string) error {
	dir := filepath.Dir(dbPath)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

// postgresDSN injects the configured credentials unless the URL carries its own.
func postgresDSN(raw, user, password string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parse database url: %w", err)
	}
	if u.User == nil && user != "" {
		if password != "" {
			u.User = url.UserPassword(user, password)
		} else {
			u.User = url.User(user)
		}
	}
	return u.String(), nil
}

func redact(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "<invalid>"
	}
	return u.Redacted()
}

// dollarPlaceholders rewrites ? placeholders to PostgreSQL's $1, $2, ...
func dollarPlaceholders(query string) string {
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
