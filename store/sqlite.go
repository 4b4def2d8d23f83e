package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/bbiangul/kgqa/graph"
)

// SQLite is a Store backed by a SQLite database file.
type SQLite struct {
	db     *sql.DB
	closed atomic.Bool
}

// NewSQLite opens (or creates) a SQLite database at the given path and
// applies the schema and any pending migrations.
func NewSQLite(dbPath string) (*SQLite, error) {
	if dbPath == "" {
		return nil, errors.New("store.NewSQLite: empty database path")
	}
	dir := filepath.Dir(dbPath)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=30000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	// Connection pool settings for SQLite.
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(30 * time.Minute)

	s := &SQLite{db: db}

	if err := s.Migrate(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *SQLite) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	return s.db.Close()
}

// DB returns the underlying *sql.DB for advanced queries.
func (s *SQLite) DB() *sql.DB {
	return s.db
}

func (s *SQLite) Put(ctx context.Context, rec *Record) error {
	if s.closed.Load() {
		return ErrClosed
	}
	if rec.ID == "" {
		return ErrInvalidID
	}
	snapshot, err := graph.Encode(rec.Graph)
	if err != nil {
		return fmt.Errorf("store.Put: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO graphs (id, description, created_at, text_count, nodes, edges, components, density, snapshot)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			description = excluded.description,
			created_at = excluded.created_at,
			text_count = excluded.text_count,
			nodes = excluded.nodes,
			edges = excluded.edges,
			components = excluded.components,
			density = excluded.density,
			snapshot = excluded.snapshot`,
		rec.ID, rec.Description, rec.CreatedAt.UTC().Format(time.RFC3339Nano), rec.TextCount,
		rec.Stats.Nodes, rec.Stats.Edges, rec.Stats.ConnectedComponents, rec.Stats.Density,
		snapshot)
	if err != nil {
		return fmt.Errorf("store.Put: %w", err)
	}
	return nil
}

func (s *SQLite) Get(ctx context.Context, id string) (*Record, error) {
	if s.closed.Load() {
		return nil, ErrClosed
	}
	row := s.db.QueryRowContext(ctx, `
		SELECT id, description, created_at, text_count, nodes, edges, components, density, snapshot
		FROM graphs WHERE id = ?`, id)

	var snapshot []byte
	rec, err := scanRecord(row, &snapshot)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store.Get: %w", err)
	}
	if rec.Graph, err = graph.Decode(snapshot); err != nil {
		return nil, fmt.Errorf("store.Get: %w", err)
	}
	return rec, nil
}

func (s *SQLite) Delete(ctx context.Context, id string) error {
	if s.closed.Load() {
		return ErrClosed
	}
	res, err := s.db.ExecContext(ctx, "DELETE FROM graphs WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("store.Delete: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("store.Delete: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLite) List(ctx context.Context) ([]Record, error) {
	if s.closed.Load() {
		return nil, ErrClosed
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, description, created_at, text_count, nodes, edges, components, density
		FROM graphs ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("store.List: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		rec, err := scanRecord(rows, nil)
		if err != nil {
			return nil, fmt.Errorf("store.List: %w", err)
		}
		out = append(out, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store.List: %w", err)
	}
	// RFC 3339 with trimmed fractions does not sort lexically.
	sortRecords(out)
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

// scanRecord reads one graphs row. The snapshot column is read only when
// snapshot is non-nil.
func scanRecord(sc scanner, snapshot *[]byte) (*Record, error) {
	var (
		rec     Record
		created string
	)
	dest := []any{
		&rec.ID, &rec.Description, &created, &rec.TextCount,
		&rec.Stats.Nodes, &rec.Stats.Edges, &rec.Stats.ConnectedComponents, &rec.Stats.Density,
	}
	if snapshot != nil {
		dest = append(dest, snapshot)
	}
	if err := sc.Scan(dest...); err != nil {
		return nil, err
	}
	t, err := time.Parse(time.RFC3339Nano, created)
	if err != nil {
		return nil, fmt.Errorf("parsing created_at %q: %w", created, err)
	}
	rec.CreatedAt = t
	return &rec, nil
}
