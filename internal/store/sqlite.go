// Package store is a local api.Backend over a single sqlite file.
//
// Entities are stored as JSON rows keyed by (kind, key) with a numeric id and
// a parent id for scoped listing. The backend enforces the same business
// rules as the server so the admin panel can run offline against it.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

const schemaVersion = "1"

// Entity kinds.
const (
	kindUser      = "user"
	kindProject   = "project"
	kindMember    = "member"
	kindCard      = "card"
	kindWorkflow  = "workflow"
	kindRule      = "rule"
	kindTemplate  = "template"
	kindInvite    = "invite"
	kindExecution = "execution"
)

type Backend struct {
	db      *sql.DB
	mu      sync.Mutex
	now     func() time.Time
	baseURL string
}

type Option func(*Backend)

// WithClock overrides the time source (tests).
func WithClock(now func() time.Time) Option {
	return func(b *Backend) { b.now = now }
}

// WithBaseURL sets the prefix of generated invite links.
func WithBaseURL(u string) Option {
	return func(b *Backend) { b.baseURL = strings.TrimRight(u, "/") }
}

// Open opens (creating if needed) the sqlite database at path.
func Open(ctx context.Context, path string, opts ...Option) (*Backend, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("empty database path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	// modernc.org/sqlite driver name is "sqlite".
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	if err := migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate %s: %w", path, err)
	}
	b := &Backend{
		db:      db,
		now:     func() time.Time { return time.Now().UTC() },
		baseURL: "http://localhost:8080",
	}
	for _, o := range opts {
		o(b)
	}
	return b, nil
}

func (b *Backend) Close() error { return b.db.Close() }

func migrate(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			k TEXT PRIMARY KEY,
			v TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS entities (
			kind TEXT NOT NULL,
			key TEXT NOT NULL,
			id INTEGER NOT NULL,
			parent INTEGER NOT NULL DEFAULT 0,
			body TEXT NOT NULL,
			updated_at_unixms INTEGER NOT NULL,
			PRIMARY KEY(kind, key)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_entities_parent ON entities(kind, parent, id);`,
	}
	for _, st := range stmts {
		if _, err := db.ExecContext(ctx, st); err != nil {
			return err
		}
	}
	_, err := db.ExecContext(ctx, `INSERT OR IGNORE INTO meta(k, v) VALUES('schema_version', ?)`, schemaVersion)
	return err
}

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (b *Backend) read(ctx context.Context, fn func(q querier) error) error {
	return fn(b.db)
}

// write runs fn in a transaction. Writers are serialized so read-check-write
// rules (last manager, duplicates) see a consistent view.
func (b *Backend) write(ctx context.Context, fn func(q querier) error) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	tx, err := b.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

func idKey(id int64) string { return strconv.FormatInt(id, 10) }

func scanBodies[T any](rows *sql.Rows) ([]T, error) {
	defer rows.Close()
	out := []T{}
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, err
		}
		var v T
		if err := json.Unmarshal([]byte(body), &v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func listAll[T any](ctx context.Context, q querier, kind string) ([]T, error) {
	rows, err := q.QueryContext(ctx, `SELECT body FROM entities WHERE kind = ? ORDER BY id`, kind)
	if err != nil {
		return nil, err
	}
	return scanBodies[T](rows)
}

func listByParent[T any](ctx context.Context, q querier, kind string, parent int64) ([]T, error) {
	rows, err := q.QueryContext(ctx, `SELECT body FROM entities WHERE kind = ? AND parent = ? ORDER BY id`, kind, parent)
	if err != nil {
		return nil, err
	}
	return scanBodies[T](rows)
}

// get loads one entity. A missing row is reported as a 404 ApiError.
func get[T any](ctx context.Context, q querier, kind, key string) (T, error) {
	var v T
	var body string
	err := q.QueryRowContext(ctx, `SELECT body FROM entities WHERE kind = ? AND key = ?`, kind, key).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return v, notFound(kind)
	}
	if err != nil {
		return v, err
	}
	err = json.Unmarshal([]byte(body), &v)
	return v, err
}

func exists(ctx context.Context, q querier, kind, key string) (bool, error) {
	var n int
	err := q.QueryRowContext(ctx, `SELECT COUNT(1) FROM entities WHERE kind = ? AND key = ?`, kind, key).Scan(&n)
	return n > 0, err
}

func (b *Backend) put(ctx context.Context, q querier, kind, key string, id, parent int64, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = q.ExecContext(ctx,
		`INSERT OR REPLACE INTO entities(kind, key, id, parent, body, updated_at_unixms) VALUES(?, ?, ?, ?, ?, ?)`,
		kind, key, id, parent, string(body), b.now().UnixMilli())
	return err
}

func remove(ctx context.Context, q querier, kind, key string) error {
	res, err := q.ExecContext(ctx, `DELETE FROM entities WHERE kind = ? AND key = ?`, kind, key)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return notFound(kind)
	}
	return nil
}

func removeByParent(ctx context.Context, q querier, kind string, parent int64) error {
	_, err := q.ExecContext(ctx, `DELETE FROM entities WHERE kind = ? AND parent = ?`, kind, parent)
	return err
}

// nextID allocates the next id of kind.
func nextID(ctx context.Context, q querier, kind string) (int64, error) {
	key := "seq:" + kind
	var v string
	err := q.QueryRowContext(ctx, `SELECT v FROM meta WHERE k = ?`, key).Scan(&v)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return 0, err
	}
	n, _ := strconv.ParseInt(v, 10, 64)
	n++
	if _, err := q.ExecContext(ctx, `INSERT OR REPLACE INTO meta(k, v) VALUES(?, ?)`, key, idKey(n)); err != nil {
		return 0, err
	}
	return n, nil
}

func metaGet(ctx context.Context, q querier, key string) (string, error) {
	var v string
	err := q.QueryRowContext(ctx, `SELECT v FROM meta WHERE k = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return v, err
}

func metaSet(ctx context.Context, q querier, key, v string) error {
	_, err := q.ExecContext(ctx, `INSERT OR REPLACE INTO meta(k, v) VALUES(?, ?)`, key, v)
	return err
}

// Org is the single organization a local database holds.
const orgID int64 = 1
