package store

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Record is one line of a portable backup: an entity row or, when Kind is
// empty, a meta key (sequences, session user).
type Record struct {
	Kind      string          `json:"kind,omitempty"`
	Key       string          `json:"key"`
	ID        int64           `json:"id,omitempty"`
	Parent    int64           `json:"parent,omitempty"`
	Body      json.RawMessage `json:"body,omitempty"`
	Value     string          `json:"value,omitempty"`
	UpdatedAt int64           `json:"updatedAtUnixMs,omitempty"`
}

// Export returns every meta key followed by every entity row, in a stable order.
func (b *Backend) Export(ctx context.Context) ([]Record, error) {
	var out []Record
	err := b.read(ctx, func(q querier) error {
		rows, err := q.QueryContext(ctx, `SELECT k, v FROM meta ORDER BY k`)
		if err != nil {
			return err
		}
		for rows.Next() {
			var r Record
			if err := rows.Scan(&r.Key, &r.Value); err != nil {
				rows.Close()
				return err
			}
			out = append(out, r)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return err
		}

		rows, err = q.QueryContext(ctx, `SELECT kind, key, id, parent, body, updated_at_unixms FROM entities ORDER BY kind, id, key`)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var (
				r    Record
				body string
			)
			if err := rows.Scan(&r.Kind, &r.Key, &r.ID, &r.Parent, &body, &r.UpdatedAt); err != nil {
				return err
			}
			r.Body = json.RawMessage(body)
			out = append(out, r)
		}
		return rows.Err()
	})
	return out, err
}

// Replace swaps the whole database content for recs in one transaction.
func (b *Backend) Replace(ctx context.Context, recs []Record) error {
	for i, r := range recs {
		if strings.TrimSpace(r.Key) == "" {
			return fmt.Errorf("record %d: missing key", i+1)
		}
		if r.Kind != "" && !json.Valid(r.Body) {
			return fmt.Errorf("record %d (%s %s): invalid body", i+1, r.Kind, r.Key)
		}
	}
	return b.write(ctx, func(q querier) error {
		if _, err := q.ExecContext(ctx, `DELETE FROM entities`); err != nil {
			return err
		}
		if _, err := q.ExecContext(ctx, `DELETE FROM meta`); err != nil {
			return err
		}
		for _, r := range recs {
			if r.Kind == "" {
				if err := metaSet(ctx, q, r.Key, r.Value); err != nil {
					return err
				}
				continue
			}
			if _, err := q.ExecContext(ctx,
				`INSERT INTO entities(kind, key, id, parent, body, updated_at_unixms) VALUES(?, ?, ?, ?, ?, ?)`,
				r.Kind, r.Key, r.ID, r.Parent, string(r.Body), r.UpdatedAt); err != nil {
				return fmt.Errorf("insert %s %s: %w", r.Kind, r.Key, err)
			}
		}
		// Backups from older files may lack it.
		_, err := q.ExecContext(ctx, `INSERT OR IGNORE INTO meta(k, v) VALUES('schema_version', ?)`, schemaVersion)
		return err
	})
}

func WriteJSONL(path string, recs []Record) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	bw := bufio.NewWriter(f)
	enc := json.NewEncoder(bw)
	for _, r := range recs {
		if err := enc.Encode(r); err != nil {
			return err
		}
	}
	if err := bw.Flush(); err != nil {
		return err
	}
	return f.Close()
}

func ReadJSONL(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	// Entity bodies can be long lines.
	sc.Buffer(make([]byte, 0, 64*1024), 8*1024*1024)
	var out []Record
	line := 0
	for sc.Scan() {
		line++
		s := strings.TrimSpace(sc.Text())
		if s == "" {
			continue
		}
		var r Record
		if err := json.Unmarshal([]byte(s), &r); err != nil {
			return nil, fmt.Errorf("%s:%d: %w", path, line, err)
		}
		out = append(out, r)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, errors.New("backup is empty")
	}
	return out, nil
}
