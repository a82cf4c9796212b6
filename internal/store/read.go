package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"

	"github.com/roach88/ifc2lbd/internal/model"
)

// Iterate replays the cached entities ordered by id. The returned
// source holds a live cursor; drain it to io.EOF (or the first error)
// to release it.
func (c *Cache) Iterate(ctx context.Context) (model.Source, error) {
	schema, err := c.readMeta(ctx, "schema")
	if err != nil {
		return nil, err
	}

	rows, err := c.db.QueryContext(ctx, `
		SELECT id, type, attrs
		FROM entities
		ORDER BY id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query entities: %w", err)
	}

	return &cacheSource{schema: schema, rows: rows}, nil
}

// cacheSource adapts a SQLite cursor to the model.Source contract.
// Unlike a stream source it has no malformed-entry path: the cache
// wrote every row itself, so an undecodable row is corruption and
// fatal.
type cacheSource struct {
	schema string
	rows   *sql.Rows
	done   bool
}

func (s *cacheSource) Schema() string { return s.schema }

func (s *cacheSource) Next() (*model.Entity, error) {
	if s.done {
		return nil, io.EOF
	}

	if !s.rows.Next() {
		s.done = true
		if err := s.rows.Err(); err != nil {
			s.rows.Close()
			return nil, fmt.Errorf("iterate entities: %w", err)
		}
		if err := s.rows.Close(); err != nil {
			return nil, fmt.Errorf("close entity cursor: %w", err)
		}
		return nil, io.EOF
	}

	var (
		id    int64
		typ   string
		attrs string
	)
	if err := s.rows.Scan(&id, &typ, &attrs); err != nil {
		s.done = true
		s.rows.Close()
		return nil, fmt.Errorf("scan entity: %w", err)
	}

	decoded, err := model.DecodeAttrs([]byte(attrs))
	if err != nil {
		s.done = true
		s.rows.Close()
		return nil, fmt.Errorf("decode cached entity %d: %w", id, err)
	}

	return &model.Entity{ID: id, Type: typ, Attrs: decoded}, nil
}

// Stats reports cache contents for the CLI.
type Stats struct {
	Entities   int64
	Schema     string
	ImportedAt string
}

// Stats returns the cached entity count plus the recorded schema id
// and import time. The meta fields are empty for a cache nothing has
// been imported into yet.
func (c *Cache) Stats(ctx context.Context) (Stats, error) {
	var st Stats

	if err := c.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM entities`).Scan(&st.Entities); err != nil {
		return st, fmt.Errorf("count entities: %w", err)
	}

	schema, err := c.readMeta(ctx, "schema")
	if err != nil {
		return st, err
	}
	st.Schema = schema

	imported, err := c.readMeta(ctx, "imported_at")
	if err != nil {
		return st, err
	}
	st.ImportedAt = imported

	return st, nil
}

// readMeta returns the value for key, or "" when the key is absent.
func (c *Cache) readMeta(ctx context.Context, key string) (string, error) {
	var value string
	err := c.db.QueryRowContext(ctx, `SELECT value FROM meta WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read meta %s: %w", key, err)
	}
	return value, nil
}
