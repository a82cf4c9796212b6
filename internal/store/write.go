package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/roach88/ifc2lbd/internal/model"
)

// ImportResult reports the outcome of a bulk load.
type ImportResult struct {
	Imported int64
	Skipped  int64
}

// Import bulk-loads a model stream into the cache in one transaction.
// Uses ON CONFLICT(id) DO NOTHING for idempotency - re-importing keeps
// the first record for each id and counts the rest as skipped.
// Malformed stream entries and records without a usable id or type are
// also skipped and counted, not fatal.
//
// The source's schema id and the import time are written to the meta
// table, replacing any previous import's values.
func (c *Cache) Import(ctx context.Context, src model.Source) (ImportResult, error) {
	var res ImportResult

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return res, fmt.Errorf("import: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO entities (id, type, attrs)
		VALUES (?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`)
	if err != nil {
		return res, fmt.Errorf("import: prepare insert: %w", err)
	}
	defer stmt.Close()

	for {
		e, err := src.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		var malformed *model.MalformedEntryError
		if errors.As(err, &malformed) {
			res.Skipped++
			continue
		}
		if err != nil {
			return res, fmt.Errorf("import: read source: %w", err)
		}
		if e == nil || e.ID == 0 || e.Type == "" {
			res.Skipped++
			continue
		}

		attrs, err := model.EncodeAttrs(e.Attrs)
		if err != nil {
			return res, fmt.Errorf("import: encode entity %d: %w", e.ID, err)
		}

		result, err := stmt.ExecContext(ctx, e.ID, e.Type, string(attrs))
		if err != nil {
			return res, fmt.Errorf("import: insert entity %d: %w", e.ID, err)
		}
		n, err := result.RowsAffected()
		if err != nil {
			return res, fmt.Errorf("import: rows affected: %w", err)
		}
		if n == 0 {
			// Conflict - id already cached, first record wins
			res.Skipped++
			continue
		}
		res.Imported++
	}

	if err := writeMeta(ctx, tx, "schema", src.Schema()); err != nil {
		return res, err
	}
	if err := writeMeta(ctx, tx, "imported_at", time.Now().UTC().Format(time.RFC3339)); err != nil {
		return res, err
	}

	if err := tx.Commit(); err != nil {
		return res, fmt.Errorf("import: commit: %w", err)
	}

	return res, nil
}

// writeMeta upserts one provenance key.
func writeMeta(ctx context.Context, tx *sql.Tx, key, value string) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO meta (key, value)
		VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("import: write meta %s: %w", key, err)
	}
	return nil
}
