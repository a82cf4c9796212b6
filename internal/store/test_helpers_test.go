package store

import (
	"io"
	"path/filepath"
	"testing"

	"github.com/roach88/ifc2lbd/internal/model"
	"github.com/roach88/ifc2lbd/internal/testutil"
)

// createTestCache creates a fresh on-disk cache for testing.
func createTestCache(t *testing.T) *Cache {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cache.db")
	c, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

// testEntity builds an entity with a single string attribute.
func testEntity(id int64, typ, name string) *model.Entity {
	return testutil.Entity(id, typ).Str("Name", name).Build()
}

// drain reads a source to EOF, releasing its cursor.
func drain(t *testing.T, src model.Source) []*model.Entity {
	t.Helper()
	var entities []*model.Entity
	for {
		e, err := src.Next()
		if err == io.EOF {
			return entities
		}
		if err != nil {
			t.Fatalf("Next() failed: %v", err)
		}
		entities = append(entities, e)
	}
}
