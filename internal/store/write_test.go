package store

import (
	"context"
	"math"
	"strings"
	"testing"

	"github.com/roach88/ifc2lbd/internal/model"
)

func TestImport_LoadsEntities(t *testing.T) {
	c := createTestCache(t)

	src := model.NewSliceSource("IFC4",
		testEntity(1, "IfcWall", "W-1"),
		testEntity(2, "IfcDoor", "D-1"),
		testEntity(3, "IfcSlab", "S-1"),
	)

	res, err := c.Import(context.Background(), src)
	if err != nil {
		t.Fatalf("Import() failed: %v", err)
	}
	if res.Imported != 3 {
		t.Errorf("Imported = %d, expected 3", res.Imported)
	}
	if res.Skipped != 0 {
		t.Errorf("Skipped = %d, expected 0", res.Skipped)
	}
}

func TestImport_DuplicateIDsKeepFirst(t *testing.T) {
	c := createTestCache(t)
	ctx := context.Background()

	src := model.NewSliceSource("IFC4",
		testEntity(5, "IfcWall", "first"),
		testEntity(5, "IfcWall", "second"),
	)

	res, err := c.Import(ctx, src)
	if err != nil {
		t.Fatalf("Import() failed: %v", err)
	}
	if res.Imported != 1 || res.Skipped != 1 {
		t.Errorf("got %d imported, %d skipped, expected 1 and 1", res.Imported, res.Skipped)
	}

	replay, err := c.Iterate(ctx)
	if err != nil {
		t.Fatalf("Iterate() failed: %v", err)
	}
	entities := drain(t, replay)
	if len(entities) != 1 {
		t.Fatalf("replayed %d entities, expected 1", len(entities))
	}
	if got := entities[0].Attrs[0].Value; got != model.String("first") {
		t.Errorf("surviving attribute = %v, expected the first record's value", got)
	}
}

func TestImport_ReimportIsIdempotent(t *testing.T) {
	c := createTestCache(t)
	ctx := context.Background()

	stream := func() model.Source {
		return model.NewSliceSource("IFC4",
			testEntity(1, "IfcWall", "W-1"),
			testEntity(2, "IfcDoor", "D-1"),
		)
	}

	if _, err := c.Import(ctx, stream()); err != nil {
		t.Fatalf("first Import() failed: %v", err)
	}

	res, err := c.Import(ctx, stream())
	if err != nil {
		t.Fatalf("second Import() failed: %v", err)
	}
	if res.Imported != 0 || res.Skipped != 2 {
		t.Errorf("got %d imported, %d skipped, expected 0 and 2", res.Imported, res.Skipped)
	}
}

func TestImport_SkipsMalformedEntries(t *testing.T) {
	c := createTestCache(t)

	stream := `{"schema": "IFC4"}
{"id": 1, "type": "IfcWall", "Name": "W-1"}
not json at all
{"id": 2, "type": "IfcDoor", "Name": "D-1"}
`
	src := model.NewStreamSource(strings.NewReader(stream), "")

	res, err := c.Import(context.Background(), src)
	if err != nil {
		t.Fatalf("Import() failed: %v", err)
	}
	if res.Imported != 2 {
		t.Errorf("Imported = %d, expected 2", res.Imported)
	}
	if res.Skipped != 1 {
		t.Errorf("Skipped = %d, expected 1", res.Skipped)
	}
}

func TestImport_SkipsRecordsWithoutIDOrType(t *testing.T) {
	c := createTestCache(t)

	src := model.NewSliceSource("IFC4",
		testEntity(1, "IfcWall", "W-1"),
		&model.Entity{ID: 0, Type: "IfcWall"},
		&model.Entity{ID: 9, Type: ""},
	)

	res, err := c.Import(context.Background(), src)
	if err != nil {
		t.Fatalf("Import() failed: %v", err)
	}
	if res.Imported != 1 || res.Skipped != 2 {
		t.Errorf("got %d imported, %d skipped, expected 1 and 2", res.Imported, res.Skipped)
	}
}

func TestImport_UnencodableAttrRollsBack(t *testing.T) {
	c := createTestCache(t)
	ctx := context.Background()

	src := model.NewSliceSource("IFC4",
		testEntity(1, "IfcWall", "W-1"),
		&model.Entity{ID: 2, Type: "IfcBeam", Attrs: []model.Attribute{
			{Name: "Depth", Value: model.Float(math.Inf(1))},
		}},
	)

	if _, err := c.Import(ctx, src); err == nil {
		t.Fatal("expected error for unencodable attribute, got nil")
	}

	// The single transaction must leave nothing behind
	st, err := c.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats() failed: %v", err)
	}
	if st.Entities != 0 {
		t.Errorf("failed import left %d entities, expected rollback", st.Entities)
	}
	if st.Schema != "" {
		t.Errorf("failed import left schema %q, expected rollback", st.Schema)
	}
}
