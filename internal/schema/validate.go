package schema

import (
	_ "embed"
	"fmt"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cuejson "cuelang.org/go/encoding/json"
)

//go:embed collectionmap.cue
var collectionMapCUE string

var compileSchema = sync.OnceValues(func() (cue.Value, error) {
	ctx := cuecontext.New()
	val := ctx.CompileString(collectionMapCUE, cue.Filename("collectionmap.cue"))
	if err := val.Err(); err != nil {
		return cue.Value{}, fmt.Errorf("compile collectionmap.cue: %w", err)
	}
	def := val.LookupPath(cue.ParsePath("#CollectionMap"))
	if err := def.Err(); err != nil {
		return cue.Value{}, fmt.Errorf("lookup #CollectionMap: %w", err)
	}
	return def, nil
})

// validateMap checks raw collection-map JSON against the embedded CUE
// definition before the registry parses it. The definition is closed, so
// stray top-level fields and malformed kind strings are rejected here
// with CUE's field-level positions instead of surfacing later as odd
// lookup behavior.
func validateMap(data []byte) error {
	def, err := compileSchema()
	if err != nil {
		return err
	}
	return cuejson.Validate(data, def)
}
