// Package serializer streams engineering-model entities into a Turtle
// document in a single forward pass.
//
// DATA FLOW:
//
//	[model.Source] → [Serializer + Encoder] → [Turtle writer]
//	                        ↑
//	                 [schema.Registry]
//
// The serializer never backtracks: the header is written before the
// first entity, each entity becomes one self-contained block, and the
// auxiliary typed-entity statements an entity produced follow its block
// immediately, before the next entity begins.
//
// COUNT BOOKKEEPING:
//
// Every write is paired with an exact triple count so the run metrics
// are an arithmetic fact about the document, not an estimate:
//   - the header ontology statement accounts for 2 triples
//   - each entity's type assertion accounts for 1
//   - each attribute accounts for its encoder count
//   - each auxiliary statement accounts for its inner value's count
//
// BUFFERING CONTRACT:
//
// Output is buffered and flushed every FlushThreshold entities, plus
// once at stream end. Buffering is a pure batching optimization: for a
// given input the output bytes are identical at every threshold,
// including a threshold of one.
//
// FAILURE SEPARATION:
//
// Three failure classes are kept apart:
//   - malformed stream entries and incomplete records are dropped,
//     counted in Metrics.Skipped, and logged at debug level
//   - attribute values with no Turtle encoding are omitted one
//     attribute at a time (UnsupportedShapeError)
//   - everything else aborts the run wrapped in an EncodingError
//     naming the entity, or in the underlying write error
package serializer
