// Package geometry decides what happens to geometry-describing entities
// once their shapes have been extracted into a standalone Turtle side
// channel.
//
// Two independent halves share the package:
//
// DEPENDENCY RESOLUTION:
//
//	[ModelIndex] → [Resolver] → obsolete / retained partition
//	                   ↑
//	            [schema.Registry]
//
// The resolver collects the candidate geometry set (the closure of every
// type product's representation maps and every product definition
// shape), severs the two anchor edge kinds that tie the set to the model
// proper, orders the set dependencies-first, and classifies each entity
// by whether anything outside the set still references it. Dependency
// cycles are reported, never fatal. Classification only decides; removal
// is the caller's explicit step (Prune, or the upstream model store).
//
// SUBGRAPH REPLAY:
//
//	[raw geometry Turtle] → [Extractor] → per-GUID triple replay
//
// The extractor indexes the side channel's feature subjects by the GUID
// embedded in their IRIs and replays one feature's subgraph on demand:
// breadth-first, each node visited once, annotation and derived-only
// triples filtered out, WKT coordinates rounded to a fixed precision so
// kernel formatting noise never reaches a consumer.
//
// Both halves are built once per source and safe for concurrent reads
// afterwards.
package geometry
