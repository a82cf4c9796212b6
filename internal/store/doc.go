// Package store provides a SQLite-backed cache of one model's entity
// records, so repeated conversions of the same model skip re-reading
// and re-decoding the source stream.
//
// The cache holds:
//   - Entities: one row per record, attribute JSON kept verbatim so
//     replay reproduces the original attribute order
//   - Meta: the model's schema id and import provenance
//
// # Write Path
//
//   - Import loads a whole stream in a single transaction
//   - ON CONFLICT(id) DO NOTHING: the first record for an id wins,
//     re-imports are idempotent
//   - Malformed stream entries are skipped and counted, matching the
//     converter's own policy
//
// # Read Path
//
//   - Iterate replays entities ordered by id as a model.Source
//   - An undecodable cached row is corruption and fatal, never a
//     skippable malformed entry
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
