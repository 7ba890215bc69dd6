// Package store defines the checkpoint model shared by the graph executor and
// the persistence backends.
//
// A Checkpoint is written after every completed node when a graph runs with a
// checkpoint listener. Checkpoints are grouped by the execution, thread,
// session or workflow ID found in their metadata; List and Clear operate on
// that grouping.
//
// Backends live in sub-packages:
//   - memory: process-local map, used by tests and the default CLI run
//   - file: one JSON document per checkpoint in a directory
//   - sqlite: a single table in a SQLite database (mattn/go-sqlite3)
//   - postgres: a JSONB table accessed through pgx
//   - redis: keys plus per-execution index sets (go-redis)
package store
