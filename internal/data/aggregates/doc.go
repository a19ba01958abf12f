// Package aggregates owns the unit-of-work boundary for ingestion writes.
//
// It composes the table-level repos from internal/data/repos, runs them in a
// single transaction and maps driver failures onto the ingest error codes.
package aggregates
