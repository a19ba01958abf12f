// Package source provides pull-style iterators over raw post records.
package source

import (
	"context"
	"encoding/json"
	"io"
)

// Source yields raw records one at a time and returns io.EOF when drained.
type Source interface {
	Next(ctx context.Context) (json.RawMessage, error)
	// Name identifies the source in logs and run ledgers.
	Name() string
}

type sliceSource struct {
	name    string
	records []json.RawMessage
	pos     int
}

// Slice serves records held in memory, e.g. one page of an API response.
func Slice(name string, records []json.RawMessage) Source {
	return &sliceSource{name: name, records: records}
}

func (s *sliceSource) Next(ctx context.Context) (json.RawMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.pos >= len(s.records) {
		return nil, io.EOF
	}
	rec := s.records[s.pos]
	s.pos++
	return rec, nil
}

func (s *sliceSource) Name() string { return s.name }
