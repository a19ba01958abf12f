package social

import (
	"github.com/yungbote/tweetarchive/internal/domain/ingest"
	"github.com/yungbote/tweetarchive/internal/platform/dbctx"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Keyed describes how to get-or-create rows of T by their natural key.
type Keyed[T any] struct {
	Op string
	// Conflict names the unique columns backing the key.
	Conflict []string
	// Key returns column -> value conditions used to re-read an existing row.
	Key func(row *T) map[string]any
	// Match, when set, must accept the stored row or the call fails with
	// ingest.CodeConflict and the stored row is left untouched.
	Match func(existing, incoming *T) bool
	// Merge, when set, returns the columns to update on an existing row.
	// An empty map means nothing changes.
	Merge func(existing, incoming *T) map[string]any
}

// GetOrCreate inserts row unless a row with the same key exists, then
// returns the stored row. The insert uses ON CONFLICT DO NOTHING so
// concurrent writers racing on the same key both succeed.
func GetOrCreate[T any](dbc dbctx.Context, db *gorm.DB, k Keyed[T], row *T) (*T, bool, error) {
	t := dbc.DB(db)

	cols := make([]clause.Column, 0, len(k.Conflict))
	for _, c := range k.Conflict {
		cols = append(cols, clause.Column{Name: c})
	}
	res := t.Clauses(clause.OnConflict{Columns: cols, DoNothing: true}).Create(row)
	if res.Error != nil {
		return nil, false, res.Error
	}
	if res.RowsAffected > 0 {
		return row, true, nil
	}

	key := k.Key(row)
	var existing T
	if err := t.Where(key).Take(&existing).Error; err != nil {
		return nil, false, err
	}
	if k.Match != nil && !k.Match(&existing, row) {
		return &existing, false, ingest.NewError(ingest.CodeConflict, k.Op, "stored row differs on the same key", nil)
	}
	if k.Merge != nil {
		if updates := k.Merge(&existing, row); len(updates) > 0 {
			if err := t.Model(&existing).Where(key).Updates(updates).Error; err != nil {
				return nil, false, err
			}
			existing = *new(T)
			if err := t.Where(key).Take(&existing).Error; err != nil {
				return nil, false, err
			}
		}
	}
	return &existing, false, nil
}
