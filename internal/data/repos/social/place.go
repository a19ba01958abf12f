package social

import (
	"gorm.io/gorm"

	types "github.com/yungbote/tweetarchive/internal/domain"
	"github.com/yungbote/tweetarchive/internal/platform/dbctx"
	"github.com/yungbote/tweetarchive/internal/platform/logger"
)

// PlaceRepo keeps the first stored version of a place.
type PlaceRepo interface {
	GetOrCreate(dbc dbctx.Context, row *types.Place) (*types.Place, error)
}

type placeRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPlaceRepo(db *gorm.DB, baseLog *logger.Logger) PlaceRepo {
	return &placeRepo{db: db, log: baseLog.With("repo", "PlaceRepo")}
}

var placeKey = Keyed[types.Place]{
	Op:       "place.get_or_create",
	Conflict: []string{"id"},
	Key:      func(p *types.Place) map[string]any { return map[string]any{"id": p.ID} },
}

func (r *placeRepo) GetOrCreate(dbc dbctx.Context, row *types.Place) (*types.Place, error) {
	if row == nil || row.ID == "" {
		return nil, nil
	}
	out, _, err := GetOrCreate(dbc, r.db, placeKey, row)
	return out, err
}
