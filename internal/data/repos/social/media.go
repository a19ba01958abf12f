package social

import (
	"gorm.io/gorm"

	types "github.com/yungbote/tweetarchive/internal/domain"
	"github.com/yungbote/tweetarchive/internal/platform/dbctx"
	"github.com/yungbote/tweetarchive/internal/platform/logger"
)

type MediaRepo interface {
	// GetOrCreate matches on every content attribute; the same id with
	// different attributes is an ingest.CodeConflict error.
	GetOrCreate(dbc dbctx.Context, row *types.Media) (*types.Media, bool, error)
	SetSourceStatus(dbc dbctx.Context, mediaID, statusID int64) error
}

type mediaRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewMediaRepo(db *gorm.DB, baseLog *logger.Logger) MediaRepo {
	return &mediaRepo{db: db, log: baseLog.With("repo", "MediaRepo")}
}

var mediaKey = Keyed[types.Media]{
	Op:       "media.get_or_create",
	Conflict: []string{"id"},
	Key:      func(m *types.Media) map[string]any { return map[string]any{"id": m.ID} },
	Match:    func(existing, in *types.Media) bool { return existing.SameContent(in) },
}

func (r *mediaRepo) GetOrCreate(dbc dbctx.Context, row *types.Media) (*types.Media, bool, error) {
	if row == nil || row.ID == 0 {
		return nil, false, nil
	}
	in := *row
	in.SourceStatusID = nil
	return GetOrCreate(dbc, r.db, mediaKey, &in)
}

func (r *mediaRepo) SetSourceStatus(dbc dbctx.Context, mediaID, statusID int64) error {
	if mediaID == 0 || statusID == 0 {
		return nil
	}
	return dbc.DB(r.db).
		Model(&types.Media{}).
		Where("id = ?", mediaID).
		Update("source_status_id", statusID).Error
}
