package social

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/tweetarchive/internal/domain"
	"github.com/yungbote/tweetarchive/internal/platform/dbctx"
	"github.com/yungbote/tweetarchive/internal/platform/logger"
)

type IngestRunRepo interface {
	Create(dbc dbctx.Context, row *types.IngestRun) error
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.IngestRun, error)
	ListByTerm(dbc dbctx.Context, term string, limit int) ([]*types.IngestRun, error)
}

type ingestRunRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewIngestRunRepo(db *gorm.DB, baseLog *logger.Logger) IngestRunRepo {
	return &ingestRunRepo{db: db, log: baseLog.With("repo", "IngestRunRepo")}
}

func (r *ingestRunRepo) Create(dbc dbctx.Context, row *types.IngestRun) error {
	if row == nil {
		return nil
	}
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	return dbc.DB(r.db).Create(row).Error
}

func (r *ingestRunRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.IngestRun, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var rows []types.IngestRun
	if err := dbc.DB(r.db).Where("id = ?", id).Limit(1).Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

func (r *ingestRunRepo) ListByTerm(dbc dbctx.Context, term string, limit int) ([]*types.IngestRun, error) {
	var out []*types.IngestRun
	if term == "" {
		return out, nil
	}
	q := dbc.DB(r.db).Where("search_term = ?", term).Order("started_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
