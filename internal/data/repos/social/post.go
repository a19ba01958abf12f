package social

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/tweetarchive/internal/domain"
	"github.com/yungbote/tweetarchive/internal/platform/dbctx"
	"github.com/yungbote/tweetarchive/internal/platform/logger"
)

// Relations are the many-to-many sets attached to a post after its row exists.
type Relations struct {
	Hashtags []types.Hashtag
	URLs     []types.URL
	Mentions []types.User
	Media    []types.Media
}

func (r Relations) Empty() bool {
	return len(r.Hashtags) == 0 && len(r.URLs) == 0 && len(r.Mentions) == 0 && len(r.Media) == 0
}

type PostRepo interface {
	// Create inserts the post row only. A second insert of the same id fails
	// with the driver's unique violation.
	Create(dbc dbctx.Context, row *types.Post) error
	// CreateIfAbsent inserts the post row unless the id exists; created
	// reports which happened.
	CreateIfAbsent(dbc dbctx.Context, row *types.Post) (created bool, err error)
	AttachRelations(dbc dbctx.Context, row *types.Post, rel Relations) error

	GetByID(dbc dbctx.Context, id int64) (*types.Post, error)
	// GetGraph loads the post with every relation, including the retweet's.
	GetGraph(dbc dbctx.Context, id int64) (*types.Post, error)
	ListBySearchTerm(dbc dbctx.Context, term string, limit int) ([]*types.Post, error)
	Count(dbc dbctx.Context) (int64, error)

	NewestIDForTerm(dbc dbctx.Context, term string) (int64, bool, error)
	OldestIDOnOrBefore(dbc dbctx.Context, term string, date time.Time) (int64, bool, error)
	NewestIDOnOrBefore(dbc dbctx.Context, term string, date time.Time) (int64, bool, error)
	FirstByUser(dbc dbctx.Context, userID int64) (*types.Post, error)
	LastByUser(dbc dbctx.Context, userID int64) (*types.Post, error)
}

type postRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPostRepo(db *gorm.DB, baseLog *logger.Logger) PostRepo {
	return &postRepo{db: db, log: baseLog.With("repo", "PostRepo")}
}

func (r *postRepo) Create(dbc dbctx.Context, row *types.Post) error {
	if row == nil {
		return nil
	}
	return dbc.DB(r.db).Omit(clause.Associations).Create(row).Error
}

func (r *postRepo) CreateIfAbsent(dbc dbctx.Context, row *types.Post) (bool, error) {
	if row == nil {
		return false, nil
	}
	res := dbc.DB(r.db).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, DoNothing: true}).
		Create(row)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *postRepo) AttachRelations(dbc dbctx.Context, row *types.Post, rel Relations) error {
	if row == nil || row.ID == 0 || rel.Empty() {
		return nil
	}
	t := dbc.DB(r.db)
	target := &types.Post{ID: row.ID}
	if len(rel.Hashtags) > 0 {
		if err := t.Model(target).Association("Hashtags").Append(rel.Hashtags); err != nil {
			return err
		}
	}
	if len(rel.URLs) > 0 {
		if err := t.Model(target).Association("URLs").Append(rel.URLs); err != nil {
			return err
		}
	}
	if len(rel.Mentions) > 0 {
		if err := t.Model(target).Association("Mentions").Append(rel.Mentions); err != nil {
			return err
		}
	}
	if len(rel.Media) > 0 {
		if err := t.Model(target).Association("Media").Append(rel.Media); err != nil {
			return err
		}
	}
	return nil
}

func (r *postRepo) GetByID(dbc dbctx.Context, id int64) (*types.Post, error) {
	if id == 0 {
		return nil, nil
	}
	var rows []types.Post
	if err := dbc.DB(r.db).Where("id = ?", id).Limit(1).Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

func (r *postRepo) GetGraph(dbc dbctx.Context, id int64) (*types.Post, error) {
	if id == 0 {
		return nil, nil
	}
	var rows []types.Post
	err := dbc.DB(r.db).
		Preload("Author").
		Preload("Place").
		Preload("ReplyToUser").
		Preload("Hashtags").
		Preload("URLs").
		Preload("Mentions").
		Preload("Media").
		Preload("Retweet").
		Preload("Retweet.Author").
		Preload("Retweet.Hashtags").
		Preload("Retweet.URLs").
		Preload("Retweet.Mentions").
		Preload("Retweet.Media").
		Where("id = ?", id).
		Limit(1).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

func (r *postRepo) ListBySearchTerm(dbc dbctx.Context, term string, limit int) ([]*types.Post, error) {
	var out []*types.Post
	if term == "" {
		return out, nil
	}
	q := dbc.DB(r.db).Where("search_term = ?", term).Order("id ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *postRepo) Count(dbc dbctx.Context) (int64, error) {
	var n int64
	err := dbc.DB(r.db).Model(&types.Post{}).Count(&n).Error
	return n, err
}

// NewestIDForTerm is the since_id a collector resumes from.
func (r *postRepo) NewestIDForTerm(dbc dbctx.Context, term string) (int64, bool, error) {
	return r.pickID(dbc.DB(r.db).Where("search_term = ?", term), "id DESC")
}

func (r *postRepo) OldestIDOnOrBefore(dbc dbctx.Context, term string, date time.Time) (int64, bool, error) {
	return r.pickID(dbc.DB(r.db).Where("search_term = ? AND date <= ?", term, date.UTC()), "date ASC, id ASC")
}

func (r *postRepo) NewestIDOnOrBefore(dbc dbctx.Context, term string, date time.Time) (int64, bool, error) {
	return r.pickID(dbc.DB(r.db).Where("search_term = ? AND date <= ?", term, date.UTC()), "date DESC, id DESC")
}

func (r *postRepo) pickID(q *gorm.DB, order string) (int64, bool, error) {
	var ids []int64
	if err := q.Model(&types.Post{}).Order(order).Limit(1).Pluck("id", &ids).Error; err != nil {
		return 0, false, err
	}
	if len(ids) == 0 {
		return 0, false, nil
	}
	return ids[0], true, nil
}

func (r *postRepo) FirstByUser(dbc dbctx.Context, userID int64) (*types.Post, error) {
	return r.byUser(dbc, userID, "date ASC, id ASC")
}

func (r *postRepo) LastByUser(dbc dbctx.Context, userID int64) (*types.Post, error) {
	return r.byUser(dbc, userID, "date DESC, id DESC")
}

func (r *postRepo) byUser(dbc dbctx.Context, userID int64, order string) (*types.Post, error) {
	if userID == 0 {
		return nil, nil
	}
	var rows []types.Post
	if err := dbc.DB(r.db).Where("user_id = ?", userID).Order(order).Limit(1).Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}
