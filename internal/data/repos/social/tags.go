package social

import (
	"gorm.io/gorm"

	types "github.com/yungbote/tweetarchive/internal/domain"
	"github.com/yungbote/tweetarchive/internal/platform/dbctx"
	"github.com/yungbote/tweetarchive/internal/platform/logger"
)

// HashtagRepo stores canonical (already lowercased) tags.
type HashtagRepo interface {
	GetOrCreate(dbc dbctx.Context, tag string) (*types.Hashtag, error)
}

type hashtagRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewHashtagRepo(db *gorm.DB, baseLog *logger.Logger) HashtagRepo {
	return &hashtagRepo{db: db, log: baseLog.With("repo", "HashtagRepo")}
}

var hashtagKey = Keyed[types.Hashtag]{
	Op:       "hashtag.get_or_create",
	Conflict: []string{"tag"},
	Key:      func(h *types.Hashtag) map[string]any { return map[string]any{"tag": h.Tag} },
}

func (r *hashtagRepo) GetOrCreate(dbc dbctx.Context, tag string) (*types.Hashtag, error) {
	if tag == "" {
		return nil, nil
	}
	out, _, err := GetOrCreate(dbc, r.db, hashtagKey, &types.Hashtag{Tag: tag})
	return out, err
}

// URLRepo stores canonical (already lowercased) expanded URLs.
type URLRepo interface {
	GetOrCreate(dbc dbctx.Context, url string) (*types.URL, error)
}

type urlRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewURLRepo(db *gorm.DB, baseLog *logger.Logger) URLRepo {
	return &urlRepo{db: db, log: baseLog.With("repo", "URLRepo")}
}

var urlKey = Keyed[types.URL]{
	Op:       "url.get_or_create",
	Conflict: []string{"url"},
	Key:      func(u *types.URL) map[string]any { return map[string]any{"url": u.URL} },
}

func (r *urlRepo) GetOrCreate(dbc dbctx.Context, url string) (*types.URL, error) {
	if url == "" {
		return nil, nil
	}
	out, _, err := GetOrCreate(dbc, r.db, urlKey, &types.URL{URL: url})
	return out, err
}
