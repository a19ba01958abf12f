package social

import (
	"gorm.io/gorm"

	"github.com/yungbote/tweetarchive/internal/platform/logger"
)

// Repos bundles every table-level repo the pipeline writes through.
type Repos struct {
	Users      UserRepo
	Hashtags   HashtagRepo
	URLs       URLRepo
	Media      MediaRepo
	Places     PlaceRepo
	Posts      PostRepo
	IngestRuns IngestRunRepo
}

func NewRepos(db *gorm.DB, baseLog *logger.Logger) Repos {
	return Repos{
		Users:      NewUserRepo(db, baseLog),
		Hashtags:   NewHashtagRepo(db, baseLog),
		URLs:       NewURLRepo(db, baseLog),
		Media:      NewMediaRepo(db, baseLog),
		Places:     NewPlaceRepo(db, baseLog),
		Posts:      NewPostRepo(db, baseLog),
		IngestRuns: NewIngestRunRepo(db, baseLog),
	}
}
