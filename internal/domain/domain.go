package domain

import "github.com/yungbote/tweetarchive/internal/domain/social"

type (
	Post      = social.Post
	User      = social.User
	Hashtag   = social.Hashtag
	URL       = social.URL
	Media     = social.Media
	Place     = social.Place
	IngestRun = social.IngestRun
)

// Models lists every table-backed type, parents before children.
func Models() []any {
	return []any{
		&social.User{},
		&social.Place{},
		&social.Hashtag{},
		&social.URL{},
		&social.Media{},
		&social.Post{},
		&social.IngestRun{},
	}
}
