// Package builder assembles a candidate post tree from a raw record: every
// referenced entity is resolved first, then the post itself is described
// with its foreign keys set but nothing written for it yet.
package builder

import (
	"fmt"

	"github.com/yungbote/tweetarchive/internal/data/repos/social"
	types "github.com/yungbote/tweetarchive/internal/domain"
	"github.com/yungbote/tweetarchive/internal/domain/ingest"
	"github.com/yungbote/tweetarchive/internal/ingestion/record"
	"github.com/yungbote/tweetarchive/internal/ingestion/resolver"
	"github.com/yungbote/tweetarchive/internal/platform/dbctx"
	"github.com/yungbote/tweetarchive/internal/platform/logger"
)

// Candidate is a post ready to persist. Retweet, when set, must be stored
// before Post so its id can be referenced.
type Candidate struct {
	Post      types.Post
	Author    *types.User
	Place     *types.Place
	ReplyTo   *types.User
	Relations social.Relations
	Retweet   *Candidate
}

// Depth counts the posts in the retweet chain, this one included.
func (c *Candidate) Depth() int {
	n := 0
	for cur := c; cur != nil; cur = cur.Retweet {
		n++
	}
	return n
}

type Builder struct {
	res *resolver.Resolver
	log *logger.Logger
}

func New(res *resolver.Resolver, baseLog *logger.Logger) *Builder {
	return &Builder{res: res, log: baseLog.With("component", "RelationshipBuilder")}
}

// Build validates raw and resolves everything it references. A record
// missing a mandatory field fails with ingest.CodeMalformed before any
// write. author, when non-nil, is used instead of resolving raw.User.
func (b *Builder) Build(dbc dbctx.Context, raw *record.Tweet, term string, author *types.User) (*Candidate, error) {
	if raw == nil {
		return nil, ingest.Malformed("builder.build", "nil record")
	}
	id, date, err := raw.Validate()
	if err != nil {
		return nil, err
	}
	text, _ := raw.Body()

	c := &Candidate{
		Post: types.Post{
			ID:         id,
			Text:       text,
			Date:       date,
			SearchTerm: term,
		},
	}

	// Place and media never block the post.
	if place := b.res.Place(dbc, id, raw.Place); place != nil {
		c.Place = place
		pid := place.ID
		c.Post.PlaceID = &pid
	}
	if raw.Entities != nil {
		c.Relations.Media = b.res.Media(dbc, id, raw.Entities.Media)
	}

	if author == nil {
		author, err = b.res.User(dbc, raw.User)
		if err != nil {
			return nil, fmt.Errorf("post %d author: %w", id, err)
		}
	}
	c.Author = author
	c.Post.UserID = author.ID

	if raw.Entities != nil {
		if c.Relations.Hashtags, err = b.res.Hashtags(dbc, id, raw.Entities); err != nil {
			return nil, fmt.Errorf("post %d: %w", id, err)
		}
		if c.Relations.URLs, err = b.res.URLs(dbc, id, raw.Entities); err != nil {
			return nil, fmt.Errorf("post %d: %w", id, err)
		}
		if c.Relations.Mentions, err = b.res.Mentions(dbc, id, raw.Entities); err != nil {
			return nil, fmt.Errorf("post %d: %w", id, err)
		}
	}

	if raw.InReplyToUserID != nil && *raw.InReplyToUserID != 0 {
		target, err := b.res.ReplyTarget(dbc, *raw.InReplyToUserID, record.Deref(raw.InReplyToScreenName))
		if err != nil {
			return nil, fmt.Errorf("post %d reply target: %w", id, err)
		}
		c.ReplyTo = target
		uid := target.ID
		c.Post.ReplyToUserID = &uid
	}
	if raw.InReplyToStatusID != nil && *raw.InReplyToStatusID != 0 {
		sid := *raw.InReplyToStatusID
		c.Post.ReplyToPostID = &sid
	}

	if raw.RetweetedStatus != nil {
		rt, err := b.Build(dbc, raw.RetweetedStatus, term, nil)
		switch {
		case ingest.IsCode(err, ingest.CodeMalformed):
			rtID, _ := raw.RetweetedStatus.PostID()
			b.log.Error("retweeted status malformed, reference dropped", "post_id", id, "retweet_id", rtID, "error", err)
		case err != nil:
			return nil, fmt.Errorf("post %d retweet: %w", id, err)
		default:
			c.Retweet = rt
			rtID := rt.Post.ID
			c.Post.RetweetID = &rtID
		}
	}

	if lat, lon, ok := raw.LatLon(); ok {
		c.Post.Lat = &lat
		c.Post.Lon = &lon
	}
	return c, nil
}
