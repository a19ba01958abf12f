// Package resolver maps the sub-entities of a raw record to stored rows,
// creating each one on first sight.
package resolver

import (
	"fmt"

	"github.com/yungbote/tweetarchive/internal/data/repos/social"
	types "github.com/yungbote/tweetarchive/internal/domain"
	"github.com/yungbote/tweetarchive/internal/domain/ingest"
	"github.com/yungbote/tweetarchive/internal/ingestion/canonical"
	"github.com/yungbote/tweetarchive/internal/ingestion/record"
	"github.com/yungbote/tweetarchive/internal/platform/dbctx"
	"github.com/yungbote/tweetarchive/internal/platform/logger"
)

type Deps struct {
	Log      *logger.Logger
	Users    social.UserRepo
	Hashtags social.HashtagRepo
	URLs     social.URLRepo
	Media    social.MediaRepo
	Places   social.PlaceRepo
}

type Resolver struct {
	log      *logger.Logger
	users    social.UserRepo
	hashtags social.HashtagRepo
	urls     social.URLRepo
	media    social.MediaRepo
	places   social.PlaceRepo
}

func New(deps Deps) (*Resolver, error) {
	if deps.Log == nil || deps.Users == nil || deps.Hashtags == nil || deps.URLs == nil || deps.Media == nil || deps.Places == nil {
		return nil, fmt.Errorf("resolver: missing deps")
	}
	return &Resolver{
		log:      deps.Log.With("component", "EntityResolver"),
		users:    deps.Users,
		hashtags: deps.Hashtags,
		urls:     deps.URLs,
		media:    deps.Media,
		places:   deps.Places,
	}, nil
}

// NewFromRepos wires a resolver over the full repo set.
func NewFromRepos(repos social.Repos, log *logger.Logger) (*Resolver, error) {
	return New(Deps{
		Log:      log,
		Users:    repos.Users,
		Hashtags: repos.Hashtags,
		URLs:     repos.URLs,
		Media:    repos.Media,
		Places:   repos.Places,
	})
}

// User returns the stored user for raw, creating a stub on first sight.
// When raw carries profile fields they are merged in; if the profile cannot
// be parsed the stub is returned and the enrichment is logged as skipped.
func (r *Resolver) User(dbc dbctx.Context, raw *record.User) (*types.User, error) {
	if raw == nil || raw.ID == nil || *raw.ID == 0 {
		return nil, ingest.Malformed("resolver.user", "user block without id")
	}
	stub := &types.User{ID: *raw.ID, ScreenName: record.Deref(raw.ScreenName)}
	if !raw.HasProfile() {
		u, _, err := r.users.GetOrCreate(dbc, stub)
		return u, err
	}

	full, err := profileOf(raw)
	if err != nil {
		r.log.Warn("user enrichment skipped",
			"user_id", stub.ID,
			"code", ingest.CodePartialEnrichment,
			"error", err,
		)
		u, _, err := r.users.GetOrCreate(dbc, stub)
		return u, err
	}
	u, err := r.users.Upsert(dbc, full)
	if err != nil {
		r.log.Warn("user enrichment failed, keeping stub",
			"user_id", stub.ID,
			"code", ingest.CodePartialEnrichment,
			"error", err,
		)
		u, _, err = r.users.GetOrCreate(dbc, stub)
	}
	return u, err
}

// ReplyTarget returns the user being replied to, as a stub.
func (r *Resolver) ReplyTarget(dbc dbctx.Context, id int64, handle string) (*types.User, error) {
	if id == 0 {
		return nil, nil
	}
	u, _, err := r.users.GetOrCreate(dbc, &types.User{ID: id, ScreenName: handle})
	return u, err
}

func profileOf(raw *record.User) (*types.User, error) {
	u := &types.User{
		ID:            *raw.ID,
		ScreenName:    record.Deref(raw.ScreenName),
		Name:          record.Deref(raw.Name),
		Description:   record.Deref(raw.Description),
		URL:           record.Deref(raw.URL),
		Location:      record.Deref(raw.Location),
		Followers:     raw.Followers,
		Following:     raw.Friends,
		Listed:        raw.Listed,
		StatusesCount: raw.Statuses,
	}
	if raw.CreatedAt != nil {
		joined, err := record.ParseTime(*raw.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("user created_at %q: %w", *raw.CreatedAt, err)
		}
		u.JoinedAt = &joined
	}
	return u, nil
}

// Hashtags canonicalizes the tag texts and returns one row per distinct tag.
func (r *Resolver) Hashtags(dbc dbctx.Context, postID int64, ents *record.Entities) ([]types.Hashtag, error) {
	if ents == nil || len(ents.Hashtags) == 0 {
		return nil, nil
	}
	texts := make([]string, 0, len(ents.Hashtags))
	for _, h := range ents.Hashtags {
		texts = append(texts, h.Text)
	}
	norm := r.normalize(postID, "hashtag", texts)
	out := make([]types.Hashtag, 0, len(norm))
	for _, tag := range norm {
		row, err := r.hashtags.GetOrCreate(dbc, tag)
		if err != nil {
			return nil, fmt.Errorf("hashtag %q: %w", tag, err)
		}
		out = append(out, *row)
	}
	return out, nil
}

// URLs canonicalizes expanded URLs; two spellings differing only in case
// resolve to one row.
func (r *Resolver) URLs(dbc dbctx.Context, postID int64, ents *record.Entities) ([]types.URL, error) {
	if ents == nil || len(ents.URLs) == 0 {
		return nil, nil
	}
	raw := make([]string, 0, len(ents.URLs))
	for _, u := range ents.URLs {
		raw = append(raw, u.ExpandedURL)
	}
	norm := r.normalize(postID, "url", raw)
	out := make([]types.URL, 0, len(norm))
	for _, v := range norm {
		row, err := r.urls.GetOrCreate(dbc, v)
		if err != nil {
			return nil, fmt.Errorf("url %q: %w", v, err)
		}
		out = append(out, *row)
	}
	return out, nil
}

// Mentions returns one stub user per distinct mentioned id.
func (r *Resolver) Mentions(dbc dbctx.Context, postID int64, ents *record.Entities) ([]types.User, error) {
	if ents == nil || len(ents.Mentions) == 0 {
		return nil, nil
	}
	type pair struct {
		id     int64
		handle string
	}
	seenPair := map[pair]struct{}{}
	seenID := map[int64]struct{}{}
	out := make([]types.User, 0, len(ents.Mentions))
	for _, m := range ents.Mentions {
		if m.ID == nil || *m.ID == 0 {
			r.log.Debug("mention without id skipped", "post_id", postID, "screen_name", m.ScreenName)
			continue
		}
		p := pair{id: *m.ID, handle: m.ScreenName}
		if _, ok := seenPair[p]; ok {
			continue
		}
		seenPair[p] = struct{}{}
		u, _, err := r.users.GetOrCreate(dbc, &types.User{ID: p.id, ScreenName: p.handle})
		if err != nil {
			return nil, fmt.Errorf("mention %d: %w", p.id, err)
		}
		if _, ok := seenID[u.ID]; ok {
			continue
		}
		seenID[u.ID] = struct{}{}
		out = append(out, *u)
	}
	return out, nil
}

// Place returns nil when the block is absent, incomplete or cannot be stored.
func (r *Resolver) Place(dbc dbctx.Context, postID int64, raw *record.Place) *types.Place {
	if raw == nil {
		return nil
	}
	if raw.ID == nil || *raw.ID == "" || raw.FullName == nil || raw.Country == nil ||
		raw.CountryCode == nil || raw.Name == nil || raw.PlaceType == nil || raw.URL == nil {
		r.log.Warn("place block incomplete, skipped", "post_id", postID)
		return nil
	}
	row, err := r.places.GetOrCreate(dbc, &types.Place{
		ID:          *raw.ID,
		FullName:    *raw.FullName,
		Country:     *raw.Country,
		CountryCode: *raw.CountryCode,
		Name:        *raw.Name,
		Type:        *raw.PlaceType,
		URL:         *raw.URL,
	})
	if err != nil {
		r.log.Error("place not stored", "post_id", postID, "place_id", *raw.ID, "error", err)
		return nil
	}
	return row
}

// Media stores each item independently; a failed item is logged and left out.
func (r *Resolver) Media(dbc dbctx.Context, postID int64, items []record.Media) []types.Media {
	if len(items) == 0 {
		return nil
	}
	out := make([]types.Media, 0, len(items))
	seen := map[int64]struct{}{}
	for i := range items {
		item := &items[i]
		id, ok := item.MediaID()
		if !ok {
			r.log.Warn("media without usable id skipped", "post_id", postID)
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		row, _, err := r.media.GetOrCreate(dbc, &types.Media{
			ID:          id,
			Type:        item.Type,
			URL:         item.URL,
			DisplayURL:  item.DisplayURL,
			ExpandedURL: item.ExpandedURL,
		})
		switch {
		case ingest.IsCode(err, ingest.CodeConflict):
			r.log.Warn("media id already stored with different attributes, skipped", "post_id", postID, "media_id", id)
			continue
		case err != nil:
			r.log.Error("media not stored", "post_id", postID, "media_id", id, "error", err)
			continue
		}
		if item.SourceStatusID != nil && *item.SourceStatusID != 0 {
			if err := r.media.SetSourceStatus(dbc, id, *item.SourceStatusID); err != nil {
				r.log.Warn("media source status not attached", "post_id", postID, "media_id", id, "error", err)
			} else {
				src := *item.SourceStatusID
				row.SourceStatusID = &src
			}
		}
		seen[id] = struct{}{}
		out = append(out, *row)
	}
	return out
}

func (r *Resolver) normalize(postID int64, kind string, values []string) []string {
	res := canonical.Normalize(values)
	if res.Dropped > 0 {
		r.log.Warn("blank values dropped", "post_id", postID, "kind", kind, "dropped", res.Dropped)
	}
	return res.Values
}
