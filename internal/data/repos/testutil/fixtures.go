package testutil

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	types "github.com/yungbote/tweetarchive/internal/domain"
	"gorm.io/gorm"
)

// CreatedAt is a fixed upstream timestamp used by the record fixtures.
const CreatedAt = "Wed Oct 10 20:19:24 +0000 2018"

// Record is a raw post record in upstream JSON shape.
type Record map[string]any

// Tweet builds a minimal valid record: id, text, created_at and a stub user.
func Tweet(id, userID int64, text string) Record {
	return Record{
		"id":         id,
		"id_str":     fmt.Sprint(id),
		"text":       text,
		"created_at": CreatedAt,
		"user":       StubUser(userID),
	}
}

func StubUser(id int64) map[string]any {
	return map[string]any{
		"id":          id,
		"screen_name": fmt.Sprintf("user%d", id),
	}
}

// FullUser is a profile-bearing user payload.
func FullUser(id int64, handle string) map[string]any {
	return map[string]any{
		"id":              id,
		"screen_name":     handle,
		"name":            "Full " + handle,
		"description":     "about " + handle,
		"followers_count": 10,
		"friends_count":   20,
		"listed_count":    3,
		"statuses_count":  400,
		"created_at":      "Mon Jan 02 15:04:05 +0000 2012",
		"url":             "https://example.com/" + handle,
		"location":        "Paris",
	}
}

// With sets key to v and returns r for chaining.
func (r Record) With(key string, v any) Record {
	r[key] = v
	return r
}

// Without deletes key and returns r for chaining.
func (r Record) Without(key string) Record {
	delete(r, key)
	return r
}

func Raw(tb testing.TB, v any) json.RawMessage {
	tb.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		tb.Fatalf("marshal fixture: %v", err)
	}
	return b
}

func Entities(hashtags []string, urls []string) map[string]any {
	hs := make([]map[string]any, 0, len(hashtags))
	for _, h := range hashtags {
		hs = append(hs, map[string]any{"text": h})
	}
	us := make([]map[string]any, 0, len(urls))
	for _, u := range urls {
		us = append(us, map[string]any{"expanded_url": u})
	}
	return map[string]any{
		"hashtags":      hs,
		"urls":          us,
		"user_mentions": []map[string]any{},
	}
}

func SeedUser(tb testing.TB, ctx context.Context, tx *gorm.DB, id int64, handle string) *types.User {
	tb.Helper()
	u := &types.User{ID: id, ScreenName: handle}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

func SeedPost(tb testing.TB, ctx context.Context, tx *gorm.DB, id, userID int64, term string, date time.Time) *types.Post {
	tb.Helper()
	p := &types.Post{
		ID:         id,
		UserID:     userID,
		Text:       fmt.Sprintf("post %d", id),
		Date:       date.UTC(),
		SearchTerm: term,
	}
	if err := tx.WithContext(ctx).Omit("Author", "Place", "ReplyToUser", "Retweet").Create(p).Error; err != nil {
		tb.Fatalf("seed post: %v", err)
	}
	return p
}

// Ptr returns a pointer to v, for optional model fields.
func Ptr[T any](v T) *T { return &v }
