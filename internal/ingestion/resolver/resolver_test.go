package resolver

import (
	"context"
	"encoding/json"
	"reflect"
	"testing"

	"gorm.io/gorm"

	"github.com/yungbote/tweetarchive/internal/data/repos/social"
	"github.com/yungbote/tweetarchive/internal/data/repos/testutil"
	types "github.com/yungbote/tweetarchive/internal/domain"
	"github.com/yungbote/tweetarchive/internal/ingestion/record"
	"github.com/yungbote/tweetarchive/internal/platform/dbctx"
)

func newResolver(t *testing.T) (*Resolver, *gorm.DB, dbctx.Context) {
	t.Helper()
	db := testutil.DB(t)
	res, err := NewFromRepos(social.NewRepos(db, testutil.Logger(t)), testutil.Logger(t))
	if err != nil {
		t.Fatalf("NewFromRepos: %v", err)
	}
	return res, db, testutil.DBC(context.Background())
}

func decodeUser(t *testing.T, v any) *record.User {
	t.Helper()
	var u record.User
	if err := json.Unmarshal(testutil.Raw(t, v), &u); err != nil {
		t.Fatalf("unmarshal user: %v", err)
	}
	return &u
}

func countURLs(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var n int64
	if err := db.Model(&types.URL{}).Count(&n).Error; err != nil {
		t.Fatalf("count urls: %v", err)
	}
	return n
}

func TestUserStubThenEnrich(t *testing.T) {
	res, db, dbc := newResolver(t)

	stub, err := res.User(dbc, decodeUser(t, testutil.StubUser(9)))
	if err != nil {
		t.Fatalf("User(stub): %v", err)
	}
	if !stub.IsStub() || stub.ScreenName != "user9" {
		t.Fatalf("User(stub): %+v", stub)
	}

	full, err := res.User(dbc, decodeUser(t, testutil.FullUser(9, "nine")))
	if err != nil {
		t.Fatalf("User(full): %v", err)
	}
	if full.ScreenName != "nine" || full.Name != "Full nine" {
		t.Fatalf("User(full): handle=%q name=%q", full.ScreenName, full.Name)
	}
	if full.Following == nil || *full.Following != 20 {
		t.Fatalf("following: %v", full.Following)
	}
	if full.JoinedAt == nil || full.JoinedAt.Year() != 2012 {
		t.Fatalf("joined: %v", full.JoinedAt)
	}

	// Stub payload afterwards leaves the profile intact.
	again, err := res.User(dbc, decodeUser(t, testutil.StubUser(9)))
	if err != nil {
		t.Fatalf("User(stub again): %v", err)
	}
	if again.Name != "Full nine" {
		t.Fatalf("profile lost: %+v", again)
	}

	var n int64
	if err := db.Model(&types.User{}).Count(&n).Error; err != nil || n != 1 {
		t.Fatalf("user rows: n=%d err=%v", n, err)
	}
}

func TestUserBadTimestampKeepsStub(t *testing.T) {
	res, _, dbc := newResolver(t)

	payload := testutil.FullUser(11, "eleven")
	payload["created_at"] = "yesterday"
	u, err := res.User(dbc, decodeUser(t, payload))
	if err != nil {
		t.Fatalf("User: %v", err)
	}
	if u.ID != 11 || !u.IsStub() {
		t.Fatalf("enrichment should be skipped: %+v", u)
	}
}

func TestUserWithoutID(t *testing.T) {
	res, _, dbc := newResolver(t)
	if _, err := res.User(dbc, decodeUser(t, map[string]any{"screen_name": "ghost"})); err == nil {
		t.Fatalf("User: expected error for missing id")
	}
}

func TestHashtagsAndURLsCanonical(t *testing.T) {
	res, db, dbc := newResolver(t)

	ents := &record.Entities{
		Hashtags: []record.Hashtag{{Text: "Go"}, {Text: "GO"}, {Text: ""}, {Text: "gophers"}},
		URLs:     []record.URL{{ExpandedURL: "http://A.com/x"}, {ExpandedURL: "http://a.com/X"}},
	}
	tags, err := res.Hashtags(dbc, 1, ents)
	if err != nil {
		t.Fatalf("Hashtags: %v", err)
	}
	if want := []types.Hashtag{{Tag: "go"}, {Tag: "gophers"}}; !reflect.DeepEqual(tags, want) {
		t.Fatalf("Hashtags: got %+v want %+v", tags, want)
	}

	urls, err := res.URLs(dbc, 1, ents)
	if err != nil {
		t.Fatalf("URLs: %v", err)
	}
	if want := []types.URL{{URL: "http://a.com/x"}}; !reflect.DeepEqual(urls, want) {
		t.Fatalf("URLs: got %+v want %+v", urls, want)
	}
	if n := countURLs(t, db); n != 1 {
		t.Fatalf("url rows: got %d want 1", n)
	}

	none, err := res.Hashtags(dbc, 1, nil)
	if err != nil || len(none) != 0 {
		t.Fatalf("Hashtags(nil): %v %v", none, err)
	}
}

func TestURLsDistinctPathsKeepSeparateRows(t *testing.T) {
	res, db, dbc := newResolver(t)

	ents := &record.Entities{
		URLs: []record.URL{{ExpandedURL: "http://a.com/x"}, {ExpandedURL: "http://a.com/y"}},
	}
	urls, err := res.URLs(dbc, 1, ents)
	if err != nil {
		t.Fatalf("URLs: %v", err)
	}
	if want := []types.URL{{URL: "http://a.com/x"}, {URL: "http://a.com/y"}}; !reflect.DeepEqual(urls, want) {
		t.Fatalf("URLs: got %+v want %+v", urls, want)
	}
	if n := countURLs(t, db); n != 2 {
		t.Fatalf("url rows: got %d want 2", n)
	}
}

func TestMentionsDedup(t *testing.T) {
	res, _, dbc := newResolver(t)
	id := int64(5)
	ents := &record.Entities{Mentions: []record.Mention{
		{ID: &id, ScreenName: "five"},
		{ID: &id, ScreenName: "five"},
		{ID: &id, ScreenName: "FIVE"},
		{ScreenName: "noid"},
	}}
	users, err := res.Mentions(dbc, 1, ents)
	if err != nil {
		t.Fatalf("Mentions: %v", err)
	}
	if len(users) != 1 || users[0].ScreenName != "five" {
		t.Fatalf("Mentions: %+v", users)
	}
}

func TestPlace(t *testing.T) {
	res, _, dbc := newResolver(t)
	s := func(v string) *string { return &v }

	complete := &record.Place{
		ID: s("07d9"), FullName: s("Paris, France"), Country: s("France"),
		CountryCode: s("FR"), Name: s("Paris"), PlaceType: s("city"), URL: s("https://api/07d9.json"),
	}
	if p := res.Place(dbc, 1, complete); p == nil || p.Type != "city" {
		t.Fatalf("Place(complete): %+v", p)
	}

	incomplete := *complete
	incomplete.Country = nil
	if p := res.Place(dbc, 1, &incomplete); p != nil {
		t.Fatalf("Place(incomplete): %+v", p)
	}
	if p := res.Place(dbc, 1, nil); p != nil {
		t.Fatalf("Place(nil): %+v", p)
	}
}

func TestMedia(t *testing.T) {
	res, db, dbc := newResolver(t)
	idStr := "901"
	src := int64(77)
	items := []record.Media{
		{IDStr: &idStr, Type: "photo", URL: "http://m/1", DisplayURL: "m/1", ExpandedURL: "http://m/1/x", SourceStatusID: &src},
		{Type: "photo"},
	}
	out := res.Media(dbc, 1, items)
	if len(out) != 1 || out[0].ID != 901 {
		t.Fatalf("Media: %+v", out)
	}
	if out[0].SourceStatusID == nil || *out[0].SourceStatusID != src {
		t.Fatalf("source status: %v", out[0].SourceStatusID)
	}

	// Same id, different attributes: skipped, stored row unchanged.
	changed := []record.Media{{IDStr: &idStr, Type: "video", URL: "http://m/1"}}
	if got := res.Media(dbc, 2, changed); len(got) != 0 {
		t.Fatalf("Media(changed): %+v", got)
	}
	var stored types.Media
	if err := db.First(&stored, 901).Error; err != nil {
		t.Fatalf("load media: %v", err)
	}
	if stored.Type != "photo" {
		t.Fatalf("stored type: %q", stored.Type)
	}

	// Identical attributes resolve to the existing row.
	same := []record.Media{{IDStr: &idStr, Type: "photo", URL: "http://m/1", DisplayURL: "m/1", ExpandedURL: "http://m/1/x"}}
	if got := res.Media(dbc, 3, same); len(got) != 1 {
		t.Fatalf("Media(same): %+v", got)
	}
}
