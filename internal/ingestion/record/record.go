// Package record holds the upstream JSON shape of a post record. Optional
// blocks are pointers or slices; a nil value means the feature is absent.
package record

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/yungbote/tweetarchive/internal/domain/ingest"
)

// TimeLayout is the upstream created_at format.
const TimeLayout = "Mon Jan 02 15:04:05 +0000 2006"

type Tweet struct {
	ID        *int64  `json:"id"`
	IDStr     *string `json:"id_str"`
	Text      *string `json:"text"`
	FullText  *string `json:"full_text"`
	CreatedAt *string `json:"created_at"`
	User      *User   `json:"user"`

	Entities    *Entities    `json:"entities"`
	Place       *Place       `json:"place"`
	Coordinates *Coordinates `json:"coordinates"`

	InReplyToUserID     *int64  `json:"in_reply_to_user_id"`
	InReplyToScreenName *string `json:"in_reply_to_screen_name"`
	InReplyToStatusID   *int64  `json:"in_reply_to_status_id"`

	RetweetedStatus *Tweet `json:"retweeted_status"`
}

type User struct {
	ID          *int64  `json:"id"`
	ScreenName  *string `json:"screen_name"`
	Name        *string `json:"name"`
	Description *string `json:"description"`
	URL         *string `json:"url"`
	Location    *string `json:"location"`
	Followers   *int    `json:"followers_count"`
	Friends     *int    `json:"friends_count"`
	Listed      *int    `json:"listed_count"`
	Statuses    *int    `json:"statuses_count"`
	CreatedAt   *string `json:"created_at"`
}

type Entities struct {
	Hashtags []Hashtag `json:"hashtags"`
	URLs     []URL     `json:"urls"`
	Mentions []Mention `json:"user_mentions"`
	Media    []Media   `json:"media"`
}

type Hashtag struct {
	Text string `json:"text"`
}

type URL struct {
	ExpandedURL string `json:"expanded_url"`
}

type Mention struct {
	ID         *int64 `json:"id"`
	ScreenName string `json:"screen_name"`
}

type Media struct {
	ID             *int64  `json:"id"`
	IDStr          *string `json:"id_str"`
	Type           string  `json:"type"`
	URL            string  `json:"url"`
	DisplayURL     string  `json:"display_url"`
	ExpandedURL    string  `json:"expanded_url"`
	SourceStatusID *int64  `json:"source_status_id"`
}

type Place struct {
	ID          *string `json:"id"`
	FullName    *string `json:"full_name"`
	Country     *string `json:"country"`
	CountryCode *string `json:"country_code"`
	Name        *string `json:"name"`
	PlaceType   *string `json:"place_type"`
	URL         *string `json:"url"`
}

// Coordinates is a GeoJSON point: [longitude, latitude].
type Coordinates struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates"`
}

// Decode parses one raw record. Only JSON that cannot be read at all is an
// error here; missing fields are judged later.
func Decode(raw json.RawMessage) (*Tweet, error) {
	var t Tweet
	if err := json.Unmarshal(raw, &t); err != nil {
		return nil, ingest.Wrap(ingest.CodeMalformed, "record.decode", err)
	}
	return &t, nil
}

// PeekID reads only id/id_str from a record whose full decode failed.
// Both keys may hold a number or a numeric string.
func PeekID(raw json.RawMessage) (int64, bool) {
	var head struct {
		ID    json.RawMessage `json:"id"`
		IDStr json.RawMessage `json:"id_str"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return 0, false
	}
	for _, v := range []json.RawMessage{head.ID, head.IDStr} {
		if id, ok := looseInt(v); ok {
			return id, true
		}
	}
	return 0, false
}

func looseInt(v json.RawMessage) (int64, bool) {
	s := strings.Trim(strings.TrimSpace(string(v)), `"`)
	if s == "" {
		return 0, false
	}
	n, err := strconv.ParseInt(s, 10, 64)
	return n, err == nil && n != 0
}

// PostID returns id, falling back to a numeric id_str.
func (t *Tweet) PostID() (int64, bool) {
	if t == nil {
		return 0, false
	}
	return pickID(t.ID, t.IDStr)
}

// Body returns text, or full_text for extended-mode payloads.
func (t *Tweet) Body() (string, bool) {
	if t == nil {
		return "", false
	}
	if t.Text != nil {
		return *t.Text, true
	}
	if t.FullText != nil {
		return *t.FullText, true
	}
	return "", false
}

// Validate checks the mandatory fields and returns the parsed timestamp.
func (t *Tweet) Validate() (int64, time.Time, error) {
	const op = "record.validate"
	id, ok := t.PostID()
	if !ok {
		return 0, time.Time{}, ingest.Malformed(op, "missing post id")
	}
	if _, ok := t.Body(); !ok {
		return id, time.Time{}, ingest.Malformed(op, "post %d has no text", id)
	}
	if t.CreatedAt == nil {
		return id, time.Time{}, ingest.Malformed(op, "post %d has no created_at", id)
	}
	date, err := ParseTime(*t.CreatedAt)
	if err != nil {
		return id, time.Time{}, ingest.NewError(ingest.CodeMalformed, op, "post created_at unparseable", err)
	}
	if t.User == nil || t.User.ID == nil || *t.User.ID == 0 {
		return id, time.Time{}, ingest.Malformed(op, "post %d has no author", id)
	}
	return id, date, nil
}

// LatLon swaps the GeoJSON [lon, lat] order.
func (t *Tweet) LatLon() (lat, lon float64, ok bool) {
	if t == nil || t.Coordinates == nil || len(t.Coordinates.Coordinates) < 2 {
		return 0, 0, false
	}
	return t.Coordinates.Coordinates[1], t.Coordinates.Coordinates[0], true
}

// HasProfile reports whether the payload carries more than the stub fields.
func (u *User) HasProfile() bool {
	if u == nil {
		return false
	}
	return u.Name != nil || u.Description != nil || u.URL != nil || u.Location != nil ||
		u.Followers != nil || u.Friends != nil || u.Listed != nil || u.Statuses != nil ||
		u.CreatedAt != nil
}

// MediaID returns id, falling back to a numeric id_str.
func (m *Media) MediaID() (int64, bool) {
	return pickID(m.ID, m.IDStr)
}

func ParseTime(s string) (time.Time, error) {
	ts, err := time.Parse(TimeLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, err
	}
	return ts.UTC(), nil
}

func pickID(id *int64, idStr *string) (int64, bool) {
	if id != nil && *id != 0 {
		return *id, true
	}
	if idStr != nil {
		n, err := strconv.ParseInt(strings.TrimSpace(*idStr), 10, 64)
		if err == nil && n != 0 {
			return n, true
		}
	}
	return 0, false
}

func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
