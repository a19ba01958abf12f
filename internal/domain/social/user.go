package social

import "time"

// User starts as a stub (id and handle) and is enriched in place whenever a
// fuller profile shows up. Enrichment never blanks a stored field.
type User struct {
	ID            int64      `gorm:"primaryKey;autoIncrement:false" json:"id"`
	ScreenName    string     `gorm:"column:screen_name;size:64;index" json:"screen_name"`
	Name          string     `gorm:"column:name" json:"name,omitempty"`
	Description   string     `gorm:"column:description" json:"description,omitempty"`
	Followers     *int       `gorm:"column:followers" json:"followers,omitempty"`
	Following     *int       `gorm:"column:following" json:"following,omitempty"`
	Listed        *int       `gorm:"column:listed" json:"listed,omitempty"`
	StatusesCount *int       `gorm:"column:statuses_count" json:"statuses_count,omitempty"`
	JoinedAt      *time.Time `gorm:"column:joined_at" json:"joined_at,omitempty"`
	URL           string     `gorm:"column:url" json:"url,omitempty"`
	Location      string     `gorm:"column:location" json:"location,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (User) TableName() string { return "twitter_user" }

// IsStub reports whether only the identity fields are known.
func (u *User) IsStub() bool {
	return u.Name == "" && u.Description == "" && u.URL == "" && u.Location == "" &&
		u.Followers == nil && u.Following == nil && u.Listed == nil &&
		u.StatusesCount == nil && u.JoinedAt == nil
}
