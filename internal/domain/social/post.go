package social

import "time"

// Post is one stored status. Its ID is the upstream status id and the row is
// never modified after it is created.
type Post struct {
	ID         int64     `gorm:"primaryKey;autoIncrement:false" json:"id"`
	UserID     int64     `gorm:"column:user_id;not null;index" json:"user_id"`
	Author     *User     `gorm:"foreignKey:UserID;references:ID" json:"author,omitempty"`
	Text       string    `gorm:"column:text;not null" json:"text"`
	Date       time.Time `gorm:"column:date;not null;index" json:"date"`
	SearchTerm string    `gorm:"column:search_term;size:255;not null;index" json:"search_term"`

	Lat *float64 `gorm:"column:lat" json:"lat,omitempty"`
	Lon *float64 `gorm:"column:lon" json:"lon,omitempty"`

	PlaceID *string `gorm:"column:place_id;size:64;index" json:"place_id,omitempty"`
	Place   *Place  `gorm:"foreignKey:PlaceID;references:ID" json:"place,omitempty"`

	ReplyToUserID *int64 `gorm:"column:reply_to_user_id;index" json:"reply_to_user_id,omitempty"`
	ReplyToUser   *User  `gorm:"foreignKey:ReplyToUserID;references:ID" json:"reply_to_user,omitempty"`
	// Stored verbatim; the parent status may never be collected.
	ReplyToPostID *int64 `gorm:"column:reply_to_post_id;index" json:"reply_to_post_id,omitempty"`

	RetweetID *int64 `gorm:"column:retweet_id;index" json:"retweet_id,omitempty"`
	Retweet   *Post  `gorm:"foreignKey:RetweetID;references:ID" json:"retweet,omitempty"`

	Hashtags []Hashtag `gorm:"many2many:post_hashtags;joinForeignKey:PostID;joinReferences:Tag" json:"hashtags,omitempty"`
	URLs     []URL     `gorm:"many2many:post_urls;joinForeignKey:PostID;joinReferences:URL" json:"urls,omitempty"`
	Mentions []User    `gorm:"many2many:post_mentions;joinForeignKey:PostID;joinReferences:UserID" json:"mentions,omitempty"`
	Media    []Media   `gorm:"many2many:post_media;joinForeignKey:PostID;joinReferences:MediaID" json:"media,omitempty"`

	IngestedAt time.Time `gorm:"column:ingested_at;autoCreateTime" json:"ingested_at"`
}

func (Post) TableName() string { return "post" }
