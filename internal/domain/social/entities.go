package social

// Hashtag is keyed by its lowercase tag text.
type Hashtag struct {
	Tag string `gorm:"primaryKey;size:255" json:"tag"`
}

func (Hashtag) TableName() string { return "hashtag" }

// URL is keyed by the lowercase expanded URL.
type URL struct {
	URL string `gorm:"primaryKey;column:url;size:512" json:"url"`
}

func (URL) TableName() string { return "url" }

type Media struct {
	ID             int64  `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Type           string `gorm:"column:type;size:32" json:"type"`
	URL            string `gorm:"column:url" json:"url"`
	DisplayURL     string `gorm:"column:display_url" json:"display_url"`
	ExpandedURL    string `gorm:"column:expanded_url" json:"expanded_url"`
	SourceStatusID *int64 `gorm:"column:source_status_id" json:"source_status_id,omitempty"`
}

func (Media) TableName() string { return "media" }

// SameContent compares every attribute except SourceStatusID, which is only
// attached after creation.
func (m *Media) SameContent(o *Media) bool {
	return m.ID == o.ID && m.Type == o.Type && m.URL == o.URL &&
		m.DisplayURL == o.DisplayURL && m.ExpandedURL == o.ExpandedURL
}

type Place struct {
	ID          string `gorm:"primaryKey;size:64" json:"id"`
	FullName    string `gorm:"column:full_name" json:"full_name"`
	Country     string `gorm:"column:country" json:"country"`
	CountryCode string `gorm:"column:country_code;size:8" json:"country_code"`
	Name        string `gorm:"column:name" json:"name"`
	Type        string `gorm:"column:place_type;size:32" json:"place_type"`
	URL         string `gorm:"column:url" json:"url"`
}

func (Place) TableName() string { return "place" }
