package social

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// IngestRun is the ledger row for one reconciler pass over a source.
type IngestRun struct {
	ID          uuid.UUID      `gorm:"type:varchar(36);primaryKey" json:"id"`
	SearchTerm  string         `gorm:"column:search_term;size:255;not null;index" json:"search_term"`
	Source      string         `gorm:"column:source" json:"source"`
	Found       int            `gorm:"column:found;not null" json:"found"`
	Saved       int            `gorm:"column:saved;not null" json:"saved"`
	Duplicates  int            `gorm:"column:duplicates;not null" json:"duplicates"`
	Malformed   int            `gorm:"column:malformed;not null" json:"malformed"`
	Failed      int            `gorm:"column:failed;not null" json:"failed"`
	Undecodable int            `gorm:"column:undecodable;not null" json:"undecodable"`
	RejectedIDs datatypes.JSON `gorm:"column:rejected_ids" json:"rejected_ids,omitempty"`
	StartedAt   time.Time      `gorm:"column:started_at;not null" json:"started_at"`
	FinishedAt  time.Time      `gorm:"column:finished_at;not null" json:"finished_at"`
}

func (IngestRun) TableName() string { return "ingest_run" }
