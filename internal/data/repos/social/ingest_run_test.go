package social

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/yungbote/tweetarchive/internal/data/repos/testutil"
	types "github.com/yungbote/tweetarchive/internal/domain"
	"github.com/yungbote/tweetarchive/internal/platform/dbctx"
	"gorm.io/datatypes"
)

func TestIngestRunRepo(t *testing.T) {
	db := testutil.DB(t)
	repo := NewIngestRunRepo(db, testutil.Logger(t))
	dbc := dbctx.Background(context.Background())

	start := time.Now().UTC()
	run := &types.IngestRun{
		SearchTerm:  "go",
		Source:      "testdata",
		Found:       5,
		Saved:       4,
		Malformed:   1,
		RejectedIDs: datatypes.JSON(`[3]`),
		StartedAt:   start,
		FinishedAt:  start.Add(time.Second),
	}
	if err := repo.Create(dbc, run); err != nil || run.ID == uuid.Nil {
		t.Fatalf("Create: err=%v id=%s", err, run.ID)
	}
	got, err := repo.GetByID(dbc, run.ID)
	if err != nil || got == nil || got.Saved != 4 || string(got.RejectedIDs) != `[3]` {
		t.Fatalf("GetByID: err=%v row=%+v", err, got)
	}
	if rows, err := repo.ListByTerm(dbc, "go", 10); err != nil || len(rows) != 1 {
		t.Fatalf("ListByTerm: err=%v len=%d", err, len(rows))
	}
	if rows, err := repo.ListByTerm(dbc, "", 10); err != nil || len(rows) != 0 {
		t.Fatalf("ListByTerm empty: err=%v len=%d", err, len(rows))
	}
}
