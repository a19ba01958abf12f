package batch

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/yungbote/tweetarchive/internal/data/repos/social"
	"github.com/yungbote/tweetarchive/internal/data/repos/testutil"
	"github.com/yungbote/tweetarchive/internal/domain/ingest"
	"github.com/yungbote/tweetarchive/internal/ingestion/builder"
	"github.com/yungbote/tweetarchive/internal/ingestion/persist"
	"github.com/yungbote/tweetarchive/internal/ingestion/record"
	"github.com/yungbote/tweetarchive/internal/ingestion/resolver"
)

type pipeline struct {
	repos social.Repos
	rec   *Reconciler
	sink  *spySink
}

type spySink struct {
	got []Summary
	err error
}

func (s *spySink) PublishSummary(_ context.Context, sum Summary) error {
	s.got = append(s.got, sum)
	return s.err
}

func newPipeline(t *testing.T) *pipeline {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	repos := social.NewRepos(db, log)
	res, err := resolver.NewFromRepos(repos, log)
	if err != nil {
		t.Fatalf("resolver.NewFromRepos: %v", err)
	}
	coord, err := persist.New(persist.Deps{DB: db, Log: log, Posts: repos.Posts, Builder: builder.New(res, log)})
	if err != nil {
		t.Fatalf("persist.New: %v", err)
	}
	sink := &spySink{err: errors.New("sink offline")}
	rec, err := New(Deps{Log: log, Processor: coord, Runs: repos.IngestRuns, Sinks: []SummarySink{sink}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return &pipeline{repos: repos, rec: rec, sink: sink}
}

func TestRunPartialFailureIsolation(t *testing.T) {
	ctx := context.Background()
	p := newPipeline(t)

	records := []json.RawMessage{
		testutil.Raw(t, testutil.Tweet(1, 10, "one")),
		testutil.Raw(t, testutil.Tweet(2, 10, "two")),
		testutil.Raw(t, testutil.Tweet(3, 10, "three").Without("user")),
		testutil.Raw(t, testutil.Tweet(4, 11, "four")),
		testutil.Raw(t, testutil.Tweet(5, 12, "five")),
	}
	sum := p.rec.RunRecords(ctx, "go", records)

	if sum.Found != 5 || sum.Saved != 4 || sum.Malformed != 1 || sum.Diff != 1 {
		t.Fatalf("summary: found=%d saved=%d malformed=%d diff=%d", sum.Found, sum.Saved, sum.Malformed, sum.Diff)
	}
	if len(sum.Rejected) != 1 || sum.Rejected[0].PostID != 3 || sum.Rejected[0].Outcome != ingest.OutcomeMalformed {
		t.Fatalf("rejected: %+v", sum.Rejected)
	}

	dbc := testutil.DBC(ctx)
	for _, id := range []int64{1, 2, 4, 5} {
		got, err := p.repos.Posts.GetByID(dbc, id)
		if err != nil || got == nil {
			t.Fatalf("post %d: got=%v err=%v", id, got, err)
		}
	}

	run, err := p.repos.IngestRuns.GetByID(dbc, sum.RunID)
	if err != nil || run == nil {
		t.Fatalf("ingest run: run=%v err=%v", run, err)
	}
	if run.Saved != 4 {
		t.Fatalf("run saved: got %d want 4", run.Saved)
	}
	var rejected []int64
	if err := json.Unmarshal(run.RejectedIDs, &rejected); err != nil {
		t.Fatalf("rejected ids: %v", err)
	}
	if !reflect.DeepEqual(rejected, []int64{3}) {
		t.Fatalf("rejected ids: got %v want [3]", rejected)
	}

	// A failing sink does not change the outcome.
	if len(p.sink.got) != 1 || p.sink.got[0].RunID != sum.RunID {
		t.Fatalf("sink: %+v", p.sink.got)
	}
}

func TestRunMistypedFieldIsMalformedNotLost(t *testing.T) {
	ctx := context.Background()
	p := newPipeline(t)

	records := []json.RawMessage{
		testutil.Raw(t, testutil.Tweet(1, 10, "fine")),
		testutil.Raw(t, testutil.Tweet(2, 10, "reply").With("in_reply_to_status_id", "12345")),
	}
	sum := p.rec.RunRecords(ctx, "go", records)

	if sum.Found != 2 || sum.Saved != 1 || sum.Malformed != 1 || sum.Diff != 1 {
		t.Fatalf("summary: found=%d saved=%d malformed=%d diff=%d", sum.Found, sum.Saved, sum.Malformed, sum.Diff)
	}
	if sum.Undecodable != 0 {
		t.Fatalf("undecodable: got %d want 0", sum.Undecodable)
	}
	if len(sum.Rejected) != 1 || sum.Rejected[0].PostID != 2 || sum.Rejected[0].Outcome != ingest.OutcomeMalformed {
		t.Fatalf("rejected: %+v", sum.Rejected)
	}
	if sum.Rejected[0].Reason == "" {
		t.Fatalf("rejection without reason")
	}
	if got, err := p.repos.Posts.GetByID(testutil.DBC(ctx), 2); err == nil && got != nil {
		t.Fatalf("post 2 should not be stored: %+v", got)
	}
}

func TestRunFoldsByID(t *testing.T) {
	ctx := context.Background()
	p := newPipeline(t)

	records := []json.RawMessage{
		testutil.Raw(t, testutil.Tweet(9, 10, "A")),
		testutil.Raw(t, testutil.Tweet(9, 10, "B")),
	}
	sum := p.rec.RunRecords(ctx, "go", records)
	if sum.Found != 1 || sum.Saved != 1 || sum.Diff != 0 {
		t.Fatalf("summary: found=%d saved=%d diff=%d", sum.Found, sum.Saved, sum.Diff)
	}

	got, err := p.repos.Posts.GetByID(testutil.DBC(ctx), 9)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Text != "B" {
		t.Fatalf("text: got %q want %q", got.Text, "B")
	}
}

func TestRunSecondPassIsAllDuplicates(t *testing.T) {
	ctx := context.Background()
	p := newPipeline(t)

	records := []json.RawMessage{
		testutil.Raw(t, testutil.Tweet(1, 10, "one")),
		testutil.Raw(t, testutil.Tweet(2, 10, "two")),
	}
	if first := p.rec.RunRecords(ctx, "go", records); first.Saved != 2 {
		t.Fatalf("first pass saved: got %d want 2", first.Saved)
	}

	second := p.rec.RunRecords(ctx, "go", records)
	if second.Found != 2 || second.Saved != 0 || second.Duplicates != 2 || second.Diff != 2 {
		t.Fatalf("second pass: found=%d saved=%d duplicates=%d diff=%d",
			second.Found, second.Saved, second.Duplicates, second.Diff)
	}
}

type orderProcessor struct {
	seen []string
}

func (o *orderProcessor) Process(_ context.Context, raw *record.Tweet, _ string) persist.Result {
	body, _ := raw.Body()
	o.seen = append(o.seen, body)
	id, _ := raw.PostID()
	return persist.Result{Outcome: ingest.OutcomeCreated, PostID: id}
}

func TestRunOrderAndUndecodable(t *testing.T) {
	proc := &orderProcessor{}
	rec, err := New(Deps{Log: testutil.Logger(t), Processor: proc})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	records := []json.RawMessage{
		testutil.Raw(t, testutil.Tweet(1, 10, "first")),
		testutil.Raw(t, testutil.Tweet(2, 10, "second")),
		json.RawMessage(`{"text": "no id"}`),
		json.RawMessage(`not json`),
		testutil.Raw(t, testutil.Tweet(1, 10, "first-updated")),
		testutil.Raw(t, testutil.Tweet(3, 10, "third")),
	}
	sum := rec.RunRecords(context.Background(), "go", records)
	if want := []string{"first-updated", "second", "third"}; !reflect.DeepEqual(proc.seen, want) {
		t.Fatalf("order: got %v want %v", proc.seen, want)
	}
	if sum.Found != 3 || sum.Saved != 3 || sum.Undecodable != 2 {
		t.Fatalf("summary: found=%d saved=%d undecodable=%d", sum.Found, sum.Saved, sum.Undecodable)
	}
}

func TestRunRecordsSpan(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	rec, err := New(Deps{Log: testutil.Logger(t), Processor: &orderProcessor{}, Tracer: tp.Tracer("batch_test")})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	sum := rec.RunRecords(context.Background(), "golang", []json.RawMessage{
		testutil.Raw(t, testutil.Tweet(1, 10, "x")),
		json.RawMessage(`not json`),
	})

	spans := sr.Ended()
	if len(spans) != 1 || spans[0].Name() != "batch.run" {
		t.Fatalf("ended spans: %d", len(spans))
	}
	attrs := map[attribute.Key]attribute.Value{}
	for _, kv := range spans[0].Attributes() {
		attrs[kv.Key] = kv.Value
	}
	if got := attrs["run_id"].AsString(); got != sum.RunID.String() {
		t.Fatalf("run_id: got %q want %q", got, sum.RunID)
	}
	if got := attrs["search_term"].AsString(); got != "golang" {
		t.Fatalf("search_term: %q", got)
	}
	if attrs["found"].AsInt64() != 1 || attrs["saved"].AsInt64() != 1 || attrs["undecodable"].AsInt64() != 1 {
		t.Fatalf("counts: found=%v saved=%v undecodable=%v",
			attrs["found"].Emit(), attrs["saved"].Emit(), attrs["undecodable"].Emit())
	}
}

func TestRunCancelled(t *testing.T) {
	proc := &orderProcessor{}
	rec, err := New(Deps{Log: testutil.Logger(t), Processor: proc})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	sum := rec.RunRecords(ctx, "go", []json.RawMessage{testutil.Raw(t, testutil.Tweet(1, 10, "x"))})
	if sum.Found != 0 || len(proc.seen) != 0 {
		t.Fatalf("cancelled run: found=%d seen=%v", sum.Found, proc.seen)
	}
}
