// Package batch folds a stream of raw records by post id, persists each
// distinct post once and reconciles what was found against what was saved.
package batch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/datatypes"

	"github.com/yungbote/tweetarchive/internal/data/repos/social"
	types "github.com/yungbote/tweetarchive/internal/domain"
	"github.com/yungbote/tweetarchive/internal/domain/ingest"
	"github.com/yungbote/tweetarchive/internal/ingestion/persist"
	"github.com/yungbote/tweetarchive/internal/ingestion/record"
	"github.com/yungbote/tweetarchive/internal/ingestion/source"
	"github.com/yungbote/tweetarchive/internal/observability"
	"github.com/yungbote/tweetarchive/internal/platform/dbctx"
	"github.com/yungbote/tweetarchive/internal/platform/logger"
)

// Processor persists one decoded record.
type Processor interface {
	Process(ctx context.Context, raw *record.Tweet, term string) persist.Result
}

// SummarySink receives the summary of every finished run.
type SummarySink interface {
	PublishSummary(ctx context.Context, s Summary) error
}

// RunObserver receives found/saved totals of every finished run.
type RunObserver interface {
	ObserveRun(found, saved int)
}

type Rejection struct {
	PostID  int64          `json:"post_id"`
	Outcome ingest.Outcome `json:"outcome"`
	Reason  string         `json:"reason,omitempty"`
}

type Summary struct {
	RunID      uuid.UUID `json:"run_id"`
	SearchTerm string    `json:"search_term"`
	Source     string    `json:"source"`
	// Found counts distinct post ids after folding.
	Found      int `json:"found"`
	Saved      int `json:"saved"`
	Duplicates int `json:"duplicates"`
	Malformed  int `json:"malformed"`
	Failed     int `json:"failed"`
	// Undecodable counts input that had no readable post id; it is not
	// part of Found.
	Undecodable int         `json:"undecodable"`
	Rejected    []Rejection `json:"rejected,omitempty"`
	// Diff is Found - Saved.
	Diff       int       `json:"diff"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

type Deps struct {
	Log       *logger.Logger
	Processor Processor

	// Optional.
	Runs     social.IngestRunRepo
	Sinks    []SummarySink
	Observer RunObserver
	Tracer   trace.Tracer
}

type Reconciler struct {
	log      *logger.Logger
	proc     Processor
	runs     social.IngestRunRepo
	sinks    []SummarySink
	observer RunObserver
	tracer   trace.Tracer
}

func New(deps Deps) (*Reconciler, error) {
	if deps.Log == nil || deps.Processor == nil {
		return nil, fmt.Errorf("batch: missing deps")
	}
	return &Reconciler{
		log:      deps.Log.With("component", "BatchReconciler"),
		proc:     deps.Processor,
		runs:     deps.Runs,
		sinks:    deps.Sinks,
		observer: deps.Observer,
		tracer:   observability.Tracer(deps.Tracer),
	}, nil
}

// RunRecords is Run over an in-memory slice.
func (r *Reconciler) RunRecords(ctx context.Context, term string, records []json.RawMessage) Summary {
	return r.Run(ctx, term, source.Slice("memory", records))
}

// Run drains src, folds records by post id (the last record seen for an id
// wins, at the position where the id first appeared) and persists each
// post in that order. It never fails: every problem ends up in the summary.
func (r *Reconciler) Run(ctx context.Context, term string, src source.Source) Summary {
	sum := Summary{
		RunID:      uuid.New(),
		SearchTerm: term,
		Source:     src.Name(),
		StartedAt:  time.Now().UTC(),
	}
	log := r.log.With("run_id", sum.RunID.String(), "search_term", term)
	ctx, span := r.tracer.Start(ctx, "batch.run", trace.WithAttributes(
		attribute.String("run_id", sum.RunID.String()),
		attribute.String("search_term", term),
		attribute.String("source", sum.Source),
	))
	defer span.End()

	order, byID := r.fold(ctx, log, src, &sum)
	sum.Found = len(order)

	for _, id := range order {
		if err := ctx.Err(); err != nil {
			log.Warn("run cancelled, remaining records not persisted", "error", err)
			break
		}
		e := byID[id]
		var res persist.Result
		if e.err != nil {
			log.Error("malformed record", "post_id", id, "error", e.err)
			res = persist.Result{Outcome: ingest.OutcomeMalformed, PostID: id, Err: e.err}
		} else {
			res = r.proc.Process(ctx, e.tw, term)
		}
		switch res.Outcome {
		case ingest.OutcomeCreated:
			sum.Saved++
			continue
		case ingest.OutcomeDuplicateRejected:
			sum.Duplicates++
		case ingest.OutcomeMalformed:
			sum.Malformed++
		default:
			sum.Failed++
		}
		rej := Rejection{PostID: id, Outcome: res.Outcome}
		if res.Err != nil {
			rej.Reason = res.Err.Error()
		}
		sum.Rejected = append(sum.Rejected, rej)
	}

	sum.Diff = sum.Found - sum.Saved
	sum.FinishedAt = time.Now().UTC()
	if sum.Diff != 0 {
		log.Warn("found vs saved mismatch",
			"found", sum.Found,
			"saved", sum.Saved,
			"diff", sum.Diff,
			"duplicates", sum.Duplicates,
			"malformed", sum.Malformed,
			"failed", sum.Failed,
		)
	}
	log.Info("batch reconciled",
		"source", sum.Source,
		"found", sum.Found,
		"saved", sum.Saved,
		"undecodable", sum.Undecodable,
		"elapsed", sum.FinishedAt.Sub(sum.StartedAt).String(),
	)

	span.SetAttributes(
		attribute.Int("found", sum.Found),
		attribute.Int("saved", sum.Saved),
		attribute.Int("diff", sum.Diff),
		attribute.Int("undecodable", sum.Undecodable),
	)

	r.record(context.WithoutCancel(ctx), log, sum)
	return sum
}

// folded is the last record seen for one post id. err is set when the
// record carried a readable id but could not be decoded.
type folded struct {
	tw  *record.Tweet
	err error
}

func (r *Reconciler) fold(ctx context.Context, log *logger.Logger, src source.Source, sum *Summary) ([]int64, map[int64]folded) {
	var order []int64
	byID := map[int64]folded{}
	for {
		raw, err := src.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			log.Error("source read failed, run continues with records read so far", "error", err)
			break
		}
		var id int64
		tw, err := record.Decode(raw)
		if err == nil {
			var ok bool
			if id, ok = tw.PostID(); !ok {
				sum.Undecodable++
				log.Error("record without post id")
				continue
			}
		} else {
			var ok bool
			if id, ok = record.PeekID(raw); !ok {
				sum.Undecodable++
				log.Error("undecodable record", "error", err)
				continue
			}
			tw = nil
		}
		if _, seen := byID[id]; !seen {
			order = append(order, id)
		} else {
			log.Debug("record folded", "post_id", id)
		}
		byID[id] = folded{tw: tw, err: err}
	}
	return order, byID
}

// record writes the ledger row and notifies sinks. Failures here are logged
// and never change the summary.
func (r *Reconciler) record(ctx context.Context, log *logger.Logger, sum Summary) {
	if r.observer != nil {
		r.observer.ObserveRun(sum.Found, sum.Saved)
	}
	if r.runs != nil {
		rejected := make([]int64, 0, len(sum.Rejected))
		for _, rej := range sum.Rejected {
			rejected = append(rejected, rej.PostID)
		}
		ids, _ := json.Marshal(rejected)
		row := &types.IngestRun{
			ID:          sum.RunID,
			SearchTerm:  sum.SearchTerm,
			Source:      sum.Source,
			Found:       sum.Found,
			Saved:       sum.Saved,
			Duplicates:  sum.Duplicates,
			Malformed:   sum.Malformed,
			Failed:      sum.Failed,
			Undecodable: sum.Undecodable,
			RejectedIDs: datatypes.JSON(ids),
			StartedAt:   sum.StartedAt,
			FinishedAt:  sum.FinishedAt,
		}
		if err := r.runs.Create(dbctx.Background(ctx), row); err != nil {
			log.Error("ingest run ledger not written", "error", err)
		}
	}
	for _, s := range r.sinks {
		if err := s.PublishSummary(ctx, sum); err != nil {
			log.Warn("summary not published", "error", err)
		}
	}
}
