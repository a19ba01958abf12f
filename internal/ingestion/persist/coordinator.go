// Package persist stores candidate post trees atomically and turns every
// failure into an Outcome.
package persist

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/yungbote/tweetarchive/internal/data/aggregates"
	"github.com/yungbote/tweetarchive/internal/data/repos/social"
	types "github.com/yungbote/tweetarchive/internal/domain"
	"github.com/yungbote/tweetarchive/internal/domain/ingest"
	"github.com/yungbote/tweetarchive/internal/ingestion/builder"
	"github.com/yungbote/tweetarchive/internal/ingestion/record"
	"github.com/yungbote/tweetarchive/internal/observability"
	"github.com/yungbote/tweetarchive/internal/platform/dbctx"
	"github.com/yungbote/tweetarchive/internal/platform/logger"
)

// Result is the terminal state of one record. Post is set only when
// Outcome is Created.
type Result struct {
	Outcome ingest.Outcome
	PostID  int64
	Post    *types.Post
	Err     error
}

// OutcomeObserver receives one call per processed record.
type OutcomeObserver interface {
	ObserveOutcome(outcome ingest.Outcome, dur time.Duration)
}

type noopObserver struct{}

func (noopObserver) ObserveOutcome(ingest.Outcome, time.Duration) {}

type Deps struct {
	DB      *gorm.DB
	Log     *logger.Logger
	Posts   social.PostRepo
	Builder *builder.Builder

	// Optional.
	Runner   aggregates.TxRunner
	Hooks    aggregates.Hooks
	Outcomes OutcomeObserver
	Tracer   trace.Tracer
}

type Coordinator struct {
	base     aggregates.BaseDeps
	log      *logger.Logger
	posts    social.PostRepo
	builder  *builder.Builder
	outcomes OutcomeObserver
	tracer   trace.Tracer
}

func New(deps Deps) (*Coordinator, error) {
	if deps.DB == nil || deps.Log == nil || deps.Posts == nil || deps.Builder == nil {
		return nil, fmt.Errorf("persist: missing deps")
	}
	if deps.Outcomes == nil {
		deps.Outcomes = noopObserver{}
	}
	return &Coordinator{
		base: aggregates.BaseDeps{
			DB:     deps.DB,
			Log:    deps.Log,
			Runner: deps.Runner,
			Hooks:  deps.Hooks,
		},
		log:      deps.Log.With("component", "PersistenceCoordinator"),
		posts:    deps.Posts,
		builder:  deps.Builder,
		outcomes: deps.Outcomes,
		tracer:   observability.Tracer(deps.Tracer),
	}, nil
}

// Process builds the candidate tree for raw and persists it.
func (c *Coordinator) Process(ctx context.Context, raw *record.Tweet, term string) (res Result) {
	start := time.Now()
	id, _ := raw.PostID()
	ctx, span := c.tracer.Start(ctx, "persist.process", trace.WithAttributes(
		attribute.Int64("post_id", id),
		attribute.String("search_term", term),
	))
	defer func() {
		if p := recover(); p != nil {
			res = c.classify(id, ingest.NewError(ingest.CodeUnexpected, "persist.process", fmt.Sprintf("panic: %v", p), nil))
		}
		c.outcomes.ObserveOutcome(res.Outcome, time.Since(start))
		endSpan(span, res)
	}()

	cand, err := c.builder.Build(dbctx.Background(ctx), raw, term, nil)
	if err != nil {
		return c.classify(id, aggregates.MapError("persist.build", err))
	}
	return c.persist(ctx, cand)
}

// Persist writes an already built candidate.
func (c *Coordinator) Persist(ctx context.Context, cand *builder.Candidate) (res Result) {
	start := time.Now()
	var id int64
	if cand != nil {
		id = cand.Post.ID
	}
	defer func() {
		if p := recover(); p != nil {
			res = c.classify(id, ingest.NewError(ingest.CodeUnexpected, "persist.post", fmt.Sprintf("panic: %v", p), nil))
		}
		c.outcomes.ObserveOutcome(res.Outcome, time.Since(start))
	}()
	if cand == nil {
		return c.classify(0, ingest.Malformed("persist.post", "nil candidate"))
	}
	return c.persist(ctx, cand)
}

func (c *Coordinator) persist(ctx context.Context, cand *builder.Candidate) Result {
	var stored *types.Post
	err := aggregates.ExecuteWrite(ctx, c.base, "persist.post", func(dbc dbctx.Context) error {
		p, err := c.store(dbc, cand, true)
		stored = p
		return err
	})
	if err != nil {
		return c.classify(cand.Post.ID, err)
	}
	c.log.Debug("post created", "post_id", cand.Post.ID, "retweet_depth", cand.Depth()-1)
	return Result{Outcome: ingest.OutcomeCreated, PostID: cand.Post.ID, Post: stored}
}

// store writes the retweet chain bottom-up, then the post row, then its
// relations. A retweet target that is already stored is only referenced.
func (c *Coordinator) store(dbc dbctx.Context, cand *builder.Candidate, top bool) (*types.Post, error) {
	var retweet *types.Post
	if cand.Retweet != nil {
		rt, err := c.store(dbc, cand.Retweet, false)
		if err != nil {
			return nil, err
		}
		retweet = rt
	}

	post := cand.Post
	if top {
		if err := c.posts.Create(dbc, &post); err != nil {
			return nil, err
		}
	} else {
		created, err := c.posts.CreateIfAbsent(dbc, &post)
		if err != nil {
			return nil, err
		}
		if !created {
			c.log.Debug("retweet target already stored", "post_id", post.ID)
			return &post, nil
		}
	}
	if err := c.posts.AttachRelations(dbc, &post, cand.Relations); err != nil {
		return nil, err
	}

	post.Author = cand.Author
	post.Place = cand.Place
	post.ReplyToUser = cand.ReplyTo
	post.Retweet = retweet
	post.Hashtags = cand.Relations.Hashtags
	post.URLs = cand.Relations.URLs
	post.Mentions = cand.Relations.Mentions
	post.Media = cand.Relations.Media
	return &post, nil
}

func (c *Coordinator) classify(id int64, err error) Result {
	err = aggregates.MapError("persist.post", err)
	outcome := ingest.OutcomeFor(err)
	switch outcome {
	case ingest.OutcomeDuplicateRejected:
		c.log.Warn("duplicate post rejected", "post_id", id)
	case ingest.OutcomeMalformed:
		if id != 0 {
			c.log.Error("malformed record", "post_id", id, "error", err)
		} else {
			c.log.Error("malformed record", "error", err)
		}
	default:
		c.log.Error("post not persisted", "post_id", id, "error", err)
	}
	return Result{Outcome: outcome, PostID: id, Err: err}
}

func endSpan(span trace.Span, res Result) {
	span.SetAttributes(attribute.String("outcome", res.Outcome.String()))
	if res.Outcome == ingest.OutcomeUnexpectedFailure && res.Err != nil {
		span.RecordError(res.Err)
		span.SetStatus(codes.Error, res.Err.Error())
	}
	span.End()
}
