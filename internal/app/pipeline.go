package app

import (
	"fmt"

	"github.com/yungbote/tweetarchive/internal/data/aggregates"
	"github.com/yungbote/tweetarchive/internal/ingestion/batch"
	"github.com/yungbote/tweetarchive/internal/ingestion/builder"
	"github.com/yungbote/tweetarchive/internal/ingestion/persist"
	"github.com/yungbote/tweetarchive/internal/ingestion/resolver"
)

// NewCoordinator wires resolver, builder and coordinator over the app's
// repos, reporting into the app's metrics.
func (a *App) NewCoordinator() (*persist.Coordinator, error) {
	res, err := resolver.NewFromRepos(a.Repos, a.Log)
	if err != nil {
		return nil, fmt.Errorf("wire resolver: %w", err)
	}
	return persist.New(persist.Deps{
		DB:       a.DB,
		Log:      a.Log,
		Posts:    a.Repos.Posts,
		Builder:  builder.New(res, a.Log),
		Hooks:    aggregates.NewObservabilityHooks(a.Metrics),
		Outcomes: a.Metrics,
	})
}

// NewReconciler returns an independent pipeline instance. Instances share
// the store and metrics, nothing else.
func (a *App) NewReconciler() (*batch.Reconciler, error) {
	coord, err := a.NewCoordinator()
	if err != nil {
		return nil, err
	}
	var sinks []batch.SummarySink
	if a.Publisher != nil {
		sinks = append(sinks, a.Publisher)
	}
	return batch.New(batch.Deps{
		Log:       a.Log,
		Processor: coord,
		Runs:      a.Repos.IngestRuns,
		Sinks:     sinks,
		Observer:  a.Metrics,
	})
}
