package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/yungbote/tweetarchive/internal/app"
	"github.com/yungbote/tweetarchive/internal/ingestion/batch"
	"github.com/yungbote/tweetarchive/internal/ingestion/source"
	"github.com/yungbote/tweetarchive/internal/platform/dbctx"
)

const usage = `usage: tweetarchive <command> [flags]

commands:
  migrate                                  create or update the schema
  load -term T -dir D | -manifest F        ingest record files
  ids  -term T [-date YYYY-MM-DD] [-user N] print the stored id window
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var err error
	switch os.Args[1] {
	case "migrate":
		err = runMigrate()
	case "load":
		err = runLoad(ctx, os.Args[2:])
	case "ids":
		err = runIDs(ctx, os.Args[2:])
	case "-h", "--help", "help":
		fmt.Print(usage)
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", os.Args[1], usage)
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", os.Args[1], err)
		os.Exit(1)
	}
}

func runMigrate() error {
	application, err := app.New()
	if err != nil {
		return fmt.Errorf("init app: %w", err)
	}
	defer application.Close()
	if application.Cfg.AutoMigrate {
		application.Log.Info("schema up to date", "driver", application.Store.Driver())
		return nil
	}
	return application.Store.AutoMigrateAll()
}

type loadJob struct {
	term string
	path string
}

func runLoad(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("load", flag.ExitOnError)
	term := fs.String("term", "", "search term the records were collected for")
	dir := fs.String("dir", "", "directory of *.json record files")
	manifest := fs.String("manifest", "", "YAML manifest listing term/path sources")
	metricsOut := fs.String("metrics-out", "", "write Prometheus text metrics to this file when done")
	_ = fs.Parse(args)

	var jobs []loadJob
	switch {
	case *manifest != "":
		m, err := app.LoadManifest(*manifest)
		if err != nil {
			return err
		}
		for _, s := range m.Sources {
			jobs = append(jobs, loadJob{term: s.Term, path: s.Path})
		}
	case strings.TrimSpace(*term) != "" && strings.TrimSpace(*dir) != "":
		jobs = append(jobs, loadJob{term: strings.TrimSpace(*term), path: *dir})
	default:
		return fmt.Errorf("either -manifest or both -term and -dir are required")
	}

	application, err := app.New()
	if err != nil {
		return fmt.Errorf("init app: %w", err)
	}
	defer application.Close()

	summaries := make([]batch.Summary, len(jobs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(application.Cfg.IngestConcurrency)
	for i, job := range jobs {
		g.Go(func() error {
			src, err := source.Dir(job.path, application.Log)
			if err != nil {
				return fmt.Errorf("source %s: %w", job.path, err)
			}
			rec, err := application.NewReconciler()
			if err != nil {
				return err
			}
			summaries[i] = rec.Run(gctx, job.term, src)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	for _, s := range summaries {
		if err := enc.Encode(s); err != nil {
			return err
		}
	}

	if *metricsOut != "" {
		application.Metrics.CollectDBStats(application.Log, application.DB)
		if err := application.Metrics.WriteFile(*metricsOut); err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}
	}
	return nil
}

func runIDs(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("ids", flag.ExitOnError)
	term := fs.String("term", "", "search term")
	date := fs.String("date", "", "upper bound day (YYYY-MM-DD), inclusive")
	user := fs.Int64("user", 0, "also print the first and last stored post of this user id")
	_ = fs.Parse(args)

	if strings.TrimSpace(*term) == "" {
		return fmt.Errorf("-term is required")
	}

	application, err := app.New()
	if err != nil {
		return fmt.Errorf("init app: %w", err)
	}
	defer application.Close()

	dbc := dbctx.Background(ctx)
	posts := application.Repos.Posts

	newest, ok, err := posts.NewestIDForTerm(dbc, *term)
	if err != nil {
		return err
	}
	printID("since_id", newest, ok)

	if *date != "" {
		day, err := time.Parse("2006-01-02", *date)
		if err != nil {
			return fmt.Errorf("invalid -date: %w", err)
		}
		// The window covers the whole day.
		end := day.Add(24*time.Hour - time.Nanosecond)
		oldest, ok, err := posts.OldestIDOnOrBefore(dbc, *term, end)
		if err != nil {
			return err
		}
		printID("oldest_on_or_before", oldest, ok)
		latest, ok, err := posts.NewestIDOnOrBefore(dbc, *term, end)
		if err != nil {
			return err
		}
		printID("max_id", latest, ok)
	}

	if *user != 0 {
		first, err := posts.FirstByUser(dbc, *user)
		if err != nil {
			return err
		}
		last, err := posts.LastByUser(dbc, *user)
		if err != nil {
			return err
		}
		if first != nil {
			fmt.Printf("first_by_user=%d (%s)\n", first.ID, first.Date.Format(time.RFC3339))
		}
		if last != nil {
			fmt.Printf("last_by_user=%d (%s)\n", last.ID, last.Date.Format(time.RFC3339))
		}
	}
	return nil
}

func printID(name string, id int64, ok bool) {
	if !ok {
		fmt.Printf("%s=none\n", name)
		return
	}
	fmt.Printf("%s=%d\n", name, id)
}
