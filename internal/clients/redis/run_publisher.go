package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/tweetarchive/internal/ingestion/batch"
	"github.com/yungbote/tweetarchive/internal/platform/logger"
)

const DefaultChannel = "tweetarchive.runs"

// RunPublisher announces finished reconciler runs on a pub/sub channel.
type RunPublisher interface {
	batch.SummarySink
	Close() error
}

type runPublisher struct {
	log     *logger.Logger
	rdb     *goredis.Client
	channel string
}

func NewRunPublisher(log *logger.Logger, addr, channel string) (RunPublisher, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}
	channel = strings.TrimSpace(channel)
	if channel == "" {
		channel = DefaultChannel
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &runPublisher{
		log:     log.With("service", "RedisRunPublisher", "channel", channel),
		rdb:     rdb,
		channel: channel,
	}, nil
}

func (p *runPublisher) PublishSummary(ctx context.Context, s batch.Summary) error {
	if p == nil || p.rdb == nil {
		return fmt.Errorf("redis run publisher not initialized")
	}
	raw, err := json.Marshal(s)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := p.rdb.Publish(ctx, p.channel, raw).Err(); err != nil {
		return fmt.Errorf("redis publish: %w", err)
	}
	p.log.Debug("run summary published", "run_id", s.RunID.String())
	return nil
}

func (p *runPublisher) Close() error {
	if p == nil || p.rdb == nil {
		return nil
	}
	return p.rdb.Close()
}
