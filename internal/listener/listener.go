// Package listener consumes Postgres NOTIFY events on the match_finished
// channel. It holds a dedicated pgx connection (not from the pool) and scores
// the predictions of each match as soon as its final result is stored.
//
// The notification is fired by the trg_match_finished trigger, so scores are
// calculated no matter which path wrote the result: the admin route, the CLI
// or the background auto sync.
package listener

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/albapepper/bolao/internal/config"
	"github.com/albapepper/bolao/internal/seed"
)

const (
	reconnectBackoff = 5 * time.Second
	maxReconnect     = 30 * time.Second
	queueSize        = 256
)

// MatchScorer scores one match. *seed.Runner satisfies it.
type MatchScorer interface {
	CalculateMatch(ctx context.Context, matchID int64) (*seed.SeedResult, error)
}

type Listener struct {
	dbURL   string
	channel string
	scorer  MatchScorer
	queue   chan int64
	logger  *slog.Logger
}

func New(dbURL string, scorer MatchScorer, logger *slog.Logger) *Listener {
	if logger == nil {
		logger = slog.Default()
	}
	return &Listener{
		dbURL:   dbURL,
		channel: config.MatchFinishedChan,
		scorer:  scorer,
		queue:   make(chan int64, queueSize),
		logger:  logger.With("component", "listener"),
	}
}

// Start listens until ctx is cancelled, reconnecting automatically on
// connection loss. Intended to be called with `go`.
func (l *Listener) Start(ctx context.Context) {
	go l.work(ctx)

	b := newBackoff()
	for {
		connected, err := l.listenLoop(ctx)
		if ctx.Err() != nil {
			l.logger.Info("Match listener stopped (context cancelled)")
			return
		}
		// A session that got as far as LISTEN was healthy.
		if connected {
			b.reset()
		}

		delay := b.next()
		l.logger.Error("Match listener disconnected, reconnecting...",
			"error", err, "backoff", delay)

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return
		}
	}
}

// backoff doubles the reconnect delay up to maxReconnect.
type backoff struct {
	delay time.Duration
}

func newBackoff() *backoff {
	return &backoff{delay: reconnectBackoff}
}

func (b *backoff) next() time.Duration {
	d := b.delay
	b.delay = min(b.delay*2, maxReconnect)
	return d
}

func (b *backoff) reset() {
	b.delay = reconnectBackoff
}

// listenLoop runs a single listen session. Returns when the connection drops
// or the context is cancelled; connected reports whether LISTEN succeeded.
func (l *Listener) listenLoop(ctx context.Context) (connected bool, err error) {
	conn, err := pgx.Connect(ctx, l.dbURL)
	if err != nil {
		return false, fmt.Errorf("connect: %w", err)
	}
	defer conn.Close(context.Background())

	if _, err := conn.Exec(ctx, "LISTEN "+pgx.Identifier{l.channel}.Sanitize()); err != nil {
		return false, fmt.Errorf("LISTEN %s: %w", l.channel, err)
	}
	l.logger.Info("Match listener connected", "channel", l.channel)

	for {
		n, err := conn.WaitForNotification(ctx)
		if err != nil {
			return true, fmt.Errorf("wait for notification: %w", err)
		}

		matchID, err := parseMatchID(n.Payload)
		if err != nil {
			l.logger.Warn("Ignoring match_finished payload", "payload", n.Payload, "error", err)
			continue
		}

		select {
		case l.queue <- matchID:
		default:
			// The auto sync picks up anything dropped here.
			l.logger.Warn("Score queue full, dropping match", "match_id", matchID)
		}
	}
}

// work scores queued matches one at a time so season rebuilds never overlap.
func (l *Listener) work(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case id := <-l.queue:
			res, err := l.scorer.CalculateMatch(ctx, id)
			if err != nil {
				l.logger.Warn("Failed to score finished match", "match_id", id, "error", err)
				continue
			}
			l.logger.Info("Finished match scored", "match_id", id,
				"predictions", res.PredictionsScored, "users", res.Users)
		}
	}
}

func parseMatchID(payload string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(payload), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("not a match id: %q", payload)
	}
	return id, nil
}
