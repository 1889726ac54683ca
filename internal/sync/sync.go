// Package sync pushes local document changes to the remote gist in the
// background. Mutations signal the store's change channel; the worker
// debounces those signals and writes the latest snapshot. A cron
// schedule additionally flushes on a fixed cadence so a long-lived
// process never sits on unsaved state when the debounce signal is lost
// to a crashed save.
package sync

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"gistcal/internal/model"
	"gistcal/internal/store"
)

// Saver persists a document snapshot somewhere durable.
type Saver interface {
	Save(ctx context.Context, doc model.Document) error
}

// Options tune the background worker.
type Options struct {
	// Debounce is how long to wait after a change signal before
	// saving, coalescing bursts of edits into one write.
	Debounce time.Duration
	// FlushCron is an optional cron expression for periodic flushes
	// regardless of change signals. Empty disables the schedule.
	FlushCron string
}

// Worker watches a store and saves snapshots through one or more
// savers. Save failures are logged and dropped; the local state stays
// authoritative and the next change retries.
type Worker struct {
	st     *store.Store
	savers []Saver
	opts   Options
	log    zerolog.Logger

	dirty bool
	cron  *cron.Cron
	tick  chan struct{}
}

func New(st *store.Store, log zerolog.Logger, opts Options, savers ...Saver) *Worker {
	if opts.Debounce <= 0 {
		opts.Debounce = 2 * time.Second
	}
	return &Worker{
		st:     st,
		savers: savers,
		opts:   opts,
		log:    log.With().Str("component", "sync").Logger(),
		tick:   make(chan struct{}, 1),
	}
}

// Run processes change signals until ctx is cancelled, then performs a
// final flush so shutdown never drops edits.
func (w *Worker) Run(ctx context.Context) {
	if w.opts.FlushCron != "" {
		w.cron = cron.New()
		if _, err := w.cron.AddFunc(w.opts.FlushCron, w.requestFlush); err != nil {
			w.log.Warn().Err(err).Str("cron", w.opts.FlushCron).Msg("invalid flush schedule, periodic flush disabled")
			w.cron = nil
		} else {
			w.cron.Start()
			defer w.cron.Stop()
		}
	}

	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			if w.dirty {
				w.flush(context.Background())
			}
			return
		case <-w.st.Changes():
			w.dirty = true
			if timer == nil {
				timer = time.NewTimer(w.opts.Debounce)
				fire = timer.C
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.opts.Debounce)
			}
		case <-fire:
			timer = nil
			fire = nil
			w.flush(ctx)
		case <-w.tick:
			if w.dirty {
				w.flush(ctx)
			}
		}
	}
}

func (w *Worker) requestFlush() {
	select {
	case w.tick <- struct{}{}:
	default:
	}
}

func (w *Worker) flush(ctx context.Context) {
	doc := w.st.Snapshot()
	failed := false
	for _, s := range w.savers {
		if err := s.Save(ctx, doc); err != nil {
			failed = true
			w.log.Warn().Err(err).Msg("save failed, keeping local state")
		}
	}
	if !failed {
		w.dirty = false
		w.log.Debug().
			Int("events", len(doc.Events)).
			Int("tasks", len(doc.Tasks)).
			Msg("document saved")
	}
}
