package daydata

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"daycal/internal/calmath"
	appLog "daycal/internal/log"
)

const defaultPrefetchSpec = "@daily"

// Prefetcher keeps the current and the next year warm in a Store on a cron
// schedule, so the first request after New Year does not wait on a fetch.
type Prefetcher struct {
	store *Store
	spec  string
	loc   *time.Location

	cron   *cron.Cron
	cancel context.CancelFunc
}

// NewPrefetcher creates a Prefetcher. An empty spec means "@daily".
func NewPrefetcher(store *Store, spec string, loc *time.Location) *Prefetcher {
	if spec == "" {
		spec = defaultPrefetchSpec
	}
	if loc == nil {
		loc = time.Local
	}
	return &Prefetcher{store: store, spec: spec, loc: loc}
}

// Start runs one prefetch immediately and schedules the rest. An invalid
// spec falls back to "@daily".
func (p *Prefetcher) Start(ctx context.Context) {
	runCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel

	c := cron.New(cron.WithLocation(p.loc))
	if _, err := c.AddFunc(p.spec, func() { p.RunOnce(runCtx) }); err != nil {
		appLog.Error("prefetch: invalid cron spec; falling back to @daily", err, "spec", p.spec)
		c = cron.New(cron.WithLocation(p.loc))
		_, _ = c.AddFunc(defaultPrefetchSpec, func() { p.RunOnce(runCtx) })
	}
	c.Start()
	p.cron = c

	go p.RunOnce(runCtx)
}

// Stop cancels in-flight fetches and waits for running jobs.
func (p *Prefetcher) Stop() {
	if p.cancel != nil {
		p.cancel()
	}
	if p.cron != nil {
		<-p.cron.Stop().Done()
	}
}

// RunOnce prefetches the current and next year.
func (p *Prefetcher) RunOnce(ctx context.Context) {
	year := calmath.Today(p.loc).Year
	p.store.Prefetch(ctx, year, year+1)
	appLog.Debug("prefetch done",
		"year", year,
		"state", p.store.State(year).String(),
		"next_state", p.store.State(year+1).String(),
	)
}
