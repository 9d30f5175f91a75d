// Package daydata loads and memoizes the per-year day metadata documents.
package daydata

import (
	"context"
	"strconv"
	"sync"

	"golang.org/x/sync/singleflight"

	"daycal/internal/calmath"
	appLog "daycal/internal/log"
	"daycal/internal/model"
)

// YearState tells whether a year has been fetched and with what outcome.
type YearState int

const (
	// NotFetched means no fetch for the year has completed yet.
	NotFetched YearState = iota
	// Loaded means the year's document was fetched and decoded.
	Loaded
	// Unavailable means the fetch failed; the year is cached as empty and
	// is not retried.
	Unavailable
)

func (s YearState) String() string {
	switch s {
	case Loaded:
		return "loaded"
	case Unavailable:
		return "unavailable"
	default:
		return "not_fetched"
	}
}

type yearEntry struct {
	data  model.YearData
	state YearState
}

// Store is the per-year cache of day metadata. Entries are written once and
// never evicted; the records it hands out must be treated as read-only.
// Concurrent requests for the same uncached year share one fetch.
type Store struct {
	fetcher Fetcher

	mu    sync.RWMutex
	years map[int]yearEntry

	group singleflight.Group
}

func NewStore(f Fetcher) *Store {
	return &Store{
		fetcher: f,
		years:   make(map[int]yearEntry),
	}
}

// Year returns the data of a year, fetching it on first use. A failed fetch
// is logged and cached as an empty, Unavailable year.
//
// Concurrent callers share one fetch, which runs detached from any single
// caller's cancellation. A caller whose ctx ends first gets an empty
// NotFetched result; the fetch still completes and is cached.
func (s *Store) Year(ctx context.Context, year int) (model.YearData, YearState) {
	if e, ok := s.cached(year); ok {
		return e.data, e.state
	}

	fetchCtx := context.WithoutCancel(ctx)
	ch := s.group.DoChan(strconv.Itoa(year), func() (any, error) {
		if e, ok := s.cached(year); ok {
			return e, nil
		}

		data, err := s.fetcher.FetchYear(fetchCtx, year)
		e := yearEntry{data: data, state: Loaded}
		if err != nil {
			appLog.Error("day data fetch failed; caching empty year", err, "year", year)
			e = yearEntry{data: model.YearData{}, state: Unavailable}
		} else {
			appLog.Info("day data loaded", "year", year, "days", len(data))
		}

		s.mu.Lock()
		s.years[year] = e
		s.mu.Unlock()
		return e, nil
	})

	select {
	case res := <-ch:
		e := res.Val.(yearEntry)
		return e.data, e.state
	case <-ctx.Done():
		return model.YearData{}, NotFetched
	}
}

// Lookup returns the record of a date. ok is false when the year has no
// entry for the date (including unavailable years).
func (s *Store) Lookup(ctx context.Context, d calmath.Date) (rec model.DayRecord, ok bool) {
	data, _ := s.Year(ctx, d.Year)
	rec, ok = data[d.String()]
	return rec, ok
}

// State reports the cache state of a year without fetching it.
func (s *Store) State(year int) YearState {
	e, ok := s.cached(year)
	if !ok {
		return NotFetched
	}
	return e.state
}

// Prefetch loads the given years concurrently and waits for all of them.
func (s *Store) Prefetch(ctx context.Context, years ...int) {
	var wg sync.WaitGroup
	for _, y := range years {
		wg.Add(1)
		go func(y int) {
			defer wg.Done()
			s.Year(ctx, y)
		}(y)
	}
	wg.Wait()
}

func (s *Store) cached(year int) (yearEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.years[year]
	return e, ok
}
