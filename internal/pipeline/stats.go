package pipeline

import (
	"slices"
	"sort"
	"sync"
	"time"
)

// Outcome classifies how the search of one source ended.
type Outcome string

const (
	OutcomeMatched Outcome = "matched"
	OutcomeNoMatch Outcome = "no_match"
	OutcomeFailed  Outcome = "failed"
)

// OutcomeOf classifies r.
func OutcomeOf(r Result) Outcome {
	switch {
	case r.Err != nil:
		return OutcomeFailed
	case len(r.Runs) > 0:
		return OutcomeMatched
	default:
		return OutcomeNoMatch
	}
}

type observation struct {
	at      time.Time
	outcome Outcome
	elapsed time.Duration
	bytes   int64
}

// OutcomeStats describes the sources that ended with one outcome.
type OutcomeStats struct {
	Sources int   `json:"sources"`
	P50Ms   int64 `json:"p50_ms"`
	P90Ms   int64 `json:"p90_ms"`
	MaxMs   int64 `json:"max_ms"`
}

// StatsSnapshot describes the sources searched within the window.
type StatsSnapshot struct {
	Sources  int                      `json:"sources"`
	Bytes    int64                    `json:"bytes"`
	Outcomes map[Outcome]OutcomeStats `json:"outcomes"`
}

// SourceStats records how searched sources ended. Observations older than
// the window are dropped.
type SourceStats struct {
	mu     sync.Mutex
	window time.Duration
	obs    []observation // ordered by at
}

func NewSourceStats(window time.Duration) *SourceStats {
	if window <= 0 {
		window = time.Hour
	}
	return &SourceStats{window: window}
}

// Record adds the result of one source.
func (s *SourceStats) Record(r Result) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	s.expireLocked(now)
	s.obs = append(s.obs, observation{
		at:      now,
		outcome: OutcomeOf(r),
		elapsed: max(r.Duration, 0),
		bytes:   int64(r.Bytes),
	})
}

func (s *SourceStats) Snapshot() StatsSnapshot {
	s.mu.Lock()
	s.expireLocked(time.Now())
	obs := slices.Clone(s.obs)
	s.mu.Unlock()

	snap := StatsSnapshot{Outcomes: make(map[Outcome]OutcomeStats)}
	elapsed := make(map[Outcome][]time.Duration)
	for _, o := range obs {
		snap.Sources++
		snap.Bytes += o.bytes
		elapsed[o.outcome] = append(elapsed[o.outcome], o.elapsed)
	}
	for outcome, ds := range elapsed {
		slices.Sort(ds)
		snap.Outcomes[outcome] = OutcomeStats{
			Sources: len(ds),
			P50Ms:   nearestRank(ds, 50).Milliseconds(),
			P90Ms:   nearestRank(ds, 90).Milliseconds(),
			MaxMs:   ds[len(ds)-1].Milliseconds(),
		}
	}
	return snap
}

func (s *SourceStats) expireLocked(now time.Time) {
	cutoff := now.Add(-s.window)
	i := sort.Search(len(s.obs), func(i int) bool { return s.obs[i].at.After(cutoff) })
	if i > 0 {
		s.obs = append(s.obs[:0], s.obs[i:]...)
	}
}

// nearestRank returns the smallest value with at least pct percent of
// sorted at or below it. sorted must not be empty.
func nearestRank(sorted []time.Duration, pct int) time.Duration {
	rank := (pct*len(sorted) + 99) / 100
	return sorted[max(rank, 1)-1]
}
