package services

import (
	"fmt"
	"time"

	"fondo/internal/cache"
	"fondo/internal/ledger"
	"fondo/internal/metrics"
	"fondo/internal/snapshot"
)

// LedgerService computes ledger views over the current snapshot. Every
// view is a pure function of the snapshot, so results are memoized
// keyed by snapshot version plus the request parameters; a snapshot
// replacement naturally invalidates all entries through the version key.
type LedgerService struct {
	store *snapshot.Store

	summaries  *cache.LRUCache[ledger.Summary]
	breakdowns *cache.LRUCache[ledger.Breakdown]
	trends     *cache.LRUCache[[]ledger.Bucket]

	fallbackHeadcount int
}

// LedgerServiceConfig tunes the service.
type LedgerServiceConfig struct {
	CacheSize         int
	CacheTTL          time.Duration
	FallbackHeadcount int
}

func DefaultLedgerServiceConfig() LedgerServiceConfig {
	return LedgerServiceConfig{
		CacheSize:         128,
		CacheTTL:          5 * time.Minute,
		FallbackHeadcount: ledger.DefaultFallbackHeadcount,
	}
}

func NewLedgerService(store *snapshot.Store, cfg LedgerServiceConfig) *LedgerService {
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = 128
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
	return &LedgerService{
		store:             store,
		summaries:         cache.NewLRUCache[ledger.Summary](cfg.CacheSize, cfg.CacheTTL),
		breakdowns:        cache.NewLRUCache[ledger.Breakdown](cfg.CacheSize, cfg.CacheTTL),
		trends:            cache.NewLRUCache[[]ledger.Bucket](cfg.CacheSize, cfg.CacheTTL),
		fallbackHeadcount: cfg.FallbackHeadcount,
	}
}

// RegisterCaches adds the service's caches to a cleanup manager.
func (s *LedgerService) RegisterCaches(m *cache.Manager) {
	m.Register(s.summaries)
	m.Register(s.breakdowns)
	m.Register(s.trends)
}

func filterKey(f ledger.Filter) string {
	return fmt.Sprintf("t=%v|p=%v|from=%d|to=%d|q=%s",
		f.Types, f.ProjectIDs, f.From.Unix(), f.To.Unix(), f.Search)
}

// Summary returns the household overview for the transactions matching f.
func (s *LedgerService) Summary(f ledger.Filter) ledger.Summary {
	snap := s.store.Current()
	key := fmt.Sprintf("v%d|%s", snap.Version, filterKey(f))

	if cached, ok := s.summaries.Get(key); ok {
		metrics.LedgerComputations.WithLabelValues("summary", metrics.SourceCache).Inc()
		return cached
	}

	out := ledger.ComputeSummary(f.Apply(snap.Transactions), snap.Users, snap.Projects)
	s.summaries.Set(key, out)
	metrics.LedgerComputations.WithLabelValues("summary", metrics.SourceComputed).Inc()
	return out
}

// Breakdown returns per-category and per-group spending for the
// transactions matching f.
func (s *LedgerService) Breakdown(f ledger.Filter) ledger.Breakdown {
	snap := s.store.Current()
	key := fmt.Sprintf("v%d|%s", snap.Version, filterKey(f))

	if cached, ok := s.breakdowns.Get(key); ok {
		metrics.LedgerComputations.WithLabelValues("breakdown", metrics.SourceCache).Inc()
		return cached
	}

	out := ledger.ComputeCategoryBreakdown(f.Apply(snap.Transactions), snap.Categories)
	s.breakdowns.Set(key, out)
	metrics.LedgerComputations.WithLabelValues("breakdown", metrics.SourceComputed).Inc()
	return out
}

// Hierarchy resolves the category catalog into ordered groups. Cheap
// enough that it is computed fresh on every call.
func (s *LedgerService) Hierarchy(opts ledger.ResolveOptions) []ledger.Group {
	snap := s.store.Current()
	metrics.LedgerComputations.WithLabelValues("hierarchy", metrics.SourceComputed).Inc()
	return ledger.Resolve(snap.Categories, opts)
}

// Trend returns the bucketed spending trend ending now.
func (s *LedgerService) Trend(g ledger.Granularity, f ledger.Filter, windowEnd time.Time) []ledger.Bucket {
	snap := s.store.Current()
	key := fmt.Sprintf("v%d|g=%s|end=%d|%s", snap.Version, g, windowEnd.Unix(), filterKey(f))

	if cached, ok := s.trends.Get(key); ok {
		metrics.LedgerComputations.WithLabelValues("trend", metrics.SourceCache).Inc()
		return cached
	}

	out := ledger.ComputeTrend(f.Apply(snap.Transactions), g, windowEnd)
	s.trends.Set(key, out)
	metrics.LedgerComputations.WithLabelValues("trend", metrics.SourceComputed).Inc()
	return out
}

// BudgetProgress reports each member's standing against the combined
// project budgets. The user stats are derived from the same snapshot
// the projects and transactions come from, so a concurrent snapshot
// replacement cannot mix versions inside one view.
func (s *LedgerService) BudgetProgress(currentUserID string) []ledger.Progress {
	snap := s.store.Current()
	summary := ledger.ComputeSummary(snap.Transactions, snap.Users, snap.Projects)
	metrics.LedgerComputations.WithLabelValues("budget", metrics.SourceComputed).Inc()
	return ledger.ComputeBudgetProgress(snap.Projects, snap.Transactions, summary.Users, ledger.BudgetOptions{
		FallbackHeadcount: s.fallbackHeadcount,
		CurrentUserID:     currentUserID,
	})
}

// Snapshot exposes the current snapshot for handlers that need raw
// records (listings, exports).
func (s *LedgerService) Snapshot() snapshot.Snapshot {
	return s.store.Current()
}
