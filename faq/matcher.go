// Package faq matches free-text customer questions against a static set of
// FAQ categories and returns the configured answer.
//
// A Matcher owns its categories and its Cache. Categories are loaded from a
// JSON or YAML file and can be replaced at runtime with Reload, which also
// clears the cache so no stale answer survives a configuration change.
package faq

import (
	"log/slog"
	"sync"
	"sync/atomic"
)

const (
	DefaultThreshold  = 60.0
	FallbackThreshold = 50.0
)

// Match is the best category found for a question.
type Match struct {
	CategoryID   string            `json:"category_id"`
	CategoryName string            `json:"category_name"`
	Emoji        string            `json:"emoji"`
	Score        float64           `json:"score"`
	Responses    map[string]string `json:"responses"`
	TierOrder    []string          `json:"-"`
}

func (m *Match) clone() *Match {
	if m == nil {
		return nil
	}
	out := *m
	out.Responses = make(map[string]string, len(m.Responses))
	for tier, text := range m.Responses {
		out.Responses[tier] = text
	}
	out.TierOrder = append([]string(nil), m.TierOrder...)
	return &out
}

// MatcherStats counts matcher work since construction.
type MatcherStats struct {
	Scans       int64 `json:"scans"`
	CacheHits   int64 `json:"cache_hits"`
	CacheMisses int64 `json:"cache_misses"`
	CacheSize   int   `json:"cache_size"`
	Categories  int   `json:"categories"`
}

// Matcher finds the best FAQ category for a question.
type Matcher struct {
	mu         sync.RWMutex
	path       string
	categories []*Category
	cache      *Cache
	logger     *slog.Logger
	contact    string

	scans       atomic.Int64
	cacheHits   atomic.Int64
	cacheMisses atomic.Int64
}

// Option configures a Matcher.
type Option func(*Matcher)

// WithCache injects the cache used by the matcher.
func WithCache(c *Cache) Option {
	return func(m *Matcher) {
		if c != nil {
			m.cache = c
		}
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(m *Matcher) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithContact overrides the contact line shown in the fallback menu.
func WithContact(contact string) Option {
	return func(m *Matcher) {
		if contact != "" {
			m.contact = contact
		}
	}
}

func newMatcher(opts []Option) *Matcher {
	m := &Matcher{
		cache:   NewCache(),
		logger:  slog.Default(),
		contact: DefaultContact,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// New creates a Matcher from the configuration file at path. A file that
// cannot be loaded is logged as an error and the matcher starts with zero
// categories, so every question is a miss until a successful Reload.
func New(path string, opts ...Option) *Matcher {
	m := newMatcher(opts)
	m.path = path

	report, err := Load(path)
	if err != nil {
		m.logger.Error("❌ FAQ config could not be loaded, running with zero categories",
			"path", path,
			"error", err,
		)
		return m
	}

	m.logSkipped(report.Skipped)
	m.categories = report.Categories

	m.logger.Info("✅ FAQ matcher initialized",
		"path", path,
		"categories", len(m.categories),
		"skipped", len(report.Skipped),
	)
	return m
}

// NewFromCategories creates a Matcher over an already built category list.
func NewFromCategories(categories []*Category, opts ...Option) *Matcher {
	m := newMatcher(opts)
	m.categories = categories
	return m
}

func (m *Matcher) logSkipped(skipped []ValidationError) {
	for _, verr := range skipped {
		m.logger.Warn("⚠️ Skipping FAQ category",
			"index", verr.Index,
			"id", verr.ID,
			"reason", verr.Reason,
		)
	}
}

// Path returns the configuration file the matcher was created from.
func (m *Matcher) Path() string {
	return m.path
}

// Categories returns the current category snapshot.
func (m *Matcher) Categories() []*Category {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]*Category(nil), m.categories...)
}

// FindBestMatch returns the category with the highest score for question, or
// nil when that score is below threshold. When several categories reach the
// same best score the first one in configuration order wins. A question that
// shares nothing with any keyword scores 0 and is never a match, even with
// threshold 0.
func (m *Matcher) FindBestMatch(question string, threshold float64) *Match {
	normalized := Normalize(question)

	// The read lock spans lookup, scan and store so a concurrent Reload
	// cannot interleave and leave an outcome computed on old categories.
	m.mu.RLock()
	defer m.mu.RUnlock()

	if cached, ok := m.cache.Get(normalized, threshold); ok {
		m.cacheHits.Add(1)
		m.logger.Debug("💨 FAQ cache hit", "question", truncate(question, 30))
		return cached
	}
	m.cacheMisses.Add(1)

	best, bestScore := m.scan(normalized)

	if best == nil || bestScore < threshold {
		m.logger.Info("❌ No FAQ match",
			"bestScore", bestScore,
			"threshold", threshold,
		)
		m.cache.Put(normalized, threshold, nil)
		return nil
	}

	match := &Match{
		CategoryID:   best.ID,
		CategoryName: best.Name,
		Emoji:        best.Emoji,
		Score:        bestScore,
		Responses:    best.Responses,
		TierOrder:    best.TierOrder,
	}
	m.cache.Put(normalized, threshold, match)

	m.logger.Info("✅ FAQ match found",
		"category", best.ID,
		"score", bestScore,
	)
	return match.clone()
}

// scan must be called with m.mu held.
func (m *Matcher) scan(normalized string) (*Category, float64) {
	m.scans.Add(1)

	var best *Category
	bestScore := 0.0
	for _, cat := range m.categories {
		for _, kw := range cat.normalized {
			if score := Score(normalized, kw); score > bestScore {
				bestScore = score
				best = cat
			}
		}
	}
	return best, bestScore
}

// Reload re-reads the configuration file and swaps in the new categories,
// clearing the cache in the same step. On failure the current categories are
// kept and the error is returned.
func (m *Matcher) Reload() error {
	report, err := Load(m.path)
	if err != nil {
		m.logger.Error("❌ FAQ reload failed, keeping current categories",
			"path", m.path,
			"error", err,
		)
		return err
	}

	m.logSkipped(report.Skipped)
	m.Replace(report.Categories)

	m.logger.Info("🔄 FAQ config reloaded",
		"path", m.path,
		"categories", len(report.Categories),
	)
	return nil
}

// Replace swaps the category set and clears the cache atomically.
func (m *Matcher) Replace(categories []*Category) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.categories = categories
	m.cache.Clear()
}

// ClearCache drops every cached outcome.
func (m *Matcher) ClearCache() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.cache.Clear()
	m.logger.Info("🧹 FAQ cache cleared")
}

// Stats returns counters useful for monitoring and tests.
func (m *Matcher) Stats() MatcherStats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return MatcherStats{
		Scans:       m.scans.Load(),
		CacheHits:   m.cacheHits.Load(),
		CacheMisses: m.cacheMisses.Load(),
		CacheSize:   m.cache.Len(),
		Categories:  len(m.categories),
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
