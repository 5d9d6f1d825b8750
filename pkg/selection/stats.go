package selection

import (
	"sync"
	"sync/atomic"
	"time"
)

// AtomicStats implements thread-safe selection statistics using atomic
// operations. All counters are updated atomically for lock-free performance.
type AtomicStats struct {
	// totalSelections is the total number of selection requests processed
	totalSelections atomic.Int64

	// selectionsPerTemplate tracks selections per template
	// Uses sync.Map for thread-safe concurrent access
	selectionsPerTemplate sync.Map // map[string]*atomic.Int64

	// strategyUseCount tracks how many times each strategy was used
	strategyUseCount sync.Map // map[string]*atomic.Int64

	// categoryFilteredCount is the number of requests with a category filter
	categoryFilteredCount atomic.Int64

	// outcomesRecorded is the number of rewards recorded
	outcomesRecorded atomic.Int64

	// errors is the total number of selection errors
	errors atomic.Int64

	// lastResetTime is when statistics were last reset
	lastResetTime time.Time

	// mu protects lastResetTime
	mu sync.RWMutex
}

// NewAtomicStats creates a new atomic selection statistics tracker.
func NewAtomicStats() *AtomicStats {
	return &AtomicStats{
		lastResetTime: time.Now(),
	}
}

// IncrementTotal increments the total selection counter.
func (s *AtomicStats) IncrementTotal() {
	s.totalSelections.Add(1)
}

// IncrementTemplate increments the counter for a specific template.
func (s *AtomicStats) IncrementTemplate(templateID string) {
	val, _ := s.selectionsPerTemplate.LoadOrStore(templateID, &atomic.Int64{})
	val.(*atomic.Int64).Add(1)
}

// IncrementStrategy increments the counter for a specific strategy.
func (s *AtomicStats) IncrementStrategy(strategyName string) {
	val, _ := s.strategyUseCount.LoadOrStore(strategyName, &atomic.Int64{})
	val.(*atomic.Int64).Add(1)
}

// IncrementCategoryFiltered increments the category filter counter.
func (s *AtomicStats) IncrementCategoryFiltered() {
	s.categoryFilteredCount.Add(1)
}

// IncrementOutcomes increments the recorded outcome counter.
func (s *AtomicStats) IncrementOutcomes() {
	s.outcomesRecorded.Add(1)
}

// IncrementErrors increments the error counter.
func (s *AtomicStats) IncrementErrors() {
	s.errors.Add(1)
}

// Snapshot returns a point-in-time snapshot of the statistics.
// The returned Stats struct is safe to read without locks.
func (s *AtomicStats) Snapshot() *Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	perTemplate := make(map[string]int64)
	s.selectionsPerTemplate.Range(func(key, value interface{}) bool {
		perTemplate[key.(string)] = value.(*atomic.Int64).Load()
		return true
	})

	strategyUse := make(map[string]int64)
	s.strategyUseCount.Range(func(key, value interface{}) bool {
		strategyUse[key.(string)] = value.(*atomic.Int64).Load()
		return true
	})

	return &Stats{
		TotalSelections:       s.totalSelections.Load(),
		SelectionsPerTemplate: perTemplate,
		StrategyUseCount:      strategyUse,
		CategoryFilteredCount: s.categoryFilteredCount.Load(),
		OutcomesRecorded:      s.outcomesRecorded.Load(),
		Errors:                s.errors.Load(),
		LastResetTime:         s.lastResetTime,
	}
}

// Reset resets all statistics to zero.
func (s *AtomicStats) Reset() {
	s.totalSelections.Store(0)
	s.categoryFilteredCount.Store(0)
	s.outcomesRecorded.Store(0)
	s.errors.Store(0)

	s.selectionsPerTemplate.Range(func(key, value interface{}) bool {
		s.selectionsPerTemplate.Delete(key)
		return true
	})

	s.strategyUseCount.Range(func(key, value interface{}) bool {
		s.strategyUseCount.Delete(key)
		return true
	})

	s.mu.Lock()
	s.lastResetTime = time.Now()
	s.mu.Unlock()
}
