package metrics

import (
	"sync"
	"sync/atomic"
	"time"
)

// Collector counts preprocessing work with no external dependencies.
// All methods are safe for concurrent use.
type Collector struct {
	documents     int64
	skipped       int64
	failed        int64
	templates     int64
	messages      int64
	warnings      int64
	registrations int64
	inFlight      int64
	maxInFlight   int64

	busyNanos int64

	counters  map[string]*int64
	mu        sync.RWMutex
	startTime time.Time
}

// Snapshot is a point-in-time copy of the counters.
type Snapshot struct {
	Documents     int64 `json:"documents"`
	Skipped       int64 `json:"skipped"`
	Failed        int64 `json:"failed"`
	Templates     int64 `json:"templates"`
	Messages      int64 `json:"messages"`
	Warnings      int64 `json:"warnings"`
	Registrations int64 `json:"registrations"`
	MaxInFlight   int64 `json:"max_in_flight"`

	// Busy is the summed processing time of all documents.
	Busy      time.Duration `json:"busy"`
	StartTime time.Time     `json:"start_time"`
	Uptime    time.Duration `json:"uptime"`
}

// NewCollector creates a new metrics collector
func NewCollector() *Collector {
	return &Collector{
		counters:  make(map[string]*int64),
		startTime: time.Now(),
	}
}

// Begin marks a document as in flight. The returned func ends it and
// records the elapsed time.
func (c *Collector) Begin() func() {
	start := time.Now()
	current := atomic.AddInt64(&c.inFlight, 1)
	for {
		max := atomic.LoadInt64(&c.maxInFlight)
		if current <= max {
			break
		}
		if atomic.CompareAndSwapInt64(&c.maxInFlight, max, current) {
			break
		}
	}
	return func() {
		atomic.AddInt64(&c.inFlight, -1)
		atomic.AddInt64(&c.busyNanos, int64(time.Since(start)))
	}
}

// DocumentProcessed records a document that opted in.
func (c *Collector) DocumentProcessed() {
	atomic.AddInt64(&c.documents, 1)
}

// DocumentSkipped records a pass-through document.
func (c *Collector) DocumentSkipped() {
	atomic.AddInt64(&c.skipped, 1)
}

// DocumentFailed records a document that returned an error.
func (c *Collector) DocumentFailed() {
	atomic.AddInt64(&c.failed, 1)
}

// TemplateExtracted records one component template and its counts.
func (c *Collector) TemplateExtracted(messages, warnings int) {
	atomic.AddInt64(&c.templates, 1)
	atomic.AddInt64(&c.messages, int64(messages))
	atomic.AddInt64(&c.warnings, int64(warnings))
}

// TemplateRegistered records an inline registry declaration.
func (c *Collector) TemplateRegistered() {
	atomic.AddInt64(&c.registrations, 1)
}

// Increment increments a named counter.
func (c *Collector) Increment(name string) {
	c.mu.RLock()
	counter, exists := c.counters[name]
	c.mu.RUnlock()
	if exists {
		atomic.AddInt64(counter, 1)
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if counter, exists := c.counters[name]; exists {
		atomic.AddInt64(counter, 1)
		return
	}
	var n int64 = 1
	c.counters[name] = &n
}

// Counters returns all named counters.
func (c *Collector) Counters() map[string]int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()

	result := make(map[string]int64, len(c.counters))
	for name, counter := range c.counters {
		result[name] = atomic.LoadInt64(counter)
	}
	return result
}

// Snapshot returns the current counters.
func (c *Collector) Snapshot() Snapshot {
	c.mu.RLock()
	start := c.startTime
	c.mu.RUnlock()

	return Snapshot{
		Documents:     atomic.LoadInt64(&c.documents),
		Skipped:       atomic.LoadInt64(&c.skipped),
		Failed:        atomic.LoadInt64(&c.failed),
		Templates:     atomic.LoadInt64(&c.templates),
		Messages:      atomic.LoadInt64(&c.messages),
		Warnings:      atomic.LoadInt64(&c.warnings),
		Registrations: atomic.LoadInt64(&c.registrations),
		MaxInFlight:   atomic.LoadInt64(&c.maxInFlight),
		Busy:          time.Duration(atomic.LoadInt64(&c.busyNanos)),
		StartTime:     start,
		Uptime:        time.Since(start),
	}
}

// Reset zeroes every counter.
func (c *Collector) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, p := range []*int64{
		&c.documents, &c.skipped, &c.failed, &c.templates, &c.messages,
		&c.warnings, &c.registrations, &c.maxInFlight, &c.busyNanos,
	} {
		atomic.StoreInt64(p, 0)
	}
	c.counters = make(map[string]*int64)
	c.startTime = time.Now()
}

// WarningRate returns warnings per extracted message, as a percentage.
func (s Snapshot) WarningRate() float64 {
	if s.Messages == 0 {
		return 0.0
	}
	return float64(s.Warnings) / float64(s.Messages) * 100.0
}

// SkipRate returns the share of documents passed through, as a percentage.
func (s Snapshot) SkipRate() float64 {
	total := s.Documents + s.Skipped
	if total == 0 {
		return 0.0
	}
	return float64(s.Skipped) / float64(total) * 100.0
}
