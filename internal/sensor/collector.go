// Package sensor turns raw pedometer readings into a running step count.
//
// Two reading kinds are understood. A cumulative counter reports a total
// that only grows; its first value becomes the baseline and the count is
// reading minus baseline. A detector reports one event per step.
package sensor

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/charmbracelet/log"
)

type Collector struct {
	mu          sync.Mutex
	baseline    int
	hasBaseline bool
	count       int
	available   bool

	updates chan int
	logger  *log.Logger
}

func NewCollector(logger *log.Logger) *Collector {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Collector{
		updates: make(chan int, 1),
		logger:  logger.WithPrefix("sensor"),
	}
}

// Counter records a cumulative counter reading.
func (c *Collector) Counter(total int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.hasBaseline {
		c.baseline = total
		c.hasBaseline = true
	}
	c.set(total - c.baseline)
	c.logger.Debug("step counter", "total", total, "steps", c.count)
}

// Detect records a single detected step.
func (c *Collector) Detect() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.set(c.count + 1)
	c.logger.Debug("step detected", "steps", c.count)
}

// Reset forgets the baseline and zeroes the count. The next counter
// reading becomes the new baseline.
func (c *Collector) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hasBaseline = false
	c.baseline = 0
	c.set(0)
}

func (c *Collector) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.count
}

// Available reports whether a source is attached.
func (c *Collector) Available() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.available
}

// Updates delivers the latest count. Values that were not received before
// the next update are replaced, so a slow reader only sees the newest count.
func (c *Collector) Updates() <-chan int {
	return c.updates
}

// set must be called with c.mu held.
func (c *Collector) set(n int) {
	if n < 0 {
		n = 0
	}
	c.count = n
	select {
	case c.updates <- n:
	default:
		select {
		case <-c.updates:
		default:
		}
		c.updates <- n
	}
}

func (c *Collector) setAvailable(v bool) {
	c.mu.Lock()
	c.available = v
	c.mu.Unlock()
}

// Run feeds readings from src into the collector until ctx is done or the
// source is exhausted. Malformed readings are logged and skipped.
func (c *Collector) Run(ctx context.Context, src Source) error {
	c.setAvailable(true)
	defer c.setAvailable(false)

	if closer, ok := src.(io.Closer); ok {
		stop := context.AfterFunc(ctx, func() { closer.Close() })
		defer stop()
	}

	for {
		r, err := src.Next()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if errors.Is(err, io.EOF) {
				c.logger.Info("step source closed")
				return nil
			}
			if errors.Is(err, ErrMalformed) {
				c.logger.Warn("skipping reading", "err", err)
				continue
			}
			return err
		}
		switch r.Kind {
		case KindCounter:
			c.Counter(r.Value)
		case KindDetector:
			c.Detect()
		}
	}
}
