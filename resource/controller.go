// Package resource tracks and limits the memory, concurrency and IO
// that simulators consume: amplitude arrays are reserved against a
// byte budget before allocation, parallel measurement batches run
// under a worker semaphore, and snapshot IO can be throttled.
package resource

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// AmplitudeBytes returns the managed memory cost of n complex128
// amplitudes.
func AmplitudeBytes(n int) int64 { return int64(n) * 16 }

// Config holds resource limits.
type Config struct {
	// MemoryLimitBytes is the hard limit for managed amplitude memory.
	// If 0, no hard limit is enforced (only tracking).
	MemoryLimitBytes int64

	// MaxShotWorkers is the maximum number of concurrent measurement
	// shot batches. If 0, defaults to 1.
	MaxShotWorkers int64

	// IOLimitBytesPerSec is the maximum snapshot IO throughput.
	// If 0, unlimited.
	IOLimitBytesPerSec int64
}

// Controller manages global resources (memory, concurrency, IO).
// A nil *Controller is valid and enforces nothing.
type Controller struct {
	cfg Config

	// Memory
	memSem  *semaphore.Weighted // nil if unlimited
	memUsed atomic.Int64

	// Concurrency
	shotSem *semaphore.Weighted

	// IO
	ioLimiter *rate.Limiter
}

// NewController creates a new resource controller.
func NewController(cfg Config) *Controller {
	if cfg.MaxShotWorkers <= 0 {
		cfg.MaxShotWorkers = 1
	}

	c := &Controller{
		cfg:     cfg,
		shotSem: semaphore.NewWeighted(cfg.MaxShotWorkers),
	}

	if cfg.MemoryLimitBytes > 0 {
		c.memSem = semaphore.NewWeighted(cfg.MemoryLimitBytes)
	}

	if cfg.IOLimitBytesPerSec > 0 {
		c.ioLimiter = rate.NewLimiter(rate.Limit(cfg.IOLimitBytesPerSec), int(cfg.IOLimitBytesPerSec))
	}

	return c
}

// MemoryLimit returns the configured memory budget in bytes, 0 when
// only tracking.
func (c *Controller) MemoryLimit() int64 {
	if c == nil {
		return 0
	}
	return c.cfg.MemoryLimitBytes
}

// MaxShotWorkers returns the configured worker parallelism.
func (c *Controller) MaxShotWorkers() int {
	if c == nil {
		return 1
	}
	return int(c.cfg.MaxShotWorkers)
}

// AcquireMemory reserves amplitude memory. If a hard limit is
// configured and usage would exceed it, this blocks until memory is
// available or ctx is canceled.
func (c *Controller) AcquireMemory(ctx context.Context, bytes int64) error {
	if c == nil || bytes <= 0 {
		return nil
	}

	if c.memSem != nil {
		if err := c.memSem.Acquire(ctx, bytes); err != nil {
			return err
		}
	}

	c.memUsed.Add(bytes)
	return nil
}

// TryAcquireMemory reserves amplitude memory without blocking.
// Returns true if acquired, false if the limit would be exceeded.
func (c *Controller) TryAcquireMemory(bytes int64) bool {
	if c == nil || bytes <= 0 {
		return true
	}

	if c.memSem != nil {
		if !c.memSem.TryAcquire(bytes) {
			return false
		}
	}

	c.memUsed.Add(bytes)
	return true
}

// ReleaseMemory releases reserved amplitude memory.
func (c *Controller) ReleaseMemory(bytes int64) {
	if c == nil || bytes <= 0 {
		return
	}

	if c.memSem != nil {
		c.memSem.Release(bytes)
	}
	c.memUsed.Add(-bytes)
}

// MemoryUsage returns the current managed memory usage in bytes.
func (c *Controller) MemoryUsage() int64 {
	if c == nil {
		return 0
	}
	return c.memUsed.Load()
}

// AcquireWorker reserves a shot worker slot, blocking while all slots
// are busy.
func (c *Controller) AcquireWorker(ctx context.Context) error {
	if c == nil {
		return nil
	}
	return c.shotSem.Acquire(ctx, 1)
}

// TryAcquireWorker reserves a shot worker slot without blocking.
func (c *Controller) TryAcquireWorker() bool {
	if c == nil {
		return true
	}
	return c.shotSem.TryAcquire(1)
}

// ReleaseWorker releases a shot worker slot.
func (c *Controller) ReleaseWorker() {
	if c == nil {
		return
	}
	c.shotSem.Release(1)
}

// AcquireIO waits until the IO limit allows the specified number of bytes.
func (c *Controller) AcquireIO(ctx context.Context, bytes int) error {
	if c == nil || c.ioLimiter == nil {
		return nil
	}
	return c.ioLimiter.WaitN(ctx, bytes)
}
