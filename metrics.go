package quditgo

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
//
// Example Prometheus integration:
//
//	type PrometheusCollector struct {
//	    applyCounter     prometheus.Counter
//	    measureHistogram prometheus.Histogram
//	}
//
//	func (p *PrometheusCollector) RecordApply(duration time.Duration, err error) {
//	    p.applyCounter.Inc()
//	    // ... record error state, duration, etc.
//	}
type MetricsCollector interface {
	// RecordConstruct is called after each simulator construction.
	// duration is the total time taken, err is nil if successful.
	RecordConstruct(duration time.Duration, err error)

	// RecordApply is called after each operator application.
	RecordApply(duration time.Duration, err error)

	// RecordMeasure is called after each sampling operation.
	// shots is the number of shots requested.
	RecordMeasure(shots int, duration time.Duration, err error)

	// RecordSnapshot is called after each snapshot save or load.
	RecordSnapshot(duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordConstruct(time.Duration, error)    {}
func (NoopMetricsCollector) RecordApply(time.Duration, error)        {}
func (NoopMetricsCollector) RecordMeasure(int, time.Duration, error) {}
func (NoopMetricsCollector) RecordSnapshot(time.Duration, error)     {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	ConstructCount    atomic.Int64
	ConstructErrors   atomic.Int64
	ApplyCount        atomic.Int64
	ApplyErrors       atomic.Int64
	ApplyTotalNanos   atomic.Int64
	MeasureCount      atomic.Int64
	MeasureErrors     atomic.Int64
	MeasureShots      atomic.Int64
	MeasureTotalNanos atomic.Int64
	SnapshotCount     atomic.Int64
	SnapshotErrors    atomic.Int64
}

// RecordConstruct implements MetricsCollector.
func (b *BasicMetricsCollector) RecordConstruct(duration time.Duration, err error) {
	b.ConstructCount.Add(1)
	if err != nil {
		b.ConstructErrors.Add(1)
	}
}

// RecordApply implements MetricsCollector.
func (b *BasicMetricsCollector) RecordApply(duration time.Duration, err error) {
	b.ApplyCount.Add(1)
	b.ApplyTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.ApplyErrors.Add(1)
	}
}

// RecordMeasure implements MetricsCollector.
func (b *BasicMetricsCollector) RecordMeasure(shots int, duration time.Duration, err error) {
	b.MeasureCount.Add(1)
	b.MeasureShots.Add(int64(shots))
	b.MeasureTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.MeasureErrors.Add(1)
	}
}

// RecordSnapshot implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSnapshot(duration time.Duration, err error) {
	b.SnapshotCount.Add(1)
	if err != nil {
		b.SnapshotErrors.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		ConstructCount:  b.ConstructCount.Load(),
		ConstructErrors: b.ConstructErrors.Load(),
		ApplyCount:      b.ApplyCount.Load(),
		ApplyErrors:     b.ApplyErrors.Load(),
		ApplyAvgNanos:   b.getAvgApplyNanos(),
		MeasureCount:    b.MeasureCount.Load(),
		MeasureErrors:   b.MeasureErrors.Load(),
		MeasureShots:    b.MeasureShots.Load(),
		MeasureAvgNanos: b.getAvgMeasureNanos(),
		SnapshotCount:   b.SnapshotCount.Load(),
		SnapshotErrors:  b.SnapshotErrors.Load(),
	}
}

func (b *BasicMetricsCollector) getAvgApplyNanos() int64 {
	count := b.ApplyCount.Load()
	if count == 0 {
		return 0
	}
	return b.ApplyTotalNanos.Load() / count
}

func (b *BasicMetricsCollector) getAvgMeasureNanos() int64 {
	count := b.MeasureCount.Load()
	if count == 0 {
		return 0
	}
	return b.MeasureTotalNanos.Load() / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	ConstructCount  int64
	ConstructErrors int64
	ApplyCount      int64
	ApplyErrors     int64
	ApplyAvgNanos   int64
	MeasureCount    int64
	MeasureErrors   int64
	MeasureShots    int64
	MeasureAvgNanos int64
	SnapshotCount   int64
	SnapshotErrors  int64
}
