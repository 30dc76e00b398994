package quditgo

import (
	"log/slog"
	"math/rand/v2"

	"github.com/hupe1980/quditgo/resource"
)

type options struct {
	maxAmplitudes    int
	verifyUnitarity  bool
	rng              *rand.Rand
	metricsCollector MetricsCollector
	logger           *Logger
	controller       *resource.Controller
}

// Option configures Simulator constructor behavior.
type Option func(*options)

// WithMaxAmplitudes caps the joint state space size in amplitudes.
// Zero keeps the default cap (state.DefaultMaxAmplitudes); a negative
// value removes the cap entirely.
func WithMaxAmplitudes(n int) Option {
	return func(o *options) {
		o.maxAmplitudes = n
	}
}

// WithUnitarityCheck enables operator verification before every
// application. Custom operators that fail the check are rejected with
// ErrNonUnitary instead of silently corrupting the norm invariant.
// Verification costs O(D^3) per application, so it is off by default.
func WithUnitarityCheck(enabled bool) Option {
	return func(o *options) {
		o.verifyUnitarity = enabled
	}
}

// WithRand configures the random source used for measurement sampling.
// Pass a seeded generator for reproducible shot sequences.
//
// Example:
//
//	sim, _ := quditgo.New(dims, quditgo.WithRand(rand.New(rand.NewPCG(1, 2))))
func WithRand(rng *rand.Rand) Option {
	return func(o *options) {
		o.rng = rng
	}
}

// WithSeed configures a deterministic PCG random source from two seed
// words. Convenience wrapper for WithRand.
func WithSeed(seed1, seed2 uint64) Option {
	return func(o *options) {
		o.rng = rand.New(rand.NewPCG(seed1, seed2))
	}
}

// WithMetricsCollector configures a metrics collector for monitoring
// operations. Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &quditgo.BasicMetricsCollector{}
//	sim, _ := quditgo.New(dims, quditgo.WithMetricsCollector(metrics))
//	// ... use sim ...
//	stats := metrics.GetStats()
//	fmt.Printf("Applies: %d, Avg latency: %dns\n", stats.ApplyCount, stats.ApplyAvgNanos)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := quditgo.NewJSONLogger(slog.LevelInfo)
//	sim, _ := quditgo.New(dims, quditgo.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithResourceController attaches a shared resource controller. The
// simulator reserves its amplitude memory against the controller's
// budget, throttles snapshot IO through its limiter and sizes parallel
// measurement batches by its worker count.
func WithResourceController(rc *resource.Controller) Option {
	return func(o *options) {
		o.controller = rc
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	if o.metricsCollector == nil {
		o.metricsCollector = NoopMetricsCollector{}
	}
	if o.logger == nil {
		o.logger = NoopLogger()
	}
	return o
}
