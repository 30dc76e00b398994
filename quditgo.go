// Package quditgo provides an exact state-vector simulator for
// heterogeneous qudit registers.
//
// Each particle carries its own local dimension (qubits, qutrits and
// higher levels mix freely in one register), the joint state is a dense
// complex128 amplitude array over the mixed-radix basis, and unitary
// operators of any arity are applied by tensor contraction against the
// targeted particles. Features include:
//
//   - Arbitrary per-particle dimensions: Dims{2, 3, 17} is one register
//   - Exact unitary application in O(N*D), no truncation, norm preserved
//   - Generalized gate library: shift, clock, DFT, phase, modular CX
//   - Born-rule sampling without collapse, plus explicit single-shot collapse
//   - Algorithm compositions: Bell/GHZ, QFT, Grover over marked index sets
//   - Von Neumann entanglement entropy across any bipartition
//   - Compressed snapshots (LZ4/ZSTD) for checkpointing long preparations
//   - Resource controller for memory budgets, shot parallelism and IO limits
//
// # Quick Start
//
// Prepare a Bell pair and sample it:
//
//	sim, err := quditgo.New(state.Dims{2, 2})
//	if err != nil {
//	    panic(err)
//	}
//	defer sim.Close()
//
//	ctx := context.Background()
//	_ = sim.Apply(ctx, gate.H(2), 0)
//	_ = sim.Apply(ctx, gate.CX(2, 2), 0, 1)
//
//	counts, _ := sim.Measure(ctx, 1000)
//	fmt.Println(counts) // map[00:~500 11:~500]
//
// Qutrit GHZ via a composition:
//
//	c, _ := circuit.GHZ(state.Dims{3, 3, 3})
//	sim, _ := quditgo.New(state.Dims{3, 3, 3})
//	_ = sim.RunCircuit(ctx, c)
//
// Measurement never mutates the state; re-sampling models fresh
// preparation of the same circuit. Use CollapseOnce for the explicit
// single-shot collapse semantics.
package quditgo

import (
	"context"
	"io"
	"math/rand/v2"
	"runtime"
	"sync"
	"time"

	"github.com/RoaringBitmap/roaring/v2"
	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/quditgo/circuit"
	"github.com/hupe1980/quditgo/engine"
	"github.com/hupe1980/quditgo/entropy"
	"github.com/hupe1980/quditgo/gate"
	"github.com/hupe1980/quditgo/measure"
	"github.com/hupe1980/quditgo/resource"
	"github.com/hupe1980/quditgo/snapshot"
	"github.com/hupe1980/quditgo/state"
)

// Simulator owns one qudit register and serializes all access to it.
type Simulator struct {
	mu         sync.Mutex
	vec        *state.Vector
	rng        *rand.Rand
	verify     bool
	metrics    MetricsCollector
	logger     *Logger
	controller *resource.Controller
	memBytes   int64
	closed     bool
}

// New creates a simulator over the given dimension vector, initialized
// to the zero basis state |0,0,...,0>. The resource controller's memory
// budget is reserved before the amplitude array is allocated; a
// rejected request never allocates.
func New(dims state.Dims, optFns ...Option) (*Simulator, error) {
	start := time.Now()
	opts := applyOptions(optFns)

	v, memBytes, err := allocate(dims, opts)
	if err != nil {
		opts.logger.LogConstruct(context.Background(), len(dims), 0, err)
		opts.metricsCollector.RecordConstruct(time.Since(start), err)
		return nil, err
	}

	sim := assemble(v, memBytes, opts)
	opts.logger.LogConstruct(context.Background(), len(dims), v.Len(), nil)
	opts.metricsCollector.RecordConstruct(time.Since(start), nil)
	return sim, nil
}

// allocate validates dims, reserves the memory budget, then builds the
// vector. The reservation is rolled back if construction fails after it.
func allocate(dims state.Dims, opts options) (*state.Vector, int64, error) {
	if err := dims.Validate(); err != nil {
		return nil, 0, translateError(err)
	}

	memBytes, err := admit(dims, opts)
	if err != nil {
		return nil, 0, err
	}

	v, err := state.New(dims, opts.maxAmplitudes)
	if err != nil {
		opts.controller.ReleaseMemory(memBytes)
		return nil, 0, translateError(err)
	}
	return v, memBytes, nil
}

// admit reserves the amplitude budget for a validated dimension vector
// against the resource controller.
func admit(dims state.Dims, opts options) (int64, error) {
	memBytes := resource.AmplitudeBytes(dims.Size())
	if !opts.controller.TryAcquireMemory(memBytes) {
		return 0, &ErrCapacityExceeded{
			Requested: dims.Size(),
			Limit:     int(opts.controller.MemoryLimit() / 16),
		}
	}
	return memBytes, nil
}

func assemble(v *state.Vector, memBytes int64, opts options) *Simulator {
	rng := opts.rng
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	return &Simulator{
		vec:        v,
		rng:        rng,
		verify:     opts.verifyUnitarity,
		metrics:    opts.metricsCollector,
		logger:     opts.logger,
		controller: opts.controller,
		memBytes:   memBytes,
	}
}

// Dims returns a copy of the register's dimension vector.
func (s *Simulator) Dims() state.Dims {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.vec.Dims()
}

// NumParticles returns the particle count.
func (s *Simulator) NumParticles() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.vec.NumParticles()
}

// Len returns the joint state space size.
func (s *Simulator) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.vec.Len()
}

// Norm returns the l2 norm of the state, 1 within tolerance after any
// sequence of unitary applications.
func (s *Simulator) Norm() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.vec.Norm()
}

// Amplitude returns the amplitude of one flat basis index.
func (s *Simulator) Amplitude(index int) (complex128, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, ErrClosed
	}
	if index < 0 || index >= s.vec.Len() {
		return 0, &ErrAmplitudeOutOfRange{Index: index, Len: s.vec.Len()}
	}
	return s.vec.Amplitude(index), nil
}

// Apply contracts op against the targeted particles.
func (s *Simulator) Apply(ctx context.Context, op gate.Operator, targets ...int) error {
	start := time.Now()
	err := s.apply(op, targets)
	s.logger.LogApply(ctx, op.Name(), targets, err)
	s.metrics.RecordApply(time.Since(start), err)
	return err
}

// ApplyNamed resolves an operator from the gate registry and applies
// it. Leg dimensions are taken from the targeted particles, so "H" on a
// qutrit means the 3-level DFT.
func (s *Simulator) ApplyNamed(ctx context.Context, name string, params []float64, targets ...int) error {
	start := time.Now()
	op, err := s.resolve(name, params, targets)
	if err == nil {
		err = s.apply(op, targets)
	}
	s.logger.LogApply(ctx, name, targets, err)
	s.metrics.RecordApply(time.Since(start), err)
	return err
}

func (s *Simulator) resolve(name string, params []float64, targets []int) (gate.Operator, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return gate.Operator{}, ErrClosed
	}

	dims := s.vec.Dims()
	legs := make([]int, len(targets))
	for i, t := range targets {
		if t < 0 || t >= len(dims) {
			return gate.Operator{}, &ErrIndexOutOfRange{Target: t, NumParticles: len(dims)}
		}
		legs[i] = dims[t]
	}

	op, err := gate.ByName(name, legs, params)
	if err != nil {
		return gate.Operator{}, translateError(err)
	}
	return op, nil
}

func (s *Simulator) apply(op gate.Operator, targets []int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	if s.verify {
		return translateError(engine.ApplyVerified(s.vec, op, targets...))
	}
	return translateError(engine.Apply(s.vec, op, targets...))
}

// RunCircuit replays a circuit onto the register.
func (s *Simulator) RunCircuit(ctx context.Context, c *circuit.Circuit) error {
	start := time.Now()
	err := s.runCircuit(c)
	s.logger.LogCircuit(ctx, c.Len(), err)
	s.metrics.RecordApply(time.Since(start), err)
	return err
}

func (s *Simulator) runCircuit(c *circuit.Circuit) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	return translateError(c.RunOn(s.vec))
}

// Probabilities returns the Born probability of every basis index.
func (s *Simulator) Probabilities() ([]float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}
	return measure.Probabilities(s.vec), nil
}

// Outcomes returns the labeled probability of every basis state.
func (s *Simulator) Outcomes() ([]measure.Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}
	return measure.Outcomes(s.vec), nil
}

// MassOf returns the total Born probability of the basis indices in set.
func (s *Simulator) MassOf(set *roaring.Bitmap) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, ErrClosed
	}
	return measure.MassOf(s.vec, set), nil
}

// Measure draws shots independent samples from the Born distribution
// and returns aggregate counts keyed by outcome label. The state is not
// mutated.
func (s *Simulator) Measure(ctx context.Context, shots int) (map[string]int, error) {
	start := time.Now()
	counts, err := s.measure(shots)
	s.logger.LogMeasure(ctx, shots, len(counts), err)
	s.metrics.RecordMeasure(shots, time.Since(start), err)
	return counts, err
}

func (s *Simulator) measure(shots int) (map[string]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}

	counts, err := measure.Sample(s.vec, shots, s.rng)
	return counts, translateError(err)
}

// MeasureParallel splits the shot budget across independent workers,
// each sampling its own clone of the state, and merges the counts.
// Worker parallelism follows the resource controller's shot worker
// limit, or GOMAXPROCS without a controller. Results are statistically
// identical to Measure; only throughput differs.
func (s *Simulator) MeasureParallel(ctx context.Context, shots int) (map[string]int, error) {
	start := time.Now()
	counts, err := s.measureParallel(ctx, shots)
	s.logger.LogMeasure(ctx, shots, len(counts), err)
	s.metrics.RecordMeasure(shots, time.Since(start), err)
	return counts, err
}

func (s *Simulator) measureParallel(ctx context.Context, shots int) (map[string]int, error) {
	if shots <= 0 {
		return nil, &ErrInvalidShotCount{Shots: shots}
	}

	workers := runtime.GOMAXPROCS(0)
	if s.controller != nil {
		workers = s.controller.MaxShotWorkers()
	}
	if workers > shots {
		workers = shots
	}
	if workers <= 1 {
		return s.Measure(ctx, shots)
	}

	// Clone the state and draw per-worker seeds under the lock, then
	// sample without it.
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrClosed
	}
	clones := make([]*state.Vector, workers)
	seeds := make([][2]uint64, workers)
	for i := range clones {
		clones[i] = s.vec.Clone()
		seeds[i] = [2]uint64{s.rng.Uint64(), s.rng.Uint64()}
	}
	s.mu.Unlock()

	var (
		mergeMu sync.Mutex
		merged  = make(map[string]int)
	)

	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < workers; i++ {
		batch := shots / workers
		if i < shots%workers {
			batch++
		}
		if batch == 0 {
			continue
		}

		g.Go(func() error {
			if err := s.controller.AcquireWorker(ctx); err != nil {
				return err
			}
			defer s.controller.ReleaseWorker()

			rng := rand.New(rand.NewPCG(seeds[i][0], seeds[i][1]))
			counts, err := measure.Sample(clones[i], batch, rng)
			if err != nil {
				return translateError(err)
			}

			mergeMu.Lock()
			for label, n := range counts {
				merged[label] += n
			}
			mergeMu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return merged, nil
}

// CollapseOnce performs a single measurement shot and collapses the
// register to the realized basis vector. It returns the flat basis
// index and its outcome label.
func (s *Simulator) CollapseOnce(ctx context.Context) (int, string, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return 0, "", ErrClosed
	}
	idx, label, err := measure.CollapseOnce(s.vec, s.rng)
	s.mu.Unlock()

	err = translateError(err)
	s.logger.LogCollapse(ctx, label, err)
	return idx, label, err
}

// Entropy returns the von Neumann entanglement entropy, in bits, of the
// subsystem formed by the given particle indices.
func (s *Simulator) Entropy(partition []int) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, ErrClosed
	}
	v, err := entropy.Bipartite(s.vec, partition)
	return v, translateError(err)
}

// Fidelity returns |<self|other>|^2.
func (s *Simulator) Fidelity(other *Simulator) (float64, error) {
	// Lock ordering does not matter here: the second vector is cloned
	// before comparison.
	var otherVec *state.Vector
	if other == s {
		s.mu.Lock()
		otherVec = s.vec.Clone()
		s.mu.Unlock()
	} else {
		other.mu.Lock()
		otherVec = other.vec.Clone()
		other.mu.Unlock()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, ErrClosed
	}
	f, err := s.vec.Fidelity(otherVec)
	return f, translateError(err)
}

// Reset returns the register to the zero basis state.
func (s *Simulator) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.vec.Reset()
	return nil
}

// SaveSnapshot serializes the state to w, throttled by the resource
// controller's IO limit when one is attached.
func (s *Simulator) SaveSnapshot(ctx context.Context, w io.Writer, optFns ...func(o *snapshot.SaveOptions)) error {
	start := time.Now()
	err := s.saveSnapshot(ctx, w, optFns)
	s.logger.LogSnapshot(ctx, "save", s.vec.Len(), err)
	s.metrics.RecordSnapshot(time.Since(start), err)
	return err
}

func (s *Simulator) saveSnapshot(ctx context.Context, w io.Writer, optFns []func(o *snapshot.SaveOptions)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	if s.controller != nil {
		w = resource.NewRateLimitedWriter(ctx, w, s.controller)
	}
	return snapshot.Save(w, s.vec, optFns...)
}

// LoadSnapshot reads a snapshot and constructs a simulator around it.
// Options apply as in New; WithMaxAmplitudes and the resource
// controller's memory budget both gate the snapshot's state space after
// the header is parsed but before its payload is decoded.
func LoadSnapshot(ctx context.Context, r io.Reader, optFns ...Option) (*Simulator, error) {
	start := time.Now()
	opts := applyOptions(optFns)

	if opts.controller != nil {
		r = resource.NewRateLimitedReader(ctx, r, opts.controller)
	}

	var memBytes int64
	v, err := snapshot.Load(r, func(o *snapshot.LoadOptions) {
		o.MaxAmplitudes = opts.maxAmplitudes
		o.Admit = func(dims state.Dims) error {
			if err := dims.Validate(); err != nil {
				return err
			}
			mb, err := admit(dims, opts)
			if err != nil {
				return err
			}
			memBytes = mb
			return nil
		}
	})
	if err != nil {
		opts.controller.ReleaseMemory(memBytes)
		err = translateError(err)
		opts.logger.LogSnapshot(ctx, "load", 0, err)
		opts.metricsCollector.RecordSnapshot(time.Since(start), err)
		return nil, err
	}

	sim := assemble(v, memBytes, opts)
	opts.logger.LogSnapshot(ctx, "load", v.Len(), nil)
	opts.metricsCollector.RecordSnapshot(time.Since(start), nil)
	return sim, nil
}

// Close releases the simulator's memory reservation. Further operations
// return ErrClosed. Close is idempotent.
func (s *Simulator) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	s.controller.ReleaseMemory(s.memBytes)
	return nil
}
