package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"figimapper/internal/checkpoint"
	"figimapper/internal/figi"
	"figimapper/internal/metrics"
	"figimapper/internal/openfigi"
	"figimapper/internal/resultset"

	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc"
)

// ErrEmptyInput is returned when there is nothing to dispatch
var ErrEmptyInput = errors.New("no identifiers to map")

const (
	// DefaultAPILimit is the service's maximum number of jobs per call
	DefaultAPILimit = 100
	// DefaultWorkers is the default pool size
	DefaultWorkers = 3
	// DefaultCheckpointEvery is the default checkpoint cadence in dequeued items
	DefaultCheckpointEvery = 10
)

// Config controls chunking, concurrency and checkpoint cadence.
type Config struct {
	// APILimit is the maximum number of jobs per chunk (default 100)
	APILimit int
	// Workers is the configured pool size; min(Workers, chunks) workers are started (default 3)
	Workers int
	// CheckpointEvery saves a snapshot every N dequeued items (default 10, negative disables)
	CheckpointEvery int
	// CheckpointOnFailure also saves a snapshot after each failed chunk
	CheckpointOnFailure bool
}

// DefaultConfig returns the default dispatcher configuration
func DefaultConfig() Config {
	return Config{
		APILimit:            DefaultAPILimit,
		Workers:             DefaultWorkers,
		CheckpointEvery:     DefaultCheckpointEvery,
		CheckpointOnFailure: true,
	}
}

// CheckpointFunc persists a snapshot of the outcomes recorded so far
type CheckpointFunc func(ctx context.Context, snap checkpoint.Snapshot) error

// Option customises a BatchDispatcher
type Option func(*BatchDispatcher)

// WithCheckpoint sets the persistence callback
func WithCheckpoint(fn CheckpointFunc) Option {
	return func(d *BatchDispatcher) {
		d.checkpoint = fn
	}
}

// WithMetrics records chunk and checkpoint metrics on c
func WithMetrics(c *metrics.Collector) Option {
	return func(d *BatchDispatcher) {
		d.metrics = c
	}
}

// WithLogger sets the logger
func WithLogger(logger zerolog.Logger) Option {
	return func(d *BatchDispatcher) {
		d.logger = logger
	}
}

// WithOnOutcome registers a hook called once per finished chunk, from the worker goroutine
func WithOnOutcome(fn func(figi.ChunkResult)) Option {
	return func(d *BatchDispatcher) {
		d.onOutcome = fn
	}
}

// BatchDispatcher splits identifier lists into chunks and maps them through a bounded worker pool
type BatchDispatcher struct {
	mapper     openfigi.Mapper
	cfg        Config
	checkpoint CheckpointFunc
	metrics    *metrics.Collector
	logger     zerolog.Logger
	onOutcome  func(figi.ChunkResult)
}

// New creates a BatchDispatcher. Non-positive APILimit and Workers fall back to their defaults,
// as does a zero CheckpointEvery.
func New(mapper openfigi.Mapper, cfg Config, opts ...Option) *BatchDispatcher {
	if cfg.APILimit <= 0 {
		cfg.APILimit = DefaultAPILimit
	}
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultWorkers
	}
	if cfg.CheckpointEvery == 0 {
		cfg.CheckpointEvery = DefaultCheckpointEvery
	}

	d := &BatchDispatcher{
		mapper: mapper,
		cfg:    cfg,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Config returns the effective configuration
func (d *BatchDispatcher) Config() Config {
	return d.cfg
}

// Submit maps values of a single identifier type
func (d *BatchDispatcher) Submit(ctx context.Context, idType figi.IDType, values []string) (*resultset.ResultSet, error) {
	if !idType.Valid() {
		return nil, fmt.Errorf("%w: %q", figi.ErrUnknownIDType, idType)
	}
	return d.SubmitJobs(ctx, figi.NewJobs(idType, values))
}

// SubmitJobs maps jobs that may carry their own disambiguating attributes.
// Per-chunk failures are folded into the result set; only invalid input is an error.
func (d *BatchDispatcher) SubmitJobs(ctx context.Context, jobs []figi.Job) (*resultset.ResultSet, error) {
	outcomes, err := d.Dispatch(ctx, jobs)
	if err != nil {
		return nil, err
	}
	return resultset.Flatten(outcomes), nil
}

// Dispatch runs every chunk through the pool and returns the outcomes keyed by sequence index.
// It returns once all workers have finished.
func (d *BatchDispatcher) Dispatch(ctx context.Context, jobs []figi.Job) (map[int]figi.ChunkResult, error) {
	if len(jobs) == 0 {
		return nil, ErrEmptyInput
	}
	for i, job := range jobs {
		if !job.IDType.Valid() {
			return nil, fmt.Errorf("job %d: %w: %q", i, figi.ErrUnknownIDType, job.IDType)
		}
	}

	chunks := Chunk(jobs, d.cfg.APILimit)

	// The queue holds every item up front and is closed before workers start,
	// so a worker exits as soon as it finds it drained.
	queue := make(chan WorkItem, len(chunks))
	for i, c := range chunks {
		queue <- WorkItem{Index: i, Jobs: c}
	}
	close(queue)

	r := &run{outcomes: make(map[int]figi.ChunkResult, len(chunks))}
	workers := WorkerCount(d.cfg.Workers, len(chunks))

	d.logger.Info().
		Int("identifiers", len(jobs)).
		Int("chunks", len(chunks)).
		Int("workers", workers).
		Msg("dispatching mapping jobs")

	var wg conc.WaitGroup
	for w := range workers {
		wg.Go(func() {
			d.work(ctx, w, len(chunks), queue, r)
		})
	}
	wg.Wait()

	return r.snapshot(), nil
}

func (d *BatchDispatcher) work(ctx context.Context, worker, total int, queue <-chan WorkItem, r *run) {
	d.logger.Debug().Int("worker", worker).Msg("worker started")

	for item := range queue {
		n := r.dequeued.Add(1)

		d.logger.Debug().
			Int("worker", worker).
			Int("chunk", item.Index).
			Int("total", total).
			Msg("querying mapping service")

		res := d.process(ctx, item)
		r.record(res)

		if d.onOutcome != nil {
			d.onOutcome(res)
		}

		if d.dueCheckpoint(n, res) {
			d.saveCheckpoint(ctx, r)
		}
	}
}

// process performs exactly one mapping call for item
func (d *BatchDispatcher) process(ctx context.Context, item WorkItem) figi.ChunkResult {
	res := figi.ChunkResult{Index: item.Index, Input: item.Jobs}

	start := time.Now()
	output, err := d.mapper.Map(ctx, item.Jobs)
	took := time.Since(start)

	if err != nil {
		res.Err = err.Error()
		res.ErrType = errorType(err)
		d.logger.Warn().
			Int("chunk", item.Index).
			Str("error_type", res.ErrType).
			Err(err).
			Msg("chunk failed")
		d.metrics.ObserveChunk(res.ErrType, took, 0, 0, len(item.Jobs))
		return res
	}

	res.Output = output

	matched := 0
	for _, o := range output {
		if o.Matched() {
			matched++
		}
	}
	d.logger.Debug().
		Int("chunk", item.Index).
		Int("matched", matched).
		Dur("took", took).
		Msg("chunk mapped")
	d.metrics.ObserveChunk("success", took, matched, len(item.Jobs)-matched, 0)

	return res
}

func (d *BatchDispatcher) dueCheckpoint(dequeued int64, res figi.ChunkResult) bool {
	if d.checkpoint == nil {
		return false
	}
	if res.Failed() && d.cfg.CheckpointOnFailure {
		return true
	}
	return d.cfg.CheckpointEvery > 0 && dequeued%int64(d.cfg.CheckpointEvery) == 0
}

// saveCheckpoint persists a copy of the outcomes. Failures are logged and never stop the run.
func (d *BatchDispatcher) saveCheckpoint(ctx context.Context, r *run) {
	r.ckptMu.Lock()
	defer r.ckptMu.Unlock()

	snap := checkpoint.Snapshot(r.snapshot())
	err := d.checkpoint(context.WithoutCancel(ctx), snap)
	d.metrics.ObserveCheckpoint(err)
	if err != nil {
		d.logger.Warn().Err(err).Int("chunks", len(snap)).Msg("checkpoint failed")
		return
	}
	d.logger.Debug().Int("chunks", len(snap)).Msg("checkpoint saved")
}

func errorType(err error) string {
	var me *openfigi.MappingError
	if errors.As(err, &me) {
		return string(me.Type)
	}
	return string(openfigi.ErrorTypeUnknown)
}

// run is the shared state of one Dispatch call. Workers write disjoint keys,
// so a single mutex around the map is enough.
type run struct {
	mu       sync.Mutex
	outcomes map[int]figi.ChunkResult
	dequeued atomic.Int64
	ckptMu   sync.Mutex
}

func (r *run) record(res figi.ChunkResult) {
	r.mu.Lock()
	r.outcomes[res.Index] = res
	r.mu.Unlock()
}

func (r *run) snapshot() map[int]figi.ChunkResult {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make(map[int]figi.ChunkResult, len(r.outcomes))
	for k, v := range r.outcomes {
		out[k] = v
	}
	return out
}
