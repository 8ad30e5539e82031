package renderer

import (
	"context"
	"fmt"
	"image"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/df07/go-raycore/pkg/core"
	"github.com/df07/go-raycore/pkg/integrator"
	"github.com/df07/go-raycore/pkg/scene"
)

// Status reports how a render ended
type Status int

const (
	StatusComplete  Status = iota // Every pixel was written
	StatusCancelled               // Cancel or context cancellation stopped the render early
)

func (s Status) String() string {
	switch s {
	case StatusComplete:
		return "complete"
	case StatusCancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// PartitionResult is passed to the progress callback each time a partition finishes
type PartitionResult struct {
	JobID     uuid.UUID
	Partition Partition
	Image     *image.RGBA // The finished pixels, bounds equal to Partition.Bounds
	Stats     RenderStats // Statistics of this partition alone

	Completed int // Partitions finished so far, including this one
	Total     int // Partitions in the render
}

// Result is the outcome of a render
type Result struct {
	JobID       uuid.UUID
	Status      Status
	Framebuffer *Framebuffer // Pixels of partitions that did not run are black
	Stats       RenderStats
}

// Renderer drives the integrator over every pixel using a worker pool. A
// Renderer runs one render at a time; Cancel may be called from any
// goroutine.
type Renderer struct {
	// OnPartition, if set, is called once per finished partition. Calls are
	// made from a single goroutine, never concurrently.
	OnPartition func(PartitionResult)

	logger core.Logger

	mu     sync.Mutex
	active *atomic.Bool // Cancel flag of the running render, nil when idle
}

// NewRenderer creates a renderer. A nil logger discards all output.
func NewRenderer(logger core.Logger) *Renderer {
	if logger == nil {
		logger = core.NewNopLogger()
	}
	return &Renderer{logger: logger}
}

// Cancel asks the running render to stop. Partitions already being
// rendered are finished; no new ones are started. It is a no-op when no
// render is running.
func (r *Renderer) Cancel() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.active != nil {
		r.active.Store(true)
	}
}

// Render renders the scene with cfg and blocks until every partition is done
// or cancellation is observed. An invalid config or nil scene returns an
// error before any work starts. Cancellation is not an error: the result
// carries StatusCancelled.
func (r *Renderer) Render(ctx context.Context, sc *scene.Scene, cfg Config) (*Result, error) {
	if sc == nil {
		return nil, ErrNilScene
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	cancelled := &atomic.Bool{}
	r.mu.Lock()
	if r.active != nil {
		r.mu.Unlock()
		return nil, ErrRenderInProgress
	}
	r.active = cancelled
	r.mu.Unlock()
	defer func() {
		r.mu.Lock()
		r.active = nil
		r.mu.Unlock()
	}()

	jobID := uuid.New()
	start := time.Now()
	r.logger.Infof("render %s: scene %q, %v", jobID, sc.Name(), cfg)

	camera := sc.Camera().WithResolution(cfg.Width, cfg.Height)
	fb := NewFramebuffer(cfg.Width, cfg.Height)

	partitions := partitionsFor(cfg)
	pool := NewWorkerPool(partitions, cfg.Threads)
	r.logger.Debugf("render %s: %d partitions on %d workers", jobID, len(partitions), pool.GetNumWorkers())
	results := pool.Start(ctx, cancelled, func(p Partition) RenderStats {
		// Each partition counts into its own scene view, so workers never
		// share counters
		var rays core.RayStats
		tileRenderer := NewTileRenderer(camera, newIntegrator(sc.WithStats(&rays), cfg), cfg)
		stats := tileRenderer.RenderBounds(p.Bounds, fb)
		stats.RayStats.Add(rays)
		return stats
	})

	var stats RenderStats
	completed := 0
	for result := range results {
		completed++
		stats.Merge(result.Stats)
		if r.logger.DebugEnabled() {
			r.logger.Debugf("render %s: partition %d/%d %v done", jobID, completed, len(partitions), result.Partition.Bounds)
		}
		if r.OnPartition != nil {
			r.OnPartition(PartitionResult{
				JobID:     jobID,
				Partition: result.Partition,
				Image:     fb.RegionRGBA(result.Partition.Bounds, cfg.Gamma),
				Stats:     result.Stats,
				Completed: completed,
				Total:     len(partitions),
			})
		}
	}
	stats.Duration = time.Since(start)

	status := StatusComplete
	if completed < len(partitions) {
		status = StatusCancelled
		r.logger.Warnf("render %s: cancelled after %d/%d partitions", jobID, completed, len(partitions))
	}
	if stats.NonFiniteSamples > 0 {
		r.logger.Warnf("render %s: %d non-finite samples replaced by black", jobID, stats.NonFiniteSamples)
	}
	r.logger.Infof("render %s: %s, %v", jobID, status, stats)
	r.logger.Debugf("render %s: %s", jobID, stats.TestCounts())

	return &Result{
		JobID:       jobID,
		Status:      status,
		Framebuffer: fb,
		Stats:       stats,
	}, nil
}

// newIntegrator creates the integrator selected by the config
func newIntegrator(sc *scene.Scene, cfg Config) integrator.Integrator {
	if cfg.Integrator == PathTrace {
		pt := integrator.NewPathTracer(sc)
		pt.RRDepth = cfg.RRDepth
		return pt
	}
	rt := integrator.NewRayTracer(sc)
	rt.AreaSamples = cfg.AreaSamples
	return rt
}
