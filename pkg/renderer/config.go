package renderer

import (
	"errors"
	"fmt"
	"math"
	"runtime"
	"strings"

	"github.com/shirou/gopsutil/v3/cpu"

	"github.com/df07/go-raycore/pkg/integrator"
)

var (
	// ErrInvalidConfig is wrapped by every configuration validation error
	ErrInvalidConfig = errors.New("invalid render config")
	// ErrNilScene is returned when Render is called without a scene
	ErrNilScene = errors.New("nil scene")
	// ErrRenderInProgress is returned when a Renderer is asked to start a
	// second render before the first one returned
	ErrRenderInProgress = errors.New("render already in progress")
)

// IntegratorKind selects the light transport algorithm
type IntegratorKind int

const (
	RayTrace IntegratorKind = iota
	PathTrace
)

func (k IntegratorKind) String() string {
	switch k {
	case RayTrace:
		return "ray-trace"
	case PathTrace:
		return "path-trace"
	default:
		return fmt.Sprintf("IntegratorKind(%d)", int(k))
	}
}

// ParseIntegrator parses an integrator name as accepted on the command line
func ParseIntegrator(name string) (IntegratorKind, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "ray-trace", "raytrace", "rt", "whitted":
		return RayTrace, nil
	case "path-trace", "pathtrace", "pt":
		return PathTrace, nil
	default:
		return 0, fmt.Errorf("%w: unknown integrator %q (want ray-trace or path-trace)", ErrInvalidConfig, name)
	}
}

// PartitionMode selects how the image is split into work units
type PartitionMode int

const (
	PartitionTiles PartitionMode = iota // Square tiles of TileSize pixels
	PartitionRows                       // One image row per work unit
)

func (m PartitionMode) String() string {
	switch m {
	case PartitionTiles:
		return "tiles"
	case PartitionRows:
		return "rows"
	default:
		return fmt.Sprintf("PartitionMode(%d)", int(m))
	}
}

// ParsePartition parses a partition mode name
func ParsePartition(name string) (PartitionMode, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "tiles", "tile", "box":
		return PartitionTiles, nil
	case "rows", "row":
		return PartitionRows, nil
	default:
		return 0, fmt.Errorf("%w: unknown partition mode %q (want tiles or rows)", ErrInvalidConfig, name)
	}
}

// Config contains everything that controls a single render
type Config struct {
	Integrator      IntegratorKind
	SamplesPerPixel int // Primary rays per pixel in stratified mode
	MaxDepth        int // Maximum number of surface interactions per path
	Width           int
	Height          int
	Threads         int // Worker pool size

	Partition PartitionMode
	TileSize  int // Tile edge in pixels when Partition is PartitionTiles

	Seed        uint64 // Base seed of the per-pixel random streams
	RRDepth     int    // Path tracer bounces before Russian roulette
	AreaSamples int    // Ray tracer quadrature points per emissive triangle edge

	AdaptiveDepth     int     // Adaptive subdivision levels, 0 disables adaptive sampling
	AdaptiveThreshold float64 // Corner color spread that triggers subdivision

	Gamma float64 // Display gamma used when converting to 8-bit images
}

// DefaultConfig returns sensible default values
func DefaultConfig() Config {
	return Config{
		Integrator:        RayTrace,
		SamplesPerPixel:   4,
		MaxDepth:          5,
		Width:             640,
		Height:            480,
		Threads:           DefaultThreads(),
		Partition:         PartitionTiles,
		TileSize:          32,
		RRDepth:           integrator.DefaultRRDepth,
		AreaSamples:       integrator.DefaultAreaSamples,
		AdaptiveThreshold: 0.3,
		Gamma:             2.2,
	}
}

// DefaultThreads returns the number of logical CPUs
func DefaultThreads() int {
	if n, err := cpu.Counts(true); err == nil && n > 0 {
		return n
	}
	return runtime.NumCPU()
}

// Validate checks every field and returns all problems joined together.
// Each problem wraps ErrInvalidConfig.
func (c Config) Validate() error {
	var errs []error
	invalid := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, args...)...))
	}

	if c.Integrator != RayTrace && c.Integrator != PathTrace {
		invalid("unknown integrator %v", c.Integrator)
	}
	if c.SamplesPerPixel < 1 {
		invalid("samples per pixel must be positive, got %d", c.SamplesPerPixel)
	}
	if c.MaxDepth < 1 {
		invalid("max depth must be positive, got %d", c.MaxDepth)
	}
	if c.Width < 1 {
		invalid("image width must be positive, got %d", c.Width)
	}
	if c.Height < 1 {
		invalid("image height must be positive, got %d", c.Height)
	}
	if c.Threads < 1 {
		invalid("thread count must be positive, got %d", c.Threads)
	}
	switch c.Partition {
	case PartitionTiles:
		if c.TileSize < 1 {
			invalid("tile size must be positive, got %d", c.TileSize)
		}
	case PartitionRows:
	default:
		invalid("unknown partition mode %v", c.Partition)
	}
	if c.RRDepth < 0 {
		invalid("russian roulette depth must not be negative, got %d", c.RRDepth)
	}
	if c.AreaSamples < 1 {
		invalid("area samples must be positive, got %d", c.AreaSamples)
	}
	if c.AdaptiveDepth < 0 {
		invalid("adaptive depth must not be negative, got %d", c.AdaptiveDepth)
	}
	if c.AdaptiveThreshold < 0 || math.IsNaN(c.AdaptiveThreshold) {
		invalid("adaptive threshold must not be negative, got %g", c.AdaptiveThreshold)
	}
	if !(c.Gamma > 0) || math.IsInf(c.Gamma, 0) {
		invalid("gamma must be positive and finite, got %g", c.Gamma)
	}

	return errors.Join(errs...)
}

func (c Config) String() string {
	mode := fmt.Sprintf("%d spp", c.SamplesPerPixel)
	if c.AdaptiveDepth > 0 {
		mode = fmt.Sprintf("adaptive depth %d", c.AdaptiveDepth)
	}
	return fmt.Sprintf("%s %dx%d, %s, max depth %d, %d threads, %s",
		c.Integrator, c.Width, c.Height, mode, c.MaxDepth, c.Threads, c.Partition)
}
