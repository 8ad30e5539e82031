package renderer

import (
	"fmt"
	"time"

	"github.com/df07/go-raycore/pkg/core"
)

// RenderStats contains statistics about the rendering process
type RenderStats struct {
	TotalPixels      int           // Number of pixels rendered
	TotalSamples     int           // Samples averaged into pixels
	PrimaryRays      int           // Camera rays traced; below TotalSamples when adaptive corners are shared
	AverageSamples   float64       // Average samples per pixel
	MinSamples       int           // Fewest samples taken by any pixel
	MaxSamplesUsed   int           // Most samples taken by any pixel
	MaxDepthPixels   int           // Adaptive pixels that reached the subdivision limit
	NonFiniteSamples int           // Samples replaced by black because they were NaN or infinite
	Partitions       int           // Partitions completed
	Duration         time.Duration // Wall-clock time of the render

	core.RayStats // Scene queries and intersection tests
}

// addPixel records a finished pixel that took the given number of samples
func (s *RenderStats) addPixel(samples int) {
	if s.TotalPixels == 0 || samples < s.MinSamples {
		s.MinSamples = samples
	}
	s.MaxSamplesUsed = max(s.MaxSamplesUsed, samples)
	s.TotalPixels++
	s.TotalSamples += samples
}

// Merge adds the statistics of another partition
func (s *RenderStats) Merge(other RenderStats) {
	if other.TotalPixels > 0 && (s.TotalPixels == 0 || other.MinSamples < s.MinSamples) {
		s.MinSamples = other.MinSamples
	}
	s.MaxSamplesUsed = max(s.MaxSamplesUsed, other.MaxSamplesUsed)
	s.TotalPixels += other.TotalPixels
	s.TotalSamples += other.TotalSamples
	s.PrimaryRays += other.PrimaryRays
	s.RayStats.Add(other.RayStats)
	s.MaxDepthPixels += other.MaxDepthPixels
	s.NonFiniteSamples += other.NonFiniteSamples
	s.Partitions += other.Partitions
	s.finalize()
}

// finalize calculates derived statistics
func (s *RenderStats) finalize() {
	if s.TotalPixels > 0 {
		s.AverageSamples = float64(s.TotalSamples) / float64(s.TotalPixels)
	}
}

// RaysPerSecond returns the primary ray throughput of the render
func (s RenderStats) RaysPerSecond() float64 {
	if s.Duration <= 0 {
		return 0
	}
	return float64(s.PrimaryRays) / s.Duration.Seconds()
}

func (s RenderStats) String() string {
	return fmt.Sprintf("%d pixels, %d samples (avg %.2f, min %d, max %d), %d primary/%d total/%d shadow rays, %d partitions in %v (%.0f rays/sec)",
		s.TotalPixels, s.TotalSamples, s.AverageSamples, s.MinSamples, s.MaxSamplesUsed,
		s.PrimaryRays, s.Rays, s.ShadowRays,
		s.Partitions, s.Duration.Round(time.Millisecond), s.RaysPerSecond())
}

// TestCounts describes the intersection tests by primitive kind
func (s RenderStats) TestCounts() string {
	return fmt.Sprintf("%d sphere, %d plane, %d triangle, %d box tests",
		s.SphereTests, s.PlaneTests, s.TriangleTests, s.BoxTests)
}
