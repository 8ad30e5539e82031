package renderer

import (
	"image"

	"github.com/df07/go-raycore/pkg/core"
	"github.com/df07/go-raycore/pkg/geometry"
	"github.com/df07/go-raycore/pkg/integrator"
)

// TileRenderer computes the final color of every pixel in a partition. It
// holds no per-pixel state, so one instance may serve all workers as long
// as its integrator is safe for concurrent use.
type TileRenderer struct {
	camera     *geometry.Camera
	integrator integrator.Integrator
	config     Config
}

// NewTileRenderer creates a tile renderer for the given camera and integrator
func NewTileRenderer(camera *geometry.Camera, integratorInst integrator.Integrator, config Config) *TileRenderer {
	return &TileRenderer{
		camera:     camera,
		integrator: integratorInst,
		config:     config,
	}
}

// pixelState tracks the work done for one pixel
type pixelState struct {
	sampler   core.Sampler
	samples   int // Samples averaged into the pixel
	traced    int // Primary rays actually traced for the pixel
	nonFinite int
	maxDepth  bool

	corners map[[2]int]core.Color // Adaptive corner cache shared by the partition, absolute lattice coordinates
	used    map[[2]int]struct{}   // Lattice points averaged into this pixel
}

// RenderBounds renders pixels within bounds into fb. Only pixels inside
// bounds are written. In adaptive mode corners on edges shared by two
// pixels of the partition are traced once.
func (tr *TileRenderer) RenderBounds(bounds image.Rectangle, fb *Framebuffer) RenderStats {
	stats := RenderStats{Partitions: 1}
	var corners map[[2]int]core.Color
	var used map[[2]int]struct{}
	if tr.config.AdaptiveDepth > 0 {
		corners = make(map[[2]int]core.Color)
		used = make(map[[2]int]struct{})
	}

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			clear(used)
			ps := pixelState{corners: corners, used: used}
			if corners == nil {
				ps.sampler = tr.pixelSampler(x, y)
			}
			fb.Set(x, y, tr.samplePixel(x, y, &ps))

			stats.addPixel(ps.samples)
			stats.PrimaryRays += ps.traced
			stats.NonFiniteSamples += ps.nonFinite
			if ps.maxDepth {
				stats.MaxDepthPixels++
			}
		}
	}

	stats.finalize()
	return stats
}

// samplePixel returns the averaged color of pixel (x, y)
func (tr *TileRenderer) samplePixel(x, y int, ps *pixelState) core.Color {
	if tr.config.AdaptiveDepth > 0 {
		grid := 1 << tr.config.AdaptiveDepth
		return tr.adaptiveBox(x, y, 0, 0, grid, 0, ps)
	}

	n := tr.config.SamplesPerPixel
	var sum core.Color
	for i := 0; i < n; i++ {
		offset := core.StratifiedOffset(i, n, ps.sampler.Get2D())
		sum = sum.Add(tr.trace(float64(x)+offset.X, float64(y)+offset.Y, ps.sampler, ps))
		ps.samples++
	}
	return sum.Multiply(1.0 / float64(n))
}

// adaptiveBox samples the four corners of a sub-pixel box and subdivides it
// while the corners disagree by more than the threshold. Box coordinates are
// on a lattice of grid cells per pixel.
func (tr *TileRenderer) adaptiveBox(x, y, i, j, size, level int, ps *pixelState) core.Color {
	grid := 1 << tr.config.AdaptiveDepth
	c00 := tr.corner(x, y, i, j, grid, ps)
	c10 := tr.corner(x, y, i+size, j, grid, ps)
	c01 := tr.corner(x, y, i, j+size, grid, ps)
	c11 := tr.corner(x, y, i+size, j+size, grid, ps)

	if level < tr.config.AdaptiveDepth {
		if core.ColorDifference(c00, c10, c01, c11) > tr.config.AdaptiveThreshold {
			half := size / 2
			c00 = tr.adaptiveBox(x, y, i, j, half, level+1, ps)
			c10 = tr.adaptiveBox(x, y, i+half, j, half, level+1, ps)
			c01 = tr.adaptiveBox(x, y, i, j+half, half, level+1, ps)
			c11 = tr.adaptiveBox(x, y, i+half, j+half, half, level+1, ps)
		}
	} else {
		ps.maxDepth = true
	}
	return c00.Add(c10).Add(c01).Add(c11).Multiply(0.25)
}

// corner returns the sample at lattice point (i, j) of pixel (x, y),
// tracing it only the first time the partition requests it. Each lattice
// point has its own random stream, so its color does not depend on which
// pixel or partition traces it first.
func (tr *TileRenderer) corner(x, y, i, j, grid int, ps *pixelState) core.Color {
	key := [2]int{x*grid + i, y*grid + j}
	if _, ok := ps.used[key]; !ok {
		ps.used[key] = struct{}{}
		ps.samples++
	}
	if c, ok := ps.corners[key]; ok {
		return c
	}
	sampler := tr.latticeSampler(key[0], key[1])
	c := tr.trace(float64(key[0])/float64(grid), float64(key[1])/float64(grid), sampler, ps)
	ps.corners[key] = c
	return c
}

// trace evaluates one primary ray through image position (px, py)
func (tr *TileRenderer) trace(px, py float64, sampler core.Sampler, ps *pixelState) core.Color {
	ray := tr.camera.GetRay(px, py)
	c := tr.integrator.Radiance(ray, tr.config.MaxDepth, sampler)
	ps.traced++
	if !c.IsFinite() {
		ps.nonFinite++
		return core.Color{}
	}
	return c
}

// pixelSampler returns the random stream of pixel (x, y). It depends only
// on the seed and the pixel, never on which worker renders it.
func (tr *TileRenderer) pixelSampler(x, y int) core.Sampler {
	return core.NewSeededSampler(tr.config.Seed, mix64(uint64(uint32(y))<<32|uint64(uint32(x))))
}

// latticeSampler returns the random stream of adaptive lattice point
// (gx, gy). The lattice resolution is folded into the seed so different
// subdivision depths do not share streams.
func (tr *TileRenderer) latticeSampler(gx, gy int) core.Sampler {
	return core.NewSeededSampler(tr.config.Seed^mix64(uint64(tr.config.AdaptiveDepth)), mix64(uint64(uint32(gy))<<32|uint64(uint32(gx))))
}

// mix64 is the splitmix64 finalizer
func mix64(z uint64) uint64 {
	z += 0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}
