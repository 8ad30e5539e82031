package renderer

import (
	"image"
	"image/color"

	"github.com/df07/go-raycore/pkg/core"
)

// Framebuffer is a width×height grid of linear radiance values. During a
// render each pixel is written once, by the worker that owns its partition.
type Framebuffer struct {
	width, height int
	pixels        []core.Color
}

// NewFramebuffer allocates a black framebuffer
func NewFramebuffer(width, height int) *Framebuffer {
	width, height = max(width, 0), max(height, 0)
	return &Framebuffer{
		width:  width,
		height: height,
		pixels: make([]core.Color, width*height),
	}
}

// Width returns the framebuffer width in pixels
func (fb *Framebuffer) Width() int { return fb.width }

// Height returns the framebuffer height in pixels
func (fb *Framebuffer) Height() int { return fb.height }

// Bounds returns the pixel rectangle covered by the framebuffer
func (fb *Framebuffer) Bounds() image.Rectangle {
	return image.Rect(0, 0, fb.width, fb.height)
}

// At returns the color of pixel (x, y); out of range pixels are black
func (fb *Framebuffer) At(x, y int) core.Color {
	if !image.Pt(x, y).In(fb.Bounds()) {
		return core.Color{}
	}
	return fb.pixels[y*fb.width+x]
}

// Set stores the color of pixel (x, y); out of range writes are ignored
func (fb *Framebuffer) Set(x, y int, c core.Color) {
	if !image.Pt(x, y).In(fb.Bounds()) {
		return
	}
	fb.pixels[y*fb.width+x] = c
}

// ToRGBA converts the framebuffer to an 8-bit image, clamping radiance to
// [0, 1] and applying gamma correction
func (fb *Framebuffer) ToRGBA(gamma float64) *image.RGBA {
	return fb.RegionRGBA(fb.Bounds(), gamma)
}

// RegionRGBA converts the pixels inside r to an image whose bounds are r
func (fb *Framebuffer) RegionRGBA(r image.Rectangle, gamma float64) *image.RGBA {
	r = r.Intersect(fb.Bounds())
	img := image.NewRGBA(r)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			img.SetRGBA(x, y, toRGBA(fb.pixels[y*fb.width+x], gamma))
		}
	}
	return img
}

// AverageLuminance returns the mean luminance over all pixels
func (fb *Framebuffer) AverageLuminance() float64 {
	if len(fb.pixels) == 0 {
		return 0
	}
	var sum float64
	for _, c := range fb.pixels {
		sum += c.Luminance()
	}
	return sum / float64(len(fb.pixels))
}

// toRGBA converts a linear color to an 8-bit color
func toRGBA(c core.Color, gamma float64) color.RGBA {
	if !c.IsFinite() {
		c = core.Color{}
	}
	c = c.Clamp(0, 1)
	if gamma > 0 && gamma != 1 {
		c = c.GammaCorrect(gamma)
	}
	return color.RGBA{
		R: uint8(255*c.X + 0.5),
		G: uint8(255*c.Y + 0.5),
		B: uint8(255*c.Z + 0.5),
		A: 255,
	}
}
