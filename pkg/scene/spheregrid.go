package scene

import (
	"math"

	"github.com/df07/go-raycore/pkg/core"
	"github.com/df07/go-raycore/pkg/geometry"
	"github.com/df07/go-raycore/pkg/lights"
	"github.com/df07/go-raycore/pkg/material"
)

// oklchToRGB converts OKLCH (lightness 0-1, chroma 0-0.4, hue in
// degrees) to clamped linear RGB.
func oklchToRGB(l, c, h float64) core.Color {
	hRad := h * math.Pi / 180.0
	a := c * math.Cos(hRad)
	b := c * math.Sin(hRad)

	// OKLAB to LMS
	l_ := l + 0.3963377774*a + 0.2158037573*b
	m_ := l - 0.1055613458*a - 0.0638541728*b
	s_ := l - 0.0894841775*a - 1.2914855480*b

	l_ = l_ * l_ * l_
	m_ = m_ * m_ * m_
	s_ = s_ * s_ * s_

	r := +4.0767416621*l_ - 3.3077115913*m_ + 0.2309699292*s_
	g := -1.2684380046*l_ + 2.6097574011*m_ - 0.3413193965*s_
	blue := -0.0041960863*l_ - 0.7034186147*m_ + 1.7076147010*s_

	return core.NewColor(r, g, blue).Clamp(0, 1)
}

// NewSphereScene creates a grid of spheres on a gray ground plane. Hue
// varies across X and chroma across Z; every third sphere is a mirror and
// the rest alternate between diffuse and glossy.
func NewSphereScene() *Scene {
	camera := geometry.NewCamera(geometry.CameraConfig{
		Position: core.NewVec3(4.5, 6, 18),
		LookAt:   core.NewVec3(4.5, 0.8, 4.5),
		Up:       core.NewVec3(0, 1, 0),
		VFov:     40.0,
		Width:    640,
		Height:   360,
	})

	primitives := []geometry.Primitive{
		geometry.NewPlane(core.NewVec3(0, 0, 0), core.NewVec3(0, 1, 0), material.NewDiffuse(core.Gray(0.5))),
	}

	gridSize := 10
	targetArea := 9.0
	spacing := targetArea / float64(gridSize-1)
	sphereRadius := math.Max(0.02, math.Min(0.35, spacing*0.35))

	baseLightness := 0.65
	minChroma := 0.05
	maxChroma := 0.25

	for i := 0; i < gridSize; i++ {
		for j := 0; j < gridSize; j++ {
			x := float64(i)*spacing - targetArea/2.0 + 4.5
			z := float64(j)*spacing - targetArea/2.0 + 4.5
			position := core.NewVec3(x, sphereRadius, z)

			hue := (float64(i) / float64(gridSize-1)) * 360.0
			chroma := minChroma + (float64(j)/float64(gridSize-1))*(maxChroma-minChroma)
			lightness := baseLightness + 0.1*math.Sin(float64(i+j)*0.5)
			color := oklchToRGB(lightness, chroma, hue)

			var mat *material.Material
			switch (i + j) % 3 {
			case 0:
				mat = material.NewMirror(color)
			case 1:
				mat = material.NewDiffuse(color)
			default:
				mat = material.NewGlossy(color.Multiply(0.7), core.Gray(0.3), 32+float64(j)*16)
			}
			primitives = append(primitives, geometry.NewSphere(position, sphereRadius, mat))
		}
	}

	return New(Description{
		Name:       "spheres",
		Camera:     camera,
		Primitives: primitives,
		Lights: []lights.Light{
			lights.NewPointLight(core.NewVec3(20, 25, 20), core.Gray(900)),
			lights.NewAmbientLight(core.Gray(0.08)),
		},
		Background: core.NewColor(0.5, 0.7, 1.0),
	})
}
