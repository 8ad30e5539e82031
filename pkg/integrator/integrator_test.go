package integrator

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/df07/go-raycore/pkg/core"
	"github.com/df07/go-raycore/pkg/geometry"
	"github.com/df07/go-raycore/pkg/lights"
	"github.com/df07/go-raycore/pkg/material"
	"github.com/df07/go-raycore/pkg/scene"
)

var (
	testBackground = core.NewColor(0.2, 0.3, 0.4)
	sphereAlbedo   = core.NewColor(0.8, 0.1, 0.1)
)

// sphereScene places a diffuse sphere of radius 1 at (0,0,-5) and the given
// lights. A ray from the origin along -z hits it at (0,0,-4).
func sphereScene(extra []geometry.Primitive, sceneLights ...lights.Light) *scene.Scene {
	prims := append([]geometry.Primitive{
		geometry.NewSphere(core.NewVec3(0, 0, -5), 1, material.NewDiffuse(sphereAlbedo)),
	}, extra...)
	return scene.New(scene.Description{
		Primitives: prims,
		Lights:     sceneLights,
		Background: testBackground,
	})
}

// emitterScene is a diffuse floor (y=0, kd=0.5) under a 1x1 emissive square
// centered one unit above the origin, facing down.
func emitterScene(emission float64) *scene.Scene {
	floor := material.NewDiffuse(core.Gray(0.5))
	glow := material.NewEmissive(core.Gray(emission))
	prims := []geometry.Primitive{geometry.NewPlane(core.NewVec3(0, 0, 0), core.NewVec3(0, 1, 0), floor)}
	for _, t := range geometry.NewQuadTriangles(core.NewVec3(-0.5, 1, -0.5), core.NewVec3(1, 0, 0), core.NewVec3(0, 0, 1)) {
		prims = append(prims, geometry.NewTriangle(t.V0, t.V1, t.V2, glow))
	}
	return scene.New(scene.Description{Primitives: prims})
}

// glowSphereScene is the same diffuse floor under an emissive sphere of
// radius 0.5 centered 1.5 above the origin. The sphere subtends a cone with
// sin²θ = 1/9 from the origin, so the floor there receives Ke/9.
func glowSphereScene(emission float64) *scene.Scene {
	floor := material.NewDiffuse(core.Gray(0.5))
	glow := material.NewEmissive(core.Gray(emission))
	return scene.New(scene.Description{Primitives: []geometry.Primitive{
		geometry.NewPlane(core.NewVec3(0, 0, 0), core.NewVec3(0, 1, 0), floor),
		geometry.NewSphere(core.NewVec3(0, 1.5, 0), 0.5, glow),
	}})
}

// ceilingScene puts an infinite emissive plane at y=2 above the given
// diffuse (kd=0.5) primitives
func ceilingScene(emission float64, prims ...geometry.Primitive) *scene.Scene {
	glow := material.NewEmissive(core.Gray(emission))
	prims = append(prims, geometry.NewPlane(core.NewVec3(0, 2, 0), core.NewVec3(0, -1, 0), glow))
	return scene.New(scene.Description{Primitives: prims})
}

// squareFormFactor is the form factor from a point to a parallel square of
// half-side a centered at height h directly above it
func squareFormFactor(a, h float64) float64 {
	x := (a / h) / math.Sqrt(1+(a/h)*(a/h))
	return 4 / math.Pi * x * math.Atan(x)
}

var (
	originRay  = core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, -1))
	floorRay   = core.NewRay(core.NewVec3(0, 0.5, 0), core.NewVec3(0, -1, 0))
	nowhereRay = core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, 1))
	// wallRay hits the wall x=0 at (0,1,0), whose normal is horizontal
	wallRay = core.NewRay(core.NewVec3(1, 1, 0), core.NewVec3(-1, 0, 0))
)

func assertColorNear(t *testing.T, expected, actual core.Color, delta float64) {
	t.Helper()
	assert.InDelta(t, expected.X, actual.X, delta, "red of %v", actual)
	assert.InDelta(t, expected.Y, actual.Y, delta, "green of %v", actual)
	assert.InDelta(t, expected.Z, actual.Z, delta, "blue of %v", actual)
}
