package integrator

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat"

	"github.com/df07/go-raycore/pkg/core"
	"github.com/df07/go-raycore/pkg/geometry"
	"github.com/df07/go-raycore/pkg/lights"
	"github.com/df07/go-raycore/pkg/material"
	"github.com/df07/go-raycore/pkg/scene"
)

// estimate averages n path tracer samples of the red channel along ray
func estimate(pt *PathTracer, ray core.Ray, depth, n int, seed uint64) (mean, stdErr float64) {
	sampler := core.NewSeededSampler(seed, 0)
	values := make([]float64, n)
	for i := range values {
		values[i] = pt.Radiance(ray, depth, sampler).X
	}
	mean, std := stat.MeanStdDev(values, nil)
	return mean, std / math.Sqrt(float64(n))
}

func TestPathTracer_MissAndDepth(t *testing.T) {
	pt := NewPathTracer(sphereScene(nil))
	sampler := core.NewSeededSampler(1, 1)

	assert.Equal(t, testBackground, pt.Radiance(nowhereRay, 1, sampler))
	assert.Equal(t, core.Color{}, pt.Radiance(nowhereRay, 0, sampler))
	assert.Equal(t, core.Color{}, pt.Radiance(originRay, -3, sampler))
}

func TestPathTracer_EmitterSeenDirectly(t *testing.T) {
	pt := NewPathTracer(emitterScene(3))
	up := core.NewRay(core.NewVec3(0, 0.5, 0), core.NewVec3(0, 1, 0))
	assert.Equal(t, core.Gray(3), pt.Radiance(up, 1, core.NewSeededSampler(1, 2)))
}

func TestPathTracer_DeltaLightsMatchRayTracer(t *testing.T) {
	// With a single interaction only next event estimation contributes, so
	// a diffuse surface gets exactly the ray tracer's direct lighting.
	tests := []struct {
		name  string
		light lights.Light
	}{
		{"point", lights.NewPointLight(core.NewVec3(0, 3, 0), core.Gray(25))},
		{"directional", lights.NewDirectionalLight(core.NewVec3(0, -1, -1), core.Gray(0.7))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := sphereScene(nil, tt.light)
			expected := NewRayTracer(s).Radiance(originRay, 1, nil)
			require.Positive(t, expected.X)
			got := NewPathTracer(s).Radiance(originRay, 1, core.NewSeededSampler(3, 4))
			assertColorNear(t, expected, got, 1e-9)
		})
	}
}

func TestPathTracer_IgnoresAmbient(t *testing.T) {
	s := sphereScene(nil, lights.NewAmbientLight(core.Gray(1)))
	got := NewPathTracer(s).Radiance(originRay, 1, core.NewSeededSampler(5, 6))
	assert.Equal(t, core.Color{}, got)
}

func TestPathTracer_AreaLightConverges(t *testing.T) {
	const emission = 4.0
	s := emitterScene(emission)

	rt := NewRayTracer(s)
	rt.AreaSamples = 32
	reference := rt.Radiance(floorRay, 1, nil).X
	analytic := 0.5 * emission * squareFormFactor(0.5, 1)
	require.InEpsilon(t, analytic, reference, 0.01)

	mean, stdErr := estimate(NewPathTracer(s), floorRay, 2, 40000, 11)
	assert.InDelta(t, reference, mean, 4*stdErr+0.005*reference)
	assert.InDelta(t, analytic, mean, 4*stdErr+0.005*analytic)
}

func TestPathTracer_SphereLightConverges(t *testing.T) {
	const emission = 4.0
	s := glowSphereScene(emission)

	reference := NewRayTracer(s).Radiance(floorRay, 1, nil).X
	require.InDelta(t, 0.5*emission/9, reference, 1e-9)

	mean, stdErr := estimate(NewPathTracer(s), floorRay, 2, 40000, 13)
	assert.InDelta(t, reference, mean, 4*stdErr+0.005*reference)
}

func TestPathTracer_PlaneLightMatchesRayTracer(t *testing.T) {
	const emission = 2.0
	floor := geometry.NewPlane(core.NewVec3(0, 0, 0), core.NewVec3(0, 1, 0), material.NewDiffuse(core.Gray(0.5)))
	wall := geometry.NewPlane(core.NewVec3(0, 0, 0), core.NewVec3(1, 0, 0), material.NewDiffuse(core.Gray(0.5)))

	// Every bounce off the floor reaches the ceiling: no variance
	facing := ceilingScene(emission, floor)
	mean, _ := estimate(NewPathTracer(facing), floorRay, 2, 200, 17)
	assert.InDelta(t, NewRayTracer(facing).Radiance(floorRay, 1, nil).X, mean, 1e-9)

	// Half of the wall's cosine lobe points up at the ceiling
	tilted := ceilingScene(emission, wall)
	reference := NewRayTracer(tilted).Radiance(wallRay, 1, nil).X
	mean, stdErr := estimate(NewPathTracer(tilted), wallRay, 2, 20000, 19)
	assert.InDelta(t, reference, mean, 4*stdErr+1e-9)
}

func TestPathTracer_RussianRouletteUnbiased(t *testing.T) {
	// A white furnace: a diffuse floor with albedo 0.5 under a uniform sky
	// of radiance 1 reflects 0.5 after one bounce, whatever the roulette does.
	floor := material.NewDiffuse(core.Gray(0.5))
	s := scene.New(scene.Description{
		Primitives: []geometry.Primitive{geometry.NewPlane(core.NewVec3(0, 0, 0), core.NewVec3(0, 1, 0), floor)},
		Background: core.Gray(1),
	})

	for _, rrDepth := range []int{0, 1, 5} {
		pt := NewPathTracer(s)
		pt.RRDepth = rrDepth
		mean, stdErr := estimate(pt, floorRay, 3, 20000, uint64(rrDepth)+100)
		assert.InDelta(t, 0.5, mean, 4*stdErr+1e-9, "rr depth %d", rrDepth)
	}
}

func TestPathTracer_GlossyEnergy(t *testing.T) {
	// The sampled specular weight estimates the normalized lobe's albedo,
	// which stays below ks for any exponent.
	glossy := material.NewGlossy(core.Color{}, core.Gray(0.6), 20)
	s := scene.New(scene.Description{
		Primitives: []geometry.Primitive{geometry.NewPlane(core.NewVec3(0, 0, 0), core.NewVec3(0, 1, 0), glossy)},
		Background: core.Gray(1),
	})
	ray := core.NewRay(core.NewVec3(0, 1, 1), core.NewVec3(0, -1, -1))

	mean, stdErr := estimate(NewPathTracer(s), ray, 2, 20000, 77)
	assert.Greater(t, mean, 0.3)
	assert.Less(t, mean, 0.6+4*stdErr)
}

func TestPathTracer_MirrorMatchesRayTracer(t *testing.T) {
	mirror := material.NewMirror(core.Gray(0.5))
	s := scene.New(scene.Description{
		Primitives: []geometry.Primitive{geometry.NewPlane(core.NewVec3(0, 0, -5), core.NewVec3(0, 0, 1), mirror)},
		Background: testBackground,
	})
	got := NewPathTracer(s).Radiance(originRay, 2, core.NewSeededSampler(8, 9))
	assertColorNear(t, NewRayTracer(s).Radiance(originRay, 2, nil), got, 1e-12)
}

func TestPathTracer_Deterministic(t *testing.T) {
	s, err := scene.ByName("cornell")
	require.NoError(t, err)
	pt := NewPathTracer(s)
	ray := s.Camera().GetRay(200, 200)

	a := pt.Radiance(ray, 8, core.NewSeededSampler(42, 7))
	b := pt.Radiance(ray, 8, core.NewSeededSampler(42, 7))
	assert.Equal(t, a, b)
}

func TestPathTracer_BuiltinScenesFinite(t *testing.T) {
	for _, name := range scene.Names() {
		t.Run(name, func(t *testing.T) {
			s, err := scene.ByName(name)
			require.NoError(t, err)
			pt := NewPathTracer(s)
			sampler := core.NewSeededSampler(1, 2)
			assertFiniteImage(t, s, func(ray core.Ray) core.Color { return pt.Radiance(ray, 6, sampler) })
		})
	}
}
