package integrator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/df07/go-raycore/pkg/core"
	"github.com/df07/go-raycore/pkg/geometry"
	"github.com/df07/go-raycore/pkg/lights"
	"github.com/df07/go-raycore/pkg/material"
	"github.com/df07/go-raycore/pkg/scene"
)

func TestRayTracer_DirectLighting(t *testing.T) {
	blocker := []geometry.Primitive{geometry.NewSphere(core.NewVec3(0, 1.5, -2), 0.3, material.NewDiffuse(core.Gray(1)))}

	tests := []struct {
		name     string
		scene    *scene.Scene
		expected core.Color
	}{
		{
			name:     "point light head on",
			scene:    sphereScene(nil, lights.NewPointLight(core.NewVec3(0, 0, 0), core.Gray(16))),
			expected: sphereAlbedo,
		},
		{
			name:     "point light at an angle",
			scene:    sphereScene(nil, lights.NewPointLight(core.NewVec3(0, 3, 0), core.Gray(25))),
			expected: sphereAlbedo.Multiply(0.8),
		},
		{
			name:     "point light shadowed",
			scene:    sphereScene(blocker, lights.NewPointLight(core.NewVec3(0, 3, 0), core.Gray(25))),
			expected: core.Color{},
		},
		{
			name: "ambient reaches shadowed points",
			scene: sphereScene(blocker,
				lights.NewPointLight(core.NewVec3(0, 3, 0), core.Gray(25)),
				lights.NewAmbientLight(core.Gray(0.1))),
			expected: sphereAlbedo.Multiply(0.1),
		},
		{
			name:     "directional light",
			scene:    sphereScene(nil, lights.NewDirectionalLight(core.NewVec3(0, 0, -1), core.Gray(0.5))),
			expected: sphereAlbedo.Multiply(0.5),
		},
		{
			name:     "light behind the surface",
			scene:    sphereScene(nil, lights.NewPointLight(core.NewVec3(0, 0, -10), core.Gray(100))),
			expected: core.Color{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rt := NewRayTracer(tt.scene)
			assertColorNear(t, tt.expected, rt.Radiance(originRay, 5, nil), 1e-9)
		})
	}
}

func TestRayTracer_MissAndDepth(t *testing.T) {
	rt := NewRayTracer(sphereScene(nil, lights.NewPointLight(core.NewVec3(0, 0, 0), core.Gray(16))))

	assert.Equal(t, testBackground, rt.Radiance(nowhereRay, 3, nil))
	assert.Equal(t, core.Color{}, rt.Radiance(originRay, 0, nil))
	assert.Equal(t, core.Color{}, rt.Radiance(nowhereRay, -1, nil))
}

func TestRayTracer_MirrorRecursion(t *testing.T) {
	mirror := material.NewMirror(core.Gray(0.5))
	s := scene.New(scene.Description{
		Primitives: []geometry.Primitive{geometry.NewPlane(core.NewVec3(0, 0, -5), core.NewVec3(0, 0, 1), mirror)},
		Background: testBackground,
	})
	rt := NewRayTracer(s)

	// The reflected ray needs a second interaction to see the background
	assertColorNear(t, core.Color{}, rt.Radiance(originRay, 1, nil), 1e-12)
	assertColorNear(t, testBackground.Multiply(0.5), rt.Radiance(originRay, 2, nil), 1e-12)
}

func TestRayTracer_Highlight(t *testing.T) {
	glossy := material.NewGlossy(core.Gray(0.4), core.Gray(0.3), 50)
	s := scene.New(scene.Description{
		Primitives: []geometry.Primitive{geometry.NewSphere(core.NewVec3(0, 0, -5), 1, glossy)},
		Lights:     []lights.Light{lights.NewPointLight(core.NewVec3(0, 0, 0), core.Gray(16))},
		Background: testBackground,
	})
	rt := NewRayTracer(s)

	// Light, viewer and normal coincide: full diffuse plus full highlight
	assertColorNear(t, core.Gray(0.7), rt.Radiance(originRay, 1, nil), 1e-9)
	// One more level adds ks times the background behind the camera
	assertColorNear(t, core.Gray(0.7).Add(testBackground.Multiply(0.3)), rt.Radiance(originRay, 2, nil), 1e-9)
}

func TestRayTracer_AreaLight(t *testing.T) {
	const emission = 4.0
	rt := NewRayTracer(emitterScene(emission))
	rt.AreaSamples = 16

	expected := 0.5 * emission * squareFormFactor(0.5, 1)
	got := rt.Radiance(floorRay, 1, nil)
	assert.InEpsilon(t, expected, got.X, 0.01)
	assert.Equal(t, got.X, got.Y)

	// Looking straight at the emitter
	up := core.NewRay(core.NewVec3(0, 0.5, 0), core.NewVec3(0, 1, 0))
	assertColorNear(t, core.Gray(emission), rt.Radiance(up, 1, nil), 1e-12)
}

func TestRayTracer_SphereLight(t *testing.T) {
	const emission = 4.0
	s := glowSphereScene(emission)
	require.Len(t, s.AreaLights(), 1)

	// The cone rule is exact for a surface facing the sphere
	for _, n := range []int{1, 4} {
		rt := NewRayTracer(s)
		rt.AreaSamples = n
		assert.InDelta(t, 0.5*emission/9, rt.Radiance(floorRay, 1, nil).X, 1e-9, "%d samples", n)
	}

	// Looking at the emitter returns its emission only
	up := core.NewRay(core.NewVec3(0, 0.5, 0), core.NewVec3(0, 1, 0))
	assertColorNear(t, core.Gray(emission), NewRayTracer(s).Radiance(up, 1, nil), 1e-12)
}

func TestRayTracer_SphereLightShadowed(t *testing.T) {
	s := glowSphereScene(4)
	blocker := geometry.NewSphere(core.NewVec3(0, 0.5, 0), 0.3, material.NewDiffuse(core.Gray(0.5)))
	blocked := scene.New(scene.Description{Primitives: append(append([]geometry.Primitive(nil), s.Primitives()...), blocker)})

	ray := core.NewRay(core.NewVec3(0.01, 0.1, 0.01), core.NewVec3(0, -1, 0))
	assert.Equal(t, core.Color{}, NewRayTracer(blocked).Radiance(ray, 1, nil))
}

func TestRayTracer_PlaneLight(t *testing.T) {
	const emission = 2.0
	floor := geometry.NewPlane(core.NewVec3(0, 0, 0), core.NewVec3(0, 1, 0), material.NewDiffuse(core.Gray(0.5)))
	wall := geometry.NewPlane(core.NewVec3(0, 0, 0), core.NewVec3(1, 0, 0), material.NewDiffuse(core.Gray(0.5)))
	roof := geometry.NewTriangle(core.NewVec3(-50, 1, -50), core.NewVec3(50, 1, -50), core.NewVec3(0, 1, 50), material.NewDiffuse(core.Gray(0.5)))

	tests := []struct {
		name     string
		scene    *scene.Scene
		ray      core.Ray
		expected float64
	}{
		{"facing", ceilingScene(emission, floor), floorRay, 0.5 * emission},
		{"perpendicular", ceilingScene(emission, wall), wallRay, 0.5 * emission / 2},
		{"shadowed", ceilingScene(emission, floor, roof), floorRay, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewRayTracer(tt.scene).Radiance(tt.ray, 1, nil)
			assertColorNear(t, core.Gray(tt.expected), got, 1e-9)
		})
	}
}

func TestRayTracer_AreaSamplesConverge(t *testing.T) {
	s := emitterScene(1)
	coarse := NewRayTracer(s)
	coarse.AreaSamples = 2
	fine := NewRayTracer(s)
	fine.AreaSamples = 32

	expected := 0.5 * squareFormFactor(0.5, 1)
	coarseErr := coarse.Radiance(floorRay, 1, nil).X - expected
	fineErr := fine.Radiance(floorRay, 1, nil).X - expected
	assert.Less(t, abs(fineErr), abs(coarseErr))
}

func TestRayTracer_BuiltinScenesFinite(t *testing.T) {
	for _, name := range scene.Names() {
		t.Run(name, func(t *testing.T) {
			s, err := scene.ByName(name)
			require.NoError(t, err)
			rt := NewRayTracer(s)
			rt.AreaSamples = 2
			assertFiniteImage(t, s, func(ray core.Ray) core.Color { return rt.Radiance(ray, 4, nil) })
		})
	}
}

// assertFiniteImage traces an 8x8 grid of camera rays and checks every
// color is finite and non-negative
func assertFiniteImage(t *testing.T, s *scene.Scene, radiance func(core.Ray) core.Color) {
	t.Helper()
	cam := s.Camera()
	for i := 0; i < 8; i++ {
		for j := 0; j < 8; j++ {
			ray := cam.GetRay((float64(i)+0.5)*float64(cam.Width())/8, (float64(j)+0.5)*float64(cam.Height())/8)
			c := radiance(ray)
			require.True(t, c.IsFinite(), "pixel (%d,%d) = %v", i, j, c)
			assert.GreaterOrEqual(t, min(c.X, c.Y, c.Z), 0.0)
		}
	}
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
