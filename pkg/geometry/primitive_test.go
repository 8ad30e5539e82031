package geometry

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/df07/go-raycore/pkg/core"
	"github.com/df07/go-raycore/pkg/material"
)

const tolerance = 1e-9

func assertVecNear(t *testing.T, expected, actual core.Vec3, msgAndArgs ...any) {
	t.Helper()
	assert.InDelta(t, expected.X, actual.X, 1e-6, msgAndArgs...)
	assert.InDelta(t, expected.Y, actual.Y, 1e-6, msgAndArgs...)
	assert.InDelta(t, expected.Z, actual.Z, 1e-6, msgAndArgs...)
}

func TestSphere_Intersect_Miss(t *testing.T) {
	sphere := Sphere{Center: core.NewVec3(0, 0, 0), Radius: 1.0}
	ray := core.NewRay(core.NewVec3(2, 0, 0), core.NewVec3(0, 1, 0))

	_, isHit := sphere.Intersect(ray)
	assert.False(t, isHit)
}

func TestSphere_Intersect_FrontAndBackFace(t *testing.T) {
	sphere := NewSphere(core.NewVec3(0, 0, 0), 1.0, nil)

	tests := []struct {
		name           string
		rayOrigin      core.Vec3
		rayDirection   core.Vec3
		expectedT      float64
		expectedFront  bool
		expectedNormal core.Vec3
	}{
		{
			name:           "front face hit",
			rayOrigin:      core.NewVec3(0, 0, 2),
			rayDirection:   core.NewVec3(0, 0, -1),
			expectedT:      1.0,
			expectedFront:  true,
			expectedNormal: core.NewVec3(0, 0, 1),
		},
		{
			name:           "back face hit",
			rayOrigin:      core.NewVec3(0, 0, 0),
			rayDirection:   core.NewVec3(0, 0, 1),
			expectedT:      1.0,
			expectedFront:  false,
			expectedNormal: core.NewVec3(0, 0, -1),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hit, isHit := sphere.Intersect(core.NewRay(tt.rayOrigin, tt.rayDirection))
			require.True(t, isHit)
			assert.InDelta(t, tt.expectedT, hit.T, tolerance)
			assert.Equal(t, tt.expectedFront, hit.FrontFace)
			assertVecNear(t, tt.expectedNormal, hit.Normal)
			assert.Same(t, material.Default, hit.Material, "nil material falls back to the default")
		})
	}
}

func TestSphere_Intersect_Analytic(t *testing.T) {
	// Unit direction from the origin toward a sphere of radius 1 at (0,0,-5)
	sphere := Sphere{Center: core.NewVec3(0, 0, -5), Radius: 1}

	hit, isHit := sphere.Intersect(core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, -1)))
	require.True(t, isHit)
	assert.InDelta(t, 4.0, hit.T, tolerance)
	assertVecNear(t, core.NewVec3(0, 0, 1), hit.Normal)

	// Off-axis ray: t solves |o + t d - c|² = r²
	dir := core.NewVec3(0.1, 0.05, -1).Normalize()
	hit, isHit = sphere.Intersect(core.NewRay(core.NewVec3(0, 0, 0), dir))
	require.True(t, isHit)
	p := dir.Multiply(hit.T)
	assert.InDelta(t, 1.0, p.Subtract(sphere.Center).Length(), 1e-9)
	assertVecNear(t, p.Subtract(sphere.Center).Normalize(), hit.Normal)
}

func TestSphere_Intersect_Range(t *testing.T) {
	sphere := Sphere{Center: core.NewVec3(0, 0, 0), Radius: 1.0}
	ray := core.NewRay(core.NewVec3(0, 0, 2), core.NewVec3(0, 0, -1))

	tests := []struct {
		name      string
		tMin      float64
		tMax      float64
		expectHit bool
		expectedT float64
	}{
		{"full range takes nearest root", 0, math.Inf(1), true, 1},
		{"tMax before sphere", 0, 0.5, false, 0},
		{"tMin past near root takes far root", 1.5, math.Inf(1), true, 3},
		{"tMin past both roots", 3.5, math.Inf(1), false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hit, isHit := sphere.Intersect(ray.WithRange(tt.tMin, tt.tMax))
			require.Equal(t, tt.expectHit, isHit)
			if tt.expectHit {
				assert.InDelta(t, tt.expectedT, hit.T, tolerance)
			}
		})
	}
}

func TestSphere_Intersect_Degenerate(t *testing.T) {
	ray := core.NewRay(core.NewVec3(0, 0, 2), core.NewVec3(0, 0, -1))
	for _, radius := range []float64{0, -1} {
		_, isHit := Sphere{Radius: radius}.Intersect(ray)
		assert.False(t, isHit, "radius %v", radius)
	}
}

func TestPlane_Intersect(t *testing.T) {
	plane := NewPlane(core.NewVec3(0, -1, 0), core.NewVec3(0, 2, 0), nil)

	tests := []struct {
		name          string
		origin        core.Vec3
		direction     core.Vec3
		expectHit     bool
		expectedT     float64
		expectedFront bool
	}{
		{"from above", core.NewVec3(0, 1, 0), core.NewVec3(0, -1, 0), true, 2, true},
		{"from below", core.NewVec3(0, -3, 0), core.NewVec3(0, 1, 0), true, 2, false},
		{"oblique", core.NewVec3(0, 0, 0), core.NewVec3(1, -1, 0), true, math.Sqrt2, true},
		{"parallel", core.NewVec3(0, 1, 0), core.NewVec3(1, 0, 0), false, 0, false},
		{"pointing away", core.NewVec3(0, 1, 0), core.NewVec3(0, 1, 0), false, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hit, isHit := plane.Intersect(core.NewRay(tt.origin, tt.direction))
			require.Equal(t, tt.expectHit, isHit)
			if !tt.expectHit {
				return
			}
			assert.InDelta(t, tt.expectedT, hit.T, tolerance)
			assert.Equal(t, tt.expectedFront, hit.FrontFace)
			assert.InDelta(t, -1.0, hit.Point.Y, tolerance)
			// The reported normal always faces the incoming ray
			assert.Less(t, hit.Normal.Dot(tt.direction), 0.0)
		})
	}
}

func TestPlane_Bounds_Unbounded(t *testing.T) {
	plane := NewPlaneShape(core.NewVec3(0, 0, 0), core.NewVec3(0, 1, 0))
	assert.True(t, math.IsInf(plane.Bounds().Max.X, 1))
}

func TestTriangle_Intersect(t *testing.T) {
	tri := NewTriangle(
		core.NewVec3(0, 0, 0),
		core.NewVec3(1, 0, 0),
		core.NewVec3(0, 1, 0),
		nil,
	)

	tests := []struct {
		name          string
		origin        core.Vec3
		direction     core.Vec3
		expectHit     bool
		expectedFront bool
	}{
		{"inside front", core.NewVec3(0.25, 0.25, 1), core.NewVec3(0, 0, -1), true, true},
		{"inside back", core.NewVec3(0.25, 0.25, -1), core.NewVec3(0, 0, 1), true, false},
		{"outside u", core.NewVec3(1.5, 0.25, 1), core.NewVec3(0, 0, -1), false, false},
		{"outside u+v", core.NewVec3(0.6, 0.6, 1), core.NewVec3(0, 0, -1), false, false},
		{"negative v", core.NewVec3(0.5, -0.1, 1), core.NewVec3(0, 0, -1), false, false},
		{"on vertex", core.NewVec3(0, 0, 1), core.NewVec3(0, 0, -1), true, true},
		{"on hypotenuse", core.NewVec3(0.5, 0.5, 1), core.NewVec3(0, 0, -1), true, true},
		{"parallel", core.NewVec3(-1, 0.25, 0), core.NewVec3(1, 0, 0), false, false},
		{"behind origin", core.NewVec3(0.25, 0.25, -1), core.NewVec3(0, 0, -1), false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hit, isHit := tri.Intersect(core.NewRay(tt.origin, tt.direction))
			require.Equal(t, tt.expectHit, isHit)
			if !tt.expectHit {
				return
			}
			assert.InDelta(t, 1.0, hit.T, tolerance)
			assert.Equal(t, tt.expectedFront, hit.FrontFace)
			assert.InDelta(t, 0.0, hit.Point.Z, tolerance)
			assert.Less(t, hit.Normal.Dot(tt.direction), 0.0)
		})
	}
}

func TestTriangle_SmoothNormals(t *testing.T) {
	n := core.NewVec3(0, 1, 1).Normalize()
	tri := NewSmoothTriangle(
		core.NewVec3(0, 0, 0), core.NewVec3(1, 0, 0), core.NewVec3(0, 1, 0),
		n, n, n, nil,
	)

	hit, isHit := tri.Intersect(core.NewRay(core.NewVec3(0.2, 0.2, 1), core.NewVec3(0, 0, -1)))
	require.True(t, isHit)
	assertVecNear(t, n, hit.Normal, "shading normal is interpolated")
	assertVecNear(t, core.NewVec3(0, 0, 1), hit.GeometricNormal, "geometric normal follows winding")
}

func TestTriangle_Degenerate(t *testing.T) {
	tests := []struct {
		name string
		tri  Triangle
	}{
		{"repeated vertex", NewTriangleShape(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, 0), core.NewVec3(0, 1, 0))},
		{"collinear", NewTriangleShape(core.NewVec3(0, 0, 0), core.NewVec3(1, 1, 1), core.NewVec3(2, 2, 2))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.tri.IsDegenerate())
			_, isHit := tt.tri.Intersect(core.NewRay(core.NewVec3(0.5, 0.5, 1), core.NewVec3(0, 0, -1)))
			assert.False(t, isHit)
		})
	}
}

func TestTriangle_AreaAndPointAt(t *testing.T) {
	tri := NewTriangleShape(core.NewVec3(0, 0, 0), core.NewVec3(2, 0, 0), core.NewVec3(0, 2, 0))
	assert.InDelta(t, 2.0, tri.Area(), tolerance)
	assertVecNear(t, core.NewVec3(2, 0, 0), tri.PointAt(1, 0))
	assertVecNear(t, core.NewVec3(0.5, 0.5, 0), tri.PointAt(0.25, 0.25))
	assertVecNear(t, core.NewVec3(0, 0, 1), tri.Normal())
}

func TestPrimitive_Bounds(t *testing.T) {
	sphere := NewSphere(core.NewVec3(1, 2, 3), 0.5, nil)
	b := sphere.Bounds()
	assertVecNear(t, core.NewVec3(0.5, 1.5, 2.5), b.Min)
	assertVecNear(t, core.NewVec3(1.5, 2.5, 3.5), b.Max)

	tri := NewTriangle(core.NewVec3(0, 0, 0), core.NewVec3(1, 0, 0), core.NewVec3(0, 1, 2), nil)
	b = tri.Bounds()
	assertVecNear(t, core.NewVec3(0, 0, 0), b.Min)
	assertVecNear(t, core.NewVec3(1, 1, 2), b.Max)
}

func TestPrimitive_String(t *testing.T) {
	assert.Contains(t, NewSphere(core.NewVec3(0, 0, 0), 1, nil).String(), "sphere")
	assert.Equal(t, "triangle", KindTriangle.String())
}
