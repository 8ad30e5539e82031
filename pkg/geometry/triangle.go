package geometry

import (
	"github.com/df07/go-raycore/pkg/core"
)

// determinantEpsilon rejects rays lying (almost) in the triangle's plane
const determinantEpsilon = 1e-12

// Triangle represents a single triangle defined by three vertices, with
// optional per-vertex normals for smooth shading.
type Triangle struct {
	V0, V1, V2 core.Vec3
	N0, N1, N2 core.Vec3 // Vertex normals, used when HasNormals is set
	HasNormals bool

	edge1, edge2 core.Vec3 // V1-V0 and V2-V0
	normal       core.Vec3 // Cached unit geometric normal
}

// NewTriangleShape creates a triangle from three vertices
func NewTriangleShape(v0, v1, v2 core.Vec3) Triangle {
	t := Triangle{V0: v0, V1: v1, V2: v2}
	t.precompute()
	return t
}

// NewSmoothTriangleShape creates a triangle with per-vertex normals
func NewSmoothTriangleShape(v0, v1, v2, n0, n1, n2 core.Vec3) Triangle {
	t := Triangle{
		V0: v0, V1: v1, V2: v2,
		N0: n0.Normalize(), N1: n1.Normalize(), N2: n2.Normalize(),
		HasNormals: true,
	}
	t.precompute()
	return t
}

func (t *Triangle) precompute() {
	t.edge1 = t.V1.Subtract(t.V0)
	t.edge2 = t.V2.Subtract(t.V0)
	t.normal = t.edge1.Cross(t.edge2).Normalize()
}

// Normal returns the unit geometric normal, following the V0→V1→V2 winding
func (t Triangle) Normal() core.Vec3 {
	return t.normal
}

// Area returns the surface area of the triangle
func (t Triangle) Area() float64 {
	return 0.5 * t.edge1.Cross(t.edge2).Length()
}

// IsDegenerate reports whether the triangle has (numerically) zero area
func (t Triangle) IsDegenerate() bool {
	return t.V0 == t.V1 || t.V0 == t.V2 || t.V1 == t.V2 || t.normal.IsZero()
}

// PointAt returns the point with barycentric coordinates (1-u-v, u, v)
func (t Triangle) PointAt(u, v float64) core.Vec3 {
	return t.V0.Add(t.edge1.Multiply(u)).Add(t.edge2.Multiply(v))
}

// Barycentric solves the Möller–Trumbore system and returns the
// barycentric coordinates (u, v) and the ray parameter without applying
// any range or inside test.
func (t Triangle) Barycentric(ray core.Ray) (u, v, tHit float64, ok bool) {
	h := ray.Direction.Cross(t.edge2)
	a := t.edge1.Dot(h)

	// Ray lies in the plane of the triangle
	if a > -determinantEpsilon && a < determinantEpsilon {
		return 0, 0, 0, false
	}

	f := 1.0 / a
	s := ray.Origin.Subtract(t.V0)
	u = f * s.Dot(h)
	q := s.Cross(t.edge1)
	v = f * ray.Direction.Dot(q)
	tHit = f * t.edge2.Dot(q)
	return u, v, tHit, true
}

// Intersect tests if a ray intersects with the triangle using the
// Möller-Trumbore algorithm. Barycentric coordinates are accepted on the
// closed interval [0,1], so a ray through a shared edge hits both
// neighbours; the closest-hit ordering then keeps the result stable.
func (t Triangle) Intersect(ray core.Ray) (SurfaceHit, bool) {
	u, v, tHit, ok := t.Barycentric(ray)
	if !ok {
		return SurfaceHit{}, false
	}
	if u < 0.0 || u > 1.0 || v < 0.0 || u+v > 1.0 {
		return SurfaceHit{}, false
	}
	if !ray.Contains(tHit) {
		return SurfaceHit{}, false
	}

	shading := t.normal
	if t.HasNormals {
		w := 1 - u - v
		shading = t.N0.Multiply(w).Add(t.N1.Multiply(u)).Add(t.N2.Multiply(v)).Normalize()
		if shading.IsZero() {
			shading = t.normal
		}
	}

	return SurfaceHit{
		T:       tHit,
		Normal:  t.normal,
		Shading: shading,
		UV:      core.NewVec2(u, v),
	}, true
}

// Bounds returns the axis-aligned bounding box for this triangle
func (t Triangle) Bounds() core.AABB {
	return core.NewAABBFromPoints(t.V0, t.V1, t.V2)
}

// Centroid returns the average of the three vertices
func (t Triangle) Centroid() core.Vec3 {
	return t.V0.Add(t.V1).Add(t.V2).Multiply(1.0 / 3.0)
}
