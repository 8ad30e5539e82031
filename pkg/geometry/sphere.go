package geometry

import (
	"math"

	"github.com/df07/go-raycore/pkg/core"
)

// Sphere represents a sphere shape
type Sphere struct {
	Center core.Vec3
	Radius float64
}

// Intersect tests if a ray intersects with the sphere and returns the
// smallest root inside the ray's range.
func (s Sphere) Intersect(ray core.Ray) (SurfaceHit, bool) {
	if s.Radius <= 0 {
		return SurfaceHit{}, false
	}

	// Quadratic equation coefficients: at² + 2·halfB·t + c = 0
	oc := ray.Origin.Subtract(s.Center)
	a := ray.Direction.Dot(ray.Direction)
	halfB := oc.Dot(ray.Direction)
	c := oc.Dot(oc) - s.Radius*s.Radius

	discriminant := halfB*halfB - a*c
	if discriminant < 0 || a == 0 {
		return SurfaceHit{}, false
	}
	sqrtD := math.Sqrt(discriminant)

	// Try the closer intersection point first
	root := (-halfB - sqrtD) / a
	if !ray.Contains(root) {
		root = (-halfB + sqrtD) / a
		if !ray.Contains(root) {
			return SurfaceHit{}, false
		}
	}

	point := ray.At(root)
	normal := point.Subtract(s.Center).Normalize()
	return SurfaceHit{
		T:       root,
		Normal:  normal,
		Shading: normal,
		UV:      sphereUV(normal),
	}, true
}

// sphereUV maps a unit normal to longitude/latitude in [0,1]²
func sphereUV(n core.Vec3) core.Vec2 {
	theta := math.Acos(max(-1, min(1, -n.Y)))
	phi := math.Atan2(-n.Z, n.X) + math.Pi
	return core.NewVec2(phi/(2*math.Pi), theta/math.Pi)
}

// Bounds returns the axis-aligned bounding box for this sphere
func (s Sphere) Bounds() core.AABB {
	r := core.NewVec3(s.Radius, s.Radius, s.Radius)
	return core.NewAABB(s.Center.Subtract(r), s.Center.Add(r))
}
