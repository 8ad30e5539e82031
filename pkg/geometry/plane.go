package geometry

import (
	"math"

	"github.com/df07/go-raycore/pkg/core"
)

// parallelEpsilon bounds |n·d| below which a ray counts as parallel to a plane
const parallelEpsilon = 1e-9

// Plane represents an infinite plane defined by a point and normal
type Plane struct {
	Point  core.Vec3 // A point on the plane
	Normal core.Vec3 // Unit normal
}

// NewPlaneShape creates a plane, normalizing its normal
func NewPlaneShape(point, normal core.Vec3) Plane {
	return Plane{Point: point, Normal: normal.Normalize()}
}

// Intersect tests if a ray intersects with the plane
func (p Plane) Intersect(ray core.Ray) (SurfaceHit, bool) {
	denominator := ray.Direction.Dot(p.Normal)
	if math.Abs(denominator) < parallelEpsilon {
		return SurfaceHit{}, false
	}

	t := p.Point.Subtract(ray.Origin).Dot(p.Normal) / denominator
	if !ray.Contains(t) {
		return SurfaceHit{}, false
	}

	// Texture coordinates are the hit position expressed in a basis lying in the plane
	tangent, bitangent := core.OrthonormalBasis(p.Normal)
	local := ray.At(t).Subtract(p.Point)
	return SurfaceHit{
		T:       t,
		Normal:  p.Normal,
		Shading: p.Normal,
		UV:      core.NewVec2(local.Dot(tangent), local.Dot(bitangent)),
	}, true
}

// Bounds returns an unbounded box; planes are never placed in a BVH
func (p Plane) Bounds() core.AABB {
	return core.InfiniteAABB()
}
