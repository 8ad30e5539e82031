package core

import "math"

// ShadowEpsilon is the distance secondary rays are pushed off a surface
// along its geometric normal to avoid re-hitting the surface they start on.
const ShadowEpsilon = 1e-4

// Ray represents a ray with an origin, a unit direction and the parametric
// interval [TMin, TMax] in which hits are accepted. Rays are values: derived
// rays are built with Spawn or WithRange, never by mutation.
type Ray struct {
	Origin    Vec3
	Direction Vec3
	TMin      float64
	TMax      float64
}

// NewRay creates a ray over [0, +Inf) with a normalized direction
func NewRay(origin, direction Vec3) Ray {
	return NewRayRange(origin, direction, 0, math.Inf(1))
}

// NewRayRange creates a ray with a normalized direction and explicit range
func NewRayRange(origin, direction Vec3, tMin, tMax float64) Ray {
	return Ray{Origin: origin, Direction: direction.Normalize(), TMin: tMin, TMax: tMax}
}

// At returns the point at parameter t along the ray
func (r Ray) At(t float64) Vec3 {
	return r.Origin.Add(r.Direction.Multiply(t))
}

// WithRange returns a copy of the ray restricted to [tMin, tMax]
func (r Ray) WithRange(tMin, tMax float64) Ray {
	r.TMin = tMin
	r.TMax = tMax
	return r
}

// Contains reports whether t lies inside the ray's valid range
func (r Ray) Contains(t float64) bool {
	return t >= r.TMin && t <= r.TMax
}

// OffsetOrigin pushes point p off a surface with geometric normal n, on the
// side that direction dir leaves through.
func OffsetOrigin(p, n, dir Vec3) Vec3 {
	if dir.Dot(n) < 0 {
		return p.Subtract(n.Multiply(ShadowEpsilon))
	}
	return p.Add(n.Multiply(ShadowEpsilon))
}

// Spawn creates a secondary ray leaving point p (on a surface with geometric
// normal n) in direction dir.
func Spawn(p, n, dir Vec3) Ray {
	return NewRay(OffsetOrigin(p, n, dir), dir)
}
