package scene

import (
	"math"

	"github.com/df07/go-raycore/pkg/core"
	"github.com/df07/go-raycore/pkg/geometry"
	"github.com/df07/go-raycore/pkg/lights"
)

// Description lists everything a scene is built from. It is what a scene
// loader hands to New.
type Description struct {
	Name       string
	Camera     *geometry.Camera
	Lights     []lights.Light
	Primitives []geometry.Primitive
	Meshes     []*geometry.Mesh
	Background core.Color // Radiance of rays that escape the scene
}

// AreaLight is an emissive primitive, collected so the ray tracer can
// integrate its direct contribution. Only the shape matching Kind is
// meaningful. Area lights emit from both sides.
type AreaLight struct {
	Kind     geometry.Kind
	Triangle geometry.Triangle
	Sphere   geometry.Sphere
	Plane    geometry.Plane
	Emission core.Color
}

// Scene contains all the elements needed for rendering. It is built once
// by New and never modified afterwards, so it can be shared by any number
// of render workers without locking.
type Scene struct {
	name       string
	camera     *geometry.Camera
	lights     []lights.Light
	primitives []geometry.Primitive
	meshes     []*geometry.Mesh
	background core.Color
	areaLights []AreaLight

	stats *core.RayStats // Query counters of a per-worker view, nil when not counting
}

// New builds a scene from a description. The description's slices are
// copied; meshes are shared since they are immutable.
func New(desc Description) *Scene {
	s := &Scene{
		name:       desc.Name,
		camera:     desc.Camera,
		lights:     append([]lights.Light(nil), desc.Lights...),
		primitives: append([]geometry.Primitive(nil), desc.Primitives...),
		background: desc.Background,
	}
	for _, m := range desc.Meshes {
		if m != nil {
			s.meshes = append(s.meshes, m)
		}
	}
	if s.camera == nil {
		s.camera = geometry.NewCamera(geometry.CameraConfig{
			LookAt: core.NewVec3(0, 0, -1),
			Up:     core.NewVec3(0, 1, 0),
			VFov:   60,
			Width:  320,
			Height: 240,
		})
	}
	s.collectAreaLights()
	return s
}

// collectAreaLights records every emissive primitive of the scene.
// Degenerate shapes emit nothing and are left out.
func (s *Scene) collectAreaLights() {
	for i := range s.primitives {
		p := &s.primitives[i]
		if p.Material == nil || !p.Material.IsEmissive() {
			continue
		}
		al := AreaLight{Kind: p.Kind, Emission: p.Material.Emission()}
		switch p.Kind {
		case geometry.KindTriangle:
			if p.Triangle.IsDegenerate() {
				continue
			}
			al.Triangle = p.Triangle
		case geometry.KindSphere:
			if p.Sphere.Radius <= 0 {
				continue
			}
			al.Sphere = p.Sphere
		case geometry.KindPlane:
			if p.Plane.Normal.IsZero() {
				continue
			}
			al.Plane = p.Plane
		default:
			continue
		}
		s.areaLights = append(s.areaLights, al)
	}
	for _, m := range s.meshes {
		if !m.Material().IsEmissive() {
			continue
		}
		for _, t := range m.Triangles() {
			s.areaLights = append(s.areaLights, AreaLight{Kind: geometry.KindTriangle, Triangle: t, Emission: m.Material().Emission()})
		}
	}
}

// WithStats returns a view of the scene that records every query in
// stats. The view shares all geometry with s; it must be used by one
// goroutine at a time since stats is not synchronized.
func (s *Scene) WithStats(stats *core.RayStats) *Scene {
	view := *s
	view.stats = stats
	return &view
}

// countTest records one intersection test against a primitive of kind k
func (s *Scene) countTest(k geometry.Kind) {
	switch k {
	case geometry.KindPlane:
		s.stats.PlaneTests++
	case geometry.KindSphere:
		s.stats.SphereTests++
	case geometry.KindTriangle:
		s.stats.TriangleTests++
	}
}

// Name returns the scene name
func (s *Scene) Name() string { return s.name }

// Camera returns the scene camera
func (s *Scene) Camera() *geometry.Camera { return s.camera }

// Lights returns the explicit light sources. The slice must not be modified.
func (s *Scene) Lights() []lights.Light { return s.lights }

// AreaLights returns the emissive primitives. The slice must not be modified.
func (s *Scene) AreaLights() []AreaLight { return s.areaLights }

// Background returns the radiance of rays that leave the scene
func (s *Scene) Background() core.Color { return s.background }

// Primitives returns the top-level primitives. The slice must not be modified.
func (s *Scene) Primitives() []geometry.Primitive { return s.primitives }

// Meshes returns the scene meshes
func (s *Scene) Meshes() []*geometry.Mesh { return s.meshes }

// PrimitiveCount returns the number of top-level primitives plus all mesh triangles
func (s *Scene) PrimitiveCount() int {
	count := len(s.primitives)
	for _, m := range s.meshes {
		count += m.Len()
	}
	return count
}

// Intersect returns the closest hit of ray against every primitive and
// mesh within the ray's range. Exact ties go to the earliest primitive,
// with top-level primitives ordered before meshes.
func (s *Scene) Intersect(ray core.Ray) (geometry.HitRecord, bool) {
	var closest geometry.HitRecord
	hitAnything := false
	closestSoFar := ray.TMax
	if s.stats != nil {
		s.stats.Rays++
	}

	for i := range s.primitives {
		if s.stats != nil {
			s.countTest(s.primitives[i].Kind)
		}
		hit, ok := s.primitives[i].Intersect(ray.WithRange(ray.TMin, closestSoFar))
		if ok && (!hitAnything || hit.T < closestSoFar) {
			hitAnything = true
			closestSoFar = hit.T
			closest = hit
		}
	}
	for _, m := range s.meshes {
		hit, ok := m.IntersectCounted(ray.WithRange(ray.TMin, closestSoFar), s.stats)
		if ok && (!hitAnything || hit.T < closestSoFar) {
			hitAnything = true
			closestSoFar = hit.T
			closest = hit
		}
	}
	return closest, hitAnything
}

// Occluded reports whether anything is hit within the ray's range. It stops
// at the first hit.
func (s *Scene) Occluded(ray core.Ray) bool {
	if s.stats != nil {
		s.stats.ShadowRays++
	}
	for i := range s.primitives {
		if s.stats != nil {
			s.countTest(s.primitives[i].Kind)
		}
		if _, ok := s.primitives[i].IntersectSurface(ray); ok {
			return true
		}
	}
	for _, m := range s.meshes {
		if _, ok := m.IntersectCounted(ray, s.stats); ok {
			return true
		}
	}
	return false
}

// Visible reports whether the segment from a to b is unobstructed. Hits
// within ShadowEpsilon of either end are ignored so the surfaces the points
// lie on do not occlude themselves.
func (s *Scene) Visible(a, b core.Vec3) bool {
	d := b.Subtract(a)
	dist := d.Length()
	if dist <= 2*core.ShadowEpsilon {
		return true
	}
	ray := core.NewRayRange(a, d, core.ShadowEpsilon, dist-core.ShadowEpsilon)
	return !s.Occluded(ray)
}

// VisibleDir reports whether nothing blocks the ray from p along dir up
// to dist. dist may be +Inf for directional lights.
func (s *Scene) VisibleDir(p, dir core.Vec3, dist float64) bool {
	tMax := dist - core.ShadowEpsilon
	if math.IsInf(dist, 1) {
		tMax = dist
	}
	if tMax <= core.ShadowEpsilon {
		return true
	}
	return !s.Occluded(core.NewRayRange(p, dir, core.ShadowEpsilon, tMax))
}
