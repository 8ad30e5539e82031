package geometry

import (
	"github.com/df07/go-raycore/pkg/core"
	"github.com/df07/go-raycore/pkg/material"
)

// HitRecord contains information about a ray-object intersection. It is a
// transient value produced per query and never retained by the scene.
type HitRecord struct {
	T               float64            // Parameter t along the ray
	Point           core.Vec3          // Point of intersection
	Normal          core.Vec3          // Shading normal, on the side the ray arrived from
	GeometricNormal core.Vec3          // True surface normal, on the side the ray arrived from
	FrontFace       bool               // Whether ray hit the front face
	UV              core.Vec2          // Surface parameterization for texturing
	Material        *material.Material // Material of the hit object
}

// SetFaceNormal orients both normals against the ray and records which face was hit.
// outwardGeometric decides the face; outwardShading is flipped along with it.
func (h *HitRecord) SetFaceNormal(ray core.Ray, outwardGeometric, outwardShading core.Vec3) {
	h.FrontFace = ray.Direction.Dot(outwardGeometric) < 0
	if h.FrontFace {
		h.GeometricNormal = outwardGeometric
		h.Normal = outwardShading
	} else {
		h.GeometricNormal = outwardGeometric.Negate()
		h.Normal = outwardShading.Negate()
	}
}

// SurfaceHit is the material-free result of intersecting a single shape
type SurfaceHit struct {
	T       float64
	Normal  core.Vec3 // Outward geometric normal, unit length
	Shading core.Vec3 // Outward shading normal, unit length
	UV      core.Vec2
}

// record converts a surface hit into a full HitRecord
func (s SurfaceHit) record(ray core.Ray, mat *material.Material) HitRecord {
	if mat == nil {
		mat = material.Default
	}
	rec := HitRecord{
		T:        s.T,
		Point:    ray.At(s.T),
		UV:       s.UV,
		Material: mat,
	}
	rec.SetFaceNormal(ray, s.Normal, s.Shading)
	return rec
}
