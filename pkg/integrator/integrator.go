package integrator

import (
	"github.com/df07/go-raycore/pkg/core"
	"github.com/df07/go-raycore/pkg/geometry"
	"github.com/df07/go-raycore/pkg/material"
)

// Integrator defines the interface for light transport algorithms
type Integrator interface {
	// Radiance returns the radiance arriving along ray. depth bounds the
	// number of surface interactions; depth <= 0 yields black. Deterministic
	// integrators ignore the sampler.
	Radiance(ray core.Ray, depth int, sampler core.Sampler) core.Color
}

// phongShade evaluates diffuse and highlight terms for light of the given
// incident intensity arriving from toLight. Intensities follow the
// convention that a white diffuse surface facing a light reflects exactly
// the incident intensity.
func phongShade(mat *material.Material, kd core.Color, normal, toViewer, toLight core.Vec3, intensity core.Color) core.Color {
	cosTheta := normal.Dot(toLight)
	if cosTheta <= 0 {
		return core.Color{}
	}
	color := kd.MultiplyVec(intensity).Multiply(cosTheta)
	if mat.HasSpecular() {
		if h := mat.Highlight(toLight, toViewer, normal); h > 0 {
			color = color.Add(mat.Ks.MultiplyVec(intensity).Multiply(h))
		}
	}
	return color
}

// shadowOrigin returns the start of a shadow or continuation ray leaving
// the hit point in direction dir
func shadowOrigin(hit geometry.HitRecord, dir core.Vec3) core.Vec3 {
	return core.OffsetOrigin(hit.Point, hit.GeometricNormal, dir)
}

// facesLight reports whether dir leaves the surface on the side the ray
// arrived from
func facesLight(hit geometry.HitRecord, dir core.Vec3) bool {
	return dir.Dot(hit.GeometricNormal) > 0
}
