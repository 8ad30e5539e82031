package integrator

import (
	"math"

	"github.com/df07/go-raycore/pkg/core"
	"github.com/df07/go-raycore/pkg/geometry"
	"github.com/df07/go-raycore/pkg/lights"
	"github.com/df07/go-raycore/pkg/material"
	"github.com/df07/go-raycore/pkg/scene"
)

// DefaultAreaSamples is the default number of quadrature points per axis
// used to integrate each emissive triangle or sphere
const DefaultAreaSamples = 4

// RayTracer is a deterministic Whitted-style integrator: direct lighting
// from every light with hard shadows, plus recursive mirror reflection
// weighted by ks.
type RayTracer struct {
	scene *scene.Scene

	// AreaSamples is the number of stratified points per axis placed on each
	// emissive triangle or sphere, giving AreaSamples² shadow rays per light.
	AreaSamples int
}

// NewRayTracer creates a ray tracer for the scene
func NewRayTracer(s *scene.Scene) *RayTracer {
	return &RayTracer{scene: s, AreaSamples: DefaultAreaSamples}
}

// Radiance computes the color seen along ray. The sampler is not used.
func (rt *RayTracer) Radiance(ray core.Ray, depth int, _ core.Sampler) core.Color {
	if depth <= 0 {
		return core.Color{}
	}

	hit, isHit := rt.scene.Intersect(ray)
	if !isHit {
		return rt.scene.Background()
	}

	mat := hit.Material
	kd := mat.Albedo(hit.UV)
	toViewer := ray.Direction.Negate()

	color := mat.Emission()
	color = color.Add(rt.directLighting(hit, mat, kd, toViewer))
	color = color.Add(rt.areaLighting(hit, mat, kd, toViewer))

	if mat.HasSpecular() {
		dir := core.Reflect(ray.Direction, hit.Normal)
		if facesLight(hit, dir) {
			reflected := rt.Radiance(core.Spawn(hit.Point, hit.GeometricNormal, dir), depth-1, nil)
			color = color.Add(mat.Ks.MultiplyVec(reflected))
		}
	}
	return color
}

// directLighting sums the contribution of the explicit lights
func (rt *RayTracer) directLighting(hit geometry.HitRecord, mat *material.Material, kd core.Color, toViewer core.Vec3) core.Color {
	var color core.Color
	for _, light := range rt.scene.Lights() {
		if light.Kind == lights.Ambient {
			color = color.Add(kd.MultiplyVec(light.Intensity))
			continue
		}
		sample, ok := light.Illuminate(hit.Point)
		if !ok || !facesLight(hit, sample.Direction) {
			continue
		}
		if !rt.scene.VisibleDir(shadowOrigin(hit, sample.Direction), sample.Direction, sample.Distance) {
			continue
		}
		color = color.Add(phongShade(mat, kd, hit.Normal, toViewer, sample.Direction, sample.Intensity))
	}
	return color
}

// areaLighting integrates every emissive primitive with a fixed rule, so
// the result is deterministic. Each quadrature direction acts as a point
// light whose intensity is the emitted radiance times its share of the
// subtended solid angle, divided by π.
func (rt *RayTracer) areaLighting(hit geometry.HitRecord, mat *material.Material, kd core.Color, toViewer core.Vec3) core.Color {
	n := max(rt.AreaSamples, 1)

	var color core.Color
	for i := range rt.scene.AreaLights() {
		al := &rt.scene.AreaLights()[i]
		switch al.Kind {
		case geometry.KindTriangle:
			color = color.Add(rt.triangleLighting(al, n, hit, mat, kd, toViewer))
		case geometry.KindSphere:
			color = color.Add(rt.sphereLighting(al, n, hit, mat, kd, toViewer))
		case geometry.KindPlane:
			color = color.Add(rt.planeLighting(al, hit, kd))
		}
	}
	return color
}

// triangleLighting places n×n stratified points on the triangle
func (rt *RayTracer) triangleLighting(al *scene.AreaLight, n int, hit geometry.HitRecord, mat *material.Material, kd core.Color, toViewer core.Vec3) core.Color {
	lightNormal := al.Triangle.Normal()
	scale := al.Triangle.Area() / (math.Pi * float64(n*n))

	var color core.Color
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			u, v := uniformTriangle((float64(i)+0.5)/float64(n), (float64(j)+0.5)/float64(n))
			q := al.Triangle.PointAt(u, v)

			toLight := q.Subtract(hit.Point)
			distSq := toLight.LengthSquared()
			if distSq == 0 {
				continue
			}
			dir := toLight.Multiply(1 / math.Sqrt(distSq))
			cosLight := math.Abs(lightNormal.Dot(dir))
			if cosLight == 0 || !facesLight(hit, dir) {
				continue
			}
			if !rt.scene.Visible(shadowOrigin(hit, dir), q) {
				continue
			}
			intensity := al.Emission.Multiply(cosLight * scale / distSq)
			color = color.Add(phongShade(mat, kd, hit.Normal, toViewer, dir, intensity))
		}
	}
	return color
}

// sphereLighting places n×n stratified directions inside the cone the
// sphere subtends, uniform in solid angle. Points on or inside the sphere
// receive nothing from it.
func (rt *RayTracer) sphereLighting(al *scene.AreaLight, n int, hit geometry.HitRecord, mat *material.Material, kd core.Color, toViewer core.Vec3) core.Color {
	sphere := al.Sphere
	toCenter := sphere.Center.Subtract(hit.Point)
	distSq := toCenter.LengthSquared()
	rSq := sphere.Radius * sphere.Radius
	if distSq <= rSq*(1+1e-6) {
		return core.Color{}
	}

	axis := toCenter.Multiply(1 / math.Sqrt(distSq))
	tangent, bitangent := core.OrthonormalBasis(axis)
	cosMax := math.Sqrt(1 - rSq/distSq)
	solidAngle := 2 * math.Pi * (1 - cosMax)
	intensity := al.Emission.Multiply(solidAngle / (math.Pi * float64(n*n)))

	var color core.Color
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			cosAlpha := 1 - (float64(i)+0.5)/float64(n)*(1-cosMax)
			sinAlpha := math.Sqrt(max(0, 1-cosAlpha*cosAlpha))
			phi := 2 * math.Pi * (float64(j) + 0.5) / float64(n)
			dir := tangent.Multiply(sinAlpha * math.Cos(phi)).
				Add(bitangent.Multiply(sinAlpha * math.Sin(phi))).
				Add(axis.Multiply(cosAlpha))
			if !facesLight(hit, dir) {
				continue
			}

			origin := shadowOrigin(hit, dir)
			surface, ok := sphere.Intersect(core.NewRay(origin, dir))
			if !ok || !rt.scene.VisibleDir(origin, dir, surface.T) {
				continue
			}
			color = color.Add(phongShade(mat, kd, hit.Normal, toViewer, dir, intensity))
		}
	}
	return color
}

// planeLighting uses the closed form for an infinite emitter: it fills the
// half of the sphere of directions on its side, so a surface tilted by γ
// from facing it receives Ke·(1+cos γ)/2 in these units. Visibility is
// tested once along the bisector of the surface normal and the direction
// to the plane. Only the diffuse term is evaluated.
func (rt *RayTracer) planeLighting(al *scene.AreaLight, hit geometry.HitRecord, kd core.Color) core.Color {
	plane := al.Plane
	height := hit.Point.Subtract(plane.Point).Dot(plane.Normal)
	if math.Abs(height) <= core.ShadowEpsilon {
		return core.Color{}
	}
	toPlane := plane.Normal
	if height > 0 {
		toPlane = toPlane.Negate()
	}

	cosGamma := hit.Normal.Dot(toPlane)
	bisector := hit.Normal.Add(toPlane)
	if cosGamma <= -1+1e-9 || bisector.IsZero() {
		return core.Color{}
	}
	dir := bisector.Normalize()
	if !facesLight(hit, dir) {
		return core.Color{}
	}

	origin := shadowOrigin(hit, dir)
	surface, ok := plane.Intersect(core.NewRay(origin, dir))
	if !ok || !rt.scene.VisibleDir(origin, dir, surface.T) {
		return core.Color{}
	}
	return kd.MultiplyVec(al.Emission).Multiply((1 + cosGamma) / 2)
}

// uniformTriangle maps the unit square onto barycentric coordinates with
// uniform area density
func uniformTriangle(s, t float64) (u, v float64) {
	su := math.Sqrt(s)
	return su * (1 - t), su * t
}
