package integrator

import (
	"math"

	"github.com/df07/go-raycore/pkg/core"
	"github.com/df07/go-raycore/pkg/geometry"
	"github.com/df07/go-raycore/pkg/material"
	"github.com/df07/go-raycore/pkg/scene"
)

// DefaultRRDepth is the number of bounces before Russian roulette may
// terminate a path
const DefaultRRDepth = 5

// minSurvival bounds the Russian roulette continuation probability from
// below so weights stay finite
const minSurvival = 0.05

// PathTracer implements unidirectional path tracing. Emission is gathered
// wherever a path lands; point and directional lights cannot be hit and are
// sampled explicitly at every vertex instead.
type PathTracer struct {
	scene *scene.Scene

	// RRDepth is the bounce after which Russian roulette starts
	RRDepth int
}

// NewPathTracer creates a path tracer for the scene
func NewPathTracer(s *scene.Scene) *PathTracer {
	return &PathTracer{scene: s, RRDepth: DefaultRRDepth}
}

// Radiance estimates the radiance along ray with a single random path of at
// most depth surface interactions.
func (pt *PathTracer) Radiance(ray core.Ray, depth int, sampler core.Sampler) core.Color {
	var radiance core.Color
	throughput := core.NewColor(1, 1, 1)

	for bounce := 0; bounce < depth; bounce++ {
		hit, isHit := pt.scene.Intersect(ray)
		if !isHit {
			radiance = radiance.Add(throughput.MultiplyVec(pt.scene.Background()))
			break
		}

		mat := hit.Material
		kd := mat.Albedo(hit.UV)
		toViewer := ray.Direction.Negate()

		radiance = radiance.Add(throughput.MultiplyVec(mat.Emission()))
		radiance = radiance.Add(throughput.MultiplyVec(pt.deltaLighting(hit, mat, kd, toViewer)))

		dir, weight, ok := pt.scatter(ray, hit, mat, kd, sampler)
		if !ok {
			break
		}
		throughput = throughput.MultiplyVec(weight)
		if throughput.IsZero() {
			break
		}

		if bounce+1 >= pt.RRDepth {
			survival := math.Min(math.Max(throughput.MaxComponent(), minSurvival), 1)
			if sampler.Get1D() >= survival {
				break
			}
			throughput = throughput.Multiply(1 / survival)
		}

		ray = core.Spawn(hit.Point, hit.GeometricNormal, dir)
	}
	return radiance
}

// scatter picks the diffuse or specular lobe in proportion to their
// luminance and samples a continuation direction. weight is the BRDF times
// cosine over the combined probability of the chosen direction.
func (pt *PathTracer) scatter(ray core.Ray, hit geometry.HitRecord, mat *material.Material, kd core.Color, sampler core.Sampler) (core.Vec3, core.Color, bool) {
	pSpecular := mat.SpecularProbability()
	if pSpecular == 0 && kd.IsZero() {
		return core.Vec3{}, core.Color{}, false
	}

	var dir core.Vec3
	var weight core.Color
	if sampler.Get1D() < pSpecular {
		mirror := core.Reflect(ray.Direction, hit.Normal)
		if mat.IsMirror() {
			dir = mirror
			weight = mat.Ks.Multiply(1 / pSpecular)
		} else {
			dir = core.SamplePhongLobe(mirror, mat.Shininess, sampler.Get2D())
			cosTheta := dir.Dot(hit.Normal)
			if cosTheta <= 0 {
				return core.Vec3{}, core.Color{}, false
			}
			n := mat.Shininess
			weight = mat.Ks.Multiply((n + 2) / (n + 1) * cosTheta / pSpecular)
		}
	} else {
		dir = core.SampleCosineHemisphere(hit.Normal, sampler.Get2D())
		weight = kd.Multiply(1 / (1 - pSpecular))
	}

	if !facesLight(hit, dir) {
		return core.Vec3{}, core.Color{}, false
	}
	return dir, weight, true
}

// deltaLighting adds next event estimation for point and directional
// lights using the normalized Phong BRDF.
func (pt *PathTracer) deltaLighting(hit geometry.HitRecord, mat *material.Material, kd core.Color, toViewer core.Vec3) core.Color {
	var color core.Color
	for _, light := range pt.scene.Lights() {
		if !light.IsDelta() {
			continue
		}
		sample, ok := light.Illuminate(hit.Point)
		if !ok || !facesLight(hit, sample.Direction) {
			continue
		}
		cosTheta := hit.Normal.Dot(sample.Direction)
		if cosTheta <= 0 {
			continue
		}
		if !pt.scene.VisibleDir(shadowOrigin(hit, sample.Direction), sample.Direction, sample.Distance) {
			continue
		}

		brdf := kd
		if mat.HasSpecular() {
			if h := mat.Highlight(sample.Direction, toViewer, hit.Normal); h > 0 {
				brdf = brdf.Add(mat.Ks.Multiply((mat.Shininess + 2) / 2 * h))
			}
		}
		color = color.Add(brdf.MultiplyVec(sample.Intensity).Multiply(cosTheta))
	}
	return color
}
