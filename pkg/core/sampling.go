package core

import (
	"math"
	"math/rand/v2"
)

// Vec2 represents a 2D sample or texture coordinate
type Vec2 struct {
	X, Y float64
}

// NewVec2 creates a new Vec2
func NewVec2(x, y float64) Vec2 {
	return Vec2{X: x, Y: y}
}

// Sampler provides random sampling for rendering algorithms
// Can be swapped out for deterministic testing or different sampling patterns
type Sampler interface {
	Get1D() float64
	Get2D() Vec2
}

// RandomSampler wraps a standard Go random generator
type RandomSampler struct {
	random *rand.Rand
}

// NewRandomSampler creates a sampler from a Go random generator
func NewRandomSampler(random *rand.Rand) *RandomSampler {
	return &RandomSampler{random: random}
}

// NewSeededSampler creates a sampler backed by a PCG generator with the given seeds
func NewSeededSampler(seed1, seed2 uint64) *RandomSampler {
	return &RandomSampler{random: rand.New(rand.NewPCG(seed1, seed2))}
}

// Get1D returns a random float64 in [0, 1)
func (r *RandomSampler) Get1D() float64 {
	return r.random.Float64()
}

// Get2D returns two random float64 values in [0, 1)
func (r *RandomSampler) Get2D() Vec2 {
	return NewVec2(r.random.Float64(), r.random.Float64())
}

// OrthonormalBasis returns two unit vectors that together with n form a
// right-handed orthonormal frame.
func OrthonormalBasis(n Vec3) (tangent, bitangent Vec3) {
	var nt Vec3
	if math.Abs(n.X) > 0.1 {
		nt = NewVec3(0, 1, 0)
	} else {
		nt = NewVec3(1, 0, 0)
	}
	tangent = nt.Cross(n).Normalize()
	bitangent = n.Cross(tangent)
	return tangent, bitangent
}

// SampleCosineHemisphere generates a cosine-weighted random direction in hemisphere around normal
func SampleCosineHemisphere(normal Vec3, sample Vec2) Vec3 {
	a := 2.0 * math.Pi * sample.X
	r := math.Sqrt(sample.Y)

	x := r * math.Cos(a)
	y := r * math.Sin(a)
	z := math.Sqrt(math.Max(0, 1.0-sample.Y))

	tangent, bitangent := OrthonormalBasis(normal)
	return tangent.Multiply(x).Add(bitangent.Multiply(y)).Add(normal.Multiply(z))
}

// CosineHemispherePDF is the density of SampleCosineHemisphere for a
// direction making cos(theta) with the normal
func CosineHemispherePDF(cosTheta float64) float64 {
	if cosTheta <= 0 {
		return 0
	}
	return cosTheta / math.Pi
}

// SamplePhongLobe samples a direction around axis with density proportional
// to cos^exponent of the angle to the axis.
func SamplePhongLobe(axis Vec3, exponent float64, sample Vec2) Vec3 {
	cosAlpha := math.Pow(sample.X, 1.0/(exponent+1.0))
	sinAlpha := math.Sqrt(math.Max(0, 1.0-cosAlpha*cosAlpha))
	phi := 2.0 * math.Pi * sample.Y

	tangent, bitangent := OrthonormalBasis(axis)
	return tangent.Multiply(sinAlpha * math.Cos(phi)).
		Add(bitangent.Multiply(sinAlpha * math.Sin(phi))).
		Add(axis.Multiply(cosAlpha))
}

// PhongLobePDF is the solid-angle density of SamplePhongLobe
func PhongLobePDF(cosAlpha, exponent float64) float64 {
	if cosAlpha <= 0 {
		return 0
	}
	return (exponent + 1.0) / (2.0 * math.Pi) * math.Pow(cosAlpha, exponent)
}

// StratifiedOffset returns the jittered position of sample index i out of n
// inside the unit square, placing samples on a ceil(sqrt(n)) grid.
func StratifiedOffset(i, n int, jitter Vec2) Vec2 {
	if n <= 1 {
		return jitter
	}
	cols := int(math.Ceil(math.Sqrt(float64(n))))
	rows := (n + cols - 1) / cols
	cx := i % cols
	cy := i / cols
	return Vec2{
		X: (float64(cx) + jitter.X) / float64(cols),
		Y: (float64(cy) + jitter.Y) / float64(rows),
	}
}
