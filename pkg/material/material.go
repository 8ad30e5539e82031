package material

import (
	"math"

	"github.com/df07/go-raycore/pkg/core"
)

// MirrorShininess is the exponent at and above which a specular lobe is
// treated as a perfect mirror.
const MirrorShininess = 1e4

// checkerScale is the number of checker cells per unit of texture space
const checkerScale = 4.0

// Material describes how a surface reflects and emits light.
//
// Kd is the diffuse reflectance, Ks the specular reflectance and Ke the
// emitted radiance. Shininess is the Phong exponent controlling how
// concentrated the specular lobe is; zero or MirrorShininess and above
// describe an ideal mirror. Kd+Ks is not checked against energy
// conservation; keeping it below one is up to the scene author.
type Material struct {
	Name      string
	Kd        core.Color
	Ks        core.Color
	Ke        core.Color
	Shininess float64
	Checkered bool // Darken alternating texture cells of the diffuse term
}

// Default is used for primitives constructed without a material
var Default = &Material{Name: "default", Kd: core.Gray(0.5)}

// NewDiffuse creates a purely diffuse material
func NewDiffuse(kd core.Color) *Material {
	return &Material{Kd: kd}
}

// NewEmissive creates a material that only emits light
func NewEmissive(ke core.Color) *Material {
	return &Material{Ke: ke}
}

// NewGlossy creates a material with diffuse and specular terms
func NewGlossy(kd, ks core.Color, shininess float64) *Material {
	return &Material{Kd: kd, Ks: ks, Shininess: shininess}
}

// NewMirror creates an ideal mirror with reflectance ks
func NewMirror(ks core.Color) *Material {
	return &Material{Ks: ks, Shininess: MirrorShininess}
}

// Emission returns the radiance emitted by the surface
func (m *Material) Emission() core.Color {
	return m.Ke
}

// IsEmissive reports whether the material emits light
func (m *Material) IsEmissive() bool {
	return m.Ke.X > 0 || m.Ke.Y > 0 || m.Ke.Z > 0
}

// HasDiffuse reports whether the material has a diffuse term
func (m *Material) HasDiffuse() bool {
	return m.Kd.X > 0 || m.Kd.Y > 0 || m.Kd.Z > 0
}

// HasSpecular reports whether the material has a specular term
func (m *Material) HasSpecular() bool {
	return m.Ks.X > 0 || m.Ks.Y > 0 || m.Ks.Z > 0
}

// IsMirror reports whether the specular lobe is a delta reflection
func (m *Material) IsMirror() bool {
	return m.Shininess <= 0 || m.Shininess >= MirrorShininess
}

// Albedo returns the diffuse reflectance at texture coordinate uv,
// applying the checker pattern when enabled.
func (m *Material) Albedo(uv core.Vec2) core.Color {
	if !m.Checkered {
		return m.Kd
	}
	_, fu := math.Modf(uv.X * checkerScale)
	_, fv := math.Modf(uv.Y * checkerScale)
	if (math.Abs(fu) > 0.5) != (math.Abs(fv) > 0.5) {
		return m.Kd.Multiply(1.0 / 3.0)
	}
	return m.Kd
}

// Highlight evaluates the Phong specular lobe max(0, r·v)^shininess where r
// is the mirror reflection of the light direction about the normal. Mirror
// materials have no glossy highlight: their specular term is carried
// entirely by the reflected ray.
func (m *Material) Highlight(toLight, toViewer, normal core.Vec3) float64 {
	if m.IsMirror() {
		return 0
	}
	r := core.Reflect(toLight.Negate(), normal)
	cosAlpha := r.Dot(toViewer)
	if cosAlpha <= 0 {
		return 0
	}
	return math.Pow(cosAlpha, m.Shininess)
}

// SpecularProbability returns the probability of sampling the specular
// lobe rather than the diffuse one, proportional to their luminance.
func (m *Material) SpecularProbability() float64 {
	d := m.Kd.Luminance()
	s := m.Ks.Luminance()
	if d+s <= 0 {
		return 0
	}
	return s / (d + s)
}
