package lights

import (
	"fmt"
	"math"

	"github.com/df07/go-raycore/pkg/core"
)

// Kind tags the variant of a Light
type Kind int

const (
	Point       Kind = iota // Positional light with inverse-square falloff
	Directional             // Light arriving from a fixed direction, no falloff
	Ambient                 // Constant fill light without direction or shadows
)

func (k Kind) String() string {
	switch k {
	case Point:
		return "point"
	case Directional:
		return "directional"
	case Ambient:
		return "ambient"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Light is a read-only light source. Area lights are not represented here:
// any primitive whose material emits (Ke > 0) acts as one.
type Light struct {
	Kind      Kind
	Name      string
	Position  core.Vec3  // Point lights
	Direction core.Vec3  // Directional lights: direction the light travels
	Intensity core.Color // Radiant intensity (point) or irradiance (directional, ambient)
}

// NewPointLight creates a point light
func NewPointLight(position core.Vec3, intensity core.Color) Light {
	return Light{Kind: Point, Position: position, Intensity: intensity}
}

// NewDirectionalLight creates a light travelling along direction
func NewDirectionalLight(direction core.Vec3, intensity core.Color) Light {
	return Light{Kind: Directional, Direction: direction.Normalize(), Intensity: intensity}
}

// NewAmbientLight creates a constant fill light
func NewAmbientLight(intensity core.Color) Light {
	return Light{Kind: Ambient, Intensity: intensity}
}

// Sample describes the light arriving at a surface point
type Sample struct {
	Direction core.Vec3  // Unit vector from the surface point toward the light
	Distance  float64    // Distance to the light, +Inf for directional lights
	Intensity core.Color // Incident intensity after falloff
}

// IsDelta reports whether the light can only be reached by explicit sampling
func (l Light) IsDelta() bool {
	return l.Kind == Point || l.Kind == Directional
}

// Illuminate returns the direction, distance and incident intensity of the
// light at point p. Ambient lights and degenerate configurations (a point
// light sitting on p, a zero direction) report ok=false.
func (l Light) Illuminate(p core.Vec3) (Sample, bool) {
	switch l.Kind {
	case Point:
		toLight := l.Position.Subtract(p)
		distSq := toLight.LengthSquared()
		if distSq == 0 {
			return Sample{}, false
		}
		dist := math.Sqrt(distSq)
		return Sample{
			Direction: toLight.Multiply(1 / dist),
			Distance:  dist,
			Intensity: l.Intensity.Multiply(1 / distSq),
		}, true
	case Directional:
		if l.Direction.IsZero() {
			return Sample{}, false
		}
		return Sample{
			Direction: l.Direction.Normalize().Negate(),
			Distance:  math.Inf(1),
			Intensity: l.Intensity,
		}, true
	default:
		return Sample{}, false
	}
}

func (l Light) String() string {
	name := l.Name
	if name == "" {
		name = l.Kind.String()
	}
	switch l.Kind {
	case Point:
		return fmt.Sprintf("%s: pos=%v intensity=%v", name, l.Position, l.Intensity)
	case Directional:
		return fmt.Sprintf("%s: dir=%v intensity=%v", name, l.Direction, l.Intensity)
	default:
		return fmt.Sprintf("%s: intensity=%v", name, l.Intensity)
	}
}
