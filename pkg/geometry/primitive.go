package geometry

import (
	"fmt"

	"github.com/df07/go-raycore/pkg/core"
	"github.com/df07/go-raycore/pkg/material"
)

// Kind tags the variant held by a Primitive
type Kind uint8

const (
	KindPlane Kind = iota
	KindSphere
	KindTriangle
)

func (k Kind) String() string {
	switch k {
	case KindPlane:
		return "plane"
	case KindSphere:
		return "sphere"
	case KindTriangle:
		return "triangle"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Primitive is a closed sum type over the supported shapes. Only the field
// matching Kind is meaningful. Intersection dispatches with a switch on
// Kind instead of an interface call.
type Primitive struct {
	Kind     Kind
	Plane    Plane
	Sphere   Sphere
	Triangle Triangle
	Material *material.Material
}

// NewPlane creates a plane primitive
func NewPlane(point, normal core.Vec3, mat *material.Material) Primitive {
	return Primitive{Kind: KindPlane, Plane: NewPlaneShape(point, normal), Material: mat}
}

// NewSphere creates a sphere primitive
func NewSphere(center core.Vec3, radius float64, mat *material.Material) Primitive {
	return Primitive{Kind: KindSphere, Sphere: Sphere{Center: center, Radius: radius}, Material: mat}
}

// NewTriangle creates a flat-shaded triangle primitive
func NewTriangle(v0, v1, v2 core.Vec3, mat *material.Material) Primitive {
	return Primitive{Kind: KindTriangle, Triangle: NewTriangleShape(v0, v1, v2), Material: mat}
}

// NewSmoothTriangle creates a triangle primitive with vertex normals
func NewSmoothTriangle(v0, v1, v2, n0, n1, n2 core.Vec3, mat *material.Material) Primitive {
	return Primitive{Kind: KindTriangle, Triangle: NewSmoothTriangleShape(v0, v1, v2, n0, n1, n2), Material: mat}
}

// IntersectSurface returns the material-free hit for the held shape
func (p *Primitive) IntersectSurface(ray core.Ray) (SurfaceHit, bool) {
	switch p.Kind {
	case KindPlane:
		return p.Plane.Intersect(ray)
	case KindSphere:
		return p.Sphere.Intersect(ray)
	case KindTriangle:
		return p.Triangle.Intersect(ray)
	default:
		return SurfaceHit{}, false
	}
}

// Intersect tests the ray against the primitive and fills a HitRecord
func (p *Primitive) Intersect(ray core.Ray) (HitRecord, bool) {
	surface, ok := p.IntersectSurface(ray)
	if !ok {
		return HitRecord{}, false
	}
	return surface.record(ray, p.Material), true
}

// Bounds returns the primitive's bounding box
func (p *Primitive) Bounds() core.AABB {
	switch p.Kind {
	case KindPlane:
		return p.Plane.Bounds()
	case KindSphere:
		return p.Sphere.Bounds()
	case KindTriangle:
		return p.Triangle.Bounds()
	default:
		return core.EmptyAABB()
	}
}

func (p Primitive) String() string {
	switch p.Kind {
	case KindPlane:
		return fmt.Sprintf("plane{point=%v normal=%v}", p.Plane.Point, p.Plane.Normal)
	case KindSphere:
		return fmt.Sprintf("sphere{center=%v radius=%g}", p.Sphere.Center, p.Sphere.Radius)
	case KindTriangle:
		return fmt.Sprintf("triangle{%v %v %v}", p.Triangle.V0, p.Triangle.V1, p.Triangle.V2)
	default:
		return p.Kind.String()
	}
}
