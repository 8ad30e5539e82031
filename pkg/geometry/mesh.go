package geometry

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/df07/go-raycore/pkg/core"
	"github.com/df07/go-raycore/pkg/material"
)

// ErrInvalidMesh is returned when indexed mesh data is inconsistent
var ErrInvalidMesh = errors.New("invalid mesh")

// Mesh is an immutable collection of triangles exposed as a single
// intersectable object. A BVH over the triangles is built at construction
// time and answers closest-hit queries.
type Mesh struct {
	Name      string
	triangles []Triangle
	material  *material.Material
	bvh       *BVH
	skipped   int
}

// Transform is applied to mesh vertices before the BVH is built.
// Rotations are in degrees, applied about X, then Y, then Z.
type Transform struct {
	Translate core.Vec3
	Rotate    core.Vec3
	Scale     core.Vec3 // Zero means unit scale
}

// Matrix returns the transform as T·Rz·Ry·Rx·S
func (tr Transform) Matrix() mgl64.Mat4 {
	scale := tr.Scale
	if scale.IsZero() {
		scale = core.NewVec3(1, 1, 1)
	}
	return mgl64.Translate3D(tr.Translate.X, tr.Translate.Y, tr.Translate.Z).
		Mul4(mgl64.HomogRotate3DZ(mgl64.DegToRad(tr.Rotate.Z))).
		Mul4(mgl64.HomogRotate3DY(mgl64.DegToRad(tr.Rotate.Y))).
		Mul4(mgl64.HomogRotate3DX(mgl64.DegToRad(tr.Rotate.X))).
		Mul4(mgl64.Scale3D(scale.X, scale.Y, scale.Z))
}

// NewMesh builds a mesh from triangles. Degenerate triangles (repeated
// vertices or zero area) are dropped and counted in Skipped.
func NewMesh(name string, triangles []Triangle, mat *material.Material) *Mesh {
	if mat == nil {
		mat = material.Default
	}
	kept := make([]Triangle, 0, len(triangles))
	for _, t := range triangles {
		if t.IsDegenerate() {
			continue
		}
		kept = append(kept, t)
	}
	return &Mesh{
		Name:      name,
		triangles: kept,
		material:  mat,
		bvh:       NewBVH(kept),
		skipped:   len(triangles) - len(kept),
	}
}

// NewMeshFromIndexed builds a mesh from a vertex list and triangle indices
// (three per face). normals, if non-nil, holds one normal per vertex. The
// optional transform is applied to vertices and normals first.
func NewMeshFromIndexed(name string, vertices []core.Vec3, faces []int, normals []core.Vec3, mat *material.Material, transform *Transform) (*Mesh, error) {
	if len(faces)%3 != 0 {
		return nil, fmt.Errorf("%w: %d face indices is not a multiple of 3", ErrInvalidMesh, len(faces))
	}
	if normals != nil && len(normals) != len(vertices) {
		return nil, fmt.Errorf("%w: %d normals for %d vertices", ErrInvalidMesh, len(normals), len(vertices))
	}
	for i, idx := range faces {
		if idx < 0 || idx >= len(vertices) {
			return nil, fmt.Errorf("%w: face index %d at position %d out of range", ErrInvalidMesh, idx, i)
		}
	}

	if transform != nil {
		vertices, normals = transformVertices(transform.Matrix(), vertices, normals)
	}

	triangles := make([]Triangle, 0, len(faces)/3)
	for i := 0; i < len(faces); i += 3 {
		i0, i1, i2 := faces[i], faces[i+1], faces[i+2]
		if normals != nil {
			triangles = append(triangles, NewSmoothTriangleShape(
				vertices[i0], vertices[i1], vertices[i2],
				normals[i0], normals[i1], normals[i2]))
		} else {
			triangles = append(triangles, NewTriangleShape(vertices[i0], vertices[i1], vertices[i2]))
		}
	}
	return NewMesh(name, triangles, mat), nil
}

// transformVertices applies m to points and its inverse transpose to normals
func transformVertices(m mgl64.Mat4, vertices, normals []core.Vec3) ([]core.Vec3, []core.Vec3) {
	outV := make([]core.Vec3, len(vertices))
	for i, v := range vertices {
		p := m.Mul4x1(mgl64.Vec4{v.X, v.Y, v.Z, 1})
		outV[i] = core.NewVec3(p[0], p[1], p[2])
	}
	if normals == nil {
		return outV, nil
	}

	normalMatrix := m.Mat3().Inv().Transpose()
	outN := make([]core.Vec3, len(normals))
	for i, n := range normals {
		tn := normalMatrix.Mul3x1(mgl64.Vec3{n.X, n.Y, n.Z})
		outN[i] = core.NewVec3(tn[0], tn[1], tn[2]).Normalize()
	}
	return outV, outN
}

// Intersect returns the closest triangle hit using the BVH
func (m *Mesh) Intersect(ray core.Ray) (HitRecord, bool) {
	return m.IntersectCounted(ray, nil)
}

// IntersectCounted is Intersect that also records the BVH work in stats
// when stats is not nil
func (m *Mesh) IntersectCounted(ray core.Ray, stats *core.RayStats) (HitRecord, bool) {
	_, surface, ok := m.bvh.IntersectCounted(ray, m.triangles, stats)
	if !ok {
		return HitRecord{}, false
	}
	return surface.record(ray, m.material), true
}

// IntersectLinear returns the closest triangle hit by testing every triangle
func (m *Mesh) IntersectLinear(ray core.Ray) (HitRecord, bool) {
	_, surface, ok := IntersectLinear(ray, m.triangles)
	if !ok {
		return HitRecord{}, false
	}
	return surface.record(ray, m.material), true
}

// Triangles returns the mesh triangles. The slice must not be modified.
func (m *Mesh) Triangles() []Triangle {
	return m.triangles
}

// Material returns the material shared by all triangles of the mesh
func (m *Mesh) Material() *material.Material {
	return m.material
}

// Len returns the number of triangles kept in the mesh
func (m *Mesh) Len() int {
	return len(m.triangles)
}

// Skipped returns the number of degenerate triangles dropped at build time
func (m *Mesh) Skipped() int {
	return m.skipped
}

// Bounds returns the axis-aligned bounding box of the mesh
func (m *Mesh) Bounds() core.AABB {
	return m.bvh.Bounds()
}

// BVHStats returns statistics about the mesh's hierarchy
func (m *Mesh) BVHStats() BVHStats {
	return m.bvh.Stats()
}
