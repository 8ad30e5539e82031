package geometry

import (
	"math"

	"github.com/df07/go-raycore/pkg/core"
	"github.com/df07/go-raycore/pkg/material"
)

// NewBoxMesh creates an axis-aligned box made of 12 outward-facing triangles
func NewBoxMesh(name string, lo, hi core.Vec3, mat *material.Material) *Mesh {
	x0, y0, z0 := lo.X, lo.Y, lo.Z
	x1, y1, z1 := hi.X, hi.Y, hi.Z
	v := core.NewVec3

	// Each quad is wound counter-clockwise when seen from outside
	quads := [6][4]core.Vec3{
		{v(x0, y0, z0), v(x0, y0, z1), v(x0, y1, z1), v(x0, y1, z0)}, // -X
		{v(x1, y0, z0), v(x1, y1, z0), v(x1, y1, z1), v(x1, y0, z1)}, // +X
		{v(x0, y0, z0), v(x1, y0, z0), v(x1, y0, z1), v(x0, y0, z1)}, // -Y
		{v(x0, y1, z0), v(x0, y1, z1), v(x1, y1, z1), v(x1, y1, z0)}, // +Y
		{v(x0, y0, z0), v(x0, y1, z0), v(x1, y1, z0), v(x1, y0, z0)}, // -Z
		{v(x0, y0, z1), v(x1, y0, z1), v(x1, y1, z1), v(x0, y1, z1)}, // +Z
	}

	triangles := make([]Triangle, 0, 12)
	for _, q := range quads {
		triangles = append(triangles,
			NewTriangleShape(q[0], q[1], q[2]),
			NewTriangleShape(q[0], q[2], q[3]))
	}
	return NewMesh(name, triangles, mat)
}

// NewQuadTriangles splits the parallelogram corner, corner+u, corner+u+v,
// corner+v into two triangles whose normal is u×v.
func NewQuadTriangles(corner, u, v core.Vec3) [2]Triangle {
	p1 := corner.Add(u)
	p2 := corner.Add(u).Add(v)
	p3 := corner.Add(v)
	return [2]Triangle{
		NewTriangleShape(corner, p1, p2),
		NewTriangleShape(corner, p2, p3),
	}
}

var icosahedronFaces = [20][3]int{
	{0, 11, 5}, {0, 5, 1}, {0, 1, 7}, {0, 7, 10}, {0, 10, 11},
	{1, 5, 9}, {5, 11, 4}, {11, 10, 2}, {10, 7, 6}, {7, 1, 8},
	{3, 9, 4}, {3, 4, 2}, {3, 2, 6}, {3, 6, 8}, {3, 8, 9},
	{4, 9, 5}, {2, 4, 11}, {6, 2, 10}, {8, 6, 7}, {9, 8, 1},
}

// NewIcosphereMesh approximates a sphere by subdividing an icosahedron.
// With smooth set, vertex normals point radially for smooth shading.
func NewIcosphereMesh(name string, center core.Vec3, radius float64, subdivisions int, smooth bool, mat *material.Material) *Mesh {
	t := (1.0 + math.Sqrt(5.0)) / 2.0
	unit := []core.Vec3{
		{X: -1, Y: t}, {X: 1, Y: t}, {X: -1, Y: -t}, {X: 1, Y: -t},
		{Y: -1, Z: t}, {Y: 1, Z: t}, {Y: -1, Z: -t}, {Y: 1, Z: -t},
		{X: t, Z: -1}, {X: t, Z: 1}, {X: -t, Z: -1}, {X: -t, Z: 1},
	}
	for i := range unit {
		unit[i] = unit[i].Normalize()
	}
	faces := icosahedronFaces[:]

	for range subdivisions {
		midpoints := make(map[[2]int]int)
		midpoint := func(a, b int) int {
			key := [2]int{min(a, b), max(a, b)}
			if idx, ok := midpoints[key]; ok {
				return idx
			}
			unit = append(unit, unit[a].Add(unit[b]).Normalize())
			midpoints[key] = len(unit) - 1
			return len(unit) - 1
		}

		next := make([][3]int, 0, len(faces)*4)
		for _, f := range faces {
			a := midpoint(f[0], f[1])
			b := midpoint(f[1], f[2])
			c := midpoint(f[2], f[0])
			next = append(next,
				[3]int{f[0], a, c}, [3]int{f[1], b, a},
				[3]int{f[2], c, b}, [3]int{a, b, c})
		}
		faces = next
	}

	vertices := make([]core.Vec3, len(unit))
	for i, n := range unit {
		vertices[i] = center.Add(n.Multiply(radius))
	}

	triangles := make([]Triangle, 0, len(faces))
	for _, f := range faces {
		if smooth {
			triangles = append(triangles, NewSmoothTriangleShape(
				vertices[f[0]], vertices[f[1]], vertices[f[2]],
				unit[f[0]], unit[f[1]], unit[f[2]]))
		} else {
			triangles = append(triangles, NewTriangleShape(vertices[f[0]], vertices[f[1]], vertices[f[2]]))
		}
	}
	return NewMesh(name, triangles, mat)
}
