package scene

import (
	"github.com/df07/go-raycore/pkg/core"
	"github.com/df07/go-raycore/pkg/geometry"
	"github.com/df07/go-raycore/pkg/material"
)

// boxSize is the standard Cornell box edge length
const boxSize = 555.0

// NewCornellScene creates a classic Cornell box with triangle walls, a
// ceiling area light and two blocks. It has no explicit lights, so all
// illumination comes from the emissive quad.
func NewCornellScene() *Scene {
	camera := geometry.NewCamera(geometry.CameraConfig{
		Position: core.NewVec3(278, 278, -800), // Outside the box looking in
		LookAt:   core.NewVec3(278, 278, 0),
		Up:       core.NewVec3(0, 1, 0),
		VFov:     40.0,
		Width:    400,
		Height:   400,
	})

	// Create materials
	white := material.NewDiffuse(core.NewColor(0.73, 0.73, 0.73))
	red := material.NewDiffuse(core.NewColor(0.65, 0.05, 0.05))
	green := material.NewDiffuse(core.NewColor(0.12, 0.45, 0.15))
	light := material.NewEmissive(core.NewColor(15, 15, 15))

	var primitives []geometry.Primitive
	// Floor, ceiling and back wall
	primitives = appendQuad(primitives, core.NewVec3(0, 0, 0), core.NewVec3(0, 0, boxSize), core.NewVec3(boxSize, 0, 0), white)
	primitives = appendQuad(primitives, core.NewVec3(0, boxSize, 0), core.NewVec3(boxSize, 0, 0), core.NewVec3(0, 0, boxSize), white)
	primitives = appendQuad(primitives, core.NewVec3(0, 0, boxSize), core.NewVec3(0, boxSize, 0), core.NewVec3(boxSize, 0, 0), white)
	// Left (red) and right (green) walls
	primitives = appendQuad(primitives, core.NewVec3(boxSize, 0, 0), core.NewVec3(0, boxSize, 0), core.NewVec3(0, 0, boxSize), red)
	primitives = appendQuad(primitives, core.NewVec3(0, 0, 0), core.NewVec3(0, 0, boxSize), core.NewVec3(0, boxSize, 0), green)

	// Ceiling light, slightly below the ceiling and facing down
	primitives = appendQuad(primitives,
		core.NewVec3(213, boxSize-1, 227), core.NewVec3(130, 0, 0), core.NewVec3(0, 0, 105), light)

	tall, _ := geometry.NewMeshFromIndexed("tall block", unitCubeVertices, unitCubeFaces, nil, white, &geometry.Transform{
		Translate: core.NewVec3(347.5, 165, 377.5),
		Rotate:    core.NewVec3(0, 15, 0),
		Scale:     core.NewVec3(165, 330, 165),
	})
	short, _ := geometry.NewMeshFromIndexed("short block", unitCubeVertices, unitCubeFaces, nil, white, &geometry.Transform{
		Translate: core.NewVec3(212.5, 82.5, 147.5),
		Rotate:    core.NewVec3(0, -18, 0),
		Scale:     core.NewVec3(165, 165, 165),
	})

	return New(Description{
		Name:       "cornell",
		Camera:     camera,
		Primitives: primitives,
		Meshes:     []*geometry.Mesh{tall, short},
	})
}

// appendQuad adds the two triangles of the parallelogram spanned by u and v
// at corner. The quad faces along u×v.
func appendQuad(dst []geometry.Primitive, corner, u, v core.Vec3, mat *material.Material) []geometry.Primitive {
	for _, t := range geometry.NewQuadTriangles(corner, u, v) {
		dst = append(dst, geometry.NewTriangle(t.V0, t.V1, t.V2, mat))
	}
	return dst
}

// unitCubeVertices is a cube of edge 1 centered at the origin
var unitCubeVertices = []core.Vec3{
	{X: -0.5, Y: -0.5, Z: -0.5}, {X: 0.5, Y: -0.5, Z: -0.5},
	{X: 0.5, Y: 0.5, Z: -0.5}, {X: -0.5, Y: 0.5, Z: -0.5},
	{X: -0.5, Y: -0.5, Z: 0.5}, {X: 0.5, Y: -0.5, Z: 0.5},
	{X: 0.5, Y: 0.5, Z: 0.5}, {X: -0.5, Y: 0.5, Z: 0.5},
}

// unitCubeFaces winds each face counter-clockwise seen from outside
var unitCubeFaces = []int{
	0, 3, 2, 0, 2, 1, // -Z
	4, 5, 6, 4, 6, 7, // +Z
	0, 4, 7, 0, 7, 3, // -X
	1, 2, 6, 1, 6, 5, // +X
	0, 1, 5, 0, 5, 4, // -Y
	3, 7, 6, 3, 6, 2, // +Y
}
