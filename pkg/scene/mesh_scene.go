package scene

import (
	"github.com/df07/go-raycore/pkg/core"
	"github.com/df07/go-raycore/pkg/geometry"
	"github.com/df07/go-raycore/pkg/lights"
	"github.com/df07/go-raycore/pkg/material"
)

// NewMeshScene creates a scene showcasing triangle mesh geometry: a
// rotated box, a pyramid, a flat and a smooth icosphere.
func NewMeshScene() *Scene {
	camera := geometry.NewCamera(geometry.CameraConfig{
		Position: core.NewVec3(0, 2, 6),
		LookAt:   core.NewVec3(0, 1, 0),
		Up:       core.NewVec3(0, 1, 0),
		VFov:     45.0,
		Width:    600,
		Height:   338,
	})

	// Create materials
	redGlossy := material.NewGlossy(core.NewColor(0.6, 0.1, 0.1), core.Gray(0.3), 128)
	blue := material.NewDiffuse(core.NewColor(0.2, 0.3, 0.8))
	gold := material.NewGlossy(core.NewColor(0.5, 0.35, 0.1), core.NewColor(0.4, 0.3, 0.1), 48)
	chrome := material.NewMirror(core.Gray(0.85))
	ground := &material.Material{Name: "ground", Kd: core.Gray(0.7), Checkered: true}

	box, _ := geometry.NewMeshFromIndexed("box", unitCubeVertices, unitCubeFaces, nil, redGlossy, &geometry.Transform{
		Translate: core.NewVec3(-2, 0.5, 0),
		Rotate:    core.NewVec3(0, 30, 0),
	})
	pyramid, _ := geometry.NewMeshFromIndexed("pyramid", pyramidVertices, pyramidFaces, nil, blue, &geometry.Transform{
		Translate: core.NewVec3(-0.3, 0, -1),
		Rotate:    core.NewVec3(0, 45, 0),
		Scale:     core.NewVec3(1.5, 2, 1.5),
	})
	flat := geometry.NewIcosphereMesh("icosahedron", core.NewVec3(1.6, 0.8, 0), 0.8, 0, false, gold)
	smooth := geometry.NewIcosphereMesh("icosphere", core.NewVec3(0.5, 0.45, 1.2), 0.45, 3, true, chrome)

	return New(Description{
		Name:   "mesh",
		Camera: camera,
		Primitives: []geometry.Primitive{
			geometry.NewPlane(core.NewVec3(0, 0, 0), core.NewVec3(0, 1, 0), ground),
		},
		Meshes: []*geometry.Mesh{box, pyramid, flat, smooth},
		Lights: []lights.Light{
			lights.NewPointLight(core.NewVec3(2, 6, 3), core.NewColor(40, 37, 33)),
			lights.NewPointLight(core.NewVec3(-3, 4, 2), core.NewColor(8, 9, 11)),
			lights.NewAmbientLight(core.Gray(0.05)),
		},
		Background: core.NewColor(0.5, 0.7, 1.0),
	})
}

// pyramidVertices is a square pyramid of unit base and height, base on y=0
var pyramidVertices = []core.Vec3{
	{X: -0.5, Y: 0, Z: -0.5}, {X: 0.5, Y: 0, Z: -0.5},
	{X: 0.5, Y: 0, Z: 0.5}, {X: -0.5, Y: 0, Z: 0.5},
	{X: 0, Y: 1, Z: 0},
}

var pyramidFaces = []int{
	0, 1, 2, 0, 2, 3, // base
	0, 4, 1, 1, 4, 2, 2, 4, 3, 3, 4, 0,
}
