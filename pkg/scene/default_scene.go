package scene

import (
	"github.com/df07/go-raycore/pkg/core"
	"github.com/df07/go-raycore/pkg/geometry"
	"github.com/df07/go-raycore/pkg/lights"
	"github.com/df07/go-raycore/pkg/material"
)

// NewDefaultScene creates a default scene with spheres on a checkered
// ground, lit by a point light, a sun and a little ambient light.
func NewDefaultScene() *Scene {
	camera := geometry.NewCamera(geometry.CameraConfig{
		Position: core.NewVec3(0, 0.75, 2), // Position camera higher and farther back
		LookAt:   core.NewVec3(0, 0.5, -1), // Look at the center sphere
		Up:       core.NewVec3(0, 1, 0),
		VFov:     40.0,
		Width:    400,
		Height:   225,
	})

	// Create materials
	ground := &material.Material{
		Name:      "ground",
		Kd:        core.NewColor(0.8, 0.8, 0.0).Multiply(0.6),
		Checkered: true,
	}
	red := material.NewDiffuse(core.NewColor(0.65, 0.25, 0.2))
	silver := material.NewMirror(core.NewColor(0.8, 0.8, 0.8))
	gold := material.NewGlossy(core.NewColor(0.4, 0.3, 0.1), core.NewColor(0.5, 0.4, 0.2), 64)
	blue := material.NewGlossy(core.NewColor(0.1, 0.2, 0.5), core.NewColor(0.2, 0.2, 0.2), 200)

	primitives := []geometry.Primitive{
		geometry.NewPlane(core.NewVec3(0, 0, 0), core.NewVec3(0, 1, 0), ground),
		geometry.NewSphere(core.NewVec3(0, 0.5, -1), 0.5, red),
		geometry.NewSphere(core.NewVec3(-1, 0.5, -1), 0.5, silver),
		geometry.NewSphere(core.NewVec3(1, 0.5, -1), 0.5, gold),
		geometry.NewSphere(core.NewVec3(0.5, 0.25, -0.4), 0.25, blue),
	}

	// A small box sitting in front of the spheres
	box := geometry.NewBoxMesh("box",
		core.NewVec3(-0.7, 0, -0.6), core.NewVec3(-0.3, 0.3, -0.3),
		material.NewDiffuse(core.NewColor(0.2, 0.6, 0.3)))

	return New(Description{
		Name:       "default",
		Camera:     camera,
		Primitives: primitives,
		Meshes:     []*geometry.Mesh{box},
		Lights: []lights.Light{
			lights.NewPointLight(core.NewVec3(2, 4, 1), core.NewColor(15.0, 14.0, 13.0)),
			lights.NewDirectionalLight(core.NewVec3(-1, -2, -1), core.NewColor(0.4, 0.4, 0.45)),
			lights.NewAmbientLight(core.Gray(0.05)),
		},
		Background: core.NewColor(0.5, 0.7, 1.0),
	})
}
