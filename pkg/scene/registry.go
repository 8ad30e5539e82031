package scene

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// ErrUnknownScene is returned by ByName for names that are not registered
var ErrUnknownScene = errors.New("unknown scene")

// SceneInfo describes a built-in scene
type SceneInfo struct {
	ID          string // Name accepted by ByName
	DisplayName string
	Description string
	build       func() *Scene
}

var builtins = []SceneInfo{
	{
		ID:          "default",
		DisplayName: "Default Scene",
		Description: "Spheres and a box on a checkered ground under point, sun and ambient light",
		build:       NewDefaultScene,
	},
	{
		ID:          "cornell",
		DisplayName: "Cornell Box",
		Description: "Cornell box lit only by an emissive ceiling quad",
		build:       NewCornellScene,
	},
	{
		ID:          "mesh",
		DisplayName: "Triangle Meshes",
		Description: "Rotated box, pyramid and icospheres showcasing mesh geometry",
		build:       NewMeshScene,
	},
	{
		ID:          "spheres",
		DisplayName: "Sphere Grid",
		Description: "10x10 grid of colored spheres with mixed materials",
		build:       NewSphereScene,
	},
}

// Builtins lists the built-in scenes ordered by ID
func Builtins() []SceneInfo {
	list := slices.Clone(builtins)
	slices.SortFunc(list, func(a, b SceneInfo) int { return strings.Compare(a.ID, b.ID) })
	return list
}

// Names returns the IDs of the built-in scenes, sorted
func Names() []string {
	names := make([]string, 0, len(builtins))
	for _, info := range Builtins() {
		names = append(names, info.ID)
	}
	return names
}

// ByName builds the built-in scene with the given ID. Matching is case
// insensitive.
func ByName(name string) (*Scene, error) {
	for _, info := range builtins {
		if strings.EqualFold(info.ID, strings.TrimSpace(name)) {
			return info.build(), nil
		}
	}
	return nil, fmt.Errorf("%w %q (available: %s)", ErrUnknownScene, name, strings.Join(Names(), ", "))
}
