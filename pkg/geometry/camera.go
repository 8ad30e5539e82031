package geometry

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/df07/go-raycore/pkg/core"
)

// CameraConfig describes a pinhole camera
type CameraConfig struct {
	Position core.Vec3 // Eye position
	LookAt   core.Vec3 // Point the camera looks at
	Up       core.Vec3 // Approximate up direction
	VFov     float64   // Vertical field of view in degrees
	Width    int       // Image width in pixels
	Height   int       // Image height in pixels
}

// Camera generates primary rays. It is immutable once created; derive a
// camera with a different resolution via WithResolution.
type Camera struct {
	config        CameraConfig
	cameraToWorld mgl64.Mat4
	halfHeight    float64 // tan(vfov/2)
}

// NewCamera creates a camera from its configuration. A degenerate setup
// (look-at equal to position, up parallel to the view direction) falls back
// to a valid basis instead of producing NaN rays.
func NewCamera(config CameraConfig) *Camera {
	forward := config.LookAt.Subtract(config.Position)
	if forward.LengthSquared() == 0 {
		forward = core.NewVec3(0, 0, -1)
		config.LookAt = config.Position.Add(forward)
	}
	up := config.Up
	if up.Normalize().Cross(forward.Normalize()).LengthSquared() < 1e-12 {
		if math.Abs(forward.Normalize().Y) < 0.9 {
			up = core.NewVec3(0, 1, 0)
		} else {
			up = core.NewVec3(0, 0, 1)
		}
		config.Up = up
	}
	if config.VFov <= 0 || config.VFov >= 180 {
		config.VFov = 60
	}

	view := mgl64.LookAtV(toMgl(config.Position), toMgl(config.LookAt), toMgl(up))
	return &Camera{
		config:        config,
		cameraToWorld: view.Inv(),
		halfHeight:    math.Tan(mgl64.DegToRad(config.VFov) / 2),
	}
}

// NewCameraDirection creates a camera looking along direction instead of at a point
func NewCameraDirection(position, direction, up core.Vec3, vfov float64, width, height int) *Camera {
	return NewCamera(CameraConfig{
		Position: position,
		LookAt:   position.Add(direction),
		Up:       up,
		VFov:     vfov,
		Width:    width,
		Height:   height,
	})
}

// WithResolution returns a copy of the camera rendering at width×height
func (c *Camera) WithResolution(width, height int) *Camera {
	cfg := c.config
	cfg.Width = width
	cfg.Height = height
	return NewCamera(cfg)
}

// Config returns the configuration the camera was built from
func (c *Camera) Config() CameraConfig {
	return c.config
}

// Width returns the image width in pixels
func (c *Camera) Width() int { return c.config.Width }

// Height returns the image height in pixels
func (c *Camera) Height() int { return c.config.Height }

// AspectRatio returns width/height, 1 for an unset resolution
func (c *Camera) AspectRatio() float64 {
	if c.config.Width <= 0 || c.config.Height <= 0 {
		return 1
	}
	return float64(c.config.Width) / float64(c.config.Height)
}

// GetRay returns the primary ray through continuous image coordinates
// (px, py), measured in pixels from the top-left corner. The pixel (i, j)
// covers [i, i+1) × [j, j+1).
func (c *Camera) GetRay(px, py float64) core.Ray {
	w := float64(max(c.config.Width, 1))
	h := float64(max(c.config.Height, 1))

	x := (2*px/w - 1) * c.halfHeight * c.AspectRatio()
	y := (1 - 2*py/h) * c.halfHeight

	dir := c.cameraToWorld.Mul4x1(mgl64.Vec4{x, y, -1, 0})
	return core.NewRay(c.config.Position, core.NewVec3(dir[0], dir[1], dir[2]))
}

func toMgl(v core.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{v.X, v.Y, v.Z}
}
