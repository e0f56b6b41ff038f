// Package camera provides the 2D screen-space camera the primitive renderer
// projects through.
package camera

import (
	"github.com/Faultbox/midgard-gfx/pkg/math"
)

// Camera2D is a screen-sized window onto world space. Position is the world
// coordinate of the top-left screen pixel.
type Camera2D struct {
	Position math.Vec2

	// Screen size in pixels
	Width, Height float32

	// Scale is the zoom factor applied about the screen center.
	Scale float32

	// Inverted flips the vertical axis, as when the player's gravity is reversed.
	Inverted bool

	// Constraints
	MinZoom float32
	MaxZoom float32

	// Sensitivity
	ZoomSensitivity float32
	PanSpeed        float32
}

// New2D creates a camera for a width x height screen with default settings.
func New2D(width, height int) *Camera2D {
	return &Camera2D{
		Width:           float32(width),
		Height:          float32(height),
		Scale:           1.0,
		MinZoom:         0.25,
		MaxZoom:         4.0,
		ZoomSensitivity: 0.1,
		PanSpeed:        8.0,
	}
}

// ScreenSize returns the screen size in pixels.
func (c *Camera2D) ScreenSize() math.Vec2 {
	return math.Vec2{X: c.Width, Y: c.Height}
}

// Zoom returns the current zoom factor.
func (c *Camera2D) Zoom() float32 {
	return c.Scale
}

// ScreenPosition returns the world position of the top-left screen pixel.
func (c *Camera2D) ScreenPosition() math.Vec2 {
	return c.Position
}

// GravityInverted reports whether the vertical axis is flipped.
func (c *Camera2D) GravityInverted() bool {
	return c.Inverted
}

// Resize handles window resize.
func (c *Camera2D) Resize(width, height int) {
	c.Width = float32(width)
	c.Height = float32(height)
}

// HandleZoom updates the zoom factor based on scroll wheel delta.
func (c *Camera2D) HandleZoom(delta float32) {
	c.Scale += delta * c.Scale * c.ZoomSensitivity
	if c.Scale < c.MinZoom {
		c.Scale = c.MinZoom
	}
	if c.Scale > c.MaxZoom {
		c.Scale = c.MaxZoom
	}
}

// HandleMovement pans the camera; right and down are in screen directions.
func (c *Camera2D) HandleMovement(right, down float32) {
	// Keep the on-screen speed constant regardless of zoom
	speed := c.PanSpeed / c.Scale
	c.Position = c.Position.Add(math.Vec2{X: right * speed, Y: down * speed})
}

// CenterOn moves the camera so target sits at the screen center.
func (c *Camera2D) CenterOn(target math.Vec2) {
	c.Position = target.Sub(math.Vec2{X: c.Width / 2, Y: c.Height / 2})
}

// WorldToScreen returns the unzoomed screen pixel for a world position.
func (c *Camera2D) WorldToScreen(world math.Vec2) math.Vec2 {
	return world.Sub(c.Position)
}
