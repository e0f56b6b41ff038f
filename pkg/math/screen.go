package math

// ScreenCoord maps a screen-space point (already relative to the camera, in
// pixels, Y down) to normalized device coordinates. The point is first scaled
// about the screen center by zoom so that geometry follows the game zoom.
func ScreenCoord(p Vec2, screenW, screenH, zoom float32) Vec3 {
	center := Vec2{screenW / 2, screenH / 2}
	p = center.Add(p.Sub(center).Scale(zoom))

	return Vec3{
		X: -1 + p.X/screenW*2,
		Y: -(-1 + p.Y/screenH*2),
		Z: 0,
	}
}

// NDCToScreen is the inverse of ScreenCoord at zoom 1: it maps normalized
// device coordinates back to pixels of a screenW x screenH surface.
func NDCToScreen(p Vec3, screenW, screenH float32) Vec2 {
	return Vec2{
		X: (p.X + 1) / 2 * screenW,
		Y: (1 - p.Y) / 2 * screenH,
	}
}
