package picking

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// View is the editor viewport camera.
type View struct {
	Eye    mgl32.Vec3
	Target mgl32.Vec3
	Up     mgl32.Vec3
	FOV    float32 // vertical, radians
	Near   float32
	Far    float32
	Width  int
	Height int
}

// DefaultView looks at the origin from above and behind.
func DefaultView(width, height int) View {
	return View{
		Eye:    mgl32.Vec3{0, 6, 12},
		Target: mgl32.Vec3{0, 0, 0},
		Up:     mgl32.Vec3{0, 1, 0},
		FOV:    mgl32.DegToRad(60),
		Near:   0.1,
		Far:    1000,
		Width:  width,
		Height: height,
	}
}

func (v View) ViewMatrix() mgl32.Mat4 {
	up := v.Up
	if up.Len() == 0 {
		up = mgl32.Vec3{0, 1, 0}
	}
	return mgl32.LookAtV(v.Eye, v.Target, up)
}

func (v View) Projection() mgl32.Mat4 {
	aspect := float32(1)
	if v.Height > 0 {
		aspect = float32(v.Width) / float32(v.Height)
	}
	return mgl32.Perspective(v.FOV, aspect, v.Near, v.Far)
}

// Project maps a world point to screen pixels (origin top-left). depth is
// the distance along the view axis; ok is false behind the camera.
func (v View) Project(p mgl32.Vec3) (screen mgl32.Vec2, depth float32, ok bool) {
	clip := v.Projection().Mul4(v.ViewMatrix()).Mul4x1(p.Vec4(1))
	w := clip.W()
	if w <= v.Near {
		return mgl32.Vec2{}, 0, false
	}
	ndc := clip.Vec3().Mul(1 / w)
	sx := (ndc.X() + 1) / 2 * float32(v.Width)
	sy := (1 - ndc.Y()) / 2 * float32(v.Height)
	return mgl32.Vec2{sx, sy}, w, true
}

// ProjectRadius converts a world-space radius at depth into pixels.
func (v View) ProjectRadius(radius, depth float32) float32 {
	if depth <= 0 {
		return 0
	}
	halfFOV := math.Tan(float64(v.FOV) / 2)
	if halfFOV <= 0 {
		return 0
	}
	return radius * float32(v.Height) / 2 / (float32(halfFOV) * depth)
}
