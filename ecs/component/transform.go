package component

import "github.com/go-gl/mathgl/mgl32"

// Transform is an entity's transform relative to its parent.
type Transform struct {
	Translation mgl32.Vec3
	Rotation    mgl32.Quat
	Scale       mgl32.Vec3
}

// NewTransform returns an identity transform placed at (x, y, z).
func NewTransform(x, y, z float32) *Transform {
	return &Transform{
		Translation: mgl32.Vec3{x, y, z},
		Rotation:    mgl32.QuatIdent(),
		Scale:       mgl32.Vec3{1, 1, 1},
	}
}

// Matrix returns translate * rotate * scale. A zero scale axis counts as 1
// and a zero quaternion as identity.
func (t *Transform) Matrix() mgl32.Mat4 {
	if t == nil {
		return mgl32.Ident4()
	}
	s := t.Scale
	for i := range s {
		if s[i] == 0 {
			s[i] = 1
		}
	}
	rot := t.Rotation
	if rot.W == 0 && rot.V == (mgl32.Vec3{}) {
		rot = mgl32.QuatIdent()
	}
	return mgl32.Translate3D(t.Translation.X(), t.Translation.Y(), t.Translation.Z()).
		Mul4(rot.Mat4()).
		Mul4(mgl32.Scale3D(s.X(), s.Y(), s.Z()))
}

var TransformComponent = NewComponent[Transform]()
