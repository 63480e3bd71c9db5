package component

import "github.com/milk9111/meshless/assets"

// Meshless gives an entity without a mesh something to click on in the
// editor. The zero value is a billboard with the default quad and the
// "unknown" icon.
type Meshless struct {
	Visual MeshlessVisual
}

// Resolved returns the visual, substituting the default billboard when none
// was set.
func (m *Meshless) Resolved() MeshlessVisual {
	if m == nil || m.Visual == nil {
		return BillboardVisual{}
	}
	return m.Visual
}

var MeshlessComponent = NewComponent[Meshless]()

// MeshlessVisual is either BillboardVisual or ObjectVisual.
type MeshlessVisual interface {
	isMeshlessVisual()
}

// BillboardVisual draws a camera-facing textured quad. Unset handles fall
// back to a 2x2 quad and the "unknown" icon.
type BillboardVisual struct {
	Mesh    assets.Handle[assets.Mesh]
	Texture assets.Handle[assets.Image]
}

func (BillboardVisual) isMeshlessVisual() {}

// ObjectVisual draws a real mesh. Unset handles fall back to the editor
// sphere and an unlit white material.
type ObjectVisual struct {
	Mesh     assets.Handle[assets.Mesh]
	Material assets.Handle[assets.StandardMaterial]
}

func (ObjectVisual) isMeshlessVisual() {}
