package component

import "github.com/milk9111/meshless/assets"

// BillboardMesh is the quad a billboard is drawn with.
type BillboardMesh struct {
	Mesh assets.Handle[assets.Mesh]
}

var BillboardMeshComponent = NewComponent[BillboardMesh]()

// BillboardTexture is the icon drawn on a camera-facing billboard.
type BillboardTexture struct {
	Image assets.Handle[assets.Image]
}

var BillboardTextureComponent = NewComponent[BillboardTexture]()

// ProxyTag marks every entity the meshless visualizer spawned as a subject's
// proxy, billboard or object.
type ProxyTag struct{}

var ProxyTagComponent = NewComponent[ProxyTag]()
