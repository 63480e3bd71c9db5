package component

import "github.com/milk9111/meshless/assets"

type MeshInstance struct {
	Mesh     assets.Handle[assets.Mesh]
	Material assets.Handle[assets.StandardMaterial]
}

var MeshInstanceComponent = NewComponent[MeshInstance]()
