package visualizer

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/milk9111/meshless/assets"
	"github.com/milk9111/meshless/ecs"
	"github.com/milk9111/meshless/ecs/component"
	"github.com/milk9111/meshless/icons"
	"github.com/milk9111/meshless/scene"
)

// MeshlessComponentKey is the scene component key for Meshless.
const MeshlessComponentKey = "meshless"

// MeshlessSpec is the scene form of a Meshless component. At most one of
// Billboard and Object may be set; neither means the default billboard.
type MeshlessSpec struct {
	Billboard *BillboardSpec `yaml:"billboard"`
	Object    *ObjectSpec    `yaml:"object"`
}

type BillboardSpec struct {
	Texture string    `yaml:"texture"`
	Quad    []float32 `yaml:"quad"`
}

type ObjectSpec struct {
	Sphere float32 `yaml:"sphere"`
	Color  string  `yaml:"color"`
	Unlit  *bool   `yaml:"unlit"`
}

// RegisterSceneComponents teaches the scene loader the "meshless" key.
func RegisterSceneComponents() {
	scene.RegisterComponent(MeshlessComponentKey, addMeshless)
}

func addMeshless(w *ecs.World, e ecs.Entity, raw any, ctx *scene.BuildContext) error {
	spec, err := scene.DecodeComponentSpec[MeshlessSpec](raw)
	if err != nil {
		return fmt.Errorf("decode meshless spec: %w", err)
	}
	if spec.Billboard != nil && spec.Object != nil {
		return fmt.Errorf("meshless: billboard and object are exclusive")
	}

	var server *assets.Server
	if ctx != nil {
		server = ctx.Assets
	}
	needsServer := (spec.Billboard != nil && (spec.Billboard.Texture != "" || len(spec.Billboard.Quad) > 0)) ||
		(spec.Object != nil && (spec.Object.Sphere != 0 || spec.Object.Color != "" || spec.Object.Unlit != nil))
	if needsServer && server == nil {
		return fmt.Errorf("meshless: asset server required")
	}

	m := &component.Meshless{}
	switch {
	case spec.Billboard != nil:
		v := component.BillboardVisual{}
		if spec.Billboard.Texture != "" {
			v.Texture = server.LoadImage(spec.Billboard.Texture)
		}
		if len(spec.Billboard.Quad) > 0 {
			if len(spec.Billboard.Quad) != 2 {
				return fmt.Errorf("meshless: quad needs 2 values, got %d", len(spec.Billboard.Quad))
			}
			v.Mesh = server.AddMesh(assets.NewQuad(mgl32.Vec2{spec.Billboard.Quad[0], spec.Billboard.Quad[1]}))
		}
		m.Visual = v
	case spec.Object != nil:
		v := component.ObjectVisual{}
		if spec.Object.Sphere != 0 {
			v.Mesh = server.AddMesh(icons.SphereMesh(MeshlessComponentKey, spec.Object.Sphere))
		}
		if spec.Object.Color != "" || spec.Object.Unlit != nil {
			c, err := scene.ParseColor(spec.Object.Color)
			if err != nil {
				return err
			}
			mat := &assets.StandardMaterial{BaseColor: c, Unlit: true}
			if spec.Object.Unlit != nil {
				mat.Unlit = *spec.Object.Unlit
			}
			v.Material = server.AddMaterial(mat)
		}
		m.Visual = v
	}
	return ecs.Add(w, e, component.MeshlessComponent.Kind(), m)
}
