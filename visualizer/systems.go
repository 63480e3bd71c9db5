package visualizer

import (
	"fmt"
	"log"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/milk9111/meshless/assets"
	"github.com/milk9111/meshless/ecs"
	"github.com/milk9111/meshless/ecs/component"
	"github.com/milk9111/meshless/icons"
)

// DefaultBillboardSize is the quad a custom billboard gets when it names no
// mesh.
var DefaultBillboardSize = mgl32.Vec2{2, 2}

// VisualizeMeshlessSystem gives scene lights and cameras an icon billboard.
type VisualizeMeshlessSystem struct {
	Icons *icons.IconAssets
}

func NewVisualizeMeshlessSystem(ia *icons.IconAssets) *VisualizeMeshlessSystem {
	return &VisualizeMeshlessSystem{Icons: ia}
}

func (s *VisualizeMeshlessSystem) Update(w *ecs.World) {
	if w == nil || s.Icons == nil {
		return
	}

	var lights, cameras []ecs.Entity
	ecs.ForEach3(w, component.PrefabTagComponent.Kind(), component.TransformComponent.Kind(), component.VisibilityComponent.Kind(),
		func(e ecs.Entity, _ *component.PrefabTag, _ *component.Transform, _ *component.Visibility) {
			if isLight(w, e) {
				lights = append(lights, e)
			}
			if ecs.Has(w, e, component.CameraComponent.Kind()) && !ecs.Has(w, e, component.EditorCameraTagComponent.Kind()) {
				cameras = append(cameras, e)
			}
		})

	for _, e := range lights {
		if !NeedsProxy(w, e) {
			continue
		}
		icon, kind := s.lightIcon(w, e)
		s.spawn(w, e, kind, icon)
	}
	for _, e := range cameras {
		if !NeedsProxy(w, e) {
			continue
		}
		s.spawn(w, e, SubjectCamera, s.Icons.Camera)
	}
}

func (s *VisualizeMeshlessSystem) spawn(w *ecs.World, subject ecs.Entity, kind SubjectKind, icon assets.Handle[assets.Image]) {
	spawned, err := spawnBillboard(w, subject, kind, s.Icons.Square, icon, s.Icons.Sphere)
	if err != nil {
		log.Printf("Visualizer: %v", err)
		return
	}
	w.Events().Push(ecs.Event{Type: ProxySpawnedEvent, Data: spawned})
}

func isLight(w *ecs.World, e ecs.Entity) bool {
	return ecs.Has(w, e, component.DirectionalLightComponent.Kind()) ||
		ecs.Has(w, e, component.SpotLightComponent.Kind()) ||
		ecs.Has(w, e, component.PointLightComponent.Kind())
}

// lightIcon picks the icon by light kind, checking directional, spot, then
// point. Callers only pass entities isLight accepted.
func (s *VisualizeMeshlessSystem) lightIcon(w *ecs.World, e ecs.Entity) (assets.Handle[assets.Image], SubjectKind) {
	switch {
	case ecs.Has(w, e, component.DirectionalLightComponent.Kind()):
		return s.Icons.Directional, SubjectDirectionalLight
	case ecs.Has(w, e, component.SpotLightComponent.Kind()):
		return s.Icons.Spot, SubjectSpotLight
	case ecs.Has(w, e, component.PointLightComponent.Kind()):
		return s.Icons.Point, SubjectPointLight
	default:
		panic(fmt.Sprintf("visualizer: entity %v has no light kind", e))
	}
}

// VisualizeCustomMeshlessSystem spawns the visual a Meshless component asks
// for, filling unset handles with defaults.
type VisualizeCustomMeshlessSystem struct {
	Icons  *icons.IconAssets
	Assets *assets.Server

	defaultQuad     assets.Handle[assets.Mesh]
	defaultMaterial assets.Handle[assets.StandardMaterial]
}

func NewVisualizeCustomMeshlessSystem(ia *icons.IconAssets, server *assets.Server) *VisualizeCustomMeshlessSystem {
	return &VisualizeCustomMeshlessSystem{Icons: ia, Assets: server}
}

func (s *VisualizeCustomMeshlessSystem) Update(w *ecs.World) {
	if w == nil || s.Icons == nil || s.Assets == nil {
		return
	}

	ecs.ForEach(w, component.MeshlessComponent.Kind(), func(e ecs.Entity, meshless *component.Meshless) {
		if !NeedsProxy(w, e) {
			return
		}

		var (
			spawned ProxySpawned
			err     error
		)
		switch visual := meshless.Resolved().(type) {
		case component.BillboardVisual:
			mesh, texture := s.billboardDefaults(visual)
			spawned, err = spawnBillboard(w, e, SubjectCustom, mesh, texture, s.Icons.Sphere)
		case component.ObjectVisual:
			mesh, material := s.objectDefaults(visual)
			spawned, err = spawnObject(w, e, mesh, material)
		default:
			err = fmt.Errorf("visualizer: entity %v: unknown meshless visual %T", e, visual)
		}
		if err != nil {
			log.Printf("Visualizer: %v", err)
			return
		}
		w.Events().Push(ecs.Event{Type: ProxySpawnedEvent, Data: spawned})
	})
}

func (s *VisualizeCustomMeshlessSystem) billboardDefaults(v component.BillboardVisual) (assets.Handle[assets.Mesh], assets.Handle[assets.Image]) {
	mesh, texture := v.Mesh, v.Texture
	if !mesh.Valid() {
		if !s.defaultQuad.Valid() {
			s.defaultQuad = s.Assets.AddMesh(assets.NewQuad(DefaultBillboardSize))
		}
		mesh = s.defaultQuad
	}
	if !texture.Valid() {
		texture = s.Icons.Unknown
	}
	return mesh, texture
}

func (s *VisualizeCustomMeshlessSystem) objectDefaults(v component.ObjectVisual) (assets.Handle[assets.Mesh], assets.Handle[assets.StandardMaterial]) {
	mesh, material := v.Mesh, v.Material
	if !mesh.Valid() {
		mesh = s.Icons.Sphere
	}
	if !material.Valid() {
		if !s.defaultMaterial.Valid() {
			s.defaultMaterial = s.Assets.AddMaterial(assets.UnlitWhite())
		}
		material = s.defaultMaterial
	}
	return mesh, material
}

// CleanMeshlessSystem despawns every proxy and its subtree.
type CleanMeshlessSystem struct{}

func NewCleanMeshlessSystem() *CleanMeshlessSystem {
	return &CleanMeshlessSystem{}
}

func (s *CleanMeshlessSystem) Update(w *ecs.World) {
	if removed := Clean(w); removed > 0 {
		log.Printf("Visualizer: cleaned %d proxy entities", removed)
	}
}

// Clean despawns every entity carrying a proxy marker, with its subtree, and
// returns how many entities were removed. Entities already removed as part
// of an earlier subtree are skipped.
func Clean(w *ecs.World) int {
	if w == nil {
		return 0
	}
	var targets []ecs.Entity
	collect := func(e ecs.Entity) { targets = append(targets, e) }
	ecs.ForEach(w, component.BillboardTextureComponent.Kind(), func(e ecs.Entity, _ *component.BillboardTexture) { collect(e) })
	ecs.ForEach(w, component.BillboardMeshComponent.Kind(), func(e ecs.Entity, _ *component.BillboardMesh) { collect(e) })
	ecs.ForEach(w, component.ProxyTagComponent.Kind(), func(e ecs.Entity, _ *component.ProxyTag) { collect(e) })

	removed := 0
	for _, e := range targets {
		removed += ecs.DespawnRecursive(w, e)
	}
	return removed
}
