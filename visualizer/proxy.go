package visualizer

import (
	"fmt"

	"github.com/milk9111/meshless/assets"
	"github.com/milk9111/meshless/ecs"
	"github.com/milk9111/meshless/ecs/component"
)

// ProxySpawnedEvent is the event type pushed for every new proxy.
const ProxySpawnedEvent = "meshless.proxy_spawned"

// SubjectKind says why an entity received a proxy.
type SubjectKind int

const (
	SubjectDirectionalLight SubjectKind = iota
	SubjectSpotLight
	SubjectPointLight
	SubjectCamera
	SubjectCustom
)

func (k SubjectKind) String() string {
	switch k {
	case SubjectDirectionalLight:
		return "directional_light"
	case SubjectSpotLight:
		return "spot_light"
	case SubjectPointLight:
		return "point_light"
	case SubjectCamera:
		return "camera"
	default:
		return "custom"
	}
}

// ProxySpawned is the payload of ProxySpawnedEvent. Collider is zero for
// object proxies, which are their own pick volume.
type ProxySpawned struct {
	Subject  ecs.Entity
	Proxy    ecs.Entity
	Collider ecs.Entity
	Kind     SubjectKind
}

// IsProxy reports whether e carries a proxy-renderable marker.
func IsProxy(w *ecs.World, e ecs.Entity) bool {
	return ecs.Has(w, e, component.BillboardMeshComponent.Kind()) ||
		ecs.Has(w, e, component.BillboardTextureComponent.Kind()) ||
		ecs.Has(w, e, component.ProxyTagComponent.Kind())
}

// NeedsProxy reports whether subject has no child carrying a proxy marker.
// Unrelated children do not count.
func NeedsProxy(w *ecs.World, subject ecs.Entity) bool {
	for _, child := range ecs.Children(w, subject) {
		if IsProxy(w, child) {
			return false
		}
	}
	return true
}

// ProxyOf returns the first proxy child of subject.
func ProxyOf(w *ecs.World, subject ecs.Entity) (ecs.Entity, bool) {
	for _, child := range ecs.Children(w, subject) {
		if IsProxy(w, child) {
			return child, true
		}
	}
	return 0, false
}

// spawnBillboard creates a billboard proxy under subject, plus a hidden
// sphere child that routes picks back to subject.
func spawnBillboard(w *ecs.World, subject ecs.Entity, kind SubjectKind, quad assets.Handle[assets.Mesh], icon assets.Handle[assets.Image], sphere assets.Handle[assets.Mesh]) (ProxySpawned, error) {
	proxy := ecs.CreateEntity(w)
	collider := ecs.CreateEntity(w)
	layers := component.Layer(component.EditorRenderLayer)
	hidden := component.VisibilityHidden
	inherited := component.VisibilityInherited

	err := firstErr(
		ecs.Add(w, proxy, component.BillboardMeshComponent.Kind(), &component.BillboardMesh{Mesh: quad}),
		ecs.Add(w, proxy, component.BillboardTextureComponent.Kind(), &component.BillboardTexture{Image: icon}),
		ecs.Add(w, proxy, component.ProxyTagComponent.Kind(), &component.ProxyTag{}),
		ecs.Add(w, proxy, component.TransformComponent.Kind(), component.NewTransform(0, 0, 0)),
		ecs.Add(w, proxy, component.VisibilityComponent.Kind(), &inherited),
		ecs.Add(w, proxy, component.RenderLayersComponent.Kind(), &layers),

		ecs.Add(w, collider, component.MeshInstanceComponent.Kind(), &component.MeshInstance{Mesh: sphere}),
		ecs.Add(w, collider, component.TransformComponent.Kind(), component.NewTransform(0, 0, 0)),
		ecs.Add(w, collider, component.VisibilityComponent.Kind(), &hidden),
		ecs.Add(w, collider, component.SelectParentComponent.Kind(), &component.SelectParent{Subject: uint64(subject)}),

		ecs.AddChild(w, proxy, collider),
		ecs.AddChild(w, subject, proxy),
	)
	if err != nil {
		ecs.DespawnRecursive(w, proxy)
		ecs.DestroyEntity(w, collider)
		return ProxySpawned{}, fmt.Errorf("visualizer: spawn billboard for %v: %w", subject, err)
	}
	return ProxySpawned{Subject: subject, Proxy: proxy, Collider: collider, Kind: kind}, nil
}

// spawnObject creates a mesh proxy under subject. The mesh itself is the
// pick volume.
func spawnObject(w *ecs.World, subject ecs.Entity, mesh assets.Handle[assets.Mesh], material assets.Handle[assets.StandardMaterial]) (ProxySpawned, error) {
	proxy := ecs.CreateEntity(w)
	layers := component.Layer(component.EditorRenderLayer)
	inherited := component.VisibilityInherited

	err := firstErr(
		ecs.Add(w, proxy, component.MeshInstanceComponent.Kind(), &component.MeshInstance{Mesh: mesh, Material: material}),
		ecs.Add(w, proxy, component.SelectParentComponent.Kind(), &component.SelectParent{Subject: uint64(subject)}),
		ecs.Add(w, proxy, component.ProxyTagComponent.Kind(), &component.ProxyTag{}),
		ecs.Add(w, proxy, component.TransformComponent.Kind(), component.NewTransform(0, 0, 0)),
		ecs.Add(w, proxy, component.VisibilityComponent.Kind(), &inherited),
		ecs.Add(w, proxy, component.RenderLayersComponent.Kind(), &layers),
		ecs.AddChild(w, subject, proxy),
	)
	if err != nil {
		ecs.DestroyEntity(w, proxy)
		return ProxySpawned{}, fmt.Errorf("visualizer: spawn object for %v: %w", subject, err)
	}
	return ProxySpawned{Subject: subject, Proxy: proxy, Kind: SubjectCustom}, nil
}

func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
