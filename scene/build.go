package scene

import (
	"fmt"
	"sort"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/milk9111/meshless/assets"
	"github.com/milk9111/meshless/ecs"
	"github.com/milk9111/meshless/ecs/component"
)

// BuildContext carries what component builders need besides the world.
type BuildContext struct {
	Assets *assets.Server
	Path   string
}

// ComponentBuildFn adds the component described by raw to e.
type ComponentBuildFn func(w *ecs.World, e ecs.Entity, raw any, ctx *BuildContext) error

var componentRegistry = map[string]ComponentBuildFn{
	"transform":         addTransform,
	"visibility":        addVisibility,
	"prefab":            addPrefabTag,
	"directional_light": addDirectionalLight,
	"point_light":       addPointLight,
	"spot_light":        addSpotLight,
	"camera":            addCamera,
	"editor_camera":     addEditorCamera,
}

var componentBuildOrder = []string{
	"transform",
	"visibility",
	"prefab",
	"directional_light",
	"point_light",
	"spot_light",
	"camera",
	"editor_camera",
}

// RegisterComponent adds or replaces the builder for key. New keys are built
// after the built-in ones, in registration order.
func RegisterComponent(key string, fn ComponentBuildFn) {
	if _, ok := componentRegistry[key]; !ok {
		componentBuildOrder = append(componentBuildOrder, key)
	}
	componentRegistry[key] = fn
}

// Registered reports whether a builder exists for key.
func Registered(key string) bool {
	_, ok := componentRegistry[key]
	return ok
}

// Build spawns every entity of spec and returns the roots.
func Build(w *ecs.World, spec Spec, ctx *BuildContext) ([]ecs.Entity, error) {
	if w == nil {
		return nil, fmt.Errorf("scene: build: world is nil")
	}
	if ctx == nil {
		ctx = &BuildContext{}
	}
	roots := make([]ecs.Entity, 0, len(spec.Entities))
	for _, es := range spec.Entities {
		e, err := BuildEntity(w, es, ctx)
		if err != nil {
			for _, root := range roots {
				ecs.DespawnRecursive(w, root)
			}
			return nil, err
		}
		roots = append(roots, e)
	}
	return roots, nil
}

// BuildEntity spawns one entity and its children. On error nothing is left
// in the world.
func BuildEntity(w *ecs.World, spec EntitySpec, ctx *BuildContext) (ecs.Entity, error) {
	if ctx == nil {
		ctx = &BuildContext{}
	}
	e := ecs.CreateEntity(w)
	if spec.Name != "" {
		if err := ecs.Add(w, e, component.NameComponent.Kind(), &component.Name{Value: spec.Name}); err != nil {
			ecs.DestroyEntity(w, e)
			return 0, err
		}
	}

	remaining := make(map[string]any, len(spec.Components))
	for k, v := range spec.Components {
		remaining[k] = v
	}
	unknown := make([]string, 0)
	for name := range remaining {
		if _, ok := componentRegistry[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		ecs.DestroyEntity(w, e)
		return 0, fmt.Errorf("scene: %s: entity %q: no builder for component %s", ctx.Path, spec.Name, strings.Join(unknown, ", "))
	}

	for _, name := range componentBuildOrder {
		raw, ok := remaining[name]
		if !ok {
			continue
		}
		if err := componentRegistry[name](w, e, raw, ctx); err != nil {
			ecs.DestroyEntity(w, e)
			return 0, fmt.Errorf("scene: %s: entity %q: add %q: %w", ctx.Path, spec.Name, name, err)
		}
	}

	for _, cs := range spec.Children {
		child, err := BuildEntity(w, cs, ctx)
		if err == nil {
			err = ecs.AddChild(w, e, child)
		}
		if err != nil {
			ecs.DespawnRecursive(w, e)
			return 0, err
		}
	}
	return e, nil
}

func addTransform(w *ecs.World, e ecs.Entity, raw any, _ *BuildContext) error {
	spec, err := DecodeComponentSpec[TransformSpec](raw)
	if err != nil {
		return fmt.Errorf("decode transform spec: %w", err)
	}
	t := component.NewTransform(spec.X, spec.Y, spec.Z)
	if len(spec.Rotation) > 0 {
		if len(spec.Rotation) != 3 {
			return fmt.Errorf("transform rotation needs 3 values, got %d", len(spec.Rotation))
		}
		t.Rotation = mgl32.AnglesToQuat(
			mgl32.DegToRad(spec.Rotation[0]),
			mgl32.DegToRad(spec.Rotation[1]),
			mgl32.DegToRad(spec.Rotation[2]),
			mgl32.XYZ,
		)
	}
	switch len(spec.Scale) {
	case 0:
	case 1:
		t.Scale = mgl32.Vec3{spec.Scale[0], spec.Scale[0], spec.Scale[0]}
	case 3:
		t.Scale = mgl32.Vec3{spec.Scale[0], spec.Scale[1], spec.Scale[2]}
	default:
		return fmt.Errorf("transform scale needs 1 or 3 values, got %d", len(spec.Scale))
	}
	return ecs.Add(w, e, component.TransformComponent.Kind(), t)
}

func addVisibility(w *ecs.World, e ecs.Entity, raw any, _ *BuildContext) error {
	s, _ := raw.(string)
	var v component.Visibility
	switch s {
	case "", "inherited":
		v = component.VisibilityInherited
	case "visible":
		v = component.VisibilityVisible
	case "hidden":
		v = component.VisibilityHidden
	default:
		return fmt.Errorf("unknown visibility %v", raw)
	}
	return ecs.Add(w, e, component.VisibilityComponent.Kind(), &v)
}

func addPrefabTag(w *ecs.World, e ecs.Entity, raw any, _ *BuildContext) error {
	if enabled, ok := raw.(bool); ok && !enabled {
		return nil
	}
	return ecs.Add(w, e, component.PrefabTagComponent.Kind(), &component.PrefabTag{})
}

func addDirectionalLight(w *ecs.World, e ecs.Entity, raw any, _ *BuildContext) error {
	spec, err := DecodeComponentSpec[DirectionalLightSpec](raw)
	if err != nil {
		return fmt.Errorf("decode directional_light spec: %w", err)
	}
	c, err := ParseColor(spec.Color)
	if err != nil {
		return err
	}
	return ecs.Add(w, e, component.DirectionalLightComponent.Kind(), &component.DirectionalLight{
		Color:       c,
		Illuminance: spec.Illuminance,
	})
}

func addPointLight(w *ecs.World, e ecs.Entity, raw any, _ *BuildContext) error {
	spec, err := DecodeComponentSpec[PointLightSpec](raw)
	if err != nil {
		return fmt.Errorf("decode point_light spec: %w", err)
	}
	c, err := ParseColor(spec.Color)
	if err != nil {
		return err
	}
	return ecs.Add(w, e, component.PointLightComponent.Kind(), &component.PointLight{
		Color:     c,
		Intensity: spec.Intensity,
		Range:     spec.Range,
	})
}

func addSpotLight(w *ecs.World, e ecs.Entity, raw any, _ *BuildContext) error {
	spec, err := DecodeComponentSpec[SpotLightSpec](raw)
	if err != nil {
		return fmt.Errorf("decode spot_light spec: %w", err)
	}
	c, err := ParseColor(spec.Color)
	if err != nil {
		return err
	}
	return ecs.Add(w, e, component.SpotLightComponent.Kind(), &component.SpotLight{
		Color:      c,
		Intensity:  spec.Intensity,
		Range:      spec.Range,
		InnerAngle: mgl32.DegToRad(spec.InnerAngle),
		OuterAngle: mgl32.DegToRad(spec.OuterAngle),
	})
}

func addCamera(w *ecs.World, e ecs.Entity, raw any, _ *BuildContext) error {
	spec, err := DecodeComponentSpec[CameraSpec](raw)
	if err != nil {
		return fmt.Errorf("decode camera spec: %w", err)
	}
	cam := &component.Camera{
		FOV:    mgl32.DegToRad(spec.FOV),
		Near:   spec.Near,
		Far:    spec.Far,
		Order:  spec.Order,
		Layers: component.DefaultRenderLayers,
	}
	if cam.FOV == 0 {
		cam.FOV = mgl32.DegToRad(45)
	}
	if cam.Near == 0 {
		cam.Near = 0.1
	}
	if cam.Far == 0 {
		cam.Far = 1000
	}
	if len(spec.Layers) > 0 {
		cam.Layers = 0
		for _, l := range spec.Layers {
			cam.Layers = cam.Layers.With(l)
		}
	}
	return ecs.Add(w, e, component.CameraComponent.Kind(), cam)
}

func addEditorCamera(w *ecs.World, e ecs.Entity, _ any, _ *BuildContext) error {
	return ecs.Add(w, e, component.EditorCameraTagComponent.Kind(), &component.EditorCameraTag{})
}
