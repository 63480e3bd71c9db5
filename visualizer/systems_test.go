package visualizer

import (
	"context"
	"image/color"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/milk9111/meshless/assets"
	"github.com/milk9111/meshless/ecs"
	"github.com/milk9111/meshless/ecs/component"
	"github.com/milk9111/meshless/icons"
)

type fixture struct {
	w       *ecs.World
	server  *assets.Server
	icons   *icons.IconAssets
	builtin *VisualizeMeshlessSystem
	custom  *VisualizeCustomMeshlessSystem
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	server := assets.NewServer(icons.EmbeddedFS())
	ia, err := icons.Load(icons.EmbeddedFS(), icons.DefaultManifestPath, server)
	if err != nil {
		t.Fatalf("load icons: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Wait(ctx); err != nil {
		t.Fatalf("wait: %v", err)
	}
	return &fixture{
		w:       ecs.NewWorld(),
		server:  server,
		icons:   ia,
		builtin: NewVisualizeMeshlessSystem(ia),
		custom:  NewVisualizeCustomMeshlessSystem(ia, server),
	}
}

func (f *fixture) run() {
	f.builtin.Update(f.w)
	f.custom.Update(f.w)
}

func mustAdd[T any](t *testing.T, w *ecs.World, e ecs.Entity, kind component.ComponentKind[T], v *T) {
	t.Helper()
	if err := ecs.Add(w, e, kind, v); err != nil {
		t.Fatalf("add %v: %v", kind, err)
	}
}

// sceneEntity creates an entity with the scene-authored baseline the light
// and camera queries require.
func sceneEntity(t *testing.T, w *ecs.World) ecs.Entity {
	t.Helper()
	e := ecs.CreateEntity(w)
	vis := component.VisibilityInherited
	mustAdd(t, w, e, component.PrefabTagComponent.Kind(), &component.PrefabTag{})
	mustAdd(t, w, e, component.TransformComponent.Kind(), component.NewTransform(0, 0, 0))
	mustAdd(t, w, e, component.VisibilityComponent.Kind(), &vis)
	return e
}

func proxyChildren(w *ecs.World, e ecs.Entity) []ecs.Entity {
	var out []ecs.Entity
	for _, c := range ecs.Children(w, e) {
		if IsProxy(w, c) {
			out = append(out, c)
		}
	}
	return out
}

func countProxies(w *ecs.World) int {
	n := 0
	for _, e := range ecs.Entities(w) {
		if IsProxy(w, e) {
			n++
		}
	}
	return n
}

func TestLightAndCameraCoverage(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(t *testing.T, w *ecs.World) ecs.Entity
		wantIcon func(ia *icons.IconAssets) assets.Handle[assets.Image]
	}{
		{
			name: "directional",
			setup: func(t *testing.T, w *ecs.World) ecs.Entity {
				e := sceneEntity(t, w)
				mustAdd(t, w, e, component.DirectionalLightComponent.Kind(), &component.DirectionalLight{})
				return e
			},
			wantIcon: func(ia *icons.IconAssets) assets.Handle[assets.Image] { return ia.Directional },
		},
		{
			name: "point",
			setup: func(t *testing.T, w *ecs.World) ecs.Entity {
				e := sceneEntity(t, w)
				mustAdd(t, w, e, component.PointLightComponent.Kind(), &component.PointLight{})
				return e
			},
			wantIcon: func(ia *icons.IconAssets) assets.Handle[assets.Image] { return ia.Point },
		},
		{
			name: "spot",
			setup: func(t *testing.T, w *ecs.World) ecs.Entity {
				e := sceneEntity(t, w)
				mustAdd(t, w, e, component.SpotLightComponent.Kind(), &component.SpotLight{})
				return e
			},
			wantIcon: func(ia *icons.IconAssets) assets.Handle[assets.Image] { return ia.Spot },
		},
		{
			name: "spot_wins_over_point",
			setup: func(t *testing.T, w *ecs.World) ecs.Entity {
				e := sceneEntity(t, w)
				mustAdd(t, w, e, component.PointLightComponent.Kind(), &component.PointLight{})
				mustAdd(t, w, e, component.SpotLightComponent.Kind(), &component.SpotLight{})
				return e
			},
			wantIcon: func(ia *icons.IconAssets) assets.Handle[assets.Image] { return ia.Spot },
		},
		{
			name: "camera",
			setup: func(t *testing.T, w *ecs.World) ecs.Entity {
				e := sceneEntity(t, w)
				mustAdd(t, w, e, component.CameraComponent.Kind(), &component.Camera{})
				return e
			},
			wantIcon: func(ia *icons.IconAssets) assets.Handle[assets.Image] { return ia.Camera },
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			subject := tc.setup(t, f.w)
			f.run()

			proxies := proxyChildren(f.w, subject)
			if len(proxies) != 1 {
				t.Fatalf("expected 1 proxy, got %d", len(proxies))
			}
			proxy := proxies[0]
			tex, ok := ecs.Get(f.w, proxy, component.BillboardTextureComponent.Kind())
			if !ok || tex.Image != tc.wantIcon(f.icons) {
				t.Fatalf("expected icon %v, got %v", tc.wantIcon(f.icons), tex)
			}
			bm, ok := ecs.Get(f.w, proxy, component.BillboardMeshComponent.Kind())
			if !ok || bm.Mesh != f.icons.Square {
				t.Fatalf("expected square billboard mesh, got %v", bm)
			}
			layers, ok := ecs.Get(f.w, proxy, component.RenderLayersComponent.Kind())
			if !ok || !layers.Contains(component.EditorRenderLayer) || layers.Contains(0) {
				t.Fatalf("expected editor-only render layer, got %v", layers)
			}

			colliders := ecs.Children(f.w, proxy)
			if len(colliders) != 1 {
				t.Fatalf("expected 1 collider under proxy, got %d", len(colliders))
			}
			collider := colliders[0]
			sel, ok := ecs.Get(f.w, collider, component.SelectParentComponent.Kind())
			if !ok || ecs.Entity(sel.Subject) != subject {
				t.Fatalf("expected SelectParent %v, got %v", subject, sel)
			}
			mi, ok := ecs.Get(f.w, collider, component.MeshInstanceComponent.Kind())
			if !ok || mi.Mesh != f.icons.Sphere {
				t.Fatalf("expected sphere collider mesh, got %v", mi)
			}
			vis, ok := ecs.Get(f.w, collider, component.VisibilityComponent.Kind())
			if !ok || *vis != component.VisibilityHidden {
				t.Fatalf("expected hidden collider, got %v", vis)
			}
		})
	}
}

func TestSkippedSubjects(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T, w *ecs.World) ecs.Entity
	}{
		{
			name: "editor_camera",
			setup: func(t *testing.T, w *ecs.World) ecs.Entity {
				e := sceneEntity(t, w)
				mustAdd(t, w, e, component.CameraComponent.Kind(), &component.Camera{})
				mustAdd(t, w, e, component.EditorCameraTagComponent.Kind(), &component.EditorCameraTag{})
				return e
			},
		},
		{
			name: "light_without_prefab_tag",
			setup: func(t *testing.T, w *ecs.World) ecs.Entity {
				e := ecs.CreateEntity(w)
				vis := component.VisibilityInherited
				mustAdd(t, w, e, component.TransformComponent.Kind(), component.NewTransform(0, 0, 0))
				mustAdd(t, w, e, component.VisibilityComponent.Kind(), &vis)
				mustAdd(t, w, e, component.PointLightComponent.Kind(), &component.PointLight{})
				return e
			},
		},
		{
			name: "prefab_without_light",
			setup: func(t *testing.T, w *ecs.World) ecs.Entity {
				return sceneEntity(t, w)
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			e := tc.setup(t, f.w)
			f.run()
			if n := len(ecs.Children(f.w, e)); n != 0 {
				t.Fatalf("expected no proxy, got %d children", n)
			}
		})
	}
}

func TestReconcileIsIdempotent(t *testing.T) {
	f := newFixture(t)
	light := sceneEntity(t, f.w)
	mustAdd(t, f.w, light, component.DirectionalLightComponent.Kind(), &component.DirectionalLight{})
	cam := sceneEntity(t, f.w)
	mustAdd(t, f.w, cam, component.CameraComponent.Kind(), &component.Camera{})
	billboard := ecs.CreateEntity(f.w)
	mustAdd(t, f.w, billboard, component.MeshlessComponent.Kind(), &component.Meshless{})
	object := ecs.CreateEntity(f.w)
	mustAdd(t, f.w, object, component.MeshlessComponent.Kind(), &component.Meshless{Visual: component.ObjectVisual{}})

	f.run()
	first := len(ecs.Entities(f.w))
	if got := countProxies(f.w); got != 4 {
		t.Fatalf("expected 4 proxies, got %d", got)
	}
	events := f.w.Events().Drain()
	if len(events) != 4 {
		t.Fatalf("expected 4 spawn events, got %d", len(events))
	}

	for i := 0; i < 3; i++ {
		f.run()
	}
	if got := len(ecs.Entities(f.w)); got != first {
		t.Fatalf("expected %d entities after repeat passes, got %d", first, got)
	}
	if n := f.w.Events().Len(); n != 0 {
		t.Fatalf("expected no new spawn events, got %d", n)
	}
	for _, e := range []ecs.Entity{light, cam, billboard, object} {
		if n := len(proxyChildren(f.w, e)); n != 1 {
			t.Fatalf("entity %v: expected exactly 1 proxy, got %d", e, n)
		}
	}
}

func TestThreeSubjectScenario(t *testing.T) {
	f := newFixture(t)
	point := sceneEntity(t, f.w)
	mustAdd(t, f.w, point, component.PointLightComponent.Kind(), &component.PointLight{})
	cam := sceneEntity(t, f.w)
	mustAdd(t, f.w, cam, component.CameraComponent.Kind(), &component.Camera{})
	custom := ecs.CreateEntity(f.w)
	mustAdd(t, f.w, custom, component.TransformComponent.Kind(), component.NewTransform(1, 0, 0))
	mustAdd(t, f.w, custom, component.MeshlessComponent.Kind(), &component.Meshless{})

	f.run()
	if got := countProxies(f.w); got != 3 {
		t.Fatalf("expected 3 proxies after first pass, got %d", got)
	}
	f.run()
	if got := countProxies(f.w); got != 3 {
		t.Fatalf("expected 3 proxies after second pass, got %d", got)
	}

	proxy, ok := ProxyOf(f.w, custom)
	if !ok {
		t.Fatalf("expected proxy under custom subject")
	}
	if got := ecs.WorldPosition(f.w, proxy); !got.ApproxEqual(mgl32.Vec3{1, 0, 0}) {
		t.Fatalf("expected proxy to follow subject, got %v", got)
	}
}

func TestUnrelatedChildDoesNotSuppressProxy(t *testing.T) {
	f := newFixture(t)
	light := sceneEntity(t, f.w)
	mustAdd(t, f.w, light, component.PointLightComponent.Kind(), &component.PointLight{})
	child := ecs.CreateEntity(f.w)
	if err := ecs.AddChild(f.w, light, child); err != nil {
		t.Fatal(err)
	}

	f.run()
	if n := len(ecs.Children(f.w, light)); n != 2 {
		t.Fatalf("expected unrelated child plus proxy, got %d children", n)
	}
	if n := len(proxyChildren(f.w, light)); n != 1 {
		t.Fatalf("expected 1 proxy, got %d", n)
	}
}

func TestCustomDefaults(t *testing.T) {
	f := newFixture(t)
	red := f.server.AddMaterial(&assets.StandardMaterial{BaseColor: color.NRGBA{R: 255, A: 255}})
	ownMesh := f.server.AddMesh(assets.NewQuad(mgl32.Vec2{4, 1}))
	ownTex := f.icons.Point

	tests := []struct {
		name   string
		visual component.MeshlessVisual
		check  func(t *testing.T, proxy ecs.Entity)
	}{
		{
			name:   "zero_value_is_default_billboard",
			visual: nil,
			check: func(t *testing.T, proxy ecs.Entity) {
				tex, _ := ecs.Get(f.w, proxy, component.BillboardTextureComponent.Kind())
				if tex == nil || tex.Image != f.icons.Unknown {
					t.Fatalf("expected unknown icon, got %v", tex)
				}
				bm, _ := ecs.Get(f.w, proxy, component.BillboardMeshComponent.Kind())
				if bm == nil {
					t.Fatalf("expected billboard mesh")
				}
				m, ok := f.server.Mesh(bm.Mesh)
				if !ok {
					t.Fatalf("default quad not registered")
				}
				lo, hi := m.Bounds()
				if hi.X()-lo.X() != 2 || hi.Y()-lo.Y() != 2 {
					t.Fatalf("expected 2x2 default quad, got %v %v", lo, hi)
				}
			},
		},
		{
			name:   "billboard_keeps_given_handles",
			visual: component.BillboardVisual{Mesh: ownMesh, Texture: ownTex},
			check: func(t *testing.T, proxy ecs.Entity) {
				tex, _ := ecs.Get(f.w, proxy, component.BillboardTextureComponent.Kind())
				bm, _ := ecs.Get(f.w, proxy, component.BillboardMeshComponent.Kind())
				if tex.Image != ownTex || bm.Mesh != ownMesh {
					t.Fatalf("expected given handles, got %v %v", tex.Image, bm.Mesh)
				}
			},
		},
		{
			name:   "billboard_texture_only",
			visual: component.BillboardVisual{Texture: f.icons.Camera},
			check: func(t *testing.T, proxy ecs.Entity) {
				tex, _ := ecs.Get(f.w, proxy, component.BillboardTextureComponent.Kind())
				if tex == nil || tex.Image != f.icons.Camera {
					t.Fatalf("expected supplied texture, got %v", tex)
				}
				bm, _ := ecs.Get(f.w, proxy, component.BillboardMeshComponent.Kind())
				if bm == nil {
					t.Fatalf("expected billboard mesh")
				}
				m, ok := f.server.Mesh(bm.Mesh)
				if !ok {
					t.Fatalf("default quad not registered")
				}
				lo, hi := m.Bounds()
				if hi.X()-lo.X() != 2 || hi.Y()-lo.Y() != 2 {
					t.Fatalf("expected 2x2 default quad, got %v %v", lo, hi)
				}
			},
		},
		{
			name:   "object_defaults",
			visual: component.ObjectVisual{},
			check: func(t *testing.T, proxy ecs.Entity) {
				mi, ok := ecs.Get(f.w, proxy, component.MeshInstanceComponent.Kind())
				if !ok || mi.Mesh != f.icons.Sphere {
					t.Fatalf("expected icon sphere mesh, got %v", mi)
				}
				mat, ok := f.server.Material(mi.Material)
				if !ok || !mat.Unlit || mat.BaseColor != assets.UnlitWhite().BaseColor {
					if ok {
						t.Fatalf("expected unlit white, got %+v", mat)
					}
					t.Fatalf("default material not registered")
				}
				if ecs.Has(f.w, proxy, component.BillboardTextureComponent.Kind()) {
					t.Fatalf("object proxy must not be a billboard")
				}
			},
		},
		{
			name:   "object_keeps_given_material",
			visual: component.ObjectVisual{Material: red},
			check: func(t *testing.T, proxy ecs.Entity) {
				mi, _ := ecs.Get(f.w, proxy, component.MeshInstanceComponent.Kind())
				if mi.Material != red || mi.Mesh != f.icons.Sphere {
					t.Fatalf("expected given material with default mesh, got %+v", mi)
				}
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			subject := ecs.CreateEntity(f.w)
			mustAdd(t, f.w, subject, component.MeshlessComponent.Kind(), &component.Meshless{Visual: tc.visual})
			f.custom.Update(f.w)

			proxy, ok := ProxyOf(f.w, subject)
			if !ok {
				t.Fatalf("expected a proxy")
			}
			tc.check(t, proxy)
		})
	}
}

func TestDefaultsAreShared(t *testing.T) {
	f := newFixture(t)
	var subjects []ecs.Entity
	for i := 0; i < 3; i++ {
		e := ecs.CreateEntity(f.w)
		mustAdd(t, f.w, e, component.MeshlessComponent.Kind(), &component.Meshless{})
		subjects = append(subjects, e)
	}
	f.custom.Update(f.w)

	var mesh assets.Handle[assets.Mesh]
	for i, s := range subjects {
		proxy, _ := ProxyOf(f.w, s)
		bm, ok := ecs.Get(f.w, proxy, component.BillboardMeshComponent.Kind())
		if !ok {
			t.Fatalf("subject %d: no billboard", i)
		}
		if i > 0 && bm.Mesh != mesh {
			t.Fatalf("expected one shared default quad, got %v and %v", mesh, bm.Mesh)
		}
		mesh = bm.Mesh
	}
}

func TestObjectProxySelectsSubject(t *testing.T) {
	f := newFixture(t)
	subject := ecs.CreateEntity(f.w)
	mustAdd(t, f.w, subject, component.MeshlessComponent.Kind(), &component.Meshless{Visual: component.ObjectVisual{}})
	f.run()

	evts := f.w.Events().Drain()
	if len(evts) != 1 {
		t.Fatalf("expected 1 event, got %d", len(evts))
	}
	spawned, ok := evts[0].Data.(ProxySpawned)
	if !ok || spawned.Subject != subject || spawned.Kind != SubjectCustom || spawned.Collider != 0 {
		t.Fatalf("unexpected event payload %+v", evts[0].Data)
	}
	sel, ok := ecs.Get(f.w, spawned.Proxy, component.SelectParentComponent.Kind())
	if !ok || ecs.Entity(sel.Subject) != subject {
		t.Fatalf("expected object proxy to select subject")
	}
}

func TestClean(t *testing.T) {
	f := newFixture(t)
	light := sceneEntity(t, f.w)
	mustAdd(t, f.w, light, component.SpotLightComponent.Kind(), &component.SpotLight{})
	unrelated := ecs.CreateEntity(f.w)
	if err := ecs.AddChild(f.w, light, unrelated); err != nil {
		t.Fatal(err)
	}
	object := ecs.CreateEntity(f.w)
	mustAdd(t, f.w, object, component.MeshlessComponent.Kind(), &component.Meshless{Visual: component.ObjectVisual{}})
	f.run()

	before := len(ecs.Entities(f.w))
	removed := Clean(f.w)
	// billboard proxy + its collider + object proxy
	if removed != 3 {
		t.Fatalf("expected 3 removed, got %d", removed)
	}
	if got := len(ecs.Entities(f.w)); got != before-3 {
		t.Fatalf("expected %d entities left, got %d", before-3, got)
	}
	if countProxies(f.w) != 0 {
		t.Fatalf("expected no proxies after clean")
	}
	ecs.ForEach(f.w, component.SelectParentComponent.Kind(), func(e ecs.Entity, _ *component.SelectParent) {
		t.Fatalf("collider %v survived clean", e)
	})
	for _, e := range []ecs.Entity{light, unrelated, object} {
		if !ecs.IsAlive(f.w, e) {
			t.Fatalf("expected %v to survive clean", e)
		}
	}
	if got := Clean(f.w); got != 0 {
		t.Fatalf("expected second clean to remove nothing, got %d", got)
	}

	f.run()
	if got := countProxies(f.w); got != 2 {
		t.Fatalf("expected proxies respawned after clean, got %d", got)
	}
}

func TestCleanMeshlessSystem(t *testing.T) {
	f := newFixture(t)
	light := sceneEntity(t, f.w)
	mustAdd(t, f.w, light, component.PointLightComponent.Kind(), &component.PointLight{})
	object := ecs.CreateEntity(f.w)
	mustAdd(t, f.w, object, component.MeshlessComponent.Kind(), &component.Meshless{Visual: component.ObjectVisual{}})
	f.run()
	if countProxies(f.w) != 2 {
		t.Fatalf("expected 2 proxies before clean, got %d", countProxies(f.w))
	}

	sched := ecs.NewScheduler()
	sched.Add(NewCleanMeshlessSystem())
	sched.Update(f.w)
	if got := countProxies(f.w); got != 0 {
		t.Fatalf("expected scheduled clean to remove every proxy, got %d", got)
	}
	if !ecs.IsAlive(f.w, light) || !ecs.IsAlive(f.w, object) {
		t.Fatalf("subjects must survive clean")
	}

	NewCleanMeshlessSystem().Update(nil)
}

func TestSystemsWithoutIcons(t *testing.T) {
	w := ecs.NewWorld()
	e := sceneEntity(t, w)
	mustAdd(t, w, e, component.PointLightComponent.Kind(), &component.PointLight{})
	NewVisualizeMeshlessSystem(nil).Update(w)
	NewVisualizeCustomMeshlessSystem(nil, nil).Update(w)
	if n := len(ecs.Children(w, e)); n != 0 {
		t.Fatalf("expected no proxies before icons load, got %d", n)
	}
}
