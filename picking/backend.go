package picking

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/meshless/assets"
	"github.com/milk9111/meshless/ecs"
	"github.com/milk9111/meshless/ecs/component"
)

// VisibilityMode controls whether hidden entities can be picked.
type VisibilityMode int

const (
	// VisibilityRequire skips entities that are hidden themselves or through
	// an ancestor.
	VisibilityRequire VisibilityMode = iota
	// VisibilityIgnore picks hidden entities too.
	VisibilityIgnore
)

type Settings struct {
	Visibility VisibilityMode
}

// Hit is a pick result. Subject is where the selection should go: the
// SelectParent target when the collider has one, the collider otherwise.
type Hit struct {
	Collider ecs.Entity
	Subject  ecs.Entity
	Depth    float32
	Screen   mgl32.Vec2
}

type volume struct {
	collider ecs.Entity
	subject  ecs.Entity
	depth    float32
	center   mgl32.Vec2
}

// Backend resolves screen clicks to entities using circles laid out in a
// Chipmunk space, one per projected pick volume. Each shape's UserData is
// its index into volumes.
type Backend struct {
	settings Settings
	space    *cp.Space
	volumes  []volume
}

func NewBackend(settings Settings) *Backend {
	return &Backend{settings: settings, space: cp.NewSpace()}
}

func (b *Backend) Settings() Settings {
	return b.settings
}

func (b *Backend) Configure(settings Settings) {
	b.settings = settings
}

// Len returns how many pick volumes the last Sync produced.
func (b *Backend) Len() int {
	return len(b.volumes)
}

// Sync rebuilds the pick volumes from every entity with a mesh instance and
// a selection back-reference.
func (b *Backend) Sync(w *ecs.World, server *assets.Server, view View) {
	b.space = cp.NewSpace()
	b.volumes = b.volumes[:0]
	if w == nil || server == nil {
		return
	}

	ecs.ForEach2(w, component.MeshInstanceComponent.Kind(), component.SelectParentComponent.Kind(),
		func(e ecs.Entity, mi *component.MeshInstance, sel *component.SelectParent) {
			if b.settings.Visibility == VisibilityRequire && !Visible(w, e) {
				return
			}
			mesh, ok := server.Mesh(mi.Mesh)
			if !ok {
				return
			}

			global := ecs.GlobalMatrix(w, e)
			center, depth, ok := view.Project(global.Col(3).Vec3())
			if !ok {
				return
			}
			radius := view.ProjectRadius(mesh.BoundingRadius()*maxScale(global), depth)
			if radius <= 0 {
				return
			}

			shape := cp.NewCircle(b.space.StaticBody, float64(radius), cp.Vector{X: float64(center.X()), Y: float64(center.Y())})
			shape.UserData = len(b.volumes)
			b.space.AddShape(shape)

			subject := ecs.Entity(sel.Subject)
			if !ecs.IsAlive(w, subject) {
				subject = e
			}
			b.volumes = append(b.volumes, volume{
				collider: e,
				subject:  subject,
				depth:    depth,
				center:   center,
			})
		})
}

// Pick returns the closest volume under the screen point (x, y).
func (b *Backend) Pick(x, y float64) (Hit, bool) {
	var (
		best  Hit
		found bool
	)
	p := cp.Vector{X: x, Y: y}
	b.space.BBQuery(cp.NewBBForCircle(p, 0), cp.SHAPE_FILTER_ALL, func(shape *cp.Shape, _ interface{}) {
		idx, ok := shape.UserData.(int)
		if !ok || idx < 0 || idx >= len(b.volumes) {
			return
		}
		if shape.PointQuery(p).Distance > 0 {
			return
		}
		v := b.volumes[idx]
		if !found || v.depth < best.Depth {
			best = Hit{Collider: v.collider, Subject: v.subject, Depth: v.depth, Screen: v.center}
			found = true
		}
	}, nil)
	return best, found
}

// Visible reports whether e and all of its ancestors are not hidden.
func Visible(w *ecs.World, e ecs.Entity) bool {
	for {
		if v, ok := ecs.Get(w, e, component.VisibilityComponent.Kind()); ok && *v == component.VisibilityHidden {
			return false
		}
		parent, ok := ecs.Parent(w, e)
		if !ok {
			return true
		}
		e = parent
	}
}

func maxScale(m mgl32.Mat4) float32 {
	return max(m.Col(0).Vec3().Len(), m.Col(1).Vec3().Len(), m.Col(2).Vec3().Len())
}
