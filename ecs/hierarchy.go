package ecs

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/milk9111/meshless/ecs/component"
)

// AddChild parents child under parent, detaching it from any previous parent.
func AddChild(w *World, parent, child Entity) error {
	if !IsAlive(w, parent) || !IsAlive(w, child) {
		return component.ErrEntityNotAlive
	}
	if parent == child || isAncestor(w, child, parent) {
		return component.ErrHierarchyCycle
	}
	detachFromParent(w, child)

	children, ok := Get(w, parent, component.ChildrenComponent.Kind())
	if !ok {
		children = &component.Children{}
		if err := Add(w, parent, component.ChildrenComponent.Kind(), children); err != nil {
			return err
		}
	}
	children.Entities = append(children.Entities, uint64(child))
	return Add(w, child, component.ParentComponent.Kind(), &component.Parent{Entity: uint64(parent)})
}

// Children returns a copy of e's direct children.
func Children(w *World, e Entity) []Entity {
	children, ok := Get(w, e, component.ChildrenComponent.Kind())
	if !ok || len(children.Entities) == 0 {
		return nil
	}
	out := make([]Entity, 0, len(children.Entities))
	for _, raw := range children.Entities {
		out = append(out, Entity(raw))
	}
	return out
}

// Parent returns e's parent, if any.
func Parent(w *World, e Entity) (Entity, bool) {
	p, ok := Get(w, e, component.ParentComponent.Kind())
	if !ok {
		return 0, false
	}
	return Entity(p.Entity), IsAlive(w, Entity(p.Entity))
}

// DespawnRecursive destroys e and every descendant and returns how many
// entities were removed.
func DespawnRecursive(w *World, e Entity) int {
	if !IsAlive(w, e) {
		return 0
	}
	removed := 0
	for _, child := range Children(w, e) {
		removed += DespawnRecursive(w, child)
	}
	if DestroyEntity(w, e) {
		removed++
	}
	return removed
}

// GlobalMatrix composes the local transforms from the root down to e.
// Entities without a Transform contribute identity.
func GlobalMatrix(w *World, e Entity) mgl32.Mat4 {
	m := mgl32.Ident4()
	if t, ok := Get(w, e, component.TransformComponent.Kind()); ok {
		m = t.Matrix()
	}
	if parent, ok := Parent(w, e); ok {
		return GlobalMatrix(w, parent).Mul4(m)
	}
	return m
}

// WorldPosition returns e's translation in world space.
func WorldPosition(w *World, e Entity) mgl32.Vec3 {
	return GlobalMatrix(w, e).Col(3).Vec3()
}

func detachFromParent(w *World, child Entity) {
	p, ok := Get(w, child, component.ParentComponent.Kind())
	if !ok {
		return
	}
	if children, ok := Get(w, Entity(p.Entity), component.ChildrenComponent.Kind()); ok {
		for i, raw := range children.Entities {
			if raw == uint64(child) {
				children.Entities = append(children.Entities[:i], children.Entities[i+1:]...)
				break
			}
		}
	}
	Remove(w, child, component.ParentComponent.Kind())
}

func isAncestor(w *World, candidate, e Entity) bool {
	for {
		parent, ok := Parent(w, e)
		if !ok {
			return false
		}
		if parent == candidate {
			return true
		}
		e = parent
	}
}
