package assets

import "fmt"

// Handle is an opaque reference to an asset of type T. A handle is usable as
// soon as it is returned, even if the asset behind it is still loading. The
// zero Handle means "unset".
type Handle[T any] struct {
	id uint32
}

func (h Handle[T]) Valid() bool {
	return h.id != 0
}

func (h Handle[T]) ID() uint32 {
	return h.id
}

func (h Handle[T]) String() string {
	var zero T
	return fmt.Sprintf("%T#%d", zero, h.id)
}

// Untyped erases the asset type so handles of different kinds can share a
// collection.
func (h Handle[T]) Untyped() UntypedHandle {
	var zero T
	return UntypedHandle{Type: fmt.Sprintf("%T", zero), ID: h.id}
}

// UntypedHandle is a type-erased Handle.
type UntypedHandle struct {
	Type string
	ID   uint32
}

func (h UntypedHandle) Valid() bool {
	return h.ID != 0
}

// Typed converts back to Handle[T]; ok is false when the types differ.
func Typed[T any](h UntypedHandle) (Handle[T], bool) {
	var zero T
	if !h.Valid() || h.Type != fmt.Sprintf("%T", zero) {
		return Handle[T]{}, false
	}
	return Handle[T]{id: h.ID}, true
}
