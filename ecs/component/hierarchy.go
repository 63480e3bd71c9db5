package component

// Parent points at the entity this one is attached to (ecs.Entity is uint64).
type Parent struct {
	Entity uint64
}

var ParentComponent = NewComponent[Parent]()

// Children lists direct children in attach order.
type Children struct {
	Entities []uint64
}

var ChildrenComponent = NewComponent[Children]()
