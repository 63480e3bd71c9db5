package component

// SelectParent routes a pick on this entity to Subject.
type SelectParent struct {
	Subject uint64
}

var SelectParentComponent = NewComponent[SelectParent]()
