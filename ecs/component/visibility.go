package component

type Visibility int

const (
	VisibilityInherited Visibility = iota
	VisibilityVisible
	VisibilityHidden
)

func (v Visibility) String() string {
	switch v {
	case VisibilityVisible:
		return "visible"
	case VisibilityHidden:
		return "hidden"
	default:
		return "inherited"
	}
}

var VisibilityComponent = NewComponent[Visibility]()
