package component

// RenderLayers is a bitmask of camera layers an entity is drawn on.
type RenderLayers uint32

const (
	TotalRenderLayers = 32
	// EditorRenderLayer is reserved for editor-only visuals; only the editor
	// camera renders it.
	EditorRenderLayer = TotalRenderLayers - 1
)

// DefaultRenderLayers is layer 0, what every entity without the component
// is drawn on.
const DefaultRenderLayers RenderLayers = 1

// Layer returns a mask with only layer n set. Out-of-range layers clamp to
// the last one.
func Layer(n int) RenderLayers {
	if n < 0 {
		n = 0
	}
	if n >= TotalRenderLayers {
		n = TotalRenderLayers - 1
	}
	return RenderLayers(1) << n
}

func (r RenderLayers) With(n int) RenderLayers {
	return r | Layer(n)
}

func (r RenderLayers) Contains(n int) bool {
	return r&Layer(n) != 0
}

func (r RenderLayers) Intersects(other RenderLayers) bool {
	return r&other != 0
}

var RenderLayersComponent = NewComponent[RenderLayers]()
