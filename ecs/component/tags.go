package component

// PrefabTag marks entities authored in a scene, as opposed to editor-only
// helpers spawned at runtime.
type PrefabTag struct{}

var PrefabTagComponent = NewComponent[PrefabTag]()

// EditorCameraTag marks the editor's own viewport camera.
type EditorCameraTag struct{}

var EditorCameraTagComponent = NewComponent[EditorCameraTag]()

type Name struct {
	Value string
}

var NameComponent = NewComponent[Name]()
