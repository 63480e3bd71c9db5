package component

// Camera is a scene camera. The editor's own viewport camera also carries
// EditorCameraTag.
type Camera struct {
	FOV    float32 // vertical, radians
	Near   float32
	Far    float32
	Order  int
	Layers RenderLayers
}

var CameraComponent = NewComponent[Camera]()
