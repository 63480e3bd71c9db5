package icons

import (
	"errors"
	"fmt"
	"io/fs"
	"log"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/milk9111/meshless/assets"
)

var (
	ErrMissingKey   = errors.New("icons: manifest key not found")
	ErrWrongVariant = errors.New("icons: manifest key has the wrong asset type")
)

// FallbackSphereRadius replaces a sphere radius the mesh builder rejects.
const FallbackSphereRadius = 0.75

// Manifest keys the editor needs.
const (
	KeyUnknown     = "unknown"
	KeyDirectional = "directional"
	KeyPoint       = "point"
	KeySpot        = "spot"
	KeyCamera      = "camera"
	KeySquare      = "square"
	KeySphere      = "sphere"
)

// Collection is a realized manifest: every key resolved to a handle.
type Collection struct {
	handles map[string]assets.UntypedHandle
}

// Handle returns the untyped handle registered for key.
func (c *Collection) Handle(key string) (assets.UntypedHandle, bool) {
	if c == nil {
		return assets.UntypedHandle{}, false
	}
	h, ok := c.handles[key]
	return h, ok
}

func (c *Collection) Len() int {
	if c == nil {
		return 0
	}
	return len(c.handles)
}

// Realize turns every manifest entry into a handle. Images are queued on the
// server and resolve later; meshes are built and registered immediately.
func Realize(m Manifest, server *assets.Server) *Collection {
	c := &Collection{handles: make(map[string]assets.UntypedHandle, len(m))}
	for _, key := range m.Keys() {
		c.handles[key] = realizeEntry(key, m[key], server)
	}
	return c
}

func realizeEntry(key string, entry Entry, server *assets.Server) assets.UntypedHandle {
	switch e := entry.(type) {
	case ImageEntry:
		return server.LoadImage(e.Path).Untyped()
	case QuadEntry:
		return server.AddMesh(assets.NewQuad(mgl32.Vec2{e.Size[0], e.Size[1]})).Untyped()
	case SphereEntry:
		return server.AddMesh(SphereMesh(key, e.Radius)).Untyped()
	default:
		panic(fmt.Sprintf("icons: unhandled manifest entry %T", entry))
	}
}

// SphereMesh builds an icosphere of radius, falling back to
// FallbackSphereRadius when the radius is rejected.
func SphereMesh(key string, radius float32) *assets.Mesh {
	mesh, err := assets.NewIcosphere(radius, assets.DefaultIcosphereSubdivisions)
	if err == nil {
		return mesh
	}
	log.Printf("Icons: sphere %q: %v; using radius %v", key, err, FallbackSphereRadius)
	mesh, err = assets.NewIcosphere(FallbackSphereRadius, assets.DefaultIcosphereSubdivisions)
	if err != nil {
		panic(err)
	}
	return mesh
}

// IconAssets are the handles the meshless visualizer draws with. Built once
// during loading and read-only afterwards.
type IconAssets struct {
	// Unknown is the backup icon.
	Unknown     assets.Handle[assets.Image]
	Directional assets.Handle[assets.Image]
	Point       assets.Handle[assets.Image]
	Spot        assets.Handle[assets.Image]
	Camera      assets.Handle[assets.Image]
	// Square is the quad icons are drawn on.
	Square assets.Handle[assets.Mesh]
	// Sphere is the hidden volume that makes an icon clickable.
	Sphere assets.Handle[assets.Mesh]
}

// NewIconAssets picks the editor's handles out of a realized collection.
func NewIconAssets(c *Collection) (*IconAssets, error) {
	var (
		ia  IconAssets
		err error
	)
	images := []struct {
		key string
		dst *assets.Handle[assets.Image]
	}{
		{KeyUnknown, &ia.Unknown},
		{KeyDirectional, &ia.Directional},
		{KeyPoint, &ia.Point},
		{KeySpot, &ia.Spot},
		{KeyCamera, &ia.Camera},
	}
	for _, img := range images {
		if *img.dst, err = lookup[assets.Image](c, img.key); err != nil {
			return nil, err
		}
	}
	if ia.Square, err = lookup[assets.Mesh](c, KeySquare); err != nil {
		return nil, err
	}
	if ia.Sphere, err = lookup[assets.Mesh](c, KeySphere); err != nil {
		return nil, err
	}
	return &ia, nil
}

func lookup[T any](c *Collection, key string) (assets.Handle[T], error) {
	raw, ok := c.Handle(key)
	if !ok {
		return assets.Handle[T]{}, fmt.Errorf("%w: %q", ErrMissingKey, key)
	}
	h, ok := assets.Typed[T](raw)
	if !ok {
		return assets.Handle[T]{}, fmt.Errorf("%w: %q is %s", ErrWrongVariant, key, raw.Type)
	}
	return h, nil
}

// Load reads the manifest at name from fsys, realizes it on server and
// builds the icon set.
func Load(fsys fs.FS, name string, server *assets.Server) (*IconAssets, error) {
	m, err := LoadManifest(fsys, name)
	if err != nil {
		return nil, err
	}
	ia, err := NewIconAssets(Realize(m, server))
	if err != nil {
		return nil, fmt.Errorf("icons: %s: %w", name, err)
	}
	return ia, nil
}
