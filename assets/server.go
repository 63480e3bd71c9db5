package assets

import (
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io/fs"
	"log"
	"path"
	"path/filepath"
	"strings"
	"sync"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// LoadState reports how far an image load has progressed.
type LoadState int

const (
	LoadStateNotLoaded LoadState = iota
	LoadStateLoading
	LoadStateLoaded
	LoadStateFailed
)

func (s LoadState) String() string {
	switch s {
	case LoadStateLoading:
		return "loading"
	case LoadStateLoaded:
		return "loaded"
	case LoadStateFailed:
		return "failed"
	default:
		return "not_loaded"
	}
}

// Image is a decoded image asset.
type Image struct {
	Path string
	Data image.Image
}

type imageSlot struct {
	path  string
	state LoadState
	image *Image
	err   error
	// version counts successful decodes, so caches can tell a reload.
	version int
}

// Server hands out asset handles. Images are decoded in the background from
// an fs.FS; meshes and materials are registered synchronously.
type Server struct {
	fsys fs.FS

	mu        sync.Mutex
	nextID    uint32
	images    map[uint32]*imageSlot
	paths     map[string]Handle[Image]
	meshes    map[uint32]*Mesh
	materials map[uint32]*StandardMaterial

	// inflight counts running decodes; changed is closed and replaced each
	// time one finishes.
	inflight int
	changed  chan struct{}
}

// NewServer creates a server reading image files from fsys.
func NewServer(fsys fs.FS) *Server {
	return &Server{
		fsys:      fsys,
		images:    make(map[uint32]*imageSlot),
		paths:     make(map[string]Handle[Image]),
		meshes:    make(map[uint32]*Mesh),
		materials: make(map[uint32]*StandardMaterial),
		changed:   make(chan struct{}),
	}
}

func (s *Server) allocID() uint32 {
	s.nextID++
	return s.nextID
}

// LoadImage starts loading the image at p and returns its handle at once.
// Loading the same path twice returns the same handle.
func (s *Server) LoadImage(p string) Handle[Image] {
	clean := cleanAssetPath(p)

	s.mu.Lock()
	if h, ok := s.paths[clean]; ok {
		s.mu.Unlock()
		return h
	}
	h := Handle[Image]{id: s.allocID()}
	slot := &imageSlot{path: clean, state: LoadStateLoading}
	s.images[h.id] = slot
	s.paths[clean] = h
	s.inflight++
	s.mu.Unlock()

	go s.decode(slot)
	return h
}

// ReloadImage decodes p again, keeping its handle. Paths never loaded are
// loaded as by LoadImage.
func (s *Server) ReloadImage(p string) Handle[Image] {
	clean := cleanAssetPath(p)

	s.mu.Lock()
	h, ok := s.paths[clean]
	if !ok {
		s.mu.Unlock()
		return s.LoadImage(p)
	}
	slot := s.images[h.id]
	if slot.state == LoadStateLoading {
		s.mu.Unlock()
		return h
	}
	slot.state = LoadStateLoading
	slot.err = nil
	s.inflight++
	s.mu.Unlock()

	go s.decode(slot)
	return h
}

func (s *Server) decode(slot *imageSlot) {
	img, err := s.readImage(slot.path)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.inflight--
	close(s.changedLocked())
	s.changed = make(chan struct{})
	if err != nil {
		slot.state = LoadStateFailed
		slot.err = err
		log.Printf("AssetServer: load %s failed: %v", slot.path, err)
		return
	}
	slot.state = LoadStateLoaded
	slot.image = &Image{Path: slot.path, Data: img}
	slot.version++
}

func (s *Server) readImage(p string) (image.Image, error) {
	if s.fsys == nil {
		return nil, fmt.Errorf("assets: load %s: no asset filesystem", p)
	}
	f, err := s.fsys.Open(p)
	if err != nil {
		return nil, fmt.Errorf("assets: open %s: %w", p, err)
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("assets: decode %s: %w", p, err)
	}
	return img, nil
}

// Image returns the decoded image for h. ok is false while the load is in
// flight, after it failed, or for unknown handles.
func (s *Server) Image(h Handle[Image]) (*Image, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	slot, ok := s.images[h.id]
	if !ok || slot.image == nil {
		return nil, false
	}
	return slot.image, true
}

// ImageVersion increments each time h finishes decoding.
func (s *Server) ImageVersion(h Handle[Image]) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if slot, ok := s.images[h.id]; ok {
		return slot.version
	}
	return 0
}

// LoadState reports the progress of an image load.
func (s *Server) LoadState(h Handle[Image]) LoadState {
	s.mu.Lock()
	defer s.mu.Unlock()
	slot, ok := s.images[h.id]
	if !ok {
		return LoadStateNotLoaded
	}
	return slot.state
}

// ImageErr returns the error of a failed load.
func (s *Server) ImageErr(h Handle[Image]) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if slot, ok := s.images[h.id]; ok {
		return slot.err
	}
	return nil
}

// ImagePath returns the normalized path h was loaded from.
func (s *Server) ImagePath(h Handle[Image]) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if slot, ok := s.images[h.id]; ok {
		return slot.path
	}
	return ""
}

// Wait blocks until no image load is in flight or ctx is done. Loads
// started while waiting are waited for too.
func (s *Server) Wait(ctx context.Context) error {
	for {
		s.mu.Lock()
		if s.inflight == 0 {
			s.mu.Unlock()
			return nil
		}
		changed := s.changedLocked()
		s.mu.Unlock()

		select {
		case <-changed:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (s *Server) changedLocked() chan struct{} {
	if s.changed == nil {
		s.changed = make(chan struct{})
	}
	return s.changed
}

// Pending reports whether any image load is still in flight.
func (s *Server) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inflight > 0
}

// AddMesh registers m and returns its handle.
func (s *Server) AddMesh(m *Mesh) Handle[Mesh] {
	s.mu.Lock()
	defer s.mu.Unlock()
	h := Handle[Mesh]{id: s.allocID()}
	s.meshes[h.id] = m
	return h
}

func (s *Server) Mesh(h Handle[Mesh]) (*Mesh, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.meshes[h.id]
	return m, ok
}

// AddMaterial registers m and returns its handle.
func (s *Server) AddMaterial(m *StandardMaterial) Handle[StandardMaterial] {
	s.mu.Lock()
	defer s.mu.Unlock()
	h := Handle[StandardMaterial]{id: s.allocID()}
	s.materials[h.id] = m
	return h
}

func (s *Server) Material(h Handle[StandardMaterial]) (*StandardMaterial, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.materials[h.id]
	return m, ok
}

func cleanAssetPath(p string) string {
	if p == "" {
		return ""
	}
	s := filepath.ToSlash(p)
	if idx := strings.LastIndex(s, "/assets/"); idx >= 0 {
		s = s[idx+len("/assets/"):]
	}
	s = strings.TrimPrefix(s, "assets/")
	return strings.TrimPrefix(path.Clean(s), "/")
}
