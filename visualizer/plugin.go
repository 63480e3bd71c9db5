package visualizer

import (
	"fmt"
	"io/fs"
	"log"

	"github.com/milk9111/meshless/assets"
	"github.com/milk9111/meshless/ecs"
	"github.com/milk9111/meshless/editor"
	"github.com/milk9111/meshless/icons"
	"github.com/milk9111/meshless/picking"
)

// Plugin wires the meshless visualizer into an editor app: icon loading,
// the two spawn systems, cleanup when the editor is left, and picking that
// can see the hidden click volumes.
type Plugin struct {
	// AssetFS is the asset root the manifest and its images are read from.
	AssetFS      fs.FS
	ManifestPath string
	Server       *assets.Server
	Picking      *picking.Backend

	builtin *VisualizeMeshlessSystem
	custom  *VisualizeCustomMeshlessSystem
}

// NewPlugin uses the embedded manifest when fsys is nil.
func NewPlugin(fsys fs.FS, manifestPath string, server *assets.Server, backend *picking.Backend) *Plugin {
	if fsys == nil {
		fsys = icons.EmbeddedFS()
	}
	if manifestPath == "" {
		manifestPath = icons.DefaultManifestPath
	}
	if server == nil {
		server = assets.NewServer(fsys)
	}
	return &Plugin{
		AssetFS:      fsys,
		ManifestPath: manifestPath,
		Server:       server,
		Picking:      backend,
		builtin:      NewVisualizeMeshlessSystem(nil),
		custom:       NewVisualizeCustomMeshlessSystem(nil, server),
	}
}

func (p *Plugin) Build(app *editor.App) {
	if p.builtin == nil {
		p.builtin = NewVisualizeMeshlessSystem(nil)
	}
	if p.custom == nil {
		p.custom = NewVisualizeCustomMeshlessSystem(nil, p.Server)
	}

	RegisterSceneComponents()

	app.AddLoader(func(*ecs.World) error {
		return p.loadIcons()
	})
	app.AddReadyCheck(func() bool {
		return !p.Server.Pending()
	})

	if p.Picking != nil {
		p.Picking.Configure(picking.Settings{Visibility: picking.VisibilityIgnore})
	}

	app.AddSystem(editor.StateEditor, p.builtin)
	app.AddSystem(editor.StateEditor, p.custom)
	app.OnExit(editor.StateEditor, NewCleanMeshlessSystem().Update)
}

// Icons returns the loaded icon set, nil before loading.
func (p *Plugin) Icons() *icons.IconAssets {
	if p.builtin == nil {
		return nil
	}
	return p.builtin.Icons
}

// Reload re-reads the manifest, despawns every proxy so the systems respawn
// them with the new handles on their next run.
func (p *Plugin) Reload(w *ecs.World) error {
	if err := p.loadIcons(); err != nil {
		return err
	}
	removed := Clean(w)
	log.Printf("Visualizer: reloaded %s, cleaned %d proxy entities", p.ManifestPath, removed)
	return nil
}

func (p *Plugin) loadIcons() error {
	if p.Server == nil {
		return fmt.Errorf("visualizer: no asset server")
	}
	ia, err := icons.Load(p.AssetFS, p.ManifestPath, p.Server)
	if err != nil {
		return fmt.Errorf("visualizer: %w", err)
	}
	p.builtin.Icons = ia
	p.custom.Icons = ia
	p.custom.Assets = p.Server
	return nil
}
