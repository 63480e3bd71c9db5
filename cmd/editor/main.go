package main

import (
	"embed"
	"flag"
	"io/fs"
	"log"
	"os"
	"path/filepath"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/milk9111/meshless/assets"
	"github.com/milk9111/meshless/ecs"
	"github.com/milk9111/meshless/editor"
	"github.com/milk9111/meshless/icons"
	"github.com/milk9111/meshless/picking"
	"github.com/milk9111/meshless/scene"
	"github.com/milk9111/meshless/visualizer"
	"golang.design/x/clipboard"
)

//go:embed demo.scene.yaml demo_ring.tengo
var demoFS embed.FS

const demoScenePath = "demo.scene.yaml"

func main() {
	assetsDir := flag.String("dir", "", "Asset root holding the icon manifest and images (embedded icons when empty)")
	manifestPath := flag.String("manifest", icons.DefaultManifestPath, "Icon manifest path relative to -dir")
	scenePath := flag.String("scene", "", "Scene YAML to open (built-in demo scene when empty)")
	watch := flag.Bool("watch", true, "Reload icons when the manifest or its images change (needs -dir)")
	flag.Parse()

	log.Println("Editor starting...")

	var fsys fs.FS = icons.EmbeddedFS()
	if *assetsDir != "" {
		fsys = os.DirFS(*assetsDir)
	}

	app, plugin, server, backend := newEditorApp(fsys, *manifestPath, *scenePath)

	clipboardOK := true
	if err := clipboard.Init(); err != nil {
		log.Printf("Editor: clipboard unavailable: %v", err)
		clipboardOK = false
	}

	var watcher *icons.Watcher
	if *watch && *assetsDir != "" {
		dirs := []string{
			*assetsDir,
			filepath.Join(*assetsDir, filepath.Dir(*manifestPath)),
			filepath.Join(*assetsDir, "icons"),
		}
		if w, err := icons.NewWatcher(existingDirs(dirs)...); err != nil {
			log.Printf("Editor: icon watcher disabled: %v", err)
		} else {
			watcher = w
			defer watcher.Close()
		}
	}

	g := newEditorGame(app, plugin, server, backend, watcher, *assetsDir, clipboardOK)

	ebiten.SetWindowTitle("Meshless Editor")
	ebiten.SetWindowSize(1280, 720)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	if err := ebiten.RunGame(g); err != nil {
		log.Fatal(err)
	}
}

// newEditorApp wires the asset server, picking backend and visualizer
// plugin, and queues the scene at scenePath (the demo scene when empty) to
// load with the icons.
func newEditorApp(fsys fs.FS, manifestPath, scenePath string) (*editor.App, *visualizer.Plugin, *assets.Server, *picking.Backend) {
	server := assets.NewServer(fsys)
	backend := picking.NewBackend(picking.Settings{})
	plugin := visualizer.NewPlugin(fsys, manifestPath, server, backend)

	app := editor.NewApp(ecs.NewWorld())
	app.AddPlugin(plugin)
	app.AddLoader(func(w *ecs.World) error {
		spec, name, err := loadSceneSpec(scenePath)
		if err != nil {
			return err
		}
		roots, err := scene.Build(w, spec, &scene.BuildContext{Assets: server, Path: name})
		if err != nil {
			return err
		}
		log.Printf("Editor: loaded scene %s (%d root entities)", name, len(roots))
		return nil
	})
	return app, plugin, server, backend
}

func loadSceneSpec(path string) (scene.Spec, string, error) {
	if path == "" {
		spec, err := scene.LoadSpec(demoFS, demoScenePath)
		return spec, demoScenePath, err
	}
	spec, err := scene.LoadSpec(os.DirFS(filepath.Dir(path)), filepath.Base(path))
	return spec, path, err
}

func existingDirs(dirs []string) []string {
	seen := make(map[string]bool, len(dirs))
	out := dirs[:0]
	for _, d := range dirs {
		d = filepath.Clean(d)
		if seen[d] {
			continue
		}
		if info, err := os.Stat(d); err != nil || !info.IsDir() {
			continue
		}
		seen[d] = true
		out = append(out, d)
	}
	return out
}
