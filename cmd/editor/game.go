package main

import (
	"fmt"
	"image/color"
	"log"
	"math"
	"path/filepath"
	"strings"

	"github.com/ebitenui/ebitenui"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/milk9111/meshless/assets"
	"github.com/milk9111/meshless/ecs"
	"github.com/milk9111/meshless/ecs/component"
	"github.com/milk9111/meshless/editor"
	"github.com/milk9111/meshless/icons"
	"github.com/milk9111/meshless/picking"
	"github.com/milk9111/meshless/visualizer"
	"golang.design/x/clipboard"
)

const (
	orbitSpeed = 0.03
	zoomStep   = 0.5
	minRadius  = 2

	outlineThickness = 3
)

var selectionColor = color.RGBA{255, 200, 0, 255}

type cachedImage struct {
	version int
	img     *ebiten.Image
}

// editorGame is the ebiten game driving the editor app.
type editorGame struct {
	app     *editor.App
	plugin  *visualizer.Plugin
	server  *assets.Server
	picking *picking.Backend
	watcher *icons.Watcher

	ui     *ebitenui.UI
	status *statusPanel

	assetsDir   string
	clipboardOK bool

	view     picking.View
	yaw      float64
	pitch    float64
	radius   float64
	selected ecs.Entity
	images   map[assets.Handle[assets.Image]]cachedImage
	outlines map[assets.Handle[assets.Image]]cachedImage
}

func newEditorGame(app *editor.App, plugin *visualizer.Plugin, server *assets.Server, backend *picking.Backend, watcher *icons.Watcher, assetsDir string, clipboardOK bool) *editorGame {
	ui, status := buildEditorUI()
	g := &editorGame{
		app:         app,
		plugin:      plugin,
		server:      server,
		picking:     backend,
		watcher:     watcher,
		ui:          ui,
		status:      status,
		assetsDir:   assetsDir,
		clipboardOK: clipboardOK,
		view:        picking.DefaultView(1280, 720),
		yaw:         0,
		pitch:       0.45,
		radius:      13,
		images:      make(map[assets.Handle[assets.Image]]cachedImage),
		outlines:    make(map[assets.Handle[assets.Image]]cachedImage),
	}
	g.updateEye()
	app.AddEventListener(func(evt ecs.Event) {
		if evt.Type != visualizer.ProxySpawnedEvent {
			return
		}
		if spawned, ok := evt.Data.(visualizer.ProxySpawned); ok {
			log.Printf("Editor: %s proxy %v for %s", spawned.Kind, spawned.Proxy, g.entityName(spawned.Subject))
		}
	})
	app.OnExit(editor.StateEditor, func(*ecs.World) {
		g.selected = 0
	})
	return g
}

func (g *editorGame) Update() error {
	g.pollWatcher()

	if err := g.app.Update(); err != nil {
		return err
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyTab) {
		switch g.app.State() {
		case editor.StateEditor:
			g.app.SetState(editor.StateGame)
		case editor.StateGame:
			g.app.SetState(editor.StateEditor)
		}
	}
	if ebiten.IsKeyPressed(ebiten.KeyControl) && inpututil.IsKeyJustPressed(ebiten.KeyC) {
		g.copySelection()
	}
	g.updateOrbit()

	if g.app.State() == editor.StateEditor && inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		x, y := ebiten.CursorPosition()
		g.picking.Sync(g.app.World, g.server, g.view)
		if hit, ok := g.picking.Pick(float64(x), float64(y)); ok {
			g.selected = hit.Subject
		} else {
			g.selected = 0
		}
	}
	if g.selected != 0 && !ecs.IsAlive(g.app.World, g.selected) {
		g.selected = 0
	}

	g.status.SetState(g.app.State().String())
	if g.selected != 0 {
		g.status.SetSelection(g.entityName(g.selected))
	} else {
		g.status.SetSelection("")
	}
	g.ui.Update()
	return nil
}

func (g *editorGame) updateOrbit() {
	if ebiten.IsKeyPressed(ebiten.KeyArrowLeft) {
		g.yaw -= orbitSpeed
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowRight) {
		g.yaw += orbitSpeed
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowUp) {
		g.pitch = math.Min(g.pitch+orbitSpeed, 1.5)
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowDown) {
		g.pitch = math.Max(g.pitch-orbitSpeed, -1.5)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyPageUp) {
		g.radius = math.Max(g.radius-zoomStep, minRadius)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyPageDown) {
		g.radius += zoomStep
	}
	g.updateEye()
}

func (g *editorGame) updateEye() {
	g.view.Eye = g.view.Target.Add(mgl32.Vec3{
		float32(g.radius * math.Cos(g.pitch) * math.Sin(g.yaw)),
		float32(g.radius * math.Sin(g.pitch)),
		float32(g.radius * math.Cos(g.pitch) * math.Cos(g.yaw)),
	})
}

// pollWatcher handles queued file changes without blocking the frame.
func (g *editorGame) pollWatcher() {
	if g.watcher == nil {
		return
	}
	for {
		select {
		case name, ok := <-g.watcher.Events:
			if !ok {
				g.watcher = nil
				return
			}
			g.handleFileChange(name)
		case err, ok := <-g.watcher.Errors:
			if ok {
				log.Printf("Editor: watcher error: %v", err)
			}
		default:
			return
		}
	}
}

func (g *editorGame) handleFileChange(name string) {
	rel, err := filepath.Rel(g.assetsDir, name)
	if err != nil {
		rel = name
	}
	rel = filepath.ToSlash(rel)

	if strings.HasSuffix(rel, ".yaml") || strings.HasSuffix(rel, ".yml") {
		if g.app.State() != editor.StateEditor {
			return
		}
		if err := g.plugin.Reload(g.app.World); err != nil {
			log.Printf("Editor: reload %s: %v", rel, err)
			g.status.SetMessage(fmt.Sprintf("Reload failed: %v", err))
			return
		}
		g.status.SetMessage("Reloaded " + rel)
		return
	}
	g.server.ReloadImage(rel)
	g.status.SetMessage("Reloaded " + rel)
}

func (g *editorGame) copySelection() {
	if g.selected == 0 {
		return
	}
	name := g.entityName(g.selected)
	if !g.clipboardOK {
		g.status.SetMessage("Clipboard unavailable")
		return
	}
	clipboard.Write(clipboard.FmtText, []byte(name))
	g.status.SetMessage("Copied " + name)
}

func (g *editorGame) entityName(e ecs.Entity) string {
	if n, ok := ecs.Get(g.app.World, e, component.NameComponent.Kind()); ok && n.Value != "" {
		return n.Value
	}
	return e.String()
}

func (g *editorGame) Draw(screen *ebiten.Image) {
	screen.Fill(color.RGBA{24, 26, 30, 255})
	g.drawGrid(screen)

	switch g.app.State() {
	case editor.StateLoading:
	case editor.StateEditor:
		g.drawObjects(screen)
		g.drawBillboards(screen)
		g.drawSelection(screen)
	case editor.StateGame:
	}

	g.ui.Draw(screen)
}

func (g *editorGame) drawGrid(screen *ebiten.Image) {
	const half = 10
	lineColor := color.RGBA{60, 64, 72, 255}
	for i := -half; i <= half; i++ {
		f := float32(i)
		g.drawLine(screen, mgl32.Vec3{f, 0, -half}, mgl32.Vec3{f, 0, half}, lineColor)
		g.drawLine(screen, mgl32.Vec3{-half, 0, f}, mgl32.Vec3{half, 0, f}, lineColor)
	}
}

func (g *editorGame) drawLine(screen *ebiten.Image, a, b mgl32.Vec3, clr color.Color) {
	pa, _, okA := g.view.Project(a)
	pb, _, okB := g.view.Project(b)
	if !okA || !okB {
		return
	}
	vector.StrokeLine(screen, pa.X(), pa.Y(), pb.X(), pb.Y(), 1, clr, true)
}

func (g *editorGame) drawBillboards(screen *ebiten.Image) {
	w := g.app.World
	ecs.ForEach2(w, component.BillboardMeshComponent.Kind(), component.BillboardTextureComponent.Kind(),
		func(e ecs.Entity, bm *component.BillboardMesh, bt *component.BillboardTexture) {
			if !picking.Visible(w, e) {
				return
			}
			img := g.ebitenImage(bt.Image)
			if img == nil {
				return
			}
			if op, ok := g.billboardOp(e, bm, img.Bounds().Dx(), img.Bounds().Dy(), 0); ok {
				screen.DrawImage(img, op)
			}
		})
}

// billboardOp scales an icon of iconW x iconH to the projected quad size. pad
// is extra border the drawn image carries around the icon.
func (g *editorGame) billboardOp(e ecs.Entity, bm *component.BillboardMesh, iconW, iconH, pad int) (*ebiten.DrawImageOptions, bool) {
	center, depth, ok := g.view.Project(ecs.WorldPosition(g.app.World, e))
	if !ok {
		return nil, false
	}
	size := float32(1)
	if mesh, ok := g.server.Mesh(bm.Mesh); ok {
		lo, hi := mesh.Bounds()
		size = max(hi.X()-lo.X(), hi.Y()-lo.Y())
	}
	px := g.view.ProjectRadius(size, depth)
	if px <= 0 || iconW == 0 || iconH == 0 {
		return nil, false
	}

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(-float64(iconW+2*pad)/2, -float64(iconH+2*pad)/2)
	op.GeoM.Scale(float64(px)/float64(iconW), float64(px)/float64(iconH))
	op.GeoM.Translate(float64(center.X()), float64(center.Y()))
	op.Filter = ebiten.FilterLinear
	return op, true
}

// drawObjects draws object proxies as shaded discs in their material color.
func (g *editorGame) drawObjects(screen *ebiten.Image) {
	w := g.app.World
	ecs.ForEach2(w, component.ProxyTagComponent.Kind(), component.MeshInstanceComponent.Kind(),
		func(e ecs.Entity, _ *component.ProxyTag, mi *component.MeshInstance) {
			mesh, ok := g.server.Mesh(mi.Mesh)
			if !ok {
				return
			}
			center, depth, ok := g.view.Project(ecs.WorldPosition(w, e))
			if !ok {
				return
			}
			r := g.view.ProjectRadius(mesh.BoundingRadius(), depth)
			clr := color.NRGBA{R: 255, G: 255, B: 255, A: 255}
			if mat, ok := g.server.Material(mi.Material); ok {
				clr = mat.BaseColor
			}
			vector.FillCircle(screen, center.X(), center.Y(), r, clr, true)
		})
}

func (g *editorGame) drawSelection(screen *ebiten.Image) {
	if g.selected == 0 {
		return
	}
	w := g.app.World
	target := g.selected
	if proxy, ok := visualizer.ProxyOf(w, g.selected); ok {
		target = proxy
	}

	bm, okMesh := ecs.Get(w, target, component.BillboardMeshComponent.Kind())
	bt, okTex := ecs.Get(w, target, component.BillboardTextureComponent.Kind())
	if okMesh && okTex {
		if outline := g.outlineImage(bt.Image); outline != nil {
			iconW := outline.Bounds().Dx() - 2*outlineThickness
			iconH := outline.Bounds().Dy() - 2*outlineThickness
			if op, ok := g.billboardOp(target, bm, iconW, iconH, outlineThickness); ok {
				screen.DrawImage(outline, op)
				return
			}
		}
	}

	center, depth, ok := g.view.Project(ecs.WorldPosition(w, target))
	if !ok {
		return
	}
	r := max(g.view.ProjectRadius(1.2, depth), 6)
	vector.StrokeCircle(screen, center.X(), center.Y(), r, 2, selectionColor, true)
}

// outlineImage builds the selection ring for an icon, once per decode.
func (g *editorGame) outlineImage(h assets.Handle[assets.Image]) *ebiten.Image {
	version := g.server.ImageVersion(h)
	if cached, ok := g.outlines[h]; ok && cached.version == version {
		return cached.img
	}
	src, ok := g.server.Image(h)
	if !ok {
		return nil
	}
	if cached, ok := g.outlines[h]; ok {
		cached.img.Deallocate()
	}
	img := ebiten.NewImageFromImage(iconOutline(src.Data, outlineThickness, selectionColor))
	g.outlines[h] = cachedImage{version: version, img: img}
	return img
}

// ebitenImage uploads decoded icons once per decode.
func (g *editorGame) ebitenImage(h assets.Handle[assets.Image]) *ebiten.Image {
	version := g.server.ImageVersion(h)
	if cached, ok := g.images[h]; ok && cached.version == version {
		return cached.img
	}
	src, ok := g.server.Image(h)
	if !ok {
		return nil
	}
	if cached, ok := g.images[h]; ok {
		cached.img.Deallocate()
	}
	img := ebiten.NewImageFromImage(src.Data)
	g.images[h] = cachedImage{version: version, img: img}
	return img
}

func (g *editorGame) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.view.Width = outsideWidth
	g.view.Height = outsideHeight
	return outsideWidth, outsideHeight
}
