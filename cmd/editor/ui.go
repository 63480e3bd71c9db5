package main

import (
	"bytes"
	"image/color"

	"github.com/ebitenui/ebitenui"
	"github.com/ebitenui/ebitenui/image"
	"github.com/ebitenui/ebitenui/widget"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"golang.org/x/image/font/gofont/goregular"
)

// statusPanel is the top-left overlay: editor state, selection and key help.
type statusPanel struct {
	state     *widget.Text
	selection *widget.Text
	message   *widget.Text
}

func (p *statusPanel) SetState(s string) {
	p.state.Label = "State: " + s
}

func (p *statusPanel) SetSelection(s string) {
	if s == "" {
		s = "nothing"
	}
	p.selection.Label = "Selected: " + s
}

func (p *statusPanel) SetMessage(s string) {
	p.message.Label = s
}

func buildEditorUI() (*ebitenui.UI, *statusPanel) {
	ui := &ebitenui.UI{}

	s, err := text.NewGoTextFaceSource(bytes.NewReader(goregular.TTF))
	if err != nil {
		panic("Failed to load font: " + err.Error())
	}
	var fontFace text.Face = &text.GoTextFace{Source: s, Size: 14}

	panel := widget.NewContainer(
		widget.ContainerOpts.BackgroundImage(image.NewNineSliceColor(color.RGBA{30, 30, 30, 200})),
		widget.ContainerOpts.Layout(widget.NewRowLayout(
			widget.RowLayoutOpts.Direction(widget.DirectionVertical),
			widget.RowLayoutOpts.Padding(&widget.Insets{Top: 8, Bottom: 8, Left: 8, Right: 8}),
			widget.RowLayoutOpts.Spacing(4),
		)),
		widget.ContainerOpts.WidgetOpts(widget.WidgetOpts.LayoutData(widget.AnchorLayoutData{
			HorizontalPosition: widget.AnchorLayoutPositionStart,
			VerticalPosition:   widget.AnchorLayoutPositionStart,
		})),
	)

	newLine := func(label string, c color.Color) *widget.Text {
		t := widget.NewText(widget.TextOpts.Text(label, &fontFace, c))
		panel.AddChild(t)
		return t
	}

	status := &statusPanel{
		state:     newLine("", color.White),
		selection: newLine("", color.White),
	}
	newLine("Click: select   Tab: editor/game   Ctrl+C: copy name", color.Gray{Y: 170})
	newLine("Arrows: orbit   PgUp/PgDn: zoom", color.Gray{Y: 170})
	status.message = newLine("", color.RGBA{255, 210, 120, 255})
	status.SetSelection("")

	root := widget.NewContainer(widget.ContainerOpts.Layout(widget.NewAnchorLayout()))
	root.AddChild(panel)
	ui.Container = root
	return ui, status
}
