package main

import (
	"image"
	"image/color"
)

// iconOutline returns a copy of src's silhouette ring: every transparent pixel
// within thickness of an opaque one is set to col. The result is padded by
// thickness on each side so the ring can extend past the icon's edge, and is
// meant to be drawn centered under the icon.
func iconOutline(src image.Image, thickness int, col color.Color) *image.NRGBA {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if thickness < 1 {
		thickness = 1
	}
	out := image.NewNRGBA(image.Rect(0, 0, w+2*thickness, h+2*thickness))

	opaque := make([]bool, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			_, _, _, a := src.At(b.Min.X+x, b.Min.Y+y).RGBA()
			opaque[y*w+x] = a != 0
		}
	}
	isOpaque := func(x, y int) bool {
		if x < 0 || y < 0 || x >= w || y >= h {
			return false
		}
		return opaque[y*w+x]
	}

	ob := out.Bounds()
	for oy := 0; oy < ob.Dy(); oy++ {
		for ox := 0; ox < ob.Dx(); ox++ {
			x, y := ox-thickness, oy-thickness
			if isOpaque(x, y) {
				continue
			}
			found := false
			for yy := y - thickness; yy <= y+thickness && !found; yy++ {
				for xx := x - thickness; xx <= x+thickness; xx++ {
					if isOpaque(xx, yy) {
						found = true
						break
					}
				}
			}
			if found {
				out.Set(ox, oy, col)
			}
		}
	}
	return out
}
