package assets

import "image/color"

// StandardMaterial is the minimal PBR-less material used by editor proxies.
type StandardMaterial struct {
	BaseColor color.NRGBA
	Unlit     bool
}

// UnlitWhite is the fallback material for object proxies.
func UnlitWhite() *StandardMaterial {
	return &StandardMaterial{
		BaseColor: color.NRGBA{R: 255, G: 255, B: 255, A: 255},
		Unlit:     true,
	}
}
