package component

import "image/color"

type DirectionalLight struct {
	Color       color.NRGBA
	Illuminance float32
}

var DirectionalLightComponent = NewComponent[DirectionalLight]()

type PointLight struct {
	Color     color.NRGBA
	Intensity float32
	Range     float32
}

var PointLightComponent = NewComponent[PointLight]()

type SpotLight struct {
	Color      color.NRGBA
	Intensity  float32
	Range      float32
	InnerAngle float32
	OuterAngle float32
}

var SpotLightComponent = NewComponent[SpotLight]()
