package scene

import (
	"fmt"
	"image/color"
	"io/fs"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Spec is a scene file: a forest of entities. Script names an optional
// tengo file whose generated entities follow the listed ones.
type Spec struct {
	Name     string       `yaml:"name"`
	Script   string       `yaml:"script"`
	Entities []EntitySpec `yaml:"entities"`
}

// EntitySpec is one entity: a name, its components keyed by builder name,
// and nested children.
type EntitySpec struct {
	Name       string         `yaml:"name"`
	Components map[string]any `yaml:"components"`
	Children   []EntitySpec   `yaml:"children"`
}

// ParseSpec decodes scene YAML.
func ParseSpec(data []byte) (Spec, error) {
	var spec Spec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return Spec{}, err
	}
	return spec, nil
}

// LoadSpec reads the scene file at name from fsys and expands its script.
func LoadSpec(fsys fs.FS, name string) (Spec, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return Spec{}, fmt.Errorf("scene: load %s: %w", name, err)
	}
	spec, err := ParseSpec(data)
	if err != nil {
		return Spec{}, fmt.Errorf("scene: unmarshal %s: %w", name, err)
	}
	if err := expandScript(fsys, name, &spec); err != nil {
		return Spec{}, err
	}
	return spec, nil
}

// DecodeComponentSpec re-decodes a raw YAML value into T.
func DecodeComponentSpec[T any](raw any) (T, error) {
	var zero T
	if raw == nil {
		return zero, nil
	}
	b, err := yaml.Marshal(raw)
	if err != nil {
		return zero, err
	}
	var out T
	if err := yaml.Unmarshal(b, &out); err != nil {
		return zero, err
	}
	return out, nil
}

type TransformSpec struct {
	X        float32   `yaml:"x"`
	Y        float32   `yaml:"y"`
	Z        float32   `yaml:"z"`
	Rotation []float32 `yaml:"rotation"` // euler degrees, XYZ
	Scale    []float32 `yaml:"scale"`
}

type DirectionalLightSpec struct {
	Color       string  `yaml:"color"`
	Illuminance float32 `yaml:"illuminance"`
}

type PointLightSpec struct {
	Color     string  `yaml:"color"`
	Intensity float32 `yaml:"intensity"`
	Range     float32 `yaml:"range"`
}

type SpotLightSpec struct {
	Color      string  `yaml:"color"`
	Intensity  float32 `yaml:"intensity"`
	Range      float32 `yaml:"range"`
	InnerAngle float32 `yaml:"inner_angle"`
	OuterAngle float32 `yaml:"outer_angle"`
}

type CameraSpec struct {
	FOV    float32 `yaml:"fov"` // degrees
	Near   float32 `yaml:"near"`
	Far    float32 `yaml:"far"`
	Order  int     `yaml:"order"`
	Layers []int   `yaml:"layers"`
}

// ParseColor reads #RRGGBB or #RRGGBBAA. An empty string is opaque white.
func ParseColor(value string) (color.NRGBA, error) {
	if value == "" {
		return color.NRGBA{R: 255, G: 255, B: 255, A: 255}, nil
	}
	s := strings.TrimPrefix(value, "#")
	if len(s) != 6 && len(s) != 8 {
		return color.NRGBA{}, fmt.Errorf("invalid color format: %s", value)
	}

	parse := func(start int) (uint8, error) {
		v, err := strconv.ParseUint(s[start:start+2], 16, 8)
		return uint8(v), err
	}

	r, err := parse(0)
	if err != nil {
		return color.NRGBA{}, err
	}
	g, err := parse(2)
	if err != nil {
		return color.NRGBA{}, err
	}
	b, err := parse(4)
	if err != nil {
		return color.NRGBA{}, err
	}
	a := uint8(255)
	if len(s) == 8 {
		if a, err = parse(6); err != nil {
			return color.NRGBA{}, err
		}
	}
	return color.NRGBA{R: r, G: g, B: b, A: a}, nil
}
