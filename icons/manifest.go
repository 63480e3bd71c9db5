package icons

import (
	"errors"
	"fmt"
	"io/fs"
	"sort"

	"gopkg.in/yaml.v3"
)

var ErrInvalidEntry = errors.New("icons: invalid manifest entry")

// Entry is one manifest descriptor: ImageEntry, QuadEntry or SphereEntry.
type Entry interface {
	isEntry()
}

// ImageEntry loads a picture from the asset root.
type ImageEntry struct {
	Path string `yaml:"path"`
}

// QuadEntry builds a flat quad of Size[0] x Size[1].
type QuadEntry struct {
	Size [2]float32
}

// SphereEntry builds an icosphere of Radius.
type SphereEntry struct {
	Radius float32 `yaml:"radius"`
}

func (ImageEntry) isEntry()  {}
func (QuadEntry) isEntry()   {}
func (SphereEntry) isEntry() {}

// Manifest maps asset keys to descriptors.
type Manifest map[string]Entry

// Keys returns the manifest keys in sorted order.
func (m Manifest) Keys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// UnmarshalYAML decodes `key: {image|quad|sphere: {...}}` and rejects
// entries that name zero or several variants.
func (m *Manifest) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("%w: manifest must be a mapping, got %s", ErrInvalidEntry, nodeKind(value))
	}
	out := make(Manifest, len(value.Content)/2)
	for i := 0; i+1 < len(value.Content); i += 2 {
		key := value.Content[i].Value
		entry, err := decodeEntry(value.Content[i+1])
		if err != nil {
			return fmt.Errorf("icons: key %q (line %d): %w", key, value.Content[i].Line, err)
		}
		out[key] = entry
	}
	*m = out
	return nil
}

func decodeEntry(node *yaml.Node) (Entry, error) {
	if node.Kind != yaml.MappingNode || len(node.Content) != 2 {
		return nil, fmt.Errorf("%w: want exactly one of image, quad, sphere", ErrInvalidEntry)
	}
	variant, body := node.Content[0].Value, node.Content[1]
	switch variant {
	case "image":
		var e ImageEntry
		if err := body.Decode(&e); err != nil {
			return nil, err
		}
		if e.Path == "" {
			return nil, fmt.Errorf("%w: image needs a path", ErrInvalidEntry)
		}
		return e, nil
	case "quad":
		var raw struct {
			Size []float32 `yaml:"size"`
		}
		if err := body.Decode(&raw); err != nil {
			return nil, err
		}
		if len(raw.Size) != 2 {
			return nil, fmt.Errorf("%w: quad size needs 2 values, got %d", ErrInvalidEntry, len(raw.Size))
		}
		return QuadEntry{Size: [2]float32{raw.Size[0], raw.Size[1]}}, nil
	case "sphere":
		var e SphereEntry
		if err := body.Decode(&e); err != nil {
			return nil, err
		}
		return e, nil
	default:
		return nil, fmt.Errorf("%w: unknown variant %q", ErrInvalidEntry, variant)
	}
}

func nodeKind(n *yaml.Node) string {
	switch n.Kind {
	case yaml.DocumentNode:
		return "document"
	case yaml.SequenceNode:
		return "sequence"
	case yaml.ScalarNode:
		return "scalar"
	case yaml.AliasNode:
		return "alias"
	default:
		return "mapping"
	}
}

// ParseManifest decodes manifest YAML.
func ParseManifest(data []byte) (Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return m, nil
}

// LoadManifest reads and decodes the manifest at name in fsys.
func LoadManifest(fsys fs.FS, name string) (Manifest, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("icons: load %s: %w", name, err)
	}
	m, err := ParseManifest(data)
	if err != nil {
		return nil, fmt.Errorf("icons: unmarshal %s: %w", name, err)
	}
	return m, nil
}
