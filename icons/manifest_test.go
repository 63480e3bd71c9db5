package icons

import (
	"errors"
	"testing"
)

func TestParseManifest(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		want    Manifest
		wantErr error
	}{
		{
			name: "all_variants",
			yaml: `
unknown:
  image: {path: icons/unknown.png}
square:
  quad: {size: [2, 3]}
sphere:
  sphere: {radius: 0.5}
`,
			want: Manifest{
				"unknown": ImageEntry{Path: "icons/unknown.png"},
				"square":  QuadEntry{Size: [2]float32{2, 3}},
				"sphere":  SphereEntry{Radius: 0.5},
			},
		},
		{
			name:    "two_variants",
			yaml:    "bad:\n  image: {path: a.png}\n  sphere: {radius: 1}\n",
			wantErr: ErrInvalidEntry,
		},
		{
			name:    "no_variant",
			yaml:    "bad: {}\n",
			wantErr: ErrInvalidEntry,
		},
		{
			name:    "unknown_variant",
			yaml:    "bad:\n  cube: {size: 1}\n",
			wantErr: ErrInvalidEntry,
		},
		{
			name:    "quad_wrong_arity",
			yaml:    "bad:\n  quad: {size: [1, 2, 3]}\n",
			wantErr: ErrInvalidEntry,
		},
		{
			name:    "image_without_path",
			yaml:    "bad:\n  image: {}\n",
			wantErr: ErrInvalidEntry,
		},
		{
			name:    "not_a_mapping",
			yaml:    "- unknown\n",
			wantErr: ErrInvalidEntry,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseManifest([]byte(tc.yaml))
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("expected %v, got %v", tc.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(got) != len(tc.want) {
				t.Fatalf("expected %d entries, got %d", len(tc.want), len(got))
			}
			for k, want := range tc.want {
				if got[k] != want {
					t.Fatalf("key %q: expected %#v, got %#v", k, want, got[k])
				}
			}
		})
	}
}

func TestDefaultManifest(t *testing.T) {
	m, err := DefaultManifest()
	if err != nil {
		t.Fatalf("default manifest: %v", err)
	}
	for _, key := range []string{KeyUnknown, KeyDirectional, KeyPoint, KeySpot, KeyCamera, KeySquare, KeySphere} {
		if _, ok := m[key]; !ok {
			t.Fatalf("default manifest missing %q", key)
		}
	}
	if sq, ok := m[KeySquare].(QuadEntry); !ok || sq.Size != [2]float32{2, 2} {
		t.Fatalf("expected 2x2 square quad, got %#v", m[KeySquare])
	}
	keys := m.Keys()
	for i := 1; i < len(keys); i++ {
		if keys[i-1] > keys[i] {
			t.Fatalf("keys not sorted: %v", keys)
		}
	}
}
