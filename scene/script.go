package scene

import (
	"errors"
	"fmt"
	"io/fs"
	"path"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
)

// ErrNoScriptEntities is returned when a scene script never sets the
// entities global.
var ErrNoScriptEntities = errors.New("scene: script does not define entities")

// scriptModules are the stdlib modules scene scripts may import. File and
// process access stay out.
var scriptModules = []string{"math", "text", "fmt", "enum", "rand", "times"}

// RunScript evaluates a tengo scene script and returns the entities it
// assigns to the global "entities". Each element has the same shape as a
// YAML entity. The script sees the scene name as "scene".
func RunScript(src []byte, sceneName string) ([]EntitySpec, error) {
	script := tengo.NewScript(src)
	script.SetImports(stdlib.GetModuleMap(scriptModules...))
	if err := script.Add("scene", sceneName); err != nil {
		return nil, err
	}

	compiled, err := script.Run()
	if err != nil {
		return nil, err
	}
	if compiled == nil {
		return nil, fmt.Errorf("script compile returned nil program")
	}
	v := compiled.Get("entities")
	if v == nil || v.IsUndefined() {
		return nil, ErrNoScriptEntities
	}
	if _, ok := v.Value().([]any); !ok {
		return nil, fmt.Errorf("script global 'entities' must be an array, got %s", v.ValueType())
	}
	return DecodeComponentSpec[[]EntitySpec](v.Value())
}

// expandScript appends the entities generated by spec.Script. The script path
// is relative to the scene file.
func expandScript(fsys fs.FS, name string, spec *Spec) error {
	if spec.Script == "" {
		return nil
	}
	scriptPath := path.Join(path.Dir(name), spec.Script)
	src, err := fs.ReadFile(fsys, scriptPath)
	if err != nil {
		return fmt.Errorf("scene: load script %s: %w", scriptPath, err)
	}
	generated, err := RunScript(src, spec.Name)
	if err != nil {
		return fmt.Errorf("scene: run script %s: %w", scriptPath, err)
	}
	spec.Entities = append(spec.Entities, generated...)
	return nil
}
