package commands

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vellum-engine/vellum/internal/inspect"
	"github.com/vellum-engine/vellum/runtime/reflection"
)

func TestInspectTypes(t *testing.T) {
	stdout, _, err := execute(t, t.TempDir(), "inspect", "types")
	require.NoError(t, err)

	assert.Contains(t, stdout, "engine.Sprite")
	assert.Contains(t, stdout, "engine.Renderable (interface)")
	assert.Contains(t, stdout, "engine.Vec2")
	assert.NotContains(t, stdout, "github.com/")
}

func TestInspectTypesJSON(t *testing.T) {
	stdout, _, err := execute(t, t.TempDir(), "--format", "json", "inspect", "types", "--module", "engine")
	require.NoError(t, err)

	var types []inspect.TypeSummary
	require.NoError(t, json.Unmarshal([]byte(stdout), &types))
	require.NotEmpty(t, types)

	var sprite *inspect.TypeSummary
	for i := range types {
		if strings.HasSuffix(types[i].Name, "/engine.Sprite") {
			sprite = &types[i]
		}
	}
	require.NotNil(t, sprite)
	assert.Equal(t, reflection.HashName(sprite.Name).String(), sprite.Handle)
	assert.Len(t, sprite.Bases, 1)
}

func TestInspectTypesFilters(t *testing.T) {
	t.Run("bucket", func(t *testing.T) {
		stdout, _, err := execute(t, t.TempDir(), "inspect", "types", "--bucket", "Renderable")
		require.NoError(t, err)
		assert.Contains(t, stdout, "engine.Sprite")
		assert.Contains(t, stdout, "engine.Label")
		assert.NotContains(t, stdout, "engine.Camera")
	})

	t.Run("unknown module", func(t *testing.T) {
		_, stderr, err := execute(t, t.TempDir(), "inspect", "types", "--module", "engin")
		require.ErrorIs(t, err, inspect.ErrNotFound)
		assert.Contains(t, stderr, "MODULE NOT FOUND: engin")
		assert.Contains(t, stderr, "Did you mean: engine?")
	})
}

func TestInspectType(t *testing.T) {
	stdout, _, err := execute(t, t.TempDir(), "inspect", "type", "Sprite")
	require.NoError(t, err)

	for _, want := range []string{"texture", "layers", "flags", "frames", "array", "Move", "engine.Component", "Rendering"} {
		assert.Contains(t, stdout, want)
	}
	assert.Contains(t, stdout, "noserialize,nocopy")
}

func TestInspectTypeJSON(t *testing.T) {
	stdout, _, err := execute(t, t.TempDir(), "--format", "json", "inspect", "type", "engine.Camera")
	require.NoError(t, err)

	var view inspect.TypeView
	require.NoError(t, json.Unmarshal([]byte(stdout), &view))
	assert.True(t, strings.HasSuffix(view.Name, "engine.Camera"))

	var methods []string
	for _, m := range view.Methods {
		methods = append(methods, m.Name)
	}
	assert.Contains(t, methods, "Sees")
}

func TestInspectTypeNotFound(t *testing.T) {
	stdout, stderr, err := execute(t, t.TempDir(), "inspect", "type", "Sprit")
	require.ErrorIs(t, err, inspect.ErrNotFound)

	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "TYPE NOT FOUND: Sprit")
	assert.Contains(t, stderr, "Did you mean: engine.Sprite?")
	assert.Contains(t, stderr, "vellum inspect types")
}

func TestInspectEnums(t *testing.T) {
	stdout, _, err := execute(t, t.TempDir(), "inspect", "enums")
	require.NoError(t, err)
	assert.Contains(t, stdout, "engine.Layer")
	assert.Contains(t, stdout, "background, world, effects, ui")
	assert.Contains(t, stdout, "engine.BlendMode")

	stdout, _, err = execute(t, t.TempDir(), "inspect", "enums", "Anchor")
	require.NoError(t, err)
	assert.Contains(t, stdout, "top_left")
	assert.Contains(t, stdout, "bottom_right")
}

func TestInspectBucket(t *testing.T) {
	stdout, _, err := execute(t, t.TempDir(), "--format", "json", "inspect", "bucket", "Renderable")
	require.NoError(t, err)

	var view inspect.BucketView
	require.NoError(t, json.Unmarshal([]byte(stdout), &view))
	assert.True(t, strings.HasSuffix(view.Interface, "engine.Renderable"))
	assert.Len(t, view.Types, 2)
}

func TestInspectAttrs(t *testing.T) {
	stdout, _, err := execute(t, t.TempDir(), "inspect", "attrs")
	require.NoError(t, err)
	assert.Contains(t, stdout, "engine.Component")
	assert.Contains(t, stdout, "engine.Unique")

	stdout, _, err = execute(t, t.TempDir(), "inspect", "attrs", "Component")
	require.NoError(t, err)
	assert.Contains(t, stdout, "engine.Sprite")
	assert.Contains(t, stdout, "engine.Camera")
	assert.NotContains(t, stdout, "engine.Vec2")

	_, stderr, err := execute(t, t.TempDir(), "inspect", "attrs", "Uniqe")
	require.Error(t, err)
	assert.Contains(t, stderr, "engine.Unique")
}

func TestInspectModules(t *testing.T) {
	stdout, _, err := execute(t, t.TempDir(), "inspect", "modules")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Module")
	assert.Contains(t, stdout, "engine")
}
