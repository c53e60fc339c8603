package ui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTable(t *testing.T) {
	var buf bytes.Buffer
	table := NewTable(&buf, true, "Name", "Version", "Vars")
	table.AddRow("engine.Sprite", "9f1c", "9")
	table.AddRow("engine.Vec2", "02ab", "2")
	table.Render()

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "Name           Version  Vars", lines[0])
	assert.Contains(t, lines[1], "─")
	assert.Equal(t, "engine.Sprite  9f1c     9", lines[2])
	assert.Equal(t, "engine.Vec2    02ab     2", lines[3])
	assert.Equal(t, 2, table.Len())
}

func TestTableShortRow(t *testing.T) {
	var buf bytes.Buffer
	table := NewTable(&buf, true, "A", "B")
	table.AddRow("only")
	table.Render()

	assert.Contains(t, buf.String(), "only")
}

func TestTableWithoutHeaders(t *testing.T) {
	var buf bytes.Buffer
	NewTable(&buf, true).Render()
	assert.Empty(t, buf.String())
}

func TestKeyValueTable(t *testing.T) {
	var buf bytes.Buffer
	kv := NewKeyValueTable(&buf, true)
	kv.AddRow("Name", "engine.Camera")
	kv.AddRow("Interface", "false")
	kv.Render()

	assert.Equal(t, "Name:      engine.Camera\nInterface: false\n", buf.String())
}

func TestHeader(t *testing.T) {
	var buf bytes.Buffer
	Header(&buf, "Types", true)
	assert.Equal(t, "Types\n─────\n", buf.String())
}

func TestFlags(t *testing.T) {
	named := map[string]bool{"optional": true, "hidden": true}
	assert.Equal(t, "optional,hidden", Flags(named, "optional", "readonly", "hidden"))
	assert.Equal(t, "-", Flags(nil, "optional"))
}
