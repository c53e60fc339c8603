package ui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatError(t *testing.T) {
	out := FormatError(ErrorOptions{
		Context:      "type not found",
		Problem:      "Sprit",
		Consequence:  "Nothing to describe.",
		Suggestions:  []string{"engine.Sprite"},
		HelpCommands: []string{"List candidates: vellum inspect types"},
		NoColor:      true,
	})

	assert.True(t, strings.HasPrefix(out, "✗ TYPE NOT FOUND: Sprit\n"))
	assert.Contains(t, out, "   Nothing to describe.\n")
	assert.Contains(t, out, "Did you mean: engine.Sprite?")
	assert.Contains(t, out, "→ List candidates: vellum inspect types")
}

func TestFormatErrorLevels(t *testing.T) {
	tests := []struct {
		level  ErrorLevel
		prefix string
	}{
		{ErrorLevelError, "✗ "},
		{ErrorLevelWarning, "! "},
		{ErrorLevelInfo, "i "},
	}
	for _, tt := range tests {
		out := FormatError(ErrorOptions{Level: tt.level, Problem: "p", NoColor: true})
		assert.Equal(t, tt.prefix+"p\n", out)
	}
}

func TestNotFoundError(t *testing.T) {
	out := NotFoundError("enum", "Layr", []string{"engine.Layer"}, "vellum inspect enums", true)
	assert.Contains(t, out, "ENUM NOT FOUND: Layr")
	assert.Contains(t, out, "engine.Layer")
	assert.Contains(t, out, "vellum inspect enums")
}

func TestDriftError(t *testing.T) {
	out := DriftError(2, true)
	assert.Contains(t, out, "VERSION DRIFT: 2 type(s) changed")
	assert.Contains(t, out, "vellum versions record")
}

func TestWarningAndConfigError(t *testing.T) {
	assert.Equal(t, "! careful\n", Warning("careful", true))
	assert.Contains(t, ConfigError("bad backend", true), "CONFIGURATION ERROR: bad backend")
}

func TestWriteHelpers(t *testing.T) {
	var buf bytes.Buffer
	WriteSuccess(&buf, "recorded 3 types", true)
	WriteError(&buf, ErrorOptions{Problem: "boom", NoColor: true})
	assert.Equal(t, "✓ recorded 3 types\n✗ boom\n", buf.String())
}
