package reflection

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorMessage(t *testing.T) {
	err := &Error{Kind: MalformedInput, Type: "Sprite", Member: "layer", Err: ErrValidation}
	assert.Equal(t, "reflection: malformed_input: Sprite.layer: validation failed", err.Error())

	wrapped := fmt.Errorf("loading level: %w", err)
	assert.True(t, IsKind(wrapped, MalformedInput))
	assert.False(t, IsKind(wrapped, SchemaDrift))
	assert.True(t, errors.Is(wrapped, ErrValidation))
}

func TestErrorKindJSON(t *testing.T) {
	data, err := json.Marshal(&Error{Kind: SchemaDrift, Message: "boom"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"kind":"schema_drift","message":"boom"}`, string(data))

	var back Error
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, SchemaDrift, back.Kind)

	var kind ErrorKind
	assert.Error(t, json.Unmarshal([]byte(`"nonsense"`), &kind))
}
