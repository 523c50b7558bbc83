package auth

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptionalString_ThreeStates(t *testing.T) {
	var req UpdateProfileRequest

	// Absent key: no change.
	require.NoError(t, json.Unmarshal([]byte(`{"nickname":"n"}`), &req))
	assert.False(t, req.Image.Present)
	assert.False(t, req.Image.Clears())
	assert.False(t, req.Image.Sets())

	// Explicit null: delete.
	req = UpdateProfileRequest{}
	require.NoError(t, json.Unmarshal([]byte(`{"image":null}`), &req))
	assert.True(t, req.Image.Present)
	assert.True(t, req.Image.Null)
	assert.True(t, req.Image.Clears())
	assert.Nil(t, req.Image.Payload())

	// Empty string: also delete, but forwards "" not null.
	req = UpdateProfileRequest{}
	require.NoError(t, json.Unmarshal([]byte(`{"image":""}`), &req))
	assert.True(t, req.Image.Clears())
	assert.Equal(t, "", req.Image.Payload())

	// Value: replace.
	req = UpdateProfileRequest{}
	require.NoError(t, json.Unmarshal([]byte(`{"image":"/img/new.png"}`), &req))
	assert.True(t, req.Image.Sets())
	assert.False(t, req.Image.Clears())
	assert.Equal(t, "/img/new.png", req.Image.Payload())
}

func TestOptionalString_RejectsNonString(t *testing.T) {
	var req UpdateProfileRequest
	err := json.Unmarshal([]byte(`{"image":42}`), &req)
	assert.Error(t, err)
}
