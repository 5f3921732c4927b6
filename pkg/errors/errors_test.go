package errors

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError(t *testing.T) {
	err := New(ErrBidTooLow, "bid is below the minimum required amount")
	assert.Equal(t, "bid is below the minimum required amount", err.Error())

	wrapped := Wrap(fmt.Errorf("boom"), "settlement failed")
	assert.Equal(t, "settlement failed: boom", wrapped.Error())
}

func TestIs(t *testing.T) {
	err := New(ErrAlreadySettled, "auction has already been settled")
	assert.True(t, Is(err, ErrAlreadySettled))
	assert.False(t, Is(err, ErrBidTooLow))
	assert.False(t, Is(nil, ErrBidTooLow))

	// Code is found through wrapping.
	outer := Wrap(err, "settle failed")
	assert.True(t, Is(outer, ErrAlreadySettled))
}

func TestToJSON(t *testing.T) {
	raw := New(ErrBidTooLow, "Bid too low").ToJSON()

	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(raw), &payload))
	assert.Equal(t, "error", payload["type"])
	assert.Equal(t, float64(ErrBidTooLow), payload["code"])
	assert.Equal(t, "Bid too low", payload["message"])
}
