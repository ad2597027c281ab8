package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaskHolder(t *testing.T) {
	assert.Equal(t, "user****", MaskHolder("user-42"))
	assert.Equal(t, "a1b2****", MaskHolder("a1b2c3d4-e5f6"))

	// Short ids keep everything they have plus the mask.
	assert.Equal(t, "ab****", MaskHolder("ab"))
	assert.Equal(t, "****", MaskHolder(""))
}
