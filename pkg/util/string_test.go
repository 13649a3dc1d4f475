package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaskKey(t *testing.T) {
	assert.Equal(t, "{empty}", MaskKey(""))
	assert.Equal(t, "a**", MaskKey("abc"))
	assert.Equal(t, "01234***************", MaskKey("01234567890123456789"))
}
