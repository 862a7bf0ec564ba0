//go:build !js

package glbackend

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCstr(t *testing.T) {
	assert.Equal(t, "a_position\x00", cstr("a_position"))
	assert.Equal(t, "u_mvp\x00", cstr("u_mvp\x00"))
	assert.Equal(t, "\x00", cstr(""))
}
