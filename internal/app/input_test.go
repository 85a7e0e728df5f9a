package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInputFieldEndpoint(t *testing.T) {
	var f inputField
	assert.Equal(t, 0, f.endpoint(true))

	f.toggle(true)
	assert.Equal(t, 1, f.endpoint(true))
	assert.Equal(t, 0, f.endpoint(false))

	f.toggle(false)
	assert.Equal(t, 0, f.endpoint(true))
}

func TestInputFieldTyping(t *testing.T) {
	var f inputField

	f.begin('q')
	assert.False(t, f.typing)

	f.begin('-')
	f.put('1')
	f.put('.')
	f.put('5')
	f.put('z')
	assert.Equal(t, "-1.5", f.text())

	v, err := f.value()
	require.NoError(t, err)
	assert.Equal(t, -1.5, v)

	for range 4 {
		f.backspace()
	}
	assert.False(t, f.typing)
	assert.Empty(t, f.text())
}
