package numformat_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/CalebLefcort/mypl/internal/numformat"
)

func TestDoubleKeepsTrailingFractionalZero(t *testing.T) {
	assert.Equal(t, "3.0", numformat.Double(3))
	assert.Equal(t, "100.0", numformat.Double(100))
}

func TestDoubleTrimsExtraFractionalDigits(t *testing.T) {
	assert.Equal(t, "3.5", numformat.Double(3.5))
	assert.Equal(t, "0.25", numformat.Double(0.25))
}

func TestDoubleHandlesNegativeValues(t *testing.T) {
	assert.Equal(t, "-2.0", numformat.Double(-2))
	assert.Equal(t, "-2.5", numformat.Double(-2.5))
}
