package colorutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestForSide(t *testing.T) {
	assert.Equal(t, LeftLane, ForSide("left"))
	assert.Equal(t, RightLane, ForSide("right"))
	assert.NotEqual(t, ForSide("left"), ForSide("right"))
}
