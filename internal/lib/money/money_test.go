package money

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTotal(t *testing.T) {
	assert.Equal(t, 150.0, Total(50, 3))
	assert.Equal(t, 0.3, Total(3, 0.1))
	assert.Equal(t, 0.0, Total(0, 2.5))
}

func TestSum_NoDrift(t *testing.T) {
	assert.Equal(t, 0.3, Sum(0.1, 0.2))

	var acc Accumulator
	for i := 0; i < 10; i++ {
		acc.Add(0.1)
	}
	assert.Equal(t, 1.0, acc.Float())
}
