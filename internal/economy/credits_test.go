package economy

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpend(t *testing.T) {
	got, err := Spend(100, 40)
	require.NoError(t, err)
	assert.Equal(t, uint64(60), got)

	got, err = Spend(40, 40)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), got)
}

func TestSpendCannotGoNegative(t *testing.T) {
	got, err := Spend(10, 11)
	assert.ErrorIs(t, err, ErrInsufficientCredits)
	// Balance untouched on refusal.
	assert.Equal(t, uint64(10), got)
}

func TestGrantSaturates(t *testing.T) {
	assert.Equal(t, uint64(15), Grant(10, 5))
	assert.Equal(t, uint64(math.MaxUint64), Grant(math.MaxUint64, 1))
}
