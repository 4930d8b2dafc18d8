package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSaturatingMul(t *testing.T) {
	req := require.New(t)

	req.Equal(Amount(250000), Amount(1000).SaturatingMul(250))
	req.Equal(Amount(0), Amount(0).SaturatingMul(250))
	req.Equal(Amount(math.MaxUint64), Amount(math.MaxUint64).SaturatingMul(2))
	req.Equal(Amount(math.MaxUint64), Amount(1<<63).SaturatingMul(1<<63))
}

func TestCheckedDiv(t *testing.T) {
	req := require.New(t)

	res, err := Amount(2500000).CheckedDiv(10000)
	req.NoError(err)
	req.Equal(Amount(250), res)

	// floor, never rounds up
	res, err = Amount(9999).CheckedDiv(10000)
	req.NoError(err)
	req.Equal(Amount(0), res)

	_, err = Amount(1).CheckedDiv(0)
	req.ErrorIs(err, ErrOverflow)
}

func TestCheckedSub(t *testing.T) {
	req := require.New(t)

	res, err := Amount(10).CheckedSub(3)
	req.NoError(err)
	req.Equal(Amount(7), res)

	_, err = Amount(3).CheckedSub(10)
	req.ErrorIs(err, ErrOverflow)
}
