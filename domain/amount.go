package domain

import "math/bits"

// Amount is a fungible balance in base units
type Amount uint64

func (a Amount) IsZero() bool {
	return a == 0
}

// SaturatingMul multiplies without wrapping, clamping at the maximum value.
func (a Amount) SaturatingMul(b Amount) Amount {
	hi, lo := bits.Mul64(uint64(a), uint64(b))
	if hi != 0 {
		return Amount(1<<64 - 1)
	}
	return Amount(lo)
}

// CheckedDiv divides, surfacing division by zero as ErrOverflow instead
// of panicking.
func (a Amount) CheckedDiv(b Amount) (Amount, error) {
	if b == 0 {
		return 0, ErrOverflow
	}
	return a / b, nil
}

// CheckedSub subtracts, surfacing underflow as ErrOverflow.
func (a Amount) CheckedSub(b Amount) (Amount, error) {
	if b > a {
		return 0, ErrOverflow
	}
	return a - b, nil
}
