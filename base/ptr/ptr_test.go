package ptr

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPtr(t *testing.T) {
	req := require.New(t)

	req.Equal("abc", *String("abc"))
	req.Equal(123, *Int(123))
	req.Equal(int64(-1), *Int64(-1))
	req.Equal(uint64(42), *Uint64(42))
	req.Equal(true, *Bool(true))
}
