package mongoclient

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/metaland/auction-api/base/ptr"
)

func TestMakeBsonM(t *testing.T) {
	req := require.New(t)

	type doc struct {
		AuctionId uint64  `bson:"auctionId"`
		Seller    string  `bson:"seller,omitempty"`
		Amount    *uint64 `bson:"amount,omitempty"`
		skipped   string  `bson:"-"`
	}

	m, err := MakeBsonM(&doc{
		AuctionId: 7,
		Amount:    ptr.Uint64(100),
	})
	req.NoError(err)
	req.Equal(uint64(7), m["auctionId"])
	req.Equal(uint64(100), m["amount"])
	_, ok := m["seller"]
	req.False(ok)
}
