package usecase

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/metaland/auction-api/domain"
	"github.com/metaland/auction-api/domain/auction"
)

// a no-bid close leaves the asset with the seller and moves no funds
func TestSweepNoBidClose(t *testing.T) {
	req := require.New(t)
	f := newEngineFixture()
	f.mintNft(1, 7, seller)

	id, err := f.listNft(auction.AuctionTypeAuction, 1, 7, 0, 10)
	req.NoError(err)

	f.clock.now = 10
	f.uc.OnTimeAdvance(testCtx, 10)

	req.Equal(seller.ToLower(), f.nft.owners[nftKey{1, 7}])
	req.Equal(domain.Amount(0), f.balance.free[seller.ToLower()])

	listed, err := f.uc.IsItemInAuction(testCtx, auction.NFTItem(1, 7))
	req.NoError(err)
	req.False(listed)

	activities, err := f.activities.FindByAuction(testCtx, id)
	req.NoError(err)
	req.Equal(auction.ActivityTypeAuctionFinalizedNoBid, activities[len(activities)-1].Type)
}

// only buckets keyed exactly at now are drained
func TestSweepBucketIsExact(t *testing.T) {
	req := require.New(t)
	f := newEngineFixture()
	f.mintNft(1, 7, seller)

	_, err := f.listNft(auction.AuctionTypeAuction, 1, 7, 0, 10)
	req.NoError(err)

	f.uc.OnTimeAdvance(testCtx, 9)
	listed, err := f.uc.IsItemInAuction(testCtx, auction.NFTItem(1, 7))
	req.NoError(err)
	req.True(listed)

	f.uc.OnTimeAdvance(testCtx, 11)
	listed, err = f.uc.IsItemInAuction(testCtx, auction.NFTItem(1, 7))
	req.NoError(err)
	req.True(listed)
}

// the per-cycle cap leaves entries in the bucket for the next invocation
func TestSweepMaxFinality(t *testing.T) {
	req := require.New(t)
	f := newEngineFixture(func(cfg *AuctionUseCaseCfg) {
		cfg.MaxFinality = 2
	})
	for i := domain.TokenId(0); i < 5; i++ {
		f.mintNft(1, i, seller)
		_, err := f.listNft(auction.AuctionTypeAuction, 1, i, 0, 10)
		req.NoError(err)
	}

	f.clock.now = 10
	f.uc.OnTimeAdvance(testCtx, 10)

	remaining, err := f.repo.EndingAt(testCtx, 10)
	req.NoError(err)
	req.Len(remaining, 3)

	f.uc.OnTimeAdvance(testCtx, 10)
	f.uc.OnTimeAdvance(testCtx, 10)

	remaining, err = f.repo.EndingAt(testCtx, 10)
	req.NoError(err)
	req.Empty(remaining)
}

// sweeping an already-settled bucket is a no-op
func TestSweepIdempotent(t *testing.T) {
	req := require.New(t)
	f := newEngineFixture()
	f.mintNft(1, 7, seller)
	f.fund(bidder, 1000)

	id, err := f.listNft(auction.AuctionTypeAuction, 1, 7, 0, 10)
	req.NoError(err)

	f.clock.now = 1
	req.NoError(f.uc.PlaceBid(testCtx, id, bidder, 100))

	f.clock.now = 10
	f.uc.OnTimeAdvance(testCtx, 10)
	sellerBalance := f.balance.free[seller.ToLower()]

	f.uc.OnTimeAdvance(testCtx, 10)
	req.Equal(sellerBalance, f.balance.free[seller.ToLower()])
}

// settlement failure unlists the item but keeps funds consistent and is
// distinguishable from a clean no-bid close
func TestSweepSettlementFailureRecorded(t *testing.T) {
	req := require.New(t)
	f := newEngineFixture()
	f.mintNft(1, 7, seller)
	f.fund(bidder, 1000)

	id, err := f.listNft(auction.AuctionTypeAuction, 1, 7, 0, 10)
	req.NoError(err)

	f.clock.now = 1
	req.NoError(f.uc.PlaceBid(testCtx, id, bidder, 100))

	f.clock.now = 10
	f.nft.failTransfer = true
	f.uc.OnTimeAdvance(testCtx, 10)

	activities, err := f.activities.FindByAuction(testCtx, id)
	req.NoError(err)
	req.Equal(auction.ActivityTypeFinalizeFailed, activities[len(activities)-1].Type)

	// the winner already paid, the asset stays with the seller for manual
	// recovery
	req.Equal(seller.ToLower(), f.nft.owners[nftKey{1, 7}])
	req.Equal(domain.Amount(0), f.balance.reserved[bidder.ToLower()])

	listed, err := f.uc.IsItemInAuction(testCtx, auction.NFTItem(1, 7))
	req.NoError(err)
	req.False(listed)
}

// a failure on one entry never blocks the rest of the bucket
func TestSweepContinuesPastFailure(t *testing.T) {
	req := require.New(t)
	f := newEngineFixture()
	f.mintNft(1, 7, seller)
	f.mintNft(1, 8, seller)
	f.fund(bidder, 1000)
	f.fund(rival, 1000)

	first, err := f.listNft(auction.AuctionTypeAuction, 1, 7, 0, 10)
	req.NoError(err)
	second, err := f.listNft(auction.AuctionTypeAuction, 1, 8, 0, 10)
	req.NoError(err)

	f.clock.now = 1
	req.NoError(f.uc.PlaceBid(testCtx, first, bidder, 100))
	req.NoError(f.uc.PlaceBid(testCtx, second, rival, 100))

	// drain the winner's funds behind the engine's back so the currency
	// transfer leg fails for the first entry
	f.balance.reserved[bidder.ToLower()] = 0
	f.balance.free[bidder.ToLower()] = 0

	f.clock.now = 10
	f.uc.OnTimeAdvance(testCtx, 10)

	// first entry failed, second settled
	req.Equal(rival.ToLower(), f.nft.owners[nftKey{1, 8}])
	listed, err := f.uc.IsItemInAuction(testCtx, auction.NFTItem(1, 7))
	req.NoError(err)
	req.False(listed)
}
