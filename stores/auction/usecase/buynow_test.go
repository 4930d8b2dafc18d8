package usecase

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/metaland/auction-api/domain"
	"github.com/metaland/auction-api/domain/auction"
)

// exact-price match settles immediately: funds, royalty and asset move
func TestBuyNowLifecycle(t *testing.T) {
	req := require.New(t)
	f := newEngineFixture()
	f.mintNft(1, 7, seller)
	f.fund(buyer, 1000)

	id, err := f.listNft(auction.AuctionTypeBuyNow, 1, 7, 500, 10)
	req.NoError(err)

	f.clock.now = 1
	req.Equal(domain.ErrInvalidBuyItNowPrice, f.uc.BuyNow(testCtx, id, buyer, 499))

	req.NoError(f.uc.BuyNow(testCtx, id, buyer, 500))

	fee := domain.Amount(500 * 250 / 10000)
	sink := domain.Address("feesink:1").ToLower()
	req.Equal(domain.Amount(500), f.balance.free[buyer.ToLower()])
	req.Equal(domain.Amount(500)-fee, f.balance.free[seller.ToLower()])
	req.Equal(fee, f.balance.reserved[sink])
	req.Equal(buyer.ToLower(), f.nft.owners[nftKey{1, 7}])

	listed, err := f.uc.IsItemInAuction(testCtx, auction.NFTItem(1, 7))
	req.NoError(err)
	req.False(listed)

	_, err = f.uc.GetAuction(testCtx, id)
	req.Equal(domain.ErrAuctionNotExist, err)
}

func TestBuyNowOnAuctionListing(t *testing.T) {
	req := require.New(t)
	f := newEngineFixture()
	f.mintNft(1, 7, seller)
	f.fund(buyer, 1000)

	id, err := f.listNft(auction.AuctionTypeAuction, 1, 7, 500, 10)
	req.NoError(err)

	f.clock.now = 1
	req.Equal(domain.ErrInvalidAuctionType, f.uc.BuyNow(testCtx, id, buyer, 500))
}

func TestBuyNowSelfTrade(t *testing.T) {
	req := require.New(t)
	f := newEngineFixture()
	f.mintNft(1, 7, seller)
	f.fund(seller, 1000)

	id, err := f.listNft(auction.AuctionTypeBuyNow, 1, 7, 500, 10)
	req.NoError(err)

	f.clock.now = 1
	req.Equal(domain.ErrCannotBidOnOwnAuction, f.uc.BuyNow(testCtx, id, seller, 500))
}

func TestBuyNowInsufficientFunds(t *testing.T) {
	req := require.New(t)
	f := newEngineFixture()
	f.mintNft(1, 7, seller)
	f.fund(buyer, 100)

	id, err := f.listNft(auction.AuctionTypeBuyNow, 1, 7, 500, 10)
	req.NoError(err)

	f.clock.now = 1
	req.Equal(domain.ErrInsufficientFunds, f.uc.BuyNow(testCtx, id, buyer, 500))

	// listing is untouched
	listed, err := f.uc.IsItemInAuction(testCtx, auction.NFTItem(1, 7))
	req.NoError(err)
	req.True(listed)
}

func TestBuyNowExpired(t *testing.T) {
	req := require.New(t)
	f := newEngineFixture()
	f.mintNft(1, 7, seller)
	f.fund(buyer, 1000)

	id, err := f.listNft(auction.AuctionTypeBuyNow, 1, 7, 500, 10)
	req.NoError(err)

	f.clock.now = 10
	req.Equal(domain.ErrAuctionIsExpired, f.uc.BuyNow(testCtx, id, buyer, 500))
}

// a failed record removal unwinds the settled funds so the listing that
// stays live is not paid for twice
func TestBuyNowRemoveFailureRefunds(t *testing.T) {
	req := require.New(t)
	f := newEngineFixture()
	f.mintNft(1, 7, seller)
	f.fund(buyer, 1000)

	id, err := f.listNft(auction.AuctionTypeBuyNow, 1, 7, 500, 10)
	req.NoError(err)

	f.clock.now = 1
	f.repo.failRemove = true
	req.Error(f.uc.BuyNow(testCtx, id, buyer, 500))
	f.repo.failRemove = false

	// payment and royalty are back where they started
	sink := domain.Address("feesink:1").ToLower()
	req.Equal(domain.Amount(1000), f.balance.free[buyer.ToLower()])
	req.Equal(domain.Amount(0), f.balance.free[seller.ToLower()])
	req.Equal(domain.Amount(0), f.balance.reserved[sink])
	req.Equal(domain.Amount(0), f.balance.free[sink])
	req.Equal(seller.ToLower(), f.nft.owners[nftKey{1, 7}])

	// the listing survived and a clean retry settles it once
	listed, err := f.uc.IsItemInAuction(testCtx, auction.NFTItem(1, 7))
	req.NoError(err)
	req.True(listed)

	req.NoError(f.uc.BuyNow(testCtx, id, buyer, 500))

	fee := domain.Amount(500 * 250 / 10000)
	req.Equal(domain.Amount(500), f.balance.free[buyer.ToLower()])
	req.Equal(domain.Amount(500)-fee, f.balance.free[seller.ToLower()])
	req.Equal(fee, f.balance.reserved[sink])
	req.Equal(buyer.ToLower(), f.nft.owners[nftKey{1, 7}])
}

// a failed asset hand-off keeps the trade but records it for recovery
func TestBuyNowAssetTransferFailure(t *testing.T) {
	req := require.New(t)
	f := newEngineFixture()
	f.mintNft(1, 7, seller)
	f.fund(buyer, 1000)

	id, err := f.listNft(auction.AuctionTypeBuyNow, 1, 7, 500, 10)
	req.NoError(err)

	f.clock.now = 1
	f.nft.failTransfer = true
	req.NoError(f.uc.BuyNow(testCtx, id, buyer, 500))

	req.Equal(auction.ActivityTypeFinalizeFailed, f.activities.last().Type)
	req.Equal(seller.ToLower(), f.nft.owners[nftKey{1, 7}])

	listed, err := f.uc.IsItemInAuction(testCtx, auction.NFTItem(1, 7))
	req.NoError(err)
	req.False(listed)
}
