package usecase

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/metaland/auction-api/domain"
	"github.com/metaland/auction-api/domain/auction"
)

// ascending bids, displaced reservations released, winner settled at expiry
func TestBiddingLifecycle(t *testing.T) {
	req := require.New(t)
	f := newEngineFixture()
	f.mintNft(1, 7, seller)
	f.fund(bidder, 1000)
	f.fund(rival, 1000)

	id, err := f.listNft(auction.AuctionTypeAuction, 1, 7, 0, 10)
	req.NoError(err)

	f.clock.now = 1
	req.NoError(f.uc.PlaceBid(testCtx, id, bidder, 100))
	req.Equal(domain.Amount(100), f.balance.reserved[bidder.ToLower()])

	f.clock.now = 2
	req.Equal(domain.ErrInvalidBidPrice, f.uc.PlaceBid(testCtx, id, rival, 100))

	req.NoError(f.uc.PlaceBid(testCtx, id, rival, 150))
	req.Equal(domain.Amount(0), f.balance.reserved[bidder.ToLower()])
	req.Equal(domain.Amount(1000), f.balance.free[bidder.ToLower()])
	req.Equal(domain.Amount(150), f.balance.reserved[rival.ToLower()])

	f.clock.now = 10
	f.uc.OnTimeAdvance(testCtx, 10)

	// winner paid 150, seller nets 150 minus the 250 bps royalty
	fee := domain.Amount(150 * 250 / 10000)
	req.Equal(domain.Amount(0), f.balance.reserved[rival.ToLower()])
	req.Equal(domain.Amount(850), f.balance.free[rival.ToLower()])
	req.Equal(domain.Amount(150)-fee, f.balance.free[seller.ToLower()])
	req.Equal(rival.ToLower(), f.nft.owners[nftKey{1, 7}])

	listed, err := f.uc.IsItemInAuction(testCtx, auction.NFTItem(1, 7))
	req.NoError(err)
	req.False(listed)
}

func TestPlaceBidOnBuyNowListing(t *testing.T) {
	req := require.New(t)
	f := newEngineFixture()
	f.mintNft(1, 7, seller)
	f.fund(bidder, 1000)

	id, err := f.listNft(auction.AuctionTypeBuyNow, 1, 7, 500, 10)
	req.NoError(err)

	f.clock.now = 1
	req.Equal(domain.ErrInvalidAuctionType, f.uc.PlaceBid(testCtx, id, bidder, 600))
}

func TestPlaceBidSelfBid(t *testing.T) {
	req := require.New(t)
	f := newEngineFixture()
	f.mintNft(1, 7, seller)
	f.fund(seller, 1000)

	id, err := f.listNft(auction.AuctionTypeAuction, 1, 7, 0, 10)
	req.NoError(err)

	f.clock.now = 1
	req.Equal(domain.ErrSelfBidNotAccepted, f.uc.PlaceBid(testCtx, id, seller, 100))
}

func TestPlaceBidTimeWindow(t *testing.T) {
	req := require.New(t)
	f := newEngineFixture()
	f.mintNft(1, 7, seller)
	f.fund(bidder, 1000)

	f.clock.now = 5
	end := domain.BlockNumber(10)
	id, err := f.uc.CreateAuction(testCtx, &auction.CreateAuctionPayload{
		Seller:       seller,
		ItemId:       auction.NFTItem(1, 7),
		Value:        0,
		EndTime:      &end,
		ListingLevel: auction.GlobalListing(),
	})
	req.NoError(err)

	f.clock.now = 4
	req.Equal(domain.ErrAuctionNotStarted, f.uc.PlaceBid(testCtx, id, bidder, 100))

	f.clock.now = 10
	req.Equal(domain.ErrAuctionIsExpired, f.uc.PlaceBid(testCtx, id, bidder, 100))
}

func TestPlaceBidZeroFirstBid(t *testing.T) {
	req := require.New(t)
	f := newEngineFixture()
	f.mintNft(1, 7, seller)
	f.fund(bidder, 1000)

	id, err := f.listNft(auction.AuctionTypeAuction, 1, 7, 0, 10)
	req.NoError(err)

	f.clock.now = 1
	req.Equal(domain.ErrInvalidBidPrice, f.uc.PlaceBid(testCtx, id, bidder, 0))
}

func TestPlaceBidInsufficientBalance(t *testing.T) {
	req := require.New(t)
	f := newEngineFixture()
	f.mintNft(1, 7, seller)
	f.fund(bidder, 50)

	id, err := f.listNft(auction.AuctionTypeAuction, 1, 7, 0, 10)
	req.NoError(err)

	f.clock.now = 1
	req.Equal(domain.ErrInsufficientFreeBalance, f.uc.PlaceBid(testCtx, id, bidder, 100))
	req.Equal(domain.Amount(0), f.balance.reserved[bidder.ToLower()])
}

func TestPlaceBidUnknownAuction(t *testing.T) {
	req := require.New(t)
	f := newEngineFixture()
	req.Equal(domain.ErrAuctionNotExist, f.uc.PlaceBid(testCtx, 42, bidder, 100))
}

// allow-list restricted listings reject outsiders before touching balances
func TestNetworkSpotAllowList(t *testing.T) {
	req := require.New(t)
	f := newEngineFixture()
	f.mintNft(1, 7, seller)
	f.fund(bidder, 1000)
	f.fund(rival, 1000)

	end := domain.BlockNumber(10)
	id, err := f.uc.CreateAuction(testCtx, &auction.CreateAuctionPayload{
		Seller:       seller,
		ItemId:       auction.NFTItem(1, 7),
		Value:        0,
		EndTime:      &end,
		ListingLevel: auction.NetworkSpotListing(bidder),
		CurrencyId:   domain.NativeToken,
	})
	req.NoError(err)

	f.clock.now = 1
	req.Equal(domain.ErrBidNotAccepted, f.uc.PlaceBid(testCtx, id, rival, 100))
	req.Equal(domain.Amount(1000), f.balance.free[rival.ToLower()])

	req.NoError(f.uc.PlaceBid(testCtx, id, bidder, 100))
}

// the hook rejection surfaces as BidNotAccepted with no balance movement
func TestBidHandlerRejection(t *testing.T) {
	req := require.New(t)
	f := newEngineFixture(func(cfg *AuctionUseCaseCfg) {
		cfg.BidHandler = rejectAllHandler{}
	})
	f.mintNft(1, 7, seller)
	f.fund(bidder, 1000)

	id, err := f.listNft(auction.AuctionTypeAuction, 1, 7, 0, 10)
	req.NoError(err)

	f.clock.now = 1
	req.Equal(domain.ErrBidNotAccepted, f.uc.PlaceBid(testCtx, id, bidder, 100))
	req.Equal(domain.Amount(1000), f.balance.free[bidder.ToLower()])
}

// an extend verdict relocates the deadline and the end-time index entry
func TestBidHandlerExtendsDeadline(t *testing.T) {
	req := require.New(t)
	f := newEngineFixture(func(cfg *AuctionUseCaseCfg) {
		cfg.BidHandler = extendingHandler{delta: 5}
	})
	f.mintNft(1, 7, seller)
	f.fund(bidder, 1000)

	id, err := f.listNft(auction.AuctionTypeAuction, 1, 7, 0, 10)
	req.NoError(err)

	f.clock.now = 9
	req.NoError(f.uc.PlaceBid(testCtx, id, bidder, 100))

	info, err := f.uc.GetAuction(testCtx, id)
	req.NoError(err)
	req.Equal(domain.BlockNumber(15), *info.End)

	ids, err := f.repo.EndingAt(testCtx, 15)
	req.NoError(err)
	req.Equal([]auction.AuctionId{id}, ids)

	ids, err = f.repo.EndingAt(testCtx, 10)
	req.NoError(err)
	req.Empty(ids)
}

// a failed bid write must not leave the deadline moved or the high bid
// renamed: the displaced reservation comes back and the stored state
// still settles to the previous bidder
func TestFailedBidWriteKeepsPreviousBid(t *testing.T) {
	req := require.New(t)
	f := newEngineFixture(func(cfg *AuctionUseCaseCfg) {
		cfg.BidHandler = extendingHandler{delta: 5}
	})
	f.mintNft(1, 7, seller)
	f.fund(bidder, 1000)
	f.fund(rival, 1000)

	id, err := f.listNft(auction.AuctionTypeAuction, 1, 7, 0, 10)
	req.NoError(err)

	f.clock.now = 1
	req.NoError(f.uc.PlaceBid(testCtx, id, bidder, 100))

	f.clock.now = 2
	f.repo.failSetBid = true
	req.Error(f.uc.PlaceBid(testCtx, id, rival, 150))
	f.repo.failSetBid = false

	// stored high bid still names the account holding the reservation
	info, err := f.uc.GetAuction(testCtx, id)
	req.NoError(err)
	req.Equal(bidder.ToLower(), info.Bid.Bidder.ToLower())
	req.Equal(domain.Amount(100), info.Bid.Amount)
	req.Equal(domain.BlockNumber(15), *info.End)
	req.Equal(domain.Amount(100), f.balance.reserved[bidder.ToLower()])
	req.Equal(domain.Amount(0), f.balance.reserved[rival.ToLower()])
	req.Equal(domain.Amount(1000), f.balance.free[rival.ToLower()])

	ids, err := f.repo.EndingAt(testCtx, 15)
	req.NoError(err)
	req.Equal([]auction.AuctionId{id}, ids)

	f.clock.now = 15
	f.uc.OnTimeAdvance(testCtx, 15)
	req.Equal(bidder.ToLower(), f.nft.owners[nftKey{1, 7}])
}

// a shorten verdict relocates the deadline and the end-time index entry
func TestBidHandlerShortensDeadline(t *testing.T) {
	req := require.New(t)
	f := newEngineFixture(func(cfg *AuctionUseCaseCfg) {
		cfg.BidHandler = shorteningHandler{delta: 5}
	})
	f.mintNft(1, 7, seller)
	f.fund(bidder, 1000)

	id, err := f.listNft(auction.AuctionTypeAuction, 1, 7, 0, 20)
	req.NoError(err)

	f.clock.now = 2
	req.NoError(f.uc.PlaceBid(testCtx, id, bidder, 100))

	info, err := f.uc.GetAuction(testCtx, id)
	req.NoError(err)
	req.Equal(domain.BlockNumber(15), *info.End)

	ids, err := f.repo.EndingAt(testCtx, 15)
	req.NoError(err)
	req.Equal([]auction.AuctionId{id}, ids)

	ids, err = f.repo.EndingAt(testCtx, 20)
	req.NoError(err)
	req.Empty(ids)
}

// a shorten past now clamps to the next step so the sweep can still
// reach the auction
func TestShortenedDeadlineStaysReachable(t *testing.T) {
	req := require.New(t)
	f := newEngineFixture(func(cfg *AuctionUseCaseCfg) {
		cfg.BidHandler = shorteningHandler{delta: 8}
	})
	f.mintNft(1, 7, seller)
	f.fund(bidder, 1000)

	id, err := f.listNft(auction.AuctionTypeAuction, 1, 7, 0, 10)
	req.NoError(err)

	f.clock.now = 6
	req.NoError(f.uc.PlaceBid(testCtx, id, bidder, 100))

	info, err := f.uc.GetAuction(testCtx, id)
	req.NoError(err)
	req.Equal(domain.BlockNumber(7), *info.End)

	f.clock.now = 7
	f.uc.OnTimeAdvance(testCtx, 7)

	req.Equal(bidder.ToLower(), f.nft.owners[nftKey{1, 7}])
	req.Equal(domain.Amount(0), f.balance.reserved[bidder.ToLower()])

	listed, err := f.uc.IsItemInAuction(testCtx, auction.NFTItem(1, 7))
	req.NoError(err)
	req.False(listed)
}

// fungible-token auctions escrow against the token ledger
func TestPlaceBidFungibleCurrency(t *testing.T) {
	req := require.New(t)
	f := newEngineFixture()
	f.mintNft(1, 7, seller)

	currency := domain.FungibleTokenId(3)
	f.fungible.free[fk(currency, bidder)] = 1000

	end := domain.BlockNumber(10)
	id, err := f.uc.CreateAuction(testCtx, &auction.CreateAuctionPayload{
		Seller:       seller,
		ItemId:       auction.NFTItem(1, 7),
		Value:        0,
		EndTime:      &end,
		ListingLevel: auction.GlobalListing(),
		CurrencyId:   currency,
	})
	req.NoError(err)

	f.clock.now = 1
	req.NoError(f.uc.PlaceBid(testCtx, id, bidder, 100))
	req.Equal(domain.Amount(100), f.fungible.reserved[fk(currency, bidder)])
	req.Equal(domain.Amount(0), f.balance.reserved[bidder.ToLower()])
}

type rejectAllHandler struct{}

func (rejectAllHandler) OnNewBid(now domain.BlockNumber, id auction.AuctionId, newBid auction.Bid, lastBid *auction.Bid) auction.OnNewBidResult {
	return auction.OnNewBidResult{AcceptBid: false}
}

func (rejectAllHandler) OnAuctionEnded(id auction.AuctionId, winner *auction.Bid) {}

type extendingHandler struct {
	delta domain.BlockNumber
}

func (h extendingHandler) OnNewBid(now domain.BlockNumber, id auction.AuctionId, newBid auction.Bid, lastBid *auction.Bid) auction.OnNewBidResult {
	return auction.OnNewBidResult{
		AcceptBid: true,
		AuctionEndChange: auction.AuctionEndChange{
			Kind:  auction.EndChangeExtend,
			Delta: h.delta,
		},
	}
}

func (h extendingHandler) OnAuctionEnded(id auction.AuctionId, winner *auction.Bid) {}

type shorteningHandler struct {
	delta domain.BlockNumber
}

func (h shorteningHandler) OnNewBid(now domain.BlockNumber, id auction.AuctionId, newBid auction.Bid, lastBid *auction.Bid) auction.OnNewBidResult {
	return auction.OnNewBidResult{
		AcceptBid: true,
		AuctionEndChange: auction.AuctionEndChange{
			Kind:  auction.EndChangeShorten,
			Delta: h.delta,
		},
	}
}

func (h shorteningHandler) OnAuctionEnded(id auction.AuctionId, winner *auction.Bid) {}
