package usecase

import (
	"github.com/metaland/auction-api/base/ctx"
	"github.com/metaland/auction-api/domain"
	"github.com/metaland/auction-api/domain/auction"
)

var testCtx = ctx.Background()

const (
	seller = domain.Address("0xseller")
	bidder = domain.Address("0xbidder")
	buyer  = domain.Address("0xbuyer")
	rival  = domain.Address("0xrival")
)

type engineFixture struct {
	repo       *fakeAuctionRepo
	authorized *fakeAuthorizedRepo
	activities *fakeActivityRepo
	balance    *fakeBalance
	fungible   *fakeFungible
	nft        *fakeNft
	estate     *fakeEstate
	spot       *fakeSpot
	metaverse  *fakeMetaverse
	clock      *fakeClock
	uc         auction.UseCase
}

func newEngineFixture(opts ...func(*AuctionUseCaseCfg)) *engineFixture {
	f := &engineFixture{
		repo:       newFakeAuctionRepo(),
		authorized: newFakeAuthorizedRepo(),
		activities: &fakeActivityRepo{},
		balance:    newFakeBalance(),
		fungible:   newFakeFungible(),
		nft:        newFakeNft(),
		estate:     newFakeEstate(),
		spot:       newFakeSpot(),
		metaverse:  newFakeMetaverse(),
		clock:      &fakeClock{},
	}

	cfg := &AuctionUseCaseCfg{
		AuctionRepo:     f.repo,
		AuthorizedRepo:  f.authorized,
		ActivityRepo:    f.activities,
		Balance:         f.balance,
		Fungible:        f.fungible,
		Nft:             f.nft,
		Estate:          f.estate,
		Spot:            f.spot,
		Metaverse:       f.metaverse,
		Clock:           f.clock,
		Metrics:         nopMetrics{},
		MinDuration:     1,
		DefaultDuration: 100,
		RoyaltyFeeBps:   250,
		MaxFinality:     100,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	f.uc = New(cfg)
	return f
}

func (f *engineFixture) fund(address domain.Address, amount domain.Amount) {
	f.balance.free[address.ToLower()] += amount
}

func (f *engineFixture) mintNft(collection domain.CollectionId, token domain.TokenId, owner domain.Address) {
	f.nft.owners[nftKey{collection, token}] = owner.ToLower()
}

func (f *engineFixture) listNft(kind auction.AuctionType, collection domain.CollectionId, token domain.TokenId, value domain.Amount, end domain.BlockNumber) (auction.AuctionId, error) {
	payload := &auction.CreateAuctionPayload{
		Seller:       seller,
		ItemId:       auction.NFTItem(collection, token),
		Value:        value,
		EndTime:      &end,
		ListingLevel: auction.GlobalListing(),
		CurrencyId:   domain.NativeToken,
	}
	if kind == auction.AuctionTypeBuyNow {
		return f.uc.CreateBuyNow(testCtx, payload)
	}
	return f.uc.CreateAuction(testCtx, payload)
}
