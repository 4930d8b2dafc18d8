package usecase

import (
	"github.com/metaland/auction-api/base/ctx"
	"github.com/metaland/auction-api/base/log"
	"github.com/metaland/auction-api/base/metrics"
	"github.com/metaland/auction-api/domain"
	"github.com/metaland/auction-api/domain/account"
	"github.com/metaland/auction-api/domain/auction"
	"github.com/metaland/auction-api/domain/estate"
	"github.com/metaland/auction-api/domain/metaverse"
	"github.com/metaland/auction-api/domain/nft"
	"github.com/metaland/auction-api/domain/spot"
)

const royaltyFeeDenominator domain.Amount = 10000

type AuctionUseCaseCfg struct {
	AuctionRepo    auction.Repo
	AuthorizedRepo auction.AuthorizedCollectionRepo
	ActivityRepo   auction.ActivityRepo
	Balance        account.BalanceLedger
	Fungible       account.FungibleLedger
	Nft            nft.Registry
	Estate         estate.Registry
	Spot           spot.Registry
	Metaverse      metaverse.OwnershipSource
	// BidHandler defaults to accept-all with no deadline change
	BidHandler auction.BidHandler
	Clock      auction.Clock
	Metrics    metrics.Service

	MinDuration     domain.BlockNumber
	DefaultDuration domain.BlockNumber
	RoyaltyFeeBps   domain.Amount
	MaxFinality     int
}

type impl struct {
	auctionRepo    auction.Repo
	authorizedRepo auction.AuthorizedCollectionRepo
	activityRepo   auction.ActivityRepo
	balance        account.BalanceLedger
	fungible       account.FungibleLedger
	nft            nft.Registry
	estate         estate.Registry
	spot           spot.Registry
	metaverse      metaverse.OwnershipSource
	bidHandler     auction.BidHandler
	clock          auction.Clock
	mtr            metrics.Service

	minDuration     domain.BlockNumber
	defaultDuration domain.BlockNumber
	royaltyFeeBps   domain.Amount
	maxFinality     int
}

func New(cfg *AuctionUseCaseCfg) auction.UseCase {
	bidHandler := cfg.BidHandler
	if bidHandler == nil {
		bidHandler = defaultBidHandler{}
	}
	mtr := cfg.Metrics
	if mtr == nil {
		mtr = metrics.New("auction")
	}
	return &impl{
		auctionRepo:     cfg.AuctionRepo,
		authorizedRepo:  cfg.AuthorizedRepo,
		activityRepo:    cfg.ActivityRepo,
		balance:         cfg.Balance,
		fungible:        cfg.Fungible,
		nft:             cfg.Nft,
		estate:          cfg.Estate,
		spot:            cfg.Spot,
		metaverse:       cfg.Metaverse,
		bidHandler:      bidHandler,
		clock:           cfg.Clock,
		mtr:             mtr,
		minDuration:     cfg.MinDuration,
		defaultDuration: cfg.DefaultDuration,
		royaltyFeeBps:   cfg.RoyaltyFeeBps,
		maxFinality:     cfg.MaxFinality,
	}
}

// CreateAuction lists an NFT as a timed ascending-bid auction. Only NFT
// items may be listed through the public surface.
func (im *impl) CreateAuction(c ctx.Ctx, payload *auction.CreateAuctionPayload) (auction.AuctionId, error) {
	if payload.ItemId.Kind != auction.ItemKindNFT {
		return 0, domain.ErrNoPermissionToCreateAuction
	}
	return im.createAuction(c, auction.AuctionTypeAuction, payload)
}

// CreateBuyNow lists an NFT at a fixed price
func (im *impl) CreateBuyNow(c ctx.Ctx, payload *auction.CreateAuctionPayload) (auction.AuctionId, error) {
	if payload.ItemId.Kind != auction.ItemKindNFT {
		return 0, domain.ErrNoPermissionToCreateAuction
	}
	return im.createAuction(c, auction.AuctionTypeBuyNow, payload)
}

// createAuction is the shared listing routine. Unlike the public surface
// it also accepts Spot/Estate/LandUnit items for composite sales.
func (im *impl) createAuction(c ctx.Ctx, kind auction.AuctionType, payload *auction.CreateAuctionPayload) (auction.AuctionId, error) {
	now := im.clock.Now()

	if kind == auction.AuctionTypeBuyNow && payload.Value.IsZero() {
		return 0, domain.ErrInvalidBuyItNowPrice
	}

	end := now + im.defaultDuration
	if payload.EndTime != nil {
		end = *payload.EndTime
	}
	if end <= now || end-now < im.minDuration {
		return 0, domain.ErrAuctionEndIsLessThanMinimumDuration
	}

	if inAuction, err := im.auctionRepo.IsItemInAuction(c, payload.ItemId); err != nil {
		c.WithField("err", err).Error("auctionRepo.IsItemInAuction failed")
		return 0, err
	} else if inAuction {
		return 0, domain.ErrItemAlreadyInAuction
	}

	listingLevel := payload.ListingLevel

	switch payload.ItemId.Kind {
	case auction.ItemKindNFT:
		owned, err := im.nft.CheckOwnership(c, payload.Seller, payload.ItemId.Collection, payload.ItemId.Token)
		if err != nil {
			return 0, err
		} else if !owned {
			return 0, domain.ErrNoPermissionToCreateAuction
		}
		transferable, err := im.nft.IsTransferable(c, payload.ItemId.Collection, payload.ItemId.Token)
		if err != nil {
			return 0, err
		} else if !transferable {
			return 0, domain.ErrNoPermissionToCreateAuction
		}
	case auction.ItemKindSpot:
		// spot listings come from the internal composite-sale path only
	case auction.ItemKindEstate:
		exists, err := im.estate.CheckEstate(c, payload.ItemId.EstateId)
		if err != nil {
			return 0, err
		} else if !exists {
			return 0, domain.ErrEstateDoesNotExist
		}
		// land assets trade on the global market
		listingLevel = auction.GlobalListing()
	case auction.ItemKindLandUnit:
		if payload.ItemId.Coordinate == nil {
			return 0, domain.ErrLandUnitDoesNotExist
		}
		exists, err := im.estate.CheckLandUnit(c, payload.ItemId.MetaverseId, *payload.ItemId.Coordinate)
		if err != nil {
			return 0, err
		} else if !exists {
			return 0, domain.ErrLandUnitDoesNotExist
		}
		listingLevel = auction.GlobalListing()
	default:
		return 0, domain.ErrAuctionTypeIsNotSupported
	}

	if listingLevel.Kind == auction.ListingKindLocal {
		if err := im.checkLocalListingPermission(c, payload.Seller, payload.ItemId, listingLevel.MetaverseId); err != nil {
			return 0, err
		}
	}

	id, err := im.auctionRepo.NextAuctionId(c)
	if err != nil {
		c.WithField("err", err).Error("auctionRepo.NextAuctionId failed")
		return 0, err
	}

	info := &auction.AuctionInfo{Start: now, End: &end}
	item := &auction.AuctionItem{
		ItemId:        payload.ItemId,
		Recipient:     payload.Seller,
		InitialAmount: payload.Value,
		Amount:        payload.Value,
		StartTime:     now,
		EndTime:       end,
		AuctionType:   kind,
		ListingLevel:  listingLevel,
		CurrencyId:    payload.CurrencyId,
	}

	if err := im.auctionRepo.Insert(c, id, info, item); err != nil {
		c.WithFields(log.Fields{
			"err":       err,
			"auctionId": id,
		}).Error("auctionRepo.Insert failed")
		return 0, err
	}

	im.emitActivity(c, &auction.Activity{
		Type:        auction.ActivityTypeNewAuctionItem,
		AuctionId:   id,
		Account:     payload.Seller,
		Amount:      payload.Value,
		ItemKey:     payload.ItemId.Key(),
		BlockNumber: now,
	})
	im.mtr.BumpSum("create.count", 1, "kind", string(kind))

	return id, nil
}

// Local listings require the seller to own the metaverse, or for NFTs the
// collection to be on the metaverse allow-list
func (im *impl) checkLocalListingPermission(c ctx.Ctx, seller domain.Address, item auction.ItemId, metaverseId domain.MetaverseId) error {
	owns, err := im.metaverse.CheckOwnership(c, seller, metaverseId)
	if err != nil {
		c.WithField("err", err).Error("metaverse.CheckOwnership failed")
		return err
	}
	if owns {
		return nil
	}
	if item.Kind == auction.ItemKindNFT {
		authorized, err := im.authorizedRepo.IsAuthorized(c, metaverseId, item.Collection)
		if err != nil {
			c.WithField("err", err).Error("authorizedRepo.IsAuthorized failed")
			return err
		}
		if authorized {
			return nil
		}
	}
	return domain.ErrNoPermissionToCreateAuction
}

func (im *impl) GetAuction(c ctx.Ctx, id auction.AuctionId) (*auction.AuctionInfo, error) {
	return im.auctionRepo.FindInfo(c, id)
}

func (im *impl) IsItemInAuction(c ctx.Ctx, item auction.ItemId) (bool, error) {
	return im.auctionRepo.IsItemInAuction(c, item)
}

func (im *impl) AuthorizeCollection(c ctx.Ctx, from domain.Address, metaverseId domain.MetaverseId, collection domain.CollectionId) error {
	owns, err := im.metaverse.CheckOwnership(c, from, metaverseId)
	if err != nil {
		c.WithField("err", err).Error("metaverse.CheckOwnership failed")
		return err
	} else if !owns {
		return domain.ErrNoPermissionToAuthoriseCollection
	}
	if err := im.authorizedRepo.Authorize(c, metaverseId, collection); err != nil {
		return err
	}
	im.emitActivity(c, &auction.Activity{
		Type:        auction.ActivityTypeCollectionAuthorized,
		Account:     from,
		MetaverseId: metaverseId,
		Collection:  collection,
		BlockNumber: im.clock.Now(),
	})
	return nil
}

func (im *impl) DeauthorizeCollection(c ctx.Ctx, from domain.Address, metaverseId domain.MetaverseId, collection domain.CollectionId) error {
	owns, err := im.metaverse.CheckOwnership(c, from, metaverseId)
	if err != nil {
		c.WithField("err", err).Error("metaverse.CheckOwnership failed")
		return err
	} else if !owns {
		return domain.ErrNoPermissionToAuthoriseCollection
	}
	if err := im.authorizedRepo.Deauthorize(c, metaverseId, collection); err != nil {
		return err
	}
	im.emitActivity(c, &auction.Activity{
		Type:        auction.ActivityTypeCollectionDeauthorized,
		Account:     from,
		MetaverseId: metaverseId,
		Collection:  collection,
		BlockNumber: im.clock.Now(),
	})
	return nil
}

// emitActivity is best effort, a failed write never fails the operation
func (im *impl) emitActivity(c ctx.Ctx, activity *auction.Activity) {
	if err := im.activityRepo.Insert(c, activity); err != nil {
		c.WithFields(log.Fields{
			"err":  err,
			"type": activity.Type,
		}).Error("activityRepo.Insert failed")
		im.mtr.BumpSum("activity.err", 1)
	}
}

// ledger dispatch by currency

func (im *impl) spendable(c ctx.Ctx, currency domain.FungibleTokenId, address domain.Address) (domain.Amount, error) {
	if currency.IsNative() {
		return im.balance.Spendable(c, address)
	}
	return im.fungible.Spendable(c, currency, address)
}

func (im *impl) reserve(c ctx.Ctx, currency domain.FungibleTokenId, address domain.Address, value domain.Amount) error {
	if currency.IsNative() {
		return im.balance.Reserve(c, address, value)
	}
	return im.fungible.Reserve(c, currency, address, value)
}

func (im *impl) unreserve(c ctx.Ctx, currency domain.FungibleTokenId, address domain.Address, value domain.Amount) error {
	if currency.IsNative() {
		return im.balance.Unreserve(c, address, value)
	}
	return im.fungible.Unreserve(c, currency, address, value)
}

func (im *impl) transfer(c ctx.Ctx, currency domain.FungibleTokenId, from, to domain.Address, value domain.Amount) error {
	if currency.IsNative() {
		return im.balance.Transfer(c, from, to, value, true)
	}
	return im.fungible.Transfer(c, currency, from, to, value)
}
