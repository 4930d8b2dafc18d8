package auction

import (
	"fmt"

	"github.com/metaland/auction-api/base/ctx"
	"github.com/metaland/auction-api/domain"
)

// AuctionId is allocated once per auction and never reused
type AuctionId uint64

type AuctionType string

const (
	AuctionTypeAuction AuctionType = "auction"
	AuctionTypeBuyNow  AuctionType = "buyNow"
)

type ItemKind string

const (
	ItemKindNFT      ItemKind = "nft"
	ItemKindSpot     ItemKind = "spot"
	ItemKindCountry  ItemKind = "country"
	ItemKindBlock    ItemKind = "block"
	ItemKindEstate   ItemKind = "estate"
	ItemKindLandUnit ItemKind = "landUnit"
)

// ItemId identifies the asset under sale. Country and Block are declared
// for wire compatibility but rejected by creation.
type ItemId struct {
	Kind        ItemKind            `json:"kind" bson:"kind"`
	Collection  domain.CollectionId `json:"collection,omitempty" bson:"collection,omitempty"`
	Token       domain.TokenId      `json:"token,omitempty" bson:"token,omitempty"`
	SpotId      domain.SpotId       `json:"spotId,omitempty" bson:"spotId,omitempty"`
	EstateId    domain.EstateId     `json:"estateId,omitempty" bson:"estateId,omitempty"`
	MetaverseId domain.MetaverseId  `json:"metaverseId,omitempty" bson:"metaverseId,omitempty"`
	Coordinate  *domain.Coordinate  `json:"coordinate,omitempty" bson:"coordinate,omitempty"`
}

func NFTItem(collection domain.CollectionId, token domain.TokenId) ItemId {
	return ItemId{Kind: ItemKindNFT, Collection: collection, Token: token}
}

func SpotItem(spotId domain.SpotId, metaverseId domain.MetaverseId) ItemId {
	return ItemId{Kind: ItemKindSpot, SpotId: spotId, MetaverseId: metaverseId}
}

func EstateItem(estateId domain.EstateId) ItemId {
	return ItemId{Kind: ItemKindEstate, EstateId: estateId}
}

func LandUnitItem(coordinate domain.Coordinate, metaverseId domain.MetaverseId) ItemId {
	return ItemId{Kind: ItemKindLandUnit, Coordinate: &coordinate, MetaverseId: metaverseId}
}

// Key is the canonical string form used for the in-auction membership
// index. Two ItemIds reference the same asset iff their keys are equal.
func (i ItemId) Key() string {
	switch i.Kind {
	case ItemKindNFT:
		return fmt.Sprintf("nft:%d:%d", i.Collection, i.Token)
	case ItemKindSpot:
		return fmt.Sprintf("spot:%d:%d", i.SpotId, i.MetaverseId)
	case ItemKindEstate:
		return fmt.Sprintf("estate:%d", i.EstateId)
	case ItemKindLandUnit:
		if i.Coordinate == nil {
			return fmt.Sprintf("landUnit:?:%d", i.MetaverseId)
		}
		return fmt.Sprintf("landUnit:(%d,%d):%d", i.Coordinate.X, i.Coordinate.Y, i.MetaverseId)
	default:
		return fmt.Sprintf("%s:%d", i.Kind, i.MetaverseId)
	}
}

type ListingKind string

const (
	ListingKindGlobal      ListingKind = "global"
	ListingKindLocal       ListingKind = "local"
	ListingKindNetworkSpot ListingKind = "networkSpot"
)

// ListingLevel scopes visibility and eligibility of a listing
type ListingLevel struct {
	Kind           ListingKind        `json:"kind" bson:"kind"`
	MetaverseId    domain.MetaverseId `json:"metaverseId,omitempty" bson:"metaverseId,omitempty"`
	AllowedBidders []domain.Address   `json:"allowedBidders,omitempty" bson:"allowedBidders,omitempty"`
}

func GlobalListing() ListingLevel {
	return ListingLevel{Kind: ListingKindGlobal}
}

func LocalListing(metaverseId domain.MetaverseId) ListingLevel {
	return ListingLevel{Kind: ListingKindLocal, MetaverseId: metaverseId}
}

func NetworkSpotListing(allowedBidders ...domain.Address) ListingLevel {
	return ListingLevel{Kind: ListingKindNetworkSpot, AllowedBidders: allowedBidders}
}

// Allows reports whether the bidder may bid under this listing level
func (l ListingLevel) Allows(bidder domain.Address) bool {
	if l.Kind != ListingKindNetworkSpot {
		return true
	}
	for _, b := range l.AllowedBidders {
		if b == bidder {
			return true
		}
	}
	return false
}

// Bid is the current high bid of an auction
type Bid struct {
	Bidder domain.Address `json:"bidder" bson:"bidder"`
	Amount domain.Amount  `json:"amount" bson:"amount"`
}

// AuctionInfo is the live bidding state of one auction
type AuctionInfo struct {
	Bid   *Bid                `json:"bid,omitempty" bson:"bid,omitempty"`
	Start domain.BlockNumber  `json:"start" bson:"start"`
	End   *domain.BlockNumber `json:"end,omitempty" bson:"end,omitempty"`
}

// AuctionItem is the listed-asset side of one auction, created and
// destroyed together with its AuctionInfo
type AuctionItem struct {
	ItemId        ItemId         `json:"itemId" bson:"itemId"`
	Recipient     domain.Address `json:"recipient" bson:"recipient"`
	InitialAmount domain.Amount  `json:"initialAmount" bson:"initialAmount"`
	// Amount is the current asking or winning amount
	Amount       domain.Amount          `json:"amount" bson:"amount"`
	StartTime    domain.BlockNumber     `json:"startTime" bson:"startTime"`
	EndTime      domain.BlockNumber     `json:"endTime" bson:"endTime"`
	AuctionType  AuctionType            `json:"auctionType" bson:"auctionType"`
	ListingLevel ListingLevel           `json:"listingLevel" bson:"listingLevel"`
	CurrencyId   domain.FungibleTokenId `json:"currencyId" bson:"currencyId"`
}

// Repo owns the auction records, the end-time index and the listed-item
// membership set. Insert and Remove mutate all of them as one unit.
type Repo interface {
	// NextAuctionId allocates a fresh id, ErrNoAvailableAuctionId once exhausted
	NextAuctionId(c ctx.Ctx) (AuctionId, error)

	// Insert writes info+item, the end-time index entry and the item
	// membership in one transaction
	Insert(c ctx.Ctx, id AuctionId, info *AuctionInfo, item *AuctionItem) error

	// FindInfo returns ErrAuctionNotExist when the auction is absent
	FindInfo(c ctx.Ctx, id AuctionId) (*AuctionInfo, error)

	// FindItem returns ErrAuctionNotExist when the item record is absent
	FindItem(c ctx.Ctx, id AuctionId) (*AuctionItem, error)

	// SetBid records the accepted bid on info.bid and item.amount. A
	// non-nil end also moves the deadline and relocates the end-time
	// index entry. All writes commit as one unit so a failure leaves
	// the previous bid and deadline untouched.
	SetBid(c ctx.Ctx, id AuctionId, bid Bid, end *domain.BlockNumber) error

	// Remove drops the end-time index entry, the info record and the item
	// membership as one unit. Removing an absent auction is a no-op.
	// The AuctionItem record is left for the caller to read and delete.
	Remove(c ctx.Ctx, id AuctionId, item ItemId) error

	// RemoveItem deletes the AuctionItem record
	RemoveItem(c ctx.Ctx, id AuctionId) error

	IsItemInAuction(c ctx.Ctx, item ItemId) (bool, error)

	// EndingAt lists the ids whose end-time bucket is exactly `at`
	EndingAt(c ctx.Ctx, at domain.BlockNumber) ([]AuctionId, error)
}

// AuthorizedCollectionRepo is the per-metaverse collection allow-list
type AuthorizedCollectionRepo interface {
	Authorize(c ctx.Ctx, metaverseId domain.MetaverseId, collection domain.CollectionId) error
	Deauthorize(c ctx.Ctx, metaverseId domain.MetaverseId, collection domain.CollectionId) error
	IsAuthorized(c ctx.Ctx, metaverseId domain.MetaverseId, collection domain.CollectionId) (bool, error)
}

// CreateAuctionPayload carries everything the engine needs to list an asset
type CreateAuctionPayload struct {
	Seller       domain.Address
	ItemId       ItemId
	Value        domain.Amount
	EndTime      *domain.BlockNumber
	ListingLevel ListingLevel
	CurrencyId   domain.FungibleTokenId
}

// UseCase is the caller surface of the settlement engine
type UseCase interface {
	CreateAuction(c ctx.Ctx, payload *CreateAuctionPayload) (AuctionId, error)
	CreateBuyNow(c ctx.Ctx, payload *CreateAuctionPayload) (AuctionId, error)
	PlaceBid(c ctx.Ctx, id AuctionId, bidder domain.Address, value domain.Amount) error
	BuyNow(c ctx.Ctx, id AuctionId, buyer domain.Address, value domain.Amount) error
	GetAuction(c ctx.Ctx, id AuctionId) (*AuctionInfo, error)
	IsItemInAuction(c ctx.Ctx, item ItemId) (bool, error)
	AuthorizeCollection(c ctx.Ctx, from domain.Address, metaverseId domain.MetaverseId, collection domain.CollectionId) error
	DeauthorizeCollection(c ctx.Ctx, from domain.Address, metaverseId domain.MetaverseId, collection domain.CollectionId) error

	// OnTimeAdvance runs the expiry sweep for the step that just arrived.
	// It never fails; settlement problems surface via activities and metrics.
	OnTimeAdvance(c ctx.Ctx, now domain.BlockNumber)
}
