package domain

import "strings"

// Address is the account identity used across ledgers and registries
type Address string

func (a Address) ToLower() Address {
	return Address(strings.ToLower(string(a)))
}

func (a Address) ToLowerStr() string {
	return strings.ToLower(string(a))
}

func (a Address) IsEmpty() bool {
	return len(a) == 0
}

// BlockNumber is the discrete time unit the engine runs on. The host
// advances it one step at a time.
type BlockNumber uint64

// MetaverseId identifies a metaverse (local marketplace scope)
type MetaverseId uint64

// CollectionId identifies an NFT collection (class)
type CollectionId uint64

// TokenId identifies a token within a collection
type TokenId uint64

// EstateId identifies an estate
type EstateId uint64

// SpotId identifies a continuum map spot
type SpotId uint64

// Coordinate addresses a land unit inside a metaverse
type Coordinate struct {
	X int32 `json:"x" bson:"x"`
	Y int32 `json:"y" bson:"y"`
}

// FungibleTokenId selects which ledger backs an auction's escrow.
// NativeToken is the chain's base currency, everything else resolves to
// the secondary fungible-token ledger.
type FungibleTokenId uint64

const NativeToken FungibleTokenId = 0

func (f FungibleTokenId) IsNative() bool {
	return f == NativeToken
}

// Table is the name of mongo collection
type Table string

// Tables
const (
	TableAuctions                       Table = "auctions"
	TableAuctionItems                   Table = "auction_items"
	TableAuctionItemsV1                 Table = "auction_items_v1"
	TableItemsInAuction                 Table = "items_in_auction"
	TableAuctionEndTimes                Table = "auction_end_times"
	TableAuctionCounters                Table = "auction_counters"
	TableMetaverseAuthorizedCollections Table = "metaverse_authorized_collections"
	TableAuctionActivities              Table = "auction_activities"
	TableBalances                       Table = "balances"
	TableTokenBalances                  Table = "token_balances"
	TableNfts                           Table = "nfts"
	TableEstates                        Table = "estates"
	TableLandUnits                      Table = "land_units"
	TableSpots                          Table = "spots"
	TableMetaverses                     Table = "metaverses"
)
