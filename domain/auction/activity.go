package auction

import (
	"time"

	"github.com/metaland/auction-api/base/ctx"
	"github.com/metaland/auction-api/domain"
)

type ActivityType string

const (
	ActivityTypeBid                    ActivityType = "bid"
	ActivityTypeNewAuctionItem         ActivityType = "newAuctionItem"
	ActivityTypeAuctionFinalized       ActivityType = "auctionFinalized"
	ActivityTypeAuctionFinalizedNoBid  ActivityType = "auctionFinalizedNoBid"
	ActivityTypeBuyNowFinalised        ActivityType = "buyNowFinalised"
	ActivityTypeFinalizeFailed         ActivityType = "finalizeFailed"
	ActivityTypeCollectionAuthorized   ActivityType = "collectionAuthorized"
	ActivityTypeCollectionDeauthorized ActivityType = "collectionDeauthorized"
)

// Activity is one emitted engine notification, persisted for the event log.
// FinalizeFailed records a settlement that left the asset unlisted but
// untransferred; it is never emitted for a clean no-bid close.
type Activity struct {
	Type        ActivityType        `json:"type" bson:"type"`
	AuctionId   AuctionId           `json:"auctionId" bson:"auctionId"`
	Account     domain.Address      `json:"account,omitempty" bson:"account,omitempty"`
	Amount      domain.Amount       `json:"amount,omitempty" bson:"amount,omitempty"`
	ItemKey     string              `json:"itemKey,omitempty" bson:"itemKey,omitempty"`
	MetaverseId domain.MetaverseId  `json:"metaverseId,omitempty" bson:"metaverseId,omitempty"`
	Collection  domain.CollectionId `json:"collection,omitempty" bson:"collection,omitempty"`
	Reason      string              `json:"reason,omitempty" bson:"reason,omitempty"`
	BlockNumber domain.BlockNumber  `json:"blockNumber" bson:"blockNumber"`
	CreatedAt   time.Time           `json:"createdAt" bson:"createdAt"`
}

// ActivityRepo persists emitted activities
type ActivityRepo interface {
	Insert(c ctx.Ctx, activity *Activity) error
	FindByAuction(c ctx.Ctx, id AuctionId) ([]*Activity, error)
}
