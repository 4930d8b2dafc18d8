package auction

import (
	"github.com/metaland/auction-api/domain"
)

type EndChangeKind string

const (
	EndChangeNone    EndChangeKind = "noChange"
	EndChangeExtend  EndChangeKind = "extend"
	EndChangeShorten EndChangeKind = "shorten"
)

// AuctionEndChange lets a BidHandler move the deadline when a bid lands,
// e.g. anti-snipe extension policies
type AuctionEndChange struct {
	Kind  EndChangeKind
	Delta domain.BlockNumber
}

// OnNewBidResult is the verdict of a BidHandler for one incoming bid
type OnNewBidResult struct {
	AcceptBid        bool
	AuctionEndChange AuctionEndChange
}

// BidHandler is the overridable bid-acceptance hook. The default handler
// accepts every bid and leaves the deadline untouched.
type BidHandler interface {
	OnNewBid(now domain.BlockNumber, id AuctionId, newBid Bid, lastBid *Bid) OnNewBidResult
	OnAuctionEnded(id AuctionId, winner *Bid)
}

// Clock reports the engine's current discrete time step
type Clock interface {
	Now() domain.BlockNumber
}
