package usecase

import (
	"github.com/metaland/auction-api/base/ctx"
	"github.com/metaland/auction-api/base/log"
	"github.com/metaland/auction-api/domain"
	"github.com/metaland/auction-api/domain/auction"
)

// defaultBidHandler accepts every bid and never moves the deadline
type defaultBidHandler struct{}

func (defaultBidHandler) OnNewBid(now domain.BlockNumber, id auction.AuctionId, newBid auction.Bid, lastBid *auction.Bid) auction.OnNewBidResult {
	return auction.OnNewBidResult{
		AcceptBid:        true,
		AuctionEndChange: auction.AuctionEndChange{Kind: auction.EndChangeNone},
	}
}

func (defaultBidHandler) OnAuctionEnded(id auction.AuctionId, winner *auction.Bid) {}

// PlaceBid validates, escrows and records one bid. Any failure after
// validation rolls the escrow movements back so no partial state persists.
func (im *impl) PlaceBid(c ctx.Ctx, id auction.AuctionId, bidder domain.Address, value domain.Amount) error {
	now := im.clock.Now()

	item, err := im.auctionRepo.FindItem(c, id)
	if err != nil {
		return err
	}
	if item.AuctionType != auction.AuctionTypeAuction {
		return domain.ErrInvalidAuctionType
	}
	if bidder.ToLower() == item.Recipient.ToLower() {
		return domain.ErrSelfBidNotAccepted
	}

	info, err := im.auctionRepo.FindInfo(c, id)
	if err != nil {
		return err
	}
	if now < info.Start {
		return domain.ErrAuctionNotStarted
	}
	if info.End != nil && now >= *info.End {
		return domain.ErrAuctionIsExpired
	}

	// allow-list membership is checked before any balance movement
	if !item.ListingLevel.Allows(bidder) {
		return domain.ErrBidNotAccepted
	}

	if info.Bid != nil {
		if value <= info.Bid.Amount {
			return domain.ErrInvalidBidPrice
		}
	} else if value.IsZero() {
		return domain.ErrInvalidBidPrice
	}

	newBid := auction.Bid{Bidder: bidder, Amount: value}
	verdict := im.bidHandler.OnNewBid(now, id, newBid, info.Bid)
	if !verdict.AcceptBid {
		return domain.ErrBidNotAccepted
	}

	if free, err := im.spendable(c, item.CurrencyId, bidder); err != nil {
		return err
	} else if free < value {
		return domain.ErrInsufficientFreeBalance
	}

	lastBid := info.Bid

	// release the previous reservation before establishing the new one so
	// a same-bidder raise only needs the difference to be free
	if lastBid != nil {
		if err := im.unreserve(c, item.CurrencyId, lastBid.Bidder, lastBid.Amount); err != nil {
			c.WithFields(log.Fields{
				"err":       err,
				"auctionId": id,
			}).Error("unreserve last bid failed")
			return err
		}
	}

	if err := im.reserve(c, item.CurrencyId, bidder, value); err != nil {
		im.restoreLastBid(c, item.CurrencyId, id, lastBid)
		return err
	}

	if err := im.recordBid(c, id, now, info, newBid, verdict.AuctionEndChange); err != nil {
		if uerr := im.unreserve(c, item.CurrencyId, bidder, value); uerr != nil {
			c.WithFields(log.Fields{
				"err":       uerr,
				"auctionId": id,
			}).Error("rollback reserve failed")
		}
		im.restoreLastBid(c, item.CurrencyId, id, lastBid)
		return err
	}

	im.emitActivity(c, &auction.Activity{
		Type:        auction.ActivityTypeBid,
		AuctionId:   id,
		Account:     bidder,
		Amount:      value,
		ItemKey:     item.ItemId.Key(),
		BlockNumber: now,
	})
	im.mtr.BumpSum("bid.count", 1)

	return nil
}

// recordBid persists the accepted bid, relocating the deadline when the
// hook asked for a change. Bid and deadline go through one SetBid call
// so a write failure cannot leave the bid recorded under the old end or
// the end moved without the bid.
func (im *impl) recordBid(c ctx.Ctx, id auction.AuctionId, now domain.BlockNumber, info *auction.AuctionInfo, bid auction.Bid, change auction.AuctionEndChange) error {
	if change.Kind == auction.EndChangeNone || info.End == nil {
		return im.auctionRepo.SetBid(c, id, bid, nil)
	}

	end := *info.End
	switch change.Kind {
	case auction.EndChangeExtend:
		end += change.Delta
	case auction.EndChangeShorten:
		if end > change.Delta {
			end -= change.Delta
		} else {
			end = 0
		}
		// the sweep only visits future buckets, so a shortened deadline
		// must still land after now
		if end <= now {
			end = now + 1
		}
	}

	return im.auctionRepo.SetBid(c, id, bid, &end)
}

// restoreLastBid re-establishes the displaced reservation after a failed
// escrow transition
func (im *impl) restoreLastBid(c ctx.Ctx, currency domain.FungibleTokenId, id auction.AuctionId, lastBid *auction.Bid) {
	if lastBid == nil {
		return
	}
	if err := im.reserve(c, currency, lastBid.Bidder, lastBid.Amount); err != nil {
		c.WithFields(log.Fields{
			"err":       err,
			"auctionId": id,
			"bidder":    lastBid.Bidder,
		}).Error("restore last bid reservation failed")
		im.mtr.BumpSum("bid.rollback.err", 1)
	}
}
