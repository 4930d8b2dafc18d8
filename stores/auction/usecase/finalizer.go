package usecase

import (
	"github.com/metaland/auction-api/base/ctx"
	"github.com/metaland/auction-api/base/log"
	"github.com/metaland/auction-api/domain"
	"github.com/metaland/auction-api/domain/auction"
)

// OnTimeAdvance drains the end-time bucket for `now` and settles each
// drained auction. It is best effort per entry: a settlement failure is
// recorded and the sweep moves on, it never propagates an error. At most
// maxFinality entries are settled per call; leftovers stay in the bucket
// and surface through the leftover metric.
func (im *impl) OnTimeAdvance(c ctx.Ctx, now domain.BlockNumber) {
	defer im.mtr.BumpTime("sweep.time").End()

	ids, err := im.auctionRepo.EndingAt(c, now)
	if err != nil {
		c.WithFields(log.Fields{
			"err": err,
			"now": now,
		}).Error("auctionRepo.EndingAt failed")
		im.mtr.BumpSum("sweep.err", 1)
		return
	}

	processed := 0
	for _, id := range ids {
		if im.maxFinality > 0 && processed >= im.maxFinality {
			leftover := len(ids) - processed
			c.WithFields(log.Fields{
				"now":      now,
				"leftover": leftover,
			}).Warn("sweep capped, leftover entries stay in bucket")
			im.mtr.BumpSum("sweep.leftover", float64(leftover))
			break
		}
		im.finalize(c, now, id)
		processed++
	}

	im.mtr.BumpSum("sweep.processed", float64(processed))
}

func (im *impl) finalize(c ctx.Ctx, now domain.BlockNumber, id auction.AuctionId) {
	info, err := im.auctionRepo.FindInfo(c, id)
	if err == domain.ErrAuctionNotExist {
		// stale index entry, nothing to settle
		return
	} else if err != nil {
		im.mtr.BumpSum("finalize.err", 1, "step", "findInfo")
		return
	}

	item, err := im.auctionRepo.FindItem(c, id)
	if err == domain.ErrAuctionNotExist {
		return
	} else if err != nil {
		im.mtr.BumpSum("finalize.err", 1, "step", "findItem")
		return
	}

	// registry goes first so a settlement failure can never leave the
	// auction biddable
	if err := im.auctionRepo.Remove(c, id, item.ItemId); err != nil {
		c.WithFields(log.Fields{
			"err":       err,
			"auctionId": id,
		}).Error("auctionRepo.Remove failed")
		im.mtr.BumpSum("finalize.err", 1, "step", "remove")
		return
	}

	if info.Bid == nil {
		im.removeItemRecord(c, id)
		im.emitActivity(c, &auction.Activity{
			Type:        auction.ActivityTypeAuctionFinalizedNoBid,
			AuctionId:   id,
			Account:     item.Recipient,
			ItemKey:     item.ItemId.Key(),
			BlockNumber: now,
		})
		im.bidHandler.OnAuctionEnded(id, nil)
		im.mtr.BumpSum("finalize.nobid", 1)
		return
	}

	winner := *info.Bid

	if err := im.unreserve(c, item.CurrencyId, winner.Bidder, winner.Amount); err != nil {
		im.recordFinalizeFailure(c, now, id, item, winner, "unreserve", err)
		return
	}
	if err := im.transfer(c, item.CurrencyId, winner.Bidder, item.Recipient, winner.Amount); err != nil {
		im.recordFinalizeFailure(c, now, id, item, winner, "transfer", err)
		return
	}

	if item.ItemId.Kind == auction.ItemKindNFT {
		if err := im.collectRoyaltyFee(c, winner.Amount, item.Recipient, item.ItemId.Collection, item.CurrencyId); err != nil {
			im.recordFinalizeFailure(c, now, id, item, winner, "royalty", err)
			return
		}
	}

	if err := im.transferAsset(c, item, item.Recipient, winner.Bidder); err != nil {
		im.recordFinalizeFailure(c, now, id, item, winner, "asset", err)
		return
	}

	im.removeItemRecord(c, id)
	im.emitActivity(c, &auction.Activity{
		Type:        auction.ActivityTypeAuctionFinalized,
		AuctionId:   id,
		Account:     winner.Bidder,
		Amount:      winner.Amount,
		ItemKey:     item.ItemId.Key(),
		BlockNumber: now,
	})
	im.bidHandler.OnAuctionEnded(id, &winner)
	im.mtr.BumpSum("finalize.count", 1)
}

// recordFinalizeFailure logs a settlement that left the asset unlisted
// but untransferred. The item record is still cleared, the state is
// terminal and recovered manually.
func (im *impl) recordFinalizeFailure(c ctx.Ctx, now domain.BlockNumber, id auction.AuctionId, item *auction.AuctionItem, winner auction.Bid, step string, err error) {
	c.WithFields(log.Fields{
		"err":       err,
		"auctionId": id,
		"itemKey":   item.ItemId.Key(),
		"step":      step,
	}).Error("finalize settlement failed")
	im.mtr.BumpSum("finalize.err", 1, "step", step)

	im.removeItemRecord(c, id)
	im.emitActivity(c, &auction.Activity{
		Type:        auction.ActivityTypeFinalizeFailed,
		AuctionId:   id,
		Account:     winner.Bidder,
		Amount:      winner.Amount,
		ItemKey:     item.ItemId.Key(),
		Reason:      step + ": " + err.Error(),
		BlockNumber: now,
	})
	im.bidHandler.OnAuctionEnded(id, &winner)
}

func (im *impl) removeItemRecord(c ctx.Ctx, id auction.AuctionId) {
	if err := im.auctionRepo.RemoveItem(c, id); err != nil {
		c.WithFields(log.Fields{
			"err":       err,
			"auctionId": id,
		}).Error("auctionRepo.RemoveItem failed")
		im.mtr.BumpSum("finalize.err", 1, "step", "removeItem")
	}
}
