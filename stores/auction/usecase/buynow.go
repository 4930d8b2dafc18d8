package usecase

import (
	"github.com/metaland/auction-api/base/ctx"
	"github.com/metaland/auction-api/base/log"
	"github.com/metaland/auction-api/domain"
	"github.com/metaland/auction-api/domain/auction"
)

// BuyNow settles a fixed-price listing in one shot: exact-price match,
// direct transfer with no escrow phase, royalty cut, asset hand-off.
func (im *impl) BuyNow(c ctx.Ctx, id auction.AuctionId, buyer domain.Address, value domain.Amount) error {
	now := im.clock.Now()

	item, err := im.auctionRepo.FindItem(c, id)
	if err != nil {
		return err
	}
	if item.AuctionType != auction.AuctionTypeBuyNow {
		return domain.ErrInvalidAuctionType
	}
	if buyer.ToLower() == item.Recipient.ToLower() {
		return domain.ErrCannotBidOnOwnAuction
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

	if !item.ListingLevel.Allows(buyer) {
		return domain.ErrBidNotAccepted
	}

	if value != item.Amount {
		return domain.ErrInvalidBuyItNowPrice
	}

	if free, err := im.spendable(c, item.CurrencyId, buyer); err != nil {
		return err
	} else if free < value {
		return domain.ErrInsufficientFunds
	}

	// funds move before the records go so a failed transfer leaves the
	// listing intact
	if err := im.transfer(c, item.CurrencyId, buyer, item.Recipient, value); err != nil {
		c.WithFields(log.Fields{
			"err":       err,
			"auctionId": id,
			"buyer":     buyer,
		}).Error("buy now transfer failed")
		return err
	}

	if item.ItemId.Kind == auction.ItemKindNFT {
		if err := im.collectRoyaltyFee(c, value, item.Recipient, item.ItemId.Collection, item.CurrencyId); err != nil {
			// hand the payment back, the trade is off
			if terr := im.transfer(c, item.CurrencyId, item.Recipient, buyer, value); terr != nil {
				c.WithFields(log.Fields{
					"err":       terr,
					"auctionId": id,
				}).Error("refund after royalty failure failed")
				im.mtr.BumpSum("buynow.refund.err", 1)
			}
			return err
		}
	}

	// the listing survives a failed removal and stays buyable, so the
	// settled funds have to come back out
	if err := im.auctionRepo.Remove(c, id, item.ItemId); err != nil {
		c.WithFields(log.Fields{
			"err":       err,
			"auctionId": id,
		}).Error("auctionRepo.Remove failed")
		if item.ItemId.Kind == auction.ItemKindNFT {
			if rerr := im.refundRoyaltyFee(c, value, item.Recipient, item.ItemId.Collection, item.CurrencyId); rerr != nil {
				c.WithFields(log.Fields{
					"err":       rerr,
					"auctionId": id,
				}).Error("royalty refund after remove failure failed")
				im.mtr.BumpSum("buynow.refund.err", 1)
			}
		}
		if terr := im.transfer(c, item.CurrencyId, item.Recipient, buyer, value); terr != nil {
			c.WithFields(log.Fields{
				"err":       terr,
				"auctionId": id,
			}).Error("refund after remove failure failed")
			im.mtr.BumpSum("buynow.refund.err", 1)
		}
		return err
	}
	if err := im.auctionRepo.RemoveItem(c, id); err != nil {
		c.WithFields(log.Fields{
			"err":       err,
			"auctionId": id,
		}).Error("auctionRepo.RemoveItem failed")
	}

	// a failed asset hand-off does not undo the trade, it is recorded for
	// manual recovery
	if err := im.transferAsset(c, item, item.Recipient, buyer); err != nil {
		c.WithFields(log.Fields{
			"err":       err,
			"auctionId": id,
			"itemKey":   item.ItemId.Key(),
		}).Error("buy now asset transfer failed")
		im.mtr.BumpSum("buynow.asset.err", 1)
		im.emitActivity(c, &auction.Activity{
			Type:        auction.ActivityTypeFinalizeFailed,
			AuctionId:   id,
			Account:     buyer,
			Amount:      value,
			ItemKey:     item.ItemId.Key(),
			Reason:      err.Error(),
			BlockNumber: now,
		})
		return nil
	}

	im.emitActivity(c, &auction.Activity{
		Type:        auction.ActivityTypeBuyNowFinalised,
		AuctionId:   id,
		Account:     buyer,
		Amount:      value,
		ItemKey:     item.ItemId.Key(),
		BlockNumber: now,
	})
	im.mtr.BumpSum("buynow.count", 1)

	return nil
}

// transferAsset dispatches the asset hand-off to the gateway matching the
// item kind
func (im *impl) transferAsset(c ctx.Ctx, item *auction.AuctionItem, from, to domain.Address) error {
	switch item.ItemId.Kind {
	case auction.ItemKindNFT:
		return im.nft.Transfer(c, from, to, item.ItemId.Collection, item.ItemId.Token)
	case auction.ItemKindSpot:
		return im.spot.TransferSpot(c, item.ItemId.SpotId, from, to, item.ItemId.MetaverseId)
	case auction.ItemKindEstate:
		return im.estate.TransferEstate(c, item.ItemId.EstateId, from, to)
	case auction.ItemKindLandUnit:
		if item.ItemId.Coordinate == nil {
			return domain.ErrLandUnitDoesNotExist
		}
		return im.estate.TransferLandUnit(c, *item.ItemId.Coordinate, from, to, item.ItemId.MetaverseId)
	default:
		return domain.ErrAuctionTypeIsNotSupported
	}
}
