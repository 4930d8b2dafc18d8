package usecase

import (
	"github.com/metaland/auction-api/base/ctx"
	"github.com/metaland/auction-api/base/log"
	"github.com/metaland/auction-api/domain"
)

// collectRoyaltyFee routes the collection cut of a trade to the
// collection's fee sink and reserves it there. The fee is
// floor(amount * feeBps / 10000) with saturating multiplication, so an
// extreme amount caps the fee instead of wrapping.
func (im *impl) collectRoyaltyFee(c ctx.Ctx, amount domain.Amount, payer domain.Address, collection domain.CollectionId, currency domain.FungibleTokenId) error {
	fee, err := amount.SaturatingMul(im.royaltyFeeBps).CheckedDiv(royaltyFeeDenominator)
	if err != nil {
		return err
	}
	if fee.IsZero() {
		return nil
	}

	sink, err := im.nft.GetFeeSink(c, collection)
	if err != nil {
		c.WithFields(log.Fields{
			"err":        err,
			"collection": collection,
		}).Error("nft.GetFeeSink failed")
		return err
	}

	if err := im.transfer(c, currency, payer, sink, fee); err != nil {
		c.WithFields(log.Fields{
			"err":        err,
			"payer":      payer,
			"collection": collection,
			"fee":        fee,
		}).Error("transfer royalty fee failed")
		return err
	}
	return im.reserve(c, currency, sink, fee)
}

// refundRoyaltyFee reverses a collected fee when the trade it belonged
// to has to be unwound: release the sink reservation and hand the fee
// back to the payer.
func (im *impl) refundRoyaltyFee(c ctx.Ctx, amount domain.Amount, payer domain.Address, collection domain.CollectionId, currency domain.FungibleTokenId) error {
	fee, err := amount.SaturatingMul(im.royaltyFeeBps).CheckedDiv(royaltyFeeDenominator)
	if err != nil {
		return err
	}
	if fee.IsZero() {
		return nil
	}

	sink, err := im.nft.GetFeeSink(c, collection)
	if err != nil {
		c.WithFields(log.Fields{
			"err":        err,
			"collection": collection,
		}).Error("nft.GetFeeSink failed")
		return err
	}

	if err := im.unreserve(c, currency, sink, fee); err != nil {
		return err
	}
	return im.transfer(c, currency, sink, payer, fee)
}
