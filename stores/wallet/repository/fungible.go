package repository

import (
	"go.mongodb.org/mongo-driver/bson"

	"github.com/metaland/auction-api/base/ctx"
	"github.com/metaland/auction-api/base/log"
	"github.com/metaland/auction-api/domain"
	"github.com/metaland/auction-api/domain/account"
	"github.com/metaland/auction-api/service/query"
)

type tokenBalanceDoc struct {
	Address  domain.Address         `bson:"address"`
	Currency domain.FungibleTokenId `bson:"currency"`
	Free     domain.Amount          `bson:"free"`
	Reserved domain.Amount          `bson:"reserved"`
}

type fungibleImpl struct {
	q query.Mongo
}

// NewFungibleLedger creates the fungible token ledger over mongo
func NewFungibleLedger(q query.Mongo) account.FungibleLedger {
	return &fungibleImpl{q}
}

func tokenBalanceSelector(currency domain.FungibleTokenId, address domain.Address) bson.M {
	return bson.M{"address": address.ToLower(), "currency": currency}
}

func (im *fungibleImpl) Spendable(c ctx.Ctx, currency domain.FungibleTokenId, address domain.Address) (domain.Amount, error) {
	res := &tokenBalanceDoc{}
	err := im.q.FindOne(c, domain.TableTokenBalances, tokenBalanceSelector(currency, address), res)
	if err == query.ErrNotFound {
		return 0, nil
	} else if err != nil {
		c.WithFields(log.Fields{
			"err":      err,
			"address":  address,
			"currency": currency,
		}).Error("find token balance failed")
		return 0, err
	}
	return res.Free, nil
}

func (im *fungibleImpl) Reserve(c ctx.Ctx, currency domain.FungibleTokenId, address domain.Address, value domain.Amount) error {
	if value.IsZero() {
		return nil
	}
	slr := tokenBalanceSelector(currency, address)
	slr["free"] = bson.M{"$gte": value}
	update := bson.M{"$inc": bson.M{"free": -int64(value), "reserved": int64(value)}}
	if err := im.q.CustomPatch(c, domain.TableTokenBalances, slr, update, false); err == query.ErrNotFound {
		return domain.ErrInsufficientFreeBalance
	} else if err != nil {
		c.WithFields(log.Fields{
			"err":      err,
			"address":  address,
			"currency": currency,
			"value":    value,
		}).Error("reserve token balance failed")
		return err
	}
	return nil
}

func (im *fungibleImpl) Unreserve(c ctx.Ctx, currency domain.FungibleTokenId, address domain.Address, value domain.Amount) error {
	if value.IsZero() {
		return nil
	}
	err := im.q.RunWithTransaction(c, func(c ctx.Ctx) error {
		res := &tokenBalanceDoc{}
		err := im.q.FindOne(c, domain.TableTokenBalances, tokenBalanceSelector(currency, address), res)
		if err == query.ErrNotFound {
			return nil
		} else if err != nil {
			return err
		}

		actual := value
		if res.Reserved < actual {
			actual = res.Reserved
		}
		if actual.IsZero() {
			return nil
		}

		update := bson.M{"$inc": bson.M{"free": int64(actual), "reserved": -int64(actual)}}
		return im.q.CustomPatch(c, domain.TableTokenBalances, tokenBalanceSelector(currency, address), update, false)
	})
	if err != nil {
		c.WithFields(log.Fields{
			"err":      err,
			"address":  address,
			"currency": currency,
			"value":    value,
		}).Error("unreserve token balance failed")
		return err
	}
	return nil
}

func (im *fungibleImpl) Transfer(c ctx.Ctx, currency domain.FungibleTokenId, from, to domain.Address, value domain.Amount) error {
	if value.IsZero() || from.ToLower() == to.ToLower() {
		return nil
	}
	err := im.q.RunWithTransaction(c, func(c ctx.Ctx) error {
		slr := tokenBalanceSelector(currency, from)
		slr["free"] = bson.M{"$gte": value}
		update := bson.M{"$inc": bson.M{"free": -int64(value)}}
		if err := im.q.CustomPatch(c, domain.TableTokenBalances, slr, update, false); err == query.ErrNotFound {
			return domain.ErrInsufficientFreeBalance
		} else if err != nil {
			return err
		}

		update = bson.M{
			"$inc":         bson.M{"free": int64(value)},
			"$setOnInsert": bson.M{"reserved": int64(0)},
		}
		return im.q.CustomPatch(c, domain.TableTokenBalances, tokenBalanceSelector(currency, to), update, true)
	})
	if err != nil && err != domain.ErrInsufficientFreeBalance {
		c.WithFields(log.Fields{
			"err":      err,
			"from":     from,
			"to":       to,
			"currency": currency,
			"value":    value,
		}).Error("transfer token balance failed")
	}
	return err
}
