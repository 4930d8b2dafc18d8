package repository

import (
	"go.mongodb.org/mongo-driver/bson"

	"github.com/metaland/auction-api/base/ctx"
	"github.com/metaland/auction-api/base/log"
	"github.com/metaland/auction-api/domain"
	"github.com/metaland/auction-api/domain/account"
	"github.com/metaland/auction-api/service/query"
)

type balanceDoc struct {
	Address  domain.Address `bson:"address"`
	Free     domain.Amount  `bson:"free"`
	Reserved domain.Amount  `bson:"reserved"`
}

type balanceImpl struct {
	q query.Mongo
	// minBalance is the existential minimum a keep-alive sender retains
	minBalance domain.Amount
}

// NewBalanceLedger creates the native currency ledger over mongo
func NewBalanceLedger(q query.Mongo, minBalance domain.Amount) account.BalanceLedger {
	return &balanceImpl{q, minBalance}
}

func (im *balanceImpl) Spendable(c ctx.Ctx, address domain.Address) (domain.Amount, error) {
	res := &balanceDoc{}
	err := im.q.FindOne(c, domain.TableBalances, bson.M{"address": address.ToLower()}, res)
	if err == query.ErrNotFound {
		return 0, nil
	} else if err != nil {
		c.WithFields(log.Fields{
			"err":     err,
			"address": address,
		}).Error("find balance failed")
		return 0, err
	}
	return res.Free, nil
}

func (im *balanceImpl) Reserve(c ctx.Ctx, address domain.Address, value domain.Amount) error {
	if value.IsZero() {
		return nil
	}
	slr := bson.M{"address": address.ToLower(), "free": bson.M{"$gte": value}}
	update := bson.M{"$inc": bson.M{"free": -int64(value), "reserved": int64(value)}}
	if err := im.q.CustomPatch(c, domain.TableBalances, slr, update, false); err == query.ErrNotFound {
		return domain.ErrInsufficientFreeBalance
	} else if err != nil {
		c.WithFields(log.Fields{
			"err":     err,
			"address": address,
			"value":   value,
		}).Error("reserve balance failed")
		return err
	}
	return nil
}

func (im *balanceImpl) Unreserve(c ctx.Ctx, address domain.Address, value domain.Amount) error {
	if value.IsZero() {
		return nil
	}
	err := im.q.RunWithTransaction(c, func(c ctx.Ctx) error {
		res := &balanceDoc{}
		err := im.q.FindOne(c, domain.TableBalances, bson.M{"address": address.ToLower()}, res)
		if err == query.ErrNotFound {
			return nil
		} else if err != nil {
			return err
		}

		// releases at most what is reserved
		actual := value
		if res.Reserved < actual {
			actual = res.Reserved
		}
		if actual.IsZero() {
			return nil
		}

		update := bson.M{"$inc": bson.M{"free": int64(actual), "reserved": -int64(actual)}}
		return im.q.CustomPatch(c, domain.TableBalances, bson.M{"address": address.ToLower()}, update, false)
	})
	if err != nil {
		c.WithFields(log.Fields{
			"err":     err,
			"address": address,
			"value":   value,
		}).Error("unreserve balance failed")
		return err
	}
	return nil
}

func (im *balanceImpl) Transfer(c ctx.Ctx, from, to domain.Address, value domain.Amount, keepAlive bool) error {
	if value.IsZero() || from.ToLower() == to.ToLower() {
		return nil
	}
	need := value
	if keepAlive {
		need += im.minBalance
	}
	err := im.q.RunWithTransaction(c, func(c ctx.Ctx) error {
		slr := bson.M{"address": from.ToLower(), "free": bson.M{"$gte": need}}
		update := bson.M{"$inc": bson.M{"free": -int64(value)}}
		if err := im.q.CustomPatch(c, domain.TableBalances, slr, update, false); err == query.ErrNotFound {
			return domain.ErrInsufficientFreeBalance
		} else if err != nil {
			return err
		}

		update = bson.M{
			"$inc":         bson.M{"free": int64(value)},
			"$setOnInsert": bson.M{"reserved": int64(0)},
		}
		return im.q.CustomPatch(c, domain.TableBalances, bson.M{"address": to.ToLower()}, update, true)
	})
	if err != nil && err != domain.ErrInsufficientFreeBalance {
		c.WithFields(log.Fields{
			"err":   err,
			"from":  from,
			"to":    to,
			"value": value,
		}).Error("transfer balance failed")
	}
	return err
}
