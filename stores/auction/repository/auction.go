package repository

import (
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/metaland/auction-api/base/ctx"
	"github.com/metaland/auction-api/base/log"
	"github.com/metaland/auction-api/domain"
	"github.com/metaland/auction-api/domain/auction"
	"github.com/metaland/auction-api/service/cache"
	"github.com/metaland/auction-api/service/cache/provider"
	"github.com/metaland/auction-api/service/cache/provider/compound"
	"github.com/metaland/auction-api/service/cache/provider/primitive"
	redisCache "github.com/metaland/auction-api/service/cache/provider/redis"
	"github.com/metaland/auction-api/service/query"
	"github.com/metaland/auction-api/service/redis"
)

const auctionIdCounter = "auctionId"

type auctionInfoDoc struct {
	AuctionId           auction.AuctionId `bson:"auctionId"`
	auction.AuctionInfo `bson:",inline"`
}

type auctionItemDoc struct {
	AuctionId           auction.AuctionId `bson:"auctionId"`
	auction.AuctionItem `bson:",inline"`
}

type itemInAuctionDoc struct {
	ItemKey string `bson:"itemKey"`
}

type endTimeDoc struct {
	EndTime   domain.BlockNumber `bson:"endTime"`
	AuctionId auction.AuctionId  `bson:"auctionId"`
}

type counterDoc struct {
	Name string `bson:"name"`
	Seq  uint64 `bson:"seq"`
}

type auctionImpl struct {
	q         query.Mongo
	infoCache cache.Service
}

// NewAuction creates the mongo backed auction repo
func NewAuction(q query.Mongo, redis redis.Service) auction.Repo {
	cacheProviders := []provider.Provider{
		primitive.NewPrimitive("auction", 64),
	}

	if redis != nil {
		cacheProviders = append(cacheProviders, redisCache.NewRedis(redis))
	}

	return &auctionImpl{
		q: q,
		infoCache: cache.New(cache.ServiceConfig{
			Ttl:   time.Minute,
			Pfx:   "auction.info",
			Cache: compound.NewCompound(cacheProviders),
		}),
	}
}

func infoCacheKey(id auction.AuctionId) string {
	return strconv.FormatUint(uint64(id), 10)
}

func (im *auctionImpl) NextAuctionId(c ctx.Ctx) (auction.AuctionId, error) {
	res := &counterDoc{}
	if err := im.q.Increment(c, domain.TableAuctionCounters, bson.M{"name": auctionIdCounter}, res, "seq", uint64(1)); err != nil {
		c.WithField("err", err).Error("q.Increment failed")
		return 0, err
	}
	if res.Seq == 0 {
		// counter wrapped around
		return 0, domain.ErrNoAvailableAuctionId
	}
	return auction.AuctionId(res.Seq - 1), nil
}

func (im *auctionImpl) Insert(c ctx.Ctx, id auction.AuctionId, info *auction.AuctionInfo, item *auction.AuctionItem) error {
	err := im.q.RunWithTransaction(c, func(c ctx.Ctx) error {
		if err := im.q.Insert(c, domain.TableAuctions, &auctionInfoDoc{id, *info}); err != nil {
			return err
		}
		if err := im.q.Insert(c, domain.TableAuctionItems, &auctionItemDoc{id, *item}); err != nil {
			return err
		}
		if err := im.q.Insert(c, domain.TableItemsInAuction, &itemInAuctionDoc{item.ItemId.Key()}); err != nil {
			return err
		}
		return im.q.Insert(c, domain.TableAuctionEndTimes, &endTimeDoc{item.EndTime, id})
	})
	if err != nil {
		c.WithFields(log.Fields{
			"err":       err,
			"auctionId": id,
		}).Error("insert auction failed")
		return err
	}
	im.infoCache.Del(c, infoCacheKey(id))
	return nil
}

func (im *auctionImpl) FindInfo(c ctx.Ctx, id auction.AuctionId) (*auction.AuctionInfo, error) {
	res := &auctionInfoDoc{}
	if err := im.infoCache.GetByFunc(c, infoCacheKey(id), res, func() (interface{}, error) {
		return im.findInfo(c, id)
	}); err != nil {
		if err != domain.ErrAuctionNotExist {
			c.WithFields(log.Fields{
				"err":       err,
				"auctionId": id,
			}).Error("infoCache.GetByFunc failed")
		}
		return nil, err
	}
	return &res.AuctionInfo, nil
}

func (im *auctionImpl) findInfo(c ctx.Ctx, id auction.AuctionId) (*auctionInfoDoc, error) {
	res := &auctionInfoDoc{}
	err := im.q.FindOne(c, domain.TableAuctions, bson.M{"auctionId": id}, res)
	if err == query.ErrNotFound {
		return nil, domain.ErrAuctionNotExist
	} else if err != nil {
		c.WithFields(log.Fields{
			"err":       err,
			"auctionId": id,
		}).Error("find auction failed")
		return nil, err
	}
	return res, nil
}

func (im *auctionImpl) FindItem(c ctx.Ctx, id auction.AuctionId) (*auction.AuctionItem, error) {
	res := &auctionItemDoc{}
	err := im.q.FindOne(c, domain.TableAuctionItems, bson.M{"auctionId": id}, res)
	if err == query.ErrNotFound {
		return nil, domain.ErrAuctionNotExist
	} else if err != nil {
		c.WithFields(log.Fields{
			"err":       err,
			"auctionId": id,
		}).Error("find auction item failed")
		return nil, err
	}
	return &res.AuctionItem, nil
}

func (im *auctionImpl) SetBid(c ctx.Ctx, id auction.AuctionId, bid auction.Bid, end *domain.BlockNumber) error {
	err := im.q.RunWithTransaction(c, func(c ctx.Ctx) error {
		patch := bson.M{"bid": bid}
		if end != nil {
			patch["end"] = *end
		}
		if err := im.q.Patch(c, domain.TableAuctions, bson.M{"auctionId": id}, patch); err != nil {
			return err
		}
		if err := im.q.Patch(c, domain.TableAuctionItems, bson.M{"auctionId": id}, bson.M{"amount": bid.Amount}); err != nil {
			return err
		}
		if end == nil {
			return nil
		}
		if _, err := im.q.RemoveAll(c, domain.TableAuctionEndTimes, bson.M{"auctionId": id}); err != nil {
			return err
		}
		return im.q.Insert(c, domain.TableAuctionEndTimes, &endTimeDoc{*end, id})
	})
	if err == query.ErrNotFound {
		return domain.ErrAuctionNotExist
	} else if err != nil {
		c.WithFields(log.Fields{
			"err":       err,
			"auctionId": id,
		}).Error("set bid failed")
		return err
	}
	im.infoCache.Del(c, infoCacheKey(id))
	return nil
}

func (im *auctionImpl) Remove(c ctx.Ctx, id auction.AuctionId, item auction.ItemId) error {
	err := im.q.RunWithTransaction(c, func(c ctx.Ctx) error {
		if _, err := im.q.RemoveAll(c, domain.TableAuctionEndTimes, bson.M{"auctionId": id}); err != nil {
			return err
		}
		if _, err := im.q.RemoveAll(c, domain.TableAuctions, bson.M{"auctionId": id}); err != nil {
			return err
		}
		_, err := im.q.RemoveAll(c, domain.TableItemsInAuction, bson.M{"itemKey": item.Key()})
		return err
	})
	if err != nil {
		c.WithFields(log.Fields{
			"err":       err,
			"auctionId": id,
		}).Error("remove auction failed")
		return err
	}
	im.infoCache.Del(c, infoCacheKey(id))
	return nil
}

func (im *auctionImpl) RemoveItem(c ctx.Ctx, id auction.AuctionId) error {
	if _, err := im.q.RemoveAll(c, domain.TableAuctionItems, bson.M{"auctionId": id}); err != nil {
		c.WithFields(log.Fields{
			"err":       err,
			"auctionId": id,
		}).Error("remove auction item failed")
		return err
	}
	return nil
}

func (im *auctionImpl) IsItemInAuction(c ctx.Ctx, item auction.ItemId) (bool, error) {
	n, err := im.q.Count(c, domain.TableItemsInAuction, bson.M{"itemKey": item.Key()})
	if err != nil {
		c.WithFields(log.Fields{
			"err":     err,
			"itemKey": item.Key(),
		}).Error("count items in auction failed")
		return false, err
	}
	return n > 0, nil
}

func (im *auctionImpl) EndingAt(c ctx.Ctx, at domain.BlockNumber) ([]auction.AuctionId, error) {
	docs := []*endTimeDoc{}
	if err := im.q.Search(c, domain.TableAuctionEndTimes, 0, 0, "auctionId", bson.M{"endTime": at}, &docs); err != nil {
		c.WithFields(log.Fields{
			"err":     err,
			"endTime": at,
		}).Error("search auction end times failed")
		return nil, err
	}
	ids := make([]auction.AuctionId, 0, len(docs))
	for _, doc := range docs {
		ids = append(ids, doc.AuctionId)
	}
	return ids, nil
}
