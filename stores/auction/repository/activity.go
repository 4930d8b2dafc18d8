package repository

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/metaland/auction-api/base/ctx"
	"github.com/metaland/auction-api/base/log"
	"github.com/metaland/auction-api/domain"
	"github.com/metaland/auction-api/domain/auction"
	"github.com/metaland/auction-api/service/query"
)

type activityImpl struct {
	q query.Mongo
}

func NewActivity(q query.Mongo) auction.ActivityRepo {
	return &activityImpl{q}
}

func (im *activityImpl) Insert(c ctx.Ctx, activity *auction.Activity) error {
	if activity.CreatedAt.IsZero() {
		activity.CreatedAt = time.Now()
	}
	if err := im.q.Insert(c, domain.TableAuctionActivities, activity); err != nil {
		c.WithFields(log.Fields{
			"err":       err,
			"type":      activity.Type,
			"auctionId": activity.AuctionId,
		}).Error("insert activity failed")
		return err
	}
	return nil
}

func (im *activityImpl) FindByAuction(c ctx.Ctx, id auction.AuctionId) ([]*auction.Activity, error) {
	res := []*auction.Activity{}
	if err := im.q.Search(c, domain.TableAuctionActivities, 0, 0, "createdAt", bson.M{"auctionId": id}, &res); err != nil {
		c.WithFields(log.Fields{
			"err":       err,
			"auctionId": id,
		}).Error("search activities failed")
		return nil, err
	}
	return res, nil
}
