package repository

import (
	"go.mongodb.org/mongo-driver/bson"

	"github.com/metaland/auction-api/base/ctx"
	"github.com/metaland/auction-api/base/log"
	"github.com/metaland/auction-api/domain"
	"github.com/metaland/auction-api/domain/spot"
	"github.com/metaland/auction-api/service/query"
)

type spotDoc struct {
	SpotId      domain.SpotId      `bson:"spotId"`
	MetaverseId domain.MetaverseId `bson:"metaverseId"`
	Owner       domain.Address     `bson:"owner"`
}

type spotImpl struct {
	q query.Mongo
}

// NewSpotRegistry creates the continuum spot gateway over mongo
func NewSpotRegistry(q query.Mongo) spot.Registry {
	return &spotImpl{q}
}

func (im *spotImpl) TransferSpot(c ctx.Ctx, spotId domain.SpotId, from, to domain.Address, metaverseId domain.MetaverseId) error {
	slr := bson.M{"spotId": spotId, "owner": from.ToLower()}
	update := bson.M{"owner": to.ToLower(), "metaverseId": metaverseId}
	err := im.q.Patch(c, domain.TableSpots, slr, update)
	if err == query.ErrNotFound {
		return domain.ErrAssetIsNotExist
	} else if err != nil {
		c.WithFields(log.Fields{
			"err":         err,
			"spotId":      spotId,
			"metaverseId": metaverseId,
			"from":        from,
			"to":          to,
		}).Error("transfer spot failed")
		return err
	}
	return nil
}
