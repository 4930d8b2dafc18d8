package repository

import (
	"go.mongodb.org/mongo-driver/bson"

	"github.com/metaland/auction-api/base/ctx"
	"github.com/metaland/auction-api/base/log"
	"github.com/metaland/auction-api/domain"
	"github.com/metaland/auction-api/domain/estate"
	"github.com/metaland/auction-api/service/query"
)

type estateDoc struct {
	EstateId domain.EstateId `bson:"estateId"`
	Owner    domain.Address  `bson:"owner"`
}

type landUnitDoc struct {
	MetaverseId domain.MetaverseId `bson:"metaverseId"`
	Coordinate  domain.Coordinate  `bson:"coordinate"`
	Owner       domain.Address     `bson:"owner"`
}

type estateImpl struct {
	q query.Mongo
}

// NewEstateRegistry creates the estate and land-unit gateway over mongo
func NewEstateRegistry(q query.Mongo) estate.Registry {
	return &estateImpl{q}
}

func landUnitSelector(metaverseId domain.MetaverseId, coordinate domain.Coordinate) bson.M {
	return bson.M{
		"metaverseId":  metaverseId,
		"coordinate.x": coordinate.X,
		"coordinate.y": coordinate.Y,
	}
}

func (im *estateImpl) CheckEstate(c ctx.Ctx, estateId domain.EstateId) (bool, error) {
	n, err := im.q.Count(c, domain.TableEstates, bson.M{"estateId": estateId})
	if err != nil {
		c.WithFields(log.Fields{
			"err":      err,
			"estateId": estateId,
		}).Error("count estates failed")
		return false, err
	}
	return n > 0, nil
}

func (im *estateImpl) CheckLandUnit(c ctx.Ctx, metaverseId domain.MetaverseId, coordinate domain.Coordinate) (bool, error) {
	n, err := im.q.Count(c, domain.TableLandUnits, landUnitSelector(metaverseId, coordinate))
	if err != nil {
		c.WithFields(log.Fields{
			"err":         err,
			"metaverseId": metaverseId,
			"coordinate":  coordinate,
		}).Error("count land units failed")
		return false, err
	}
	return n > 0, nil
}

func (im *estateImpl) TransferEstate(c ctx.Ctx, estateId domain.EstateId, from, to domain.Address) error {
	slr := bson.M{"estateId": estateId, "owner": from.ToLower()}
	err := im.q.Patch(c, domain.TableEstates, slr, bson.M{"owner": to.ToLower()})
	if err == query.ErrNotFound {
		return domain.ErrEstateDoesNotExist
	} else if err != nil {
		c.WithFields(log.Fields{
			"err":      err,
			"estateId": estateId,
			"from":     from,
			"to":       to,
		}).Error("transfer estate failed")
		return err
	}
	return nil
}

func (im *estateImpl) TransferLandUnit(c ctx.Ctx, coordinate domain.Coordinate, from, to domain.Address, metaverseId domain.MetaverseId) error {
	slr := landUnitSelector(metaverseId, coordinate)
	slr["owner"] = from.ToLower()
	err := im.q.Patch(c, domain.TableLandUnits, slr, bson.M{"owner": to.ToLower()})
	if err == query.ErrNotFound {
		return domain.ErrLandUnitDoesNotExist
	} else if err != nil {
		c.WithFields(log.Fields{
			"err":         err,
			"metaverseId": metaverseId,
			"coordinate":  coordinate,
			"from":        from,
			"to":          to,
		}).Error("transfer land unit failed")
		return err
	}
	return nil
}
