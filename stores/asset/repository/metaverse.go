package repository

import (
	"go.mongodb.org/mongo-driver/bson"

	"github.com/metaland/auction-api/base/ctx"
	"github.com/metaland/auction-api/base/log"
	"github.com/metaland/auction-api/domain"
	"github.com/metaland/auction-api/domain/metaverse"
	"github.com/metaland/auction-api/service/query"
)

type metaverseDoc struct {
	MetaverseId domain.MetaverseId `bson:"metaverseId"`
	Owner       domain.Address     `bson:"owner"`
}

type metaverseImpl struct {
	q query.Mongo
}

// NewMetaverseOwnershipSource resolves metaverse ownership over mongo
func NewMetaverseOwnershipSource(q query.Mongo) metaverse.OwnershipSource {
	return &metaverseImpl{q}
}

func (im *metaverseImpl) CheckOwnership(c ctx.Ctx, who domain.Address, metaverseId domain.MetaverseId) (bool, error) {
	slr := bson.M{"metaverseId": metaverseId, "owner": who.ToLower()}
	n, err := im.q.Count(c, domain.TableMetaverses, slr)
	if err != nil {
		c.WithFields(log.Fields{
			"err":         err,
			"metaverseId": metaverseId,
			"who":         who,
		}).Error("count metaverses failed")
		return false, err
	}
	return n > 0, nil
}
