package repository

import (
	"go.mongodb.org/mongo-driver/bson"

	"github.com/metaland/auction-api/base/ctx"
	"github.com/metaland/auction-api/base/log"
	"github.com/metaland/auction-api/domain"
	"github.com/metaland/auction-api/domain/auction"
	"github.com/metaland/auction-api/service/query"
)

type authorizedCollectionDoc struct {
	MetaverseId domain.MetaverseId  `bson:"metaverseId"`
	Collection  domain.CollectionId `bson:"collection"`
}

type authorizedCollectionImpl struct {
	q query.Mongo
}

// NewAuthorizedCollection creates the per metaverse collection allow-list repo
func NewAuthorizedCollection(q query.Mongo) auction.AuthorizedCollectionRepo {
	return &authorizedCollectionImpl{q}
}

func (im *authorizedCollectionImpl) Authorize(c ctx.Ctx, metaverseId domain.MetaverseId, collection domain.CollectionId) error {
	doc := &authorizedCollectionDoc{metaverseId, collection}
	if err := im.q.Insert(c, domain.TableMetaverseAuthorizedCollections, doc); err == query.ErrDuplicateKey {
		return domain.ErrCollectionAlreadyAuthorised
	} else if err != nil {
		c.WithFields(log.Fields{
			"err":         err,
			"metaverseId": metaverseId,
			"collection":  collection,
		}).Error("insert authorized collection failed")
		return err
	}
	return nil
}

func (im *authorizedCollectionImpl) Deauthorize(c ctx.Ctx, metaverseId domain.MetaverseId, collection domain.CollectionId) error {
	slr := bson.M{"metaverseId": metaverseId, "collection": collection}
	if err := im.q.Remove(c, domain.TableMetaverseAuthorizedCollections, slr); err == query.ErrNotFound {
		return domain.ErrCollectionIsNotAuthorised
	} else if err != nil {
		c.WithFields(log.Fields{
			"err":         err,
			"metaverseId": metaverseId,
			"collection":  collection,
		}).Error("remove authorized collection failed")
		return err
	}
	return nil
}

func (im *authorizedCollectionImpl) IsAuthorized(c ctx.Ctx, metaverseId domain.MetaverseId, collection domain.CollectionId) (bool, error) {
	slr := bson.M{"metaverseId": metaverseId, "collection": collection}
	n, err := im.q.Count(c, domain.TableMetaverseAuthorizedCollections, slr)
	if err != nil {
		c.WithFields(log.Fields{
			"err":         err,
			"metaverseId": metaverseId,
			"collection":  collection,
		}).Error("count authorized collections failed")
		return false, err
	}
	return n > 0, nil
}
