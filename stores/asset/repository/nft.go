package repository

import (
	"fmt"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/metaland/auction-api/base/ctx"
	"github.com/metaland/auction-api/base/log"
	"github.com/metaland/auction-api/domain"
	"github.com/metaland/auction-api/domain/nft"
	"github.com/metaland/auction-api/service/query"
)

type nftDoc struct {
	Collection   domain.CollectionId `bson:"collection"`
	Token        domain.TokenId      `bson:"token"`
	Owner        domain.Address      `bson:"owner"`
	Transferable bool                `bson:"transferable"`
	FeeSink      domain.Address      `bson:"feeSink"`
}

type nftImpl struct {
	q query.Mongo
}

// NewNftRegistry creates the NFT gateway over mongo
func NewNftRegistry(q query.Mongo) nft.Registry {
	return &nftImpl{q}
}

func nftSelector(collection domain.CollectionId, token domain.TokenId) bson.M {
	return bson.M{"collection": collection, "token": token}
}

func (im *nftImpl) find(c ctx.Ctx, collection domain.CollectionId, token domain.TokenId) (*nftDoc, error) {
	res := &nftDoc{}
	err := im.q.FindOne(c, domain.TableNfts, nftSelector(collection, token), res)
	if err == query.ErrNotFound {
		return nil, domain.ErrAssetIsNotExist
	} else if err != nil {
		c.WithFields(log.Fields{
			"err":        err,
			"collection": collection,
			"token":      token,
		}).Error("find nft failed")
		return nil, err
	}
	return res, nil
}

func (im *nftImpl) CheckOwnership(c ctx.Ctx, owner domain.Address, collection domain.CollectionId, token domain.TokenId) (bool, error) {
	doc, err := im.find(c, collection, token)
	if err != nil {
		return false, err
	}
	return doc.Owner.ToLower() == owner.ToLower(), nil
}

func (im *nftImpl) IsTransferable(c ctx.Ctx, collection domain.CollectionId, token domain.TokenId) (bool, error) {
	doc, err := im.find(c, collection, token)
	if err != nil {
		return false, err
	}
	return doc.Transferable, nil
}

func (im *nftImpl) Transfer(c ctx.Ctx, from, to domain.Address, collection domain.CollectionId, token domain.TokenId) error {
	slr := nftSelector(collection, token)
	slr["owner"] = from.ToLower()
	err := im.q.Patch(c, domain.TableNfts, slr, bson.M{"owner": to.ToLower()})
	if err == query.ErrNotFound {
		return domain.ErrAssetIsNotExist
	} else if err != nil {
		c.WithFields(log.Fields{
			"err":        err,
			"collection": collection,
			"token":      token,
			"from":       from,
			"to":         to,
		}).Error("transfer nft failed")
		return err
	}
	return nil
}

func (im *nftImpl) GetFeeSink(c ctx.Ctx, collection domain.CollectionId) (domain.Address, error) {
	res := &nftDoc{}
	err := im.q.FindOne(c, domain.TableNfts, bson.M{"collection": collection, "feeSink": bson.M{"$ne": ""}}, res)
	if err == query.ErrNotFound {
		// fall back to the derived per collection holding account
		return domain.Address(fmt.Sprintf("feesink:%d", collection)), nil
	} else if err != nil {
		c.WithFields(log.Fields{
			"err":        err,
			"collection": collection,
		}).Error("find fee sink failed")
		return "", err
	}
	return res.FeeSink, nil
}
