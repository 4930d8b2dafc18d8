package main

import (
	"github.com/spf13/viper"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/metaland/auction-api/base/ctx"
	"github.com/metaland/auction-api/base/database/mongoclient"
	"github.com/metaland/auction-api/base/log"
	"github.com/metaland/auction-api/domain"
	"github.com/metaland/auction-api/domain/auction"
	"github.com/metaland/auction-api/service/query"
)

// One-shot offline transform of the legacy auction item shape. Legacy
// records carried flat assetClass/assetToken fields and listed NFTs only;
// the current shape nests a tagged itemId and records the listing level
// and currency explicitly.

const batchSize = 500

type auctionItemV1 struct {
	AuctionId     auction.AuctionId  `bson:"auctionId"`
	Recipient     domain.Address     `bson:"recipient"`
	InitialAmount domain.Amount      `bson:"initialAmount"`
	Amount        domain.Amount      `bson:"amount"`
	StartTime     domain.BlockNumber `bson:"startTime"`
	EndTime       domain.BlockNumber `bson:"endTime"`
	AssetClass    uint64             `bson:"assetClass"`
	AssetToken    uint64             `bson:"assetToken"`
	AuctionType   string             `bson:"auctionType"`
}

type auctionItemV2 struct {
	AuctionId           auction.AuctionId `bson:"auctionId"`
	auction.AuctionItem `bson:",inline"`
}

func init() {
	viper.SetConfigType("yaml")
	viper.SetConfigFile(`infra/configs/config.yaml`)
	if err := viper.ReadInConfig(); err != nil {
		panic(err)
	}
}

func main() {
	context := ctx.Background()

	uri := viper.GetString("mongo.uri")
	authDBName := viper.GetString("mongo.authDBName")
	dbName := viper.GetString("mongo.dbName")
	enableSSL := viper.GetBool("mongo.enableSSL")
	mongoClient := mongoclient.MustConnectMongoClient(uri, authDBName, dbName, enableSSL, true, 2)
	q := query.New(mongoClient)

	migrated, failed := 0, 0
	offset := 0
	for {
		batch := []*auctionItemV1{}
		if err := q.Search(context, domain.TableAuctionItemsV1, offset, batchSize, "auctionId", bson.M{}, &batch); err != nil {
			context.WithField("err", err).Error("search legacy auction items failed")
			return
		}
		if len(batch) == 0 {
			break
		}

		for _, old := range batch {
			kind := auction.AuctionTypeAuction
			if old.AuctionType == string(auction.AuctionTypeBuyNow) {
				kind = auction.AuctionTypeBuyNow
			}
			item := &auctionItemV2{
				AuctionId: old.AuctionId,
				AuctionItem: auction.AuctionItem{
					ItemId:        auction.NFTItem(domain.CollectionId(old.AssetClass), domain.TokenId(old.AssetToken)),
					Recipient:     old.Recipient.ToLower(),
					InitialAmount: old.InitialAmount,
					Amount:        old.Amount,
					StartTime:     old.StartTime,
					EndTime:       old.EndTime,
					AuctionType:   kind,
					ListingLevel:  auction.GlobalListing(),
					CurrencyId:    domain.NativeToken,
				},
			}
			if err := q.Upsert(context, domain.TableAuctionItems, bson.M{"auctionId": old.AuctionId}, item); err != nil {
				context.WithFields(log.Fields{
					"err":       err,
					"auctionId": old.AuctionId,
				}).Error("upsert auction item failed")
				failed++
				continue
			}
			migrated++
		}

		offset += len(batch)
	}

	context.WithFields(log.Fields{
		"migrated": migrated,
		"failed":   failed,
	}).Info("auction item migration finished")
}
