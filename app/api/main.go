package main

import (
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/spf13/viper"

	"github.com/go-playground/validator/v10"
	"github.com/metaland/auction-api/base/ctx"
	"github.com/metaland/auction-api/base/database/mongoclient"
	"github.com/metaland/auction-api/base/database/redisclient"
	"github.com/metaland/auction-api/base/log"
	"github.com/metaland/auction-api/base/metrics"
	bValidator "github.com/metaland/auction-api/base/validator"
	"github.com/metaland/auction-api/domain"
	mmiddleware "github.com/metaland/auction-api/middleware"
	"github.com/metaland/auction-api/service/query"
	"github.com/metaland/auction-api/service/redis"
	asset_repository "github.com/metaland/auction-api/stores/asset/repository"
	auction_delivery "github.com/metaland/auction-api/stores/auction/delivery/http"
	auction_repository "github.com/metaland/auction-api/stores/auction/repository"
	auction_usecase "github.com/metaland/auction-api/stores/auction/usecase"
	wallet_repository "github.com/metaland/auction-api/stores/wallet/repository"
)

func init() {
	viper.SetConfigType("yaml")
	viper.SetConfigFile(`infra/configs/config.yaml`)
	err := viper.ReadInConfig()
	if err != nil {
		panic(err)
	}

	if viper.GetBool(`debug`) {
		log.Log().Info("Service RUN on DEBUG mode")
	}
}

// stepClock is the discrete engine time, advanced once per configured
// step duration
type stepClock struct {
	step uint64
}

func (s *stepClock) Now() domain.BlockNumber {
	return domain.BlockNumber(atomic.LoadUint64(&s.step))
}

func (s *stepClock) advance() domain.BlockNumber {
	return domain.BlockNumber(atomic.AddUint64(&s.step, 1))
}

func main() {
	// init echo
	e := echo.New()
	e.Use(middleware.Recover())
	e.Use(middleware.GzipWithConfig(middleware.GzipConfig{}))
	e.Use(middleware.RequestID())
	middL := mmiddleware.InitMiddleware()
	e.Use(middL.ResponseLogger())
	e.Use(middL.AddContext())
	e.Use(middleware.CORS())
	e.Validator = bValidator.NewCustomValidator(validator.New())

	context := ctx.Background()

	// init mongo client
	context.Info("init mongo")
	uri := viper.GetString("mongo.uri")
	authDBName := viper.GetString("mongo.authDBName")
	dbName := viper.GetString("mongo.dbName")
	enableSSL := viper.GetBool("mongo.enableSSL")
	mongoClient := mongoclient.MustConnectMongoClient(uri, authDBName, dbName, enableSSL, true, 2)
	q := query.New(mongoClient)

	// init redis service
	context.Info("init redis cache")
	redisCacheName := viper.GetString("redis_cache.name")
	redisCacheURI := viper.GetString("redis_cache.uri")
	redisCachePwd := viper.GetString("redis_cache.password")
	redisCachePoolMultiplier := viper.GetFloat64("redis_cache.poolMultiplier")
	redisCachePool := redisclient.MustConnectRedis(redisCacheURI, redisCachePwd, redisclient.RedisParam{
		PoolMultiplier: redisCachePoolMultiplier,
		Retry:          true,
	})
	redisCache := redis.New(redisCacheName, metrics.New(redisCacheName), &redis.Pools{
		Src: redisCachePool,
	})

	// construct repositories
	auctionRepo := auction_repository.NewAuction(q, redisCache)
	authorizedRepo := auction_repository.NewAuthorizedCollection(q)
	activityRepo := auction_repository.NewActivity(q)
	balanceLedger := wallet_repository.NewBalanceLedger(q, domain.Amount(viper.GetUint64("ledger.minBalance")))
	fungibleLedger := wallet_repository.NewFungibleLedger(q)
	nftRegistry := asset_repository.NewNftRegistry(q)
	estateRegistry := asset_repository.NewEstateRegistry(q)
	spotRegistry := asset_repository.NewSpotRegistry(q)
	metaverseOwnership := asset_repository.NewMetaverseOwnershipSource(q)

	clock := &stepClock{step: viper.GetUint64("auction.startStep")}

	auctionUC := auction_usecase.New(&auction_usecase.AuctionUseCaseCfg{
		AuctionRepo:     auctionRepo,
		AuthorizedRepo:  authorizedRepo,
		ActivityRepo:    activityRepo,
		Balance:         balanceLedger,
		Fungible:        fungibleLedger,
		Nft:             nftRegistry,
		Estate:          estateRegistry,
		Spot:            spotRegistry,
		Metaverse:       metaverseOwnership,
		Clock:           clock,
		MinDuration:     domain.BlockNumber(viper.GetUint64("auction.minDuration")),
		DefaultDuration: domain.BlockNumber(viper.GetUint64("auction.defaultDuration")),
		RoyaltyFeeBps:   domain.Amount(viper.GetUint64("auction.royaltyFeeBps")),
		MaxFinality:     viper.GetInt("auction.maxFinality"),
	})

	auction_delivery.New(e, auctionUC, activityRepo, int32(viper.GetInt("auction.priceDecimals")))

	e.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	// drive the expiry sweep, one step per tick
	stepDuration := viper.GetDuration("auction.stepDuration")
	sweepDone := make(chan struct{})
	go func() {
		ticker := time.NewTicker(stepDuration)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				now := clock.advance()
				auctionUC.OnTimeAdvance(context, now)
			case <-sweepDone:
				return
			}
		}
	}()

	go func() {
		if err := e.Start(viper.GetString("server.address")); err != nil && err != http.ErrServerClosed {
			log.Log().WithField("err", err).Error("shutting down the server")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server with a timeout of 10 seconds.
	// Use a buffered channel to avoid missing signals as recommended for signal.Notify
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	sig := <-quit
	log.Log().WithField("signal", sig).Info("received signal")
	close(sweepDone)
	shutdownCtx, cancel := ctx.WithTimeout(context, 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Log().WithField("err", err).Error("shutting down the server")
	} else {
		log.Log().Info("shutdown server successfully")
	}
}
