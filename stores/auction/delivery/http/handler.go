package http

import (
	"math/big"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/metaland/auction-api/base/ctx"
	"github.com/metaland/auction-api/base/delivery"
	"github.com/metaland/auction-api/domain"
	"github.com/metaland/auction-api/domain/auction"
)

type handler struct {
	auction       auction.UseCase
	activities    auction.ActivityRepo
	priceDecimals int32
}

// New registers the auction endpoints. priceDecimals drives the human
// readable displayPrice field derived from integer base-unit amounts.
func New(e *echo.Echo, uc auction.UseCase, activities auction.ActivityRepo, priceDecimals int32) {
	h := &handler{uc, activities, priceDecimals}

	gs := e.Group("/auctions")
	gs.POST("", h.createAuction)
	gs.POST("/buy-now", h.createBuyNow)
	gs.GET("/in-auction", h.isItemInAuction)

	g := e.Group("/auction/:auctionId")
	g.GET("", h.getAuction)
	g.POST("/bids", h.placeBid)
	g.POST("/buy", h.buyNow)
	g.GET("/activities", h.getActivities)

	m := e.Group("/metaverse/:metaverseId/collection/:collection")
	m.POST("/authorize", h.authorizeCollection)
	m.DELETE("/authorize", h.deauthorizeCollection)
}

type itemIdParams struct {
	Kind        auction.ItemKind    `json:"kind" query:"kind" validate:"required"`
	Collection  domain.CollectionId `json:"collection" query:"collection"`
	Token       domain.TokenId      `json:"token" query:"token"`
	SpotId      domain.SpotId       `json:"spotId" query:"spotId"`
	EstateId    domain.EstateId     `json:"estateId" query:"estateId"`
	MetaverseId domain.MetaverseId  `json:"metaverseId" query:"metaverseId"`
	CoordinateX *int32              `json:"coordinateX" query:"coordinateX"`
	CoordinateY *int32              `json:"coordinateY" query:"coordinateY"`
}

func (p *itemIdParams) toItemId() auction.ItemId {
	item := auction.ItemId{
		Kind:        p.Kind,
		Collection:  p.Collection,
		Token:       p.Token,
		SpotId:      p.SpotId,
		EstateId:    p.EstateId,
		MetaverseId: p.MetaverseId,
	}
	if p.CoordinateX != nil && p.CoordinateY != nil {
		item.Coordinate = &domain.Coordinate{X: *p.CoordinateX, Y: *p.CoordinateY}
	}
	return item
}

type listingLevelParams struct {
	Kind           auction.ListingKind `json:"kind"`
	MetaverseId    domain.MetaverseId  `json:"metaverseId"`
	AllowedBidders []domain.Address    `json:"allowedBidders"`
}

func (p *listingLevelParams) toListingLevel() auction.ListingLevel {
	if p.Kind == "" {
		return auction.GlobalListing()
	}
	return auction.ListingLevel{
		Kind:           p.Kind,
		MetaverseId:    p.MetaverseId,
		AllowedBidders: p.AllowedBidders,
	}
}

type createParams struct {
	Seller       domain.Address         `json:"seller" validate:"required"`
	Item         itemIdParams           `json:"item"`
	Value        domain.Amount          `json:"value"`
	EndTime      *domain.BlockNumber    `json:"endTime"`
	ListingLevel listingLevelParams     `json:"listingLevel"`
	CurrencyId   domain.FungibleTokenId `json:"currencyId"`
}

func (h *handler) createAuction(c echo.Context) error {
	return h.create(c, auction.AuctionTypeAuction)
}

func (h *handler) createBuyNow(c echo.Context) error {
	return h.create(c, auction.AuctionTypeBuyNow)
}

func (h *handler) create(c echo.Context, kind auction.AuctionType) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	p := &createParams{}
	if err := c.Bind(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, domain.ErrBadParamInput)
	}
	if err := c.Validate(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}

	payload := &auction.CreateAuctionPayload{
		Seller:       p.Seller,
		ItemId:       p.Item.toItemId(),
		Value:        p.Value,
		EndTime:      p.EndTime,
		ListingLevel: p.ListingLevel.toListingLevel(),
		CurrencyId:   p.CurrencyId,
	}

	var (
		id  auction.AuctionId
		err error
	)
	if kind == auction.AuctionTypeBuyNow {
		id, err = h.auction.CreateBuyNow(ctx, payload)
	} else {
		id, err = h.auction.CreateAuction(ctx, payload)
	}
	if err != nil {
		return delivery.MakeJsonResp(c, statusOf(err), err)
	}

	return delivery.MakeJsonResp(c, http.StatusOK, struct {
		AuctionId auction.AuctionId `json:"auctionId"`
	}{id})
}

func (h *handler) getAuction(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	p := struct {
		AuctionId auction.AuctionId `param:"auctionId"`
	}{}
	if err := c.Bind(&p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, domain.ErrBadParamInput)
	}

	info, err := h.auction.GetAuction(ctx, p.AuctionId)
	if err != nil {
		return delivery.MakeJsonResp(c, statusOf(err), err)
	}

	res := struct {
		*auction.AuctionInfo
		DisplayBidPrice string `json:"displayBidPrice,omitempty"`
	}{AuctionInfo: info}
	if info.Bid != nil {
		res.DisplayBidPrice = h.displayPrice(info.Bid.Amount)
	}

	return delivery.MakeJsonResp(c, http.StatusOK, res)
}

type bidParams struct {
	AuctionId auction.AuctionId `param:"auctionId"`
	Bidder    domain.Address    `json:"bidder" validate:"required"`
	Value     domain.Amount     `json:"value" validate:"required"`
}

func (h *handler) placeBid(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	p := &bidParams{}
	if err := c.Bind(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, domain.ErrBadParamInput)
	}
	if err := c.Validate(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}

	if err := h.auction.PlaceBid(ctx, p.AuctionId, p.Bidder, p.Value); err != nil {
		return delivery.MakeJsonResp(c, statusOf(err), err)
	}

	return delivery.MakeJsonResp(c, http.StatusOK, "ok")
}

type buyParams struct {
	AuctionId auction.AuctionId `param:"auctionId"`
	Buyer     domain.Address    `json:"buyer" validate:"required"`
	Value     domain.Amount     `json:"value" validate:"required"`
}

func (h *handler) buyNow(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	p := &buyParams{}
	if err := c.Bind(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, domain.ErrBadParamInput)
	}
	if err := c.Validate(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}

	if err := h.auction.BuyNow(ctx, p.AuctionId, p.Buyer, p.Value); err != nil {
		return delivery.MakeJsonResp(c, statusOf(err), err)
	}

	return delivery.MakeJsonResp(c, http.StatusOK, "ok")
}

func (h *handler) isItemInAuction(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	p := &itemIdParams{}
	if err := c.Bind(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, domain.ErrBadParamInput)
	}
	if err := c.Validate(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}

	listed, err := h.auction.IsItemInAuction(ctx, p.toItemId())
	if err != nil {
		return delivery.MakeJsonResp(c, statusOf(err), err)
	}

	return delivery.MakeJsonResp(c, http.StatusOK, struct {
		InAuction bool `json:"inAuction"`
	}{listed})
}

func (h *handler) getActivities(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	p := struct {
		AuctionId auction.AuctionId `param:"auctionId"`
	}{}
	if err := c.Bind(&p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, domain.ErrBadParamInput)
	}

	activities, err := h.activities.FindByAuction(ctx, p.AuctionId)
	if err != nil {
		return delivery.MakeJsonResp(c, statusOf(err), err)
	}

	return delivery.MakeJsonResp(c, http.StatusOK, activities)
}

type authorizeParams struct {
	MetaverseId domain.MetaverseId  `param:"metaverseId"`
	Collection  domain.CollectionId `param:"collection"`
	From        domain.Address      `json:"from" validate:"required"`
}

func (h *handler) authorizeCollection(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	p := &authorizeParams{}
	if err := c.Bind(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, domain.ErrBadParamInput)
	}
	if err := c.Validate(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}

	if err := h.auction.AuthorizeCollection(ctx, p.From, p.MetaverseId, p.Collection); err != nil {
		return delivery.MakeJsonResp(c, statusOf(err), err)
	}

	return delivery.MakeJsonResp(c, http.StatusOK, "ok")
}

func (h *handler) deauthorizeCollection(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	p := &authorizeParams{}
	if err := c.Bind(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, domain.ErrBadParamInput)
	}
	if err := c.Validate(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}

	if err := h.auction.DeauthorizeCollection(ctx, p.From, p.MetaverseId, p.Collection); err != nil {
		return delivery.MakeJsonResp(c, statusOf(err), err)
	}

	return delivery.MakeJsonResp(c, http.StatusOK, "ok")
}

func (h *handler) displayPrice(amount domain.Amount) string {
	v := new(big.Int).SetUint64(uint64(amount))
	return decimal.NewFromBigInt(v, -h.priceDecimals).String()
}

func statusOf(err error) int {
	switch err {
	case domain.ErrAuctionNotExist, domain.ErrAssetIsNotExist,
		domain.ErrEstateDoesNotExist, domain.ErrLandUnitDoesNotExist:
		return http.StatusNotFound
	case domain.ErrNoPermissionToCreateAuction, domain.ErrNoPermissionToAuthoriseCollection,
		domain.ErrSelfBidNotAccepted, domain.ErrCannotBidOnOwnAuction:
		return http.StatusForbidden
	case domain.ErrItemAlreadyInAuction, domain.ErrCollectionAlreadyAuthorised,
		domain.ErrCollectionIsNotAuthorised:
		return http.StatusConflict
	case domain.ErrAuctionNotStarted, domain.ErrAuctionIsExpired,
		domain.ErrInvalidBidPrice, domain.ErrInvalidBuyItNowPrice,
		domain.ErrInvalidAuctionType, domain.ErrAuctionTypeIsNotSupported,
		domain.ErrBidNotAccepted, domain.ErrInsufficientFreeBalance,
		domain.ErrInsufficientFunds, domain.ErrAuctionEndIsLessThanMinimumDuration,
		domain.ErrBadParamInput:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
