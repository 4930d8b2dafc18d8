package domain

import "errors"

var (
	// ErrInternalServerError will throw if any the Internal Server Error happen
	ErrInternalServerError = errors.New("Internal Server Error")
	// ErrBadParamInput will throw if the given request-body or params is not valid
	ErrBadParamInput = errors.New("Given Param is not valid")

	// auction lifecycle
	ErrAuctionNotExist                     = errors.New("auction does not exist")
	ErrAssetIsNotExist                     = errors.New("asset does not exist")
	ErrAuctionNotStarted                   = errors.New("auction has not started")
	ErrAuctionIsExpired                    = errors.New("auction is expired")
	ErrAuctionTypeIsNotSupported           = errors.New("auction type is not supported")
	ErrBidNotAccepted                      = errors.New("bid not accepted")
	ErrInsufficientFreeBalance             = errors.New("insufficient free balance")
	ErrInvalidBidPrice                     = errors.New("invalid bid price")
	ErrNoAvailableAuctionId                = errors.New("no available auction id")
	ErrNoPermissionToCreateAuction         = errors.New("no permission to create auction")
	ErrSelfBidNotAccepted                  = errors.New("cannot bid on own auction")
	ErrCannotBidOnOwnAuction               = errors.New("cannot buy own auction")
	ErrInvalidBuyItNowPrice                = errors.New("invalid buy it now price")
	ErrInsufficientFunds                   = errors.New("insufficient funds")
	ErrInvalidAuctionType                  = errors.New("invalid auction type")
	ErrItemAlreadyInAuction                = errors.New("item is already in auction")
	ErrFungibleTokenCurrencyNotFound       = errors.New("fungible token currency not found")
	ErrAuctionEndIsLessThanMinimumDuration = errors.New("auction end is less than minimum duration")
	ErrOverflow                            = errors.New("overflow")
	ErrEstateDoesNotExist                  = errors.New("estate does not exist")
	ErrLandUnitDoesNotExist                = errors.New("land unit does not exist")
	ErrNoPermissionToAuthoriseCollection   = errors.New("no permission to authorise collection")
	ErrCollectionAlreadyAuthorised         = errors.New("collection already authorised")
	ErrCollectionIsNotAuthorised           = errors.New("collection is not authorised")
)
