package nft

import (
	"github.com/metaland/auction-api/base/ctx"
	"github.com/metaland/auction-api/domain"
)

// Registry is the NFT asset gateway consumed by the settlement engine
type Registry interface {
	CheckOwnership(c ctx.Ctx, owner domain.Address, collection domain.CollectionId, token domain.TokenId) (bool, error)
	IsTransferable(c ctx.Ctx, collection domain.CollectionId, token domain.TokenId) (bool, error)
	Transfer(c ctx.Ctx, from, to domain.Address, collection domain.CollectionId, token domain.TokenId) error

	// GetFeeSink is the collection-level holding account royalties are
	// routed to
	GetFeeSink(c ctx.Ctx, collection domain.CollectionId) (domain.Address, error)
}
