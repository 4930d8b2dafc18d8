package metaverse

import (
	"github.com/metaland/auction-api/base/ctx"
	"github.com/metaland/auction-api/domain"
)

// OwnershipSource resolves whether an account owns a metaverse
type OwnershipSource interface {
	CheckOwnership(c ctx.Ctx, who domain.Address, metaverseId domain.MetaverseId) (bool, error)
}
