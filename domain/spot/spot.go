package spot

import (
	"github.com/metaland/auction-api/base/ctx"
	"github.com/metaland/auction-api/domain"
)

// Registry is the continuum spot gateway
type Registry interface {
	TransferSpot(c ctx.Ctx, spotId domain.SpotId, from, to domain.Address, metaverseId domain.MetaverseId) error
}
