package estate

import (
	"github.com/metaland/auction-api/base/ctx"
	"github.com/metaland/auction-api/domain"
)

// Registry is the estate / land-unit asset gateway
type Registry interface {
	// CheckEstate reports whether the estate exists (is minted)
	CheckEstate(c ctx.Ctx, estateId domain.EstateId) (bool, error)

	// CheckLandUnit reports whether the land unit exists inside the metaverse
	CheckLandUnit(c ctx.Ctx, metaverseId domain.MetaverseId, coordinate domain.Coordinate) (bool, error)

	TransferEstate(c ctx.Ctx, estateId domain.EstateId, from, to domain.Address) error

	TransferLandUnit(c ctx.Ctx, coordinate domain.Coordinate, from, to domain.Address, metaverseId domain.MetaverseId) error
}
