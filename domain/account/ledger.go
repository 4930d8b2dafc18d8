package account

import (
	"github.com/metaland/auction-api/base/ctx"
	"github.com/metaland/auction-api/domain"
)

// BalanceLedger is the native-currency ledger the engine escrows against.
// Reserved funds are earmarked, not spendable, releasable only by the
// system.
type BalanceLedger interface {
	// Spendable is the free (unreserved) balance of the account
	Spendable(c ctx.Ctx, account domain.Address) (domain.Amount, error)

	// Reserve earmarks `value` of the account's free balance
	Reserve(c ctx.Ctx, account domain.Address, value domain.Amount) error

	// Unreserve releases up to `value` of the account's reserved balance.
	// Releasing zero is a no-op.
	Unreserve(c ctx.Ctx, account domain.Address, value domain.Amount) error

	// Transfer moves free balance between accounts. With keepAlive the
	// sender must retain the existential minimum.
	Transfer(c ctx.Ctx, from, to domain.Address, value domain.Amount, keepAlive bool) error
}

// FungibleLedger is the secondary fungible-token ledger, parameterized by
// currency. Same discipline as BalanceLedger.
type FungibleLedger interface {
	Spendable(c ctx.Ctx, currency domain.FungibleTokenId, account domain.Address) (domain.Amount, error)
	Reserve(c ctx.Ctx, currency domain.FungibleTokenId, account domain.Address, value domain.Amount) error
	Unreserve(c ctx.Ctx, currency domain.FungibleTokenId, account domain.Address, value domain.Amount) error
	Transfer(c ctx.Ctx, currency domain.FungibleTokenId, from, to domain.Address, value domain.Amount) error
}
