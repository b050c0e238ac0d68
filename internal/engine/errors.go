package engine

import (
	"errors"

	"github.com/cleared-dev/settle/internal/accounts"
	"github.com/cleared-dev/settle/internal/ledger"
	"github.com/cleared-dev/settle/internal/money"
)

var (
	ErrAmountRequired = errors.New("transaction needs an amount")
	ErrNegativeAmount = errors.New("amount must not be negative")
	ErrAccountLocked  = errors.New("account locked")
	ErrUnknownKind    = errors.New("unknown transaction type")
)

// Reason classifies a processing error into a stable snake_case label for
// logs and metrics. Nil maps to "none".
func Reason(err error) string {
	switch {
	case err == nil:
		return "none"
	case errors.Is(err, money.ErrMalformed):
		return "amount_malformed"
	case errors.Is(err, money.ErrOverflow):
		return "amount_overflow"
	case errors.Is(err, ErrAmountRequired):
		return "amount_required"
	case errors.Is(err, ErrNegativeAmount):
		return "amount_negative"
	case errors.Is(err, ledger.ErrDuplicate):
		return "duplicate_transaction"
	case errors.Is(err, ledger.ErrNotFound):
		return "transaction_not_found"
	case errors.Is(err, ledger.ErrAlreadyDisputed):
		return "already_disputed"
	case errors.Is(err, ledger.ErrNotDisputed):
		return "not_disputed"
	case errors.Is(err, accounts.ErrInsufficientFunds):
		return "insufficient_funds"
	case errors.Is(err, ErrAccountLocked):
		return "account_locked"
	case errors.Is(err, ErrUnknownKind):
		return "unknown_type"
	default:
		return "unknown"
	}
}
