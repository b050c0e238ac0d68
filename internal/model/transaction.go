package model

import (
	"fmt"
	"strings"

	"github.com/cleared-dev/settle/internal/money"
)

// Kind is the transaction type named in the feed's type column.
type Kind string

const (
	KindDeposit    Kind = "deposit"
	KindWithdrawal Kind = "withdrawal"
	KindDispute    Kind = "dispute"
	KindResolve    Kind = "resolve"
	KindChargeback Kind = "chargeback"
)

// ParseKind decodes a type token, ignoring case and surrounding whitespace.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	if !k.Valid() {
		return "", fmt.Errorf("unknown transaction type %q", s)
	}
	return k, nil
}

// Valid reports whether k is one of the five known kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindDeposit, KindWithdrawal, KindDispute, KindResolve, KindChargeback:
		return true
	}
	return false
}

// MovesFunds reports whether the kind carries its own amount and is recorded
// in the ledger (deposits and withdrawals).
func (k Kind) MovesFunds() bool {
	return k == KindDeposit || k == KindWithdrawal
}

// ClientID identifies a client account.
type ClientID uint16

// TxID identifies a deposit or withdrawal. Dispute, resolve and chargeback
// records reuse the id of the transaction they refer to.
type TxID uint32

// Transaction is one record of the input feed.
type Transaction struct {
	Kind   Kind
	Client ClientID
	Tx     TxID
	Amount *money.Amount // nil when the record has no amount
}
