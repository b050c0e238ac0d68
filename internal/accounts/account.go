package accounts

import (
	"errors"

	"github.com/cleared-dev/settle/internal/model"
	"github.com/cleared-dev/settle/internal/money"
)

// ErrInsufficientFunds is returned when a withdrawal exceeds available funds.
var ErrInsufficientFunds = errors.New("insufficient available funds")

// Account is the balance record for one client.
//
// Every primitive moves both sides of Total == Available + Held together.
// Held is a signed adjustment tracker: disputing a withdrawal drives it
// negative. A primitive that would overflow any field returns
// money.ErrOverflow and leaves the account unchanged.
type Account struct {
	ID        model.ClientID
	Available money.Amount
	Held      money.Amount
	Total     money.Amount
	Locked    bool
}

// New returns a zeroed, unlocked account.
func New(id model.ClientID) *Account {
	return &Account{ID: id}
}

// Deposit credits available funds.
func (a *Account) Deposit(amount money.Amount) error {
	return a.apply(amount, money.Amount.Add, nil, money.Amount.Add)
}

// Withdraw debits available funds. It fails without changing the account when
// available funds do not cover amount.
func (a *Account) Withdraw(amount money.Amount) error {
	if a.Available < amount {
		return ErrInsufficientFunds
	}
	return a.ForceWithdraw(amount)
}

// ForceWithdraw debits available funds without a balance check.
func (a *Account) ForceWithdraw(amount money.Amount) error {
	return a.apply(amount, money.Amount.Sub, nil, money.Amount.Sub)
}

// Hold moves amount from available to held. Amount may be negative.
func (a *Account) Hold(amount money.Amount) error {
	return a.apply(amount, money.Amount.Sub, money.Amount.Add, nil)
}

// Release moves amount from held back to available. Amount may be negative.
func (a *Account) Release(amount money.Amount) error {
	return a.apply(amount, money.Amount.Add, money.Amount.Sub, nil)
}

type op func(money.Amount, money.Amount) (money.Amount, error)

// apply runs the given checked operations against available, held and total
// (nil leaves a field alone). Nothing changes unless all of them succeed.
func (a *Account) apply(amount money.Amount, available, held, total op) error {
	next := *a
	var err error
	if next.Available, err = available(a.Available, amount); err != nil {
		return err
	}
	if held != nil {
		if next.Held, err = held(a.Held, amount); err != nil {
			return err
		}
	}
	if total != nil {
		if next.Total, err = total(a.Total, amount); err != nil {
			return err
		}
	}
	*a = next
	return nil
}

// Lock freezes the account. There is no unlock.
func (a *Account) Lock() {
	a.Locked = true
}

// Balanced reports whether Total == Available + Held.
func (a *Account) Balanced() bool {
	return a.Total == a.Available+a.Held
}
