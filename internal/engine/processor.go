package engine

import (
	"fmt"
	"sync"

	"github.com/cleared-dev/settle/internal/accounts"
	"github.com/cleared-dev/settle/internal/ledger"
	"github.com/cleared-dev/settle/internal/model"
	"github.com/cleared-dev/settle/internal/money"
)

// Processor applies transactions to an account book and a transaction ledger.
//
// Calls to Process are serialized, and each either applies completely or
// returns an error with both stores untouched. Handlers apply account changes
// to a copy and touch the ledger last, so nothing can fail after the ledger
// has changed.
type Processor struct {
	mu       sync.Mutex
	accounts *accounts.Book
	ledger   *ledger.Ledger
}

// NewProcessor creates a Processor over the given stores.
func NewProcessor(book *accounts.Book, l *ledger.Ledger) *Processor {
	return &Processor{accounts: book, ledger: l}
}

// Process applies one transaction.
func (p *Processor) Process(tx model.Transaction) error {
	if !tx.Kind.Valid() {
		return fmt.Errorf("tx %d: %q: %w", tx.Tx, tx.Kind, ErrUnknownKind)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	acct := p.accounts.GetOrCreate(tx.Client)
	if acct.Locked {
		return fmt.Errorf("%s tx %d: client %d: %w", tx.Kind, tx.Tx, tx.Client, ErrAccountLocked)
	}

	// Work on a copy so a step that fails partway leaves the account as it was.
	next := *acct
	var err error
	switch tx.Kind {
	case model.KindDeposit:
		err = p.deposit(&next, tx)
	case model.KindWithdrawal:
		err = p.withdraw(&next, tx)
	case model.KindDispute:
		err = p.dispute(&next, tx)
	case model.KindResolve:
		err = p.resolve(&next, tx)
	case model.KindChargeback:
		err = p.chargeback(&next, tx)
	}
	if err != nil {
		return fmt.Errorf("%s tx %d: %w", tx.Kind, tx.Tx, err)
	}
	*acct = next
	return nil
}

// Accounts returns a snapshot of every account, ordered by client ID.
func (p *Processor) Accounts() []accounts.Account {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.accounts.All()
}

func (p *Processor) deposit(acct *accounts.Account, tx model.Transaction) error {
	amount, err := amountOf(tx)
	if err != nil {
		return err
	}
	if err := acct.Deposit(amount); err != nil {
		return err
	}
	return p.ledger.Insert(entryFor(tx))
}

// withdraw records the ledger entry only once the funds have moved, so a
// rejected withdrawal can never be disputed later.
func (p *Processor) withdraw(acct *accounts.Account, tx model.Transaction) error {
	amount, err := amountOf(tx)
	if err != nil {
		return err
	}
	if p.ledger.Has(tx.Tx) {
		return ledger.ErrDuplicate
	}
	if err := acct.Withdraw(amount); err != nil {
		return err
	}
	return p.ledger.Insert(entryFor(tx))
}

func (p *Processor) dispute(acct *accounts.Account, tx model.Transaction) error {
	entry, err := p.ledger.GetUndisputed(tx.Client, tx.Tx)
	if err != nil {
		return err
	}
	switch entry.Kind {
	case model.KindDeposit:
		err = acct.Hold(entry.Amount)
	case model.KindWithdrawal:
		err = acct.Release(entry.Amount)
	}
	if err != nil {
		return err
	}
	entry.State = ledger.StateDisputed
	return nil
}

func (p *Processor) resolve(acct *accounts.Account, tx model.Transaction) error {
	entry, err := p.ledger.GetDisputed(tx.Client, tx.Tx)
	if err != nil {
		return err
	}
	if err := undoDispute(acct, entry); err != nil {
		return err
	}
	entry.State = ledger.StateUndisputed
	return nil
}

func (p *Processor) chargeback(acct *accounts.Account, tx model.Transaction) error {
	entry, err := p.ledger.GetDisputed(tx.Client, tx.Tx)
	if err != nil {
		return err
	}
	if err := undoDispute(acct, entry); err != nil {
		return err
	}
	switch entry.Kind {
	case model.KindDeposit:
		err = acct.ForceWithdraw(entry.Amount)
	case model.KindWithdrawal:
		err = acct.Deposit(entry.Amount)
	}
	if err != nil {
		return err
	}
	acct.Lock()
	entry.State = ledger.StateChargedBack
	return nil
}

// undoDispute reverses the adjustment dispute made for entry.
func undoDispute(acct *accounts.Account, entry *ledger.Entry) error {
	switch entry.Kind {
	case model.KindDeposit:
		return acct.Release(entry.Amount)
	case model.KindWithdrawal:
		return acct.Hold(entry.Amount)
	}
	return nil
}

// amountOf returns the declared amount of a deposit or withdrawal.
func amountOf(tx model.Transaction) (money.Amount, error) {
	if tx.Amount == nil {
		return 0, ErrAmountRequired
	}
	if *tx.Amount < 0 {
		return 0, fmt.Errorf("amount %s: %w", tx.Amount, ErrNegativeAmount)
	}
	return *tx.Amount, nil
}

func entryFor(tx model.Transaction) ledger.Entry {
	return ledger.Entry{
		Tx:     tx.Tx,
		Client: tx.Client,
		Kind:   tx.Kind,
		Amount: *tx.Amount,
	}
}
