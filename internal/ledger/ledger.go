package ledger

import (
	"errors"
	"sort"

	"github.com/cleared-dev/settle/internal/model"
	"github.com/cleared-dev/settle/internal/money"
)

var (
	ErrDuplicate       = errors.New("duplicate transaction id")
	ErrNotFound        = errors.New("transaction not found")
	ErrAlreadyDisputed = errors.New("transaction already disputed")
	ErrNotDisputed     = errors.New("transaction not disputed")
)

// State is the dispute lifecycle position of a recorded transaction.
type State string

const (
	StateUndisputed  State = "undisputed"
	StateDisputed    State = "disputed"
	StateChargedBack State = "charged-back"
)

// Entry is an accepted deposit or withdrawal.
type Entry struct {
	Tx     model.TxID
	Client model.ClientID
	Kind   model.Kind
	Amount money.Amount
	State  State
}

// Disputed reports whether the entry is under an open dispute.
func (e *Entry) Disputed() bool {
	return e.State == StateDisputed
}

// Ledger records every accepted deposit and withdrawal by transaction ID.
// Entries are never removed or replaced. Not safe for concurrent use.
type Ledger struct {
	entries map[model.TxID]*Entry
}

// New creates an empty Ledger.
func New() *Ledger {
	return &Ledger{entries: make(map[model.TxID]*Entry)}
}

// Insert records entry, which starts undisputed. It fails with ErrDuplicate
// if the transaction ID is already recorded.
func (l *Ledger) Insert(entry Entry) error {
	if _, ok := l.entries[entry.Tx]; ok {
		return ErrDuplicate
	}
	entry.State = StateUndisputed
	l.entries[entry.Tx] = &entry
	return nil
}

// Has reports whether tx is recorded.
func (l *Ledger) Has(tx model.TxID) bool {
	_, ok := l.entries[tx]
	return ok
}

// GetUndisputed returns client's entry for tx if it can be disputed.
func (l *Ledger) GetUndisputed(client model.ClientID, tx model.TxID) (*Entry, error) {
	e, err := l.lookup(client, tx)
	if err != nil {
		return nil, err
	}
	if e.State != StateUndisputed {
		return nil, ErrAlreadyDisputed
	}
	return e, nil
}

// GetDisputed returns client's entry for tx if it is under an open dispute.
func (l *Ledger) GetDisputed(client model.ClientID, tx model.TxID) (*Entry, error) {
	e, err := l.lookup(client, tx)
	if err != nil {
		return nil, err
	}
	if e.State != StateDisputed {
		return nil, ErrNotDisputed
	}
	return e, nil
}

// Len returns the number of recorded entries.
func (l *Ledger) Len() int {
	return len(l.entries)
}

// Entries returns copies of every entry, ordered by transaction ID.
func (l *Ledger) Entries() []Entry {
	result := make([]Entry, 0, len(l.entries))
	for _, e := range l.entries {
		result = append(result, *e)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Tx < result[j].Tx })
	return result
}

// lookup hides entries owned by other clients.
func (l *Ledger) lookup(client model.ClientID, tx model.TxID) (*Entry, error) {
	e, ok := l.entries[tx]
	if !ok || e.Client != client {
		return nil, ErrNotFound
	}
	return e, nil
}
