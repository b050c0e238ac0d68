package accounts

import (
	"sort"

	"github.com/cleared-dev/settle/internal/model"
)

// Book holds one Account per client for the lifetime of the process.
// It is not safe for concurrent use; the engine serializes access.
type Book struct {
	byID map[model.ClientID]*Account
}

// NewBook creates an empty Book.
func NewBook() *Book {
	return &Book{byID: make(map[model.ClientID]*Account)}
}

// GetOrCreate returns the account for id, creating a zeroed one on first use.
func (b *Book) GetOrCreate(id model.ClientID) *Account {
	acct, ok := b.byID[id]
	if !ok {
		acct = New(id)
		b.byID[id] = acct
	}
	return acct
}

// Get returns the account for id without creating it.
func (b *Book) Get(id model.ClientID) (*Account, bool) {
	acct, ok := b.byID[id]
	return acct, ok
}

// Len returns the number of known clients.
func (b *Book) Len() int {
	return len(b.byID)
}

// All returns copies of every account, ordered by client ID.
func (b *Book) All() []Account {
	result := make([]Account, 0, len(b.byID))
	for _, acct := range b.byID {
		result = append(result, *acct)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}
