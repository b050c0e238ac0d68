package engine

import (
	"fmt"

	"github.com/cleared-dev/settle/internal/accounts"
	"github.com/cleared-dev/settle/internal/ledger"
	"github.com/cleared-dev/settle/internal/model"
	"github.com/cleared-dev/settle/internal/money"
)

// Consistency checks reported by Verify.
const (
	CheckBalance = "balance" // total == available + held
	CheckHeld    = "held"    // held matches the open disputes
	CheckLocked  = "locked"  // locked exactly when a chargeback happened
	CheckOwner   = "owner"   // every entry belongs to a known account
	CheckKind    = "kind"    // only deposits and withdrawals are recorded
)

// Violation describes a single consistency failure between the account book
// and the ledger.
type Violation struct {
	Check       string
	Client      model.ClientID
	Tx          model.TxID // zero for account-level checks
	Description string
}

func (v Violation) Error() string {
	if v.Tx != 0 {
		return fmt.Sprintf("%s [client %d, tx %d]: %s", v.Check, v.Client, v.Tx, v.Description)
	}
	return fmt.Sprintf("%s [client %d]: %s", v.Check, v.Client, v.Description)
}

// Verify cross-checks the processor's accounts against its ledger.
func (p *Processor) Verify() []Violation {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Verify(p.accounts.All(), p.ledger.Entries())
}

// Verify checks a set of account snapshots against the ledger entries that
// produced them. An empty result means the two agree.
func Verify(accts []accounts.Account, entries []ledger.Entry) []Violation {
	var violations []Violation

	known := make(map[model.ClientID]bool, len(accts))
	for _, acct := range accts {
		known[acct.ID] = true
	}

	// Expected held per client, from open disputes.
	held := make(map[model.ClientID]money.Amount)
	chargedBack := make(map[model.ClientID]bool)

	for _, e := range entries {
		if !e.Kind.MovesFunds() {
			violations = append(violations, Violation{
				Check:       CheckKind,
				Client:      e.Client,
				Tx:          e.Tx,
				Description: fmt.Sprintf("%s recorded in ledger", e.Kind),
			})
		}
		if !known[e.Client] {
			violations = append(violations, Violation{
				Check:       CheckOwner,
				Client:      e.Client,
				Tx:          e.Tx,
				Description: "entry for a client with no account",
			})
		}

		switch e.State {
		case ledger.StateDisputed:
			if e.Kind == model.KindWithdrawal {
				held[e.Client] -= e.Amount
			} else {
				held[e.Client] += e.Amount
			}
		case ledger.StateChargedBack:
			chargedBack[e.Client] = true
		}
	}

	for _, acct := range accts {
		if !acct.Balanced() {
			violations = append(violations, Violation{
				Check:       CheckBalance,
				Client:      acct.ID,
				Description: fmt.Sprintf("total %s != available %s + held %s", acct.Total, acct.Available, acct.Held),
			})
		}
		if acct.Held != held[acct.ID] {
			violations = append(violations, Violation{
				Check:       CheckHeld,
				Client:      acct.ID,
				Description: fmt.Sprintf("held %s, open disputes account for %s", acct.Held, held[acct.ID]),
			})
		}
		if acct.Locked != chargedBack[acct.ID] {
			violations = append(violations, Violation{
				Check:       CheckLocked,
				Client:      acct.ID,
				Description: fmt.Sprintf("locked=%t but charged back=%t", acct.Locked, chargedBack[acct.ID]),
			})
		}
	}

	return violations
}
