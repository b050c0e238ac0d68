package accounts

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/cleared-dev/settle/internal/model"
	"github.com/cleared-dev/settle/internal/money"
)

// Header is the CSV header of the account report.
const Header = "client,available,held,total,locked"

const (
	numFields    = 5
	colClient    = 0
	colAvailable = 1
	colHeld      = 2
	colTotal     = 3
	colLocked    = 4
)

// WriteAccounts writes the account report (including header).
func WriteAccounts(w io.Writer, accounts []Account) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(strings.Split(Header, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, acct := range accounts {
		if err := cw.Write(MarshalAccount(acct)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadAccounts reads an account report produced by WriteAccounts.
func ReadAccounts(r io.Reader) ([]Account, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading accounts CSV: %w", err)
	}

	if len(records) == 0 {
		return nil, nil
	}

	var accounts []Account
	for i, rec := range records[1:] {
		acct, err := UnmarshalAccount(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		accounts = append(accounts, acct)
	}
	return accounts, nil
}

// MarshalAccount converts an Account to a CSV row.
func MarshalAccount(acct Account) []string {
	row := make([]string, numFields)
	row[colClient] = strconv.FormatUint(uint64(acct.ID), 10)
	row[colAvailable] = acct.Available.String()
	row[colHeld] = acct.Held.String()
	row[colTotal] = acct.Total.String()
	row[colLocked] = strconv.FormatBool(acct.Locked)
	return row
}

// UnmarshalAccount converts a CSV row to an Account.
func UnmarshalAccount(record []string) (Account, error) {
	if len(record) != numFields {
		return Account{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	id, err := strconv.ParseUint(record[colClient], 10, 16)
	if err != nil {
		return Account{}, fmt.Errorf("parsing client %q: %w", record[colClient], err)
	}

	available, err := parseSigned(record[colAvailable])
	if err != nil {
		return Account{}, fmt.Errorf("parsing available: %w", err)
	}
	held, err := parseSigned(record[colHeld])
	if err != nil {
		return Account{}, fmt.Errorf("parsing held: %w", err)
	}
	total, err := parseSigned(record[colTotal])
	if err != nil {
		return Account{}, fmt.Errorf("parsing total: %w", err)
	}

	locked, err := strconv.ParseBool(record[colLocked])
	if err != nil {
		return Account{}, fmt.Errorf("parsing locked %q: %w", record[colLocked], err)
	}

	return Account{
		ID:        model.ClientID(id),
		Available: available,
		Held:      held,
		Total:     total,
		Locked:    locked,
	}, nil
}

// parseSigned accepts the "-" prefix that report balances may carry.
func parseSigned(s string) (money.Amount, error) {
	if rest, ok := strings.CutPrefix(s, "-"); ok {
		a, err := money.Parse(rest)
		return -a, err
	}
	return money.Parse(s)
}
