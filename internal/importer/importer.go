package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/cleared-dev/settle/internal/model"
	"github.com/cleared-dev/settle/internal/money"
)

// Header is the expected CSV header of a transaction feed.
const Header = "type,client,tx,amount"

const (
	minFields = 3
	maxFields = 4
	colType   = 0
	colClient = 1
	colTx     = 2
	colAmount = 3
)

// ErrHeader is returned when the feed's first row is not the expected header.
var ErrHeader = errors.New("invalid transaction feed header")

// RowError reports a record that could not be decoded. Reading may continue
// after a RowError.
type RowError struct {
	Row    int      // 1-based line number of the record in the feed
	Record []string // raw fields, nil when the line could not be split
	Err    error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d: %v", e.Row, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}

// Reader streams transactions from a CSV feed one record at a time.
type Reader struct {
	cr         *csv.Reader
	row        int
	headerRead bool
}

// NewReader creates a Reader over r.
func NewReader(r io.Reader) *Reader {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true
	return &Reader{cr: cr}
}

// Next returns the next transaction. It returns io.EOF when the feed is
// exhausted and a *RowError for a record that cannot be decoded.
func (r *Reader) Next() (model.Transaction, error) {
	if !r.headerRead {
		if err := r.readHeader(); err != nil {
			return model.Transaction{}, err
		}
	}

	rec, err := r.cr.Read()
	if err == io.EOF {
		return model.Transaction{}, io.EOF
	}
	r.row = r.line(err)
	if err != nil {
		return model.Transaction{}, &RowError{Row: r.row, Err: err}
	}

	txn, err := UnmarshalTransaction(rec)
	if err != nil {
		return model.Transaction{}, &RowError{Row: r.row, Record: slices.Clone(rec), Err: err}
	}
	return txn, nil
}

// Row returns the line number of the most recently read record.
func (r *Reader) Row() int {
	return r.row
}

// line locates the record just returned by the csv reader.
func (r *Reader) line(readErr error) int {
	var pe *csv.ParseError
	if errors.As(readErr, &pe) {
		return pe.StartLine
	}
	line, _ := r.cr.FieldPos(0)
	return line
}

func (r *Reader) readHeader() error {
	r.headerRead = true
	rec, err := r.cr.Read()
	if err == io.EOF {
		return io.EOF
	}
	r.row = r.line(err)
	if err != nil {
		return fmt.Errorf("reading header: %w", err)
	}

	want := strings.Split(Header, ",")
	if len(rec) < minFields || len(rec) > maxFields {
		return fmt.Errorf("%w: %q", ErrHeader, strings.Join(rec, ","))
	}
	for i, field := range rec {
		if !strings.EqualFold(strings.TrimSpace(field), want[i]) {
			return fmt.Errorf("%w: column %d is %q, want %q", ErrHeader, i+1, field, want[i])
		}
	}
	return nil
}

// UnmarshalTransaction converts a CSV record to a Transaction.
func UnmarshalTransaction(record []string) (model.Transaction, error) {
	if len(record) < minFields || len(record) > maxFields {
		return model.Transaction{}, fmt.Errorf("expected %d or %d fields, got %d", minFields, maxFields, len(record))
	}

	kind, err := model.ParseKind(record[colType])
	if err != nil {
		return model.Transaction{}, err
	}

	client, err := strconv.ParseUint(strings.TrimSpace(record[colClient]), 10, 16)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("parsing client %q: %w", record[colClient], err)
	}

	tx, err := strconv.ParseUint(strings.TrimSpace(record[colTx]), 10, 32)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("parsing tx %q: %w", record[colTx], err)
	}

	txn := model.Transaction{
		Kind:   kind,
		Client: model.ClientID(client),
		Tx:     model.TxID(tx),
	}

	if len(record) > colAmount {
		if raw := strings.TrimSpace(record[colAmount]); raw != "" {
			amount, err := money.Parse(raw)
			if err != nil {
				return model.Transaction{}, err
			}
			txn.Amount = &amount
		}
	}
	return txn, nil
}
