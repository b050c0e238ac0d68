package rejects

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Reason recorded for rows the feed reader could not decode.
const ReasonMalformed = "malformed_row"

// Entry is one row in the rejects file: a feed row that was not applied.
type Entry struct {
	Row    int
	Type   string
	Client string
	Tx     string
	Amount string
	Reason string
	Detail string
}

// Header is the CSV header for the rejects file.
const Header = "row,type,client,tx,amount,reason,detail"

const (
	numFields = 7
	colRow    = 0
	colType   = 1
	colClient = 2
	colTx     = 3
	colAmount = 4
	colReason = 5
	colDetail = 6
)

// FromRecord builds an Entry from the raw feed fields of a rejected row.
// Missing fields are left empty.
func FromRecord(row int, record []string, reason string, err error) Entry {
	field := func(i int) string {
		if i < len(record) {
			return strings.TrimSpace(record[i])
		}
		return ""
	}
	e := Entry{
		Row:    row,
		Type:   field(0),
		Client: field(1),
		Tx:     field(2),
		Amount: field(3),
		Reason: reason,
	}
	if err != nil {
		e.Detail = err.Error()
	}
	return e
}

// MarshalEntry converts an Entry to a CSV row.
func MarshalEntry(e Entry) []string {
	row := make([]string, numFields)
	row[colRow] = strconv.Itoa(e.Row)
	row[colType] = e.Type
	row[colClient] = e.Client
	row[colTx] = e.Tx
	row[colAmount] = e.Amount
	row[colReason] = e.Reason
	row[colDetail] = e.Detail
	return row
}

// UnmarshalEntry converts a CSV row to an Entry.
func UnmarshalEntry(record []string) (Entry, error) {
	if len(record) != numFields {
		return Entry{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	row, err := strconv.Atoi(record[colRow])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing row %q: %w", record[colRow], err)
	}

	return Entry{
		Row:    row,
		Type:   record[colType],
		Client: record[colClient],
		Tx:     record[colTx],
		Amount: record[colAmount],
		Reason: record[colReason],
		Detail: record[colDetail],
	}, nil
}

// Writer streams rejected rows as CSV.
type Writer struct {
	cw    *csv.Writer
	count int
}

// NewWriter writes the header to w and returns a Writer for the entries.
func NewWriter(w io.Writer) (*Writer, error) {
	cw := csv.NewWriter(w)
	if err := cw.Write(strings.Split(Header, ",")); err != nil {
		return nil, fmt.Errorf("writing header: %w", err)
	}
	return &Writer{cw: cw}, nil
}

// Write appends one entry.
func (w *Writer) Write(e Entry) error {
	if err := w.cw.Write(MarshalEntry(e)); err != nil {
		return fmt.Errorf("writing reject for row %d: %w", e.Row, err)
	}
	w.count++
	return nil
}

// Count returns the number of entries written.
func (w *Writer) Count() int {
	return w.count
}

// Flush writes any buffered data to the underlying writer.
func (w *Writer) Flush() error {
	w.cw.Flush()
	return w.cw.Error()
}

// Read returns all entries from a rejects file.
func Read(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading rejects CSV: %w", err)
	}

	if len(records) <= 1 {
		return nil, nil
	}

	var entries []Entry
	for i, rec := range records[1:] {
		e, err := UnmarshalEntry(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}
