package csv

import (
	"bytes"
	stdcsv "encoding/csv"
	"strconv"
)

// Record is the minimal transaction surface the exporter needs. Any struct
// with these getters can be rendered.
type Record interface {
	Date() string
	Payee() string
	Memo() string
	Amount() float64
}

type FilterFunc[T Record] func(T) bool

// Create renders records in the Date,Payee,Memo,Amount shape the ledger
// importer consumes. Payees and memos are CSV-quoted, since merchant names
// routinely contain commas.
func Create[T Record](records []T, filter FilterFunc[T]) []byte {
	var buf bytes.Buffer
	w := stdcsv.NewWriter(&buf)
	w.Write([]string{"Date", "Payee", "Memo", "Amount"})
	for _, r := range records {
		if filter == nil || filter(r) {
			w.Write([]string{
				r.Date(),
				r.Payee(),
				r.Memo(),
				strconv.FormatFloat(r.Amount(), 'f', 2, 64),
			})
		}
	}
	w.Flush()
	return buf.Bytes()
}
