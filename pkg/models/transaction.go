package models

// Transaction is one statement transaction in the shape the downstream
// ledger importer consumes.
type Transaction struct {
	date   string
	payee  string
	memo   string
	amount float64
}

func NewTransaction(date, payee, memo string, amount float64) *Transaction {
	return &Transaction{
		date:   date,
		payee:  payee,
		memo:   memo,
		amount: amount,
	}
}

func (t *Transaction) Date() string    { return t.date }
func (t *Transaction) Payee() string   { return t.payee }
func (t *Transaction) Memo() string    { return t.memo }
func (t *Transaction) Amount() float64 { return t.amount }
