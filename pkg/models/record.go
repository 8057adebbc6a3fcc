package models

// Record is one transaction entry of a statement document, spanning from
// its opening marker to its closing marker inclusive.
type Record struct {
	Raw   string
	Start int // byte offset of the record within the parent document
	End   int // byte offset just past the record
}

// NameField is one occurrence of the payee name field inside a record.
// Start and End are relative to the record text and cover only the value
// span, never the markers or surrounding whitespace.
type NameField struct {
	Start int
	End   int
	Value string
}
