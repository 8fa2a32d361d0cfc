package journals

import "errors"

var (
	// ErrUnbalanced indicates debit != credit.
	ErrUnbalanced = errors.New("accounting: journal lines must balance")
	// ErrTooFewLines indicates less than two lines.
	ErrTooFewLines = errors.New("accounting: journal requires at least two lines")
	// ErrSourceAlreadyLinked indicates the source document was posted before.
	ErrSourceAlreadyLinked = errors.New("accounting: source already linked")
	// ErrSourceConflict is the repository-level form of ErrSourceAlreadyLinked.
	ErrSourceConflict = errors.New("accounting: source link conflict")
)
