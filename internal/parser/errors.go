package parser

import "errors"

// Failures that abort processing of a single statement. Callers match them
// with errors.Is; the returned errors carry the document or line context.
var (
	ErrNoMatchingAccount = errors.New("file path does not match any known account statement prefix")
	ErrNoGrammarMatches  = errors.New("no suitable transaction grammar matches statement")
	ErrSeparatorNotFound = errors.New("negative separator line not found in statement")
	ErrUnparseableDate   = errors.New("could not parse date")
	ErrUnparseableAmount = errors.New("could not parse amount")
	ErrBlankStore        = errors.New("transaction line has no store description")
)
