package core

// Validation failures are raised at the point of construction or mutation,
// each carrying the exact invariant that failed. Storage-level failures
// (foreign keys, uniqueness) are not translated into these types.

type InvalidAccountError string

func (e InvalidAccountError) Error() string { return string(e) }

type InvalidTransactionError string

func (e InvalidTransactionError) Error() string { return string(e) }

type InvalidScheduledTransactionError string

func (e InvalidScheduledTransactionError) Error() string { return string(e) }

type InvalidLedgerError string

func (e InvalidLedgerError) Error() string { return string(e) }

type BudgetError string

func (e BudgetError) Error() string { return string(e) }

// InvalidAmountError reports a monetary value that could not be normalized
// into an exact two-decimal amount.
type InvalidAmountError string

func (e InvalidAmountError) Error() string { return string(e) }

// InvalidDateError reports a value that could not be normalized into a
// calendar date.
type InvalidDateError string

func (e InvalidDateError) Error() string { return string(e) }
