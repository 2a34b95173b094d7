package core

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Frequency is how often a scheduled transaction recurs. Ordinal values
// are part of the stored representation and must not be reordered.
type Frequency int

const (
	Weekly Frequency = iota + 1
	Monthly
	Quarterly
	Annually
)

func (f Frequency) String() string {
	switch f {
	case Weekly:
		return "weekly"
	case Monthly:
		return "monthly"
	case Quarterly:
		return "quarterly"
	case Annually:
		return "annually"
	}
	return fmt.Sprintf("Frequency(%d)", int(f))
}

// ParseFrequency accepts a Frequency or its ordinal. Names are not
// accepted; storage and callers deal in ordinals only.
func ParseFrequency(v any) (Frequency, error) {
	switch x := v.(type) {
	case Frequency:
		if x >= Weekly && x <= Annually {
			return x, nil
		}
	case int:
		f := Frequency(x)
		if f >= Weekly && f <= Annually {
			return f, nil
		}
	case int64:
		f := Frequency(x)
		if f >= Weekly && f <= Annually {
			return f, nil
		}
	}
	return 0, InvalidScheduledTransactionError(fmt.Sprintf("invalid frequency \"%v\"", v))
}

// ScheduledTransaction is a recurring transaction template with a
// next-due-date cursor. It shares the split invariants of Transaction.
type ScheduledTransaction struct {
	ID          int64
	Name        string
	Frequency   Frequency
	Splits      map[*Account]decimal.Decimal
	NextDueDate Date
	Type        string
	Payee       *Payee
	Description string
}

type ScheduledTransactionParams struct {
	ID          int64
	Name        string
	Frequency   any
	Splits      SplitsInput
	NextDueDate any
	Type        string
	Payee       any
	Description string
}

func NewScheduledTransaction(p ScheduledTransactionParams) (*ScheduledTransaction, error) {
	frequency, err := ParseFrequency(p.Frequency)
	if err != nil {
		return nil, err
	}
	splits, err := normalizeSplits(p.Splits)
	if err != nil {
		return nil, err
	}
	due, err := ParseDate(p.NextDueDate)
	if err != nil {
		return nil, InvalidScheduledTransactionError(fmt.Sprintf("invalid date \"%v\"", p.NextDueDate))
	}
	payee, err := normalizePayee(p.Payee)
	if err != nil {
		return nil, err
	}
	return &ScheduledTransaction{
		ID:          p.ID,
		Name:        p.Name,
		Frequency:   frequency,
		Splits:      splits,
		NextDueDate: due,
		Type:        p.Type,
		Payee:       payee,
		Description: p.Description,
	}, nil
}

// IsDue reports whether the cursor is on or before today.
func (st *ScheduledTransaction) IsDue(today Date) bool {
	return !st.NextDueDate.After(today)
}

// NextTxnEntered advances the due-date cursor one period. It is the only
// mutator of NextDueDate; entering the actual transaction into a ledger
// is a separate step the caller performs.
func (st *ScheduledTransaction) NextTxnEntered() {
	switch st.Frequency {
	case Weekly:
		st.NextDueDate = st.NextDueDate.AddDays(7)
	case Monthly:
		st.NextDueDate = IncrementMonth(st.NextDueDate)
	case Quarterly:
		st.NextDueDate = IncrementQuarter(st.NextDueDate)
	case Annually:
		st.NextDueDate = st.NextDueDate.AddYears(1)
	}
}

// DisplayStrings renders the template the way a ledger row would show it,
// with the due date in the date column.
func (st *ScheduledTransaction) DisplayStrings(account *Account) DisplayStrings {
	ds := DisplayStrings{
		Type:        st.Type,
		Date:        st.NextDueDate.String(),
		Description: st.Description,
		Categories:  categoriesDisplay(st.Splits, account),
	}
	if st.Payee != nil {
		ds.Payee = st.Payee.Name
	}
	if amt, ok := splitAmount(st.Splits, account); ok {
		if amt.IsNegative() {
			ds.Withdrawal = amt.Neg().String()
		} else {
			ds.Deposit = amt.String()
		}
	}
	return ds
}
