package core

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	StatusCleared    = "C"
	StatusReconciled = "R"
)

// SplitsInput is the loose, user-facing form of a split set: each account
// maps to a not-yet-validated amount (decimal, int, or string).
type SplitsInput map[*Account]any

// Transaction is a balanced multi-split entry. Splits hold the exact
// per-account amounts; their sum is always zero.
type Transaction struct {
	ID          int64
	Splits      map[*Account]decimal.Decimal
	Date        Date
	Type        string
	Payee       *Payee
	Description string
	Status      string
}

// TransactionParams carries the loosely typed constructor inputs. Date
// accepts anything ParseDate does; Payee accepts a *Payee, a name string,
// or nil.
type TransactionParams struct {
	ID          int64
	Splits      SplitsInput
	Date        any
	Type        string
	Payee       any
	Description string
	Status      string
}

func NewTransaction(p TransactionParams) (*Transaction, error) {
	splits, err := normalizeSplits(p.Splits)
	if err != nil {
		return nil, err
	}
	if p.Date == nil {
		return nil, InvalidTransactionError("transaction must have a txn_date")
	}
	date, err := ParseDate(p.Date)
	if err != nil {
		return nil, InvalidTransactionError(fmt.Sprintf("invalid txn_date \"%v\"", p.Date))
	}
	status, err := normalizeStatus(p.Status)
	if err != nil {
		return nil, err
	}
	payee, err := normalizePayee(p.Payee)
	if err != nil {
		return nil, err
	}
	return &Transaction{
		ID:          p.ID,
		Splits:      splits,
		Date:        date,
		Type:        p.Type,
		Payee:       payee,
		Description: p.Description,
		Status:      status,
	}, nil
}

// normalizeSplits validates amounts first, then the split count, then the
// zero-sum invariant. The order is observable through the error returned.
func normalizeSplits(in SplitsInput) (map[*Account]decimal.Decimal, error) {
	splits := make(map[*Account]decimal.Decimal, len(in))
	for account, raw := range in {
		amt, err := ParseAmount(raw)
		if err != nil {
			return nil, InvalidTransactionError("invalid split: " + err.Error())
		}
		splits[account] = amt
	}
	if len(splits) < 2 {
		return nil, InvalidTransactionError("transaction must have at least 2 splits")
	}
	sum := decimal.Zero
	for _, amt := range splits {
		sum = sum.Add(amt)
	}
	if !sum.IsZero() {
		return nil, InvalidTransactionError("splits don't balance")
	}
	return splits, nil
}

func normalizeStatus(s string) (string, error) {
	switch strings.ToUpper(s) {
	case "":
		return "", nil
	case StatusCleared:
		return StatusCleared, nil
	case StatusReconciled:
		return StatusReconciled, nil
	}
	return "", InvalidTransactionError(fmt.Sprintf("invalid status \"%v\"", s))
}

func normalizePayee(v any) (*Payee, error) {
	switch x := v.(type) {
	case nil:
		return nil, nil
	case *Payee:
		return x, nil
	case string:
		if x == "" {
			return nil, nil
		}
		return &Payee{Name: x}, nil
	}
	return nil, InvalidTransactionError(fmt.Sprintf("invalid payee \"%v\"", v))
}

// TransactionUpdate is a partial mutation: nil fields are left alone,
// supplied fields are validated exactly as at construction.
type TransactionUpdate struct {
	Splits      SplitsInput
	Date        any
	Type        *string
	Payee       any
	Description *string
	Status      *string
}

func (t *Transaction) UpdateValues(u TransactionUpdate) error {
	if u.Splits != nil {
		splits, err := normalizeSplits(u.Splits)
		if err != nil {
			return err
		}
		t.Splits = splits
	}
	if u.Date != nil {
		date, err := ParseDate(u.Date)
		if err != nil {
			return InvalidTransactionError(fmt.Sprintf("invalid txn_date \"%v\"", u.Date))
		}
		t.Date = date
	}
	if u.Type != nil {
		t.Type = *u.Type
	}
	if u.Payee != nil {
		payee, err := normalizePayee(u.Payee)
		if err != nil {
			return err
		}
		t.Payee = payee
	}
	if u.Description != nil {
		t.Description = *u.Description
	}
	if u.Status != nil {
		status, err := normalizeStatus(*u.Status)
		if err != nil {
			return err
		}
		t.Status = status
	}
	return nil
}

// UserInfoParams describes a transaction the way the single-account entry
// form captures it: one primary account, a deposit or withdrawal amount,
// and the other side expressed as categories.
type UserInfoParams struct {
	ID          int64
	Account     *Account
	Deposit     string
	Withdrawal  string
	Date        any
	Type        string
	Payee       any
	Description string
	Status      string
	Categories  any
}

func NewTransactionFromUserInfo(p UserInfoParams) (*Transaction, error) {
	splits, err := SplitsFromUserInfo(p.Account, p.Deposit, p.Withdrawal, p.Categories)
	if err != nil {
		return nil, err
	}
	return NewTransaction(TransactionParams{
		ID:          p.ID,
		Splits:      splits,
		Date:        p.Date,
		Type:        p.Type,
		Payee:       p.Payee,
		Description: p.Description,
		Status:      p.Status,
	})
}

// SplitsFromUserInfo builds a split set from single-account entry data.
// Categories may be a single *Account (gets the full balancing amount),
// a []*Account (balancing amount divided equally, remainder on the last),
// or a SplitsInput used as-is. Amounts stay unvalidated here; the
// transaction constructor normalizes them.
func SplitsFromUserInfo(account *Account, deposit, withdrawal string, categories any) (SplitsInput, error) {
	if account == nil {
		return nil, InvalidTransactionError("transaction must have an account")
	}
	var amount string
	if deposit != "" {
		amount = deposit
	} else {
		amount = "-" + withdrawal
	}
	splits := SplitsInput{account: amount}
	switch cats := categories.(type) {
	case nil:
	case *Account:
		splits[cats] = negated(amount)
	case []*Account:
		total, err := ParseAmount(negated(amount))
		if err != nil {
			return nil, InvalidTransactionError("invalid split: " + err.Error())
		}
		n := int64(len(cats))
		share := total.Div(decimal.NewFromInt(n)).RoundBank(2)
		assigned := decimal.Zero
		for i, cat := range cats {
			if i == len(cats)-1 {
				splits[cat] = total.Sub(assigned)
				break
			}
			splits[cat] = share
			assigned = assigned.Add(share)
		}
	case SplitsInput:
		for cat, amt := range cats {
			splits[cat] = amt
		}
	default:
		return nil, InvalidTransactionError(fmt.Sprintf("invalid categories \"%v\"", categories))
	}
	return splits, nil
}

func negated(amount string) string {
	if strings.HasPrefix(amount, "-") {
		return strings.TrimPrefix(amount, "-")
	}
	return "-" + amount
}

// DisplayStrings is the ledger row rendition of a transaction, everything
// already formatted for presentation.
type DisplayStrings struct {
	Type        string
	Date        string
	Payee       string
	Description string
	Status      string
	Deposit     string
	Withdrawal  string
	Categories  string
}

// DisplayStrings renders the transaction from the point of view of one
// account: a positive split there is a deposit, a negative one a
// withdrawal, and the remaining splits collapse into the categories
// column.
func (t *Transaction) DisplayStrings(account *Account) DisplayStrings {
	ds := DisplayStrings{
		Type:        t.Type,
		Date:        t.Date.String(),
		Description: t.Description,
		Status:      t.Status,
		Categories:  categoriesDisplay(t.Splits, account),
	}
	if t.Payee != nil {
		ds.Payee = t.Payee.Name
	}
	if amt, ok := splitAmount(t.Splits, account); ok {
		if amt.IsNegative() {
			ds.Withdrawal = amt.Neg().String()
		} else {
			ds.Deposit = amt.String()
		}
	}
	return ds
}

// splitAmount finds the split posted to the given account, matching by
// persisted id so reloaded account objects compare correctly.
func splitAmount(splits map[*Account]decimal.Decimal, account *Account) (decimal.Decimal, bool) {
	for acct, amt := range splits {
		if acct == account || (account != nil && acct.ID != 0 && acct.ID == account.ID) {
			return amt, true
		}
	}
	return decimal.Decimal{}, false
}

func categoriesDisplay(splits map[*Account]decimal.Decimal, account *Account) string {
	var others []*Account
	for acct := range splits {
		if acct == account || (account != nil && acct.ID != 0 && acct.ID == account.ID) {
			continue
		}
		others = append(others, acct)
	}
	switch len(others) {
	case 0:
		return ""
	case 1:
		return others[0].Name
	}
	return "multiple"
}
