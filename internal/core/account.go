package core

import "fmt"

// AccountType partitions the account tree for reporting. Ordinal values
// are part of the stored representation and must not be reordered.
type AccountType int

const (
	Asset AccountType = iota + 1
	Liability
	Equity
	Income
	Expense
)

func (t AccountType) String() string {
	switch t {
	case Asset:
		return "asset"
	case Liability:
		return "liability"
	case Equity:
		return "equity"
	case Income:
		return "income"
	case Expense:
		return "expense"
	}
	return fmt.Sprintf("AccountType(%d)", int(t))
}

// ParseAccountType accepts an AccountType, its ordinal, or its lowercase
// name.
func ParseAccountType(v any) (AccountType, error) {
	switch x := v.(type) {
	case AccountType:
		if x >= Asset && x <= Expense {
			return x, nil
		}
	case int:
		t := AccountType(x)
		if t >= Asset && t <= Expense {
			return t, nil
		}
	case string:
		for t := Asset; t <= Expense; t++ {
			if t.String() == x {
				return t, nil
			}
		}
	}
	return 0, InvalidAccountError(fmt.Sprintf("Invalid account type \"%v\"", v))
}

// Account is a node in the chart of accounts. UserID is the free-form
// account number shown to the user; Parent links subcategories to their
// category.
type Account struct {
	ID     int64
	Type   AccountType
	UserID string
	Name   string
	Parent *Account
}

type AccountParams struct {
	ID     int64
	Type   any
	UserID string
	Name   string
	Parent *Account
}

func NewAccount(p AccountParams) (*Account, error) {
	if p.Type == nil {
		return nil, InvalidAccountError("Account must have a type")
	}
	typ, err := ParseAccountType(p.Type)
	if err != nil {
		return nil, err
	}
	return &Account{
		ID:     p.ID,
		Type:   typ,
		UserID: p.UserID,
		Name:   p.Name,
		Parent: p.Parent,
	}, nil
}

// String renders "{user_id} - {name}", or just the name when there is no
// user id.
func (a *Account) String() string {
	if a.UserID != "" {
		return fmt.Sprintf("%s - %s", a.UserID, a.Name)
	}
	return a.Name
}

// Equal compares accounts by persisted identity. Unsaved accounts have
// no identity to compare.
func (a *Account) Equal(other *Account) (bool, error) {
	if other == nil {
		return false, nil
	}
	if a.ID == 0 || other.ID == 0 {
		return false, InvalidAccountError("Can't compare accounts without an id")
	}
	return a.ID == other.ID, nil
}

// Payee is a counterparty on a transaction. Names are unique per book.
type Payee struct {
	ID   int64
	Name string
}
