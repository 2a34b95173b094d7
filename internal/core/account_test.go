package core

import (
	"errors"
	"testing"
)

func TestNewAccount(t *testing.T) {
	a, err := NewAccount(AccountParams{ID: 1, Type: Asset, UserID: "400", Name: "Checking"})
	if err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if a.Type != Asset || a.UserID != "400" || a.Name != "Checking" {
		t.Fatalf("unexpected account %+v", a)
	}
}

func TestNewAccountMissingType(t *testing.T) {
	_, err := NewAccount(AccountParams{ID: 1, Name: "Checking"})
	if err == nil || err.Error() != "Account must have a type" {
		t.Fatalf("got %v", err)
	}
	var accountErr InvalidAccountError
	if !errors.As(err, &accountErr) {
		t.Fatalf("expected InvalidAccountError, got %T", err)
	}
}

func TestNewAccountInvalidType(t *testing.T) {
	_, err := NewAccount(AccountParams{ID: 1, Type: "asdf", Name: "Checking"})
	if err == nil || err.Error() != `Invalid account type "asdf"` {
		t.Fatalf("got %v", err)
	}
}

func TestAccountString(t *testing.T) {
	a, _ := NewAccount(AccountParams{ID: 1, Type: Asset, UserID: "400", Name: "Checking"})
	if got := a.String(); got != "400 - Checking" {
		t.Fatalf("got %q", got)
	}
	b, _ := NewAccount(AccountParams{ID: 2, Type: Expense, Name: "Food"})
	if got := b.String(); got != "Food" {
		t.Fatalf("got %q", got)
	}
}

func TestAccountEqual(t *testing.T) {
	a, _ := NewAccount(AccountParams{ID: 1, Type: Asset, Name: "Checking"})
	same, _ := NewAccount(AccountParams{ID: 1, Type: Asset, Name: "Checking"})
	other, _ := NewAccount(AccountParams{ID: 2, Type: Asset, Name: "Savings"})

	if eq, err := a.Equal(same); err != nil || !eq {
		t.Fatalf("got %v %v", eq, err)
	}
	if eq, err := a.Equal(other); err != nil || eq {
		t.Fatalf("got %v %v", eq, err)
	}
}

func TestAccountEqualUnsaved(t *testing.T) {
	a, _ := NewAccount(AccountParams{Type: Asset, Name: "Checking"})
	b, _ := NewAccount(AccountParams{ID: 1, Type: Asset, Name: "Checking"})
	_, err := a.Equal(b)
	if err == nil || err.Error() != "Can't compare accounts without an id" {
		t.Fatalf("got %v", err)
	}
}

func TestParseAccountType(t *testing.T) {
	cases := []struct {
		in   any
		want AccountType
		ok   bool
	}{
		{Expense, Expense, true},
		{1, Asset, true},
		{5, Expense, true},
		{"liability", Liability, true},
		{0, 0, false},
		{6, 0, false},
		{"asdf", 0, false},
	}
	for i, tc := range cases {
		got, err := ParseAccountType(tc.in)
		if tc.ok {
			if err != nil || got != tc.want {
				t.Fatalf("case %d got %v %v", i, got, err)
			}
			continue
		}
		if err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}
