package core

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// Ledger is one account's view of the book: its transactions and
// scheduled transactions keyed by id, re-addable for cheap reloads.
type Ledger struct {
	account   *Account
	txns      map[int64]*Transaction
	order     []int64
	scheduled map[int64]*ScheduledTransaction
}

func NewLedger(account *Account) (*Ledger, error) {
	if account == nil {
		return nil, InvalidLedgerError("ledger must have an account")
	}
	return &Ledger{
		account:   account,
		txns:      make(map[int64]*Transaction),
		scheduled: make(map[int64]*ScheduledTransaction),
	}, nil
}

func (l *Ledger) Account() *Account { return l.account }

// AddTransaction registers or replaces a transaction by id.
func (l *Ledger) AddTransaction(t *Transaction) {
	if _, ok := l.txns[t.ID]; !ok {
		l.order = append(l.order, t.ID)
	}
	l.txns[t.ID] = t
}

func (l *Ledger) AddScheduledTransaction(st *ScheduledTransaction) {
	l.scheduled[st.ID] = st
}

// GetTxn returns the transaction with the given id.
func (l *Ledger) GetTxn(id int64) (*Transaction, error) {
	t, ok := l.txns[id]
	if !ok {
		return nil, InvalidLedgerError(fmt.Sprintf("transaction %d not found", id))
	}
	return t, nil
}

// ClearTxns drops both the transactions and the scheduled transactions,
// readying the ledger for a reload.
func (l *Ledger) ClearTxns() {
	l.txns = make(map[int64]*Transaction)
	l.order = nil
	l.scheduled = make(map[int64]*ScheduledTransaction)
}

// TxnWithBalance pairs a transaction with the running balance of the
// ledger's account after it.
type TxnWithBalance struct {
	*Transaction
	Balance decimal.Decimal
}

// SortedTxnsWithBalance returns the transactions ordered by date, with
// insertion order breaking ties, and the account's running balance
// accumulated over its own splits.
func (l *Ledger) SortedTxnsWithBalance() []TxnWithBalance {
	ids := make([]int64, len(l.order))
	copy(ids, l.order)
	sort.SliceStable(ids, func(i, j int) bool {
		return l.txns[ids[i]].Date.Before(l.txns[ids[j]].Date)
	})
	out := make([]TxnWithBalance, 0, len(ids))
	balance := decimal.Zero
	for _, id := range ids {
		t := l.txns[id]
		if amt, ok := splitAmount(t.Splits, l.account); ok {
			balance = balance.Add(amt)
		}
		out = append(out, TxnWithBalance{Transaction: t, Balance: balance})
	}
	return out
}

// ScheduledTransactionsDue returns the scheduled transactions whose
// cursor is on or before today, in id order.
func (l *Ledger) ScheduledTransactionsDue(today Date) []*ScheduledTransaction {
	ids := make([]int64, 0, len(l.scheduled))
	for id := range l.scheduled {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	var due []*ScheduledTransaction
	for _, id := range ids {
		if st := l.scheduled[id]; st.IsDue(today) {
			due = append(due, st)
		}
	}
	return due
}

// GetScheduledTransaction returns the scheduled transaction with the
// given id.
func (l *Ledger) GetScheduledTransaction(id int64) (*ScheduledTransaction, error) {
	st, ok := l.scheduled[id]
	if !ok {
		return nil, InvalidLedgerError(fmt.Sprintf("scheduled transaction %d not found", id))
	}
	return st, nil
}

// SearchTxns finds transactions whose description or payee name contains
// the query, case-insensitively, in insertion order.
func (l *Ledger) SearchTxns(query string) []*Transaction {
	query = strings.ToLower(query)
	var matches []*Transaction
	for _, id := range l.order {
		t := l.txns[id]
		if strings.Contains(strings.ToLower(t.Description), query) {
			matches = append(matches, t)
			continue
		}
		if t.Payee != nil && strings.Contains(strings.ToLower(t.Payee.Name), query) {
			matches = append(matches, t)
		}
	}
	return matches
}

// GetPayees returns the distinct payees used in the ledger, sorted by
// name.
func (l *Ledger) GetPayees() []*Payee {
	seen := make(map[int64]*Payee)
	for _, t := range l.txns {
		if t.Payee != nil {
			seen[t.Payee.ID] = t.Payee
		}
	}
	payees := make([]*Payee, 0, len(seen))
	for _, p := range seen {
		payees = append(payees, p)
	}
	sort.Slice(payees, func(i, j int) bool { return payees[i].Name < payees[j].Name })
	return payees
}
