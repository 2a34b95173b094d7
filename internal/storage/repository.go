package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"pft/internal/cache"
	"pft/internal/core"
)

const (
	accountCacheSize = 256
	accountCacheTTL  = 5 * time.Minute
)

// SQLiteStore persists the book. Monetary values are stored as exact
// decimal strings and dates as ISO-8601, so nothing ever passes through
// a float.
type SQLiteStore struct {
	db       *sql.DB
	accounts *cache.LRU[*core.Account]
	payees   *cache.LRU[*core.Payee]
}

// NewSQLiteStore opens (creating if needed) the database at dbPath and
// runs migrations. ":memory:" is accepted for tests.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dir := filepath.Dir(dbPath); dbPath != ":memory:" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// One connection: sqlite has a single writer anyway, and an in-memory
	// database exists per connection.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteStore{
		db:       db,
		accounts: cache.NewLRU[*core.Account](accountCacheSize, accountCacheTTL),
		payees:   cache.NewLRU[*core.Payee](accountCacheSize, accountCacheTTL),
	}, nil
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveAccount inserts or, when the account already carries an id,
// updates in place. Inserts assign the new id back onto the account.
func (s *SQLiteStore) SaveAccount(ctx context.Context, a *core.Account) error {
	var parentID any
	if a.Parent != nil {
		parentID = a.Parent.ID
	}
	if a.ID != 0 {
		res, err := s.db.ExecContext(ctx,
			`UPDATE accounts SET type = ?, user_id = ?, name = ?, parent_id = ? WHERE id = ?`,
			int(a.Type), nullString(a.UserID), a.Name, parentID, a.ID)
		if err != nil {
			return fmt.Errorf("update account: %w", err)
		}
		if err := requireRow(res, "account", a.ID); err != nil {
			return err
		}
		s.accounts.Delete(cacheKey(a.ID))
		return nil
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO accounts(type, user_id, name, parent_id) VALUES (?, ?, ?, ?)`,
		int(a.Type), nullString(a.UserID), a.Name, parentID)
	if err != nil {
		return fmt.Errorf("insert account: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("account insert id: %w", err)
	}
	a.ID = id
	return nil
}

func (s *SQLiteStore) GetAccount(ctx context.Context, id int64) (*core.Account, error) {
	if a, ok := s.accounts.Get(cacheKey(id)); ok {
		return a, nil
	}
	var (
		typ      int
		userID   sql.NullString
		name     string
		parentID sql.NullInt64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT type, user_id, name, parent_id FROM accounts WHERE id = ?`, id).
		Scan(&typ, &userID, &name, &parentID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("no account with id %d", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get account: %w", err)
	}
	var parent *core.Account
	if parentID.Valid {
		parent, err = s.GetAccount(ctx, parentID.Int64)
		if err != nil {
			return nil, fmt.Errorf("get parent account: %w", err)
		}
	}
	a, err := core.NewAccount(core.AccountParams{
		ID:     id,
		Type:   typ,
		UserID: userID.String,
		Name:   name,
		Parent: parent,
	})
	if err != nil {
		return nil, fmt.Errorf("load account %d: %w", id, err)
	}
	s.accounts.Set(cacheKey(id), a)
	return a, nil
}

// GetAccounts returns accounts in id order, optionally filtered to the
// given types.
func (s *SQLiteStore) GetAccounts(ctx context.Context, types ...core.AccountType) ([]*core.Account, error) {
	query := `SELECT id FROM accounts`
	var args []any
	if len(types) > 0 {
		placeholders := make([]string, len(types))
		for i, t := range types {
			placeholders[i] = "?"
			args = append(args, int(t))
		}
		query += ` WHERE type IN (` + strings.Join(placeholders, ", ") + `)`
	}
	query += ` ORDER BY id`

	ids, err := s.queryIDs(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("get accounts: %w", err)
	}
	accounts := make([]*core.Account, 0, len(ids))
	for _, id := range ids {
		a, err := s.GetAccount(ctx, id)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	return accounts, nil
}

func (s *SQLiteStore) SavePayee(ctx context.Context, p *core.Payee) error {
	if p.ID != 0 {
		res, err := s.db.ExecContext(ctx, `UPDATE payees SET name = ? WHERE id = ?`, p.Name, p.ID)
		if err != nil {
			return fmt.Errorf("update payee: %w", err)
		}
		if err := requireRow(res, "payee", p.ID); err != nil {
			return err
		}
		s.payees.Delete(cacheKey(p.ID))
		return nil
	}
	res, err := s.db.ExecContext(ctx, `INSERT INTO payees(name) VALUES (?)`, p.Name)
	if err != nil {
		return fmt.Errorf("insert payee: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("payee insert id: %w", err)
	}
	p.ID = id
	return nil
}

func (s *SQLiteStore) GetPayee(ctx context.Context, id int64) (*core.Payee, error) {
	if p, ok := s.payees.Get(cacheKey(id)); ok {
		return p, nil
	}
	var name string
	err := s.db.QueryRowContext(ctx, `SELECT name FROM payees WHERE id = ?`, id).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("no payee with id %d", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get payee: %w", err)
	}
	p := &core.Payee{ID: id, Name: name}
	s.payees.Set(cacheKey(id), p)
	return p, nil
}

func (s *SQLiteStore) GetPayees(ctx context.Context) ([]*core.Payee, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name FROM payees ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("get payees: %w", err)
	}
	defer rows.Close()
	var payees []*core.Payee
	for rows.Next() {
		p := &core.Payee{}
		if err := rows.Scan(&p.ID, &p.Name); err != nil {
			return nil, fmt.Errorf("scan payee: %w", err)
		}
		payees = append(payees, p)
	}
	return payees, rows.Err()
}

// SaveTxn persists the transaction and its splits atomically. An unsaved
// payee or split account is persisted in the same database transaction.
// Updates replace the split rows wholesale.
func (s *SQLiteStore) SaveTxn(ctx context.Context, t *core.Transaction) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin txn save: %w", err)
	}
	defer tx.Rollback()

	if t.Payee != nil && t.Payee.ID == 0 {
		res, err := tx.ExecContext(ctx, `INSERT INTO payees(name) VALUES (?)`, t.Payee.Name)
		if err != nil {
			return fmt.Errorf("insert payee: %w", err)
		}
		if t.Payee.ID, err = res.LastInsertId(); err != nil {
			return fmt.Errorf("payee insert id: %w", err)
		}
	}
	for account := range t.Splits {
		if account.ID == 0 {
			if err := insertAccountTx(ctx, tx, account); err != nil {
				return err
			}
		}
	}

	var payeeID any
	if t.Payee != nil {
		payeeID = t.Payee.ID
	}
	if t.ID != 0 {
		res, err := tx.ExecContext(ctx,
			`UPDATE transactions SET txn_type = ?, txn_date = ?, payee_id = ?, description = ?, status = ? WHERE id = ?`,
			nullString(t.Type), t.Date.String(), payeeID, nullString(t.Description), nullString(t.Status), t.ID)
		if err != nil {
			return fmt.Errorf("update transaction: %w", err)
		}
		if err := requireRow(res, "transaction", t.ID); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM txn_splits WHERE txn_id = ?`, t.ID); err != nil {
			return fmt.Errorf("delete old splits: %w", err)
		}
	} else {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO transactions(txn_type, txn_date, payee_id, description, status) VALUES (?, ?, ?, ?, ?)`,
			nullString(t.Type), t.Date.String(), payeeID, nullString(t.Description), nullString(t.Status))
		if err != nil {
			return fmt.Errorf("insert transaction: %w", err)
		}
		if t.ID, err = res.LastInsertId(); err != nil {
			return fmt.Errorf("transaction insert id: %w", err)
		}
	}

	for account, amount := range t.Splits {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO txn_splits(txn_id, account_id, amount) VALUES (?, ?, ?)`,
			t.ID, account.ID, amount.String()); err != nil {
			return fmt.Errorf("insert split: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit txn save: %w", err)
	}
	slog.InfoContext(ctx, "transaction saved", "id", t.ID, "date", t.Date.String(), "splits", len(t.Splits))
	return nil
}

func (s *SQLiteStore) GetTxn(ctx context.Context, id int64) (*core.Transaction, error) {
	var (
		txnType     sql.NullString
		txnDate     string
		payeeID     sql.NullInt64
		description sql.NullString
		status      sql.NullString
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT txn_type, txn_date, payee_id, description, status FROM transactions WHERE id = ?`, id).
		Scan(&txnType, &txnDate, &payeeID, &description, &status)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("no transaction with id %d", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get transaction: %w", err)
	}

	splits, err := s.loadSplits(ctx, `SELECT account_id, amount FROM txn_splits WHERE txn_id = ? ORDER BY id`, id)
	if err != nil {
		return nil, err
	}

	params := core.TransactionParams{
		ID:          id,
		Splits:      splits,
		Date:        txnDate,
		Type:        txnType.String,
		Description: description.String,
		Status:      status.String,
	}
	if payeeID.Valid {
		payee, err := s.GetPayee(ctx, payeeID.Int64)
		if err != nil {
			return nil, err
		}
		params.Payee = payee
	}
	t, err := core.NewTransaction(params)
	if err != nil {
		return nil, fmt.Errorf("load transaction %d: %w", id, err)
	}
	return t, nil
}

// DeleteTxn removes the transaction; its splits go with it via the
// cascading foreign key.
func (s *SQLiteStore) DeleteTxn(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	if err := requireRow(res, "transaction", id); err != nil {
		return err
	}
	slog.InfoContext(ctx, "transaction deleted", "id", id)
	return nil
}

// GetLedger builds the account's full in-memory view: every transaction
// and scheduled transaction with a split posted to it.
func (s *SQLiteStore) GetLedger(ctx context.Context, account *core.Account) (*core.Ledger, error) {
	ledger, err := core.NewLedger(account)
	if err != nil {
		return nil, err
	}

	txnIDs, err := s.queryIDs(ctx,
		`SELECT DISTINCT txn_id FROM txn_splits WHERE account_id = ? ORDER BY txn_id`, account.ID)
	if err != nil {
		return nil, fmt.Errorf("ledger txn ids: %w", err)
	}
	for _, id := range txnIDs {
		t, err := s.GetTxn(ctx, id)
		if err != nil {
			return nil, err
		}
		ledger.AddTransaction(t)
	}

	scheduledIDs, err := s.queryIDs(ctx,
		`SELECT DISTINCT scheduled_txn_id FROM scheduled_txn_splits WHERE account_id = ? ORDER BY scheduled_txn_id`, account.ID)
	if err != nil {
		return nil, fmt.Errorf("ledger scheduled ids: %w", err)
	}
	for _, id := range scheduledIDs {
		st, err := s.GetScheduledTransaction(ctx, id)
		if err != nil {
			return nil, err
		}
		ledger.AddScheduledTransaction(st)
	}
	return ledger, nil
}

func (s *SQLiteStore) SaveScheduledTransaction(ctx context.Context, st *core.ScheduledTransaction) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin scheduled save: %w", err)
	}
	defer tx.Rollback()

	if st.Payee != nil && st.Payee.ID == 0 {
		res, err := tx.ExecContext(ctx, `INSERT INTO payees(name) VALUES (?)`, st.Payee.Name)
		if err != nil {
			return fmt.Errorf("insert payee: %w", err)
		}
		if st.Payee.ID, err = res.LastInsertId(); err != nil {
			return fmt.Errorf("payee insert id: %w", err)
		}
	}
	for account := range st.Splits {
		if account.ID == 0 {
			if err := insertAccountTx(ctx, tx, account); err != nil {
				return err
			}
		}
	}

	var payeeID any
	if st.Payee != nil {
		payeeID = st.Payee.ID
	}
	if st.ID != 0 {
		res, err := tx.ExecContext(ctx,
			`UPDATE scheduled_transactions SET name = ?, frequency = ?, next_due_date = ?, txn_type = ?, payee_id = ?, description = ? WHERE id = ?`,
			st.Name, int(st.Frequency), st.NextDueDate.String(), nullString(st.Type), payeeID, nullString(st.Description), st.ID)
		if err != nil {
			return fmt.Errorf("update scheduled transaction: %w", err)
		}
		if err := requireRow(res, "scheduled transaction", st.ID); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM scheduled_txn_splits WHERE scheduled_txn_id = ?`, st.ID); err != nil {
			return fmt.Errorf("delete old scheduled splits: %w", err)
		}
	} else {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO scheduled_transactions(name, frequency, next_due_date, txn_type, payee_id, description) VALUES (?, ?, ?, ?, ?, ?)`,
			st.Name, int(st.Frequency), st.NextDueDate.String(), nullString(st.Type), payeeID, nullString(st.Description))
		if err != nil {
			return fmt.Errorf("insert scheduled transaction: %w", err)
		}
		if st.ID, err = res.LastInsertId(); err != nil {
			return fmt.Errorf("scheduled insert id: %w", err)
		}
	}

	for account, amount := range st.Splits {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO scheduled_txn_splits(scheduled_txn_id, account_id, amount) VALUES (?, ?, ?)`,
			st.ID, account.ID, amount.String()); err != nil {
			return fmt.Errorf("insert scheduled split: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit scheduled save: %w", err)
	}
	slog.InfoContext(ctx, "scheduled transaction saved", "id", st.ID, "name", st.Name, "next_due", st.NextDueDate.String())
	return nil
}

func (s *SQLiteStore) GetScheduledTransaction(ctx context.Context, id int64) (*core.ScheduledTransaction, error) {
	var (
		name        string
		frequency   int
		nextDueDate string
		txnType     sql.NullString
		payeeID     sql.NullInt64
		description sql.NullString
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT name, frequency, next_due_date, txn_type, payee_id, description FROM scheduled_transactions WHERE id = ?`, id).
		Scan(&name, &frequency, &nextDueDate, &txnType, &payeeID, &description)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("no scheduled transaction with id %d", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get scheduled transaction: %w", err)
	}

	splits, err := s.loadSplits(ctx,
		`SELECT account_id, amount FROM scheduled_txn_splits WHERE scheduled_txn_id = ? ORDER BY id`, id)
	if err != nil {
		return nil, err
	}

	params := core.ScheduledTransactionParams{
		ID:          id,
		Name:        name,
		Frequency:   frequency,
		Splits:      splits,
		NextDueDate: nextDueDate,
		Type:        txnType.String,
		Description: description.String,
	}
	if payeeID.Valid {
		payee, err := s.GetPayee(ctx, payeeID.Int64)
		if err != nil {
			return nil, err
		}
		params.Payee = payee
	}
	st, err := core.NewScheduledTransaction(params)
	if err != nil {
		return nil, fmt.Errorf("load scheduled transaction %d: %w", id, err)
	}
	return st, nil
}

func (s *SQLiteStore) GetScheduledTransactions(ctx context.Context) ([]*core.ScheduledTransaction, error) {
	ids, err := s.queryIDs(ctx, `SELECT id FROM scheduled_transactions ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("get scheduled transactions: %w", err)
	}
	scheduled := make([]*core.ScheduledTransaction, 0, len(ids))
	for _, id := range ids {
		st, err := s.GetScheduledTransaction(ctx, id)
		if err != nil {
			return nil, err
		}
		scheduled = append(scheduled, st)
	}
	return scheduled, nil
}

// SaveBudget persists the budget header and replaces its per-account
// values wholesale. Accounts with nothing configured get no row.
func (s *SQLiteStore) SaveBudget(ctx context.Context, b *core.Budget) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin budget save: %w", err)
	}
	defer tx.Rollback()

	if b.ID != 0 {
		res, err := tx.ExecContext(ctx,
			`UPDATE budgets SET name = ?, start_date = ?, end_date = ? WHERE id = ?`,
			nullString(b.Name), b.StartDate.String(), b.EndDate.String(), b.ID)
		if err != nil {
			return fmt.Errorf("update budget: %w", err)
		}
		if err := requireRow(res, "budget", b.ID); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM budget_values WHERE budget_id = ?`, b.ID); err != nil {
			return fmt.Errorf("delete old budget values: %w", err)
		}
	} else {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO budgets(name, start_date, end_date) VALUES (?, ?, ?)`,
			nullString(b.Name), b.StartDate.String(), b.EndDate.String())
		if err != nil {
			return fmt.Errorf("insert budget: %w", err)
		}
		if b.ID, err = res.LastInsertId(); err != nil {
			return fmt.Errorf("budget insert id: %w", err)
		}
	}

	for account, info := range b.GetBudgetData() {
		if info.Amount == nil && info.Carryover == nil && info.Notes == "" {
			continue
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO budget_values(budget_id, account_id, amount, carryover, notes) VALUES (?, ?, ?, ?, ?)`,
			b.ID, account.ID, nullDecimal(info.Amount), nullDecimal(info.Carryover), nullString(info.Notes)); err != nil {
			return fmt.Errorf("insert budget value: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit budget save: %w", err)
	}
	slog.InfoContext(ctx, "budget saved", "id", b.ID, "start", b.StartDate.String(), "end", b.EndDate.String())
	return nil
}

// GetBudget loads the budget with every expense and income account
// enumerated, and computes the period's actual income/spending per
// account from the stored splits so reports can be generated directly.
func (s *SQLiteStore) GetBudget(ctx context.Context, id int64) (*core.Budget, error) {
	var (
		name      sql.NullString
		startDate string
		endDate   string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT name, start_date, end_date FROM budgets WHERE id = ?`, id).
		Scan(&name, &startDate, &endDate)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("no budget with id %d", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get budget: %w", err)
	}

	accounts, err := s.GetAccounts(ctx, core.Expense, core.Income)
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]*core.Account, len(accounts))
	info := make(map[*core.Account]core.BudgetInfoInput, len(accounts))
	for _, a := range accounts {
		byID[a.ID] = a
		info[a] = core.BudgetInfoInput{}
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT account_id, amount, carryover, notes FROM budget_values WHERE budget_id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("get budget values: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			accountID int64
			amount    sql.NullString
			carryover sql.NullString
			notes     sql.NullString
		)
		if err := rows.Scan(&accountID, &amount, &carryover, &notes); err != nil {
			return nil, fmt.Errorf("scan budget value: %w", err)
		}
		account, ok := byID[accountID]
		if !ok {
			continue
		}
		in := core.BudgetInfoInput{Notes: notes.String}
		if amount.Valid {
			in.Amount = amount.String
		}
		if carryover.Valid {
			in.Carryover = carryover.String
		}
		info[account] = in
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("budget values rows: %w", err)
	}

	spending, err := s.periodSpending(ctx, byID, startDate, endDate)
	if err != nil {
		return nil, err
	}

	b, err := core.NewBudget(core.BudgetParams{
		ID:                 id,
		Name:               name.String,
		StartDate:          startDate,
		EndDate:            endDate,
		AccountBudgetInfo:  info,
		IncomeSpendingInfo: spending,
	})
	if err != nil {
		return nil, fmt.Errorf("load budget %d: %w", id, err)
	}
	return b, nil
}

// GetBudgets returns one budget per stored id, most recent period first.
func (s *SQLiteStore) GetBudgets(ctx context.Context) ([]*core.Budget, error) {
	ids, err := s.queryIDs(ctx, `SELECT id FROM budgets ORDER BY start_date DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("get budgets: %w", err)
	}
	budgets := make([]*core.Budget, 0, len(ids))
	for _, id := range ids {
		b, err := s.GetBudget(ctx, id)
		if err != nil {
			return nil, err
		}
		budgets = append(budgets, b)
	}
	return budgets, nil
}

// periodSpending sums the splits posted to each account inside the
// period: positive amounts are spending, negative ones income. Summing
// happens on exact decimals in process, never in SQL.
func (s *SQLiteStore) periodSpending(ctx context.Context, accounts map[int64]*core.Account, startDate, endDate string) (map[*core.Account]core.SpendingInput, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT ts.account_id, ts.amount
		 FROM txn_splits ts
		 JOIN transactions t ON t.id = ts.txn_id
		 WHERE t.txn_date >= ? AND t.txn_date <= ?`, startDate, endDate)
	if err != nil {
		return nil, fmt.Errorf("period splits: %w", err)
	}
	defer rows.Close()

	type totals struct {
		income decimal.Decimal
		spent  decimal.Decimal
	}
	sums := make(map[int64]*totals)
	for rows.Next() {
		var (
			accountID int64
			amountStr string
		)
		if err := rows.Scan(&accountID, &amountStr); err != nil {
			return nil, fmt.Errorf("scan period split: %w", err)
		}
		if _, ok := accounts[accountID]; !ok {
			continue
		}
		amount, err := decimal.NewFromString(amountStr)
		if err != nil {
			return nil, fmt.Errorf("bad stored amount %q: %w", amountStr, err)
		}
		t := sums[accountID]
		if t == nil {
			t = &totals{}
			sums[accountID] = t
		}
		if amount.IsNegative() {
			t.income = t.income.Add(amount.Neg())
		} else {
			t.spent = t.spent.Add(amount)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("period splits rows: %w", err)
	}

	spending := make(map[*core.Account]core.SpendingInput, len(accounts))
	for id, account := range accounts {
		in := core.SpendingInput{}
		if t, ok := sums[id]; ok {
			in.Income = t.income
			in.Spent = t.spent
		}
		spending[account] = in
	}
	return spending, nil
}

func (s *SQLiteStore) loadSplits(ctx context.Context, query string, id int64) (core.SplitsInput, error) {
	rows, err := s.db.QueryContext(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("get splits: %w", err)
	}
	defer rows.Close()
	splits := make(core.SplitsInput)
	for rows.Next() {
		var (
			accountID int64
			amount    string
		)
		if err := rows.Scan(&accountID, &amount); err != nil {
			return nil, fmt.Errorf("scan split: %w", err)
		}
		account, err := s.GetAccount(ctx, accountID)
		if err != nil {
			return nil, err
		}
		splits[account] = amount
	}
	return splits, rows.Err()
}

func (s *SQLiteStore) queryIDs(ctx context.Context, query string, args ...any) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func insertAccountTx(ctx context.Context, tx *sql.Tx, a *core.Account) error {
	var parentID any
	if a.Parent != nil {
		parentID = a.Parent.ID
	}
	res, err := tx.ExecContext(ctx,
		`INSERT INTO accounts(type, user_id, name, parent_id) VALUES (?, ?, ?, ?)`,
		int(a.Type), nullString(a.UserID), a.Name, parentID)
	if err != nil {
		return fmt.Errorf("insert split account: %w", err)
	}
	if a.ID, err = res.LastInsertId(); err != nil {
		return fmt.Errorf("split account insert id: %w", err)
	}
	return nil
}

func requireRow(res sql.Result, entity string, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows affected: %w", entity, err)
	}
	if n == 0 {
		return fmt.Errorf("no %s with id %d", entity, id)
	}
	return nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullDecimal(d *decimal.Decimal) any {
	if d == nil {
		return nil
	}
	return d.String()
}

func cacheKey(id int64) string {
	return strconv.FormatInt(id, 10)
}
