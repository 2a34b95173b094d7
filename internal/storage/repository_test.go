package storage

import (
	"context"
	"path/filepath"
	"testing"

	"pft/internal/core"
)

func testStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "test.sqlite3"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func saveAccount(t *testing.T, store *SQLiteStore, typ core.AccountType, name string, parent *core.Account) *core.Account {
	t.Helper()
	a, err := core.NewAccount(core.AccountParams{Type: typ, Name: name, Parent: parent})
	if err != nil {
		t.Fatalf("new account: %v", err)
	}
	if err := store.SaveAccount(context.Background(), a); err != nil {
		t.Fatalf("save account: %v", err)
	}
	return a
}

func TestInMemoryStore(t *testing.T) {
	store, err := NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer store.Close()
	saveAccount(t, store, core.Asset, "Checking", nil)
}

func TestSaveAndGetAccount(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	assets := saveAccount(t, store, core.Asset, "All Assets", nil)
	checking, err := core.NewAccount(core.AccountParams{Type: core.Asset, UserID: "4010", Name: "Checking", Parent: assets})
	if err != nil {
		t.Fatalf("new account: %v", err)
	}
	if err := store.SaveAccount(ctx, checking); err != nil {
		t.Fatalf("save account: %v", err)
	}
	if checking.ID == 0 {
		t.Fatalf("id not assigned")
	}

	got, err := store.GetAccount(ctx, checking.ID)
	if err != nil {
		t.Fatalf("get account: %v", err)
	}
	if got.Name != "Checking" || got.UserID != "4010" || got.Type != core.Asset {
		t.Fatalf("got %+v", got)
	}
	if got.Parent == nil || got.Parent.ID != assets.ID {
		t.Fatalf("got parent %+v", got.Parent)
	}
}

func TestSaveAccountUpdate(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	a := saveAccount(t, store, core.Asset, "Checking", nil)
	id := a.ID
	a.Name = "Checking Renamed"
	if err := store.SaveAccount(ctx, a); err != nil {
		t.Fatalf("update: %v", err)
	}
	if a.ID != id {
		t.Fatalf("id changed on update")
	}
	got, err := store.GetAccount(ctx, id)
	if err != nil {
		t.Fatalf("get account: %v", err)
	}
	if got.Name != "Checking Renamed" {
		t.Fatalf("got %q", got.Name)
	}

	accounts, err := store.GetAccounts(ctx)
	if err != nil {
		t.Fatalf("get accounts: %v", err)
	}
	if len(accounts) != 1 {
		t.Fatalf("got %d accounts", len(accounts))
	}
}

func TestSaveAccountMissingID(t *testing.T) {
	store := testStore(t)
	a, err := core.NewAccount(core.AccountParams{ID: 999, Type: core.Asset, Name: "Ghost"})
	if err != nil {
		t.Fatalf("new account: %v", err)
	}
	if err := store.SaveAccount(context.Background(), a); err == nil {
		t.Fatalf("expected error updating a nonexistent row")
	}
}

func TestGetAccountsTypeFilter(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	saveAccount(t, store, core.Asset, "Checking", nil)
	food := saveAccount(t, store, core.Expense, "Food", nil)
	wages := saveAccount(t, store, core.Income, "Wages", nil)

	expenses, err := store.GetAccounts(ctx, core.Expense)
	if err != nil {
		t.Fatalf("get accounts: %v", err)
	}
	if len(expenses) != 1 || expenses[0].ID != food.ID {
		t.Fatalf("got %d accounts", len(expenses))
	}

	both, err := store.GetAccounts(ctx, core.Expense, core.Income)
	if err != nil {
		t.Fatalf("get accounts: %v", err)
	}
	if len(both) != 2 || both[1].ID != wages.ID {
		t.Fatalf("got %d accounts", len(both))
	}
}

func TestSavePayee(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	p := &core.Payee{Name: "Joe's Burgers"}
	if err := store.SavePayee(ctx, p); err != nil {
		t.Fatalf("save payee: %v", err)
	}
	if p.ID == 0 {
		t.Fatalf("id not assigned")
	}

	// name uniqueness is a storage-level constraint
	dup := &core.Payee{Name: "Joe's Burgers"}
	if err := store.SavePayee(ctx, dup); err == nil {
		t.Fatalf("expected uniqueness error")
	}
}

func TestSaveTxnRoundTrip(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	checking := saveAccount(t, store, core.Asset, "Checking", nil)
	food := saveAccount(t, store, core.Expense, "Food", nil)

	txn, err := core.NewTransaction(core.TransactionParams{
		Splits:      core.SplitsInput{checking: "-80.13", food: "80.13"},
		Date:        "2018-02-13",
		Type:        "ACH",
		Payee:       "Joe's Burgers",
		Description: "lunch",
		Status:      "C",
	})
	if err != nil {
		t.Fatalf("new txn: %v", err)
	}
	if err := store.SaveTxn(ctx, txn); err != nil {
		t.Fatalf("save txn: %v", err)
	}
	if txn.ID == 0 {
		t.Fatalf("id not assigned")
	}
	// the unsaved payee was persisted along the way
	if txn.Payee.ID == 0 {
		t.Fatalf("payee id not assigned")
	}

	got, err := store.GetTxn(ctx, txn.ID)
	if err != nil {
		t.Fatalf("get txn: %v", err)
	}
	if got.Date.String() != "2018-02-13" || got.Type != "ACH" || got.Description != "lunch" || got.Status != "C" {
		t.Fatalf("got %+v", got)
	}
	if got.Payee == nil || got.Payee.Name != "Joe's Burgers" {
		t.Fatalf("got payee %+v", got.Payee)
	}
	if len(got.Splits) != 2 {
		t.Fatalf("got %d splits", len(got.Splits))
	}
	for account, amount := range got.Splits {
		switch account.ID {
		case checking.ID:
			if amount.String() != "-80.13" {
				t.Fatalf("got %s", amount)
			}
		case food.ID:
			if amount.String() != "80.13" {
				t.Fatalf("got %s", amount)
			}
		default:
			t.Fatalf("unexpected account %d", account.ID)
		}
	}
}

func TestSaveTxnUpdateReplacesSplits(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	checking := saveAccount(t, store, core.Asset, "Checking", nil)
	food := saveAccount(t, store, core.Expense, "Food", nil)
	housing := saveAccount(t, store, core.Expense, "Housing", nil)

	txn, err := core.NewTransaction(core.TransactionParams{
		Splits: core.SplitsInput{checking: "-100", food: "100"},
		Date:   "2018-01-01",
	})
	if err != nil {
		t.Fatalf("new txn: %v", err)
	}
	if err := store.SaveTxn(ctx, txn); err != nil {
		t.Fatalf("save txn: %v", err)
	}

	if err := txn.UpdateValues(core.TransactionUpdate{
		Splits: core.SplitsInput{checking: "-100", food: "60", housing: "40"},
	}); err != nil {
		t.Fatalf("update values: %v", err)
	}
	if err := store.SaveTxn(ctx, txn); err != nil {
		t.Fatalf("resave txn: %v", err)
	}

	got, err := store.GetTxn(ctx, txn.ID)
	if err != nil {
		t.Fatalf("get txn: %v", err)
	}
	if len(got.Splits) != 3 {
		t.Fatalf("got %d splits", len(got.Splits))
	}
}

func TestDeleteTxnRemovesOnlyItsSplits(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	checking := saveAccount(t, store, core.Asset, "Checking", nil)
	food := saveAccount(t, store, core.Expense, "Food", nil)

	mk := func(date string) *core.Transaction {
		txn, err := core.NewTransaction(core.TransactionParams{
			Splits: core.SplitsInput{checking: "-10", food: "10"},
			Date:   date,
		})
		if err != nil {
			t.Fatalf("new txn: %v", err)
		}
		if err := store.SaveTxn(ctx, txn); err != nil {
			t.Fatalf("save txn: %v", err)
		}
		return txn
	}
	first := mk("2018-01-01")
	second := mk("2018-01-02")

	if err := store.DeleteTxn(ctx, first.ID); err != nil {
		t.Fatalf("delete txn: %v", err)
	}
	if _, err := store.GetTxn(ctx, first.ID); err == nil {
		t.Fatalf("expected error for deleted txn")
	}

	got, err := store.GetTxn(ctx, second.ID)
	if err != nil {
		t.Fatalf("get txn: %v", err)
	}
	if len(got.Splits) != 2 {
		t.Fatalf("got %d splits", len(got.Splits))
	}

	if err := store.DeleteTxn(ctx, first.ID); err == nil {
		t.Fatalf("expected error deleting twice")
	}
}

func TestGetLedger(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	checking := saveAccount(t, store, core.Asset, "Checking", nil)
	savings := saveAccount(t, store, core.Asset, "Savings", nil)
	food := saveAccount(t, store, core.Expense, "Food", nil)

	mk := func(date string, splits core.SplitsInput) {
		txn, err := core.NewTransaction(core.TransactionParams{Splits: splits, Date: date})
		if err != nil {
			t.Fatalf("new txn: %v", err)
		}
		if err := store.SaveTxn(ctx, txn); err != nil {
			t.Fatalf("save txn: %v", err)
		}
	}
	mk("2018-01-02", core.SplitsInput{checking: "-20", food: "20"})
	mk("2018-01-01", core.SplitsInput{checking: "-10", food: "10"})
	// touches other accounts only, must not appear in checking's ledger
	mk("2018-01-03", core.SplitsInput{savings: "-5", food: "5"})

	st, err := core.NewScheduledTransaction(core.ScheduledTransactionParams{
		Name:        "rent",
		Frequency:   core.Monthly,
		Splits:      core.SplitsInput{checking: "-100", food: "100"},
		NextDueDate: "2018-01-01",
	})
	if err != nil {
		t.Fatalf("new scheduled: %v", err)
	}
	if err := store.SaveScheduledTransaction(ctx, st); err != nil {
		t.Fatalf("save scheduled: %v", err)
	}

	ledger, err := store.GetLedger(ctx, checking)
	if err != nil {
		t.Fatalf("get ledger: %v", err)
	}
	sorted := ledger.SortedTxnsWithBalance()
	if len(sorted) != 2 {
		t.Fatalf("got %d txns", len(sorted))
	}
	if sorted[0].Date.String() != "2018-01-01" || sorted[1].Date.String() != "2018-01-02" {
		t.Fatalf("got dates %s %s", sorted[0].Date, sorted[1].Date)
	}
	if sorted[1].Balance.String() != "-30" {
		t.Fatalf("got balance %s", sorted[1].Balance)
	}
	due := ledger.ScheduledTransactionsDue(core.NewDate(2018, 1, 1))
	if len(due) != 1 || due[0].Name != "rent" {
		t.Fatalf("got %d due", len(due))
	}
}

func TestScheduledTransactionRoundTrip(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	checking := saveAccount(t, store, core.Asset, "Checking", nil)
	housing := saveAccount(t, store, core.Expense, "Housing", nil)

	st, err := core.NewScheduledTransaction(core.ScheduledTransactionParams{
		Name:        "rent",
		Frequency:   core.Monthly,
		Splits:      core.SplitsInput{checking: "-100", housing: "100"},
		NextDueDate: "2019-01-02",
		Type:        "auto",
		Payee:       "Landlord",
		Description: "monthly rent",
	})
	if err != nil {
		t.Fatalf("new scheduled: %v", err)
	}
	if err := store.SaveScheduledTransaction(ctx, st); err != nil {
		t.Fatalf("save scheduled: %v", err)
	}

	got, err := store.GetScheduledTransaction(ctx, st.ID)
	if err != nil {
		t.Fatalf("get scheduled: %v", err)
	}
	if got.Name != "rent" || got.Frequency != core.Monthly || got.NextDueDate.String() != "2019-01-02" {
		t.Fatalf("got %+v", got)
	}
	if got.Payee == nil || got.Payee.Name != "Landlord" {
		t.Fatalf("got payee %+v", got.Payee)
	}

	// firing advances the cursor; re-save persists it
	got.NextTxnEntered()
	if err := store.SaveScheduledTransaction(ctx, got); err != nil {
		t.Fatalf("resave scheduled: %v", err)
	}
	again, err := store.GetScheduledTransaction(ctx, st.ID)
	if err != nil {
		t.Fatalf("get scheduled: %v", err)
	}
	if again.NextDueDate.String() != "2019-02-02" {
		t.Fatalf("got %s", again.NextDueDate)
	}

	all, err := store.GetScheduledTransactions(ctx)
	if err != nil {
		t.Fatalf("get scheduled transactions: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("got %d", len(all))
	}
}

func TestBudgetRoundTripWithActuals(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	checking := saveAccount(t, store, core.Asset, "Checking", nil)
	housing := saveAccount(t, store, core.Expense, "Housing", nil)
	food := saveAccount(t, store, core.Expense, "Food", nil)
	transportation := saveAccount(t, store, core.Expense, "Transportation", nil)
	wages := saveAccount(t, store, core.Income, "Wages", nil)

	budget, err := core.NewBudget(core.BudgetParams{
		Year: 2018,
		AccountBudgetInfo: map[*core.Account]core.BudgetInfoInput{
			housing: {Amount: 135, Notes: "hello"},
			food:    {Amount: 70, Carryover: 15},
		},
	})
	if err != nil {
		t.Fatalf("new budget: %v", err)
	}
	if err := store.SaveBudget(ctx, budget); err != nil {
		t.Fatalf("save budget: %v", err)
	}
	if budget.ID == 0 {
		t.Fatalf("id not assigned")
	}

	mk := func(date string, splits core.SplitsInput) {
		txn, err := core.NewTransaction(core.TransactionParams{Splits: splits, Date: date})
		if err != nil {
			t.Fatalf("new txn: %v", err)
		}
		if err := store.SaveTxn(ctx, txn); err != nil {
			t.Fatalf("save txn: %v", err)
		}
	}
	mk("2018-02-01", core.SplitsInput{checking: "-101", housing: "101"})
	mk("2018-03-01", core.SplitsInput{checking: "-102.46", food: "102.46"})
	// income posted against the food account reduces its net spending
	mk("2018-03-02", core.SplitsInput{checking: "15", food: "-15"})
	// outside the budget period, must not count
	mk("2019-01-01", core.SplitsInput{checking: "-500", housing: "500"})

	got, err := store.GetBudget(ctx, budget.ID)
	if err != nil {
		t.Fatalf("get budget: %v", err)
	}
	if got.StartDate.String() != "2018-01-01" || got.EndDate.String() != "2018-12-31" {
		t.Fatalf("got %s %s", got.StartDate, got.EndDate)
	}

	data := got.GetBudgetData()
	// every expense and income account is enumerated
	if len(data) != 4 {
		t.Fatalf("got %d accounts", len(data))
	}

	report, err := got.GetReportDisplay()
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	var housingFields, foodFields, transportationFields map[string]string
	for account, fields := range report.Expense {
		switch account.ID {
		case housing.ID:
			housingFields = fields
		case food.ID:
			foodFields = fields
		case transportation.ID:
			transportationFields = fields
		}
	}
	if housingFields["amount"] != "135" || housingFields["spent"] != "101" || housingFields["notes"] != "hello" {
		t.Fatalf("housing: got %v", housingFields)
	}
	if foodFields["amount"] != "70" || foodFields["carryover"] != "15" ||
		foodFields["income"] != "15" || foodFields["spent"] != "102.46" {
		t.Fatalf("food: got %v", foodFields)
	}
	if len(transportationFields) != 0 {
		t.Fatalf("transportation: got %v", transportationFields)
	}
	var wagesFields map[string]string
	for account, fields := range report.Income {
		if account.ID == wages.ID {
			wagesFields = fields
		}
	}
	if len(wagesFields) != 0 {
		t.Fatalf("wages: got %v", wagesFields)
	}
}

func TestSaveBudgetUpdate(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	housing := saveAccount(t, store, core.Expense, "Housing", nil)
	budget, err := core.NewBudget(core.BudgetParams{
		Year: 2018,
		AccountBudgetInfo: map[*core.Account]core.BudgetInfoInput{
			housing: {Amount: 100},
		},
	})
	if err != nil {
		t.Fatalf("new budget: %v", err)
	}
	if err := store.SaveBudget(ctx, budget); err != nil {
		t.Fatalf("save budget: %v", err)
	}
	id := budget.ID

	updated, err := core.NewBudget(core.BudgetParams{
		ID:        id,
		StartDate: "2018-01-01",
		EndDate:   "2018-12-24",
		AccountBudgetInfo: map[*core.Account]core.BudgetInfoInput{
			housing: {Amount: 200},
		},
	})
	if err != nil {
		t.Fatalf("new budget: %v", err)
	}
	if err := store.SaveBudget(ctx, updated); err != nil {
		t.Fatalf("update budget: %v", err)
	}

	budgets, err := store.GetBudgets(ctx)
	if err != nil {
		t.Fatalf("get budgets: %v", err)
	}
	if len(budgets) != 1 {
		t.Fatalf("got %d budgets", len(budgets))
	}
	if budgets[0].EndDate.String() != "2018-12-24" {
		t.Fatalf("got %s", budgets[0].EndDate)
	}
	var amount string
	for account, info := range budgets[0].GetBudgetData() {
		if account.ID == housing.ID && info.Amount != nil {
			amount = info.Amount.String()
		}
	}
	if amount != "200" {
		t.Fatalf("got amount %q", amount)
	}
}

func TestGetBudgetsMostRecentFirst(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	saveAccount(t, store, core.Expense, "Housing", nil)

	for _, year := range []any{2018, 2019} {
		b, err := core.NewBudget(core.BudgetParams{Year: year})
		if err != nil {
			t.Fatalf("new budget: %v", err)
		}
		if err := store.SaveBudget(ctx, b); err != nil {
			t.Fatalf("save budget: %v", err)
		}
	}

	budgets, err := store.GetBudgets(ctx)
	if err != nil {
		t.Fatalf("get budgets: %v", err)
	}
	if len(budgets) != 2 {
		t.Fatalf("got %d budgets", len(budgets))
	}
	// distinct budgets, most recent period first
	if budgets[0].StartDate.String() != "2019-01-01" || budgets[1].StartDate.String() != "2018-01-01" {
		t.Fatalf("got %s, %s", budgets[0].StartDate, budgets[1].StartDate)
	}
	if budgets[0].ID == budgets[1].ID {
		t.Fatalf("expected distinct budgets")
	}
}
