package core

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestNewBudgetDates(t *testing.T) {
	if _, err := NewBudget(BudgetParams{}); err == nil || err.Error() != "must pass in dates" {
		t.Fatalf("got %v", err)
	}

	b, err := NewBudget(BudgetParams{Year: 2018})
	if err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if b.StartDate.String() != "2018-01-01" || b.EndDate.String() != "2018-12-31" {
		t.Fatalf("got %s %s", b.StartDate, b.EndDate)
	}

	b, err = NewBudget(BudgetParams{Year: "2018"})
	if err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if b.StartDate.String() != "2018-01-01" {
		t.Fatalf("got %s", b.StartDate)
	}

	b, err = NewBudget(BudgetParams{StartDate: "2018-01-15", EndDate: "2019-01-14"})
	if err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if b.StartDate.String() != "2018-01-15" || b.EndDate.String() != "2019-01-14" {
		t.Fatalf("got %s %s", b.StartDate, b.EndDate)
	}
}

func TestGetBudgetData(t *testing.T) {
	housing := testAccount(1, Expense, "Housing")
	food := testAccount(2, Expense, "Food")
	transportation := testAccount(3, Expense, "Transportation")
	rent := testAccount(4, Expense, "Rent")

	b, err := NewBudget(BudgetParams{
		Year: 2018,
		AccountBudgetInfo: map[*Account]BudgetInfoInput{
			housing:        {Amount: 15, Carryover: 5, Notes: "some important info"},
			food:           {Amount: "35", Carryover: "0"},
			transportation: {},
			rent:           {Amount: decimal.Zero, Notes: ""},
		},
	})
	if err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	data := b.GetBudgetData()
	if len(data) != 4 {
		t.Fatalf("got %d accounts", len(data))
	}
	h := data[housing]
	if h.Amount.String() != "15" || h.Carryover.String() != "5" || h.Notes != "some important info" {
		t.Fatalf("got %+v", h)
	}
	f := data[food]
	if f.Amount.String() != "35" {
		t.Fatalf("got %+v", f)
	}
	// an explicit zero carryover is kept
	if f.Carryover == nil || !f.Carryover.IsZero() {
		t.Fatalf("got carryover %v", f.Carryover)
	}
	tr := data[transportation]
	if tr.Amount != nil || tr.Carryover != nil || tr.Notes != "" {
		t.Fatalf("got %+v", tr)
	}
	re := data[rent]
	if re.Amount == nil || !re.Amount.IsZero() || re.Carryover != nil || re.Notes != "" {
		t.Fatalf("got %+v", re)
	}
}

func TestRoundPercentAvailable(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"1.1", "1"},
		{"1.8", "2"},
		{"1.5", "2"},
		{"2.5", "3"},
		{"-2.5", "-3"},
	}
	for i, tc := range cases {
		got := RoundPercentAvailable(decimal.RequireFromString(tc.in))
		if got.String() != tc.want {
			t.Fatalf("case %d got %s, want %s", i, got, tc.want)
		}
	}
}

func TestGetReportDisplay(t *testing.T) {
	housing := testAccount(1, Expense, "Housing")
	food := testAccount(2, Expense, "Food")
	transportation := testAccount(3, Expense, "Transportation")
	something := testAccount(4, Expense, "Something")
	wages := testAccount(5, Income, "Wages")
	interest := testAccount(6, Income, "Interest")

	info := map[*Account]BudgetInfoInput{
		housing:        {Amount: 15, Carryover: 5},
		food:           {},
		transportation: {Amount: 10},
		something:      {Amount: decimal.Zero},
		wages:          {Amount: 100, Notes: "note 1"},
		interest:       {},
	}

	noSpending, err := NewBudget(BudgetParams{Year: 2018, AccountBudgetInfo: info})
	if err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if _, err := noSpending.GetReportDisplay(); err == nil ||
		err.Error() != "must pass in income_spending_info to get the report display" {
		t.Fatalf("got %v", err)
	}

	b, err := NewBudget(BudgetParams{
		Year:              2018,
		AccountBudgetInfo: info,
		IncomeSpendingInfo: map[*Account]SpendingInput{
			housing: {Income: 5, Spent: 10},
			food:    {Income: ""},
			wages:   {Income: 80},
		},
	})
	if err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	report, err := b.GetReportDisplay()
	if err != nil {
		t.Fatalf("report: %v", err)
	}

	h := report.Expense[housing]
	want := map[string]string{
		"amount":            "15",
		"carryover":         "5",
		"income":            "5",
		"total_budget":      "25",
		"spent":             "10",
		"remaining":         "15",
		"percent_available": "60%",
	}
	for k, v := range want {
		if h[k] != v {
			t.Fatalf("housing %s: got %q, want %q", k, h[k], v)
		}
	}

	if f := report.Expense[food]; len(f) != 0 {
		t.Fatalf("food: got %v", f)
	}

	tr := report.Expense[transportation]
	wantTr := map[string]string{
		"amount":            "10",
		"total_budget":      "10",
		"remaining":         "10",
		"percent_available": "100%",
	}
	if len(tr) != len(wantTr) {
		t.Fatalf("transportation: got %v", tr)
	}
	for k, v := range wantTr {
		if tr[k] != v {
			t.Fatalf("transportation %s: got %q, want %q", k, tr[k], v)
		}
	}

	w := report.Income[wages]
	wantW := map[string]string{
		"amount":            "100",
		"income":            "80",
		"remaining":         "20",
		"remaining_percent": "80%",
		"notes":             "note 1",
	}
	if len(w) != len(wantW) {
		t.Fatalf("wages: got %v", w)
	}
	for k, v := range wantW {
		if w[k] != v {
			t.Fatalf("wages %s: got %q, want %q", k, w[k], v)
		}
	}

	if in := report.Income[interest]; len(in) != 0 {
		t.Fatalf("interest: got %v", in)
	}
}

func TestGetReportDisplayZeroBudget(t *testing.T) {
	something := testAccount(1, Expense, "Something")
	b, err := NewBudget(BudgetParams{
		Year:               2018,
		AccountBudgetInfo:  map[*Account]BudgetInfoInput{something: {Amount: decimal.Zero}},
		IncomeSpendingInfo: map[*Account]SpendingInput{},
	})
	if err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	report, err := b.GetReportDisplay()
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	fields := report.Expense[something]
	// division is guarded when the whole budget is zero
	if _, ok := fields["percent_available"]; ok {
		t.Fatalf("got %v", fields)
	}
	if fields["total_budget"] != "0" || fields["remaining"] != "0" {
		t.Fatalf("got %v", fields)
	}
}
