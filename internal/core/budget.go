package core

import (
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
)

// BudgetInfo is one account's configured budget: any field may be absent,
// and absence is meaningful (it is dropped from storage and reports, not
// zeroed).
type BudgetInfo struct {
	Amount    *decimal.Decimal
	Carryover *decimal.Decimal
	Notes     string
}

// BudgetInfoInput is the loose form of BudgetInfo: amounts may be
// decimals, ints, or strings, and nil means absent.
type BudgetInfoInput struct {
	Amount    any
	Carryover any
	Notes     string
}

// SpendingInput carries the actual income/spent figures for one account
// over the budget period. Values normalize like amounts; nil or empty
// string means zero.
type SpendingInput struct {
	Income any
	Spent  any
}

type spending struct {
	income decimal.Decimal
	spent  decimal.Decimal
}

// Budget holds per-account target amounts for one period. The actual
// income/spending figures are supplied externally (by storage, which can
// see the period's splits); reports cannot be generated without them.
type Budget struct {
	ID        int64
	Name      string
	StartDate Date
	EndDate   Date
	info      map[*Account]BudgetInfo
	spending  map[*Account]spending
}

type BudgetParams struct {
	ID                 int64
	Name               string
	Year               any
	StartDate          any
	EndDate            any
	AccountBudgetInfo  map[*Account]BudgetInfoInput
	IncomeSpendingInfo map[*Account]SpendingInput
}

func NewBudget(p BudgetParams) (*Budget, error) {
	start, end, err := budgetDates(p)
	if err != nil {
		return nil, err
	}
	info := make(map[*Account]BudgetInfo, len(p.AccountBudgetInfo))
	for account, raw := range p.AccountBudgetInfo {
		normalized, err := normalizeBudgetInfo(raw)
		if err != nil {
			return nil, err
		}
		info[account] = normalized
	}
	b := &Budget{
		ID:        p.ID,
		Name:      p.Name,
		StartDate: start,
		EndDate:   end,
		info:      info,
	}
	if p.IncomeSpendingInfo != nil {
		b.spending = make(map[*Account]spending, len(p.IncomeSpendingInfo))
		for account, raw := range p.IncomeSpendingInfo {
			sp, err := normalizeSpending(raw)
			if err != nil {
				return nil, err
			}
			b.spending[account] = sp
		}
	}
	return b, nil
}

func budgetDates(p BudgetParams) (Date, Date, error) {
	if p.StartDate != nil && p.EndDate != nil {
		start, err := ParseDate(p.StartDate)
		if err != nil {
			return Date{}, Date{}, BudgetError(err.Error())
		}
		end, err := ParseDate(p.EndDate)
		if err != nil {
			return Date{}, Date{}, BudgetError(err.Error())
		}
		return start, end, nil
	}
	if p.Year != nil {
		year, err := budgetYear(p.Year)
		if err != nil {
			return Date{}, Date{}, err
		}
		return NewDate(year, 1, 1), NewDate(year, 12, 31), nil
	}
	return Date{}, Date{}, BudgetError("must pass in dates")
}

func budgetYear(v any) (int, error) {
	switch x := v.(type) {
	case int:
		return x, nil
	case string:
		if year, err := strconv.Atoi(x); err == nil {
			return year, nil
		}
	}
	return 0, BudgetError(fmt.Sprintf("invalid year \"%v\"", v))
}

// normalizeBudgetInfo keeps only the fields actually supplied: a nil or
// empty amount stays absent, an explicit zero is kept.
func normalizeBudgetInfo(raw BudgetInfoInput) (BudgetInfo, error) {
	var info BudgetInfo
	amount, err := optionalAmount(raw.Amount)
	if err != nil {
		return BudgetInfo{}, err
	}
	info.Amount = amount
	carryover, err := optionalAmount(raw.Carryover)
	if err != nil {
		return BudgetInfo{}, err
	}
	info.Carryover = carryover
	info.Notes = raw.Notes
	return info, nil
}

func optionalAmount(v any) (*decimal.Decimal, error) {
	if v == nil {
		return nil, nil
	}
	if s, ok := v.(string); ok && s == "" {
		return nil, nil
	}
	amt, err := ParseAmount(v)
	if err != nil {
		return nil, BudgetError(err.Error())
	}
	return &amt, nil
}

func normalizeSpending(raw SpendingInput) (spending, error) {
	var sp spending
	if income, err := optionalAmount(raw.Income); err != nil {
		return spending{}, err
	} else if income != nil {
		sp.income = *income
	}
	if spent, err := optionalAmount(raw.Spent); err != nil {
		return spending{}, err
	} else if spent != nil {
		sp.spent = *spent
	}
	return sp, nil
}

// GetBudgetData returns each account's populated budget fields. Accounts
// configured with an empty record stay present, mapped to an empty
// BudgetInfo.
func (b *Budget) GetBudgetData() map[*Account]BudgetInfo {
	data := make(map[*Account]BudgetInfo, len(b.info))
	for account, info := range b.info {
		data[account] = info
	}
	return data
}

// RoundPercentAvailable rounds half away from zero: 1.5 -> 2, 2.5 -> 3.
func RoundPercentAvailable(d decimal.Decimal) decimal.Decimal {
	return d.Round(0)
}

// BudgetReport partitions the budgeted accounts by type. Every account
// appears; ones with nothing to report map to an empty record.
type BudgetReport struct {
	Expense map[*Account]map[string]string
	Income  map[*Account]map[string]string
}

// GetReportDisplay merges the configured budget with the actual
// income/spending figures into display strings.
func (b *Budget) GetReportDisplay() (*BudgetReport, error) {
	if b.spending == nil {
		return nil, BudgetError("must pass in income_spending_info to get the report display")
	}
	report := &BudgetReport{
		Expense: make(map[*Account]map[string]string),
		Income:  make(map[*Account]map[string]string),
	}
	for account, info := range b.info {
		sp := b.spending[account]
		switch account.Type {
		case Expense:
			report.Expense[account] = expenseReportFields(info, sp)
		case Income:
			report.Income[account] = incomeReportFields(info, sp)
		}
	}
	return report, nil
}

func expenseReportFields(info BudgetInfo, sp spending) map[string]string {
	fields := make(map[string]string)
	amount := decimal.Zero
	if info.Amount != nil {
		amount = *info.Amount
		fields["amount"] = amount.String()
	}
	carryover := decimal.Zero
	if info.Carryover != nil && !info.Carryover.IsZero() {
		carryover = *info.Carryover
		fields["carryover"] = carryover.String()
	}
	if !sp.income.IsZero() {
		fields["income"] = sp.income.String()
	}
	if len(fields) == 0 {
		return fields
	}
	total := amount.Add(carryover).Add(sp.income)
	fields["total_budget"] = total.String()
	if !sp.spent.IsZero() {
		fields["spent"] = sp.spent.String()
	}
	remaining := total.Sub(sp.spent)
	fields["remaining"] = remaining.String()
	if !total.IsZero() {
		percent := RoundPercentAvailable(remaining.Mul(decimal.NewFromInt(100)).Div(total))
		fields["percent_available"] = percent.String() + "%"
	}
	if info.Notes != "" {
		fields["notes"] = info.Notes
	}
	return fields
}

func incomeReportFields(info BudgetInfo, sp spending) map[string]string {
	fields := make(map[string]string)
	amount := decimal.Zero
	if info.Amount != nil {
		amount = *info.Amount
		fields["amount"] = amount.String()
	}
	if !sp.income.IsZero() {
		fields["income"] = sp.income.String()
	}
	if len(fields) == 0 {
		return fields
	}
	fields["remaining"] = amount.Sub(sp.income).String()
	if !amount.IsZero() {
		percent := RoundPercentAvailable(sp.income.Mul(decimal.NewFromInt(100)).Div(amount))
		fields["remaining_percent"] = percent.String() + "%"
	}
	if info.Notes != "" {
		fields["notes"] = info.Notes
	}
	return fields
}
