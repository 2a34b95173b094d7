// Command pft-loaddata seeds a database with a realistic book: an
// account tree, a year of transactions, two scheduled transactions and a
// budget. Meant for development and UI testing.
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"

	"pft/internal/cli"
	"pft/internal/core"
	"pft/internal/log"
	"pft/internal/storage"
)

const defaultFileName = "data.sqlite3"

func main() {
	fileName := flag.String("f", defaultFileName, "database file to seed")
	manyTxns := flag.Bool("many", false, "add 1000 random transactions")
	flag.Parse()

	cli.LoadEnvFile()
	logCfg := log.DefaultConfig()
	logCfg.Component = "pft-loaddata"
	logger := log.New(logCfg)
	log.SetDefault(logger)

	store := cli.InitStore(logger, *fileName)
	defer store.Close()

	if err := loadData(context.Background(), store, *manyTxns); err != nil {
		logger.Error("seeding failed", "error", err)
		os.Exit(1)
	}
	logger.Info("database seeded", "file", *fileName)
}

func loadData(ctx context.Context, store *storage.SQLiteStore, manyTxns bool) error {
	mustAccount := func(typ core.AccountType, userID, name string, parent *core.Account) (*core.Account, error) {
		a, err := core.NewAccount(core.AccountParams{Type: typ, UserID: userID, Name: name, Parent: parent})
		if err != nil {
			return nil, err
		}
		if err := store.SaveAccount(ctx, a); err != nil {
			return nil, err
		}
		return a, nil
	}

	openingBalances, err := mustAccount(core.Equity, "", "Opening Balances", nil)
	if err != nil {
		return err
	}
	checking, err := mustAccount(core.Asset, "", "Checking", nil)
	if err != nil {
		return err
	}
	savings, err := mustAccount(core.Asset, "", "Saving", nil)
	if err != nil {
		return err
	}
	if _, err := mustAccount(core.Liability, "", "Mortgage", nil); err != nil {
		return err
	}
	if _, err := mustAccount(core.Liability, "", "Credit Card", nil); err != nil {
		return err
	}

	food, err := mustAccount(core.Expense, "300", "Food", nil)
	if err != nil {
		return err
	}
	restaurants, err := mustAccount(core.Expense, "310", "Restaurants", food)
	if err != nil {
		return err
	}
	transportation, err := mustAccount(core.Expense, "400", "Transportation", nil)
	if err != nil {
		return err
	}
	gasStations, err := mustAccount(core.Expense, "410", "Gas Stations", transportation)
	if err != nil {
		return err
	}
	if _, err := mustAccount(core.Expense, "420", "Car Insurance", transportation); err != nil {
		return err
	}
	housing, err := mustAccount(core.Expense, "500", "Housing", nil)
	if err != nil {
		return err
	}
	if _, err := mustAccount(core.Expense, "510", "Rent", housing); err != nil {
		return err
	}
	if _, err := mustAccount(core.Expense, "520", "Mortgage Interest", housing); err != nil {
		return err
	}
	if _, err := mustAccount(core.Expense, "600", "Medical", nil); err != nil {
		return err
	}
	taxes, err := mustAccount(core.Expense, "700", "Taxes", nil)
	if err != nil {
		return err
	}

	payee := &core.Payee{Name: "Joe's Burgers"}
	if err := store.SavePayee(ctx, payee); err != nil {
		return err
	}

	saveTxn := func(date string, splits core.SplitsInput, opts ...func(*core.TransactionParams)) error {
		params := core.TransactionParams{Splits: splits, Date: date}
		for _, opt := range opts {
			opt(&params)
		}
		t, err := core.NewTransaction(params)
		if err != nil {
			return err
		}
		return store.SaveTxn(ctx, t)
	}

	txns := []struct {
		date   string
		splits core.SplitsInput
	}{
		{"2018-01-01", core.SplitsInput{openingBalances: "-1000", checking: 1000}},
		{"2018-01-01", core.SplitsInput{openingBalances: "-1000", savings: 1000}},
		{"2018-01-02", core.SplitsInput{checking: "-20", restaurants: 20}},
		{"2018-01-04", core.SplitsInput{checking: "-30", restaurants: 30}},
		{"2018-01-06", core.SplitsInput{checking: "-40", restaurants: 40}},
		{"2018-01-07", core.SplitsInput{checking: "-50", restaurants: 50}},
		{"2018-01-08", core.SplitsInput{checking: "-60", restaurants: 60}},
		{"2018-01-09", core.SplitsInput{checking: "100", savings: "-100"}},
		{"2018-01-10", core.SplitsInput{checking: "-70", restaurants: 70}},
		{"2018-01-11", core.SplitsInput{checking: "-80", restaurants: 80}},
		{"2018-02-11", core.SplitsInput{checking: "-90", restaurants: 90}},
		{"2018-02-12", core.SplitsInput{checking: "-180", housing: 180}},
		{"2018-02-13", core.SplitsInput{checking: "80.13", savings: "-80.13"}},
		{"2018-02-14", core.SplitsInput{checking: "-50", gasStations: 50}},
		{"2018-02-15", core.SplitsInput{checking: "-70", gasStations: 40, restaurants: 30}},
		{"2018-02-16", core.SplitsInput{checking: "-10", gasStations: 10}},
		{"2018-02-17", core.SplitsInput{checking: "-20", gasStations: 20}},
		{"2018-02-18", core.SplitsInput{checking: "-40", gasStations: 40}},
		{"2018-02-19", core.SplitsInput{checking: "-30", gasStations: 30}},
		{"2018-02-21", core.SplitsInput{checking: "-50", gasStations: 50}},
		{"2018-02-23", core.SplitsInput{checking: "-70", gasStations: 70}},
		{"2018-02-24", core.SplitsInput{checking: "-90", gasStations: 90}},
		{"2018-02-25", core.SplitsInput{checking: "40", savings: "-40"}},
	}
	if err := saveTxn("2018-01-01", core.SplitsInput{checking: "-10", restaurants: 10},
		func(p *core.TransactionParams) {
			p.Type = "123"
			p.Payee = payee
		}); err != nil {
		return err
	}
	for _, txn := range txns {
		if err := saveTxn(txn.date, txn.splits); err != nil {
			return err
		}
	}

	if manyTxns {
		for i := 0; i < 1000; i++ {
			amt := rand.Intn(500) + 1
			day := rand.Intn(30) + 1
			date := fmt.Sprintf("2018-04-%02d", day)
			if err := saveTxn(date, core.SplitsInput{checking: -amt, restaurants: amt}); err != nil {
				return err
			}
		}
	}

	rent, err := core.NewScheduledTransaction(core.ScheduledTransactionParams{
		Name:        "rent",
		Frequency:   core.Monthly,
		Splits:      core.SplitsInput{checking: -100, housing: 100},
		NextDueDate: core.Today().AddDays(-1),
	})
	if err != nil {
		return err
	}
	if err := store.SaveScheduledTransaction(ctx, rent); err != nil {
		return err
	}
	taxesScheduled, err := core.NewScheduledTransaction(core.ScheduledTransactionParams{
		Name:        "taxes",
		Frequency:   core.Annually,
		Splits:      core.SplitsInput{checking: -25, taxes: 25},
		NextDueDate: core.Today().AddDays(1),
	})
	if err != nil {
		return err
	}
	if err := store.SaveScheduledTransaction(ctx, taxesScheduled); err != nil {
		return err
	}

	budget, err := core.NewBudget(core.BudgetParams{
		Name: "2018",
		Year: 2018,
		AccountBudgetInfo: map[*core.Account]core.BudgetInfoInput{
			restaurants: {Amount: 500, Carryover: 0},
			gasStations: {Amount: 450, Carryover: 10},
			housing:     {Amount: 200, Carryover: 0},
		},
	})
	if err != nil {
		return err
	}
	return store.SaveBudget(ctx, budget)
}
