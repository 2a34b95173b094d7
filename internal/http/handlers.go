package http

import (
	"net/http"
	"strconv"

	"pft/internal/core"
)

type accountPayload struct {
	ID       int64  `json:"id"`
	Type     string `json:"type"`
	UserID   string `json:"user_id,omitempty"`
	Name     string `json:"name"`
	ParentID int64  `json:"parent_id,omitempty"`
	Display  string `json:"display"`
}

func renderAccount(a *core.Account) accountPayload {
	p := accountPayload{
		ID:      a.ID,
		Type:    a.Type.String(),
		UserID:  a.UserID,
		Name:    a.Name,
		Display: a.String(),
	}
	if a.Parent != nil {
		p.ParentID = a.Parent.ID
	}
	return p
}

func (s *Server) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	var types []core.AccountType
	if filter := r.URL.Query().Get("type"); filter != "" {
		t, err := core.ParseAccountType(filter)
		if err != nil {
			writeError(w, r, err)
			return
		}
		types = append(types, t)
	}
	accounts, err := s.store.GetAccounts(r.Context(), types...)
	if err != nil {
		writeError(w, r, err)
		return
	}
	payload := make([]accountPayload, 0, len(accounts))
	for _, a := range accounts {
		payload = append(payload, renderAccount(a))
	}
	writeJSON(w, http.StatusOK, payload)
}

type accountRequest struct {
	Type     string `json:"type"`
	UserID   string `json:"user_id"`
	Name     string `json:"name"`
	ParentID int64  `json:"parent_id"`
}

func (s *Server) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	var req accountRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	params := core.AccountParams{UserID: req.UserID, Name: req.Name}
	if req.Type != "" {
		params.Type = req.Type
	}
	if req.ParentID != 0 {
		parent, err := s.store.GetAccount(r.Context(), req.ParentID)
		if err != nil {
			writeNotFound(w, r, err)
			return
		}
		params.Parent = parent
	}
	account, err := core.NewAccount(params)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.store.SaveAccount(r.Context(), account); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, renderAccount(account))
}

func (s *Server) handleGetAccount(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	account, err := s.store.GetAccount(r.Context(), id)
	if err != nil {
		writeNotFound(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, renderAccount(account))
}

type ledgerRow struct {
	ID          int64  `json:"id"`
	Type        string `json:"txn_type,omitempty"`
	Date        string `json:"txn_date"`
	Payee       string `json:"payee,omitempty"`
	Description string `json:"description,omitempty"`
	Status      string `json:"status,omitempty"`
	Deposit     string `json:"deposit,omitempty"`
	Withdrawal  string `json:"withdrawal,omitempty"`
	Categories  string `json:"categories,omitempty"`
	Balance     string `json:"balance,omitempty"`
}

func renderLedgerRow(t *core.Transaction, account *core.Account) ledgerRow {
	ds := t.DisplayStrings(account)
	return ledgerRow{
		ID:          t.ID,
		Type:        ds.Type,
		Date:        ds.Date,
		Payee:       ds.Payee,
		Description: ds.Description,
		Status:      ds.Status,
		Deposit:     ds.Deposit,
		Withdrawal:  ds.Withdrawal,
		Categories:  ds.Categories,
	}
}

type ledgerResponse struct {
	Account      accountPayload `json:"account"`
	Txns         []ledgerRow    `json:"txns"`
	ScheduledDue []scheduledRow `json:"scheduled_due,omitempty"`
}

// handleLedger renders the account's sorted transactions with running
// balances, or just the matching ones when a search query is given.
func (s *Server) handleLedger(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	account, err := s.store.GetAccount(r.Context(), id)
	if err != nil {
		writeNotFound(w, r, err)
		return
	}
	ledger, err := s.store.GetLedger(r.Context(), account)
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := ledgerResponse{Account: renderAccount(account), Txns: []ledgerRow{}}
	if query := r.URL.Query().Get("q"); query != "" {
		for _, t := range ledger.SearchTxns(query) {
			resp.Txns = append(resp.Txns, renderLedgerRow(t, account))
		}
	} else {
		for _, twb := range ledger.SortedTxnsWithBalance() {
			row := renderLedgerRow(twb.Transaction, account)
			row.Balance = twb.Balance.String()
			resp.Txns = append(resp.Txns, row)
		}
		for _, st := range ledger.ScheduledTransactionsDue(core.Today()) {
			resp.ScheduledDue = append(resp.ScheduledDue, renderScheduled(st))
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

type payeePayload struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

func (s *Server) handleListPayees(w http.ResponseWriter, r *http.Request) {
	payees, err := s.store.GetPayees(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	payload := make([]payeePayload, 0, len(payees))
	for _, p := range payees {
		payload = append(payload, payeePayload{ID: p.ID, Name: p.Name})
	}
	writeJSON(w, http.StatusOK, payload)
}

type transactionRequest struct {
	Splits      map[string]string `json:"splits"`
	Date        string            `json:"txn_date"`
	Type        string            `json:"txn_type"`
	Payee       string            `json:"payee"`
	Description string            `json:"description"`
	Status      string            `json:"status"`
}

func (s *Server) resolveSplits(r *http.Request, raw map[string]string) (core.SplitsInput, error) {
	splits := make(core.SplitsInput, len(raw))
	for accountID, amount := range raw {
		id, err := strconv.ParseInt(accountID, 10, 64)
		if err != nil {
			return nil, core.InvalidTransactionError("invalid split account id \"" + accountID + "\"")
		}
		account, err := s.store.GetAccount(r.Context(), id)
		if err != nil {
			return nil, err
		}
		splits[account] = amount
	}
	return splits, nil
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	splits, err := s.resolveSplits(r, req.Splits)
	if err != nil {
		writeError(w, r, err)
		return
	}
	params := core.TransactionParams{
		Splits:      splits,
		Type:        req.Type,
		Description: req.Description,
		Status:      req.Status,
	}
	if req.Date != "" {
		params.Date = req.Date
	}
	if req.Payee != "" {
		params.Payee = req.Payee
	}
	txn, err := core.NewTransaction(params)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.store.SaveTxn(r.Context(), txn); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]int64{"id": txn.ID})
}

type transactionUpdateRequest struct {
	Splits      map[string]string `json:"splits"`
	Date        *string           `json:"txn_date"`
	Type        *string           `json:"txn_type"`
	Payee       *string           `json:"payee"`
	Description *string           `json:"description"`
	Status      *string           `json:"status"`
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	txn, err := s.store.GetTxn(r.Context(), id)
	if err != nil {
		writeNotFound(w, r, err)
		return
	}
	var req transactionUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	update := core.TransactionUpdate{
		Type:        req.Type,
		Description: req.Description,
		Status:      req.Status,
	}
	if req.Splits != nil {
		splits, err := s.resolveSplits(r, req.Splits)
		if err != nil {
			writeError(w, r, err)
			return
		}
		update.Splits = splits
	}
	if req.Date != nil {
		update.Date = *req.Date
	}
	if req.Payee != nil {
		update.Payee = *req.Payee
	}
	if err := txn.UpdateValues(update); err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.store.SaveTxn(r.Context(), txn); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"id": txn.ID})
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	if err := s.store.DeleteTxn(r.Context(), id); err != nil {
		writeNotFound(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type scheduledRow struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Frequency   string `json:"frequency"`
	NextDueDate string `json:"next_due_date"`
	Type        string `json:"txn_type,omitempty"`
	Payee       string `json:"payee,omitempty"`
	Description string `json:"description,omitempty"`
}

func renderScheduled(st *core.ScheduledTransaction) scheduledRow {
	row := scheduledRow{
		ID:          st.ID,
		Name:        st.Name,
		Frequency:   st.Frequency.String(),
		NextDueDate: st.NextDueDate.String(),
		Type:        st.Type,
		Description: st.Description,
	}
	if st.Payee != nil {
		row.Payee = st.Payee.Name
	}
	return row
}

func (s *Server) handleListScheduled(w http.ResponseWriter, r *http.Request) {
	scheduled, err := s.store.GetScheduledTransactions(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	dueOnly := r.URL.Query().Get("due") == "true"
	today := core.Today()
	payload := make([]scheduledRow, 0, len(scheduled))
	for _, st := range scheduled {
		if dueOnly && !st.IsDue(today) {
			continue
		}
		payload = append(payload, renderScheduled(st))
	}
	writeJSON(w, http.StatusOK, payload)
}

type scheduledRequest struct {
	Name        string            `json:"name"`
	Frequency   int               `json:"frequency"`
	Splits      map[string]string `json:"splits"`
	NextDueDate string            `json:"next_due_date"`
	Type        string            `json:"txn_type"`
	Payee       string            `json:"payee"`
	Description string            `json:"description"`
}

func (s *Server) handleCreateScheduled(w http.ResponseWriter, r *http.Request) {
	var req scheduledRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	splits, err := s.resolveSplits(r, req.Splits)
	if err != nil {
		writeError(w, r, err)
		return
	}
	params := core.ScheduledTransactionParams{
		Name:        req.Name,
		Frequency:   req.Frequency,
		Splits:      splits,
		Type:        req.Type,
		Description: req.Description,
	}
	if req.NextDueDate != "" {
		params.NextDueDate = req.NextDueDate
	}
	if req.Payee != "" {
		params.Payee = req.Payee
	}
	st, err := core.NewScheduledTransaction(params)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.store.SaveScheduledTransaction(r.Context(), st); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, renderScheduled(st))
}

type enterScheduledRequest struct {
	Date string `json:"txn_date"`
}

// handleEnterScheduled fires a scheduled transaction: construct the real
// transaction from the template, persist it, and only then advance the
// cursor. The two steps stay separate so a failed save leaves the
// schedule untouched.
func (s *Server) handleEnterScheduled(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	st, err := s.store.GetScheduledTransaction(r.Context(), id)
	if err != nil {
		writeNotFound(w, r, err)
		return
	}
	var req enterScheduledRequest
	if r.ContentLength > 0 {
		if err := decodeJSON(r, &req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
			return
		}
	}

	splits := make(core.SplitsInput, len(st.Splits))
	for account, amount := range st.Splits {
		splits[account] = amount
	}
	params := core.TransactionParams{
		Splits:      splits,
		Type:        st.Type,
		Description: st.Description,
	}
	if req.Date != "" {
		params.Date = req.Date
	} else {
		params.Date = core.Today()
	}
	if st.Payee != nil {
		params.Payee = st.Payee
	}
	txn, err := core.NewTransaction(params)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.store.SaveTxn(r.Context(), txn); err != nil {
		writeError(w, r, err)
		return
	}

	st.NextTxnEntered()
	if err := s.store.SaveScheduledTransaction(r.Context(), st); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"txn_id":        txn.ID,
		"next_due_date": st.NextDueDate.String(),
	})
}

type budgetPayload struct {
	ID        int64  `json:"id"`
	Name      string `json:"name,omitempty"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

func renderBudget(b *core.Budget) budgetPayload {
	return budgetPayload{
		ID:        b.ID,
		Name:      b.Name,
		StartDate: b.StartDate.String(),
		EndDate:   b.EndDate.String(),
	}
}

func (s *Server) handleListBudgets(w http.ResponseWriter, r *http.Request) {
	budgets, err := s.store.GetBudgets(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	payload := make([]budgetPayload, 0, len(budgets))
	for _, b := range budgets {
		payload = append(payload, renderBudget(b))
	}
	writeJSON(w, http.StatusOK, payload)
}

type budgetInfoRequest struct {
	Amount    string `json:"amount"`
	Carryover string `json:"carryover"`
	Notes     string `json:"notes"`
}

type budgetRequest struct {
	Name      string                       `json:"name"`
	Year      int                          `json:"year"`
	StartDate string                       `json:"start_date"`
	EndDate   string                       `json:"end_date"`
	Accounts  map[string]budgetInfoRequest `json:"account_budget_info"`
}

func (s *Server) handleCreateBudget(w http.ResponseWriter, r *http.Request) {
	var req budgetRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	params := core.BudgetParams{Name: req.Name}
	if req.Year != 0 {
		params.Year = req.Year
	}
	if req.StartDate != "" {
		params.StartDate = req.StartDate
	}
	if req.EndDate != "" {
		params.EndDate = req.EndDate
	}
	if req.Accounts != nil {
		info := make(map[*core.Account]core.BudgetInfoInput, len(req.Accounts))
		for accountID, in := range req.Accounts {
			id, err := strconv.ParseInt(accountID, 10, 64)
			if err != nil {
				writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid account id \"" + accountID + "\""})
				return
			}
			account, err := s.store.GetAccount(r.Context(), id)
			if err != nil {
				writeNotFound(w, r, err)
				return
			}
			input := core.BudgetInfoInput{Notes: in.Notes}
			if in.Amount != "" {
				input.Amount = in.Amount
			}
			if in.Carryover != "" {
				input.Carryover = in.Carryover
			}
			info[account] = input
		}
		params.AccountBudgetInfo = info
	}
	budget, err := core.NewBudget(params)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.store.SaveBudget(r.Context(), budget); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, renderBudget(budget))
}

type budgetDetail struct {
	budgetPayload
	Accounts map[string]map[string]string `json:"account_budget_info"`
}

func (s *Server) handleGetBudget(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	budget, err := s.store.GetBudget(r.Context(), id)
	if err != nil {
		writeNotFound(w, r, err)
		return
	}
	detail := budgetDetail{
		budgetPayload: renderBudget(budget),
		Accounts:      make(map[string]map[string]string),
	}
	for account, info := range budget.GetBudgetData() {
		fields := make(map[string]string)
		if info.Amount != nil {
			fields["amount"] = info.Amount.String()
		}
		if info.Carryover != nil {
			fields["carryover"] = info.Carryover.String()
		}
		if info.Notes != "" {
			fields["notes"] = info.Notes
		}
		detail.Accounts[strconv.FormatInt(account.ID, 10)] = fields
	}
	writeJSON(w, http.StatusOK, detail)
}

type budgetReportPayload struct {
	budgetPayload
	Expense map[string]map[string]string `json:"expense"`
	Income  map[string]map[string]string `json:"income"`
}

func (s *Server) handleBudgetReport(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	budget, err := s.store.GetBudget(r.Context(), id)
	if err != nil {
		writeNotFound(w, r, err)
		return
	}
	report, err := budget.GetReportDisplay()
	if err != nil {
		writeError(w, r, err)
		return
	}
	payload := budgetReportPayload{
		budgetPayload: renderBudget(budget),
		Expense:       make(map[string]map[string]string),
		Income:        make(map[string]map[string]string),
	}
	for account, fields := range report.Expense {
		payload.Expense[strconv.FormatInt(account.ID, 10)] = fields
	}
	for account, fields := range report.Income {
		payload.Income[strconv.FormatInt(account.ID, 10)] = fields
	}
	writeJSON(w, http.StatusOK, payload)
}
