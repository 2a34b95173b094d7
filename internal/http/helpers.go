package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"pft/internal/core"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "error", err)
	}
}

// writeError maps domain validation failures to 422 so the UI can show
// them as field-level errors; everything else is a 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	if isValidationError(err) {
		status = http.StatusUnprocessableEntity
	}
	slog.ErrorContext(r.Context(), "request failed", "error", err, "status", status)
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func writeNotFound(w http.ResponseWriter, r *http.Request, err error) {
	slog.WarnContext(r.Context(), "not found", "error", err)
	writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
}

func isValidationError(err error) bool {
	var (
		accountErr   core.InvalidAccountError
		txnErr       core.InvalidTransactionError
		scheduledErr core.InvalidScheduledTransactionError
		ledgerErr    core.InvalidLedgerError
		budgetErr    core.BudgetError
	)
	return errors.As(err, &accountErr) ||
		errors.As(err, &txnErr) ||
		errors.As(err, &scheduledErr) ||
		errors.As(err, &ledgerErr) ||
		errors.As(err, &budgetErr)
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		return 0, errors.New("invalid id in path")
	}
	return id, nil
}
