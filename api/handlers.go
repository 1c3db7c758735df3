/*
handlers.go - HTTP API handlers for the reconciliation engine

PURPOSE:
  Exposes the reconciliation engine via REST API. Handles HTTP
  request/response, JSON serialization, and delegates to the engine.

ENDPOINTS:
  Payments:
    GET    /api/payments                      List payments
    POST   /api/payments                      Record a payment
    GET    /api/payments/{id}                 Get payment

  Transactions:
    GET    /api/transactions                  List bank transactions
    POST   /api/transactions/import           Import a batch
    GET    /api/transactions/{id}             Get transaction
    PATCH  /api/transactions/{id}             Correct fields

  Reconciliations:
    GET    /api/reconciliations               List periods
    POST   /api/reconciliations               Open a period (baseline auto-match)
    GET    /api/reconciliations/{id}          Period detail
    POST   /api/reconciliations/{id}/automatch  Re-run auto-match
    POST   /api/reconciliations/{id}/matches  Manual match
    POST   /api/reconciliations/{id}/complete Finalize

ERROR HANDLING:
  Engine errors map to HTTP status by kind:
  - 400: Invalid period range, malformed dates/amounts
  - 404: Record missing or foreign-organization
  - 409: Match conflicts, post-completion mutation
  - 500: Storage failures

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/clearledger/recon-engine/recon"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Engine *recon.Engine
}

// NewHandler creates a new handler around an engine.
func NewHandler(engine *recon.Engine) *Handler {
	return &Handler{Engine: engine}
}

// =============================================================================
// PAYMENT HANDLERS
// =============================================================================

// ListPayments returns payments, optionally filtered by ?from, ?to,
// and ?reconciled.
func (h *Handler) ListPayments(w http.ResponseWriter, r *http.Request) {
	filter := recon.PaymentFilter{OrganizationID: OrganizationID(r)}

	if s := r.URL.Query().Get("from"); s != "" {
		d, err := recon.ParseDate(s)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid from date", err)
			return
		}
		filter.From = &d
	}
	if s := r.URL.Query().Get("to"); s != "" {
		d, err := recon.ParseDate(s)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid to date", err)
			return
		}
		filter.To = &d
	}
	if s := r.URL.Query().Get("reconciled"); s != "" {
		v := s == "true"
		filter.Reconciled = &v
	}

	payments, err := h.Engine.Store.FindPayments(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list payments", err)
		return
	}

	writeJSON(w, http.StatusOK, toPaymentDTOs(payments))
}

// GetPayment returns a single payment.
func (h *Handler) GetPayment(w http.ResponseWriter, r *http.Request) {
	id := recon.PaymentID(chi.URLParam(r, "id"))

	payment, err := h.Engine.Store.GetPayment(r.Context(), OrganizationID(r), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get payment", err)
		return
	}
	if payment == nil {
		writeError(w, http.StatusNotFound, "Payment not found", nil)
		return
	}

	writeJSON(w, http.StatusOK, toPaymentDTO(*payment))
}

// CreatePayment records a payment. Payments normally come from the
// wider system when rent or fees are recorded; this endpoint exists so
// the engine is usable standalone.
func (h *Handler) CreatePayment(w http.ResponseWriter, r *http.Request) {
	var req CreatePaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil || !amount.IsPositive() {
		writeError(w, http.StatusBadRequest, "Amount must be a positive decimal", err)
		return
	}
	receivedDate, err := recon.ParseDate(req.ReceivedDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid received_date", err)
		return
	}

	payment := recon.Payment{
		ID:             recon.PaymentID(recon.NewID()),
		OrganizationID: OrganizationID(r),
		Amount:         amount,
		ReceivedDate:   receivedDate,
		Method:         recon.PaymentMethod(req.Method),
		Reference:      req.Reference,
		CreatedAt:      time.Now().UTC(),
	}

	if err := h.Engine.Store.SavePayment(r.Context(), payment); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create payment", err)
		return
	}

	writeJSON(w, http.StatusCreated, toPaymentDTO(payment))
}

// =============================================================================
// BANK TRANSACTION HANDLERS
// =============================================================================

// ImportTransactions ingests a batch of bank transactions.
func (h *Handler) ImportTransactions(w http.ResponseWriter, r *http.Request) {
	var req ImportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if len(req.Transactions) == 0 {
		writeError(w, http.StatusBadRequest, "Transactions must not be empty", nil)
		return
	}

	source := recon.ImportSource(req.Source)
	if source == "" {
		source = recon.SourceManual
	}

	inputs := make([]recon.TransactionInput, 0, len(req.Transactions))
	for _, row := range req.Transactions {
		date, err := recon.ParseDate(row.Date)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid transaction date", err)
			return
		}
		amount, err := decimal.NewFromString(row.Amount)
		if err != nil || !amount.IsPositive() {
			writeError(w, http.StatusBadRequest, "Amount must be a positive decimal", err)
			return
		}
		inputs = append(inputs, recon.TransactionInput{
			Date:        date,
			Amount:      amount,
			Description: row.Description,
			Reference:   row.Reference,
			AccountID:   row.AccountID,
			AccountName: row.AccountName,
		})
	}

	result, err := h.Engine.Import(r.Context(), OrganizationID(r), inputs, source)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Import failed", err)
		return
	}

	writeJSON(w, http.StatusOK, ImportResultDTO{
		Imported:   result.Imported,
		Duplicates: result.Duplicates,
	})
}

// ListTransactions returns bank transactions, optionally filtered.
func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	filter := recon.TransactionFilter{OrganizationID: OrganizationID(r)}

	if s := r.URL.Query().Get("from"); s != "" {
		d, err := recon.ParseDate(s)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid from date", err)
			return
		}
		filter.From = &d
	}
	if s := r.URL.Query().Get("to"); s != "" {
		d, err := recon.ParseDate(s)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid to date", err)
			return
		}
		filter.To = &d
	}
	if s := r.URL.Query().Get("reconciled"); s != "" {
		v := s == "true"
		filter.Reconciled = &v
	}

	txs, err := h.Engine.Store.FindTransactions(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list transactions", err)
		return
	}

	writeJSON(w, http.StatusOK, toTransactionDTOs(txs))
}

// GetTransaction returns a single bank transaction.
func (h *Handler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	id := recon.TransactionID(chi.URLParam(r, "id"))

	tx, err := h.Engine.Store.GetTransaction(r.Context(), OrganizationID(r), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get transaction", err)
		return
	}
	if tx == nil {
		writeError(w, http.StatusNotFound, "Bank transaction not found", nil)
		return
	}

	writeJSON(w, http.StatusOK, toTransactionDTO(*tx))
}

// UpdateTransaction applies field corrections to a bank transaction.
func (h *Handler) UpdateTransaction(w http.ResponseWriter, r *http.Request) {
	id := recon.TransactionID(chi.URLParam(r, "id"))

	var req UpdateTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	var update recon.TransactionUpdate
	if req.Date != nil {
		d, err := recon.ParseDate(*req.Date)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid date", err)
			return
		}
		update.Date = &d
	}
	if req.Amount != nil {
		amount, err := decimal.NewFromString(*req.Amount)
		if err != nil || !amount.IsPositive() {
			writeError(w, http.StatusBadRequest, "Amount must be a positive decimal", err)
			return
		}
		update.Amount = &amount
	}
	update.Description = req.Description
	update.Reference = req.Reference
	update.Reconciled = req.Reconciled

	tx, err := h.Engine.UpdateBankTransaction(r.Context(), OrganizationID(r), id, update)
	if err != nil {
		writeEngineError(w, "Failed to update transaction", err)
		return
	}

	writeJSON(w, http.StatusOK, toTransactionDTO(*tx))
}

// =============================================================================
// RECONCILIATION HANDLERS
// =============================================================================

// ListReconciliations returns all periods for the organization.
func (h *Handler) ListReconciliations(w http.ResponseWriter, r *http.Request) {
	recs, err := h.Engine.ListPeriods(r.Context(), OrganizationID(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list reconciliations", err)
		return
	}

	dtos := make([]ReconciliationDTO, len(recs))
	for i, rec := range recs {
		dtos[i] = toReconciliationDTO(rec)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateReconciliation opens a period and runs the baseline auto-match.
func (h *Handler) CreateReconciliation(w http.ResponseWriter, r *http.Request) {
	var req CreateReconciliationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	start, err := recon.ParseDate(req.StartDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid start_date", err)
		return
	}
	end, err := recon.ParseDate(req.EndDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid end_date", err)
		return
	}

	result, err := h.Engine.CreatePeriod(r.Context(), OrganizationID(r), start, end)
	if err != nil {
		writeEngineError(w, "Failed to create reconciliation", err)
		return
	}

	writeJSON(w, http.StatusCreated, CreateReconciliationResponse{
		Reconciliation:        toReconciliationDTO(result.Reconciliation),
		Matched:               result.Matched,
		Suggested:             result.Suggested,
		UnmatchedPayments:     toPaymentDTOs(result.UnmatchedPayments),
		UnmatchedTransactions: toTransactionDTOs(result.UnmatchedTransactions),
	})
}

// GetReconciliation returns a period with matches and unmatched items.
func (h *Handler) GetReconciliation(w http.ResponseWriter, r *http.Request) {
	id := recon.ReconciliationID(chi.URLParam(r, "id"))

	detail, err := h.Engine.GetPeriod(r.Context(), OrganizationID(r), id)
	if err != nil {
		writeEngineError(w, "Failed to get reconciliation", err)
		return
	}

	writeJSON(w, http.StatusOK, ReconciliationDetailDTO{
		Reconciliation:        toReconciliationDTO(detail.Reconciliation),
		Matches:               toMatchDTOs(detail.Matches),
		UnmatchedPayments:     toPaymentDTOs(detail.UnmatchedPayments),
		UnmatchedTransactions: toTransactionDTOs(detail.UnmatchedTransactions),
	})
}

// AutoMatch re-runs the auto-matcher over a period's window.
func (h *Handler) AutoMatch(w http.ResponseWriter, r *http.Request) {
	id := recon.ReconciliationID(chi.URLParam(r, "id"))

	result, err := h.Engine.AutoMatch(r.Context(), OrganizationID(r), id)
	if err != nil {
		writeEngineError(w, "Auto-match failed", err)
		return
	}

	writeJSON(w, http.StatusOK, MatchRunDTO{
		Matched:   result.Matched,
		Suggested: result.Suggested,
	})
}

// ManualMatch links one payment to one bank transaction.
func (h *Handler) ManualMatch(w http.ResponseWriter, r *http.Request) {
	id := recon.ReconciliationID(chi.URLParam(r, "id"))

	var req ManualMatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.PaymentID == "" || req.BankTransactionID == "" {
		writeError(w, http.StatusBadRequest, "payment_id and bank_transaction_id are required", nil)
		return
	}

	match, err := h.Engine.ManualMatch(r.Context(), OrganizationID(r), id,
		recon.PaymentID(req.PaymentID), recon.TransactionID(req.BankTransactionID))
	if err != nil {
		writeEngineError(w, "Manual match failed", err)
		return
	}

	writeJSON(w, http.StatusCreated, toMatchDTO(*match))
}

// CompleteReconciliation finalizes a period.
func (h *Handler) CompleteReconciliation(w http.ResponseWriter, r *http.Request) {
	id := recon.ReconciliationID(chi.URLParam(r, "id"))

	var req CompleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.ReviewerID == "" {
		writeError(w, http.StatusBadRequest, "reviewer_id is required", nil)
		return
	}

	rec, err := h.Engine.CompletePeriod(r.Context(), OrganizationID(r), id, req.ReviewerID, req.Notes)
	if err != nil {
		writeEngineError(w, "Failed to complete reconciliation", err)
		return
	}

	writeJSON(w, http.StatusOK, toReconciliationDTO(*rec))
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeEngineError maps engine error kinds to HTTP status codes.
func writeEngineError(w http.ResponseWriter, message string, err error) {
	switch {
	case recon.IsNotFound(err):
		writeError(w, http.StatusNotFound, message, err)
	case errors.Is(err, recon.ErrInvalidPeriod):
		writeError(w, http.StatusBadRequest, message, err)
	case recon.IsConflict(err):
		writeError(w, http.StatusConflict, message, err)
	default:
		writeError(w, http.StatusInternalServerError, message, err)
	}
}
