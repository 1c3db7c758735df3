/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types
  decouple the internal domain model from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

VALIDATION:
  Validation is done in handlers, not in DTOs. DTOs are pure data
  carriers. Amounts travel as decimal strings to avoid float drift in
  JSON round-trips.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"time"

	"github.com/clearledger/recon-engine/recon"
)

// =============================================================================
// REQUEST/RESPONSE TYPES
// =============================================================================

// PaymentDTO represents a payment in API responses.
type PaymentDTO struct {
	ID           string `json:"id"`
	Amount       string `json:"amount"`
	ReceivedDate string `json:"received_date"`
	Method       string `json:"method"`
	Reference    string `json:"reference,omitempty"`
	Reconciled   bool   `json:"reconciled"`
	CreatedAt    string `json:"created_at,omitempty"`
}

// CreatePaymentRequest is the request to record a payment.
type CreatePaymentRequest struct {
	Amount       string `json:"amount"`
	ReceivedDate string `json:"received_date"`
	Method       string `json:"method"`
	Reference    string `json:"reference,omitempty"`
}

// BankTransactionDTO represents a bank transaction in API responses.
type BankTransactionDTO struct {
	ID          string  `json:"id"`
	Date        string  `json:"date"`
	Amount      string  `json:"amount"`
	Description string  `json:"description"`
	Reference   string  `json:"reference,omitempty"`
	AccountID   string  `json:"account_id,omitempty"`
	AccountName string  `json:"account_name,omitempty"`
	Source      string  `json:"source"`
	Reconciled  bool    `json:"reconciled"`
	PaymentID   *string `json:"payment_id,omitempty"`
	CreatedAt   string  `json:"created_at,omitempty"`
}

// ImportTransactionRow is one candidate row in an import batch.
type ImportTransactionRow struct {
	Date        string `json:"date"`
	Amount      string `json:"amount"`
	Description string `json:"description"`
	Reference   string `json:"reference,omitempty"`
	AccountID   string `json:"account_id,omitempty"`
	AccountName string `json:"account_name,omitempty"`
}

// ImportRequest is the request to import a batch of bank transactions.
type ImportRequest struct {
	Source       string                 `json:"source"`
	Transactions []ImportTransactionRow `json:"transactions"`
}

// ImportResultDTO reports import counts.
type ImportResultDTO struct {
	Imported   int `json:"imported"`
	Duplicates int `json:"duplicates"`
}

// UpdateTransactionRequest carries optional field corrections.
type UpdateTransactionRequest struct {
	Date        *string `json:"date,omitempty"`
	Amount      *string `json:"amount,omitempty"`
	Description *string `json:"description,omitempty"`
	Reference   *string `json:"reference,omitempty"`
	Reconciled  *bool   `json:"reconciled,omitempty"`
}

// ReconciliationDTO represents a reconciliation period.
type ReconciliationDTO struct {
	ID            string  `json:"id"`
	StartDate     string  `json:"start_date"`
	EndDate       string  `json:"end_date"`
	Status        string  `json:"status"`
	ExpectedTotal string  `json:"expected_total"`
	ActualTotal   string  `json:"actual_total"`
	Difference    string  `json:"difference"`
	Notes         string  `json:"notes,omitempty"`
	ReviewedBy    string  `json:"reviewed_by,omitempty"`
	ReviewedAt    *string `json:"reviewed_at,omitempty"`
	CreatedAt     string  `json:"created_at,omitempty"`
}

// CreateReconciliationRequest opens a period.
type CreateReconciliationRequest struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// CreateReconciliationResponse returns the new period with baseline
// auto-match counts and what remains to review.
type CreateReconciliationResponse struct {
	Reconciliation        ReconciliationDTO    `json:"reconciliation"`
	Matched               int                  `json:"matched"`
	Suggested             int                  `json:"suggested"`
	UnmatchedPayments     []PaymentDTO         `json:"unmatched_payments"`
	UnmatchedTransactions []BankTransactionDTO `json:"unmatched_transactions"`
}

// ReconciliationDetailDTO is the full read view of a period.
type ReconciliationDetailDTO struct {
	Reconciliation        ReconciliationDTO    `json:"reconciliation"`
	Matches               []MatchDTO           `json:"matches"`
	UnmatchedPayments     []PaymentDTO         `json:"unmatched_payments"`
	UnmatchedTransactions []BankTransactionDTO `json:"unmatched_transactions"`
}

// MatchDTO represents a payment/transaction link.
type MatchDTO struct {
	ID                string `json:"id"`
	ReconciliationID  string `json:"reconciliation_id"`
	PaymentID         string `json:"payment_id"`
	BankTransactionID string `json:"bank_transaction_id"`
	CreatedAt         string `json:"created_at,omitempty"`
}

// ManualMatchRequest links one payment to one bank transaction.
type ManualMatchRequest struct {
	PaymentID         string `json:"payment_id"`
	BankTransactionID string `json:"bank_transaction_id"`
}

// MatchRunDTO reports an auto-match pass.
type MatchRunDTO struct {
	Matched   int `json:"matched"`
	Suggested int `json:"suggested"`
}

// CompleteRequest finalizes a period.
type CompleteRequest struct {
	ReviewerID string `json:"reviewer_id"`
	Notes      string `json:"notes,omitempty"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func toPaymentDTO(p recon.Payment) PaymentDTO {
	return PaymentDTO{
		ID:           string(p.ID),
		Amount:       p.Amount.String(),
		ReceivedDate: p.ReceivedDate.String(),
		Method:       string(p.Method),
		Reference:    p.Reference,
		Reconciled:   p.Reconciled,
		CreatedAt:    p.CreatedAt.Format(time.RFC3339),
	}
}

func toPaymentDTOs(payments []recon.Payment) []PaymentDTO {
	dtos := make([]PaymentDTO, len(payments))
	for i, p := range payments {
		dtos[i] = toPaymentDTO(p)
	}
	return dtos
}

func toTransactionDTO(tx recon.BankTransaction) BankTransactionDTO {
	dto := BankTransactionDTO{
		ID:          string(tx.ID),
		Date:        tx.Date.String(),
		Amount:      tx.Amount.String(),
		Description: tx.Description,
		Reference:   tx.Reference,
		AccountID:   tx.AccountID,
		AccountName: tx.AccountName,
		Source:      string(tx.Source),
		Reconciled:  tx.Reconciled,
		CreatedAt:   tx.CreatedAt.Format(time.RFC3339),
	}
	if tx.PaymentID != nil {
		id := string(*tx.PaymentID)
		dto.PaymentID = &id
	}
	return dto
}

func toTransactionDTOs(txs []recon.BankTransaction) []BankTransactionDTO {
	dtos := make([]BankTransactionDTO, len(txs))
	for i, tx := range txs {
		dtos[i] = toTransactionDTO(tx)
	}
	return dtos
}

func toReconciliationDTO(r recon.Reconciliation) ReconciliationDTO {
	dto := ReconciliationDTO{
		ID:            string(r.ID),
		StartDate:     r.StartDate.String(),
		EndDate:       r.EndDate.String(),
		Status:        string(r.Status),
		ExpectedTotal: r.ExpectedTotal.String(),
		ActualTotal:   r.ActualTotal.String(),
		Difference:    r.Difference.String(),
		Notes:         r.Notes,
		ReviewedBy:    r.ReviewedBy,
		CreatedAt:     r.CreatedAt.Format(time.RFC3339),
	}
	if r.ReviewedAt != nil {
		s := r.ReviewedAt.Format(time.RFC3339)
		dto.ReviewedAt = &s
	}
	return dto
}

func toMatchDTO(m recon.Match) MatchDTO {
	return MatchDTO{
		ID:                string(m.ID),
		ReconciliationID:  string(m.ReconciliationID),
		PaymentID:         string(m.PaymentID),
		BankTransactionID: string(m.BankTransactionID),
		CreatedAt:         m.CreatedAt.Format(time.RFC3339),
	}
}

func toMatchDTOs(matches []recon.Match) []MatchDTO {
	dtos := make([]MatchDTO, len(matches))
	for i, m := range matches {
		dtos[i] = toMatchDTO(m)
	}
	return dtos
}
