package api

import "github.com/shopspring/decimal"

// Record kinds.
const (
	KindExpense = "expense"
	KindPayment = "payment"
)

type Share struct {
	ParticipantID string          `json:"participant_id"`
	Amount        decimal.Decimal `json:"amount"`
}

// Record is the wire form of an expense or a payment, told apart by Kind.
// Shares and SplitMethod are only set on expenses; ReceiverID only on payments.
type Record struct {
	ID           string          `json:"id"`
	Kind         string          `json:"kind"`
	Description  string          `json:"description"`
	Amount       decimal.Decimal `json:"amount"`
	Display      string          `json:"display"`
	Date         string          `json:"date"`
	Category     string          `json:"category,omitempty"`
	GroupID      string          `json:"group_id,omitempty"`
	PayerID      string          `json:"payer_id"`
	ReceiverID   string          `json:"receiver_id,omitempty"`
	SplitMethod  string          `json:"split_method,omitempty"`
	Shares       []Share         `json:"shares,omitempty"`
	Participants []string        `json:"participants"`
	CreatedBy    string          `json:"created_by"`
	CreatedAt    int64           `json:"created_at"`
}

// IntegrityIssue names a record that was left out of a calculation.
type IntegrityIssue struct {
	RecordID string `json:"record_id"`
	Reason   string `json:"reason"`
}

// CounterpartyBalance is the net position against one other participant.
// Positive means they owe the caller.
type CounterpartyBalance struct {
	ParticipantID string          `json:"participant_id"`
	Amount        decimal.Decimal `json:"amount"`
	Display       string          `json:"display"`
}

// BalanceSnapshot is the caller's balance view computed from one snapshot
// of records.
type BalanceSnapshot struct {
	Counterparties []CounterpartyBalance `json:"counterparties"`
	OwedToUser     decimal.Decimal       `json:"owed_to_user"`
	UserOwes       decimal.Decimal       `json:"user_owes"`
	OwedDisplay    string                `json:"owed_display"`
	OwesDisplay    string                `json:"owes_display"`
	Excluded       []IntegrityIssue      `json:"excluded,omitempty"`
}

type PreviewSplitRequest struct {
	Amount       decimal.Decimal            `json:"amount"`
	Method       string                     `json:"method"`
	Participants []string                   `json:"participants"`
	Values       map[string]decimal.Decimal `json:"values,omitempty"`
}

// PreviewSplitResponse reports either the resolved shares or, when Valid is
// false, why the inputs were rejected. Remaining is Expected - Actual.
type PreviewSplitResponse struct {
	Valid     bool            `json:"valid"`
	Shares    []Share         `json:"shares,omitempty"`
	Reason    string          `json:"reason,omitempty"`
	Message   string          `json:"message,omitempty"`
	Expected  decimal.Decimal `json:"expected"`
	Actual    decimal.Decimal `json:"actual"`
	Remaining decimal.Decimal `json:"remaining"`
}

// ExpenseInput is what a client submits to create or replace an expense.
// PayerID defaults to the caller.
type ExpenseInput struct {
	Description  string                     `json:"description"`
	Amount       decimal.Decimal            `json:"amount"`
	Date         string                     `json:"date"`
	Category     string                     `json:"category,omitempty"`
	GroupID      string                     `json:"group_id,omitempty"`
	PayerID      string                     `json:"payer_id,omitempty"`
	Method       string                     `json:"method"`
	Participants []string                   `json:"participants"`
	Values       map[string]decimal.Decimal `json:"values,omitempty"`
}

type CreateExpenseRequest struct {
	Expense ExpenseInput `json:"expense"`
}

type CreateExpenseResponse struct {
	Record *Record `json:"record"`
}

type UpdateExpenseRequest struct {
	RecordID string       `json:"record_id"`
	Expense  ExpenseInput `json:"expense"`
}

type UpdateExpenseResponse struct {
	Record *Record `json:"record"`
}

// DeleteExpenseRequest removes an expense or a payment.
type DeleteExpenseRequest struct {
	RecordID string `json:"record_id"`
}

type DeleteExpenseResponse struct{}

// RecordPaymentRequest settles up. PayerID defaults to the caller.
type RecordPaymentRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	Date        string          `json:"date"`
	Description string          `json:"description,omitempty"`
	GroupID     string          `json:"group_id,omitempty"`
	PayerID     string          `json:"payer_id,omitempty"`
	ReceiverID  string          `json:"receiver_id"`
}

type RecordPaymentResponse struct {
	Record *Record `json:"record"`
}

type ListRecordsRequest struct {
	GroupID string `json:"group_id,omitempty"`
}

type ListRecordsResponse struct {
	Records []*Record `json:"records"`
}

type GetBalancesRequest struct {
	// SkipInvalid excludes malformed records instead of failing the call.
	SkipInvalid bool `json:"skip_invalid,omitempty"`
}

type GetBalancesResponse struct {
	Balances *BalanceSnapshot `json:"balances"`
}

type MonthSpending struct {
	Month   string          `json:"month"`
	Amount  decimal.Decimal `json:"amount"`
	Display string          `json:"display"`
}

type GetSpendingRequest struct{}

// GetSpendingResponse lists months most recent first. Records whose date
// could not be read are reported in Excluded and counted nowhere.
type GetSpendingResponse struct {
	CurrentMonth MonthSpending    `json:"current_month"`
	Previous     []MonthSpending  `json:"previous"`
	Excluded     []IntegrityIssue `json:"excluded,omitempty"`
}

// ConvertToExactRequest either names a stored expense or carries split
// inputs to resolve first.
type ConvertToExactRequest struct {
	RecordID     string                     `json:"record_id,omitempty"`
	Amount       decimal.Decimal            `json:"amount"`
	Method       string                     `json:"method,omitempty"`
	Participants []string                   `json:"participants,omitempty"`
	Values       map[string]decimal.Decimal `json:"values,omitempty"`
}

type ConvertToExactResponse struct {
	Values map[string]decimal.Decimal `json:"values"`
}
