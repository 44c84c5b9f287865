package models

import "github.com/shopspring/decimal"

// SplitMethod is the rule used to derive shares from an expense total.
type SplitMethod string

const (
	SplitEqual   SplitMethod = "equal"
	SplitExact   SplitMethod = "exact"
	SplitPercent SplitMethod = "percent"
	SplitShares  SplitMethod = "shares"
)

// Share is one participant's portion of an expense.
type Share struct {
	ParticipantID string
	Amount        decimal.Decimal
}

// Record is either an *Expense or a *Payment.
type Record interface {
	// RecordID returns the unique identifier of the record.
	RecordID() string

	// ParticipantIDs returns everyone the record is visible to.
	ParticipantIDs() []string

	isRecord()
}

// Expense represents a cost paid by one participant and split among others.
type Expense struct {
	// ID is the unique identifier for the expense (UUID format).
	ID string

	// Description is the human-readable label (e.g., "Dinner").
	Description string

	// Amount is the total cost. Always strictly positive.
	Amount decimal.Decimal

	// Date is the calendar date of the expense as entered, usually YYYY-MM-DD.
	Date string

	// Category is a free-form label such as "food" or "travel".
	Category string

	// GroupID is the group this expense belongs to, empty if none.
	GroupID string

	// PayerID is the participant who paid. The payer does not have to hold a share.
	PayerID string

	// SplitMethod records how Shares were derived.
	SplitMethod SplitMethod

	// Shares are the resolved per-participant portions of Amount.
	Shares []Share

	// Participants is who can see the record: the share holders plus the
	// payer when the payer holds no share. Balance math reads Shares only.
	Participants []string

	// CreatedBy is the user ID who recorded this expense.
	CreatedBy string

	// CreatedAt is the Unix timestamp when the expense was recorded.
	CreatedAt int64
}

func (e *Expense) RecordID() string         { return e.ID }
func (e *Expense) ParticipantIDs() []string { return e.Participants }
func (*Expense) isRecord()                  {}

// ShareOf returns the share held by participantID, if any.
func (e *Expense) ShareOf(participantID string) (decimal.Decimal, bool) {
	for _, s := range e.Shares {
		if s.ParticipantID == participantID {
			return s.Amount, true
		}
	}
	return decimal.Zero, false
}

// Payment represents a direct settlement between two participants.
type Payment struct {
	// ID is the unique identifier for the payment (UUID format).
	ID string

	// Description is an optional note (e.g., "Payment to Bob").
	Description string

	// Amount is the amount transferred. Always strictly positive.
	Amount decimal.Decimal

	// Date is the calendar date of the payment.
	Date string

	// GroupID is the group this payment settles within, empty if none.
	GroupID string

	// PayerID is the participant who sent the money.
	PayerID string

	// ReceiverID is the participant who received the money.
	ReceiverID string

	// Participants is always {PayerID, ReceiverID}.
	Participants []string

	// CreatedBy is the user ID who recorded this payment.
	CreatedBy string

	// CreatedAt is the Unix timestamp when the payment was recorded.
	CreatedAt int64
}

func (p *Payment) RecordID() string         { return p.ID }
func (p *Payment) ParticipantIDs() []string { return p.Participants }
func (*Payment) isRecord()                  {}

// ExpenseParticipants returns the share holders followed by the payer when
// the payer holds no share. Duplicates are dropped.
func ExpenseParticipants(payerID string, shares []Share) []string {
	seen := make(map[string]bool, len(shares)+1)
	out := make([]string, 0, len(shares)+1)
	for _, s := range shares {
		if !seen[s.ParticipantID] {
			seen[s.ParticipantID] = true
			out = append(out, s.ParticipantID)
		}
	}
	if payerID != "" && !seen[payerID] {
		out = append(out, payerID)
	}
	return out
}
