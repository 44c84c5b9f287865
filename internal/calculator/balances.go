package calculator

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/models"
)

// Balance maps a counterparty ID to a signed amount.
// Positive = the counterparty owes the current user.
// Negative = the current user owes the counterparty.
type Balance map[string]decimal.Decimal

// Get returns the balance with id, zero if there is none.
func (b Balance) Get(id string) decimal.Decimal {
	return b[id]
}

// Add adds amount to the balance with id.
func (b Balance) Add(id string, amount decimal.Decimal) {
	b[id] = b.Get(id).Add(amount)
}

// Counterparties returns the IDs in the balance, sorted.
func (b Balance) Counterparties() []string {
	ids := make([]string, 0, len(b))
	for id := range b {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Totals sums positive and negative entries separately.
func (b Balance) Totals() Totals {
	t := Totals{OwedToUser: decimal.Zero, UserOwes: decimal.Zero}
	for _, amount := range b {
		switch amount.Sign() {
		case 1:
			t.OwedToUser = t.OwedToUser.Add(amount)
		case -1:
			t.UserOwes = t.UserOwes.Add(amount.Abs())
		}
	}
	return t
}

// Totals are the portfolio-level magnitudes of a Balance. They are never
// netted against each other.
type Totals struct {
	OwedToUser decimal.Decimal // sum of positive balances
	UserOwes   decimal.Decimal // sum of |negative balances|
}

// BalanceSummary is the result of folding a snapshot of records.
type BalanceSummary struct {
	Balance Balance
	Totals  Totals
}

// ValidateRecord checks that r carries the fields its kind requires.
func ValidateRecord(r models.Record) *DataIntegrityError {
	switch rec := r.(type) {
	case *models.Expense:
		switch {
		case rec == nil:
			return &DataIntegrityError{Reason: "nil expense"}
		case rec.ID == "":
			return &DataIntegrityError{Reason: "expense is missing an id"}
		case rec.PayerID == "":
			return &DataIntegrityError{RecordID: rec.ID, Reason: "expense is missing a payer"}
		case len(rec.Shares) == 0:
			return &DataIntegrityError{RecordID: rec.ID, Reason: "expense has no shares"}
		}
	case *models.Payment:
		switch {
		case rec == nil:
			return &DataIntegrityError{Reason: "nil payment"}
		case rec.ID == "":
			return &DataIntegrityError{Reason: "payment is missing an id"}
		case rec.PayerID == "":
			return &DataIntegrityError{RecordID: rec.ID, Reason: "payment is missing a payer"}
		case rec.ReceiverID == "":
			return &DataIntegrityError{RecordID: rec.ID, Reason: "payment is missing a receiver"}
		}
	default:
		return &DataIntegrityError{Reason: "unsupported record type"}
	}
	return nil
}

// PartitionRecords separates well-formed records from malformed ones.
// Callers that prefer to skip bad records fold the valid slice; the invalid
// ones should still be surfaced.
func PartitionRecords(records []models.Record) ([]models.Record, []*DataIntegrityError) {
	valid := make([]models.Record, 0, len(records))
	var invalid []*DataIntegrityError
	for _, r := range records {
		if err := ValidateRecord(r); err != nil {
			invalid = append(invalid, err)
			continue
		}
		valid = append(valid, r)
	}
	return valid, invalid
}

// CalculateBalances folds a snapshot of records into the net balance between
// currentUser and every counterparty.
//
// Algorithm:
//   - Expense paid by the user: every other share holder owes the user their share
//   - Expense paid by someone else: the user owes the payer the user's own share
//   - Expense the user neither paid nor holds a share in: no effect
//   - Payment sent by the user: receiver's entry goes up by the amount
//   - Payment received by the user: payer's entry goes down by the amount
//
// All records are validated before folding. If any is malformed, every
// failure is returned joined and no summary is produced. The result does not
// depend on record order and the records are not modified.
func CalculateBalances(records []models.Record, currentUser string) (*BalanceSummary, error) {
	valid, invalid := PartitionRecords(records)
	if len(invalid) > 0 {
		return nil, joinIntegrity(invalid)
	}

	balance := make(Balance)
	for _, r := range valid {
		switch rec := r.(type) {
		case *models.Expense:
			foldExpense(balance, rec, currentUser)
		case *models.Payment:
			foldPayment(balance, rec, currentUser)
		}
	}

	return &BalanceSummary{Balance: balance, Totals: balance.Totals()}, nil
}

func foldExpense(balance Balance, e *models.Expense, currentUser string) {
	if e.PayerID == currentUser {
		for _, s := range e.Shares {
			if s.ParticipantID != currentUser {
				balance.Add(s.ParticipantID, s.Amount)
			}
		}
		return
	}
	if own, ok := e.ShareOf(currentUser); ok {
		balance.Add(e.PayerID, own.Neg())
	}
}

func foldPayment(balance Balance, p *models.Payment, currentUser string) {
	switch {
	case p.PayerID == currentUser && p.ReceiverID != currentUser:
		balance.Add(p.ReceiverID, p.Amount)
	case p.ReceiverID == currentUser && p.PayerID != currentUser:
		balance.Add(p.PayerID, p.Amount.Neg())
	}
}

// FilterByGroup returns the records tagged with groupID.
func FilterByGroup(records []models.Record, groupID string) []models.Record {
	var out []models.Record
	for _, r := range records {
		switch rec := r.(type) {
		case *models.Expense:
			if rec != nil && rec.GroupID == groupID {
				out = append(out, r)
			}
		case *models.Payment:
			if rec != nil && rec.GroupID == groupID {
				out = append(out, r)
			}
		}
	}
	return out
}
