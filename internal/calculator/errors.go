package calculator

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/models"
)

// Reason classifies why split inputs were rejected.
type Reason string

const (
	ReasonUnknownMethod     Reason = "unknown_method"
	ReasonNoParticipants    Reason = "no_participants"
	ReasonNonPositiveAmount Reason = "non_positive_amount"
	ReasonTotalMismatch     Reason = "total_mismatch"
	ReasonPercentMismatch   Reason = "percent_mismatch"
	ReasonNonPositiveShares Reason = "non_positive_shares"
)

// ValidationError reports split inputs that fail the method's invariant.
// Expected and Actual always carry the numbers needed to show the discrepancy:
// the required total and the entered total, or the bound that was violated
// and the offending value.
type ValidationError struct {
	Method   models.SplitMethod
	Reason   Reason
	Expected decimal.Decimal
	Actual   decimal.Decimal
}

func (e *ValidationError) Error() string {
	switch e.Reason {
	case ReasonUnknownMethod:
		return fmt.Sprintf("unknown split method %q", e.Method)
	case ReasonNoParticipants:
		return fmt.Sprintf("%s split needs at least %s participant, got %s", e.Method, e.Expected, e.Actual)
	case ReasonNonPositiveAmount:
		return fmt.Sprintf("amount must be greater than %s, got %s", e.Expected, e.Actual)
	case ReasonTotalMismatch:
		return fmt.Sprintf("exact amounts must total %s, currently %s", e.Expected, e.Actual)
	case ReasonPercentMismatch:
		return fmt.Sprintf("percentages must total %s%%, currently %s%%", e.Expected, e.Actual)
	case ReasonNonPositiveShares:
		return fmt.Sprintf("total shares must be greater than %s, currently %s", e.Expected, e.Actual)
	default:
		return fmt.Sprintf("invalid %s split: expected %s, got %s", e.Method, e.Expected, e.Actual)
	}
}

// Difference returns Expected - Actual, the amount still to be assigned.
func (e *ValidationError) Difference() decimal.Decimal {
	return e.Expected.Sub(e.Actual)
}

// DataIntegrityError reports a structurally malformed record.
type DataIntegrityError struct {
	RecordID string
	Reason   string
}

func (e *DataIntegrityError) Error() string {
	id := e.RecordID
	if id == "" {
		id = "<unknown>"
	}
	return fmt.Sprintf("record %s: %s", id, e.Reason)
}

// IntegrityErrors extracts every *DataIntegrityError from err, including
// those joined with errors.Join.
func IntegrityErrors(err error) []*DataIntegrityError {
	if err == nil {
		return nil
	}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		var out []*DataIntegrityError
		for _, e := range joined.Unwrap() {
			out = append(out, IntegrityErrors(e)...)
		}
		return out
	}
	var die *DataIntegrityError
	if errors.As(err, &die) {
		return []*DataIntegrityError{die}
	}
	return nil
}

func joinIntegrity(errs []*DataIntegrityError) error {
	if len(errs) == 0 {
		return nil
	}
	all := make([]error, len(errs))
	for i, e := range errs {
		all[i] = e
	}
	return errors.Join(all...)
}
