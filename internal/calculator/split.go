package calculator

import (
	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/models"
)

// ParseSplitMethod converts user input into a SplitMethod.
func ParseSplitMethod(s string) (models.SplitMethod, error) {
	m := models.SplitMethod(s)
	switch m {
	case models.SplitEqual, models.SplitExact, models.SplitPercent, models.SplitShares:
		return m, nil
	}
	return "", &ValidationError{Method: m, Reason: ReasonUnknownMethod}
}

// CalculateSplit turns an expense total and the values typed for each
// participant into resolved shares.
//
// Per method:
//   - equal:   amount / len(participants), rawValues ignored
//   - exact:   rawValue, values must total amount
//   - percent: amount × rawValue / 100, values must total 100
//   - shares:  amount × rawValue / sum(rawValues), sum must be positive
//
// Missing raw values count as zero and values for people outside
// participants are ignored. Shares are returned in participant order at full
// precision; rounding is left to the display layer.
func CalculateSplit(amount decimal.Decimal, method models.SplitMethod, participants []string, rawValues map[string]decimal.Decimal) ([]models.Share, error) {
	if _, err := ParseSplitMethod(string(method)); err != nil {
		return nil, err
	}

	participants = uniqueParticipants(participants)
	if len(participants) == 0 {
		return nil, &ValidationError{
			Method:   method,
			Reason:   ReasonNoParticipants,
			Expected: decimal.NewFromInt(1),
			Actual:   decimal.Zero,
		}
	}
	if !amount.IsPositive() {
		return nil, &ValidationError{
			Method:   method,
			Reason:   ReasonNonPositiveAmount,
			Expected: decimal.Zero,
			Actual:   amount,
		}
	}

	shares := make([]models.Share, len(participants))
	for i, p := range participants {
		shares[i].ParticipantID = p
	}

	switch method {
	case models.SplitEqual:
		each := amount.Div(decimal.NewFromInt(int64(len(participants))))
		for i := range shares {
			shares[i].Amount = each
		}

	case models.SplitExact:
		total := sumRaw(participants, rawValues)
		if !WithinTolerance(total, amount) {
			return nil, &ValidationError{Method: method, Reason: ReasonTotalMismatch, Expected: amount, Actual: total}
		}
		for i, p := range participants {
			shares[i].Amount = rawValues[p]
		}

	case models.SplitPercent:
		total := sumRaw(participants, rawValues)
		if !WithinTolerance(total, hundred) {
			return nil, &ValidationError{Method: method, Reason: ReasonPercentMismatch, Expected: hundred, Actual: total}
		}
		for i, p := range participants {
			shares[i].Amount = amount.Mul(rawValues[p]).Div(hundred)
		}

	case models.SplitShares:
		total := sumRaw(participants, rawValues)
		if !total.IsPositive() {
			return nil, &ValidationError{Method: method, Reason: ReasonNonPositiveShares, Expected: decimal.Zero, Actual: total}
		}
		for i, p := range participants {
			shares[i].Amount = amount.Mul(rawValues[p]).Div(total)
		}
	}

	return shares, nil
}

// SumShares adds up share amounts.
func SumShares(shares []models.Share) decimal.Decimal {
	total := decimal.Zero
	for _, s := range shares {
		total = total.Add(s.Amount)
	}
	return total
}

func sumRaw(participants []string, rawValues map[string]decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, p := range participants {
		total = total.Add(rawValues[p])
	}
	return total
}

// uniqueParticipants drops empty and repeated IDs, keeping first occurrences.
func uniqueParticipants(participants []string) []string {
	seen := make(map[string]bool, len(participants))
	out := make([]string, 0, len(participants))
	for _, p := range participants {
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}
