package calculator

import (
	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/models"
)

// ToExact converts resolved shares into exact-method inputs for editing.
// Each value is rounded to the currency's minor unit and the last participant
// absorbs the rounding residue so the inputs still total amount exactly.
func ToExact(amount decimal.Decimal, shares []models.Share, currency string) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(shares))
	if len(shares) == 0 {
		return out
	}
	assigned := decimal.Zero
	for _, s := range shares[:len(shares)-1] {
		v := RoundMinor(s.Amount, currency)
		out[s.ParticipantID] = out[s.ParticipantID].Add(v)
		assigned = assigned.Add(v)
	}
	last := shares[len(shares)-1].ParticipantID
	out[last] = out[last].Add(amount.Sub(assigned))
	return out
}
