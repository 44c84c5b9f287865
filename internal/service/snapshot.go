package service

import (
	"context"
	"fmt"

	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/metrics"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
	"github.com/mmynk/splitledger/pkg/api"
)

// Snapshotter turns a full snapshot of records into a caller's balance view.
// It keeps no state between calls: every call re-reads the records and
// re-runs the aggregation.
type Snapshotter struct {
	records  storage.RecordStore
	currency string
	metrics  *metrics.Metrics
}

// NewSnapshotter creates a Snapshotter reading from records.
func NewSnapshotter(records storage.RecordStore, currency string, m *metrics.Metrics) *Snapshotter {
	return &Snapshotter{records: records, currency: currency, metrics: m}
}

// ForUser computes the balances of userID across every record they take part in.
func (s *Snapshotter) ForUser(ctx context.Context, userID string, skipInvalid bool) (*api.BalanceSnapshot, error) {
	records, err := s.records.ListRecordsForParticipant(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	return s.Compute(records, userID, skipInvalid, metrics.ScopeUser)
}

// Push is ForUser with malformed records skipped, for realtime updates.
func (s *Snapshotter) Push(ctx context.Context, userID string) (*api.BalanceSnapshot, error) {
	records, err := s.records.ListRecordsForParticipant(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	return s.Compute(records, userID, true, metrics.ScopePush)
}

// Compute aggregates records for userID. When skipInvalid is false any
// malformed record fails the whole calculation; otherwise malformed records
// are left out and listed in Excluded.
func (s *Snapshotter) Compute(records []models.Record, userID string, skipInvalid bool, scope string) (*api.BalanceSnapshot, error) {
	s.metrics.ObserveRecompute(scope)

	var excluded []*calculator.DataIntegrityError
	if skipInvalid {
		records, excluded = calculator.PartitionRecords(records)
		if len(excluded) > 0 {
			s.metrics.IntegrityErrors.Add(float64(len(excluded)))
		}
	}

	summary, err := calculator.CalculateBalances(records, userID)
	if err != nil {
		s.metrics.ObserveError(err)
		return nil, err
	}

	snap := &api.BalanceSnapshot{
		Counterparties: make([]api.CounterpartyBalance, 0, len(summary.Balance)),
		OwedToUser:     summary.Totals.OwedToUser,
		UserOwes:       summary.Totals.UserOwes,
		OwedDisplay:    calculator.FormatAmount(summary.Totals.OwedToUser, s.currency),
		OwesDisplay:    calculator.FormatAmount(summary.Totals.UserOwes, s.currency),
		Excluded:       toAPIIssues(excluded),
	}
	for _, id := range summary.Balance.Counterparties() {
		amount := summary.Balance.Get(id)
		snap.Counterparties = append(snap.Counterparties, api.CounterpartyBalance{
			ParticipantID: id,
			Amount:        amount,
			Display:       calculator.FormatAmount(amount, s.currency),
		})
	}
	return snap, nil
}
