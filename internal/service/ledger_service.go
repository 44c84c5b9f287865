package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"connectrpc.com/connect"
	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/metrics"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
	"github.com/mmynk/splitledger/pkg/api"
)

// defaultPaymentDescription labels payments recorded without a note.
const defaultPaymentDescription = "Payment"

// Notifier is told which participants' records changed after every
// successful mutation.
type Notifier interface {
	RecordsChanged(ctx context.Context, participants []string)
}

type nopNotifier struct{}

func (nopNotifier) RecordsChanged(context.Context, []string) {}

// LedgerService implements the Connect LedgerService: split previews,
// expense and payment bookkeeping, balances and spending.
type LedgerService struct {
	store     storage.Store
	snapshots *Snapshotter
	notifier  Notifier
	metrics   *metrics.Metrics
	currency  string
	logger    *slog.Logger
	now       func() time.Time
}

// NewLedgerService creates a LedgerService. A nil notifier disables push.
func NewLedgerService(store storage.Store, snapshots *Snapshotter, notifier Notifier, m *metrics.Metrics, currency string, logger *slog.Logger) *LedgerService {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	return &LedgerService{
		store:     store,
		snapshots: snapshots,
		notifier:  notifier,
		metrics:   m,
		currency:  currency,
		logger:    logger,
		now:       time.Now,
	}
}

// split runs the calculator over wire inputs.
func split(amount decimal.Decimal, method string, participants []string, values map[string]decimal.Decimal) ([]models.Share, error) {
	m, err := calculator.ParseSplitMethod(strings.ToLower(strings.TrimSpace(method)))
	if err != nil {
		return nil, err
	}
	return calculator.CalculateSplit(amount, m, cleanIDs(participants), values)
}

// cleanIDs trims ids and drops empty ones.
func cleanIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id = strings.TrimSpace(id); id != "" {
			out = append(out, id)
		}
	}
	return out
}

// checkDate rejects dates no month bucket could hold.
func checkDate(date string) error {
	if _, err := calculator.MonthKey(date); err != nil {
		return invalidArgument("invalid date: %v", err)
	}
	return nil
}

// PreviewSplit resolves split inputs without saving anything. Rejected
// inputs are not an RPC error: the response carries Valid=false and both
// totals so a form can show what is left to assign.
func (s *LedgerService) PreviewSplit(ctx context.Context, req *connect.Request[api.PreviewSplitRequest]) (*connect.Response[api.PreviewSplitResponse], error) {
	if _, err := requireUser(ctx); err != nil {
		return nil, err
	}
	s.logger.Debug("PreviewSplit request received",
		"method", req.Msg.Method,
		"amount", req.Msg.Amount,
		"participants", len(req.Msg.Participants),
	)

	shares, err := split(req.Msg.Amount, req.Msg.Method, req.Msg.Participants, req.Msg.Values)
	if err != nil {
		var ve *calculator.ValidationError
		if !errors.As(err, &ve) {
			return nil, toConnectError(err)
		}
		return connect.NewResponse(&api.PreviewSplitResponse{
			Valid:     false,
			Reason:    string(ve.Reason),
			Message:   ve.Error(),
			Expected:  ve.Expected,
			Actual:    ve.Actual,
			Remaining: ve.Difference(),
		}), nil
	}

	total := calculator.SumShares(shares)
	return connect.NewResponse(&api.PreviewSplitResponse{
		Valid:    true,
		Shares:   toAPIShares(shares),
		Expected: req.Msg.Amount,
		Actual:   total,
	}), nil
}

// buildExpense validates input and resolves it into an expense owned by userID.
func (s *LedgerService) buildExpense(ctx context.Context, userID string, in api.ExpenseInput) (*models.Expense, error) {
	description := strings.TrimSpace(in.Description)
	if description == "" {
		return nil, invalidArgument("description is required")
	}
	if err := checkDate(in.Date); err != nil {
		return nil, err
	}

	shares, err := split(in.Amount, in.Method, in.Participants, in.Values)
	if err != nil {
		s.metrics.ObserveError(err)
		return nil, err
	}

	payer := strings.TrimSpace(in.PayerID)
	if payer == "" {
		payer = userID
	}

	e := &models.Expense{
		Description:  description,
		Amount:       in.Amount,
		Date:         strings.TrimSpace(in.Date),
		Category:     strings.TrimSpace(in.Category),
		GroupID:      in.GroupID,
		PayerID:      payer,
		SplitMethod:  models.SplitMethod(strings.ToLower(strings.TrimSpace(in.Method))),
		Shares:       shares,
		Participants: models.ExpenseParticipants(payer, shares),
		CreatedBy:    userID,
	}
	if !isParticipant(userID, e) {
		return nil, fmt.Errorf("expense: %w", errNotParticipant)
	}
	if err := s.checkGroup(ctx, userID, e.GroupID, e.Participants); err != nil {
		return nil, err
	}
	return e, nil
}

// checkGroup verifies the caller belongs to groupID and adds any record
// participants the group does not have yet.
func (s *LedgerService) checkGroup(ctx context.Context, userID, groupID string, participants []string) error {
	if groupID == "" {
		return nil
	}
	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return err
	}
	if !group.HasMember(userID) {
		return fmt.Errorf("group %s: %w", groupID, errNotMember)
	}

	var added []string
	for _, p := range participants {
		if !group.HasMember(p) {
			group.Members = append(group.Members, p)
			added = append(added, p)
		}
	}
	if len(added) == 0 {
		return nil
	}
	if err := s.store.UpdateGroup(ctx, group); err != nil {
		return fmt.Errorf("failed to add participants to group: %w", err)
	}
	s.logger.Info("Auto-added participants to group", "group_id", groupID, "new_members", added)
	return nil
}

// ownRecord loads a record and checks the caller takes part in it.
func (s *LedgerService) ownRecord(ctx context.Context, userID, recordID string) (models.Record, error) {
	if recordID == "" {
		return nil, invalidArgument("record_id required")
	}
	record, err := s.store.GetRecord(ctx, recordID)
	if err != nil {
		return nil, err
	}
	if !isParticipant(userID, record) {
		return nil, fmt.Errorf("record %s: %w", recordID, errNotParticipant)
	}
	return record, nil
}

// CreateExpense validates, splits and stores a new expense.
func (s *LedgerService) CreateExpense(ctx context.Context, req *connect.Request[api.CreateExpenseRequest]) (*connect.Response[api.CreateExpenseResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	in := req.Msg.Expense
	s.logger.Info("CreateExpense request received",
		"description", in.Description,
		"amount", in.Amount,
		"method", in.Method,
		"participants", len(in.Participants),
	)

	expense, err := s.buildExpense(ctx, userID, in)
	if err != nil {
		s.logger.Warn("CreateExpense rejected", "error", err)
		return nil, toConnectError(err)
	}
	if err := s.store.CreateRecord(ctx, expense); err != nil {
		s.logger.Error("CreateExpense failed", "error", err)
		return nil, toConnectError(err)
	}

	s.logger.Info("Expense created", "record_id", expense.ID, "participants", expense.Participants)
	s.notifier.RecordsChanged(ctx, expense.Participants)
	return connect.NewResponse(&api.CreateExpenseResponse{Record: toAPIRecord(expense, s.currency)}), nil
}

// UpdateExpense replaces an expense in full. Shares are recomputed from the
// new inputs; ID and creation time are kept.
func (s *LedgerService) UpdateExpense(ctx context.Context, req *connect.Request[api.UpdateExpenseRequest]) (*connect.Response[api.UpdateExpenseResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	s.logger.Info("UpdateExpense request received", "record_id", req.Msg.RecordID)

	old, err := s.ownRecord(ctx, userID, req.Msg.RecordID)
	if err != nil {
		s.logger.Warn("UpdateExpense failed", "record_id", req.Msg.RecordID, "error", err)
		return nil, toConnectError(err)
	}
	if _, ok := old.(*models.Expense); !ok {
		return nil, invalidArgument("record %s is not an expense", req.Msg.RecordID)
	}

	expense, err := s.buildExpense(ctx, userID, req.Msg.Expense)
	if err != nil {
		s.logger.Warn("UpdateExpense rejected", "record_id", req.Msg.RecordID, "error", err)
		return nil, toConnectError(err)
	}
	expense.ID = old.RecordID()
	if err := s.store.ReplaceRecord(ctx, expense); err != nil {
		s.logger.Error("UpdateExpense failed", "record_id", expense.ID, "error", err)
		return nil, toConnectError(err)
	}

	s.logger.Info("Expense updated", "record_id", expense.ID)
	s.notifier.RecordsChanged(ctx, union(old.ParticipantIDs(), expense.Participants))
	return connect.NewResponse(&api.UpdateExpenseResponse{Record: toAPIRecord(expense, s.currency)}), nil
}

// DeleteExpense removes an expense or a payment the caller takes part in.
func (s *LedgerService) DeleteExpense(ctx context.Context, req *connect.Request[api.DeleteExpenseRequest]) (*connect.Response[api.DeleteExpenseResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	s.logger.Info("DeleteExpense request received", "record_id", req.Msg.RecordID)

	record, err := s.ownRecord(ctx, userID, req.Msg.RecordID)
	if err != nil {
		s.logger.Warn("DeleteExpense failed", "record_id", req.Msg.RecordID, "error", err)
		return nil, toConnectError(err)
	}
	if err := s.store.DeleteRecord(ctx, record.RecordID()); err != nil {
		s.logger.Error("DeleteExpense failed", "record_id", record.RecordID(), "error", err)
		return nil, toConnectError(err)
	}

	s.logger.Info("Record deleted", "record_id", record.RecordID())
	s.notifier.RecordsChanged(ctx, record.ParticipantIDs())
	return connect.NewResponse(&api.DeleteExpenseResponse{}), nil
}

// RecordPayment stores a settlement between the caller and someone else.
func (s *LedgerService) RecordPayment(ctx context.Context, req *connect.Request[api.RecordPaymentRequest]) (*connect.Response[api.RecordPaymentResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	msg := req.Msg
	s.logger.Info("RecordPayment request received",
		"payer_id", msg.PayerID,
		"receiver_id", msg.ReceiverID,
		"amount", msg.Amount,
	)

	payer := strings.TrimSpace(msg.PayerID)
	if payer == "" {
		payer = userID
	}
	receiver := strings.TrimSpace(msg.ReceiverID)
	switch {
	case !msg.Amount.IsPositive():
		return nil, invalidArgument("payment amount must be greater than 0, got %s", msg.Amount)
	case receiver == "":
		return nil, invalidArgument("receiver_id required")
	case receiver == payer:
		return nil, invalidArgument("payer and receiver must differ")
	}
	if err := checkDate(msg.Date); err != nil {
		return nil, err
	}

	description := strings.TrimSpace(msg.Description)
	if description == "" {
		description = defaultPaymentDescription
	}
	payment := &models.Payment{
		Description:  description,
		Amount:       msg.Amount,
		Date:         strings.TrimSpace(msg.Date),
		GroupID:      msg.GroupID,
		PayerID:      payer,
		ReceiverID:   receiver,
		Participants: []string{payer, receiver},
		CreatedBy:    userID,
	}
	if !isParticipant(userID, payment) {
		return nil, toConnectError(fmt.Errorf("payment: %w", errNotParticipant))
	}
	if err := s.checkGroup(ctx, userID, payment.GroupID, payment.Participants); err != nil {
		return nil, toConnectError(err)
	}

	if err := s.store.CreateRecord(ctx, payment); err != nil {
		s.logger.Error("RecordPayment failed", "error", err)
		return nil, toConnectError(err)
	}

	s.logger.Info("Payment recorded", "record_id", payment.ID)
	s.notifier.RecordsChanged(ctx, payment.Participants)
	return connect.NewResponse(&api.RecordPaymentResponse{Record: toAPIRecord(payment, s.currency)}), nil
}

// ListRecords returns the caller's records, or every record of one group
// the caller belongs to. Newest first.
func (s *LedgerService) ListRecords(ctx context.Context, req *connect.Request[api.ListRecordsRequest]) (*connect.Response[api.ListRecordsResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}

	var records []models.Record
	if groupID := req.Msg.GroupID; groupID != "" {
		var group *models.Group
		group, err = s.store.GetGroup(ctx, groupID)
		if err == nil && !group.HasMember(userID) {
			err = fmt.Errorf("group %s: %w", groupID, errNotMember)
		}
		if err == nil {
			records, err = s.store.ListRecordsByGroup(ctx, groupID)
		}
	} else {
		records, err = s.store.ListRecordsForParticipant(ctx, userID)
	}
	if err != nil {
		s.logger.Warn("ListRecords failed", "group_id", req.Msg.GroupID, "error", err)
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&api.ListRecordsResponse{Records: toAPIRecords(records, s.currency)}), nil
}

// GetBalances recomputes the caller's balances from every record they take part in.
func (s *LedgerService) GetBalances(ctx context.Context, req *connect.Request[api.GetBalancesRequest]) (*connect.Response[api.GetBalancesResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}

	snap, err := s.snapshots.ForUser(ctx, userID, req.Msg.SkipInvalid)
	if err != nil {
		s.logger.Error("GetBalances failed", "user_id", userID, "error", err)
		return nil, toConnectError(err)
	}
	if len(snap.Excluded) > 0 {
		s.logger.Warn("GetBalances skipped malformed records", "user_id", userID, "count", len(snap.Excluded))
	}

	return connect.NewResponse(&api.GetBalancesResponse{Balances: snap}), nil
}

// GetSpending groups the caller's expenses by month.
func (s *LedgerService) GetSpending(ctx context.Context, req *connect.Request[api.GetSpendingRequest]) (*connect.Response[api.GetSpendingResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}

	records, err := s.store.ListRecordsForParticipant(ctx, userID)
	if err != nil {
		s.logger.Error("GetSpending failed", "user_id", userID, "error", err)
		return nil, toConnectError(err)
	}

	spending, err := calculator.SpendingByMonth(records)
	excluded := calculator.IntegrityErrors(err)
	if err != nil {
		s.metrics.ObserveError(err)
		s.logger.Warn("GetSpending skipped records with bad dates", "user_id", userID, "count", len(excluded))
	}

	now := s.now()
	current := now.Format("2006-01")
	resp := &api.GetSpendingResponse{
		CurrentMonth: s.monthSpending(current, spending.Current(now)),
		Previous:     []api.MonthSpending{},
		Excluded:     toAPIIssues(excluded),
	}
	for _, month := range spending.Previous(now) {
		resp.Previous = append(resp.Previous, s.monthSpending(month, spending[month]))
	}
	return connect.NewResponse(resp), nil
}

func (s *LedgerService) monthSpending(month string, amount decimal.Decimal) api.MonthSpending {
	return api.MonthSpending{
		Month:   month,
		Amount:  amount,
		Display: calculator.FormatAmount(amount, s.currency),
	}
}

// ConvertToExact turns a split into exact amounts per participant, rounded
// to the currency's minor unit. The result validates as an exact split of
// the same total.
func (s *LedgerService) ConvertToExact(ctx context.Context, req *connect.Request[api.ConvertToExactRequest]) (*connect.Response[api.ConvertToExactResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}

	var (
		amount decimal.Decimal
		shares []models.Share
	)
	if req.Msg.RecordID != "" {
		var record models.Record
		record, err = s.ownRecord(ctx, userID, req.Msg.RecordID)
		if err == nil {
			e, ok := record.(*models.Expense)
			if !ok {
				return nil, invalidArgument("record %s is not an expense", req.Msg.RecordID)
			}
			amount, shares = e.Amount, e.Shares
		}
	} else {
		amount = req.Msg.Amount
		shares, err = split(amount, req.Msg.Method, req.Msg.Participants, req.Msg.Values)
	}
	if err != nil {
		s.logger.Warn("ConvertToExact failed", "record_id", req.Msg.RecordID, "error", err)
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&api.ConvertToExactResponse{
		Values: calculator.ToExact(amount, shares, s.currency),
	}), nil
}

// union returns a followed by the ids of b not already in a.
func union(a, b []string) []string {
	seen := make(map[string]bool, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, id := range append(append([]string{}, a...), b...) {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
