package service

import (
	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/pkg/api"
)

func toAPIUser(u *models.User) *api.User {
	return &api.User{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		CreatedAt:   u.CreatedAt,
	}
}

func toAPIFriend(f *models.Friend) *api.Friend {
	return &api.Friend{
		ID:        f.ID,
		Name:      f.Name,
		Avatar:    f.Avatar,
		CreatedAt: f.CreatedAt,
	}
}

func toAPIGroup(g *models.Group) *api.Group {
	return &api.Group{
		ID:        g.ID,
		Name:      g.Name,
		Members:   g.Members,
		CreatedBy: g.CreatedBy,
		CreatedAt: g.CreatedAt,
	}
}

func toAPIShares(shares []models.Share) []api.Share {
	out := make([]api.Share, len(shares))
	for i, s := range shares {
		out[i] = api.Share{ParticipantID: s.ParticipantID, Amount: s.Amount}
	}
	return out
}

func toAPIRecord(r models.Record, currency string) *api.Record {
	switch rec := r.(type) {
	case *models.Expense:
		return &api.Record{
			ID:           rec.ID,
			Kind:         api.KindExpense,
			Description:  rec.Description,
			Amount:       rec.Amount,
			Display:      calculator.FormatAmount(rec.Amount, currency),
			Date:         rec.Date,
			Category:     rec.Category,
			GroupID:      rec.GroupID,
			PayerID:      rec.PayerID,
			SplitMethod:  string(rec.SplitMethod),
			Shares:       toAPIShares(rec.Shares),
			Participants: rec.Participants,
			CreatedBy:    rec.CreatedBy,
			CreatedAt:    rec.CreatedAt,
		}
	case *models.Payment:
		return &api.Record{
			ID:           rec.ID,
			Kind:         api.KindPayment,
			Description:  rec.Description,
			Amount:       rec.Amount,
			Display:      calculator.FormatAmount(rec.Amount, currency),
			Date:         rec.Date,
			GroupID:      rec.GroupID,
			PayerID:      rec.PayerID,
			ReceiverID:   rec.ReceiverID,
			Participants: rec.Participants,
			CreatedBy:    rec.CreatedBy,
			CreatedAt:    rec.CreatedAt,
		}
	}
	return nil
}

func toAPIRecords(records []models.Record, currency string) []*api.Record {
	out := make([]*api.Record, 0, len(records))
	for _, r := range records {
		if ar := toAPIRecord(r, currency); ar != nil {
			out = append(out, ar)
		}
	}
	return out
}

func toAPIIssues(errs []*calculator.DataIntegrityError) []api.IntegrityIssue {
	if len(errs) == 0 {
		return nil
	}
	out := make([]api.IntegrityIssue, len(errs))
	for i, e := range errs {
		out[i] = api.IntegrityIssue{RecordID: e.RecordID, Reason: e.Reason}
	}
	return out
}

func isParticipant(userID string, record models.Record) bool {
	for _, p := range record.ParticipantIDs() {
		if p == userID {
			return true
		}
	}
	return false
}
