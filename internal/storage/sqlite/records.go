package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/models"
)

const (
	kindExpense = "expense"
	kindPayment = "payment"

	recordColumns = `id, kind, description, amount, date, category, group_id, payer_id,
		receiver_id, split_method, created_by, created_at`
)

// CreateRecord persists a new expense or payment.
func (s *SQLiteStore) CreateRecord(ctx context.Context, record models.Record) error {
	now := time.Now().Unix()
	switch r := record.(type) {
	case *models.Expense:
		if r.ID == "" {
			r.ID = uuid.New().String()
		}
		if r.CreatedAt == 0 {
			r.CreatedAt = now
		}
		if len(r.Participants) == 0 {
			r.Participants = models.ExpenseParticipants(r.PayerID, r.Shares)
		}
	case *models.Payment:
		if r.ID == "" {
			r.ID = uuid.New().String()
		}
		if r.CreatedAt == 0 {
			r.CreatedAt = now
		}
		if len(r.Participants) == 0 {
			r.Participants = []string{r.PayerID, r.ReceiverID}
		}
	default:
		return fmt.Errorf("unsupported record type %T", record)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	row := toRow(record)
	_, err = tx.ExecContext(ctx,
		`INSERT INTO records (`+recordColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		row.id, row.kind, row.description, row.amount.String(), row.date, row.category,
		nullable(row.groupID), row.payerID, nullable(row.receiverID), nullable(row.splitMethod),
		row.createdBy, row.createdAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert record: %w", err)
	}

	if err := insertRecordChildren(ctx, tx, record); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// ReplaceRecord overwrites an existing record. The kind may change, e.g. an
// expense re-entered as a payment.
func (s *SQLiteStore) ReplaceRecord(ctx context.Context, record models.Record) error {
	switch r := record.(type) {
	case *models.Expense:
		if len(r.Participants) == 0 {
			r.Participants = models.ExpenseParticipants(r.PayerID, r.Shares)
		}
	case *models.Payment:
		if len(r.Participants) == 0 {
			r.Participants = []string{r.PayerID, r.ReceiverID}
		}
	default:
		return fmt.Errorf("unsupported record type %T", record)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var createdAt int64
	err = tx.QueryRowContext(ctx, "SELECT created_at FROM records WHERE id = ?", record.RecordID()).Scan(&createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return notFound("record", record.RecordID())
	}
	if err != nil {
		return fmt.Errorf("failed to check record existence: %w", err)
	}
	setCreatedAt(record, createdAt)

	row := toRow(record)
	_, err = tx.ExecContext(ctx,
		`UPDATE records SET kind = ?, description = ?, amount = ?, date = ?, category = ?,
		 group_id = ?, payer_id = ?, receiver_id = ?, split_method = ?, created_by = ?
		 WHERE id = ?`,
		row.kind, row.description, row.amount.String(), row.date, row.category,
		nullable(row.groupID), row.payerID, nullable(row.receiverID), nullable(row.splitMethod),
		row.createdBy, row.id,
	)
	if err != nil {
		return fmt.Errorf("failed to update record: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM record_shares WHERE record_id = ?", row.id); err != nil {
		return fmt.Errorf("failed to clear shares: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM record_participants WHERE record_id = ?", row.id); err != nil {
		return fmt.Errorf("failed to clear participants: %w", err)
	}
	if err := insertRecordChildren(ctx, tx, record); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetRecord retrieves a record with its shares and participants.
func (s *SQLiteStore) GetRecord(ctx context.Context, recordID string) (models.Record, error) {
	records, err := s.listRecords(ctx, "id = ?", recordID)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, notFound("record", recordID)
	}
	return records[0], nil
}

// DeleteRecord removes a record by ID.
func (s *SQLiteStore) DeleteRecord(ctx context.Context, recordID string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM records WHERE id = ?", recordID)
	if err != nil {
		return fmt.Errorf("failed to delete record: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return notFound("record", recordID)
	}
	return nil
}

// ListRecordsForParticipant returns every record participantID takes part in.
func (s *SQLiteStore) ListRecordsForParticipant(ctx context.Context, participantID string) ([]models.Record, error) {
	return s.listRecords(ctx,
		"id IN (SELECT record_id FROM record_participants WHERE participant_id = ?)", participantID)
}

// ListRecordsByGroup returns every record tagged with groupID.
func (s *SQLiteStore) ListRecordsByGroup(ctx context.Context, groupID string) ([]models.Record, error) {
	return s.listRecords(ctx, "group_id = ?", groupID)
}

// ListAllRecords returns every stored record. Used by offline tooling.
func (s *SQLiteStore) ListAllRecords(ctx context.Context) ([]models.Record, error) {
	return s.listRecords(ctx, "1 = 1")
}

// listRecords loads the records matching where (a condition on the records
// table) in three queries: rows, shares, participants. The queries share one
// read transaction so a concurrent write never splits a record across them.
func (s *SQLiteStore) listRecords(ctx context.Context, where string, args ...any) ([]models.Record, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx,
		`SELECT `+recordColumns+` FROM records WHERE `+where+` ORDER BY date DESC, created_at DESC, id`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}

	var records []models.Record
	byID := make(map[string]models.Record)
	for rows.Next() {
		var row recordRow
		var groupID, receiverID, splitMethod sql.NullString
		if err := rows.Scan(&row.id, &row.kind, &row.description, &row.amount, &row.date, &row.category,
			&groupID, &row.payerID, &receiverID, &splitMethod, &row.createdBy, &row.createdAt); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		row.groupID = groupID.String
		row.receiverID = receiverID.String
		row.splitMethod = splitMethod.String

		r, err := row.toRecord()
		if err != nil {
			rows.Close()
			return nil, err
		}
		records = append(records, r)
		byID[row.id] = r
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate records: %w", err)
	}
	if len(records) == 0 {
		return records, nil
	}

	shareRows, err := tx.QueryContext(ctx,
		`SELECT record_id, participant_id, amount FROM record_shares
		 WHERE record_id IN (SELECT id FROM records WHERE `+where+`)
		 ORDER BY record_id, position`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get shares: %w", err)
	}
	for shareRows.Next() {
		var (
			recordID string
			share    models.Share
		)
		if err := shareRows.Scan(&recordID, &share.ParticipantID, &share.Amount); err != nil {
			shareRows.Close()
			return nil, fmt.Errorf("failed to scan share: %w", err)
		}
		if e, ok := byID[recordID].(*models.Expense); ok {
			e.Shares = append(e.Shares, share)
		}
	}
	shareRows.Close()
	if err := shareRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate shares: %w", err)
	}

	partRows, err := tx.QueryContext(ctx,
		`SELECT record_id, participant_id FROM record_participants
		 WHERE record_id IN (SELECT id FROM records WHERE `+where+`)
		 ORDER BY record_id, participant_id`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get participants: %w", err)
	}
	defer partRows.Close()
	for partRows.Next() {
		var recordID, participantID string
		if err := partRows.Scan(&recordID, &participantID); err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		switch r := byID[recordID].(type) {
		case *models.Expense:
			r.Participants = append(r.Participants, participantID)
		case *models.Payment:
			r.Participants = append(r.Participants, participantID)
		}
	}
	if err := partRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate participants: %w", err)
	}

	return records, nil
}

// recordRow is the flat column layout shared by both record kinds.
type recordRow struct {
	id, kind, description string
	amount                decimal.Decimal
	date, category        string
	groupID, payerID      string
	receiverID            string
	splitMethod           string
	createdBy             string
	createdAt             int64
}

func toRow(record models.Record) recordRow {
	switch r := record.(type) {
	case *models.Expense:
		return recordRow{
			id: r.ID, kind: kindExpense, description: r.Description, amount: r.Amount,
			date: r.Date, category: r.Category, groupID: r.GroupID, payerID: r.PayerID,
			splitMethod: string(r.SplitMethod), createdBy: r.CreatedBy, createdAt: r.CreatedAt,
		}
	case *models.Payment:
		return recordRow{
			id: r.ID, kind: kindPayment, description: r.Description, amount: r.Amount,
			date: r.Date, groupID: r.GroupID, payerID: r.PayerID, receiverID: r.ReceiverID,
			createdBy: r.CreatedBy, createdAt: r.CreatedAt,
		}
	}
	return recordRow{}
}

func (row recordRow) toRecord() (models.Record, error) {
	switch row.kind {
	case kindExpense:
		return &models.Expense{
			ID: row.id, Description: row.description, Amount: row.amount, Date: row.date,
			Category: row.category, GroupID: row.groupID, PayerID: row.payerID,
			SplitMethod: models.SplitMethod(row.splitMethod), CreatedBy: row.createdBy, CreatedAt: row.createdAt,
		}, nil
	case kindPayment:
		return &models.Payment{
			ID: row.id, Description: row.description, Amount: row.amount, Date: row.date,
			GroupID: row.groupID, PayerID: row.payerID, ReceiverID: row.receiverID,
			CreatedBy: row.createdBy, CreatedAt: row.createdAt,
		}, nil
	}
	return nil, fmt.Errorf("record %s has unknown kind %q", row.id, row.kind)
}

func setCreatedAt(record models.Record, createdAt int64) {
	switch r := record.(type) {
	case *models.Expense:
		r.CreatedAt = createdAt
	case *models.Payment:
		r.CreatedAt = createdAt
	}
}

func insertRecordChildren(ctx context.Context, tx *sql.Tx, record models.Record) error {
	if e, ok := record.(*models.Expense); ok {
		for i, share := range e.Shares {
			_, err := tx.ExecContext(ctx,
				"INSERT INTO record_shares (record_id, position, participant_id, amount) VALUES (?, ?, ?, ?)",
				e.ID, i, share.ParticipantID, share.Amount.String(),
			)
			if err != nil {
				return fmt.Errorf("failed to insert share: %w", err)
			}
		}
	}
	for _, p := range record.ParticipantIDs() {
		_, err := tx.ExecContext(ctx,
			"INSERT OR IGNORE INTO record_participants (record_id, participant_id) VALUES (?, ?)",
			record.RecordID(), p,
		)
		if err != nil {
			return fmt.Errorf("failed to insert participant: %w", err)
		}
	}
	return nil
}
