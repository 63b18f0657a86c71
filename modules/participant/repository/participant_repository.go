package repository

import (
	"context"
	"database/sql"

	"github.com/lib/pq"

	"ourtime-api/core/database"
	"ourtime-api/core/errors"
	"ourtime-api/core/logger"
	"ourtime-api/modules/participant/entity"
)

// ParticipantRepository handles participant rows and the availability ledger.
type ParticipantRepository struct {
	DB database.IDatabase
}

func NewParticipantRepository(db database.IDatabase) *ParticipantRepository {
	return &ParticipantRepository{DB: db}
}

// ParticipantRepositoryInterface defines the repository contract
type ParticipantRepositoryInterface interface {
	CreateParticipant(ctx context.Context, p *entity.Participant) (*entity.Participant, error)
	GetParticipantByID(ctx context.Context, id int64) (*entity.Participant, error)
	GetParticipantsByEventID(ctx context.Context, eventID int64) ([]entity.Participant, error)
	NicknameExists(ctx context.Context, eventID int64, nickname string) (bool, error)
	DeleteParticipant(ctx context.Context, id int64) error

	// Ledger
	ReplaceEntries(ctx context.Context, participantID int64, entries []entity.AvailabilityEntry) error
	GetEntriesByParticipantID(ctx context.Context, participantID int64) ([]entity.AvailabilityEntry, error)
	GetEntriesBySlotID(ctx context.Context, slotID int64) ([]entity.AvailabilityEntry, error)
	GetSlotIDsByEventID(ctx context.Context, eventID int64) ([]int64, error)
}

const participantColumns = `id, event_id, user_id, nickname, email, phone, created_at`

// ===================== Participants =====================

func (r *ParticipantRepository) CreateParticipant(ctx context.Context, p *entity.Participant) (*entity.Participant, error) {
	query := `
		INSERT INTO participants (event_id, user_id, nickname, email, phone)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + participantColumns

	var created entity.Participant
	err := r.DB.GetContext(ctx, &created, query, p.EventID, p.UserID, p.Nickname, p.Email, p.Phone)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return nil, errors.NewAppError(errors.ErrAlreadyExists, "nickname already taken for this event", err)
		}
		logger.Error("ParticipantRepository:CreateParticipant", err)
		return nil, err
	}
	return &created, nil
}

func (r *ParticipantRepository) GetParticipantByID(ctx context.Context, id int64) (*entity.Participant, error) {
	query := `SELECT ` + participantColumns + ` FROM participants WHERE id = $1`

	var p entity.Participant
	err := r.DB.GetContext(ctx, &p, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		logger.Error("ParticipantRepository:GetParticipantByID", err)
		return nil, err
	}
	return &p, nil
}

// GetParticipantsByEventID returns participants in join order, the canonical
// order for dashboard listings.
func (r *ParticipantRepository) GetParticipantsByEventID(ctx context.Context, eventID int64) ([]entity.Participant, error) {
	query := `
		SELECT ` + participantColumns + `
		FROM participants
		WHERE event_id = $1
		ORDER BY created_at ASC, id ASC
	`
	var participants []entity.Participant
	if err := r.DB.SelectContext(ctx, &participants, query, eventID); err != nil {
		logger.Error("ParticipantRepository:GetParticipantsByEventID", err)
		return nil, err
	}
	return participants, nil
}

func (r *ParticipantRepository) NicknameExists(ctx context.Context, eventID int64, nickname string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM participants WHERE event_id = $1 AND nickname = $2)`
	if err := r.DB.GetContext(ctx, &exists, query, eventID, nickname); err != nil {
		logger.Error("ParticipantRepository:NicknameExists", err)
		return false, err
	}
	return exists, nil
}

func (r *ParticipantRepository) DeleteParticipant(ctx context.Context, id int64) error {
	if err := r.DB.ExecContext(ctx, `DELETE FROM participants WHERE id = $1`, id); err != nil {
		logger.Error("ParticipantRepository:DeleteParticipant", err)
		return err
	}
	return nil
}

// ===================== Ledger =====================

// ReplaceEntries swaps a participant's entire entry set in one transaction.
// Delete-then-insert keeps the at-most-one-row-per-slot invariant and makes
// concurrent resubmissions last-write-wins at the storage layer.
func (r *ParticipantRepository) ReplaceEntries(ctx context.Context, participantID int64, entries []entity.AvailabilityEntry) error {
	tx, err := r.DB.BeginTxx(ctx)
	if err != nil {
		logger.Error("ParticipantRepository:ReplaceEntries:Begin", err)
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM availability_entries WHERE participant_id = $1`, participantID); err != nil {
		logger.Error("ParticipantRepository:ReplaceEntries:Delete", err)
		return err
	}

	insert := `
		INSERT INTO availability_entries (participant_id, time_slot_id, is_available)
		VALUES ($1, $2, $3)
	`
	for _, e := range entries {
		if _, err := tx.ExecContext(ctx, insert, participantID, e.TimeSlotID, e.IsAvailable); err != nil {
			logger.Error("ParticipantRepository:ReplaceEntries:Insert", err)
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		logger.Error("ParticipantRepository:ReplaceEntries:Commit", err)
		return err
	}
	return nil
}

func (r *ParticipantRepository) GetEntriesByParticipantID(ctx context.Context, participantID int64) ([]entity.AvailabilityEntry, error) {
	query := `
		SELECT id, participant_id, time_slot_id, is_available, created_at
		FROM availability_entries
		WHERE participant_id = $1
		ORDER BY time_slot_id ASC
	`
	var entries []entity.AvailabilityEntry
	if err := r.DB.SelectContext(ctx, &entries, query, participantID); err != nil {
		logger.Error("ParticipantRepository:GetEntriesByParticipantID", err)
		return nil, err
	}
	return entries, nil
}

func (r *ParticipantRepository) GetEntriesBySlotID(ctx context.Context, slotID int64) ([]entity.AvailabilityEntry, error) {
	query := `
		SELECT id, participant_id, time_slot_id, is_available, created_at
		FROM availability_entries
		WHERE time_slot_id = $1
		ORDER BY participant_id ASC
	`
	var entries []entity.AvailabilityEntry
	if err := r.DB.SelectContext(ctx, &entries, query, slotID); err != nil {
		logger.Error("ParticipantRepository:GetEntriesBySlotID", err)
		return nil, err
	}
	return entries, nil
}

func (r *ParticipantRepository) GetSlotIDsByEventID(ctx context.Context, eventID int64) ([]int64, error) {
	var ids []int64
	query := `SELECT id FROM time_slots WHERE event_id = $1 ORDER BY start_datetime ASC`
	if err := r.DB.SelectContext(ctx, &ids, query, eventID); err != nil {
		logger.Error("ParticipantRepository:GetSlotIDsByEventID", err)
		return nil, err
	}
	return ids, nil
}
