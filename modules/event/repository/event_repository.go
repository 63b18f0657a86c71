package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/lib/pq"

	"ourtime-api/core/database"
	"ourtime-api/core/errors"
	"ourtime-api/core/logger"
	"ourtime-api/core/params"
	"ourtime-api/modules/event/entity"

	"github.com/google/uuid"
)

// EventRepository handles event, time-slot and final-choice persistence.
type EventRepository struct {
	DB database.IDatabase
}

func NewEventRepository(db database.IDatabase) *EventRepository {
	return &EventRepository{DB: db}
}

// EventRepositoryInterface defines the repository contract
type EventRepositoryInterface interface {
	// Events
	CreateEventWithSlots(ctx context.Context, event *entity.Event, slots []entity.TimeSlot) (*entity.Event, error)
	GetEventByID(ctx context.Context, id int64) (*entity.Event, error)
	GetEventBySlug(ctx context.Context, slug string) (*entity.Event, error)
	GetEventsByOrganizer(ctx context.Context, organizerID uuid.UUID, p params.QueryParams) ([]entity.Event, int, error)
	UpdateEventWithSlots(ctx context.Context, event *entity.Event, slots []entity.TimeSlot) error
	SoftDeleteEvent(ctx context.Context, id int64) error
	PurgeDeletedBefore(ctx context.Context, cutoff time.Time) (int64, error)

	// Slots
	GetSlotsByEventID(ctx context.Context, eventID int64) ([]entity.TimeSlot, error)
	GetSlotByID(ctx context.Context, slotID int64) (*entity.TimeSlot, error)
	CountSlotsByEventID(ctx context.Context, eventID int64) (int, error)

	// Participants (count only; rows live in the participant module)
	CountParticipantsByEventID(ctx context.Context, eventID int64) (int, error)

	// Final choice
	CreateFinalChoice(ctx context.Context, fc *entity.FinalChoice) (*entity.FinalChoice, error)
	GetFinalChoiceByEventID(ctx context.Context, eventID int64) (*entity.FinalChoice, error)
}

const eventColumns = `id, slug, title, description, organizer_id, date_start, date_end,
	       time_start, time_end, timezone, deadline_at, status, is_deleted, created_at, updated_at`

// ===================== Events =====================

func (r *EventRepository) CreateEventWithSlots(ctx context.Context, event *entity.Event, slots []entity.TimeSlot) (*entity.Event, error) {
	tx, err := r.DB.BeginTxx(ctx)
	if err != nil {
		logger.Error("EventRepository:CreateEventWithSlots:Begin", err)
		return nil, err
	}
	defer tx.Rollback()

	query := `
		INSERT INTO events (slug, title, description, organizer_id, date_start, date_end,
		                    time_start, time_end, timezone, deadline_at, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING ` + eventColumns

	var created entity.Event
	err = tx.GetContext(ctx, &created, query,
		event.Slug, event.Title, event.Description, event.OrganizerID,
		event.DateStart, event.DateEnd, event.TimeStart, event.TimeEnd,
		event.Timezone, event.DeadlineAt, event.Status)
	if err != nil {
		logger.Error("EventRepository:CreateEventWithSlots:Insert", err)
		return nil, err
	}

	insertSlot := `INSERT INTO time_slots (event_id, start_datetime, end_datetime) VALUES ($1, $2, $3)`
	for _, slot := range slots {
		if _, err := tx.ExecContext(ctx, insertSlot, created.ID, slot.StartDatetime, slot.EndDatetime); err != nil {
			logger.Error("EventRepository:CreateEventWithSlots:InsertSlot", err)
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		logger.Error("EventRepository:CreateEventWithSlots:Commit", err)
		return nil, err
	}

	return &created, nil
}

func (r *EventRepository) GetEventByID(ctx context.Context, id int64) (*entity.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1 AND is_deleted = false`

	var event entity.Event
	err := r.DB.GetContext(ctx, &event, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		logger.Error("EventRepository:GetEventByID", err)
		return nil, err
	}
	return &event, nil
}

func (r *EventRepository) GetEventBySlug(ctx context.Context, slug string) (*entity.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE slug = $1 AND is_deleted = false`

	var event entity.Event
	err := r.DB.GetContext(ctx, &event, query, slug)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		logger.Error("EventRepository:GetEventBySlug", err)
		return nil, err
	}
	return &event, nil
}

func (r *EventRepository) GetEventsByOrganizer(ctx context.Context, organizerID uuid.UUID, p params.QueryParams) ([]entity.Event, int, error) {
	offset := (p.PageNumber - 1) * p.PageSize

	var totalItems int
	err := r.DB.GetContext(ctx, &totalItems,
		`SELECT COUNT(*) FROM events WHERE organizer_id = $1 AND is_deleted = false`, organizerID)
	if err != nil {
		logger.Error("EventRepository:GetEventsByOrganizer:Count", err)
		return nil, 0, err
	}

	query := `
		SELECT ` + eventColumns + `
		FROM events
		WHERE organizer_id = $1 AND is_deleted = false
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	var events []entity.Event
	err = r.DB.SelectContext(ctx, &events, query, organizerID, p.PageSize, offset)
	if err != nil {
		logger.Error("EventRepository:GetEventsByOrganizer:Select", err)
		return nil, 0, err
	}

	return events, totalItems, nil
}

// UpdateEventWithSlots rewrites the event row and reconciles the slot grid in
// one transaction. Slots whose start survives the new grid keep their ids
// (and therefore their ledger rows); removed slots cascade-delete their
// availability entries.
func (r *EventRepository) UpdateEventWithSlots(ctx context.Context, event *entity.Event, slots []entity.TimeSlot) error {
	tx, err := r.DB.BeginTxx(ctx)
	if err != nil {
		logger.Error("EventRepository:UpdateEventWithSlots:Begin", err)
		return err
	}
	defer tx.Rollback()

	query := `
		UPDATE events
		SET title = $2, description = $3, date_start = $4, date_end = $5,
		    time_start = $6, time_end = $7, deadline_at = $8, updated_at = NOW()
		WHERE id = $1
	`
	if _, err := tx.ExecContext(ctx, query,
		event.ID, event.Title, event.Description, event.DateStart, event.DateEnd,
		event.TimeStart, event.TimeEnd, event.DeadlineAt); err != nil {
		logger.Error("EventRepository:UpdateEventWithSlots:Update", err)
		return err
	}

	if slots != nil {
		starts := make([]time.Time, 0, len(slots))
		for _, s := range slots {
			starts = append(starts, s.StartDatetime)
		}

		deleteGone := `DELETE FROM time_slots WHERE event_id = $1 AND start_datetime != ALL($2)`
		if _, err := tx.ExecContext(ctx, deleteGone, event.ID, pq.Array(starts)); err != nil {
			logger.Error("EventRepository:UpdateEventWithSlots:DeleteGone", err)
			return err
		}

		insertSlot := `
			INSERT INTO time_slots (event_id, start_datetime, end_datetime)
			VALUES ($1, $2, $3)
			ON CONFLICT (event_id, start_datetime) DO NOTHING
		`
		for _, slot := range slots {
			if _, err := tx.ExecContext(ctx, insertSlot, event.ID, slot.StartDatetime, slot.EndDatetime); err != nil {
				logger.Error("EventRepository:UpdateEventWithSlots:InsertSlot", err)
				return err
			}
		}
	}

	if err := tx.Commit(); err != nil {
		logger.Error("EventRepository:UpdateEventWithSlots:Commit", err)
		return err
	}
	return nil
}

func (r *EventRepository) SoftDeleteEvent(ctx context.Context, id int64) error {
	query := `UPDATE events SET is_deleted = true, updated_at = NOW() WHERE id = $1`
	if err := r.DB.ExecContext(ctx, query, id); err != nil {
		logger.Error("EventRepository:SoftDeleteEvent", err)
		return err
	}
	return nil
}

// PurgeDeletedBefore hard-deletes soft-deleted events whose last update is
// older than cutoff. Slots, participants and ledger rows go with them via
// FK cascades.
func (r *EventRepository) PurgeDeletedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.DB.NamedExecContext(ctx,
		`DELETE FROM events WHERE is_deleted = true AND updated_at < :cutoff`,
		map[string]any{"cutoff": cutoff})
	if err != nil {
		logger.Error("EventRepository:PurgeDeletedBefore", err)
		return 0, err
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// ===================== Slots =====================

func (r *EventRepository) GetSlotsByEventID(ctx context.Context, eventID int64) ([]entity.TimeSlot, error) {
	query := `
		SELECT id, event_id, start_datetime, end_datetime
		FROM time_slots
		WHERE event_id = $1
		ORDER BY start_datetime ASC
	`
	var slots []entity.TimeSlot
	if err := r.DB.SelectContext(ctx, &slots, query, eventID); err != nil {
		logger.Error("EventRepository:GetSlotsByEventID", err)
		return nil, err
	}
	return slots, nil
}

func (r *EventRepository) GetSlotByID(ctx context.Context, slotID int64) (*entity.TimeSlot, error) {
	query := `SELECT id, event_id, start_datetime, end_datetime FROM time_slots WHERE id = $1`

	var slot entity.TimeSlot
	err := r.DB.GetContext(ctx, &slot, query, slotID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		logger.Error("EventRepository:GetSlotByID", err)
		return nil, err
	}
	return &slot, nil
}

func (r *EventRepository) CountSlotsByEventID(ctx context.Context, eventID int64) (int, error) {
	var count int
	err := r.DB.GetContext(ctx, &count, `SELECT COUNT(*) FROM time_slots WHERE event_id = $1`, eventID)
	if err != nil {
		logger.Error("EventRepository:CountSlotsByEventID", err)
		return 0, err
	}
	return count, nil
}

func (r *EventRepository) CountParticipantsByEventID(ctx context.Context, eventID int64) (int, error) {
	var count int
	err := r.DB.GetContext(ctx, &count, `SELECT COUNT(*) FROM participants WHERE event_id = $1`, eventID)
	if err != nil {
		logger.Error("EventRepository:CountParticipantsByEventID", err)
		return 0, err
	}
	return count, nil
}

// ===================== Final choice =====================

// CreateFinalChoice inserts the final choice and flips the event into its
// terminal state in one transaction. The unique constraint on event_id turns
// a concurrent second finalize into ErrAlreadyFinalized, never two rows.
func (r *EventRepository) CreateFinalChoice(ctx context.Context, fc *entity.FinalChoice) (*entity.FinalChoice, error) {
	tx, err := r.DB.BeginTxx(ctx)
	if err != nil {
		logger.Error("EventRepository:CreateFinalChoice:Begin", err)
		return nil, err
	}
	defer tx.Rollback()

	query := `
		INSERT INTO final_choices (event_id, slot_id, chosen_by)
		VALUES ($1, $2, $3)
		RETURNING id, event_id, slot_id, chosen_by, created_at
	`
	var created entity.FinalChoice
	err = tx.GetContext(ctx, &created, query, fc.EventID, fc.SlotID, fc.ChosenBy)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return nil, errors.NewAppError(errors.ErrAlreadyFinalized, "event already has a final choice", err)
		}
		logger.Error("EventRepository:CreateFinalChoice:Insert", err)
		return nil, err
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE events SET status = $2, updated_at = NOW() WHERE id = $1`,
		fc.EventID, entity.EventStatusFinalized); err != nil {
		logger.Error("EventRepository:CreateFinalChoice:UpdateStatus", err)
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		logger.Error("EventRepository:CreateFinalChoice:Commit", err)
		return nil, err
	}
	return &created, nil
}

func (r *EventRepository) GetFinalChoiceByEventID(ctx context.Context, eventID int64) (*entity.FinalChoice, error) {
	query := `SELECT id, event_id, slot_id, chosen_by, created_at FROM final_choices WHERE event_id = $1`

	var fc entity.FinalChoice
	err := r.DB.GetContext(ctx, &fc, query, eventID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		logger.Error("EventRepository:GetFinalChoiceByEventID", err)
		return nil, err
	}
	return &fc, nil
}
