package repository

import (
	"context"
	"database/sql"

	"ourtime-api/core/database"
	eventEntity "ourtime-api/modules/event/entity"
	participantEntity "ourtime-api/modules/participant/entity"
)

type DashboardRepository struct {
	DB database.IDatabase
}

// SnapshotRows is the raw material for one aggregation pass. Rows are
// ordered the way the aggregator expects: slots by start, participants by
// registration.
type SnapshotRows struct {
	Event        *eventEntity.Event
	Slots        []eventEntity.TimeSlot
	Participants []participantEntity.Participant
	Entries      []participantEntity.AvailabilityEntry
}

type DashboardRepositoryInterface interface {
	LoadSnapshot(ctx context.Context, eventID int64) (*SnapshotRows, error)
}

func NewDashboardRepository(db database.IDatabase) DashboardRepositoryInterface {
	return &DashboardRepository{DB: db}
}

// LoadSnapshot reads the event, its slots, participants and ledger rows in
// one pass. Returns (nil, nil) when the event does not exist.
func (r *DashboardRepository) LoadSnapshot(ctx context.Context, eventID int64) (*SnapshotRows, error) {
	var event eventEntity.Event
	err := r.DB.GetContext(ctx, &event, `
		SELECT id, slug, title, description, organizer_id, date_start, date_end,
		       time_start, time_end, timezone, deadline_at, status, is_deleted,
		       created_at, updated_at
		FROM events WHERE id = $1 AND is_deleted = false`, eventID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	rows := &SnapshotRows{Event: &event}

	err = r.DB.SelectContext(ctx, &rows.Slots, `
		SELECT id, event_id, start_datetime, end_datetime
		FROM time_slots WHERE event_id = $1
		ORDER BY start_datetime ASC`, eventID)
	if err != nil {
		return nil, err
	}

	err = r.DB.SelectContext(ctx, &rows.Participants, `
		SELECT id, event_id, user_id, nickname, email, phone, created_at
		FROM participants WHERE event_id = $1
		ORDER BY created_at ASC, id ASC`, eventID)
	if err != nil {
		return nil, err
	}

	err = r.DB.SelectContext(ctx, &rows.Entries, `
		SELECT ae.id, ae.participant_id, ae.time_slot_id, ae.is_available, ae.created_at
		FROM availability_entries ae
		JOIN participants p ON p.id = ae.participant_id
		WHERE p.event_id = $1
		ORDER BY ae.participant_id ASC, ae.time_slot_id ASC`, eventID)
	if err != nil {
		return nil, err
	}

	return rows, nil
}
