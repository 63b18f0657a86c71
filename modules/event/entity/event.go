package entity

import (
	"time"

	"github.com/google/uuid"
)

// EventStatus is the lifecycle state of an event. Open allows every mutation;
// Finalized is terminal and freezes the slot set and ledger.
type EventStatus string

const (
	EventStatusOpen      EventStatus = "open"
	EventStatusFinalized EventStatus = "finalized"
)

// Event is a coordination event: an inclusive date range combined with a
// daily time window, expanded into fixed-duration slots in the event's
// timezone.
type Event struct {
	ID          int64       `db:"id" json:"id"`
	Slug        string      `db:"slug" json:"slug"`
	Title       string      `db:"title" json:"title"`
	Description *string     `db:"description" json:"description,omitempty"`
	OrganizerID uuid.UUID   `db:"organizer_id" json:"organizer_id"`
	DateStart   time.Time   `db:"date_start" json:"date_start"`
	DateEnd     time.Time   `db:"date_end" json:"date_end"`
	TimeStart   string      `db:"time_start" json:"time_start"`
	TimeEnd     string      `db:"time_end" json:"time_end"`
	Timezone    string      `db:"timezone" json:"timezone"`
	DeadlineAt  *time.Time  `db:"deadline_at" json:"deadline_at,omitempty"`
	Status      EventStatus `db:"status" json:"status"`
	IsDeleted   bool        `db:"is_deleted" json:"-"`
	CreatedAt   time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time   `db:"updated_at" json:"updated_at"`
}

// IsClosed reports whether the submission deadline has passed.
func (e *Event) IsClosed(now time.Time) bool {
	return e.DeadlineAt != nil && now.After(*e.DeadlineAt)
}

// IsFinalized reports whether the terminal lifecycle state has been reached.
func (e *Event) IsFinalized() bool {
	return e.Status == EventStatusFinalized
}

// TimeSlot is one fixed-duration candidate interval of an event. Start and
// end are absolute instants; the sequence for an event is chronological and
// unique on start.
type TimeSlot struct {
	ID            int64     `db:"id" json:"id"`
	EventID       int64     `db:"event_id" json:"event_id"`
	StartDatetime time.Time `db:"start_datetime" json:"start_datetime"`
	EndDatetime   time.Time `db:"end_datetime" json:"end_datetime"`
}

// FinalChoice is the organizer's single, immutable commitment to one slot.
// At most one row per event, enforced by a unique constraint.
type FinalChoice struct {
	ID        int64     `db:"id" json:"id"`
	EventID   int64     `db:"event_id" json:"event_id"`
	SlotID    int64     `db:"slot_id" json:"slot_id"`
	ChosenBy  uuid.UUID `db:"chosen_by" json:"chosen_by"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
