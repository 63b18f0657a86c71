package entity

import (
	"time"

	"github.com/google/uuid"
)

// Participant is one person answering for one event. Identity is either a
// registered user reference or an anonymous record keyed by (event, nickname);
// the nickname is unique per event either way.
type Participant struct {
	ID        int64      `db:"id" json:"id"`
	EventID   int64      `db:"event_id" json:"event_id"`
	UserID    *uuid.UUID `db:"user_id" json:"user_id,omitempty"`
	Nickname  string     `db:"nickname" json:"nickname"`
	Email     *string    `db:"email" json:"email,omitempty"`
	Phone     *string    `db:"phone" json:"phone,omitempty"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
}

// IsRegistered reports whether the participant is linked to a user account.
func (p *Participant) IsRegistered() bool {
	return p.UserID != nil
}

// AvailabilityEntry is one (participant, slot) declaration. At most one row
// per pair; resubmission replaces the participant's whole set. A participant
// with at least one row counts as submitted, even when every flag is false.
type AvailabilityEntry struct {
	ID            int64     `db:"id" json:"id"`
	ParticipantID int64     `db:"participant_id" json:"participant_id"`
	TimeSlotID    int64     `db:"time_slot_id" json:"time_slot_id"`
	IsAvailable   bool      `db:"is_available" json:"is_available"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}
