package dto

import (
	"time"

	"ourtime-api/modules/participant/entity"
)

// ===================== Request DTOs =====================

// RegisterParticipantRequest joins a person to an event.
type RegisterParticipantRequest struct {
	Nickname string `json:"nickname" validate:"required"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
}

// AvailabilityEntryInput is one slot declaration in a submission.
type AvailabilityEntryInput struct {
	TimeSlotID  int64 `json:"time_slot_id" validate:"required"`
	IsAvailable bool  `json:"is_available"`
}

// SubmitAvailabilityRequest replaces the participant's entire entry set.
type SubmitAvailabilityRequest struct {
	Entries []AvailabilityEntryInput `json:"entries" validate:"required"`
}

// ===================== Response DTOs =====================

// ParticipantResponse for registration and listing
type ParticipantResponse struct {
	ParticipantID int64     `json:"participant_id"`
	EventID       int64     `json:"event_id"`
	Nickname      string    `json:"nickname"`
	Email         string    `json:"email,omitempty"`
	Phone         string    `json:"phone,omitempty"`
	IsRegistered  bool      `json:"is_registered"`
	CreatedAt     time.Time `json:"created_at"`
}

// AvailabilityEntryResponse renders one stored declaration.
type AvailabilityEntryResponse struct {
	TimeSlotID  int64 `json:"time_slot_id"`
	IsAvailable bool  `json:"is_available"`
}

// AvailabilityResponse is a participant's current entry set.
type AvailabilityResponse struct {
	ParticipantID int64                       `json:"participant_id"`
	EventID       int64                       `json:"event_id"`
	Entries       []AvailabilityEntryResponse `json:"entries"`
	HasSubmitted  bool                        `json:"has_submitted"`
}

// ===================== Mapper Functions =====================

func ToParticipantResponse(p *entity.Participant) *ParticipantResponse {
	resp := &ParticipantResponse{
		ParticipantID: p.ID,
		EventID:       p.EventID,
		Nickname:      p.Nickname,
		IsRegistered:  p.IsRegistered(),
		CreatedAt:     p.CreatedAt,
	}
	if p.Email != nil {
		resp.Email = *p.Email
	}
	if p.Phone != nil {
		resp.Phone = *p.Phone
	}
	return resp
}
