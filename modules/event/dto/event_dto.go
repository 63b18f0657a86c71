package dto

import (
	"time"

	coreEntity "ourtime-api/core/entity"
	"ourtime-api/modules/event/entity"
)

// ===================== Request DTOs =====================

// CreateEventRequest for creating a new event
type CreateEventRequest struct {
	Title       string  `json:"title" validate:"required"`
	Description string  `json:"description"`
	DateStart   string  `json:"date_start" validate:"required"` // YYYY-MM-DD
	DateEnd     string  `json:"date_end" validate:"required"`   // YYYY-MM-DD
	TimeStart   string  `json:"time_start" validate:"required"` // HH:MM
	TimeEnd     string  `json:"time_end" validate:"required"`   // HH:MM
	Timezone    string  `json:"timezone"`
	DeadlineAt  *string `json:"deadline_at"` // RFC3339
}

// UpdateEventRequest for partial event updates. Nil fields are untouched.
type UpdateEventRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	DateStart   *string `json:"date_start"`
	DateEnd     *string `json:"date_end"`
	TimeStart   *string `json:"time_start"`
	TimeEnd     *string `json:"time_end"`
	DeadlineAt  *string `json:"deadline_at"`
}

// SetFinalChoiceRequest commits one slot as the confirmed meeting time.
type SetFinalChoiceRequest struct {
	SlotID int64 `json:"slot_id" validate:"required"`
}

// ===================== Response DTOs =====================

// TimeSlotResponse renders one slot with both absolute and event-local times.
type TimeSlotResponse struct {
	ID                 int64     `json:"id"`
	StartDatetime      time.Time `json:"start_datetime"`
	EndDatetime        time.Time `json:"end_datetime"`
	StartDatetimeLocal string    `json:"start_datetime_local"`
	EndDatetimeLocal   string    `json:"end_datetime_local"`
}

// FinalChoiceResponse for the committed slot
type FinalChoiceResponse struct {
	EventID   int64     `json:"event_id"`
	SlotID    int64     `json:"slot_id"`
	Date      string    `json:"date"`
	StartTime string    `json:"start_time"`
	EndTime   string    `json:"end_time"`
	ChosenBy  string    `json:"chosen_by"`
	CreatedAt time.Time `json:"created_at"`
}

// EventResponse for event creation and listing
type EventResponse struct {
	ID             int64      `json:"id"`
	Slug           string     `json:"slug"`
	Title          string     `json:"title"`
	Description    string     `json:"description,omitempty"`
	OrganizerID    string     `json:"organizer_id"`
	DateStart      string     `json:"date_start"`
	DateEnd        string     `json:"date_end"`
	TimeStart      string     `json:"time_start"`
	TimeEnd        string     `json:"time_end"`
	Timezone       string     `json:"timezone"`
	DeadlineAt     *time.Time `json:"deadline_at,omitempty"`
	Status         string     `json:"status"`
	TimeSlotsCount int        `json:"time_slots_count"`
	ShareURL       string     `json:"share_url"`
	CreatedAt      time.Time  `json:"created_at"`
}

// EventDetailResponse embeds slots and the final choice for the public page.
type EventDetailResponse struct {
	EventResponse
	IsClosed          bool                 `json:"is_closed"`
	ParticipantsCount int                  `json:"participants_count"`
	TimeSlots         []TimeSlotResponse   `json:"time_slots"`
	FinalChoice       *FinalChoiceResponse `json:"final_choice,omitempty"`
}

// MyEventItem is one row of the organizer's paginated event list.
type MyEventItem struct {
	ID               int64      `json:"id"`
	Slug             string     `json:"slug"`
	Title            string     `json:"title"`
	DateStart        string     `json:"date_start"`
	DateEnd          string     `json:"date_end"`
	DeadlineAt       *time.Time `json:"deadline_at,omitempty"`
	Status           string     `json:"status"`
	ParticipantCount int        `json:"participant_count"`
	CreatedAt        time.Time  `json:"created_at"`
}

type PaginatedMyEvents = coreEntity.Pagination[MyEventItem]

// ===================== Mapper Functions =====================

const dateLayout = "2006-01-02"

// ToEventResponse maps entity to DTO
func ToEventResponse(e *entity.Event, slotsCount int, frontendURL string) *EventResponse {
	resp := &EventResponse{
		ID:             e.ID,
		Slug:           e.Slug,
		Title:          e.Title,
		OrganizerID:    e.OrganizerID.String(),
		DateStart:      e.DateStart.Format(dateLayout),
		DateEnd:        e.DateEnd.Format(dateLayout),
		TimeStart:      e.TimeStart,
		TimeEnd:        e.TimeEnd,
		Timezone:       e.Timezone,
		DeadlineAt:     e.DeadlineAt,
		Status:         string(e.Status),
		TimeSlotsCount: slotsCount,
		ShareURL:       frontendURL + "/e/" + e.Slug,
		CreatedAt:      e.CreatedAt,
	}
	if e.Description != nil {
		resp.Description = *e.Description
	}
	return resp
}

// ToTimeSlotResponse maps a slot rendering local times in loc.
func ToTimeSlotResponse(s *entity.TimeSlot, loc *time.Location) TimeSlotResponse {
	return TimeSlotResponse{
		ID:                 s.ID,
		StartDatetime:      s.StartDatetime,
		EndDatetime:        s.EndDatetime,
		StartDatetimeLocal: s.StartDatetime.In(loc).Format(time.RFC3339),
		EndDatetimeLocal:   s.EndDatetime.In(loc).Format(time.RFC3339),
	}
}

// ToFinalChoiceResponse maps a final choice with its slot, local to loc.
func ToFinalChoiceResponse(fc *entity.FinalChoice, slot *entity.TimeSlot, loc *time.Location) *FinalChoiceResponse {
	localStart := slot.StartDatetime.In(loc)
	localEnd := slot.EndDatetime.In(loc)
	return &FinalChoiceResponse{
		EventID:   fc.EventID,
		SlotID:    fc.SlotID,
		Date:      localStart.Format(dateLayout),
		StartTime: localStart.Format("15:04"),
		EndTime:   localEnd.Format("15:04"),
		ChosenBy:  fc.ChosenBy.String(),
		CreatedAt: fc.CreatedAt,
	}
}
