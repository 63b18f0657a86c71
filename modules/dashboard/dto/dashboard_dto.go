package dto

import "time"

type StatsResponse struct {
	TotalParticipants     int              `json:"total_participants"`
	SubmittedParticipants int              `json:"submitted_participants"`
	PendingParticipants   int              `json:"pending_participants"`
	SubmissionRate        int              `json:"submission_rate"`
	MostPopularSlot       *MostPopularSlot `json:"most_popular_slot"`
}

type DashboardParticipant struct {
	ParticipantID int64  `json:"participant_id"`
	Nickname      string `json:"nickname"`
	HasSubmitted  bool   `json:"has_submitted"`
}

// HeatmapCell is one slot's aggregate. Slots nobody picked are kept so the
// grid renders complete.
type HeatmapCell struct {
	SlotID                int64     `json:"slot_id"`
	StartDatetime         time.Time `json:"start_datetime"`
	EndDatetime           time.Time `json:"end_datetime"`
	AvailableCount        int       `json:"available_count"`
	AvailabilityRate      int       `json:"availability_rate"`
	AvailableParticipants []string  `json:"available_participants"`
}

type MostPopularSlot struct {
	SlotID         int64     `json:"slot_id"`
	StartDatetime  time.Time `json:"start_datetime"`
	EndDatetime    time.Time `json:"end_datetime"`
	AvailableCount int       `json:"available_count"`
}

type DashboardResponse struct {
	EventID      int64                  `json:"event_id"`
	EventTitle   string                 `json:"event_title"`
	Status       string                 `json:"status"`
	IsClosed     bool                   `json:"is_closed"`
	Stats        StatsResponse          `json:"stats"`
	Participants []DashboardParticipant `json:"participants"`
	Heatmap      []HeatmapCell          `json:"heatmap"`
}

type RecommendedSlot struct {
	SlotID                int64     `json:"slot_id"`
	StartDatetime         time.Time `json:"start_datetime"`
	EndDatetime           time.Time `json:"end_datetime"`
	AvailableCount        int       `json:"available_count"`
	AvailabilityRate      int       `json:"availability_rate"`
	AvailableParticipants []string  `json:"available_participants"`
}

type RecommendationResponse struct {
	EventID         int64             `json:"event_id"`
	Recommendations []RecommendedSlot `json:"recommendations"`
	Message         string            `json:"message,omitempty"`
}
