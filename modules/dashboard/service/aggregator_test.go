package service

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"ourtime-api/modules/dashboard/dto"
	eventEntity "ourtime-api/modules/event/entity"
	participantEntity "ourtime-api/modules/participant/entity"
)

// Builds the reference scenario: one day (2025-06-01), window 14:00-16:00,
// four half-hour slots, two participants.
//
//	slot 1 (14:00): alice + bob
//	slot 2 (14:30): alice
//	slot 3 (15:00): bob
//	slot 4 (15:30): nobody
func referenceSnapshot(t *testing.T) *Snapshot {
	t.Helper()

	loc, err := time.LoadLocation("Asia/Seoul")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}

	day := time.Date(2025, 6, 1, 14, 0, 0, 0, loc)
	slots := make([]eventEntity.TimeSlot, 0, 4)
	for i := 0; i < 4; i++ {
		start := day.Add(time.Duration(i) * 30 * time.Minute)
		slots = append(slots, eventEntity.TimeSlot{
			ID:            int64(i + 1),
			EventID:       1,
			StartDatetime: start,
			EndDatetime:   start.Add(30 * time.Minute),
		})
	}

	return &Snapshot{
		Event: &eventEntity.Event{
			ID:          1,
			Title:       "June kickoff",
			OrganizerID: uuid.New(),
			Status:      eventEntity.EventStatusOpen,
		},
		Slots: slots,
		Participants: []participantEntity.Participant{
			{ID: 1, EventID: 1, Nickname: "alice"},
			{ID: 2, EventID: 1, Nickname: "bob"},
		},
		Entries: []participantEntity.AvailabilityEntry{
			{ParticipantID: 1, TimeSlotID: 1, IsAvailable: true},
			{ParticipantID: 1, TimeSlotID: 2, IsAvailable: true},
			{ParticipantID: 1, TimeSlotID: 3, IsAvailable: false},
			{ParticipantID: 1, TimeSlotID: 4, IsAvailable: false},
			{ParticipantID: 2, TimeSlotID: 1, IsAvailable: true},
			{ParticipantID: 2, TimeSlotID: 3, IsAvailable: true},
		},
	}
}

func TestComputeStats(t *testing.T) {
	s := referenceSnapshot(t)

	stats := ComputeStats(s)
	want := dto.StatsResponse{
		TotalParticipants:     2,
		SubmittedParticipants: 2,
		PendingParticipants:   0,
		SubmissionRate:        100,
	}
	if stats != want {
		t.Fatalf("stats = %+v, want %+v", stats, want)
	}
}

func TestComputeStatsPartialSubmission(t *testing.T) {
	s := referenceSnapshot(t)
	s.Participants = append(s.Participants, participantEntity.Participant{
		ID: 3, EventID: 1, Nickname: "carol",
	})

	stats := ComputeStats(s)
	if stats.SubmittedParticipants != 2 || stats.PendingParticipants != 1 {
		t.Fatalf("submitted/pending = %d/%d, want 2/1", stats.SubmittedParticipants, stats.PendingParticipants)
	}
	// 2 of 3 rounds up, not down.
	if stats.SubmissionRate != 67 {
		t.Fatalf("submission rate = %d, want 67", stats.SubmissionRate)
	}
}

func TestRatesRoundToNearestPercent(t *testing.T) {
	s := referenceSnapshot(t)
	s.Participants = append(s.Participants, participantEntity.Participant{
		ID: 3, EventID: 1, Nickname: "carol",
	})
	s.Entries = append(s.Entries, participantEntity.AvailabilityEntry{
		ParticipantID: 3, TimeSlotID: 2, IsAvailable: false,
	})

	cells := ComputeHeatmap(s)
	// Slot 1 has 2 of 3 available: round(66.67) = 67.
	if cells[0].AvailabilityRate != 67 {
		t.Fatalf("slot 1 rate = %d, want 67", cells[0].AvailabilityRate)
	}
	// Slot 2 has 1 of 3 available: round(33.33) = 33.
	if cells[1].AvailabilityRate != 33 {
		t.Fatalf("slot 2 rate = %d, want 33", cells[1].AvailabilityRate)
	}
}

func TestComputeStatsEmptyEvent(t *testing.T) {
	s := referenceSnapshot(t)
	s.Participants = nil
	s.Entries = nil

	stats := ComputeStats(s)
	if stats.SubmissionRate != 0 {
		t.Fatalf("empty event: submission rate = %d, want 0", stats.SubmissionRate)
	}
}

func TestComputeHeatmap(t *testing.T) {
	s := referenceSnapshot(t)

	cells := ComputeHeatmap(s)
	if len(cells) != 4 {
		t.Fatalf("cells = %d, want 4 (zero-count slots must be retained)", len(cells))
	}

	wantCounts := []int{2, 1, 1, 0}
	wantRates := []int{100, 50, 50, 0}
	for i, cell := range cells {
		if cell.SlotID != int64(i+1) {
			t.Fatalf("cell %d out of slot order: slot_id=%d", i, cell.SlotID)
		}
		if cell.AvailableCount != wantCounts[i] {
			t.Errorf("slot %d available count = %d, want %d", cell.SlotID, cell.AvailableCount, wantCounts[i])
		}
		if cell.AvailabilityRate != wantRates[i] {
			t.Errorf("slot %d rate = %d, want %d", cell.SlotID, cell.AvailabilityRate, wantRates[i])
		}
	}

	first := cells[0].AvailableParticipants
	if len(first) != 2 || first[0] != "alice" || first[1] != "bob" {
		t.Fatalf("slot 1 participants = %v, want registration order [alice bob]", first)
	}
	if len(cells[3].AvailableParticipants) != 0 {
		t.Fatalf("slot 4 participants = %v, want empty", cells[3].AvailableParticipants)
	}
}

func TestComputeHeatmapDeterministic(t *testing.T) {
	s := referenceSnapshot(t)

	a := ComputeHeatmap(s)
	b := ComputeHeatmap(s)
	for i := range a {
		if a[i].AvailableCount != b[i].AvailableCount || a[i].SlotID != b[i].SlotID {
			t.Fatal("two passes over one snapshot disagree")
		}
		for j := range a[i].AvailableParticipants {
			if a[i].AvailableParticipants[j] != b[i].AvailableParticipants[j] {
				t.Fatal("participant order differs between passes")
			}
		}
	}
}

func TestMostPopular(t *testing.T) {
	s := referenceSnapshot(t)
	cells := ComputeHeatmap(s)

	best := MostPopular(cells)
	if best == nil {
		t.Fatal("expected a most popular slot")
	}
	if best.SlotID != 1 || best.AvailableCount != 2 {
		t.Fatalf("most popular = slot %d (count %d), want slot 1 (count 2)", best.SlotID, best.AvailableCount)
	}
}

func TestMostPopularTieBreaksEarlier(t *testing.T) {
	s := referenceSnapshot(t)
	// Flip alice's slot 3 answer to lift it into a tie with slot 1.
	// The earlier start must win.
	s.Entries[2].IsAvailable = true

	best := MostPopular(ComputeHeatmap(s))
	if best == nil || best.SlotID != 1 {
		t.Fatalf("tie must break to the earlier slot, got %+v", best)
	}
}

func TestMostPopularNilWhenNobodyAvailable(t *testing.T) {
	s := referenceSnapshot(t)
	for i := range s.Entries {
		s.Entries[i].IsAvailable = false
	}

	if best := MostPopular(ComputeHeatmap(s)); best != nil {
		t.Fatalf("expected nil, got %+v", best)
	}
}

func TestRecommendTopSlots(t *testing.T) {
	s := referenceSnapshot(t)
	cells := ComputeHeatmap(s)

	top := RecommendTopSlots(cells, 2, 0)
	if len(top) != 2 {
		t.Fatalf("recommendations = %d, want 2", len(top))
	}
	if top[0].SlotID != 1 {
		t.Fatalf("first recommendation = slot %d, want slot 1", top[0].SlotID)
	}
	// Slots 2 and 3 tie at count 1; slot 2 starts earlier.
	if top[1].SlotID != 2 {
		t.Fatalf("second recommendation = slot %d, want slot 2", top[1].SlotID)
	}
}

func TestRecommendTopSlotsMinParticipants(t *testing.T) {
	s := referenceSnapshot(t)
	cells := ComputeHeatmap(s)

	top := RecommendTopSlots(cells, 5, 2)
	if len(top) != 1 || top[0].SlotID != 1 {
		t.Fatalf("min_participants=2 should leave only slot 1, got %+v", top)
	}

	if got := RecommendTopSlots(cells, 5, 3); len(got) != 0 {
		t.Fatalf("min_participants=3 should leave nothing, got %+v", got)
	}
}

func TestRecommendTopSlotsIdempotent(t *testing.T) {
	s := referenceSnapshot(t)
	cells := ComputeHeatmap(s)

	a := RecommendTopSlots(cells, 5, 0)
	b := RecommendTopSlots(cells, 5, 0)
	if len(a) != len(b) {
		t.Fatalf("lengths differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i].SlotID != b[i].SlotID {
			t.Fatalf("order differs at %d: %d vs %d", i, a[i].SlotID, b[i].SlotID)
		}
	}
}
