package service

import (
	"sort"

	"ourtime-api/modules/dashboard/dto"
	eventEntity "ourtime-api/modules/event/entity"
	participantEntity "ourtime-api/modules/participant/entity"
)

// Snapshot is one consistent read of an event's slots, participants and
// availability ledger. All aggregation below is a pure function of it, so
// two calls over the same snapshot always produce the same output.
type Snapshot struct {
	Event        *eventEntity.Event
	Slots        []eventEntity.TimeSlot
	Participants []participantEntity.Participant
	Entries      []participantEntity.AvailabilityEntry
}

// submittedSet returns the IDs of participants with at least one ledger row.
func (s *Snapshot) submittedSet() map[int64]struct{} {
	submitted := make(map[int64]struct{})
	for _, e := range s.Entries {
		submitted[e.ParticipantID] = struct{}{}
	}
	return submitted
}

// availableBySlot maps slot ID to the participant IDs marked available for
// it, preserving ledger order.
func (s *Snapshot) availableBySlot() map[int64][]int64 {
	available := make(map[int64][]int64)
	for _, e := range s.Entries {
		if e.IsAvailable {
			available[e.TimeSlotID] = append(available[e.TimeSlotID], e.ParticipantID)
		}
	}
	return available
}

// percent is count/total as an integer percentage, rounded half up. 0 when
// total is 0.
func percent(count, total int) int {
	if total == 0 {
		return 0
	}
	return (count*200 + total) / (2 * total)
}

// ComputeStats derives participation totals. Rates are integer percent,
// rounded, and 0 when the event has no participants.
func ComputeStats(s *Snapshot) dto.StatsResponse {
	submitted := s.submittedSet()

	stats := dto.StatsResponse{
		TotalParticipants: len(s.Participants),
	}
	for _, p := range s.Participants {
		if _, ok := submitted[p.ID]; ok {
			stats.SubmittedParticipants++
		}
	}
	stats.PendingParticipants = stats.TotalParticipants - stats.SubmittedParticipants
	stats.SubmissionRate = percent(stats.SubmittedParticipants, stats.TotalParticipants)
	return stats
}

// ComputeHeatmap derives one cell per slot, in slot order. Nicknames inside
// a cell follow the participant registration order, so repeated calls over
// the same snapshot render identically.
func ComputeHeatmap(s *Snapshot) []dto.HeatmapCell {
	available := s.availableBySlot()

	total := len(s.Participants)
	order := make(map[int64]int, total)
	names := make(map[int64]string, total)
	for i, p := range s.Participants {
		order[p.ID] = i
		names[p.ID] = p.Nickname
	}

	cells := make([]dto.HeatmapCell, 0, len(s.Slots))
	for _, slot := range s.Slots {
		ids := available[slot.ID]
		sort.Slice(ids, func(i, j int) bool { return order[ids[i]] < order[ids[j]] })

		cell := dto.HeatmapCell{
			SlotID:                slot.ID,
			StartDatetime:         slot.StartDatetime,
			EndDatetime:           slot.EndDatetime,
			AvailableCount:        len(ids),
			AvailableParticipants: make([]string, 0, len(ids)),
		}
		for _, id := range ids {
			cell.AvailableParticipants = append(cell.AvailableParticipants, names[id])
		}
		cell.AvailabilityRate = percent(cell.AvailableCount, total)
		cells = append(cells, cell)
	}
	return cells
}

// MostPopular picks the slot with the highest available count, earliest
// start on ties. Nil when nobody is available anywhere.
func MostPopular(cells []dto.HeatmapCell) *dto.MostPopularSlot {
	var best *dto.HeatmapCell
	for i := range cells {
		c := &cells[i]
		if c.AvailableCount == 0 {
			continue
		}
		if best == nil || c.AvailableCount > best.AvailableCount {
			best = c
		}
	}
	if best == nil {
		return nil
	}
	return &dto.MostPopularSlot{
		SlotID:         best.SlotID,
		StartDatetime:  best.StartDatetime,
		EndDatetime:    best.EndDatetime,
		AvailableCount: best.AvailableCount,
	}
}

// RecommendTopSlots ranks slots by available count descending, earlier start
// first on ties, drops slots below minParticipants, and truncates to limit.
func RecommendTopSlots(cells []dto.HeatmapCell, limit, minParticipants int) []dto.RecommendedSlot {
	ranked := make([]dto.HeatmapCell, 0, len(cells))
	for _, c := range cells {
		if c.AvailableCount == 0 || c.AvailableCount < minParticipants {
			continue
		}
		ranked = append(ranked, c)
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].AvailableCount != ranked[j].AvailableCount {
			return ranked[i].AvailableCount > ranked[j].AvailableCount
		}
		return ranked[i].StartDatetime.Before(ranked[j].StartDatetime)
	})

	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}

	out := make([]dto.RecommendedSlot, 0, len(ranked))
	for _, c := range ranked {
		out = append(out, dto.RecommendedSlot{
			SlotID:                c.SlotID,
			StartDatetime:         c.StartDatetime,
			EndDatetime:           c.EndDatetime,
			AvailableCount:        c.AvailableCount,
			AvailabilityRate:      c.AvailabilityRate,
			AvailableParticipants: c.AvailableParticipants,
		})
	}
	return out
}
