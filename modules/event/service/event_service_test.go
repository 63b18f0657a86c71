package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"ourtime-api/core/errors"
	"ourtime-api/core/params"
	"ourtime-api/modules/event/dto"
	"ourtime-api/modules/event/entity"
)

type fakeEventRepo struct {
	events       map[int64]*entity.Event
	slots        map[int64][]entity.TimeSlot
	finalChoices map[int64]*entity.FinalChoice
	nextEventID  int64
	nextSlotID   int64
	updateCalls  int
	lastSlotSet  []entity.TimeSlot
}

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{
		events:       make(map[int64]*entity.Event),
		slots:        make(map[int64][]entity.TimeSlot),
		finalChoices: make(map[int64]*entity.FinalChoice),
		nextEventID:  1,
		nextSlotID:   1,
	}
}

func (f *fakeEventRepo) CreateEventWithSlots(_ context.Context, event *entity.Event, slots []entity.TimeSlot) (*entity.Event, error) {
	created := *event
	created.ID = f.nextEventID
	f.nextEventID++
	created.CreatedAt = time.Now()
	f.events[created.ID] = &created

	stored := make([]entity.TimeSlot, 0, len(slots))
	for _, s := range slots {
		s.ID = f.nextSlotID
		f.nextSlotID++
		s.EventID = created.ID
		stored = append(stored, s)
	}
	f.slots[created.ID] = stored
	return &created, nil
}

func (f *fakeEventRepo) GetEventByID(_ context.Context, id int64) (*entity.Event, error) {
	return f.events[id], nil
}

func (f *fakeEventRepo) GetEventBySlug(_ context.Context, slug string) (*entity.Event, error) {
	for _, e := range f.events {
		if e.Slug == slug {
			return e, nil
		}
	}
	return nil, nil
}

func (f *fakeEventRepo) GetEventsByOrganizer(_ context.Context, organizerID uuid.UUID, _ params.QueryParams) ([]entity.Event, int, error) {
	var out []entity.Event
	for _, e := range f.events {
		if e.OrganizerID == organizerID {
			out = append(out, *e)
		}
	}
	return out, len(out), nil
}

func (f *fakeEventRepo) UpdateEventWithSlots(_ context.Context, event *entity.Event, slots []entity.TimeSlot) error {
	f.updateCalls++
	f.events[event.ID] = event
	if slots != nil {
		f.lastSlotSet = slots
		stored := make([]entity.TimeSlot, 0, len(slots))
		for _, s := range slots {
			s.ID = f.nextSlotID
			f.nextSlotID++
			s.EventID = event.ID
			stored = append(stored, s)
		}
		f.slots[event.ID] = stored
	}
	return nil
}

func (f *fakeEventRepo) SoftDeleteEvent(_ context.Context, id int64) error {
	if e, ok := f.events[id]; ok {
		e.IsDeleted = true
	}
	return nil
}

func (f *fakeEventRepo) PurgeDeletedBefore(_ context.Context, _ time.Time) (int64, error) {
	var n int64
	for id, e := range f.events {
		if e.IsDeleted {
			delete(f.events, id)
			n++
		}
	}
	return n, nil
}

func (f *fakeEventRepo) GetSlotsByEventID(_ context.Context, eventID int64) ([]entity.TimeSlot, error) {
	return f.slots[eventID], nil
}

func (f *fakeEventRepo) GetSlotByID(_ context.Context, slotID int64) (*entity.TimeSlot, error) {
	for _, slots := range f.slots {
		for i := range slots {
			if slots[i].ID == slotID {
				return &slots[i], nil
			}
		}
	}
	return nil, nil
}

func (f *fakeEventRepo) CountSlotsByEventID(_ context.Context, eventID int64) (int, error) {
	return len(f.slots[eventID]), nil
}

func (f *fakeEventRepo) CountParticipantsByEventID(_ context.Context, _ int64) (int, error) {
	return 0, nil
}

func (f *fakeEventRepo) CreateFinalChoice(_ context.Context, fc *entity.FinalChoice) (*entity.FinalChoice, error) {
	// Mirrors the unique constraint on event_id.
	if _, exists := f.finalChoices[fc.EventID]; exists {
		return nil, errors.NewAppError(errors.ErrAlreadyFinalized, "event already has a final choice", nil)
	}
	created := *fc
	created.ID = int64(len(f.finalChoices) + 1)
	created.CreatedAt = time.Now()
	f.finalChoices[fc.EventID] = &created
	f.events[fc.EventID].Status = entity.EventStatusFinalized
	return &created, nil
}

func (f *fakeEventRepo) GetFinalChoiceByEventID(_ context.Context, eventID int64) (*entity.FinalChoice, error) {
	return f.finalChoices[eventID], nil
}

type fakeVersions struct {
	bumps int
}

func (f *fakeVersions) BumpLedgerVersion(_ context.Context, _ int64) error {
	f.bumps++
	return nil
}

func createReferenceEvent(t *testing.T, svc EventServiceInterface, organizerID uuid.UUID) *dto.EventResponse {
	t.Helper()
	resp, appErr := svc.CreateEvent(context.Background(), organizerID, &dto.CreateEventRequest{
		Title:     "June kickoff",
		DateStart: "2025-06-01",
		DateEnd:   "2025-06-01",
		TimeStart: "14:00",
		TimeEnd:   "16:00",
		Timezone:  "Asia/Seoul",
	})
	if appErr != nil {
		t.Fatalf("create event: %v", appErr)
	}
	return resp
}

func TestCreateEvent(t *testing.T) {
	ctx := context.Background()
	repo := newFakeEventRepo()
	svc := NewEventService(repo, &fakeVersions{})
	organizer := uuid.New()

	resp := createReferenceEvent(t, svc, organizer)
	if resp.TimeSlotsCount != 4 {
		t.Fatalf("time_slots_count = %d, want 4", resp.TimeSlotsCount)
	}
	if resp.Slug == "" {
		t.Fatal("slug must be generated")
	}
	if resp.Status != string(entity.EventStatusOpen) {
		t.Fatalf("status = %s, want open", resp.Status)
	}

	if _, appErr := svc.CreateEvent(ctx, organizer, &dto.CreateEventRequest{
		DateStart: "2025-06-01", DateEnd: "2025-06-01",
		TimeStart: "14:00", TimeEnd: "16:00",
	}); appErr == nil || appErr.Code != errors.ErrInvalidInput {
		t.Fatalf("missing title: want ErrInvalidInput, got %v", appErr)
	}

	if _, appErr := svc.CreateEvent(ctx, organizer, &dto.CreateEventRequest{
		Title:     "broken",
		DateStart: "2025-06-02", DateEnd: "2025-06-01",
		TimeStart: "14:00", TimeEnd: "16:00",
	}); appErr == nil || appErr.Code != errors.ErrInvalidRange {
		t.Fatalf("inverted dates: want ErrInvalidRange, got %v", appErr)
	}
}

func TestSetFinalChoice(t *testing.T) {
	ctx := context.Background()
	repo := newFakeEventRepo()
	versions := &fakeVersions{}
	svc := NewEventService(repo, versions)
	organizer := uuid.New()

	event := createReferenceEvent(t, svc, organizer)
	slots := repo.slots[event.ID]

	t.Run("non-organizer rejected", func(t *testing.T) {
		_, appErr := svc.SetFinalChoice(ctx, event.ID, uuid.New(), slots[0].ID)
		if appErr == nil || appErr.Code != errors.ErrForbidden {
			t.Fatalf("want ErrForbidden, got %v", appErr)
		}
	})

	t.Run("foreign slot rejected", func(t *testing.T) {
		other := createReferenceEvent(t, svc, organizer)
		otherSlot := repo.slots[other.ID][0]

		_, appErr := svc.SetFinalChoice(ctx, event.ID, organizer, otherSlot.ID)
		if appErr == nil || appErr.Code != errors.ErrInvalidSlot {
			t.Fatalf("want ErrInvalidSlot, got %v", appErr)
		}
	})

	t.Run("create once", func(t *testing.T) {
		fc, appErr := svc.SetFinalChoice(ctx, event.ID, organizer, slots[0].ID)
		if appErr != nil {
			t.Fatalf("first finalize: %v", appErr)
		}
		if fc.SlotID != slots[0].ID {
			t.Fatalf("final slot = %d, want %d", fc.SlotID, slots[0].ID)
		}
		if versions.bumps == 0 {
			t.Fatal("finalize must bump the ledger version")
		}

		_, appErr = svc.SetFinalChoice(ctx, event.ID, organizer, slots[1].ID)
		if appErr == nil || appErr.Code != errors.ErrAlreadyFinalized {
			t.Fatalf("second finalize: want ErrAlreadyFinalized, got %v", appErr)
		}

		got, appErr := svc.GetFinalChoice(ctx, event.ID)
		if appErr != nil {
			t.Fatalf("get final choice: %v", appErr)
		}
		if got.SlotID != slots[0].ID {
			t.Fatal("final choice must remain the first committed slot")
		}
	})
}

func TestUpdateEvent(t *testing.T) {
	ctx := context.Background()
	repo := newFakeEventRepo()
	versions := &fakeVersions{}
	svc := NewEventService(repo, versions)
	organizer := uuid.New()

	event := createReferenceEvent(t, svc, organizer)

	t.Run("title only keeps slots", func(t *testing.T) {
		title := "June kickoff v2"
		resp, appErr := svc.UpdateEvent(ctx, event.ID, organizer, &dto.UpdateEventRequest{Title: &title})
		if appErr != nil {
			t.Fatalf("update: %v", appErr)
		}
		if resp.Title != title {
			t.Fatalf("title = %s", resp.Title)
		}
		if repo.lastSlotSet != nil {
			t.Fatal("title-only update must not regenerate slots")
		}
		if versions.bumps != 0 {
			t.Fatal("title-only update must not bump the ledger version")
		}
	})

	t.Run("range change regenerates slots", func(t *testing.T) {
		end := "17:00"
		resp, appErr := svc.UpdateEvent(ctx, event.ID, organizer, &dto.UpdateEventRequest{TimeEnd: &end})
		if appErr != nil {
			t.Fatalf("update: %v", appErr)
		}
		// 14:00-17:00 is six half-hour slots.
		if resp.TimeSlotsCount != 6 {
			t.Fatalf("time_slots_count = %d, want 6", resp.TimeSlotsCount)
		}
		if versions.bumps != 1 {
			t.Fatalf("version bumps = %d, want 1", versions.bumps)
		}
	})

	t.Run("non-organizer rejected", func(t *testing.T) {
		title := "hijack"
		_, appErr := svc.UpdateEvent(ctx, event.ID, uuid.New(), &dto.UpdateEventRequest{Title: &title})
		if appErr == nil || appErr.Code != errors.ErrForbidden {
			t.Fatalf("want ErrForbidden, got %v", appErr)
		}
	})

	t.Run("finalized event rejected", func(t *testing.T) {
		slots := repo.slots[event.ID]
		if _, appErr := svc.SetFinalChoice(ctx, event.ID, organizer, slots[0].ID); appErr != nil {
			t.Fatalf("finalize: %v", appErr)
		}

		title := "too late"
		_, appErr := svc.UpdateEvent(ctx, event.ID, organizer, &dto.UpdateEventRequest{Title: &title})
		if appErr == nil || appErr.Code != errors.ErrAlreadyFinalized {
			t.Fatalf("want ErrAlreadyFinalized, got %v", appErr)
		}
	})
}

func TestDeleteAndPurge(t *testing.T) {
	ctx := context.Background()
	repo := newFakeEventRepo()
	svc := NewEventService(repo, &fakeVersions{})
	organizer := uuid.New()

	event := createReferenceEvent(t, svc, organizer)

	if appErr := svc.DeleteEvent(ctx, event.ID, uuid.New()); appErr == nil || appErr.Code != errors.ErrForbidden {
		t.Fatalf("non-organizer delete: want ErrForbidden, got %v", appErr)
	}

	if appErr := svc.DeleteEvent(ctx, event.ID, organizer); appErr != nil {
		t.Fatalf("delete: %v", appErr)
	}
	if !repo.events[event.ID].IsDeleted {
		t.Fatal("delete must be a soft delete")
	}

	purged, err := svc.PurgeDeleted(ctx, 0)
	if err != nil {
		t.Fatalf("purge: %v", err)
	}
	if purged != 1 {
		t.Fatalf("purged = %d, want 1", purged)
	}
}
