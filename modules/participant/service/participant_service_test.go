package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"ourtime-api/core/errors"
	"ourtime-api/core/params"
	eventEntity "ourtime-api/modules/event/entity"
	"ourtime-api/modules/participant/dto"
	"ourtime-api/modules/participant/entity"
)

type fakeParticipantRepo struct {
	participants map[int64]*entity.Participant
	entries      map[int64][]entity.AvailabilityEntry
	slotIDs      map[int64][]int64
	nicknames    map[string]bool
	nextID       int64
	replaceCalls int
}

func newFakeParticipantRepo() *fakeParticipantRepo {
	return &fakeParticipantRepo{
		participants: make(map[int64]*entity.Participant),
		entries:      make(map[int64][]entity.AvailabilityEntry),
		slotIDs:      make(map[int64][]int64),
		nicknames:    make(map[string]bool),
		nextID:       1,
	}
}

func (f *fakeParticipantRepo) CreateParticipant(_ context.Context, p *entity.Participant) (*entity.Participant, error) {
	created := *p
	created.ID = f.nextID
	f.nextID++
	created.CreatedAt = time.Now()
	f.participants[created.ID] = &created
	f.nicknames[created.Nickname] = true
	return &created, nil
}

func (f *fakeParticipantRepo) GetParticipantByID(_ context.Context, id int64) (*entity.Participant, error) {
	return f.participants[id], nil
}

func (f *fakeParticipantRepo) GetParticipantsByEventID(_ context.Context, eventID int64) ([]entity.Participant, error) {
	var out []entity.Participant
	for _, p := range f.participants {
		if p.EventID == eventID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakeParticipantRepo) NicknameExists(_ context.Context, _ int64, nickname string) (bool, error) {
	return f.nicknames[nickname], nil
}

func (f *fakeParticipantRepo) DeleteParticipant(_ context.Context, id int64) error {
	delete(f.participants, id)
	delete(f.entries, id)
	return nil
}

func (f *fakeParticipantRepo) ReplaceEntries(_ context.Context, participantID int64, entries []entity.AvailabilityEntry) error {
	f.replaceCalls++
	f.entries[participantID] = entries
	return nil
}

func (f *fakeParticipantRepo) GetEntriesByParticipantID(_ context.Context, participantID int64) ([]entity.AvailabilityEntry, error) {
	return f.entries[participantID], nil
}

func (f *fakeParticipantRepo) GetEntriesBySlotID(_ context.Context, _ int64) ([]entity.AvailabilityEntry, error) {
	return nil, nil
}

func (f *fakeParticipantRepo) GetSlotIDsByEventID(_ context.Context, eventID int64) ([]int64, error) {
	return f.slotIDs[eventID], nil
}

type fakeEventRepo struct {
	events map[int64]*eventEntity.Event
}

func (f *fakeEventRepo) CreateEventWithSlots(_ context.Context, e *eventEntity.Event, _ []eventEntity.TimeSlot) (*eventEntity.Event, error) {
	return e, nil
}

func (f *fakeEventRepo) GetEventByID(_ context.Context, id int64) (*eventEntity.Event, error) {
	return f.events[id], nil
}

func (f *fakeEventRepo) GetEventBySlug(_ context.Context, slug string) (*eventEntity.Event, error) {
	for _, e := range f.events {
		if e.Slug == slug {
			return e, nil
		}
	}
	return nil, nil
}

func (f *fakeEventRepo) GetEventsByOrganizer(_ context.Context, _ uuid.UUID, _ params.QueryParams) ([]eventEntity.Event, int, error) {
	return nil, 0, nil
}

func (f *fakeEventRepo) UpdateEventWithSlots(_ context.Context, _ *eventEntity.Event, _ []eventEntity.TimeSlot) error {
	return nil
}

func (f *fakeEventRepo) SoftDeleteEvent(_ context.Context, _ int64) error { return nil }

func (f *fakeEventRepo) PurgeDeletedBefore(_ context.Context, _ time.Time) (int64, error) {
	return 0, nil
}

func (f *fakeEventRepo) GetSlotsByEventID(_ context.Context, _ int64) ([]eventEntity.TimeSlot, error) {
	return nil, nil
}

func (f *fakeEventRepo) GetSlotByID(_ context.Context, _ int64) (*eventEntity.TimeSlot, error) {
	return nil, nil
}

func (f *fakeEventRepo) CountSlotsByEventID(_ context.Context, _ int64) (int, error) { return 0, nil }

func (f *fakeEventRepo) CountParticipantsByEventID(_ context.Context, _ int64) (int, error) {
	return 0, nil
}

func (f *fakeEventRepo) CreateFinalChoice(_ context.Context, fc *eventEntity.FinalChoice) (*eventEntity.FinalChoice, error) {
	return fc, nil
}

func (f *fakeEventRepo) GetFinalChoiceByEventID(_ context.Context, _ int64) (*eventEntity.FinalChoice, error) {
	return nil, nil
}

type fakeVersions struct {
	bumps int
}

func (f *fakeVersions) BumpLedgerVersion(_ context.Context, _ int64) error {
	f.bumps++
	return nil
}

func openEvent(id int64, slug string) *eventEntity.Event {
	return &eventEntity.Event{
		ID:          id,
		Slug:        slug,
		Title:       "Team sync",
		OrganizerID: uuid.New(),
		Status:      eventEntity.EventStatusOpen,
	}
}

func setup(event *eventEntity.Event, slotIDs []int64) (*fakeParticipantRepo, *fakeVersions, ParticipantServiceInterface) {
	repo := newFakeParticipantRepo()
	repo.slotIDs[event.ID] = slotIDs
	events := &fakeEventRepo{events: map[int64]*eventEntity.Event{event.ID: event}}
	versions := &fakeVersions{}
	return repo, versions, NewParticipantService(repo, events, versions)
}

func TestRegisterParticipant(t *testing.T) {
	ctx := context.Background()
	event := openEvent(1, "team-sync-abc")
	_, _, svc := setup(event, nil)

	resp, appErr := svc.RegisterParticipant(ctx, "team-sync-abc", nil, &dto.RegisterParticipantRequest{Nickname: "alice"})
	if appErr != nil {
		t.Fatalf("unexpected error: %v", appErr)
	}
	if resp.Nickname != "alice" || resp.EventID != 1 {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if resp.IsRegistered {
		t.Fatal("anonymous participant reported as registered")
	}

	_, appErr = svc.RegisterParticipant(ctx, "team-sync-abc", nil, &dto.RegisterParticipantRequest{Nickname: "alice"})
	if appErr == nil || appErr.Code != errors.ErrAlreadyExists {
		t.Fatalf("duplicate nickname: want ErrAlreadyExists, got %v", appErr)
	}

	_, appErr = svc.RegisterParticipant(ctx, "team-sync-abc", nil, &dto.RegisterParticipantRequest{Nickname: "   "})
	if appErr == nil || appErr.Code != errors.ErrInvalidInput {
		t.Fatalf("blank nickname: want ErrInvalidInput, got %v", appErr)
	}

	_, appErr = svc.RegisterParticipant(ctx, "no-such-event", nil, &dto.RegisterParticipantRequest{Nickname: "bob"})
	if appErr == nil || appErr.Code != errors.ErrNotFound {
		t.Fatalf("unknown slug: want ErrNotFound, got %v", appErr)
	}
}

func TestSubmitAvailabilityReplacesEntries(t *testing.T) {
	ctx := context.Background()
	event := openEvent(1, "team-sync-abc")
	repo, versions, svc := setup(event, []int64{10, 11, 12, 13})

	resp, appErr := svc.RegisterParticipant(ctx, "team-sync-abc", nil, &dto.RegisterParticipantRequest{Nickname: "alice"})
	if appErr != nil {
		t.Fatalf("register: %v", appErr)
	}

	first := &dto.SubmitAvailabilityRequest{Entries: []dto.AvailabilityEntryInput{
		{TimeSlotID: 10, IsAvailable: true},
		{TimeSlotID: 11, IsAvailable: true},
		{TimeSlotID: 12, IsAvailable: false},
	}}
	if appErr := svc.SubmitAvailability(ctx, resp.ParticipantID, first); appErr != nil {
		t.Fatalf("first submit: %v", appErr)
	}

	second := &dto.SubmitAvailabilityRequest{Entries: []dto.AvailabilityEntryInput{
		{TimeSlotID: 13, IsAvailable: true},
	}}
	if appErr := svc.SubmitAvailability(ctx, resp.ParticipantID, second); appErr != nil {
		t.Fatalf("second submit: %v", appErr)
	}

	got, appErr := svc.GetAvailability(ctx, resp.ParticipantID)
	if appErr != nil {
		t.Fatalf("get availability: %v", appErr)
	}
	if len(got.Entries) != 1 || got.Entries[0].TimeSlotID != 13 {
		t.Fatalf("resubmission did not fully replace entries: %+v", got.Entries)
	}
	if !got.HasSubmitted {
		t.Fatal("HasSubmitted should be true after a submission")
	}
	if repo.replaceCalls != 2 {
		t.Fatalf("ReplaceEntries calls = %d, want 2", repo.replaceCalls)
	}
	// register + two submits
	if versions.bumps != 3 {
		t.Fatalf("ledger version bumps = %d, want 3", versions.bumps)
	}
}

func TestSubmitAvailabilityValidation(t *testing.T) {
	ctx := context.Background()

	t.Run("empty submission rejected", func(t *testing.T) {
		event := openEvent(1, "s")
		_, _, svc := setup(event, []int64{10})
		resp, _ := svc.RegisterParticipant(ctx, "s", nil, &dto.RegisterParticipantRequest{Nickname: "a"})

		appErr := svc.SubmitAvailability(ctx, resp.ParticipantID, &dto.SubmitAvailabilityRequest{})
		if appErr == nil || appErr.Code != errors.ErrEmptySubmission {
			t.Fatalf("want ErrEmptySubmission, got %v", appErr)
		}
	})

	t.Run("foreign slot rejects whole submission", func(t *testing.T) {
		event := openEvent(1, "s")
		repo, _, svc := setup(event, []int64{10, 11})
		resp, _ := svc.RegisterParticipant(ctx, "s", nil, &dto.RegisterParticipantRequest{Nickname: "a"})

		appErr := svc.SubmitAvailability(ctx, resp.ParticipantID, &dto.SubmitAvailabilityRequest{
			Entries: []dto.AvailabilityEntryInput{
				{TimeSlotID: 10, IsAvailable: true},
				{TimeSlotID: 999, IsAvailable: true},
			},
		})
		if appErr == nil || appErr.Code != errors.ErrSlotMismatch {
			t.Fatalf("want ErrSlotMismatch, got %v", appErr)
		}
		if repo.replaceCalls != 0 {
			t.Fatal("rejected submission must not touch the ledger")
		}
	})

	t.Run("finalized event rejects submissions", func(t *testing.T) {
		event := openEvent(1, "s")
		event.Status = eventEntity.EventStatusFinalized
		_, _, svc := setup(event, []int64{10})
		resp, _ := svc.RegisterParticipant(ctx, "s", nil, &dto.RegisterParticipantRequest{Nickname: "a"})

		appErr := svc.SubmitAvailability(ctx, resp.ParticipantID, &dto.SubmitAvailabilityRequest{
			Entries: []dto.AvailabilityEntryInput{{TimeSlotID: 10, IsAvailable: true}},
		})
		if appErr == nil || appErr.Code != errors.ErrAlreadyFinalized {
			t.Fatalf("want ErrAlreadyFinalized, got %v", appErr)
		}
	})

	t.Run("past deadline rejects submissions", func(t *testing.T) {
		event := openEvent(1, "s")
		past := time.Now().Add(-time.Hour)
		event.DeadlineAt = &past
		_, _, svc := setup(event, []int64{10})
		resp, _ := svc.RegisterParticipant(ctx, "s", nil, &dto.RegisterParticipantRequest{Nickname: "a"})

		appErr := svc.SubmitAvailability(ctx, resp.ParticipantID, &dto.SubmitAvailabilityRequest{
			Entries: []dto.AvailabilityEntryInput{{TimeSlotID: 10, IsAvailable: true}},
		})
		if appErr == nil || appErr.Code != errors.ErrEventClosed {
			t.Fatalf("want ErrEventClosed, got %v", appErr)
		}
	})

	t.Run("duplicate slot in one submission keeps the last value", func(t *testing.T) {
		event := openEvent(1, "s")
		_, _, svc := setup(event, []int64{10})
		resp, _ := svc.RegisterParticipant(ctx, "s", nil, &dto.RegisterParticipantRequest{Nickname: "a"})

		appErr := svc.SubmitAvailability(ctx, resp.ParticipantID, &dto.SubmitAvailabilityRequest{
			Entries: []dto.AvailabilityEntryInput{
				{TimeSlotID: 10, IsAvailable: true},
				{TimeSlotID: 10, IsAvailable: false},
			},
		})
		if appErr != nil {
			t.Fatalf("submit: %v", appErr)
		}
		got, _ := svc.GetAvailability(ctx, resp.ParticipantID)
		if len(got.Entries) != 1 || got.Entries[0].IsAvailable {
			t.Fatalf("want single unavailable entry, got %+v", got.Entries)
		}
	})
}

func TestDeleteParticipant(t *testing.T) {
	ctx := context.Background()
	event := openEvent(1, "s")
	_, versions, svc := setup(event, []int64{10})
	resp, _ := svc.RegisterParticipant(ctx, "s", nil, &dto.RegisterParticipantRequest{Nickname: "a"})

	stranger := uuid.New()
	if appErr := svc.DeleteParticipant(ctx, resp.ParticipantID, stranger); appErr == nil || appErr.Code != errors.ErrForbidden {
		t.Fatalf("non-organizer delete: want ErrForbidden, got %v", appErr)
	}

	before := versions.bumps
	if appErr := svc.DeleteParticipant(ctx, resp.ParticipantID, event.OrganizerID); appErr != nil {
		t.Fatalf("organizer delete: %v", appErr)
	}
	if versions.bumps != before+1 {
		t.Fatal("delete must bump the ledger version")
	}

	if _, appErr := svc.GetAvailability(ctx, resp.ParticipantID); appErr == nil || appErr.Code != errors.ErrNotFound {
		t.Fatalf("deleted participant: want ErrNotFound, got %v", appErr)
	}
}

func TestGetParticipantsAccess(t *testing.T) {
	ctx := context.Background()
	event := openEvent(1, "team-sync-abc")
	_, _, svc := setup(event, nil)

	alice, appErr := svc.RegisterParticipant(ctx, "team-sync-abc", nil, &dto.RegisterParticipantRequest{
		Nickname: "alice", Email: "alice@example.com",
	})
	if appErr != nil {
		t.Fatalf("unexpected error: %v", appErr)
	}
	if _, appErr = svc.RegisterParticipant(ctx, "team-sync-abc", nil, &dto.RegisterParticipantRequest{Nickname: "bob"}); appErr != nil {
		t.Fatalf("unexpected error: %v", appErr)
	}

	t.Run("anonymous caller is rejected", func(t *testing.T) {
		_, appErr := svc.GetParticipantsByEvent(ctx, 1, ListAccess{})
		if appErr == nil || appErr.Code != errors.ErrForbidden {
			t.Fatalf("want ErrForbidden, got %v", appErr)
		}
	})

	t.Run("wrong email is rejected", func(t *testing.T) {
		_, appErr := svc.GetParticipantsByEvent(ctx, 1, ListAccess{
			ParticipantID: &alice.ParticipantID, Email: "mallory@example.com",
		})
		if appErr == nil || appErr.Code != errors.ErrForbidden {
			t.Fatalf("want ErrForbidden, got %v", appErr)
		}
	})

	t.Run("organizer sees the list without contact details", func(t *testing.T) {
		owner := event.OrganizerID
		list, appErr := svc.GetParticipantsByEvent(ctx, 1, ListAccess{UserID: &owner})
		if appErr != nil {
			t.Fatalf("unexpected error: %v", appErr)
		}
		if len(list) != 2 {
			t.Fatalf("participants = %d, want 2", len(list))
		}
		for _, p := range list {
			if p.Email != "" || p.Phone != "" {
				t.Fatalf("listing leaked contact details: %+v", p)
			}
		}
	})

	t.Run("participant pair matches case-insensitively", func(t *testing.T) {
		_, appErr := svc.GetParticipantsByEvent(ctx, 1, ListAccess{
			ParticipantID: &alice.ParticipantID, Email: "Alice@Example.COM",
		})
		if appErr != nil {
			t.Fatalf("unexpected error: %v", appErr)
		}
	})
}
