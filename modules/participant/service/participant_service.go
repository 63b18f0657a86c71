package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"ourtime-api/core/errors"
	"ourtime-api/core/logger"
	eventRepo "ourtime-api/modules/event/repository"
	"ourtime-api/modules/participant/dto"
	"ourtime-api/modules/participant/entity"
	"ourtime-api/modules/participant/repository"
)

// LedgerVersions invalidates cached aggregations when the ledger moves.
type LedgerVersions interface {
	BumpLedgerVersion(ctx context.Context, eventID int64) error
}

// ListAccess identifies the caller on the participants listing: the
// organizer's token, or a registered participant's (id, email) pair.
type ListAccess struct {
	UserID        *uuid.UUID
	ParticipantID *int64
	Email         string
}

// ParticipantService handles participant registration and the availability
// ledger.
type ParticipantService struct {
	repo     repository.ParticipantRepositoryInterface
	events   eventRepo.EventRepositoryInterface
	versions LedgerVersions
}

// ParticipantServiceInterface defines the service contract
type ParticipantServiceInterface interface {
	RegisterParticipant(ctx context.Context, slug string, userID *uuid.UUID, req *dto.RegisterParticipantRequest) (*dto.ParticipantResponse, *errors.AppError)
	GetParticipantsByEvent(ctx context.Context, eventID int64, access ListAccess) ([]dto.ParticipantResponse, *errors.AppError)
	DeleteParticipant(ctx context.Context, participantID int64, callerID uuid.UUID) *errors.AppError
	SubmitAvailability(ctx context.Context, participantID int64, req *dto.SubmitAvailabilityRequest) *errors.AppError
	GetAvailability(ctx context.Context, participantID int64) (*dto.AvailabilityResponse, *errors.AppError)
}

func NewParticipantService(repo repository.ParticipantRepositoryInterface, events eventRepo.EventRepositoryInterface, versions LedgerVersions) ParticipantServiceInterface {
	return &ParticipantService{
		repo:     repo,
		events:   events,
		versions: versions,
	}
}

// RegisterParticipant joins a person to the event identified by slug. The
// nickname is trimmed and must be unique within the event.
func (s *ParticipantService) RegisterParticipant(ctx context.Context, slug string, userID *uuid.UUID, req *dto.RegisterParticipantRequest) (*dto.ParticipantResponse, *errors.AppError) {
	nickname := strings.TrimSpace(req.Nickname)
	if nickname == "" {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "nickname is required", nil)
	}

	event, err := s.events.GetEventBySlug(ctx, slug)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to get event", err)
	}
	if event == nil {
		return nil, errors.NewAppError(errors.ErrNotFound, "event not found", nil)
	}

	exists, err := s.repo.NicknameExists(ctx, event.ID, nickname)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to check nickname", err)
	}
	if exists {
		return nil, errors.NewAppError(errors.ErrAlreadyExists, "nickname already taken for this event", nil)
	}

	p := &entity.Participant{
		EventID:  event.ID,
		UserID:   userID,
		Nickname: nickname,
	}
	if req.Email != "" {
		p.Email = &req.Email
	}
	if req.Phone != "" {
		p.Phone = &req.Phone
	}

	created, err := s.repo.CreateParticipant(ctx, p)
	if err != nil {
		if ae, ok := err.(*errors.AppError); ok {
			return nil, ae
		}
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to register participant", err)
	}

	s.bumpVersion(ctx, event.ID)
	logger.Info("ParticipantService:RegisterParticipant:Success",
		"event_id", event.ID, "participant_id", created.ID)

	return dto.ToParticipantResponse(created), nil
}

// GetParticipantsByEvent lists an event's participants for the organizer or
// a registered participant. Contact details stay out of the payload.
func (s *ParticipantService) GetParticipantsByEvent(ctx context.Context, eventID int64, access ListAccess) ([]dto.ParticipantResponse, *errors.AppError) {
	event, err := s.events.GetEventByID(ctx, eventID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to get event", err)
	}
	if event == nil {
		return nil, errors.NewAppError(errors.ErrNotFound, "event not found", nil)
	}

	participants, err := s.repo.GetParticipantsByEventID(ctx, eventID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to get participants", err)
	}

	if appErr := authorizeListing(event.OrganizerID, participants, access); appErr != nil {
		return nil, appErr
	}

	result := make([]dto.ParticipantResponse, 0, len(participants))
	for i := range participants {
		p := &participants[i]
		result = append(result, dto.ParticipantResponse{
			ParticipantID: p.ID,
			EventID:       p.EventID,
			Nickname:      p.Nickname,
			IsRegistered:  p.IsRegistered(),
			CreatedAt:     p.CreatedAt,
		})
	}
	return result, nil
}

func authorizeListing(organizerID uuid.UUID, participants []entity.Participant, access ListAccess) *errors.AppError {
	if access.UserID != nil && *access.UserID == organizerID {
		return nil
	}
	if access.ParticipantID != nil && access.Email != "" {
		for i := range participants {
			p := &participants[i]
			if p.ID != *access.ParticipantID || p.Email == nil {
				continue
			}
			if strings.EqualFold(*p.Email, access.Email) {
				return nil
			}
		}
	}
	return errors.NewAppError(errors.ErrForbidden, "participant listing requires the organizer or a registered participant", nil)
}

// DeleteParticipant removes a participant and, by cascade, their ledger rows.
// Only the event organizer may do this.
func (s *ParticipantService) DeleteParticipant(ctx context.Context, participantID int64, callerID uuid.UUID) *errors.AppError {
	p, err := s.repo.GetParticipantByID(ctx, participantID)
	if err != nil {
		return errors.NewAppError(errors.ErrInternalServer, "failed to get participant", err)
	}
	if p == nil {
		return errors.NewAppError(errors.ErrNotFound, "participant not found", nil)
	}

	event, err := s.events.GetEventByID(ctx, p.EventID)
	if err != nil || event == nil {
		return errors.NewAppError(errors.ErrNotFound, "event not found", err)
	}
	if event.OrganizerID != callerID {
		return errors.NewAppError(errors.ErrForbidden, "only the organizer can remove participants", nil)
	}

	if err := s.repo.DeleteParticipant(ctx, participantID); err != nil {
		return errors.NewAppError(errors.ErrInternalServer, "failed to delete participant", err)
	}

	s.bumpVersion(ctx, p.EventID)
	return nil
}

// SubmitAvailability fully replaces the participant's entry set. All-or-
// nothing: a single foreign slot rejects the whole submission. Rejected once
// the event is finalized or its deadline has passed.
func (s *ParticipantService) SubmitAvailability(ctx context.Context, participantID int64, req *dto.SubmitAvailabilityRequest) *errors.AppError {
	if len(req.Entries) == 0 {
		return errors.NewAppError(errors.ErrEmptySubmission, "submission must contain at least one entry", nil)
	}

	p, err := s.repo.GetParticipantByID(ctx, participantID)
	if err != nil {
		return errors.NewAppError(errors.ErrInternalServer, "failed to get participant", err)
	}
	if p == nil {
		return errors.NewAppError(errors.ErrNotFound, "participant not found", nil)
	}

	event, err := s.events.GetEventByID(ctx, p.EventID)
	if err != nil || event == nil {
		return errors.NewAppError(errors.ErrNotFound, "event not found", err)
	}
	if event.IsFinalized() {
		return errors.NewAppError(errors.ErrAlreadyFinalized, "event schedule is already finalized", nil)
	}
	if event.IsClosed(time.Now()) {
		return errors.NewAppError(errors.ErrEventClosed, "submission deadline has passed", nil)
	}

	slotIDs, err := s.repo.GetSlotIDsByEventID(ctx, p.EventID)
	if err != nil {
		return errors.NewAppError(errors.ErrInternalServer, "failed to get slots", err)
	}
	valid := make(map[int64]struct{}, len(slotIDs))
	for _, id := range slotIDs {
		valid[id] = struct{}{}
	}

	entries := make([]entity.AvailabilityEntry, 0, len(req.Entries))
	seen := make(map[int64]struct{}, len(req.Entries))
	for _, in := range req.Entries {
		if _, ok := valid[in.TimeSlotID]; !ok {
			return errors.NewAppError(errors.ErrSlotMismatch, "slot does not belong to the participant's event", nil)
		}
		if _, dup := seen[in.TimeSlotID]; dup {
			// Later duplicate wins, matching last-write-wins semantics.
			for i := range entries {
				if entries[i].TimeSlotID == in.TimeSlotID {
					entries[i].IsAvailable = in.IsAvailable
				}
			}
			continue
		}
		seen[in.TimeSlotID] = struct{}{}
		entries = append(entries, entity.AvailabilityEntry{
			ParticipantID: participantID,
			TimeSlotID:    in.TimeSlotID,
			IsAvailable:   in.IsAvailable,
		})
	}

	if err := s.repo.ReplaceEntries(ctx, participantID, entries); err != nil {
		return errors.NewAppError(errors.ErrInternalServer, "failed to store availability", err)
	}

	s.bumpVersion(ctx, p.EventID)
	logger.Info("ParticipantService:SubmitAvailability:Success",
		"participant_id", participantID, "entries", len(entries))
	return nil
}

func (s *ParticipantService) GetAvailability(ctx context.Context, participantID int64) (*dto.AvailabilityResponse, *errors.AppError) {
	p, err := s.repo.GetParticipantByID(ctx, participantID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to get participant", err)
	}
	if p == nil {
		return nil, errors.NewAppError(errors.ErrNotFound, "participant not found", nil)
	}

	entries, err := s.repo.GetEntriesByParticipantID(ctx, participantID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to get availability", err)
	}

	resp := &dto.AvailabilityResponse{
		ParticipantID: p.ID,
		EventID:       p.EventID,
		Entries:       make([]dto.AvailabilityEntryResponse, 0, len(entries)),
		HasSubmitted:  len(entries) > 0,
	}
	for _, e := range entries {
		resp.Entries = append(resp.Entries, dto.AvailabilityEntryResponse{
			TimeSlotID:  e.TimeSlotID,
			IsAvailable: e.IsAvailable,
		})
	}
	return resp, nil
}

func (s *ParticipantService) bumpVersion(ctx context.Context, eventID int64) {
	if s.versions == nil {
		return
	}
	if err := s.versions.BumpLedgerVersion(ctx, eventID); err != nil {
		logger.Warn("ParticipantService:BumpLedgerVersion", "error", err, "event_id", eventID)
	}
}
