package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"ourtime-api/core/config"
	"ourtime-api/core/constants"
	"ourtime-api/core/errors"
	"ourtime-api/core/logger"
	"ourtime-api/core/params"
	"ourtime-api/core/utils"
	"ourtime-api/modules/event/dto"
	"ourtime-api/modules/event/entity"
	"ourtime-api/modules/event/repository"
)

// LedgerVersions invalidates cached aggregations when the data under them
// moves.
type LedgerVersions interface {
	BumpLedgerVersion(ctx context.Context, eventID int64) error
}

// EventService handles event lifecycle business logic.
type EventService struct {
	repo      repository.EventRepositoryInterface
	generator *SlotGenerator
	versions  LedgerVersions
}

// EventServiceInterface defines the service contract
type EventServiceInterface interface {
	CreateEvent(ctx context.Context, organizerID uuid.UUID, req *dto.CreateEventRequest) (*dto.EventResponse, *errors.AppError)
	GetEventBySlug(ctx context.Context, slug string) (*dto.EventDetailResponse, *errors.AppError)
	GetMyEvents(ctx context.Context, organizerID uuid.UUID, p params.QueryParams) (*dto.PaginatedMyEvents, *errors.AppError)
	UpdateEvent(ctx context.Context, eventID int64, organizerID uuid.UUID, req *dto.UpdateEventRequest) (*dto.EventResponse, *errors.AppError)
	DeleteEvent(ctx context.Context, eventID int64, organizerID uuid.UUID) *errors.AppError
	SetFinalChoice(ctx context.Context, eventID int64, organizerID uuid.UUID, slotID int64) (*dto.FinalChoiceResponse, *errors.AppError)
	GetFinalChoice(ctx context.Context, eventID int64) (*dto.FinalChoiceResponse, *errors.AppError)
	PurgeDeleted(ctx context.Context, retention time.Duration) (int64, error)
}

func NewEventService(repo repository.EventRepositoryInterface, versions LedgerVersions) EventServiceInterface {
	return &EventService{
		repo:      repo,
		generator: NewSlotGenerator(constants.DefaultSlotStepMinutes),
		versions:  versions,
	}
}

func frontendURL() string {
	if cfg, ok := config.GetSafe(); ok {
		return cfg.FrontendURL
	}
	return ""
}

// CreateEvent validates the range, generates the slot grid and persists both
// atomically.
func (s *EventService) CreateEvent(ctx context.Context, organizerID uuid.UUID, req *dto.CreateEventRequest) (*dto.EventResponse, *errors.AppError) {
	if req.Title == "" {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "title is required", nil)
	}

	tz := req.Timezone
	if tz == "" {
		tz = "Asia/Seoul"
	}

	slots, err := s.generator.GenerateSlots(req.DateStart, req.DateEnd, req.TimeStart, req.TimeEnd, tz)
	if err != nil {
		if ae, ok := err.(*errors.AppError); ok {
			return nil, ae
		}
		return nil, errors.NewAppError(errors.ErrInvalidRange, "invalid date or time range", err)
	}

	loc, _ := time.LoadLocation(tz)
	dateStart, _ := time.ParseInLocation("2006-01-02", req.DateStart, loc)
	dateEnd, _ := time.ParseInLocation("2006-01-02", req.DateEnd, loc)

	event := &entity.Event{
		Slug:        utils.GenerateSlug(req.Title),
		Title:       req.Title,
		OrganizerID: organizerID,
		DateStart:   dateStart,
		DateEnd:     dateEnd,
		TimeStart:   req.TimeStart,
		TimeEnd:     req.TimeEnd,
		Timezone:    tz,
		Status:      entity.EventStatusOpen,
	}
	if req.Description != "" {
		event.Description = &req.Description
	}
	if req.DeadlineAt != nil && *req.DeadlineAt != "" {
		deadline, parseErr := time.Parse(time.RFC3339, *req.DeadlineAt)
		if parseErr != nil {
			return nil, errors.NewAppError(errors.ErrInvalidInput, "deadline_at must be RFC3339", parseErr)
		}
		event.DeadlineAt = &deadline
	}

	created, repoErr := s.repo.CreateEventWithSlots(ctx, event, slots)
	if repoErr != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to create event", repoErr)
	}

	logger.Info("EventService:CreateEvent:Success",
		"event_id", created.ID, "slug", created.Slug, "slots", len(slots))

	return dto.ToEventResponse(created, len(slots), frontendURL()), nil
}

// GetEventBySlug returns the public event page payload with embedded slots
// and the final choice when one exists.
func (s *EventService) GetEventBySlug(ctx context.Context, slug string) (*dto.EventDetailResponse, *errors.AppError) {
	event, err := s.repo.GetEventBySlug(ctx, slug)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to get event", err)
	}
	if event == nil {
		return nil, errors.NewAppError(errors.ErrNotFound, "event not found", nil)
	}

	slots, err := s.repo.GetSlotsByEventID(ctx, event.ID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to get slots", err)
	}
	participantsCount, err := s.repo.CountParticipantsByEventID(ctx, event.ID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to count participants", err)
	}

	loc, locErr := time.LoadLocation(event.Timezone)
	if locErr != nil {
		loc = time.UTC
	}

	resp := &dto.EventDetailResponse{
		EventResponse:     *dto.ToEventResponse(event, len(slots), frontendURL()),
		IsClosed:          event.IsClosed(time.Now()),
		ParticipantsCount: participantsCount,
		TimeSlots:         make([]dto.TimeSlotResponse, 0, len(slots)),
	}
	for i := range slots {
		resp.TimeSlots = append(resp.TimeSlots, dto.ToTimeSlotResponse(&slots[i], loc))
	}

	if event.IsFinalized() {
		fc, err := s.repo.GetFinalChoiceByEventID(ctx, event.ID)
		if err == nil && fc != nil {
			if slot, err := s.repo.GetSlotByID(ctx, fc.SlotID); err == nil && slot != nil {
				resp.FinalChoice = dto.ToFinalChoiceResponse(fc, slot, loc)
			}
		}
	}

	return resp, nil
}

func (s *EventService) GetMyEvents(ctx context.Context, organizerID uuid.UUID, p params.QueryParams) (*dto.PaginatedMyEvents, *errors.AppError) {
	events, total, err := s.repo.GetEventsByOrganizer(ctx, organizerID, p)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to get events", err)
	}

	items := make([]dto.MyEventItem, 0, len(events))
	for i := range events {
		e := &events[i]
		count, _ := s.repo.CountParticipantsByEventID(ctx, e.ID)
		items = append(items, dto.MyEventItem{
			ID:               e.ID,
			Slug:             e.Slug,
			Title:            e.Title,
			DateStart:        e.DateStart.Format("2006-01-02"),
			DateEnd:          e.DateEnd.Format("2006-01-02"),
			DeadlineAt:       e.DeadlineAt,
			Status:           string(e.Status),
			ParticipantCount: count,
			CreatedAt:        e.CreatedAt,
		})
	}

	return &dto.PaginatedMyEvents{
		Items:      items,
		TotalItems: total,
		PageNumber: p.PageNumber,
		PageSize:   p.PageSize,
	}, nil
}

// UpdateEvent applies a partial update. Editing the date or time range
// regenerates the slot grid: slots whose start survives keep their ledger
// rows, removed slots discard theirs. Finalized events reject every edit.
func (s *EventService) UpdateEvent(ctx context.Context, eventID int64, organizerID uuid.UUID, req *dto.UpdateEventRequest) (*dto.EventResponse, *errors.AppError) {
	event, err := s.repo.GetEventByID(ctx, eventID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to get event", err)
	}
	if event == nil {
		return nil, errors.NewAppError(errors.ErrNotFound, "event not found", nil)
	}
	if event.OrganizerID != organizerID {
		return nil, errors.NewAppError(errors.ErrForbidden, "not the event organizer", nil)
	}
	if event.IsFinalized() {
		return nil, errors.NewAppError(errors.ErrAlreadyFinalized, "finalized events cannot be edited", nil)
	}

	if req.Title != nil {
		if *req.Title == "" {
			return nil, errors.NewAppError(errors.ErrInvalidInput, "title cannot be empty", nil)
		}
		event.Title = *req.Title
	}
	if req.Description != nil {
		event.Description = req.Description
	}
	if req.DeadlineAt != nil {
		if *req.DeadlineAt == "" {
			event.DeadlineAt = nil
		} else {
			deadline, parseErr := time.Parse(time.RFC3339, *req.DeadlineAt)
			if parseErr != nil {
				return nil, errors.NewAppError(errors.ErrInvalidInput, "deadline_at must be RFC3339", parseErr)
			}
			event.DeadlineAt = &deadline
		}
	}

	rangeChanged := false
	loc, locErr := time.LoadLocation(event.Timezone)
	if locErr != nil {
		loc = time.UTC
	}
	dateStart := event.DateStart.Format("2006-01-02")
	dateEnd := event.DateEnd.Format("2006-01-02")

	if req.DateStart != nil {
		dateStart = *req.DateStart
		rangeChanged = true
	}
	if req.DateEnd != nil {
		dateEnd = *req.DateEnd
		rangeChanged = true
	}
	if req.TimeStart != nil {
		event.TimeStart = *req.TimeStart
		rangeChanged = true
	}
	if req.TimeEnd != nil {
		event.TimeEnd = *req.TimeEnd
		rangeChanged = true
	}

	var slots []entity.TimeSlot
	if rangeChanged {
		generated, genErr := s.generator.GenerateSlots(dateStart, dateEnd, event.TimeStart, event.TimeEnd, event.Timezone)
		if genErr != nil {
			if ae, ok := genErr.(*errors.AppError); ok {
				return nil, ae
			}
			return nil, errors.NewAppError(errors.ErrInvalidRange, "invalid date or time range", genErr)
		}
		slots = generated

		ds, _ := time.ParseInLocation("2006-01-02", dateStart, loc)
		de, _ := time.ParseInLocation("2006-01-02", dateEnd, loc)
		event.DateStart = ds
		event.DateEnd = de
	}

	if err := s.repo.UpdateEventWithSlots(ctx, event, slots); err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to update event", err)
	}

	if rangeChanged && s.versions != nil {
		if err := s.versions.BumpLedgerVersion(ctx, event.ID); err != nil {
			logger.Warn("EventService:UpdateEvent:BumpLedgerVersion", "error", err, "event_id", event.ID)
		}
	}

	slotCount, _ := s.repo.CountSlotsByEventID(ctx, event.ID)
	return dto.ToEventResponse(event, slotCount, frontendURL()), nil
}

func (s *EventService) DeleteEvent(ctx context.Context, eventID int64, organizerID uuid.UUID) *errors.AppError {
	event, err := s.repo.GetEventByID(ctx, eventID)
	if err != nil {
		return errors.NewAppError(errors.ErrInternalServer, "failed to get event", err)
	}
	if event == nil {
		return errors.NewAppError(errors.ErrNotFound, "event not found", nil)
	}
	if event.OrganizerID != organizerID {
		return errors.NewAppError(errors.ErrForbidden, "not the event organizer", nil)
	}

	if err := s.repo.SoftDeleteEvent(ctx, eventID); err != nil {
		return errors.NewAppError(errors.ErrInternalServer, "failed to delete event", err)
	}
	return nil
}

// SetFinalChoice commits the one-time final slot. Create-once is guarded in
// the repository by the unique constraint, so concurrent attempts resolve to
// exactly one success.
func (s *EventService) SetFinalChoice(ctx context.Context, eventID int64, organizerID uuid.UUID, slotID int64) (*dto.FinalChoiceResponse, *errors.AppError) {
	event, err := s.repo.GetEventByID(ctx, eventID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to get event", err)
	}
	if event == nil {
		return nil, errors.NewAppError(errors.ErrNotFound, "event not found", nil)
	}
	if event.OrganizerID != organizerID {
		return nil, errors.NewAppError(errors.ErrForbidden, "only the organizer can finalize", nil)
	}
	if event.IsFinalized() {
		return nil, errors.NewAppError(errors.ErrAlreadyFinalized, "event already has a final choice", nil)
	}

	slot, err := s.repo.GetSlotByID(ctx, slotID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to get slot", err)
	}
	if slot == nil || slot.EventID != eventID {
		return nil, errors.NewAppError(errors.ErrInvalidSlot, "slot does not belong to this event", nil)
	}

	created, err := s.repo.CreateFinalChoice(ctx, &entity.FinalChoice{
		EventID:  eventID,
		SlotID:   slotID,
		ChosenBy: organizerID,
	})
	if err != nil {
		if ae, ok := err.(*errors.AppError); ok {
			return nil, ae
		}
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to set final choice", err)
	}

	if s.versions != nil {
		if err := s.versions.BumpLedgerVersion(ctx, eventID); err != nil {
			logger.Warn("EventService:SetFinalChoice:BumpLedgerVersion", "error", err, "event_id", eventID)
		}
	}

	loc, locErr := time.LoadLocation(event.Timezone)
	if locErr != nil {
		loc = time.UTC
	}

	logger.Info("EventService:SetFinalChoice:Success", "event_id", eventID, "slot_id", slotID)
	return dto.ToFinalChoiceResponse(created, slot, loc), nil
}

func (s *EventService) GetFinalChoice(ctx context.Context, eventID int64) (*dto.FinalChoiceResponse, *errors.AppError) {
	event, err := s.repo.GetEventByID(ctx, eventID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to get event", err)
	}
	if event == nil {
		return nil, errors.NewAppError(errors.ErrNotFound, "event not found", nil)
	}

	fc, err := s.repo.GetFinalChoiceByEventID(ctx, eventID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to get final choice", err)
	}
	if fc == nil {
		return nil, errors.NewAppError(errors.ErrNotFound, "no final choice yet", nil)
	}

	slot, err := s.repo.GetSlotByID(ctx, fc.SlotID)
	if err != nil || slot == nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to load final slot", err)
	}

	loc, locErr := time.LoadLocation(event.Timezone)
	if locErr != nil {
		loc = time.UTC
	}
	return dto.ToFinalChoiceResponse(fc, slot, loc), nil
}

// PurgeDeleted hard-deletes soft-deleted events past the retention window.
// Invoked by the nightly cron job.
func (s *EventService) PurgeDeleted(ctx context.Context, retention time.Duration) (int64, error) {
	n, err := s.repo.PurgeDeletedBefore(ctx, time.Now().Add(-retention))
	if err != nil {
		return 0, err
	}
	if n > 0 {
		logger.Info("EventService:PurgeDeleted", "purged", n)
	}
	return n, nil
}
