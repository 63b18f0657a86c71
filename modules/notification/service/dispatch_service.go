package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"ourtime-api/core/constants"
	"ourtime-api/core/errors"
	"ourtime-api/core/logger"
	"ourtime-api/core/mailer"
	"ourtime-api/core/worker"
	eventEntity "ourtime-api/modules/event/entity"
	eventRepo "ourtime-api/modules/event/repository"
	"ourtime-api/modules/notification/dto"
	participantRepo "ourtime-api/modules/participant/repository"
)

// emailTaskPayload is what travels through the queue. Everything else is
// reloaded at handling time so the email reflects current data.
type emailTaskPayload struct {
	EventID int64 `json:"event_id"`
}

// DispatchService turns a finalized schedule into emails: an immediate
// announcement to everyone who left an address, plus a reminder on the
// morning of the chosen day.
type DispatchService struct {
	events        eventRepo.EventRepositoryInterface
	participants  participantRepo.ParticipantRepositoryInterface
	notifications NotificationServiceInterface
	queue         *asynq.Client
	mail          mailer.Mailer
	frontendURL   string
}

type DispatchServiceInterface interface {
	SendFinalChoiceEmail(ctx context.Context, eventID int64, organizerID uuid.UUID) *errors.AppError
	HandleFinalChoiceEmailTask(ctx context.Context, task *asynq.Task) error
	HandleReminderEmailTask(ctx context.Context, task *asynq.Task) error
}

func NewDispatchService(
	events eventRepo.EventRepositoryInterface,
	participants participantRepo.ParticipantRepositoryInterface,
	notifications NotificationServiceInterface,
	queue *asynq.Client,
	mail mailer.Mailer,
	frontendURL string,
) DispatchServiceInterface {
	return &DispatchService{
		events:        events,
		participants:  participants,
		notifications: notifications,
		queue:         queue,
		mail:          mail,
		frontendURL:   frontendURL,
	}
}

// SendFinalChoiceEmail records the dispatch and enqueues the announcement.
// Only the organizer of a finalized event may trigger it.
func (s *DispatchService) SendFinalChoiceEmail(ctx context.Context, eventID int64, organizerID uuid.UUID) *errors.AppError {
	event, err := s.events.GetEventByID(ctx, eventID)
	if err != nil {
		return errors.NewAppError(errors.ErrInternalServer, "failed to get event", err)
	}
	if event == nil {
		return errors.NewAppError(errors.ErrNotFound, "event not found", nil)
	}
	if event.OrganizerID != organizerID {
		return errors.NewAppError(errors.ErrForbidden, "only the organizer can send the announcement", nil)
	}

	choice, err := s.events.GetFinalChoiceByEventID(ctx, eventID)
	if err != nil {
		return errors.NewAppError(errors.ErrInternalServer, "failed to get final choice", err)
	}
	if choice == nil {
		return errors.NewAppError(errors.ErrNotFound, "no final choice has been set", nil)
	}

	slot, err := s.events.GetSlotByID(ctx, choice.SlotID)
	if err != nil || slot == nil {
		return errors.NewAppError(errors.ErrInternalServer, "failed to get chosen slot", err)
	}

	if errCreate := s.notifications.Create(ctx, &dto.CreateNotificationRequest{
		UserID:  organizerID,
		Title:   "Schedule announcement sent",
		Message: fmt.Sprintf("Participants of %q are being notified of the final time.", event.Title),
		Type:    constants.NotificationTypeFinalChoice,
		Data: map[string]interface{}{
			"event_id": event.ID,
			"slot_id":  choice.SlotID,
		},
	}); errCreate != nil {
		logger.Error("DispatchService:SendFinalChoiceEmail:CreateNotification:Error:", errCreate)
	}

	payload, _ := json.Marshal(emailTaskPayload{EventID: eventID})

	if _, err := s.queue.EnqueueContext(ctx, asynq.NewTask(worker.TypeFinalChoiceEmail, payload)); err != nil {
		return errors.NewAppError(errors.ErrInternalServer, "failed to enqueue announcement", err)
	}

	s.scheduleReminder(ctx, event, slot, payload)

	logger.Info("DispatchService:SendFinalChoiceEmail:Enqueued", "event_id", eventID)
	return nil
}

// scheduleReminder queues a reminder for 09:00 event-local time on the day
// of the chosen slot. Skipped when that morning is already in the past.
func (s *DispatchService) scheduleReminder(ctx context.Context, event *eventEntity.Event, slot *eventEntity.TimeSlot, payload []byte) {
	loc, err := time.LoadLocation(event.Timezone)
	if err != nil {
		loc = time.UTC
	}

	start := slot.StartDatetime.In(loc)
	morning := time.Date(start.Year(), start.Month(), start.Day(), 9, 0, 0, 0, loc)
	if !morning.After(time.Now()) {
		return
	}

	_, err = s.queue.EnqueueContext(ctx,
		asynq.NewTask(worker.TypeReminderEmail, payload),
		asynq.ProcessAt(morning))
	if err != nil {
		logger.Error("DispatchService:ScheduleReminder:Error:", err)
		return
	}
	logger.Info("DispatchService:ScheduleReminder:Scheduled",
		"event_id", event.ID, "process_at", morning)
}

func (s *DispatchService) HandleFinalChoiceEmailTask(ctx context.Context, task *asynq.Task) error {
	return s.deliver(ctx, task, "Your meeting time is set",
		"The final time for %q is %s. See the details at %s")
}

func (s *DispatchService) HandleReminderEmailTask(ctx context.Context, task *asynq.Task) error {
	return s.deliver(ctx, task, "Meeting today",
		"Reminder: %q is today at %s. Details: %s")
}

func (s *DispatchService) deliver(ctx context.Context, task *asynq.Task, subject, format string) error {
	var payload emailTaskPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	event, err := s.events.GetEventByID(ctx, payload.EventID)
	if err != nil {
		return err
	}
	if event == nil {
		// Event deleted since enqueue. Nothing to deliver.
		logger.Warn("DispatchService:Deliver:EventGone", "event_id", payload.EventID)
		return nil
	}

	choice, err := s.events.GetFinalChoiceByEventID(ctx, payload.EventID)
	if err != nil {
		return err
	}
	if choice == nil {
		logger.Warn("DispatchService:Deliver:NoFinalChoice", "event_id", payload.EventID)
		return nil
	}

	slot, err := s.events.GetSlotByID(ctx, choice.SlotID)
	if err != nil || slot == nil {
		return fmt.Errorf("chosen slot %d missing: %w", choice.SlotID, err)
	}

	participants, err := s.participants.GetParticipantsByEventID(ctx, payload.EventID)
	if err != nil {
		return err
	}

	recipients := make([]string, 0, len(participants))
	for _, p := range participants {
		if p.Email != nil && *p.Email != "" {
			recipients = append(recipients, *p.Email)
		}
	}
	if len(recipients) == 0 {
		logger.Info("DispatchService:Deliver:NoRecipients", "event_id", payload.EventID)
		return nil
	}

	loc, errLoc := time.LoadLocation(event.Timezone)
	if errLoc != nil {
		loc = time.UTC
	}
	when := slot.StartDatetime.In(loc).Format("2006-01-02 15:04")
	link := s.frontendURL + "/e/" + event.Slug

	body := fmt.Sprintf(format, event.Title, when, link)
	if err := s.mail.Send(recipients, subject, body); err != nil {
		return fmt.Errorf("send mail for event %d: %w", payload.EventID, err)
	}

	logger.Info("DispatchService:Deliver:Sent",
		"event_id", payload.EventID, "recipients", len(recipients), "type", task.Type())
	return nil
}
