package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"ourtime-api/core/cache"
	"ourtime-api/core/constants"
	"ourtime-api/core/errors"
	"ourtime-api/core/logger"
	"ourtime-api/modules/dashboard/dto"
	"ourtime-api/modules/dashboard/repository"
)

// AccessQuery carries the caller's credentials for a dashboard read: either
// an authenticated user (the organizer) or an anonymous participant proving
// identity with their participant ID and registered email.
type AccessQuery struct {
	UserID        *uuid.UUID
	ParticipantID *int64
	Email         string
}

type DashboardService struct {
	repo  repository.DashboardRepositoryInterface
	cache *cache.Cache
}

type DashboardServiceInterface interface {
	GetDashboard(ctx context.Context, eventID int64, access AccessQuery) (*dto.DashboardResponse, *errors.AppError)
	RecommendTimes(ctx context.Context, eventID int64, access AccessQuery, limit, minParticipants int) (*dto.RecommendationResponse, *errors.AppError)
}

func NewDashboardService(repo repository.DashboardRepositoryInterface, c *cache.Cache) DashboardServiceInterface {
	return &DashboardService{repo: repo, cache: c}
}

// authorize checks the access query against the snapshot. Organizers get in
// with their token; participants with a matching (id, email) pair.
func authorize(rows *repository.SnapshotRows, access AccessQuery) *errors.AppError {
	if access.UserID != nil && *access.UserID == rows.Event.OrganizerID {
		return nil
	}
	if access.ParticipantID != nil && access.Email != "" {
		for _, p := range rows.Participants {
			if p.ID != *access.ParticipantID || p.Email == nil {
				continue
			}
			if strings.EqualFold(*p.Email, access.Email) {
				return nil
			}
		}
	}
	return errors.NewAppError(errors.ErrForbidden, "dashboard access requires the organizer or a registered participant", nil)
}

func (s *DashboardService) GetDashboard(ctx context.Context, eventID int64, access AccessQuery) (*dto.DashboardResponse, *errors.AppError) {
	rows, appErr := s.loadAuthorized(ctx, eventID, access)
	if appErr != nil {
		return nil, appErr
	}

	version := s.ledgerVersion(ctx, eventID)
	if cached := s.cachedDashboard(ctx, eventID, version); cached != nil {
		return cached, nil
	}

	snapshot := &Snapshot{
		Event:        rows.Event,
		Slots:        rows.Slots,
		Participants: rows.Participants,
		Entries:      rows.Entries,
	}

	heatmap := ComputeHeatmap(snapshot)
	stats := ComputeStats(snapshot)
	stats.MostPopularSlot = MostPopular(heatmap)

	resp := &dto.DashboardResponse{
		EventID:      rows.Event.ID,
		EventTitle:   rows.Event.Title,
		Status:       string(rows.Event.Status),
		IsClosed:     rows.Event.IsClosed(time.Now()),
		Stats:        stats,
		Participants: participantList(snapshot),
		Heatmap:      heatmap,
	}

	s.storeDashboard(ctx, eventID, version, resp)
	return resp, nil
}

// RecommendTimes ranks the event's slots for the caller. Recomputed from the
// snapshot on every call so it is idempotent while the ledger holds still.
func (s *DashboardService) RecommendTimes(ctx context.Context, eventID int64, access AccessQuery, limit, minParticipants int) (*dto.RecommendationResponse, *errors.AppError) {
	if limit <= 0 {
		limit = constants.DefaultRecommendLimit
	}
	if limit > constants.MaxRecommendLimit {
		limit = constants.MaxRecommendLimit
	}
	if minParticipants < 0 {
		minParticipants = 0
	}

	rows, appErr := s.loadAuthorized(ctx, eventID, access)
	if appErr != nil {
		return nil, appErr
	}

	snapshot := &Snapshot{
		Event:        rows.Event,
		Slots:        rows.Slots,
		Participants: rows.Participants,
		Entries:      rows.Entries,
	}

	recommendations := RecommendTopSlots(ComputeHeatmap(snapshot), limit, minParticipants)

	resp := &dto.RecommendationResponse{
		EventID:         eventID,
		Recommendations: recommendations,
	}
	switch {
	case len(snapshot.Entries) == 0:
		resp.Message = "no availability has been submitted yet"
	case len(recommendations) == 0:
		resp.Message = fmt.Sprintf("no slot reaches %d available participants", minParticipants)
	}
	return resp, nil
}

func (s *DashboardService) loadAuthorized(ctx context.Context, eventID int64, access AccessQuery) (*repository.SnapshotRows, *errors.AppError) {
	rows, err := s.repo.LoadSnapshot(ctx, eventID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to load event snapshot", err)
	}
	if rows == nil {
		return nil, errors.NewAppError(errors.ErrNotFound, "event not found", nil)
	}
	if appErr := authorize(rows, access); appErr != nil {
		return nil, appErr
	}
	return rows, nil
}

func participantList(s *Snapshot) []dto.DashboardParticipant {
	submitted := s.submittedSet()
	out := make([]dto.DashboardParticipant, 0, len(s.Participants))
	for _, p := range s.Participants {
		_, has := submitted[p.ID]
		out = append(out, dto.DashboardParticipant{
			ParticipantID: p.ID,
			Nickname:      p.Nickname,
			HasSubmitted:  has,
		})
	}
	return out
}

// Cache helpers. Failures degrade to a recompute, never to an error.

func (s *DashboardService) ledgerVersion(ctx context.Context, eventID int64) int64 {
	if s.cache == nil {
		return 0
	}
	version, err := s.cache.LedgerVersion(ctx, eventID)
	if err != nil {
		logger.Warn("DashboardService:LedgerVersion", "error", err, "event_id", eventID)
		return 0
	}
	return version
}

func (s *DashboardService) cachedDashboard(ctx context.Context, eventID, version int64) *dto.DashboardResponse {
	if s.cache == nil {
		return nil
	}
	payload, err := s.cache.GetDashboard(ctx, eventID, version)
	if err != nil || payload == "" {
		return nil
	}
	var resp dto.DashboardResponse
	if err := json.Unmarshal([]byte(payload), &resp); err != nil {
		logger.Warn("DashboardService:CachedDashboard:Unmarshal", "error", err, "event_id", eventID)
		return nil
	}
	return &resp
}

func (s *DashboardService) storeDashboard(ctx context.Context, eventID, version int64, resp *dto.DashboardResponse) {
	if s.cache == nil {
		return
	}
	payload, err := json.Marshal(resp)
	if err != nil {
		return
	}
	if err := s.cache.SetDashboard(ctx, eventID, version, string(payload)); err != nil {
		logger.Warn("DashboardService:StoreDashboard", "error", err, "event_id", eventID)
	}
}
