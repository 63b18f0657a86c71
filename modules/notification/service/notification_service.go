package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	coreEntity "ourtime-api/core/entity"
	"ourtime-api/core/errors"
	"ourtime-api/core/params"
	"ourtime-api/modules/notification/dto"
	"ourtime-api/modules/notification/entity"
	"ourtime-api/modules/notification/repository"
)

type NotificationService struct {
	repo repository.NotificationRepositoryInterface
}

type NotificationServiceInterface interface {
	Create(ctx context.Context, req *dto.CreateNotificationRequest) error
	GetMyNotifications(ctx context.Context, userID uuid.UUID, p params.QueryParams) (*coreEntity.Pagination[dto.NotificationResponse], *errors.AppError)
	MarkAsRead(ctx context.Context, userID uuid.UUID, ids []int64) *errors.AppError
	MarkAllAsRead(ctx context.Context, userID uuid.UUID) *errors.AppError
	CountUnread(ctx context.Context, userID uuid.UUID) (int, *errors.AppError)
}

func NewNotificationService(repo repository.NotificationRepositoryInterface) NotificationServiceInterface {
	return &NotificationService{repo: repo}
}

func (s *NotificationService) Create(ctx context.Context, req *dto.CreateNotificationRequest) error {
	notif := &entity.Notification{
		UserID:  req.UserID,
		Title:   req.Title,
		Message: req.Message,
		Type:    req.Type,
		Data:    entity.JSONB(req.Data),
		IsRead:  false,
		BaseEntity: coreEntity.BaseEntity{
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		},
	}
	return s.repo.Create(ctx, notif)
}

func (s *NotificationService) GetMyNotifications(ctx context.Context, userID uuid.UUID, p params.QueryParams) (*coreEntity.Pagination[dto.NotificationResponse], *errors.AppError) {
	result, err := s.repo.GetByUserID(ctx, userID, p)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to get notifications", err)
	}

	items := make([]dto.NotificationResponse, 0, len(result.Items))
	for _, n := range result.Items {
		items = append(items, dto.NotificationResponse{
			ID:        n.ID,
			Title:     n.Title,
			Message:   n.Message,
			Type:      n.Type,
			Data:      map[string]interface{}(n.Data),
			IsRead:    n.IsRead,
			CreatedAt: n.CreatedAt,
		})
	}

	return &coreEntity.Pagination[dto.NotificationResponse]{
		Items:      items,
		TotalItems: result.TotalItems,
		PageNumber: result.PageNumber,
		PageSize:   result.PageSize,
	}, nil
}

func (s *NotificationService) MarkAsRead(ctx context.Context, userID uuid.UUID, ids []int64) *errors.AppError {
	if err := s.repo.MarkAsRead(ctx, userID, ids); err != nil {
		return errors.NewAppError(errors.ErrInternalServer, "failed to mark as read", err)
	}
	return nil
}

func (s *NotificationService) MarkAllAsRead(ctx context.Context, userID uuid.UUID) *errors.AppError {
	if err := s.repo.MarkAllAsRead(ctx, userID); err != nil {
		return errors.NewAppError(errors.ErrInternalServer, "failed to mark all as read", err)
	}
	return nil
}

func (s *NotificationService) CountUnread(ctx context.Context, userID uuid.UUID) (int, *errors.AppError) {
	count, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return 0, errors.NewAppError(errors.ErrInternalServer, "failed to count unread", err)
	}
	return count, nil
}
