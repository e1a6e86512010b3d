package services

import (
	"context"

	"bloghive/internal/models"
	"bloghive/internal/repositories"
)

type NotificationService interface {
	List(ctx context.Context, userID int) ([]*models.UserNotification, error)
	MarkRead(ctx context.Context, userID, id int) error
}

type notificationService struct {
	repo repositories.NotificationRepository
}

func NewNotificationService(repo repositories.NotificationRepository) NotificationService {
	return &notificationService{repo: repo}
}

func (s *notificationService) List(ctx context.Context, userID int) ([]*models.UserNotification, error) {
	list, err := s.repo.ListForUser(ctx, userID)
	if err != nil {
		return nil, Infra("list notifications", err)
	}
	if list == nil {
		list = []*models.UserNotification{}
	}
	return list, nil
}

func (s *notificationService) MarkRead(ctx context.Context, userID, id int) error {
	n, err := s.repo.MarkRead(ctx, userID, id)
	if err != nil {
		return Infra("mark notification read", err)
	}
	if n == 0 {
		return NotFound("Notification not found")
	}
	return nil
}
