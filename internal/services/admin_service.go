package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"bloghive/internal/models"
	"bloghive/internal/repositories"
	"bloghive/internal/utils"
)

type BroadcastInput struct {
	Title         string
	Description   string
	SendToAll     bool
	SelectedUsers []int
}

type BroadcastResult struct {
	Notification   *models.Notification `json:"notification"`
	RecipientCount int                  `json:"recipientCount"`
	EmailFailures  int                  `json:"emailFailures"`
}

type AdminService interface {
	ListUsers(ctx context.Context, page, limit int) ([]*models.User, models.Pagination, error)
	SetBan(ctx context.Context, userID int, action string) (*models.User, error)
	Broadcast(ctx context.Context, in BroadcastInput) (*BroadcastResult, error)
}

type adminService struct {
	users    repositories.UserRepository
	notes    repositories.NotificationRepository
	sender   NotificationSender
	telegram TelegramNotifier
}

func NewAdminService(users repositories.UserRepository, notes repositories.NotificationRepository, sender NotificationSender, telegram TelegramNotifier) AdminService {
	return &adminService{users: users, notes: notes, sender: sender, telegram: telegram}
}

func (s *adminService) ListUsers(ctx context.Context, page, limit int) ([]*models.User, models.Pagination, error) {
	total, err := s.users.Count(ctx)
	if err != nil {
		return nil, models.Pagination{}, Infra("count users", err)
	}
	offset, p := Paginate(page, limit, total)
	list, err := s.users.List(ctx, pageLimit(limit), offset)
	if err != nil {
		return nil, models.Pagination{}, Infra("list users", err)
	}
	if list == nil {
		list = []*models.User{}
	}
	return list, p, nil
}

func (s *adminService) SetBan(ctx context.Context, userID int, action string) (*models.User, error) {
	var banned bool
	switch strings.ToLower(strings.TrimSpace(action)) {
	case "ban":
		banned = true
	case "unban":
		banned = false
	default:
		return nil, Validation("Invalid action. Use: ban or unban")
	}
	u, err := s.users.SetBanned(ctx, userID, banned)
	if err != nil {
		return nil, Infra("set banned", err)
	}
	if u == nil {
		return nil, NotFound("User not found")
	}
	utils.Logger.WithFields(logrus.Fields{"user_id": userID, "banned": banned}).Info("[admin][ban] user updated")
	return u, nil
}

// Broadcast stores the notification, fans it out and emails every recipient.
// A failed email is counted, not fatal.
func (s *adminService) Broadcast(ctx context.Context, in BroadcastInput) (*BroadcastResult, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	if in.Title == "" || in.Description == "" {
		return nil, Validation("Title and description are required")
	}
	if !in.SendToAll && len(in.SelectedUsers) == 0 {
		return nil, Validation("Select at least one user or send to all")
	}

	var ids []int
	if !in.SendToAll {
		ids = in.SelectedUsers
	}
	recipients, err := s.users.ListRecipients(ctx, ids)
	if err != nil {
		return nil, Infra("list recipients", err)
	}
	if len(recipients) == 0 {
		return nil, Validation("No recipients found")
	}

	n := &models.Notification{Title: in.Title, Description: in.Description}
	if err := s.notes.Create(ctx, n); err != nil {
		return nil, Infra("create notification", err)
	}
	recipientIDs := make([]int, 0, len(recipients))
	for _, u := range recipients {
		recipientIDs = append(recipientIDs, u.ID)
	}
	count, err := s.notes.Fanout(ctx, n.ID, recipientIDs)
	if err != nil {
		return nil, Infra("fan out notification", err)
	}

	failures := 0
	for _, u := range recipients {
		if err := s.sender.SendMessage(ctx, u.Email, in.Title, in.Description); err != nil {
			failures++
			utils.Logger.WithError(err).WithField("user_id", u.ID).Warn("[admin][notify] email failed")
		}
	}

	if s.telegram != nil {
		text := fmt.Sprintf("Notification sent: %s\nRecipients: %d, email failures: %d", in.Title, count, failures)
		if err := s.telegram.Notify(ctx, text); err != nil {
			utils.Logger.WithError(err).Warn("[admin][notify] telegram mirror failed")
		}
	}

	return &BroadcastResult{Notification: n, RecipientCount: int(count), EmailFailures: failures}, nil
}
