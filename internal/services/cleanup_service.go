package services

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"bloghive/internal/utils"
)

// ExpiredPurger is implemented by the verification store.
type ExpiredPurger interface {
	CleanupExpired(ctx context.Context) (int64, error)
}

type CleanupService struct {
	store   ExpiredPurger
	timeout time.Duration
}

func NewCleanupService(store ExpiredPurger) *CleanupService {
	return &CleanupService{store: store, timeout: 30 * time.Second}
}

// Run deletes expired challenges and pending registrations once.
func (s *CleanupService) Run(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	n, err := s.store.CleanupExpired(ctx)
	if err != nil {
		utils.Logger.WithError(err).Error("[cleanup] expired verification rows")
		return
	}
	if n > 0 {
		utils.Logger.Infof("[cleanup] removed %d expired verification rows", n)
	}
}

// Schedule registers Run on c with the given cron spec.
func (s *CleanupService) Schedule(c *cron.Cron, spec string) error {
	_, err := c.AddFunc(spec, func() { s.Run(context.Background()) })
	return err
}
