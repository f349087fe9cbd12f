package service

import (
	"context"
	"encoding/json"
	"fmt"

	"codejudge/internal/domain/model"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// NotificationService enqueues verdict notifications for the background
// worker. Enqueueing is best-effort: the submission response must not depend
// on it, so callers log the returned error and move on.
type NotificationService struct {
	rdb       *redis.Client
	queueName string
	logger    *zap.Logger
}

func NewNotificationService(rdb *redis.Client, queueName string, logger *zap.Logger) *NotificationService {
	return &NotificationService{
		rdb:       rdb,
		queueName: queueName,
		logger:    logger,
	}
}

func (s *NotificationService) Dispatch(ctx context.Context, n model.VerdictNotification) error {
	payload, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}
	if err := s.rdb.LPush(ctx, s.queueName, payload).Err(); err != nil {
		return fmt.Errorf("failed to enqueue notification: %w", err)
	}
	s.logger.Debug("verdict notification enqueued",
		zap.String("recipient", n.Recipient),
		zap.String("problem", n.ProblemName))
	return nil
}
