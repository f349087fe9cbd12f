package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"codejudge/internal/domain/model"
	"codejudge/internal/platform/mail"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// NotificationWorker drains the verdict queue and emails each result to its
// submitter. Delivery is best-effort: a message that cannot be decoded or sent
// is logged and dropped, never re-queued in front of newer verdicts.
type NotificationWorker struct {
	rdb       *redis.Client
	queueName string
	sender    mail.Sender
	logger    *zap.Logger
}

func NewNotificationWorker(rdb *redis.Client, queueName string, sender mail.Sender, logger *zap.Logger) *NotificationWorker {
	return &NotificationWorker{
		rdb:       rdb,
		queueName: queueName,
		sender:    sender,
		logger:    logger,
	}
}

func (w *NotificationWorker) Start(ctx context.Context) {
	w.logger.Info("notification worker started", zap.String("queue", w.queueName))
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("notification worker stopping")
			return
		default:
			res, err := w.rdb.BRPop(ctx, 0*time.Second, w.queueName).Result()
			if err != nil {
				if errors.Is(err, redis.Nil) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					time.Sleep(1 * time.Second)
					continue
				}
				w.logger.Error("failed to pop from notification queue",
					zap.String("queue", w.queueName), zap.Error(err))
				time.Sleep(5 * time.Second)
				continue
			}

			// res is [queueName, value]
			if len(res) < 2 || res[1] == "" {
				w.logger.Warn("notification queue returned empty payload")
				continue
			}
			w.deliver(res[1])
		}
	}
}

func (w *NotificationWorker) deliver(payload string) {
	var n model.VerdictNotification
	if err := json.Unmarshal([]byte(payload), &n); err != nil {
		w.logger.Error("failed to decode verdict notification", zap.Error(err))
		return
	}

	subject := fmt.Sprintf("Verdict for %s: %s", n.ProblemName, n.StatusName)
	body := fmt.Sprintf(
		"Your submission for %q has been judged.\n\nVerdict: %s (status code %d)\n",
		n.ProblemName, n.StatusName, n.StatusCode,
	)

	if err := w.sender.Send(n.Recipient, subject, body); err != nil {
		w.logger.Error("failed to deliver verdict notification",
			zap.String("recipient", n.Recipient),
			zap.String("problem", n.ProblemName),
			zap.Error(err))
		return
	}
	w.logger.Info("verdict notification delivered",
		zap.String("recipient", n.Recipient),
		zap.String("problem", n.ProblemName),
		zap.String("verdict", n.StatusName))
}
