package notification

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// LogNotifier records milestones without delivering a push. It is used when
// firebase credentials are absent.
type LogNotifier struct {
	logger *zap.Logger
}

func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogNotifier{logger: logger}
}

func (notifier *LogNotifier) NotifyMilestone(_ context.Context, userID uuid.UUID, streak int) error {
	notifier.logger.Info("streak milestone reached",
		zap.String("user_id", userID.String()),
		zap.Int("streak", streak),
	)
	return nil
}
