package notify

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"
)

// Notifier delivers user-facing notifications. Delivery is best effort:
// callers log failures and carry on.
type Notifier interface {
	Welcome(ctx context.Context, msg WelcomeMessage) error
}

// WelcomeMessage is sent once per successful registration.
type WelcomeMessage struct {
	UserID       string    `json:"user_id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	RegisteredAt time.Time `json:"registered_at"`
}

func (m WelcomeMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// LogNotifier writes notifications to the log. It is used when no broker
// is configured.
type LogNotifier struct {
	logger *zap.Logger
}

func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Welcome(_ context.Context, msg WelcomeMessage) error {
	n.logger.Info("welcome notification",
		zap.String("user_id", msg.UserID),
		zap.String("username", msg.Username),
		zap.String("email", msg.Email),
	)
	return nil
}
