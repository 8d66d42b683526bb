package notification

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"github.com/google/uuid"
	"github.com/terraincognita07/dailyglow/internal/models"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

var ErrNoCredentials = errors.New("firebase credentials are not configured")

// Sender is the subset of *messaging.Client the notifier needs.
type Sender interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

type PushTargets interface {
	PushTarget(ctx context.Context, userID uuid.UUID) (token string, platform string, err error)
}

type FCMNotifier struct {
	targets PushTargets
	sender  Sender
	logger  *zap.Logger
}

func NewFCMNotifier(targets PushTargets, sender Sender, logger *zap.Logger) *FCMNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FCMNotifier{targets: targets, sender: sender, logger: logger}
}

// NewMessagingClient builds a firebase messaging client. encodedJSON may be
// raw service account JSON or its base64 form; credentialsFile is used when
// encodedJSON is empty.
func NewMessagingClient(ctx context.Context, encodedJSON string, credentialsFile string) (*messaging.Client, error) {
	var opt option.ClientOption
	switch {
	case strings.TrimSpace(encodedJSON) != "":
		raw, err := decodeCredentials(encodedJSON)
		if err != nil {
			return nil, err
		}
		opt = option.WithCredentialsJSON(raw)
	case strings.TrimSpace(credentialsFile) != "":
		if _, err := os.Stat(credentialsFile); err != nil {
			return nil, fmt.Errorf("firebase credentials file: %w", err)
		}
		opt = option.WithCredentialsFile(credentialsFile)
	default:
		return nil, ErrNoCredentials
	}

	app, err := firebase.NewApp(ctx, nil, opt)
	if err != nil {
		return nil, fmt.Errorf("init firebase app: %w", err)
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("init firebase messaging: %w", err)
	}
	return client, nil
}

func decodeCredentials(value string) ([]byte, error) {
	trimmed := strings.TrimSpace(value)
	if strings.HasPrefix(trimmed, "{") {
		return []byte(trimmed), nil
	}
	decoded, err := base64.StdEncoding.DecodeString(trimmed)
	if err != nil {
		return nil, fmt.Errorf("decode firebase credentials: %w", err)
	}
	return decoded, nil
}

func (notifier *FCMNotifier) NotifyMilestone(ctx context.Context, userID uuid.UUID, streak int) error {
	token, platform, err := notifier.targets.PushTarget(ctx, userID)
	if err != nil {
		return fmt.Errorf("load push target: %w", err)
	}
	if token == "" {
		notifier.logger.Debug("milestone reached without push target",
			zap.String("user_id", userID.String()),
			zap.Int("streak", streak),
		)
		return nil
	}

	if _, err := notifier.sender.Send(ctx, MilestoneMessage(token, platform, streak)); err != nil {
		return fmt.Errorf("send milestone push: %w", err)
	}
	notifier.logger.Info("milestone push sent",
		zap.String("user_id", userID.String()),
		zap.Int("streak", streak),
		zap.String("platform", platform),
	)
	return nil
}

func MilestoneMessage(token string, platform string, streak int) *messaging.Message {
	title := fmt.Sprintf("%d-day streak!", streak)
	body := fmt.Sprintf("You have checked in %d days in a row. Keep glowing.", streak)

	message := &messaging.Message{
		Token: token,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: map[string]string{
			"type":   "streak_milestone",
			"streak": strconv.Itoa(streak),
		},
	}

	switch platform {
	case models.PushPlatformIOS:
		message.APNS = &messaging.APNSConfig{
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{Sound: "default"},
			},
		}
	default:
		message.Android = &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				Sound: "default",
			},
		}
	}
	return message
}
