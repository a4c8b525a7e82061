package usecase

import (
	"fmt"
	"log/slog"
	"strings"

	domainErrors "github.com/polkiloo/foodrush/internal/domain/errors"
	"github.com/polkiloo/foodrush/internal/domain/model"
	"github.com/polkiloo/foodrush/internal/realtime"
)

// NotificationUseCase lets operators push arbitrary events.
type NotificationUseCase struct {
	publisher Publisher
	logger    *slog.Logger
}

// NewNotificationUseCase constructs NotificationUseCase.
func NewNotificationUseCase(publisher Publisher, logger *slog.Logger) *NotificationUseCase {
	return &NotificationUseCase{publisher: publisher, logger: logger}
}

// Broadcast sends event to every connected session.
func (u *NotificationUseCase) Broadcast(event string, payload any) (bool, error) {
	if strings.TrimSpace(event) == "" {
		return false, fmt.Errorf("%w: event required", domainErrors.ErrInvalidEvent)
	}
	delivered, err := u.publisher.Publish(realtime.Broadcast, event, payload)
	if err != nil {
		return false, err
	}
	u.logger.Info("broadcast sent", slog.String("event", event), slog.Bool("delivered", delivered))
	return delivered, nil
}

// Send delivers event to the room written as kind:id.
func (u *NotificationUseCase) Send(room, event string, payload any) (bool, error) {
	key, ok := model.ParseRoomKey(room)
	if !ok {
		return false, fmt.Errorf("%w: %q", domainErrors.ErrInvalidRoom, room)
	}
	if strings.TrimSpace(event) == "" {
		return false, fmt.Errorf("%w: event required", domainErrors.ErrInvalidEvent)
	}
	return u.publisher.Publish(realtime.ToKey(key), event, payload)
}
