package notification

import (
	"context"
	"encoding/json"
	"fmt"

	"fixline/models"
	"fixline/utils"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// SessionBroker is the slice of the Redis client the session channels use.
// *redis.Client satisfies it.
type SessionBroker interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
	Subscribe(ctx context.Context, channels ...string) *redis.PubSub
}

// DefaultNotificationService publishes session events over per-user Redis
// channels. Joining "your" channel is keyed by user id alone, so reconnecting
// clients resubscribe without any dispatch-side bookkeeping.
type DefaultNotificationService struct {
	Rdb  SessionBroker
	Push *PushService
}

// SessionChannel returns the Redis channel name for a user's live sessions.
func SessionChannel(userID string) string {
	return "session:" + userID
}

// NotifyTechnician publishes the event to the technician's session channel and
// fires a best-effort FCM wake-up push.
func (s *DefaultNotificationService) NotifyTechnician(ctx context.Context, technicianID string, event models.SessionEvent) error {
	if err := s.publish(ctx, technicianID, event); err != nil {
		return err
	}
	if s.Push != nil {
		s.Push.WakeTechnician(ctx, technicianID, event)
	}
	return nil
}

// NotifyCustomer publishes the event to the customer's session channel and
// fires a best-effort FCM push.
func (s *DefaultNotificationService) NotifyCustomer(ctx context.Context, userID string, event models.SessionEvent) error {
	if err := s.publish(ctx, userID, event); err != nil {
		return err
	}
	if s.Push != nil {
		s.Push.WakeCustomer(ctx, userID, event)
	}
	return nil
}

func (s *DefaultNotificationService) publish(ctx context.Context, userID string, event models.SessionEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal session event: %w", err)
	}

	receivers, err := s.Rdb.Publish(ctx, SessionChannel(userID), payload).Result()
	if err != nil {
		return fmt.Errorf("failed to publish session event for %s: %w", userID, err)
	}
	if receivers == 0 {
		// At-most-once: no live session, the event is dropped here and the
		// response window covers recovery.
		utils.GetLogger().Debug("session event dropped, no live session",
			zap.String("userID", userID), zap.String("event", event.Type))
	}
	return nil
}

// Subscribe opens the caller's session channel. The returned PubSub must be
// closed by the caller; its Channel() feeds the SSE stream handler.
func (s *DefaultNotificationService) Subscribe(ctx context.Context, userID string) *redis.PubSub {
	return s.Rdb.Subscribe(ctx, SessionChannel(userID))
}
