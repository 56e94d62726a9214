package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/restaurantbooking/backend/internal/models"
	"go.uber.org/zap"
)

const reminderKeyPrefix = "reminder:"

// UpcomingLister lists reservations dated within a time window
type UpcomingLister interface {
	ListUpcoming(ctx context.Context, from, to time.Time) ([]models.ReservationNotice, error)
}

// ReminderEnqueuer enqueues reminder tasks
type ReminderEnqueuer interface {
	EnqueueReminder(ctx context.Context, reservationID int) error
}

// Claimer records which reminders were already sent.
// Claim reports false when key was claimed before.
type Claimer interface {
	Claim(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
}

// claimStore is the subset of the redis client used by RedisClaimer
type claimStore interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// RedisClaimer implements Claimer with SETNX keys
type RedisClaimer struct {
	client claimStore
}

// NewRedisClaimer creates a claimer backed by Redis
func NewRedisClaimer(client *redis.Client) *RedisClaimer {
	return &RedisClaimer{client: client}
}

// Claim sets key if it does not exist yet
func (c *RedisClaimer) Claim(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := c.client.SetNX(ctx, key, 1, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to claim %s: %w", key, err)
	}
	return ok, nil
}

// Release deletes key so it can be claimed again
func (c *RedisClaimer) Release(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to release %s: %w", key, err)
	}
	return nil
}

// ReminderSweeper enqueues one reminder per reservation that falls within the lead window
type ReminderSweeper struct {
	reservations UpcomingLister
	enqueuer     ReminderEnqueuer
	claims       Claimer
	lead         time.Duration
	logger       *zap.Logger
	now          func() time.Time
}

// NewReminderSweeper creates a new reminder sweeper
func NewReminderSweeper(reservations UpcomingLister, enqueuer ReminderEnqueuer, claims Claimer, lead time.Duration, logger *zap.Logger) *ReminderSweeper {
	return &ReminderSweeper{
		reservations: reservations,
		enqueuer:     enqueuer,
		claims:       claims,
		lead:         lead,
		logger:       logger,
		now:          time.Now,
	}
}

// Sweep enqueues reminders for reservations dated within the next lead duration
// and returns how many were enqueued. Failures on single reservations are logged and skipped.
func (s *ReminderSweeper) Sweep(ctx context.Context) (int, error) {
	now := s.now().UTC()
	upcoming, err := s.reservations.ListUpcoming(ctx, now, now.Add(s.lead))
	if err != nil {
		return 0, fmt.Errorf("failed to list upcoming reservations: %w", err)
	}

	enqueued := 0
	for _, notice := range upcoming {
		// The date is part of the key so a rescheduled reservation is reminded again
		key := fmt.Sprintf("%s%d:%d", reminderKeyPrefix, notice.ReservationID, notice.ResvDate.Unix())
		ttl := notice.ResvDate.Sub(now) + time.Hour

		claimed, err := s.claims.Claim(ctx, key, ttl)
		if err != nil {
			s.logger.Error("failed to claim reminder", zap.Int("reservation_id", notice.ReservationID), zap.Error(err))
			continue
		}
		if !claimed {
			continue
		}

		if err := s.enqueuer.EnqueueReminder(ctx, notice.ReservationID); err != nil {
			s.logger.Error("failed to enqueue reminder", zap.Int("reservation_id", notice.ReservationID), zap.Error(err))
			if err := s.claims.Release(ctx, key); err != nil {
				s.logger.Warn("failed to release reminder claim", zap.String("key", key), zap.Error(err))
			}
			continue
		}
		enqueued++
	}

	if enqueued > 0 {
		s.logger.Info("enqueued reservation reminders", zap.Int("count", enqueued))
	}
	return enqueued, nil
}
