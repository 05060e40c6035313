package redis

import (
	"context"
	"fmt"
	"time"
)

// PendingStateRepo keeps the per-user "confirm purchase" state between
// the shop menu tap and the confirmation tap. It lives in redis rather
// than process memory so a bot restart does not strand users mid-flow;
// the TTL bounds abandoned confirmations.
type PendingStateRepo struct {
	client RedisClient
	ttl    time.Duration
}

func NewPendingStateRepo(client RedisClient, ttl time.Duration) *PendingStateRepo {
	return &PendingStateRepo{client: client, ttl: ttl}
}

func pendingKey(chatID int64) string {
	return fmt.Sprintf("pending_buy:%d", chatID)
}

// SetPending records which product the user is confirming.
func (s *PendingStateRepo) SetPending(ctx context.Context, chatID int64, productID string) error {
	return s.client.Set(ctx, pendingKey(chatID), productID, s.ttl)
}

// GetPending returns the product awaiting confirmation, "" when none.
func (s *PendingStateRepo) GetPending(ctx context.Context, chatID int64) (string, error) {
	v, err := s.client.Get(ctx, pendingKey(chatID))
	if err != nil {
		if IsNil(err) {
			return "", nil
		}
		return "", err
	}
	return v, nil
}

// ClearPending drops the state after a confirmation or cancel.
func (s *PendingStateRepo) ClearPending(ctx context.Context, chatID int64) error {
	return s.client.Del(ctx, pendingKey(chatID))
}
