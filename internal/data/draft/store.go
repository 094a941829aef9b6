package draft

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"tour-booking/internal/flow"
)

// ErrNotFound is returned for missing or expired drafts. Expiry equals
// abandonment: an expired draft leaves no persisted trace.
var ErrNotFound = errors.New("draft: not found or expired")

// Store keeps booking-flow snapshots in Redis. Each draft lives under its own
// key with a sliding TTL; a separate short-lived marker key makes Submit
// idempotent across handler invocations.
type Store struct {
	client *redis.Client
	ttl    time.Duration
	log    *zap.Logger
}

func NewStore(client *redis.Client, ttl time.Duration, log *zap.Logger) *Store {
	return &Store{
		client: client,
		ttl:    ttl,
		log:    log.With(zap.String("store", "draft")),
	}
}

func draftKey(id uuid.UUID) string {
	return "draft:" + id.String()
}

func submitKey(id uuid.UUID) string {
	return "draft:" + id.String() + ":submit"
}

func (s *Store) Save(ctx context.Context, snap flow.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal draft %s: %w", snap.ID.String(), err)
	}

	if err := s.client.Set(ctx, draftKey(snap.ID), data, s.ttl).Err(); err != nil {
		s.log.Error("Failed to save draft",
			zap.Error(err),
			zap.String("draft_id", snap.ID.String()),
		)
		return fmt.Errorf("save draft %s: %w", snap.ID.String(), err)
	}

	return nil
}

func (s *Store) Get(ctx context.Context, id uuid.UUID) (*flow.Snapshot, error) {
	data, err := s.client.Get(ctx, draftKey(id)).Result()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		s.log.Error("Failed to get draft",
			zap.Error(err),
			zap.String("draft_id", id.String()),
		)
		return nil, fmt.Errorf("get draft %s: %w", id.String(), err)
	}

	var snap flow.Snapshot
	if err := json.Unmarshal([]byte(data), &snap); err != nil {
		return nil, fmt.Errorf("parse draft %s: %w", id.String(), err)
	}

	return &snap, nil
}

func (s *Store) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.client.Del(ctx, draftKey(id), submitKey(id)).Err(); err != nil {
		s.log.Error("Failed to delete draft",
			zap.Error(err),
			zap.String("draft_id", id.String()),
		)
		return fmt.Errorf("delete draft %s: %w", id.String(), err)
	}
	return nil
}

// TryMarkSubmitting sets the submit marker if it is not already set. A false
// result means another submit for this draft is still in flight.
func (s *Store) TryMarkSubmitting(ctx context.Context, id uuid.UUID, ttl time.Duration) (bool, error) {
	ok, err := s.client.SetNX(ctx, submitKey(id), "1", ttl).Result()
	if err != nil {
		s.log.Error("Failed to mark draft submitting",
			zap.Error(err),
			zap.String("draft_id", id.String()),
		)
		return false, fmt.Errorf("mark draft %s submitting: %w", id.String(), err)
	}
	return ok, nil
}

func (s *Store) ClearSubmitting(ctx context.Context, id uuid.UUID) error {
	if err := s.client.Del(ctx, submitKey(id)).Err(); err != nil {
		return fmt.Errorf("clear draft %s submit marker: %w", id.String(), err)
	}
	return nil
}
