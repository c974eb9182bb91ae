package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/angelmondragon/atacado-backend/pkg/db/models"
	"github.com/angelmondragon/atacado-backend/pkg/logger"
)

// Service writes domain events into the outbox table as part of the caller's
// transaction. The publisher relays them after commit.
type Service struct {
	repo     *Repository
	registry *DecoderRegistry
	logg     *logger.Logger
	now      func() time.Time
}

func NewService(repo *Repository, logg *logger.Logger) *Service {
	return &Service{
		repo:     repo,
		registry: NewDefaultRegistry(),
		logg:     logg,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Emit stores event inside tx. Events without a registered decoder are
// refused here, since the publisher could only dead-letter them.
func (s *Service) Emit(ctx context.Context, tx *gorm.DB, event DomainEvent) error {
	if tx == nil {
		return errors.New("transaction required")
	}
	if err := event.validate(); err != nil {
		return err
	}
	if event.Version == 0 {
		event.Version = 1
	}
	if !s.registry.Has(event.EventType, event.Version) {
		return fmt.Errorf("no decoder registered for %s@v%d", event.EventType, event.Version)
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = s.now()
	}

	envelope, err := newEnvelope(event)
	if err != nil {
		return err
	}
	payload, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("%s: encode envelope: %w", event.EventType, err)
	}
	if err := s.repo.Insert(tx, models.OutboxEvent{
		EventType:     event.EventType,
		AggregateType: event.AggregateType,
		AggregateID:   event.AggregateID,
		Payload:       payload,
	}); err != nil {
		return err
	}

	if s.logg != nil {
		s.logg.Debug(s.logg.WithFields(ctx, map[string]any{
			"event_id":       envelope.EventID,
			"event_type":     event.EventType,
			"aggregate_type": event.AggregateType,
			"aggregate_id":   event.AggregateID.String(),
		}), "outbox event queued")
	}
	return nil
}
