package services

import (
	"context"
	"time"

	"translation-market/internal/events"
	"translation-market/internal/models"
	"translation-market/internal/repository"

	"github.com/google/uuid"
)

// engine is the shared plumbing every workflow service embeds: the entity
// store, the permission evaluator and the notification gateway. Events are
// appended to the durable log inside the transaction and pushed to the
// gateway only after commit, so subscribers never observe a rolled-back
// transition.
type engine struct {
	repo    *repository.Repository
	perms   *PermissionEvaluator
	gateway *events.Gateway
}

// record appends a domain event to the log and stages it for post-commit
// publication.
func (e *engine) record(
	ctx context.Context,
	tx *repository.Repository,
	pending *[]*models.DomainEvent,
	entityType models.EntityType,
	entityID uuid.UUID,
	fromStatus, toStatus string,
	actorID uint,
	requestID uuid.UUID,
) error {
	event := &models.DomainEvent{
		EntityType: entityType,
		EntityID:   entityID,
		FromStatus: fromStatus,
		ToStatus:   toStatus,
		ActorID:    actorID,
		RequestID:  requestID,
		CreatedAt:  time.Now(),
	}
	if err := tx.AppendEvent(ctx, event); err != nil {
		return storeErr(err)
	}
	*pending = append(*pending, event)
	return nil
}

// publish pushes committed events to the gateway. Delivery is async; the
// transition is already done.
func (e *engine) publish(pending []*models.DomainEvent) {
	if e.gateway == nil {
		return
	}
	for _, event := range pending {
		e.gateway.Publish(event)
	}
}
