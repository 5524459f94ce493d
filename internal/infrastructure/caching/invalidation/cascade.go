package invalidation

import (
	"context"
	"time"

	"github.com/upskillhq/upskill-go/internal/domain/repositories"
	"github.com/upskillhq/upskill-go/internal/infrastructure/caching/interfaces"
	"github.com/upskillhq/upskill-go/internal/infrastructure/caching/store"
	"github.com/upskillhq/upskill-go/internal/infrastructure/observability/logging"
)

var _ interfaces.Invalidator = (*Engine)(nil)

// Publisher receives invalidation events for the ops feed. Optional.
type Publisher interface {
	PublishInvalidation(entityType, entityID, operation string, removed int)
}

// Engine is the cascading invalidation registry. Failures never propagate:
// cached data is TTL-bounded, so a missed invalidation is staleness, not
// corruption.
type Engine struct {
	store     store.Store
	rules     map[string]Rule
	logger    *logging.ChanneledLogger
	publisher Publisher
}

// NewEngine builds the engine with one rule per known entity type.
func NewEngine(s store.Store, relations repositories.RelationRepository, logger *logging.ChanneledLogger, publisher Publisher) *Engine {
	rules := []Rule{
		&StudentRule{Relations: relations},
		&ModuleRule{Relations: relations},
		&ProductRule{Relations: relations},
		&ExpertSessionRule{Relations: relations},
		&ClientRule{Relations: relations},
	}

	byType := make(map[string]Rule, len(rules))
	for _, rule := range rules {
		byType[rule.EntityType()] = rule
	}

	return &Engine{
		store:     s,
		rules:     byType,
		logger:    logger,
		publisher: publisher,
	}
}

// CascadeInvalidation removes every cache entry depending on the changed
// entity: its direct tags first, then one cascade hop to related entities.
// A cascade lookup failure never aborts the direct invalidation. Unknown
// entity types are tolerated with a warning.
func (e *Engine) CascadeInvalidation(ctx context.Context, entityType, entityID, operation string) int {
	start := time.Now()

	rule, ok := e.rules[entityType]
	if !ok {
		if e.logger != nil {
			e.logger.Invalidation().Warn("Unknown entity type, skipping invalidation",
				"entityType", entityType, "entityId", entityID, "operation", operation)
		}
		return 0
	}

	direct := append(rule.DirectTags(entityID), entityType+":"+entityID)
	removed, err := e.store.DeleteByTags(ctx, direct)
	if err != nil {
		if e.logger != nil {
			e.logger.Invalidation().Error("Direct invalidation failed",
				"entityType", entityType, "entityId", entityID, "error", err.Error())
		}
		removed = 0
	}

	cascadeTags, err := rule.CascadeTags(entityID)
	if err != nil && e.logger != nil {
		e.logger.Invalidation().Warn("Cascade lookup failed, direct invalidation stands",
			"entityType", entityType, "entityId", entityID, "error", err.Error())
	}
	if len(cascadeTags) > 0 {
		more, err := e.store.DeleteByTags(ctx, cascadeTags)
		if err != nil {
			if e.logger != nil {
				e.logger.Invalidation().Error("Cascade invalidation failed",
					"entityType", entityType, "entityId", entityID, "error", err.Error())
			}
		} else {
			removed += more
		}
	}

	if e.logger != nil {
		e.logger.Invalidation().Info("Cascade invalidation complete",
			"entityType", entityType, "entityId", entityID, "operation", operation,
			"removed", removed, "duration", time.Since(start))
	}
	if e.publisher != nil {
		e.publisher.PublishInvalidation(entityType, entityID, operation, removed)
	}
	return removed
}

// BulkInvalidation de-duplicates the union of direct and cascade tags across
// all operations and issues a single delete. Batching optimization for
// imports and multi-entity admin writes.
func (e *Engine) BulkInvalidation(ctx context.Context, operations []interfaces.EntityOperation) int {
	if len(operations) == 0 {
		return 0
	}
	start := time.Now()

	seen := make(map[string]struct{})
	var union []string
	add := func(tags []string) {
		for _, tag := range tags {
			if _, ok := seen[tag]; ok {
				continue
			}
			seen[tag] = struct{}{}
			union = append(union, tag)
		}
	}

	for _, op := range operations {
		rule, ok := e.rules[op.EntityType]
		if !ok {
			if e.logger != nil {
				e.logger.Invalidation().Warn("Unknown entity type in bulk invalidation",
					"entityType", op.EntityType, "entityId", op.EntityID)
			}
			continue
		}

		add(rule.DirectTags(op.EntityID))
		add([]string{op.EntityType + ":" + op.EntityID})

		cascadeTags, err := rule.CascadeTags(op.EntityID)
		if err != nil {
			if e.logger != nil {
				e.logger.Invalidation().Warn("Cascade lookup failed in bulk invalidation",
					"entityType", op.EntityType, "entityId", op.EntityID, "error", err.Error())
			}
			continue
		}
		add(cascadeTags)
	}

	if len(union) == 0 {
		return 0
	}

	removed, err := e.store.DeleteByTags(ctx, union)
	if err != nil {
		if e.logger != nil {
			e.logger.Invalidation().Error("Bulk invalidation failed",
				"operations", len(operations), "error", err.Error())
		}
		return 0
	}

	if e.logger != nil {
		e.logger.Invalidation().Info("Bulk invalidation complete",
			"operations", len(operations), "tags", len(union),
			"removed", removed, "duration", time.Since(start))
	}
	if e.publisher != nil {
		e.publisher.PublishInvalidation("bulk", "", "bulk", removed)
	}
	return removed
}

// ConditionalInvalidation evaluates the fixed business predicate for the
// entity type before cascading. Predicates are hard-coded, not pluggable.
func (e *Engine) ConditionalInvalidation(ctx context.Context, entityType, entityID string, conditions map[string]any) int {
	if !e.shouldInvalidate(entityType, conditions) {
		if e.logger != nil {
			e.logger.Invalidation().Debug("Conditions not met, skipping invalidation",
				"entityType", entityType, "entityId", entityID)
		}
		return 0
	}
	return e.CascadeInvalidation(ctx, entityType, entityID, "conditional")
}

func (e *Engine) shouldInvalidate(entityType string, conditions map[string]any) bool {
	switch entityType {
	case "student":
		// Dashboards count active students, so only a status transition
		// (activation or deactivation) is worth an invalidation storm.
		if status, ok := conditions["status"].(string); ok {
			return status == "inactive" || status == "active"
		}
		return false
	case "product":
		// Unpublished products are invisible to dashboards.
		if published, ok := conditions["published"].(bool); ok {
			return published
		}
		if _, ok := conditions["publishedChanged"].(bool); ok {
			return conditions["publishedChanged"].(bool)
		}
		return false
	case "module":
		if changed, ok := conditions["contentChanged"].(bool); ok {
			return changed
		}
		return false
	case "client":
		if changed, ok := conditions["configChanged"].(bool); ok {
			return changed
		}
		return false
	case "expert_session":
		if rescheduled, ok := conditions["rescheduled"].(bool); ok {
			return rescheduled
		}
		return false
	default:
		return false
	}
}
