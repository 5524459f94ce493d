// Package invalidation propagates domain writes into tag-indexed cache
// deletions. Each entity type has one typed rule describing the tags a
// change touches directly and the single cascade hop to related entities.
package invalidation

import (
	"fmt"

	"github.com/upskillhq/upskill-go/internal/domain/repositories"
)

// Rule describes the invalidation behavior for one entity type. DirectTags
// never performs I/O; CascadeTags may query the store for related entities
// and is always exactly one hop.
type Rule interface {
	EntityType() string
	DirectTags(entityID string) []string
	CascadeTags(entityID string) ([]string, error)
}

// Interface assertions keep the rule set exhaustively checked at compile time.
var (
	_ Rule = (*StudentRule)(nil)
	_ Rule = (*ModuleRule)(nil)
	_ Rule = (*ProductRule)(nil)
	_ Rule = (*ExpertSessionRule)(nil)
	_ Rule = (*ClientRule)(nil)
)

// StudentRule invalidates the dashboards a student's activity feeds and,
// through the cascade, the modules the student is enrolled in.
type StudentRule struct {
	Relations repositories.RelationRepository
}

func (r *StudentRule) EntityType() string { return "student" }

func (r *StudentRule) DirectTags(entityID string) []string {
	return []string{"students", "dashboards"}
}

func (r *StudentRule) CascadeTags(entityID string) ([]string, error) {
	moduleIDs, err := r.Relations.ModuleIDsForStudent(entityID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve modules for student %s: %w", entityID, err)
	}
	tags := make([]string, 0, len(moduleIDs))
	for _, id := range moduleIDs {
		tags = append(tags, "module:"+id)
	}
	return tags, nil
}

// ModuleRule invalidates the module's own content and cascades upward to
// the product whose aggregates include it.
type ModuleRule struct {
	Relations repositories.RelationRepository
}

func (r *ModuleRule) EntityType() string { return "module" }

func (r *ModuleRule) DirectTags(entityID string) []string {
	return []string{"modules"}
}

func (r *ModuleRule) CascadeTags(entityID string) ([]string, error) {
	productID, err := r.Relations.ProductIDForModule(entityID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve product for module %s: %w", entityID, err)
	}
	if productID == "" {
		return nil, nil
	}
	return []string{"product:" + productID, "products", "dashboards"}, nil
}

// ProductRule invalidates product analytics and cascades downward to every
// module the product contains.
type ProductRule struct {
	Relations repositories.RelationRepository
}

func (r *ProductRule) EntityType() string { return "product" }

func (r *ProductRule) DirectTags(entityID string) []string {
	return []string{"products", "analytics", "dashboards"}
}

func (r *ProductRule) CascadeTags(entityID string) ([]string, error) {
	moduleIDs, err := r.Relations.ModuleIDsForProduct(entityID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve modules for product %s: %w", entityID, err)
	}
	tags := make([]string, 0, len(moduleIDs))
	for _, id := range moduleIDs {
		tags = append(tags, "module:"+id)
	}
	return tags, nil
}

// ExpertSessionRule invalidates session listings and cascades to the owning
// client's tag so its listing cache refreshes.
type ExpertSessionRule struct {
	Relations repositories.RelationRepository
}

func (r *ExpertSessionRule) EntityType() string { return "expert_session" }

func (r *ExpertSessionRule) DirectTags(entityID string) []string {
	return []string{"expert_sessions"}
}

func (r *ExpertSessionRule) CascadeTags(entityID string) ([]string, error) {
	clientID, err := r.Relations.ClientIDForExpertSession(entityID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve client for expert session %s: %w", entityID, err)
	}
	if clientID == "" {
		return nil, nil
	}
	return []string{"client:" + clientID}, nil
}

// ClientRule invalidates everything scoped to the client: its dashboards
// and config directly, and its products with their modules through the
// cascade. The product→module expansion is coded here rather than chained
// through the product rule, keeping cascade depth at one explicit hop.
type ClientRule struct {
	Relations repositories.RelationRepository
}

func (r *ClientRule) EntityType() string { return "client" }

func (r *ClientRule) DirectTags(entityID string) []string {
	return []string{"clients", "dashboards", "config", "expert_sessions"}
}

func (r *ClientRule) CascadeTags(entityID string) ([]string, error) {
	productIDs, err := r.Relations.ProductIDsForClient(entityID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve products for client %s: %w", entityID, err)
	}

	var tags []string
	for _, productID := range productIDs {
		tags = append(tags, "product:"+productID)
		moduleIDs, err := r.Relations.ModuleIDsForProduct(productID)
		if err != nil {
			return tags, fmt.Errorf("failed to resolve modules for product %s: %w", productID, err)
		}
		for _, moduleID := range moduleIDs {
			tags = append(tags, "module:"+moduleID)
		}
	}
	return tags, nil
}
