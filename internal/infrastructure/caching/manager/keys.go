package manager

import (
	"context"
	"fmt"

	"github.com/upskillhq/upskill-go/internal/domain/entities/insights"
	"github.com/upskillhq/upskill-go/internal/domain/entities/learning"
	"github.com/upskillhq/upskill-go/internal/infrastructure/caching/interfaces"
	"github.com/upskillhq/upskill-go/pkg/config"
)

// Key and tag schemes for the named cache domains. Keys derive
// deterministically from the logical query and its parameters; tags exist
// only for invalidation, never for lookup.

func DashboardKey(clientID string, limit, offset int) string {
	return fmt.Sprintf("clients_dashboard:%s:%d:%d", clientID, limit, offset)
}

func DashboardTags(clientID string) []string {
	return []string{"clients", "client:" + clientID, "dashboards"}
}

func ProductPerformanceKey(productID string) string {
	return "product_performance:" + productID
}

func ProductPerformanceTags(productID string) []string {
	return []string{"products", "product:" + productID, "analytics"}
}

func ModuleContentKey(moduleID string) string {
	return "module_content:" + moduleID
}

func ModuleContentTags(moduleID string) []string {
	return []string{"modules", "module:" + moduleID}
}

func ClientConfigKey(clientID string) string {
	return "client_config:" + clientID
}

func ClientConfigTags(clientID string) []string {
	return []string{"clients", "client:" + clientID, "config"}
}

func ExpertSessionsKey(clientID string) string {
	return "expert_sessions:" + clientID
}

func ExpertSessionsTags(clientID string) []string {
	return []string{"expert_sessions", "client:" + clientID}
}

// Named convenience wrappers. Each fixes the key scheme, tag set and TTL
// for one expensive query domain; the producer is the real computation.

func (m *Manager) ClientDashboard(ctx context.Context, clientID string, limit, offset int, force bool, producer func(context.Context) (*insights.DashboardData, error)) (*insights.DashboardData, error) {
	return Fetch(ctx, m, DashboardKey(clientID, limit, offset), interfaces.CacheOptions{
		TTL:          config.DashboardTTL,
		Tags:         DashboardTags(clientID),
		ForceRefresh: force,
	}, producer)
}

func (m *Manager) ProductPerformance(ctx context.Context, productID string, force bool, producer func(context.Context) (*insights.ProductPerformance, error)) (*insights.ProductPerformance, error) {
	return Fetch(ctx, m, ProductPerformanceKey(productID), interfaces.CacheOptions{
		TTL:          config.ProductStatsTTL,
		Tags:         ProductPerformanceTags(productID),
		ForceRefresh: force,
	}, producer)
}

func (m *Manager) ModuleContent(ctx context.Context, moduleID string, force bool, producer func(context.Context) (*insights.ModuleContent, error)) (*insights.ModuleContent, error) {
	return Fetch(ctx, m, ModuleContentKey(moduleID), interfaces.CacheOptions{
		TTL:          config.ModuleContentTTL,
		Tags:         ModuleContentTags(moduleID),
		ForceRefresh: force,
	}, producer)
}

func (m *Manager) ClientConfig(ctx context.Context, clientID string, force bool, producer func(context.Context) (*learning.ClientConfig, error)) (*learning.ClientConfig, error) {
	return Fetch(ctx, m, ClientConfigKey(clientID), interfaces.CacheOptions{
		TTL:          config.ClientConfigTTL,
		Tags:         ClientConfigTags(clientID),
		ForceRefresh: force,
	}, producer)
}

func (m *Manager) ExpertSessions(ctx context.Context, clientID string, force bool, producer func(context.Context) (*insights.ExpertSessionList, error)) (*insights.ExpertSessionList, error) {
	return Fetch(ctx, m, ExpertSessionsKey(clientID), interfaces.CacheOptions{
		TTL:          config.ExpertSessionsTTL,
		Tags:         ExpertSessionsTags(clientID),
		ForceRefresh: force,
	}, producer)
}
