// Package insights defines the aggregate payloads produced by the expensive
// dashboard and analytics queries. These are the values that live in the cache.
package insights

import (
	"time"

	"github.com/upskillhq/upskill-go/internal/domain/entities/learning"
)

// DashboardData is the per-client dashboard aggregate.
type DashboardData struct {
	ClientID          string           `json:"clientId"`
	TotalStudents     int              `json:"totalStudents"`
	ActiveStudents    int              `json:"activeStudents"`
	TotalEnrollments  int              `json:"totalEnrollments"`
	CompletionRate    float64          `json:"completionRate"`
	AvgInterviewScore float64          `json:"avgInterviewScore"`
	Products          []ProductSummary `json:"products"`
	RecentActivity    []ActivityItem   `json:"recentActivity"`
	ComputedAt        time.Time        `json:"computedAt"`
}

// ProductSummary is the dashboard's per-product row.
type ProductSummary struct {
	ProductID      string  `json:"productId"`
	Title          string  `json:"title"`
	ModuleCount    int     `json:"moduleCount"`
	Enrollments    int     `json:"enrollments"`
	CompletionRate float64 `json:"completionRate"`
}

// ActivityItem is a recent domain event shown on the dashboard.
type ActivityItem struct {
	Kind       string    `json:"kind"`
	EntityID   string    `json:"entityId"`
	Label      string    `json:"label"`
	OccurredAt time.Time `json:"occurredAt"`
}

// ProductPerformance is the per-product analytics aggregate.
type ProductPerformance struct {
	ProductID       string              `json:"productId"`
	Title           string              `json:"title"`
	Enrollments     int                 `json:"enrollments"`
	Completions     int                 `json:"completions"`
	CompletionRate  float64             `json:"completionRate"`
	AvgProgress     float64             `json:"avgProgress"`
	ModuleBreakdown []ModulePerformance `json:"moduleBreakdown"`
	ComputedAt      time.Time           `json:"computedAt"`
}

// ModulePerformance is the per-module row within a product report.
type ModulePerformance struct {
	ModuleID       string  `json:"moduleId"`
	Title          string  `json:"title"`
	Enrollments    int     `json:"enrollments"`
	AvgProgress    float64 `json:"avgProgress"`
	CompletionRate float64 `json:"completionRate"`
}

// ModuleContent is the full content payload for one module.
type ModuleContent struct {
	ModuleID string             `json:"moduleId"`
	Module   *learning.Module   `json:"module"`
	Lessons  []*learning.Lesson `json:"lessons"`
}

// ExpertSessionList is the cached listing of upcoming sessions for a client.
type ExpertSessionList struct {
	ClientID string                    `json:"clientId"`
	Sessions []*learning.ExpertSession `json:"sessions"`
}
