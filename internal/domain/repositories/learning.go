// Package repositories defines the repository interfaces for learning-domain
// entities. These abstract the persistence details so the application core
// stays decoupled from the database.
package repositories

import (
	"github.com/upskillhq/upskill-go/internal/domain/entities/insights"
	"github.com/upskillhq/upskill-go/internal/domain/entities/learning"
)

type ClientRepository interface {
	FindByID(id string) (*learning.Client, error)
	FindAll() ([]*learning.Client, error)
	FindConfig(id string) (*learning.ClientConfig, error)
	Store(client *learning.Client) error
	Update(client *learning.Client) error
	UpdateConfig(config *learning.ClientConfig) error
	Delete(id string) error
}

type ProductRepository interface {
	FindByID(id string) (*learning.Product, error)
	FindByClientID(clientID string) ([]*learning.Product, error)
	Store(product *learning.Product) error
	Update(product *learning.Product) error
	Delete(id string) error
}

type ModuleRepository interface {
	FindByID(id string) (*learning.Module, error)
	FindByProductID(productID string) ([]*learning.Module, error)
	FindLessons(moduleID string) ([]*learning.Lesson, error)
	Store(module *learning.Module) error
	Update(module *learning.Module) error
	Delete(id string) error
}

type StudentRepository interface {
	FindByID(id string) (*learning.Student, error)
	FindByClientID(clientID string) ([]*learning.Student, error)
	Store(student *learning.Student) error
	Update(student *learning.Student) error
	Delete(id string) error
}

type EnrollmentRepository interface {
	FindByStudentID(studentID string) ([]*learning.Enrollment, error)
	FindByModuleID(moduleID string) ([]*learning.Enrollment, error)
	Store(enrollment *learning.Enrollment) error
	UpdateProgress(id string, progress float64) error
	Delete(id string) error
}

type ExpertSessionRepository interface {
	FindByID(id string) (*learning.ExpertSession, error)
	FindByClientID(clientID string) ([]*learning.ExpertSession, error)
	Store(session *learning.ExpertSession) error
	Update(session *learning.ExpertSession) error
	Delete(id string) error
}

type InterviewRepository interface {
	FindByID(id string) (*learning.Interview, error)
	FindByStudentID(studentID string) ([]*learning.Interview, error)
	Store(interview *learning.Interview) error
	Update(interview *learning.Interview) error
}

// ActivityRepository records domain events consumed by the dashboard's
// recent-activity feed. StudentID may be empty for admin-originated events.
type ActivityRepository interface {
	Record(clientID, studentID, objectID, objectType, verb string) error
}

// RelationRepository exposes the entity relationships the invalidation
// cascade walks. Each method is one explicit hop.
type RelationRepository interface {
	ModuleIDsForProduct(productID string) ([]string, error)
	ProductIDsForClient(clientID string) ([]string, error)
	ModuleIDsForStudent(studentID string) ([]string, error)
	ProductIDForModule(moduleID string) (string, error)
	ClientIDForExpertSession(sessionID string) (string, error)
}

// InsightsRepository runs the expensive aggregate queries that feed the
// dashboard and analytics endpoints. These are the cache producers.
type InsightsRepository interface {
	ComputeDashboard(clientID string, limit, offset int) (*insights.DashboardData, error)
	ComputeProductPerformance(productID string) (*insights.ProductPerformance, error)
}
