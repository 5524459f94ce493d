package services

import (
	"context"
	"fmt"
	"time"

	"github.com/upskillhq/upskill-go/internal/domain/entities/learning"
	"github.com/upskillhq/upskill-go/internal/domain/repositories"
	"github.com/upskillhq/upskill-go/internal/infrastructure/caching/interfaces"
	"github.com/upskillhq/upskill-go/internal/infrastructure/email"
	"github.com/upskillhq/upskill-go/internal/infrastructure/observability/logging"
	"github.com/upskillhq/upskill-go/internal/infrastructure/security"
	"github.com/upskillhq/upskill-go/pkg/config"
)

// CatalogService is the admin write path for clients, products, modules,
// students, enrollments and expert sessions. Every successful write
// invalidates the affected cache tags; activity recording and email are
// best-effort and never fail the write.
type CatalogService struct {
	clients     repositories.ClientRepository
	products    repositories.ProductRepository
	modules     repositories.ModuleRepository
	students    repositories.StudentRepository
	enrollments repositories.EnrollmentRepository
	sessions    repositories.ExpertSessionRepository
	activity    repositories.ActivityRepository
	invalidator interfaces.Invalidator
	email       email.Service
	logger      *logging.ChanneledLogger
}

func NewCatalogService(
	clients repositories.ClientRepository,
	products repositories.ProductRepository,
	modules repositories.ModuleRepository,
	students repositories.StudentRepository,
	enrollments repositories.EnrollmentRepository,
	sessions repositories.ExpertSessionRepository,
	activity repositories.ActivityRepository,
	invalidator interfaces.Invalidator,
	emailService email.Service,
	logger *logging.ChanneledLogger,
) *CatalogService {
	return &CatalogService{
		clients:     clients,
		products:    products,
		modules:     modules,
		students:    students,
		enrollments: enrollments,
		sessions:    sessions,
		activity:    activity,
		invalidator: invalidator,
		email:       emailService,
		logger:      logger,
	}
}

func (s *CatalogService) recordActivity(clientID, studentID, objectID, objectType, verb string) {
	if s.activity == nil {
		return
	}
	if err := s.activity.Record(clientID, studentID, objectID, objectType, verb); err != nil {
		s.logger.Analytics().Warn("Activity record failed", "objectId", objectID, "verb", verb)
	}
}

// --- clients ---

func (s *CatalogService) CreateClient(ctx context.Context, client *learning.Client) error {
	if client.ID == "" {
		client.ID = security.GenerateULID()
	}
	if client.Status == "" {
		client.Status = "active"
	}
	client.Created = time.Now().UTC()

	if err := s.clients.Store(client); err != nil {
		return err
	}
	s.recordActivity(client.ID, "", client.ID, "client", "created")
	s.invalidator.CascadeInvalidation(ctx, "client", client.ID, "create")
	return nil
}

func (s *CatalogService) UpdateClient(ctx context.Context, client *learning.Client) error {
	if err := s.clients.Update(client); err != nil {
		return err
	}
	s.recordActivity(client.ID, "", client.ID, "client", "updated")
	s.invalidator.CascadeInvalidation(ctx, "client", client.ID, "update")
	return nil
}

// UpdateClientConfig persists the config blob and runs the conditional
// invalidation so only a genuine config change clears the cached payload.
func (s *CatalogService) UpdateClientConfig(ctx context.Context, cfg *learning.ClientConfig) error {
	if err := s.clients.UpdateConfig(cfg); err != nil {
		return err
	}
	s.recordActivity(cfg.ClientID, "", cfg.ClientID, "client", "config_updated")
	s.invalidator.ConditionalInvalidation(ctx, "client", cfg.ClientID, map[string]any{"configChanged": true})
	return nil
}

func (s *CatalogService) DeleteClient(ctx context.Context, id string) error {
	if err := s.clients.Delete(id); err != nil {
		return err
	}
	s.invalidator.CascadeInvalidation(ctx, "client", id, "delete")
	return nil
}

// --- products ---

func (s *CatalogService) CreateProduct(ctx context.Context, product *learning.Product) error {
	if product.ID == "" {
		product.ID = security.GenerateULID()
	}
	if product.Status == "" {
		product.Status = "draft"
	}
	product.Created = time.Now().UTC()

	if err := s.products.Store(product); err != nil {
		return err
	}
	s.recordActivity(product.ClientID, "", product.ID, "product", "created")
	s.invalidator.CascadeInvalidation(ctx, "product", product.ID, "create")
	return nil
}

func (s *CatalogService) UpdateProduct(ctx context.Context, product *learning.Product) error {
	previous, err := s.products.FindByID(product.ID)
	if err != nil {
		return err
	}
	if previous == nil {
		return fmt.Errorf("product %s not found", product.ID)
	}

	if err := s.products.Update(product); err != nil {
		return err
	}
	s.recordActivity(product.ClientID, "", product.ID, "product", "updated")

	if previous.Status != product.Status {
		s.invalidator.ConditionalInvalidation(ctx, "product", product.ID, map[string]any{
			"published":        product.Status == "published",
			"publishedChanged": true,
		})
	} else {
		s.invalidator.CascadeInvalidation(ctx, "product", product.ID, "update")
	}
	return nil
}

// SetProductCover records a new cover path after image processing. The
// previous path is returned so the caller can remove stale renditions.
func (s *CatalogService) SetProductCover(ctx context.Context, productID string, coverPath *string) (*string, error) {
	product, err := s.products.FindByID(productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, fmt.Errorf("product %s not found", productID)
	}

	previous := product.CoverPath
	product.CoverPath = coverPath
	if err := s.products.Update(product); err != nil {
		return nil, err
	}
	s.recordActivity(product.ClientID, "", product.ID, "product", "cover_updated")
	s.invalidator.CascadeInvalidation(ctx, "product", product.ID, "update")
	return previous, nil
}

func (s *CatalogService) DeleteProduct(ctx context.Context, id string) error {
	product, err := s.products.FindByID(id)
	if err != nil {
		return err
	}
	if err := s.products.Delete(id); err != nil {
		return err
	}
	if product != nil {
		s.recordActivity(product.ClientID, "", id, "product", "deleted")
	}
	s.invalidator.CascadeInvalidation(ctx, "product", id, "delete")
	return nil
}

// --- modules ---

func (s *CatalogService) CreateModule(ctx context.Context, module *learning.Module) error {
	if module.ID == "" {
		module.ID = security.GenerateULID()
	}
	if module.Status == "" {
		module.Status = "draft"
	}
	module.Created = time.Now().UTC()

	if err := s.modules.Store(module); err != nil {
		return err
	}
	s.invalidator.CascadeInvalidation(ctx, "module", module.ID, "create")
	return nil
}

func (s *CatalogService) UpdateModule(ctx context.Context, module *learning.Module) error {
	if err := s.modules.Update(module); err != nil {
		return err
	}
	s.invalidator.ConditionalInvalidation(ctx, "module", module.ID, map[string]any{"contentChanged": true})
	return nil
}

func (s *CatalogService) DeleteModule(ctx context.Context, id string) error {
	// Cascade first: the product lookup needs the module row.
	s.invalidator.CascadeInvalidation(ctx, "module", id, "delete")
	return s.modules.Delete(id)
}

// ImportModules stores a batch of modules and invalidates their combined
// tag set with a single delete instead of one cascade per module.
func (s *CatalogService) ImportModules(ctx context.Context, modules []*learning.Module) (int, error) {
	ops := make([]interfaces.EntityOperation, 0, len(modules))
	stored := 0
	for _, module := range modules {
		if module.ID == "" {
			module.ID = security.GenerateULID()
		}
		if module.Status == "" {
			module.Status = "draft"
		}
		module.Created = time.Now().UTC()

		if err := s.modules.Store(module); err != nil {
			s.logger.System().Error("Module import failed, stopping batch", "id", module.ID, "error", err.Error())
			break
		}
		stored++
		ops = append(ops, interfaces.EntityOperation{EntityType: "module", EntityID: module.ID, Operation: "create"})
	}

	if len(ops) > 0 {
		s.invalidator.BulkInvalidation(ctx, ops)
	}
	if stored < len(modules) {
		return stored, fmt.Errorf("imported %d of %d modules", stored, len(modules))
	}
	return stored, nil
}

// --- students ---

func (s *CatalogService) CreateStudent(ctx context.Context, student *learning.Student, password string) error {
	if student.ID == "" {
		student.ID = security.GenerateULID()
	}
	if student.Status == "" {
		student.Status = "active"
	}
	hash, err := security.HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	student.PasswordHash = hash
	student.Created = time.Now().UTC()

	if err := s.students.Store(student); err != nil {
		return err
	}
	s.recordActivity(student.ClientID, student.ID, student.ID, "student", "created")
	s.invalidator.CascadeInvalidation(ctx, "student", student.ID, "create")
	return nil
}

// SetStudentStatus transitions a student between active and inactive. The
// conditional invalidation only fires when the status actually changes.
func (s *CatalogService) SetStudentStatus(ctx context.Context, studentID, status string) error {
	student, err := s.students.FindByID(studentID)
	if err != nil {
		return err
	}
	if student == nil {
		return fmt.Errorf("student %s not found", studentID)
	}
	if student.Status == status {
		return nil
	}

	student.Status = status
	if err := s.students.Update(student); err != nil {
		return err
	}
	s.recordActivity(student.ClientID, studentID, studentID, "student", "status_"+status)
	s.invalidator.ConditionalInvalidation(ctx, "student", studentID, map[string]any{"status": status})
	return nil
}

// --- enrollments ---

// Enroll creates an enrollment and notifies the student by email. The email
// is best-effort.
func (s *CatalogService) Enroll(ctx context.Context, studentID, moduleID string) (*learning.Enrollment, error) {
	student, err := s.students.FindByID(studentID)
	if err != nil {
		return nil, err
	}
	if student == nil {
		return nil, fmt.Errorf("student %s not found", studentID)
	}
	module, err := s.modules.FindByID(moduleID)
	if err != nil {
		return nil, err
	}
	if module == nil {
		return nil, fmt.Errorf("module %s not found", moduleID)
	}

	enrollment := &learning.Enrollment{
		ID:        security.GenerateULID(),
		StudentID: studentID,
		ModuleID:  moduleID,
		Created:   time.Now().UTC(),
	}
	if err := s.enrollments.Store(enrollment); err != nil {
		return nil, err
	}

	s.recordActivity(student.ClientID, studentID, moduleID, "module", "enrolled")
	s.invalidator.CascadeInvalidation(ctx, "student", studentID, "enroll")

	if s.email != nil {
		moduleURL := fmt.Sprintf("%s/modules/%s", config.PublicBaseURL, moduleID)
		if err := s.email.SendEnrollmentEmail(student.Email, student.FirstName, module.Title, moduleURL); err != nil {
			s.logger.Email().Warn("Enrollment email failed", "studentId", studentID, "error", err.Error())
		}
	}
	return enrollment, nil
}

func (s *CatalogService) UpdateEnrollmentProgress(ctx context.Context, enrollmentID, studentID string, progress float64) error {
	if err := s.enrollments.UpdateProgress(enrollmentID, progress); err != nil {
		return err
	}
	s.invalidator.CascadeInvalidation(ctx, "student", studentID, "progress")
	return nil
}

// --- expert sessions ---

func (s *CatalogService) CreateExpertSession(ctx context.Context, session *learning.ExpertSession) error {
	if session.ID == "" {
		session.ID = security.GenerateULID()
	}
	if session.Status == "" {
		session.Status = "scheduled"
	}
	session.Created = time.Now().UTC()

	if err := s.sessions.Store(session); err != nil {
		return err
	}
	s.recordActivity(session.ClientID, "", session.ID, "expert_session", "created")
	s.invalidator.CascadeInvalidation(ctx, "expert_session", session.ID, "create")
	return nil
}

func (s *CatalogService) UpdateExpertSession(ctx context.Context, session *learning.ExpertSession) error {
	previous, err := s.sessions.FindByID(session.ID)
	if err != nil {
		return err
	}
	if previous == nil {
		return fmt.Errorf("expert session %s not found", session.ID)
	}

	if err := s.sessions.Update(session); err != nil {
		return err
	}
	s.recordActivity(session.ClientID, "", session.ID, "expert_session", "updated")

	if !previous.ScheduledAt.Equal(session.ScheduledAt) {
		s.invalidator.ConditionalInvalidation(ctx, "expert_session", session.ID, map[string]any{"rescheduled": true})
	} else {
		s.invalidator.CascadeInvalidation(ctx, "expert_session", session.ID, "update")
	}
	return nil
}

func (s *CatalogService) DeleteExpertSession(ctx context.Context, id string) error {
	// Cascade first: the client lookup needs the session row.
	s.invalidator.CascadeInvalidation(ctx, "expert_session", id, "delete")
	return s.sessions.Delete(id)
}
