package learning

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/upskillhq/upskill-go/internal/domain/entities/learning"
	"github.com/upskillhq/upskill-go/internal/infrastructure/observability/logging"
	"github.com/upskillhq/upskill-go/internal/infrastructure/persistence/database"
)

type EnrollmentRepository struct {
	db     *sql.DB
	logger *logging.ChanneledLogger
}

func NewEnrollmentRepository(db *sql.DB, logger *logging.ChanneledLogger) *EnrollmentRepository {
	return &EnrollmentRepository{db: db, logger: logger}
}

func (r *EnrollmentRepository) FindByStudentID(studentID string) ([]*learning.Enrollment, error) {
	return r.findBy(`student_id`, studentID)
}

func (r *EnrollmentRepository) FindByModuleID(moduleID string) ([]*learning.Enrollment, error) {
	return r.findBy(`module_id`, moduleID)
}

func (r *EnrollmentRepository) findBy(column, value string) ([]*learning.Enrollment, error) {
	query := `SELECT id, student_id, module_id, progress, completed_at, created FROM enrollments WHERE ` + column + ` = ? ORDER BY created`

	start := time.Now()
	rows, err := r.db.Query(query, value)
	if err != nil {
		r.logger.Database().Error("Failed to query enrollments", "error", err.Error(), column, value)
		return nil, fmt.Errorf("failed to query enrollments: %w", err)
	}
	defer rows.Close()

	var enrollments []*learning.Enrollment
	for rows.Next() {
		var e learning.Enrollment
		var completedAt sql.NullTime

		if err := rows.Scan(&e.ID, &e.StudentID, &e.ModuleID, &e.Progress, &completedAt, &e.Created); err != nil {
			return nil, fmt.Errorf("failed to scan enrollment: %w", err)
		}
		if completedAt.Valid {
			e.CompletedAt = &completedAt.Time
		}
		enrollments = append(enrollments, &e)
	}

	database.CheckAndLogSlowQuery(r.logger, query, time.Since(start))
	return enrollments, rows.Err()
}

func (r *EnrollmentRepository) Store(enrollment *learning.Enrollment) error {
	query := `INSERT INTO enrollments (id, student_id, module_id, progress, created) VALUES (?, ?, ?, ?, ?)`

	start := time.Now()
	r.logger.Database().Debug("Executing enrollment insert", "id", enrollment.ID)

	_, err := r.db.Exec(query, enrollment.ID, enrollment.StudentID, enrollment.ModuleID, enrollment.Progress, enrollment.Created)
	if err != nil {
		r.logger.Database().Error("Enrollment insert failed", "error", err.Error(), "id", enrollment.ID)
		return fmt.Errorf("failed to insert enrollment: %w", err)
	}

	database.CheckAndLogSlowQuery(r.logger, query, time.Since(start))
	return nil
}

// UpdateProgress sets the progress fraction and stamps completed_at the
// first time progress reaches 100%.
func (r *EnrollmentRepository) UpdateProgress(id string, progress float64) error {
	query := `UPDATE enrollments SET progress = ?, completed_at = CASE WHEN ? >= 100 AND completed_at IS NULL THEN CURRENT_TIMESTAMP ELSE completed_at END WHERE id = ?`

	start := time.Now()
	r.logger.Database().Debug("Executing enrollment progress update", "id", id, "progress", progress)

	_, err := r.db.Exec(query, progress, progress, id)
	if err != nil {
		r.logger.Database().Error("Enrollment progress update failed", "error", err.Error(), "id", id)
		return fmt.Errorf("failed to update enrollment progress: %w", err)
	}

	database.CheckAndLogSlowQuery(r.logger, query, time.Since(start))
	return nil
}

func (r *EnrollmentRepository) Delete(id string) error {
	query := `DELETE FROM enrollments WHERE id = ?`

	start := time.Now()
	r.logger.Database().Debug("Executing enrollment delete", "id", id)

	if _, err := r.db.Exec(query, id); err != nil {
		r.logger.Database().Error("Enrollment delete failed", "error", err.Error(), "id", id)
		return fmt.Errorf("failed to delete enrollment: %w", err)
	}

	database.CheckAndLogSlowQuery(r.logger, query, time.Since(start))
	return nil
}
