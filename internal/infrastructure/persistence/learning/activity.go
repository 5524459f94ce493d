package learning

import (
	"database/sql"
	"fmt"

	"github.com/upskillhq/upskill-go/internal/infrastructure/observability/logging"
	"github.com/upskillhq/upskill-go/internal/infrastructure/security"
)

// ActivityRepository appends rows to the activity_events table. Failures are
// logged and returned, but callers treat event recording as best-effort.
type ActivityRepository struct {
	db     *sql.DB
	logger *logging.ChanneledLogger
}

func NewActivityRepository(db *sql.DB, logger *logging.ChanneledLogger) *ActivityRepository {
	return &ActivityRepository{db: db, logger: logger}
}

func (r *ActivityRepository) Record(clientID, studentID, objectID, objectType, verb string) error {
	query := `INSERT INTO activity_events (id, client_id, student_id, object_id, object_type, verb) VALUES (?, ?, ?, ?, ?, ?)`

	var student any
	if studentID != "" {
		student = studentID
	}

	_, err := r.db.Exec(query, security.GenerateULID(), clientID, student, objectID, objectType, verb)
	if err != nil {
		r.logger.Analytics().Error("Failed to record activity event", "error", err.Error(), "objectId", objectID, "verb", verb)
		return fmt.Errorf("failed to record activity event: %w", err)
	}
	return nil
}
