package learning

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/upskillhq/upskill-go/internal/domain/entities/learning"
	"github.com/upskillhq/upskill-go/internal/infrastructure/observability/logging"
	"github.com/upskillhq/upskill-go/internal/infrastructure/persistence/database"
)

type ExpertSessionRepository struct {
	db     *sql.DB
	logger *logging.ChanneledLogger
}

func NewExpertSessionRepository(db *sql.DB, logger *logging.ChanneledLogger) *ExpertSessionRepository {
	return &ExpertSessionRepository{db: db, logger: logger}
}

func (r *ExpertSessionRepository) FindByID(id string) (*learning.ExpertSession, error) {
	query := `SELECT id, client_id, expert_name, topic, scheduled_at, duration_minutes, status, recording_url, created, changed FROM expert_sessions WHERE id = ?`

	start := time.Now()
	row := r.db.QueryRow(query, id)

	session, err := scanExpertSession(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Database().Error("Failed to scan expert session", "error", err.Error(), "id", id)
		return nil, fmt.Errorf("failed to scan expert session: %w", err)
	}

	database.CheckAndLogSlowQuery(r.logger, query, time.Since(start))
	return session, nil
}

func (r *ExpertSessionRepository) FindByClientID(clientID string) ([]*learning.ExpertSession, error) {
	query := `SELECT id, client_id, expert_name, topic, scheduled_at, duration_minutes, status, recording_url, created, changed FROM expert_sessions WHERE client_id = ? ORDER BY scheduled_at`

	start := time.Now()
	rows, err := r.db.Query(query, clientID)
	if err != nil {
		r.logger.Database().Error("Failed to query expert sessions", "error", err.Error(), "clientId", clientID)
		return nil, fmt.Errorf("failed to query expert sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*learning.ExpertSession
	for rows.Next() {
		session, err := scanExpertSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan expert session: %w", err)
		}
		sessions = append(sessions, session)
	}

	database.CheckAndLogSlowQuery(r.logger, query, time.Since(start))
	return sessions, rows.Err()
}

func (r *ExpertSessionRepository) Store(session *learning.ExpertSession) error {
	query := `INSERT INTO expert_sessions (id, client_id, expert_name, topic, scheduled_at, duration_minutes, status, recording_url, created) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	start := time.Now()
	r.logger.Database().Debug("Executing expert session insert", "id", session.ID)

	_, err := r.db.Exec(query, session.ID, session.ClientID, session.ExpertName, session.Topic, session.ScheduledAt, session.DurationMin, session.Status, session.RecordingURL, session.Created)
	if err != nil {
		r.logger.Database().Error("Expert session insert failed", "error", err.Error(), "id", session.ID)
		return fmt.Errorf("failed to insert expert session: %w", err)
	}

	database.CheckAndLogSlowQuery(r.logger, query, time.Since(start))
	return nil
}

func (r *ExpertSessionRepository) Update(session *learning.ExpertSession) error {
	query := `UPDATE expert_sessions SET expert_name = ?, topic = ?, scheduled_at = ?, duration_minutes = ?, status = ?, recording_url = ?, changed = CURRENT_TIMESTAMP WHERE id = ?`

	start := time.Now()
	r.logger.Database().Debug("Executing expert session update", "id", session.ID)

	_, err := r.db.Exec(query, session.ExpertName, session.Topic, session.ScheduledAt, session.DurationMin, session.Status, session.RecordingURL, session.ID)
	if err != nil {
		r.logger.Database().Error("Expert session update failed", "error", err.Error(), "id", session.ID)
		return fmt.Errorf("failed to update expert session: %w", err)
	}

	database.CheckAndLogSlowQuery(r.logger, query, time.Since(start))
	return nil
}

func (r *ExpertSessionRepository) Delete(id string) error {
	query := `DELETE FROM expert_sessions WHERE id = ?`

	start := time.Now()
	r.logger.Database().Debug("Executing expert session delete", "id", id)

	if _, err := r.db.Exec(query, id); err != nil {
		r.logger.Database().Error("Expert session delete failed", "error", err.Error(), "id", id)
		return fmt.Errorf("failed to delete expert session: %w", err)
	}

	database.CheckAndLogSlowQuery(r.logger, query, time.Since(start))
	return nil
}

func scanExpertSession(row rowScanner) (*learning.ExpertSession, error) {
	var session learning.ExpertSession
	var recordingURL sql.NullString
	var changed sql.NullTime

	err := row.Scan(&session.ID, &session.ClientID, &session.ExpertName, &session.Topic, &session.ScheduledAt, &session.DurationMin, &session.Status, &recordingURL, &session.Created, &changed)
	if err != nil {
		return nil, err
	}
	if recordingURL.Valid {
		session.RecordingURL = &recordingURL.String
	}
	if changed.Valid {
		session.Changed = &changed.Time
	}
	return &session, nil
}
