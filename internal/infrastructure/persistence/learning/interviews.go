package learning

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/upskillhq/upskill-go/internal/domain/entities/learning"
	"github.com/upskillhq/upskill-go/internal/infrastructure/observability/logging"
	"github.com/upskillhq/upskill-go/internal/infrastructure/persistence/database"
)

type InterviewRepository struct {
	db     *sql.DB
	logger *logging.ChanneledLogger
}

func NewInterviewRepository(db *sql.DB, logger *logging.ChanneledLogger) *InterviewRepository {
	return &InterviewRepository{db: db, logger: logger}
}

func (r *InterviewRepository) FindByID(id string) (*learning.Interview, error) {
	query := `SELECT id, student_id, module_id, audio_url, transcript_id, transcript, score, feedback, status, created, graded_at FROM interviews WHERE id = ?`

	start := time.Now()
	row := r.db.QueryRow(query, id)

	interview, err := scanInterview(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Database().Error("Failed to scan interview", "error", err.Error(), "id", id)
		return nil, fmt.Errorf("failed to scan interview: %w", err)
	}

	database.CheckAndLogSlowQuery(r.logger, query, time.Since(start))
	return interview, nil
}

func (r *InterviewRepository) FindByStudentID(studentID string) ([]*learning.Interview, error) {
	query := `SELECT id, student_id, module_id, audio_url, transcript_id, transcript, score, feedback, status, created, graded_at FROM interviews WHERE student_id = ? ORDER BY created DESC`

	start := time.Now()
	rows, err := r.db.Query(query, studentID)
	if err != nil {
		r.logger.Database().Error("Failed to query interviews", "error", err.Error(), "studentId", studentID)
		return nil, fmt.Errorf("failed to query interviews: %w", err)
	}
	defer rows.Close()

	var interviews []*learning.Interview
	for rows.Next() {
		interview, err := scanInterview(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan interview: %w", err)
		}
		interviews = append(interviews, interview)
	}

	database.CheckAndLogSlowQuery(r.logger, query, time.Since(start))
	return interviews, rows.Err()
}

func (r *InterviewRepository) Store(interview *learning.Interview) error {
	query := `INSERT INTO interviews (id, student_id, module_id, audio_url, transcript_id, transcript, score, feedback, status, created, graded_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	start := time.Now()
	r.logger.Database().Debug("Executing interview insert", "id", interview.ID)

	_, err := r.db.Exec(query, interview.ID, interview.StudentID, interview.ModuleID, interview.AudioURL,
		interview.TranscriptID, interview.Transcript, interview.Score, interview.Feedback, interview.Status,
		interview.Created, interview.GradedAt)
	if err != nil {
		r.logger.Database().Error("Interview insert failed", "error", err.Error(), "id", interview.ID)
		return fmt.Errorf("failed to insert interview: %w", err)
	}

	database.CheckAndLogSlowQuery(r.logger, query, time.Since(start))
	return nil
}

func (r *InterviewRepository) Update(interview *learning.Interview) error {
	query := `UPDATE interviews SET transcript_id = ?, transcript = ?, score = ?, feedback = ?, status = ?, graded_at = ? WHERE id = ?`

	start := time.Now()
	r.logger.Database().Debug("Executing interview update", "id", interview.ID, "status", interview.Status)

	_, err := r.db.Exec(query, interview.TranscriptID, interview.Transcript, interview.Score, interview.Feedback,
		interview.Status, interview.GradedAt, interview.ID)
	if err != nil {
		r.logger.Database().Error("Interview update failed", "error", err.Error(), "id", interview.ID)
		return fmt.Errorf("failed to update interview: %w", err)
	}

	database.CheckAndLogSlowQuery(r.logger, query, time.Since(start))
	return nil
}

func scanInterview(row rowScanner) (*learning.Interview, error) {
	var interview learning.Interview
	var transcriptID, transcript, feedback sql.NullString
	var score sql.NullFloat64
	var gradedAt sql.NullTime

	err := row.Scan(&interview.ID, &interview.StudentID, &interview.ModuleID, &interview.AudioURL,
		&transcriptID, &transcript, &score, &feedback, &interview.Status, &interview.Created, &gradedAt)
	if err != nil {
		return nil, err
	}
	if transcriptID.Valid {
		interview.TranscriptID = &transcriptID.String
	}
	if transcript.Valid {
		interview.Transcript = &transcript.String
	}
	if score.Valid {
		interview.Score = &score.Float64
	}
	if feedback.Valid {
		interview.Feedback = &feedback.String
	}
	if gradedAt.Valid {
		interview.GradedAt = &gradedAt.Time
	}
	return &interview, nil
}
