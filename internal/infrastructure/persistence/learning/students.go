package learning

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/upskillhq/upskill-go/internal/domain/entities/learning"
	"github.com/upskillhq/upskill-go/internal/infrastructure/observability/logging"
	"github.com/upskillhq/upskill-go/internal/infrastructure/persistence/database"
)

type StudentRepository struct {
	db     *sql.DB
	logger *logging.ChanneledLogger
}

func NewStudentRepository(db *sql.DB, logger *logging.ChanneledLogger) *StudentRepository {
	return &StudentRepository{db: db, logger: logger}
}

func (r *StudentRepository) FindByID(id string) (*learning.Student, error) {
	query := `SELECT id, client_id, first_name, last_name, email, password_hash, status, created, changed FROM students WHERE id = ?`

	start := time.Now()
	row := r.db.QueryRow(query, id)

	student, err := scanStudent(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Database().Error("Failed to scan student", "error", err.Error(), "id", id)
		return nil, fmt.Errorf("failed to scan student: %w", err)
	}

	database.CheckAndLogSlowQuery(r.logger, query, time.Since(start))
	return student, nil
}

func (r *StudentRepository) FindByClientID(clientID string) ([]*learning.Student, error) {
	query := `SELECT id, client_id, first_name, last_name, email, password_hash, status, created, changed FROM students WHERE client_id = ? ORDER BY last_name, first_name`

	start := time.Now()
	rows, err := r.db.Query(query, clientID)
	if err != nil {
		r.logger.Database().Error("Failed to query students", "error", err.Error(), "clientId", clientID)
		return nil, fmt.Errorf("failed to query students: %w", err)
	}
	defer rows.Close()

	var students []*learning.Student
	for rows.Next() {
		student, err := scanStudent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan student: %w", err)
		}
		students = append(students, student)
	}

	database.CheckAndLogSlowQuery(r.logger, query, time.Since(start))
	return students, rows.Err()
}

func (r *StudentRepository) Store(student *learning.Student) error {
	query := `INSERT INTO students (id, client_id, first_name, last_name, email, password_hash, status, created) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	start := time.Now()
	r.logger.Database().Debug("Executing student insert", "id", student.ID)

	_, err := r.db.Exec(query, student.ID, student.ClientID, student.FirstName, student.LastName, student.Email, student.PasswordHash, student.Status, student.Created)
	if err != nil {
		r.logger.Database().Error("Student insert failed", "error", err.Error(), "id", student.ID)
		return fmt.Errorf("failed to insert student: %w", err)
	}

	database.CheckAndLogSlowQuery(r.logger, query, time.Since(start))
	return nil
}

func (r *StudentRepository) Update(student *learning.Student) error {
	query := `UPDATE students SET first_name = ?, last_name = ?, email = ?, status = ?, changed = CURRENT_TIMESTAMP WHERE id = ?`

	start := time.Now()
	r.logger.Database().Debug("Executing student update", "id", student.ID)

	_, err := r.db.Exec(query, student.FirstName, student.LastName, student.Email, student.Status, student.ID)
	if err != nil {
		r.logger.Database().Error("Student update failed", "error", err.Error(), "id", student.ID)
		return fmt.Errorf("failed to update student: %w", err)
	}

	database.CheckAndLogSlowQuery(r.logger, query, time.Since(start))
	return nil
}

func (r *StudentRepository) Delete(id string) error {
	query := `DELETE FROM students WHERE id = ?`

	start := time.Now()
	r.logger.Database().Debug("Executing student delete", "id", id)

	if _, err := r.db.Exec(query, id); err != nil {
		r.logger.Database().Error("Student delete failed", "error", err.Error(), "id", id)
		return fmt.Errorf("failed to delete student: %w", err)
	}

	database.CheckAndLogSlowQuery(r.logger, query, time.Since(start))
	return nil
}

func scanStudent(row rowScanner) (*learning.Student, error) {
	var student learning.Student
	var changed sql.NullTime

	err := row.Scan(&student.ID, &student.ClientID, &student.FirstName, &student.LastName, &student.Email, &student.PasswordHash, &student.Status, &student.Created, &changed)
	if err != nil {
		return nil, err
	}
	if changed.Valid {
		student.Changed = &changed.Time
	}
	return &student, nil
}
