package learning

import (
	"database/sql"
	"fmt"

	"github.com/upskillhq/upskill-go/internal/infrastructure/observability/logging"
)

// RelationRepository answers the relationship lookups the invalidation
// cascade walks. Each method is a single indexed query.
type RelationRepository struct {
	db     *sql.DB
	logger *logging.ChanneledLogger
}

func NewRelationRepository(db *sql.DB, logger *logging.ChanneledLogger) *RelationRepository {
	return &RelationRepository{db: db, logger: logger}
}

func (r *RelationRepository) ModuleIDsForProduct(productID string) ([]string, error) {
	return r.queryIDs(`SELECT id FROM modules WHERE product_id = ?`, productID)
}

func (r *RelationRepository) ProductIDsForClient(clientID string) ([]string, error) {
	return r.queryIDs(`SELECT id FROM products WHERE client_id = ?`, clientID)
}

func (r *RelationRepository) ModuleIDsForStudent(studentID string) ([]string, error) {
	return r.queryIDs(`SELECT DISTINCT module_id FROM enrollments WHERE student_id = ?`, studentID)
}

func (r *RelationRepository) ProductIDForModule(moduleID string) (string, error) {
	return r.queryID(`SELECT product_id FROM modules WHERE id = ?`, moduleID)
}

func (r *RelationRepository) ClientIDForExpertSession(sessionID string) (string, error) {
	return r.queryID(`SELECT client_id FROM expert_sessions WHERE id = ?`, sessionID)
}

func (r *RelationRepository) queryIDs(query, arg string) ([]string, error) {
	rows, err := r.db.Query(query, arg)
	if err != nil {
		r.logger.Database().Error("Relation lookup failed", "error", err.Error(), "query", query)
		return nil, fmt.Errorf("relation lookup failed: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan relation id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *RelationRepository) queryID(query, arg string) (string, error) {
	var id string
	err := r.db.QueryRow(query, arg).Scan(&id)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		r.logger.Database().Error("Relation lookup failed", "error", err.Error(), "query", query)
		return "", fmt.Errorf("relation lookup failed: %w", err)
	}
	return id, nil
}
