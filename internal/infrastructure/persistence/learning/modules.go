package learning

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/upskillhq/upskill-go/internal/domain/entities/learning"
	"github.com/upskillhq/upskill-go/internal/infrastructure/observability/logging"
	"github.com/upskillhq/upskill-go/internal/infrastructure/persistence/database"
)

type ModuleRepository struct {
	db     *sql.DB
	logger *logging.ChanneledLogger
}

func NewModuleRepository(db *sql.DB, logger *logging.ChanneledLogger) *ModuleRepository {
	return &ModuleRepository{db: db, logger: logger}
}

func (r *ModuleRepository) FindByID(id string) (*learning.Module, error) {
	query := `SELECT id, product_id, title, slug, ordinal, status, created, changed FROM modules WHERE id = ?`

	start := time.Now()
	row := r.db.QueryRow(query, id)

	module, err := scanModule(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Database().Error("Failed to scan module", "error", err.Error(), "id", id)
		return nil, fmt.Errorf("failed to scan module: %w", err)
	}

	database.CheckAndLogSlowQuery(r.logger, query, time.Since(start))
	return module, nil
}

func (r *ModuleRepository) FindByProductID(productID string) ([]*learning.Module, error) {
	query := `SELECT id, product_id, title, slug, ordinal, status, created, changed FROM modules WHERE product_id = ? ORDER BY ordinal`

	start := time.Now()
	rows, err := r.db.Query(query, productID)
	if err != nil {
		r.logger.Database().Error("Failed to query modules", "error", err.Error(), "productId", productID)
		return nil, fmt.Errorf("failed to query modules: %w", err)
	}
	defer rows.Close()

	var modules []*learning.Module
	for rows.Next() {
		module, err := scanModule(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan module: %w", err)
		}
		modules = append(modules, module)
	}

	database.CheckAndLogSlowQuery(r.logger, query, time.Since(start))
	return modules, rows.Err()
}

func (r *ModuleRepository) FindLessons(moduleID string) ([]*learning.Lesson, error) {
	query := `SELECT id, module_id, title, kind, ordinal, body, media_url FROM lessons WHERE module_id = ? ORDER BY ordinal`

	start := time.Now()
	rows, err := r.db.Query(query, moduleID)
	if err != nil {
		r.logger.Database().Error("Failed to query lessons", "error", err.Error(), "moduleId", moduleID)
		return nil, fmt.Errorf("failed to query lessons: %w", err)
	}
	defer rows.Close()

	var lessons []*learning.Lesson
	for rows.Next() {
		var lesson learning.Lesson
		var body, mediaURL sql.NullString

		if err := rows.Scan(&lesson.ID, &lesson.ModuleID, &lesson.Title, &lesson.Kind, &lesson.Ordinal, &body, &mediaURL); err != nil {
			return nil, fmt.Errorf("failed to scan lesson: %w", err)
		}
		if body.Valid {
			lesson.Body = &body.String
		}
		if mediaURL.Valid {
			lesson.MediaURL = &mediaURL.String
		}
		lessons = append(lessons, &lesson)
	}

	database.CheckAndLogSlowQuery(r.logger, query, time.Since(start))
	return lessons, rows.Err()
}

func (r *ModuleRepository) Store(module *learning.Module) error {
	query := `INSERT INTO modules (id, product_id, title, slug, ordinal, status, created) VALUES (?, ?, ?, ?, ?, ?, ?)`

	start := time.Now()
	r.logger.Database().Debug("Executing module insert", "id", module.ID)

	_, err := r.db.Exec(query, module.ID, module.ProductID, module.Title, module.Slug, module.Ordinal, module.Status, module.Created)
	if err != nil {
		r.logger.Database().Error("Module insert failed", "error", err.Error(), "id", module.ID)
		return fmt.Errorf("failed to insert module: %w", err)
	}

	database.CheckAndLogSlowQuery(r.logger, query, time.Since(start))
	return nil
}

func (r *ModuleRepository) Update(module *learning.Module) error {
	query := `UPDATE modules SET title = ?, slug = ?, ordinal = ?, status = ?, changed = CURRENT_TIMESTAMP WHERE id = ?`

	start := time.Now()
	r.logger.Database().Debug("Executing module update", "id", module.ID)

	_, err := r.db.Exec(query, module.Title, module.Slug, module.Ordinal, module.Status, module.ID)
	if err != nil {
		r.logger.Database().Error("Module update failed", "error", err.Error(), "id", module.ID)
		return fmt.Errorf("failed to update module: %w", err)
	}

	database.CheckAndLogSlowQuery(r.logger, query, time.Since(start))
	return nil
}

func (r *ModuleRepository) Delete(id string) error {
	start := time.Now()
	r.logger.Database().Debug("Executing module delete", "id", id)

	if _, err := r.db.Exec(`DELETE FROM lessons WHERE module_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete module lessons: %w", err)
	}
	query := `DELETE FROM modules WHERE id = ?`
	if _, err := r.db.Exec(query, id); err != nil {
		r.logger.Database().Error("Module delete failed", "error", err.Error(), "id", id)
		return fmt.Errorf("failed to delete module: %w", err)
	}

	database.CheckAndLogSlowQuery(r.logger, query, time.Since(start))
	return nil
}

// StoreLesson inserts a lesson under an existing module.
func (r *ModuleRepository) StoreLesson(lesson *learning.Lesson) error {
	query := `INSERT INTO lessons (id, module_id, title, kind, ordinal, body, media_url) VALUES (?, ?, ?, ?, ?, ?, ?)`

	start := time.Now()
	r.logger.Database().Debug("Executing lesson insert", "id", lesson.ID)

	_, err := r.db.Exec(query, lesson.ID, lesson.ModuleID, lesson.Title, lesson.Kind, lesson.Ordinal, lesson.Body, lesson.MediaURL)
	if err != nil {
		r.logger.Database().Error("Lesson insert failed", "error", err.Error(), "id", lesson.ID)
		return fmt.Errorf("failed to insert lesson: %w", err)
	}

	database.CheckAndLogSlowQuery(r.logger, query, time.Since(start))
	return nil
}

func scanModule(row rowScanner) (*learning.Module, error) {
	var module learning.Module
	var changed sql.NullTime

	err := row.Scan(&module.ID, &module.ProductID, &module.Title, &module.Slug, &module.Ordinal, &module.Status, &module.Created, &changed)
	if err != nil {
		return nil, err
	}
	if changed.Valid {
		module.Changed = &changed.Time
	}
	return &module, nil
}
