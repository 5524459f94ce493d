package learning

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/upskillhq/upskill-go/internal/domain/entities/learning"
	"github.com/upskillhq/upskill-go/internal/infrastructure/observability/logging"
	"github.com/upskillhq/upskill-go/internal/infrastructure/persistence/database"
)

type ProductRepository struct {
	db     *sql.DB
	logger *logging.ChanneledLogger
}

func NewProductRepository(db *sql.DB, logger *logging.ChanneledLogger) *ProductRepository {
	return &ProductRepository{db: db, logger: logger}
}

func (r *ProductRepository) FindByID(id string) (*learning.Product, error) {
	query := `SELECT id, client_id, title, slug, description, cover_image_path, status, created, changed FROM products WHERE id = ?`

	start := time.Now()
	row := r.db.QueryRow(query, id)

	product, err := scanProduct(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Database().Error("Failed to scan product", "error", err.Error(), "id", id)
		return nil, fmt.Errorf("failed to scan product: %w", err)
	}

	database.CheckAndLogSlowQuery(r.logger, query, time.Since(start))
	return product, nil
}

func (r *ProductRepository) FindByClientID(clientID string) ([]*learning.Product, error) {
	query := `SELECT id, client_id, title, slug, description, cover_image_path, status, created, changed FROM products WHERE client_id = ? ORDER BY title`

	start := time.Now()
	rows, err := r.db.Query(query, clientID)
	if err != nil {
		r.logger.Database().Error("Failed to query products", "error", err.Error(), "clientId", clientID)
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var products []*learning.Product
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, product)
	}

	database.CheckAndLogSlowQuery(r.logger, query, time.Since(start))
	return products, rows.Err()
}

func (r *ProductRepository) Store(product *learning.Product) error {
	query := `INSERT INTO products (id, client_id, title, slug, description, cover_image_path, status, created) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	start := time.Now()
	r.logger.Database().Debug("Executing product insert", "id", product.ID)

	_, err := r.db.Exec(query, product.ID, product.ClientID, product.Title, product.Slug, product.Description, product.CoverPath, product.Status, product.Created)
	if err != nil {
		r.logger.Database().Error("Product insert failed", "error", err.Error(), "id", product.ID)
		return fmt.Errorf("failed to insert product: %w", err)
	}

	database.CheckAndLogSlowQuery(r.logger, query, time.Since(start))
	return nil
}

func (r *ProductRepository) Update(product *learning.Product) error {
	query := `UPDATE products SET title = ?, slug = ?, description = ?, cover_image_path = ?, status = ?, changed = CURRENT_TIMESTAMP WHERE id = ?`

	start := time.Now()
	r.logger.Database().Debug("Executing product update", "id", product.ID)

	_, err := r.db.Exec(query, product.Title, product.Slug, product.Description, product.CoverPath, product.Status, product.ID)
	if err != nil {
		r.logger.Database().Error("Product update failed", "error", err.Error(), "id", product.ID)
		return fmt.Errorf("failed to update product: %w", err)
	}

	database.CheckAndLogSlowQuery(r.logger, query, time.Since(start))
	return nil
}

func (r *ProductRepository) Delete(id string) error {
	query := `DELETE FROM products WHERE id = ?`

	start := time.Now()
	r.logger.Database().Debug("Executing product delete", "id", id)

	if _, err := r.db.Exec(query, id); err != nil {
		r.logger.Database().Error("Product delete failed", "error", err.Error(), "id", id)
		return fmt.Errorf("failed to delete product: %w", err)
	}

	database.CheckAndLogSlowQuery(r.logger, query, time.Since(start))
	return nil
}

func scanProduct(row rowScanner) (*learning.Product, error) {
	var product learning.Product
	var description, coverPath sql.NullString
	var changed sql.NullTime

	err := row.Scan(&product.ID, &product.ClientID, &product.Title, &product.Slug, &description, &coverPath, &product.Status, &product.Created, &changed)
	if err != nil {
		return nil, err
	}
	if description.Valid {
		product.Description = &description.String
	}
	if coverPath.Valid {
		product.CoverPath = &coverPath.String
	}
	if changed.Valid {
		product.Changed = &changed.Time
	}
	return &product, nil
}
