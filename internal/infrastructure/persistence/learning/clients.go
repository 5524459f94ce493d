// Package learning provides the SQL repositories for the learning domain.
package learning

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/upskillhq/upskill-go/internal/domain/entities/learning"
	"github.com/upskillhq/upskill-go/internal/infrastructure/observability/logging"
	"github.com/upskillhq/upskill-go/internal/infrastructure/persistence/database"
)

type ClientRepository struct {
	db     *sql.DB
	logger *logging.ChanneledLogger
}

func NewClientRepository(db *sql.DB, logger *logging.ChanneledLogger) *ClientRepository {
	return &ClientRepository{db: db, logger: logger}
}

func (r *ClientRepository) FindByID(id string) (*learning.Client, error) {
	query := `SELECT id, name, slug, contact_name, contact_email, status, created, changed FROM clients WHERE id = ?`

	start := time.Now()
	row := r.db.QueryRow(query, id)

	client, err := scanClient(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Database().Error("Failed to scan client", "error", err.Error(), "id", id)
		return nil, fmt.Errorf("failed to scan client: %w", err)
	}

	database.CheckAndLogSlowQuery(r.logger, query, time.Since(start))
	return client, nil
}

func (r *ClientRepository) FindAll() ([]*learning.Client, error) {
	query := `SELECT id, name, slug, contact_name, contact_email, status, created, changed FROM clients ORDER BY name`

	start := time.Now()
	rows, err := r.db.Query(query)
	if err != nil {
		r.logger.Database().Error("Failed to query clients", "error", err.Error())
		return nil, fmt.Errorf("failed to query clients: %w", err)
	}
	defer rows.Close()

	var clients []*learning.Client
	for rows.Next() {
		client, err := scanClient(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan client: %w", err)
		}
		clients = append(clients, client)
	}

	database.CheckAndLogSlowQuery(r.logger, query, time.Since(start))
	return clients, rows.Err()
}

func (r *ClientRepository) FindConfig(id string) (*learning.ClientConfig, error) {
	query := `SELECT client_id, branding_payload, features_payload, logo_path, locale, changed FROM client_configs WHERE client_id = ?`

	start := time.Now()
	row := r.db.QueryRow(query, id)

	var cfg learning.ClientConfig
	var brandingStr, featuresStr string
	var logoPath sql.NullString
	var changed sql.NullTime

	err := row.Scan(&cfg.ClientID, &brandingStr, &featuresStr, &logoPath, &cfg.DefaultLocale, &changed)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Database().Error("Failed to scan client config", "error", err.Error(), "id", id)
		return nil, fmt.Errorf("failed to scan client config: %w", err)
	}

	if err := json.Unmarshal([]byte(brandingStr), &cfg.BrandColors); err != nil {
		return nil, fmt.Errorf("failed to parse branding payload: %w", err)
	}
	if err := json.Unmarshal([]byte(featuresStr), &cfg.Features); err != nil {
		return nil, fmt.Errorf("failed to parse features payload: %w", err)
	}
	if logoPath.Valid {
		cfg.LogoPath = &logoPath.String
	}
	if changed.Valid {
		cfg.Changed = &changed.Time
	}

	database.CheckAndLogSlowQuery(r.logger, query, time.Since(start))
	return &cfg, nil
}

func (r *ClientRepository) Store(client *learning.Client) error {
	query := `INSERT INTO clients (id, name, slug, contact_name, contact_email, status, created) VALUES (?, ?, ?, ?, ?, ?, ?)`

	start := time.Now()
	r.logger.Database().Debug("Executing client insert", "id", client.ID)

	_, err := r.db.Exec(query, client.ID, client.Name, client.Slug, client.ContactName, client.Email, client.Status, client.Created)
	if err != nil {
		r.logger.Database().Error("Client insert failed", "error", err.Error(), "id", client.ID)
		return fmt.Errorf("failed to insert client: %w", err)
	}

	database.CheckAndLogSlowQuery(r.logger, query, time.Since(start))
	return nil
}

func (r *ClientRepository) Update(client *learning.Client) error {
	query := `UPDATE clients SET name = ?, slug = ?, contact_name = ?, contact_email = ?, status = ?, changed = CURRENT_TIMESTAMP WHERE id = ?`

	start := time.Now()
	r.logger.Database().Debug("Executing client update", "id", client.ID)

	_, err := r.db.Exec(query, client.Name, client.Slug, client.ContactName, client.Email, client.Status, client.ID)
	if err != nil {
		r.logger.Database().Error("Client update failed", "error", err.Error(), "id", client.ID)
		return fmt.Errorf("failed to update client: %w", err)
	}

	database.CheckAndLogSlowQuery(r.logger, query, time.Since(start))
	return nil
}

func (r *ClientRepository) UpdateConfig(config *learning.ClientConfig) error {
	brandingJSON, _ := json.Marshal(config.BrandColors)
	featuresJSON, _ := json.Marshal(config.Features)

	query := `INSERT INTO client_configs (client_id, branding_payload, features_payload, logo_path, locale, changed)
	          VALUES (?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
	          ON CONFLICT (client_id) DO UPDATE SET branding_payload = excluded.branding_payload,
	              features_payload = excluded.features_payload, logo_path = excluded.logo_path,
	              locale = excluded.locale, changed = CURRENT_TIMESTAMP`

	start := time.Now()
	r.logger.Database().Debug("Executing client config upsert", "clientId", config.ClientID)

	_, err := r.db.Exec(query, config.ClientID, string(brandingJSON), string(featuresJSON), config.LogoPath, config.DefaultLocale)
	if err != nil {
		r.logger.Database().Error("Client config upsert failed", "error", err.Error(), "clientId", config.ClientID)
		return fmt.Errorf("failed to upsert client config: %w", err)
	}

	database.CheckAndLogSlowQuery(r.logger, query, time.Since(start))
	return nil
}

func (r *ClientRepository) Delete(id string) error {
	start := time.Now()
	r.logger.Database().Debug("Executing client delete", "id", id)

	if _, err := r.db.Exec(`DELETE FROM client_configs WHERE client_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete client config: %w", err)
	}
	query := `DELETE FROM clients WHERE id = ?`
	if _, err := r.db.Exec(query, id); err != nil {
		r.logger.Database().Error("Client delete failed", "error", err.Error(), "id", id)
		return fmt.Errorf("failed to delete client: %w", err)
	}

	database.CheckAndLogSlowQuery(r.logger, query, time.Since(start))
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanClient(row rowScanner) (*learning.Client, error) {
	var client learning.Client
	var changed sql.NullTime

	err := row.Scan(&client.ID, &client.Name, &client.Slug, &client.ContactName, &client.Email, &client.Status, &client.Created, &changed)
	if err != nil {
		return nil, err
	}
	if changed.Valid {
		client.Changed = &changed.Time
	}
	return &client, nil
}
