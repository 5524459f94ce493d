package learning

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/upskillhq/upskill-go/internal/domain/entities/insights"
	"github.com/upskillhq/upskill-go/internal/infrastructure/observability/logging"
	"github.com/upskillhq/upskill-go/internal/infrastructure/persistence/database"
)

// InsightsRepository runs the aggregate queries behind the dashboard and
// product analytics. These are the expensive producers the cache fronts;
// nothing here consults the cache itself.
type InsightsRepository struct {
	db     *sql.DB
	logger *logging.ChanneledLogger
}

func NewInsightsRepository(db *sql.DB, logger *logging.ChanneledLogger) *InsightsRepository {
	return &InsightsRepository{db: db, logger: logger}
}

const recentActivityLimit = 10

func (r *InsightsRepository) ComputeDashboard(clientID string, limit, offset int) (*insights.DashboardData, error) {
	start := time.Now()
	r.logger.Analytics().Debug("Computing dashboard", "clientId", clientID, "limit", limit, "offset", offset)

	data := &insights.DashboardData{
		ClientID:   clientID,
		ComputedAt: time.Now().UTC(),
	}

	studentQuery := `SELECT COUNT(*), COALESCE(SUM(CASE WHEN status = 'active' THEN 1 ELSE 0 END), 0) FROM students WHERE client_id = ?`
	if err := r.db.QueryRow(studentQuery, clientID).Scan(&data.TotalStudents, &data.ActiveStudents); err != nil {
		r.logger.Analytics().Error("Dashboard student counts failed", "error", err.Error(), "clientId", clientID)
		return nil, fmt.Errorf("failed to count students: %w", err)
	}

	enrollmentQuery := `SELECT COUNT(*), COALESCE(SUM(CASE WHEN e.completed_at IS NOT NULL THEN 1 ELSE 0 END), 0)
	                    FROM enrollments e
	                    JOIN modules m ON m.id = e.module_id
	                    JOIN products p ON p.id = m.product_id
	                    WHERE p.client_id = ?`
	var completed int
	if err := r.db.QueryRow(enrollmentQuery, clientID).Scan(&data.TotalEnrollments, &completed); err != nil {
		r.logger.Analytics().Error("Dashboard enrollment counts failed", "error", err.Error(), "clientId", clientID)
		return nil, fmt.Errorf("failed to count enrollments: %w", err)
	}
	if data.TotalEnrollments > 0 {
		data.CompletionRate = float64(completed) / float64(data.TotalEnrollments) * 100
	}

	scoreQuery := `SELECT COALESCE(AVG(i.score), 0)
	               FROM interviews i
	               JOIN students s ON s.id = i.student_id
	               WHERE s.client_id = ? AND i.score IS NOT NULL`
	if err := r.db.QueryRow(scoreQuery, clientID).Scan(&data.AvgInterviewScore); err != nil {
		r.logger.Analytics().Error("Dashboard interview average failed", "error", err.Error(), "clientId", clientID)
		return nil, fmt.Errorf("failed to average interview scores: %w", err)
	}

	products, err := r.productSummaries(clientID, limit, offset)
	if err != nil {
		return nil, err
	}
	data.Products = products

	activity, err := r.recentActivity(clientID)
	if err != nil {
		return nil, err
	}
	data.RecentActivity = activity

	duration := time.Since(start)
	r.logger.Analytics().Info("Dashboard computed", "clientId", clientID, "duration", duration)
	database.CheckAndLogSlowQuery(r.logger, "BULK_dashboard_aggregate", duration)
	return data, nil
}

func (r *InsightsRepository) productSummaries(clientID string, limit, offset int) ([]insights.ProductSummary, error) {
	query := `SELECT p.id, p.title,
	                 (SELECT COUNT(*) FROM modules m WHERE m.product_id = p.id),
	                 COUNT(e.id),
	                 COALESCE(SUM(CASE WHEN e.completed_at IS NOT NULL THEN 1 ELSE 0 END), 0)
	          FROM products p
	          LEFT JOIN modules m ON m.product_id = p.id
	          LEFT JOIN enrollments e ON e.module_id = m.id
	          WHERE p.client_id = ?
	          GROUP BY p.id, p.title
	          ORDER BY p.title
	          LIMIT ? OFFSET ?`

	rows, err := r.db.Query(query, clientID, limit, offset)
	if err != nil {
		r.logger.Analytics().Error("Dashboard product summaries failed", "error", err.Error(), "clientId", clientID)
		return nil, fmt.Errorf("failed to query product summaries: %w", err)
	}
	defer rows.Close()

	summaries := []insights.ProductSummary{}
	for rows.Next() {
		var s insights.ProductSummary
		var completed int
		if err := rows.Scan(&s.ProductID, &s.Title, &s.ModuleCount, &s.Enrollments, &completed); err != nil {
			return nil, fmt.Errorf("failed to scan product summary: %w", err)
		}
		if s.Enrollments > 0 {
			s.CompletionRate = float64(completed) / float64(s.Enrollments) * 100
		}
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}

func (r *InsightsRepository) recentActivity(clientID string) ([]insights.ActivityItem, error) {
	query := `SELECT verb, object_id, object_type, created_at
	          FROM activity_events
	          WHERE client_id = ?
	          ORDER BY created_at DESC
	          LIMIT ?`

	rows, err := r.db.Query(query, clientID, recentActivityLimit)
	if err != nil {
		r.logger.Analytics().Error("Dashboard recent activity failed", "error", err.Error(), "clientId", clientID)
		return nil, fmt.Errorf("failed to query recent activity: %w", err)
	}
	defer rows.Close()

	items := []insights.ActivityItem{}
	for rows.Next() {
		var item insights.ActivityItem
		var objectType string
		if err := rows.Scan(&item.Kind, &item.EntityID, &objectType, &item.OccurredAt); err != nil {
			return nil, fmt.Errorf("failed to scan activity item: %w", err)
		}
		item.Label = fmt.Sprintf("%s %s", objectType, item.Kind)
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *InsightsRepository) ComputeProductPerformance(productID string) (*insights.ProductPerformance, error) {
	start := time.Now()
	r.logger.Analytics().Debug("Computing product performance", "productId", productID)

	perf := &insights.ProductPerformance{
		ProductID:  productID,
		ComputedAt: time.Now().UTC(),
	}

	titleQuery := `SELECT title FROM products WHERE id = ?`
	if err := r.db.QueryRow(titleQuery, productID).Scan(&perf.Title); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("product %s not found", productID)
		}
		return nil, fmt.Errorf("failed to load product title: %w", err)
	}

	totalsQuery := `SELECT COUNT(e.id),
	                       COALESCE(SUM(CASE WHEN e.completed_at IS NOT NULL THEN 1 ELSE 0 END), 0),
	                       COALESCE(AVG(e.progress), 0)
	                FROM enrollments e
	                JOIN modules m ON m.id = e.module_id
	                WHERE m.product_id = ?`
	if err := r.db.QueryRow(totalsQuery, productID).Scan(&perf.Enrollments, &perf.Completions, &perf.AvgProgress); err != nil {
		r.logger.Analytics().Error("Product totals failed", "error", err.Error(), "productId", productID)
		return nil, fmt.Errorf("failed to compute product totals: %w", err)
	}
	if perf.Enrollments > 0 {
		perf.CompletionRate = float64(perf.Completions) / float64(perf.Enrollments) * 100
	}

	breakdownQuery := `SELECT m.id, m.title, COUNT(e.id),
	                          COALESCE(AVG(e.progress), 0),
	                          COALESCE(SUM(CASE WHEN e.completed_at IS NOT NULL THEN 1 ELSE 0 END), 0)
	                   FROM modules m
	                   LEFT JOIN enrollments e ON e.module_id = m.id
	                   WHERE m.product_id = ?
	                   GROUP BY m.id, m.title
	                   ORDER BY m.ordinal`

	rows, err := r.db.Query(breakdownQuery, productID)
	if err != nil {
		r.logger.Analytics().Error("Module breakdown failed", "error", err.Error(), "productId", productID)
		return nil, fmt.Errorf("failed to query module breakdown: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var row insights.ModulePerformance
		var completed int
		if err := rows.Scan(&row.ModuleID, &row.Title, &row.Enrollments, &row.AvgProgress, &completed); err != nil {
			return nil, fmt.Errorf("failed to scan module breakdown: %w", err)
		}
		if row.Enrollments > 0 {
			row.CompletionRate = float64(completed) / float64(row.Enrollments) * 100
		}
		perf.ModuleBreakdown = append(perf.ModuleBreakdown, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	duration := time.Since(start)
	r.logger.Analytics().Info("Product performance computed", "productId", productID, "duration", duration)
	database.CheckAndLogSlowQuery(r.logger, "BULK_product_performance", duration)
	return perf, nil
}
