package learning

import (
	"database/sql"
	"log/slog"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"

	entities "github.com/upskillhq/upskill-go/internal/domain/entities/learning"
	"github.com/upskillhq/upskill-go/internal/infrastructure/observability/logging"
	"github.com/upskillhq/upskill-go/internal/infrastructure/persistence/database"
)

func newTestDB(t *testing.T) (*sql.DB, *logging.ChanneledLogger) {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := database.NewTableCreator().CreateSchema(db); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	logger, err := logging.NewChanneledLogger(&logging.LoggerConfig{
		OutputToConsole: false,
		DefaultLevel:    slog.LevelError,
		ChannelLevels:   map[logging.Channel]slog.Level{},
	})
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}
	return db, logger
}

func seedClient(t *testing.T, db *sql.DB, logger *logging.ChanneledLogger, id string) {
	t.Helper()
	repo := NewClientRepository(db, logger)
	err := repo.Store(&entities.Client{
		ID: id, Name: "Acme Learning", Slug: "acme-" + id,
		ContactName: "Dana", Email: id + "@example.com", Status: "active",
		Created: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("seed client: %v", err)
	}
}

func TestClientRoundTrip(t *testing.T) {
	db, logger := newTestDB(t)
	repo := NewClientRepository(db, logger)

	seedClient(t, db, logger, "c1")

	client, err := repo.FindByID("c1")
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if client == nil || client.Name != "Acme Learning" {
		t.Fatalf("unexpected client %+v", client)
	}

	client.Name = "Acme Corp"
	if err := repo.Update(client); err != nil {
		t.Fatalf("Update: %v", err)
	}
	updated, _ := repo.FindByID("c1")
	if updated.Name != "Acme Corp" {
		t.Errorf("name = %q after update", updated.Name)
	}
	if updated.Changed == nil {
		t.Error("changed not stamped on update")
	}
}

func TestClientMissingIsNilNoError(t *testing.T) {
	db, logger := newTestDB(t)
	repo := NewClientRepository(db, logger)

	client, err := repo.FindByID("nope")
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if client != nil {
		t.Fatal("expected nil for missing client")
	}
}

func TestClientConfigUpsertRoundTrip(t *testing.T) {
	db, logger := newTestDB(t)
	repo := NewClientRepository(db, logger)
	seedClient(t, db, logger, "c1")

	cfg := &entities.ClientConfig{
		ClientID:      "c1",
		BrandColors:   map[string]string{"primary": "#204080"},
		Features:      map[string]bool{"interviews": true},
		DefaultLocale: "en",
	}
	if err := repo.UpdateConfig(cfg); err != nil {
		t.Fatalf("UpdateConfig: %v", err)
	}

	loaded, err := repo.FindConfig("c1")
	if err != nil {
		t.Fatalf("FindConfig: %v", err)
	}
	if loaded.BrandColors["primary"] != "#204080" || !loaded.Features["interviews"] {
		t.Fatalf("unexpected config %+v", loaded)
	}

	cfg.DefaultLocale = "de"
	if err := repo.UpdateConfig(cfg); err != nil {
		t.Fatalf("UpdateConfig upsert: %v", err)
	}
	loaded, _ = repo.FindConfig("c1")
	if loaded.DefaultLocale != "de" {
		t.Errorf("locale = %q after upsert", loaded.DefaultLocale)
	}
}

func seedCatalog(t *testing.T, db *sql.DB, logger *logging.ChanneledLogger) {
	t.Helper()
	seedClient(t, db, logger, "c1")

	products := NewProductRepository(db, logger)
	if err := products.Store(&entities.Product{ID: "p1", ClientID: "c1", Title: "Go Fundamentals", Slug: "go-fundamentals", Status: "published", Created: time.Now().UTC()}); err != nil {
		t.Fatalf("seed product: %v", err)
	}

	modules := NewModuleRepository(db, logger)
	for _, m := range []*entities.Module{
		{ID: "m1", ProductID: "p1", Title: "Basics", Slug: "basics", Ordinal: 1, Status: "published", Created: time.Now().UTC()},
		{ID: "m2", ProductID: "p1", Title: "Concurrency", Slug: "concurrency", Ordinal: 2, Status: "published", Created: time.Now().UTC()},
	} {
		if err := modules.Store(m); err != nil {
			t.Fatalf("seed module: %v", err)
		}
	}

	students := NewStudentRepository(db, logger)
	if err := students.Store(&entities.Student{ID: "s1", ClientID: "c1", FirstName: "Ada", LastName: "L", Email: "ada@example.com", PasswordHash: "x", Status: "active", Created: time.Now().UTC()}); err != nil {
		t.Fatalf("seed student: %v", err)
	}

	enrollments := NewEnrollmentRepository(db, logger)
	for _, e := range []*entities.Enrollment{
		{ID: "e1", StudentID: "s1", ModuleID: "m1", Progress: 100, Created: time.Now().UTC()},
		{ID: "e2", StudentID: "s1", ModuleID: "m2", Progress: 40, Created: time.Now().UTC()},
	} {
		if err := enrollments.Store(e); err != nil {
			t.Fatalf("seed enrollment: %v", err)
		}
	}
	if err := enrollments.UpdateProgress("e1", 100); err != nil {
		t.Fatalf("complete enrollment: %v", err)
	}
}

func TestModuleLessonsOrdered(t *testing.T) {
	db, logger := newTestDB(t)
	seedCatalog(t, db, logger)

	modules := NewModuleRepository(db, logger)
	body := "intro text"
	for _, l := range []*entities.Lesson{
		{ID: "l2", ModuleID: "m1", Title: "Second", Kind: "article", Ordinal: 2, Body: &body},
		{ID: "l1", ModuleID: "m1", Title: "First", Kind: "video", Ordinal: 1},
	} {
		if err := modules.StoreLesson(l); err != nil {
			t.Fatalf("StoreLesson: %v", err)
		}
	}

	lessons, err := modules.FindLessons("m1")
	if err != nil {
		t.Fatalf("FindLessons: %v", err)
	}
	if len(lessons) != 2 || lessons[0].ID != "l1" || lessons[1].ID != "l2" {
		t.Fatalf("unexpected lesson order %+v", lessons)
	}
	if lessons[1].Body == nil || *lessons[1].Body != "intro text" {
		t.Error("lesson body not round-tripped")
	}
}

func TestRelationLookups(t *testing.T) {
	db, logger := newTestDB(t)
	seedCatalog(t, db, logger)

	relations := NewRelationRepository(db, logger)

	moduleIDs, err := relations.ModuleIDsForProduct("p1")
	if err != nil {
		t.Fatalf("ModuleIDsForProduct: %v", err)
	}
	if len(moduleIDs) != 2 {
		t.Errorf("module ids = %v", moduleIDs)
	}

	productID, err := relations.ProductIDForModule("m1")
	if err != nil || productID != "p1" {
		t.Errorf("ProductIDForModule = %q, %v", productID, err)
	}

	studentModules, err := relations.ModuleIDsForStudent("s1")
	if err != nil || len(studentModules) != 2 {
		t.Errorf("ModuleIDsForStudent = %v, %v", studentModules, err)
	}

	productIDs, err := relations.ProductIDsForClient("c1")
	if err != nil || len(productIDs) != 1 {
		t.Errorf("ProductIDsForClient = %v, %v", productIDs, err)
	}

	// A module with no owning product resolves to an empty ID, not an
	// error, so cascade rules can skip the hop cleanly.
	ghostID, err := relations.ProductIDForModule("ghost")
	if err != nil {
		t.Fatalf("ProductIDForModule(ghost): %v", err)
	}
	if ghostID != "" {
		t.Errorf("ProductIDForModule(ghost) = %q, want empty", ghostID)
	}
}

func TestEnrollmentCompletionStamp(t *testing.T) {
	db, logger := newTestDB(t)
	seedCatalog(t, db, logger)

	enrollments := NewEnrollmentRepository(db, logger)
	list, err := enrollments.FindByStudentID("s1")
	if err != nil {
		t.Fatalf("FindByStudentID: %v", err)
	}

	var completed, inProgress *entities.Enrollment
	for _, e := range list {
		switch e.ID {
		case "e1":
			completed = e
		case "e2":
			inProgress = e
		}
	}
	if completed == nil || completed.CompletedAt == nil {
		t.Error("e1 should carry a completion timestamp")
	}
	if inProgress == nil || inProgress.CompletedAt != nil {
		t.Error("e2 should not be completed")
	}
}

func TestInterviewLifecycle(t *testing.T) {
	db, logger := newTestDB(t)
	seedCatalog(t, db, logger)

	interviews := NewInterviewRepository(db, logger)
	iv := &entities.Interview{
		ID: "i1", StudentID: "s1", ModuleID: "m1",
		AudioURL: "https://cdn.example.com/i1.mp3",
		Status:   "submitted", Created: time.Now().UTC(),
	}
	if err := interviews.Store(iv); err != nil {
		t.Fatalf("Store: %v", err)
	}

	transcript := "hello world"
	score := 82.5
	feedback := "solid answer"
	now := time.Now().UTC()
	iv.Transcript = &transcript
	iv.Score = &score
	iv.Feedback = &feedback
	iv.Status = "graded"
	iv.GradedAt = &now
	if err := interviews.Update(iv); err != nil {
		t.Fatalf("Update: %v", err)
	}

	loaded, err := interviews.FindByID("i1")
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if loaded.Status != "graded" || loaded.Score == nil || *loaded.Score != 82.5 {
		t.Fatalf("unexpected interview %+v", loaded)
	}
	if loaded.GradedAt == nil {
		t.Error("gradedAt not persisted")
	}
}

func TestComputeDashboard(t *testing.T) {
	db, logger := newTestDB(t)
	seedCatalog(t, db, logger)

	activity := NewActivityRepository(db, logger)
	if err := activity.Record("c1", "s1", "m1", "module", "completed"); err != nil {
		t.Fatalf("Record: %v", err)
	}

	repo := NewInsightsRepository(db, logger)
	data, err := repo.ComputeDashboard("c1", 20, 0)
	if err != nil {
		t.Fatalf("ComputeDashboard: %v", err)
	}

	if data.TotalStudents != 1 || data.ActiveStudents != 1 {
		t.Errorf("student counts = %d/%d", data.TotalStudents, data.ActiveStudents)
	}
	if data.TotalEnrollments != 2 {
		t.Errorf("enrollments = %d", data.TotalEnrollments)
	}
	if data.CompletionRate != 50 {
		t.Errorf("completion rate = %v", data.CompletionRate)
	}
	if len(data.Products) != 1 || data.Products[0].ModuleCount != 2 {
		t.Errorf("product summaries = %+v", data.Products)
	}
	if len(data.RecentActivity) != 1 || data.RecentActivity[0].Kind != "completed" {
		t.Errorf("recent activity = %+v", data.RecentActivity)
	}
}

func TestComputeProductPerformance(t *testing.T) {
	db, logger := newTestDB(t)
	seedCatalog(t, db, logger)

	repo := NewInsightsRepository(db, logger)
	perf, err := repo.ComputeProductPerformance("p1")
	if err != nil {
		t.Fatalf("ComputeProductPerformance: %v", err)
	}

	if perf.Title != "Go Fundamentals" {
		t.Errorf("title = %q", perf.Title)
	}
	if perf.Enrollments != 2 || perf.Completions != 1 {
		t.Errorf("totals = %d/%d", perf.Enrollments, perf.Completions)
	}
	if perf.CompletionRate != 50 {
		t.Errorf("completion rate = %v", perf.CompletionRate)
	}
	if len(perf.ModuleBreakdown) != 2 {
		t.Fatalf("breakdown = %+v", perf.ModuleBreakdown)
	}
	if perf.ModuleBreakdown[0].ModuleID != "m1" {
		t.Errorf("breakdown not ordered by ordinal: %+v", perf.ModuleBreakdown)
	}

	if _, err := repo.ComputeProductPerformance("ghost"); err == nil {
		t.Error("expected error for unknown product")
	}
}
