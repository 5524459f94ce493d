package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/upskillhq/upskill-go/internal/domain/entities/learning"
	"github.com/upskillhq/upskill-go/internal/infrastructure/caching/interfaces"
	"github.com/upskillhq/upskill-go/internal/infrastructure/caching/manager"
	"github.com/upskillhq/upskill-go/internal/infrastructure/caching/store"
	"github.com/upskillhq/upskill-go/internal/infrastructure/observability/logging"
	"github.com/upskillhq/upskill-go/internal/infrastructure/observability/performance"
	"github.com/upskillhq/upskill-go/internal/infrastructure/transcription"
)

func quietLogger(t *testing.T) *logging.ChanneledLogger {
	t.Helper()
	logger, err := logging.NewChanneledLogger(&logging.LoggerConfig{
		OutputToConsole: false,
		DefaultLevel:    slog.LevelError,
		ChannelLevels:   map[logging.Channel]slog.Level{},
	})
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}
	return logger
}

// fakeInvalidator records every invalidation call. An optional onCascade
// hook observes repository state at cascade time.
type fakeInvalidator struct {
	mu          sync.Mutex
	cascades    []string
	bulks       [][]interfaces.EntityOperation
	conditional []map[string]any
	onCascade   func(entityType, entityID, operation string)
}

func (f *fakeInvalidator) CascadeInvalidation(ctx context.Context, entityType, entityID, operation string) int {
	if f.onCascade != nil {
		f.onCascade(entityType, entityID, operation)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cascades = append(f.cascades, entityType+":"+entityID+":"+operation)
	return 1
}

func (f *fakeInvalidator) BulkInvalidation(ctx context.Context, ops []interfaces.EntityOperation) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bulks = append(f.bulks, ops)
	return len(ops)
}

func (f *fakeInvalidator) ConditionalInvalidation(ctx context.Context, entityType, entityID string, conditions map[string]any) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.conditional = append(f.conditional, conditions)
	return 1
}

// in-memory repository fakes

type fakeStudents struct {
	mu       sync.Mutex
	students map[string]*learning.Student
	updates  int
}

func newFakeStudents() *fakeStudents {
	return &fakeStudents{students: make(map[string]*learning.Student)}
}

func (f *fakeStudents) FindByID(id string) (*learning.Student, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.students[id]
	if !ok {
		return nil, nil
	}
	copied := *s
	return &copied, nil
}

func (f *fakeStudents) FindByClientID(clientID string) ([]*learning.Student, error) {
	return nil, nil
}

func (f *fakeStudents) Store(s *learning.Student) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.students[s.ID] = s
	return nil
}

func (f *fakeStudents) Update(s *learning.Student) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.students[s.ID] = s
	f.updates++
	return nil
}

func (f *fakeStudents) Delete(id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.students, id)
	return nil
}

type fakeModules struct {
	modules map[string]*learning.Module
	lessons map[string][]*learning.Lesson
}

func newFakeModules() *fakeModules {
	return &fakeModules{modules: make(map[string]*learning.Module), lessons: make(map[string][]*learning.Lesson)}
}

func (f *fakeModules) FindByID(id string) (*learning.Module, error) {
	m, ok := f.modules[id]
	if !ok {
		return nil, nil
	}
	return m, nil
}

func (f *fakeModules) FindByProductID(productID string) ([]*learning.Module, error) { return nil, nil }

func (f *fakeModules) FindLessons(moduleID string) ([]*learning.Lesson, error) {
	return f.lessons[moduleID], nil
}

func (f *fakeModules) Store(m *learning.Module) error {
	f.modules[m.ID] = m
	return nil
}

func (f *fakeModules) Update(m *learning.Module) error {
	f.modules[m.ID] = m
	return nil
}

func (f *fakeModules) Delete(id string) error {
	delete(f.modules, id)
	return nil
}

type fakeSessions struct {
	sessions map[string]*learning.ExpertSession
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{sessions: make(map[string]*learning.ExpertSession)}
}

func (f *fakeSessions) FindByID(id string) (*learning.ExpertSession, error) {
	s, ok := f.sessions[id]
	if !ok {
		return nil, nil
	}
	return s, nil
}

func (f *fakeSessions) FindByClientID(clientID string) ([]*learning.ExpertSession, error) {
	return nil, nil
}

func (f *fakeSessions) Store(s *learning.ExpertSession) error {
	f.sessions[s.ID] = s
	return nil
}

func (f *fakeSessions) Update(s *learning.ExpertSession) error {
	f.sessions[s.ID] = s
	return nil
}

func (f *fakeSessions) Delete(id string) error {
	delete(f.sessions, id)
	return nil
}

type fakeInterviews struct {
	mu         sync.Mutex
	interviews map[string]*learning.Interview
}

func newFakeInterviews() *fakeInterviews {
	return &fakeInterviews{interviews: make(map[string]*learning.Interview)}
}

func (f *fakeInterviews) FindByID(id string) (*learning.Interview, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	iv, ok := f.interviews[id]
	if !ok {
		return nil, nil
	}
	copied := *iv
	return &copied, nil
}

func (f *fakeInterviews) FindByStudentID(studentID string) ([]*learning.Interview, error) {
	return nil, nil
}

func (f *fakeInterviews) Store(iv *learning.Interview) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.interviews[iv.ID] = iv
	return nil
}

func (f *fakeInterviews) Update(iv *learning.Interview) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *iv
	f.interviews[iv.ID] = &copied
	return nil
}

type fakeTranscription struct {
	transcript string
	grade      *transcription.Grade
	failGrade  bool
}

func (f *fakeTranscription) TranscribeFromURL(ctx context.Context, audioURL string) (string, string, error) {
	return "tr_1", f.transcript, nil
}

func (f *fakeTranscription) GradeTranscript(ctx context.Context, transcript, lessonTitle string) (*transcription.Grade, error) {
	if f.failGrade {
		return nil, fmt.Errorf("lemur unavailable")
	}
	return f.grade, nil
}

type fakeEmail struct {
	mu   sync.Mutex
	sent []string
}

func (f *fakeEmail) SendInterviewResultEmail(toEmail, studentName, lessonTitle string, score float64, feedback string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, "result:"+toEmail)
	return nil
}

func (f *fakeEmail) SendEnrollmentEmail(toEmail, studentName, moduleTitle, moduleURL string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, "enroll:"+toEmail)
	return nil
}

func newTestManager(t *testing.T) *manager.Manager {
	t.Helper()
	m := manager.NewManager(store.NewMemoryStore(), 32, quietLogger(t))
	t.Cleanup(func() { m.Close(context.Background()) })
	return m
}

func TestCatalogImportModulesSingleBulkInvalidation(t *testing.T) {
	inv := &fakeInvalidator{}
	modules := newFakeModules()
	svc := NewCatalogService(nil, nil, modules, nil, nil, nil, nil, inv, nil, quietLogger(t))

	batch := []*learning.Module{
		{ProductID: "p1", Title: "A", Slug: "a"},
		{ProductID: "p1", Title: "B", Slug: "b"},
		{ProductID: "p1", Title: "C", Slug: "c"},
	}
	stored, err := svc.ImportModules(context.Background(), batch)
	if err != nil {
		t.Fatalf("ImportModules: %v", err)
	}
	if stored != 3 {
		t.Errorf("stored = %d", stored)
	}
	if len(inv.bulks) != 1 {
		t.Fatalf("expected exactly one bulk invalidation, got %d", len(inv.bulks))
	}
	if len(inv.bulks[0]) != 3 {
		t.Errorf("bulk op count = %d", len(inv.bulks[0]))
	}
	if len(inv.cascades) != 0 {
		t.Errorf("import must not fire per-entity cascades, got %v", inv.cascades)
	}
}

func TestDeleteModuleCascadesWhileRowExists(t *testing.T) {
	modules := newFakeModules()
	modules.modules["m1"] = &learning.Module{ID: "m1", ProductID: "p1", Title: "Concurrency"}

	// The module rule resolves its product through the module row, so the
	// cascade must fire before the delete removes it.
	inv := &fakeInvalidator{}
	var presentAtCascade bool
	inv.onCascade = func(entityType, entityID, operation string) {
		m, _ := modules.FindByID(entityID)
		presentAtCascade = m != nil
	}

	svc := NewCatalogService(nil, nil, modules, nil, nil, nil, nil, inv, nil, quietLogger(t))
	if err := svc.DeleteModule(context.Background(), "m1"); err != nil {
		t.Fatalf("DeleteModule: %v", err)
	}

	if len(inv.cascades) != 1 || inv.cascades[0] != "module:m1:delete" {
		t.Fatalf("cascades = %v", inv.cascades)
	}
	if !presentAtCascade {
		t.Fatal("cascade ran after the module row was removed")
	}
	if m, _ := modules.FindByID("m1"); m != nil {
		t.Fatal("module was not deleted")
	}
}

func TestDeleteExpertSessionCascadesWhileRowExists(t *testing.T) {
	sessions := newFakeSessions()
	sessions.sessions["es1"] = &learning.ExpertSession{ID: "es1", ClientID: "c1", Topic: "Office Hours"}

	inv := &fakeInvalidator{}
	var presentAtCascade bool
	inv.onCascade = func(entityType, entityID, operation string) {
		s, _ := sessions.FindByID(entityID)
		presentAtCascade = s != nil
	}

	svc := NewCatalogService(nil, nil, nil, nil, nil, sessions, nil, inv, nil, quietLogger(t))
	if err := svc.DeleteExpertSession(context.Background(), "es1"); err != nil {
		t.Fatalf("DeleteExpertSession: %v", err)
	}

	if len(inv.cascades) != 1 || inv.cascades[0] != "expert_session:es1:delete" {
		t.Fatalf("cascades = %v", inv.cascades)
	}
	if !presentAtCascade {
		t.Fatal("cascade ran after the session row was removed")
	}
	if s, _ := sessions.FindByID("es1"); s != nil {
		t.Fatal("session was not deleted")
	}
}

func TestCatalogStudentStatusConditional(t *testing.T) {
	inv := &fakeInvalidator{}
	students := newFakeStudents()
	students.Store(&learning.Student{ID: "s1", ClientID: "c1", Status: "active", Email: "a@example.com"})

	svc := NewCatalogService(nil, nil, nil, students, nil, nil, nil, inv, nil, quietLogger(t))

	// same status: no write, no invalidation
	if err := svc.SetStudentStatus(context.Background(), "s1", "active"); err != nil {
		t.Fatalf("SetStudentStatus noop: %v", err)
	}
	if students.updates != 0 || len(inv.conditional) != 0 {
		t.Fatalf("noop transition must not write or invalidate")
	}

	if err := svc.SetStudentStatus(context.Background(), "s1", "inactive"); err != nil {
		t.Fatalf("SetStudentStatus: %v", err)
	}
	if len(inv.conditional) != 1 {
		t.Fatalf("expected one conditional invalidation, got %d", len(inv.conditional))
	}
	if inv.conditional[0]["status"] != "inactive" {
		t.Errorf("conditions = %v", inv.conditional[0])
	}
}

func TestInterviewProcessPipeline(t *testing.T) {
	inv := &fakeInvalidator{}
	interviews := newFakeInterviews()
	students := newFakeStudents()
	modules := newFakeModules()
	mail := &fakeEmail{}

	students.Store(&learning.Student{ID: "s1", ClientID: "c1", FirstName: "Ada", Email: "ada@example.com", Status: "active"})
	modules.modules["m1"] = &learning.Module{ID: "m1", ProductID: "p1", Title: "Concurrency"}

	trans := &fakeTranscription{
		transcript: "I would use channels",
		grade:      &transcription.Grade{Score: 88, Feedback: "good"},
	}

	logger := quietLogger(t)
	tracker := performance.NewTracker(time.Second, logger)
	svc := NewInterviewService(interviews, students, modules, nil, trans, mail, inv, logger, tracker)

	iv, err := svc.Submit(context.Background(), "s1", "m1", "https://cdn.example.com/a.mp3")
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if iv.Status != "submitted" {
		t.Errorf("status after submit = %q", iv.Status)
	}

	if err := svc.Process(context.Background(), iv.ID); err != nil {
		t.Fatalf("Process: %v", err)
	}

	graded, _ := interviews.FindByID(iv.ID)
	if graded.Status != "graded" {
		t.Errorf("status = %q", graded.Status)
	}
	if graded.Score == nil || *graded.Score != 88 {
		t.Errorf("score = %v", graded.Score)
	}
	if graded.Transcript == nil || *graded.Transcript != "I would use channels" {
		t.Errorf("transcript = %v", graded.Transcript)
	}
	if len(mail.sent) != 1 || mail.sent[0] != "result:ada@example.com" {
		t.Errorf("emails = %v", mail.sent)
	}
	if len(inv.cascades) != 1 || inv.cascades[0] != "student:s1:interview_graded" {
		t.Errorf("cascades = %v", inv.cascades)
	}
}

func TestInterviewProcessGradeFailureMarksFailed(t *testing.T) {
	inv := &fakeInvalidator{}
	interviews := newFakeInterviews()
	students := newFakeStudents()
	modules := newFakeModules()

	students.Store(&learning.Student{ID: "s1", ClientID: "c1", Email: "a@example.com", Status: "active"})
	modules.modules["m1"] = &learning.Module{ID: "m1", Title: "Basics"}

	trans := &fakeTranscription{transcript: "text", failGrade: true}

	logger := quietLogger(t)
	tracker := performance.NewTracker(time.Second, logger)
	svc := NewInterviewService(interviews, students, modules, nil, trans, nil, inv, logger, tracker)

	iv, err := svc.Submit(context.Background(), "s1", "m1", "url")
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if err := svc.Process(context.Background(), iv.ID); err == nil {
		t.Fatal("expected grading error")
	}

	failed, _ := interviews.FindByID(iv.ID)
	if failed.Status != "failed" {
		t.Errorf("status = %q", failed.Status)
	}
	if len(inv.cascades) != 0 {
		t.Errorf("failed pipeline must not invalidate, got %v", inv.cascades)
	}
}

func TestContentServiceModuleContentCaches(t *testing.T) {
	m := newTestManager(t)
	logger := quietLogger(t)
	tracker := performance.NewTracker(time.Second, logger)

	modules := newFakeModules()
	modules.modules["m1"] = &learning.Module{ID: "m1", ProductID: "p1", Title: "Basics"}
	modules.lessons["m1"] = []*learning.Lesson{{ID: "l1", ModuleID: "m1", Title: "Intro", Kind: "video", Ordinal: 1}}

	svc := NewContentService(m, modules, nil, nil, logger, tracker)

	first, err := svc.ModuleContent(context.Background(), "m1", false)
	if err != nil {
		t.Fatalf("ModuleContent: %v", err)
	}
	if first.Module.Title != "Basics" || len(first.Lessons) != 1 {
		t.Fatalf("unexpected content %+v", first)
	}
	if err := m.Drain(context.Background()); err != nil {
		t.Fatalf("Drain: %v", err)
	}

	// mutate the backing fake; a cached read must not observe it
	modules.modules["m1"].Title = "Renamed"
	second, err := svc.ModuleContent(context.Background(), "m1", false)
	if err != nil {
		t.Fatalf("ModuleContent cached: %v", err)
	}
	if second.Module.Title != "Basics" {
		t.Errorf("cached read observed mutation: %q", second.Module.Title)
	}

	// force refresh recomputes
	third, err := svc.ModuleContent(context.Background(), "m1", true)
	if err != nil {
		t.Fatalf("ModuleContent forced: %v", err)
	}
	if third.Module.Title != "Renamed" {
		t.Errorf("forced read = %q", third.Module.Title)
	}
}
