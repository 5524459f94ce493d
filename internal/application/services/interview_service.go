package services

import (
	"context"
	"fmt"
	"time"

	"github.com/upskillhq/upskill-go/internal/domain/entities/learning"
	"github.com/upskillhq/upskill-go/internal/domain/repositories"
	"github.com/upskillhq/upskill-go/internal/infrastructure/caching/interfaces"
	"github.com/upskillhq/upskill-go/internal/infrastructure/email"
	"github.com/upskillhq/upskill-go/internal/infrastructure/observability/logging"
	"github.com/upskillhq/upskill-go/internal/infrastructure/observability/performance"
	"github.com/upskillhq/upskill-go/internal/infrastructure/security"
	"github.com/upskillhq/upskill-go/internal/infrastructure/transcription"
)

// InterviewService runs the grading pipeline: transcribe the recording,
// score the transcript, persist the result, email the student and
// invalidate their cached aggregates. Processing is synchronous; the
// handler decides whether to run it in a goroutine.
type InterviewService struct {
	interviews    repositories.InterviewRepository
	students      repositories.StudentRepository
	modules       repositories.ModuleRepository
	activity      repositories.ActivityRepository
	transcription transcription.Service
	email         email.Service
	invalidator   interfaces.Invalidator
	logger        *logging.ChanneledLogger
	perfTracker   *performance.Tracker
}

func NewInterviewService(
	interviews repositories.InterviewRepository,
	students repositories.StudentRepository,
	modules repositories.ModuleRepository,
	activity repositories.ActivityRepository,
	transcriptionService transcription.Service,
	emailService email.Service,
	invalidator interfaces.Invalidator,
	logger *logging.ChanneledLogger,
	perfTracker *performance.Tracker,
) *InterviewService {
	return &InterviewService{
		interviews:    interviews,
		students:      students,
		modules:       modules,
		activity:      activity,
		transcription: transcriptionService,
		email:         emailService,
		invalidator:   invalidator,
		logger:        logger,
		perfTracker:   perfTracker,
	}
}

// Submit registers the interview and returns it in "submitted" state.
func (s *InterviewService) Submit(ctx context.Context, studentID, moduleID, audioURL string) (*learning.Interview, error) {
	student, err := s.students.FindByID(studentID)
	if err != nil {
		return nil, err
	}
	if student == nil {
		return nil, fmt.Errorf("student %s not found", studentID)
	}
	module, err := s.modules.FindByID(moduleID)
	if err != nil {
		return nil, err
	}
	if module == nil {
		return nil, fmt.Errorf("module %s not found", moduleID)
	}

	interview := &learning.Interview{
		ID:        security.GenerateULID(),
		StudentID: studentID,
		ModuleID:  moduleID,
		AudioURL:  audioURL,
		Status:    "submitted",
		Created:   time.Now().UTC(),
	}
	if err := s.interviews.Store(interview); err != nil {
		return nil, err
	}

	s.logger.Interview().Info("Interview submitted", "id", interview.ID, "studentId", studentID, "moduleId", moduleID)
	return interview, nil
}

// Process runs the full pipeline for a submitted interview.
func (s *InterviewService) Process(ctx context.Context, interviewID string) error {
	marker := s.perfTracker.StartOperation("process_interview")
	defer marker.Complete()
	marker.AddMetadata("interviewId", interviewID)

	interview, err := s.interviews.FindByID(interviewID)
	if err != nil {
		marker.SetError(err)
		return err
	}
	if interview == nil {
		err := fmt.Errorf("interview %s not found", interviewID)
		marker.SetError(err)
		return err
	}

	interview.Status = "transcribing"
	if err := s.interviews.Update(interview); err != nil {
		marker.SetError(err)
		return err
	}

	transcriptID, transcript, err := s.transcription.TranscribeFromURL(ctx, interview.AudioURL)
	if err != nil {
		s.failInterview(interview, "transcription failed", err)
		marker.SetError(err)
		return err
	}
	interview.TranscriptID = &transcriptID
	interview.Transcript = &transcript

	module, err := s.modules.FindByID(interview.ModuleID)
	if err != nil || module == nil {
		if err == nil {
			err = fmt.Errorf("module %s not found", interview.ModuleID)
		}
		s.failInterview(interview, "module lookup failed", err)
		marker.SetError(err)
		return err
	}

	grade, err := s.transcription.GradeTranscript(ctx, transcript, module.Title)
	if err != nil {
		s.failInterview(interview, "grading failed", err)
		marker.SetError(err)
		return err
	}

	now := time.Now().UTC()
	interview.Score = &grade.Score
	interview.Feedback = &grade.Feedback
	interview.Status = "graded"
	interview.GradedAt = &now
	if err := s.interviews.Update(interview); err != nil {
		marker.SetError(err)
		return err
	}

	s.logger.Interview().Info("Interview graded", "id", interview.ID, "score", grade.Score)

	student, err := s.students.FindByID(interview.StudentID)
	if err == nil && student != nil {
		if s.activity != nil {
			if recErr := s.activity.Record(student.ClientID, student.ID, interview.ID, "interview", "graded"); recErr != nil {
				s.logger.Analytics().Warn("Activity record failed", "interviewId", interview.ID)
			}
		}
		if s.email != nil {
			if mailErr := s.email.SendInterviewResultEmail(student.Email, student.FirstName, module.Title, grade.Score, grade.Feedback); mailErr != nil {
				s.logger.Email().Warn("Interview result email failed", "interviewId", interview.ID, "error", mailErr.Error())
			}
		}
	}

	s.invalidator.CascadeInvalidation(ctx, "student", interview.StudentID, "interview_graded")
	return nil
}

func (s *InterviewService) failInterview(interview *learning.Interview, reason string, cause error) {
	s.logger.Interview().Error("Interview processing failed", "id", interview.ID, "reason", reason, "error", cause.Error())
	interview.Status = "failed"
	if err := s.interviews.Update(interview); err != nil {
		s.logger.Interview().Error("Failed to mark interview failed", "id", interview.ID, "error", err.Error())
	}
}
