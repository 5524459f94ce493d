// Package email provides the email client for sending transactional emails.
package email

import (
	"fmt"

	"github.com/resendlabs/resend-go"

	"github.com/upskillhq/upskill-go/internal/infrastructure/email/templates"
	"github.com/upskillhq/upskill-go/pkg/config"
)

// Service defines the interface for sending emails, allowing for mock implementations in tests.
type Service interface {
	SendInterviewResultEmail(toEmail, studentName, lessonTitle string, score float64, feedback string) error
	SendEnrollmentEmail(toEmail, studentName, moduleTitle, moduleURL string) error
}

// ResendClient is the concrete implementation of the email Service using the Resend API.
type ResendClient struct {
	client    *resend.Client
	fromEmail string
	fromName  string
}

// NewService creates a new email service client, returning the Service interface.
func NewService() (Service, error) {
	if config.ResendAPIKey == "" {
		return nil, fmt.Errorf("RESEND_API_KEY environment variable is required")
	}

	return &ResendClient{
		client:    resend.NewClient(config.ResendAPIKey),
		fromEmail: config.EmailFrom,
		fromName:  config.EmailFromName,
	}, nil
}

const passingScore = 70

// SendInterviewResultEmail composes and sends the interview grading result.
func (c *ResendClient) SendInterviewResultEmail(toEmail, studentName, lessonTitle string, score float64, feedback string) error {
	passed := score >= passingScore

	subject := fmt.Sprintf("Your interview result for %s", lessonTitle)
	content := templates.GetInterviewResultContent(templates.InterviewResultProps{
		StudentName: studentName,
		LessonTitle: lessonTitle,
		Score:       score,
		Passed:      passed,
		Feedback:    feedback,
	})

	return c.send(toEmail, subject, content)
}

// SendEnrollmentEmail composes and sends the enrollment confirmation.
func (c *ResendClient) SendEnrollmentEmail(toEmail, studentName, moduleTitle, moduleURL string) error {
	subject := fmt.Sprintf("You're enrolled in %s", moduleTitle)
	content := templates.GetEnrollmentContent(templates.EnrollmentProps{
		StudentName: studentName,
		ModuleTitle: moduleTitle,
		ModuleURL:   moduleURL,
	})

	return c.send(toEmail, subject, content)
}

func (c *ResendClient) send(toEmail, subject, content string) error {
	htmlContent := templates.GetEmailLayout(templates.EmailLayoutProps{
		Content: content,
	})

	params := &resend.SendEmailRequest{
		From:    fmt.Sprintf("%s <%s>", c.fromName, c.fromEmail),
		To:      []string{toEmail},
		Subject: subject,
		Html:    htmlContent,
	}

	if _, err := c.client.Emails.Send(params); err != nil {
		return fmt.Errorf("failed to send email via Resend: %w", err)
	}
	return nil
}
