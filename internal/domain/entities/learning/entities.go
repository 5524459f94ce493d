// Package learning defines the application's core learning-domain entities.
package learning

import "time"

type Client struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Slug        string     `json:"slug"`
	ContactName string     `json:"contactName"`
	Email       string     `json:"email"`
	Status      string     `json:"status"`
	Created     time.Time  `json:"created"`
	Changed     *time.Time `json:"changed,omitempty"`
}

// ClientConfig is the per-client configuration blob served to the UI.
type ClientConfig struct {
	ClientID      string            `json:"clientId"`
	BrandColors   map[string]string `json:"brandColors,omitempty"`
	LogoPath      *string           `json:"logoPath,omitempty"`
	Features      map[string]bool   `json:"features,omitempty"`
	DefaultLocale string            `json:"defaultLocale"`
	Changed       *time.Time        `json:"changed,omitempty"`
}

type Product struct {
	ID          string     `json:"id"`
	ClientID    string     `json:"clientId"`
	Title       string     `json:"title"`
	Slug        string     `json:"slug"`
	Description *string    `json:"description,omitempty"`
	CoverPath   *string    `json:"coverPath,omitempty"`
	Status      string     `json:"status"`
	Created     time.Time  `json:"created"`
	Changed     *time.Time `json:"changed,omitempty"`
}

type Module struct {
	ID        string     `json:"id"`
	ProductID string     `json:"productId"`
	Title     string     `json:"title"`
	Slug      string     `json:"slug"`
	Ordinal   int        `json:"ordinal"`
	Status    string     `json:"status"`
	Created   time.Time  `json:"created"`
	Changed   *time.Time `json:"changed,omitempty"`
}

type Lesson struct {
	ID       string  `json:"id"`
	ModuleID string  `json:"moduleId"`
	Title    string  `json:"title"`
	Kind     string  `json:"kind"` // video, article, quiz, interview
	Ordinal  int     `json:"ordinal"`
	Body     *string `json:"body,omitempty"`
	MediaURL *string `json:"mediaUrl,omitempty"`
}

type Student struct {
	ID           string     `json:"id"`
	ClientID     string     `json:"clientId"`
	FirstName    string     `json:"firstName"`
	LastName     string     `json:"lastName"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	Status       string     `json:"status"` // active, inactive
	Created      time.Time  `json:"created"`
	Changed      *time.Time `json:"changed,omitempty"`
}

type Enrollment struct {
	ID          string     `json:"id"`
	StudentID   string     `json:"studentId"`
	ModuleID    string     `json:"moduleId"`
	Progress    float64    `json:"progress"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	Created     time.Time  `json:"created"`
}

type ExpertSession struct {
	ID           string     `json:"id"`
	ClientID     string     `json:"clientId"`
	ExpertName   string     `json:"expertName"`
	Topic        string     `json:"topic"`
	ScheduledAt  time.Time  `json:"scheduledAt"`
	DurationMin  int        `json:"durationMin"`
	Status       string     `json:"status"`
	RecordingURL *string    `json:"recordingUrl,omitempty"`
	Created      time.Time  `json:"created"`
	Changed      *time.Time `json:"changed,omitempty"`
}

type Interview struct {
	ID           string     `json:"id"`
	StudentID    string     `json:"studentId"`
	ModuleID     string     `json:"moduleId"`
	AudioURL     string     `json:"audioUrl"`
	TranscriptID *string    `json:"transcriptId,omitempty"`
	Transcript   *string    `json:"transcript,omitempty"`
	Score        *float64   `json:"score,omitempty"`
	Feedback     *string    `json:"feedback,omitempty"`
	Status       string     `json:"status"` // submitted, transcribing, graded, failed
	Created      time.Time  `json:"created"`
	GradedAt     *time.Time `json:"gradedAt,omitempty"`
}
