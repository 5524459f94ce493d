// Package transcription wraps the AssemblyAI SDK for interview
// transcription and LeMUR-based rubric grading.
package transcription

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	assemblyai "github.com/AssemblyAI/assemblyai-go-sdk"

	"github.com/upskillhq/upskill-go/internal/infrastructure/observability/logging"
)

const (
	transcribeTimeout = 5 * time.Minute
	gradeTimeout      = 30 * time.Second
	gradeModel        = "anthropic/claude-3-5-sonnet"
)

// Service defines the transcription operations the interview pipeline
// needs, allowing for fakes in tests.
type Service interface {
	TranscribeFromURL(ctx context.Context, audioURL string) (id, text string, err error)
	GradeTranscript(ctx context.Context, transcript, lessonTitle string) (*Grade, error)
}

// Grade is the structured result of rubric scoring.
type Grade struct {
	Score    float64 `json:"score"`
	Feedback string  `json:"feedback"`
}

// Client is the concrete AssemblyAI-backed implementation.
type Client struct {
	client *assemblyai.Client
	logger *logging.ChanneledLogger
}

// NewClient creates a transcription client with the given API key.
func NewClient(apiKey string, logger *logging.ChanneledLogger) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("ASSEMBLYAI_API_KEY environment variable is required")
	}
	return &Client{
		client: assemblyai.NewClient(apiKey),
		logger: logger,
	}, nil
}

// TranscribeFromURL submits the recording and waits for the transcript.
func (c *Client) TranscribeFromURL(ctx context.Context, audioURL string) (string, string, error) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, transcribeTimeout)
	defer cancel()

	transcript, err := c.client.Transcripts.TranscribeFromURL(ctx, audioURL, &assemblyai.TranscriptOptionalParams{})
	if err != nil {
		return "", "", fmt.Errorf("failed to transcribe recording: %w", err)
	}

	var id, text string
	if transcript.ID != nil {
		id = *transcript.ID
	}
	if transcript.Text != nil {
		text = *transcript.Text
	}
	if text == "" {
		return id, "", errors.New("transcript came back empty")
	}

	if c.logger != nil {
		c.logger.Interview().Info("Recording transcribed",
			"transcriptId", id, "chars", len(text), "duration", time.Since(start))
	}
	return id, text, nil
}

// GradeTranscript scores the transcript against the lesson rubric via LeMUR.
func (c *Client) GradeTranscript(ctx context.Context, transcript, lessonTitle string) (*Grade, error) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, gradeTimeout)
	defer cancel()

	prompt := fmt.Sprintf(
		`You are grading a spoken interview answer for the lesson %q. `+
			`Score the answer from 0 to 100 for accuracy, depth and clarity, `+
			`then give two sentences of feedback. `+
			`Respond with only a JSON object: {"score": <number>, "feedback": "<text>"}`,
		lessonTitle)

	var params assemblyai.LeMURTaskParams
	params.Prompt = assemblyai.String(prompt)
	params.InputText = assemblyai.String(transcript)
	params.FinalModel = assemblyai.LeMURModel(gradeModel)
	params.MaxOutputSize = assemblyai.Int64(512)
	params.Temperature = assemblyai.Float64(0.2)

	response, err := c.client.LeMUR.Task(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to grade transcript: %w", err)
	}
	if response.Response == nil {
		return nil, errors.New("grading came back empty")
	}

	grade, err := parseGrade(*response.Response)
	if err != nil {
		return nil, err
	}

	if c.logger != nil {
		c.logger.Interview().Info("Transcript graded",
			"score", grade.Score, "duration", time.Since(start))
	}
	return grade, nil
}

// parseGrade extracts the JSON grade object from the model's response,
// tolerating surrounding prose.
func parseGrade(raw string) (*Grade, error) {
	begin := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if begin == -1 || end <= begin {
		return nil, fmt.Errorf("no grade object in response: %q", raw)
	}

	var grade Grade
	if err := json.Unmarshal([]byte(raw[begin:end+1]), &grade); err != nil {
		return nil, fmt.Errorf("failed to decode grade: %w", err)
	}
	if grade.Score < 0 || grade.Score > 100 {
		return nil, fmt.Errorf("grade score out of range: %v", grade.Score)
	}
	return &grade, nil
}
