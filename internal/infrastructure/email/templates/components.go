// Package templates provides the content blocks for transactional emails
package templates

import (
	"bytes"
	"html/template"
	"log"
)

type InterviewResultProps struct {
	StudentName string
	LessonTitle string
	Score       float64
	Passed      bool
	Feedback    string
}

var interviewResultTemplate = template.Must(template.New("interviewResult").Parse(`
<h1 style="font-size: 22px; color: #1a1a2e;">Your interview has been graded</h1>
<p style="font-size: 15px; color: #3c3f49;">Hi {{.StudentName}},</p>
<p style="font-size: 15px; color: #3c3f49;">
  Your recorded interview for <strong>{{.LessonTitle}}</strong> has been reviewed.
</p>
<p style="font-size: 28px; color: {{if .Passed}}#2e7d32{{else}}#c62828{{end}}; font-weight: bold;">
  Score: {{printf "%.0f" .Score}}/100
</p>
{{if .Feedback}}
<p style="font-size: 15px; color: #3c3f49;">{{.Feedback}}</p>
{{end}}
<p style="font-size: 15px; color: #3c3f49;">
  {{if .Passed}}Great work, keep the momentum going.{{else}}You can record a new attempt from your module page.{{end}}
</p>
`))

// GetInterviewResultContent renders the interview grading result block.
func GetInterviewResultContent(props InterviewResultProps) string {
	var buf bytes.Buffer
	if err := interviewResultTemplate.Execute(&buf, props); err != nil {
		log.Printf("ERROR: failed to render interview result email: %v", err)
		return ""
	}
	return buf.String()
}

type EnrollmentProps struct {
	StudentName string
	ModuleTitle string
	ModuleURL   string
}

var enrollmentTemplate = template.Must(template.New("enrollment").Parse(`
<h1 style="font-size: 22px; color: #1a1a2e;">You're enrolled</h1>
<p style="font-size: 15px; color: #3c3f49;">Hi {{.StudentName}},</p>
<p style="font-size: 15px; color: #3c3f49;">
  You now have access to <strong>{{.ModuleTitle}}</strong>.
</p>
<table role="presentation" border="0" cellpadding="0" cellspacing="0">
  <tr>
    <td style="background-color: #0867ec; border-radius: 4px; text-align: center;">
      <a href="{{.ModuleURL}}" target="_blank" style="display: inline-block; color: #ffffff; text-decoration: none; padding: 12px 24px; font-size: 15px;">Start learning</a>
    </td>
  </tr>
</table>
`))

// GetEnrollmentContent renders the enrollment confirmation block.
func GetEnrollmentContent(props EnrollmentProps) string {
	var buf bytes.Buffer
	if err := enrollmentTemplate.Execute(&buf, props); err != nil {
		log.Printf("ERROR: failed to render enrollment email: %v", err)
		return ""
	}
	return buf.String()
}
