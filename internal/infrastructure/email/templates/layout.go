// Package templates provides email template layout
package templates

import (
	"bytes"
	"html/template"
	"log"
)

type EmailLayoutProps struct {
	Preheader  string
	Content    string
	FooterText string
}

// Internal template data structure with safe HTML typing
type emailTemplateData struct {
	Preheader  string
	Content    template.HTML // Mark as safe HTML to prevent escaping
	FooterText string
}

var emailLayoutTemplate = template.Must(template.New("emailLayout").Parse(`
<!doctype html>
<html lang="en">
  <head>
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <meta http-equiv="Content-Type" content="text/html; charset=UTF-8">
    <title>Upskill</title>
    <style media="all" type="text/css">
      @media only screen and (max-width: 640px) {
        .main p, .main td, .main span { font-size: 16px !important; }
        .wrapper { padding: 8px !important; }
        .container { padding: 0 !important; padding-top: 8px !important; width: 100% !important; }
      }
    </style>
  </head>
  <body style="font-family: Helvetica, sans-serif; background-color: #f4f5f6; margin: 0; padding: 0;">
    <span style="display: none; max-height: 0; overflow: hidden;">{{.Preheader}}</span>
    <table role="presentation" border="0" cellpadding="0" cellspacing="0" class="wrapper" width="100%" style="background-color: #f4f5f6;">
      <tr>
        <td>&nbsp;</td>
        <td class="container" style="max-width: 600px; margin: 0 auto; padding: 24px;">
          <table role="presentation" border="0" cellpadding="0" cellspacing="0" class="main" width="100%" style="background: #ffffff; border-radius: 8px;">
            <tr>
              <td style="padding: 24px;">{{.Content}}</td>
            </tr>
          </table>
          <p style="color: #9a9ea6; font-size: 13px; text-align: center; padding-top: 16px;">{{.FooterText}}</p>
        </td>
        <td>&nbsp;</td>
      </tr>
    </table>
  </body>
</html>
`))

// GetEmailLayout renders content inside the shared responsive shell.
func GetEmailLayout(props EmailLayoutProps) string {
	if props.FooterText == "" {
		props.FooterText = "Sent by Upskill"
	}

	data := emailTemplateData{
		Preheader:  props.Preheader,
		Content:    template.HTML(props.Content),
		FooterText: props.FooterText,
	}

	var buf bytes.Buffer
	if err := emailLayoutTemplate.Execute(&buf, data); err != nil {
		log.Printf("ERROR: failed to render email layout: %v", err)
		return props.Content
	}
	return buf.String()
}
