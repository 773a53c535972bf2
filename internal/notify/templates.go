package notify

import (
	"bytes"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"
	"time"
)

type ContactEmail struct {
	Name      string
	Email     string
	Message   string
	Signature string
	SentAt    time.Time
}

var ownerHTML = htmltemplate.Must(htmltemplate.New("owner").Parse(`<!DOCTYPE html>
<html>
  <head>
    <meta charset="utf-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>New Contact Form Submission</title>
  </head>
  <body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
    <div style="background: linear-gradient(135deg, #667eea 0%, #764ba2 100%); color: white; padding: 30px 20px; border-radius: 8px 8px 0 0; text-align: center;">
      <h1 style="margin: 0; font-size: 24px;">New Contact Form Submission</h1>
      <p style="margin: 10px 0 0 0; opacity: 0.9;">From your portfolio website</p>
    </div>
    <div style="background: #f8f9fa; padding: 30px 20px; border-radius: 0 0 8px 8px;">
      <p><strong>Name:</strong> {{.Name}}</p>
      <p><strong>Email:</strong> <a href="mailto:{{.Email}}" style="color: #667eea; text-decoration: none;">{{.Email}}</a></p>
      <p><strong>Message:</strong></p>
      <div style="background: white; padding: 12px; border: 1px solid #dee2e6; border-radius: 4px; white-space: pre-wrap;">{{.Message}}</div>
    </div>
    <p style="font-size: 14px; color: #6c757d; text-align: center;">This message was sent from your portfolio contact form.<br>Timestamp: {{.SentAt.Format "2006-01-02 15:04:05 MST"}}</p>
  </body>
</html>
`))

var ownerText = texttemplate.Must(texttemplate.New("owner").Parse(`New contact form submission

Name: {{.Name}}
Email: {{.Email}}

{{.Message}}

Sent {{.SentAt.Format "2006-01-02 15:04:05 MST"}}
`))

var confirmationHTML = htmltemplate.Must(htmltemplate.New("confirmation").Parse(`<!DOCTYPE html>
<html>
  <head>
    <meta charset="utf-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Message Confirmation</title>
  </head>
  <body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
    <div style="background: linear-gradient(135deg, #28a745 0%, #20c997 100%); color: white; padding: 30px 20px; border-radius: 8px 8px 0 0; text-align: center;">
      <h1 style="margin: 0; font-size: 24px;">Message Sent Successfully!</h1>
      <p style="margin: 10px 0 0 0; opacity: 0.9;">Thank you for reaching out</p>
    </div>
    <div style="background: #f8f9fa; padding: 30px 20px; border-radius: 0 0 8px 8px;">
      <p>Hi {{.Name}},</p>
      <p>Thank you for contacting me through my portfolio website. I've received your message and will get back to you as soon as possible.</p>
      <p><strong>Here's a copy of your message:</strong></p>
      <div style="background: white; padding: 20px; border: 1px solid #dee2e6; border-radius: 4px; white-space: pre-wrap;">{{.Message}}</div>
      <p>I typically respond within 24-48 hours during business days. If your inquiry is urgent, please feel free to mention it in a follow-up email.</p>
      <p>Best regards,<br>{{.Signature}}</p>
    </div>
    <p style="font-size: 14px; color: #6c757d; text-align: center;">This is an automated confirmation email.<br>Sent: {{.SentAt.Format "2006-01-02 15:04:05 MST"}}</p>
  </body>
</html>
`))

var confirmationText = texttemplate.Must(texttemplate.New("confirmation").Parse(`Hi {{.Name}},

Thank you for contacting me through my portfolio website. I've received your message and will get back to you as soon as possible.

Here's a copy of your message:

{{.Message}}

Best regards,
{{.Signature}}
`))

const confirmationSubject = "Message Received - Thank You for Contacting Me"

// ContactNotification is the message sent to the site owner. Replies go to
// the visitor.
func ContactNotification(from, to string, data ContactEmail) (Message, error) {
	html, text, err := render(ownerHTML, ownerText, data)
	if err != nil {
		return Message{}, err
	}
	return Message{
		From:    from,
		To:      []string{to},
		ReplyTo: data.Email,
		Subject: "Portfolio Contact: " + oneLine(data.Name),
		HTML:    html,
		Text:    text,
	}, nil
}

// ContactConfirmation is the copy sent back to the visitor.
func ContactConfirmation(from string, data ContactEmail) (Message, error) {
	html, text, err := render(confirmationHTML, confirmationText, data)
	if err != nil {
		return Message{}, err
	}
	return Message{
		From:    from,
		To:      []string{data.Email},
		Subject: confirmationSubject,
		HTML:    html,
		Text:    text,
	}, nil
}

func render(h *htmltemplate.Template, t *texttemplate.Template, data ContactEmail) (string, string, error) {
	if data.SentAt.IsZero() {
		data.SentAt = time.Now().UTC()
	}
	var hb, tb bytes.Buffer
	if err := h.Execute(&hb, data); err != nil {
		return "", "", err
	}
	if err := t.Execute(&tb, data); err != nil {
		return "", "", err
	}
	return hb.String(), tb.String(), nil
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
