package mail

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/luminacrm/lumina/internal/infra/queue"
	"gopkg.in/gomail.v2"
)

type EmailSender struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	To       string
}

func NewEmailSender(host string, port int, user, password, from, to string) *EmailSender {
	return &EmailSender{
		Host:     host,
		Port:     port,
		User:     user,
		Password: password,
		From:     from,
		To:       to,
	}
}

var alertTmpl = template.Must(template.New("alert").Parse(
	`Lead {{.Name}} ({{.Email}}){{if .Company}} at {{.Company}}{{end}} moved from {{.PreviousStatus}} to {{.Status}}.
{{if .Value}}Deal value: ${{printf "%.2f" .Value}}
{{end}}Lead ID: {{.LeadID}}
`))

// SendStatusAlert emails the sales inbox when a lead converts or is lost.
func (s *EmailSender) SendStatusAlert(payload queue.LeadEventPayload) error {
	var body bytes.Buffer
	if err := alertTmpl.Execute(&body, payload); err != nil {
		return fmt.Errorf("failed to render alert template: %w", err)
	}

	subject := fmt.Sprintf("Lead %s: %s", payload.Status, payload.Name)

	m := gomail.NewMessage()
	m.SetHeader("From", s.From)
	m.SetHeader("To", s.To)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body.String())

	d := gomail.NewDialer(s.Host, s.Port, s.User, s.Password)
	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send SMTP email: %w", err)
	}

	return nil
}
