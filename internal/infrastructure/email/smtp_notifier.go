// Package email delivers assignment and status-change notifications over
// plain SMTP. Every send is best-effort: callers log failures and never
// let them fail the record mutation that triggered them.
package email

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net"
	"net/smtp"
	"strconv"

	"nctrack/internal/bootstrap/config"
	"nctrack/internal/bootstrap/logging"
	"nctrack/internal/domain/nc"
	"nctrack/internal/errs"
	"nctrack/internal/ports"
)

var errNoRecipient = errors.New("no valid recipient email")

type SMTPNotifier struct {
	cfg config.EmailConfig
}

var _ ports.Notifier = (*SMTPNotifier)(nil)

func NewSMTPNotifier(cfg config.EmailConfig) *SMTPNotifier {
	return &SMTPNotifier{cfg: cfg}
}

func (n *SMTPNotifier) NCAssigned(ctx context.Context, record ports.NonConformance) error {
	to, person, err := recipient(record)
	if err != nil {
		return err
	}

	subject := fmt.Sprintf("NC #%d Assigned to You: %s", record.ID, record.Title)
	body, err := renderTemplate(assignmentTemplate, templateData{
		Record:  record,
		Person:  person,
		LinkURL: n.recordURL(record.ID),
	})
	if err != nil {
		return errs.Wrap(err, "render assignment email")
	}

	return n.send(ctx, to, subject, body)
}

func (n *SMTPNotifier) NCStatusChanged(ctx context.Context, record ports.NonConformance, oldStatus string) error {
	to, person, err := recipient(record)
	if err != nil {
		return err
	}

	subject := fmt.Sprintf("NC #%d Status Updated: %s", record.ID, record.Status)
	body, err := renderTemplate(statusChangeTemplate, templateData{
		Record:    record,
		Person:    person,
		OldStatus: oldStatus,
		LinkURL:   n.recordURL(record.ID),
	})
	if err != nil {
		return errs.Wrap(err, "render status change email")
	}

	return n.send(ctx, to, subject, body)
}

func recipient(record ports.NonConformance) (to string, person string, err error) {
	if record.ResponsiblePersonEmail == nil || !nc.ValidEmail(*record.ResponsiblePersonEmail) {
		return "", "", errNoRecipient
	}
	if record.ResponsiblePerson != nil {
		person = *record.ResponsiblePerson
	}
	return *record.ResponsiblePersonEmail, person, nil
}

func (n *SMTPNotifier) recordURL(id int64) string {
	return fmt.Sprintf("%s/ncs/%d", n.cfg.BaseURL, id)
}

func (n *SMTPNotifier) send(ctx context.Context, to, subject, body string) error {
	if !n.cfg.Enabled {
		logging.Info(ctx, "email notifications disabled, skipping send", slog.String("to", to))
		return nil
	}

	var message bytes.Buffer
	fmt.Fprintf(&message, "From: %s\r\n", n.cfg.From)
	fmt.Fprintf(&message, "To: %s\r\n", to)
	fmt.Fprintf(&message, "Subject: %s\r\n", subject)
	message.WriteString("MIME-Version: 1.0\r\n")
	message.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	message.WriteString("\r\n")
	message.WriteString(body)

	addr := net.JoinHostPort(n.cfg.Host, strconv.Itoa(n.cfg.Port))
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return errs.Wrapf(err, "connect smtp server %s", addr)
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, n.cfg.Host)
	if err != nil {
		return errs.Wrap(err, "create smtp client")
	}
	defer client.Close()

	// Dev relays like Mailpit run without auth; only authenticate when
	// credentials are configured, and tolerate servers that reject AUTH.
	if n.cfg.Username != "" && n.cfg.Password != "" {
		auth := smtp.PlainAuth("", n.cfg.Username, n.cfg.Password, n.cfg.Host)
		_ = client.Auth(auth)
	}

	if err := client.Mail(n.cfg.From); err != nil {
		return errs.Wrap(err, "set sender")
	}
	if err := client.Rcpt(to); err != nil {
		return errs.Wrap(err, "set recipient")
	}

	wc, err := client.Data()
	if err != nil {
		return errs.Wrap(err, "open data transfer")
	}
	if _, err := wc.Write(message.Bytes()); err != nil {
		_ = wc.Close()
		return errs.Wrap(err, "write message")
	}
	if err := wc.Close(); err != nil {
		return errs.Wrap(err, "finish data transfer")
	}

	logging.Info(ctx, "notification email sent", slog.String("to", to), slog.String("subject", subject))
	return nil
}

type templateData struct {
	Record    ports.NonConformance
	Person    string
	OldStatus string
	LinkURL   string
}

func renderTemplate(tpl *template.Template, data templateData) (string, error) {
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func orDash(v *string) string {
	if v == nil || *v == "" {
		return "Not specified"
	}
	return *v
}

var templateFuncs = template.FuncMap{
	"orDash": orDash,
}

var assignmentTemplate = template.Must(template.New("assignment").Funcs(templateFuncs).Parse(`
<h2>Non-Conformance Assignment Notification</h2>
<p>Hello {{.Person}},</p>
<p>A non-conformance has been assigned to you:</p>
<div style="background-color: #f3f4f6; padding: 15px; border-radius: 5px; margin: 20px 0;">
  <h3 style="margin-top: 0;">NC #{{.Record.ID}}: {{.Record.Title}}</h3>
  <p><strong>Status:</strong> {{.Record.Status}}</p>
  <p><strong>Severity:</strong> {{.Record.Severity}}</p>
  <p><strong>Department:</strong> {{orDash .Record.Department}}</p>
  <p><strong>Due Date:</strong> {{orDash .Record.DueDate}}</p>
  <p><strong>Description:</strong></p>
  <p>{{.Record.Description}}</p>
</div>
<p>Please review and take appropriate action.</p>
<p><a href="{{.LinkURL}}">View NC Details</a></p>
<hr style="margin: 30px 0; border: none; border-top: 1px solid #e5e7eb;">
<p style="color: #6b7280; font-size: 12px;">This is an automated notification from the NC Tracker system.</p>
`))

var statusChangeTemplate = template.Must(template.New("status_change").Funcs(templateFuncs).Parse(`
<h2>Non-Conformance Status Update</h2>
<p>Hello {{.Person}},</p>
<p>The status of NC #{{.Record.ID}} assigned to you has been updated:</p>
<div style="background-color: #f3f4f6; padding: 15px; border-radius: 5px; margin: 20px 0;">
  <h3 style="margin-top: 0;">NC #{{.Record.ID}}: {{.Record.Title}}</h3>
  <p><strong>Previous Status:</strong> {{.OldStatus}}</p>
  <p><strong>New Status:</strong> {{.Record.Status}}</p>
  <p><strong>Severity:</strong> {{.Record.Severity}}</p>
  <p><strong>Department:</strong> {{orDash .Record.Department}}</p>
</div>
<p><a href="{{.LinkURL}}">View NC Details</a></p>
<hr style="margin: 30px 0; border: none; border-top: 1px solid #e5e7eb;">
<p style="color: #6b7280; font-size: 12px;">This is an automated notification from the NC Tracker system.</p>
`))
