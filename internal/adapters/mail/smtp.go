package mail

import (
	"bytes"
	"context"
	"embed"
	"html/template"

	gomail "github.com/wneessen/go-mail"

	customErrors "github.com/okravchenko/contactbook/internal/domain/errors"
	"github.com/okravchenko/contactbook/internal/infra/config"
)

//go:embed templates/*.html
var templatesFS embed.FS

// SMTPSender delivers the confirmation and password-reset mails. All call
// sites are fire-and-forget: a delivery failure is logged by the caller and
// never fails the request that triggered it.
type SMTPSender struct {
	cfg       *config.Config
	templates *template.Template
}

func NewSMTPSender(cfg *config.Config) (*SMTPSender, error) {
	tpl, err := template.ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, customErrors.WrapInternal(err, "parse mail templates")
	}
	return &SMTPSender{cfg: cfg, templates: tpl}, nil
}

func (s *SMTPSender) SendConfirmation(ctx context.Context, email, username, link string) error {
	return s.send(ctx, email, "Confirm your email", "verify_email.html", username, link)
}

func (s *SMTPSender) SendPasswordReset(ctx context.Context, email, username, link string) error {
	return s.send(ctx, email, "Reset password", "reset_password.html", username, link)
}

func (s *SMTPSender) send(ctx context.Context, to, subject, tplName, username, link string) error {
	var body bytes.Buffer
	err := s.templates.ExecuteTemplate(&body, tplName, struct {
		Username string
		Link     string
	}{Username: username, Link: link})
	if err != nil {
		return customErrors.WrapInternal(err, "render mail template")
	}

	msg := gomail.NewMsg()
	if err := msg.FromFormat(s.cfg.MailFromName, s.cfg.MailFrom); err != nil {
		return customErrors.WrapInternal(err, "mail from")
	}
	if err := msg.To(to); err != nil {
		return customErrors.WrapInternal(err, "mail to")
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextHTML, body.String())

	client, err := gomail.NewClient(s.cfg.MailHost,
		gomail.WithPort(s.cfg.MailPort),
		gomail.WithSSL(),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(s.cfg.MailUsername),
		gomail.WithPassword(s.cfg.MailPassword),
	)
	if err != nil {
		return customErrors.WrapInternal(err, "smtp client")
	}
	return client.DialAndSendWithContext(ctx, msg)
}
