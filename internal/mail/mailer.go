package mail

import (
    "fmt"
    "strconv"

    "gopkg.in/gomail.v2"
)

const (
    TemplateVerifyEmail   = "verify_email"
    TemplatePasswordReset = "reset_password"
)

// Mailer is the narrow delivery contract the auth service depends on.
// Delivery is best-effort; callers fire it from a goroutine and log failures.
type Mailer interface {
    Send(to, subject, templateName string, vars map[string]string) error
}

type SMTPConfig struct {
    Host     string
    Port     string
    Username string
    Password string
    From     string
    FromName string
}

type SMTPMailer struct {
    cfg SMTPConfig
}

func NewSMTPMailer(cfg SMTPConfig) *SMTPMailer {
    return &SMTPMailer{cfg: cfg}
}

func (m *SMTPMailer) Send(to, subject, templateName string, vars map[string]string) error {
    body, err := renderTemplate(templateName, vars)
    if err != nil {
        return err
    }
    msg := gomail.NewMessage()
    msg.SetAddressHeader("From", m.cfg.From, m.cfg.FromName)
    msg.SetHeader("To", to)
    msg.SetHeader("Subject", subject)
    msg.SetBody("text/html", body)

    port, err := strconv.Atoi(m.cfg.Port)
    if err != nil {
        port = 587
    }
    dialer := gomail.NewDialer(m.cfg.Host, port, m.cfg.Username, m.cfg.Password)
    return dialer.DialAndSend(msg)
}

func renderTemplate(name string, vars map[string]string) (string, error) {
    switch name {
    case TemplateVerifyEmail:
        return fmt.Sprintf(
            `<p>Hello %s,</p><p>Confirm your email by opening the link below:</p><p><a href="%s/api/auth/confirm/%s">Confirm email</a></p>`,
            vars["username"], vars["host"], vars["token"],
        ), nil
    case TemplatePasswordReset:
        return fmt.Sprintf(
            `<p>Hello %s,</p><p>Use the token below to reset your password:</p><p><code>%s</code></p><p>If you did not request this, ignore this message.</p>`,
            vars["username"], vars["token"],
        ), nil
    default:
        return "", fmt.Errorf("unknown mail template %q", name)
    }
}

// Noop is used when SMTP is not configured; messages are dropped.
type Noop struct{}

func (Noop) Send(string, string, string, map[string]string) error { return nil }
