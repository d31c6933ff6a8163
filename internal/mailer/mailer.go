// Package mailer sends the transactional emails of the service: OTP
// verification codes and password-reset links.
package mailer

import (
	"fmt"

	gomail "github.com/wneessen/go-mail"
	"go.uber.org/zap"
)

// Mailer delivers transactional mail. Implementations return an error
// when delivery fails; callers surface it and retry manually.
type Mailer interface {
	SendOTP(to, code string) error
	SendPasswordReset(to, link string) error
}

// SMTPMailer sends through an SMTP relay using go-mail.
type SMTPMailer struct {
	client *gomail.Client
	from   string
}

// NewSMTP builds a mailer against the configured relay.
func NewSMTP(host string, port int, user, password, from string) (*SMTPMailer, error) {
	opts := []gomail.Option{
		gomail.WithPort(port),
		gomail.WithTLSPolicy(gomail.TLSOpportunistic),
	}
	if user != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(user),
			gomail.WithPassword(password),
		)
	}
	client, err := gomail.NewClient(host, opts...)
	if err != nil {
		return nil, fmt.Errorf("smtp client: %w", err)
	}
	return &SMTPMailer{client: client, from: from}, nil
}

func (m *SMTPMailer) send(to, subject, body string) error {
	msg := gomail.NewMsg()
	if err := msg.From(m.from); err != nil {
		return err
	}
	if err := msg.To(to); err != nil {
		return err
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextPlain, body)
	return m.client.DialAndSend(msg)
}

func (m *SMTPMailer) SendOTP(to, code string) error {
	body := fmt.Sprintf("Votre code de vérification : %s\n\nIl expire dans 10 minutes.", code)
	return m.send(to, "Code de vérification", body)
}

func (m *SMTPMailer) SendPasswordReset(to, link string) error {
	body := fmt.Sprintf("Réinitialisez votre mot de passe : %s\n\nCe lien expire dans 1 heure.", link)
	return m.send(to, "Réinitialisation du mot de passe", body)
}

// LogMailer logs instead of sending; used in development when no SMTP
// relay is configured.
type LogMailer struct{}

func (LogMailer) SendOTP(to, code string) error {
	zap.L().Info("otp email (not sent, no SMTP configured)", zap.String("to", to), zap.String("code", code))
	return nil
}

func (LogMailer) SendPasswordReset(to, link string) error {
	zap.L().Info("password reset email (not sent, no SMTP configured)", zap.String("to", to), zap.String("link", link))
	return nil
}
