package notify

import (
	"context"
	"fmt"
	"log"

	"github.com/fortifiedfantasy/fein-server/internal/domain"
	mail "github.com/go-mail/mail"
)

// Sender delivers a one-time code on a channel. Delivery is fire-and-forget:
// a failed send is a UX event, never a correctness one.
type Sender interface {
	SendCode(ctx context.Context, channel domain.CodeChannel, to, code string) error
}

// SMTPSender delivers email codes over SMTP via go-mail.
type SMTPSender struct {
	Host string
	Port int
	From string
	User string
	Pass string
}

func NewSMTPSender(host string, port int, from, user, pass string) *SMTPSender {
	return &SMTPSender{Host: host, Port: port, From: from, User: user, Pass: pass}
}

func (s *SMTPSender) SendCode(_ context.Context, channel domain.CodeChannel, to, code string) error {
	if channel != domain.ChannelEmail {
		return fmt.Errorf("smtp sender cannot deliver channel %q", channel)
	}

	m := mail.NewMessage()
	m.SetHeader("From", s.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", "Your Fortified Fantasy sign-in code")
	m.SetBody("text/plain", fmt.Sprintf("Your sign-in code is %s. It expires in 10 minutes.", code))
	m.AddAlternative("text/html", fmt.Sprintf(
		"<p>Your sign-in code is <strong>%s</strong>.</p><p>It expires in 10 minutes.</p>", code))

	d := mail.NewDialer(s.Host, s.Port, s.User, s.Pass)
	return d.DialAndSend(m)
}

// LogSender writes codes to the process log. Stands in for SMS delivery and
// for email in development.
type LogSender struct{}

func (LogSender) SendCode(_ context.Context, channel domain.CodeChannel, to, code string) error {
	log.Printf("[notify] %s code for %s: %s", channel, to, code)
	return nil
}

// Multi routes email to Email and everything else to Fallback.
type Multi struct {
	Email    Sender
	Fallback Sender
}

func (m Multi) SendCode(ctx context.Context, channel domain.CodeChannel, to, code string) error {
	if channel == domain.ChannelEmail && m.Email != nil {
		return m.Email.SendCode(ctx, channel, to, code)
	}
	return m.Fallback.SendCode(ctx, channel, to, code)
}
