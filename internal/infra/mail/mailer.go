package mail

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"strconv"

	"restaurant-app/internal/infra/logger"

	"github.com/go-gomail/gomail"
)

type Message struct {
	HTMLBody  string
	TextBody  string
	Subject   string
	EmailTo   string
	NameTo    string
	EmailFrom string
	NameFrom  string
}

var (
	errInvalidMessage = errors.New("mail message is not valid")
	errNoEmailBody    = errors.New("no email body was generated")
)

func (m *Message) Valid() bool {
	return (m != nil) &&
		len(m.EmailTo) > 0 &&
		len(m.EmailFrom) > 0 &&
		(len(m.HTMLBody) > 0 || len(m.TextBody) > 0)
}

type Sender interface {
	SendEmail(ctx context.Context, msg *Message) error
}

// SMTPSender delivers through an smtp:// or smtps:// endpoint.
type SMTPSender struct {
	endpoint string
	username string
	password string
}

var _ Sender = (*SMTPSender)(nil)

func NewSMTPSender(endpoint, username, password string) *SMTPSender {
	return &SMTPSender{endpoint: endpoint, username: username, password: password}
}

func smtpDialer(smtpURL, user, pass string) (*gomail.Dialer, error) {
	surl, err := url.Parse(smtpURL)
	if err != nil {
		return nil, err
	}

	var port int
	if i, err := strconv.Atoi(surl.Port()); err == nil {
		port = i
	} else if surl.Scheme == "smtp" {
		port = 25
	} else {
		port = 465
	}

	d := gomail.NewDialer(surl.Hostname(), port, user, pass)
	if surl.Scheme == "smtps" {
		d.SSL = true
	}

	return d, nil
}

func (s *SMTPSender) SendEmail(ctx context.Context, msg *Message) error {
	if !msg.Valid() {
		return errInvalidMessage
	}

	m := gomail.NewMessage()
	m.SetAddressHeader("To", msg.EmailTo, msg.NameTo)
	m.SetAddressHeader("From", msg.EmailFrom, msg.NameFrom)
	m.SetHeader("Subject", msg.Subject)

	hasBody := false
	if len(msg.TextBody) > 0 {
		m.SetBody("text/plain", msg.TextBody)
		hasBody = true
	}
	if len(msg.HTMLBody) > 0 {
		m.AddAlternative("text/html", msg.HTMLBody)
		hasBody = true
	}
	if !hasBody {
		return errNoEmailBody
	}

	dialer, err := smtpDialer(s.endpoint, s.username, s.password)
	if err != nil {
		return err
	}

	if err := dialer.DialAndSend(m); err != nil {
		slog.ErrorContext(ctx, "Failed to send an email", "email", msg.EmailTo, "host", dialer.Host,
			"port", dialer.Port, logger.ErrAttr(err))
		return err
	}

	return nil
}

// LogSender only logs messages. Used when SMTP is not configured.
type LogSender struct{}

func (LogSender) SendEmail(ctx context.Context, msg *Message) error {
	if !msg.Valid() {
		return errInvalidMessage
	}
	slog.InfoContext(ctx, "Email (not sent, SMTP disabled)", "to", msg.EmailTo, "subject", msg.Subject,
		"body", msg.TextBody)
	return nil
}

// Recorder keeps messages in memory; tests assert on it.
type Recorder struct {
	Sent []Message
}

func (r *Recorder) SendEmail(_ context.Context, msg *Message) error {
	if !msg.Valid() {
		return errInvalidMessage
	}
	r.Sent = append(r.Sent, *msg)
	return nil
}

var Default Sender = LogSender{}

func SetDefault(s Sender) {
	Default = s
}
