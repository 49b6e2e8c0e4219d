package mailer

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"net/mail"
	"net/smtp"
	"strconv"
	"time"

	"github.com/Adda-Baaj/khobor-mailer/internal/logger"
)

// Mailer delivers one message.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// Session is the SMTP conversation used by SMTPMailer. *smtp.Client
// satisfies it.
type Session interface {
	StartTLS(config *tls.Config) error
	Auth(a smtp.Auth) error
	Mail(from string) error
	Rcpt(to string) error
	Data() (io.WriteCloser, error)
	Quit() error
	Close() error
}

// Dialer opens a session to addr.
type Dialer func(ctx context.Context, addr string) (Session, error)

// SMTPConfig holds the relay address and login.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
}

// Option customises an SMTPMailer.
type Option func(*SMTPMailer)

// WithDialer replaces the network dialer.
func WithDialer(d Dialer) Option {
	return func(m *SMTPMailer) {
		if d != nil {
			m.dial = d
		}
	}
}

// WithClock overrides the Date header clock.
func WithClock(now func() time.Time) Option {
	return func(m *SMTPMailer) {
		if now != nil {
			m.now = now
		}
	}
}

// SMTPMailer sends mail through an authenticated STARTTLS relay.
type SMTPMailer struct {
	cfg  SMTPConfig
	dial Dialer
	now  func() time.Time
	log  logger.Logger
}

// NewSMTPMailer validates cfg and builds a mailer.
func NewSMTPMailer(cfg SMTPConfig, log logger.Logger, opts ...Option) (*SMTPMailer, error) {
	if cfg.Host == "" {
		return nil, errors.New("smtp host is required")
	}
	if cfg.Port <= 0 {
		return nil, fmt.Errorf("smtp port %d is invalid", cfg.Port)
	}
	if cfg.Username == "" || cfg.Password == "" {
		return nil, errors.New("smtp username and password are required (use a Gmail app password)")
	}

	// The login is the bare address even when a display name is configured.
	if addr, err := mail.ParseAddress(cfg.Username); err == nil {
		cfg.Username = addr.Address
	}

	m := &SMTPMailer{
		cfg:  cfg,
		dial: DialSMTP,
		now:  time.Now,
		log:  logger.Ensure(log),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Addr returns host:port of the relay.
func (m *SMTPMailer) Addr() string {
	return net.JoinHostPort(m.cfg.Host, strconv.Itoa(m.cfg.Port))
}

// Send runs dial, STARTTLS, AUTH, MAIL, RCPT, DATA and QUIT. The session is
// closed on every path.
func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	if err := msg.Validate(); err != nil {
		return fmt.Errorf("invalid message: %w", err)
	}
	from, to, err := msg.envelope()
	if err != nil {
		return fmt.Errorf("invalid message: %w", err)
	}
	raw, err := msg.Bytes(m.now())
	if err != nil {
		return err
	}

	addr := m.Addr()
	sess, err := m.dial(ctx, addr)
	if err != nil {
		return fmt.Errorf("smtp dial %s: %w", addr, err)
	}
	defer func() { _ = sess.Close() }()

	if err := sess.StartTLS(&tls.Config{ServerName: m.cfg.Host, MinVersion: tls.VersionTLS12}); err != nil {
		return fmt.Errorf("smtp starttls: %w", err)
	}
	if err := sess.Auth(smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)); err != nil {
		return fmt.Errorf("smtp auth: %w", err)
	}
	if err := sess.Mail(from); err != nil {
		return fmt.Errorf("smtp mail from: %w", err)
	}
	if err := sess.Rcpt(to); err != nil {
		return fmt.Errorf("smtp rcpt to: %w", err)
	}

	w, err := sess.Data()
	if err != nil {
		return fmt.Errorf("smtp data: %w", err)
	}
	if _, err := w.Write(raw); err != nil {
		_ = w.Close()
		return fmt.Errorf("smtp write body: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("smtp end data: %w", err)
	}
	if err := sess.Quit(); err != nil {
		return fmt.Errorf("smtp quit: %w", err)
	}

	m.log.InfoObj("mail sent", "mail_sent", map[string]any{
		"relay": addr,
		"to":    msg.To,
		"bytes": len(raw),
	})
	return nil
}

// DialSMTP opens a plain TCP connection and greets the relay. A context
// deadline is applied to the whole conversation.
func DialSMTP(ctx context.Context, addr string) (Session, error) {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return nil, err
	}

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, err
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	c, err := smtp.NewClient(conn, host)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	return c, nil
}
