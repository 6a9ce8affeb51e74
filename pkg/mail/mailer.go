package mail

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"mime"
	"net"
	"net/mail"
	"net/smtp"
	"strings"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Mathew1327/Construction-tracker/pkg/logger"
	"github.com/Mathew1327/Construction-tracker/pkg/metrics"
)

const (
	// DefaultSenderName is the display name used when none is configured.
	DefaultSenderName = "Construction Tracker"

	defaultTimeout = 10 * time.Second
)

var mimeWordEncoder = mime.QEncoding

// ErrSMTPDisabled is returned by Send when outbound email is switched off.
var ErrSMTPDisabled = errors.New("mail: smtp delivery disabled")

// Message is a plain text email to one or more team members.
type Message struct {
	To      []string
	Subject string
	Body    string
}

// Mailer delivers account notifications.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPSettings configure the SMTP relay.
type SMTPSettings struct {
	Enabled    bool
	Host       string
	Port       int
	Username   string
	Password   string
	From       string
	SenderName string
	UseTLS     bool
	Timeout    time.Duration
}

func (s SMTPSettings) address() string {
	return net.JoinHostPort(s.Host, fmt.Sprint(s.Port))
}

type smtpClient interface {
	Mail(string) error
	Rcpt(string) error
	Data() (io.WriteCloser, error)
	Quit() error
	Close() error
	StartTLS(*tls.Config) error
	Auth(smtp.Auth) error
	Extension(string) (bool, string)
}

type dialFunc func(ctx context.Context, cfg SMTPSettings) (smtpClient, error)

// SMTPMailer sends messages through a single SMTP relay, one connection per message.
type SMTPMailer struct {
	cfg    SMTPSettings
	sender *mail.Address
	dial   dialFunc
	now    func() time.Time
	log    *zap.Logger
}

// NewSMTPMailer validates settings and returns a mailer. A disabled mailer is
// valid and fails every Send with ErrSMTPDisabled.
func NewSMTPMailer(cfg SMTPSettings) (*SMTPMailer, error) {
	cfg.Host = strings.TrimSpace(cfg.Host)
	cfg.SenderName = strings.TrimSpace(cfg.SenderName)
	if cfg.SenderName == "" {
		cfg.SenderName = DefaultSenderName
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	m := &SMTPMailer{
		cfg:  cfg,
		dial: dialSMTP,
		now:  time.Now,
		log:  logger.WithModule("mail"),
	}
	if !cfg.Enabled {
		return m, nil
	}

	switch {
	case cfg.Host == "":
		return nil, errors.New("mail: smtp host is required when enabled")
	case cfg.Port <= 0:
		return nil, errors.New("mail: smtp port is required when enabled")
	}

	sender, err := mail.ParseAddress(strings.TrimSpace(cfg.From))
	if err != nil {
		return nil, fmt.Errorf("mail: invalid sender address %q: %w", cfg.From, err)
	}
	if sender.Name == "" {
		sender.Name = cfg.SenderName
	}
	m.sender = sender
	return m, nil
}

// Send delivers msg. Failures are logged and counted before being returned.
func (m *SMTPMailer) Send(ctx context.Context, msg Message) (err error) {
	if !m.cfg.Enabled {
		return ErrSMTPDisabled
	}
	if ctx == nil {
		ctx = context.Background()
	}

	recipients, err := parseRecipients(msg.To)
	if err != nil {
		return err
	}

	defer func() {
		if err != nil {
			metrics.EmailDeliveries.WithLabelValues("failure").Inc()
			m.log.Warn("email delivery failed",
				zap.Strings("to", recipients),
				zap.String("subject", msg.Subject),
				zap.Error(err))
			return
		}
		metrics.EmailDeliveries.WithLabelValues("success").Inc()
		m.log.Debug("email delivered", zap.Strings("to", recipients), zap.String("subject", msg.Subject))
	}()

	client, err := m.dial(ctx, m.cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			err = multierr.Append(err, ignoreClosed(client.Close()))
		}
	}()

	if err = authenticate(client, m.cfg); err != nil {
		return err
	}
	if err = client.Mail(m.sender.Address); err != nil {
		return fmt.Errorf("mail: MAIL FROM: %w", err)
	}
	for _, rcpt := range recipients {
		if err = client.Rcpt(rcpt); err != nil {
			return fmt.Errorf("mail: RCPT TO %s: %w", rcpt, err)
		}
	}

	wc, err := client.Data()
	if err != nil {
		return fmt.Errorf("mail: DATA: %w", err)
	}
	payload := m.compose(recipients, msg)
	if _, err = io.WriteString(wc, payload); err != nil {
		return multierr.Append(fmt.Errorf("mail: write message: %w", err), wc.Close())
	}
	if err = wc.Close(); err != nil {
		return fmt.Errorf("mail: finish message: %w", err)
	}
	if err = client.Quit(); err != nil {
		return fmt.Errorf("mail: QUIT: %w", err)
	}
	return nil
}

func (m *SMTPMailer) compose(recipients []string, msg Message) string {
	var b strings.Builder
	header := func(name, value string) {
		b.WriteString(name)
		b.WriteString(": ")
		b.WriteString(value)
		b.WriteString("\r\n")
	}

	header("From", m.sender.String())
	header("To", strings.Join(recipients, ", "))
	header("Subject", mimeHeader(msg.Subject))
	header("Date", m.now().Format(time.RFC1123Z))
	header("MIME-Version", "1.0")
	header("Content-Type", "text/plain; charset=UTF-8")
	b.WriteString("\r\n")
	b.WriteString(normaliseLineEndings(msg.Body))
	return b.String()
}

// parseRecipients trims, de-duplicates and validates addresses in order.
func parseRecipients(addresses []string) ([]string, error) {
	seen := make(map[string]struct{}, len(addresses))
	out := make([]string, 0, len(addresses))
	for _, raw := range addresses {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		addr, err := mail.ParseAddress(raw)
		if err != nil {
			return nil, fmt.Errorf("mail: invalid recipient %q: %w", raw, err)
		}
		key := strings.ToLower(addr.Address)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, addr.Address)
	}
	if len(out) == 0 {
		return nil, errors.New("mail: at least one recipient is required")
	}
	return out, nil
}

// mimeHeader strips line breaks and Q-encodes non-ASCII text.
func mimeHeader(value string) string {
	value = strings.NewReplacer("\r", " ", "\n", " ").Replace(value)
	return mimeWordEncoder.Encode("UTF-8", value)
}

func normaliseLineEndings(body string) string {
	body = strings.ReplaceAll(body, "\r\n", "\n")
	return strings.ReplaceAll(body, "\n", "\r\n")
}

func authenticate(client smtpClient, cfg SMTPSettings) error {
	if strings.TrimSpace(cfg.Username) == "" {
		return nil
	}
	if ok, _ := client.Extension("AUTH"); !ok {
		return errors.New("mail: relay does not support AUTH")
	}
	if err := client.Auth(smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)); err != nil {
		return fmt.Errorf("mail: auth: %w", err)
	}
	return nil
}

func dialSMTP(ctx context.Context, cfg SMTPSettings) (smtpClient, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	netDialer := &net.Dialer{Timeout: cfg.Timeout}
	var (
		conn net.Conn
		err  error
	)
	if cfg.UseTLS {
		tlsDialer := &tls.Dialer{NetDialer: netDialer, Config: &tls.Config{ServerName: cfg.Host}}
		conn, err = tlsDialer.DialContext(ctx, "tcp", cfg.address())
	} else {
		conn, err = netDialer.DialContext(ctx, "tcp", cfg.address())
	}
	if err != nil {
		return nil, fmt.Errorf("mail: dial %s: %w", cfg.address(), err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline.Add(cfg.Timeout))
	}

	client, err := smtp.NewClient(conn, cfg.Host)
	if err != nil {
		return nil, multierr.Append(fmt.Errorf("mail: handshake: %w", err), conn.Close())
	}
	if !cfg.UseTLS {
		if ok, _ := client.Extension("STARTTLS"); ok {
			if err := client.StartTLS(&tls.Config{ServerName: cfg.Host}); err != nil {
				return nil, multierr.Append(fmt.Errorf("mail: starttls: %w", err), client.Close())
			}
		}
	}
	return client, nil
}

func ignoreClosed(err error) error {
	if err == nil || errors.Is(err, net.ErrClosed) {
		return nil
	}
	return err
}
