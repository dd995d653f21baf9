package mailer

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-listview/components/listview"
)

// ErrNoRecipients is returned when a message has nobody to send to.
var ErrNoRecipients = errors.New("mailer: no recipients")

// SMTPConfig configures an SMTPDispatcher.
type SMTPConfig struct {
	Host     string `mapstructure:"host" validate:"required_with=Port"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from" validate:"omitempty,email"`
}

// SendFunc matches smtp.SendMail.
type SendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPDispatcher delivers bulk email through an SMTP relay.
type SMTPDispatcher struct {
	cfg  SMTPConfig
	send SendFunc
	now  func() time.Time
}

var _ listview.EmailDispatcher = (*SMTPDispatcher)(nil)

// NewSMTPDispatcher validates the config. A nil send uses smtp.SendMail.
func NewSMTPDispatcher(cfg SMTPConfig, send SendFunc) (*SMTPDispatcher, error) {
	if cfg.Host == "" {
		return nil, errors.New("mailer: smtp host is required")
	}
	if cfg.Port == 0 {
		cfg.Port = 587
	}
	if cfg.From == "" {
		return nil, errors.New("mailer: from address is required")
	}
	if send == nil {
		send = smtp.SendMail
	}
	return &SMTPDispatcher{cfg: cfg, send: send, now: time.Now}, nil
}

func (d *SMTPDispatcher) Send(ctx context.Context, msg listview.EmailMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(msg.Recipients) == 0 {
		return ErrNoRecipients
	}
	var auth smtp.Auth
	if d.cfg.Username != "" {
		auth = smtp.PlainAuth("", d.cfg.Username, d.cfg.Password, d.cfg.Host)
	}
	addr := net.JoinHostPort(d.cfg.Host, strconv.Itoa(d.cfg.Port))
	if err := d.send(addr, auth, d.cfg.From, msg.Recipients, d.compose(msg)); err != nil {
		return fmt.Errorf("mailer: send to %d recipients: %w", len(msg.Recipients), err)
	}
	return nil
}

func (d *SMTPDispatcher) compose(msg listview.EmailMessage) []byte {
	var b strings.Builder
	b.WriteString("From: " + d.cfg.From + "\r\n")
	b.WriteString("To: " + strings.Join(msg.Recipients, ", ") + "\r\n")
	b.WriteString("Subject: " + subject(msg) + "\r\n")
	b.WriteString("Date: " + d.now().Format(time.RFC1123Z) + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n\r\n")
	b.WriteString(strings.ReplaceAll(msg.Body, "\n", "\r\n"))
	b.WriteString("\r\n")
	return []byte(b.String())
}

func subject(msg listview.EmailMessage) string {
	s := strings.TrimSpace(strings.NewReplacer("\r", " ", "\n", " ").Replace(msg.Subject))
	if s == "" {
		return "Message from " + msg.ListCode
	}
	return s
}

// LogDispatcher writes messages to a zap logger instead of sending them.
type LogDispatcher struct {
	Logger *zap.Logger
}

var _ listview.EmailDispatcher = LogDispatcher{}

func (d LogDispatcher) Send(_ context.Context, msg listview.EmailMessage) error {
	if len(msg.Recipients) == 0 {
		return ErrNoRecipients
	}
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger.Info("email dispatched",
		zap.String("list_code", msg.ListCode),
		zap.Strings("recipients", msg.Recipients),
		zap.Strings("record_ids", msg.RecordIDs),
		zap.String("subject", subject(msg)),
	)
	return nil
}
