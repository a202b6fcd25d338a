// Package mailer delivers confirmation codes.
package mailer

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"net/smtp"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"yamdb/internal/config"

	"github.com/rs/zerolog/log"
)

type Message struct {
	To      string
	Subject string
	Body    string
}

// Sender delivers a message or reports why it could not.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// New returns the backend selected by EMAIL_BACKEND.
func New(cfg *config.Config) Sender {
	if cfg.EmailBackend == "smtp" {
		return &SMTPSender{
			Addr: net.JoinHostPort(cfg.SMTPHost, strconv.Itoa(cfg.SMTPPort)),
			Host: cfg.SMTPHost,
			From: cfg.EmailFrom,
			User: cfg.SMTPUsername,
			Pass: cfg.SMTPPassword,
		}
	}
	return ConsoleSender{From: cfg.EmailFrom}
}

// ConsoleSender writes messages to the log instead of sending them.
type ConsoleSender struct {
	From string
}

func (s ConsoleSender) Send(ctx context.Context, msg Message) error {
	log.Info().
		Str("from", s.From).
		Str("to", msg.To).
		Str("subject", msg.Subject).
		Str("body", msg.Body).
		Msg("email")
	return nil
}

type SMTPSender struct {
	Addr string
	Host string
	From string
	User string
	Pass string
}

// defaultSendTimeout bounds a send whose context has no deadline.
const defaultSendTimeout = 30 * time.Second

// Send runs one SMTP session. The connection deadline follows ctx, and
// cancelling ctx closes the connection.
func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, defaultSendTimeout)
		defer cancel()
	}

	conn, err := (&net.Dialer{}).DialContext(ctx, "tcp", s.Addr)
	if err != nil {
		return fmt.Errorf("smtp dial %s: %w", s.Addr, err)
	}
	defer conn.Close()
	deadline, _ := ctx.Deadline()
	if err := conn.SetDeadline(deadline); err != nil {
		return fmt.Errorf("smtp deadline: %w", err)
	}
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	if err := s.session(conn, msg); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = ctxErr
		} else if errors.Is(err, os.ErrDeadlineExceeded) {
			err = context.DeadlineExceeded
		}
		return fmt.Errorf("smtp send to %s: %w", msg.To, err)
	}
	return nil
}

func (s *SMTPSender) session(conn net.Conn, msg Message) error {
	c, err := smtp.NewClient(conn, s.Host)
	if err != nil {
		return err
	}
	defer c.Close()

	if ok, _ := c.Extension("STARTTLS"); ok {
		if err := c.StartTLS(&tls.Config{ServerName: s.Host}); err != nil {
			return err
		}
	}
	if s.User != "" {
		if err := c.Auth(smtp.PlainAuth("", s.User, s.Pass, s.Host)); err != nil {
			return err
		}
	}
	if err := c.Mail(s.From); err != nil {
		return err
	}
	if err := c.Rcpt(msg.To); err != nil {
		return err
	}
	w, err := c.Data()
	if err != nil {
		return err
	}
	if _, err := io.WriteString(w, s.render(msg)); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return c.Quit()
}

func (s *SMTPSender) render(msg Message) string {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", s.From)
	fmt.Fprintf(&b, "To: %s\r\n", msg.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", msg.Subject)
	b.WriteString("MIME-Version: 1.0\r\nContent-Type: text/plain; charset=UTF-8\r\n\r\n")
	b.WriteString(msg.Body)
	return b.String()
}

// Outbox keeps messages in memory. Setting Err makes every Send fail.
type Outbox struct {
	mu       sync.Mutex
	messages []Message
	Err      error
}

func (o *Outbox) Send(ctx context.Context, msg Message) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.Err != nil {
		return o.Err
	}
	o.messages = append(o.messages, msg)
	return nil
}

func (o *Outbox) Messages() []Message {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]Message(nil), o.messages...)
}

// Last returns the most recent message sent to addr.
func (o *Outbox) Last(addr string) (Message, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	for i := len(o.messages) - 1; i >= 0; i-- {
		if o.messages[i].To == addr {
			return o.messages[i], true
		}
	}
	return Message{}, false
}

func (o *Outbox) SetErr(err error) {
	o.mu.Lock()
	o.Err = err
	o.mu.Unlock()
}
