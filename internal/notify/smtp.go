package notify

import (
	"bytes"
	"context"
	"crypto/tls"
	"io"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"github.com/emersion/go-message/mail"
	"github.com/pkg/errors"
)

const (
	defaultDialTimeout    = 10 * time.Second
	defaultSessionTimeout = 30 * time.Second
)

type SMTPSender struct {
	host               string
	port               int
	username           string
	password           string
	useTLS             bool
	startTLS           bool
	insecureSkipVerify bool
}

func (s SMTPSender) Send(ctx context.Context, msg Message) error {
	raw, err := buildMIME(msg, time.Now())
	if err != nil {
		return errors.Wrap(err, "build message")
	}
	from, err := mail.ParseAddress(msg.From)
	if err != nil {
		return errors.Wrapf(err, "parse from %q", msg.From)
	}
	if err := s.deliver(ctx, from.Address, msg.To, raw); err != nil {
		return errors.Wrap(err, "smtp deliver")
	}
	return nil
}

// dial connects and upgrades to TLS when configured. A server that does not
// offer STARTTLS is used in plain text. The whole session is bounded by the
// ctx deadline, or defaultSessionTimeout without one.
func (s SMTPSender) dial(ctx context.Context) (*smtp.Client, error) {
	addr := net.JoinHostPort(s.host, strconv.Itoa(s.port))
	tlsConfig := &tls.Config{ServerName: s.host, InsecureSkipVerify: s.insecureSkipVerify}

	dialer := &net.Dialer{Timeout: defaultDialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, err
	}
	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(defaultSessionTimeout)
	}
	if err := conn.SetDeadline(deadline); err != nil {
		_ = conn.Close()
		return nil, err
	}
	if s.useTLS {
		conn = tls.Client(conn, tlsConfig)
	}

	client, err := smtp.NewClient(conn, s.host)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	if s.startTLS && !s.useTLS {
		if ok, _ := client.Extension("STARTTLS"); ok {
			if err := client.StartTLS(tlsConfig); err != nil {
				_ = client.Close()
				return nil, err
			}
		}
	}
	return client, nil
}

// Probe opens and politely closes a session with the relay.
func (s SMTPSender) Probe(ctx context.Context) error {
	client, err := s.dial(ctx)
	if err != nil {
		return errors.Wrap(err, "smtp probe")
	}
	defer client.Close()
	return client.Quit()
}

func (s SMTPSender) deliver(ctx context.Context, from string, rcpt []string, raw []byte) error {
	client, err := s.dial(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	if s.username != "" {
		if ok, _ := client.Extension("AUTH"); ok {
			if err := client.Auth(smtp.PlainAuth("", s.username, s.password, s.host)); err != nil {
				return err
			}
		}
	}

	if err := client.Mail(from); err != nil {
		return err
	}
	for _, r := range rcpt {
		if err := client.Rcpt(strings.TrimSpace(r)); err != nil {
			return err
		}
	}
	wc, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := wc.Write(raw); err != nil {
		return err
	}
	if err := wc.Close(); err != nil {
		return err
	}
	return client.Quit()
}

// buildMIME renders msg as multipart/alternative with a text and an HTML part.
func buildMIME(msg Message, now time.Time) ([]byte, error) {
	var h mail.Header
	h.SetDate(now)
	h.SetSubject(msg.Subject)

	from, err := mail.ParseAddress(msg.From)
	if err != nil {
		return nil, errors.Wrap(err, "from")
	}
	h.SetAddressList("From", []*mail.Address{from})

	to := make([]*mail.Address, 0, len(msg.To))
	for _, raw := range msg.To {
		a, err := mail.ParseAddress(raw)
		if err != nil {
			return nil, errors.Wrapf(err, "to %q", raw)
		}
		to = append(to, a)
	}
	h.SetAddressList("To", to)

	if strings.TrimSpace(msg.ReplyTo) != "" {
		rt, err := mail.ParseAddress(msg.ReplyTo)
		if err != nil {
			return nil, errors.Wrap(err, "reply-to")
		}
		h.SetAddressList("Reply-To", []*mail.Address{rt})
	}
	if err := h.GenerateMessageID(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w, err := mail.CreateInlineWriter(&buf, h)
	if err != nil {
		return nil, err
	}
	if msg.Text != "" {
		if err := writeInlinePart(w, "text/plain", msg.Text); err != nil {
			return nil, err
		}
	}
	if msg.HTML != "" {
		if err := writeInlinePart(w, "text/html", msg.HTML); err != nil {
			return nil, err
		}
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeInlinePart(w *mail.InlineWriter, contentType, body string) error {
	var ph mail.InlineHeader
	ph.SetContentType(contentType, map[string]string{"charset": "utf-8"})
	ph.Set("Content-Transfer-Encoding", "quoted-printable")
	pw, err := w.CreatePart(ph)
	if err != nil {
		return err
	}
	if _, err := io.WriteString(pw, body); err != nil {
		return err
	}
	return pw.Close()
}
