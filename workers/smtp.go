package workers

import (
	"fmt"

	"github.com/badoux/checkmail"
	"gopkg.in/gomail.v2"

	"github.com/jasonroy7dct/mailbag-server/config"
)

// SMTPWorker delivers one outbound message per call. Single attempt, no
// queueing; the transport's failure reason is surfaced in the returned error.
type SMTPWorker struct {
	server config.MailServer
}

func NewSMTPWorker(server config.MailServer) *SMTPWorker {
	return &SMTPWorker{server: server}
}

// Send submits one plain-text message through the relay.
func (w *SMTPWorker) Send(to, from, subject, text string) error {
	if err := checkmail.ValidateFormat(to); err != nil {
		return fmt.Errorf("invalid recipient address %q: %w", to, err)
	}
	if err := checkmail.ValidateFormat(from); err != nil {
		return fmt.Errorf("invalid sender address %q: %w", from, err)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", text)

	d := gomail.NewDialer(w.server.Host, w.server.Port, w.server.Username, w.server.Password)
	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send mail to %s: %w", to, err)
	}

	return nil
}
