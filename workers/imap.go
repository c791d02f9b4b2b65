package workers

import (
	"bytes"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"
	"github.com/emersion/go-message/mail"

	"github.com/jasonroy7dct/mailbag-server/config"
	"github.com/jasonroy7dct/mailbag-server/models"
)

// ErrMessageNotFound is returned when a fetch by UID matches no message in
// the selected mailbox.
var ErrMessageNotFound = errors.New("message not found")

// imapSession is the slice of the go-imap client the worker uses. Every
// operation runs against a fresh session: dial, operate, logout.
type imapSession interface {
	Select(name string, readOnly bool) (*imap.MailboxStatus, error)
	List(ref, name string, ch chan *imap.MailboxInfo) error
	Fetch(seqset *imap.SeqSet, items []imap.FetchItem, ch chan *imap.Message) error
	UidFetch(seqset *imap.SeqSet, items []imap.FetchItem, ch chan *imap.Message) error
	UidCopy(seqset *imap.SeqSet, dest string) error
	UidStore(seqset *imap.SeqSet, item imap.StoreItem, value interface{}, ch chan *imap.Message) error
	Expunge(ch chan uint32) error
	Logout() error
}

// IMAPWorker performs one-shot retrieval operations against the mail store.
// Connection details are held per instance; nothing is shared or pooled
// across calls, and a connection error aborts the in-flight operation with
// no retry.
type IMAPWorker struct {
	server       config.MailServer
	trashMailbox string
	fallbackFrom string

	dial func() (imapSession, error)
}

func NewIMAPWorker(server config.MailServer, trashMailbox, fallbackFrom string) *IMAPWorker {
	w := &IMAPWorker{
		server:       server,
		trashMailbox: trashMailbox,
		fallbackFrom: fallbackFrom,
	}
	w.dial = w.connect
	return w
}

func (w *IMAPWorker) connect() (imapSession, error) {
	addr := fmt.Sprintf("%s:%d", w.server.Host, w.server.Port)

	var c *client.Client
	var err error
	switch strings.ToUpper(w.server.Encryption) {
	case "SSL", "TLS":
		c, err = client.DialTLS(addr, &tls.Config{ServerName: w.server.Host})
	case "STARTTLS":
		c, err = client.Dial(addr)
		if err == nil {
			err = c.StartTLS(&tls.Config{ServerName: w.server.Host})
		}
	default:
		c, err = client.Dial(addr)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to IMAP server %s: %w", addr, err)
	}

	if err := c.Login(w.server.Username, w.server.Password); err != nil {
		_ = c.Logout()
		return nil, fmt.Errorf("failed to login to IMAP server: %w", err)
	}

	return c, nil
}

// ListMailboxes retrieves the folder hierarchy and flattens it into a list.
// A parent's entry always precedes its descendants' entries.
func (w *IMAPWorker) ListMailboxes() ([]models.Mailbox, error) {
	c, err := w.dial()
	if err != nil {
		return nil, err
	}
	defer c.Logout()

	ch := make(chan *imap.MailboxInfo, 10)
	done := make(chan error, 1)
	go func() {
		done <- c.List("", "*", ch)
	}()

	var infos []*imap.MailboxInfo
	for info := range ch {
		infos = append(infos, info)
	}
	if err := <-done; err != nil {
		return nil, fmt.Errorf("failed to list mailboxes: %w", err)
	}

	return flattenMailboxes(buildMailboxTree(infos)), nil
}

// buildMailboxTree assembles the typed folder tree from the flat LIST
// response, creating intermediate nodes for any parent the server did not
// report explicitly. First-seen order is preserved.
func buildMailboxTree(infos []*imap.MailboxInfo) []*models.MailboxNode {
	var roots []*models.MailboxNode
	index := make(map[string]*models.MailboxNode)

	for _, info := range infos {
		segments := []string{info.Name}
		if info.Delimiter != "" {
			segments = strings.Split(info.Name, info.Delimiter)
		}

		path := ""
		var parent *models.MailboxNode
		for _, segment := range segments {
			if path == "" {
				path = segment
			} else {
				path = path + info.Delimiter + segment
			}

			node, ok := index[path]
			if !ok {
				node = &models.MailboxNode{Name: segment, Path: path}
				index[path] = node
				if parent == nil {
					roots = append(roots, node)
				} else {
					parent.Children = append(parent.Children, node)
				}
			}
			parent = node
		}
	}

	return roots
}

// flattenMailboxes walks the tree in pre-order: each node is appended before
// any of its children are visited.
func flattenMailboxes(nodes []*models.MailboxNode) []models.Mailbox {
	mailboxes := make([]models.Mailbox, 0, len(nodes))

	var walk func(nodes []*models.MailboxNode)
	walk = func(nodes []*models.MailboxNode) {
		for _, node := range nodes {
			mailboxes = append(mailboxes, models.Mailbox{Name: node.Name, Path: node.Path})
			walk(node.Children)
		}
	}
	walk(nodes)

	return mailboxes
}

// ListMessages returns envelope summaries for every message in the mailbox.
// A mailbox reporting zero messages returns an empty list without a fetch.
func (w *IMAPWorker) ListMessages(mailbox string) ([]models.MessageSummary, error) {
	c, err := w.dial()
	if err != nil {
		return nil, err
	}
	defer c.Logout()

	mbox, err := c.Select(mailbox, true)
	if err != nil {
		return nil, fmt.Errorf("failed to select mailbox %q: %w", mailbox, err)
	}

	if mbox.Messages == 0 {
		return []models.MessageSummary{}, nil
	}

	seqset := new(imap.SeqSet)
	seqset.AddRange(1, mbox.Messages)

	ch := make(chan *imap.Message, 10)
	done := make(chan error, 1)
	go func() {
		done <- c.Fetch(seqset, []imap.FetchItem{imap.FetchEnvelope, imap.FetchUid}, ch)
	}()

	summaries := make([]models.MessageSummary, 0, mbox.Messages)
	for msg := range ch {
		summaries = append(summaries, w.summarize(msg))
	}
	if err := <-done; err != nil {
		return nil, fmt.Errorf("failed to fetch messages in %q: %w", mailbox, err)
	}

	return summaries, nil
}

// summarize maps a fetched message to the summary DTO. Some stores omit the
// envelope From on drafts; those fall back to the configured user address.
func (w *IMAPWorker) summarize(msg *imap.Message) models.MessageSummary {
	summary := models.MessageSummary{
		ID:   strconv.FormatUint(uint64(msg.Uid), 10),
		From: w.fallbackFrom,
	}

	if env := msg.Envelope; env != nil {
		summary.Date = env.Date.Format(time.RFC1123Z)
		summary.Subject = env.Subject
		if len(env.From) > 0 && env.From[0] != nil && env.From[0].MailboxName != "" {
			summary.From = env.From[0].Address()
		}
	}

	return summary
}

// GetMessageBody fetches one message by UID and returns its decoded plain
// text.
func (w *IMAPWorker) GetMessageBody(mailbox string, uid uint32) (string, error) {
	c, err := w.dial()
	if err != nil {
		return "", err
	}
	defer c.Logout()

	if _, err := c.Select(mailbox, true); err != nil {
		return "", fmt.Errorf("failed to select mailbox %q: %w", mailbox, err)
	}

	seqset := new(imap.SeqSet)
	seqset.AddNum(uid)
	section := &imap.BodySectionName{Peek: true}

	ch := make(chan *imap.Message, 1)
	done := make(chan error, 1)
	go func() {
		done <- c.UidFetch(seqset, []imap.FetchItem{section.FetchItem()}, ch)
	}()

	var msg *imap.Message
	for m := range ch {
		if msg == nil {
			msg = m
		}
	}
	if err := <-done; err != nil {
		return "", fmt.Errorf("failed to fetch message %d in %q: %w", uid, mailbox, err)
	}
	if msg == nil {
		return "", ErrMessageNotFound
	}

	body := msg.GetBody(section)
	if body == nil {
		return "", fmt.Errorf("server returned no body for message %d", uid)
	}

	return extractPlainText(body)
}

// extractPlainText decodes a raw RFC 2822 message and returns its text/plain
// part. When the message has no plain part the HTML part is returned, and
// when MIME parsing fails entirely the raw text is returned as-is.
func extractPlainText(r io.Reader) (string, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("failed to read message body: %w", err)
	}

	mr, err := mail.CreateReader(bytes.NewReader(raw))
	if err != nil {
		return string(raw), nil
	}
	defer mr.Close()

	htmlBody := ""
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		} else if err != nil {
			break
		}

		header, ok := part.Header.(*mail.InlineHeader)
		if !ok {
			continue
		}

		contentType, _, _ := header.ContentType()
		body, err := io.ReadAll(part.Body)
		if err != nil {
			continue
		}

		switch {
		case strings.HasPrefix(contentType, "text/plain"):
			return string(body), nil
		case strings.HasPrefix(contentType, "text/html"):
			htmlBody = string(body)
		}
	}

	if htmlBody != "" {
		return htmlBody, nil
	}
	return string(raw), nil
}

// DeleteMessage moves a message to the trash mailbox and removes it from its
// original mailbox. The underlying protocol only exposes copy and delete, so
// the move is emulated; a message already in the trash is only deleted.
func (w *IMAPWorker) DeleteMessage(mailbox string, uid uint32) error {
	c, err := w.dial()
	if err != nil {
		return err
	}
	defer c.Logout()

	if _, err := c.Select(mailbox, false); err != nil {
		return fmt.Errorf("failed to select mailbox %q: %w", mailbox, err)
	}

	seqset := new(imap.SeqSet)
	seqset.AddNum(uid)

	if mailbox != w.trashMailbox {
		if err := c.UidCopy(seqset, w.trashMailbox); err != nil {
			return fmt.Errorf("failed to copy message %d to %q: %w", uid, w.trashMailbox, err)
		}
	}

	item := imap.FormatFlagsOp(imap.AddFlags, true)
	flags := []interface{}{imap.DeletedFlag}
	if err := c.UidStore(seqset, item, flags, nil); err != nil {
		return fmt.Errorf("failed to flag message %d as deleted: %w", uid, err)
	}

	if err := c.Expunge(nil); err != nil {
		return fmt.Errorf("failed to expunge mailbox %q: %w", mailbox, err)
	}

	return nil
}
