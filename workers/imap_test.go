package workers

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/emersion/go-imap"

	"github.com/jasonroy7dct/mailbag-server/config"
)

type fakeSession struct {
	infos    []*imap.MailboxInfo
	status   *imap.MailboxStatus
	messages []*imap.Message
	calls    []string

	selectErr error
}

func (f *fakeSession) Select(name string, readOnly bool) (*imap.MailboxStatus, error) {
	f.calls = append(f.calls, "select "+name)
	if f.selectErr != nil {
		return nil, f.selectErr
	}
	return f.status, nil
}

func (f *fakeSession) List(ref, name string, ch chan *imap.MailboxInfo) error {
	f.calls = append(f.calls, "list")
	for _, info := range f.infos {
		ch <- info
	}
	close(ch)
	return nil
}

func (f *fakeSession) Fetch(seqset *imap.SeqSet, items []imap.FetchItem, ch chan *imap.Message) error {
	f.calls = append(f.calls, "fetch")
	for _, msg := range f.messages {
		ch <- msg
	}
	close(ch)
	return nil
}

func (f *fakeSession) UidFetch(seqset *imap.SeqSet, items []imap.FetchItem, ch chan *imap.Message) error {
	f.calls = append(f.calls, "uidfetch")
	for _, msg := range f.messages {
		ch <- msg
	}
	close(ch)
	return nil
}

func (f *fakeSession) UidCopy(seqset *imap.SeqSet, dest string) error {
	f.calls = append(f.calls, "copy "+dest)
	return nil
}

func (f *fakeSession) UidStore(seqset *imap.SeqSet, item imap.StoreItem, value interface{}, ch chan *imap.Message) error {
	f.calls = append(f.calls, "store")
	return nil
}

func (f *fakeSession) Expunge(ch chan uint32) error {
	f.calls = append(f.calls, "expunge")
	return nil
}

func (f *fakeSession) Logout() error {
	f.calls = append(f.calls, "logout")
	return nil
}

func newTestWorker(session *fakeSession) *IMAPWorker {
	w := NewIMAPWorker(config.MailServer{Host: "mail.example.com", Port: 993}, "Deleted", "user@example.com")
	w.dial = func() (imapSession, error) { return session, nil }
	return w
}

func info(name, delimiter string) *imap.MailboxInfo {
	return &imap.MailboxInfo{Name: name, Delimiter: delimiter}
}

func TestListMailboxesPreOrder(t *testing.T) {
	session := &fakeSession{infos: []*imap.MailboxInfo{
		info("INBOX", "/"),
		info("Work", "/"),
		info("Work/Reports", "/"),
		info("Work/Reports/2024", "/"),
		info("Work/Archive", "/"),
		info("Deleted", "/"),
	}}
	w := newTestWorker(session)

	mailboxes, err := w.ListMailboxes()
	if err != nil {
		t.Fatalf("ListMailboxes: %v", err)
	}

	if len(mailboxes) != len(session.infos) {
		t.Fatalf("got %d mailboxes, want %d", len(mailboxes), len(session.infos))
	}

	// A parent's entry must precede all of its descendants' entries.
	position := make(map[string]int)
	for i, mb := range mailboxes {
		position[mb.Path] = i
	}
	for _, mb := range mailboxes {
		for ancestor := range position {
			if ancestor != mb.Path && strings.HasPrefix(mb.Path, ancestor+"/") {
				if position[ancestor] > position[mb.Path] {
					t.Errorf("ancestor %q listed after descendant %q", ancestor, mb.Path)
				}
			}
		}
	}

	if mailboxes[3].Name != "2024" || mailboxes[3].Path != "Work/Reports/2024" {
		t.Errorf("unexpected deep entry: %+v", mailboxes[3])
	}
}

func TestListMailboxesEmptyServer(t *testing.T) {
	w := newTestWorker(&fakeSession{})

	mailboxes, err := w.ListMailboxes()
	if err != nil {
		t.Fatalf("ListMailboxes: %v", err)
	}
	if len(mailboxes) != 0 {
		t.Fatalf("got %d mailboxes, want 0", len(mailboxes))
	}
}

func TestBuildMailboxTreeCreatesMissingParents(t *testing.T) {
	roots := buildMailboxTree([]*imap.MailboxInfo{info("Parent/Child", "/")})

	if len(roots) != 1 {
		t.Fatalf("got %d roots, want 1", len(roots))
	}
	parent := roots[0]
	if parent.Name != "Parent" || parent.Path != "Parent" {
		t.Fatalf("unexpected parent node: %+v", parent)
	}
	if len(parent.Children) != 1 || parent.Children[0].Path != "Parent/Child" {
		t.Fatalf("unexpected children: %+v", parent.Children)
	}
}

func TestListMessagesEmptyMailboxShortCircuits(t *testing.T) {
	session := &fakeSession{status: &imap.MailboxStatus{Messages: 0}}
	w := newTestWorker(session)

	messages, err := w.ListMessages("Inbox")
	if err != nil {
		t.Fatalf("ListMessages: %v", err)
	}
	if len(messages) != 0 {
		t.Fatalf("got %d messages, want 0", len(messages))
	}
	for _, call := range session.calls {
		if call == "fetch" {
			t.Fatal("fetch issued for an empty mailbox")
		}
	}
}

func TestListMessagesFallbackFrom(t *testing.T) {
	date := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	session := &fakeSession{
		status: &imap.MailboxStatus{Messages: 2},
		messages: []*imap.Message{
			{
				Uid: 7,
				Envelope: &imap.Envelope{
					Date:    date,
					Subject: "Hello",
					From:    []*imap.Address{{MailboxName: "alice", HostName: "example.com"}},
				},
			},
			{
				// Drafts on some stores carry no envelope sender.
				Uid:      8,
				Envelope: &imap.Envelope{Date: date, Subject: "Unsent draft"},
			},
		},
	}
	w := newTestWorker(session)

	messages, err := w.ListMessages("Drafts")
	if err != nil {
		t.Fatalf("ListMessages: %v", err)
	}
	if len(messages) != 2 {
		t.Fatalf("got %d messages, want 2", len(messages))
	}

	if messages[0].ID != "7" || messages[0].From != "alice@example.com" {
		t.Errorf("unexpected first summary: %+v", messages[0])
	}
	if messages[1].From != "user@example.com" {
		t.Errorf("missing envelope sender should fall back, got %q", messages[1].From)
	}
}

func TestDeleteMessageCopiesToTrash(t *testing.T) {
	session := &fakeSession{status: &imap.MailboxStatus{Messages: 1}}
	w := newTestWorker(session)

	if err := w.DeleteMessage("Inbox", 42); err != nil {
		t.Fatalf("DeleteMessage: %v", err)
	}

	want := []string{"select Inbox", "copy Deleted", "store", "expunge", "logout"}
	if len(session.calls) != len(want) {
		t.Fatalf("calls = %v, want %v", session.calls, want)
	}
	for i, call := range want {
		if session.calls[i] != call {
			t.Fatalf("calls = %v, want %v", session.calls, want)
		}
	}
}

func TestDeleteMessageInTrashSkipsCopy(t *testing.T) {
	session := &fakeSession{status: &imap.MailboxStatus{Messages: 1}}
	w := newTestWorker(session)

	if err := w.DeleteMessage("Deleted", 42); err != nil {
		t.Fatalf("DeleteMessage: %v", err)
	}

	for _, call := range session.calls {
		if strings.HasPrefix(call, "copy") {
			t.Fatalf("copy issued for a message already in the trash: %v", session.calls)
		}
	}
}

func TestGetMessageBodyNotFound(t *testing.T) {
	session := &fakeSession{status: &imap.MailboxStatus{Messages: 0}}
	w := newTestWorker(session)

	_, err := w.GetMessageBody("Inbox", 99)
	if !errors.Is(err, ErrMessageNotFound) {
		t.Fatalf("got %v, want ErrMessageNotFound", err)
	}
}

func TestGetMessageBodyDecodesPlainText(t *testing.T) {
	raw := "From: alice@example.com\r\n" +
		"To: bob@example.com\r\n" +
		"Subject: Hi\r\n" +
		"MIME-Version: 1.0\r\n" +
		"Content-Type: text/plain; charset=utf-8\r\n" +
		"\r\n" +
		"Hello from the mail store.\r\n"

	section := &imap.BodySectionName{}
	msg := &imap.Message{
		Uid: 42,
		Body: map[*imap.BodySectionName]imap.Literal{
			section: bytes.NewBufferString(raw),
		},
	}
	session := &fakeSession{
		status:   &imap.MailboxStatus{Messages: 1},
		messages: []*imap.Message{msg},
	}
	w := newTestWorker(session)

	body, err := w.GetMessageBody("Inbox", 42)
	if err != nil {
		t.Fatalf("GetMessageBody: %v", err)
	}
	if !strings.Contains(body, "Hello from the mail store.") {
		t.Fatalf("unexpected body: %q", body)
	}
}

func TestExtractPlainText(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "multipart prefers plain part",
			raw: "From: a@example.com\r\n" +
				"MIME-Version: 1.0\r\n" +
				"Content-Type: multipart/alternative; boundary=BOUNDARY\r\n" +
				"\r\n" +
				"--BOUNDARY\r\n" +
				"Content-Type: text/plain\r\n" +
				"\r\n" +
				"plain text body\r\n" +
				"--BOUNDARY\r\n" +
				"Content-Type: text/html\r\n" +
				"\r\n" +
				"<p>html body</p>\r\n" +
				"--BOUNDARY--\r\n",
			want: "plain text body",
		},
		{
			name: "html only falls back to html",
			raw: "From: a@example.com\r\n" +
				"MIME-Version: 1.0\r\n" +
				"Content-Type: text/html\r\n" +
				"\r\n" +
				"<p>html only</p>\r\n",
			want: "<p>html only</p>",
		},
		{
			name: "unparseable content returned raw",
			raw:  "not a mime message at all",
			want: "not a mime message at all",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := extractPlainText(strings.NewReader(tt.raw))
			if err != nil {
				t.Fatalf("extractPlainText: %v", err)
			}
			if !strings.Contains(got, tt.want) {
				t.Fatalf("got %q, want it to contain %q", got, tt.want)
			}
		})
	}
}
