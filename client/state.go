package client

import "github.com/jasonroy7dct/mailbag-server/models"

// View names the screen the UI is currently showing.
type View string

const (
	ViewWelcome    View = "welcome"
	ViewContact    View = "contact"
	ViewContactAdd View = "contactAdd"
	ViewMessage    View = "message"
	ViewCompose    View = "compose"
)

// ComposeMode selects how the compose buffer is pre-filled.
type ComposeMode string

const (
	// ComposeNew starts an empty message.
	ComposeNew ComposeMode = "new"
	// ComposeReply quotes the currently viewed message.
	ComposeReply ComposeMode = "reply"
	// ComposeContact addresses the currently viewed contact.
	ComposeContact ComposeMode = "contact"
)

// State is one immutable snapshot of everything the UI renders. Operations
// on the Controller derive the next snapshot from a copy; the UI never
// assigns fields directly.
type State struct {
	// PleaseWaitVisible blocks conflicting UI interaction while a server
	// call is in flight.
	PleaseWaitVisible bool

	Contacts  []models.Contact
	Mailboxes []models.Mailbox
	Messages  []models.MessageSummary

	CurrentView    View
	CurrentMailbox string

	// Scratch fields for the message being viewed or composed. MessageID is
	// only ever populated when viewing an existing message.
	MessageID      string
	MessageDate    string
	MessageFrom    string
	MessageTo      string
	MessageSubject string
	MessageBody    string

	// Scratch fields for the contact being viewed or edited.
	ContactID    uint
	ContactName  string
	ContactEmail string

	// LastError surfaces the most recent failed server call to the user. It
	// is cleared when the next server call starts.
	LastError string
}

// clone returns a copy of the snapshot with its own backing arrays, so list
// changes are detectable by identity comparison.
func (s State) clone() State {
	next := s
	next.Contacts = append([]models.Contact(nil), s.Contacts...)
	next.Mailboxes = append([]models.Mailbox(nil), s.Mailboxes...)
	next.Messages = append([]models.MessageSummary(nil), s.Messages...)
	return next
}
