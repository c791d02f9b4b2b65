package client

import (
	"fmt"

	"github.com/jasonroy7dct/mailbag-server/models"
)

// Controller owns the client view state and exposes the named operations the
// UI drives it with. Every operation performs zero or more Gateway calls and
// then applies one atomic state update by swapping in a new snapshot.
//
// The UI issues one operation at a time and disables interaction through the
// please-wait flag while one is outstanding, so the controller adds no
// locking of its own.
type Controller struct {
	gateway   Gateway
	userEmail string
	state     State

	// OnChange, when set, receives a copy of every new snapshot. The UI
	// hangs its re-render here.
	OnChange func(State)
}

func NewController(gateway Gateway, userEmail string) *Controller {
	return &Controller{
		gateway:   gateway,
		userEmail: userEmail,
		state:     State{CurrentView: ViewWelcome},
	}
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() State {
	return c.state.clone()
}

func (c *Controller) apply(next State) {
	c.state = next
	if c.OnChange != nil {
		c.OnChange(next.clone())
	}
}

// ShowHidePleaseWait blocks the UI for a moment so that the user can't go
// and do something that causes problems while the server works.
func (c *Controller) ShowHidePleaseWait(visible bool) {
	next := c.state.clone()
	next.PleaseWaitVisible = visible
	c.apply(next)
}

// beginCall opens the please-wait bracket around a Gateway call and clears
// any stale error from the previous operation.
func (c *Controller) beginCall() {
	next := c.state.clone()
	next.PleaseWaitVisible = true
	next.LastError = ""
	c.apply(next)
}

// endCall closes the bracket. It runs on success and failure alike; the
// flag must never be left stuck on.
func (c *Controller) endCall() {
	c.ShowHidePleaseWait(false)
}

// fail records a failed server call so the UI can surface it, and returns
// the error to the caller.
func (c *Controller) fail(operation string, err error) error {
	next := c.state.clone()
	next.LastError = fmt.Sprintf("%s: %v", operation, err)
	c.apply(next)
	return err
}

// Bootstrap runs the startup sequence: load the mailbox list, then the
// contact list, then release the UI.
func (c *Controller) Bootstrap() error {
	c.beginCall()

	mailboxes, err := c.gateway.ListMailboxes()
	if err != nil {
		c.endCall()
		return c.fail("loading mailboxes", err)
	}
	for _, mailbox := range mailboxes {
		c.AddMailboxToList(mailbox)
	}

	contacts, err := c.gateway.ListContacts()
	if err != nil {
		c.endCall()
		return c.fail("loading contacts", err)
	}
	for _, contact := range contacts {
		c.AddContactToList(contact)
	}

	c.endCall()
	return nil
}

// ShowContact shows the contact view in view mode.
func (c *Controller) ShowContact(id uint, name, email string) {
	next := c.state.clone()
	next.CurrentView = ViewContact
	next.ContactID = id
	next.ContactName = name
	next.ContactEmail = email
	c.apply(next)
}

// ShowAddContact shows the contact view in add mode. The contact won't have
// an ID until it is saved to the server, so the scratch fields are cleared.
func (c *Controller) ShowAddContact() {
	next := c.state.clone()
	next.CurrentView = ViewContactAdd
	next.ContactID = 0
	next.ContactName = ""
	next.ContactEmail = ""
	c.apply(next)
}

// ShowMessage fetches the body of the given message and shows the message
// view.
func (c *Controller) ShowMessage(message models.MessageSummary) error {
	c.beginCall()
	body, err := c.gateway.GetMessageBody(c.state.CurrentMailbox, message.ID)
	c.endCall()
	if err != nil {
		return c.fail("loading message", err)
	}

	loaded := models.Message{MessageSummary: message, Body: body}

	next := c.state.clone()
	next.CurrentView = ViewMessage
	next.MessageID = loaded.ID
	next.MessageDate = loaded.Date
	next.MessageFrom = loaded.From
	next.MessageTo = ""
	next.MessageSubject = loaded.Subject
	next.MessageBody = loaded.Body
	c.apply(next)
	return nil
}

// ShowComposeMessage shows the message view in compose mode, pre-filling
// the buffer according to the mode.
func (c *Controller) ShowComposeMessage(mode ComposeMode) {
	next := c.state.clone()
	next.CurrentView = ViewCompose
	next.MessageFrom = c.userEmail

	switch mode {
	case ComposeReply:
		next.MessageTo = c.state.MessageFrom
		next.MessageSubject = fmt.Sprintf("Re: %s", c.state.MessageSubject)
		next.MessageBody = fmt.Sprintf("\n\n---- Original Message ----\n\n%s", c.state.MessageBody)
	case ComposeContact:
		next.MessageTo = c.state.ContactEmail
		next.MessageSubject = ""
		next.MessageBody = ""
	default:
		next.MessageTo = ""
		next.MessageSubject = ""
		next.MessageBody = ""
	}

	c.apply(next)
}

// AddMailboxToList appends a mailbox to a copy of the mailbox list.
func (c *Controller) AddMailboxToList(mailbox models.Mailbox) {
	next := c.state.clone()
	next.Mailboxes = append(next.Mailboxes, mailbox)
	c.apply(next)
}

// AddContactToList appends a contact to a copy of the contact list.
func (c *Controller) AddContactToList(contact models.Contact) {
	next := c.state.clone()
	next.Contacts = append(next.Contacts, contact)
	c.apply(next)
}

// AddMessageToList appends a message summary to a copy of the message list.
func (c *Controller) AddMessageToList(message models.MessageSummary) {
	next := c.state.clone()
	next.Messages = append(next.Messages, message)
	c.apply(next)
}

// ClearMessages empties the message list.
func (c *Controller) ClearMessages() {
	next := c.state.clone()
	next.Messages = []models.MessageSummary{}
	c.apply(next)
}

// SetCurrentMailbox records the selected mailbox, resets the view, and
// refreshes the message list for it.
func (c *Controller) SetCurrentMailbox(path string) error {
	next := c.state.clone()
	next.CurrentView = ViewWelcome
	next.CurrentMailbox = path
	c.apply(next)

	// The refresh runs before the UI has necessarily observed the snapshot
	// above, so the path travels as an argument rather than being re-read
	// from state.
	return c.GetMessages(path)
}

// GetMessages loads the message list for the given mailbox path.
func (c *Controller) GetMessages(path string) error {
	c.beginCall()
	messages, err := c.gateway.ListMessages(path)
	c.endCall()
	if err != nil {
		return c.fail("listing messages", err)
	}

	c.ClearMessages()
	for _, message := range messages {
		c.AddMessageToList(message)
	}
	return nil
}

// Editable field names accepted by SetField.
const (
	FieldContactName    = "contactName"
	FieldContactEmail   = "contactEmail"
	FieldMessageTo      = "messageTo"
	FieldMessageSubject = "messageSubject"
	FieldMessageBody    = "messageBody"
)

// SetField handles an edit to one of the editable fields. A contact name
// longer than 16 characters is rejected outright, leaving the stored value
// unchanged.
func (c *Controller) SetField(field, value string) {
	if field == FieldContactName && len([]rune(value)) > 16 {
		return
	}

	next := c.state.clone()
	switch field {
	case FieldContactName:
		next.ContactName = value
	case FieldContactEmail:
		next.ContactEmail = value
	case FieldMessageTo:
		next.MessageTo = value
	case FieldMessageSubject:
		next.MessageSubject = value
	case FieldMessageBody:
		next.MessageBody = value
	default:
		return
	}
	c.apply(next)
}

// SaveContact persists the contact being added and appends the server's
// version, identifier included, to the contact list.
func (c *Controller) SaveContact() error {
	c.beginCall()
	created, err := c.gateway.AddContact(models.Contact{
		Name:  c.state.ContactName,
		Email: c.state.ContactEmail,
	})
	c.endCall()
	if err != nil {
		return c.fail("saving contact", err)
	}

	next := c.state.clone()
	next.Contacts = append(next.Contacts, created)
	next.ContactID = 0
	next.ContactName = ""
	next.ContactEmail = ""
	c.apply(next)
	return nil
}

// DeleteContact removes the currently viewed contact on the server and from
// the local list.
func (c *Controller) DeleteContact() error {
	id := c.state.ContactID

	c.beginCall()
	err := c.gateway.DeleteContact(id)
	c.endCall()
	if err != nil {
		return c.fail("deleting contact", err)
	}

	next := c.state.clone()
	next.Contacts = removeContact(next.Contacts, id)
	next.ContactID = 0
	next.ContactName = ""
	next.ContactEmail = ""
	c.apply(next)
	return nil
}

// UpdateContact saves the edits to the currently viewed contact, replacing
// the prior version in the list with the server's returned version.
func (c *Controller) UpdateContact() error {
	id := c.state.ContactID

	c.beginCall()
	updated, err := c.gateway.UpdateContact(models.Contact{
		ID:    id,
		Name:  c.state.ContactName,
		Email: c.state.ContactEmail,
	})
	c.endCall()
	if err != nil {
		return c.fail("updating contact", err)
	}

	next := c.state.clone()
	next.Contacts = append(removeContact(next.Contacts, id), updated)
	next.ContactID = updated.ID
	next.ContactName = updated.Name
	next.ContactEmail = updated.Email
	c.apply(next)
	return nil
}

// DeleteMessage removes the currently viewed message on the server and from
// the local list, then returns to the welcome view.
func (c *Controller) DeleteMessage() error {
	id := c.state.MessageID

	c.beginCall()
	err := c.gateway.DeleteMessage(c.state.CurrentMailbox, id)
	c.endCall()
	if err != nil {
		return c.fail("deleting message", err)
	}

	next := c.state.clone()
	filtered := make([]models.MessageSummary, 0, len(next.Messages))
	for _, message := range next.Messages {
		if message.ID != id {
			filtered = append(filtered, message)
		}
	}
	next.Messages = filtered
	next.CurrentView = ViewWelcome
	c.apply(next)
	return nil
}

// SendMessage submits the compose buffer and returns to the welcome view.
func (c *Controller) SendMessage() error {
	c.beginCall()
	err := c.gateway.SendMessage(
		c.state.MessageTo,
		c.state.MessageFrom,
		c.state.MessageSubject,
		c.state.MessageBody,
	)
	c.endCall()
	if err != nil {
		return c.fail("sending message", err)
	}

	next := c.state.clone()
	next.CurrentView = ViewWelcome
	c.apply(next)
	return nil
}

func removeContact(contacts []models.Contact, id uint) []models.Contact {
	filtered := make([]models.Contact, 0, len(contacts))
	for _, contact := range contacts {
		if contact.ID != id {
			filtered = append(filtered, contact)
		}
	}
	return filtered
}
