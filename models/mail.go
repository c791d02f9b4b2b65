package models

// Mailbox describes one folder on the mail store. Path is the hierarchical
// identifier the store understands; Name is the display label (the last
// path segment).
type Mailbox struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

// MailboxNode is one node of the folder hierarchy as reported by the mail
// store, before it is flattened for the client.
type MailboxNode struct {
	Name     string
	Path     string
	Children []*MailboxNode
}

// MessageSummary is the envelope-level view of a message, produced when a
// mailbox is listed. IDs are scoped to their mailbox.
type MessageSummary struct {
	ID      string `json:"id"`
	Date    string `json:"date"`
	From    string `json:"from"`
	Subject string `json:"subject"`
}

// Message extends MessageSummary with the decoded plain-text body, populated
// only when a single message is fetched explicitly.
type Message struct {
	MessageSummary
	Body string `json:"body,omitempty"`
}

// SendRequest is the body of POST /messages. All fields are required.
type SendRequest struct {
	To      string `json:"to" validate:"required"`
	From    string `json:"from" validate:"required"`
	Subject string `json:"subject" validate:"required"`
	Text    string `json:"text" validate:"required"`
}
