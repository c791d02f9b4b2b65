package client

import (
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/jasonroy7dct/mailbag-server/models"
)

// Gateway is the REST surface the view-state controller talks to. Each call
// maps to exactly one server endpoint.
type Gateway interface {
	ListMailboxes() ([]models.Mailbox, error)
	ListMessages(mailbox string) ([]models.MessageSummary, error)
	GetMessageBody(mailbox, id string) (string, error)
	DeleteMessage(mailbox, id string) error
	SendMessage(to, from, subject, text string) error
	ListContacts() ([]models.Contact, error)
	AddContact(contact models.Contact) (models.Contact, error)
	UpdateContact(contact models.Contact) (models.Contact, error)
	DeleteContact(id uint) error
}

// HTTPGateway calls the MailBag server over HTTP using Fiber's client agent.
type HTTPGateway struct {
	baseURL string
}

func NewHTTPGateway(baseURL string) *HTTPGateway {
	return &HTTPGateway{baseURL: baseURL}
}

func (g *HTTPGateway) ListMailboxes() ([]models.Mailbox, error) {
	var mailboxes []models.Mailbox
	code, body, errs := fiber.Get(g.baseURL + "/mailboxes").Struct(&mailboxes)
	if err := requestError(code, body, errs); err != nil {
		return nil, err
	}
	return mailboxes, nil
}

func (g *HTTPGateway) ListMessages(mailbox string) ([]models.MessageSummary, error) {
	var messages []models.MessageSummary
	code, body, errs := fiber.Get(g.baseURL + "/mailboxes/" + mailbox).Struct(&messages)
	if err := requestError(code, body, errs); err != nil {
		return nil, err
	}
	return messages, nil
}

func (g *HTTPGateway) GetMessageBody(mailbox, id string) (string, error) {
	code, body, errs := fiber.Get(g.baseURL + "/messages/" + mailbox + "/" + id).String()
	if err := requestError(code, []byte(body), errs); err != nil {
		return "", err
	}
	return body, nil
}

func (g *HTTPGateway) DeleteMessage(mailbox, id string) error {
	code, body, errs := fiber.Delete(g.baseURL + "/messages/" + mailbox + "/" + id).String()
	return requestError(code, []byte(body), errs)
}

func (g *HTTPGateway) SendMessage(to, from, subject, text string) error {
	agent := fiber.Post(g.baseURL + "/messages")
	agent.JSON(models.SendRequest{To: to, From: from, Subject: subject, Text: text})
	code, body, errs := agent.String()
	return requestError(code, []byte(body), errs)
}

func (g *HTTPGateway) ListContacts() ([]models.Contact, error) {
	var contacts []models.Contact
	code, body, errs := fiber.Get(g.baseURL + "/contacts").Struct(&contacts)
	if err := requestError(code, body, errs); err != nil {
		return nil, err
	}
	return contacts, nil
}

func (g *HTTPGateway) AddContact(contact models.Contact) (models.Contact, error) {
	var created models.Contact
	agent := fiber.Post(g.baseURL + "/contacts")
	agent.JSON(contact)
	code, body, errs := agent.Struct(&created)
	if err := requestError(code, body, errs); err != nil {
		return models.Contact{}, err
	}
	return created, nil
}

func (g *HTTPGateway) UpdateContact(contact models.Contact) (models.Contact, error) {
	var updated models.Contact
	agent := fiber.Put(g.baseURL + "/contacts")
	agent.JSON(contact)
	code, body, errs := agent.Struct(&updated)
	if err := requestError(code, body, errs); err != nil {
		return models.Contact{}, err
	}
	return updated, nil
}

func (g *HTTPGateway) DeleteContact(id uint) error {
	code, body, errs := fiber.Delete(
		g.baseURL + "/contacts/" + strconv.FormatUint(uint64(id), 10),
	).String()
	return requestError(code, []byte(body), errs)
}

func requestError(code int, body []byte, errs []error) error {
	if len(errs) > 0 {
		return errs[0]
	}
	if code < 200 || code > 299 {
		return fmt.Errorf("server returned %d: %s", code, body)
	}
	return nil
}
