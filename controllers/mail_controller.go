package controllers

import (
	"log"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/jasonroy7dct/mailbag-server/models"
	"github.com/jasonroy7dct/mailbag-server/utils"
)

// MailRetriever is the slice of the IMAP worker the gateway needs.
type MailRetriever interface {
	ListMailboxes() ([]models.Mailbox, error)
	ListMessages(mailbox string) ([]models.MessageSummary, error)
	GetMessageBody(mailbox string, uid uint32) (string, error)
	DeleteMessage(mailbox string, uid uint32) error
}

// MailSender delivers one outbound message.
type MailSender interface {
	Send(to, from, subject, text string) error
}

// MailController proxies the mailbox and message endpoints to the IMAP and
// SMTP workers. Each request performs exactly one adapter operation;
// upstream failure detail is logged but never sent over the wire.
type MailController struct {
	mail   MailRetriever
	smtp   MailSender
	logger *log.Logger
}

func NewMailController(mail MailRetriever, smtp MailSender, logger *log.Logger) *MailController {
	return &MailController{
		mail:   mail,
		smtp:   smtp,
		logger: logger,
	}
}

// ListMailboxes handles GET /mailboxes
func (mc *MailController) ListMailboxes(c *fiber.Ctx) error {
	mailboxes, err := mc.mail.ListMailboxes()
	if err != nil {
		mc.logger.Printf("Error listing mailboxes: %v", err)
		utils.LogError("imap_list_mailboxes", err, nil)
		return c.Status(fiber.StatusInternalServerError).SendString("error")
	}
	return c.Status(fiber.StatusOK).JSON(mailboxes)
}

// ListMessages handles GET /mailboxes/:mailbox
func (mc *MailController) ListMessages(c *fiber.Ctx) error {
	mailbox := c.Params("mailbox")

	messages, err := mc.mail.ListMessages(mailbox)
	if err != nil {
		mc.logger.Printf("Error listing messages in %q: %v", mailbox, err)
		utils.LogError("imap_list_messages", err, map[string]interface{}{
			"mailbox": mailbox,
		})
		return c.Status(fiber.StatusBadRequest).SendString("Error in getting mailbox")
	}
	return c.Status(fiber.StatusOK).JSON(messages)
}

// GetMessage handles GET /messages/:mailbox/:id
func (mc *MailController) GetMessage(c *fiber.Ctx) error {
	mailbox := c.Params("mailbox")
	uid, err := parseMessageID(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).SendString("error")
	}

	body, err := mc.mail.GetMessageBody(mailbox, uid)
	if err != nil {
		mc.logger.Printf("Error fetching message %d in %q: %v", uid, mailbox, err)
		utils.LogError("imap_get_message", err, map[string]interface{}{
			"mailbox": mailbox,
			"id":      uid,
		})
		return c.Status(fiber.StatusBadRequest).SendString("error")
	}
	return c.Status(fiber.StatusOK).SendString(body)
}

// DeleteMessage handles DELETE /messages/:mailbox/:id
func (mc *MailController) DeleteMessage(c *fiber.Ctx) error {
	mailbox := c.Params("mailbox")
	uid, err := parseMessageID(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).SendString("error")
	}

	if err := mc.mail.DeleteMessage(mailbox, uid); err != nil {
		mc.logger.Printf("Error deleting message %d in %q: %v", uid, mailbox, err)
		utils.LogError("imap_delete_message", err, map[string]interface{}{
			"mailbox": mailbox,
			"id":      uid,
		})
		return c.Status(fiber.StatusBadRequest).SendString("error")
	}
	return c.Status(fiber.StatusOK).SendString("ok")
}

// SendMessage handles POST /messages. Validation failures are rejected
// before any send attempt is made.
func (mc *MailController) SendMessage(c *fiber.Ctx) error {
	var req models.SendRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).SendString("Missing required fields")
	}
	if err := utils.ValidateStruct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).SendString("Missing required fields")
	}

	if err := mc.smtp.Send(req.To, req.From, req.Subject, req.Text); err != nil {
		mc.logger.Printf("Error sending mail to %s: %v", req.To, err)
		utils.LogError("smtp_send", err, map[string]interface{}{
			"to": req.To,
		})
		return c.Status(fiber.StatusBadRequest).SendString("Error in sending mail")
	}

	utils.LogEvent("mail_sent", map[string]interface{}{
		"to": req.To,
	})
	return c.Status(fiber.StatusCreated).SendString("Mail sent successfully")
}

func parseMessageID(raw string) (uint32, error) {
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, err
	}
	return uint32(id), nil
}
