package controllers

import (
	"log"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/jasonroy7dct/mailbag-server/models"
	"github.com/jasonroy7dct/mailbag-server/utils"
)

// ContactStore is the slice of the contacts worker the gateway needs.
type ContactStore interface {
	List() ([]models.Contact, error)
	Add(contact models.Contact) (models.Contact, error)
	Update(contact models.Contact) (models.Contact, error)
	Delete(id uint) error
}

// ContactController proxies the contact endpoints to the contacts store.
type ContactController struct {
	store  ContactStore
	logger *log.Logger
}

func NewContactController(store ContactStore, logger *log.Logger) *ContactController {
	return &ContactController{
		store:  store,
		logger: logger,
	}
}

// ListContacts handles GET /contacts
func (cc *ContactController) ListContacts(c *fiber.Ctx) error {
	contacts, err := cc.store.List()
	if err != nil {
		cc.logger.Printf("Error listing contacts: %v", err)
		utils.LogError("contacts_list", err, nil)
		return c.Status(fiber.StatusBadRequest).SendString("error")
	}
	return c.Status(fiber.StatusOK).JSON(contacts)
}

// AddContact handles POST /contacts
func (cc *ContactController) AddContact(c *fiber.Ctx) error {
	var contact models.Contact
	if err := c.BodyParser(&contact); err != nil {
		return c.Status(fiber.StatusBadRequest).SendString("error")
	}

	created, err := cc.store.Add(contact)
	if err != nil {
		cc.logger.Printf("Error adding contact: %v", err)
		utils.LogError("contacts_add", err, nil)
		return c.Status(fiber.StatusBadRequest).SendString("error")
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

// UpdateContact handles PUT /contacts. The body must carry the identifier of
// an existing record; unknown identifiers fail rather than upsert.
func (cc *ContactController) UpdateContact(c *fiber.Ctx) error {
	var contact models.Contact
	if err := c.BodyParser(&contact); err != nil {
		return c.Status(fiber.StatusBadRequest).SendString("error")
	}
	if contact.ID == 0 {
		return c.Status(fiber.StatusBadRequest).SendString("error")
	}

	updated, err := cc.store.Update(contact)
	if err != nil {
		cc.logger.Printf("Error updating contact %d: %v", contact.ID, err)
		utils.LogError("contacts_update", err, map[string]interface{}{
			"id": contact.ID,
		})
		return c.Status(fiber.StatusBadRequest).SendString("error")
	}
	return c.Status(fiber.StatusAccepted).JSON(updated)
}

// DeleteContact handles DELETE /contacts/:id
func (cc *ContactController) DeleteContact(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).SendString("error")
	}

	if err := cc.store.Delete(uint(id)); err != nil {
		cc.logger.Printf("Error deleting contact %d: %v", id, err)
		utils.LogError("contacts_delete", err, map[string]interface{}{
			"id": id,
		})
		return c.Status(fiber.StatusBadRequest).SendString("error")
	}
	return c.Status(fiber.StatusOK).SendString("ok")
}
