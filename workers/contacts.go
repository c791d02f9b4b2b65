package workers

import (
	"errors"
	"fmt"

	"github.com/badoux/checkmail"
	"gorm.io/gorm"

	"github.com/jasonroy7dct/mailbag-server/models"
)

// ErrContactNotFound is returned when an update or delete references an
// identifier the store has no record for. Updates never upsert.
var ErrContactNotFound = errors.New("contact not found")

// ContactWorker is the CRUD adapter over the local contacts store. Writes
// are serialized by the store itself; concurrent writers get last-write-wins.
type ContactWorker struct {
	db *gorm.DB
}

func NewContactWorker(db *gorm.DB) *ContactWorker {
	return &ContactWorker{db: db}
}

// List returns every contact in insertion order.
func (w *ContactWorker) List() ([]models.Contact, error) {
	contacts := make([]models.Contact, 0)
	if err := w.db.Order("id").Find(&contacts).Error; err != nil {
		return nil, fmt.Errorf("failed to list contacts: %w", err)
	}
	return contacts, nil
}

// Add persists a new contact and returns it with its assigned identifier.
func (w *ContactWorker) Add(contact models.Contact) (models.Contact, error) {
	if err := checkmail.ValidateFormat(contact.Email); err != nil {
		return models.Contact{}, fmt.Errorf("invalid contact email %q: %w", contact.Email, err)
	}

	contact.ID = 0
	if err := w.db.Create(&contact).Error; err != nil {
		return models.Contact{}, fmt.Errorf("failed to add contact: %w", err)
	}
	return contact, nil
}

// Update replaces the record matching the contact's identifier.
func (w *ContactWorker) Update(contact models.Contact) (models.Contact, error) {
	if err := checkmail.ValidateFormat(contact.Email); err != nil {
		return models.Contact{}, fmt.Errorf("invalid contact email %q: %w", contact.Email, err)
	}

	var existing models.Contact
	if err := w.db.First(&existing, contact.ID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Contact{}, ErrContactNotFound
		}
		return models.Contact{}, fmt.Errorf("failed to look up contact %d: %w", contact.ID, err)
	}

	if err := w.db.Save(&contact).Error; err != nil {
		return models.Contact{}, fmt.Errorf("failed to update contact %d: %w", contact.ID, err)
	}
	return contact, nil
}

// Delete removes the record matching the identifier.
func (w *ContactWorker) Delete(id uint) error {
	result := w.db.Delete(&models.Contact{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete contact %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrContactNotFound
	}
	return nil
}
