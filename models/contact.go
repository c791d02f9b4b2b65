package models

// Contact is a single address-book entry. The ID is assigned by the store on
// creation and is the only field guaranteed unique; duplicate emails are
// allowed.
type Contact struct {
	ID    uint   `gorm:"primaryKey" json:"id,omitempty"`
	Name  string `gorm:"not null" json:"name"`
	Email string `gorm:"not null" json:"email"`
}
