package models

import "time"

// Client is a customer followed by a commercial sales contact.
// Deleting a client removes its contracts and their events.
type Client struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	FullName    string    `gorm:"size:255;not null" json:"full_name"`
	Email       string    `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Phone       string    `gorm:"size:50;not null" json:"phone"`
	CompanyName string    `gorm:"size:255;not null" json:"company_name"`

	// SalesContactID is the user acting as default owner of the client.
	SalesContactID uint  `gorm:"index;not null" json:"sales_contact_id"`
	SalesContact   *User `gorm:"foreignKey:SalesContactID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`

	Contracts []Contract `gorm:"foreignKey:ClientID;constraint:OnDelete:CASCADE" json:"contracts,omitempty"`
}

// GetUserID returns the sales contact, the owner used by ownership checks.
func (c *Client) GetUserID() uint {
	return c.SalesContactID
}
