package models

import "time"

// Event is organised for a signed contract.
//
// SupportContact holds the full name of the assigned support user, nil when
// unassigned. Ownership is matched on that string, so renaming a support user
// detaches their events.
type Event struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	ContractID uint      `gorm:"index;not null" json:"contract_id"`
	Contract   *Contract `gorm:"foreignKey:ContractID" json:"-"`

	SupportContact *string   `gorm:"size:255;index" json:"support_contact"`
	StartDate      time.Time `gorm:"not null" json:"start_date"`
	EndDate        time.Time `gorm:"not null" json:"end_date"`
	Location       string    `gorm:"size:255;not null" json:"location"`
	Attendees      int       `gorm:"not null" json:"attendees"`
	Notes          *string   `gorm:"type:text" json:"notes,omitempty"`
}

// Assigned reports whether a support contact is set.
func (e *Event) Assigned() bool {
	return e.SupportContact != nil && *e.SupportContact != ""
}

// SupportedBy reports whether fullName is the assigned support contact.
func (e *Event) SupportedBy(fullName string) bool {
	return e.Assigned() && *e.SupportContact == fullName
}

// DatesValid reports whether the event starts strictly before it ends.
func (e *Event) DatesValid() bool {
	return e.StartDate.Before(e.EndDate)
}
