package models

import "time"

// ContractStatus is derived from the Signed flag.
type ContractStatus string

const (
	ContractUnsigned ContractStatus = "Unsigned"
	ContractSigned   ContractStatus = "Signed"
)

// Contract belongs to a client. Events can only be attached once it is signed.
type Contract struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	ClientID uint    `gorm:"index;not null" json:"client_id"`
	Client   *Client `gorm:"foreignKey:ClientID" json:"-"`

	SalesContactID uint  `gorm:"index;not null" json:"sales_contact_id"`
	SalesContact   *User `gorm:"foreignKey:SalesContactID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`

	TotalAmount float64 `gorm:"not null" json:"total_amount"`
	// AmountDue is the remaining balance, bounded by TotalAmount.
	AmountDue float64 `gorm:"not null" json:"amount_due"`
	Signed    bool    `gorm:"not null;default:false;index" json:"signed"`

	Events []Event `gorm:"foreignKey:ContractID;constraint:OnDelete:CASCADE" json:"events,omitempty"`
}

// GetUserID returns the sales contact who owns the contract.
func (c *Contract) GetUserID() uint {
	return c.SalesContactID
}

// Status returns the lifecycle state.
func (c *Contract) Status() ContractStatus {
	if c.Signed {
		return ContractSigned
	}
	return ContractUnsigned
}

// AmountsValid reports whether 0 <= AmountDue <= TotalAmount.
func (c *Contract) AmountsValid() bool {
	return c.TotalAmount >= 0 && c.AmountDue >= 0 && c.AmountDue <= c.TotalAmount
}
