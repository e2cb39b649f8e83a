package partner

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// CustomerStatus represents the status of a customer
type CustomerStatus string

const (
	CustomerStatusActive  CustomerStatus = "active"
	CustomerStatusBlocked CustomerStatus = "blocked"
)

// IsValid reports whether s is a known customer status
func (s CustomerStatus) IsValid() bool {
	return s == CustomerStatusActive || s == CustomerStatusBlocked
}

// Customer is the admin-facing profile of a shopper
type Customer struct {
	shared.BaseAggregateRoot
	UserID         *uuid.UUID      `gorm:"type:uuid;uniqueIndex"`
	Name           string          `gorm:"type:varchar(100);not null"`
	Email          string          `gorm:"type:varchar(200);not null;uniqueIndex"`
	Phone          string          `gorm:"type:varchar(50)"`
	DefaultAddress shared.Address  `gorm:"type:jsonb"`
	Status         CustomerStatus  `gorm:"type:varchar(20);not null;default:'active';index"`
	OrderCount     int             `gorm:"not null;default:0"`
	TotalSpent     decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
	Notes          string          `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (Customer) TableName() string {
	return "customers"
}

// NewCustomer creates an active customer profile
func NewCustomer(name, email string) (*Customer, error) {
	c := &Customer{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Status:            CustomerStatusActive,
		TotalSpent:        decimal.Zero,
	}
	if err := c.Update(name, email, "", ""); err != nil {
		return nil, err
	}
	c.Version = 1
	return c, nil
}

// Update replaces the contact details
func (c *Customer) Update(name, email, phone, notes string) error {
	name, email, phone = strings.TrimSpace(name), strings.ToLower(strings.TrimSpace(email)), strings.TrimSpace(phone)
	if err := validateName("Customer name", name, 100); err != nil {
		return err
	}
	if err := validateEmail(email); err != nil {
		return err
	}
	if err := validatePhone(phone); err != nil {
		return err
	}
	c.Name = name
	c.Email = email
	c.Phone = phone
	c.Notes = notes
	c.IncrementVersion()
	return nil
}

// LinkUser ties the profile to a login account
func (c *Customer) LinkUser(userID uuid.UUID) {
	c.UserID = &userID
	c.IncrementVersion()
}

// SetDefaultAddress stores the address used to prefill checkout
func (c *Customer) SetDefaultAddress(addr shared.Address) error {
	if err := addr.Validate(); err != nil {
		return err
	}
	c.DefaultAddress = addr
	c.IncrementVersion()
	return nil
}

// SetStatus writes any known status
func (c *Customer) SetStatus(status CustomerStatus) error {
	if !status.IsValid() {
		return shared.NewDomainError("INVALID_STATUS", "Unknown customer status: "+string(status))
	}
	c.Status = status
	c.IncrementVersion()
	return nil
}

// IsBlocked reports whether the customer may not place orders
func (c *Customer) IsBlocked() bool {
	return c.Status == CustomerStatusBlocked
}

// RecordOrder adds a placed order to the lifetime statistics
func (c *Customer) RecordOrder(total decimal.Decimal) {
	c.OrderCount++
	c.TotalSpent = c.TotalSpent.Add(total)
	c.IncrementVersion()
}
