package partner

import (
	"strings"

	"github.com/shopfront/backend/internal/domain/shared"
)

// SellerStatus is the approval state of a vendor
type SellerStatus string

const (
	SellerStatusPending   SellerStatus = "pending"
	SellerStatusApproved  SellerStatus = "approved"
	SellerStatusRejected  SellerStatus = "rejected"
	SellerStatusSuspended SellerStatus = "suspended"
)

// IsValid reports whether s is a known seller status
func (s SellerStatus) IsValid() bool {
	switch s {
	case SellerStatusPending, SellerStatusApproved, SellerStatusRejected, SellerStatusSuspended:
		return true
	}
	return false
}

// Seller is a vendor account that may run shops
type Seller struct {
	shared.BaseAggregateRoot
	Name        string       `gorm:"type:varchar(100);not null"`
	Email       string       `gorm:"type:varchar(200);not null;uniqueIndex"`
	Phone       string       `gorm:"type:varchar(50)"`
	CompanyName string       `gorm:"type:varchar(200)"`
	Description string       `gorm:"type:text"`
	Status      SellerStatus `gorm:"type:varchar(20);not null;default:'pending';index"`
	StatusNote  string       `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (Seller) TableName() string {
	return "sellers"
}

// NewSeller creates a seller awaiting approval
func NewSeller(name, email string) (*Seller, error) {
	s := &Seller{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Status:            SellerStatusPending,
	}
	if err := s.Update(name, email, "", "", ""); err != nil {
		return nil, err
	}
	s.Version = 1
	return s, nil
}

// Update replaces the contact details
func (s *Seller) Update(name, email, phone, company, description string) error {
	name, email, phone = strings.TrimSpace(name), strings.ToLower(strings.TrimSpace(email)), strings.TrimSpace(phone)
	if err := validateName("Seller name", name, 100); err != nil {
		return err
	}
	if err := validateEmail(email); err != nil {
		return err
	}
	if err := validatePhone(phone); err != nil {
		return err
	}
	s.Name = name
	s.Email = email
	s.Phone = phone
	s.CompanyName = strings.TrimSpace(company)
	s.Description = description
	s.IncrementVersion()
	return nil
}

// SetStatus writes any known status; approval flow has no transition guard
func (s *Seller) SetStatus(status SellerStatus, note string) error {
	if !status.IsValid() {
		return shared.NewDomainError("INVALID_STATUS", "Unknown seller status: "+string(status))
	}
	s.Status = status
	s.StatusNote = strings.TrimSpace(note)
	s.IncrementVersion()
	return nil
}

// IsApproved reports whether the seller may operate shops
func (s *Seller) IsApproved() bool {
	return s.Status == SellerStatusApproved
}
