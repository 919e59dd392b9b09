package billing

import (
	"strings"
	"time"

	"github.com/schoolerp/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Discount is a named reduction applied to invoices. It contributes its full
// value to an invoice's total whenever the invoice carries at least one item
// of the matching type.
type Discount struct {
	shared.BaseEntity
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Value       decimal.Decimal `json:"value"`
	ValidUntil  *time.Time      `json:"valid_until,omitempty"`
	AppliesTo   ItemType        `json:"applies_to"`
}

// NewDiscount creates a new discount
func NewDiscount(name, description string, value decimal.Decimal, appliesTo ItemType, validUntil *time.Time) (*Discount, error) {
	if strings.TrimSpace(name) == "" {
		return nil, shared.NewDomainError("INVALID_DISCOUNT", "Discount name cannot be empty")
	}
	if value.IsNegative() {
		return nil, shared.NewDomainError("INVALID_DISCOUNT", "Discount value cannot be negative")
	}
	if !appliesTo.IsValid() {
		return nil, shared.NewDomainError("INVALID_ITEM_TYPE", "Discount applicability type is not valid")
	}
	return &Discount{
		BaseEntity:  shared.NewBaseEntity(),
		Name:        name,
		Description: description,
		Value:       value,
		ValidUntil:  validUntil,
		AppliesTo:   appliesTo,
	}, nil
}

// IsExpiredAt reports whether the discount's validity window has closed
func (d *Discount) IsExpiredAt(at time.Time) bool {
	if d.ValidUntil == nil {
		return false
	}
	return at.After(*d.ValidUntil)
}
