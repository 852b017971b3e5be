package partners

import "time"

// PartnerType distinguishes the commercial relationship.
type PartnerType string

const (
	PartnerTypeCustomer PartnerType = "CUSTOMER"
	PartnerTypeSupplier PartnerType = "SUPPLIER"
	PartnerTypeBoth     PartnerType = "BOTH"
)

// Partner is a customer, supplier, or both, with a single running balance.
// A positive balance means the partner owes the business.
type Partner struct {
	ID        int64       `json:"id"`
	Name      string      `json:"name"`
	Type      PartnerType `json:"type"`
	Balance   float64     `json:"balance"`
	TaxNumber string      `json:"tax_number"`
	Email     string      `json:"email"`
	Phone     string      `json:"phone"`
	Address   string      `json:"address"`
	IsActive  bool        `json:"is_active"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// EntryType marks the direction of a ledger entry.
type EntryType string

const (
	// EntryTypeDebit increases the partner balance (partner owes more).
	EntryTypeDebit EntryType = "DEBIT"
	// EntryTypeCredit decreases the partner balance.
	EntryTypeCredit EntryType = "CREDIT"
)

// LedgerEntry is one row of a partner's ledger. Entries are only written
// by invoice postings, inside the invoice transaction, and never mutated.
type LedgerEntry struct {
	ID          int64     `json:"id"`
	PartnerID   int64     `json:"partner_id"`
	EntryDate   time.Time `json:"entry_date"`
	Description string    `json:"description"`
	Type        EntryType `json:"type"`
	Amount      float64   `json:"amount"`
	InvoiceID   *int64    `json:"invoice_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// StatementLine pairs a ledger entry with the running balance after it.
type StatementLine struct {
	LedgerEntry
	RunningBalance float64 `json:"running_balance"`
}

// CreatePartnerRequest describes a new partner.
type CreatePartnerRequest struct {
	Name      string      `json:"name" validate:"required,max=200"`
	Type      PartnerType `json:"type" validate:"required,oneof=CUSTOMER SUPPLIER BOTH"`
	TaxNumber string      `json:"tax_number" validate:"max=50"`
	Email     string      `json:"email" validate:"omitempty,email"`
	Phone     string      `json:"phone" validate:"max=50"`
	Address   string      `json:"address" validate:"max=500"`
}

// UpdatePartnerRequest updates mutable partner fields. Balance is absent on
// purpose: it only moves through invoice postings.
type UpdatePartnerRequest struct {
	Name      *string      `json:"name,omitempty" validate:"omitempty,max=200"`
	Type      *PartnerType `json:"type,omitempty" validate:"omitempty,oneof=CUSTOMER SUPPLIER BOTH"`
	TaxNumber *string      `json:"tax_number,omitempty" validate:"omitempty,max=50"`
	Email     *string      `json:"email,omitempty" validate:"omitempty,email"`
	Phone     *string      `json:"phone,omitempty" validate:"omitempty,max=50"`
	Address   *string      `json:"address,omitempty" validate:"omitempty,max=500"`
	IsActive  *bool        `json:"is_active,omitempty"`
}
