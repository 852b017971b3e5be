package proposals

import (
	"errors"
	"time"
)

// ProposalType mirrors the invoice a proposal may become.
type ProposalType string

const (
	ProposalTypeSales    ProposalType = "SALES"
	ProposalTypePurchase ProposalType = "PURCHASE"
)

// ProposalStatus is the lifecycle state of a quotation.
type ProposalStatus string

const (
	ProposalStatusDraft     ProposalStatus = "DRAFT"
	ProposalStatusSent      ProposalStatus = "SENT"
	ProposalStatusApproved  ProposalStatus = "APPROVED"
	ProposalStatusRejected  ProposalStatus = "REJECTED"
	ProposalStatusConverted ProposalStatus = "CONVERTED"
)

// ErrInvalidTransition rejects a status change the lifecycle does not allow.
var ErrInvalidTransition = errors.New("proposal status transition not allowed")

// transitions: DRAFT -> SENT -> APPROVED | REJECTED, APPROVED -> CONVERTED.
var transitions = map[ProposalStatus][]ProposalStatus{
	ProposalStatusDraft:    {ProposalStatusSent},
	ProposalStatusSent:     {ProposalStatusApproved, ProposalStatusRejected},
	ProposalStatusApproved: {ProposalStatusConverted},
}

// CanTransition reports whether from may move to to.
func CanTransition(from, to ProposalStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Proposal is a priced quotation. It never touches stock or balances;
// only conversion to an invoice does.
type Proposal struct {
	ID          int64          `json:"id"`
	Number      string         `json:"number"`
	Type        ProposalType   `json:"type"`
	Status      ProposalStatus `json:"status"`
	PartnerID   int64          `json:"partner_id"`
	PartnerName string         `json:"partner_name,omitempty"`
	ProposalDate time.Time     `json:"proposal_date"`
	ValidUntil  *time.Time     `json:"valid_until,omitempty"`
	Notes       string         `json:"notes"`
	SubTotal    float64        `json:"sub_total"`
	TaxTotal    float64        `json:"tax_total"`
	TotalAmount float64        `json:"total_amount"`
	InvoiceID   *int64         `json:"invoice_id,omitempty"`
	CreatedBy   *int64         `json:"created_by,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	Items       []ProposalItem `json:"items,omitempty"`
}

// ProposalItem is one priced line, same arithmetic as invoice lines.
type ProposalItem struct {
	ID          int64   `json:"id"`
	ProposalID  int64   `json:"proposal_id"`
	ProductID   int64   `json:"product_id"`
	ProductName string  `json:"product_name,omitempty"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	TaxRate     float64 `json:"tax_rate"`
	LineTotal   float64 `json:"line_total"`
	LineTax     float64 `json:"line_tax"`
}

// CreateProposalRequest opens a proposal in status DRAFT.
type CreateProposalRequest struct {
	PartnerID    int64                 `json:"partner_id" validate:"required,gt=0"`
	Type         ProposalType          `json:"type" validate:"required,oneof=SALES PURCHASE"`
	ProposalDate time.Time             `json:"proposal_date" validate:"required"`
	ValidUntil   *time.Time            `json:"valid_until,omitempty"`
	Notes        string                `json:"notes" validate:"max=1000"`
	Items        []ProposalItemRequest `json:"items" validate:"required,min=1,dive"`
}

// ProposalItemRequest is one requested line.
type ProposalItemRequest struct {
	ProductID int64   `json:"product_id" validate:"required,gt=0"`
	Quantity  int     `json:"quantity" validate:"required,gt=0"`
	UnitPrice float64 `json:"unit_price" validate:"gte=0"`
	TaxRate   float64 `json:"tax_rate" validate:"gte=0,lte=100"`
}

// ListFilters narrows proposal listings.
type ListFilters struct {
	Type      ProposalType
	Status    ProposalStatus
	PartnerID int64
	Search    string
	Limit     int
	Offset    int
}
