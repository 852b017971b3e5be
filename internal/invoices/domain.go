package invoices

import "time"

// InvoiceType separates sales invoices from purchase invoices. The type
// decides the sign of every side effect of a posting: stock direction,
// ledger entry type, and partner balance delta.
type InvoiceType string

const (
	InvoiceTypeSales    InvoiceType = "SALES"
	InvoiceTypePurchase InvoiceType = "PURCHASE"
)

// Invoice is a posted document. Postings are immutable: there is no update
// or delete path, corrections are new documents.
type Invoice struct {
	ID          int64         `json:"id"`
	Number      string        `json:"number"`
	Type        InvoiceType   `json:"type"`
	PartnerID   int64         `json:"partner_id"`
	PartnerName string        `json:"partner_name,omitempty"`
	InvoiceDate time.Time     `json:"invoice_date"`
	DueDate     *time.Time    `json:"due_date,omitempty"`
	Notes       string        `json:"notes"`
	SubTotal    float64       `json:"sub_total"`
	TaxTotal    float64       `json:"tax_total"`
	TotalAmount float64       `json:"total_amount"`
	CreatedBy   *int64        `json:"created_by,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	Items       []InvoiceItem `json:"items,omitempty"`
}

// InvoiceItem is one priced line.
type InvoiceItem struct {
	ID          int64   `json:"id"`
	InvoiceID   int64   `json:"invoice_id"`
	ProductID   int64   `json:"product_id"`
	ProductName string  `json:"product_name,omitempty"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	TaxRate     float64 `json:"tax_rate"`
	LineTotal   float64 `json:"line_total"`
	LineTax     float64 `json:"line_tax"`
}

// CreateInvoiceRequest posts a new invoice with at least one item.
type CreateInvoiceRequest struct {
	PartnerID   int64                `json:"partner_id" validate:"required,gt=0"`
	Type        InvoiceType          `json:"type" validate:"required,oneof=SALES PURCHASE"`
	InvoiceDate time.Time            `json:"invoice_date" validate:"required"`
	DueDate     *time.Time           `json:"due_date,omitempty"`
	Notes       string               `json:"notes" validate:"max=1000"`
	Items       []InvoiceItemRequest `json:"items" validate:"required,min=1,dive"`
}

// InvoiceItemRequest is one requested line.
type InvoiceItemRequest struct {
	ProductID int64   `json:"product_id" validate:"required,gt=0"`
	Quantity  int     `json:"quantity" validate:"required,gt=0"`
	UnitPrice float64 `json:"unit_price" validate:"gte=0"`
	TaxRate   float64 `json:"tax_rate" validate:"gte=0,lte=100"`
}

// ListFilters narrows invoice listings.
type ListFilters struct {
	Type      InvoiceType
	PartnerID int64
	Search    string
	From      *time.Time
	To        *time.Time
	Limit     int
	Offset    int
}

// LineTotals computes the amounts of one line:
// lineTotal = quantity * unitPrice, lineTax = lineTotal * taxRate / 100.
func LineTotals(quantity int, unitPrice, taxRate float64) (lineTotal, lineTax float64) {
	lineTotal = float64(quantity) * unitPrice
	lineTax = lineTotal * taxRate / 100
	return lineTotal, lineTax
}
