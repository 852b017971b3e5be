package waybills

import "time"

// WaybillType gives the direction of the shipment.
type WaybillType string

const (
	WaybillTypeOutgoing WaybillType = "OUTGOING"
	WaybillTypeIncoming WaybillType = "INCOMING"
)

// WaybillStatus tracks delivery progress.
type WaybillStatus string

const (
	WaybillStatusSent      WaybillStatus = "SENT"
	WaybillStatusDelivered WaybillStatus = "DELIVERED"
	WaybillStatusCancelled WaybillStatus = "CANCELLED"
)

// Waybill is an unpriced delivery record. It never touches stock or
// partner balances.
type Waybill struct {
	ID          int64         `json:"id"`
	Number      string        `json:"number"`
	Type        WaybillType   `json:"type"`
	Status      WaybillStatus `json:"status"`
	PartnerID   int64         `json:"partner_id"`
	PartnerName string        `json:"partner_name,omitempty"`
	WaybillDate time.Time     `json:"waybill_date"`
	Notes       string        `json:"notes"`
	CreatedBy   *int64        `json:"created_by,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
	Items       []WaybillItem `json:"items,omitempty"`
}

// WaybillItem is one unpriced line.
type WaybillItem struct {
	ID          int64  `json:"id"`
	WaybillID   int64  `json:"waybill_id"`
	ProductID   int64  `json:"product_id"`
	ProductName string `json:"product_name,omitempty"`
	Quantity    int    `json:"quantity"`
	Unit        string `json:"unit"`
	Description string `json:"description"`
}

// CreateWaybillRequest opens a new waybill in status SENT.
type CreateWaybillRequest struct {
	PartnerID   int64                `json:"partner_id" validate:"required,gt=0"`
	Type        WaybillType          `json:"type" validate:"required,oneof=OUTGOING INCOMING"`
	WaybillDate time.Time            `json:"waybill_date" validate:"required"`
	Notes       string               `json:"notes" validate:"max=1000"`
	Items       []WaybillItemRequest `json:"items" validate:"required,min=1,dive"`
}

// WaybillItemRequest is one requested line.
type WaybillItemRequest struct {
	ProductID   int64  `json:"product_id" validate:"required,gt=0"`
	Quantity    int    `json:"quantity" validate:"required,gt=0"`
	Unit        string `json:"unit" validate:"max=20"`
	Description string `json:"description" validate:"max=500"`
}

// UpdateWaybillRequest edits a waybill. When Items is present the stored
// item set is replaced wholesale, it is never merged.
type UpdateWaybillRequest struct {
	PartnerID   *int64                `json:"partner_id,omitempty" validate:"omitempty,gt=0"`
	Type        *WaybillType          `json:"type,omitempty" validate:"omitempty,oneof=OUTGOING INCOMING"`
	Status      *WaybillStatus        `json:"status,omitempty" validate:"omitempty,oneof=SENT DELIVERED CANCELLED"`
	WaybillDate *time.Time            `json:"waybill_date,omitempty"`
	Notes       *string               `json:"notes,omitempty" validate:"omitempty,max=1000"`
	Items       *[]WaybillItemRequest `json:"items,omitempty" validate:"omitempty,min=1,dive"`
}

// ListFilters narrows waybill listings.
type ListFilters struct {
	Type      WaybillType
	Status    WaybillStatus
	PartnerID int64
	Search    string
	Limit     int
	Offset    int
}
