package inventory

import "time"

// MovementType classifies a stock movement row.
type MovementType string

const (
	// MovementTypeSale and MovementTypePurchase are written by invoice postings.
	MovementTypeSale     MovementType = "SALE"
	MovementTypePurchase MovementType = "PURCHASE"
	// Manual adjustments.
	MovementTypeAdjustIn  MovementType = "ADJUST_IN"
	MovementTypeAdjustOut MovementType = "ADJUST_OUT"
	MovementTypeCount     MovementType = "COUNT"
)

// Movement is one append-only row of a product's stock card. OldStock and
// NewStock snapshot the product stock around the write, so the card replays
// the full history without recomputation.
type Movement struct {
	ID          int64        `json:"id"`
	Ref         string       `json:"ref"`
	ProductID   int64        `json:"product_id"`
	Type        MovementType `json:"type"`
	Quantity    int          `json:"quantity"`
	OldStock    int          `json:"old_stock"`
	NewStock    int          `json:"new_stock"`
	Description string       `json:"description"`
	CreatedBy   *int64       `json:"created_by,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
}

// AdjustDirection selects the sign of a delta adjustment.
type AdjustDirection string

const (
	AdjustIn  AdjustDirection = "IN"
	AdjustOut AdjustDirection = "OUT"
)

// AdjustRequest applies a relative stock change.
type AdjustRequest struct {
	ProductID   int64           `json:"product_id" validate:"required,gt=0"`
	Direction   AdjustDirection `json:"direction" validate:"required,oneof=IN OUT"`
	Quantity    int             `json:"quantity" validate:"required,gt=0"`
	Description string          `json:"description" validate:"max=500"`
}

// CountRequest overwrites stock with an exact counted value.
type CountRequest struct {
	ProductID   int64  `json:"product_id" validate:"required,gt=0"`
	Counted     int    `json:"counted" validate:"gte=0"`
	Description string `json:"description" validate:"max=500"`
}

// MovementFilters narrows stock card listings.
type MovementFilters struct {
	ProductID int64
	Type      MovementType
	From      *time.Time
	To        *time.Time
	Limit     int
	Offset    int
}
