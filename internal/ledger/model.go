package ledger

import "time"

// MovementType tags the origin of a stock delta.
type MovementType string

const (
	MovementSale       MovementType = "SALE"
	MovementPurchase   MovementType = "PURCHASE"
	MovementAdjustment MovementType = "ADJUSTMENT"
	MovementReturn     MovementType = "RETURN"
	MovementTransfer   MovementType = "TRANSFER"
)

// Movement is one append-only row of the stock ledger. Movements are never
// updated or deleted; a product's current stock equals the sum of its deltas.
type Movement struct {
	ID        int64        `json:"id"`
	ProductID int64        `json:"product_id"`
	Delta     int64        `json:"delta"`
	Type      MovementType `json:"type"`
	Reference string       `json:"reference,omitempty"`
	Note      string       `json:"note,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
}
