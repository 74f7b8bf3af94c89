package domain

import "time"

// Charge is a billable estate charge as supplied by the charge source.
// Amount is in minor currency units and is frozen into the line item at
// add time; later price changes upstream do not propagate.
type Charge struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Amount   int64  `json:"amount"`
	Duration string `json:"duration"`
	Status   string `json:"status"`
}

// LineItem is one cart entry. Charge holds the frozen charge fields from
// the moment the item was added.
type LineItem struct {
	ID       string    `json:"id"`
	Charge   Charge    `json:"charge"`
	Quantity int       `json:"quantity"`
	AddedAt  time.Time `json:"added_at"`
}

// CartSnapshot is a read-only view of the cart. Total is always derived
// from Items, never stored.
type CartSnapshot struct {
	Items []LineItem `json:"items"`
	Total int64      `json:"total"`
}

// PersistedCartRecord is the durable representation of one identity's cart.
type PersistedCartRecord struct {
	Items     []LineItem `json:"items"`
	UpdatedAt time.Time  `json:"updated_at"`
}
