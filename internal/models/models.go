package models

import "time"

// ProductSnapshot captures a catalog product at the moment it enters a
// cart. Prices are in centavos; a later price change in the catalog never
// alters lines already snapshotted.
type ProductSnapshot struct {
	ProductID int64  `db:"id" json:"product_id"`
	Name      string `db:"name" json:"name"`
	UnitPrice int64  `db:"unit_price" json:"unit_price"`
	Active    bool   `db:"active" json:"active"`
}

// CartLine is one product entry in a cart or order. Quantity is always >= 1;
// a zero-quantity line is removed, never stored.
type CartLine struct {
	ProductID int64  `json:"product_id"`
	Name      string `json:"name"`
	UnitPrice int64  `json:"unit_price"`
	Quantity  int    `json:"quantity"`
}

// Subtotal returns unit price times quantity for this line.
func (l CartLine) Subtotal() int64 {
	return l.UnitPrice * int64(l.Quantity)
}

// OrderStatus is the kitchen progression of a submitted order. Transitions
// only move forward, one step at a time.
type OrderStatus string

const (
	StatusReceived  OrderStatus = "received"
	StatusPreparing OrderStatus = "preparing"
	StatusReady     OrderStatus = "ready"
	StatusDelivered OrderStatus = "delivered"
)

// Next returns the status that follows s. ok is false when s is terminal
// or unknown.
func (s OrderStatus) Next() (OrderStatus, bool) {
	switch s {
	case StatusReceived:
		return StatusPreparing, true
	case StatusPreparing:
		return StatusReady, true
	case StatusReady:
		return StatusDelivered, true
	default:
		return "", false
	}
}

// Terminal reports whether s is the final kitchen status.
func (s OrderStatus) Terminal() bool {
	return s == StatusDelivered
}

// Valid reports whether s is one of the known statuses.
func (s OrderStatus) Valid() bool {
	switch s {
	case StatusReceived, StatusPreparing, StatusReady, StatusDelivered:
		return true
	}
	return false
}

// TableOccupancy is whether a table currently has an active session.
type TableOccupancy string

const (
	TableFree     TableOccupancy = "free"
	TableOccupied TableOccupancy = "occupied"
)

// Order is an immutable record of a submitted cart. Only Status changes
// after creation, and only through the advance operation.
type Order struct {
	OrderID     int64       `json:"order_id"`
	SessionID   string      `json:"session_id"`
	TableNumber int         `json:"table_number"`
	Lines       []CartLine  `json:"lines"`
	SubmittedAt time.Time   `json:"submitted_at"`
	Status      OrderStatus `json:"status"`
}

// Total returns the sum of line subtotals, recomputed from the lines.
func (o Order) Total() int64 {
	var total int64
	for _, l := range o.Lines {
		total += l.Subtotal()
	}
	return total
}

// ComandaOrder is one order as it appears on a table's bill.
type ComandaOrder struct {
	OrderID     int64       `json:"order_id"`
	Lines       []CartLine  `json:"lines"`
	Total       int64       `json:"total"`
	Status      OrderStatus `json:"status"`
	SubmittedAt time.Time   `json:"submitted_at"`
}

// Comanda is the consolidated bill for one table session. It is derived on
// every request from the session's orders and never stored between calls.
type Comanda struct {
	TableNumber int            `json:"table_number"`
	SessionID   string         `json:"session_id"`
	PartySize   int            `json:"party_size,omitempty"`
	OpenedAt    time.Time      `json:"opened_at"`
	ClosedAt    *time.Time     `json:"closed_at,omitempty"`
	Orders      []ComandaOrder `json:"orders"`
	GrandTotal  int64          `json:"grand_total"`
}

// TableSummary is the per-table row shown on the dashboard occupancy grid.
type TableSummary struct {
	TableNumber  int            `json:"table_number"`
	Occupancy    TableOccupancy `json:"occupancy"`
	OpenOrders   int            `json:"open_orders"`
	RunningTotal int64          `json:"running_total"`
	OpenedAt     *time.Time     `json:"opened_at,omitempty"`
}

// SessionView is a read-only snapshot of a table session handed to callers.
type SessionView struct {
	SessionID   string     `json:"session_id"`
	TableNumber int        `json:"table_number"`
	PartySize   int        `json:"party_size,omitempty"`
	OpenedAt    time.Time  `json:"opened_at"`
	Cart        []CartLine `json:"cart"`
	CartTotal   int64      `json:"cart_total"`
	Orders      []Order    `json:"orders"`
}
