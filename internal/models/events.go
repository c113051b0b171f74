package models

import "time"

// Event types
const (
	EventTypeTableOpened        = "TABLE_OPENED"
	EventTypeOrderSubmitted     = "ORDER_SUBMITTED"
	EventTypeOrderStatusChanged = "ORDER_STATUS_CHANGED"
	EventTypeTableClosed        = "TABLE_CLOSED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// TableOpenedEvent published when a table session is opened
type TableOpenedEvent struct {
	BaseEvent
	TableNumber int    `json:"table_number"`
	SessionID   string `json:"session_id"`
	PartySize   int    `json:"party_size,omitempty"`
}

// OrderSubmittedEvent published when a cart is committed to the kitchen
type OrderSubmittedEvent struct {
	BaseEvent
	TableNumber int        `json:"table_number"`
	SessionID   string     `json:"session_id"`
	OrderID     int64      `json:"order_id"`
	Lines       []CartLine `json:"lines"`
	OrderTotal  int64      `json:"order_total"`
}

// OrderStatusChangedEvent published on every successful status advance
type OrderStatusChangedEvent struct {
	BaseEvent
	TableNumber int         `json:"table_number"`
	OrderID     int64       `json:"order_id"`
	NewStatus   OrderStatus `json:"new_status"`
}

// TableClosedEvent published when a table is closed and billed
type TableClosedEvent struct {
	BaseEvent
	TableNumber int    `json:"table_number"`
	SessionID   string `json:"session_id"`
	OrderCount  int    `json:"order_count"`
	GrandTotal  int64  `json:"grand_total"`
}
