// Package queue defines message payloads exchanged over the message broker.
package queue

// OrderPlacedItem is one line of a placed order as carried in the event.
type OrderPlacedItem struct {
	Title    string `json:"title"`
	Size     string `json:"size"`
	Quantity uint32 `json:"quantity"`
}

// OrderPlacedEvent is published when checkout persists a new order.
// It contains enough information for downstream consumers to log,
// notify, or feed analytics without querying the primary database.
// The verification token and shipping address are deliberately absent;
// the event fans out further than the order record should.
type OrderPlacedEvent struct {
	EventID    string            `json:"event_id"` // uuid, for consumer-side dedup
	OrderID    uint64            `json:"order_id"`
	UserID     uint64            `json:"user_id"`
	Status     string            `json:"status"`
	TotalCents uint32            `json:"total_cents"`
	Items      []OrderPlacedItem `json:"items"`
	PlacedAt   string            `json:"placed_at"`
}
