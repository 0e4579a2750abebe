package enums

// OrderEventType names the change broadcast after an order transaction commits.
type OrderEventType string

const (
	OrderEventCreated      OrderEventType = "order_created"
	OrderEventUpdated      OrderEventType = "order_updated"
	OrderEventCancelled    OrderEventType = "order_cancelled"
	OrderEventPaid         OrderEventType = "order_paid"
	OrderEventTableChanged OrderEventType = "order_table_changed"
)
