package enums

// OrderStatus tracks the lifecycle of a table order. PENDING is the only open
// state: COMPLETED (paid) and CANCELLED are final.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusCompleted OrderStatus = "COMPLETED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

func (s OrderStatus) String() string { return string(s) }

// IsTerminal reports whether no further transition is defined out of s.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusCompleted || s == OrderStatusCancelled
}

func (s OrderStatus) isOpen() bool { return s == OrderStatusPending }

// CanUpdate reports whether items may be replaced in the current state.
func (s OrderStatus) CanUpdate() bool { return s.isOpen() }

// CanReassign reports whether the order may move to another table.
func (s OrderStatus) CanReassign() bool { return s.isOpen() }

// CanPay reports whether the order may be settled.
func (s OrderStatus) CanPay() bool { return s.isOpen() }

// CanCancel reports whether the order may be cancelled.
func (s OrderStatus) CanCancel() bool { return s.isOpen() }
