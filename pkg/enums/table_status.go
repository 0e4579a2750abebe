package enums

import "slices"

// TableStatus tracks whether a dining table can take a new order.
type TableStatus string

const (
	TableStatusAvailable   TableStatus = "AVAILABLE"
	TableStatusOccupied    TableStatus = "OCCUPIED"
	TableStatusReserved    TableStatus = "RESERVED"
	TableStatusMaintenance TableStatus = "MAINTENANCE"
)

var tableStatuses = []TableStatus{
	TableStatusAvailable,
	TableStatusOccupied,
	TableStatusReserved,
	TableStatusMaintenance,
}

func (s TableStatus) String() string { return string(s) }

func (s TableStatus) IsValid() bool { return slices.Contains(tableStatuses, s) }

// AcceptsOrder reports whether a new order may be seated at a table in this state.
func (s TableStatus) AcceptsOrder() bool {
	return s == TableStatusAvailable || s == TableStatusReserved
}

// ParseTableStatus converts raw input such as "occupied" into a TableStatus.
func ParseTableStatus(value string) (TableStatus, error) {
	return parse("table status", value, tableStatuses)
}
