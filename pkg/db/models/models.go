package models

import "github.com/google/uuid"

func ensureID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}

// All lists every model, in dependency order, for schema bootstrapping in
// tests and dev auto-migrate.
func All() []any {
	return []any{
		&Product{},
		&Stock{},
		&StockLog{},
		&Table{},
		&Order{},
		&OrderItem{},
		&BusinessSetting{},
	}
}
