package tables

import (
	"time"

	"github.com/google/uuid"

	"github.com/VWin4Ever/restaurant-pos-system-sub000/pkg/db/models"
	"github.com/VWin4Ever/restaurant-pos-system-sub000/pkg/enums"
)

// TableDTO is the API representation of a dining table.
type TableDTO struct {
	ID        uuid.UUID         `json:"id"`
	Number    int               `json:"number"`
	Status    enums.TableStatus `json:"status"`
	Capacity  int               `json:"capacity"`
	UpdatedAt time.Time         `json:"updated_at"`
}

func NewTableDTO(table models.Table) TableDTO {
	return TableDTO{
		ID:        table.ID,
		Number:    table.Number,
		Status:    table.Status,
		Capacity:  table.Capacity,
		UpdatedAt: table.UpdatedAt,
	}
}

func NewTableDTOs(tables []models.Table) []TableDTO {
	out := make([]TableDTO, 0, len(tables))
	for _, table := range tables {
		out = append(out, NewTableDTO(table))
	}
	return out
}
