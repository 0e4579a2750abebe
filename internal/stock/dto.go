package stock

import (
	"time"

	"github.com/google/uuid"

	"github.com/VWin4Ever/restaurant-pos-system-sub000/pkg/db/models"
	"github.com/VWin4Ever/restaurant-pos-system-sub000/pkg/enums"
)

type StockDTO struct {
	ID        uuid.UUID `json:"id"`
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
	MinStock  int       `json:"min_stock"`
	Low       bool      `json:"low"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewStockDTO(stock models.Stock) StockDTO {
	return StockDTO{
		ID:        stock.ID,
		ProductID: stock.ProductID,
		Quantity:  stock.Quantity,
		MinStock:  stock.MinStock,
		Low:       stock.Quantity <= stock.MinStock,
		UpdatedAt: stock.UpdatedAt,
	}
}

type StockLogDTO struct {
	ID        uuid.UUID          `json:"id"`
	StockID   uuid.UUID          `json:"stock_id"`
	UserID    uuid.UUID          `json:"user_id"`
	Type      enums.StockLogType `json:"type"`
	Quantity  int                `json:"quantity"`
	Note      string             `json:"note,omitempty"`
	CreatedAt time.Time          `json:"created_at"`
}

// NewStockLogDTOs maps ledger entries, newest first as loaded.
func NewStockLogDTOs(logs []models.StockLog) []StockLogDTO {
	out := make([]StockLogDTO, 0, len(logs))
	for _, entry := range logs {
		out = append(out, StockLogDTO{
			ID:        entry.ID,
			StockID:   entry.StockID,
			UserID:    entry.UserID,
			Type:      entry.Type,
			Quantity:  entry.Quantity,
			Note:      entry.Note,
			CreatedAt: entry.CreatedAt,
		})
	}
	return out
}
