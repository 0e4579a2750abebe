package stocks

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/VWin4Ever/restaurant-pos-system-sub000/api/middleware"
	"github.com/VWin4Ever/restaurant-pos-system-sub000/api/responses"
	"github.com/VWin4Ever/restaurant-pos-system-sub000/api/validators"
	"github.com/VWin4Ever/restaurant-pos-system-sub000/internal/stock"
	pkgerrors "github.com/VWin4Ever/restaurant-pos-system-sub000/pkg/errors"
	"github.com/VWin4Ever/restaurant-pos-system-sub000/pkg/logger"
)

const (
	defaultLogLimit = 50
	maxLogLimit     = 500
)

type adjustRequest struct {
	Quantity *int   `json:"quantity" validate:"required,gte=0"`
	Note     string `json:"note" validate:"max=255"`
}

// Adjust sets a stock row to an absolute count after a physical recount.
func Adjust(svc stock.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, _ := middleware.UserIDFromContext(r.Context())
		if userID == uuid.Nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, middleware.ActorHeader+" header required"))
			return
		}
		stockID, err := validators.PathUUID(r, "stockId", "stock id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req adjustRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		row, err := svc.Adjust(r.Context(), stock.AdjustInput{
			StockID:  stockID,
			Quantity: *req.Quantity,
			UserID:   userID,
			Note:     validators.SanitizeString(req.Note, 255),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, stock.NewStockDTO(*row))
	}
}

// Logs returns the newest ledger entries of a stock row.
func Logs(svc stock.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stockID, err := validators.PathUUID(r, "stockId", "stock id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", defaultLogLimit, 1, maxLogLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		logs, err := svc.ListLogs(r.Context(), stockID, limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, stock.NewStockLogDTOs(logs))
	}
}
