package tables

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/VWin4Ever/restaurant-pos-system-sub000/api/middleware"
	"github.com/VWin4Ever/restaurant-pos-system-sub000/api/responses"
	"github.com/VWin4Ever/restaurant-pos-system-sub000/api/validators"
	internaltables "github.com/VWin4Ever/restaurant-pos-system-sub000/internal/tables"
	"github.com/VWin4Ever/restaurant-pos-system-sub000/pkg/enums"
	pkgerrors "github.com/VWin4Ever/restaurant-pos-system-sub000/pkg/errors"
	"github.com/VWin4Ever/restaurant-pos-system-sub000/pkg/logger"
)

type setStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// List returns every table, optionally filtered by ?status=.
func List(svc internaltables.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status, ok, err := validators.ParseQueryEnum(r, "status", enums.ParseTableStatus)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var filter *enums.TableStatus
		if ok {
			filter = &status
		}

		tables, err := svc.List(r.Context(), filter)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, internaltables.NewTableDTOs(tables))
	}
}

// SetStatus applies a manual status change such as RESERVED or MAINTENANCE.
func SetStatus(svc internaltables.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, _ := middleware.UserIDFromContext(r.Context())
		if userID == uuid.Nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, middleware.ActorHeader+" header required"))
			return
		}
		tableID, err := validators.PathUUID(r, "tableId", "table id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req setStatusRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		status, err := enums.ParseTableStatus(req.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid table status"))
			return
		}

		table, err := svc.SetStatus(r.Context(), internaltables.SetStatusInput{TableID: tableID, Status: status, UserID: userID})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, internaltables.NewTableDTO(*table))
	}
}
