package middleware

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/VWin4Ever/restaurant-pos-system-sub000/api/responses"
	pkgerrors "github.com/VWin4Ever/restaurant-pos-system-sub000/pkg/errors"
	"github.com/VWin4Ever/restaurant-pos-system-sub000/pkg/logger"
)

// ActorHeader carries the cashier id forwarded by the upstream gateway. The
// gateway authenticates; this service only propagates the identity.
const ActorHeader = "X-User-Id"

// Actor parses the actor header when present.
func Actor(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get(ActorHeader))
			if raw == "" {
				next.ServeHTTP(w, r)
				return
			}
			userID, err := uuid.Parse(raw)
			if err != nil || userID == uuid.Nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid "+ActorHeader+" header"))
				return
			}
			ctx := logg.WithUserID(WithUserID(r.Context(), userID), userID.String())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireActor rejects requests that arrive without an actor.
func RequireActor(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := UserIDFromContext(r.Context()); !ok {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, ActorHeader+" header required"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
