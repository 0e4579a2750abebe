package middleware

import (
	"net/http"
	"regexp"

	"github.com/google/uuid"

	"github.com/VWin4Ever/restaurant-pos-system-sub000/api/responses"
	"github.com/VWin4Ever/restaurant-pos-system-sub000/pkg/logger"
)

// Upstream ids are echoed only when they are short and log-safe.
var requestIDRe = regexp.MustCompile(`^[A-Za-z0-9._-]{8,64}$`)

// RequestID tags the request, its response and its log lines with one id.
func RequestID(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqID := r.Header.Get(responses.RequestIDHeader)
			if !requestIDRe.MatchString(reqID) {
				reqID = uuid.NewString()
			}
			w.Header().Set(responses.RequestIDHeader, reqID)

			next.ServeHTTP(w, r.WithContext(logg.WithRequestID(r.Context(), reqID)))
		})
	}
}
