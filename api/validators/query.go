package validators

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	pkgerrors "github.com/VWin4Ever/restaurant-pos-system-sub000/pkg/errors"
)

// ParseQueryInt reads an optional bounded integer query parameter.
func ParseQueryInt(r *http.Request, key string, defaultVal, min, max int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return defaultVal, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, pkgerrors.Newf(pkgerrors.CodeValidation, "%s must be numeric", key).
			WithDetails(map[string]any{"field": key, "value": raw})
	}
	if value < min || value > max {
		return 0, pkgerrors.Newf(pkgerrors.CodeValidation, "%s must be between %d and %d", key, min, max).
			WithDetails(map[string]any{"field": key, "min": min, "max": max})
	}
	return value, nil
}

// ParseQueryEnum reads an optional query parameter through parse. ok is false
// when the parameter is absent.
func ParseQueryEnum[T any](r *http.Request, key string, parse func(string) (T, error)) (value T, ok bool, err error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return value, false, nil
	}
	value, err = parse(raw)
	if err != nil {
		return value, false, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid "+key+" filter").
			WithDetails(map[string]any{"field": key, "value": raw})
	}
	return value, true, nil
}

// PathUUID parses a required uuid route parameter.
func PathUUID(r *http.Request, param, field string) (uuid.UUID, error) {
	return ParseUUID(chi.URLParam(r, param), field)
}

// ParseUUID parses a required identifier taken from a path or body field.
func ParseUUID(raw, field string) (uuid.UUID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, field+" is required")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid "+field)
	}
	return id, nil
}
