package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/VWin4Ever/restaurant-pos-system-sub000/api/responses"
	pkgerrors "github.com/VWin4Ever/restaurant-pos-system-sub000/pkg/errors"
	"github.com/VWin4Ever/restaurant-pos-system-sub000/pkg/logger"
	pkgredis "github.com/VWin4Ever/restaurant-pos-system-sub000/pkg/redis"
)

const (
	IdempotencyKeyHeader = "Idempotency-Key"
	ReplayedHeader       = "Idempotent-Replayed"

	defaultLockTTL       = 30 * time.Second
	maxIdempotencyKeyLen = 128
)

type recordState string

const (
	statePending   recordState = "pending"
	stateCompleted recordState = "completed"
)

type idempotencyRecord struct {
	State       recordState `json:"state"`
	RequestHash string      `json:"request_hash"`
	Status      int         `json:"status,omitempty"`
	ContentType string      `json:"content_type,omitempty"`
	Body        string      `json:"body,omitempty"`
}

// Idempotency guards mutating routes with an Idempotency-Key header. The first
// request claims the key, later requests with the same key and body replay the
// stored response.
type Idempotency struct {
	store   pkgredis.IdempotencyStore
	lockTTL time.Duration
	logg    *logger.Logger
}

// NewIdempotency returns a guard backed by store. A nil store disables replay.
func NewIdempotency(store pkgredis.IdempotencyStore, lockTTL time.Duration, logg *logger.Logger) *Idempotency {
	if lockTTL <= 0 {
		lockTTL = defaultLockTTL
	}
	return &Idempotency{store: store, lockTTL: lockTTL, logg: logg}
}

// Require keeps completed responses for ttl.
func (i *Idempotency) Require(ttl time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if i == nil || i.store == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			clientKey := strings.TrimSpace(r.Header.Get(IdempotencyKeyHeader))
			switch {
			case clientKey == "":
				responses.WriteError(ctx, i.logg, w, pkgerrors.New(pkgerrors.CodeValidation, IdempotencyKeyHeader+" header required"))
				return
			case len(clientKey) > maxIdempotencyKeyLen:
				responses.WriteError(ctx, i.logg, w, pkgerrors.New(pkgerrors.CodeValidation, IdempotencyKeyHeader+" header too long"))
				return
			}

			body, err := io.ReadAll(r.Body)
			if err != nil {
				responses.WriteError(ctx, i.logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read request body"))
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))

			key := i.store.IdempotencyKey(scopeFor(r), clientKey)
			hash := fingerprint(r, body)

			pending, _ := json.Marshal(idempotencyRecord{State: statePending, RequestHash: hash})
			claimed, err := i.store.SetNX(ctx, key, string(pending), i.lockTTL)
			if err != nil {
				responses.WriteError(ctx, i.logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "claim idempotency key"))
				return
			}
			if !claimed {
				i.replay(w, r, key, hash)
				return
			}

			capture := &responseCapture{ResponseWriter: w}
			next.ServeHTTP(capture, r)
			i.complete(r, key, hash, capture, ttl)
		})
	}
}

func (i *Idempotency) replay(w http.ResponseWriter, r *http.Request, key, hash string) {
	ctx := r.Context()
	stored, err := i.store.Get(ctx, key)
	if pkgredis.IsMiss(err) {
		// the claim expired or was released between SetNX and Get
		responses.WriteError(ctx, i.logg, w, pkgerrors.New(pkgerrors.CodeConflict, "request with this idempotency key is being retried"))
		return
	}
	if err != nil {
		responses.WriteError(ctx, i.logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load idempotency record"))
		return
	}

	var record idempotencyRecord
	if err := json.Unmarshal([]byte(stored), &record); err != nil {
		responses.WriteError(ctx, i.logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode idempotency record"))
		return
	}
	if record.RequestHash != hash {
		responses.WriteError(ctx, i.logg, w, pkgerrors.New(pkgerrors.CodeIdempotency, "idempotency key reused with different request body"))
		return
	}
	if record.State == statePending {
		responses.WriteError(ctx, i.logg, w, pkgerrors.New(pkgerrors.CodeConflict, "request with this idempotency key is still in progress"))
		return
	}

	body, err := base64.StdEncoding.DecodeString(record.Body)
	if err != nil {
		responses.WriteError(ctx, i.logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode idempotency record"))
		return
	}
	if record.ContentType != "" {
		w.Header().Set("Content-Type", record.ContentType)
	}
	w.Header().Set(ReplayedHeader, "true")
	w.WriteHeader(record.Status)
	_, _ = w.Write(body)
}

// complete stores the captured response. Server failures release the claim so
// the client can retry the same key.
func (i *Idempotency) complete(r *http.Request, key, hash string, capture *responseCapture, ttl time.Duration) {
	ctx := r.Context()
	status := capture.statusOrOK()
	if status >= http.StatusInternalServerError {
		if err := i.store.Del(ctx, key); err != nil {
			i.logg.Error(ctx, "idempotency.release_failed", err)
		}
		return
	}

	payload, err := json.Marshal(idempotencyRecord{
		State:       stateCompleted,
		RequestHash: hash,
		Status:      status,
		ContentType: capture.Header().Get("Content-Type"),
		Body:        base64.StdEncoding.EncodeToString(capture.body.Bytes()),
	})
	if err != nil {
		i.logg.Error(ctx, "idempotency.encode_failed", err)
		return
	}
	if err := i.store.Set(ctx, key, string(payload), ttl); err != nil {
		i.logg.Error(ctx, "idempotency.persist_failed", err)
	}
}

func scopeFor(r *http.Request) string {
	actor := "anonymous"
	if userID, ok := UserIDFromContext(r.Context()); ok {
		actor = userID.String()
	}
	return strings.Join([]string{actor, r.Method, r.URL.Path}, "|")
}

// fingerprint binds a key to the route and the exact request body.
func fingerprint(r *http.Request, body []byte) string {
	h := sha256.New()
	h.Write([]byte(routePattern(r)))
	h.Write([]byte{0})
	h.Write(body)
	return base64.RawStdEncoding.EncodeToString(h.Sum(nil))
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return r.URL.Path
}

type responseCapture struct {
	http.ResponseWriter
	body   bytes.Buffer
	status int
}

func (c *responseCapture) WriteHeader(code int) {
	if c.status == 0 {
		c.status = code
	}
	c.ResponseWriter.WriteHeader(code)
}

func (c *responseCapture) Write(b []byte) (int, error) {
	if c.status == 0 {
		c.status = http.StatusOK
	}
	c.body.Write(b)
	return c.ResponseWriter.Write(b)
}

func (c *responseCapture) statusOrOK() int {
	if c.status == 0 {
		return http.StatusOK
	}
	return c.status
}
