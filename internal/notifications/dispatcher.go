package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/VWin4Ever/restaurant-pos-system-sub000/pkg/config"
	"github.com/VWin4Ever/restaurant-pos-system-sub000/pkg/db/models"
	"github.com/VWin4Ever/restaurant-pos-system-sub000/pkg/enums"
	"github.com/VWin4Ever/restaurant-pos-system-sub000/pkg/logger"
	"github.com/VWin4Ever/restaurant-pos-system-sub000/pkg/metrics"
	"github.com/VWin4Ever/restaurant-pos-system-sub000/pkg/redis"
)

const (
	envelopeVersion       = 1
	eventTableChanged     = "table_changed"
	defaultPublishTimeout = 2 * time.Second
)

// Envelope is the JSON document published on every channel.
type Envelope struct {
	Version    int             `json:"version"`
	EventID    string          `json:"event_id"`
	EventType  string          `json:"event_type"`
	OccurredAt time.Time       `json:"occurred_at"`
	Data       json.RawMessage `json:"data"`
}

// TablePayload is the data of a table_changed envelope.
type TablePayload struct {
	TableID  uuid.UUID         `json:"table_id"`
	Number   int               `json:"number"`
	Status   enums.TableStatus `json:"status"`
	Capacity int               `json:"capacity"`
}

// Dispatcher publishes change notifications to Redis channels on background
// goroutines. Publish failures are logged and counted only.
type Dispatcher struct {
	pub     redis.Publisher
	cfg     config.NotifierConfig
	metrics *metrics.OrderMetrics
	logg    *logger.Logger
	wg      sync.WaitGroup
}

// NewDispatcher builds a Redis-backed notifier.
func NewDispatcher(pub redis.Publisher, cfg config.NotifierConfig, m *metrics.OrderMetrics, logg *logger.Logger) (*Dispatcher, error) {
	if pub == nil {
		return nil, fmt.Errorf("publisher required")
	}
	if cfg.TablesChannel == "" || cfg.OrdersChannel == "" {
		return nil, fmt.Errorf("notifier channels required")
	}
	if cfg.PublishTimeout <= 0 {
		cfg.PublishTimeout = defaultPublishTimeout
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &Dispatcher{pub: pub, cfg: cfg, metrics: m, logg: logg}, nil
}

// NotifyTableChanged publishes the table's current state.
func (d *Dispatcher) NotifyTableChanged(ctx context.Context, table models.Table) {
	d.publish(ctx, d.cfg.TablesChannel, eventTableChanged, TablePayload{
		TableID:  table.ID,
		Number:   table.Number,
		Status:   table.Status,
		Capacity: table.Capacity,
	})
}

// NotifyOrderChanged publishes an order lifecycle event.
func (d *Dispatcher) NotifyOrderChanged(ctx context.Context, event OrderEvent) {
	d.publish(ctx, d.cfg.OrdersChannel, string(event.Type), event)
}

// Wait blocks until in-flight publishes finish.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

func (d *Dispatcher) publish(ctx context.Context, channel, eventType string, data any) {
	logCtx := d.logg.WithFields(ctx, map[string]any{
		"channel":    channel,
		"event_type": eventType,
	})

	payload, err := encodeEnvelope(eventType, data)
	if err != nil {
		d.fail(logCtx, channel, err)
		return
	}

	// the request context is usually done once the response is written
	base := context.WithoutCancel(ctx)
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		pubCtx, cancel := context.WithTimeout(base, d.cfg.PublishTimeout)
		defer cancel()
		if err := d.pub.Publish(pubCtx, channel, payload); err != nil {
			d.fail(logCtx, channel, err)
		}
	}()
}

func (d *Dispatcher) fail(ctx context.Context, channel string, err error) {
	d.metrics.IncNotificationFailure(channel)
	d.logg.Warn(ctx, fmt.Sprintf("notification publish failed: %v", err))
}

func encodeEnvelope(eventType string, data any) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", eventType, err)
	}
	return json.Marshal(Envelope{
		Version:    envelopeVersion,
		EventID:    uuid.NewString(),
		EventType:  eventType,
		OccurredAt: time.Now().UTC(),
		Data:       raw,
	})
}
