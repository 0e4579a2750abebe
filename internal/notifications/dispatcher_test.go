package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VWin4Ever/restaurant-pos-system-sub000/pkg/config"
	"github.com/VWin4Ever/restaurant-pos-system-sub000/pkg/db/models"
	"github.com/VWin4Ever/restaurant-pos-system-sub000/pkg/enums"
	"github.com/VWin4Ever/restaurant-pos-system-sub000/pkg/metrics"
)

type published struct {
	channel string
	payload []byte
}

type stubPublisher struct {
	mu    sync.Mutex
	calls []published
	err   error
}

func (s *stubPublisher) Publish(ctx context.Context, channel string, payload []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := ctx.Deadline(); !ok {
		return errors.New("publish without deadline")
	}
	s.calls = append(s.calls, published{channel: channel, payload: payload})
	return s.err
}

func testNotifierConfig() config.NotifierConfig {
	return config.NotifierConfig{
		TablesChannel:  "pos.tables",
		OrdersChannel:  "pos.orders",
		PublishTimeout: time.Second,
	}
}

func TestNewDispatcherValidates(t *testing.T) {
	_, err := NewDispatcher(nil, testNotifierConfig(), nil, nil)
	require.Error(t, err)

	_, err = NewDispatcher(&stubPublisher{}, config.NotifierConfig{}, nil, nil)
	require.Error(t, err)
}

func TestDispatcherPublishesTableEnvelope(t *testing.T) {
	pub := &stubPublisher{}
	d, err := NewDispatcher(pub, testNotifierConfig(), nil, nil)
	require.NoError(t, err)

	table := models.Table{ID: uuid.New(), Number: 3, Status: enums.TableStatusOccupied, Capacity: 6}
	d.NotifyTableChanged(context.Background(), table)
	d.Wait()

	require.Len(t, pub.calls, 1)
	assert.Equal(t, "pos.tables", pub.calls[0].channel)

	var env Envelope
	require.NoError(t, json.Unmarshal(pub.calls[0].payload, &env))
	assert.Equal(t, "table_changed", env.EventType)
	assert.Equal(t, 1, env.Version)
	assert.NotEmpty(t, env.EventID)

	var data TablePayload
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, table.ID, data.TableID)
	assert.Equal(t, enums.TableStatusOccupied, data.Status)
	assert.Equal(t, 6, data.Capacity)
}

func TestDispatcherPublishesOrderEvent(t *testing.T) {
	pub := &stubPublisher{}
	d, err := NewDispatcher(pub, testNotifierConfig(), nil, nil)
	require.NoError(t, err)

	order := &models.Order{
		ID:          uuid.New(),
		OrderNumber: "ORD-20260301-ABCDEF",
		TableID:     uuid.New(),
		Status:      enums.OrderStatusPending,
		Total:       decimal.RequireFromString("22"),
	}
	user := uuid.New()

	// a cancelled request context must not stop the publish
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	d.NotifyOrderChanged(ctx, NewOrderEvent(enums.OrderEventCreated, order, user))
	d.Wait()

	require.Len(t, pub.calls, 1)
	assert.Equal(t, "pos.orders", pub.calls[0].channel)

	var env Envelope
	require.NoError(t, json.Unmarshal(pub.calls[0].payload, &env))
	assert.Equal(t, string(enums.OrderEventCreated), env.EventType)

	var event OrderEvent
	require.NoError(t, json.Unmarshal(env.Data, &event))
	assert.Equal(t, order.ID, event.OrderID)
	assert.Equal(t, "ORD-20260301-ABCDEF", event.OrderNumber)
	assert.Equal(t, user, event.UserID)
	assert.True(t, event.Total.Equal(decimal.NewFromInt(22)))
}

func TestDispatcherCountsFailures(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewOrderMetrics(reg)
	pub := &stubPublisher{err: errors.New("redis down")}
	d, err := NewDispatcher(pub, testNotifierConfig(), m, nil)
	require.NoError(t, err)

	d.NotifyTableChanged(context.Background(), models.Table{ID: uuid.New()})
	d.NotifyTableChanged(context.Background(), models.Table{ID: uuid.New()})
	d.Wait()

	count, err := testutil.GatherAndCount(reg, "notification_failure_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	mfs, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range mfs {
		if mf.GetName() == "notification_failure_total" {
			assert.Equal(t, float64(2), mf.GetMetric()[0].GetCounter().GetValue())
		}
	}
}

func TestNopNotifier(t *testing.T) {
	var n Notifier = Nop{}
	n.NotifyTableChanged(context.Background(), models.Table{})
	n.NotifyOrderChanged(context.Background(), OrderEvent{})
}
