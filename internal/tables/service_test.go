package tables

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VWin4Ever/restaurant-pos-system-sub000/internal/notifications"
	"github.com/VWin4Ever/restaurant-pos-system-sub000/pkg/db"
	"github.com/VWin4Ever/restaurant-pos-system-sub000/pkg/db/dbtest"
	"github.com/VWin4Ever/restaurant-pos-system-sub000/pkg/db/models"
	"github.com/VWin4Ever/restaurant-pos-system-sub000/pkg/enums"
	pkgerrors "github.com/VWin4Ever/restaurant-pos-system-sub000/pkg/errors"
)

type stubNotifier struct {
	mu     sync.Mutex
	tables []models.Table
}

func (s *stubNotifier) NotifyTableChanged(_ context.Context, table models.Table) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tables = append(s.tables, table)
}

func (s *stubNotifier) NotifyOrderChanged(context.Context, notifications.OrderEvent) {}

func newTestService(t *testing.T) (Service, *db.Client, *stubNotifier) {
	t.Helper()
	client := db.FromConn(dbtest.Open(t))
	repo := NewRepository(client.DB())
	notifier := &stubNotifier{}
	svc, err := NewService(repo, NewTracker(repo), client, notifier, nil)
	require.NoError(t, err)
	return svc, client, notifier
}

func TestServiceSetStatusNotifies(t *testing.T) {
	svc, client, notifier := newTestService(t)
	ctx := context.Background()
	table := dbtest.SeedTable(t, client.DB(), 5, enums.TableStatusAvailable)

	updated, err := svc.SetStatus(ctx, SetStatusInput{TableID: table.ID, Status: enums.TableStatusReserved, UserID: uuid.New()})
	require.NoError(t, err)
	assert.Equal(t, enums.TableStatusReserved, updated.Status)
	require.Len(t, notifier.tables, 1)
	assert.Equal(t, table.ID, notifier.tables[0].ID)

	// unchanged status does not broadcast
	_, err = svc.SetStatus(ctx, SetStatusInput{TableID: table.ID, Status: enums.TableStatusReserved})
	require.NoError(t, err)
	assert.Len(t, notifier.tables, 1)
}

func TestServiceSetStatusErrors(t *testing.T) {
	svc, client, notifier := newTestService(t)
	ctx := context.Background()
	table := dbtest.SeedTable(t, client.DB(), 1, enums.TableStatusOccupied)
	seedPendingOrder(t, client.DB(), table.ID)

	_, err := svc.SetStatus(ctx, SetStatusInput{TableID: table.ID, Status: enums.TableStatusAvailable})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict))

	_, err = svc.SetStatus(ctx, SetStatusInput{TableID: uuid.New(), Status: enums.TableStatusAvailable})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	_, err = svc.SetStatus(ctx, SetStatusInput{Status: enums.TableStatusAvailable})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	assert.Empty(t, notifier.tables)
}

func TestServiceList(t *testing.T) {
	svc, client, _ := newTestService(t)
	ctx := context.Background()
	dbtest.SeedTable(t, client.DB(), 3, enums.TableStatusAvailable)
	dbtest.SeedTable(t, client.DB(), 1, enums.TableStatusMaintenance)
	dbtest.SeedTable(t, client.DB(), 2, enums.TableStatusAvailable)

	all, err := svc.List(ctx, nil)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []int{1, 2, 3}, []int{all[0].Number, all[1].Number, all[2].Number})

	status := enums.TableStatusAvailable
	available, err := svc.List(ctx, &status)
	require.NoError(t, err)
	assert.Len(t, available, 2)

	bad := enums.TableStatus("nope")
	_, err = svc.List(ctx, &bad)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}
