package service

import (
	"context"
	"testing"

	"comanda-service/internal/lifecycle"
	"comanda-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCatalog struct {
	products map[int64]models.ProductSnapshot
}

func (f *fakeCatalog) LookupProduct(_ context.Context, productID int64) (models.ProductSnapshot, error) {
	p, ok := f.products[productID]
	if !ok || !p.Active {
		return models.ProductSnapshot{}, lifecycle.ErrProductUnavailable
	}
	return p, nil
}

type fakeSink struct {
	events []string
}

func (f *fakeSink) PublishTableOpened(_ context.Context, e *models.TableOpenedEvent) error {
	f.events = append(f.events, e.EventType)
	return nil
}

func (f *fakeSink) PublishOrderSubmitted(_ context.Context, e *models.OrderSubmittedEvent) error {
	f.events = append(f.events, e.EventType)
	return nil
}

func (f *fakeSink) PublishOrderStatusChanged(_ context.Context, e *models.OrderStatusChangedEvent) error {
	f.events = append(f.events, e.EventType)
	return nil
}

func (f *fakeSink) PublishTableClosed(_ context.Context, e *models.TableClosedEvent) error {
	f.events = append(f.events, e.EventType)
	return nil
}

type fakeArchive struct {
	archived []models.Comanda
}

func (f *fakeArchive) ArchiveComanda(_ context.Context, comanda models.Comanda) error {
	f.archived = append(f.archived, comanda)
	return nil
}

func newTestService() (*TableService, *fakeSink, *fakeArchive) {
	catalog := &fakeCatalog{products: map[int64]models.ProductSnapshot{
		1: {ProductID: 1, Name: "Burger", UnitPrice: 2590, Active: true},
		2: {ProductID: 2, Name: "Soda", UnitPrice: 690, Active: true},
		3: {ProductID: 3, Name: "Seasonal", UnitPrice: 1500, Active: false},
	}}
	sink := &fakeSink{}
	archive := &fakeArchive{}
	svc := NewTableService(lifecycle.NewRegistry(), catalog, sink, archive)
	return svc, sink, archive
}

func TestResolveOrCreateOpensOnce(t *testing.T) {
	svc, sink, _ := newTestService()
	ctx := context.Background()

	first, err := svc.ResolveOrCreate(ctx, 5)
	require.NoError(t, err)

	second, err := svc.ResolveOrCreate(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, first.SessionID, second.SessionID)

	// Only the first scan publishes TableOpened.
	assert.Equal(t, []string{models.EventTypeTableOpened}, sink.events)
}

func TestOpenTableTwiceRejected(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	_, err := svc.OpenTable(ctx, 5, 4)
	require.NoError(t, err)

	_, err = svc.OpenTable(ctx, 5, 2)
	assert.ErrorIs(t, err, lifecycle.ErrAlreadyOccupied)
}

func TestAddItemUnavailableProduct(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	_, err := svc.ResolveOrCreate(ctx, 5)
	require.NoError(t, err)

	_, err = svc.AddItem(ctx, 5, 3, 1)
	assert.ErrorIs(t, err, lifecycle.ErrProductUnavailable)

	_, err = svc.AddItem(ctx, 5, 99, 1)
	assert.ErrorIs(t, err, lifecycle.ErrProductUnavailable)

	view, err := svc.GetTable(ctx, 5)
	require.NoError(t, err)
	assert.Empty(t, view.Cart)
}

func TestAddItemWithoutSession(t *testing.T) {
	svc, _, _ := newTestService()
	_, err := svc.AddItem(context.Background(), 5, 1, 1)
	assert.ErrorIs(t, err, lifecycle.ErrNotFound)
}

func TestSubmitPublishesEvent(t *testing.T) {
	svc, sink, _ := newTestService()
	ctx := context.Background()

	_, err := svc.ResolveOrCreate(ctx, 5)
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, 5, 1, 2)
	require.NoError(t, err)

	order, err := svc.SubmitOrder(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, int64(2*2590), order.Total())
	assert.Contains(t, sink.events, models.EventTypeOrderSubmitted)

	_, err = svc.SubmitOrder(ctx, 5)
	assert.ErrorIs(t, err, lifecycle.ErrEmptyCart)
}

func TestCloseTableArchivesComanda(t *testing.T) {
	svc, sink, archive := newTestService()
	ctx := context.Background()

	_, err := svc.ResolveOrCreate(ctx, 5)
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, 5, 1, 2)
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, 5, 2, 1)
	require.NoError(t, err)

	view, err := svc.GetTable(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, int64(2*2590+690), view.CartTotal)

	order, err := svc.SubmitOrder(ctx, 5)
	require.NoError(t, err)

	_, err = svc.CloseTable(ctx, 5)
	assert.ErrorIs(t, err, lifecycle.ErrOutstandingOrders)

	canClose, err := svc.CanClose(ctx, 5)
	require.NoError(t, err)
	assert.False(t, canClose)

	for i := 0; i < 3; i++ {
		_, err = svc.AdvanceOrder(ctx, 5, order.OrderID)
		require.NoError(t, err)
	}

	canClose, err = svc.CanClose(ctx, 5)
	require.NoError(t, err)
	assert.True(t, canClose)

	comanda, err := svc.CloseTable(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, order.Total(), comanda.GrandTotal)

	require.Len(t, archive.archived, 1)
	assert.Equal(t, comanda.SessionID, archive.archived[0].SessionID)
	assert.Contains(t, sink.events, models.EventTypeTableClosed)

	_, err = svc.GetTable(ctx, 5)
	assert.ErrorIs(t, err, lifecycle.ErrNotFound)
}

func TestAdvanceOrderNotifiesEachStep(t *testing.T) {
	svc, sink, _ := newTestService()
	ctx := context.Background()

	_, err := svc.ResolveOrCreate(ctx, 8)
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, 8, 2, 1)
	require.NoError(t, err)
	order, err := svc.SubmitOrder(ctx, 8)
	require.NoError(t, err)

	var changes int
	for _, e := range sink.events {
		if e == models.EventTypeOrderStatusChanged {
			changes++
		}
	}
	assert.Zero(t, changes)

	for i := 0; i < 3; i++ {
		_, err = svc.AdvanceOrder(ctx, 8, order.OrderID)
		require.NoError(t, err)
	}

	changes = 0
	for _, e := range sink.events {
		if e == models.EventTypeOrderStatusChanged {
			changes++
		}
	}
	assert.Equal(t, 3, changes)

	_, err = svc.AdvanceOrder(ctx, 8, order.OrderID)
	assert.ErrorIs(t, err, lifecycle.ErrInvalidTransition)
}

func TestTablesSummary(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	_, err := svc.OpenTable(ctx, 2, 3)
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, 2, 1, 1)
	require.NoError(t, err)
	_, err = svc.SubmitOrder(ctx, 2)
	require.NoError(t, err)

	tables := svc.Tables(ctx)
	require.Len(t, tables, 1)
	assert.Equal(t, 2, tables[0].TableNumber)
	assert.Equal(t, models.TableOccupied, tables[0].Occupancy)
	assert.Equal(t, 1, tables[0].OpenOrders)
	assert.Equal(t, int64(2590), tables[0].RunningTotal)
}
