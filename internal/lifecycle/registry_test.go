package lifecycle

import (
	"sync"
	"testing"

	"comanda-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenSessionTwiceFails(t *testing.T) {
	r := NewRegistry()

	_, err := r.OpenSession(5, 0)
	require.NoError(t, err)

	_, err = r.OpenSession(5, 0)
	assert.ErrorIs(t, err, ErrAlreadyOccupied)
}

func TestResolveOrCreateIsIdempotent(t *testing.T) {
	r := NewRegistry()

	first, created := r.ResolveOrCreate(5)
	assert.True(t, created)

	second, created := r.ResolveOrCreate(5)
	assert.False(t, created)
	assert.Same(t, first, second)

	other, created := r.ResolveOrCreate(6)
	assert.True(t, created)
	assert.NotEqual(t, first.SessionID(), other.SessionID())
}

func TestGetSessionUnknownTable(t *testing.T) {
	r := NewRegistry()
	_, err := r.GetSession(12)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCloseSessionWithOutstandingOrders(t *testing.T) {
	r := NewRegistry()
	s, err := r.OpenSession(3, 0)
	require.NoError(t, err)

	require.NoError(t, s.AddItem(burger, 1))
	order, err := s.Submit()
	require.NoError(t, err)

	_, err = r.CloseSession(3)
	assert.ErrorIs(t, err, ErrOutstandingOrders)
	assert.Equal(t, models.TableOccupied, r.Occupancy(3))

	for i := 0; i < 3; i++ {
		_, err = s.Advance(order.OrderID)
		require.NoError(t, err)
	}

	comanda, err := r.CloseSession(3)
	require.NoError(t, err)
	assert.Equal(t, order.Total(), comanda.GrandTotal)
	require.NotNil(t, comanda.ClosedAt)

	_, err = r.GetSession(3)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, models.TableFree, r.Occupancy(3))
}

func TestCloseUnknownTable(t *testing.T) {
	r := NewRegistry()
	_, err := r.CloseSession(8)
	assert.ErrorIs(t, err, ErrNotFound)
}

// Full walkthrough: scan, order, kitchen progression, billing, close,
// table free again.
func TestTableLifecycleScenario(t *testing.T) {
	r := NewRegistry()

	assert.Equal(t, models.TableFree, r.Occupancy(5))

	s, created := r.ResolveOrCreate(5)
	require.True(t, created)
	assert.Equal(t, models.TableOccupied, r.Occupancy(5))

	require.NoError(t, s.AddItem(burger, 2))
	require.NoError(t, s.AddItem(soda, 1))
	assert.Equal(t, 2*burger.UnitPrice+soda.UnitPrice, s.CartTotal())

	order, err := s.Submit()
	require.NoError(t, err)
	require.Len(t, order.Lines, 2)
	assert.Empty(t, s.View().Cart)

	statuses := []models.OrderStatus{}
	for i := 0; i < 3; i++ {
		updated, err := s.Advance(order.OrderID)
		require.NoError(t, err)
		statuses = append(statuses, updated.Status)
	}
	assert.Equal(t, []models.OrderStatus{
		models.StatusPreparing,
		models.StatusReady,
		models.StatusDelivered,
	}, statuses)

	_, err = s.Advance(order.OrderID)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	comanda, err := r.CloseSession(5)
	require.NoError(t, err)
	require.Len(t, comanda.Orders, 1)
	assert.Equal(t, order.Total(), comanda.GrandTotal)
	assert.Equal(t, models.TableFree, r.Occupancy(5))

	// Table can be reopened for the next party.
	_, created = r.ResolveOrCreate(5)
	assert.True(t, created)
}

// A pointer obtained before the close must not let callers write into
// the freed session: such orders would reach the kitchen but never any
// comanda.
func TestStaleSessionHandleRejectedAfterClose(t *testing.T) {
	r := NewRegistry()
	s, _ := r.ResolveOrCreate(5)

	_, err := r.CloseSession(5)
	require.NoError(t, err)
	assert.Equal(t, models.TableFree, r.Occupancy(5))

	assert.ErrorIs(t, s.AddItem(burger, 2), ErrNotFound)
	_, err = s.Submit()
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.SetQuantity(burger.ProductID, 1), ErrNotFound)
	assert.ErrorIs(t, s.ClearCart(), ErrNotFound)
	_, err = s.Advance(1)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.AdvanceTo(1, models.StatusPreparing)
	assert.ErrorIs(t, err, ErrNotFound)

	// The fresh session for the reopened table is unaffected.
	fresh, created := r.ResolveOrCreate(5)
	require.True(t, created)
	require.NoError(t, fresh.AddItem(burger, 1))
	order, err := fresh.Submit()
	require.NoError(t, err)
	assert.Equal(t, models.StatusReceived, order.Status)

	// And the stale handle still cannot touch the new session's orders.
	_, err = s.Advance(order.OrderID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestOrderIDsUniqueAcrossTables(t *testing.T) {
	r := NewRegistry()
	a, _ := r.ResolveOrCreate(1)
	b, _ := r.ResolveOrCreate(2)

	require.NoError(t, a.AddItem(burger, 1))
	require.NoError(t, b.AddItem(soda, 1))

	oa, err := a.Submit()
	require.NoError(t, err)
	ob, err := b.Submit()
	require.NoError(t, err)

	assert.NotEqual(t, oa.OrderID, ob.OrderID)
}

func TestTablesSummaries(t *testing.T) {
	r := NewRegistry()

	s2, _ := r.ResolveOrCreate(2)
	s1, _ := r.ResolveOrCreate(1)

	require.NoError(t, s1.AddItem(burger, 1))
	_, err := s1.Submit()
	require.NoError(t, err)

	require.NoError(t, s2.AddItem(soda, 2))
	_, err = s2.Submit()
	require.NoError(t, err)
	require.NoError(t, s2.AddItem(fries, 1))
	_, err = s2.Submit()
	require.NoError(t, err)

	summaries := r.Tables()
	require.Len(t, summaries, 2)

	assert.Equal(t, 1, summaries[0].TableNumber)
	assert.Equal(t, 1, summaries[0].OpenOrders)
	assert.Equal(t, burger.UnitPrice, summaries[0].RunningTotal)

	assert.Equal(t, 2, summaries[1].TableNumber)
	assert.Equal(t, 2, summaries[1].OpenOrders)
	assert.Equal(t, 2*soda.UnitPrice+fries.UnitPrice, summaries[1].RunningTotal)
}

func TestConcurrentResolveOrCreateSingleSession(t *testing.T) {
	r := NewRegistry()

	const goroutines = 32
	ids := make([]string, goroutines)
	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s, _ := r.ResolveOrCreate(9)
			ids[i] = s.SessionID()
		}(i)
	}
	wg.Wait()

	for _, id := range ids {
		assert.Equal(t, ids[0], id)
	}
}
