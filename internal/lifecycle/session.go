package lifecycle

import (
	"sync"
	"time"

	"comanda-service/internal/models"

	"github.com/google/uuid"
)

// TableSession is one occupancy of a physical table, from check-in or
// first QR scan until the table is closed and billed. All mutations on a
// session are serialized by its lock; reads take the lock shared so they
// never observe a half-applied mutation. Sessions for different tables
// share nothing and proceed in parallel.
type TableSession struct {
	mu sync.RWMutex

	sessionID   string
	tableNumber int
	partySize   int
	openedAt    time.Time
	cart        *cart
	orders      []*models.Order

	// closed is set under the session lock when the registry closes the
	// table. A caller still holding the pointer gets ErrNotFound from
	// every mutation instead of writing into an orphaned session.
	closed bool

	nextOrderID func() int64
}

func newTableSession(tableNumber, partySize int, nextOrderID func() int64) *TableSession {
	return &TableSession{
		sessionID:   uuid.New().String(),
		tableNumber: tableNumber,
		partySize:   partySize,
		openedAt:    time.Now(),
		cart:        newCart(),
		nextOrderID: nextOrderID,
	}
}

// SessionID returns the session's identifier.
func (s *TableSession) SessionID() string { return s.sessionID }

// TableNumber returns the table this session is bound to.
func (s *TableSession) TableNumber() int { return s.tableNumber }

// AddItem adds the snapshotted product to the cart, incrementing the
// existing line's quantity if the product is already present. The caller
// resolves the snapshot; an inactive product must be rejected with
// ErrProductUnavailable before this point.
func (s *TableSession) AddItem(snapshot models.ProductSnapshot, quantity int) error {
	if !snapshot.Active {
		return ErrProductUnavailable
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrNotFound
	}
	return s.cart.addItem(snapshot, quantity)
}

// SetQuantity overwrites a cart line's quantity. Zero removes the line.
func (s *TableSession) SetQuantity(productID int64, quantity int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrNotFound
	}
	return s.cart.setQuantity(productID, quantity)
}

// ClearCart empties the cart without touching submitted orders.
func (s *TableSession) ClearCart() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrNotFound
	}
	s.cart.clear()
	return nil
}

// CartTotal returns the running total of the unsubmitted cart.
func (s *TableSession) CartTotal() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cart.total()
}

// Submit commits the cart as a new order with status received and clears
// the cart. The order's lines are deep copies, later cart edits never
// reach a submitted order. Fails with ErrEmptyCart and leaves everything
// untouched if the cart has no lines.
func (s *TableSession) Submit() (models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return models.Order{}, ErrNotFound
	}
	if s.cart.empty() {
		return models.Order{}, ErrEmptyCart
	}

	order := &models.Order{
		OrderID:     s.nextOrderID(),
		SessionID:   s.sessionID,
		TableNumber: s.tableNumber,
		Lines:       s.cart.snapshot(),
		SubmittedAt: time.Now(),
		Status:      models.StatusReceived,
	}
	s.orders = append(s.orders, order)
	s.cart.clear()
	return copyOrder(order), nil
}

// Advance moves the order's status one step forward in the fixed
// sequence and returns the updated order. Fails with ErrInvalidTransition
// once the order is delivered. Arbitrary target statuses are not
// expressible here, which rules out skipped or reversed states.
func (s *TableSession) Advance(orderID int64) (models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return models.Order{}, ErrNotFound
	}
	order := s.findOrder(orderID)
	if order == nil {
		return models.Order{}, ErrNotFound
	}
	next, ok := order.Status.Next()
	if !ok {
		return models.Order{}, ErrInvalidTransition
	}
	order.Status = next
	return copyOrder(order), nil
}

// AdvanceTo moves the order to target only when target is exactly one
// step ahead of the current status. Backward or same-status requests fail
// with ErrInvalidTransition, forward jumps with ErrStatusSkipped.
func (s *TableSession) AdvanceTo(orderID int64, target models.OrderStatus) (models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return models.Order{}, ErrNotFound
	}
	order := s.findOrder(orderID)
	if order == nil {
		return models.Order{}, ErrNotFound
	}
	next, ok := order.Status.Next()
	if !ok {
		return models.Order{}, ErrInvalidTransition
	}
	if !target.Valid() || target == order.Status || statusRank(target) < statusRank(order.Status) {
		return models.Order{}, ErrInvalidTransition
	}
	if target != next {
		return models.Order{}, ErrStatusSkipped
	}
	order.Status = next
	return copyOrder(order), nil
}

// View returns a consistent read-only snapshot of the session.
func (s *TableSession) View() models.SessionView {
	s.mu.RLock()
	defer s.mu.RUnlock()

	view := models.SessionView{
		SessionID:   s.sessionID,
		TableNumber: s.tableNumber,
		PartySize:   s.partySize,
		OpenedAt:    s.openedAt,
		Cart:        s.cart.snapshot(),
		CartTotal:   s.cart.total(),
	}
	for _, o := range s.orders {
		view.Orders = append(view.Orders, copyOrder(o))
	}
	return view
}

// Comanda derives the session's current bill. Totals are recomputed from
// the lines on every call; nothing is cached.
func (s *TableSession) Comanda() models.Comanda {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.comandaLocked()
}

// CanClose reports whether every order in the session is delivered. A
// session with no orders can be closed, nothing is owed.
func (s *TableSession) CanClose() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.canCloseLocked()
}

func (s *TableSession) comandaLocked() models.Comanda {
	return buildComanda(s.tableNumber, s.sessionID, s.partySize, s.openedAt, s.orders)
}

func (s *TableSession) canCloseLocked() bool {
	return allDelivered(s.orders)
}

func (s *TableSession) findOrder(orderID int64) *models.Order {
	for _, o := range s.orders {
		if o.OrderID == orderID {
			return o
		}
	}
	return nil
}

func copyOrder(o *models.Order) models.Order {
	out := *o
	out.Lines = copyLines(o.Lines)
	return out
}

func copyLines(lines []models.CartLine) []models.CartLine {
	if lines == nil {
		return nil
	}
	out := make([]models.CartLine, len(lines))
	copy(out, lines)
	return out
}

func statusRank(s models.OrderStatus) int {
	switch s {
	case models.StatusReceived:
		return 0
	case models.StatusPreparing:
		return 1
	case models.StatusReady:
		return 2
	case models.StatusDelivered:
		return 3
	}
	return -1
}
