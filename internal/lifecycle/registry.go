package lifecycle

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"comanda-service/internal/models"
)

// Registry owns the table-number to active-session map and enforces
// at most one active session per table. Its lock only guards the map,
// per-session mutations are serialized by the session's own lock, so
// activity on one table never stalls another.
type Registry struct {
	mu       sync.RWMutex
	sessions map[int]*TableSession

	orderSeq atomic.Int64
}

// NewRegistry creates an empty session registry.
func NewRegistry() *Registry {
	return &Registry{sessions: make(map[int]*TableSession)}
}

// OpenSession opens a new session for a free table. Fails with
// ErrAlreadyOccupied if the table already has one.
func (r *Registry) OpenSession(tableNumber, partySize int) (*TableSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[tableNumber]; ok {
		return nil, ErrAlreadyOccupied
	}
	session := newTableSession(tableNumber, partySize, r.nextOrderID)
	r.sessions[tableNumber] = session
	return session, nil
}

// GetSession returns the table's active session or ErrNotFound.
func (r *Registry) GetSession(tableNumber int) (*TableSession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	session, ok := r.sessions[tableNumber]
	if !ok {
		return nil, ErrNotFound
	}
	return session, nil
}

// ResolveOrCreate returns the table's active session, opening one if the
// table is free. Idempotent entry point for QR scans: a second guest at
// an occupied table joins the existing session. created reports whether a
// new session was opened by this call.
func (r *Registry) ResolveOrCreate(tableNumber int) (session *TableSession, created bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.sessions[tableNumber]; ok {
		return existing, false
	}
	session = newTableSession(tableNumber, 0, r.nextOrderID)
	r.sessions[tableNumber] = session
	return session, true
}

// CloseSession closes the table and returns its final comanda for
// archival. Fails with ErrOutstandingOrders while any order is not yet
// delivered; the session stays active and the table occupied. On success
// the table is free again and GetSession returns ErrNotFound.
func (r *Registry) CloseSession(tableNumber int) (models.Comanda, error) {
	r.mu.Lock()
	session, ok := r.sessions[tableNumber]
	if !ok {
		r.mu.Unlock()
		return models.Comanda{}, ErrNotFound
	}
	r.mu.Unlock()

	// Take the session lock before re-checking the map so a concurrent
	// close cannot slip between the check and the removal.
	session.mu.Lock()
	defer session.mu.Unlock()

	if session.closed {
		return models.Comanda{}, ErrNotFound
	}
	if !session.canCloseLocked() {
		return models.Comanda{}, ErrOutstandingOrders
	}

	r.mu.Lock()
	if r.sessions[tableNumber] != session {
		r.mu.Unlock()
		return models.Comanda{}, ErrNotFound
	}
	delete(r.sessions, tableNumber)
	r.mu.Unlock()

	// Marked while the session lock is still held: a caller that grabbed
	// the pointer before the close gets ErrNotFound from every later
	// mutation instead of writing into a session no comanda will see.
	session.closed = true

	comanda := session.comandaLocked()
	closedAt := time.Now()
	comanda.ClosedAt = &closedAt
	return comanda, nil
}

// Tables lists the occupancy summary of every active session, sorted by
// table number. Free tables are not listed; the caller merges against its
// floor plan.
func (r *Registry) Tables() []models.TableSummary {
	r.mu.RLock()
	sessions := make([]*TableSession, 0, len(r.sessions))
	for _, s := range r.sessions {
		sessions = append(sessions, s)
	}
	r.mu.RUnlock()

	summaries := make([]models.TableSummary, 0, len(sessions))
	for _, s := range sessions {
		view := s.View()
		openedAt := view.OpenedAt
		summary := models.TableSummary{
			TableNumber: view.TableNumber,
			Occupancy:   models.TableOccupied,
			OpenOrders:  len(view.Orders),
			OpenedAt:    &openedAt,
		}
		for _, o := range view.Orders {
			summary.RunningTotal += o.Total()
		}
		summaries = append(summaries, summary)
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].TableNumber < summaries[j].TableNumber
	})
	return summaries
}

// Occupancy reports the table's current occupancy state.
func (r *Registry) Occupancy(tableNumber int) models.TableOccupancy {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, ok := r.sessions[tableNumber]; ok {
		return models.TableOccupied
	}
	return models.TableFree
}

func (r *Registry) nextOrderID() int64 {
	return r.orderSeq.Add(1)
}
