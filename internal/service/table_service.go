package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"comanda-service/internal/lifecycle"
	"comanda-service/internal/models"
	"comanda-service/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CatalogReader resolves a product to its current snapshot. Returns
// lifecycle.ErrProductUnavailable for unknown products.
type CatalogReader interface {
	LookupProduct(ctx context.Context, productID int64) (models.ProductSnapshot, error)
}

// NotificationSink receives lifecycle events. Best-effort: publish
// failures are logged and never roll back the state change.
type NotificationSink interface {
	PublishTableOpened(ctx context.Context, event *models.TableOpenedEvent) error
	PublishOrderSubmitted(ctx context.Context, event *models.OrderSubmittedEvent) error
	PublishOrderStatusChanged(ctx context.Context, event *models.OrderStatusChangedEvent) error
	PublishTableClosed(ctx context.Context, event *models.TableClosedEvent) error
}

// ComandaArchive persists closed bills and serves billing history.
type ComandaArchive interface {
	ArchiveComanda(ctx context.Context, comanda models.Comanda) error
}

// TableService drives the table session lifecycle. The engine owns all
// state and locking; this layer resolves catalog snapshots before taking
// any session lock, publishes events after the fact and records metrics.
type TableService struct {
	registry *lifecycle.Registry
	catalog  CatalogReader
	sink     NotificationSink
	archive  ComandaArchive
	logger   *zap.Logger
}

// NewTableService creates a new table service
func NewTableService(
	registry *lifecycle.Registry,
	catalog CatalogReader,
	sink NotificationSink,
	archive ComandaArchive,
) *TableService {
	return &TableService{
		registry: registry,
		catalog:  catalog,
		sink:     sink,
		archive:  archive,
		logger:   util.GetLogger(),
	}
}

// ResolveOrCreate is the QR-scan entry point: it returns the table's
// session, opening one if the table is free. Guests scanning an occupied
// table's code join the session already in progress.
func (s *TableService) ResolveOrCreate(ctx context.Context, tableNumber int) (models.SessionView, error) {
	ctx, span := util.StartSpan(ctx, "TableService.ResolveOrCreate")
	defer span.End()

	session, created := s.registry.ResolveOrCreate(tableNumber)
	if created {
		util.TablesOpenedTotal.Inc()
		s.logger.Info("Table session opened",
			zap.Int("table_number", tableNumber),
			zap.String("session_id", session.SessionID()))
		s.notifyTableOpened(ctx, session, 0)
	}
	return session.View(), nil
}

// OpenTable is the explicit staff check-in path. Fails with
// ErrAlreadyOccupied if the table already has a session.
func (s *TableService) OpenTable(ctx context.Context, tableNumber, partySize int) (models.SessionView, error) {
	ctx, span := util.StartSpan(ctx, "TableService.OpenTable")
	defer span.End()

	session, err := s.registry.OpenSession(tableNumber, partySize)
	if err != nil {
		return models.SessionView{}, err
	}

	util.TablesOpenedTotal.Inc()
	s.logger.Info("Table session opened by staff",
		zap.Int("table_number", tableNumber),
		zap.Int("party_size", partySize),
		zap.String("session_id", session.SessionID()))
	s.notifyTableOpened(ctx, session, partySize)

	return session.View(), nil
}

// GetTable returns the table's current session state.
func (s *TableService) GetTable(ctx context.Context, tableNumber int) (models.SessionView, error) {
	session, err := s.registry.GetSession(tableNumber)
	if err != nil {
		return models.SessionView{}, err
	}
	return session.View(), nil
}

// AddItem validates the product against the catalog and adds it to the
// table's cart. The catalog lookup happens before the session lock is
// taken so a slow catalog cannot stall the table.
func (s *TableService) AddItem(ctx context.Context, tableNumber int, productID int64, quantity int) (models.SessionView, error) {
	ctx, span := util.StartSpan(ctx, "TableService.AddItem")
	defer span.End()

	session, err := s.registry.GetSession(tableNumber)
	if err != nil {
		return models.SessionView{}, err
	}

	start := time.Now()
	snapshot, err := s.catalog.LookupProduct(ctx, productID)
	util.CatalogLookupLatency.Observe(time.Since(start).Seconds())
	if err != nil {
		util.CartRejectionsTotal.WithLabelValues("product_unavailable").Inc()
		return models.SessionView{}, err
	}

	if err := session.AddItem(snapshot, quantity); err != nil {
		util.CartRejectionsTotal.WithLabelValues(rejectionReason(err)).Inc()
		return models.SessionView{}, err
	}

	util.CartItemsAddedTotal.Inc()
	return session.View(), nil
}

// SetQuantity overwrites a cart line's quantity; zero removes the line.
func (s *TableService) SetQuantity(ctx context.Context, tableNumber int, productID int64, quantity int) (models.SessionView, error) {
	session, err := s.registry.GetSession(tableNumber)
	if err != nil {
		return models.SessionView{}, err
	}
	if err := session.SetQuantity(productID, quantity); err != nil {
		util.CartRejectionsTotal.WithLabelValues(rejectionReason(err)).Inc()
		return models.SessionView{}, err
	}
	return session.View(), nil
}

// ClearCart empties the table's cart without touching submitted orders.
func (s *TableService) ClearCart(ctx context.Context, tableNumber int) error {
	session, err := s.registry.GetSession(tableNumber)
	if err != nil {
		return err
	}
	return session.ClearCart()
}

// SubmitOrder commits the table's cart to the kitchen as a new order.
func (s *TableService) SubmitOrder(ctx context.Context, tableNumber int) (models.Order, error) {
	ctx, span := util.StartSpan(ctx, "TableService.SubmitOrder")
	defer span.End()

	session, err := s.registry.GetSession(tableNumber)
	if err != nil {
		util.OrderSubmitFailedTotal.WithLabelValues("no_session").Inc()
		return models.Order{}, err
	}

	order, err := session.Submit()
	if err != nil {
		util.OrderSubmitFailedTotal.WithLabelValues(rejectionReason(err)).Inc()
		return models.Order{}, err
	}

	util.OrdersSubmittedTotal.Inc()
	s.logger.Info("Order submitted",
		zap.Int("table_number", tableNumber),
		zap.Int64("order_id", order.OrderID),
		zap.Int64("order_total", order.Total()))

	event := &models.OrderSubmittedEvent{
		BaseEvent:   newBaseEvent(models.EventTypeOrderSubmitted),
		TableNumber: tableNumber,
		SessionID:   order.SessionID,
		OrderID:     order.OrderID,
		Lines:       order.Lines,
		OrderTotal:  order.Total(),
	}
	if err := s.sink.PublishOrderSubmitted(ctx, event); err != nil {
		s.logger.Error("Failed to publish OrderSubmitted event", zap.Error(err))
	}

	return order, nil
}

// AdvanceOrder moves an order's kitchen status one step forward.
func (s *TableService) AdvanceOrder(ctx context.Context, tableNumber int, orderID int64) (models.Order, error) {
	ctx, span := util.StartSpan(ctx, "TableService.AdvanceOrder")
	defer span.End()

	session, err := s.registry.GetSession(tableNumber)
	if err != nil {
		return models.Order{}, err
	}

	order, err := session.Advance(orderID)
	if err != nil {
		return models.Order{}, err
	}

	util.OrderStatusAdvancedTotal.WithLabelValues(string(order.Status)).Inc()
	s.logger.Info("Order status advanced",
		zap.Int("table_number", tableNumber),
		zap.Int64("order_id", orderID),
		zap.String("new_status", string(order.Status)))

	event := &models.OrderStatusChangedEvent{
		BaseEvent:   newBaseEvent(models.EventTypeOrderStatusChanged),
		TableNumber: tableNumber,
		OrderID:     orderID,
		NewStatus:   order.Status,
	}
	if err := s.sink.PublishOrderStatusChanged(ctx, event); err != nil {
		s.logger.Error("Failed to publish OrderStatusChanged event", zap.Error(err))
	}

	return order, nil
}

// GetComanda returns the table's running bill, recomputed on every call.
func (s *TableService) GetComanda(ctx context.Context, tableNumber int) (models.Comanda, error) {
	session, err := s.registry.GetSession(tableNumber)
	if err != nil {
		return models.Comanda{}, err
	}
	return session.Comanda(), nil
}

// CanClose reports whether the table's session can be closed right now.
func (s *TableService) CanClose(ctx context.Context, tableNumber int) (bool, error) {
	session, err := s.registry.GetSession(tableNumber)
	if err != nil {
		return false, err
	}
	return session.CanClose(), nil
}

// CloseTable closes the table, archives the final comanda and returns it.
// Fails with ErrOutstandingOrders while any order is undelivered.
func (s *TableService) CloseTable(ctx context.Context, tableNumber int) (models.Comanda, error) {
	ctx, span := util.StartSpan(ctx, "TableService.CloseTable")
	defer span.End()

	comanda, err := s.registry.CloseSession(tableNumber)
	if err != nil {
		util.TableCloseRejectedTotal.WithLabelValues(rejectionReason(err)).Inc()
		return models.Comanda{}, err
	}

	util.TablesClosedTotal.Inc()
	util.ComandaGrandTotalCentavos.Observe(float64(comanda.GrandTotal))
	s.logger.Info("Table closed",
		zap.Int("table_number", tableNumber),
		zap.Int("orders", len(comanda.Orders)),
		zap.Int64("grand_total", comanda.GrandTotal))

	start := time.Now()
	if err := s.archive.ArchiveComanda(ctx, comanda); err != nil {
		// The table is already free; archival failure is surfaced so the
		// caller can retry with the returned comanda.
		s.logger.Error("Failed to archive comanda",
			zap.Int("table_number", tableNumber),
			zap.Error(err))
		return comanda, fmt.Errorf("comanda archive failed: %w", err)
	}
	util.ArchiveLatency.Observe(time.Since(start).Seconds())

	event := &models.TableClosedEvent{
		BaseEvent:   newBaseEvent(models.EventTypeTableClosed),
		TableNumber: tableNumber,
		SessionID:   comanda.SessionID,
		OrderCount:  len(comanda.Orders),
		GrandTotal:  comanda.GrandTotal,
	}
	if err := s.sink.PublishTableClosed(ctx, event); err != nil {
		s.logger.Error("Failed to publish TableClosed event", zap.Error(err))
	}

	return comanda, nil
}

// Tables returns the occupancy summary of every occupied table.
func (s *TableService) Tables(ctx context.Context) []models.TableSummary {
	return s.registry.Tables()
}

func (s *TableService) notifyTableOpened(ctx context.Context, session *lifecycle.TableSession, partySize int) {
	event := &models.TableOpenedEvent{
		BaseEvent:   newBaseEvent(models.EventTypeTableOpened),
		TableNumber: session.TableNumber(),
		SessionID:   session.SessionID(),
		PartySize:   partySize,
	}
	if err := s.sink.PublishTableOpened(ctx, event); err != nil {
		s.logger.Error("Failed to publish TableOpened event", zap.Error(err))
	}
}

func newBaseEvent(eventType string) models.BaseEvent {
	return models.BaseEvent{
		EventID:   uuid.New().String(),
		EventType: eventType,
		Timestamp: time.Now(),
	}
}

func rejectionReason(err error) string {
	switch {
	case err == nil:
		return "none"
	case errors.Is(err, lifecycle.ErrEmptyCart):
		return "empty_cart"
	case errors.Is(err, lifecycle.ErrInvalidQuantity):
		return "invalid_quantity"
	case errors.Is(err, lifecycle.ErrProductUnavailable):
		return "product_unavailable"
	case errors.Is(err, lifecycle.ErrOutstandingOrders):
		return "outstanding_orders"
	case errors.Is(err, lifecycle.ErrNotFound):
		return "not_found"
	default:
		return "other"
	}
}
