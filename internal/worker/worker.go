package worker

import (
	"context"
	"log"
	"time"

	"comanda-service/internal/broker"
	"comanda-service/internal/models"
	"comanda-service/internal/redisclient"
)

// KitchenWorker projects the order event stream into per-status queues in
// Redis, which the kitchen display screens poll. The projection is
// derived state: losing it means an empty display until the next events
// arrive, never a wrong bill.
type KitchenWorker struct {
	consumer     *broker.Consumer
	eventHandler *broker.EventHandler
	redis        *redisclient.Client
}

// NewKitchenWorker creates a new kitchen worker
func NewKitchenWorker(consumer *broker.Consumer, redis *redisclient.Client) *KitchenWorker {
	w := &KitchenWorker{
		consumer:     consumer,
		eventHandler: broker.NewEventHandler(),
		redis:        redis,
	}

	w.eventHandler.OnTableOpened(w.handleTableOpened)
	w.eventHandler.OnOrderSubmitted(w.handleOrderSubmitted)
	w.eventHandler.OnOrderStatusChanged(w.handleOrderStatusChanged)
	w.eventHandler.OnTableClosed(w.handleTableClosed)

	return w
}

// Start starts the worker
func (w *KitchenWorker) Start(ctx context.Context) error {
	log.Println("Starting kitchen worker...")
	return w.consumer.StartConsuming(ctx, w.eventHandler.HandleMessage)
}

// Stop stops the worker
func (w *KitchenWorker) Stop() error {
	log.Println("Stopping kitchen worker...")
	return w.consumer.Close()
}

func (w *KitchenWorker) handleTableOpened(ctx context.Context, event *models.TableOpenedEvent) error {
	return w.redis.SetTableOccupancy(ctx, event.TableNumber, models.TableOccupied)
}

func (w *KitchenWorker) handleTableClosed(ctx context.Context, event *models.TableClosedEvent) error {
	return w.redis.SetTableOccupancy(ctx, event.TableNumber, models.TableFree)
}

func (w *KitchenWorker) handleOrderSubmitted(ctx context.Context, event *models.OrderSubmittedEvent) error {
	return w.redis.PushKitchenOrder(ctx, event.OrderID, models.StatusReceived, eventTime(event.Timestamp))
}

func (w *KitchenWorker) handleOrderStatusChanged(ctx context.Context, event *models.OrderStatusChangedEvent) error {
	if event.NewStatus.Terminal() {
		// Delivered orders leave the kitchen display.
		return w.redis.RemoveKitchenOrder(ctx, event.OrderID)
	}
	return w.redis.PushKitchenOrder(ctx, event.OrderID, event.NewStatus, eventTime(event.Timestamp))
}

func eventTime(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now()
	}
	return t
}
