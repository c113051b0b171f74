package broker

import (
	"context"
	"encoding/json"
	"fmt"

	"comanda-service/internal/models"

	"github.com/segmentio/kafka-go"
)

// EventPublisher publishes table lifecycle events. It is the notification
// sink for the lifecycle service: best-effort, a failed publish never
// rolls back the state change that triggered it.
type EventPublisher struct {
	producer *Producer
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher(producer *Producer) *EventPublisher {
	return &EventPublisher{producer: producer}
}

func tableKey(tableNumber int) string {
	return fmt.Sprintf("table-%d", tableNumber)
}

// PublishTableOpened publishes a TableOpened event
func (ep *EventPublisher) PublishTableOpened(ctx context.Context, event *models.TableOpenedEvent) error {
	return ep.producer.PublishEvent(ctx, tableKey(event.TableNumber), event)
}

// PublishOrderSubmitted publishes an OrderSubmitted event
func (ep *EventPublisher) PublishOrderSubmitted(ctx context.Context, event *models.OrderSubmittedEvent) error {
	return ep.producer.PublishEvent(ctx, tableKey(event.TableNumber), event)
}

// PublishOrderStatusChanged publishes an OrderStatusChanged event
func (ep *EventPublisher) PublishOrderStatusChanged(ctx context.Context, event *models.OrderStatusChangedEvent) error {
	return ep.producer.PublishEvent(ctx, tableKey(event.TableNumber), event)
}

// PublishTableClosed publishes a TableClosed event
func (ep *EventPublisher) PublishTableClosed(ctx context.Context, event *models.TableClosedEvent) error {
	return ep.producer.PublishEvent(ctx, tableKey(event.TableNumber), event)
}

// EventHandler routes incoming lifecycle events to registered callbacks.
type EventHandler struct {
	onTableOpened        func(context.Context, *models.TableOpenedEvent) error
	onOrderSubmitted     func(context.Context, *models.OrderSubmittedEvent) error
	onOrderStatusChanged func(context.Context, *models.OrderStatusChangedEvent) error
	onTableClosed        func(context.Context, *models.TableClosedEvent) error
}

// NewEventHandler creates a new event handler
func NewEventHandler() *EventHandler {
	return &EventHandler{}
}

// OnTableOpened registers a handler for TableOpened events
func (eh *EventHandler) OnTableOpened(handler func(context.Context, *models.TableOpenedEvent) error) {
	eh.onTableOpened = handler
}

// OnOrderSubmitted registers a handler for OrderSubmitted events
func (eh *EventHandler) OnOrderSubmitted(handler func(context.Context, *models.OrderSubmittedEvent) error) {
	eh.onOrderSubmitted = handler
}

// OnOrderStatusChanged registers a handler for OrderStatusChanged events
func (eh *EventHandler) OnOrderStatusChanged(handler func(context.Context, *models.OrderStatusChangedEvent) error) {
	eh.onOrderStatusChanged = handler
}

// OnTableClosed registers a handler for TableClosed events
func (eh *EventHandler) OnTableClosed(handler func(context.Context, *models.TableClosedEvent) error) {
	eh.onTableClosed = handler
}

// HandleMessage routes messages to appropriate handlers
func (eh *EventHandler) HandleMessage(ctx context.Context, msg kafka.Message) error {
	var baseEvent models.BaseEvent
	if err := json.Unmarshal(msg.Value, &baseEvent); err != nil {
		return fmt.Errorf("failed to unmarshal base event: %w", err)
	}

	switch baseEvent.EventType {
	case models.EventTypeTableOpened:
		if eh.onTableOpened != nil {
			var event models.TableOpenedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal TableOpened event: %w", err)
			}
			return eh.onTableOpened(ctx, &event)
		}

	case models.EventTypeOrderSubmitted:
		if eh.onOrderSubmitted != nil {
			var event models.OrderSubmittedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal OrderSubmitted event: %w", err)
			}
			return eh.onOrderSubmitted(ctx, &event)
		}

	case models.EventTypeOrderStatusChanged:
		if eh.onOrderStatusChanged != nil {
			var event models.OrderStatusChangedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal OrderStatusChanged event: %w", err)
			}
			return eh.onOrderStatusChanged(ctx, &event)
		}

	case models.EventTypeTableClosed:
		if eh.onTableClosed != nil {
			var event models.TableClosedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal TableClosed event: %w", err)
			}
			return eh.onTableClosed(ctx, &event)
		}
	}

	return nil
}
