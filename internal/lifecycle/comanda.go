package lifecycle

import (
	"time"

	"comanda-service/internal/models"
)

// Comanda aggregation. Per-order totals and the grand total are always
// recomputed from line data here and nowhere else; no total is ever
// stored alongside the lines it was derived from.

// OrderTotal sums unit price times quantity over the given lines.
func OrderTotal(lines []models.CartLine) int64 {
	var total int64
	for _, l := range lines {
		total += l.Subtotal()
	}
	return total
}

func buildComanda(tableNumber int, sessionID string, partySize int, openedAt time.Time, orders []*models.Order) models.Comanda {
	comanda := models.Comanda{
		TableNumber: tableNumber,
		SessionID:   sessionID,
		PartySize:   partySize,
		OpenedAt:    openedAt,
	}
	for _, o := range orders {
		co := models.ComandaOrder{
			OrderID:     o.OrderID,
			Lines:       copyLines(o.Lines),
			Total:       OrderTotal(o.Lines),
			Status:      o.Status,
			SubmittedAt: o.SubmittedAt,
		}
		comanda.Orders = append(comanda.Orders, co)
		comanda.GrandTotal += co.Total
	}
	return comanda
}

func allDelivered(orders []*models.Order) bool {
	for _, o := range orders {
		if !o.Status.Terminal() {
			return false
		}
	}
	return true
}
