package store

import (
	"context"
	"fmt"

	"comanda-service/internal/models"
)

// ArchiveComanda persists a closed table's final bill: one comanda row,
// one row per order and one row per line, in a single transaction. The
// engine itself keeps nothing after close; this is the system of record
// for billing history.
func (s *Store) ArchiveComanda(ctx context.Context, comanda models.Comanda) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var comandaID int64
	err = tx.GetContext(ctx, &comandaID, `
		INSERT INTO comandas (session_id, table_number, party_size, opened_at, closed_at, grand_total)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		comanda.SessionID, comanda.TableNumber, comanda.PartySize,
		comanda.OpenedAt, comanda.ClosedAt, comanda.GrandTotal)
	if err != nil {
		return fmt.Errorf("failed to insert comanda: %w", err)
	}

	for _, order := range comanda.Orders {
		var orderRowID int64
		err = tx.GetContext(ctx, &orderRowID, `
			INSERT INTO comanda_orders (comanda_id, order_id, status, total, submitted_at)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id`,
			comandaID, order.OrderID, order.Status, order.Total, order.SubmittedAt)
		if err != nil {
			return fmt.Errorf("failed to insert comanda order: %w", err)
		}

		for _, line := range order.Lines {
			_, err = tx.ExecContext(ctx, `
				INSERT INTO comanda_order_lines (comanda_order_id, product_id, name, unit_price, quantity)
				VALUES ($1, $2, $3, $4, $5)`,
				orderRowID, line.ProductID, line.Name, line.UnitPrice, line.Quantity)
			if err != nil {
				return fmt.Errorf("failed to insert comanda line: %w", err)
			}
		}
	}

	return tx.Commit()
}

// ArchivedComandaSummary is one closed bill in a table's history.
type ArchivedComandaSummary struct {
	ID          int64  `db:"id" json:"id"`
	SessionID   string `db:"session_id" json:"session_id"`
	TableNumber int    `db:"table_number" json:"table_number"`
	GrandTotal  int64  `db:"grand_total" json:"grand_total"`
	OpenedAt    string `db:"opened_at" json:"opened_at"`
	ClosedAt    string `db:"closed_at" json:"closed_at"`
}

// GetArchivedComandas retrieves closed bills for a table, newest first.
func (s *Store) GetArchivedComandas(ctx context.Context, tableNumber, limit int) ([]ArchivedComandaSummary, error) {
	if limit <= 0 {
		limit = 20
	}
	var comandas []ArchivedComandaSummary
	err := s.db.SelectContext(ctx, &comandas, `
		SELECT id, session_id, table_number, grand_total, opened_at, closed_at
		FROM comandas WHERE table_number = $1
		ORDER BY closed_at DESC LIMIT $2`, tableNumber, limit)
	return comandas, err
}
