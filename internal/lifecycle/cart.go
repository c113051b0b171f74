package lifecycle

import "comanda-service/internal/models"

// cart accumulates lines for one session before submission. At most one
// line exists per product; repeated adds increment the quantity of the
// existing line and keep its originally snapshotted price. Not safe for
// concurrent use on its own, the owning session's lock serializes access.
type cart struct {
	lines map[int64]*models.CartLine
	order []int64 // product IDs in insertion order
}

func newCart() *cart {
	return &cart{lines: make(map[int64]*models.CartLine)}
}

// addItem inserts a line for the product or increments an existing one.
// The snapshot's price is only consulted for new lines.
func (c *cart) addItem(snapshot models.ProductSnapshot, quantity int) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}
	if line, ok := c.lines[snapshot.ProductID]; ok {
		line.Quantity += quantity
		return nil
	}
	c.lines[snapshot.ProductID] = &models.CartLine{
		ProductID: snapshot.ProductID,
		Name:      snapshot.Name,
		UnitPrice: snapshot.UnitPrice,
		Quantity:  quantity,
	}
	c.order = append(c.order, snapshot.ProductID)
	return nil
}

// setQuantity overwrites a line's quantity. Zero removes the line,
// negative fails, and an unknown product fails with ErrNotFound.
func (c *cart) setQuantity(productID int64, quantity int) error {
	if quantity < 0 {
		return ErrInvalidQuantity
	}
	if quantity == 0 {
		// Absence already means zero, removing a missing line is a no-op.
		if _, ok := c.lines[productID]; !ok {
			return nil
		}
		delete(c.lines, productID)
		for i, id := range c.order {
			if id == productID {
				c.order = append(c.order[:i], c.order[i+1:]...)
				break
			}
		}
		return nil
	}
	line, ok := c.lines[productID]
	if !ok {
		return ErrNotFound
	}
	line.Quantity = quantity
	return nil
}

func (c *cart) clear() {
	c.lines = make(map[int64]*models.CartLine)
	c.order = nil
}

func (c *cart) empty() bool {
	return len(c.lines) == 0
}

// snapshot copies the current lines in insertion order. The copies are
// independent of the cart, later cart mutations never reach them.
func (c *cart) snapshot() []models.CartLine {
	if len(c.lines) == 0 {
		return nil
	}
	out := make([]models.CartLine, 0, len(c.lines))
	for _, id := range c.order {
		out = append(out, *c.lines[id])
	}
	return out
}

// total is the sum of line subtotals, zero for an empty cart.
func (c *cart) total() int64 {
	var total int64
	for _, line := range c.lines {
		total += line.Subtotal()
	}
	return total
}
