package lifecycle

import (
	"testing"

	"comanda-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	burger = models.ProductSnapshot{ProductID: 1, Name: "Burger", UnitPrice: 2590, Active: true}
	soda   = models.ProductSnapshot{ProductID: 2, Name: "Soda", UnitPrice: 690, Active: true}
	fries  = models.ProductSnapshot{ProductID: 3, Name: "Fries", UnitPrice: 1290, Active: true}
)

func TestCartTotalMatchesLines(t *testing.T) {
	c := newCart()

	require.NoError(t, c.addItem(burger, 2))
	require.NoError(t, c.addItem(soda, 1))
	require.NoError(t, c.addItem(fries, 3))

	expected := 2*burger.UnitPrice + soda.UnitPrice + 3*fries.UnitPrice
	assert.Equal(t, expected, c.total())

	require.NoError(t, c.setQuantity(fries.ProductID, 1))
	expected = 2*burger.UnitPrice + soda.UnitPrice + fries.UnitPrice
	assert.Equal(t, expected, c.total())
}

func TestCartAddExistingIncrementsQuantity(t *testing.T) {
	c := newCart()

	require.NoError(t, c.addItem(burger, 1))
	require.NoError(t, c.addItem(burger, 2))

	lines := c.snapshot()
	require.Len(t, lines, 1)
	assert.Equal(t, 3, lines[0].Quantity)
	assert.Equal(t, burger.UnitPrice, lines[0].UnitPrice)
}

func TestCartAddKeepsSnapshottedPrice(t *testing.T) {
	c := newCart()
	require.NoError(t, c.addItem(burger, 1))

	// Catalog price changed between adds; the line keeps the original.
	repriced := burger
	repriced.UnitPrice = 9999
	require.NoError(t, c.addItem(repriced, 1))

	lines := c.snapshot()
	require.Len(t, lines, 1)
	assert.Equal(t, burger.UnitPrice, lines[0].UnitPrice)
	assert.Equal(t, 2*burger.UnitPrice, c.total())
}

func TestCartSetQuantityZeroRemovesLine(t *testing.T) {
	c := newCart()
	require.NoError(t, c.addItem(burger, 2))
	require.NoError(t, c.addItem(soda, 1))

	require.NoError(t, c.setQuantity(burger.ProductID, 0))

	lines := c.snapshot()
	require.Len(t, lines, 1)
	assert.Equal(t, soda.ProductID, lines[0].ProductID)
	assert.Equal(t, soda.UnitPrice, c.total())
}

func TestCartSetQuantityErrors(t *testing.T) {
	c := newCart()
	require.NoError(t, c.addItem(burger, 1))

	assert.ErrorIs(t, c.setQuantity(burger.ProductID, -1), ErrInvalidQuantity)
	assert.ErrorIs(t, c.setQuantity(999, 2), ErrNotFound)
	assert.NoError(t, c.setQuantity(999, 0), "removing an absent line is a no-op")
	assert.ErrorIs(t, c.addItem(soda, 0), ErrInvalidQuantity)
	assert.ErrorIs(t, c.addItem(soda, -3), ErrInvalidQuantity)

	// Failed calls left the cart untouched.
	assert.Equal(t, burger.UnitPrice, c.total())
}

func TestCartSnapshotPreservesInsertionOrder(t *testing.T) {
	c := newCart()
	require.NoError(t, c.addItem(soda, 1))
	require.NoError(t, c.addItem(burger, 1))
	require.NoError(t, c.addItem(fries, 1))
	require.NoError(t, c.setQuantity(burger.ProductID, 0))
	require.NoError(t, c.addItem(burger, 1))

	lines := c.snapshot()
	require.Len(t, lines, 3)
	assert.Equal(t, soda.ProductID, lines[0].ProductID)
	assert.Equal(t, fries.ProductID, lines[1].ProductID)
	assert.Equal(t, burger.ProductID, lines[2].ProductID)
}

func TestCartClearAndEmptyTotal(t *testing.T) {
	c := newCart()
	assert.Zero(t, c.total())
	assert.True(t, c.empty())

	require.NoError(t, c.addItem(burger, 1))
	c.clear()

	assert.True(t, c.empty())
	assert.Zero(t, c.total())
	assert.Empty(t, c.snapshot())
}
