package api

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"comanda-service/internal/lifecycle"
	"comanda-service/internal/models"
	"comanda-service/internal/redisclient"
	"comanda-service/internal/service"
	"comanda-service/internal/store"
	"comanda-service/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler contains HTTP handlers
type Handler struct {
	tables  *service.TableService
	catalog *service.CachedCatalog
	archive *store.Store
	redis   *redisclient.Client
}

// NewHandler creates a new HTTP handler
func NewHandler(tables *service.TableService, catalog *service.CachedCatalog, archive *store.Store, redis *redisclient.Client) *Handler {
	return &Handler{
		tables:  tables,
		catalog: catalog,
		archive: archive,
		redis:   redis,
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(gin.Logger())

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.GET("/menu", h.getMenu)
		v1.GET("/tables", h.listTables)

		v1.POST("/tables/:number/session", h.resolveOrCreate)
		v1.POST("/tables/:number/checkin", h.openTable)
		v1.GET("/tables/:number/session", h.getSession)
		v1.DELETE("/tables/:number/session", h.closeTable)

		v1.POST("/tables/:number/cart/items", h.addItem)
		v1.PUT("/tables/:number/cart/items/:productId", h.setQuantity)
		v1.DELETE("/tables/:number/cart", h.clearCart)

		v1.POST("/tables/:number/orders", h.submitOrder)
		v1.POST("/tables/:number/orders/:orderId/advance", h.advanceOrder)

		v1.GET("/tables/:number/comanda", h.getComanda)
		v1.GET("/tables/:number/can-close", h.canClose)
		v1.GET("/tables/:number/history", h.getHistory)

		v1.GET("/kitchen/queue/:status", h.kitchenQueue)
	}
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck handles readiness check requests
func (h *Handler) readinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

// getMenu lists the active catalog
func (h *Handler) getMenu(c *gin.Context) {
	products, err := h.catalog.Menu(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load menu"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}

// listTables returns the occupancy grid
func (h *Handler) listTables(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"tables": h.tables.Tables(c.Request.Context())})
}

// resolveOrCreate is the QR-scan entry point for a table
func (h *Handler) resolveOrCreate(c *gin.Context) {
	tableNumber, ok := tableParam(c)
	if !ok {
		return
	}

	view, err := h.tables.ResolveOrCreate(c.Request.Context(), tableNumber)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

type checkinRequest struct {
	PartySize int `json:"party_size" binding:"min=0"`
}

// openTable is the explicit staff check-in
func (h *Handler) openTable(c *gin.Context) {
	tableNumber, ok := tableParam(c)
	if !ok {
		return
	}

	// Body is optional: a bare check-in opens the table with no party size.
	var req checkinRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	view, err := h.tables.OpenTable(c.Request.Context(), tableNumber, req.PartySize)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, view)
}

// getSession returns the table's current session
func (h *Handler) getSession(c *gin.Context) {
	tableNumber, ok := tableParam(c)
	if !ok {
		return
	}

	view, err := h.tables.GetTable(c.Request.Context(), tableNumber)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

type addItemRequest struct {
	ProductID int64 `json:"product_id" binding:"required"`
	Quantity  int   `json:"quantity"`
}

// addItem adds a product to the table's cart
func (h *Handler) addItem(c *gin.Context) {
	tableNumber, ok := tableParam(c)
	if !ok {
		return
	}

	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	view, err := h.tables.AddItem(c.Request.Context(), tableNumber, req.ProductID, req.Quantity)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

type setQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// setQuantity overwrites a cart line's quantity (0 removes it)
func (h *Handler) setQuantity(c *gin.Context) {
	tableNumber, ok := tableParam(c)
	if !ok {
		return
	}

	productID, err := strconv.ParseInt(c.Param("productId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product ID"})
		return
	}

	var req setQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	view, err := h.tables.SetQuantity(c.Request.Context(), tableNumber, productID, req.Quantity)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// clearCart empties the table's cart
func (h *Handler) clearCart(c *gin.Context) {
	tableNumber, ok := tableParam(c)
	if !ok {
		return
	}

	if err := h.tables.ClearCart(c.Request.Context(), tableNumber); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// submitOrder commits the cart to the kitchen
func (h *Handler) submitOrder(c *gin.Context) {
	tableNumber, ok := tableParam(c)
	if !ok {
		return
	}

	order, err := h.tables.SubmitOrder(c.Request.Context(), tableNumber)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

// advanceOrder moves an order's kitchen status one step forward
func (h *Handler) advanceOrder(c *gin.Context) {
	tableNumber, ok := tableParam(c)
	if !ok {
		return
	}

	orderID, err := strconv.ParseInt(c.Param("orderId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order ID"})
		return
	}

	order, err := h.tables.AdvanceOrder(c.Request.Context(), tableNumber, orderID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// getComanda returns the table's running bill
func (h *Handler) getComanda(c *gin.Context) {
	tableNumber, ok := tableParam(c)
	if !ok {
		return
	}

	comanda, err := h.tables.GetComanda(c.Request.Context(), tableNumber)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, comanda)
}

// canClose reports whether the table can be closed right now
func (h *Handler) canClose(c *gin.Context) {
	tableNumber, ok := tableParam(c)
	if !ok {
		return
	}

	canClose, err := h.tables.CanClose(c.Request.Context(), tableNumber)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"table_number": tableNumber, "can_close": canClose})
}

// closeTable closes the table and returns the final comanda
func (h *Handler) closeTable(c *gin.Context) {
	tableNumber, ok := tableParam(c)
	if !ok {
		return
	}

	comanda, err := h.tables.CloseTable(c.Request.Context(), tableNumber)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, comanda)
}

// getHistory lists the table's archived comandas
func (h *Handler) getHistory(c *gin.Context) {
	tableNumber, ok := tableParam(c)
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	history, err := h.archive.GetArchivedComandas(c.Request.Context(), tableNumber, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load history"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"comandas": history})
}

// kitchenQueue lists order IDs in one kitchen status, oldest first
func (h *Handler) kitchenQueue(c *gin.Context) {
	status := models.OrderStatus(c.Param("status"))
	if !status.Valid() || status.Terminal() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid kitchen status"})
		return
	}

	orders, err := h.redis.KitchenQueue(c.Request.Context(), status)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load kitchen queue"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": status, "orders": orders})
}

func tableParam(c *gin.Context) (int, bool) {
	tableNumber, err := strconv.Atoi(c.Param("number"))
	if err != nil || tableNumber < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid table number"})
		return 0, false
	}
	return tableNumber, true
}

// respondError maps lifecycle error kinds onto HTTP statuses.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, lifecycle.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, lifecycle.ErrAlreadyOccupied),
		errors.Is(err, lifecycle.ErrOutstandingOrders):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, lifecycle.ErrProductUnavailable),
		errors.Is(err, lifecycle.ErrInvalidQuantity),
		errors.Is(err, lifecycle.ErrEmptyCart),
		errors.Is(err, lifecycle.ErrInvalidTransition),
		errors.Is(err, lifecycle.ErrStatusSkipped):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error", "details": err.Error()})
	}
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		util.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Observe(duration)

		util.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Inc()
	}
}
