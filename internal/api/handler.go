package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"pos-service/internal/models"
	"pos-service/internal/service"
	"pos-service/internal/store"
	"pos-service/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const claimsKey = "session_claims"

// Handler contains HTTP handlers
type Handler struct {
	auth    *service.AuthService
	orders  *service.OrderService
	tables  *service.TableService
	kitchen *service.KitchenService
	catalog *service.CatalogService
	reports *service.ReportService
	db      *store.Store
}

// NewHandler creates a new HTTP handler
func NewHandler(
	auth *service.AuthService,
	orders *service.OrderService,
	tables *service.TableService,
	kitchen *service.KitchenService,
	catalog *service.CatalogService,
	reports *service.ReportService,
	db *store.Store,
) *Handler {
	return &Handler{
		auth:    auth,
		orders:  orders,
		tables:  tables,
		kitchen: kitchen,
		catalog: catalog,
		reports: reports,
		db:      db,
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

	router.POST("/auth/login", h.login)

	v1 := router.Group("/api/v1")
	v1.Use(h.authRequired())
	{
		v1.GET("/tables", h.listTables)
		v1.PUT("/tables/count", h.requireRole(models.RoleGerente), h.resizeTables)
		v1.POST("/tables/:id/order", h.requireRole(models.RoleMesero, models.RoleGerente), h.openTable)
		v1.GET("/tables/:id/order", h.getTableOrder)
		v1.POST("/tables/:id/close", h.requireRole(models.RoleMesero, models.RoleGerente), h.closeTable)

		v1.GET("/orders/:id", h.getOrder)
		v1.POST("/orders/:id/items", h.requireRole(models.RoleMesero, models.RoleGerente), h.addItem)
		v1.DELETE("/orders/:id/items/:productId", h.requireRole(models.RoleMesero, models.RoleGerente), h.decrementItem)
		v1.PUT("/orders/:id/items/:productId/note", h.requireRole(models.RoleMesero, models.RoleGerente), h.setItemNote)
		v1.PUT("/orders/:id/customer", h.requireRole(models.RoleMesero, models.RoleGerente), h.setCustomer)
		v1.POST("/orders/:id/send", h.requireRole(models.RoleMesero, models.RoleGerente), h.sendToKitchen)
		v1.POST("/orders/:id/close", h.requireRole(models.RoleMesero, models.RoleGerente), h.closeOrder)
		v1.POST("/orders/:id/abandon", h.requireRole(models.RoleMesero, models.RoleGerente), h.abandonOrder)

		v1.GET("/kitchen/tickets", h.requireRole(models.RoleCocina, models.RoleGerente), h.pendingTickets)
		v1.POST("/kitchen/tickets/:id/finish", h.requireRole(models.RoleCocina, models.RoleGerente), h.finishTicket)

		v1.GET("/products", h.listProducts)
		v1.POST("/products", h.requireRole(models.RoleGerente), h.createProduct)
		v1.PUT("/products/:id", h.requireRole(models.RoleGerente), h.updateProduct)
		v1.POST("/products/:id/toggle", h.requireRole(models.RoleGerente), h.toggleProduct)
		v1.GET("/categories", h.listCategories)

		v1.GET("/sales", h.requireRole(models.RoleGerente), h.listSales)
		v1.GET("/reports", h.requireRole(models.RoleGerente), h.buildReport)
		v1.GET("/reports/summary", h.requireRole(models.RoleGerente), h.salesSummary)

		v1.GET("/users", h.requireRole(models.RoleGerente), h.listUsers)
		v1.POST("/users", h.requireRole(models.RoleGerente), h.createUser)
	}
}

// healthCheck reports service and database liveness
func (h *Handler) healthCheck(c *gin.Context) {
	if err := h.db.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "db": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "db": true})
}

// readinessCheck handles readiness check requests
func (h *Handler) readinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// login authenticates an operator and issues a bearer token
func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "message": "Invalid request body"})
		return
	}

	token, user, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMissingFields):
			c.JSON(http.StatusBadRequest, gin.H{"ok": false, "message": "Missing credentials"})
		case errors.Is(err, service.ErrBadCredentials):
			c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "message": "Invalid credentials"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "message": "Server error"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ok":    true,
		"token": token,
		"user":  user,
	})
}

// authRequired validates the bearer token and stashes the claims
func (h *Handler) authRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, found := strings.CutPrefix(header, "Bearer ")
		if !found || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing bearer token"})
			return
		}

		claims, err := h.auth.ParseToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		c.Set(claimsKey, claims)
		c.Next()
	}
}

// requireRole gates a route to the given roles
func (h *Handler) requireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := sessionClaims(c)
		if claims == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing session"})
			return
		}
		for _, role := range roles {
			if claims.Role == role {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Insufficient role"})
	}
}

func sessionClaims(c *gin.Context) *service.Claims {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil
	}
	claims, _ := v.(*service.Claims)
	return claims
}

// listTables returns the table registry
func (h *Handler) listTables(c *gin.Context) {
	tables, err := h.tables.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tables": tables})
}

type resizeRequest struct {
	Count int `json:"count" binding:"required"`
}

// resizeTables grows or shrinks the table registry
func (h *Handler) resizeTables(c *gin.Context) {
	var req resizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	tables, err := h.tables.Resize(c.Request.Context(), req.Count)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tables": tables})
}

// openTable opens (or returns) the active order for a table
func (h *Handler) openTable(c *gin.Context) {
	tableID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid table ID"})
		return
	}

	waiter := ""
	if claims := sessionClaims(c); claims != nil {
		waiter = claims.Name
	}

	order, err := h.orders.OpenOrCreate(c.Request.Context(), tableID, waiter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": order})
}

// getTableOrder returns the active order of a table with priced lines
func (h *Handler) getTableOrder(c *gin.Context) {
	tableID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid table ID"})
		return
	}

	order, lines, total, err := h.orders.GetTableOrder(c.Request.Context(), tableID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": order, "lines": lines, "total": total})
}

type closeRequest struct {
	Method string `json:"method" binding:"required"`
	Note   string `json:"note"`
}

// closeTable closes the bill of the table's active order
func (h *Handler) closeTable(c *gin.Context) {
	tableID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid table ID"})
		return
	}

	var req closeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	sale, err := h.orders.CloseTable(c.Request.Context(), tableID, req.Method, req.Note)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sale": sale})
}

// getOrder returns an order with priced lines
func (h *Handler) getOrder(c *gin.Context) {
	order, lines, total, err := h.orders.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": order, "lines": lines, "total": total})
}

type addItemRequest struct {
	ProductID string `json:"product_id" binding:"required"`
}

// addItem adds one unit of a product to the order
func (h *Handler) addItem(c *gin.Context) {
	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	order, err := h.orders.AddItem(c.Request.Context(), c.Param("id"), req.ProductID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": order})
}

// decrementItem removes one unit of a product from the order
func (h *Handler) decrementItem(c *gin.Context) {
	order, err := h.orders.DecrementItem(c.Request.Context(), c.Param("id"), c.Param("productId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": order})
}

type noteRequest struct {
	Note string `json:"note"`
}

// setItemNote attaches or clears a free-text note on an order line
func (h *Handler) setItemNote(c *gin.Context) {
	var req noteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	order, err := h.orders.SetItemNote(c.Request.Context(), c.Param("id"), c.Param("productId"), req.Note)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": order})
}

type customerRequest struct {
	Name string `json:"name"`
}

// setCustomer stores the optional customer name
func (h *Handler) setCustomer(c *gin.Context) {
	var req customerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	order, err := h.orders.SetCustomerName(c.Request.Context(), c.Param("id"), req.Name)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": order})
}

// sendToKitchen dispatches the order to the kitchen queue
func (h *Handler) sendToKitchen(c *gin.Context) {
	ticket, err := h.orders.SendToKitchen(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ticket": ticket})
}

// closeOrder closes the bill for an order by id
func (h *Handler) closeOrder(c *gin.Context) {
	var req closeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	sale, err := h.orders.CloseAndPay(c.Request.Context(), c.Param("id"), req.Method, req.Note)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sale": sale})
}

// abandonOrder deletes the order and frees the table without a sale
func (h *Handler) abandonOrder(c *gin.Context) {
	if err := h.orders.Abandon(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// pendingTickets returns the FIFO kitchen queue
func (h *Handler) pendingTickets(c *gin.Context) {
	tickets, err := h.kitchen.PendingTickets(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tickets": tickets})
}

// finishTicket marks a kitchen ticket done
func (h *Handler) finishTicket(c *gin.Context) {
	ticket, err := h.kitchen.FinishTicket(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ticket": ticket})
}

// listProducts returns the catalog; ?active=true filters soft-deleted
// products out
func (h *Handler) listProducts(c *gin.Context) {
	onlyActive := c.Query("active") == "true"
	products, err := h.catalog.Products(c.Request.Context(), onlyActive)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}

type productRequest struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	Price    int64  `json:"price"`
}

// createProduct adds a product to the catalog
func (h *Handler) createProduct(c *gin.Context) {
	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	product, err := h.catalog.CreateProduct(c.Request.Context(), req.Name, req.Category, req.Price)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"product": product})
}

// updateProduct edits an existing product
func (h *Handler) updateProduct(c *gin.Context) {
	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	product, err := h.catalog.UpdateProduct(c.Request.Context(), c.Param("id"), req.Name, req.Category, req.Price)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"product": product})
}

// toggleProduct flips the soft-delete flag
func (h *Handler) toggleProduct(c *gin.Context) {
	product, err := h.catalog.ToggleActive(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"product": product})
}

// listCategories returns known product categories
func (h *Handler) listCategories(c *gin.Context) {
	categories, err := h.catalog.Categories(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

// listSales returns the ledger, newest first
func (h *Handler) listSales(c *gin.Context) {
	sales, err := h.reports.Sales(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sales": sales})
}

// buildReport aggregates sales for ?range=hoy|ayer|ult7|mes
func (h *Handler) buildReport(c *gin.Context) {
	report, err := h.reports.BuildReport(c.Request.Context(), c.DefaultQuery("range", "hoy"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// salesSummary returns the manager dashboard rollup
func (h *Handler) salesSummary(c *gin.Context) {
	summary, err := h.reports.Summary(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// listUsers returns all operator accounts
func (h *Handler) listUsers(c *gin.Context) {
	users, err := h.auth.ListUsers(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

type createUserRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// createUser registers a new operator account
func (h *Handler) createUser(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	user, err := h.auth.CreateUser(c.Request.Context(), req.Name, req.Email, req.Password, req.Role)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"user": user})
}

// respondError maps service errors to HTTP statuses. Nothing here is
// fatal: the operation was refused and the caller is told why.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrTableNotFound),
		errors.Is(err, service.ErrOrderNotFound),
		errors.Is(err, service.ErrLineNotFound),
		errors.Is(err, service.ErrProductNotFound),
		errors.Is(err, service.ErrTicketNotFound),
		errors.Is(err, service.ErrNoActiveOrder):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})

	case errors.Is(err, service.ErrShrinkOccupied),
		errors.Is(err, service.ErrEmptyOrder),
		errors.Is(err, service.ErrProductInactive),
		errors.Is(err, service.ErrEmailTaken):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})

	case errors.Is(err, service.ErrInvalidTableCount),
		errors.Is(err, service.ErrInvalidMethod),
		errors.Is(err, service.ErrInvalidPrice),
		errors.Is(err, service.ErrInvalidRole),
		errors.Is(err, service.ErrMissingFields):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

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
