package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/tournevent/melhorenvio/internal/cart"
	"github.com/tournevent/melhorenvio/internal/methods"
	"github.com/tournevent/melhorenvio/internal/store"
	"github.com/tournevent/melhorenvio/pkg/melhorenvio"
	"go.uber.org/zap"
)

type addToCartRequest struct {
	Products []melhorenvio.Product `json:"products"`
	Buyer    *melhorenvio.Address  `json:"buyer"`
	Service  int                   `json:"service"`
}

type savePayloadRequest struct {
	Products []melhorenvio.Product `json:"products"`
	Buyer    *melhorenvio.Address  `json:"buyer"`
	Options  *melhorenvio.Settings `json:"options"`
}

type saveInvoiceRequest struct {
	Number string `json:"number"`
	Key    string `json:"key" binding:"required"`
}

type ratesRequest struct {
	To       melhorenvio.PostalCodeRef `json:"to"`
	Products []melhorenvio.Product     `json:"products"`
}

type statusUser struct {
	PostalCode string `json:"postal_code"`
	Email      string `json:"email"`
}

func (s *Server) handleHealth(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}

// handleStatus reports the deployment and the seller contact used as sender.
func (s *Server) handleStatus(c *gin.Context) {
	var user statusUser
	if s.deps.Seller != nil {
		seller, err := s.deps.Seller.Seller(c.Request.Context())
		if err != nil {
			s.writeError(c, err)
			return
		}
		user = statusUser{PostalCode: seller.PostalCode, Email: seller.Email}
	}

	c.JSON(http.StatusOK, gin.H{
		"version":     s.cfg.Version,
		"environment": s.cfg.Environment,
		"user":        user,
	})
}

func (s *Server) handleMethods(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"methods": s.deps.Catalog.All()})
}

func (s *Server) handleRates(c *gin.Context) {
	var req ratesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !melhorenvio.ValidPostalCode(req.To.PostalCode) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid destination postal code"})
		return
	}

	ctx := c.Request.Context()
	seller, err := s.deps.Seller.Seller(ctx)
	if err != nil {
		s.writeError(c, err)
		return
	}

	results, err := s.deps.Quotes.Quote(ctx, cart.QuoteRequest{
		From:     seller,
		To:       &melhorenvio.Address{PostalCode: req.To.PostalCode},
		Products: req.Products,
	})
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"rates": methods.FormatRates(s.deps.Catalog, results, s.cfg.Rates)})
}

func (s *Server) handleSavePayload(c *gin.Context) {
	orderID, ok := orderIDParam(c)
	if !ok {
		return
	}

	var req savePayloadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := s.deps.Payloads.SavePayload(c.Request.Context(), &melhorenvio.SavedPayload{
		OrderID:  orderID,
		Products: req.Products,
		Buyer:    req.Buyer,
		Options:  req.Options,
	})
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleDeletePayload(c *gin.Context) {
	orderID, ok := orderIDParam(c)
	if !ok {
		return
	}
	if err := s.deps.Payloads.DeletePayload(c.Request.Context(), orderID); err != nil {
		s.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// handleSaveInvoice records the invoice sent with later cart submissions.
func (s *Server) handleSaveInvoice(c *gin.Context) {
	orderID, ok := orderIDParam(c)
	if !ok {
		return
	}

	var req saveInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := s.deps.Invoices.SaveInvoice(c.Request.Context(), &store.Invoice{
		OrderID: orderID,
		Number:  req.Number,
		Key:     req.Key,
	})
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleAddToCart(c *gin.Context) {
	orderID, ok := orderIDParam(c)
	if !ok {
		return
	}

	var req addToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := s.deps.Cart.Add(c.Request.Context(), orderID, req.Products, req.Buyer, req.Service)
	if err != nil {
		s.writeError(c, err)
		return
	}

	switch {
	case result.Success:
		c.JSON(http.StatusCreated, result)
	case len(result.ValidationErrors) > 0:
		c.JSON(http.StatusUnprocessableEntity, result)
	default:
		c.JSON(http.StatusBadGateway, result)
	}
}

func (s *Server) handleRemoveFromCart(c *gin.Context) {
	orderID, ok := orderIDParam(c)
	if !ok {
		return
	}

	removed, err := s.deps.Cart.Remove(c.Request.Context(), orderID, c.Query("cart_item_id"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": removed})
}

func (s *Server) handleValidate(c *gin.Context) {
	var payload melhorenvio.CartPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	errs := cart.Validate(&payload)
	if errs == nil {
		errs = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"valid": len(errs) == 0, "errors": errs})
}

func (s *Server) handleInfo(c *gin.Context) {
	var cc cart.CartContext
	if err := c.ShouldBindJSON(&cc); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, cart.Info(cc))
}

func orderIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
		return 0, false
	}
	return id, true
}

// writeError maps service errors to HTTP statuses.
func (s *Server) writeError(c *gin.Context, err error) {
	var apiErr *melhorenvio.APIError
	switch {
	case errors.Is(err, cart.ErrUnknownCartItem), errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case melhorenvio.IsRetryable(err):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	case errors.As(err, &apiErr):
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	default:
		s.logger.Ctx(c.Request.Context()).Error("Request failed",
			zap.String("path", c.Request.URL.Path),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
