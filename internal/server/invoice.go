package server

import (
	"net/http"
	"strconv"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	invoicedomain "github.com/smallbiznis/workhub/internal/invoice/domain"
	"github.com/smallbiznis/workhub/internal/scope"
)

func (s *Server) ListInvoices(c *gin.Context) {
	sc, err := requestScope(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	invoices, err := s.invoiceSvc.List(c.Request.Context(), sc)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	views := make([]invoicedomain.InvoiceView, 0, len(invoices))
	now := s.clock.Now()
	for _, inv := range invoices {
		views = append(views, inv.View(now))
	}
	c.JSON(http.StatusOK, gin.H{"data": views})
}

func (s *Server) CreateInvoice(c *gin.Context) {
	var req invoicedomain.CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, bindError(err))
		return
	}
	sc, err := requestScope(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	inv, err := s.invoiceSvc.Create(c.Request.Context(), sc, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": inv.View(s.clock.Now())})
}

func (s *Server) GetInvoiceByID(c *gin.Context) {
	sc, id, ok := s.invoiceTarget(c)
	if !ok {
		return
	}

	inv, err := s.invoiceSvc.Get(c.Request.Context(), sc, id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": inv.View(s.clock.Now())})
}

func (s *Server) CancelInvoice(c *gin.Context) {
	sc, id, ok := s.invoiceTarget(c)
	if !ok {
		return
	}

	inv, err := s.invoiceSvc.Cancel(c.Request.Context(), sc, id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": inv.View(s.clock.Now())})
}

func (s *Server) DownloadInvoicePDF(c *gin.Context) {
	sc, id, ok := s.invoiceTarget(c)
	if !ok {
		return
	}

	doc, err := s.invoiceSvc.RenderPDF(c.Request.Context(), sc, id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename="+strconv.Quote(doc.Filename))
	c.Data(http.StatusOK, doc.ContentType, doc.Body)
}

func (s *Server) AddInvoiceItem(c *gin.Context) {
	sc, id, ok := s.invoiceTarget(c)
	if !ok {
		return
	}
	var req invoicedomain.ItemInput
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, bindError(err))
		return
	}

	inv, err := s.invoiceSvc.AddItem(c.Request.Context(), sc, id, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": inv.View(s.clock.Now())})
}

func (s *Server) UpdateInvoiceItem(c *gin.Context) {
	sc, id, ok := s.invoiceTarget(c)
	if !ok {
		return
	}
	itemID, err := parseIDParam(c, "itemId")
	if err != nil {
		AbortWithError(c, invoicedomain.ErrItemNotFound)
		return
	}
	var req invoicedomain.UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, bindError(err))
		return
	}

	inv, err := s.invoiceSvc.UpdateItem(c.Request.Context(), sc, id, itemID, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": inv.View(s.clock.Now())})
}

func (s *Server) DeleteInvoiceItem(c *gin.Context) {
	sc, id, ok := s.invoiceTarget(c)
	if !ok {
		return
	}
	itemID, err := parseIDParam(c, "itemId")
	if err != nil {
		AbortWithError(c, invoicedomain.ErrItemNotFound)
		return
	}

	inv, err := s.invoiceSvc.DeleteItem(c.Request.Context(), sc, id, itemID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": inv.View(s.clock.Now())})
}

func (s *Server) RecordInvoicePayment(c *gin.Context) {
	sc, id, ok := s.invoiceTarget(c)
	if !ok {
		return
	}
	var req invoicedomain.RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, bindError(err))
		return
	}

	inv, err := s.invoiceSvc.RecordPayment(c.Request.Context(), sc, id, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": inv.View(s.clock.Now())})
}

// invoiceTarget reads the scope and invoice id, aborting on failure.
func (s *Server) invoiceTarget(c *gin.Context) (scope.Scope, snowflake.ID, bool) {
	sc, err := requestScope(c)
	if err != nil {
		AbortWithError(c, err)
		return scope.Scope{}, 0, false
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		AbortWithError(c, invoicedomain.ErrInvoiceNotFound)
		return scope.Scope{}, 0, false
	}
	return sc, id, true
}
