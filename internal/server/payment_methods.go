package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	paymentmethoddomain "github.com/smallbiznis/workhub/internal/paymentmethod/domain"
)

type validatePaymentMethodRequest struct {
	Enabled bool              `json:"enabled"`
	Fields  map[string]string `json:"fields"`
}

func (s *Server) ListPaymentMethods(c *gin.Context) {
	sc, err := requestScope(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	enabled, err := s.paymentSvc.GetEnabled(c.Request.Context(), sc)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	out := make(map[string]paymentmethoddomain.Config, len(enabled))
	for key, cfg := range enabled {
		out[key] = cfg.Masked()
	}

	c.JSON(http.StatusOK, gin.H{"data": out})
}

func (s *Server) GetPaymentMethod(c *gin.Context) {
	sc, err := requestScope(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	cfg, err := s.paymentSvc.GetConfig(c.Request.Context(), strings.TrimSpace(c.Param("method")), sc)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": cfg.Masked()})
}

func (s *Server) UpdatePaymentMethod(c *gin.Context) {
	var req paymentmethoddomain.UpdateConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, bindError(err))
		return
	}
	sc, err := requestScope(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	cfg, err := s.paymentSvc.UpdateConfig(c.Request.Context(), strings.TrimSpace(c.Param("method")), req, sc)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": cfg.Masked()})
}

// ValidatePaymentMethod checks a candidate configuration without saving it.
// An invalid configuration, unknown methods included, is a normal 200
// response.
func (s *Server) ValidatePaymentMethod(c *gin.Context) {
	var req validatePaymentMethodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, bindError(err))
		return
	}
	method := strings.TrimSpace(c.Param("method"))

	result := s.paymentSvc.Validate(method, paymentmethoddomain.Config{
		Method:  method,
		Enabled: req.Enabled,
		Fields:  req.Fields,
	})
	c.JSON(http.StatusOK, gin.H{"data": result})
}
