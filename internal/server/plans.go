package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	plandomain "github.com/smallbiznis/workhub/internal/plan/domain"
)

type validateCouponRequest struct {
	Code string `json:"code" binding:"required,max=64"`
}

func (s *Server) ListPlans(c *gin.Context) {
	plans, err := s.planSvc.ListPlans(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": plans})
}

func (s *Server) CalculatePricing(c *gin.Context) {
	planID, err := parseIDParam(c, "id")
	if err != nil {
		AbortWithError(c, plandomain.ErrPlanNotFound)
		return
	}
	var req plandomain.PricingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, bindError(err))
		return
	}
	req.CouponCode = strings.TrimSpace(req.CouponCode)

	pricing, err := s.planSvc.CalculatePricing(c.Request.Context(), planID, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": pricing})
}

func (s *Server) ValidateCoupon(c *gin.Context) {
	var req validateCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, bindError(err))
		return
	}

	coupon, err := s.planSvc.ValidateCoupon(c.Request.Context(), strings.TrimSpace(req.Code))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": coupon})
}

// CreatePlanOrder places an order for the tenant the caller acts for.
func (s *Server) CreatePlanOrder(c *gin.Context) {
	planID, err := parseIDParam(c, "id")
	if err != nil {
		AbortWithError(c, plandomain.ErrPlanNotFound)
		return
	}
	var req plandomain.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, bindError(err))
		return
	}
	sc, err := requestScope(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	req.PlanID = planID
	req.UserID = sc.PrincipalID
	req.CouponCode = strings.TrimSpace(req.CouponCode)

	result, err := s.planSvc.CreatePlanOrder(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": result})
}

// CompletePlanOrder is called once the gateway confirmed the payment.
func (s *Server) CompletePlanOrder(c *gin.Context) {
	orderID, err := parseIDParam(c, "id")
	if err != nil {
		AbortWithError(c, plandomain.ErrOrderNotFound)
		return
	}

	result, err := s.planSvc.ProcessPaymentSuccess(c.Request.Context(), orderID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": result})
}

func (s *Server) FailPlanOrder(c *gin.Context) {
	orderID, err := parseIDParam(c, "id")
	if err != nil {
		AbortWithError(c, plandomain.ErrOrderNotFound)
		return
	}

	order, err := s.planSvc.MarkOrderFailed(c.Request.Context(), orderID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": order})
}
