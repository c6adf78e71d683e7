package server

import (
	"context"
	"net/http"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	referraldomain "github.com/smallbiznis/workhub/internal/referral/domain"
)

func (s *Server) GetReferralBalance(c *gin.Context) {
	sc, err := requestScope(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	balance, err := s.referralSvc.Balance(c.Request.Context(), sc.PrincipalID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": balance})
}

func (s *Server) ListPayouts(c *gin.Context) {
	sc, err := requestScope(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	payouts, err := s.referralSvc.ListPayouts(c.Request.Context(), sc.PrincipalID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": payouts})
}

func (s *Server) RequestPayout(c *gin.Context) {
	var req referraldomain.PayoutRequestInput
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, bindError(err))
		return
	}
	sc, err := requestScope(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	payout, err := s.referralSvc.RequestPayout(c.Request.Context(), sc.PrincipalID, req.Amount)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": payout})
}

func (s *Server) ApprovePayout(c *gin.Context) {
	s.reviewPayout(c, s.referralSvc.ApprovePayout)
}

func (s *Server) RejectPayout(c *gin.Context) {
	s.reviewPayout(c, s.referralSvc.RejectPayout)
}

func (s *Server) reviewPayout(c *gin.Context, review func(ctx context.Context, id, reviewerID snowflake.ID) (*referraldomain.PayoutRequest, error)) {
	actor, ok := actorFromContext(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		AbortWithError(c, referraldomain.ErrPayoutNotFound)
		return
	}

	payout, err := review(c.Request.Context(), id, actor.ID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": payout})
}

func (s *Server) GetReferralSettings(c *gin.Context) {
	settings, err := s.referralSvc.GetSettings(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": settings})
}

func (s *Server) UpdateReferralSettings(c *gin.Context) {
	var req referraldomain.UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, bindError(err))
		return
	}

	settings, err := s.referralSvc.UpdateSettings(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": settings})
}
