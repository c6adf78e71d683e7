package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	onboardingdomain "github.com/smallbiznis/workhub/internal/onboarding/domain"
)

// CreateTenant onboards a company with its default workspace.
func (s *Server) CreateTenant(c *gin.Context) {
	var req onboardingdomain.CreateTenantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, bindError(err))
		return
	}

	result, err := s.onboardingSvc.CreateTenant(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": result})
}
