package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/workhub/internal/scope"
	settingsdomain "github.com/smallbiznis/workhub/internal/settings/domain"
)

// GetSettings returns exactly the rows stored for the request scope.
func (s *Server) GetSettings(c *gin.Context) {
	sc, _ := scope.FromContext(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"data": s.settingsSvc.Resolve(c.Request.Context(), sc)})
}

func (s *Server) GetSetting(c *gin.Context) {
	key := strings.TrimSpace(c.Param("key"))
	sc, _ := scope.FromContext(c.Request.Context())

	var def *string
	if raw, ok := c.GetQuery("default"); ok {
		def = &raw
	}
	value, ok := s.settingsSvc.Get(c.Request.Context(), sc, key, def)
	if !ok {
		AbortWithError(c, ErrNotFound)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"key": key, "value": value}})
}

func (s *Server) UpdateSettings(c *gin.Context) {
	var req settingsdomain.UpdateManyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, bindError(err))
		return
	}
	sc, err := requestScope(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	rows, err := s.settingsSvc.UpdateMany(c.Request.Context(), sc, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	out := make(map[string]string, len(rows))
	for _, row := range rows {
		out[row.Key] = row.Value
	}
	c.JSON(http.StatusOK, gin.H{"data": out})
}
