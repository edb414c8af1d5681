package controller

import (
	"strconv"

	"github.com/gin-gonic/gin"
	apperrors "github.com/spf-popaccueil/popaccueil-backend/internal/errors"
	"github.com/spf-popaccueil/popaccueil-backend/internal/middleware"
)

// parseIDParam reads the ":id" path parameter. On failure the 400 response is
// already written.
func parseIDParam(c *gin.Context) (uint, bool) {
	idStr := c.Param("id")
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil || id == 0 {
		middleware.GetLoggerFromContext(c).Warn("Invalid ID format", map[string]interface{}{
			"id": idStr,
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Invalid ID")
		return 0, false
	}
	return uint(id), true
}
