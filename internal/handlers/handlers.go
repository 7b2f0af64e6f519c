package handlers

import (
	"net/http"

	"ovation/internal/errors"
	"ovation/internal/logger"
	"ovation/internal/middleware"
	"ovation/internal/service"

	"github.com/gin-gonic/gin"
)

type Handlers struct {
	services *service.Services
}

func NewHandlers(services *service.Services) *Handlers {
	return &Handlers{
		services: services,
	}
}

// respondError translates a service error into its HTTP status. The code
// field disambiguates statuses shared by several codes, such as 409.
func respondError(c *gin.Context, err error) {
	code := errors.CodeOf(err)
	status := errors.HTTPStatus(code)

	if status == http.StatusInternalServerError {
		logger.WithContext(c.Request.Context()).Error("Request failed",
			"error", err,
			"path", c.Request.URL.Path)
	}

	c.JSON(status, gin.H{
		"code":  string(code),
		"error": errors.MessageOf(err),
	})
}

// requireBuyer reads the authenticated buyer id, aborting with 401 when the
// auth middleware did not run or did not set it.
func requireBuyer(c *gin.Context) (int64, bool) {
	buyerID, ok := middleware.BuyerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{
			"code":  string(errors.CodeUnauthorized),
			"error": "authentication required",
		})
		return 0, false
	}
	return buyerID, true
}
