package areas

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ListHandler returns the taxonomy for the area picker
func ListHandler(r *Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"areas": r.List(), "default": r.Default().Name})
	}
}
