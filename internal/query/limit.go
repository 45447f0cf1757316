// Package query parses query-string parameters shared by list endpoints
package query

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// Limit parses ?limit=, returning 0 (the caller's default) when absent,
// invalid or negative
func Limit(c *gin.Context) int {
	n, err := strconv.Atoi(c.Query("limit"))
	if err != nil || n < 0 {
		return 0
	}
	return n
}
