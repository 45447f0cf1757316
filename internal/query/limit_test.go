package query

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		url  string
		want int
	}{
		{"/api/checkins", 0},
		{"/api/checkins?limit=5", 5},
		{"/api/checkins?limit=-3", 0},
		{"/api/checkins?limit=abc", 0},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest("GET", tt.url, nil)
			assert.Equal(t, tt.want, Limit(c))
		})
	}
}
