package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Listings with long descriptions still fit comfortably.
const maxRequestBodyBytes = 1 << 20

// MaxBodyBytes caps the request body; reads past the limit fail and surface
// as invalid_request when binding.
func MaxBodyBytes(limit int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		}
		c.Next()
	}
}
