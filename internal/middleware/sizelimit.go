package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// SizeLimitConfig caps request body sizes, with a higher bound for routes
// that accept file uploads.
type SizeLimitConfig struct {
	MaxBodySize   int64
	MaxUploadSize int64
	UploadPaths   []string
}

func DefaultSizeLimitConfig() SizeLimitConfig {
	return SizeLimitConfig{
		MaxBodySize:   1 << 20,  // 1MB
		MaxUploadSize: 10 << 20, // 10MB
	}
}

func SizeLimit(config SizeLimitConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := config.MaxBodySize
		for _, path := range config.UploadPaths {
			if c.Request.URL.Path == path {
				limit = config.MaxUploadSize
				break
			}
		}

		if c.Request.ContentLength > limit {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, gin.H{
				"status":  "error",
				"message": fmt.Sprintf("request body exceeds %d bytes", limit),
			})
			return
		}

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		c.Next()
	}
}
