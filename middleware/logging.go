package middleware

import (
	"fmt"

	"github.com/gin-gonic/gin"
)

// Logging returns a request logging middleware.
func Logging() gin.HandlerFunc {
	return gin.LoggerWithFormatter(func(p gin.LogFormatterParams) string {
		return fmt.Sprintf("%s %s %d %s\n", p.Method, p.Path, p.StatusCode, p.Latency)
	})
}
