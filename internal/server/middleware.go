package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// APIKeyHeader carries the API key. "Authorization: Bearer <key>" is also accepted.
const APIKeyHeader = "X-API-Key"

// loggingMiddleware logs HTTP requests
func loggingMiddleware(logger *otelzap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		logger.Ctx(c.Request.Context()).Info("HTTP request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
		)
	}
}

// apiKeyMiddleware rejects requests whose key does not match the bcrypt hash.
func apiKeyMiddleware(hash string, logger *otelzap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(APIKeyHeader)
		if key == "" {
			key = strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
		}
		if key == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing API key"})
			return
		}
		if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(key)); err != nil {
			logger.Ctx(c.Request.Context()).Warn("Rejected API key", zap.String("path", c.Request.URL.Path))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid API key"})
			return
		}
		c.Next()
	}
}
