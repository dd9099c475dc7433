package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// RequestIDKey is the key used to store request ID in context
const RequestIDKey = "request_id"

// RequestIDHeader carries the request ID to the client
const RequestIDHeader = "X-Request-ID"

// RequestID middleware adds a unique request ID to each request
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
		}

		c.Set(RequestIDKey, requestID)
		c.Header(RequestIDHeader, requestID)
		c.Next()
	}
}

// StructuredLogger provides structured logging with request context
func StructuredLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		fields := logrus.Fields{
			"request_id":    c.GetString(RequestIDKey),
			"method":        c.Request.Method,
			"path":          path,
			"status_code":   c.Writer.Status(),
			"latency_ms":    float64(latency.Nanoseconds()) / 1000000,
			"client_ip":     c.ClientIP(),
			"user_agent":    c.Request.UserAgent(),
			"response_size": c.Writer.Size(),
		}
		if raw != "" {
			fields["query"] = raw
		}
		if origin, ok := c.Get(OriginKey); ok {
			fields["origin"] = origin
		}

		switch {
		case c.Writer.Status() >= 500:
			logrus.WithFields(fields).Error("Server error")
		case c.Writer.Status() >= 400:
			logrus.WithFields(fields).Warn("Client error")
		case c.Writer.Status() >= 300:
			logrus.WithFields(fields).Info("Redirect")
		default:
			logrus.WithFields(fields).Info("Request completed")
		}
	}
}

// OriginKey records which origin served the request: "static" or "lambda".
const OriginKey = "origin"
