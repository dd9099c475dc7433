package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// ErrorResponse is the body of errors produced by the emulator itself
type ErrorResponse struct {
	Error     string `json:"error"`
	Message   string `json:"message,omitempty"`
	RequestID string `json:"request_id,omitempty"`
	Timestamp string `json:"timestamp"`
}

func abortWithError(c *gin.Context, status int, title, message string) {
	c.AbortWithStatusJSON(status, ErrorResponse{
		Error:     title,
		Message:   message,
		RequestID: c.GetString(RequestIDKey),
		Timestamp: time.Now().Format(time.RFC3339),
	})
}

// ErrorHandler middleware for centralized error handling
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last()

		logrus.WithFields(logrus.Fields{
			"request_id": c.GetString(RequestIDKey),
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"error":      err.Error(),
		}).Error("Request error")

		if c.Writer.Written() {
			return
		}

		switch err.Type {
		case gin.ErrorTypePublic:
			abortWithError(c, http.StatusBadGateway, "Bad gateway", err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Internal server error", "")
		}
	}
}

// RateLimiter implements rate limiting middleware. A non-positive rate
// disables limiting.
func RateLimiter(requestsPerSecond float64, burstSize int) gin.HandlerFunc {
	if requestsPerSecond <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	limiter := rate.NewLimiter(rate.Limit(requestsPerSecond), burstSize)

	return func(c *gin.Context) {
		if !limiter.Allow() {
			logrus.WithFields(logrus.Fields{
				"client_ip":  c.ClientIP(),
				"path":       c.Request.URL.Path,
				"user_agent": c.Request.UserAgent(),
			}).Warn("Rate limit exceeded")

			abortWithError(c, http.StatusTooManyRequests, "Rate limit exceeded",
				fmt.Sprintf("Too many requests. Limit: %.1f requests per second", requestsPerSecond))
			return
		}
		c.Next()
	}
}

// RequestSizeLimit limits the size of request bodies. API Gateway rejects
// payloads above 10MB, so the emulator does the same by default.
func RequestSizeLimit(maxSize int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxSize {
			abortWithError(c, http.StatusRequestEntityTooLarge, "Request too large",
				fmt.Sprintf("Request body size (%d bytes) exceeds maximum allowed size (%d bytes)", c.Request.ContentLength, maxSize))
			return
		}

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxSize)
		c.Next()
	}
}
