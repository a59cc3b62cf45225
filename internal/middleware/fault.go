package middleware

import (
	"context"
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// FaultBoundary recovers a panicking handler, answers 500 and reports the
// fault so the server can shut down instead of running on in an unknown
// state.
func FaultBoundary(log *logrus.Logger, onFault func(error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}
			fault := fmt.Errorf("panic serving %s %s: %v", c.Request.Method, c.Request.URL.Path, r)
			log.WithField("stack", string(debug.Stack())).Error(fault.Error())
			abort(c, http.StatusInternalServerError, "Internal server error")
			if onFault != nil {
				onFault(fault)
			}
		}()
		c.Next()
	}
}

// Timeout bounds the request context. Storage calls observe it.
func Timeout(d time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if d <= 0 {
			c.Next()
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
