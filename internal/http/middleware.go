package httpapi

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/dew-13/solestyle/internal/apperr"
	"github.com/dew-13/solestyle/internal/auth"
	"github.com/dew-13/solestyle/internal/models"
)

const (
	HeaderRequestID = "X-Request-ID"
	ctxKeyRequestID = "request_id"
	ctxKeyUser      = "user"
)

func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(HeaderRequestID)
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Set(ctxKeyRequestID, rid)
		c.Writer.Header().Set(HeaderRequestID, rid)
		c.Next()
	}
}

func GetRequestID(c *gin.Context) string {
	return c.GetString(ctxKeyRequestID)
}

func Logger(l *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		if q := c.Request.URL.RawQuery; q != "" {
			path = path + "?" + q
		}

		c.Next()

		status := c.Writer.Status()
		level := slog.LevelInfo
		if status >= 500 {
			level = slog.LevelError
		} else if status >= 400 {
			level = slog.LevelWarn
		}

		l.LogAttrs(c.Request.Context(), level, "http_request",
			slog.String("request_id", GetRequestID(c)),
			slog.String("method", c.Request.Method),
			slog.String("path", path),
			slog.Int("status", status),
			slog.Duration("latency", time.Since(start)),
			slog.Int("bytes", c.Writer.Size()),
			slog.String("client_ip", c.ClientIP()),
		)
	}
}

func Recovery(l *slog.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		l.LogAttrs(c.Request.Context(), slog.LevelError, "panic_recovered",
			slog.String("request_id", GetRequestID(c)),
			slog.Any("panic", recovered),
			slog.String("stack", string(debug.Stack())),
		)
		Fail(c, apperr.Wrap(fmt.Errorf("panic: %v", recovered)))
	})
}

// Fail records err for ErrorHandler and stops the chain.
func Fail(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

// ErrorHandler renders the last recorded error as {"message", "request_id",
// "fields"}. Internal details only reach the log.
func ErrorHandler(l *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() || len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err
		status := apperr.HTTPStatus(err)
		rid := GetRequestID(c)

		level := slog.LevelWarn
		if status >= 500 {
			level = slog.LevelError
		}
		l.LogAttrs(c.Request.Context(), level, "request_failed",
			slog.String("request_id", rid),
			slog.Int("status", status),
			slog.Any("err", err),
		)

		payload := gin.H{
			"message":    apperr.PublicMessage(err),
			"request_id": rid,
		}
		if ae, ok := apperr.As(err); ok && len(ae.Fields) > 0 {
			payload["fields"] = ae.Fields
		}
		c.AbortWithStatusJSON(status, payload)
	}
}

func authErr(err error) error {
	switch {
	case errors.Is(err, auth.ErrMissingToken):
		return apperr.UnauthorizedErr("authentication required")
	case errors.Is(err, auth.ErrInvalidToken):
		return apperr.UnauthorizedErr("invalid or expired token")
	case errors.Is(err, auth.ErrNotAdmin):
		return apperr.ForbiddenErr("admin access required")
	default:
		return apperr.Wrap(err)
	}
}

func credential(c *gin.Context) string {
	return auth.BearerToken(c.GetHeader("Authorization"))
}

// RequireAuth rejects requests without a valid bearer token for a known user.
func RequireAuth(r *auth.Resolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := r.ResolveUser(c.Request.Context(), credential(c))
		if err != nil {
			Fail(c, authErr(err))
			return
		}
		c.Set(ctxKeyUser, user)
		c.Next()
	}
}

func RequireAdmin(r *auth.Resolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := r.ResolveAdmin(c.Request.Context(), credential(c))
		if err != nil {
			Fail(c, authErr(err))
			return
		}
		c.Set(ctxKeyUser, user)
		c.Next()
	}
}

func CurrentUser(c *gin.Context) (*models.User, bool) {
	v, ok := c.Get(ctxKeyUser)
	if !ok {
		return nil, false
	}
	u, ok := v.(*models.User)
	return u, ok
}
