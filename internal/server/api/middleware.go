package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/tradejournal/internal/common"
	"github.com/gin-gonic/gin"
)

const userIDKey = "userID"

func (s *Server) recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, rec any) {
		s.logger.Error(c.Request.Context(), "panic recovered", "panic", rec, "path", c.Request.URL.Path)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "SERVER_ERROR"})
	})
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Info(c.Request.Context(), "request served",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

// credential returns the bearer token, falling back to the session cookie.
func credential(c *gin.Context) string {
	if h := c.GetHeader(common.AuthorizationHeaderName); strings.HasPrefix(h, common.BearerPrefix) {
		if tok := strings.TrimSpace(strings.TrimPrefix(h, common.BearerPrefix)); tok != "" {
			return tok
		}
	}
	tok, err := c.Cookie(common.SessionCookieName)
	if err != nil {
		return ""
	}
	return tok
}

// resolve maps the request credential to a user id.
func (s *Server) resolve(c *gin.Context) (string, bool) {
	tok := credential(c)
	if tok == "" {
		return "", false
	}
	return s.svc.Sessions.Resolve(c.Request.Context(), tok)
}

func (s *Server) requireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := s.resolve(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "UNAUTHORIZED"})
			return
		}
		c.Set(userIDKey, userID)
		c.Next()
	}
}

func currentUser(c *gin.Context) string {
	return c.GetString(userIDKey)
}
