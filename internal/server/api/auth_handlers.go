package api

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/tradejournal/internal/common"
	"github.com/gin-gonic/gin"
)

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Nickname string `json:"nickname"`
}

type forgotPasswordRequest struct {
	Email       string `json:"email"`
	NewPassword string `json:"newPassword"`
}

func (s *Server) setSessionCookie(c *gin.Context, token string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(common.SessionCookieName, token, maxAge, "/", "", s.opts.CookieSecure, true)
}

func (s *Server) login(c *gin.Context) {
	var req credentialsRequest
	if err := bind(c, &req); err != nil {
		s.fail(c, err)
		return
	}

	ctx := c.Request.Context()

	user, err := s.svc.Users.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		s.fail(c, err)
		return
	}

	token, err := s.svc.Sessions.Create(ctx, user.ID)
	if err != nil {
		s.fail(c, err)
		return
	}

	s.setSessionCookie(c, token, int(s.opts.SessionTTL.Seconds()))

	resp := gin.H{"ok": true, "user": user.Public()}
	if s.opts.ExposeToken {
		resp["token"] = token
	}
	s.logger.Info(ctx, "Logged in", "userID", user.ID)
	c.JSON(http.StatusOK, resp)
}

func (s *Server) logout(c *gin.Context) {
	if tok := credential(c); tok != "" {
		s.svc.Sessions.Destroy(c.Request.Context(), tok)
	}

	c.Header("Cache-Control", "no-store")
	s.setSessionCookie(c, "", -1)
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (s *Server) me(c *gin.Context) {
	userID, ok := s.resolve(c)
	if !ok {
		c.JSON(http.StatusOK, gin.H{"authenticated": false})
		return
	}

	user, err := s.svc.Users.GetByID(c.Request.Context(), userID)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"authenticated": true, "user": user.Public()})
	case errors.Is(err, common.ErrorNotFound):
		c.JSON(http.StatusOK, gin.H{"authenticated": true, "user": nil})
	default:
		s.fail(c, err)
	}
}

func (s *Server) register(c *gin.Context) {
	var req registerRequest
	if err := bind(c, &req); err != nil {
		s.fail(c, err)
		return
	}

	user, err := s.svc.Users.Register(c.Request.Context(), req.Email, req.Password, req.Nickname)
	if err != nil {
		s.fail(c, err)
		return
	}

	s.logger.Info(c.Request.Context(), "Registered", "userID", user.ID)
	c.JSON(http.StatusCreated, gin.H{"ok": true, "user": user.Public()})
}

func (s *Server) forgotPassword(c *gin.Context) {
	var req forgotPasswordRequest
	if err := bind(c, &req); err != nil {
		s.fail(c, err)
		return
	}

	if err := s.svc.Users.ResetPassword(c.Request.Context(), req.Email, req.NewPassword); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (s *Server) health(c *gin.Context) {
	if s.svc.Health != nil {
		if err := s.svc.Health.Ping(c.Request.Context()); err != nil {
			s.logger.Warn(c.Request.Context(), "health check failed", "error", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
