package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	gatepkg "github.com/nexusverde/console/internal/adminregistry/gate"
	auditdomain "github.com/nexusverde/console/internal/audit/domain"
	authdomain "github.com/nexusverde/console/internal/auth/domain"
)

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	if !s.loginLimiter.Allow(c.Request.Context(), c.ClientIP()) {
		AbortWithError(c, ErrTooManyRequests)
		return
	}

	email := strings.TrimSpace(req.Email)
	result, err := s.authsvc.Login(c.Request.Context(), authdomain.LoginRequest{
		Email:     email,
		Password:  req.Password,
		UserAgent: c.Request.UserAgent(),
		IPAddress: c.ClientIP(),
	})
	if err != nil {
		// Sign-in failures fall into two buckets only: rejected
		// credentials and everything else. The error value decides the
		// bucket, never the error text.
		reason := "backend_error"
		if errors.Is(err, authdomain.ErrInvalidCredentials) {
			reason = "invalid_credentials"
		}
		s.obsMetrics.RecordLoginFailure(c.Request.Context(), reason)
		if s.auditSvc != nil {
			_ = s.auditSvc.Record(c.Request.Context(), auditdomain.ActionUserLoginFailed, "user", nil, map[string]any{
				"email":  email,
				"reason": reason,
			})
		}
		if reason == "invalid_credentials" {
			AbortWithError(c, err)
			return
		}
		AbortWithError(c, ErrServiceUnavailable)
		return
	}

	s.sessions.Set(c, result.RawToken, result.ExpiresAt)

	if s.auditSvc != nil {
		var userID *string
		if result.User != nil {
			id := result.User.ID.String()
			userID = &id
		}
		_ = s.auditSvc.Record(c.Request.Context(), auditdomain.ActionUserLogin, "user", userID, map[string]any{
			"email": email,
		})
	}

	c.JSON(http.StatusOK, result.Session)
}

func (s *Server) Logout(c *gin.Context) {
	token, ok := s.sessions.ReadToken(c)
	if !ok {
		c.Status(http.StatusNoContent)
		return
	}

	if err := s.authsvc.Logout(c.Request.Context(), token); err != nil {
		if !errors.Is(err, authdomain.ErrSessionNotFound) && !errors.Is(err, authdomain.ErrInvalidSession) {
			AbortWithError(c, err)
			return
		}
	}

	s.sessions.Clear(c)

	if s.auditSvc != nil {
		_ = s.auditSvc.Record(c.Request.Context(), auditdomain.ActionUserLogout, "user", nil, nil)
	}

	c.Status(http.StatusNoContent)
}

func (s *Server) Me(c *gin.Context) {
	token, ok := s.sessions.ReadToken(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	sess, err := s.authsvc.Authenticate(c.Request.Context(), token)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var user authdomain.User
	if err := s.db.WithContext(c.Request.Context()).First(&user, "id = ?", sess.UserID).Error; err != nil {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	state := s.gate.Evaluate(c.Request.Context(), sess.UserID)

	c.JSON(http.StatusOK, gin.H{
		"user_id":       user.ID.String(),
		"email":         user.Email,
		"display_name":  user.DisplayName,
		"authorization": string(state),
		"expires_at":    sess.ExpiresAt,
	})
}

// WatchAuthorization streams authorization decisions over SSE so the UI can
// react when an operator signs out elsewhere or loses admin membership.
func (s *Server) WatchAuthorization(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	watch, err := s.gate.Watch(c.Request.Context(), userID)
	if err != nil {
		AbortWithError(c, ErrServiceUnavailable)
		return
	}
	defer watch.Close()

	writer := c.Writer
	headers := writer.Header()
	headers.Set("Content-Type", "text/event-stream")
	headers.Set("Cache-Control", "no-cache")
	headers.Set("Connection", "keep-alive")
	headers.Set("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	flusher, ok := writer.(http.Flusher)
	if !ok {
		AbortWithError(c, ErrServiceUnavailable)
		return
	}

	if _, err := io.WriteString(writer, "retry: 2000\n\n"); err != nil {
		return
	}
	flusher.Flush()

	ctx := c.Request.Context()
	heartbeat := time.NewTicker(15 * time.Second)
	defer heartbeat.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case state, open := <-watch.Updates():
			if !open {
				return
			}
			if err := writeAuthorizationEvent(writer, state); err != nil {
				return
			}
			flusher.Flush()
		case <-heartbeat.C:
			if _, err := io.WriteString(writer, ": heartbeat\n\n"); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

func writeAuthorizationEvent(w io.Writer, state gatepkg.State) error {
	data, err := json.Marshal(gin.H{"state": string(state)})
	if err != nil {
		return err
	}
	if _, err := io.WriteString(w, "event: authorization\ndata: "); err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return err
	}
	_, err = io.WriteString(w, "\n\n")
	return err
}
