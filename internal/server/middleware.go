package server

import (
	"net/http"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	gatepkg "github.com/nexusverde/console/internal/adminregistry/gate"
	obscontext "github.com/nexusverde/console/internal/observability/context"
)

const contextUserIDKey = "user_id"

// AuthRequired resolves the session cookie and attaches the caller identity
// to the request. Requests without a valid session are rejected before any
// handler runs.
func (s *Server) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := s.sessions.ReadToken(c)
		if !ok {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		sess, err := s.authsvc.Authenticate(c.Request.Context(), token)
		if err != nil {
			s.sessions.Clear(c)
			AbortWithError(c, err)
			return
		}

		ctx := obscontext.WithActorID(c.Request.Context(), sess.UserID.String())
		c.Request = c.Request.WithContext(ctx)
		c.Set(contextUserIDKey, sess.UserID)
		c.Next()
	}
}

// AdminRequired gates console operations on administrator membership. The
// decision fails closed, so a registry outage denies access instead of
// letting the request through.
func (s *Server) AdminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		if s.gate.Evaluate(c.Request.Context(), userID) != gatepkg.StateAllowed {
			AbortWithError(c, ErrForbidden)
			return
		}
		c.Next()
	}
}

// redirectUnlessAllowed guards console pages. Anything short of an allowed
// admin session, a missing or invalid session included, redirects to the
// sign-in page without serving protected content.
func (s *Server) redirectUnlessAllowed() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := s.sessionUserID(c)
		if !ok || s.gate.Evaluate(c.Request.Context(), userID) != gatepkg.StateAllowed {
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}
		c.Next()
	}
}

// redirectIfLoggedIn keeps signed-in users off the login page.
func (s *Server) redirectIfLoggedIn() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := s.sessionUserID(c); ok {
			c.Redirect(http.StatusFound, "/")
			c.Abort()
			return
		}
		c.Next()
	}
}

func (s *Server) sessionUserID(c *gin.Context) (snowflake.ID, bool) {
	token, ok := s.sessions.ReadToken(c)
	if !ok {
		return 0, false
	}
	sess, err := s.authsvc.Authenticate(c.Request.Context(), token)
	if err != nil {
		return 0, false
	}
	return sess.UserID, true
}

func currentUserID(c *gin.Context) (snowflake.ID, bool) {
	value, exists := c.Get(contextUserIDKey)
	if !exists {
		return 0, false
	}
	userID, ok := value.(snowflake.ID)
	return userID, ok
}
