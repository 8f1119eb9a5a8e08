package handlers

import (
	"net/http"
	"time"

	"bookreview/internal/session"

	"github.com/gin-gonic/gin"
)

const identityKey = "identity"

// sessionMiddleware resolves the session cookie into a request-scoped Identity.
func (h *Handler) sessionMiddleware(c *gin.Context) {
	id := session.Identity{}
	if token, err := c.Cookie(h.opts.CookieName); err == nil && token != "" {
		id.Token = token
		uid, ok, err := h.sessions.CurrentUser(c.Request.Context(), token)
		if err != nil {
			h.log.Errorw("session_lookup_failed", "err", err)
		}
		if ok {
			id.UserID = uid
		}
	}
	c.Set(identityKey, id)
	c.Next()
}

// loginRequired sends anonymous requests to the login page.
func (h *Handler) loginRequired(c *gin.Context) {
	if !identityFrom(c).Authenticated() {
		c.Redirect(http.StatusFound, "/login")
		c.Abort()
		return
	}
	c.Next()
}

func identityFrom(c *gin.Context) session.Identity {
	v, ok := c.Get(identityKey)
	if !ok {
		return session.Identity{}
	}
	id, _ := v.(session.Identity)
	return id
}

// requestLogger writes one structured line per request.
func (h *Handler) requestLogger(c *gin.Context) {
	start := time.Now()
	c.Next()
	h.log.Infow("http_request",
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"status", c.Writer.Status(),
		"duration", time.Since(start),
		"user_id", identityFrom(c).UserID,
	)
}

func (h *Handler) setSessionCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.opts.CookieName, token, 0, "/", "", h.opts.SecureCookie, true)
}

func (h *Handler) clearSessionCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.opts.CookieName, "", -1, "/", "", h.opts.SecureCookie, true)
}

// endSession drops any server-side session and the cookie. The identity in
// the gin context is reset so the rest of the request sees an anonymous caller.
func (h *Handler) endSession(c *gin.Context) {
	id := identityFrom(c)
	if id.Token == "" {
		return
	}
	if err := h.sessions.Clear(c.Request.Context(), id.Token); err != nil {
		h.log.Errorw("session_clear_failed", "err", err)
	}
	h.clearSessionCookie(c)
	c.Set(identityKey, session.Identity{})
}
