package handlers

import (
	"net/http"
	"strings"

	"bookreview/internal/service"
	"bookreview/internal/session"

	"github.com/gin-gonic/gin"
)

// registrationForm is the payload of the sign-up form.
type registrationForm struct {
	Username        string `form:"username"`
	Password        string `form:"password"`
	ConfirmPassword string `form:"confirm_password"`
}

type loginForm struct {
	Username string `form:"username"`
	Password string `form:"password"`
}

// validate checks the fields in the order the form presents them.
func (f registrationForm) validate() error {
	switch {
	case strings.TrimSpace(f.Username) == "":
		return &service.ValidationError{Field: "username", Message: service.MsgEnterUsername}
	case f.Password == "":
		return &service.ValidationError{Field: "password", Message: service.MsgEnterPassword}
	case f.Password != f.ConfirmPassword:
		return &service.ValidationError{Field: "confirm_password", Message: service.MsgPasswordMismatch}
	}
	return nil
}

// index is the landing page. Visiting it logs the user out.
func (h *Handler) index(c *gin.Context) {
	h.endSession(c)
	h.render(c, http.StatusOK, "index.html", pageData{})
}

func (h *Handler) registerForm(c *gin.Context) {
	h.endSession(c)
	h.render(c, http.StatusOK, "register.html", pageData{Title: "Register"})
}

func (h *Handler) register(c *gin.Context) {
	h.endSession(c)

	var form registrationForm
	if err := c.ShouldBind(&form); err != nil {
		h.log.Infow("auth_bad_request_body", "err", err)
		h.renderError(c, http.StatusBadRequest, msgBadForm, "/register")
		return
	}
	if err := form.validate(); err != nil {
		h.fail(c, err, "/register")
		return
	}

	id, err := h.services.Register(c.Request.Context(), form.Username, form.Password)
	if err != nil {
		h.fail(c, err, "/register", "username", form.Username)
		return
	}

	h.log.Infow("auth_registered", "username", form.Username, "user_id", id)
	c.Redirect(http.StatusFound, "/")
}

func (h *Handler) loginForm(c *gin.Context) {
	h.endSession(c)
	h.render(c, http.StatusOK, "login.html", pageData{Title: "Log in"})
}

func (h *Handler) login(c *gin.Context) {
	h.endSession(c)

	var form loginForm
	if err := c.ShouldBind(&form); err != nil {
		h.log.Infow("auth_bad_request_body", "err", err)
		h.renderError(c, http.StatusBadRequest, msgBadForm, "/login")
		return
	}

	ctx := c.Request.Context()
	id, err := h.services.Verify(ctx, form.Username, form.Password)
	if err != nil {
		h.fail(c, err, "/login", "username", form.Username)
		return
	}

	token, err := h.sessions.Start(ctx, id)
	if err != nil {
		h.fail(c, err, "/login")
		return
	}
	h.setSessionCookie(c, token)
	c.Set(identityKey, session.Identity{Token: token, UserID: id})

	h.log.Infow("auth_login", "username", form.Username, "user_id", id)
	h.render(c, http.StatusOK, "search.html", pageData{Title: "Search", Username: form.Username})
}

func (h *Handler) logout(c *gin.Context) {
	h.endSession(c)
	c.Redirect(http.StatusFound, "/")
}
