package handlers

import (
	"errors"
	"net/http"
	"time"

	"esgportal/errs"
	"esgportal/middleware"
	"esgportal/models"
	"esgportal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AuthInput struct {
	Email    string `json:"email" form:"email" binding:"required,email"`
	Password string `json:"password" form:"password" binding:"required,min=8,max=72"`
}

type sessionResponse struct {
	Token     string `json:"token"`
	ExpiresAt string `json:"expires_at"`
	Redirect  string `json:"redirect"`
}

func newSessionResponse(s *models.Session, redirect string) sessionResponse {
	return sessionResponse{Token: s.Token, ExpiresAt: s.ExpiresAt.UTC().Format(time.RFC3339), Redirect: redirect}
}

func (h *Handlers) SignUp(c *gin.Context) {
	if !h.Config.Features.SignupEnabled {
		c.JSON(http.StatusNotFound, gin.H{"error": "Sign-up not enabled"})
		return
	}
	var input AuthInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	identity, err := h.Accounts.SignUp(c.Request.Context(), input.Email, input.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	s, err := h.Sessions.SignIn(c.Request.Context(), middleware.ClientID(c), *identity)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newSessionResponse(s, services.DefaultReturnPath))
}

func (h *Handlers) SignIn(c *gin.Context) {
	var input AuthInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	identity, err := h.Accounts.Authenticate(c.Request.Context(), input.Email, input.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	s, err := h.Sessions.SignIn(c.Request.Context(), middleware.ClientID(c), *identity)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newSessionResponse(s, services.DefaultReturnPath))
}

func (h *Handlers) SignOut(c *gin.Context) {
	if err := h.Sessions.SignOut(c.Request.Context(), middleware.ClientID(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Signed out", "redirect": "/auth"})
}

func (h *Handlers) Refresh(c *gin.Context) {
	s, err := h.Sessions.Refresh(c.Request.Context(), middleware.ClientID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newSessionResponse(s, ""))
}

// AuthPage shows the sign-in form, or sends a signed-in client straight on.
func (h *Handlers) AuthPage(c *gin.Context) {
	redirect := services.LocalPath(c.Query("redirect"), services.DefaultReturnPath)
	if snap, err := h.Sessions.CurrentSession(c.Request.Context(), middleware.ClientID(c)); err == nil && snap.Authenticated() {
		c.Redirect(http.StatusSeeOther, redirect)
		return
	}
	h.page(c, http.StatusOK, "auth.html", "Sign in", gin.H{
		"Redirect":      redirect,
		"SignupEnabled": h.Config.Features.SignupEnabled,
	})
}

// AuthForm handles the HTML sign-in and sign-up form and returns the browser
// to the location it originally asked for.
func (h *Handlers) AuthForm(c *gin.Context) {
	redirect := services.LocalPath(c.PostForm("redirect"), services.DefaultReturnPath)
	fail := func(status int, msg string) {
		h.page(c, status, "auth.html", "Sign in", gin.H{
			"Redirect":      redirect,
			"SignupEnabled": h.Config.Features.SignupEnabled,
			"Error":         msg,
		})
	}

	var input AuthInput
	if err := c.ShouldBind(&input); err != nil {
		fail(http.StatusBadRequest, "Enter a valid email and a password of at least 8 characters.")
		return
	}

	var (
		identity *models.Identity
		err      error
	)
	if c.PostForm("mode") == "sign_up" {
		if !h.Config.Features.SignupEnabled {
			fail(http.StatusNotFound, "Sign-up is not available.")
			return
		}
		identity, err = h.Accounts.SignUp(c.Request.Context(), input.Email, input.Password)
	} else {
		identity, err = h.Accounts.Authenticate(c.Request.Context(), input.Email, input.Password)
	}
	if err != nil {
		status, msg := statusFor(err)
		if errors.Is(err, errs.ErrStoreQueryFailed) {
			h.Log.Error("sign-in failed", zap.Error(err))
		}
		fail(status, msg)
		return
	}

	if _, err := h.Sessions.SignIn(c.Request.Context(), middleware.ClientID(c), *identity); err != nil {
		status, msg := statusFor(err)
		fail(status, msg)
		return
	}
	c.Redirect(http.StatusSeeOther, redirect)
}

func (h *Handlers) SignOutForm(c *gin.Context) {
	_ = h.Sessions.SignOut(c.Request.Context(), middleware.ClientID(c))
	c.Redirect(http.StatusSeeOther, "/auth")
}
