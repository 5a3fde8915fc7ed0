package handlers

import (
	"errors"
	"net/http"

	"taskflow/internal/http/middleware"
	"taskflow/internal/logger"
	"taskflow/internal/service"

	"github.com/gin-gonic/gin"
)

type signUpRequest struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type forgotRequest struct {
	Email string `json:"email"`
}

type resetRequest struct {
	Token           string `json:"token"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

// SignUp registers the account. Mail delivery is external, so the confirmation
// code is written to the log for the mailer to pick up.
func (h *Handler) SignUp(c *gin.Context) {
	var req signUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}

	user, code, err := h.Auth.SignUp(c.Request.Context(), req.Email, req.Password, req.ConfirmPassword)
	switch {
	case err == nil:
	case errors.Is(err, service.ErrInvalidEmail),
		errors.Is(err, service.ErrWeakPassword),
		errors.Is(err, service.ErrPasswordMismatch):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case errors.Is(err, service.ErrEmailTaken):
		c.JSON(http.StatusConflict, gin.H{"error": "email already registered"})
		return
	default:
		internalError(c, "sign up failed", err)
		return
	}

	logger.WithContext(c.Request.Context()).Info("confirmation code issued",
		"user_id", user.ID, "callback", "/auth/callback?code="+code)

	c.JSON(http.StatusCreated, gin.H{
		"user":    user,
		"message": "check your email to confirm your account",
	})
}

func (h *Handler) Login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}

	sess, err := h.Auth.SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid email or password"})
			return
		}
		if errors.Is(err, service.ErrJWTNotConfigured) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "authentication is not configured"})
			return
		}
		internalError(c, "login failed", err)
		return
	}

	h.setSessionCookie(c, sess.Token, sess.ExpiresAt)
	c.JSON(http.StatusOK, sess)
}

// Logout revokes the current session and clears the cookie. It succeeds even
// without a session so the client can always reset its state.
func (h *Handler) Logout(c *gin.Context) {
	if token := middleware.TokenFromRequest(c); token != "" {
		if err := h.Auth.SignOut(c.Request.Context(), token); err != nil {
			logger.WithContext(c.Request.Context()).Warn("session revoke failed", "error", err)
		}
	}
	h.clearSessionCookie(c)
	c.JSON(http.StatusOK, gin.H{"status": "signed out"})
}

// ForgotPassword always answers the same way so the response does not reveal
// whether the address is registered.
func (h *Handler) ForgotPassword(c *gin.Context) {
	var req forgotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}

	token, err := h.Auth.RequestPasswordReset(c.Request.Context(), req.Email)
	if err != nil {
		internalError(c, "password reset failed", err)
		return
	}
	if token != "" {
		logger.WithContext(c.Request.Context()).Info("password reset issued", "link", "/reset-password?token="+token)
	}

	c.JSON(http.StatusOK, gin.H{"message": "if the address is registered, a reset link has been sent"})
}

func (h *Handler) ResetPassword(c *gin.Context) {
	var req resetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}

	err := h.Auth.ResetPassword(c.Request.Context(), req.Token, req.Password, req.ConfirmPassword)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"status": "password updated"})
	case errors.Is(err, service.ErrWeakPassword), errors.Is(err, service.ErrPasswordMismatch):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidCode):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid or expired reset link"})
	default:
		internalError(c, "password reset failed", err)
	}
}

// AuthCallback exchanges a confirmation code for a session and lands on the dashboard.
func (h *Handler) AuthCallback(c *gin.Context) {
	if h.JWTReady != nil && !h.JWTReady() {
		logger.WithContext(c.Request.Context()).Error("auth callback: sessions are not configured")
		c.Redirect(http.StatusFound, "/login?error=config")
		return
	}

	if code := c.Query("code"); code != "" {
		sess, err := h.Auth.ExchangeCode(c.Request.Context(), code)
		if err != nil {
			logger.WithContext(c.Request.Context()).Warn("auth callback: code exchange failed", "error", err)
			c.Redirect(http.StatusFound, "/login?error=auth")
			return
		}
		h.setSessionCookie(c, sess.Token, sess.ExpiresAt)
	}

	c.Redirect(http.StatusFound, "/dashboard")
}
