// api/handlers/auth_handler.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Annany2002/jobboard-backend/api/middleware"
	"github.com/Annany2002/jobboard-backend/api/models"
	"github.com/Annany2002/jobboard-backend/config"
	"github.com/Annany2002/jobboard-backend/internal/apierror"
	"github.com/Annany2002/jobboard-backend/internal/auth"
	"github.com/Annany2002/jobboard-backend/internal/core"
	"github.com/Annany2002/jobboard-backend/internal/domain"
	"github.com/Annany2002/jobboard-backend/internal/storage"
)

// AuthHandler holds dependencies for authentication handlers.
type AuthHandler struct {
	Store  *storage.Store
	Cfg    *config.Config
	Tokens *auth.TokenService
	Policy core.PasswordPolicy
}

// NewAuthHandler creates a new AuthHandler with dependencies.
func NewAuthHandler(store *storage.Store, cfg *config.Config, tokens *auth.TokenService) *AuthHandler {
	return &AuthHandler{
		Store:  store,
		Cfg:    cfg,
		Tokens: tokens,
		Policy: core.PasswordPolicy{MinLength: cfg.Auth.PasswordMinLength},
	}
}

// Signup handles user registration requests.
func (h *AuthHandler) Signup(c *gin.Context) {
	var req models.SignupRequest
	if err := bindJSON(c, &req); err != nil {
		customLog.Debugf("Signup binding error: %v", err)
		_ = c.Error(err)
		return
	}

	if problems := h.Policy.Validate(req.Password, req.Email); len(problems) > 0 {
		_ = c.Error(apierror.Validation(apierror.FieldErrors{"password": problems}))
		return
	}

	hashedPassword, err := auth.HashPassword(req.Password)
	if err != nil {
		_ = c.Error(err)
		return
	}

	user, err := h.Store.CreateUser(c.Request.Context(), req.Email, hashedPassword, false)
	if err != nil {
		if errors.Is(err, storage.ErrEmailExists) {
			err = apierror.Validation(apierror.FieldErrors{"email": {"A user with this email already exists."}}).Wrap(err)
		}
		_ = c.Error(err)
		return
	}

	customLog.Infof("Successfully registered user %d", user.ID)
	c.JSON(http.StatusCreated, user)
}

// Token exchanges email and password for an access/refresh token pair.
func (h *AuthHandler) Token(c *gin.Context) {
	var req models.TokenRequest
	if err := bindJSON(c, &req); err != nil {
		_ = c.Error(err)
		return
	}

	noAccount := apierror.AuthenticationFailed("No active account found with the given credentials")

	user, err := h.Store.FindUserByEmail(c.Request.Context(), req.Email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			_ = c.Error(noAccount)
			return
		}
		_ = c.Error(err)
		return
	}
	if !user.IsActive || !auth.CheckPasswordHash(req.Password, user.PasswordHash) {
		customLog.Debugf("Token request rejected for user %d", user.ID)
		_ = c.Error(noAccount)
		return
	}

	pair, err := h.Tokens.IssuePair(user.ID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, pair)
}

// Refresh issues a new access token (and, with rotation, a new refresh token).
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req models.RefreshRequest
	if err := bindJSON(c, &req); err != nil {
		_ = c.Error(err)
		return
	}

	pair, err := h.Tokens.Refresh(c.Request.Context(), h.Store, req.Refresh)
	if err != nil {
		_ = c.Error(tokenError(err))
		return
	}
	c.JSON(http.StatusOK, pair)
}

// Blacklist revokes a refresh token.
func (h *AuthHandler) Blacklist(c *gin.Context) {
	var req models.RefreshRequest
	if err := bindJSON(c, &req); err != nil {
		_ = c.Error(err)
		return
	}

	if err := h.Tokens.Revoke(c.Request.Context(), h.Store, req.Refresh); err != nil {
		_ = c.Error(tokenError(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{})
}

// Me returns the authenticated user.
func (h *AuthHandler) Me(c *gin.Context) {
	c.JSON(http.StatusOK, middleware.CurrentUser(c))
}

// Site returns the admin site titles.
func (h *AuthHandler) Site(c *gin.Context) {
	c.JSON(http.StatusOK, models.SiteResponse{
		SiteTitle:  h.Cfg.Admin.SiteTitle,
		IndexTitle: h.Cfg.Admin.IndexTitle,
	})
}

func tokenError(err error) error {
	switch {
	case errors.Is(err, auth.ErrTokenBlacklisted):
		return apierror.AuthenticationFailed("Token is blacklisted").Wrap(err)
	case auth.IsTokenError(err):
		return apierror.AuthenticationFailed("Token is invalid or expired").Wrap(err)
	}
	return err
}
