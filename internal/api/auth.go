package api

import (
	"errors"
	"net/http"

	"github.com/htech-wordpress/vibefit-studio-admin/internal/auth"
	"github.com/htech-wordpress/vibefit-studio-admin/internal/logging"
	"github.com/htech-wordpress/vibefit-studio-admin/internal/models"
	dto "github.com/htech-wordpress/vibefit-studio-admin/pkg/models"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	Auth *auth.Service
}

func NewAuthHandler(svc *auth.Service) *AuthHandler {
	return &AuthHandler{Auth: svc}
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email and password are required"})
		return
	}

	session, user, err := h.Auth.Login(c.Request.Context(), req.Email, req.Password)
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	case errors.Is(err, auth.ErrAccessDenied):
		c.JSON(http.StatusForbidden, gin.H{"error": auth.ErrAccessDenied.Error()})
		return
	case err != nil:
		logging.Error().Err(err).Msg("Error signing in")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to sign in"})
		return
	}

	c.JSON(http.StatusOK, dto.LoginResponse{
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
		User:      userInfo(user),
	})
}

func (h *AuthHandler) Me(c *gin.Context) {
	user := auth.UserFrom(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}
	c.JSON(http.StatusOK, userInfo(user))
}

func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.Auth.Logout(c.Request.Context(), auth.TokenFrom(c)); err != nil {
		logging.Error().Err(err).Msg("Error signing out")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to sign out"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "Signed out"})
}

func userInfo(u *models.User) dto.UserInfo {
	return dto.UserInfo{ID: u.ID, Email: u.Email, Role: u.Role, ProjectID: u.ProjectID}
}
