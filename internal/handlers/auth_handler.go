package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"shopcore/internal/middleware"
	"shopcore/internal/models"
	"shopcore/internal/services"
)

type AuthHandler struct {
	userService services.UserService
	authService services.AuthService
	jwtSecret   string
}

func NewAuthHandler(userService services.UserService, authService services.AuthService, jwtSecret string) *AuthHandler {
	return &AuthHandler{userService: userService, authService: authService, jwtSecret: jwtSecret}
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

func (h *AuthHandler) issueTokenPair(c *gin.Context, user *models.User) {
	access, err := middleware.IssueAccessToken(h.jwtSecret, user.ID, user.IsStaff)
	if err != nil {
		log.Printf("[auth][token] access sign failed user=%d: %v", user.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token issue failed"})
		return
	}
	refresh, err := h.userService.IssueRefresh(user.ID)
	if err != nil {
		log.Printf("[auth][token] refresh issue failed user=%d: %v", user.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token issue failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"access_token":  access,
		"refresh_token": refresh,
		"token_type":    "Bearer",
	})
}

// @Summary      Obtain a token pair
// @Description  Authenticates by username or email; unverified accounts are rejected
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        login  body      models.LoginRequest  true  "Credentials"
// @Success      200    {object}  map[string]interface{}
// @Failure      400    {object}  map[string]string
// @Failure      401    {object}  map[string]string
// @Failure      403    {object}  map[string]string
// @Router       /auth/token [post]
func (h *AuthHandler) Token(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	login := strings.TrimSpace(req.Username)

	user, err := h.userService.GetUserByLogin(login)
	if err != nil {
		log.Printf("[auth][token] lookup failed login=%q: %v", login, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
		return
	}
	if user == nil || !h.authService.ComparePassword(user.PasswordHash, req.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}
	if !user.IsActive {
		c.JSON(http.StatusForbidden, gin.H{"error": "account disabled"})
		return
	}
	if !user.IsVerified {
		c.JSON(http.StatusForbidden, gin.H{"error": "email not verified"})
		return
	}

	log.Printf("[auth][token] login ok user=%d", user.ID)
	h.issueTokenPair(c, user)
}

// @Summary      Rotate a refresh token
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        request  body      refreshRequest  true  "Current refresh token"
// @Success      200      {object}  map[string]interface{}
// @Failure      401      {object}  map[string]string
// @Router       /auth/token/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, newRefresh, err := h.userService.RotateRefresh(req.RefreshToken)
	if err != nil {
		if errors.Is(err, services.ErrRefreshInvalid) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid refresh token"})
			return
		}
		log.Printf("[auth][refresh] rotate failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "refresh failed"})
		return
	}

	access, err := middleware.IssueAccessToken(h.jwtSecret, user.ID, user.IsStaff)
	if err != nil {
		log.Printf("[auth][refresh] access sign failed user=%d: %v", user.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "refresh failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"access_token":  access,
		"refresh_token": newRefresh,
		"token_type":    "Bearer",
	})
}

// Logout revokes the caller's refresh token. The access token stays valid
// until it expires on its own.
func (h *AuthHandler) Logout(c *gin.Context) {
	userID, _ := currentUser(c)
	if err := h.userService.RevokeRefresh(userID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "logout failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}
