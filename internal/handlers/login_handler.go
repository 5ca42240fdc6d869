package handlers

import (
	"errors"
	"net/http"
	"strings"

	"go-shop-manager/internal/apperr"
	"go-shop-manager/internal/auth"
	"go-shop-manager/internal/config"
	"go-shop-manager/internal/logger"
	"go-shop-manager/internal/models"
	"go-shop-manager/internal/validate"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RegisterRequest struct {
	Username        string `json:"username" validate:"required,max=50"`
	Email           string `json:"email" validate:"required,email,max=120"`
	Password        string `json:"password" validate:"required,min=6"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=Password"`
	Role            string `json:"role" validate:"omitempty,oneof=user admin"`
}

type AuthHandler struct {
	db     *gorm.DB
	tokens *auth.Tokens
	cfg    config.AuthConfig
}

func NewAuthHandler(db *gorm.DB, tokens *auth.Tokens, cfg config.AuthConfig) *AuthHandler {
	if cfg.CookieName == "" {
		cfg.CookieName = "session_token"
	}
	return &AuthHandler{db: db, tokens: tokens, cfg: cfg}
}

// --- POST /login ---
func (h *AuthHandler) Login(c *gin.Context) {
	var input LoginRequest
	if !bindJSON(c, &input) {
		return
	}
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	if err := validate.Struct(input); err != nil {
		respondError(c, err)
		return
	}

	var user models.User
	if err := h.db.WithContext(c.Request.Context()).Where("email = ?", input.Email).First(&user).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}
	if !auth.CheckPassword(user.PasswordHash, input.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	token, err := h.tokens.GenerateToken(user.ID, user.Role)
	if err != nil {
		respondError(c, err)
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cfg.CookieName, token, int(h.tokens.TTL().Seconds()), "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{
		"token":    token,
		"role":     user.Role,
		"username": user.Username,
	})
}

// --- POST /register (only routed when registration is enabled) ---
func (h *AuthHandler) Register(c *gin.Context) {
	var input RegisterRequest
	if !bindJSON(c, &input) {
		return
	}
	input.Username = strings.TrimSpace(input.Username)
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	if err := validate.Struct(input); err != nil {
		respondError(c, err)
		return
	}
	if input.Role == "" {
		input.Role = models.RoleUser
	}

	ctx := c.Request.Context()
	var count int64
	if err := h.db.WithContext(ctx).Model(&models.User{}).
		Where("username = ? OR email = ?", input.Username, input.Email).
		Count(&count).Error; err != nil {
		respondError(c, err)
		return
	}
	if count > 0 {
		respondError(c, apperr.Conflict("username or email already registered"))
		return
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	user := models.User{
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: hash,
		Role:         input.Role,
	}
	if err := h.db.WithContext(ctx).Create(&user).Error; err != nil {
		respondError(c, err)
		return
	}

	logger.For("auth").WithField("user_id", user.ID).Info("user registered")
	c.JSON(http.StatusCreated, gin.H{"message": "User created successfully!", "user": user})
}

// --- POST /logout ---
func (h *AuthHandler) Logout(c *gin.Context) {
	c.SetCookie(h.cfg.CookieName, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

// --- GET /api/me ---
func (h *AuthHandler) Me(c *gin.Context) {
	caller, err := auth.CallerFrom(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	var user models.User
	if err := h.db.WithContext(c.Request.Context()).First(&user, caller.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, apperr.ErrUnauthenticated)
			return
		}
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// --- GET /api/users (admin) ---
func (h *AuthHandler) ListUsers(c *gin.Context) {
	var users []models.User
	if err := h.db.WithContext(c.Request.Context()).Order("id").Find(&users).Error; err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// --- DELETE /api/users/:id (admin) ---
func (h *AuthHandler) DeleteUser(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	caller, err := auth.CallerFrom(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	if caller.UserID == id {
		respondError(c, apperr.Validation("you cannot delete your own account"))
		return
	}

	res := h.db.WithContext(c.Request.Context()).Delete(&models.User{}, id)
	if res.Error != nil {
		respondError(c, res.Error)
		return
	}
	if res.RowsAffected == 0 {
		respondError(c, apperr.NotFound("user", id))
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User deleted successfully"})
}
