package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"todoapp/internal/api/middleware"
	"todoapp/internal/model"
	"todoapp/internal/pkg/metrics"
	"todoapp/internal/store"

	"github.com/gin-gonic/gin"
)

// UserStore 是 Handler 依赖的凭证存储操作。
type UserStore interface {
	Create(ctx context.Context, email, password string) (model.User, error)
	FindByCredentials(ctx context.Context, email, password string) (model.User, error)
	IssueToken(ctx context.Context, user model.User, purpose string) (string, error)
	RevokeToken(ctx context.Context, user model.User, token string) error
}

// Handler 提供注册、登录、登出与身份查询接口。
type Handler struct {
	users  UserStore
	logger *slog.Logger
}

// NewHandler 创建 Auth Handler。
func NewHandler(users UserStore, logger *slog.Logger) *Handler {
	return &Handler{
		users:  users,
		logger: logger,
	}
}

type credentialsRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

// Register 创建新用户并签发首个认证令牌。
//
// POST /users
func (h *Handler) Register(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.users.Create(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		// 重复邮箱与其他校验错误统一走 400（既有客户端契约）
		if errors.Is(err, store.ErrDuplicateEmail) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "email already taken"})
			return
		}
		h.logger.Error("create user failed", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create user failed"})
		return
	}

	tokenStr, err := h.users.IssueToken(c.Request.Context(), user, model.TokenPurposeAuth)
	if err != nil {
		h.logger.Error("issue token failed", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "issue token failed"})
		return
	}
	if metrics.TokensIssuedTotal != nil {
		metrics.TokensIssuedTotal.Inc()
	}

	h.logger.Info("user registered", slog.String("email", user.Email))
	c.Header(middleware.AuthHeader, tokenStr)
	c.JSON(http.StatusOK, user.View())
}

// Login 校验用户凭证并签发新的认证令牌（替换旧令牌）。
//
// POST /users/login
func (h *Handler) Login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.users.FindByCredentials(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, store.ErrInvalidCredentials) {
			// 登录失败沿用既有契约返回 400（认证网关失败才是 401）
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid credentials"})
			return
		}
		h.logger.Error("find user failed", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
		return
	}

	tokenStr, err := h.users.IssueToken(c.Request.Context(), user, model.TokenPurposeAuth)
	if err != nil {
		h.logger.Error("issue token failed", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "issue token failed"})
		return
	}
	if metrics.TokensIssuedTotal != nil {
		metrics.TokensIssuedTotal.Inc()
	}

	h.logger.Info("user logged in", slog.String("email", user.Email))
	c.Header(middleware.AuthHeader, tokenStr)
	c.JSON(http.StatusOK, user.View())
}

// Me 返回认证用户自身的信息。
//
// GET /users/me
func (h *Handler) Me(c *gin.Context) {
	user, ok := middleware.UserFromContext(c)
	if !ok {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}
	c.JSON(http.StatusOK, user.View())
}

// Logout 吊销当前请求携带的令牌，使其立刻失效。
//
// DELETE /users/me/token
func (h *Handler) Logout(c *gin.Context) {
	user, ok := middleware.UserFromContext(c)
	if !ok {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	if err := h.users.RevokeToken(c.Request.Context(), user, middleware.TokenFromContext(c)); err != nil {
		h.logger.Error("revoke token failed", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "logout failed"})
		return
	}
	if metrics.TokensRevokedTotal != nil {
		metrics.TokensRevokedTotal.Inc()
	}

	h.logger.Info("user logged out", slog.String("email", user.Email))
	c.JSON(http.StatusOK, gin.H{})
}
