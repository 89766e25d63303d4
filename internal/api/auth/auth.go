package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/sarathsathish07/Task-Manager-App/internal/model"
	"github.com/sarathsathish07/Task-Manager-App/internal/pkg/metrics"
	"github.com/sarathsathish07/Task-Manager-App/internal/pkg/revoke"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// UserStore 抽象用户存取，便于 Handler 单测。
type UserStore interface {
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	Create(ctx context.Context, user *model.User) error
}

type dbUserStore struct {
	db *gorm.DB
}

func (s dbUserStore) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (s dbUserStore) Create(ctx context.Context, user *model.User) error {
	return s.db.WithContext(ctx).Create(user).Error
}

// NewDBStore 创建基于 gorm 的 UserStore。
func NewDBStore(db *gorm.DB) UserStore {
	return dbUserStore{db: db}
}

// Handler 提供注册、登录与登出接口。
type Handler struct {
	store     UserStore
	jwtSecret []byte
	tokenTTL  time.Duration
	revoked   *revoke.List
	logger    *slog.Logger
}

// NewHandler 创建 Auth Handler。
func NewHandler(store UserStore, jwtSecret string, tokenTTL time.Duration, revoked *revoke.List, logger *slog.Logger) *Handler {
	if tokenTTL <= 0 {
		tokenTTL = 30 * 24 * time.Hour
	}
	return &Handler{
		store:     store,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  tokenTTL,
		revoked:   revoked,
		logger:    logger,
	}
}

type registerRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type googleLoginRequest struct {
	GoogleName  string `json:"googleName" binding:"required"`
	GoogleEmail string `json:"googleEmail" binding:"required,email"`
}

type profileResponse struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Register 创建新用户并签发会话。
//
// POST /users
func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	email := strings.TrimSpace(strings.ToLower(req.Email))

	_, err := h.store.FindByEmail(c.Request.Context(), email)
	if err == nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "User already exists"})
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "query user failed"})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "hash password failed"})
		return
	}

	user := model.User{
		Name:     req.Name,
		Email:    email,
		Password: string(hash),
	}
	if err := h.store.Create(c.Request.Context(), &user); err != nil {
		if h.logger != nil {
			h.logger.Error("create user failed", slog.String("email", email), slog.String("error", err.Error()))
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": "create user failed"})
		return
	}

	if metrics.UsersRegisteredTotal != nil {
		metrics.UsersRegisteredTotal.Inc()
	}
	if h.logger != nil {
		h.logger.Info("user registered", slog.String("email", email))
	}
	h.issueSession(c, &user)
}

// Login 校验邮箱密码并签发会话。
//
// POST /users/auth
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	email := strings.TrimSpace(strings.ToLower(req.Email))

	user, err := h.store.FindByEmail(c.Request.Context(), email)
	if err != nil {
		h.rejectLogin(c, email)
		return
	}
	if user.Password == "" {
		// 仅联合登录账号没有本地密码
		h.rejectLogin(c, email)
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		h.rejectLogin(c, email)
		return
	}

	if metrics.LoginsTotal != nil {
		metrics.LoginsTotal.Inc()
	}
	if h.logger != nil {
		h.logger.Info("user logged in", slog.String("email", email))
	}
	h.issueSession(c, user)
}

// GoogleLogin 处理 Google 联合登录。
//
// 断言的签名校验由上游（前端 SDK / 反向代理）完成，这里信任传入的
// name/email：邮箱已存在则直接签发会话，否则创建无密码账号。
//
// POST /users/googleLogin
func (h *Handler) GoogleLogin(c *gin.Context) {
	var req googleLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	email := strings.TrimSpace(strings.ToLower(req.GoogleEmail))

	user, err := h.store.FindByEmail(c.Request.Context(), email)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "query user failed"})
			return
		}
		newUser := model.User{
			Name:  req.GoogleName,
			Email: email,
		}
		if err := h.store.Create(c.Request.Context(), &newUser); err != nil {
			if h.logger != nil {
				h.logger.Error("create google user failed", slog.String("email", email), slog.String("error", err.Error()))
			}
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid user data"})
			return
		}
		if metrics.UsersRegisteredTotal != nil {
			metrics.UsersRegisteredTotal.Inc()
		}
		user = &newUser
	}

	if metrics.LoginsTotal != nil {
		metrics.LoginsTotal.Inc()
	}
	if h.logger != nil {
		h.logger.Info("google login", slog.String("email", email))
	}
	h.issueSession(c, user)
}

// Logout 清除会话 Cookie 并吊销当前令牌。
//
// 无论请求是否携带有效会话都返回成功；吊销是尽力而为的，
// Redis 不可用时退化为纯客户端登出。
//
// POST /users/logout
func (h *Handler) Logout(c *gin.Context) {
	if tokenStr, err := c.Cookie("jwt"); err == nil && tokenStr != "" {
		claims := &jwt.RegisteredClaims{}
		token, parseErr := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
			return h.jwtSecret, nil
		})
		if parseErr == nil && token.Valid && claims.ID != "" && claims.ExpiresAt != nil {
			ttl := time.Until(claims.ExpiresAt.Time)
			if err := h.revoked.Revoke(c.Request.Context(), claims.ID, ttl); err != nil && h.logger != nil {
				h.logger.Warn("revoke token failed", slog.String("error", err.Error()))
			}
		}
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie("jwt", "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"message": "User logged out"})
}

func (h *Handler) rejectLogin(c *gin.Context, email string) {
	if metrics.LoginFailuresTotal != nil {
		metrics.LoginFailuresTotal.Inc()
	}
	if h.logger != nil {
		h.logger.Warn("login rejected", slog.String("email", email))
	}
	c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid email or password"})
}

// issueSession 签发 JWT 会话 Cookie 并返回公开的用户信息。
func (h *Handler) issueSession(c *gin.Context, user *model.User) {
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatUint(uint64(user.ID), 10),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(h.tokenTTL)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ID:        uuid.NewString(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(h.jwtSecret)
	if err != nil {
		if h.logger != nil {
			h.logger.Error("sign token failed", slog.String("email", user.Email), slog.String("error", err.Error()))
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": "sign token failed"})
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie("jwt", signed, int(h.tokenTTL.Seconds()), "/", "", false, true)
	c.JSON(http.StatusCreated, profileResponse{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
	})
}
