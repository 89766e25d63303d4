package api

import (
	"context"
	"log/slog"
	"net/http"
	"path/filepath"
	"time"

	"github.com/sarathsathish07/Task-Manager-App/internal/api/auth"
	"github.com/sarathsathish07/Task-Manager-App/internal/api/middleware"
	"github.com/sarathsathish07/Task-Manager-App/internal/config"
	"github.com/sarathsathish07/Task-Manager-App/internal/model"
	"github.com/sarathsathish07/Task-Manager-App/internal/pkg/metrics"
	"github.com/sarathsathish07/Task-Manager-App/internal/pkg/revoke"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

// Server 封装了 API 服务所需的依赖和路由处理。
//
// 它持有数据库连接、Redis 客户端（令牌吊销列表）以及 Gin 路由引擎。
type Server struct {
	cfg       *config.Config
	logger    *slog.Logger
	db        *gorm.DB
	rdb       *redis.Client
	router    *gin.Engine
	auth      *auth.Handler
	taskStore TaskStore
}

// TaskStore 抽象任务存取，便于 Handler 单测。
// 所有读写都以 userID 为作用域：别人的任务等同于不存在。
type TaskStore interface {
	CreateTask(ctx context.Context, task *model.Task) error
	ListTasks(ctx context.Context, userID uint, search, sort string) ([]model.Task, error)
	GetTask(ctx context.Context, id, userID uint) (*model.Task, error)
	SaveTask(ctx context.Context, task *model.Task) error
	DeleteTask(ctx context.Context, id, userID uint) (int64, error)
}

type dbTaskStore struct {
	db *gorm.DB
}

func (s dbTaskStore) CreateTask(ctx context.Context, task *model.Task) error {
	return s.db.WithContext(ctx).Create(task).Error
}

func (s dbTaskStore) ListTasks(ctx context.Context, userID uint, search, sort string) ([]model.Task, error) {
	tasks := []model.Task{} // Initialize as empty slice to ensure JSON is [] not null
	query := s.db.WithContext(ctx).Where("user_id = ?", userID)
	if search != "" {
		query = query.Where("LOWER(title) LIKE ?", "%"+escapeLike(search)+"%")
	}
	switch sort {
	case "title":
		query = query.Order("title ASC")
	default: // "recent"
		query = query.Order("created_at DESC")
	}
	if err := query.Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

func (s dbTaskStore) GetTask(ctx context.Context, id, userID uint) (*model.Task, error) {
	var task model.Task
	if err := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&task).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

func (s dbTaskStore) SaveTask(ctx context.Context, task *model.Task) error {
	return s.db.WithContext(ctx).Save(task).Error
}

func (s dbTaskStore) DeleteTask(ctx context.Context, id, userID uint) (int64, error) {
	res := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&model.Task{})
	return res.RowsAffected, res.Error
}

// NewServer 初始化 API 服务器。
//
// 它负责：
// 1. 连接 MySQL 数据库并执行自动迁移
// 2. 连接 Redis（令牌吊销列表）
// 3. 初始化 Gin 路由引擎
//
// 参数:
//
//	ctx: 上下文
//	cfg: 配置对象
//	logger: 日志记录器
//
// 返回值:
//
//	*Server: 初始化完成的服务器实例
//	error: 初始化失败返回错误
func NewServer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Server, error) {
	db, err := gorm.Open(mysql.Open(cfg.MySQL.DSN), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&model.User{}, &model.Task{}); err != nil {
		return nil, err
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       0,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	revoked := revoke.NewList(rdb)
	metrics.InitMetrics()

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(logger))

	s := &Server{
		cfg:       cfg,
		logger:    logger,
		db:        db,
		rdb:       rdb,
		router:    r,
		auth:      auth.NewHandler(auth.NewDBStore(db), cfg.Security.JWTSecret, cfg.App.TokenTTL, revoked, logger),
		taskStore: dbTaskStore{db: db},
	}
	s.registerRoutes(revoked)
	return s, nil
}

// Router 返回 HTTP 路由处理器。
func (s *Server) Router() http.Handler {
	return s.router
}

// Close 关闭数据库与缓存连接。
func (s *Server) Close() error {
	var firstErr error
	if s.rdb != nil {
		if err := s.rdb.Close(); err != nil {
			firstErr = err
		}
	}
	if s.db != nil {
		sqlDB, err := s.db.DB()
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
		} else {
			if closeErr := sqlDB.Close(); closeErr != nil {
				if firstErr == nil {
					firstErr = closeErr
				}
			}
		}
	}
	return firstErr
}

// registerRoutes 注册所有的 API 路由。
func (s *Server) registerRoutes(revoked *revoke.List) {
	if s.cfg.App.WebDir != "" {
		s.router.StaticFile("/", filepath.Join(s.cfg.App.WebDir, "index.html"))
		s.router.Static("/assets", filepath.Join(s.cfg.App.WebDir, "assets"))
	}

	// Prometheus metrics 端点
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	s.router.GET("/healthz", s.handleHealthz)

	users := s.router.Group("/users")
	users.POST("", s.auth.Register)
	users.POST("/auth", s.auth.Login)
	users.POST("/googleLogin", s.auth.GoogleLogin)
	users.POST("/logout", s.auth.Logout)

	authed := users.Group("/")
	authed.Use(middleware.AuthMiddleware(s.cfg.Security.JWTSecret, revoked))
	authed.POST("/create-task", s.handleCreateTask)
	authed.GET("/get-tasks", s.handleGetTasks)
	authed.PUT("/update-task/:id", s.handleUpdateTask)
	authed.DELETE("/delete-task/:id", s.handleDeleteTask)
}

func (s *Server) handleHealthz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if s.db == nil || s.rdb == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "error"})
		return
	}

	var one int
	if err := s.db.WithContext(ctx).Raw("SELECT 1").Scan(&one).Error; err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "error"})
		return
	}
	if err := s.rdb.Ping(ctx).Err(); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
