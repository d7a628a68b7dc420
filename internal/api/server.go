package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"todoapp/internal/api/auth"
	"todoapp/internal/api/middleware"
	"todoapp/internal/config"
	"todoapp/internal/model"
	"todoapp/internal/pkg/metrics"
	"todoapp/internal/pkg/password"
	"todoapp/internal/pkg/token"
	"todoapp/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Server 封装了 API 服务所需的依赖和路由处理。
//
// 它持有 MongoDB 连接、凭证存储、待办存储以及 Gin 路由引擎。
type Server struct {
	cfg       *config.Config
	logger    *slog.Logger
	client    *mongo.Client
	router    *gin.Engine
	auth      *auth.Handler
	resolver  middleware.TokenResolver
	todoStore TodoStore
}

// TodoStore 是待办事项 handler 依赖的存储操作。
type TodoStore interface {
	Create(ctx context.Context, todo *model.Todo) error
	ListByCreator(ctx context.Context, creatorID primitive.ObjectID) ([]model.Todo, error)
	GetByID(ctx context.Context, id, creatorID primitive.ObjectID) (model.Todo, error)
	Update(ctx context.Context, id, creatorID primitive.ObjectID, upd model.TodoUpdate) (model.Todo, error)
	DeleteByID(ctx context.Context, id, creatorID primitive.ObjectID) (model.Todo, error)
	DeleteAll(ctx context.Context) (int64, error)
}

// NewServer 初始化 API 服务器。
//
// 它负责：
// 1. 连接 MongoDB 并创建唯一索引
// 2. 构建密码哈希器与令牌编解码器（密钥来自配置，启动后只读）
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
	client, err := store.Connect(ctx, cfg.Mongo.URI)
	if err != nil {
		return nil, err
	}
	db := client.Database(cfg.Mongo.Database)
	if err := store.EnsureIndexes(ctx, db); err != nil {
		return nil, err
	}

	hasher := password.NewHasher(cfg.App.BcryptCost)
	codec := token.NewCodec(cfg.Security.JWTSecret)
	users := store.NewUserStore(db, hasher, codec)
	todos := store.NewTodoStore(db)

	metrics.InitMetrics()

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(logger))

	s := &Server{
		cfg:       cfg,
		logger:    logger,
		client:    client,
		router:    r,
		auth:      auth.NewHandler(users, logger),
		resolver:  users,
		todoStore: todos,
	}
	s.registerRoutes()
	return s, nil
}

// Router 返回 HTTP 路由处理器。
func (s *Server) Router() http.Handler {
	return s.router
}

// Close 关闭数据库连接。
func (s *Server) Close(ctx context.Context) error {
	if s.client == nil {
		return nil
	}
	return s.client.Disconnect(ctx)
}

// registerRoutes 注册所有的 API 路由。
func (s *Server) registerRoutes() {
	// Prometheus metrics 端点
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	s.router.GET("/healthz", s.handleHealthz)

	s.router.POST("/users", s.auth.Register)
	s.router.POST("/users/login", s.auth.Login)

	authed := s.router.Group("/")
	authed.Use(middleware.Authenticate(s.resolver))
	authed.GET("/users/me", s.auth.Me)
	authed.DELETE("/users/me/token", s.auth.Logout)
	authed.POST("/todos", s.handleCreateTodo)
	authed.GET("/todos", s.handleListTodos)
	authed.GET("/todos/:id", s.handleGetTodo)
	authed.PATCH("/todos/:id", s.handleUpdateTodo)
	authed.DELETE("/todos/:id", s.handleDeleteTodo)
	// 管理用的全量清空，不做归属过滤；与其余按归属过滤的端点不一致，保留既有契约
	authed.DELETE("/todos", s.handleClearTodos)
}

func (s *Server) handleHealthz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if s.client == nil || s.client.Ping(ctx, nil) != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// createTodoRequest 创建待办事项的请求参数。
//
// 不接受 creatorId：所属用户一律取认证身份。
type createTodoRequest struct {
	Text string `json:"text" binding:"required"`
}

// updateTodoRequest 更新待办事项的请求参数（显式白名单，忽略其余字段）。
type updateTodoRequest struct {
	Text      *string `json:"text"`
	Completed *bool   `json:"completed"`
}

// handleCreateTodo 创建待办事项，所属用户由认证身份盖章。
//
// POST /todos
func (s *Server) handleCreateTodo(c *gin.Context) {
	user, ok := middleware.UserFromContext(c)
	if !ok {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	var req createTodoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	text := strings.TrimSpace(req.Text)
	if text == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid text"})
		return
	}

	todo := model.Todo{
		Text:      text,
		CreatorID: user.ID,
	}
	if err := s.todoStore.Create(c.Request.Context(), &todo); err != nil {
		s.logger.Error("create todo failed", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create todo failed"})
		return
	}

	c.JSON(http.StatusOK, todo)
}

// handleListTodos 返回认证用户自己的全部待办事项。
//
// GET /todos
func (s *Server) handleListTodos(c *gin.Context) {
	user, ok := middleware.UserFromContext(c)
	if !ok {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	todos, err := s.todoStore.ListByCreator(c.Request.Context(), user.ID)
	if err != nil {
		s.logger.Error("list todos failed", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list todos failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"todos": todos})
}

// handleGetTodo 返回认证用户名下的一条待办事项。
//
// GET /todos/:id
func (s *Server) handleGetTodo(c *gin.Context) {
	user, ok := middleware.UserFromContext(c)
	if !ok {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		// 非法 id 永远不可能存在，对客户端与不存在等价
		c.AbortWithStatus(http.StatusNotFound)
		return
	}

	todo, err := s.todoStore.GetByID(c.Request.Context(), id, user.ID)
	if err != nil {
		s.respondTodoError(c, err, "get todo failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"todo": todo})
}

// handleUpdateTodo 更新认证用户名下的一条待办事项。
//
// PATCH /todos/:id
func (s *Server) handleUpdateTodo(c *gin.Context) {
	user, ok := middleware.UserFromContext(c)
	if !ok {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.AbortWithStatus(http.StatusNotFound)
		return
	}

	var req updateTodoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	upd := model.TodoUpdate{Completed: req.Completed}
	if req.Text != nil {
		text := strings.TrimSpace(*req.Text)
		if text == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid text"})
			return
		}
		upd.Text = &text
	}
	if upd.Text == nil && upd.Completed == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no updates"})
		return
	}

	todo, err := s.todoStore.Update(c.Request.Context(), id, user.ID, upd)
	if err != nil {
		s.respondTodoError(c, err, "update todo failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"todo": todo})
}

// handleDeleteTodo 删除认证用户名下的一条待办事项，返回被删除的文档。
//
// DELETE /todos/:id
func (s *Server) handleDeleteTodo(c *gin.Context) {
	user, ok := middleware.UserFromContext(c)
	if !ok {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.AbortWithStatus(http.StatusNotFound)
		return
	}

	todo, err := s.todoStore.DeleteByID(c.Request.Context(), id, user.ID)
	if err != nil {
		s.respondTodoError(c, err, "delete todo failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"todo": todo})
}

// handleClearTodos 清空整个待办集合。
//
// DELETE /todos
func (s *Server) handleClearTodos(c *gin.Context) {
	count, err := s.todoStore.DeleteAll(c.Request.Context())
	if err != nil {
		s.logger.Error("clear todos failed", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "clear todos failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deletedCount": count})
}

// respondTodoError 将存储层错误映射为 HTTP 状态码。
//
// 记录不存在与归属他人统一映射为 404，绝不返回 403，避免泄露资源是否存在。
func (s *Server) respondTodoError(c *gin.Context, err error, logMsg string) {
	if errors.Is(err, store.ErrNotFound) {
		c.AbortWithStatus(http.StatusNotFound)
		return
	}
	s.logger.Error(logMsg, slog.String("error", err.Error()))
	c.JSON(http.StatusInternalServerError, gin.H{"error": logMsg})
}
