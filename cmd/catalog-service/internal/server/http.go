package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"fieldcatalog/cmd/catalog-service/internal/domain"
	"fieldcatalog/cmd/catalog-service/internal/middleware"
	"fieldcatalog/cmd/catalog-service/internal/service"
	"fieldcatalog/cmd/catalog-service/internal/websocket"
	"fieldcatalog/pkg/auth"
	"fieldcatalog/pkg/health"
)

// HTTPServer HTTP 服务器
type HTTPServer struct {
	engine  *gin.Engine
	server  *http.Server
	service *service.CatalogService
	hub     *websocket.Hub
	jwt     *auth.JWTManager
	limiter *middleware.RateLimiter
	checker *health.ReadinessChecker
	logger  log.Logger
}

// NewHTTPServer 创建 HTTP 服务器
func NewHTTPServer(
	srv *service.CatalogService,
	hub *websocket.Hub,
	jwtManager *auth.JWTManager,
	limiter *middleware.RateLimiter,
	checker *health.ReadinessChecker,
	logger log.Logger,
) *HTTPServer {
	// 创建不带默认中间件的 gin engine
	engine := gin.New()

	s := &HTTPServer{
		engine:  engine,
		service: srv,
		hub:     hub,
		jwt:     jwtManager,
		limiter: limiter,
		checker: checker,
		logger:  logger,
	}

	s.registerMiddleware()
	s.registerRoutes()

	return s
}

// registerMiddleware 注册全局中间件
func (s *HTTPServer) registerMiddleware() {
	// 恢复中间件（必须最先）
	s.engine.Use(RecoveryMiddleware(s.logger))

	// CORS 中间件
	s.engine.Use(CORSMiddleware())

	// 日志中间件
	s.engine.Use(LoggingMiddleware(s.logger))

	// 指标中间件
	s.engine.Use(middleware.MetricsMiddleware())
}

// registerRoutes 注册路由
func (s *HTTPServer) registerRoutes() {
	// 健康检查与指标
	s.engine.GET("/health", s.healthCheck)
	s.engine.GET("/ready", s.readyCheck)
	s.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 实时连接在升级时自行完成身份校验
	s.engine.GET("/ws", s.serveWebSocket)

	api := s.engine.Group("/api/v1")
	api.Use(AuthMiddleware(s.jwt, s.logger))
	if s.limiter != nil {
		api.Use(s.limiter.Middleware())
	}

	// 名录接口
	catalogs := api.Group("/catalogs")
	{
		catalogs.POST("", s.createCatalog)
		catalogs.GET("", s.listCatalogs)
		catalogs.GET("/shared-with-me", s.listSharedWithMe)
		catalogs.GET("/:id", s.getCatalog)
		catalogs.PUT("/:id", s.updateCatalog)
		catalogs.DELETE("/:id", s.deleteCatalog)

		// 条目关联接口
		catalogs.GET("/:id/entries", s.listEntries)
		catalogs.POST("/:id/entries", s.linkEntry)
		catalogs.DELETE("/:id/entries/:entryId", s.unlinkEntry)

		// 协作者接口
		catalogs.GET("/:id/collaborators", s.listCollaborators)
		catalogs.POST("/:id/collaborators", s.inviteCollaborator)
		catalogs.PUT("/:id/collaborators/:shareId", s.updateCollaboratorRole)
		catalogs.DELETE("/:id/collaborators/:shareId", s.revokeCollaborator)
	}

	// 邀请接口（受邀者视角）
	invitations := api.Group("/invitations")
	{
		invitations.GET("", s.listPendingInvitations)
		invitations.POST("/:id/respond", s.respondToInvitation)
	}

	// 内部级联钩子：外部条目服务删除条目后回调
	internal := api.Group("/internal")
	{
		internal.POST("/entries/:entryId/deleted", s.onEntryDeleted)
	}
}

// healthCheck 聚合依赖健康状态
func (s *HTTPServer) healthCheck(c *gin.Context) {
	if s.checker == nil {
		c.JSON(http.StatusOK, gin.H{"status": health.StatusHealthy})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	results := s.checker.Check(ctx)
	status := health.Aggregate(results)

	httpStatus := http.StatusOK
	if status == health.StatusUnhealthy {
		httpStatus = http.StatusServiceUnavailable
	}
	c.JSON(httpStatus, gin.H{
		"status": status,
		"checks": results,
	})
}

// readyCheck 就绪探针
func (s *HTTPServer) readyCheck(c *gin.Context) {
	if s.checker == nil {
		c.JSON(http.StatusOK, gin.H{"ready": true})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if !s.checker.IsReady(ctx) {
		c.JSON(http.StatusServiceUnavailable, gin.H{"ready": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ready": true})
}

// Start 启动 HTTP 服务器
func (s *HTTPServer) Start(addr string) error {
	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown 优雅关闭
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// currentUserID 从认证上下文获取用户 ID
func currentUserID(c *gin.Context) string {
	if uid, exists := c.Get("user_id"); exists {
		if s, ok := uid.(string); ok {
			return s
		}
	}
	return ""
}

// createCatalog 创建名录
func (s *HTTPServer) createCatalog(c *gin.Context) {
	var req struct {
		Name        string `json:"name" binding:"required"`
		Description string `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Code: 400, Message: err.Error()})
		return
	}

	catalog, err := s.service.CreateCatalog(c.Request.Context(), currentUserID(c), req.Name, req.Description)
	if err != nil {
		Error(c, err)
		return
	}

	Created(c, catalog)
}

// listCatalogs 列出所有者的名录
func (s *HTTPServer) listCatalogs(c *gin.Context) {
	summaries, err := s.service.ListCatalogs(c.Request.Context(), currentUserID(c))
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, summaries)
}

// listSharedWithMe 列出共享给当前用户的名录
func (s *HTTPServer) listSharedWithMe(c *gin.Context) {
	summaries, err := s.service.ListSharedWithMe(c.Request.Context(), currentUserID(c))
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, summaries)
}

// getCatalog 获取名录
func (s *HTTPServer) getCatalog(c *gin.Context) {
	catalog, role, err := s.service.GetCatalog(c.Request.Context(), c.Param("id"), currentUserID(c))
	if err != nil {
		Error(c, err)
		return
	}

	Success(c, gin.H{
		"catalog": catalog,
		"role":    role,
	})
}

// updateCatalog 更新名录元数据
func (s *HTTPServer) updateCatalog(c *gin.Context) {
	var req domain.CatalogUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Code: 400, Message: err.Error()})
		return
	}

	catalog, err := s.service.UpdateCatalog(c.Request.Context(), c.Param("id"), currentUserID(c), &req)
	if err != nil {
		Error(c, err)
		return
	}

	Success(c, catalog)
}

// deleteCatalog 删除名录
func (s *HTTPServer) deleteCatalog(c *gin.Context) {
	deleted, err := s.service.DeleteCatalog(c.Request.Context(), c.Param("id"), currentUserID(c))
	if err != nil {
		Error(c, err)
		return
	}
	if !deleted {
		Error(c, domain.ErrCatalogNotFound)
		return
	}

	NoContent(c)
}

// listEntries 列出名录条目
func (s *HTTPServer) listEntries(c *gin.Context) {
	entries, err := s.service.ListEntries(c.Request.Context(), c.Param("id"), currentUserID(c))
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, entries)
}

// linkEntry 关联条目
func (s *HTTPServer) linkEntry(c *gin.Context) {
	var req struct {
		EntryID string `json:"entry_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Code: 400, Message: err.Error()})
		return
	}

	link, err := s.service.LinkEntry(c.Request.Context(), c.Param("id"), req.EntryID, currentUserID(c))
	if err != nil {
		Error(c, err)
		return
	}

	Created(c, link)
}

// unlinkEntry 解除条目关联
func (s *HTTPServer) unlinkEntry(c *gin.Context) {
	err := s.service.UnlinkEntry(c.Request.Context(), c.Param("id"), c.Param("entryId"), currentUserID(c))
	if err != nil {
		Error(c, err)
		return
	}
	NoContent(c)
}

// listCollaborators 列出协作者
func (s *HTTPServer) listCollaborators(c *gin.Context) {
	shares, err := s.service.ListCollaborators(c.Request.Context(), c.Param("id"), currentUserID(c))
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, shares)
}

// inviteCollaborator 邀请协作者
func (s *HTTPServer) inviteCollaborator(c *gin.Context) {
	var req struct {
		InviteeID string `json:"invitee_id" binding:"required"`
		Role      string `json:"role" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Code: 400, Message: err.Error()})
		return
	}

	share, err := s.service.InviteCollaborator(
		c.Request.Context(),
		c.Param("id"),
		currentUserID(c),
		req.InviteeID,
		domain.ShareRole(req.Role),
	)
	if err != nil {
		// 重复邀请附带现有记录，调用方据此决策
		if errors.Is(err, domain.ErrDuplicateInvitation) {
			c.JSON(http.StatusConflict, Response{Code: 409, Message: err.Error(), Data: share})
			return
		}
		Error(c, err)
		return
	}

	Created(c, share)
}

// updateCollaboratorRole 调整协作者角色
func (s *HTTPServer) updateCollaboratorRole(c *gin.Context) {
	var req struct {
		Role string `json:"role" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Code: 400, Message: err.Error()})
		return
	}

	share, err := s.service.UpdateCollaboratorRole(
		c.Request.Context(),
		c.Param("id"),
		c.Param("shareId"),
		currentUserID(c),
		domain.ShareRole(req.Role),
	)
	if err != nil {
		Error(c, err)
		return
	}

	Success(c, share)
}

// revokeCollaborator 撤销共享
func (s *HTTPServer) revokeCollaborator(c *gin.Context) {
	share, err := s.service.RevokeCollaborator(
		c.Request.Context(),
		c.Param("id"),
		c.Param("shareId"),
		currentUserID(c),
	)
	if err != nil {
		Error(c, err)
		return
	}

	Success(c, share)
}

// listPendingInvitations 列出待处理邀请
func (s *HTTPServer) listPendingInvitations(c *gin.Context) {
	views, err := s.service.ListPendingInvitations(c.Request.Context(), currentUserID(c))
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, views)
}

// respondToInvitation 响应邀请
func (s *HTTPServer) respondToInvitation(c *gin.Context) {
	var req struct {
		Action string `json:"action" binding:"required,oneof=accept decline"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Code: 400, Message: err.Error()})
		return
	}

	share, err := s.service.RespondToInvitation(
		c.Request.Context(),
		c.Param("id"),
		currentUserID(c),
		req.Action == "accept",
	)
	if err != nil {
		Error(c, err)
		return
	}

	Success(c, share)
}

// onEntryDeleted 外部条目删除级联钩子
func (s *HTTPServer) onEntryDeleted(c *gin.Context) {
	if err := s.service.OnEntryDeleted(c.Request.Context(), c.Param("entryId"), currentUserID(c)); err != nil {
		Error(c, err)
		return
	}
	NoContent(c)
}
