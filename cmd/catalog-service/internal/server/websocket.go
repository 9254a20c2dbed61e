package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/uuid"
	gorilla "github.com/gorilla/websocket"

	"fieldcatalog/cmd/catalog-service/internal/middleware"
	ws "fieldcatalog/cmd/catalog-service/internal/websocket"
	"fieldcatalog/pkg/config"
)

var (
	// allowedOrigins Origin 白名单
	allowedOrigins = map[string]bool{
		"http://localhost:3000": true, // 本地开发
		"http://localhost:8080": true,
	}

	upgrader = gorilla.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")

			// 如果没有 Origin 头，允许（可能是非浏览器客户端）
			if origin == "" {
				return true
			}

			// 开发模式：检查环境变量
			if config.GetEnvAsBoolOrDefault("ALLOW_ALL_ORIGINS", false) {
				return true
			}

			return allowedOrigins[origin]
		},
	}
)

// LoadOriginsFromConfig 从配置加载 Origin 白名单
func LoadOriginsFromConfig(origins []string) {
	for _, origin := range origins {
		allowedOrigins[origin] = true
	}
}

// serveWebSocket 升级 WebSocket 连接
// 升级前先完成身份校验：token 来自查询参数或 Authorization 头
func (s *HTTPServer) serveWebSocket(c *gin.Context) {
	helper := log.NewHelper(log.With(s.logger, "module", "ws-upgrade"))

	token := c.Query("token")
	if token == "" {
		token, _ = strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
	}
	if token == "" {
		c.JSON(http.StatusUnauthorized, Response{Code: 401, Message: "missing token"})
		return
	}

	claims, err := s.jwt.ValidateToken(token)
	if err != nil {
		helper.Warnf("websocket token rejected: %v", err)
		c.JSON(http.StatusUnauthorized, Response{Code: 401, Message: "invalid or expired token"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade 已写入响应
		helper.Errorf("websocket upgrade failed: %v", err)
		return
	}

	client := ws.NewClient(uuid.New().String(), claims.UserID, conn, s.hub, s.logger)
	s.hub.Register <- client

	middleware.IncWebSocketConnections()
	go func() {
		defer middleware.DecWebSocketConnections()
		client.ReadPump()
	}()
	go client.WritePump()
}
