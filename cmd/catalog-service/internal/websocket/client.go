package websocket

import (
	"sync"
	"time"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/gorilla/websocket"
)

const (
	// writeWait 写入超时
	writeWait = 10 * time.Second

	// pongWait Pong超时
	pongWait = 60 * time.Second

	// pingPeriod Ping周期（必须小于pongWait）
	pingPeriod = (pongWait * 9) / 10

	// maxMessageSize 最大消息大小
	maxMessageSize = 4 * 1024
)

// Client WebSocket 客户端连接
// 连接在升级时已通过身份校验，UserID 为已验证的用户身份
type Client struct {
	ID     string
	UserID string
	Conn   *websocket.Conn
	Send   chan []byte
	Hub    *Hub

	// 已订阅的房间，由 Hub 的锁保护
	rooms map[string]bool

	log *log.Helper
	mu  sync.Mutex
}

// NewClient 创建客户端
func NewClient(id, userID string, conn *websocket.Conn, hub *Hub, logger log.Logger) *Client {
	return &Client{
		ID:     id,
		UserID: userID,
		Conn:   conn,
		Send:   make(chan []byte, 256),
		Hub:    hub,
		rooms:  make(map[string]bool),
		log:    log.NewHelper(log.With(logger, "module", "ws-client", "client_id", id)),
	}
}

// ReadPump 从 WebSocket 读取消息
func (c *Client) ReadPump() {
	defer func() {
		c.Hub.Unregister <- c
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure) {
				c.log.Errorf("websocket error: %v", err)
			}
			break
		}

		c.Hub.HandleMessage(c, message)
	}
}

// WritePump 向 WebSocket 写入消息
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Hub 关闭了通道
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.Conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			// 批量写入队列中的其他消息
			n := len(c.Send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
				w.Write(<-c.Send)
			}

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// SendMessage 发送消息给客户端
func (c *Client) SendMessage(message []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	select {
	case c.Send <- message:
		return nil
	default:
		return ErrSendBufferFull
	}
}
