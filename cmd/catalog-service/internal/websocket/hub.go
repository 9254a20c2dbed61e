package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/uuid"

	"fieldcatalog/cmd/catalog-service/internal/domain"
	"fieldcatalog/cmd/catalog-service/internal/middleware"
)

// AccessChecker 订阅时的访问校验
// 每次 join 都重新校验，不复用 HTTP 链路上的授权结论
type AccessChecker interface {
	CheckAccess(ctx context.Context, catalogID, userID string) error
}

// Hub WebSocket 连接管理中心
// 按名录维护订阅房间（catalog:{id}），向房间成员广播变更事件
type Hub struct {
	// 已注册的客户端
	clients map[*Client]bool

	// 房间成员：room key -> clients
	rooms map[string]map[*Client]bool

	// 客户端注册
	Register chan *Client

	// 客户端注销
	Unregister chan *Client

	checker AccessChecker
	log     *log.Helper

	// 互斥锁，保护 clients/rooms；
	// 成员变更与广播互斥，广播要么到达成员要么不到达，没有中间状态
	mu sync.RWMutex

	checkTimeout time.Duration
}

var (
	hubMu      sync.Mutex
	currentHub *Hub
)

// NewHub 创建 Hub
// 进程内只初始化一次：重复构造返回已有实例，而不是替换它
func NewHub(checker AccessChecker, logger log.Logger) *Hub {
	hubMu.Lock()
	defer hubMu.Unlock()

	if currentHub != nil {
		return currentHub
	}

	currentHub = newHub(checker, logger)
	return currentHub
}

func newHub(checker AccessChecker, logger log.Logger) *Hub {
	return &Hub{
		clients:      make(map[*Client]bool),
		rooms:        make(map[string]map[*Client]bool),
		Register:     make(chan *Client),
		Unregister:   make(chan *Client),
		checker:      checker,
		log:          log.NewHelper(log.With(logger, "module", "ws-hub")),
		checkTimeout: 5 * time.Second,
	}
}

// roomKey 名录房间键
func roomKey(catalogID string) string {
	return "catalog:" + catalogID
}

// Run 运行 Hub
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.log.Info("hub shutting down")
			return

		case client := <-h.Register:
			h.registerClient(client)

		case client := <-h.Unregister:
			h.unregisterClient(client)
		}
	}
}

// registerClient 注册客户端
func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[client] = true
	h.log.Infof("client registered: client_id=%s user_id=%s", client.ID, client.UserID)
}

// unregisterClient 注销客户端并清理其全部房间成员关系
func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client]; !ok {
		return
	}

	delete(h.clients, client)
	for room := range client.rooms {
		h.removeFromRoom(room, client)
	}
	close(client.Send)

	h.log.Infof("client unregistered: client_id=%s user_id=%s", client.ID, client.UserID)
}

// HandleMessage 处理客户端消息
// 任何失败都通过确认消息下发，绝不因此断开连接
func (h *Hub) HandleMessage(client *Client, raw []byte) {
	var msg Message
	if err := json.Unmarshal(raw, &msg); err != nil {
		h.log.Warnf("invalid message from client %s: %v", client.ID, err)
		return
	}

	switch msg.Type {
	case MessageTypeJoin:
		h.handleJoin(client, msg.CatalogID)
	case MessageTypeLeave:
		h.handleLeave(client, msg.CatalogID)
	case MessageTypePing:
		h.sendPong(client)
	default:
		h.log.Warnf("unknown message type: %s", msg.Type)
	}
}

// handleJoin 订阅名录房间
// 先做格式校验，再查询访问权限；拒绝通过 ack 下发
func (h *Hub) handleJoin(client *Client, catalogID string) {
	if uuid.Validate(catalogID) != nil {
		h.sendAck(client, MessageTypeJoin, catalogID, false, ackErrInvalidCatalogID)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.checkTimeout)
	defer cancel()

	if err := h.checker.CheckAccess(ctx, catalogID, client.UserID); err != nil {
		switch {
		case errors.Is(err, domain.ErrCatalogNotFound):
			h.sendAck(client, MessageTypeJoin, catalogID, false, ackErrCatalogNotFound)
		case errors.Is(err, domain.ErrForbidden):
			h.sendAck(client, MessageTypeJoin, catalogID, false, ackErrAccessDenied)
		default:
			// 意外的存储错误：记录日志，下发通用失败
			h.log.Errorf("access check failed: catalog=%s user=%s err=%v", catalogID, client.UserID, err)
			h.sendAck(client, MessageTypeJoin, catalogID, false, ackErrInternal)
		}
		return
	}

	room := roomKey(catalogID)
	h.mu.Lock()
	if h.rooms[room] == nil {
		h.rooms[room] = make(map[*Client]bool)
	}
	h.rooms[room][client] = true
	client.rooms[room] = true
	h.mu.Unlock()

	h.log.Infof("client joined room: client_id=%s user_id=%s room=%s", client.ID, client.UserID, room)
	h.sendAck(client, MessageTypeJoin, catalogID, true, "")
}

// handleLeave 退出名录房间
// 尽力而为的清理操作：未订阅或 ID 畸形都静默忽略
func (h *Hub) handleLeave(client *Client, catalogID string) {
	if uuid.Validate(catalogID) != nil {
		return
	}

	room := roomKey(catalogID)
	h.mu.Lock()
	h.removeFromRoom(room, client)
	delete(client.rooms, room)
	h.mu.Unlock()
}

// removeFromRoom 从房间移除客户端，调用方需持有锁
func (h *Hub) removeFromRoom(room string, client *Client) {
	if members, ok := h.rooms[room]; ok {
		delete(members, client)
		if len(members) == 0 {
			delete(h.rooms, room)
		}
	}
}

// EntriesUpdated 广播重新计算的完整条目列表
// 全量列表保证错过中间事件的客户端仍然收敛
func (h *Hub) EntriesUpdated(catalogID string, entries []*domain.CatalogEntryDetail, triggeredBy string) {
	h.broadcastToRoom(catalogID, &Event{
		Type:        EventEntriesUpdated,
		CatalogID:   catalogID,
		Payload:     entries,
		TriggeredBy: triggeredBy,
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
	})
}

// MetadataUpdated 广播名录元数据变更
func (h *Hub) MetadataUpdated(catalog *domain.Catalog, triggeredBy string) {
	h.broadcastToRoom(catalog.ID, &Event{
		Type:        EventMetadataUpdated,
		CatalogID:   catalog.ID,
		Payload:     catalog,
		TriggeredBy: triggeredBy,
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
	})
}

// CatalogDeleted 广播名录删除，接收方应丢弃该名录的本地状态
func (h *Hub) CatalogDeleted(catalogID string, triggeredBy string) {
	h.broadcastToRoom(catalogID, &Event{
		Type:        EventCatalogDeleted,
		CatalogID:   catalogID,
		TriggeredBy: triggeredBy,
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
	})
}

// broadcastToRoom 向房间全部成员下发事件
func (h *Hub) broadcastToRoom(catalogID string, event *Event) {
	data, err := json.Marshal(event)
	if err != nil {
		h.log.Errorf("failed to marshal event: %v", err)
		return
	}

	middleware.RecordBroadcast(event.Type)

	room := roomKey(catalogID)
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.rooms[room] {
		if err := client.SendMessage(data); err != nil {
			// 慢消费者：丢弃本次事件，全量广播下一次仍会收敛
			h.log.Warnf("failed to send to client %s: %v", client.ID, err)
		}
	}
}

// sendAck 下发操作确认
func (h *Hub) sendAck(client *Client, op, catalogID string, ok bool, errMsg string) {
	ack := &Ack{
		Type:      MessageTypeAck,
		Op:        op,
		CatalogID: catalogID,
		OK:        ok,
		Error:     errMsg,
	}
	data, _ := json.Marshal(ack)
	if err := client.SendMessage(data); err != nil {
		h.log.Warnf("failed to send ack to client %s: %v", client.ID, err)
	}
}

// sendPong 心跳应答
func (h *Hub) sendPong(client *Client) {
	data, _ := json.Marshal(map[string]interface{}{
		"type":      MessageTypePong,
		"timestamp": time.Now().Unix(),
	})
	_ = client.SendMessage(data)
}

// RoomSize 房间成员数量
func (h *Hub) RoomSize(catalogID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[roomKey(catalogID)])
}

// ClientCount 在线客户端数量
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
