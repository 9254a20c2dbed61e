package websocket

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"fieldcatalog/cmd/catalog-service/internal/domain"
)

// MockAccessChecker 模拟访问校验
type MockAccessChecker struct {
	CheckAccessFunc func(ctx context.Context, catalogID, userID string) error
}

func (m *MockAccessChecker) CheckAccess(ctx context.Context, catalogID, userID string) error {
	if m.CheckAccessFunc != nil {
		return m.CheckAccessFunc(ctx, catalogID, userID)
	}
	return nil
}

// newTestClient 不带底层连接的客户端，消息从 Send 通道读取
func newTestClient(hub *Hub, userID string) *Client {
	return NewClient(uuid.New().String(), userID, nil, hub, log.DefaultLogger)
}

// recvAck 从客户端通道读取一条确认消息
func recvAck(t *testing.T, c *Client) *Ack {
	t.Helper()
	select {
	case raw := <-c.Send:
		var ack Ack
		if err := json.Unmarshal(raw, &ack); err != nil {
			t.Fatalf("unmarshal ack: %v", err)
		}
		return &ack
	default:
		t.Fatal("no message in send buffer")
		return nil
	}
}

func TestHandleJoin_Success(t *testing.T) {
	hub := newHub(&MockAccessChecker{}, log.DefaultLogger)
	client := newTestClient(hub, "user-1")
	hub.registerClient(client)

	catalogID := uuid.New().String()
	raw, _ := json.Marshal(&Message{Type: MessageTypeJoin, CatalogID: catalogID})
	hub.HandleMessage(client, raw)

	ack := recvAck(t, client)
	assert.Equal(t, MessageTypeAck, ack.Type)
	assert.Equal(t, MessageTypeJoin, ack.Op)
	assert.True(t, ack.OK)
	assert.Empty(t, ack.Error)
	assert.Equal(t, 1, hub.RoomSize(catalogID))
}

func TestHandleJoin_InvalidCatalogID(t *testing.T) {
	hub := newHub(&MockAccessChecker{}, log.DefaultLogger)
	client := newTestClient(hub, "user-1")
	hub.registerClient(client)

	raw, _ := json.Marshal(&Message{Type: MessageTypeJoin, CatalogID: "not-a-uuid"})
	hub.HandleMessage(client, raw)

	ack := recvAck(t, client)
	assert.False(t, ack.OK)
	assert.Equal(t, "Invalid catalog id", ack.Error)
}

func TestHandleJoin_CatalogNotFound(t *testing.T) {
	checker := &MockAccessChecker{
		CheckAccessFunc: func(_ context.Context, _, _ string) error {
			return domain.ErrCatalogNotFound
		},
	}
	hub := newHub(checker, log.DefaultLogger)
	client := newTestClient(hub, "user-1")
	hub.registerClient(client)

	catalogID := uuid.New().String()
	raw, _ := json.Marshal(&Message{Type: MessageTypeJoin, CatalogID: catalogID})
	hub.HandleMessage(client, raw)

	ack := recvAck(t, client)
	assert.False(t, ack.OK)
	assert.Equal(t, "Catalog not found", ack.Error)
	assert.Zero(t, hub.RoomSize(catalogID))
}

func TestHandleJoin_AccessDenied(t *testing.T) {
	checker := &MockAccessChecker{
		CheckAccessFunc: func(_ context.Context, _, _ string) error {
			return domain.ErrForbidden
		},
	}
	hub := newHub(checker, log.DefaultLogger)
	client := newTestClient(hub, "user-1")
	hub.registerClient(client)

	catalogID := uuid.New().String()
	raw, _ := json.Marshal(&Message{Type: MessageTypeJoin, CatalogID: catalogID})
	hub.HandleMessage(client, raw)

	ack := recvAck(t, client)
	assert.False(t, ack.OK)
	assert.Equal(t, "Access denied", ack.Error)

	// 拒绝只通过 ack 下发，连接保持注册状态
	assert.Equal(t, 1, hub.ClientCount())
}

func TestHandleLeave_Silent(t *testing.T) {
	hub := newHub(&MockAccessChecker{}, log.DefaultLogger)
	client := newTestClient(hub, "user-1")
	hub.registerClient(client)

	catalogID := uuid.New().String()
	raw, _ := json.Marshal(&Message{Type: MessageTypeJoin, CatalogID: catalogID})
	hub.HandleMessage(client, raw)
	_ = recvAck(t, client)

	// 退出不下发任何响应
	raw, _ = json.Marshal(&Message{Type: MessageTypeLeave, CatalogID: catalogID})
	hub.HandleMessage(client, raw)

	assert.Zero(t, hub.RoomSize(catalogID))
	assert.Empty(t, client.Send)

	// 未订阅的房间与畸形 ID 同样静默
	hub.HandleMessage(client, raw)
	raw, _ = json.Marshal(&Message{Type: MessageTypeLeave, CatalogID: "###"})
	hub.HandleMessage(client, raw)
	assert.Empty(t, client.Send)
}

func TestBroadcast_OnlyRoomMembers(t *testing.T) {
	hub := newHub(&MockAccessChecker{}, log.DefaultLogger)
	member := newTestClient(hub, "user-1")
	outsider := newTestClient(hub, "user-2")
	hub.registerClient(member)
	hub.registerClient(outsider)

	catalogID := uuid.New().String()
	raw, _ := json.Marshal(&Message{Type: MessageTypeJoin, CatalogID: catalogID})
	hub.HandleMessage(member, raw)
	_ = recvAck(t, member)

	hub.EntriesUpdated(catalogID, []*domain.CatalogEntryDetail{{EntryID: "entry-1"}}, "user-1")

	var event Event
	select {
	case data := <-member.Send:
		assert.NoError(t, json.Unmarshal(data, &event))
	default:
		t.Fatal("member did not receive event")
	}
	assert.Equal(t, EventEntriesUpdated, event.Type)
	assert.Equal(t, catalogID, event.CatalogID)
	assert.Equal(t, "user-1", event.TriggeredBy)
	assert.NotEmpty(t, event.Timestamp)

	assert.Empty(t, outsider.Send)
}

func TestBroadcast_CatalogDeleted(t *testing.T) {
	hub := newHub(&MockAccessChecker{}, log.DefaultLogger)
	client := newTestClient(hub, "user-1")
	hub.registerClient(client)

	catalogID := uuid.New().String()
	raw, _ := json.Marshal(&Message{Type: MessageTypeJoin, CatalogID: catalogID})
	hub.HandleMessage(client, raw)
	_ = recvAck(t, client)

	hub.CatalogDeleted(catalogID, "user-1")

	var event Event
	data := <-client.Send
	assert.NoError(t, json.Unmarshal(data, &event))
	assert.Equal(t, EventCatalogDeleted, event.Type)
	assert.Nil(t, event.Payload)
}

func TestUnregister_CleansRooms(t *testing.T) {
	hub := newHub(&MockAccessChecker{}, log.DefaultLogger)
	client := newTestClient(hub, "user-1")
	hub.registerClient(client)

	catalogID := uuid.New().String()
	raw, _ := json.Marshal(&Message{Type: MessageTypeJoin, CatalogID: catalogID})
	hub.HandleMessage(client, raw)
	_ = recvAck(t, client)
	assert.Equal(t, 1, hub.RoomSize(catalogID))

	hub.unregisterClient(client)

	assert.Zero(t, hub.ClientCount())
	assert.Zero(t, hub.RoomSize(catalogID))

	// 重复注销是空操作
	hub.unregisterClient(client)
}

func TestHandleMessage_UnknownTypeIgnored(t *testing.T) {
	hub := newHub(&MockAccessChecker{}, log.DefaultLogger)
	client := newTestClient(hub, "user-1")
	hub.registerClient(client)

	hub.HandleMessage(client, []byte(`{"type":"subscribe"}`))
	hub.HandleMessage(client, []byte(`not json`))

	assert.Empty(t, client.Send)
	assert.Equal(t, 1, hub.ClientCount())
}

func TestHandlePing(t *testing.T) {
	hub := newHub(&MockAccessChecker{}, log.DefaultLogger)
	client := newTestClient(hub, "user-1")
	hub.registerClient(client)

	hub.HandleMessage(client, []byte(`{"type":"ping"}`))

	var pong map[string]interface{}
	data := <-client.Send
	assert.NoError(t, json.Unmarshal(data, &pong))
	assert.Equal(t, "pong", pong["type"])
}
