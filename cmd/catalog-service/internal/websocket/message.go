package websocket

// Message 客户端上行消息
type Message struct {
	Type      string `json:"type"`       // join, leave, ping
	CatalogID string `json:"catalog_id"` // join/leave 的目标名录
}

// Ack join 操作的确认消息
// 无论成功失败都通过确认消息下发，连接不会因为拒绝而被断开
type Ack struct {
	Type      string `json:"type"`
	Op        string `json:"op"`
	CatalogID string `json:"catalog_id"`
	OK        bool   `json:"ok"`
	Error     string `json:"error,omitempty"`
}

// Event 服务端下行事件
type Event struct {
	Type        string      `json:"type"`
	CatalogID   string      `json:"catalog_id"`
	Payload     interface{} `json:"payload,omitempty"`
	TriggeredBy string      `json:"triggered_by,omitempty"`
	Timestamp   string      `json:"timestamp"`
}

// 消息类型常量
const (
	MessageTypeJoin  = "join"
	MessageTypeLeave = "leave"
	MessageTypePing  = "ping"
	MessageTypePong  = "pong"
	MessageTypeAck   = "ack"

	EventEntriesUpdated  = "entries_updated"
	EventMetadataUpdated = "metadata_updated"
	EventCatalogDeleted  = "catalog_deleted"
)
