package infra

import (
	"context"
	"time"

	"github.com/go-kratos/kratos/v2/log"

	"fieldcatalog/cmd/catalog-service/internal/infra/kafka"
)

// notificationTopic 通知事件主题
const notificationTopic = "catalog.notifications"

// NotificationEvent 下发给通知服务的事件
type NotificationEvent struct {
	EventType string                 `json:"event_type"`
	UserID    string                 `json:"user_id"`
	Payload   map[string]interface{} `json:"payload,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
}

// KafkaNotifier 基于 Kafka 的通知分发
// 失败只记录日志，不向调用方传播
type KafkaNotifier struct {
	producer *kafka.EventProducer
	logger   *log.Helper
}

// NewKafkaNotifier 创建通知分发器
func NewKafkaNotifier(producer *kafka.EventProducer, logger log.Logger) *KafkaNotifier {
	return &KafkaNotifier{
		producer: producer,
		logger:   log.NewHelper(log.With(logger, "module", "notifier")),
	}
}

// Notify 发送通知事件
func (n *KafkaNotifier) Notify(ctx context.Context, userID, kind string, payload map[string]interface{}) {
	event := &NotificationEvent{
		EventType: kind,
		UserID:    userID,
		Payload:   payload,
		CreatedAt: time.Now().UTC(),
	}

	// 按用户分区，保证同一用户的通知有序
	if err := n.producer.PublishEventWithKey(notificationTopic, userID, event); err != nil {
		n.logger.Errorf("failed to publish notification: kind=%s user=%s err=%v", kind, userID, err)
	}
}
