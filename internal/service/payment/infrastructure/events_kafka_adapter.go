// internal/service/payment/infrastructure/events_kafka_adapter.go
package infrastructure

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/Cory7717/ReadySetFlyWeb-sub000/internal/pkg/logger"
	"github.com/Cory7717/ReadySetFlyWeb-sub000/internal/pkg/metrics"
	"github.com/Cory7717/ReadySetFlyWeb-sub000/internal/pkg/mq"
	"github.com/Cory7717/ReadySetFlyWeb-sub000/internal/service/payment/domain/port"
)

// KafkaEventAdapter 是 port.EventPublisher 的 Kafka 实现。
// 事件按资源 ID 分区, 同一资源的事件保持顺序。
// 发布失败只记日志, 支付落账不依赖事件投递。
type KafkaEventAdapter struct {
	writer *kafka.Writer
}

// NewKafkaEventAdapter 创建一个新的支付事件发布器
func NewKafkaEventAdapter(writer *kafka.Writer) *KafkaEventAdapter {
	return &KafkaEventAdapter{writer: writer}
}

// PublishApplied 发布一条落账完成事件
func (a *KafkaEventAdapter) PublishApplied(ctx context.Context, evt *port.PaymentEvent) {
	evt.EventType = port.EventTypePaymentApplied
	a.publish(ctx, evt)
}

// PublishReconciliationRequired 发布一条人工对账事件。
// 这是捕获成功但领域落账失败时仅有的下游信号, 同时打对账计数器。
func (a *KafkaEventAdapter) PublishReconciliationRequired(ctx context.Context, evt *port.PaymentEvent) {
	evt.EventType = port.EventTypeReconciliationRequired
	metrics.ReconciliationAlertsTotal.Inc()
	a.publish(ctx, evt)
}

func (a *KafkaEventAdapter) publish(ctx context.Context, evt *port.PaymentEvent) {
	if evt.OccurredAt == 0 {
		evt.OccurredAt = time.Now().Unix()
	}

	value, err := json.Marshal(evt)
	if err != nil {
		logger.Ctx(ctx).Error().Err(err).Str("event_type", evt.EventType).Msg("failed to marshal payment event")
		return
	}
	if err := mq.ProduceMessage(ctx, a.writer, []byte(evt.ResourceID), value); err != nil {
		logger.Ctx(ctx).Error().Err(err).
			Str("event_type", evt.EventType).
			Str("provider_order_id", evt.ProviderOrderID).
			Str("resource_id", evt.ResourceID).
			Msg("failed to publish payment event")
	}
}
