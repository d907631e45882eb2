package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"media-service/ddd/domain/gateway"
	"media-service/internal/resource"
	"media-service/pkg/config"
	"media-service/pkg/logger"
)

// KafkaNotifier 把作业终态事件写入Kafka主题，供业务侧消费。
// 投递失败只记日志，不影响作业本身。
type KafkaNotifier struct {
	kafkaResource *resource.KafkaResource
	topic         string
}

func NewKafkaNotifier(kafkaResource *resource.KafkaResource) gateway.EventNotifier {
	topic := "media.job.events"
	if cfg := config.GetGlobalConfig(); cfg != nil && cfg.Kafka.Topics.JobEvents != "" {
		topic = cfg.Kafka.Topics.JobEvents
	}
	return &KafkaNotifier{
		kafkaResource: kafkaResource,
		topic:         topic,
	}
}

func (n *KafkaNotifier) NotifyJobEvent(ctx context.Context, event gateway.JobEvent) error {
	client := n.kafkaResource.Client()
	if client == nil {
		// Kafka未启用
		return nil
	}

	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal job event: %w", err)
	}
	if err := client.Produce(ctx, n.topic, []byte(event.JobUUID), value); err != nil {
		logger.Warn("failed to publish job event", map[string]interface{}{
			"job_uuid": event.JobUUID,
			"topic":    n.topic,
			"error":    err.Error(),
		})
		return err
	}
	return nil
}

// NopNotifier 空实现，测试与Kafka禁用场景使用
type NopNotifier struct{}

func NewNopNotifier() gateway.EventNotifier {
	return NopNotifier{}
}

func (NopNotifier) NotifyJobEvent(ctx context.Context, event gateway.JobEvent) error {
	return nil
}
