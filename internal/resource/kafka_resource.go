package resource

import (
	"sync"

	"media-service/pkg/assert"
	"media-service/pkg/config"
	"media-service/pkg/kafka"
	"media-service/pkg/logger"
	"media-service/pkg/manager"
)

var (
	kafkaResourceOnce sync.Once
	kafkaSingleton    *KafkaResource
)

// KafkaResource manages the lifecycle of the shared Kafka client.
type KafkaResource struct {
	client *kafka.Client
}

// DefaultKafkaResource returns the global Kafka resource instance.
func DefaultKafkaResource() *KafkaResource {
	assert.NotCircular()
	kafkaResourceOnce.Do(func() {
		kafkaSingleton = &KafkaResource{}
	})
	assert.NotNil(kafkaSingleton)
	return kafkaSingleton
}

// MustOpen opens the Kafka client using global configuration.
func (r *KafkaResource) MustOpen() {
	cfg := config.GetGlobalConfig()
	if cfg == nil {
		panic("global config not initialized")
	}
	if !cfg.Kafka.Enabled {
		logger.Info("Kafka resource disabled", nil)
		return
	}

	client := kafka.DefaultClient()
	client.MustOpen()
	r.client = client
}

// Close shuts down the Kafka writers.
func (r *KafkaResource) Close() {
	if r.client != nil {
		r.client.Close()
	}
}

// Client exposes the Kafka client; nil when disabled.
func (r *KafkaResource) Client() *kafka.Client {
	return r.client
}

// KafkaResourcePlugin wires the resource into the manager.
type KafkaResourcePlugin struct{}

func (p *KafkaResourcePlugin) Name() string {
	return "kafkaResource"
}

func (p *KafkaResourcePlugin) MustCreateResource() manager.Resource {
	return DefaultKafkaResource()
}
