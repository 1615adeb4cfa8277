// Package service 提供样本的对外发布通道
package service

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/han-fei/appmon/internal/collector"
	"github.com/han-fei/appmon/internal/config"
	"github.com/han-fei/appmon/internal/models"
)

// sampleEnvelope Kafka消息体，样本附带来源监控器
type sampleEnvelope struct {
	MonitorID string        `json:"monitor_id"`
	Sample    models.Sample `json:"sample"`
}

// messageWriter Kafka写入端，*kafka.Writer满足该接口
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaProducer Kafka样本生产者，作为监控器的订阅者发布每个新样本
type KafkaProducer struct {
	config  *config.KafkaConfig
	writer  messageWriter
	enabled bool
}

// NewKafkaProducer 创建Kafka生产者，未启用时所有操作为空操作
func NewKafkaProducer(cfg *config.KafkaConfig) *KafkaProducer {
	if !cfg.Enabled || len(cfg.Brokers) == 0 {
		return &KafkaProducer{config: cfg, enabled: false}
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: cfg.BatchTimeout,
		RequiredAcks: kafka.RequireOne,
	}

	return &KafkaProducer{config: cfg, writer: writer, enabled: true}
}

// IsEnabled 检查生产者是否启用
func (p *KafkaProducer) IsEnabled() bool {
	return p.enabled
}

// SubscriberFor 返回绑定到指定监控器的样本订阅回调
func (p *KafkaProducer) SubscriberFor(monitorID string) collector.Subscriber {
	return func(s models.Sample) {
		if err := p.SendSampleWithRetry(context.Background(), monitorID, s); err != nil {
			log.Printf("发送样本到Kafka失败: %v", err)
		}
	}
}

// SendSample 发送单个样本到Kafka
func (p *KafkaProducer) SendSample(ctx context.Context, monitorID string, s models.Sample) error {
	if !p.enabled {
		return nil
	}

	value, err := json.Marshal(sampleEnvelope{MonitorID: monitorID, Sample: s})
	if err != nil {
		return err
	}

	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(monitorID),
		Value: value,
		Time:  time.Now(),
	})
}

// SendSampleWithRetry 带指数退避重试的发送
func (p *KafkaProducer) SendSampleWithRetry(ctx context.Context, monitorID string, s models.Sample) error {
	if !p.enabled {
		return nil
	}

	var err error
	for i := 0; i < p.config.MaxRetry; i++ {
		err = p.SendSample(ctx, monitorID, s)
		if err == nil {
			return nil
		}
		log.Printf("发送样本到Kafka失败 (尝试 %d/%d): %v", i+1, p.config.MaxRetry, err)
		time.Sleep(time.Duration(1<<uint(i)) * 100 * time.Millisecond)
	}
	return err
}

// Close 关闭生产者
func (p *KafkaProducer) Close() error {
	if !p.enabled || p.writer == nil {
		return nil
	}
	return p.writer.Close()
}
