// Package storage 提供样本和告警的Redis缓存
package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/han-fei/appmon/internal/collector"
	"github.com/han-fei/appmon/internal/config"
	"github.com/han-fei/appmon/internal/models"
)

// listStore 定长列表存储，新条目在前
type listStore interface {
	// PushCapped 压入条目并裁剪到max条，同时刷新键的过期时间
	PushCapped(ctx context.Context, key string, data []byte, max int64, ttl time.Duration) error

	// Range 读取最前面的count个条目
	Range(ctx context.Context, key string, count int64) ([]string, error)

	Close() error
}

// redisListStore 基于Redis列表的存储实现
type redisListStore struct {
	client *redis.Client
}

func (s *redisListStore) PushCapped(ctx context.Context, key string, data []byte, max int64, ttl time.Duration) error {
	pipe := s.client.Pipeline()
	pipe.LPush(ctx, key, data)
	pipe.LTrim(ctx, key, 0, max-1)
	pipe.Expire(ctx, key, ttl)
	_, err := pipe.Exec(ctx)
	return err
}

func (s *redisListStore) Range(ctx context.Context, key string, count int64) ([]string, error) {
	return s.client.LRange(ctx, key, 0, count-1).Result()
}

func (s *redisListStore) Close() error {
	return s.client.Close()
}

// RedisSink Redis样本缓存
// 每个监控器维护一条定长列表，新样本从左侧压入，超出上限的旧样本被裁剪
type RedisSink struct {
	store      listStore
	keyPrefix  string
	ttl        time.Duration
	maxSamples int
	enabled    bool
}

// NewRedisSink 创建Redis缓存，未启用时所有操作为空操作
func NewRedisSink(cfg *config.RedisConfig) *RedisSink {
	if !cfg.Enabled {
		return &RedisSink{enabled: false}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	return &RedisSink{
		store:      &redisListStore{client: client},
		keyPrefix:  cfg.KeyPrefix,
		ttl:        cfg.TTL,
		maxSamples: cfg.MaxSamples,
		enabled:    true,
	}
}

// IsEnabled 检查缓存是否启用
func (s *RedisSink) IsEnabled() bool {
	return s.enabled
}

// SubscriberFor 返回绑定到指定监控器的样本订阅回调
func (s *RedisSink) SubscriberFor(monitorID string) collector.Subscriber {
	return func(sample models.Sample) {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.SaveSample(ctx, monitorID, sample); err != nil {
			log.Printf("保存样本到Redis失败: %v", err)
		}
	}
}

// sampleKey 监控器样本列表的键
func (s *RedisSink) sampleKey(monitorID string) string {
	return fmt.Sprintf("%ssamples:%s", s.keyPrefix, monitorID)
}

// alertKey 监控器告警列表的键
func (s *RedisSink) alertKey(monitorID string) string {
	return fmt.Sprintf("%salerts:%s", s.keyPrefix, monitorID)
}

// SaveSample 保存样本到监控器的定长列表
func (s *RedisSink) SaveSample(ctx context.Context, monitorID string, sample models.Sample) error {
	if !s.enabled {
		return nil
	}

	data, err := json.Marshal(sample)
	if err != nil {
		return err
	}
	return s.store.PushCapped(ctx, s.sampleKey(monitorID), data, int64(s.maxSamples), s.ttl)
}

// SaveAlert 保存告警事件到监控器的定长列表
func (s *RedisSink) SaveAlert(ctx context.Context, monitorID string, event models.AlertEvent) error {
	if !s.enabled {
		return nil
	}

	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return s.store.PushCapped(ctx, s.alertKey(monitorID), data, int64(s.maxSamples), s.ttl)
}

// RecentSamples 读取监控器最近的count个样本，最新在前
func (s *RedisSink) RecentSamples(ctx context.Context, monitorID string, count int) ([]models.Sample, error) {
	if !s.enabled {
		return nil, nil
	}

	values, err := s.store.Range(ctx, s.sampleKey(monitorID), int64(count))
	if err != nil {
		return nil, err
	}

	samples := make([]models.Sample, 0, len(values))
	for _, v := range values {
		var sample models.Sample
		if err := json.Unmarshal([]byte(v), &sample); err != nil {
			log.Printf("反序列化Redis样本失败: %v", err)
			continue
		}
		samples = append(samples, sample)
	}
	return samples, nil
}

// Close 关闭Redis连接
func (s *RedisSink) Close() error {
	if !s.enabled || s.store == nil {
		return nil
	}
	return s.store.Close()
}
