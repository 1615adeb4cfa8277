// Package collector 实现单个设备应用的连续性能采样
package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/han-fei/appmon/internal/alert"
	"github.com/han-fei/appmon/internal/analysis"
	"github.com/han-fei/appmon/internal/buffer"
	"github.com/han-fei/appmon/internal/config"
	"github.com/han-fei/appmon/internal/extractor"
	"github.com/han-fei/appmon/internal/gateway"
	"github.com/han-fei/appmon/internal/models"
)

// Subscriber 样本回调，在采样循环内同步调用
type Subscriber func(models.Sample)

// Options 监控器构造参数
type Options struct {
	ID          string             // 监控器标识
	Platform    string             // android 或 ios
	DeviceID    string             // 设备序列号/UDID
	PackageName string             // 目标应用包名，空则采集全局指标
	BufferSize  int                // 样本缓冲区容量
	Thresholds  config.AlertConfig // 告警阈值
}

// Monitor 单个设备/应用的采样监控器
// 后台循环按固定间隔提取指标、入缓冲、分发订阅者并评估告警，
// Start/Stop幂等，多个监控器互不共享状态
type Monitor struct {
	opts       Options
	gw         gateway.Gateway
	extractors []extractor.Extractor
	ring       *buffer.SampleRing
	evaluator  *alert.Evaluator
	alerts     *alert.Log

	subMu       sync.RWMutex
	subscribers []Subscriber

	mu        sync.Mutex
	running   bool
	cancel    context.CancelFunc
	done      chan struct{}
	startTime time.Time
	interval  time.Duration
}

// NewMonitor 创建监控器，平台在此一次性决定提取器集合
func NewMonitor(opts Options, gw gateway.Gateway) (*Monitor, error) {
	extractors, err := extractor.NewExtractors(opts.Platform, gw, opts.PackageName)
	if err != nil {
		return nil, err
	}
	if opts.BufferSize <= 0 {
		opts.BufferSize = 1000
	}

	return &Monitor{
		opts:       opts,
		gw:         gw,
		extractors: extractors,
		ring:       buffer.NewSampleRing(opts.BufferSize),
		evaluator:  alert.NewEvaluator(opts.Thresholds),
		alerts:     alert.NewLog(),
	}, nil
}

// ID 监控器标识
func (m *Monitor) ID() string { return m.opts.ID }

// Subscribe 注册样本回调，按注册顺序在每个采样周期调用
func (m *Monitor) Subscribe(sub Subscriber) {
	m.subMu.Lock()
	defer m.subMu.Unlock()
	m.subscribers = append(m.subscribers, sub)
}

// Start 启动采样循环
// interval为采样间隔，duration大于0时到时自动停止；已运行时为空操作
func (m *Monitor) Start(interval, duration time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("monitor %s: interval must be positive", m.opts.ID)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.done = make(chan struct{})
	m.running = true
	m.startTime = time.Now()
	m.interval = interval

	go m.run(ctx, interval, duration)

	log.Printf("监控器 %s 已启动，间隔: %v，时长: %v", m.opts.ID, interval, duration)
	return nil
}

// Stop 停止采样循环并等待其退出，未运行时为空操作
func (m *Monitor) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	cancel := m.cancel
	done := m.done
	m.mu.Unlock()

	cancel()
	<-done
	log.Printf("监控器 %s 已停止", m.opts.ID)
}

// IsRunning 是否正在采样
func (m *Monitor) IsRunning() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

// run 采样循环
// 取消信号在每个周期开始和周期间等待时被观察，提取过程不被强制打断
func (m *Monitor) run(ctx context.Context, interval, duration time.Duration) {
	defer close(m.done)
	defer m.markIdle()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	start := time.Now()
	for {
		if duration > 0 && time.Since(start) >= duration {
			return
		}
		select {
		case <-ctx.Done():
			return
		default:
		}

		sample := m.assemble(ctx)
		m.ring.Push(sample)
		m.dispatch(sample)

		events := m.evaluator.Evaluate(&sample)
		for _, ev := range events {
			log.Printf("告警 [%s]: %s", m.opts.ID, ev.Message)
		}
		m.alerts.Append(events...)

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// markIdle 循环退出后回到空闲状态
func (m *Monitor) markIdle() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.running = false
}

// assemble 调用全部提取器组装一个样本
// 时间戳取组装开始时刻；单个提取器失败只影响对应字段，不中断本周期
func (m *Monitor) assemble(ctx context.Context) models.Sample {
	sample := models.Sample{Timestamp: time.Now()}

	for _, e := range m.extractors {
		if err := e.Extract(ctx, &sample); err != nil {
			log.Printf("监控器 %s 提取%s指标失败: %v", m.opts.ID, e.Name(), err)
		}
	}
	return sample
}

// dispatch 按注册顺序调用订阅者，单个订阅者panic不影响其余订阅者和循环
func (m *Monitor) dispatch(sample models.Sample) {
	m.subMu.RLock()
	subs := make([]Subscriber, len(m.subscribers))
	copy(subs, m.subscribers)
	m.subMu.RUnlock()

	for _, sub := range subs {
		func() {
			defer func() {
				if r := recover(); r != nil {
					log.Printf("监控器 %s 订阅者panic: %v", m.opts.ID, r)
				}
			}()
			sub(sample)
		}()
	}
}

// Buffer 样本缓冲区
func (m *Monitor) Buffer() *buffer.SampleRing { return m.ring }

// Alerts 告警日志
func (m *Monitor) Alerts() *alert.Log { return m.alerts }

// Summary 计算当前会话的性能摘要
func (m *Monitor) Summary() models.MonitorSummary {
	m.mu.Lock()
	startTime := m.startTime
	m.mu.Unlock()

	samples := m.ring.Snapshot()

	var duration float64
	if !startTime.IsZero() {
		duration = time.Since(startTime).Seconds()
	}

	return models.MonitorSummary{
		MonitorID:   m.opts.ID,
		Platform:    m.opts.Platform,
		DeviceID:    m.opts.DeviceID,
		PackageName: m.opts.PackageName,
		Duration:    duration,
		DataPoints:  len(samples),
		AlertsCount: m.alerts.Count(),
		Stats:       analysis.SummaryStats(samples),
	}
}

// Export 将缓冲区全部样本序列化为JSON，只读不清空
func (m *Monitor) Export() ([]byte, error) {
	return json.MarshalIndent(m.ring.Snapshot(), "", "  ")
}
