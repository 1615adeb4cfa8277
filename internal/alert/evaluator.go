// Package alert 按配置阈值检查样本并产生告警事件
package alert

import (
	"fmt"
	"sync"

	"github.com/han-fei/appmon/internal/config"
	"github.com/han-fei/appmon/internal/models"
)

// Evaluator 阈值告警评估器
// 每个样本独立评估；指标持续越界时每个采样周期都会产生新事件
type Evaluator struct {
	thresholds config.AlertConfig
}

// NewEvaluator 创建告警评估器
func NewEvaluator(thresholds config.AlertConfig) *Evaluator {
	return &Evaluator{thresholds: thresholds}
}

// Evaluate 检查样本的各项指标，返回本周期产生的全部告警事件
// CPU/内存/电池温度高于阈值告警，FPS低于阈值告警
func (e *Evaluator) Evaluate(s *models.Sample) []models.AlertEvent {
	var events []models.AlertEvent

	if e.thresholds.CPUThreshold > 0 && s.CPUUsage > e.thresholds.CPUThreshold {
		events = append(events, newEvent(s, "cpu", s.CPUUsage,
			e.thresholds.CPUThreshold, models.DirectionAbove))
	}
	if e.thresholds.MemoryThreshold > 0 && s.MemoryUsage > e.thresholds.MemoryThreshold {
		events = append(events, newEvent(s, "memory", s.MemoryUsage,
			e.thresholds.MemoryThreshold, models.DirectionAbove))
	}
	if e.thresholds.FPSThreshold > 0 && s.FPS > 0 && s.FPS < e.thresholds.FPSThreshold {
		events = append(events, newEvent(s, "fps", s.FPS,
			e.thresholds.FPSThreshold, models.DirectionBelow))
	}
	if e.thresholds.BatteryTempThreshold > 0 &&
		s.Battery.Temperature > e.thresholds.BatteryTempThreshold {
		events = append(events, newEvent(s, "battery_temp", s.Battery.Temperature,
			e.thresholds.BatteryTempThreshold, models.DirectionAbove))
	}

	return events
}

// newEvent 构造告警事件
func newEvent(s *models.Sample, metric string, value, threshold float64, direction string) models.AlertEvent {
	op := ">"
	if direction == models.DirectionBelow {
		op = "<"
	}
	return models.AlertEvent{
		Timestamp: s.Timestamp,
		Metric:    metric,
		Value:     value,
		Threshold: threshold,
		Direction: direction,
		Message: fmt.Sprintf("%s %s threshold: %.1f %s %.1f",
			metric, direction, value, op, threshold),
	}
}

// Log 会话内的告警日志，事件只追加不修改
type Log struct {
	mu     sync.RWMutex
	events []models.AlertEvent
}

// NewLog 创建告警日志
func NewLog() *Log {
	return &Log{}
}

// Append 追加告警事件
func (l *Log) Append(events ...models.AlertEvent) {
	if len(events) == 0 {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, events...)
}

// Snapshot 返回全部事件的副本
func (l *Log) Snapshot() []models.AlertEvent {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]models.AlertEvent, len(l.events))
	copy(out, l.events)
	return out
}

// Count 事件数量
func (l *Log) Count() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.events)
}
