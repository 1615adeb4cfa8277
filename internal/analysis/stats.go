// Package analysis 提供样本序列的统计聚合
package analysis

import (
	"github.com/han-fei/appmon/internal/models"
)

// Calculate 计算数值序列的统计摘要，空序列返回全零
func Calculate(values []float64) models.Stats {
	if len(values) == 0 {
		return models.Stats{}
	}

	stats := models.Stats{
		Min:   values[0],
		Max:   values[0],
		Count: len(values),
	}
	var sum float64
	for _, v := range values {
		if v < stats.Min {
			stats.Min = v
		}
		if v > stats.Max {
			stats.Max = v
		}
		sum += v
	}
	stats.Avg = sum / float64(len(values))
	return stats
}

// Series 按取值函数从样本序列提取数值序列
func Series(samples []models.Sample, field func(models.Sample) float64) []float64 {
	out := make([]float64, 0, len(samples))
	for _, s := range samples {
		out = append(out, field(s))
	}
	return out
}

// NonZero 过滤掉恰好为零的哨兵值
// 零值同时表示"指标不可用"，统计前剔除以免拉低均值
func NonZero(values []float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if v != 0 {
			out = append(out, v)
		}
	}
	return out
}

// SummaryStats 计算会话摘要用到的三组统计量
// CPU/内存/FPS序列在聚合前剔除零哨兵
func SummaryStats(samples []models.Sample) map[string]models.Stats {
	return map[string]models.Stats{
		"cpu": Calculate(NonZero(Series(samples, func(s models.Sample) float64 {
			return s.CPUUsage
		}))),
		"memory": Calculate(NonZero(Series(samples, func(s models.Sample) float64 {
			return s.MemoryUsage
		}))),
		"fps": Calculate(NonZero(Series(samples, func(s models.Sample) float64 {
			return s.FPS
		}))),
	}
}
