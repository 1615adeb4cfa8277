package algorithm

import (
	"sync"
)

// SlidingWindow 固定容量的数值滑动窗口
// 窗口满后新值挤出最旧的值，和值增量维护避免重复求和
type SlidingWindow struct {
	size   int
	values []float64
	sum    float64
	mu     sync.RWMutex
}

// NewSlidingWindow 创建新的滑动窗口
func NewSlidingWindow(size int) *SlidingWindow {
	if size <= 0 {
		size = 1
	}
	return &SlidingWindow{
		size:   size,
		values: make([]float64, 0, size),
	}
}

// Add 添加新值到窗口
func (sw *SlidingWindow) Add(value float64) {
	sw.mu.Lock()
	defer sw.mu.Unlock()

	if len(sw.values) >= sw.size {
		sw.sum -= sw.values[0]
		sw.values = sw.values[1:]
	}
	sw.values = append(sw.values, value)
	sw.sum += value
}

// Len 获取窗口中的值数量
func (sw *SlidingWindow) Len() int {
	sw.mu.RLock()
	defer sw.mu.RUnlock()
	return len(sw.values)
}

// Average 获取窗口平均值
func (sw *SlidingWindow) Average() float64 {
	sw.mu.RLock()
	defer sw.mu.RUnlock()

	if len(sw.values) == 0 {
		return 0
	}
	return sw.sum / float64(len(sw.values))
}

// Recent 获取最近n个值的副本，n大于窗口长度时返回全部
func (sw *SlidingWindow) Recent(n int) []float64 {
	sw.mu.RLock()
	defer sw.mu.RUnlock()

	if n > len(sw.values) {
		n = len(sw.values)
	}
	out := make([]float64, n)
	copy(out, sw.values[len(sw.values)-n:])
	return out
}

// Reset 清空窗口
func (sw *SlidingWindow) Reset() {
	sw.mu.Lock()
	defer sw.mu.Unlock()

	sw.values = sw.values[:0]
	sw.sum = 0
}
