// Package buffer 提供样本的固定容量环形缓冲
package buffer

import (
	"sync"

	"github.com/han-fei/appmon/internal/models"
)

// SampleRing 固定容量的样本环形缓冲区
// 尾部追加，容量满时从头部淘汰最旧的样本，时间顺序由顺序采样保证
type SampleRing struct {
	mu       sync.RWMutex
	samples  []models.Sample
	capacity int
}

// NewSampleRing 创建指定容量的环形缓冲区
func NewSampleRing(capacity int) *SampleRing {
	if capacity <= 0 {
		capacity = 1
	}
	return &SampleRing{
		samples:  make([]models.Sample, 0, capacity),
		capacity: capacity,
	}
}

// Push 追加一个样本，容量满时淘汰最旧的样本
func (r *SampleRing) Push(s models.Sample) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.samples) >= r.capacity {
		r.samples = r.samples[1:]
	}
	r.samples = append(r.samples, s)
}

// Size 当前样本数量
func (r *SampleRing) Size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.samples)
}

// Capacity 缓冲区容量
func (r *SampleRing) Capacity() int {
	return r.capacity
}

// IsEmpty 检查是否为空
func (r *SampleRing) IsEmpty() bool {
	return r.Size() == 0
}

// Snapshot 返回全部样本的副本，按时间顺序排列
func (r *SampleRing) Snapshot() []models.Sample {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.Sample, len(r.samples))
	copy(out, r.samples)
	return out
}

// Recent 返回最近n个样本的副本，n大于样本数时返回全部
func (r *SampleRing) Recent(n int) []models.Sample {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if n > len(r.samples) {
		n = len(r.samples)
	}
	out := make([]models.Sample, n)
	copy(out, r.samples[len(r.samples)-n:])
	return out
}

// Clear 清空缓冲区
func (r *SampleRing) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.samples = r.samples[:0]
}
