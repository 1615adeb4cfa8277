package buffer

import (
	"testing"
	"time"

	"github.com/han-fei/appmon/internal/models"
)

// sampleAt 构造带序号CPU值的样本
func sampleAt(i int) models.Sample {
	return models.Sample{
		Timestamp: time.Unix(int64(i), 0),
		CPUUsage:  float64(i),
	}
}

// TestRingEviction 测试容量满后淘汰最旧样本并保持时间顺序
func TestRingEviction(t *testing.T) {
	r := NewSampleRing(5)
	for i := 0; i < 8; i++ {
		r.Push(sampleAt(i))
	}

	if r.Size() != 5 {
		t.Fatalf("Size = %d, 期望 5", r.Size())
	}

	snapshot := r.Snapshot()
	for i, s := range snapshot {
		want := float64(i + 3) // 0..2 已被淘汰
		if s.CPUUsage != want {
			t.Errorf("snapshot[%d].CPUUsage = %v, 期望 %v", i, s.CPUUsage, want)
		}
	}
}

// TestRingRecent 测试最近n个样本的读取
func TestRingRecent(t *testing.T) {
	r := NewSampleRing(10)
	for i := 0; i < 6; i++ {
		r.Push(sampleAt(i))
	}

	recent := r.Recent(3)
	if len(recent) != 3 {
		t.Fatalf("Recent(3)长度 = %d, 期望 3", len(recent))
	}
	if recent[0].CPUUsage != 3 || recent[2].CPUUsage != 5 {
		t.Errorf("Recent(3) = [%v..%v], 期望 [3..5]", recent[0].CPUUsage, recent[2].CPUUsage)
	}

	// n超过样本数时返回全部
	if got := r.Recent(100); len(got) != 6 {
		t.Errorf("Recent(100)长度 = %d, 期望 6", len(got))
	}
}

// TestRingSnapshotIsolated 测试快照与内部存储隔离
func TestRingSnapshotIsolated(t *testing.T) {
	r := NewSampleRing(3)
	r.Push(sampleAt(1))

	snapshot := r.Snapshot()
	snapshot[0].CPUUsage = 999

	if got := r.Snapshot()[0].CPUUsage; got != 1 {
		t.Errorf("修改快照影响了缓冲区: CPUUsage = %v", got)
	}
}

// TestRingClear 测试清空
func TestRingClear(t *testing.T) {
	r := NewSampleRing(3)
	r.Push(sampleAt(1))
	r.Clear()

	if !r.IsEmpty() {
		t.Error("Clear后缓冲区非空")
	}
	if r.Capacity() != 3 {
		t.Errorf("Clear后Capacity = %d, 期望 3", r.Capacity())
	}
}

// TestRingInvalidCapacity 测试非法容量回退为1
func TestRingInvalidCapacity(t *testing.T) {
	r := NewSampleRing(0)
	if r.Capacity() != 1 {
		t.Errorf("Capacity = %d, 期望 1", r.Capacity())
	}
}
