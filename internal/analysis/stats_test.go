package analysis

import (
	"math"
	"testing"

	"github.com/han-fei/appmon/internal/models"
)

// TestCalculate 测试统计摘要计算
func TestCalculate(t *testing.T) {
	stats := Calculate([]float64{10, 20, 30})
	if stats.Min != 10 || stats.Max != 30 || stats.Count != 3 {
		t.Errorf("Stats = %+v, 期望 min 10 max 30 count 3", stats)
	}
	if math.Abs(stats.Avg-20.0) > 1e-9 {
		t.Errorf("Avg = %v, 期望 20", stats.Avg)
	}
}

// TestCalculateEmpty 测试空序列返回全零
func TestCalculateEmpty(t *testing.T) {
	if stats := Calculate(nil); stats != (models.Stats{}) {
		t.Errorf("空序列Stats = %+v, 期望全零", stats)
	}
}

// TestNonZero 测试零哨兵过滤
func TestNonZero(t *testing.T) {
	values := NonZero([]float64{0, 10, 0, 20, 0})
	if len(values) != 2 || values[0] != 10 || values[1] != 20 {
		t.Errorf("NonZero = %v, 期望 [10 20]", values)
	}
}

// TestSummaryStats 测试会话摘要，零哨兵不拉低均值
func TestSummaryStats(t *testing.T) {
	samples := []models.Sample{
		{CPUUsage: 0, MemoryUsage: 100, FPS: 0},
		{CPUUsage: 40, MemoryUsage: 120, FPS: 55},
		{CPUUsage: 60, MemoryUsage: 140, FPS: 45},
	}

	stats := SummaryStats(samples)

	cpu := stats["cpu"]
	if cpu.Count != 2 {
		t.Errorf("cpu.Count = %d, 期望零哨兵被剔除后为 2", cpu.Count)
	}
	if math.Abs(cpu.Avg-50.0) > 1e-9 {
		t.Errorf("cpu.Avg = %v, 期望 50", cpu.Avg)
	}

	mem := stats["memory"]
	if mem.Count != 3 || mem.Min != 100 || mem.Max != 140 {
		t.Errorf("memory = %+v, 期望 count 3 min 100 max 140", mem)
	}

	fps := stats["fps"]
	if math.Abs(fps.Avg-50.0) > 1e-9 {
		t.Errorf("fps.Avg = %v, 期望 50", fps.Avg)
	}
}
