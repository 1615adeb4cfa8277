package algorithm

import (
	"math"
	"testing"
)

// TestSlidingWindowEviction 测试窗口满后挤出最旧的值
func TestSlidingWindowEviction(t *testing.T) {
	sw := NewSlidingWindow(3)
	for _, v := range []float64{1, 2, 3, 4} {
		sw.Add(v)
	}

	if sw.Len() != 3 {
		t.Fatalf("Len = %d, 期望 3", sw.Len())
	}
	if math.Abs(sw.Average()-3.0) > 1e-9 {
		t.Errorf("Average = %v, 期望 3", sw.Average())
	}
}

// TestSlidingWindowRecent 测试最近n个值的读取
func TestSlidingWindowRecent(t *testing.T) {
	sw := NewSlidingWindow(5)
	for _, v := range []float64{1, 2, 3, 4, 5} {
		sw.Add(v)
	}

	recent := sw.Recent(2)
	if len(recent) != 2 || recent[0] != 4 || recent[1] != 5 {
		t.Errorf("Recent(2) = %v, 期望 [4 5]", recent)
	}
	if got := sw.Recent(100); len(got) != 5 {
		t.Errorf("Recent(100)长度 = %d, 期望 5", len(got))
	}
}

// TestSlidingWindowReset 测试清空
func TestSlidingWindowReset(t *testing.T) {
	sw := NewSlidingWindow(3)
	sw.Add(1)
	sw.Reset()

	if sw.Len() != 0 || sw.Average() != 0 {
		t.Errorf("Reset后 Len = %d Average = %v, 期望均为 0", sw.Len(), sw.Average())
	}
}
