package extractor

import (
	"context"
	"math"
	"testing"

	"github.com/han-fei/appmon/internal/gateway"
	"github.com/han-fei/appmon/internal/models"
)

// TestGlobalMemoryUsage 测试全局内存使用量 MemTotal-MemAvailable
func TestGlobalMemoryUsage(t *testing.T) {
	gw := gateway.NewFakeGateway()
	gw.Responses["shell cat /proc/meminfo"] =
		"MemTotal:        2048000 kB\nMemFree:          512000 kB\nMemAvailable:    1024000 kB"

	e := newAndroidMemoryExtractor(&androidTarget{gw: gw})

	var s models.Sample
	if err := e.Extract(context.Background(), &s); err != nil {
		t.Fatalf("提取失败: %v", err)
	}
	if math.Abs(s.MemoryUsage-1000.0) > 1e-9 {
		t.Errorf("MemoryUsage = %v MB, 期望 1000", s.MemoryUsage)
	}
}

// TestProcessMemoryUsage 测试目标进程的meminfo TOTAL行解析
func TestProcessMemoryUsage(t *testing.T) {
	gw := gateway.NewFakeGateway()
	gw.Responses["shell pidof com.demo.app"] = "1234"
	gw.Responses["shell dumpsys meminfo 1234"] =
		"Applications Memory Usage (in Kilobytes):\n  TOTAL: 102400 kB"

	e := newAndroidMemoryExtractor(&androidTarget{gw: gw, packageName: "com.demo.app"})

	var s models.Sample
	if err := e.Extract(context.Background(), &s); err != nil {
		t.Fatalf("提取失败: %v", err)
	}
	if math.Abs(s.MemoryUsage-100.0) > 1e-9 {
		t.Errorf("MemoryUsage = %v MB, 期望 100", s.MemoryUsage)
	}
}

// TestMemoryDetail 测试进程内存细分解析
func TestMemoryDetail(t *testing.T) {
	gw := gateway.NewFakeGateway()
	gw.Responses["shell pidof com.demo.app"] = "1234"
	gw.Responses["shell dumpsys meminfo 1234"] = `App Summary
   Pss Total: 204800
   Private Dirty: 102400
   Private Clean: 51200
`

	e := newAndroidMemoryDetailExtractor(&androidTarget{gw: gw, packageName: "com.demo.app"})

	var s models.Sample
	if err := e.Extract(context.Background(), &s); err != nil {
		t.Fatalf("提取失败: %v", err)
	}
	if math.Abs(s.MemoryDetail.PSSTotal-200.0) > 1e-9 {
		t.Errorf("PSSTotal = %v MB, 期望 200", s.MemoryDetail.PSSTotal)
	}
	if math.Abs(s.MemoryDetail.PrivateDirty-100.0) > 1e-9 {
		t.Errorf("PrivateDirty = %v MB, 期望 100", s.MemoryDetail.PrivateDirty)
	}
	if math.Abs(s.MemoryDetail.PrivateClean-50.0) > 1e-9 {
		t.Errorf("PrivateClean = %v MB, 期望 50", s.MemoryDetail.PrivateClean)
	}
}

// TestMemoryDetailWithoutPackage 测试无目标应用时细分保持零值
func TestMemoryDetailWithoutPackage(t *testing.T) {
	gw := gateway.NewFakeGateway()
	e := newAndroidMemoryDetailExtractor(&androidTarget{gw: gw})

	var s models.Sample
	if err := e.Extract(context.Background(), &s); err != nil {
		t.Fatalf("提取失败: %v", err)
	}
	if s.MemoryDetail != (models.MemoryDetail{}) {
		t.Errorf("MemoryDetail = %+v, 期望零值", s.MemoryDetail)
	}
}

// TestNewExtractorsUnknownPlatform 测试不支持的平台返回错误
func TestNewExtractorsUnknownPlatform(t *testing.T) {
	_, err := NewExtractors("windows", gateway.NewFakeGateway(), "")
	if err == nil {
		t.Fatal("未知平台期望返回错误")
	}
}
