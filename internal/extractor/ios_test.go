package extractor

import (
	"context"
	"testing"

	"github.com/han-fei/appmon/internal/gateway"
	"github.com/han-fei/appmon/internal/models"
)

// TestIOSCPUUsage 测试iOS CPU百分比解析
func TestIOSCPUUsage(t *testing.T) {
	gw := gateway.NewFakeGateway()
	gw.Responses["proc_info com.demo.app"] = "PID: 100\nCPU: 12.5%\nMemory: 150 MB"

	e := newIOSCPUExtractor(&iosTarget{gw: gw, packageName: "com.demo.app"})

	var s models.Sample
	if err := e.Extract(context.Background(), &s); err != nil {
		t.Fatalf("提取失败: %v", err)
	}
	if s.CPUUsage != 12.5 {
		t.Errorf("CPUUsage = %v, 期望 12.5", s.CPUUsage)
	}
}

// TestIOSCPUGlobal 测试无目标应用时读取sysinfo
func TestIOSCPUGlobal(t *testing.T) {
	gw := gateway.NewFakeGateway()
	gw.Responses["sysinfo"] = "CPU Usage: 33.0%"

	e := newIOSCPUExtractor(&iosTarget{gw: gw})

	var s models.Sample
	if err := e.Extract(context.Background(), &s); err != nil {
		t.Fatalf("提取失败: %v", err)
	}
	if s.CPUUsage != 33.0 {
		t.Errorf("CPUUsage = %v, 期望 33", s.CPUUsage)
	}
}

// TestIOSMemory 测试iOS内存解析
func TestIOSMemory(t *testing.T) {
	gw := gateway.NewFakeGateway()
	gw.Responses["proc_info com.demo.app"] = "Memory: 150.5 MB"

	e := newIOSMemoryExtractor(&iosTarget{gw: gw, packageName: "com.demo.app"})

	var s models.Sample
	if err := e.Extract(context.Background(), &s); err != nil {
		t.Fatalf("提取失败: %v", err)
	}
	if s.MemoryUsage != 150.5 {
		t.Errorf("MemoryUsage = %v, 期望 150.5", s.MemoryUsage)
	}
}

// TestIOSFPSClamp 测试iOS帧率解析和钳制
func TestIOSFPSClamp(t *testing.T) {
	gw := gateway.NewFakeGateway()
	gw.Responses["fps com.demo.app"] = "120.0 fps"

	e := newIOSFPSExtractor(&iosTarget{gw: gw, packageName: "com.demo.app"})

	var s models.Sample
	if err := e.Extract(context.Background(), &s); err != nil {
		t.Fatalf("提取失败: %v", err)
	}
	if s.FPS != 60.0 {
		t.Errorf("FPS = %v, 期望钳制为 60", s.FPS)
	}
}

// TestIOSBattery 测试iOS电池解析
func TestIOSBattery(t *testing.T) {
	gw := gateway.NewFakeGateway()
	gw.Responses["battery"] = "BatteryLevel: 0.85\nTemperature: 30.5\nVoltage: 3800"

	e := newIOSBatteryExtractor(&iosTarget{gw: gw})

	var s models.Sample
	if err := e.Extract(context.Background(), &s); err != nil {
		t.Fatalf("提取失败: %v", err)
	}
	if s.Battery.Level != 85 {
		t.Errorf("Level = %d, 期望 85", s.Battery.Level)
	}
	if s.Battery.Temperature != 30.5 {
		t.Errorf("Temperature = %v, 期望 30.5", s.Battery.Temperature)
	}
	if s.Battery.Voltage != 3800 {
		t.Errorf("Voltage = %d, 期望 3800", s.Battery.Voltage)
	}
}

// TestIOSNetworkRate 测试iOS网络速率的差值计算
func TestIOSNetworkRate(t *testing.T) {
	gw := gateway.NewFakeGateway()
	gw.Push("network_info", "RX: 1024 bytes\nTX: 2048 bytes")
	gw.Push("network_info", "RX: 5120 bytes\nTX: 8192 bytes")

	e := newIOSNetworkExtractor(&iosTarget{gw: gw})
	ctx := context.Background()

	var s models.Sample
	e.Extract(ctx, &s) // 基线
	if s.Network != (models.NetworkUsage{}) {
		t.Errorf("首次观测网络指标 = %+v, 期望零值", s.Network)
	}

	s = models.Sample{}
	if err := e.Extract(ctx, &s); err != nil {
		t.Fatalf("提取失败: %v", err)
	}
	if s.Network.RxTotal != 5.0 || s.Network.TxTotal != 8.0 {
		t.Errorf("累计 = rx %v tx %v KB, 期望 5/8", s.Network.RxTotal, s.Network.TxTotal)
	}
}
