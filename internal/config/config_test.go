package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// TestDefaultConfig 测试默认配置
func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Monitor.Interval != 1*time.Second {
		t.Errorf("Interval = %v, 期望 1s", cfg.Monitor.Interval)
	}
	if cfg.Monitor.BufferSize != 1000 {
		t.Errorf("BufferSize = %d, 期望 1000", cfg.Monitor.BufferSize)
	}
	if cfg.Alert.CPUThreshold != 80 || cfg.Alert.FPSThreshold != 30 {
		t.Errorf("告警阈值 = %+v", cfg.Alert)
	}
	if cfg.Alert.BatteryTempThreshold != 45 {
		t.Errorf("BatteryTempThreshold = %v, 期望 45", cfg.Alert.BatteryTempThreshold)
	}
	if cfg.Gateway.CommandTimeout != 10*time.Second {
		t.Errorf("CommandTimeout = %v, 期望 10s", cfg.Gateway.CommandTimeout)
	}
	if cfg.API.Addr != ":8080" {
		t.Errorf("API.Addr = %q, 期望 :8080", cfg.API.Addr)
	}
}

// TestLoadConfig 测试配置文件加载与默认值填充
func TestLoadConfig(t *testing.T) {
	content := `
monitor:
  interval: 500ms
  buffer_size: 200
alert:
  cpu_threshold: 90
gateway:
  adb_path: /usr/local/bin/adb
`
	path := filepath.Join(t.TempDir(), "apm.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("写入配置失败: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("加载失败: %v", err)
	}

	if cfg.Monitor.Interval != 500*time.Millisecond {
		t.Errorf("Interval = %v, 期望 500ms", cfg.Monitor.Interval)
	}
	if cfg.Monitor.BufferSize != 200 {
		t.Errorf("BufferSize = %d, 期望 200", cfg.Monitor.BufferSize)
	}
	if cfg.Alert.CPUThreshold != 90 {
		t.Errorf("CPUThreshold = %v, 期望 90", cfg.Alert.CPUThreshold)
	}
	if cfg.Gateway.ADBPath != "/usr/local/bin/adb" {
		t.Errorf("ADBPath = %q", cfg.Gateway.ADBPath)
	}

	// 未设置的字段仍取默认值
	if cfg.Alert.MemoryThreshold != 80 {
		t.Errorf("MemoryThreshold = %v, 期望默认 80", cfg.Alert.MemoryThreshold)
	}
	if cfg.Kafka.Topic != "samples" {
		t.Errorf("Kafka.Topic = %q, 期望默认 samples", cfg.Kafka.Topic)
	}
}

// TestLoadConfigMissingFile 测试文件不存在时返回错误
func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig("/nonexistent/apm.yaml"); err == nil {
		t.Fatal("文件不存在时期望返回错误")
	}
}
