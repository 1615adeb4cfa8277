package gateway

import (
	"context"
	"errors"
	"testing"
	"time"
)

// TestADBGatewayCommandLine 测试adb命令行的拼接，用echo代替真实adb
func TestADBGatewayCommandLine(t *testing.T) {
	g := NewADBGateway("echo", "emulator-5554", 5*time.Second)

	output, err := g.Exec(context.Background(), "shell cat /proc/stat")
	if err != nil {
		t.Fatalf("执行失败: %v", err)
	}
	if output != "-s emulator-5554 shell cat /proc/stat" {
		t.Errorf("命令行 = %q", output)
	}
}

// TestTideviceGatewayCommandLine 测试tidevice命令行的拼接
func TestTideviceGatewayCommandLine(t *testing.T) {
	g := NewTideviceGateway("echo", "udid-1", 5*time.Second)

	output, err := g.Exec(context.Background(), "sysinfo")
	if err != nil {
		t.Fatalf("执行失败: %v", err)
	}
	if output != "-u udid-1 sysinfo" {
		t.Errorf("命令行 = %q", output)
	}
}

// TestExecFailure 测试命令失败时返回TransportError
func TestExecFailure(t *testing.T) {
	g := NewADBGateway("/nonexistent/adb", "d1", time.Second)

	_, err := g.Exec(context.Background(), "shell ls")
	if err == nil {
		t.Fatal("不存在的可执行文件期望返回错误")
	}
	var te *TransportError
	if !errors.As(err, &te) {
		t.Errorf("错误类型 = %T, 期望 *TransportError", err)
	}
	if te.Command != "shell ls" {
		t.Errorf("Command = %q", te.Command)
	}
}

// TestExecTimeout 测试命令超时
func TestExecTimeout(t *testing.T) {
	_, err := runLocal(context.Background(), 50*time.Millisecond, "sleep 1", "sleep", "1")
	if err == nil {
		t.Fatal("超时命令期望返回错误")
	}
	var te *TransportError
	if !errors.As(err, &te) {
		t.Errorf("错误类型 = %T, 期望 *TransportError", err)
	}
}

// TestFakeGatewayQueue 测试假网关的逐次输出
func TestFakeGatewayQueue(t *testing.T) {
	g := NewFakeGateway()
	g.Push("cmd", "one")
	g.Push("cmd", "two")
	g.Responses["cmd"] = "fallback"

	ctx := context.Background()
	for i, want := range []string{"one", "two", "fallback"} {
		got, err := g.Exec(ctx, "cmd")
		if err != nil {
			t.Fatalf("第%d次执行失败: %v", i+1, err)
		}
		if got != want {
			t.Errorf("第%d次输出 = %q, 期望 %q", i+1, got, want)
		}
	}

	if _, err := g.Exec(ctx, "unknown"); err == nil {
		t.Error("未配置的命令期望返回错误")
	}
	if len(g.Calls) != 4 {
		t.Errorf("Calls = %d, 期望 4", len(g.Calls))
	}
}
