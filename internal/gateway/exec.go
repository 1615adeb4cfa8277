package gateway

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// ADBGateway 通过adb执行Android设备命令
type ADBGateway struct {
	adbPath string
	serial  string
	timeout time.Duration
}

// NewADBGateway 创建adb网关，serial为adb devices列出的设备序列号
func NewADBGateway(adbPath, serial string, timeout time.Duration) *ADBGateway {
	if adbPath == "" {
		adbPath = "adb"
	}
	return &ADBGateway{adbPath: adbPath, serial: serial, timeout: timeout}
}

// Exec 执行adb命令，如 "shell cat /proc/stat"
func (g *ADBGateway) Exec(ctx context.Context, command string) (string, error) {
	args := append([]string{"-s", g.serial}, strings.Fields(command)...)
	return runLocal(ctx, g.timeout, command, g.adbPath, args...)
}

// TideviceGateway 通过tidevice执行iOS设备命令
type TideviceGateway struct {
	toolPath string
	udid     string
	timeout  time.Duration
}

// NewTideviceGateway 创建tidevice网关，udid为设备唯一标识
func NewTideviceGateway(toolPath, udid string, timeout time.Duration) *TideviceGateway {
	if toolPath == "" {
		toolPath = "tidevice"
	}
	return &TideviceGateway{toolPath: toolPath, udid: udid, timeout: timeout}
}

// Exec 执行tidevice命令，如 "sysinfo"
func (g *TideviceGateway) Exec(ctx context.Context, command string) (string, error) {
	args := append([]string{"-u", g.udid}, strings.Fields(command)...)
	return runLocal(ctx, g.timeout, command, g.toolPath, args...)
}

// runLocal 在本机执行命令行工具并收集输出
func runLocal(ctx context.Context, timeout time.Duration, command, name string, args ...string) (string, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, name, args...)
	output, err := cmd.CombinedOutput()
	if ctx.Err() == context.DeadlineExceeded {
		return "", &TransportError{Op: "exec timeout", Command: command, Err: ctx.Err()}
	}
	if err != nil {
		return "", &TransportError{Op: "exec", Command: command,
			Err: fmt.Errorf("%v: %s", err, strings.TrimSpace(string(output)))}
	}
	return strings.TrimSpace(string(output)), nil
}
