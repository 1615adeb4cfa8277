// Package gateway 提供对目标设备执行文本命令的能力
// 平台差异由上层通过命令字符串选择解决，网关本身与命令内容无关
package gateway

import (
	"context"
	"fmt"
)

// Gateway 设备命令网关，绑定到单个设备
type Gateway interface {
	// Exec 在设备上执行命令并返回文本输出
	// 超时、设备不可达和非零退出均以*TransportError返回
	Exec(ctx context.Context, command string) (string, error)
}

// TransportError 传输层错误
type TransportError struct {
	Op      string // 发生错误的操作描述
	Command string // 原始命令
	Err     error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("gateway %s failed: %v (command: %s)", e.Op, e.Err, e.Command)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
