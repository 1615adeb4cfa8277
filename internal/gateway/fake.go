package gateway

import (
	"context"
	"fmt"
	"sync"
)

// FakeGateway 测试用网关，按命令返回预置输出
// Queue中的输出按命令逐次弹出，用于模拟计数器随时间增长
type FakeGateway struct {
	mu        sync.Mutex
	Responses map[string]string   // 固定输出
	Queue     map[string][]string // 逐次输出，优先于Responses
	Err       error               // 非空时所有命令均失败
	Calls     []string            // 执行过的命令记录
}

// NewFakeGateway 创建空的测试网关
func NewFakeGateway() *FakeGateway {
	return &FakeGateway{
		Responses: make(map[string]string),
		Queue:     make(map[string][]string),
	}
}

// Push 追加一条逐次输出
func (g *FakeGateway) Push(command, output string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.Queue[command] = append(g.Queue[command], output)
}

// Exec 返回预置输出
func (g *FakeGateway) Exec(ctx context.Context, command string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.Calls = append(g.Calls, command)

	if g.Err != nil {
		return "", &TransportError{Op: "fake", Command: command, Err: g.Err}
	}
	if outputs, ok := g.Queue[command]; ok && len(outputs) > 0 {
		out := outputs[0]
		g.Queue[command] = outputs[1:]
		return out, nil
	}
	if out, ok := g.Responses[command]; ok {
		return out, nil
	}
	return "", &TransportError{Op: "fake", Command: command,
		Err: fmt.Errorf("no response configured")}
}
