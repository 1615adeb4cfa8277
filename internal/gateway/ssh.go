package gateway

import (
	"context"
	"time"

	"golang.org/x/crypto/ssh"
)

// SSHGateway 通过SSH在联网设备上执行命令
// 适用于已开启sshd的测试机或模拟器宿主
type SSHGateway struct {
	client  *ssh.Client
	timeout time.Duration
}

// NewSSHGateway 建立SSH连接并创建网关
func NewSSHGateway(addr, user, password string, timeout time.Duration) (*SSHGateway, error) {
	cfg := &ssh.ClientConfig{
		User: user,
		Auth: []ssh.AuthMethod{
			ssh.Password(password),
		},
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         timeout,
	}

	client, err := ssh.Dial("tcp", addr, cfg)
	if err != nil {
		return nil, &TransportError{Op: "ssh dial", Command: "", Err: err}
	}

	return &SSHGateway{client: client, timeout: timeout}, nil
}

// Exec 在远端执行命令，每条命令使用独立会话
func (g *SSHGateway) Exec(ctx context.Context, command string) (string, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	session, err := g.client.NewSession()
	if err != nil {
		return "", &TransportError{Op: "ssh session", Command: command, Err: err}
	}
	defer session.Close()

	type result struct {
		output []byte
		err    error
	}
	done := make(chan result, 1)
	go func() {
		out, err := session.CombinedOutput(command)
		done <- result{output: out, err: err}
	}()

	select {
	case <-ctx.Done():
		// 会话关闭会让远端命令尽快终止
		return "", &TransportError{Op: "ssh timeout", Command: command, Err: ctx.Err()}
	case r := <-done:
		if r.err != nil {
			return "", &TransportError{Op: "ssh exec", Command: command, Err: r.err}
		}
		return string(r.output), nil
	}
}

// Close 关闭SSH连接
func (g *SSHGateway) Close() error {
	return g.client.Close()
}
