// Package registry 管理进程内的全部监控器实例
// 注册表是显式构造的对象，由入口创建后传递给需要它的组件
package registry

import (
	"fmt"
	"strings"
	"sync"

	"github.com/han-fei/appmon/internal/collector"
	"github.com/han-fei/appmon/internal/config"
	"github.com/han-fei/appmon/internal/gateway"
)

// 注册表错误
var (
	ErrMonitorExists   = fmt.Errorf("monitor already exists")
	ErrMonitorNotFound = fmt.Errorf("monitor not found")
)

// GatewayFactory 按平台和设备创建命令网关
type GatewayFactory func(platform, deviceID string) (gateway.Gateway, error)

// MonitorRegistry 监控器注册表
type MonitorRegistry struct {
	cfg      *config.Config
	factory  GatewayFactory
	mu       sync.RWMutex
	monitors map[string]*collector.Monitor
}

// NewRegistry 创建注册表，网关按配置构造
func NewRegistry(cfg *config.Config) *MonitorRegistry {
	r := &MonitorRegistry{
		cfg:      cfg,
		monitors: make(map[string]*collector.Monitor),
	}
	r.factory = r.defaultFactory
	return r
}

// SetGatewayFactory 替换网关工厂，测试中注入假网关
func (r *MonitorRegistry) SetGatewayFactory(f GatewayFactory) {
	r.factory = f
}

// defaultFactory 根据平台选择adb/tidevice/ssh网关
func (r *MonitorRegistry) defaultFactory(platform, deviceID string) (gateway.Gateway, error) {
	gwCfg := r.cfg.Gateway

	if gwCfg.SSH.Enabled {
		return gateway.NewSSHGateway(gwCfg.SSH.Addr, gwCfg.SSH.User,
			gwCfg.SSH.Password, gwCfg.CommandTimeout)
	}

	switch strings.ToLower(platform) {
	case "android":
		return gateway.NewADBGateway(gwCfg.ADBPath, deviceID, gwCfg.CommandTimeout), nil
	case "ios":
		return gateway.NewTideviceGateway(gwCfg.TidevicePath, deviceID, gwCfg.CommandTimeout), nil
	default:
		return nil, fmt.Errorf("no gateway for platform %q", platform)
	}
}

// Create 创建并注册监控器，id已存在时返回ErrMonitorExists
func (r *MonitorRegistry) Create(opts collector.Options) (*collector.Monitor, error) {
	if opts.ID == "" {
		opts.ID = fmt.Sprintf("%s:%s:%s", opts.Platform, opts.DeviceID, opts.PackageName)
	}
	if opts.BufferSize == 0 {
		opts.BufferSize = r.cfg.Monitor.BufferSize
	}
	if opts.Thresholds == (config.AlertConfig{}) {
		opts.Thresholds = r.cfg.Alert
	}

	r.mu.RLock()
	_, exists := r.monitors[opts.ID]
	r.mu.RUnlock()
	if exists {
		return nil, fmt.Errorf("%w: %s", ErrMonitorExists, opts.ID)
	}

	// 网关构造可能涉及网络连接（SSH拨号），在锁外完成
	gw, err := r.factory(opts.Platform, opts.DeviceID)
	if err != nil {
		return nil, err
	}
	monitor, err := collector.NewMonitor(opts, gw)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.monitors[opts.ID]; ok {
		return nil, fmt.Errorf("%w: %s", ErrMonitorExists, opts.ID)
	}
	r.monitors[opts.ID] = monitor
	return monitor, nil
}

// Get 按id获取监控器
func (r *MonitorRegistry) Get(id string) (*collector.Monitor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	monitor, ok := r.monitors[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMonitorNotFound, id)
	}
	return monitor, nil
}

// Remove 停止并移除监控器
func (r *MonitorRegistry) Remove(id string) error {
	r.mu.Lock()
	monitor, ok := r.monitors[id]
	if ok {
		delete(r.monitors, id)
	}
	r.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrMonitorNotFound, id)
	}
	monitor.Stop()
	return nil
}

// List 返回全部监控器id
func (r *MonitorRegistry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.monitors))
	for id := range r.monitors {
		ids = append(ids, id)
	}
	return ids
}

// StopAll 停止并移除全部监控器
func (r *MonitorRegistry) StopAll() {
	r.mu.Lock()
	monitors := make([]*collector.Monitor, 0, len(r.monitors))
	for _, m := range r.monitors {
		monitors = append(monitors, m)
	}
	r.monitors = make(map[string]*collector.Monitor)
	r.mu.Unlock()

	for _, m := range monitors {
		m.Stop()
	}
}
