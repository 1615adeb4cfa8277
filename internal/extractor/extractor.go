// Package extractor 将设备命令输出转换为类型化的性能指标
// 速率类指标（CPU、网络）在提取器内部保存上一次的累计计数器，
// 相邻两次提取之间计算差值速率
package extractor

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/han-fei/appmon/internal/gateway"
	"github.com/han-fei/appmon/internal/models"
)

// 支持的平台
const (
	PlatformAndroid = "android"
	PlatformIOS     = "ios"
)

// ErrUnknownPlatform 平台不受支持
var ErrUnknownPlatform = fmt.Errorf("unknown platform")

// Extractor 单个指标族的提取器
// Extract在单次失败时返回error，调用方记录后继续其他提取器，
// 对应字段保持Sample的零值
type Extractor interface {
	// Name 指标族名称
	Name() string

	// Extract 执行一次提取并把结果写入样本
	Extract(ctx context.Context, s *models.Sample) error
}

// NewExtractors 按平台创建全部提取器，绑定到一个设备网关和目标应用
// 平台在创建时决定一次，之后不再分派
func NewExtractors(platform string, gw gateway.Gateway, packageName string) ([]Extractor, error) {
	switch strings.ToLower(platform) {
	case PlatformAndroid:
		target := &androidTarget{gw: gw, packageName: packageName}
		return []Extractor{
			newAndroidCPUExtractor(target),
			newAndroidMemoryExtractor(target),
			newAndroidMemoryDetailExtractor(target),
			newAndroidNetworkExtractor(target),
			newAndroidFPSExtractor(target),
			newAndroidBatteryExtractor(target),
			newAndroidGPUExtractor(target),
			newAndroidThermalExtractor(target),
		}, nil
	case PlatformIOS:
		target := &iosTarget{gw: gw, packageName: packageName}
		return []Extractor{
			newIOSCPUExtractor(target),
			newIOSMemoryExtractor(target),
			newIOSNetworkExtractor(target),
			newIOSFPSExtractor(target),
			newIOSBatteryExtractor(target),
		}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownPlatform, platform)
	}
}

// androidTarget Android目标应用上下文，提取器间共享PID解析结果和电池读数
type androidTarget struct {
	gw          gateway.Gateway
	packageName string

	mu  sync.Mutex
	pid string

	batteryMu sync.Mutex
	battery   models.BatteryInfo
	batteryOK bool
}

// cacheBattery 缓存本周期battery提取器解析出的电池读数
func (t *androidTarget) cacheBattery(info models.BatteryInfo) {
	t.batteryMu.Lock()
	defer t.batteryMu.Unlock()
	t.battery = info
	t.batteryOK = true
}

// cachedBattery 读取缓存的电池读数
// 同一周期内battery提取器先于thermal提取器执行，避免重复执行dumpsys battery
func (t *androidTarget) cachedBattery() (models.BatteryInfo, bool) {
	t.batteryMu.Lock()
	defer t.batteryMu.Unlock()
	return t.battery, t.batteryOK
}

// resolvePID 解析目标应用进程ID，成功后缓存
func (t *androidTarget) resolvePID(ctx context.Context) string {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.pid != "" || t.packageName == "" {
		return t.pid
	}

	output, err := t.gw.Exec(ctx, "shell pidof "+t.packageName)
	if err != nil {
		return ""
	}
	fields := strings.Fields(output)
	if len(fields) > 0 {
		t.pid = fields[0]
	}
	return t.pid
}

// invalidatePID 进程退出后清除缓存，下个周期重新解析
func (t *androidTarget) invalidatePID() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pid = ""
}

// iosTarget iOS目标应用上下文
type iosTarget struct {
	gw          gateway.Gateway
	packageName string
}
