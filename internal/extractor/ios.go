package extractor

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/han-fei/appmon/internal/models"
)

// iOS输出解析的正则
var (
	iosPercentRe = regexp.MustCompile(`(\d+\.?\d*)%`)
	iosMBRe      = regexp.MustCompile(`(\d+\.?\d*)\s*MB`)
	iosFPSRe     = regexp.MustCompile(`(\d+\.?\d*)\s*fps`)
	iosNumberRe  = regexp.MustCompile(`(\d+\.?\d*)`)
	iosIntRe     = regexp.MustCompile(`(\d+)`)
)

// iosCPUExtractor iOS CPU使用率提取器
// 设备工具已计算好百分比，指定应用时读proc_info，否则读sysinfo
type iosCPUExtractor struct {
	target *iosTarget
}

func newIOSCPUExtractor(t *iosTarget) *iosCPUExtractor {
	return &iosCPUExtractor{target: t}
}

func (e *iosCPUExtractor) Name() string { return "cpu" }

func (e *iosCPUExtractor) Extract(ctx context.Context, s *models.Sample) error {
	command, marker := "sysinfo", "CPU Usage"
	if e.target.packageName != "" {
		command, marker = "proc_info "+e.target.packageName, "CPU"
	}

	output, err := e.target.gw.Exec(ctx, command)
	if err != nil {
		return err
	}
	for _, line := range strings.Split(output, "\n") {
		if !strings.Contains(line, marker) {
			continue
		}
		if m := iosPercentRe.FindStringSubmatch(line); m != nil {
			value, err := strconv.ParseFloat(m[1], 64)
			if err == nil {
				s.CPUUsage = value
				return nil
			}
		}
	}
	return fmt.Errorf("cpu: no usage in %s output", command)
}

// iosMemoryExtractor iOS内存使用量提取器
type iosMemoryExtractor struct {
	target *iosTarget
}

func newIOSMemoryExtractor(t *iosTarget) *iosMemoryExtractor {
	return &iosMemoryExtractor{target: t}
}

func (e *iosMemoryExtractor) Name() string { return "memory" }

func (e *iosMemoryExtractor) Extract(ctx context.Context, s *models.Sample) error {
	command := "sysinfo"
	if e.target.packageName != "" {
		command = "proc_info " + e.target.packageName
	}

	output, err := e.target.gw.Exec(ctx, command)
	if err != nil {
		return err
	}
	for _, line := range strings.Split(output, "\n") {
		if !strings.Contains(line, "Memory") {
			continue
		}
		if m := iosMBRe.FindStringSubmatch(line); m != nil {
			value, err := strconv.ParseFloat(m[1], 64)
			if err == nil {
				s.MemoryUsage = value
				return nil
			}
		}
	}
	return fmt.Errorf("memory: no usage in %s output", command)
}

// iosNetworkExtractor iOS网络流量提取器，基于累计收发字节做差值
type iosNetworkExtractor struct {
	target *iosTarget
	prev   *networkStat
}

func newIOSNetworkExtractor(t *iosTarget) *iosNetworkExtractor {
	return &iosNetworkExtractor{target: t}
}

func (e *iosNetworkExtractor) Name() string { return "network" }

func (e *iosNetworkExtractor) Extract(ctx context.Context, s *models.Sample) error {
	output, err := e.target.gw.Exec(ctx, "network_info")
	if err != nil {
		return err
	}

	var rxBytes, txBytes uint64
	for _, line := range strings.Split(output, "\n") {
		m := iosIntRe.FindString(line)
		if m == "" {
			continue
		}
		value, err := strconv.ParseUint(m, 10, 64)
		if err != nil {
			continue
		}
		switch {
		case strings.Contains(line, "RX:"):
			rxBytes = value
		case strings.Contains(line, "TX:"):
			txBytes = value
		}
	}

	current := &networkStat{rxBytes: rxBytes, txBytes: txBytes, at: time.Now()}
	prev := e.prev
	e.prev = current

	if prev == nil || rxBytes < prev.rxBytes || txBytes < prev.txBytes {
		return nil
	}
	elapsed := current.at.Sub(prev.at).Seconds()
	if elapsed <= 0 {
		return nil
	}

	s.Network = models.NetworkUsage{
		RxSpeed: float64(rxBytes-prev.rxBytes) / elapsed / 1024,
		TxSpeed: float64(txBytes-prev.txBytes) / elapsed / 1024,
		RxTotal: float64(rxBytes) / 1024,
		TxTotal: float64(txBytes) / 1024,
	}
	return nil
}

// iosFPSExtractor iOS帧率提取器，设备工具直接上报fps
type iosFPSExtractor struct {
	target *iosTarget
}

func newIOSFPSExtractor(t *iosTarget) *iosFPSExtractor {
	return &iosFPSExtractor{target: t}
}

func (e *iosFPSExtractor) Name() string { return "fps" }

func (e *iosFPSExtractor) Extract(ctx context.Context, s *models.Sample) error {
	if e.target.packageName == "" {
		return nil
	}

	output, err := e.target.gw.Exec(ctx, "fps "+e.target.packageName)
	if err != nil {
		return err
	}
	m := iosFPSRe.FindStringSubmatch(output)
	if m == nil {
		return fmt.Errorf("fps: no fps value in output")
	}
	fps, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return err
	}
	if fps > maxFPS {
		fps = maxFPS
	}
	s.FPS = fps
	return nil
}

// iosBatteryExtractor iOS电池信息提取器
type iosBatteryExtractor struct {
	target *iosTarget
}

func newIOSBatteryExtractor(t *iosTarget) *iosBatteryExtractor {
	return &iosBatteryExtractor{target: t}
}

func (e *iosBatteryExtractor) Name() string { return "battery" }

func (e *iosBatteryExtractor) Extract(ctx context.Context, s *models.Sample) error {
	output, err := e.target.gw.Exec(ctx, "battery")
	if err != nil {
		return err
	}

	for _, line := range strings.Split(output, "\n") {
		m := iosNumberRe.FindString(line)
		if m == "" {
			continue
		}
		value, err := strconv.ParseFloat(m, 64)
		if err != nil {
			continue
		}
		switch {
		case strings.Contains(line, "BatteryLevel"):
			// 设备上报0~1的小数
			s.Battery.Level = int(value * 100)
		case strings.Contains(line, "Temperature"):
			s.Battery.Temperature = value
		case strings.Contains(line, "Voltage"):
			s.Battery.Voltage = int(value)
		}
	}
	return nil
}
