package extractor

import (
	"context"
	"math"
	"strconv"
	"strings"

	"github.com/han-fei/appmon/internal/models"
)

// androidBatteryExtractor Android电池信息提取器，读取dumpsys battery的瞬时值
type androidBatteryExtractor struct {
	target *androidTarget
}

func newAndroidBatteryExtractor(t *androidTarget) *androidBatteryExtractor {
	return &androidBatteryExtractor{target: t}
}

func (e *androidBatteryExtractor) Name() string { return "battery" }

func (e *androidBatteryExtractor) Extract(ctx context.Context, s *models.Sample) error {
	output, err := e.target.gw.Exec(ctx, "shell dumpsys battery")
	if err != nil {
		return err
	}

	info, err := parseBatteryOutput(output)
	if err != nil {
		return err
	}
	s.Battery = info
	e.target.cacheBattery(info)
	return nil
}

// parseBatteryOutput 解析dumpsys battery输出
// 电压和电流同时存在时计算功率 |voltage×current|/1e6（W）
func parseBatteryOutput(output string) (models.BatteryInfo, error) {
	var info models.BatteryInfo
	var hasVoltage, hasCurrent bool

	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)

		switch key {
		case "level":
			if v, err := strconv.Atoi(value); err == nil {
				info.Level = v
			}
		case "temperature":
			if v, err := strconv.Atoi(value); err == nil {
				// 以0.1摄氏度为单位
				info.Temperature = float64(v) / 10
			}
		case "voltage":
			if v, err := strconv.Atoi(value); err == nil {
				info.Voltage = v
				hasVoltage = true
			}
		case "current now":
			if v, err := strconv.Atoi(value); err == nil {
				info.Current = v
				hasCurrent = true
			}
		case "status":
			info.Status = value
		}
	}

	if hasVoltage && hasCurrent {
		info.Power = math.Abs(float64(info.Voltage)*float64(info.Current)) / 1e6
	}
	return info, nil
}
