package extractor

import (
	"context"
	"strconv"
	"strings"

	"github.com/han-fei/appmon/internal/models"
)

// androidThermalExtractor Android热量提取器
// CPU温度取所有thermal_zone中的最大值，电池温度来自dumpsys battery
type androidThermalExtractor struct {
	target *androidTarget
}

func newAndroidThermalExtractor(t *androidTarget) *androidThermalExtractor {
	return &androidThermalExtractor{target: t}
}

func (e *androidThermalExtractor) Name() string { return "thermal" }

func (e *androidThermalExtractor) Extract(ctx context.Context, s *models.Sample) error {
	output, err := e.target.gw.Exec(ctx, "shell cat /sys/class/thermal/thermal_zone*/temp")
	if err != nil {
		return err
	}

	var maxTemp float64
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		milli, err := strconv.ParseInt(line, 10, 64)
		if err != nil {
			continue
		}
		// 传感器以毫摄氏度为单位
		temp := float64(milli) / 1000
		if temp > maxTemp {
			maxTemp = temp
		}
	}
	s.Thermal.CPUTemp = maxTemp

	// 电池温度复用本周期battery提取器的读数，battery失败时才自行采集
	if info, ok := e.target.cachedBattery(); ok {
		s.Thermal.BatteryTemp = info.Temperature
		return nil
	}
	if batteryOut, err := e.target.gw.Exec(ctx, "shell dumpsys battery"); err == nil {
		if info, err := parseBatteryOutput(batteryOut); err == nil {
			s.Thermal.BatteryTemp = info.Temperature
		}
	}
	return nil
}
