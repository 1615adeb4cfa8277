package extractor

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/han-fei/appmon/internal/models"
)

var maliUtilRe = regexp.MustCompile(`(\d+)%`)

// androidGPUExtractor Android GPU使用率提取器
// 优先读取高通kgsl的gpubusy，失败时回退到Mali的utilization节点
type androidGPUExtractor struct {
	target *androidTarget
}

func newAndroidGPUExtractor(t *androidTarget) *androidGPUExtractor {
	return &androidGPUExtractor{target: t}
}

func (e *androidGPUExtractor) Name() string { return "gpu" }

func (e *androidGPUExtractor) Extract(ctx context.Context, s *models.Sample) error {
	if usage, err := e.extractKgsl(ctx); err == nil {
		s.GPUUsage = usage
		return nil
	}

	usage, err := e.extractMali(ctx)
	if err != nil {
		return err
	}
	s.GPUUsage = usage
	return nil
}

// extractKgsl 读取kgsl的busy/total时间对
func (e *androidGPUExtractor) extractKgsl(ctx context.Context) (float64, error) {
	output, err := e.target.gw.Exec(ctx, "shell cat /sys/class/kgsl/kgsl-3d0/gpubusy")
	if err != nil {
		return 0, err
	}

	fields := strings.Fields(output)
	if len(fields) < 2 {
		return 0, fmt.Errorf("gpu: malformed gpubusy output: %q", output)
	}
	busy, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return 0, err
	}
	total, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return 0, err
	}
	if total <= 0 {
		return 0, nil
	}
	return busy / total * 100, nil
}

// extractMali 读取Mali驱动的利用率百分比
func (e *androidGPUExtractor) extractMali(ctx context.Context) (float64, error) {
	output, err := e.target.gw.Exec(ctx, "shell cat /proc/mali/utilization")
	if err != nil {
		return 0, err
	}

	m := maliUtilRe.FindStringSubmatch(output)
	if m == nil {
		return 0, fmt.Errorf("gpu: no utilization in mali output: %q", output)
	}
	return strconv.ParseFloat(m[1], 64)
}
