package extractor

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/han-fei/appmon/internal/models"
)

// cpuStat 一次/proc/stat观测的累计节拍计数
type cpuStat struct {
	total uint64
	idle  uint64
	at    time.Time
}

// androidCPUExtractor Android CPU使用率提取器
// 指定了目标应用时读取top给出的瞬时百分比，
// 否则基于/proc/stat的累计计数器做差值计算全局使用率
type androidCPUExtractor struct {
	target *androidTarget
	prev   *cpuStat
}

func newAndroidCPUExtractor(t *androidTarget) *androidCPUExtractor {
	return &androidCPUExtractor{target: t}
}

func (e *androidCPUExtractor) Name() string { return "cpu" }

func (e *androidCPUExtractor) Extract(ctx context.Context, s *models.Sample) error {
	if pid := e.target.resolvePID(ctx); pid != "" {
		usage, err := e.extractProcessUsage(ctx, pid)
		if err != nil {
			e.target.invalidatePID()
			return err
		}
		s.CPUUsage = usage
		return nil
	}

	usage, err := e.extractGlobalUsage(ctx)
	if err != nil {
		return err
	}
	s.CPUUsage = usage
	return nil
}

// extractProcessUsage 读取top输出中目标进程的瞬时CPU百分比，直接透传
func (e *androidCPUExtractor) extractProcessUsage(ctx context.Context, pid string) (float64, error) {
	output, err := e.target.gw.Exec(ctx, fmt.Sprintf("shell top -p %s -n 1", pid))
	if err != nil {
		return 0, err
	}

	for _, line := range strings.Split(output, "\n") {
		if !strings.Contains(line, pid) || !strings.Contains(line, "%") {
			continue
		}
		for _, part := range strings.Fields(line) {
			if !strings.HasSuffix(part, "%") {
				continue
			}
			value, err := strconv.ParseFloat(strings.TrimSuffix(part, "%"), 64)
			if err == nil {
				return value, nil
			}
		}
	}
	return 0, fmt.Errorf("cpu: process %s not found in top output", pid)
}

// extractGlobalUsage 基于相邻两次累计节拍差值计算全局CPU使用率
// 首次调用仅记录基线并返回0，计数器回退（设备重启）时重置基线
func (e *androidCPUExtractor) extractGlobalUsage(ctx context.Context) (float64, error) {
	output, err := e.target.gw.Exec(ctx, "shell cat /proc/stat")
	if err != nil {
		return 0, err
	}

	current, err := parseCPUStat(output)
	if err != nil {
		return 0, err
	}

	prev := e.prev
	e.prev = current

	if prev == nil {
		return 0, nil
	}
	if current.total < prev.total || current.idle < prev.idle {
		// 计数器回退，丢弃本次差值
		return 0, nil
	}

	totalDiff := current.total - prev.total
	if totalDiff == 0 {
		return 0, nil
	}
	idleDiff := current.idle - prev.idle

	return 100.0 * float64(totalDiff-idleDiff) / float64(totalDiff), nil
}

// parseCPUStat 解析/proc/stat首行的累计节拍计数
func parseCPUStat(output string) (*cpuStat, error) {
	for _, line := range strings.Split(output, "\n") {
		if !strings.HasPrefix(line, "cpu ") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 5 {
			return nil, fmt.Errorf("cpu: malformed stat line: %q", line)
		}

		var total uint64
		for _, f := range fields[1:] {
			v, err := strconv.ParseUint(f, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("cpu: parse tick %q: %v", f, err)
			}
			total += v
		}
		idle, err := strconv.ParseUint(fields[4], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("cpu: parse idle %q: %v", fields[4], err)
		}

		return &cpuStat{total: total, idle: idle, at: time.Now()}, nil
	}
	return nil, fmt.Errorf("cpu: no cpu line in /proc/stat output")
}
