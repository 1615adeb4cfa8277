package extractor

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/han-fei/appmon/internal/models"
)

var firstNumberRe = regexp.MustCompile(`(\d+)`)

// androidMemoryExtractor Android内存使用量提取器
// 目标应用取dumpsys meminfo的TOTAL行，全局取MemTotal-MemAvailable
type androidMemoryExtractor struct {
	target *androidTarget
}

func newAndroidMemoryExtractor(t *androidTarget) *androidMemoryExtractor {
	return &androidMemoryExtractor{target: t}
}

func (e *androidMemoryExtractor) Name() string { return "memory" }

func (e *androidMemoryExtractor) Extract(ctx context.Context, s *models.Sample) error {
	if pid := e.target.resolvePID(ctx); pid != "" {
		output, err := e.target.gw.Exec(ctx, "shell dumpsys meminfo "+pid)
		if err != nil {
			return err
		}
		for _, line := range strings.Split(output, "\n") {
			if !strings.Contains(line, "TOTAL") || !strings.Contains(line, "kB") {
				continue
			}
			if m := firstNumberRe.FindString(line); m != "" {
				kb, err := strconv.ParseFloat(m, 64)
				if err == nil {
					s.MemoryUsage = kb / 1024
					return nil
				}
			}
		}
		return fmt.Errorf("memory: TOTAL line not found for pid %s", pid)
	}

	output, err := e.target.gw.Exec(ctx, "shell cat /proc/meminfo")
	if err != nil {
		return err
	}

	var memTotal, memAvailable float64
	for _, line := range strings.Split(output, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		value, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			continue
		}
		switch {
		case strings.HasPrefix(line, "MemTotal:"):
			memTotal = value
		case strings.HasPrefix(line, "MemAvailable:"):
			memAvailable = value
		}
	}
	if memTotal == 0 {
		return fmt.Errorf("memory: MemTotal not found in /proc/meminfo")
	}

	s.MemoryUsage = (memTotal - memAvailable) / 1024
	return nil
}

// androidMemoryDetailExtractor Android进程内存细分提取器
type androidMemoryDetailExtractor struct {
	target *androidTarget
}

func newAndroidMemoryDetailExtractor(t *androidTarget) *androidMemoryDetailExtractor {
	return &androidMemoryDetailExtractor{target: t}
}

func (e *androidMemoryDetailExtractor) Name() string { return "memory_detail" }

func (e *androidMemoryDetailExtractor) Extract(ctx context.Context, s *models.Sample) error {
	pid := e.target.resolvePID(ctx)
	if pid == "" {
		// 没有目标应用时无细分数据，保持零值
		return nil
	}

	output, err := e.target.gw.Exec(ctx, "shell dumpsys meminfo "+pid)
	if err != nil {
		return err
	}

	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		m := firstNumberRe.FindString(line)
		if m == "" {
			continue
		}
		kb, err := strconv.ParseFloat(m, 64)
		if err != nil {
			continue
		}
		switch {
		case strings.Contains(line, "Pss Total"):
			s.MemoryDetail.PSSTotal = kb / 1024
		case strings.Contains(line, "Private Dirty"):
			s.MemoryDetail.PrivateDirty = kb / 1024
		case strings.Contains(line, "Private Clean"):
			s.MemoryDetail.PrivateClean = kb / 1024
		}
	}
	return nil
}
